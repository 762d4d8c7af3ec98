package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/tbourn/go-survey-backend/internal/domain"
	"github.com/tbourn/go-survey-backend/internal/repo"
)

func newSubmissionSvc(t *testing.T) (*SubmissionService, *domain.Survey) {
	t.Helper()
	db := newSvcDB(t)
	owner := seedUser(t, db, "owner@x.io")
	topic := seedTopic(t, db, "Dịch vụ", "dich-vu")
	sv := seedFullSurvey(t, db, owner.ID, topic.ID)
	return &SubmissionService{DB: db, Now: fixedClock}, sv
}

func validForm(sv *domain.Survey) map[string][]string {
	q := sv.Questions
	return map[string][]string{
		fmt.Sprintf("q_%d", q[0].ID): {fmt.Sprint(q[0].Choices[1].ID)},
		fmt.Sprintf("q_%d_opt_%d", q[1].ID, q[1].Choices[0].ID): {"on"},
		fmt.Sprintf("q_%d_opt_%d", q[1].ID, q[1].Choices[2].ID): {"on"},
		fmt.Sprintf("q_%d", q[2].ID): {"4"},
		fmt.Sprintf("q_%d", q[3].ID): {"9"},
		fmt.Sprintf("q_%d", q[4].ID): {"  tốt lắm  "},
	}
}

func TestSubmit_StoresAllAnswerKinds(t *testing.T) {
	s, sv := newSubmissionSvc(t)
	ctx := context.Background()

	res, err := s.Submit(ctx, sv.ID, validForm(sv), Submitter{}, "")
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if res.Replayed || res.Response.SubmittedAt == nil {
		t.Fatalf("result = %+v", res)
	}
	stored, err := repo.GetResponse(ctx, s.DB, res.Response.ID)
	if err != nil {
		t.Fatal(err)
	}
	// single + two multi + rating + nps + text
	if len(stored.Details) != 6 {
		t.Fatalf("details = %+v", stored.Details)
	}
	var texts, numbers, choices int
	for _, d := range stored.Details {
		switch {
		case d.ChoiceID != nil:
			choices++
		case d.AnswerNumber != nil:
			numbers++
		case d.AnswerText != nil:
			texts++
			if *d.AnswerText != "tốt lắm" {
				t.Fatalf("text not trimmed: %q", *d.AnswerText)
			}
		}
	}
	if choices != 3 || numbers != 2 || texts != 1 {
		t.Fatalf("choices=%d numbers=%d texts=%d", choices, numbers, texts)
	}
}

func TestSubmit_ValidationMessages(t *testing.T) {
	s, sv := newSubmissionSvc(t)
	form := map[string][]string{
		fmt.Sprintf("q_%d", sv.Questions[2].ID): {"7"},
	}
	_, err := s.Submit(context.Background(), sv.ID, form, Submitter{}, "")
	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("want *ValidationError, got %v", err)
	}
	if len(ve.Messages) != 3 {
		t.Fatalf("messages = %q", ve.Messages)
	}
	if ve.Messages[0] != "Thiếu trả lời cho câu 1" || ve.Messages[1] != "Thiếu chọn cho câu 2" {
		t.Fatalf("messages = %q", ve.Messages)
	}
	if !strings.HasPrefix(ve.Messages[2], "Câu 3: ") {
		t.Fatalf("range message = %q", ve.Messages[2])
	}
	if n := countRows(t, s.DB, &domain.Response{}); n != 0 {
		t.Fatalf("invalid form persisted %d responses", n)
	}
}

func TestSubmit_SingleByPositionAndMultiList(t *testing.T) {
	s, sv := newSubmissionSvc(t)
	q := sv.Questions
	form := map[string][]string{
		fmt.Sprintf("q_%d", q[0].ID): {"Web"},
		fmt.Sprintf("q_%d", q[1].ID): {fmt.Sprintf("%d, %d", q[1].Choices[1].ID, q[1].Choices[1].ID)},
		fmt.Sprintf("q_%d", q[2].ID): {"5"},
	}
	res, err := s.Submit(context.Background(), sv.ID, form, Submitter{}, "")
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	stored, _ := repo.GetResponse(context.Background(), s.DB, res.Response.ID)
	var picked []uint
	for _, d := range stored.Details {
		if d.ChoiceID != nil {
			picked = append(picked, *d.ChoiceID)
		}
	}
	if len(picked) != 2 || picked[0] != q[0].Choices[0].ID || picked[1] != q[1].Choices[1].ID {
		t.Fatalf("picked = %v", picked)
	}
}

func TestSubmit_IdempotentReplay(t *testing.T) {
	s, sv := newSubmissionSvc(t)
	ctx := context.Background()
	who := Submitter{Client: "203.0.113.7"}
	owner := anonymousIdemPrefix + "203.0.113.7"

	first, err := s.Submit(ctx, sv.ID, validForm(sv), who, "key-1")
	if err != nil {
		t.Fatal(err)
	}
	second, err := s.Submit(ctx, sv.ID, validForm(sv), who, "key-1")
	if err != nil {
		t.Fatal(err)
	}
	if !second.Replayed || second.Response.ID != first.Response.ID {
		t.Fatalf("replay = %+v first = %+v", second, first.Response.ID)
	}
	if n := countRows(t, s.DB, &domain.Response{}); n != 1 {
		t.Fatalf("responses = %d", n)
	}

	ok, err := s.HasReplay(ctx, owner, IdempotencyScope(sv.ID), "key-1", testNow)
	if err != nil || !ok {
		t.Fatalf("HasReplay = %v err=%v", ok, err)
	}
	ok, err = s.HasReplay(ctx, owner, IdempotencyScope(sv.ID), "other", testNow)
	if err != nil || ok {
		t.Fatalf("HasReplay(other) = %v err=%v", ok, err)
	}
}

func TestSubmit_AnonymousSubmittersDoNotShareKeys(t *testing.T) {
	s, sv := newSubmissionSvc(t)
	ctx := context.Background()
	q := sv.Questions

	formA := validForm(sv)
	formB := validForm(sv)
	formB[fmt.Sprintf("q_%d", q[0].ID)] = []string{fmt.Sprint(q[0].Choices[0].ID)}
	formB[fmt.Sprintf("q_%d", q[2].ID)] = []string{"2"}

	a, err := s.Submit(ctx, sv.ID, formA, Submitter{Client: "203.0.113.7"}, "key-1")
	if err != nil {
		t.Fatal(err)
	}
	b, err := s.Submit(ctx, sv.ID, formB, Submitter{Client: "198.51.100.2"}, "key-1")
	if err != nil {
		t.Fatal(err)
	}
	if b.Replayed || b.Response.ID == a.Response.ID {
		t.Fatalf("second respondent got a replay: a=%d b=%d replayed=%v", a.Response.ID, b.Response.ID, b.Replayed)
	}
	if n := countRows(t, s.DB, &domain.Response{}); n != 2 {
		t.Fatalf("responses = %d, want 2", n)
	}

	stored, err := repo.GetResponse(ctx, s.DB, b.Response.ID)
	if err != nil {
		t.Fatal(err)
	}
	for _, d := range stored.Details {
		if d.QuestionID == q[0].ID && (d.ChoiceID == nil || *d.ChoiceID != q[0].Choices[0].ID) {
			t.Fatalf("second respondent's choice lost: %+v", d)
		}
	}
}

func TestSubmit_KeyWithoutClientIsIgnored(t *testing.T) {
	s, sv := newSubmissionSvc(t)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		res, err := s.Submit(ctx, sv.ID, validForm(sv), Submitter{}, "key-1")
		if err != nil {
			t.Fatal(err)
		}
		if res.Replayed {
			t.Fatalf("submission %d replayed", i)
		}
	}
	if n := countRows(t, s.DB, &domain.Response{}); n != 2 {
		t.Fatalf("responses = %d, want 2", n)
	}
	if n := countRows(t, s.DB, &domain.Idempotency{}); n != 0 {
		t.Fatalf("idempotency records = %d, want 0", n)
	}
}

func TestSubmit_ReusedKeyWithDifferentFormConflicts(t *testing.T) {
	s, sv := newSubmissionSvc(t)
	ctx := context.Background()
	who := Submitter{Client: "203.0.113.7"}

	if _, err := s.Submit(ctx, sv.ID, validForm(sv), who, "key-1"); err != nil {
		t.Fatal(err)
	}
	changed := validForm(sv)
	changed[fmt.Sprintf("q_%d", sv.Questions[2].ID)] = []string{"1"}
	if _, err := s.Submit(ctx, sv.ID, changed, who, "key-1"); !errors.Is(err, ErrIdempotencyConflict) {
		t.Fatalf("err = %v, want ErrIdempotencyConflict", err)
	}
	if n := countRows(t, s.DB, &domain.Response{}); n != 1 {
		t.Fatalf("responses = %d, want 1", n)
	}
}

func TestSubmit_LinksUserUnlessAnonymous(t *testing.T) {
	s, sv := newSubmissionSvc(t)
	ctx := context.Background()
	user := seedUser(t, s.DB, "resp@x.io")

	res, err := s.Submit(ctx, sv.ID, validForm(sv), Submitter{UserID: user.ID, Email: user.Email}, "")
	if err != nil {
		t.Fatal(err)
	}
	var rd domain.Respondent
	if err := s.DB.First(&rd, "id = ?", res.Response.RespondentID).Error; err != nil {
		t.Fatal(err)
	}
	if rd.UserID == nil || *rd.UserID != user.ID || rd.Email == nil || *rd.Email != user.Email {
		t.Fatalf("respondent = %+v", rd)
	}

	if err := s.DB.Model(&domain.Survey{}).Where("id = ?", sv.ID).Update("is_anonymous", true).Error; err != nil {
		t.Fatal(err)
	}
	res, err = s.Submit(ctx, sv.ID, validForm(sv), Submitter{UserID: user.ID, Email: user.Email}, "")
	if err != nil {
		t.Fatal(err)
	}
	rd = domain.Respondent{}
	if err := s.DB.First(&rd, "id = ?", res.Response.RespondentID).Error; err != nil {
		t.Fatal(err)
	}
	if rd.UserID != nil || rd.Email != nil {
		t.Fatalf("anonymous survey linked respondent: %+v", rd)
	}
}

func TestSubmit_UnavailableAndMissing(t *testing.T) {
	s, sv := newSubmissionSvc(t)
	ctx := context.Background()
	if _, err := s.Submit(ctx, 404, nil, Submitter{}, ""); !errors.Is(err, ErrSurveyNotFound) {
		t.Fatalf("missing err = %v", err)
	}
	if err := repo.SetSurveyStatus(ctx, s.DB, sv.ID, domain.StatusDraft); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Submit(ctx, sv.ID, validForm(sv), Submitter{}, ""); !errors.Is(err, ErrSurveyUnavailable) {
		t.Fatalf("draft err = %v", err)
	}
}

func TestParseForm_TextMaxLengthTruncates(t *testing.T) {
	n := 3
	sv := &domain.Survey{Questions: []domain.Question{
		{ID: 1, OrderIndex: 1, Type: domain.QuestionText, MaxLength: &n},
	}}
	details, err := ParseForm(sv, map[string][]string{"q_1": {"abcdef"}})
	if err != nil {
		t.Fatal(err)
	}
	if len(details) != 1 || *details[0].AnswerText != "abc" {
		t.Fatalf("details = %+v", details)
	}

	// optional and blank yields nothing
	details, err = ParseForm(sv, map[string][]string{"q_1": {"  "}})
	if err != nil || len(details) != 0 {
		t.Fatalf("blank optional = %+v err=%v", details, err)
	}
}
