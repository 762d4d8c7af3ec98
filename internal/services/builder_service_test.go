package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/tbourn/go-survey-backend/internal/domain"
	"github.com/tbourn/go-survey-backend/internal/repo"
)

func firstPick(int) int { return 0 }

func TestBuilder_GenerateDefaults(t *testing.T) {
	s := &BuilderService{Pick: firstPick}
	d := s.Generate(DraftRequest{})

	if d.Title != "sản phẩm/dịch vụ của chúng tôi - Trải nghiệm của khách hàng" {
		t.Fatalf("title = %q", d.Title)
	}
	if !strings.HasSuffix(d.Description, "Nâng cao chất lượng phục vụ.") {
		t.Fatalf("description = %q", d.Description)
	}
	if len(d.Questions) != 5 {
		t.Fatalf("questions = %d", len(d.Questions))
	}
	wantTypes := []string{"single", "rating", "text", "single", "rating"}
	for i, q := range d.Questions {
		if q.Type != wantTypes[i] {
			t.Fatalf("q%d type = %q, want %q", i+1, q.Type, wantTypes[i])
		}
		if strings.Contains(q.Text, "{") {
			t.Fatalf("unfilled placeholder in %q", q.Text)
		}
	}
	single := d.Questions[0]
	if !single.Required || len(single.Choices) != 4 || single.Choices[0] != "Rất hài lòng" {
		t.Fatalf("single = %+v", single)
	}
	rating := d.Questions[1]
	if rating.MinValue.IntPart() != 1 || rating.MaxValue.IntPart() != 5 {
		t.Fatalf("rating bounds = %v..%v", rating.MinValue, rating.MaxValue)
	}
	if d.Questions[2].Required {
		t.Fatalf("text questions are optional")
	}

	// answer sets are copied, not shared
	d.Questions[0].Choices[0] = "changed"
	if singleAnswerSets[0][0] != "Rất hài lòng" {
		t.Fatalf("template answer set mutated")
	}
}

func TestBuilder_GenerateOptions(t *testing.T) {
	s := &BuilderService{Pick: func(n int) int { return n - 1 }}

	d := s.Generate(DraftRequest{Topic: "Căng tin", Audience: "sinh viên", Goal: "Cải thiện món ăn...", QuestionCount: 50, PreferredTypes: []string{" NPS", "multi", "nps", "matrix"}})
	if len(d.Questions) != 20 {
		t.Fatalf("count not clamped: %d", len(d.Questions))
	}
	if d.Title != "sinh viên nghĩ gì về Căng tin?" {
		t.Fatalf("title = %q", d.Title)
	}
	if !strings.Contains(d.Description, "giúp chúng tôi Cải thiện món ăn.") {
		t.Fatalf("goal punctuation: %q", d.Description)
	}
	for i, q := range d.Questions {
		want := []string{"nps", "multi"}[i%2]
		if q.Type != want {
			t.Fatalf("q%d type = %q", i+1, q.Type)
		}
	}
	nps := d.Questions[0]
	if nps.MinValue.IntPart() != 0 || nps.MaxValue.IntPart() != 10 || !nps.Required {
		t.Fatalf("nps = %+v", nps)
	}

	if got := draftTypePool([]string{"bogus"}); len(got) != 3 || got[0] != "single" {
		t.Fatalf("fallback pool = %v", got)
	}
}

func TestBuilder_SaveDraft(t *testing.T) {
	db := newSvcDB(t)
	owner := seedUser(t, db, "o@x.io")
	topic := seedTopic(t, db, "T", "t")
	s := &BuilderService{DB: db, Pick: firstPick, Now: fixedClock}
	ctx := context.Background()
	actor := Actor{UserID: owner.ID}

	d := s.Generate(DraftRequest{Topic: "Wifi", QuestionCount: 3, PreferredTypes: []string{"single", "nps", "text"}})
	sv, err := s.SaveDraft(ctx, actor, d, DraftSave{TopicID: topic.ID})
	if err != nil {
		t.Fatalf("SaveDraft: %v", err)
	}
	if sv.Status != domain.StatusDraft || sv.OwnerUserID != owner.ID || !sv.CreatedAt.Equal(testNow) {
		t.Fatalf("survey = %+v", sv)
	}
	tree, err := repo.GetSurveyTree(ctx, db, sv.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(tree.Questions) != 3 || len(tree.Questions[0].Choices) != 4 || tree.Questions[1].Type != domain.QuestionNPS {
		t.Fatalf("tree = %+v", tree.Questions)
	}
	for i, q := range tree.Questions {
		if q.OrderIndex != i+1 {
			t.Fatalf("order = %d at %d", q.OrderIndex, i)
		}
	}

	if _, err := s.SaveDraft(ctx, Actor{}, d, DraftSave{TopicID: topic.ID}); !errors.Is(err, ErrForbidden) {
		t.Fatalf("anonymous err = %v", err)
	}
	if _, err := s.SaveDraft(ctx, actor, d, DraftSave{TopicID: 999}); !errors.Is(err, ErrTopicNotFound) {
		t.Fatalf("unknown topic err = %v", err)
	}
	if _, err := s.SaveDraft(ctx, actor, SurveyDraft{Title: "Empty"}, DraftSave{TopicID: topic.ID}); !errors.Is(err, ErrInvalidSurvey) {
		t.Fatalf("empty draft err = %v", err)
	}
	bad := SurveyDraft{Title: "Bad", Questions: []QuestionDraft{
		{Type: "text", Text: "ok"},
		{Type: "single", Text: "one choice", Choices: []string{"A"}},
	}}
	_, err = s.SaveDraft(ctx, actor, bad, DraftSave{TopicID: topic.ID})
	if !errors.Is(err, ErrInvalidQuestion) || !strings.HasPrefix(err.Error(), "question 2:") {
		t.Fatalf("bad question err = %v", err)
	}
}
