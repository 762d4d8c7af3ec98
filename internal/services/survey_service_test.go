package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/tbourn/go-survey-backend/internal/domain"
	"github.com/tbourn/go-survey-backend/internal/repo"
)

type surveyFixture struct {
	svc   *SurveyService
	sched *fakeScheduler
	owner *domain.User
	other *domain.User
	topic *domain.Topic
}

func newSurveyFixture(t *testing.T) surveyFixture {
	t.Helper()
	db := newSvcDB(t)
	f := surveyFixture{
		sched: newFakeScheduler(),
		owner: seedUser(t, db, "owner@x.io"),
		other: seedUser(t, db, "other@x.io"),
		topic: seedTopic(t, db, "T", "t"),
	}
	f.svc = &SurveyService{DB: db, Scheduler: f.sched, Now: fixedClock}
	return f
}

func TestSurveyService_CreateValidatesAndSchedules(t *testing.T) {
	f := newSurveyFixture(t)
	ctx := context.Background()
	owner := Actor{UserID: f.owner.ID}
	end := testNow.Add(48 * time.Hour)

	cases := []struct {
		name string
		in   SurveyInput
		want error
	}{
		{"blank title", SurveyInput{TopicID: f.topic.ID, Title: "  "}, ErrInvalidSurvey},
		{"bad status", SurveyInput{TopicID: f.topic.ID, Title: "x", Status: "open"}, ErrInvalidSurvey},
		{"no topic", SurveyInput{Title: "x"}, ErrInvalidSurvey},
		{"unknown topic", SurveyInput{TopicID: 999, Title: "x"}, ErrTopicNotFound},
		{"end before start", SurveyInput{TopicID: f.topic.ID, Title: "x", StartAt: &end, EndAt: &testNow}, ErrInvalidSurvey},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := f.svc.Create(ctx, owner, tc.in); !errors.Is(err, tc.want) {
				t.Fatalf("err = %v, want %v", err, tc.want)
			}
		})
	}

	if _, err := f.svc.Create(ctx, Actor{}, SurveyInput{TopicID: f.topic.ID, Title: "x"}); !errors.Is(err, ErrForbidden) {
		t.Fatalf("anonymous create err = %v", err)
	}

	sv, err := f.svc.Create(ctx, owner, SurveyInput{TopicID: f.topic.ID, Title: " Hello ", Status: "ACTIVE", EndAt: &end})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if sv.Title != "Hello" || sv.Status != domain.StatusActive || sv.OwnerUserID != f.owner.ID {
		t.Fatalf("survey = %+v", sv)
	}
	if at, ok := f.sched.scheduled[sv.ID]; !ok || !at.Equal(end) {
		t.Fatalf("close not scheduled: %+v", f.sched.scheduled)
	}

	draft, err := f.svc.Create(ctx, owner, SurveyInput{TopicID: f.topic.ID, Title: "Draft"})
	if err != nil || draft.Status != domain.StatusDraft {
		t.Fatalf("draft = %+v err=%v", draft, err)
	}
	if _, ok := f.sched.scheduled[draft.ID]; ok {
		t.Fatalf("draft should not be scheduled")
	}
}

func TestSurveyService_OwnershipAndListing(t *testing.T) {
	f := newSurveyFixture(t)
	ctx := context.Background()
	owner, other, admin := Actor{UserID: f.owner.ID}, Actor{UserID: f.other.ID}, Actor{UserID: f.other.ID, IsAdmin: true}

	sv, err := f.svc.Create(ctx, owner, SurveyInput{TopicID: f.topic.ID, Title: "Mine"})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := f.svc.Create(ctx, other, SurveyInput{TopicID: f.topic.ID, Title: "Theirs"}); err != nil {
		t.Fatal(err)
	}

	if _, err := f.svc.Get(ctx, other, sv.ID); !errors.Is(err, ErrForbidden) {
		t.Fatalf("other Get err = %v", err)
	}
	if got, err := f.svc.Get(ctx, admin, sv.ID); err != nil || got.ID != sv.ID {
		t.Fatalf("admin Get = %+v err=%v", got, err)
	}
	if _, err := f.svc.Update(ctx, other, sv.ID, SurveyInput{TopicID: f.topic.ID, Title: "hijack"}); !errors.Is(err, ErrForbidden) {
		t.Fatalf("other Update err = %v", err)
	}

	items, total, err := f.svc.ListPage(ctx, owner, 1, 20)
	if err != nil || total != 1 || len(items) != 1 || items[0].ID != sv.ID {
		t.Fatalf("owner list = %+v total=%d err=%v", items, total, err)
	}
	_, total, err = f.svc.ListPage(ctx, admin, 0, 0)
	if err != nil || total != 2 {
		t.Fatalf("admin total = %d err=%v", total, err)
	}
}

func TestSurveyService_UpdateReschedules(t *testing.T) {
	f := newSurveyFixture(t)
	ctx := context.Background()
	owner := Actor{UserID: f.owner.ID}
	end := testNow.Add(time.Hour)

	sv, err := f.svc.Create(ctx, owner, SurveyInput{TopicID: f.topic.ID, Title: "S", Status: domain.StatusActive, EndAt: &end})
	if err != nil {
		t.Fatal(err)
	}
	upd, err := f.svc.Update(ctx, owner, sv.ID, SurveyInput{TopicID: f.topic.ID, Title: "S2", Status: domain.StatusClosed})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if upd.Title != "S2" || upd.Status != domain.StatusClosed || upd.EndAt != nil {
		t.Fatalf("updated = %+v", upd)
	}
	if _, ok := f.sched.scheduled[sv.ID]; ok {
		t.Fatalf("closing should cancel the schedule")
	}
	stored, _ := repo.GetSurvey(ctx, f.svc.DB, sv.ID)
	if stored.Title != "S2" || stored.Status != domain.StatusClosed {
		t.Fatalf("stored = %+v", stored)
	}
}

func TestSurveyService_DeleteRefusedWithResponses(t *testing.T) {
	f := newSurveyFixture(t)
	ctx := context.Background()
	owner := Actor{UserID: f.owner.ID}

	sv := seedScenario(t, f.svc.DB, f.owner.ID, f.topic.ID)
	sub := &SubmissionService{DB: f.svc.DB, Now: fixedClock}
	form := map[string][]string{"q_" + itoa(sv.Questions[0].ID): {"1"}}
	if _, err := sub.Submit(ctx, sv.ID, form, Submitter{}, ""); err != nil {
		t.Fatal(err)
	}
	if err := f.svc.Delete(ctx, owner, sv.ID); !errors.Is(err, ErrSurveyHasResponses) {
		t.Fatalf("delete with responses err = %v", err)
	}

	empty, err := f.svc.Create(ctx, owner, SurveyInput{TopicID: f.topic.ID, Title: "Empty"})
	if err != nil {
		t.Fatal(err)
	}
	if err := f.svc.Delete(ctx, owner, empty.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := f.svc.Get(ctx, owner, empty.ID); !errors.Is(err, ErrSurveyNotFound) {
		t.Fatalf("after delete err = %v", err)
	}
	if len(f.sched.cancelled) == 0 || f.sched.cancelled[len(f.sched.cancelled)-1] != empty.ID {
		t.Fatalf("delete should cancel the close task: %v", f.sched.cancelled)
	}
}

func TestSurveyService_CloseIfDueAndScheduleOpen(t *testing.T) {
	f := newSurveyFixture(t)
	ctx := context.Background()
	owner := Actor{UserID: f.owner.ID}
	soon := testNow.Add(time.Minute)
	later := testNow.Add(time.Hour)

	a, _ := f.svc.Create(ctx, owner, SurveyInput{TopicID: f.topic.ID, Title: "A", Status: domain.StatusActive, EndAt: &soon})
	b, _ := f.svc.Create(ctx, owner, SurveyInput{TopicID: f.topic.ID, Title: "B", Status: domain.StatusActive, EndAt: &later})

	closed, err := f.svc.CloseIfDue(ctx, a.ID)
	if err != nil || closed {
		t.Fatalf("not yet due: closed=%v err=%v", closed, err)
	}

	f.sched.scheduled = map[uint]time.Time{}
	n, err := f.svc.ScheduleOpen(ctx)
	if err != nil || n != 2 {
		t.Fatalf("ScheduleOpen = %d err=%v", n, err)
	}

	f.svc.Now = func() time.Time { return testNow.Add(2 * time.Minute) }
	closed, err = f.svc.CloseIfDue(ctx, a.ID)
	if err != nil || !closed {
		t.Fatalf("due: closed=%v err=%v", closed, err)
	}
	again, _ := f.svc.CloseIfDue(ctx, a.ID)
	if again {
		t.Fatalf("closing twice should be a no-op")
	}
	if closed, _ := f.svc.CloseIfDue(ctx, b.ID); closed {
		t.Fatalf("B is not due yet")
	}
	if closed, err := f.svc.CloseIfDue(ctx, 999); closed || err != nil {
		t.Fatalf("unknown survey: closed=%v err=%v", closed, err)
	}

	stored, _ := repo.GetSurvey(ctx, f.svc.DB, a.ID)
	if stored.Status != domain.StatusClosed {
		t.Fatalf("status = %q", stored.Status)
	}
}
