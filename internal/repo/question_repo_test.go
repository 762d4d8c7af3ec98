package repo

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/tbourn/go-survey-backend/internal/domain"
)

func TestQuestionLifecycle(t *testing.T) {
	db := newSchemaDB(t)
	ctx := context.Background()
	tp := seedTopic(t, db, "general")

	s := &domain.Survey{OwnerUserID: 1, TopicID: tp.ID, Title: "q", Status: domain.StatusDraft}
	if err := CreateSurvey(ctx, db, s); err != nil {
		t.Fatalf("CreateSurvey: %v", err)
	}

	next, err := NextQuestionOrder(ctx, db, s.ID)
	if err != nil || next != 1 {
		t.Fatalf("NextQuestionOrder empty = %d, %v", next, err)
	}

	q1 := &domain.Question{SurveyID: s.ID, OrderIndex: 1, Text: "Color?", Type: domain.QuestionSingle,
		Choices: []domain.Choice{{OrderIndex: 1, Text: "Red"}, {OrderIndex: 2, Text: "Blue"}}}
	q2 := &domain.Question{SurveyID: s.ID, OrderIndex: 2, Text: "Why?", Type: domain.QuestionText}
	for _, q := range []*domain.Question{q1, q2} {
		if err := CreateQuestion(ctx, db, q); err != nil {
			t.Fatalf("CreateQuestion: %v", err)
		}
	}
	next, _ = NextQuestionOrder(ctx, db, s.ID)
	if next != 3 {
		t.Fatalf("NextQuestionOrder = %d, want 3", next)
	}

	// Replace choices.
	q1.Text = "Colour?"
	q1.Choices = []domain.Choice{{OrderIndex: 1, Text: "Green"}}
	if err := UpdateQuestion(ctx, db, q1); err != nil {
		t.Fatalf("UpdateQuestion: %v", err)
	}
	got, err := GetQuestion(ctx, db, q1.ID)
	if err != nil {
		t.Fatalf("GetQuestion: %v", err)
	}
	if got.Text != "Colour?" || len(got.Choices) != 1 || got.Choices[0].Text != "Green" {
		t.Fatalf("update not applied: %+v", got)
	}

	if err := UpdateQuestion(ctx, db, &domain.Question{ID: 999, Text: "x", Type: domain.QuestionText}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	// Reverse order.
	if err := ReorderQuestions(ctx, db, s.ID, []uint{q2.ID, q1.ID}); err != nil {
		t.Fatalf("ReorderQuestions: %v", err)
	}
	ids, _ := ListQuestionIDs(ctx, db, s.ID)
	if len(ids) != 2 || ids[0] != q2.ID || ids[1] != q1.ID {
		t.Fatalf("order = %v", ids)
	}
	if err := ReorderQuestions(ctx, db, s.ID, []uint{999}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for foreign id, got %v", err)
	}
}

func TestDeleteQuestion_RemovesAnswers(t *testing.T) {
	db := newSchemaDB(t)
	ctx := context.Background()
	tp := seedTopic(t, db, "general")

	s := &domain.Survey{OwnerUserID: 1, TopicID: tp.ID, Title: "q", Status: domain.StatusActive}
	if err := CreateSurvey(ctx, db, s); err != nil {
		t.Fatalf("CreateSurvey: %v", err)
	}
	q := &domain.Question{SurveyID: s.ID, OrderIndex: 1, Text: "Why?", Type: domain.QuestionText}
	if err := CreateQuestion(ctx, db, q); err != nil {
		t.Fatalf("CreateQuestion: %v", err)
	}
	txt := "because"
	now := time.Now().UTC()
	seedResponse(t, db, s.ID, now, &now, domain.ResponseDetail{QuestionID: q.ID, AnswerText: &txt})

	if err := DeleteQuestion(ctx, db, q.ID); err != nil {
		t.Fatalf("DeleteQuestion: %v", err)
	}
	details, _ := ListSurveyDetails(ctx, db, s.ID)
	if len(details) != 0 {
		t.Fatalf("answers should be removed, got %d", len(details))
	}
	if err := DeleteQuestion(ctx, db, q.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
