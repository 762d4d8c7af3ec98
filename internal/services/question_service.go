// Package services – QuestionService
//
// This file implements question administration inside a survey: add,
// update, delete and reorder. Inputs are normalized per type before they are
// stored: rating and nps bounds get defaults, choice questions need at least
// two non-blank choices given one per line.
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/tbourn/go-survey-backend/internal/domain"
	"github.com/tbourn/go-survey-backend/internal/repo"

	// OpenTelemetry
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const maxChoiceRunes = 500

// QuestionService manages the questions of a survey.
type QuestionService struct {
	DB *gorm.DB
}

// QuestionInput carries the editable fields of a question. ChoicesText holds
// one choice per line for single and multi questions.
type QuestionInput struct {
	Text        string
	Type        string
	IsRequired  bool
	MinValue    *decimal.Decimal
	MaxValue    *decimal.Decimal
	MaxLength   *int
	ChoicesText string
	ImagePath   string
}

// BuildQuestion normalizes in and returns the question it describes, with
// choices numbered from 1. OrderIndex and SurveyID are left to the caller.
func BuildQuestion(in QuestionInput) (*domain.Question, error) {
	q := &domain.Question{
		Text:       strings.TrimSpace(in.Text),
		Type:       strings.ToLower(strings.TrimSpace(in.Type)),
		IsRequired: in.IsRequired,
		ImagePath:  strings.TrimSpace(in.ImagePath),
	}
	if q.Text == "" {
		return nil, fmt.Errorf("%w: Vui lòng nhập nội dung câu hỏi.", ErrInvalidQuestion)
	}

	switch q.Type {
	case domain.QuestionSingle, domain.QuestionMulti:
		for _, line := range SplitChoices(in.ChoicesText) {
			if r := []rune(line); len(r) > maxChoiceRunes {
				line = string(r[:maxChoiceRunes])
			}
			q.Choices = append(q.Choices, domain.Choice{OrderIndex: len(q.Choices) + 1, Text: line})
		}
		if len(q.Choices) < 2 {
			return nil, fmt.Errorf("%w: Câu hỏi lựa chọn cần ít nhất 2 phương án.", ErrInvalidQuestion)
		}

	case domain.QuestionRating, domain.QuestionNPS:
		lo, hi := decimal.NewFromInt(1), decimal.NewFromInt(5)
		if q.Type == domain.QuestionNPS {
			lo, hi = decimal.Zero, decimal.NewFromInt(10)
		}
		if in.MinValue != nil {
			lo = *in.MinValue
		}
		if in.MaxValue != nil {
			hi = *in.MaxValue
		}
		if !hi.GreaterThan(lo) {
			return nil, fmt.Errorf("%w: Giá trị Max phải lớn hơn Min.", ErrInvalidQuestion)
		}
		q.MinValue, q.MaxValue = &lo, &hi

	case domain.QuestionText:
		if in.MaxLength != nil {
			if *in.MaxLength < 0 {
				return nil, fmt.Errorf("%w: max length must not be negative", ErrInvalidQuestion)
			}
			if *in.MaxLength > 0 {
				n := *in.MaxLength
				q.MaxLength = &n
			}
		}

	default:
		return nil, fmt.Errorf("%w: unsupported type %q", ErrInvalidQuestion, in.Type)
	}
	return q, nil
}

// SplitChoices returns the trimmed non-blank lines of text.
func SplitChoices(text string) []string {
	var out []string
	for _, line := range strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n") {
		if t := strings.TrimSpace(line); t != "" {
			out = append(out, t)
		}
	}
	return out
}

func (s *QuestionService) managedSurvey(ctx context.Context, actor Actor, surveyID uint) (*domain.Survey, error) {
	sv, err := repo.GetSurvey(ctx, s.DB, surveyID)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, ErrSurveyNotFound
	}
	if err != nil {
		return nil, err
	}
	return sv, actor.canManageSurvey(sv)
}

func (s *QuestionService) managedQuestion(ctx context.Context, actor Actor, id uint) (*domain.Question, error) {
	q, err := repo.GetQuestion(ctx, s.DB, id)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, ErrQuestionNotFound
	}
	if err != nil {
		return nil, err
	}
	if _, err := s.managedSurvey(ctx, actor, q.SurveyID); err != nil {
		return nil, err
	}
	return q, nil
}

// Add appends a question at the end of a survey.
func (s *QuestionService) Add(ctx context.Context, actor Actor, surveyID uint, in QuestionInput) (*domain.Question, error) {
	tr := otel.Tracer("services/QuestionService")
	ctx, span := tr.Start(ctx, "Add",
		trace.WithAttributes(
			attribute.Int("survey.id", int(surveyID)),
			attribute.String("question.type", in.Type),
		),
	)
	defer span.End()

	if _, err := s.managedSurvey(ctx, actor, surveyID); err != nil {
		return nil, err
	}
	q, err := BuildQuestion(in)
	if err != nil {
		return nil, err
	}
	q.SurveyID = surveyID

	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		next, err := repo.NextQuestionOrder(ctx, tx, surveyID)
		if err != nil {
			return err
		}
		q.OrderIndex = next
		return repo.CreateQuestion(ctx, tx, q)
	})
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	return q, nil
}

// Update replaces a question's fields. Choices are re-created in order.
func (s *QuestionService) Update(ctx context.Context, actor Actor, id uint, in QuestionInput) (*domain.Question, error) {
	tr := otel.Tracer("services/QuestionService")
	ctx, span := tr.Start(ctx, "Update",
		trace.WithAttributes(attribute.Int("question.id", int(id))),
	)
	defer span.End()

	cur, err := s.managedQuestion(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	q, err := BuildQuestion(in)
	if err != nil {
		return nil, err
	}
	q.ID = cur.ID
	q.SurveyID = cur.SurveyID
	q.OrderIndex = cur.OrderIndex

	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return repo.UpdateQuestion(ctx, tx, q)
	})
	if errors.Is(err, repo.ErrNotFound) {
		return nil, ErrQuestionNotFound
	}
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	return repo.GetQuestion(ctx, s.DB, id)
}

// Delete removes a question, its choices and its recorded answers.
func (s *QuestionService) Delete(ctx context.Context, actor Actor, id uint) error {
	tr := otel.Tracer("services/QuestionService")
	ctx, span := tr.Start(ctx, "Delete",
		trace.WithAttributes(attribute.Int("question.id", int(id))),
	)
	defer span.End()

	if _, err := s.managedQuestion(ctx, actor, id); err != nil {
		return err
	}
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return repo.DeleteQuestion(ctx, tx, id)
	})
	if errors.Is(err, repo.ErrNotFound) {
		return ErrQuestionNotFound
	}
	return err
}

// Reorder assigns positions 1..n following ids, which must list every
// question of the survey exactly once.
func (s *QuestionService) Reorder(ctx context.Context, actor Actor, surveyID uint, ids []uint) error {
	tr := otel.Tracer("services/QuestionService")
	ctx, span := tr.Start(ctx, "Reorder",
		trace.WithAttributes(
			attribute.Int("survey.id", int(surveyID)),
			attribute.Int("questions", len(ids)),
		),
	)
	defer span.End()

	if _, err := s.managedSurvey(ctx, actor, surveyID); err != nil {
		return err
	}
	current, err := repo.ListQuestionIDs(ctx, s.DB, surveyID)
	if err != nil {
		return err
	}
	if !samePermutation(current, ids) {
		return ErrInvalidOrder
	}
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return repo.ReorderQuestions(ctx, tx, surveyID, ids)
	})
}

func samePermutation(want, got []uint) bool {
	if len(want) != len(got) {
		return false
	}
	set := make(map[uint]int, len(want))
	for _, id := range want {
		set[id]++
	}
	for _, id := range got {
		if set[id] == 0 {
			return false
		}
		set[id]--
	}
	return true
}
