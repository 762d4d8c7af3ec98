package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tbourn/go-survey-backend/internal/domain"
	"github.com/tbourn/go-survey-backend/internal/repo"
)

// submission is a finished set of answers ready to be stored.
type submission struct {
	SurveyID    uint
	UserID      *uint
	Email       *string
	StartedAt   time.Time
	SubmittedAt time.Time
	Details     []domain.ResponseDetail
}

// persist writes one respondent, one response and its details in a single
// transaction and returns the stored response. Extra work may run inside
// the same transaction through also.
func (sub submission) persist(ctx context.Context, db *gorm.DB, also func(tx *gorm.DB, r *domain.Response) error) (*domain.Response, error) {
	respondent := &domain.Respondent{
		ID:        uuid.NewString(),
		UserID:    sub.UserID,
		Email:     sub.Email,
		CreatedAt: sub.SubmittedAt,
	}
	submitted := sub.SubmittedAt
	response := &domain.Response{
		SurveyID:    sub.SurveyID,
		StartedAt:   sub.StartedAt,
		SubmittedAt: &submitted,
		Details:     sub.Details,
	}

	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := repo.CreateSubmission(ctx, tx, respondent, response); err != nil {
			return err
		}
		if also != nil {
			return also(tx, response)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return response, nil
}
