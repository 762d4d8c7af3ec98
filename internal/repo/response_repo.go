// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for respondents,
// responses and their answer rows.
//
// Functions:
//
//   - CreateSubmission(ctx, db, respondent, response) -> error
//     Inserts the respondent, the response and its details. Callers run it
//     inside a transaction so the three inserts commit together.
//
//   - GetResponse(ctx, db, id) -> *domain.Response, error
//     Fetches a response with its details.
//
//   - ListResponses(ctx, db, surveyID) -> []domain.Response, error
//     All responses of a survey ordered by StartedAt ascending.
//
//   - ListSubmittedResponses(ctx, db, surveyID) -> []domain.Response, error
//     Submitted responses with details preloaded (export).
//
//   - ListSurveyDetails(ctx, db, surveyID) -> []domain.ResponseDetail, error
//     Every answer row recorded for a survey.
//
//   - CountResponses(ctx, db, surveyID) -> int64, error
package repo

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/tbourn/go-survey-backend/internal/domain"
)

// CreateSubmission inserts respondent, then response with response.Details.
// The response's RespondentID is set from the respondent.
func CreateSubmission(ctx context.Context, db *gorm.DB, respondent *domain.Respondent, response *domain.Response) error {
	tx := db.WithContext(ctx)
	if respondent.CreatedAt.IsZero() {
		respondent.CreatedAt = time.Now().UTC()
	}
	if err := tx.Create(respondent).Error; err != nil {
		return err
	}
	response.RespondentID = respondent.ID
	return tx.Omit("Survey", "Respondent").Create(response).Error
}

// GetResponse fetches a response by id with its details.
func GetResponse(ctx context.Context, db *gorm.DB, id uint) (*domain.Response, error) {
	var r domain.Response
	err := db.WithContext(ctx).
		Preload("Details").
		Where("id = ?", id).
		First(&r).Error
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// ListResponses returns every response of a survey ordered by StartedAt.
func ListResponses(ctx context.Context, db *gorm.DB, surveyID uint) ([]domain.Response, error) {
	var out []domain.Response
	err := db.WithContext(ctx).
		Where("survey_id = ?", surveyID).
		Order("started_at asc, id asc").
		Find(&out).Error
	return out, err
}

// ListSubmittedResponses returns submitted responses of a survey with their
// details, ordered by SubmittedAt.
func ListSubmittedResponses(ctx context.Context, db *gorm.DB, surveyID uint) ([]domain.Response, error) {
	var out []domain.Response
	err := db.WithContext(ctx).
		Preload("Details", func(db *gorm.DB) *gorm.DB { return db.Order("id asc") }).
		Where("survey_id = ? AND submitted_at IS NOT NULL", surveyID).
		Order("submitted_at asc, id asc").
		Find(&out).Error
	return out, err
}

// ListSurveyDetails returns every answer row recorded for surveyID.
func ListSurveyDetails(ctx context.Context, db *gorm.DB, surveyID uint) ([]domain.ResponseDetail, error) {
	var out []domain.ResponseDetail
	err := db.WithContext(ctx).
		Joins("JOIN responses ON responses.id = response_details.response_id").
		Where("responses.survey_id = ?", surveyID).
		Order("response_details.id asc").
		Find(&out).Error
	return out, err
}

// CountResponses returns the number of responses (any state) of a survey.
func CountResponses(ctx context.Context, db *gorm.DB, surveyID uint) (int64, error) {
	var total int64
	err := db.WithContext(ctx).
		Model(&domain.Response{}).
		Where("survey_id = ?", surveyID).
		Count(&total).Error
	return total, err
}
