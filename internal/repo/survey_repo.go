// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the Survey model.
//
// All functions are context-aware and accept a *gorm.DB handle, making them
// safe for use within transactions or connection-scoped operations.
// They follow the "thin repository" approach: no business logic, only CRUD
// persistence and query composition.
//
// Error semantics:
//   - When a survey is not found, functions return gorm.ErrRecordNotFound
//     (also exported here as ErrNotFound for convenience).
//   - On DB errors (constraint violations, connectivity issues, etc.),
//     the raw gorm error is propagated.
//
// Functions:
//
//   - CreateSurvey(ctx, db, s) -> error
//     Inserts a survey (and any nested questions/choices) with a UTC timestamp.
//
//   - GetSurvey(ctx, db, id) -> *domain.Survey, error
//     Fetches a survey with its topic, without questions.
//
//   - GetSurveyTree(ctx, db, id) -> *domain.Survey, error
//     Fetches a survey with questions and choices ordered by OrderIndex.
//
//   - CountSurveys / ListSurveysPage(ctx, db, ownerID, ...)
//     Owner-scoped listing; ownerID 0 lists every survey (admin view).
//
//   - UpdateSurvey / SetSurveyStatus / DeleteSurvey
//     Mutations returning ErrNotFound when no row matched.
//
//   - ListOpenSurveys(ctx, db, now, topicID, limit) -> []domain.Survey, error
//     Active surveys whose optional window contains now, newest first.
//
//   - ListSchedulableSurveys(ctx, db, now) -> []domain.Survey, error
//     Active surveys with an EndAt in the future (auto-close scheduling).
//
// Usage:
//
//	s, err := repo.GetSurveyTree(ctx, db, id)
//	if errors.Is(err, repo.ErrNotFound) {
//	    // handle missing
//	} else if err != nil {
//	    // handle DB failure
//	}
package repo

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/tbourn/go-survey-backend/internal/domain"
)

// ErrNotFound is returned when a requested record does not exist.
// It aliases gorm.ErrRecordNotFound for convenience and consistency
// across the service layer and handlers.
var ErrNotFound = gorm.ErrRecordNotFound

// orderedQuestions preloads questions in display order.
func orderedQuestions(db *gorm.DB) *gorm.DB {
	return db.Order("order_index ASC, id ASC")
}

// orderedChoices preloads choices in display order.
func orderedChoices(db *gorm.DB) *gorm.DB {
	return db.Order("order_index ASC, id ASC")
}

// CreateSurvey inserts s. CreatedAt is set to UTC now when zero. Nested
// questions and choices are created in the same statement batch.
func CreateSurvey(ctx context.Context, db *gorm.DB, s *domain.Survey) error {
	if s.CreatedAt.IsZero() {
		s.CreatedAt = time.Now().UTC()
	}
	return db.WithContext(ctx).Create(s).Error
}

// GetSurvey fetches a survey by id with its topic. Questions are not loaded.
func GetSurvey(ctx context.Context, db *gorm.DB, id uint) (*domain.Survey, error) {
	var s domain.Survey
	err := db.WithContext(ctx).
		Preload("Topic").
		Where("id = ?", id).
		First(&s).Error
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// GetSurveyTree fetches a survey with its topic, questions and choices, both
// ordered by OrderIndex.
func GetSurveyTree(ctx context.Context, db *gorm.DB, id uint) (*domain.Survey, error) {
	var s domain.Survey
	err := db.WithContext(ctx).
		Preload("Topic").
		Preload("Questions", orderedQuestions).
		Preload("Questions.Choices", orderedChoices).
		Where("id = ?", id).
		First(&s).Error
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// ownerScope restricts a surveys query to ownerID unless it is 0.
func ownerScope(ownerID uint) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if ownerID == 0 {
			return db
		}
		return db.Where("owner_user_id = ?", ownerID)
	}
}

// CountSurveys returns the number of surveys owned by ownerID (all when 0).
func CountSurveys(ctx context.Context, db *gorm.DB, ownerID uint) (int64, error) {
	var total int64
	err := db.WithContext(ctx).
		Model(&domain.Survey{}).
		Scopes(ownerScope(ownerID)).
		Count(&total).Error
	return total, err
}

// ListSurveysPage returns a page of surveys owned by ownerID (all when 0),
// newest first, with topics preloaded.
func ListSurveysPage(ctx context.Context, db *gorm.DB, ownerID uint, offset, limit int) ([]domain.Survey, error) {
	var out []domain.Survey
	err := db.WithContext(ctx).
		Preload("Topic").
		Scopes(ownerScope(ownerID)).
		Order("created_at desc, id desc").
		Offset(offset).
		Limit(limit).
		Find(&out).Error
	return out, err
}

// UpdateSurvey persists the editable columns of s. Zero values are written
// as-is (e.g. clearing a description). Returns ErrNotFound when s.ID is unknown.
func UpdateSurvey(ctx context.Context, db *gorm.DB, s *domain.Survey) error {
	res := db.WithContext(ctx).
		Model(&domain.Survey{}).
		Where("id = ?", s.ID).
		Select("topic_id", "title", "description", "status", "is_anonymous", "start_at", "end_at", "cover_image_path").
		Updates(s)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// SetSurveyStatus updates only the status column.
func SetSurveyStatus(ctx context.Context, db *gorm.DB, id uint, status string) error {
	res := db.WithContext(ctx).
		Model(&domain.Survey{}).
		Where("id = ?", id).
		Update("status", status)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// DeleteSurvey removes a survey; questions and choices cascade.
func DeleteSurvey(ctx context.Context, db *gorm.DB, id uint) error {
	res := db.WithContext(ctx).Delete(&domain.Survey{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// ListOpenSurveys returns active surveys whose optional window contains now,
// newest first. topicID 0 means any topic; limit <= 0 means no limit.
func ListOpenSurveys(ctx context.Context, db *gorm.DB, now time.Time, topicID uint, limit int) ([]domain.Survey, error) {
	var out []domain.Survey
	q := db.WithContext(ctx).
		Preload("Topic").
		Where("status = ?", domain.StatusActive).
		Where("start_at IS NULL OR start_at <= ?", now).
		Where("end_at IS NULL OR end_at >= ?", now)
	if topicID != 0 {
		q = q.Where("topic_id = ?", topicID)
	}
	q = q.Order("created_at desc, id desc")
	if limit > 0 {
		q = q.Limit(limit)
	}
	err := q.Find(&out).Error
	return out, err
}

// ListSchedulableSurveys returns active surveys with an EndAt after now.
func ListSchedulableSurveys(ctx context.Context, db *gorm.DB, now time.Time) ([]domain.Survey, error) {
	var out []domain.Survey
	err := db.WithContext(ctx).
		Where("status = ? AND end_at IS NOT NULL AND end_at > ?", domain.StatusActive, now).
		Find(&out).Error
	return out, err
}
