// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for questions and
// their choices.
package repo

import (
	"context"

	"gorm.io/gorm"

	"github.com/tbourn/go-survey-backend/internal/domain"
)

// GetQuestion fetches a question by id with its choices in display order.
func GetQuestion(ctx context.Context, db *gorm.DB, id uint) (*domain.Question, error) {
	var q domain.Question
	err := db.WithContext(ctx).
		Preload("Choices", orderedChoices).
		Where("id = ?", id).
		First(&q).Error
	if err != nil {
		return nil, err
	}
	return &q, nil
}

// ListQuestionIDs returns the ids of a survey's questions in display order.
func ListQuestionIDs(ctx context.Context, db *gorm.DB, surveyID uint) ([]uint, error) {
	var ids []uint
	err := db.WithContext(ctx).
		Model(&domain.Question{}).
		Where("survey_id = ?", surveyID).
		Order("order_index ASC, id ASC").
		Pluck("id", &ids).Error
	return ids, err
}

// NextQuestionOrder returns the OrderIndex a new question should take, i.e.
// one past the current maximum (1 for an empty survey).
func NextQuestionOrder(ctx context.Context, db *gorm.DB, surveyID uint) (int, error) {
	var max int
	err := db.WithContext(ctx).
		Model(&domain.Question{}).
		Where("survey_id = ?", surveyID).
		Select("COALESCE(MAX(order_index), 0)").
		Scan(&max).Error
	if err != nil {
		return 0, err
	}
	return max + 1, nil
}

// CreateQuestion inserts q together with q.Choices.
func CreateQuestion(ctx context.Context, db *gorm.DB, q *domain.Question) error {
	return db.WithContext(ctx).Create(q).Error
}

// UpdateQuestion writes the editable columns of q and replaces its choices
// with q.Choices. Callers should run it inside a transaction.
func UpdateQuestion(ctx context.Context, db *gorm.DB, q *domain.Question) error {
	tx := db.WithContext(ctx)
	res := tx.Model(&domain.Question{}).
		Where("id = ?", q.ID).
		Select("text", "type", "is_required", "min_value", "max_value", "max_length", "image_path").
		Updates(q)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	if err := tx.Where("question_id = ?", q.ID).Delete(&domain.Choice{}).Error; err != nil {
		return err
	}
	if len(q.Choices) == 0 {
		return nil
	}
	for i := range q.Choices {
		q.Choices[i].ID = 0
		q.Choices[i].QuestionID = q.ID
	}
	return tx.Create(&q.Choices).Error
}

// DeleteQuestion removes a question, its choices (cascade) and any answer
// rows recorded for it. Callers should run it inside a transaction.
func DeleteQuestion(ctx context.Context, db *gorm.DB, id uint) error {
	tx := db.WithContext(ctx)
	if err := tx.Where("question_id = ?", id).Delete(&domain.ResponseDetail{}).Error; err != nil {
		return err
	}
	res := tx.Delete(&domain.Question{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// ReorderQuestions assigns OrderIndex 1..n following ids. Every id must belong
// to surveyID, otherwise ErrNotFound is returned. Callers should run it inside
// a transaction.
func ReorderQuestions(ctx context.Context, db *gorm.DB, surveyID uint, ids []uint) error {
	tx := db.WithContext(ctx)
	for i, id := range ids {
		res := tx.Model(&domain.Question{}).
			Where("id = ? AND survey_id = ?", id, surveyID).
			Update("order_index", i+1)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
	}
	return nil
}
