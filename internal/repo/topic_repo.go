// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for catalog topics.
package repo

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/tbourn/go-survey-backend/internal/domain"
)

// CreateTopic inserts t with a UTC timestamp.
func CreateTopic(ctx context.Context, db *gorm.DB, t *domain.Topic) error {
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now().UTC()
	}
	return db.WithContext(ctx).Create(t).Error
}

// ListTopics returns every topic ordered by name.
func ListTopics(ctx context.Context, db *gorm.DB) ([]domain.Topic, error) {
	var out []domain.Topic
	err := db.WithContext(ctx).Order("name asc, id asc").Find(&out).Error
	return out, err
}

// GetTopic fetches a topic by id.
func GetTopic(ctx context.Context, db *gorm.DB, id uint) (*domain.Topic, error) {
	var t domain.Topic
	if err := db.WithContext(ctx).Where("id = ?", id).First(&t).Error; err != nil {
		return nil, err
	}
	return &t, nil
}

// UpdateTopic writes the name and slug of t.
func UpdateTopic(ctx context.Context, db *gorm.DB, t *domain.Topic) error {
	res := db.WithContext(ctx).
		Model(&domain.Topic{}).
		Where("id = ?", t.ID).
		Updates(map[string]any{"name": t.Name, "slug": t.Slug})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// DeleteTopic removes a topic by id.
func DeleteTopic(ctx context.Context, db *gorm.DB, id uint) error {
	res := db.WithContext(ctx).Delete(&domain.Topic{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// SlugTaken reports whether another topic (id != exceptID) already uses slug.
func SlugTaken(ctx context.Context, db *gorm.DB, slug string, exceptID uint) (bool, error) {
	var n int64
	err := db.WithContext(ctx).
		Model(&domain.Topic{}).
		Where("slug = ? AND id <> ?", slug, exceptID).
		Count(&n).Error
	return n > 0, err
}

// TopicInUse reports whether any survey references the topic.
func TopicInUse(ctx context.Context, db *gorm.DB, id uint) (bool, error) {
	var n int64
	err := db.WithContext(ctx).
		Model(&domain.Survey{}).
		Where("topic_id = ?", id).
		Count(&n).Error
	return n > 0, err
}
