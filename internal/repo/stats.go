// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides the aggregate queries behind the stats
// ETag and the reports listing.
package repo

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/tbourn/go-survey-backend/internal/domain"
)

// ResponsesStats returns the number of responses of a survey and the latest
// StartedAt among them. Stats pages use it to build a weak ETag.
func ResponsesStats(ctx context.Context, db *gorm.DB, surveyID uint) (count int64, maxStartedAt *time.Time, err error) {
	q := db.WithContext(ctx).Model(&domain.Response{}).Where("survey_id = ?", surveyID)

	if err = q.Count(&count).Error; err != nil {
		return 0, nil, err
	}
	if count == 0 {
		return 0, nil, nil
	}

	var row struct {
		StartedAt time.Time
	}
	if err = q.Select("started_at").Order("started_at DESC").Limit(1).Scan(&row).Error; err != nil {
		return 0, nil, err
	}
	return count, &row.StartedAt, nil
}

// ReportRow summarizes the responses collected by one survey.
type ReportRow struct {
	SurveyID       uint
	Title          string
	Status         string
	CreatedAt      time.Time
	Total          int64
	Completed      int64
	LastResponseAt *time.Time
}

// ListReportRows returns one row per survey visible to ownerID (all when 0).
// Timestamps are reduced in Go to avoid MAX() -> TEXT in SQLite.
func ListReportRows(ctx context.Context, db *gorm.DB, ownerID uint) ([]ReportRow, error) {
	var surveys []domain.Survey
	if err := db.WithContext(ctx).
		Scopes(ownerScope(ownerID)).
		Order("created_at desc, id desc").
		Find(&surveys).Error; err != nil {
		return nil, err
	}
	if len(surveys) == 0 {
		return []ReportRow{}, nil
	}

	ids := make([]uint, len(surveys))
	byID := make(map[uint]*ReportRow, len(surveys))
	out := make([]ReportRow, len(surveys))
	for i, s := range surveys {
		ids[i] = s.ID
		out[i] = ReportRow{SurveyID: s.ID, Title: s.Title, Status: s.Status, CreatedAt: s.CreatedAt}
		byID[s.ID] = &out[i]
	}

	var rows []struct {
		SurveyID    uint
		StartedAt   time.Time
		SubmittedAt *time.Time
	}
	if err := db.WithContext(ctx).
		Model(&domain.Response{}).
		Select("survey_id, started_at, submitted_at").
		Where("survey_id IN ?", ids).
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	for _, r := range rows {
		rr := byID[r.SurveyID]
		if rr == nil {
			continue
		}
		rr.Total++
		last := r.StartedAt
		if r.SubmittedAt != nil {
			rr.Completed++
			last = *r.SubmittedAt
		}
		if rr.LastResponseAt == nil || last.After(*rr.LastResponseAt) {
			t := last
			rr.LastResponseAt = &t
		}
	}
	return out, nil
}
