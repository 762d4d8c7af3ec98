// Package services – SurveyService
//
// This file implements survey administration: create, read, list, update,
// delete and the scheduled auto-close. Only the owner or an Admin may manage
// a survey. Activating a survey with an end time schedules a close task at
// that time through the optional CloseScheduler.
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/tbourn/go-survey-backend/internal/domain"
	"github.com/tbourn/go-survey-backend/internal/repo"
	"github.com/tbourn/go-survey-backend/internal/utils"

	// OpenTelemetry
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const maxSurveyTitleRunes = 300

// CloseScheduler schedules the automatic close of a survey at its end time.
type CloseScheduler interface {
	ScheduleClose(ctx context.Context, surveyID uint, at time.Time) error
	CancelClose(ctx context.Context, surveyID uint) error
}

// SurveyService manages surveys.
type SurveyService struct {
	DB *gorm.DB

	// Scheduler is optional; without it surveys only close manually.
	Scheduler CloseScheduler

	Now func() time.Time
}

// SurveyInput carries the editable fields of a survey.
type SurveyInput struct {
	TopicID        uint
	Title          string
	Description    string
	Status         string
	IsAnonymous    bool
	StartAt        *time.Time
	EndAt          *time.Time
	CoverImagePath string
}

// normalize trims fields and defaults the status to draft.
func (in *SurveyInput) normalize() {
	in.Title = strings.TrimSpace(in.Title)
	in.Description = strings.TrimSpace(in.Description)
	in.CoverImagePath = strings.TrimSpace(in.CoverImagePath)
	in.Status = strings.ToLower(strings.TrimSpace(in.Status))
	if in.Status == "" {
		in.Status = domain.StatusDraft
	}
	if in.StartAt != nil {
		t := in.StartAt.UTC()
		in.StartAt = &t
	}
	if in.EndAt != nil {
		t := in.EndAt.UTC()
		in.EndAt = &t
	}
}

func (in SurveyInput) validate() error {
	switch {
	case in.Title == "":
		return fmt.Errorf("%w: title is required", ErrInvalidSurvey)
	case utf8.RuneCountInString(in.Title) > maxSurveyTitleRunes:
		return fmt.Errorf("%w: title exceeds %d characters", ErrInvalidSurvey, maxSurveyTitleRunes)
	case !ValidStatus(in.Status):
		return fmt.Errorf("%w: invalid status %q", ErrInvalidSurvey, in.Status)
	case in.TopicID == 0:
		return fmt.Errorf("%w: topic is required", ErrInvalidSurvey)
	case in.StartAt != nil && in.EndAt != nil && in.EndAt.Before(*in.StartAt):
		return fmt.Errorf("%w: end time is before start time", ErrInvalidSurvey)
	}
	return nil
}

// ValidStatus reports whether status is draft, active or closed.
func ValidStatus(status string) bool {
	switch status {
	case domain.StatusDraft, domain.StatusActive, domain.StatusClosed:
		return true
	}
	return false
}

func (s *SurveyService) checkTopic(ctx context.Context, topicID uint) error {
	_, err := repo.GetTopic(ctx, s.DB, topicID)
	if errors.Is(err, repo.ErrNotFound) {
		return ErrTopicNotFound
	}
	return err
}

// Create validates in and stores a survey owned by actor.
func (s *SurveyService) Create(ctx context.Context, actor Actor, in SurveyInput) (*domain.Survey, error) {
	tr := otel.Tracer("services/SurveyService")
	ctx, span := tr.Start(ctx, "Create",
		trace.WithAttributes(attribute.Int("user.id", int(actor.UserID))),
	)
	defer span.End()

	if actor.UserID == 0 {
		return nil, ErrForbidden
	}
	in.normalize()
	if err := in.validate(); err != nil {
		return nil, err
	}
	if err := s.checkTopic(ctx, in.TopicID); err != nil {
		return nil, err
	}

	sv := &domain.Survey{
		OwnerUserID:    actor.UserID,
		TopicID:        in.TopicID,
		Title:          in.Title,
		Description:    in.Description,
		Status:         in.Status,
		IsAnonymous:    in.IsAnonymous,
		StartAt:        in.StartAt,
		EndAt:          in.EndAt,
		CoverImagePath: in.CoverImagePath,
		CreatedAt:      clock(s.Now),
	}
	if err := repo.CreateSurvey(ctx, s.DB, sv); err != nil {
		span.RecordError(err)
		return nil, err
	}
	s.syncSchedule(ctx, sv)
	return sv, nil
}

// Get returns the survey tree if actor may manage it.
func (s *SurveyService) Get(ctx context.Context, actor Actor, id uint) (*domain.Survey, error) {
	tr := otel.Tracer("services/SurveyService")
	ctx, span := tr.Start(ctx, "Get",
		trace.WithAttributes(attribute.Int("survey.id", int(id))),
	)
	defer span.End()

	sv, err := repo.GetSurveyTree(ctx, s.DB, id)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, ErrSurveyNotFound
	}
	if err != nil {
		return nil, err
	}
	if err := actor.canManageSurvey(sv); err != nil {
		return nil, err
	}
	return sv, nil
}

// ListPage returns a page of surveys visible to actor and the total count.
func (s *SurveyService) ListPage(ctx context.Context, actor Actor, page, pageSize int) ([]domain.Survey, int64, error) {
	tr := otel.Tracer("services/SurveyService")
	ctx, span := tr.Start(ctx, "ListPage",
		trace.WithAttributes(
			attribute.Int("user.id", int(actor.UserID)),
			attribute.Int("page", page),
			attribute.Int("page_size", pageSize),
		),
	)
	defer span.End()

	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}
	owner := actor.ownerFilter()
	total, err := repo.CountSurveys(ctx, s.DB, owner)
	if err != nil {
		return nil, 0, err
	}
	if total == 0 {
		return []domain.Survey{}, 0, nil
	}
	items, err := repo.ListSurveysPage(ctx, s.DB, owner, utils.Offset(page, pageSize), pageSize)
	return items, total, err
}

// Update replaces the editable fields of a survey.
func (s *SurveyService) Update(ctx context.Context, actor Actor, id uint, in SurveyInput) (*domain.Survey, error) {
	tr := otel.Tracer("services/SurveyService")
	ctx, span := tr.Start(ctx, "Update",
		trace.WithAttributes(attribute.Int("survey.id", int(id))),
	)
	defer span.End()

	sv, err := s.loadManaged(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	in.normalize()
	if err := in.validate(); err != nil {
		return nil, err
	}
	if in.TopicID != sv.TopicID {
		if err := s.checkTopic(ctx, in.TopicID); err != nil {
			return nil, err
		}
	}

	sv.TopicID = in.TopicID
	sv.Title = in.Title
	sv.Description = in.Description
	sv.Status = in.Status
	sv.IsAnonymous = in.IsAnonymous
	sv.StartAt = in.StartAt
	sv.EndAt = in.EndAt
	sv.CoverImagePath = in.CoverImagePath
	sv.Topic = nil

	if err := repo.UpdateSurvey(ctx, s.DB, sv); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrSurveyNotFound
		}
		span.RecordError(err)
		return nil, err
	}
	s.syncSchedule(ctx, sv)
	return sv, nil
}

// Delete removes a survey without responses.
func (s *SurveyService) Delete(ctx context.Context, actor Actor, id uint) error {
	tr := otel.Tracer("services/SurveyService")
	ctx, span := tr.Start(ctx, "Delete",
		trace.WithAttributes(attribute.Int("survey.id", int(id))),
	)
	defer span.End()

	if _, err := s.loadManaged(ctx, actor, id); err != nil {
		return err
	}
	n, err := repo.CountResponses(ctx, s.DB, id)
	if err != nil {
		return err
	}
	if n > 0 {
		return ErrSurveyHasResponses
	}
	if err := repo.DeleteSurvey(ctx, s.DB, id); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return ErrSurveyNotFound
		}
		return err
	}
	if s.Scheduler != nil {
		if err := s.Scheduler.CancelClose(ctx, id); err != nil {
			zerolog.Ctx(ctx).Warn().Err(err).Uint("survey_id", id).Msg("cancel survey close")
		}
	}
	return nil
}

// CloseIfDue closes an active survey whose end time has passed. It reports
// whether the status changed. Unknown surveys are not an error.
func (s *SurveyService) CloseIfDue(ctx context.Context, id uint) (bool, error) {
	tr := otel.Tracer("services/SurveyService")
	ctx, span := tr.Start(ctx, "CloseIfDue",
		trace.WithAttributes(attribute.Int("survey.id", int(id))),
	)
	defer span.End()

	sv, err := repo.GetSurvey(ctx, s.DB, id)
	if errors.Is(err, repo.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if sv.Status != domain.StatusActive || sv.EndAt == nil || clock(s.Now).Before(*sv.EndAt) {
		return false, nil
	}
	if err := repo.SetSurveyStatus(ctx, s.DB, id, domain.StatusClosed); err != nil {
		return false, err
	}
	return true, nil
}

// ScheduleOpen (re)schedules the close task of every active survey with a
// future end time. It is run at startup and returns the number scheduled.
func (s *SurveyService) ScheduleOpen(ctx context.Context) (int, error) {
	if s.Scheduler == nil {
		return 0, nil
	}
	items, err := repo.ListSchedulableSurveys(ctx, s.DB, clock(s.Now))
	if err != nil {
		return 0, err
	}
	n := 0
	for _, sv := range items {
		if err := s.Scheduler.ScheduleClose(ctx, sv.ID, *sv.EndAt); err != nil {
			return n, fmt.Errorf("schedule close of survey %d: %w", sv.ID, err)
		}
		n++
	}
	return n, nil
}

func (s *SurveyService) loadManaged(ctx context.Context, actor Actor, id uint) (*domain.Survey, error) {
	sv, err := repo.GetSurvey(ctx, s.DB, id)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, ErrSurveyNotFound
	}
	if err != nil {
		return nil, err
	}
	if err := actor.canManageSurvey(sv); err != nil {
		return nil, err
	}
	return sv, nil
}

// syncSchedule schedules or cancels the close task of sv. Failures are
// logged; the survey itself is already stored.
func (s *SurveyService) syncSchedule(ctx context.Context, sv *domain.Survey) {
	if s.Scheduler == nil {
		return
	}
	var err error
	if sv.Status == domain.StatusActive && sv.EndAt != nil && sv.EndAt.After(clock(s.Now)) {
		err = s.Scheduler.ScheduleClose(ctx, sv.ID, *sv.EndAt)
	} else {
		err = s.Scheduler.CancelClose(ctx, sv.ID)
	}
	if err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Uint("survey_id", sv.ID).Msg("sync survey close schedule")
	}
}
