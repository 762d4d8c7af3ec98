package services

import (
	"context"
	"sort"
	"time"

	"gorm.io/gorm"

	"github.com/tbourn/go-survey-backend/internal/repo"

	// OpenTelemetry
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// ReportService lists response counts per survey.
type ReportService struct {
	DB *gorm.DB
}

// SurveyReport is one line of the reports listing.
type SurveyReport struct {
	SurveyID           uint       `json:"survey_id"`
	Title              string     `json:"title"`
	Status             string     `json:"status"`
	TotalResponses     int64      `json:"total_responses"`
	CompletedResponses int64      `json:"completed_responses"`
	LastResponseAt     *time.Time `json:"last_response_at,omitempty"`
}

// List returns the surveys visible to actor, most recently active first.
// Surveys without responses follow, newest first.
func (s *ReportService) List(ctx context.Context, actor Actor) ([]SurveyReport, error) {
	tr := otel.Tracer("services/ReportService")
	ctx, span := tr.Start(ctx, "List",
		trace.WithAttributes(attribute.Bool("actor.admin", actor.IsAdmin)),
	)
	defer span.End()

	rows, err := repo.ListReportRows(ctx, s.DB, actor.ownerFilter())
	if err != nil {
		return nil, err
	}

	activity := func(r repo.ReportRow) time.Time {
		if r.LastResponseAt != nil {
			return *r.LastResponseAt
		}
		return r.CreatedAt
	}
	sort.SliceStable(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if (a.LastResponseAt == nil) != (b.LastResponseAt == nil) {
			return a.LastResponseAt != nil
		}
		return activity(a).After(activity(b))
	})

	out := make([]SurveyReport, len(rows))
	for i, r := range rows {
		out[i] = SurveyReport{
			SurveyID:           r.SurveyID,
			Title:              r.Title,
			Status:             r.Status,
			TotalResponses:     r.Total,
			CompletedResponses: r.Completed,
			LastResponseAt:     r.LastResponseAt,
		}
	}
	return out, nil
}
