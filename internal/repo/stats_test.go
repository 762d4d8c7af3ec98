package repo

import (
	"context"
	"fmt"
	"testing"
	"time"

	sqlite "github.com/glebarez/sqlite" // pure-Go SQLite (no CGO)
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/tbourn/go-survey-backend/internal/domain"
)

func newTestDB(t *testing.T, migrate ...any) *gorm.DB {
	t.Helper()
	// Unique DB per test to avoid schema leaking across tests.
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	db.Exec("PRAGMA foreign_keys=ON;")
	if len(migrate) > 0 {
		if err := db.AutoMigrate(migrate...); err != nil {
			t.Fatalf("automigrate: %v", err)
		}
	}
	return db
}

// newSchemaDB returns a test DB with the full schema migrated.
func newSchemaDB(t *testing.T) *gorm.DB {
	t.Helper()
	db := newTestDB(t)
	if err := AutoMigrate(db); err != nil {
		t.Fatalf("AutoMigrate: %v", err)
	}
	return db
}

// seedTopic inserts a topic with the given slug.
func seedTopic(t *testing.T, db *gorm.DB, slug string) *domain.Topic {
	t.Helper()
	tp := &domain.Topic{Name: slug, Slug: slug}
	if err := CreateTopic(context.Background(), db, tp); err != nil {
		t.Fatalf("seed topic: %v", err)
	}
	return tp
}

// seedResponse inserts a respondent and a response for surveyID.
func seedResponse(t *testing.T, db *gorm.DB, surveyID uint, started time.Time, submitted *time.Time, details ...domain.ResponseDetail) *domain.Response {
	t.Helper()
	rd := &domain.Respondent{ID: fmt.Sprintf("r-%d-%d", surveyID, started.UnixNano())}
	r := &domain.Response{SurveyID: surveyID, StartedAt: started, SubmittedAt: submitted, Details: details}
	if err := CreateSubmission(context.Background(), db, rd, r); err != nil {
		t.Fatalf("seed response: %v", err)
	}
	return r
}

func TestResponsesStats_NoRows(t *testing.T) {
	db := newSchemaDB(t)
	count, maxAt, err := ResponsesStats(context.Background(), db, 1)
	if err != nil || count != 0 || maxAt != nil {
		t.Fatalf("got (%d, %v, %v)", count, maxAt, err)
	}
}

func TestResponsesStats_NoTable(t *testing.T) {
	db := newTestDB(t)
	if _, _, err := ResponsesStats(context.Background(), db, 1); err == nil {
		t.Fatalf("expected error without schema")
	}
}

func TestResponsesStats_And_ReportRows(t *testing.T) {
	db := newSchemaDB(t)
	ctx := context.Background()
	tp := seedTopic(t, db, "general")

	s1 := &domain.Survey{OwnerUserID: 1, TopicID: tp.ID, Title: "one", Status: domain.StatusActive}
	s2 := &domain.Survey{OwnerUserID: 1, TopicID: tp.ID, Title: "two", Status: domain.StatusDraft}
	s3 := &domain.Survey{OwnerUserID: 2, TopicID: tp.ID, Title: "three", Status: domain.StatusDraft}
	for _, s := range []*domain.Survey{s1, s2, s3} {
		if err := CreateSurvey(ctx, db, s); err != nil {
			t.Fatalf("seed survey: %v", err)
		}
	}

	base := time.Date(2025, 4, 1, 8, 0, 0, 0, time.UTC)
	sub := base.Add(3 * time.Hour)
	seedResponse(t, db, s1.ID, base, &sub)
	seedResponse(t, db, s1.ID, base.Add(time.Hour), nil)

	count, maxAt, err := ResponsesStats(ctx, db, s1.ID)
	if err != nil || count != 2 || maxAt == nil || !maxAt.Equal(base.Add(time.Hour)) {
		t.Fatalf("ResponsesStats got (%d, %v, %v)", count, maxAt, err)
	}

	rows, err := ListReportRows(ctx, db, 1)
	if err != nil {
		t.Fatalf("ListReportRows: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows for owner 1, got %d", len(rows))
	}
	var one, two *ReportRow
	for i := range rows {
		switch rows[i].SurveyID {
		case s1.ID:
			one = &rows[i]
		case s2.ID:
			two = &rows[i]
		}
	}
	if one == nil || one.Total != 2 || one.Completed != 1 || one.LastResponseAt == nil || !one.LastResponseAt.Equal(sub) {
		t.Fatalf("unexpected row for s1: %+v", one)
	}
	if two == nil || two.Total != 0 || two.LastResponseAt != nil {
		t.Fatalf("unexpected row for s2: %+v", two)
	}
}
