package services

import (
	"context"
	"fmt"
	"strconv"
	"testing"
	"time"

	sqlite "github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/tbourn/go-survey-backend/internal/domain"
	"github.com/tbourn/go-survey-backend/internal/repo"
)

// newSvcDB returns an isolated in-memory database with the full schema.
// A single connection keeps PRAGMAs and transactions on the same handle.
func newSvcDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:svc_%s?mode=memory&cache=shared", uuid.NewString())

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if sqlDB, err := db.DB(); err == nil {
		sqlDB.SetMaxOpenConns(1)
	}
	db.Exec("PRAGMA foreign_keys=ON;")
	if err := repo.AutoMigrate(db); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	return db
}

var testNow = time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return testNow }

func itoa(v uint) string { return strconv.FormatUint(uint64(v), 10) }

func decp(v int64) *decimal.Decimal {
	d := decimal.NewFromInt(v)
	return &d
}

func seedUser(t *testing.T, db *gorm.DB, email string) *domain.User {
	t.Helper()
	u := &domain.User{Email: email, PasswordHash: "x", IsActive: true}
	if err := repo.CreateUser(context.Background(), db, u); err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return u
}

func seedTopic(t *testing.T, db *gorm.DB, name, slug string) *domain.Topic {
	t.Helper()
	tp := &domain.Topic{Name: name, Slug: slug}
	if err := repo.CreateTopic(context.Background(), db, tp); err != nil {
		t.Fatalf("seed topic: %v", err)
	}
	return tp
}

// seedScenario stores an active survey with a required single question
// (Yes, No) and an optional text question.
func seedScenario(t *testing.T, db *gorm.DB, ownerID, topicID uint) *domain.Survey {
	t.Helper()
	sv := &domain.Survey{
		OwnerUserID: ownerID,
		TopicID:     topicID,
		Title:       "Feedback",
		Status:      domain.StatusActive,
		CreatedAt:   testNow.Add(-time.Hour),
		Questions: []domain.Question{
			{OrderIndex: 1, Text: "Happy?", Type: domain.QuestionSingle, IsRequired: true, Choices: []domain.Choice{
				{OrderIndex: 1, Text: "Yes"},
				{OrderIndex: 2, Text: "No"},
			}},
			{OrderIndex: 2, Text: "Why?", Type: domain.QuestionText},
		},
	}
	if err := repo.CreateSurvey(context.Background(), db, sv); err != nil {
		t.Fatalf("seed survey: %v", err)
	}
	return sv
}

// seedFullSurvey stores an active survey with one question of every type.
func seedFullSurvey(t *testing.T, db *gorm.DB, ownerID, topicID uint) *domain.Survey {
	t.Helper()
	sv := &domain.Survey{
		OwnerUserID: ownerID,
		TopicID:     topicID,
		Title:       "Đánh giá dịch vụ",
		Status:      domain.StatusActive,
		CreatedAt:   testNow.Add(-time.Hour),
		Questions: []domain.Question{
			{OrderIndex: 1, Text: "Kênh?", Type: domain.QuestionSingle, IsRequired: true, Choices: []domain.Choice{
				{OrderIndex: 1, Text: "Web"},
				{OrderIndex: 2, Text: "App"},
			}},
			{OrderIndex: 2, Text: "Tính năng?", Type: domain.QuestionMulti, IsRequired: true, Choices: []domain.Choice{
				{OrderIndex: 1, Text: "Nhanh"},
				{OrderIndex: 2, Text: "Rẻ"},
				{OrderIndex: 3, Text: "Đẹp"},
			}},
			{OrderIndex: 3, Text: "Điểm?", Type: domain.QuestionRating, IsRequired: true, MinValue: decp(1), MaxValue: decp(5)},
			{OrderIndex: 4, Text: "Giới thiệu?", Type: domain.QuestionNPS, MinValue: decp(0), MaxValue: decp(10)},
			{OrderIndex: 5, Text: "Góp ý?", Type: domain.QuestionText},
		},
	}
	if err := repo.CreateSurvey(context.Background(), db, sv); err != nil {
		t.Fatalf("seed survey: %v", err)
	}
	return sv
}

func countRows(t *testing.T, db *gorm.DB, model any) int64 {
	t.Helper()
	var n int64
	if err := db.Model(model).Count(&n).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	return n
}

// fakeScheduler records close scheduling calls.
type fakeScheduler struct {
	scheduled map[uint]time.Time
	cancelled []uint
	err       error
}

func newFakeScheduler() *fakeScheduler {
	return &fakeScheduler{scheduled: map[uint]time.Time{}}
}

func (f *fakeScheduler) ScheduleClose(_ context.Context, id uint, at time.Time) error {
	if f.err != nil {
		return f.err
	}
	f.scheduled[id] = at
	return nil
}

func (f *fakeScheduler) CancelClose(_ context.Context, id uint) error {
	f.cancelled = append(f.cancelled, id)
	delete(f.scheduled, id)
	return f.err
}

// fakeArchive keeps uploaded exports in memory.
type fakeArchive struct {
	name, contentType string
	data              []byte
	err               error
}

func (f *fakeArchive) Put(_ context.Context, name, contentType string, data []byte) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.name, f.contentType, f.data = name, contentType, data
	return "https://files.example/" + name, nil
}
