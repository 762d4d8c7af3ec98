package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	sqlite "github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/tbourn/go-survey-backend/internal/auth"
	"github.com/tbourn/go-survey-backend/internal/chatbot"
	"github.com/tbourn/go-survey-backend/internal/domain"
	"github.com/tbourn/go-survey-backend/internal/http/middleware"
	"github.com/tbourn/go-survey-backend/internal/repo"
	"github.com/tbourn/go-survey-backend/internal/services"
)

const (
	adminEmail = "admin@x.io"
	userEmail  = "user@x.io"
	otherEmail = "other@x.io"
	testPass   = "secret1"
)

// testApp wires the real services over an in-memory database.
type testApp struct {
	db     *gorm.DB
	tokens *auth.JWTManager
	svc    Services
	h      *Handlers
	r      *gin.Engine
	topic  *domain.Topic
	users  map[string]*domain.User
}

func newHandlerDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:handlers_%s?mode=memory&cache=shared", uuid.NewString())
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

// newTestApp seeds an Admin, two Users and one topic. The engine carries
// RequestID, Authenticate and the idempotency validator; tests add routes.
func newTestApp(t *testing.T) *testApp {
	t.Helper()
	gin.SetMode(gin.TestMode)
	db := newHandlerDB(t)
	tokens := auth.NewJWTManager("handler-secret", time.Hour)
	authSvc := &services.AuthService{DB: db, Tokens: tokens, HashCost: bcrypt.MinCost}
	ctx := context.Background()

	err := authSvc.Seed(ctx, []services.SeedAccount{
		{Email: adminEmail, Password: testPass, DisplayName: "Admin", Role: domain.RoleAdmin},
		{Email: userEmail, Password: testPass, DisplayName: "User", Role: domain.RoleUser},
		{Email: otherEmail, Password: testPass, DisplayName: "Other", Role: domain.RoleUser},
	}, zerolog.Nop())
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	users := map[string]*domain.User{}
	for _, e := range []string{adminEmail, userEmail, otherEmail} {
		u, err := repo.GetUserByEmail(ctx, db, e)
		if err != nil {
			t.Fatalf("lookup %s: %v", e, err)
		}
		users[e] = u
	}
	topic := &domain.Topic{Name: "Dịch vụ", Slug: "dich-vu"}
	if err := repo.CreateTopic(ctx, db, topic); err != nil {
		t.Fatalf("seed topic: %v", err)
	}

	submission := &services.SubmissionService{DB: db}
	svc := Services{
		Chatbot: &services.ChatbotService{
			DB:              db,
			Store:           chatbot.NewMemoryStore(45 * time.Minute),
			Locks:           &chatbot.KeyedMutex{},
			MaxMessageRunes: 4000,
		},
		Auth:       authSvc,
		Catalog:    &services.CatalogService{DB: db},
		Topics:     &services.TopicService{DB: db},
		Submission: submission,
		Surveys:    &services.SurveyService{DB: db},
		Questions:  &services.QuestionService{DB: db},
		Stats:      &services.StatsService{DB: db},
		Export:     &services.ExportService{DB: db},
		Reports:    &services.ReportService{DB: db},
		Builder:    &services.BuilderService{DB: db, Pick: func(int) int { return 0 }},
	}

	r := gin.New()
	r.Use(middleware.RequestID(), middleware.Authenticate(tokens))
	r.Use(middleware.IdempotencyValidator(middleware.IdempotencyOptions{
		Scope: func(c *gin.Context) string {
			if c.FullPath() != "/surveys/:id/responses" {
				return ""
			}
			id, valid := parseUint(c.Param("id"))
			if !valid {
				return ""
			}
			return services.IdempotencyScope(id)
		},
	}, submission.HasReplay))

	return &testApp{db: db, tokens: tokens, svc: svc, h: New(svc), r: r, topic: topic, users: users}
}

func parseUint(s string) (uint, bool) {
	v, err := strconv.ParseUint(s, 10, 32)
	if err != nil || v == 0 {
		return 0, false
	}
	return uint(v), true
}

// token issues a bearer token for a seeded account.
func (a *testApp) token(t *testing.T, email string) string {
	t.Helper()
	u := a.users[email]
	roles := make([]string, 0, len(u.Roles))
	for _, r := range u.Roles {
		roles = append(roles, r.Name)
	}
	tok, _, err := a.tokens.Issue(u.ID, u.Email, roles)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	return tok
}

// seedSurvey stores an active survey owned by email with a required single
// question (Yes, No) and an optional text question.
func (a *testApp) seedSurvey(t *testing.T, email, title string) *domain.Survey {
	t.Helper()
	sv := &domain.Survey{
		OwnerUserID: a.users[email].ID,
		TopicID:     a.topic.ID,
		Title:       title,
		Status:      domain.StatusActive,
		CreatedAt:   time.Now().UTC().Add(-time.Hour),
		Questions: []domain.Question{
			{OrderIndex: 1, Text: "Happy?", Type: domain.QuestionSingle, IsRequired: true, Choices: []domain.Choice{
				{OrderIndex: 1, Text: "Yes"},
				{OrderIndex: 2, Text: "No"},
			}},
			{OrderIndex: 2, Text: "Why?", Type: domain.QuestionText},
		},
	}
	if err := repo.CreateSurvey(context.Background(), a.db, sv); err != nil {
		t.Fatalf("seed survey: %v", err)
	}
	return sv
}

// do sends a request with an optional JSON body and bearer token.
func (a *testApp) do(t *testing.T, method, path string, body any, token string, headers ...string) *httptest.ResponseRecorder {
	t.Helper()
	var rdr io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		rdr = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, rdr)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	a.r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.Unmarshal(w.Body.Bytes(), v); err != nil {
		t.Fatalf("decode %q: %v", w.Body.String(), err)
	}
}

func wantStatus(t *testing.T, w *httptest.ResponseRecorder, status int) {
	t.Helper()
	if w.Code != status {
		t.Fatalf("status = %d, want %d; body=%s", w.Code, status, w.Body.String())
	}
}

func wantError(t *testing.T, w *httptest.ResponseRecorder, status int, code string) ErrorResponse {
	t.Helper()
	wantStatus(t, w, status)
	var e ErrorResponse
	decode(t, w, &e)
	if e.Code != code {
		t.Fatalf("code = %q, want %q", e.Code, code)
	}
	return e
}
