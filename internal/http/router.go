// Package httpapi wires the HTTP transport (Gin) to application services,
// middleware, and route handlers. It centralizes cross-cutting concerns such
// as tracing, correlation IDs, logging/redaction, panic recovery, metrics,
// authentication, CORS, security headers, idempotency, and rate limiting.
package httpapi

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"gorm.io/gorm"

	"github.com/tbourn/go-survey-backend/internal/auth"
	"github.com/tbourn/go-survey-backend/internal/chatbot"
	"github.com/tbourn/go-survey-backend/internal/config"
	"github.com/tbourn/go-survey-backend/internal/domain"
	"github.com/tbourn/go-survey-backend/internal/http/handlers"
	"github.com/tbourn/go-survey-backend/internal/http/middleware"
	"github.com/tbourn/go-survey-backend/internal/services"
	"github.com/tbourn/go-survey-backend/internal/utils"
)

// submissionRoute is the only route whose Idempotency-Key is looked up.
const submissionRoute = "/surveys/:id/responses"

// maxBodyBytes caps request bodies.
const maxBodyBytes = 1 << 20

// responseHeaders are the API headers browser clients may read, on top of
// X-Request-ID and Content-Length.
var responseHeaders = []string{
	"Content-Disposition",
	"ETag",
	handlers.HeaderIdempotencyReplayed,
	handlers.HeaderArchiveURL,
}

// Dependencies are the infrastructure pieces the services are built on.
// Scheduler and Archive are optional.
type Dependencies struct {
	DB        *gorm.DB
	Tokens    *auth.JWTManager
	Sessions  chatbot.SessionStore
	Scheduler services.CloseScheduler
	Archive   services.ExportArchive
}

// App is the assembled service layer.
type App struct {
	Services handlers.Services
	Tokens   middleware.TokenVerifier
	Replay   middleware.IdempotencyLookup

	// Surveys and Chatbot are shared with the job worker and the Discord
	// adapter.
	Surveys *services.SurveyService
	Chatbot *services.ChatbotService
}

// NewApp builds every service from deps and cfg.
func NewApp(deps Dependencies, cfg config.Config) *App {
	db := deps.DB
	submission := &services.SubmissionService{DB: db, IdempotencyTTL: cfg.IdempotencyTTL}
	surveys := &services.SurveyService{DB: db}
	if deps.Scheduler != nil {
		surveys.Scheduler = deps.Scheduler
	}
	export := &services.ExportService{DB: db}
	if deps.Archive != nil {
		export.Archive = deps.Archive
	}
	bot := &services.ChatbotService{
		DB:              db,
		Store:           deps.Sessions,
		Locks:           &chatbot.KeyedMutex{},
		MaxMessageRunes: cfg.MaxMessageRunes,
	}
	return &App{
		Services: handlers.Services{
			Chatbot:    bot,
			Auth:       &services.AuthService{DB: db, Tokens: deps.Tokens},
			Catalog:    &services.CatalogService{DB: db},
			Topics:     &services.TopicService{DB: db},
			Submission: submission,
			Surveys:    surveys,
			Questions:  &services.QuestionService{DB: db},
			Stats:      &services.StatsService{DB: db},
			Export:     export,
			Reports:    &services.ReportService{DB: db},
			Builder:    &services.BuilderService{DB: db},
		},
		Tokens:  deps.Tokens,
		Replay:  submission.HasReplay,
		Surveys: surveys,
		Chatbot: bot,
	}
}

// submissionScope binds Idempotency-Key lookups to the submitted survey.
// Every other route validates the header without a lookup.
func submissionScope(c *gin.Context) string {
	if !strings.HasSuffix(c.FullPath(), submissionRoute) {
		return ""
	}
	id, ok := utils.ParseID(c.Param("id"))
	if !ok {
		return ""
	}
	return services.IdempotencyScope(id)
}

// RegisterRoutes attaches all middleware and HTTP endpoints to the given Gin
// engine and mounts the API under cfg.APIBasePath.
//
// Middleware order matters:
//  1. OpenTelemetry: trace everything
//  2. RequestID: generate/propagate correlation id
//  3. RedactingLogger: structured logs with PII scrubbing
//  4. Recovery: capture panics after logger
//  5. Body size limiter
//  6. Metrics
//  7. Authenticate: optional bearer token (user id feeds the next two)
//  8. Idempotency validator (before rate limiting to allow bypass on replay)
//  9. Rate limiter (per user/IP, bypass on replay)
//  10. CORS, security headers and compression
func RegisterRoutes(r *gin.Engine, app *App, cfg config.Config) {
	r.HandleMethodNotAllowed = true

	r.Use(otelgin.Middleware(cfg.OTEL.ServiceName))
	r.Use(middleware.RequestID())
	r.Use(middleware.RedactingLogger(middleware.RedactOptions{
		MaskHeaders: []string{middleware.HeaderIdempotencyKey},
	}))
	r.Use(middleware.Recovery())
	r.Use(limitBody(maxBodyBytes))

	r.Use(middleware.Metrics())
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	r.Use(middleware.Authenticate(app.Tokens))
	r.Use(middleware.IdempotencyValidator(
		middleware.IdempotencyOptions{MaxLen: 200, Scope: submissionScope},
		app.Replay,
	))

	rl := middleware.NewRateLimiter(cfg.RateRPS, cfg.RateBurst, middleware.KeyByUserOrIP())
	r.Use(rl.Handler())

	useCORS(r, cfg.CORS.AllowedOrigins)
	r.Use(middleware.SecurityHeaders(middleware.SecurityOptions{
		EnableHSTS:    cfg.Security.EnableHSTS,
		HSTSMaxAge:    cfg.Security.HSTSMaxAge,
		EnablePolicy:  true,
		ExposeHeaders: responseHeaders,
	}))
	r.Use(gzip.Gzip(gzip.DefaultCompression, gzip.WithExcludedPaths([]string{"/metrics"})))

	r.NoRoute(func(c *gin.Context) {
		handlers.Fail(c, http.StatusNotFound, handlers.ErrCodeNotFound, "route not found")
	})
	r.NoMethod(func(c *gin.Context) {
		handlers.Fail(c, http.StatusMethodNotAllowed, handlers.ErrCodeMethodNotAllowed, "method not allowed")
	})

	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })
	if cfg.SwaggerEnabled {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	h := handlers.New(app.Services)
	api := groupWithPrefix(r, cfg.APIBasePath)
	{
		// Chatbot
		api.GET("/chatbot/surveys", h.ListChatSurveys)
		api.POST("/chatbot/start", h.StartChat)
		api.POST("/chatbot/message", h.SendChatMessage)

		// Accounts
		api.POST("/auth/register", h.Register)
		api.POST("/auth/login", h.Login)
		api.GET("/auth/me", middleware.RequireAuth(), h.Me)

		// Catalog
		api.GET("/catalog", h.BrowseCatalog)
		api.GET("/catalog/surveys/:id", h.GetCatalogSurvey)
		api.GET("/topics", h.ListTopics)

		// Web form (auth optional)
		api.POST(submissionRoute, h.SubmitResponse)
	}

	owner := api.Group("", middleware.RequireAuth())
	{
		owner.GET("/surveys", h.ListSurveys)
		owner.POST("/surveys", h.CreateSurvey)
		owner.GET("/surveys/:id", h.GetSurvey)
		owner.PUT("/surveys/:id", h.UpdateSurvey)
		owner.DELETE("/surveys/:id", h.DeleteSurvey)

		owner.POST("/surveys/:id/questions", h.AddQuestion)
		owner.PUT("/surveys/:id/questions/order", h.ReorderQuestions)
		owner.PUT("/questions/:id", h.UpdateQuestion)
		owner.DELETE("/questions/:id", h.DeleteQuestion)

		owner.GET("/surveys/:id/stats", h.GetStats)
		owner.GET("/surveys/:id/export", h.ExportResponses)
		owner.GET("/reports", h.ListReports)

		owner.POST("/builder/drafts", h.GenerateDraft)
		owner.POST("/builder/surveys", h.SaveDraft)
	}

	admin := api.Group("", middleware.RequireRole(domain.RoleAdmin))
	{
		admin.POST("/topics", h.CreateTopic)
		admin.PUT("/topics/:id", h.UpdateTopic)
		admin.DELETE("/topics/:id", h.DeleteTopic)
	}
}

// useCORS installs the CORS policy: every origin when allowed is empty,
// otherwise the allowlist echoed back per request.
func useCORS(r *gin.Engine, allowed []string) {
	base := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "If-None-Match", middleware.HeaderIdempotencyKey},
		ExposeHeaders:    append([]string{"X-Request-ID", "Content-Length"}, responseHeaders...),
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}

	if len(allowed) == 0 {
		// ACAO is set even without an Origin header so plain clients see it.
		r.Use(func(c *gin.Context) {
			c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
			c.Next()
		})
		base.AllowAllOrigins = true
		r.Use(cors.New(base))
		return
	}

	set := make(map[string]struct{}, len(allowed))
	for _, o := range allowed {
		set[o] = struct{}{}
	}
	r.Use(func(c *gin.Context) {
		if origin := c.GetHeader("Origin"); origin != "" {
			if _, ok := set[origin]; ok {
				h := c.Writer.Header()
				h.Set("Access-Control-Allow-Origin", origin)
				h.Add("Vary", "Origin")
			}
		}
		c.Next()
	})
	base.AllowOrigins = allowed
	r.Use(cors.New(base))
}

// limitBody caps the request body size to maxBytes using
// http.MaxBytesReader. Oversized bodies make downstream reads fail.
func limitBody(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}

// groupWithPrefix mounts a group at prefix, treating "/" (or empty) as root.
func groupWithPrefix(r *gin.Engine, prefix string) *gin.RouterGroup {
	if prefix == "" || prefix == "/" {
		return r.Group("")
	}
	return r.Group(prefix)
}
