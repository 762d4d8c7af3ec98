// Package handlers – wiring
//
// Handlers are transport-thin: they bind and validate input, call the
// application services through the narrow interfaces declared next to each
// endpoint, and translate results and service errors into HTTP responses.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-survey-backend/internal/domain"
	"github.com/tbourn/go-survey-backend/internal/http/middleware"
	"github.com/tbourn/go-survey-backend/internal/services"
	"github.com/tbourn/go-survey-backend/internal/utils"
)

// Services bundles the application services the handlers depend on.
type Services struct {
	Chatbot    ChatbotService
	Auth       AuthService
	Catalog    CatalogService
	Topics     TopicService
	Submission SubmissionService
	Surveys    SurveyService
	Questions  QuestionService
	Stats      StatsService
	Export     ExportService
	Reports    ReportService
	Builder    BuilderService
}

// Handlers groups every HTTP endpoint of the API.
type Handlers struct {
	svc Services
}

// New constructs and returns a Handlers instance bound to the given services.
func New(s Services) *Handlers {
	return &Handlers{svc: s}
}

// Pagination carries pagination metadata for list responses.
type Pagination struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
	HasNext    bool  `json:"has_next"`
}

func newPagination(page, pageSize int, total int64) Pagination {
	totalPages := utils.TotalPages(total, pageSize)
	return Pagination{
		Page:       page,
		PageSize:   pageSize,
		Total:      total,
		TotalPages: totalPages,
		HasNext:    page < totalPages,
	}
}

// clampPagination parses and bounds page and page_size query params.
func clampPagination(c *gin.Context) (page, pageSize int) {
	const (
		defaultPage     = 1
		defaultPageSize = 20
		maxPageSize     = 100
	)
	page = utils.AtoiDefault(c.Query("page"), defaultPage)
	if page < 1 {
		page = 1
	}
	pageSize = utils.AtoiDefault(c.Query("page_size"), defaultPageSize)
	if pageSize < 1 {
		pageSize = 1
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	return
}

// pathID parses the positive integer path parameter name. On failure it
// writes 400 and returns false.
func pathID(c *gin.Context, name string) (uint, bool) {
	id, ok := utils.ParseID(c.Param(name))
	if !ok {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, name+" must be a positive integer")
	}
	return id, ok
}

// actor builds the service actor from the verified token claims.
func actor(c *gin.Context) services.Actor {
	cl, ok := middleware.ClaimsFrom(c)
	if !ok {
		return services.Actor{}
	}
	return services.Actor{UserID: cl.UserID, IsAdmin: cl.HasRole(domain.RoleAdmin)}
}
