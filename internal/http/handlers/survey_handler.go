// Survey administration handlers. Every route requires a bearer token; the
// caller manages the surveys they own, Admins manage all of them.
//
//   - GET    /surveys        (paginated list)
//   - POST   /surveys
//   - GET    /surveys/{id}   (with questions and choices)
//   - PUT    /surveys/{id}
//   - DELETE /surveys/{id}   (refused once responses exist)
package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-survey-backend/internal/domain"
	"github.com/tbourn/go-survey-backend/internal/services"
)

// SurveyService manages surveys.
type SurveyService interface {
	ListPage(ctx context.Context, actor services.Actor, page, pageSize int) ([]domain.Survey, int64, error)
	Create(ctx context.Context, actor services.Actor, in services.SurveyInput) (*domain.Survey, error)
	Get(ctx context.Context, actor services.Actor, id uint) (*domain.Survey, error)
	Update(ctx context.Context, actor services.Actor, id uint, in services.SurveyInput) (*domain.Survey, error)
	Delete(ctx context.Context, actor services.Actor, id uint) error
}

// SurveyRequest creates or replaces the editable fields of a survey.
type SurveyRequest struct {
	TopicID        uint       `json:"topic_id" binding:"required" example:"1"`
	Title          string     `json:"title" binding:"required" example:"Khảo sát sinh viên"`
	Description    string     `json:"description"`
	Status         string     `json:"status" example:"draft" enums:"draft,active,closed"`
	IsAnonymous    bool       `json:"is_anonymous"`
	StartAt        *time.Time `json:"start_at"`
	EndAt          *time.Time `json:"end_at"`
	CoverImagePath string     `json:"cover_image_path"`
}

func (r SurveyRequest) input() services.SurveyInput {
	return services.SurveyInput{
		TopicID:        r.TopicID,
		Title:          r.Title,
		Description:    r.Description,
		Status:         r.Status,
		IsAnonymous:    r.IsAnonymous,
		StartAt:        r.StartAt,
		EndAt:          r.EndAt,
		CoverImagePath: r.CoverImagePath,
	}
}

// ListSurveysResponse is one page of surveys.
type ListSurveysResponse struct {
	Surveys    []domain.Survey `json:"surveys"`
	Pagination Pagination      `json:"pagination"`
}

// ListSurveys godoc
// @ID          listSurveys
// @Summary     List managed surveys
// @Tags        Surveys
// @Produce     json
// @Security    BearerAuth
// @Param       page       query  int  false  "Page number"  minimum(1) default(1)
// @Param       page_size  query  int  false  "Page size"    minimum(1) maximum(100) default(20)
// @Success     200  {object}  handlers.ListSurveysResponse
// @Failure     401  {object}  handlers.ErrorResponse  "Missing or invalid token"
// @Router      /surveys [get]
func (h *Handlers) ListSurveys(c *gin.Context) {
	page, pageSize := clampPagination(c)
	items, total, err := h.svc.Surveys.ListPage(c.Request.Context(), actor(c), page, pageSize)
	if err != nil {
		serviceError(c, err)
		return
	}
	if items == nil {
		items = []domain.Survey{}
	}
	ok(c, http.StatusOK, ListSurveysResponse{Surveys: items, Pagination: newPagination(page, pageSize, total)})
}

// CreateSurvey godoc
// @ID          createSurvey
// @Summary     Create a survey
// @Tags        Surveys
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       body  body      handlers.SurveyRequest  true  "Survey"
// @Success     201   {object}  domain.Survey
// @Failure     400   {object}  handlers.ErrorResponse  "Invalid survey"
// @Failure     404   {object}  handlers.ErrorResponse  "Topic not found"
// @Router      /surveys [post]
func (h *Handlers) CreateSurvey(c *gin.Context) {
	var req SurveyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "topic_id and title are required")
		return
	}
	sv, err := h.svc.Surveys.Create(c.Request.Context(), actor(c), req.input())
	if err != nil {
		serviceError(c, err)
		return
	}
	ok(c, http.StatusCreated, sv)
}

// GetSurvey godoc
// @ID          getSurvey
// @Summary     Get a survey
// @Tags        Surveys
// @Produce     json
// @Security    BearerAuth
// @Param       id   path      int  true  "Survey ID"
// @Success     200  {object}  domain.Survey
// @Failure     403  {object}  handlers.ErrorResponse  "Not the owner"
// @Failure     404  {object}  handlers.ErrorResponse  "Survey not found"
// @Router      /surveys/{id} [get]
func (h *Handlers) GetSurvey(c *gin.Context) {
	id, valid := pathID(c, "id")
	if !valid {
		return
	}
	sv, err := h.svc.Surveys.Get(c.Request.Context(), actor(c), id)
	if err != nil {
		serviceError(c, err)
		return
	}
	ok(c, http.StatusOK, sv)
}

// UpdateSurvey godoc
// @ID          updateSurvey
// @Summary     Update a survey
// @Tags        Surveys
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id    path      int                     true  "Survey ID"
// @Param       body  body      handlers.SurveyRequest  true  "Survey"
// @Success     200   {object}  domain.Survey
// @Failure     400   {object}  handlers.ErrorResponse  "Invalid survey"
// @Failure     403   {object}  handlers.ErrorResponse  "Not the owner"
// @Failure     404   {object}  handlers.ErrorResponse  "Survey not found"
// @Router      /surveys/{id} [put]
func (h *Handlers) UpdateSurvey(c *gin.Context) {
	id, valid := pathID(c, "id")
	if !valid {
		return
	}
	var req SurveyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "topic_id and title are required")
		return
	}
	sv, err := h.svc.Surveys.Update(c.Request.Context(), actor(c), id, req.input())
	if err != nil {
		serviceError(c, err)
		return
	}
	ok(c, http.StatusOK, sv)
}

// DeleteSurvey godoc
// @ID          deleteSurvey
// @Summary     Delete a survey without responses
// @Tags        Surveys
// @Security    BearerAuth
// @Param       id   path  int  true  "Survey ID"
// @Success     204  {string}  string  "No Content"
// @Failure     403  {object}  handlers.ErrorResponse  "Not the owner"
// @Failure     404  {object}  handlers.ErrorResponse  "Survey not found"
// @Failure     409  {object}  handlers.ErrorResponse  "Survey has responses"
// @Router      /surveys/{id} [delete]
func (h *Handlers) DeleteSurvey(c *gin.Context) {
	id, valid := pathID(c, "id")
	if !valid {
		return
	}
	if err := h.svc.Surveys.Delete(c.Request.Context(), actor(c), id); err != nil {
		serviceError(c, err)
		return
	}
	noContent(c)
}
