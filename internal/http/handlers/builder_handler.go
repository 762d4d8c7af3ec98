// Survey builder handlers.
//
//   - POST /builder/drafts    (generate an unsaved draft)
//   - POST /builder/surveys   (save a draft as a survey)
package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-survey-backend/internal/domain"
	"github.com/tbourn/go-survey-backend/internal/services"
)

// BuilderService generates and saves drafts.
type BuilderService interface {
	Generate(req services.DraftRequest) services.SurveyDraft
	SaveDraft(ctx context.Context, actor services.Actor, d services.SurveyDraft, opts services.DraftSave) (*domain.Survey, error)
}

// SaveDraftRequest saves an edited draft.
type SaveDraftRequest struct {
	Draft       services.SurveyDraft `json:"draft" binding:"required"`
	TopicID     uint                 `json:"topic_id" binding:"required" example:"1"`
	Status      string               `json:"status" example:"draft"`
	IsAnonymous bool                 `json:"is_anonymous"`
}

// GenerateDraft godoc
// @ID          generateDraft
// @Summary     Generate a survey draft
// @Tags        Builder
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       body  body      services.DraftRequest  true  "Draft parameters"
// @Success     200   {object}  services.SurveyDraft
// @Failure     400   {object}  handlers.ErrorResponse  "Malformed body"
// @Router      /builder/drafts [post]
func (h *Handlers) GenerateDraft(c *gin.Context) {
	var req services.DraftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid draft request")
		return
	}
	ok(c, http.StatusOK, h.svc.Builder.Generate(req))
}

// SaveDraft godoc
// @ID          saveDraft
// @Summary     Save a draft as a survey
// @Tags        Builder
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       body  body      handlers.SaveDraftRequest  true  "Draft"
// @Success     201   {object}  domain.Survey
// @Failure     400   {object}  handlers.ErrorResponse  "Invalid survey or question"
// @Failure     404   {object}  handlers.ErrorResponse  "Topic not found"
// @Router      /builder/surveys [post]
func (h *Handlers) SaveDraft(c *gin.Context) {
	var req SaveDraftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "draft and topic_id are required")
		return
	}
	sv, err := h.svc.Builder.SaveDraft(c.Request.Context(), actor(c), req.Draft, services.DraftSave{
		TopicID:     req.TopicID,
		Status:      req.Status,
		IsAnonymous: req.IsAnonymous,
	})
	if err != nil {
		serviceError(c, err)
		return
	}
	ok(c, http.StatusCreated, sv)
}
