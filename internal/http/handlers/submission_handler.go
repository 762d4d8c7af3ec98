// Web-form submission handler.
//
//   - POST /surveys/{id}/responses
//
// Authentication is optional. An Idempotency-Key header makes retries return
// the response created by the first request, flagged with
// "Idempotency-Replayed: true".
package handlers

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-survey-backend/internal/http/middleware"
	"github.com/tbourn/go-survey-backend/internal/services"
)

// HeaderIdempotencyReplayed marks a response served from an earlier request.
const HeaderIdempotencyReplayed = "Idempotency-Replayed"

// maxFormMemory bounds the multipart form kept in memory.
const maxFormMemory = 1 << 20

// SubmissionService stores web-form responses.
type SubmissionService interface {
	Submit(ctx context.Context, surveyID uint, form map[string][]string, who services.Submitter, idemKey string) (*services.SubmitResult, error)
}

// SubmitResponseRequest is the JSON form of a submission. Keys follow the
// form convention: q_{questionId} for single values and
// q_{questionId}_opt_{choiceId} for checked multi-choice boxes.
type SubmitResponseRequest struct {
	Answers map[string][]string `json:"answers" binding:"required"`
}

// SubmitResponseResponse identifies the stored response.
type SubmitResponseResponse struct {
	ResponseID   uint       `json:"response_id"`
	SurveyID     uint       `json:"survey_id"`
	RespondentID string     `json:"respondent_id"`
	SubmittedAt  *time.Time `json:"submitted_at,omitempty"`
	Replayed     bool       `json:"replayed"`
}

// readForm collects the submitted fields from a JSON, multipart or
// urlencoded body.
func readForm(c *gin.Context) (map[string][]string, bool) {
	switch c.ContentType() {
	case gin.MIMEJSON:
		var req SubmitResponseRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			return nil, false
		}
		return req.Answers, true
	case gin.MIMEMultipartPOSTForm:
		if err := c.Request.ParseMultipartForm(maxFormMemory); err != nil {
			return nil, false
		}
		return c.Request.MultipartForm.Value, true
	default:
		if err := c.Request.ParseForm(); err != nil {
			return nil, false
		}
		return c.Request.PostForm, true
	}
}

// SubmitResponse godoc
// @ID          submitResponse
// @Summary     Submit a survey form
// @Description Validates every answer and stores one response. Invalid forms answer 422 with all messages.
// @Tags        Responses
// @Accept      json
// @Accept      x-www-form-urlencoded
// @Produce     json
// @Param       id               path    int                              true   "Survey ID"
// @Param       Idempotency-Key  header  string                           false  "Deduplicates retries"
// @Param       body             body    handlers.SubmitResponseRequest  true   "Answers"
// @Success     201  {object}  handlers.SubmitResponseResponse
// @Header      201  {string}  Idempotency-Replayed  "true when served from an earlier request"
// @Failure     400  {object}  handlers.ErrorResponse            "Malformed body"
// @Failure     404  {object}  handlers.ErrorResponse            "Survey not found or unavailable"
// @Failure     409  {object}  handlers.ErrorResponse            "Idempotency key reused with different answers"
// @Failure     422  {object}  handlers.ValidationErrorResponse  "Invalid answers"
// @Failure     429  {object}  handlers.ErrorResponse            "Rate limited"
// @Router      /surveys/{id}/responses [post]
func (h *Handlers) SubmitResponse(c *gin.Context) {
	id, valid := pathID(c, "id")
	if !valid {
		return
	}
	form, parsed := readForm(c)
	if !parsed {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid form body")
		return
	}

	who := services.Submitter{Client: c.ClientIP()}
	if cl, ok := middleware.ClaimsFrom(c); ok {
		who.UserID, who.Email = cl.UserID, cl.Email
	}
	key, _ := middleware.GetIdempotencyKey(c)

	res, err := h.svc.Submission.Submit(c.Request.Context(), id, form, who, strings.TrimSpace(key))
	if err != nil {
		serviceError(c, err)
		return
	}
	if res.Replayed {
		c.Header(HeaderIdempotencyReplayed, "true")
	}
	ok(c, http.StatusCreated, SubmitResponseResponse{
		ResponseID:   res.Response.ID,
		SurveyID:     res.Response.SurveyID,
		RespondentID: res.Response.RespondentID,
		SubmittedAt:  res.Response.SubmittedAt,
		Replayed:     res.Replayed,
	})
}
