// Question administration handlers.
//
//   - POST   /surveys/{id}/questions
//   - PUT    /surveys/{id}/questions/order
//   - PUT    /questions/{id}
//   - DELETE /questions/{id}
package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/tbourn/go-survey-backend/internal/domain"
	"github.com/tbourn/go-survey-backend/internal/services"
)

// QuestionService manages questions.
type QuestionService interface {
	Add(ctx context.Context, actor services.Actor, surveyID uint, in services.QuestionInput) (*domain.Question, error)
	Update(ctx context.Context, actor services.Actor, id uint, in services.QuestionInput) (*domain.Question, error)
	Delete(ctx context.Context, actor services.Actor, id uint) error
	Reorder(ctx context.Context, actor services.Actor, surveyID uint, ids []uint) error
}

// QuestionRequest creates or replaces a question. Choices apply to single and
// multi questions; Min and Max to rating and nps.
type QuestionRequest struct {
	Text       string           `json:"text" binding:"required" example:"Bạn hài lòng chứ?"`
	Type       string           `json:"type" binding:"required" example:"single" enums:"single,multi,text,rating,nps"`
	IsRequired bool             `json:"is_required"`
	MinValue   *decimal.Decimal `json:"min_value" swaggertype:"string"`
	MaxValue   *decimal.Decimal `json:"max_value" swaggertype:"string"`
	MaxLength  *int             `json:"max_length"`
	Choices    []string         `json:"choices"`
	ImagePath  string           `json:"image_path"`
}

func (r QuestionRequest) input() services.QuestionInput {
	return services.QuestionInput{
		Text:        r.Text,
		Type:        r.Type,
		IsRequired:  r.IsRequired,
		MinValue:    r.MinValue,
		MaxValue:    r.MaxValue,
		MaxLength:   r.MaxLength,
		ChoicesText: strings.Join(r.Choices, "\n"),
		ImagePath:   r.ImagePath,
	}
}

// ReorderQuestionsRequest lists every question id of a survey in the new
// order.
type ReorderQuestionsRequest struct {
	QuestionIDs []uint `json:"question_ids" binding:"required"`
}

// AddQuestion godoc
// @ID          addQuestion
// @Summary     Append a question
// @Tags        Questions
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id    path      int                       true  "Survey ID"
// @Param       body  body      handlers.QuestionRequest  true  "Question"
// @Success     201   {object}  domain.Question
// @Failure     400   {object}  handlers.ErrorResponse  "Invalid question"
// @Failure     403   {object}  handlers.ErrorResponse  "Not the owner"
// @Failure     404   {object}  handlers.ErrorResponse  "Survey not found"
// @Router      /surveys/{id}/questions [post]
func (h *Handlers) AddQuestion(c *gin.Context) {
	surveyID, valid := pathID(c, "id")
	if !valid {
		return
	}
	var req QuestionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "text and type are required")
		return
	}
	q, err := h.svc.Questions.Add(c.Request.Context(), actor(c), surveyID, req.input())
	if err != nil {
		serviceError(c, err)
		return
	}
	ok(c, http.StatusCreated, q)
}

// UpdateQuestion godoc
// @ID          updateQuestion
// @Summary     Replace a question
// @Tags        Questions
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id    path      int                       true  "Question ID"
// @Param       body  body      handlers.QuestionRequest  true  "Question"
// @Success     200   {object}  domain.Question
// @Failure     400   {object}  handlers.ErrorResponse  "Invalid question"
// @Failure     404   {object}  handlers.ErrorResponse  "Question not found"
// @Router      /questions/{id} [put]
func (h *Handlers) UpdateQuestion(c *gin.Context) {
	id, valid := pathID(c, "id")
	if !valid {
		return
	}
	var req QuestionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "text and type are required")
		return
	}
	q, err := h.svc.Questions.Update(c.Request.Context(), actor(c), id, req.input())
	if err != nil {
		serviceError(c, err)
		return
	}
	ok(c, http.StatusOK, q)
}

// DeleteQuestion godoc
// @ID          deleteQuestion
// @Summary     Delete a question
// @Tags        Questions
// @Security    BearerAuth
// @Param       id   path  int  true  "Question ID"
// @Success     204  {string}  string  "No Content"
// @Failure     404  {object}  handlers.ErrorResponse  "Question not found"
// @Router      /questions/{id} [delete]
func (h *Handlers) DeleteQuestion(c *gin.Context) {
	id, valid := pathID(c, "id")
	if !valid {
		return
	}
	if err := h.svc.Questions.Delete(c.Request.Context(), actor(c), id); err != nil {
		serviceError(c, err)
		return
	}
	noContent(c)
}

// ReorderQuestions godoc
// @ID          reorderQuestions
// @Summary     Reorder questions
// @Tags        Questions
// @Accept      json
// @Security    BearerAuth
// @Param       id    path  int                               true  "Survey ID"
// @Param       body  body  handlers.ReorderQuestionsRequest  true  "New order"
// @Success     204  {string}  string  "No Content"
// @Failure     400  {object}  handlers.ErrorResponse  "Not a permutation of the survey's questions"
// @Router      /surveys/{id}/questions/order [put]
func (h *Handlers) ReorderQuestions(c *gin.Context) {
	surveyID, valid := pathID(c, "id")
	if !valid {
		return
	}
	var req ReorderQuestionsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "question_ids is required")
		return
	}
	if err := h.svc.Questions.Reorder(c.Request.Context(), actor(c), surveyID, req.QuestionIDs); err != nil {
		serviceError(c, err)
		return
	}
	noContent(c)
}
