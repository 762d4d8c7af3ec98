// Catalog and topic HTTP handlers.
//
// Public:
//   - GET    /catalog               (open surveys: search, topic filter, sort, page)
//   - GET    /catalog/surveys/{id}  (survey form tree)
//   - GET    /topics
//
// Admin:
//   - POST   /topics
//   - PUT    /topics/{id}
//   - DELETE /topics/{id}
package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-survey-backend/internal/domain"
	"github.com/tbourn/go-survey-backend/internal/services"
	"github.com/tbourn/go-survey-backend/internal/utils"
)

// CatalogService serves the public catalog.
type CatalogService interface {
	Browse(ctx context.Context, q services.CatalogQuery) (*services.CatalogPage, error)
	Survey(ctx context.Context, id uint) (*domain.Survey, error)
}

// TopicService manages topics.
type TopicService interface {
	List(ctx context.Context) ([]domain.Topic, error)
	Create(ctx context.Context, name, slug string) (*domain.Topic, error)
	Update(ctx context.Context, id uint, name, slug string) (*domain.Topic, error)
	Delete(ctx context.Context, id uint) error
}

// TopicRequest creates or renames a topic. A blank slug is derived from the
// name.
type TopicRequest struct {
	Name string `json:"name" binding:"required" example:"Giáo dục"`
	Slug string `json:"slug" example:"giao-duc"`
}

// ListTopicsResponse wraps the topics.
type ListTopicsResponse struct {
	Topics []domain.Topic `json:"topics"`
}

// BrowseCatalog godoc
// @ID          browseCatalog
// @Summary     Browse open surveys
// @Tags        Catalog
// @Produce     json
// @Param       q         query  string  false  "Search text (diacritics-insensitive)"
// @Param       topic_id  query  int     false  "Topic filter"
// @Param       sort      query  string  false  "new, title, endsoon or relevance"  Enums(new, title, endsoon, relevance)
// @Param       page      query  int     false  "Page number"  minimum(1) default(1)
// @Success     200  {object}  services.CatalogPage
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /catalog [get]
func (h *Handlers) BrowseCatalog(c *gin.Context) {
	topicID := utils.AtoiDefault(c.Query("topic_id"), 0)
	if topicID < 0 {
		topicID = 0
	}
	page, err := h.svc.Catalog.Browse(c.Request.Context(), services.CatalogQuery{
		Q:       c.Query("q"),
		TopicID: uint(topicID),
		Sort:    c.Query("sort"),
		Page:    utils.AtoiDefault(c.Query("page"), 1),
	})
	if err != nil {
		serviceError(c, err)
		return
	}
	ok(c, http.StatusOK, page)
}

// GetCatalogSurvey godoc
// @ID          getCatalogSurvey
// @Summary     Survey form
// @Description Returns questions and choices of a survey that accepts responses now.
// @Tags        Catalog
// @Produce     json
// @Param       id   path      int  true  "Survey ID"
// @Success     200  {object}  domain.Survey
// @Failure     404  {object}  handlers.ErrorResponse  "Not found or unavailable"
// @Router      /catalog/surveys/{id} [get]
func (h *Handlers) GetCatalogSurvey(c *gin.Context) {
	id, valid := pathID(c, "id")
	if !valid {
		return
	}
	sv, err := h.svc.Catalog.Survey(c.Request.Context(), id)
	if err != nil {
		serviceError(c, err)
		return
	}
	ok(c, http.StatusOK, sv)
}

// ListTopics godoc
// @ID          listTopics
// @Summary     List topics
// @Tags        Topics
// @Produce     json
// @Success     200  {object}  handlers.ListTopicsResponse
// @Router      /topics [get]
func (h *Handlers) ListTopics(c *gin.Context) {
	items, err := h.svc.Topics.List(c.Request.Context())
	if err != nil {
		serviceError(c, err)
		return
	}
	if items == nil {
		items = []domain.Topic{}
	}
	ok(c, http.StatusOK, ListTopicsResponse{Topics: items})
}

// CreateTopic godoc
// @ID          createTopic
// @Summary     Create a topic
// @Tags        Topics
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       body  body      handlers.TopicRequest  true  "Topic"
// @Success     201   {object}  domain.Topic
// @Failure     400   {object}  handlers.ErrorResponse  "Invalid topic"
// @Failure     403   {object}  handlers.ErrorResponse  "Admin role required"
// @Failure     409   {object}  handlers.ErrorResponse  "Slug taken"
// @Router      /topics [post]
func (h *Handlers) CreateTopic(c *gin.Context) {
	var req TopicRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "name is required")
		return
	}
	tp, err := h.svc.Topics.Create(c.Request.Context(), req.Name, req.Slug)
	if err != nil {
		serviceError(c, err)
		return
	}
	ok(c, http.StatusCreated, tp)
}

// UpdateTopic godoc
// @ID          updateTopic
// @Summary     Rename a topic
// @Tags        Topics
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id    path      int                    true  "Topic ID"
// @Param       body  body      handlers.TopicRequest  true  "Topic"
// @Success     200   {object}  domain.Topic
// @Failure     404   {object}  handlers.ErrorResponse  "Topic not found"
// @Failure     409   {object}  handlers.ErrorResponse  "Slug taken"
// @Router      /topics/{id} [put]
func (h *Handlers) UpdateTopic(c *gin.Context) {
	id, valid := pathID(c, "id")
	if !valid {
		return
	}
	var req TopicRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "name is required")
		return
	}
	tp, err := h.svc.Topics.Update(c.Request.Context(), id, req.Name, req.Slug)
	if err != nil {
		serviceError(c, err)
		return
	}
	ok(c, http.StatusOK, tp)
}

// DeleteTopic godoc
// @ID          deleteTopic
// @Summary     Delete an unused topic
// @Tags        Topics
// @Security    BearerAuth
// @Param       id   path  int  true  "Topic ID"
// @Success     204  {string}  string  "No Content"
// @Failure     404  {object}  handlers.ErrorResponse  "Topic not found"
// @Failure     409  {object}  handlers.ErrorResponse  "Topic used by surveys"
// @Router      /topics/{id} [delete]
func (h *Handlers) DeleteTopic(c *gin.Context) {
	id, valid := pathID(c, "id")
	if !valid {
		return
	}
	if err := h.svc.Topics.Delete(c.Request.Context(), id); err != nil {
		serviceError(c, err)
		return
	}
	noContent(c)
}
