package handlers

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/tbourn/go-survey-backend/internal/domain"
	"github.com/tbourn/go-survey-backend/internal/http/middleware"
	"github.com/tbourn/go-survey-backend/internal/services"
)

func catalogApp(t *testing.T) *testApp {
	t.Helper()
	a := newTestApp(t)
	a.r.GET("/catalog", a.h.BrowseCatalog)
	a.r.GET("/catalog/surveys/:id", a.h.GetCatalogSurvey)
	a.r.GET("/topics", a.h.ListTopics)
	admin := a.r.Group("/topics", middleware.RequireRole(domain.RoleAdmin))
	admin.POST("", a.h.CreateTopic)
	admin.PUT("/:id", a.h.UpdateTopic)
	admin.DELETE("/:id", a.h.DeleteTopic)
	return a
}

func TestCatalog_BrowseAndSurvey(t *testing.T) {
	a := catalogApp(t)
	hoc := a.seedSurvey(t, userEmail, "Khảo sát học tập")
	a.seedSurvey(t, userEmail, "Ăn uống")

	w := a.do(t, http.MethodGet, "/catalog?q=hoc+tap", nil, "")
	wantStatus(t, w, http.StatusOK)
	var page services.CatalogPage
	decode(t, w, &page)
	if page.Total != 1 || len(page.Items) != 1 || page.Items[0].SurveyID != hoc.ID {
		t.Fatalf("search page = %+v", page)
	}

	w = a.do(t, http.MethodGet, fmt.Sprintf("/catalog?topic_id=%d&sort=title&page=x", a.topic.ID), nil, "")
	wantStatus(t, w, http.StatusOK)
	decode(t, w, &page)
	if page.Total != 2 || page.Page != 1 || page.Sort != "title" {
		t.Fatalf("topic page = %+v", page)
	}

	w = a.do(t, http.MethodGet, fmt.Sprintf("/catalog/surveys/%d", hoc.ID), nil, "")
	wantStatus(t, w, http.StatusOK)
	var sv domain.Survey
	decode(t, w, &sv)
	if sv.ID != hoc.ID || len(sv.Questions) != 2 || len(sv.Questions[0].Choices) != 2 {
		t.Fatalf("survey = %+v", sv)
	}

	wantError(t, a.do(t, http.MethodGet, "/catalog/surveys/0", nil, ""), http.StatusBadRequest, ErrCodeBadRequest)
	wantError(t, a.do(t, http.MethodGet, "/catalog/surveys/999", nil, ""), http.StatusNotFound, ErrCodeNotFound)
}

func TestTopics_AdminCRUD(t *testing.T) {
	a := catalogApp(t)
	admin := a.token(t, adminEmail)

	wantError(t, a.do(t, http.MethodPost, "/topics", TopicRequest{Name: "Y tế"}, ""), http.StatusUnauthorized, ErrCodeUnauthorized)
	wantError(t, a.do(t, http.MethodPost, "/topics", TopicRequest{Name: "Y tế"}, a.token(t, userEmail)), http.StatusForbidden, ErrCodeForbidden)

	w := a.do(t, http.MethodPost, "/topics", TopicRequest{Name: "Y tế"}, admin)
	wantStatus(t, w, http.StatusCreated)
	var tp domain.Topic
	decode(t, w, &tp)
	if tp.Slug != "y-te" {
		t.Fatalf("topic = %+v", tp)
	}

	wantError(t, a.do(t, http.MethodPost, "/topics", TopicRequest{Name: "Other", Slug: "y-te"}, admin), http.StatusConflict, ErrCodeConflict)

	w = a.do(t, http.MethodPut, fmt.Sprintf("/topics/%d", tp.ID), TopicRequest{Name: "Sức khỏe"}, admin)
	wantStatus(t, w, http.StatusOK)
	decode(t, w, &tp)
	if tp.Name != "Sức khỏe" || tp.Slug != "suc-khoe" {
		t.Fatalf("updated = %+v", tp)
	}

	w = a.do(t, http.MethodGet, "/topics", nil, "")
	wantStatus(t, w, http.StatusOK)
	var list ListTopicsResponse
	decode(t, w, &list)
	if len(list.Topics) != 2 {
		t.Fatalf("topics = %+v", list.Topics)
	}

	a.seedSurvey(t, userEmail, "Uses topic")
	wantError(t, a.do(t, http.MethodDelete, fmt.Sprintf("/topics/%d", a.topic.ID), nil, admin), http.StatusConflict, ErrCodeConflict)

	w = a.do(t, http.MethodDelete, fmt.Sprintf("/topics/%d", tp.ID), nil, admin)
	wantStatus(t, w, http.StatusNoContent)
	wantError(t, a.do(t, http.MethodDelete, fmt.Sprintf("/topics/%d", tp.ID), nil, admin), http.StatusNotFound, ErrCodeNotFound)
}
