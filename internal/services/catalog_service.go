// Package services – CatalogService
//
// This file implements the public survey catalog: open surveys filtered by
// topic, optionally searched by free text and sorted by recency, title or
// closing time. Text search ranks surveys with the in-memory Jaccard index
// over title, description and topic name, folded to ASCII so that queries
// match with or without Vietnamese diacritics.
package services

import (
	"context"
	"errors"
	"math"
	"sort"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/tbourn/go-survey-backend/internal/domain"
	"github.com/tbourn/go-survey-backend/internal/repo"
	"github.com/tbourn/go-survey-backend/internal/search"
	"github.com/tbourn/go-survey-backend/internal/utils"

	// OpenTelemetry
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Catalog sort orders.
const (
	SortNew       = "new"
	SortTitle     = "title"
	SortEndSoon   = "endsoon"
	SortRelevance = "relevance"
)

// DefaultCatalogPageSize is the number of surveys per catalog page.
const DefaultCatalogPageSize = 9

// CatalogService serves the public catalog.
type CatalogService struct {
	DB       *gorm.DB
	PageSize int
	Now      func() time.Time
}

// CatalogQuery selects a catalog page. Sort defaults to relevance when Q is
// set and to new otherwise.
type CatalogQuery struct {
	Q       string
	TopicID uint
	Sort    string
	Page    int
}

// CatalogItem is one survey card.
type CatalogItem struct {
	SurveyID       uint       `json:"survey_id"`
	Title          string     `json:"title"`
	Description    string     `json:"description"`
	TopicID        uint       `json:"topic_id"`
	TopicName      string     `json:"topic_name"`
	CoverImagePath string     `json:"cover_image_path,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	StartAt        *time.Time `json:"start_at,omitempty"`
	EndAt          *time.Time `json:"end_at,omitempty"`
	IsActiveNow    bool       `json:"is_active_now"`
	DaysLeft       *int       `json:"days_left,omitempty"`
}

// TopicChip is a topic filter with the number of open surveys in it.
type TopicChip struct {
	TopicID uint   `json:"topic_id"`
	Name    string `json:"name"`
	Count   int    `json:"count"`
}

// CatalogPage is one page of the catalog.
type CatalogPage struct {
	Items      []CatalogItem `json:"items"`
	Topics     []TopicChip   `json:"topics"`
	Q          string        `json:"q,omitempty"`
	TopicID    uint          `json:"topic_id,omitempty"`
	Sort       string        `json:"sort"`
	Page       int           `json:"page"`
	PageSize   int           `json:"page_size"`
	Total      int           `json:"total"`
	TotalPages int           `json:"total_pages"`
}

// Browse returns a page of open surveys.
func (s *CatalogService) Browse(ctx context.Context, q CatalogQuery) (*CatalogPage, error) {
	tr := otel.Tracer("services/CatalogService")
	ctx, span := tr.Start(ctx, "Browse",
		trace.WithAttributes(
			attribute.String("catalog.sort", q.Sort),
			attribute.Int("catalog.topic_id", int(q.TopicID)),
			attribute.Int("catalog.page", q.Page),
		),
	)
	defer span.End()

	now := clock(s.Now)
	open, err := repo.ListOpenSurveys(ctx, s.DB, now, 0, 0)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	q.Q = strings.TrimSpace(q.Q)
	q.Sort = strings.ToLower(strings.TrimSpace(q.Sort))
	switch q.Sort {
	case SortNew, SortTitle, SortEndSoon:
	case SortRelevance:
		if q.Q == "" {
			q.Sort = SortNew
		}
	default:
		if q.Q != "" {
			q.Sort = SortRelevance
		} else {
			q.Sort = SortNew
		}
	}
	pageSize := s.PageSize
	if pageSize <= 0 {
		pageSize = DefaultCatalogPageSize
	}
	if q.Page < 1 {
		q.Page = 1
	}

	page := &CatalogPage{
		Q:        q.Q,
		TopicID:  q.TopicID,
		Sort:     q.Sort,
		Page:     q.Page,
		PageSize: pageSize,
		Topics:   topicChips(open),
	}

	matches := open
	if q.TopicID != 0 {
		matches = matches[:0:0]
		for _, sv := range open {
			if sv.TopicID == q.TopicID {
				matches = append(matches, sv)
			}
		}
	}
	if q.Q != "" {
		matches = searchSurveys(matches, q.Q)
	}
	sortSurveys(matches, q.Sort)

	page.Total = len(matches)
	page.TotalPages = utils.TotalPages(int64(page.Total), pageSize)
	page.Items = []CatalogItem{}
	start := utils.Offset(q.Page, pageSize)
	if start < len(matches) {
		end := min(start+pageSize, len(matches))
		for _, sv := range matches[start:end] {
			page.Items = append(page.Items, catalogItem(sv, now))
		}
	}
	return page, nil
}

// Survey returns the full tree of a survey that accepts responses now.
func (s *CatalogService) Survey(ctx context.Context, id uint) (*domain.Survey, error) {
	tr := otel.Tracer("services/CatalogService")
	ctx, span := tr.Start(ctx, "Survey", trace.WithAttributes(attribute.Int("survey.id", int(id))))
	defer span.End()

	sv, err := repo.GetSurveyTree(ctx, s.DB, id)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, ErrSurveyNotFound
	}
	if err != nil {
		return nil, err
	}
	if !sv.IsAvailable(clock(s.Now)) {
		return nil, ErrSurveyUnavailable
	}
	return sv, nil
}

// searchSurveys keeps the surveys matching text, best match first.
func searchSurveys(items []domain.Survey, text string) []domain.Survey {
	docs := make([]search.Document, len(items))
	byID := make(map[uint]domain.Survey, len(items))
	for i, sv := range items {
		parts := []string{sv.Title, search.FlattenMarkdown(sv.Description)}
		if sv.Topic != nil {
			parts = append(parts, sv.Topic.Name)
		}
		docs[i] = search.Document{ID: sv.ID, Text: strings.Join(parts, " ")}
		byID[sv.ID] = sv
	}
	idx := search.NewIndex(docs, search.WithNormalizer(FoldASCII))

	var out []domain.Survey
	for _, r := range idx.Search(text, 0) {
		out = append(out, byID[r.ID])
	}
	return out
}

// sortSurveys orders items in place. Relevance keeps the search order.
func sortSurveys(items []domain.Survey, order string) {
	switch order {
	case SortTitle:
		sort.SliceStable(items, func(i, j int) bool {
			a, b := FoldASCII(items[i].Title), FoldASCII(items[j].Title)
			if a != b {
				return a < b
			}
			return items[i].Title < items[j].Title
		})
	case SortEndSoon:
		sort.SliceStable(items, func(i, j int) bool {
			a, b := items[i].EndAt, items[j].EndAt
			switch {
			case a == nil:
				return false
			case b == nil:
				return true
			}
			return a.Before(*b)
		})
	case SortNew:
		sort.SliceStable(items, func(i, j int) bool {
			if !items[i].CreatedAt.Equal(items[j].CreatedAt) {
				return items[i].CreatedAt.After(items[j].CreatedAt)
			}
			return items[i].ID > items[j].ID
		})
	}
}

// topicChips counts open surveys per topic, ordered by topic name.
func topicChips(open []domain.Survey) []TopicChip {
	counts := map[uint]*TopicChip{}
	for _, sv := range open {
		c, ok := counts[sv.TopicID]
		if !ok {
			c = &TopicChip{TopicID: sv.TopicID}
			if sv.Topic != nil {
				c.Name = sv.Topic.Name
			}
			counts[sv.TopicID] = c
		}
		c.Count++
	}
	out := make([]TopicChip, 0, len(counts))
	for _, c := range counts {
		out = append(out, *c)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].TopicID < out[j].TopicID
	})
	return out
}

func catalogItem(sv domain.Survey, now time.Time) CatalogItem {
	it := CatalogItem{
		SurveyID:       sv.ID,
		Title:          sv.Title,
		Description:    sv.Description,
		TopicID:        sv.TopicID,
		CoverImagePath: sv.CoverImagePath,
		CreatedAt:      sv.CreatedAt,
		StartAt:        sv.StartAt,
		EndAt:          sv.EndAt,
		IsActiveNow: sv.Status == domain.StatusActive &&
			(sv.StartAt == nil || !now.Before(*sv.StartAt)) &&
			(sv.EndAt == nil || !now.After(*sv.EndAt)),
	}
	if sv.Topic != nil {
		it.TopicName = sv.Topic.Name
	}
	if sv.EndAt != nil {
		days := int(math.Max(0, sv.EndAt.Sub(now).Hours()/24))
		it.DaysLeft = &days
	}
	return it
}
