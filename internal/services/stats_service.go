// Package services – StatsService
//
// This file aggregates the responses of a survey into per-survey and
// per-question statistics. Everything is recomputed per request from the
// stored responses and answer rows; nothing is cached.
package services

import (
	"context"
	"errors"
	"fmt"
	"hash/fnv"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/tbourn/go-survey-backend/internal/domain"
	"github.com/tbourn/go-survey-backend/internal/repo"

	// OpenTelemetry
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// maxTextSamples caps the distinct text answers listed per question.
const maxTextSamples = 50

var hundred = decimal.NewFromInt(100)

// StatsService computes survey statistics.
type StatsService struct {
	DB *gorm.DB
}

// SurveyStats summarizes all responses of a survey.
type SurveyStats struct {
	SurveyID             uint             `json:"survey_id"`
	Title                string           `json:"title"`
	TotalResponses       int              `json:"total_responses"`
	CompletedResponses   int              `json:"completed_responses"`
	InProgressResponses  int              `json:"in_progress_responses"`
	UniqueRespondents    int              `json:"unique_respondents"`
	FirstResponseAt      *time.Time       `json:"first_response_at,omitempty"`
	LastResponseAt       *time.Time       `json:"last_response_at,omitempty"`
	AvgCompletionSeconds *decimal.Decimal `json:"avg_completion_seconds,omitempty"`
	Questions            []QuestionStats  `json:"questions"`
}

// QuestionStats summarizes the answers to one question. Only the block
// matching the question type is filled.
type QuestionStats struct {
	QuestionID uint   `json:"question_id"`
	OrderIndex int    `json:"order_index"`
	Text       string `json:"text"`
	Type       string `json:"type"`
	Answered   int    `json:"answered"`
	Skipped    int    `json:"skipped"`

	Choices         []ChoiceStat `json:"choices,omitempty"`
	TotalSelections int          `json:"total_selections,omitempty"`

	Numeric *NumericStats `json:"numeric,omitempty"`

	TextAnswers int      `json:"text_answers,omitempty"`
	TextSamples []string `json:"text_samples,omitempty"`
}

// ChoiceStat counts selections of one choice. Percentage is relative to the
// survey's total responses.
type ChoiceStat struct {
	ChoiceID   uint            `json:"choice_id"`
	Text       string          `json:"text"`
	Count      int             `json:"count"`
	Percentage decimal.Decimal `json:"percentage"`
}

// NumericStats describes rating and nps answers. NetPromoterScore is set for
// nps questions with at least one answer.
type NumericStats struct {
	Count            int             `json:"count"`
	Average          decimal.Decimal `json:"average"`
	Median           decimal.Decimal `json:"median"`
	Min              decimal.Decimal `json:"min"`
	Max              decimal.Decimal `json:"max"`
	Buckets          []BucketStat    `json:"buckets"`
	NetPromoterScore *int64          `json:"net_promoter_score,omitempty"`
}

// BucketStat counts the answers equal to Value.
type BucketStat struct {
	Value      decimal.Decimal `json:"value"`
	Count      int             `json:"count"`
	Percentage decimal.Decimal `json:"percentage"`
}

// Get loads the survey and its responses and computes statistics.
func (s *StatsService) Get(ctx context.Context, actor Actor, surveyID uint) (*SurveyStats, error) {
	tr := otel.Tracer("services/StatsService")
	ctx, span := tr.Start(ctx, "Get",
		trace.WithAttributes(attribute.Int("survey.id", int(surveyID))),
	)
	defer span.End()

	sv, err := repo.GetSurveyTree(ctx, s.DB, surveyID)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, ErrSurveyNotFound
	}
	if err != nil {
		return nil, err
	}
	if err := actor.canManageSurvey(sv); err != nil {
		return nil, err
	}

	responses, err := repo.ListResponses(ctx, s.DB, surveyID)
	if err != nil {
		return nil, err
	}
	details, err := repo.ListSurveyDetails(ctx, s.DB, surveyID)
	if err != nil {
		return nil, err
	}
	return ComputeStats(sv, responses, details), nil
}

// Version fingerprints the inputs of Get: the question tree plus the number
// and latest start of the responses. Answers are append-only, so an equal
// version means equal statistics.
func (s *StatsService) Version(ctx context.Context, actor Actor, surveyID uint) (string, error) {
	tr := otel.Tracer("services/StatsService")
	ctx, span := tr.Start(ctx, "Version",
		trace.WithAttributes(attribute.Int("survey.id", int(surveyID))),
	)
	defer span.End()

	sv, err := repo.GetSurveyTree(ctx, s.DB, surveyID)
	if errors.Is(err, repo.ErrNotFound) {
		return "", ErrSurveyNotFound
	}
	if err != nil {
		return "", err
	}
	if err := actor.canManageSurvey(sv); err != nil {
		return "", err
	}
	count, last, err := repo.ResponsesStats(ctx, s.DB, surveyID)
	if err != nil {
		return "", err
	}

	h := fnv.New64a()
	fmt.Fprintf(h, "%s|%s", sv.Title, sv.Status)
	for _, q := range sv.Questions {
		fmt.Fprintf(h, "|%d:%d:%s:%s:%v:%v", q.ID, q.OrderIndex, q.Type, q.Text, q.MinValue, q.MaxValue)
		for _, ch := range q.Choices {
			fmt.Fprintf(h, ",%d:%s", ch.ID, ch.Text)
		}
	}
	var ts int64
	if last != nil {
		ts = last.UnixNano()
	}
	return fmt.Sprintf("%d:%d:%d:%x", surveyID, count, ts, h.Sum64()), nil
}

// ComputeStats aggregates responses and details of sv.
func ComputeStats(sv *domain.Survey, responses []domain.Response, details []domain.ResponseDetail) *SurveyStats {
	st := &SurveyStats{
		SurveyID:       sv.ID,
		Title:          sv.Title,
		TotalResponses: len(responses),
		Questions:      make([]QuestionStats, 0, len(sv.Questions)),
	}

	respondents := map[string]struct{}{}
	var durSum decimal.Decimal
	durCount := 0
	for _, r := range responses {
		respondents[r.RespondentID] = struct{}{}
		if st.FirstResponseAt == nil || r.StartedAt.Before(*st.FirstResponseAt) {
			t := r.StartedAt
			st.FirstResponseAt = &t
		}
		last := r.StartedAt
		if r.SubmittedAt != nil {
			st.CompletedResponses++
			last = *r.SubmittedAt
			if d := r.SubmittedAt.Sub(r.StartedAt); d >= 0 {
				durSum = durSum.Add(decimal.NewFromFloat(d.Seconds()))
				durCount++
			}
		}
		if st.LastResponseAt == nil || last.After(*st.LastResponseAt) {
			t := last
			st.LastResponseAt = &t
		}
	}
	st.InProgressResponses = st.TotalResponses - st.CompletedResponses
	st.UniqueRespondents = len(respondents)
	if durCount > 0 {
		avg := durSum.Div(decimal.NewFromInt(int64(durCount))).Round(2)
		st.AvgCompletionSeconds = &avg
	}

	byQuestion := map[uint][]domain.ResponseDetail{}
	for _, d := range details {
		byQuestion[d.QuestionID] = append(byQuestion[d.QuestionID], d)
	}
	for _, q := range sv.Questions {
		st.Questions = append(st.Questions, questionStats(q, byQuestion[q.ID], st.TotalResponses))
	}
	return st
}

func questionStats(q domain.Question, rows []domain.ResponseDetail, total int) QuestionStats {
	qs := QuestionStats{QuestionID: q.ID, OrderIndex: q.OrderIndex, Text: q.Text, Type: q.Type}

	answered := map[uint]struct{}{}
	for _, d := range rows {
		answered[d.ResponseID] = struct{}{}
	}
	qs.Answered = len(answered)
	qs.Skipped = total - qs.Answered
	if qs.Skipped < 0 {
		qs.Skipped = 0
	}

	switch q.Type {
	case domain.QuestionSingle, domain.QuestionMulti:
		counts := map[uint]int{}
		for _, d := range rows {
			if d.ChoiceID != nil {
				counts[*d.ChoiceID]++
				qs.TotalSelections++
			}
		}
		qs.Choices = make([]ChoiceStat, 0, len(q.Choices))
		for _, c := range q.Choices {
			n := counts[c.ID]
			qs.Choices = append(qs.Choices, ChoiceStat{
				ChoiceID:   c.ID,
				Text:       c.Text,
				Count:      n,
				Percentage: percent(n, total),
			})
		}

	case domain.QuestionRating, domain.QuestionNPS:
		var vals []decimal.Decimal
		for _, d := range rows {
			if d.AnswerNumber != nil {
				vals = append(vals, *d.AnswerNumber)
			}
		}
		if len(vals) > 0 {
			qs.Numeric = numericStats(vals, q.Type == domain.QuestionNPS)
		}

	default:
		seen := map[string]struct{}{}
		for _, d := range rows {
			if d.AnswerText == nil {
				continue
			}
			t := strings.TrimSpace(*d.AnswerText)
			if t == "" {
				continue
			}
			qs.TextAnswers++
			if _, dup := seen[t]; dup || len(qs.TextSamples) >= maxTextSamples {
				continue
			}
			seen[t] = struct{}{}
			qs.TextSamples = append(qs.TextSamples, t)
		}
	}
	return qs
}

func numericStats(vals []decimal.Decimal, nps bool) *NumericStats {
	sorted := append([]decimal.Decimal(nil), vals...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].LessThan(sorted[j]) })

	n := len(sorted)
	ns := &NumericStats{
		Count:   n,
		Average: decimal.Sum(sorted[0], sorted[1:]...).Div(decimal.NewFromInt(int64(n))).Round(2),
		Min:     sorted[0].Round(2),
		Max:     sorted[n-1].Round(2),
	}
	if n%2 == 1 {
		ns.Median = sorted[n/2].Round(2)
	} else {
		ns.Median = sorted[n/2-1].Add(sorted[n/2]).Div(decimal.NewFromInt(2)).Round(2)
	}

	for i := 0; i < n; {
		j := i
		for j < n && sorted[j].Equal(sorted[i]) {
			j++
		}
		ns.Buckets = append(ns.Buckets, BucketStat{
			Value:      sorted[i],
			Count:      j - i,
			Percentage: percent(j-i, n),
		})
		i = j
	}

	if nps {
		score := netPromoterScore(sorted)
		ns.NetPromoterScore = &score
	}
	return ns
}

// netPromoterScore is the share of promoters (9-10) minus the share of
// detractors (0-6), as a whole percentage.
func netPromoterScore(vals []decimal.Decimal) int64 {
	promoterMin := decimal.NewFromInt(9)
	detractorMax := decimal.NewFromInt(6)
	var promoters, detractors int64
	for _, v := range vals {
		switch {
		case v.GreaterThanOrEqual(promoterMin):
			promoters++
		case v.LessThanOrEqual(detractorMax):
			detractors++
		}
	}
	return decimal.NewFromInt(promoters - detractors).
		Mul(hundred).
		Div(decimal.NewFromInt(int64(len(vals)))).
		Round(0).
		IntPart()
}

// percent returns n/total as a percentage with two decimals; 0 when total is 0.
func percent(n, total int) decimal.Decimal {
	if total <= 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(int64(n)).Mul(hundred).Div(decimal.NewFromInt(int64(total))).Round(2)
}
