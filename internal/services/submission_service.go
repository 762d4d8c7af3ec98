// Package services – SubmissionService
//
// This file implements web-form submission of a survey. Form fields follow
// the q_{questionId} / q_{questionId}_opt_{choiceId} convention; values are
// validated with the same parsers as the chatbot flow and stored in the same
// shape. A client-supplied idempotency key makes retries return the
// originally created response.
package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"gorm.io/gorm"

	"github.com/tbourn/go-survey-backend/internal/chatbot"
	"github.com/tbourn/go-survey-backend/internal/domain"
	"github.com/tbourn/go-survey-backend/internal/repo"

	// OpenTelemetry
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// anonymousIdemPrefix prefixes the client address that owns the idempotency
// keys of unauthenticated submitters.
const anonymousIdemPrefix = "anon:"

// SubmissionService stores web-form responses.
type SubmissionService struct {
	DB             *gorm.DB
	IdempotencyTTL time.Duration
	Now            func() time.Time
}

// Submitter identifies who submits a form. A zero UserID is anonymous;
// Client is then the caller's address and owns its idempotency keys.
type Submitter struct {
	UserID uint
	Email  string
	Client string
}

// SubmitResult is the stored response and whether it was replayed from an
// earlier request with the same idempotency key.
type SubmitResult struct {
	Response *domain.Response
	Replayed bool
}

// IdempotencyScope names the resource a submission key is bound to.
func IdempotencyScope(surveyID uint) string {
	return "survey:" + strconv.FormatUint(uint64(surveyID), 10)
}

// idemUser is the owner of who's idempotency keys. It is empty for an
// anonymous submitter without a client address, whose keys are ignored.
func (who Submitter) idemUser() string {
	if who.UserID != 0 {
		return strconv.FormatUint(uint64(who.UserID), 10)
	}
	if c := strings.TrimSpace(who.Client); c != "" {
		return anonymousIdemPrefix + c
	}
	return ""
}

// formHash fingerprints a submitted form independent of field order.
func formHash(form map[string][]string) string {
	sum := sha256.Sum256([]byte(url.Values(form).Encode()))
	return hex.EncodeToString(sum[:])
}

// Submit validates form against surveyID and stores one response. Invalid
// forms yield a *ValidationError listing every problem.
func (s *SubmissionService) Submit(ctx context.Context, surveyID uint, form map[string][]string, who Submitter, idemKey string) (*SubmitResult, error) {
	tr := otel.Tracer("services/SubmissionService")
	ctx, span := tr.Start(ctx, "Submit",
		trace.WithAttributes(
			attribute.Int("survey.id", int(surveyID)),
			attribute.Bool("idempotent", idemKey != ""),
		),
	)
	defer span.End()

	now := clock(s.Now)
	scope := IdempotencyScope(surveyID)
	if who.idemUser() == "" {
		idemKey = ""
	}
	hash := formHash(form)

	if idemKey != "" {
		prev, err := s.replay(ctx, who, scope, idemKey, hash, now)
		if err == nil {
			return &SubmitResult{Response: prev, Replayed: true}, nil
		}
		if errors.Is(err, ErrIdempotencyConflict) {
			return nil, err
		}
	}

	sv, err := repo.GetSurveyTree(ctx, s.DB, surveyID)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, ErrSurveyNotFound
	}
	if err != nil {
		return nil, err
	}
	if !sv.IsAvailable(now) {
		return nil, ErrSurveyUnavailable
	}

	details, err := ParseForm(sv, form)
	if err != nil {
		return nil, err
	}

	sub := submission{SurveyID: sv.ID, StartedAt: now, SubmittedAt: now, Details: details}
	if who.UserID != 0 && !sv.IsAnonymous {
		uid := who.UserID
		sub.UserID = &uid
		if e := strings.TrimSpace(who.Email); e != "" {
			sub.Email = &e
		}
	}

	var record func(tx *gorm.DB, r *domain.Response) error
	if idemKey != "" {
		record = func(tx *gorm.DB, r *domain.Response) error {
			_, err := repo.CreateIdempotency(ctx, tx, who.idemUser(), scope, idemKey,
				strconv.FormatUint(uint64(r.ID), 10), hash, http.StatusCreated, s.ttl())
			return err
		}
	}

	resp, err := sub.persist(ctx, s.DB, record)
	if errors.Is(err, repo.ErrDuplicate) {
		// A concurrent request with the same key won.
		prev, rerr := s.replay(ctx, who, scope, idemKey, hash, now)
		if rerr == nil {
			return &SubmitResult{Response: prev, Replayed: true}, nil
		}
		if errors.Is(rerr, ErrIdempotencyConflict) {
			return nil, rerr
		}
	}
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	span.SetAttributes(attribute.Int("response.id", int(resp.ID)))
	return &SubmitResult{Response: resp}, nil
}

func (s *SubmissionService) ttl() time.Duration {
	if s.IdempotencyTTL > 0 {
		return s.IdempotencyTTL
	}
	return 24 * time.Hour
}

// replay loads the response recorded for (who, scope, key). A record made
// from a different form yields ErrIdempotencyConflict.
func (s *SubmissionService) replay(ctx context.Context, who Submitter, scope, key, hash string, now time.Time) (*domain.Response, error) {
	rec, err := repo.GetIdempotency(ctx, s.DB, who.idemUser(), scope, key, now)
	if err != nil {
		return nil, err
	}
	if rec.RequestHash != "" && rec.RequestHash != hash {
		return nil, ErrIdempotencyConflict
	}
	id, err := strconv.ParseUint(rec.ResourceID, 10, 64)
	if err != nil {
		return nil, err
	}
	return repo.GetResponse(ctx, s.DB, uint(id))
}

// HasReplay reports whether key already produced a response for surveyID.
func (s *SubmissionService) HasReplay(ctx context.Context, userID, scope, key string, now time.Time) (bool, error) {
	_, err := repo.GetIdempotency(ctx, s.DB, userID, scope, key, now)
	if errors.Is(err, repo.ErrNotFound) {
		return false, nil
	}
	return err == nil, err
}

// ParseForm converts form values into response details for sv, whose
// questions and choices must be preloaded in order.
func ParseForm(sv *domain.Survey, form map[string][]string) ([]domain.ResponseDetail, error) {
	var (
		out  []domain.ResponseDetail
		errs ValidationError
	)
	for _, q := range sv.Questions {
		cq := toEngineQuestion(q)
		key := fmt.Sprintf("q_%d", q.ID)
		val := firstNonBlank(form[key])

		switch q.Type {
		case domain.QuestionMulti:
			ids := multiSelection(q, form)
			if len(ids) == 0 && val != "" {
				if ans, _, err := chatbot.ParseAnswer(cq, val); err == nil {
					ids = ans.ChoiceIDs
				} else {
					errs.add(fmt.Sprintf("Câu %d: %s", q.OrderIndex, err.Error()))
					continue
				}
			}
			if len(ids) == 0 {
				if q.IsRequired {
					errs.add(fmt.Sprintf("Thiếu chọn cho câu %d", q.OrderIndex))
				}
				continue
			}
			out = append(out, chatbot.Answer{QuestionID: q.ID, Type: q.Type, ChoiceIDs: ids}.Details()...)

		default:
			if val == "" {
				if q.IsRequired {
					errs.add(fmt.Sprintf("Thiếu trả lời cho câu %d", q.OrderIndex))
				}
				continue
			}
			ans, err := parseFormValue(q, cq, val)
			if err != nil {
				errs.add(fmt.Sprintf("Câu %d: %s", q.OrderIndex, err.Error()))
				continue
			}
			out = append(out, ans.Details()...)
		}
	}
	if err := errs.orNil(); err != nil {
		return nil, err
	}
	return out, nil
}

// parseFormValue handles single, rating, nps and text fields. A single
// value is a choice id first, then anything the chatbot parser accepts.
func parseFormValue(q domain.Question, cq chatbot.Question, val string) (chatbot.Answer, error) {
	switch q.Type {
	case domain.QuestionSingle:
		if id, err := strconv.ParseUint(val, 10, 64); err == nil {
			for _, c := range q.Choices {
				if c.ID == uint(id) {
					return chatbot.Answer{QuestionID: q.ID, Type: q.Type, ChoiceIDs: []uint{c.ID}}, nil
				}
			}
		}
		ans, _, err := chatbot.ParseAnswer(cq, val)
		return ans, err

	case domain.QuestionRating, domain.QuestionNPS:
		n, err := chatbot.ParseNumber(cq, val)
		if err != nil {
			return chatbot.Answer{}, err
		}
		return chatbot.Answer{QuestionID: q.ID, Type: q.Type, Number: &n}, nil

	default:
		text, err := chatbot.ParseText(val)
		if err != nil {
			return chatbot.Answer{}, err
		}
		if q.MaxLength != nil && *q.MaxLength > 0 && utf8.RuneCountInString(text) > *q.MaxLength {
			text = string([]rune(text)[:*q.MaxLength])
		}
		return chatbot.Answer{QuestionID: q.ID, Type: q.Type, Text: &text}, nil
	}
}

// multiSelection collects checkbox keys q_{id}_opt_{choiceId} and choice
// ids listed under q_{id}, in choice order without duplicates.
func multiSelection(q domain.Question, form map[string][]string) []uint {
	listed := map[string]struct{}{}
	for _, v := range form[fmt.Sprintf("q_%d", q.ID)] {
		for _, part := range strings.Split(v, ",") {
			if p := strings.TrimSpace(part); p != "" {
				listed[p] = struct{}{}
			}
		}
	}
	var ids []uint
	for _, c := range q.Choices {
		_, checked := form[fmt.Sprintf("q_%d_opt_%d", q.ID, c.ID)]
		_, inList := listed[strconv.FormatUint(uint64(c.ID), 10)]
		if checked || inList {
			ids = append(ids, c.ID)
		}
	}
	return ids
}

func firstNonBlank(vals []string) string {
	for _, v := range vals {
		if t := strings.TrimSpace(v); t != "" {
			return t
		}
	}
	return ""
}

// toEngineQuestion snapshots q the way a chatbot session does.
func toEngineQuestion(q domain.Question) chatbot.Question {
	cq := chatbot.Question{
		ID:         q.ID,
		OrderIndex: q.OrderIndex,
		Type:       q.Type,
		Text:       q.Text,
		IsRequired: q.IsRequired,
		MinValue:   q.MinValue,
		MaxValue:   q.MaxValue,
	}
	for _, c := range q.Choices {
		cq.Choices = append(cq.Choices, chatbot.Choice{ID: c.ID, OrderIndex: c.OrderIndex, Text: c.Text})
	}
	return cq
}
