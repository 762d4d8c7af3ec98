// Package chatbot implements the conversational survey engine: the session
// state walked by a respondent, keyword dispatch, answer parsing, prompt
// rendering, and the stores that keep sessions between messages.
//
// The package has no knowledge of HTTP or the database. services.ChatbotService
// loads surveys, persists finished sessions and drives the engine through
// Decide and Session.Apply.
package chatbot

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/tbourn/go-survey-backend/internal/domain"
)

// DefaultTitle is used when a survey has a blank title.
const DefaultTitle = "Khảo sát"

// Choice is a selectable option as seen by the engine.
type Choice struct {
	ID         uint   `json:"id"`
	OrderIndex int    `json:"order_index"`
	Text       string `json:"text"`
}

// Question is an immutable snapshot of a survey question.
type Question struct {
	ID         uint             `json:"id"`
	OrderIndex int              `json:"order_index"`
	Type       string           `json:"type"`
	Text       string           `json:"text"`
	IsRequired bool             `json:"is_required"`
	MinValue   *decimal.Decimal `json:"min_value,omitempty"`
	MaxValue   *decimal.Decimal `json:"max_value,omitempty"`
	Choices    []Choice         `json:"choices,omitempty"`
}

// Answer is a recorded answer, tagged by question type. Exactly one of
// ChoiceIDs, Number or Text is meaningful for a given type.
type Answer struct {
	QuestionID uint             `json:"question_id"`
	Type       string           `json:"type"`
	ChoiceIDs  []uint           `json:"choice_ids,omitempty"`
	Number     *decimal.Decimal `json:"number,omitempty"`
	Text       *string          `json:"text,omitempty"`
}

// Session is the state of one conversation.
//
// Invariants:
//   - 0 <= Cursor <= len(Questions)
//   - Cursor == len(Questions) implies Completed
//   - Answers holds at most one entry per question id
type Session struct {
	ConversationID string          `json:"conversation_id"`
	SurveyID       uint            `json:"survey_id"`
	SurveyTitle    string          `json:"survey_title"`
	Questions      []Question      `json:"questions"`
	Answers        map[uint]Answer `json:"answers"`
	Cursor         int             `json:"cursor"`
	Completed      bool            `json:"completed"`
	StartedAt      time.Time       `json:"started_at"`
}

// NewSession snapshots a survey tree into a fresh session. Questions and
// choices are expected in display order.
func NewSession(conversationID string, s *domain.Survey, now time.Time) *Session {
	title := strings.TrimSpace(s.Title)
	if title == "" {
		title = DefaultTitle
	}
	qs := make([]Question, 0, len(s.Questions))
	for _, q := range s.Questions {
		typ := strings.ToLower(strings.TrimSpace(q.Type))
		if typ == "" {
			typ = domain.QuestionText
		}
		cq := Question{
			ID:         q.ID,
			OrderIndex: q.OrderIndex,
			Type:       typ,
			Text:       q.Text,
			IsRequired: q.IsRequired,
			MinValue:   q.MinValue,
			MaxValue:   q.MaxValue,
		}
		for _, c := range q.Choices {
			cq.Choices = append(cq.Choices, Choice{ID: c.ID, OrderIndex: c.OrderIndex, Text: c.Text})
		}
		qs = append(qs, cq)
	}
	return &Session{
		ConversationID: conversationID,
		SurveyID:       s.ID,
		SurveyTitle:    title,
		Questions:      qs,
		Answers:        make(map[uint]Answer),
		StartedAt:      now.UTC(),
	}
}

// Current returns the question under the cursor, or false past the end.
func (s *Session) Current() (Question, bool) {
	if s.Cursor < 0 || s.Cursor >= len(s.Questions) {
		return Question{}, false
	}
	return s.Questions[s.Cursor], true
}

// clampedCurrent returns the question under the cursor clamped into range.
// Suggestions are computed even after the last question.
func (s *Session) clampedCurrent() (Question, bool) {
	if len(s.Questions) == 0 {
		return Question{}, false
	}
	i := s.Cursor
	if i < 0 {
		i = 0
	}
	if i > len(s.Questions)-1 {
		i = len(s.Questions) - 1
	}
	return s.Questions[i], true
}

// Apply commits the mutations carried by o. Outcomes that do not mutate
// leave s untouched.
func (s *Session) Apply(o Outcome) {
	if o.Answer != nil {
		if s.Answers == nil {
			s.Answers = make(map[uint]Answer)
		}
		s.Answers[o.Answer.QuestionID] = *o.Answer
	}
	if o.Advance && s.Cursor < len(s.Questions) {
		s.Cursor++
	}
	if o.Finalize {
		s.Completed = true
	}
}

// Details converts the recorded answers into response detail rows in
// question order: one row per selected choice, one numeric row for rating
// and nps, one text row otherwise.
func (s *Session) Details() []domain.ResponseDetail {
	var out []domain.ResponseDetail
	for _, q := range s.Questions {
		a, ok := s.Answers[q.ID]
		if !ok {
			continue
		}
		out = append(out, a.Details()...)
	}
	return out
}

// Details expands the answer into detail rows: one per selected choice,
// otherwise a single numeric or text row.
func (a Answer) Details() []domain.ResponseDetail {
	switch {
	case len(a.ChoiceIDs) > 0:
		out := make([]domain.ResponseDetail, 0, len(a.ChoiceIDs))
		for _, id := range a.ChoiceIDs {
			cid := id
			out = append(out, domain.ResponseDetail{QuestionID: a.QuestionID, ChoiceID: &cid})
		}
		return out
	case a.Number != nil:
		return []domain.ResponseDetail{{QuestionID: a.QuestionID, AnswerNumber: a.Number}}
	case a.Text != nil:
		return []domain.ResponseDetail{{QuestionID: a.QuestionID, AnswerText: a.Text}}
	}
	return nil
}
