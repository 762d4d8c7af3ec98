// Package services – ChatbotService
//
// This file implements ChatbotService, the application-level component that
// drives conversational survey sessions. It loads survey trees, keeps
// sessions in a chatbot.SessionStore, serializes messages per conversation,
// delegates every decision to chatbot.Decide, and persists a finished
// session as one response inside a single transaction.
//
// Observability: public methods are OpenTelemetry-instrumented; conversation
// lifecycle is counted in Prometheus (started, ended by reason, messages by
// outcome).
package services

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/tbourn/go-survey-backend/internal/chatbot"
	"github.com/tbourn/go-survey-backend/internal/repo"

	// OpenTelemetry
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	// DefaultParticipant addresses respondents who gave no name.
	DefaultParticipant = "bạn"

	// chatbotListLimit caps the chatbot survey picker.
	chatbotListLimit = 25
)

// ChatbotService runs chatbot conversations.
type ChatbotService struct {
	DB    *gorm.DB
	Store chatbot.SessionStore
	Locks *chatbot.KeyedMutex

	// MaxMessageRunes rejects longer messages; 0 disables the guard.
	MaxMessageRunes int

	// Now and NewID are replaceable in tests.
	Now   func() time.Time
	NewID func() string
}

// ChatSurvey is an entry of the chatbot survey picker.
type ChatSurvey struct {
	SurveyID uint   `json:"surveyId"`
	Title    string `json:"title"`
}

// ChatStart is the result of opening a conversation.
type ChatStart struct {
	ConversationID string   `json:"conversationId"`
	SurveyTitle    string   `json:"surveyTitle"`
	Messages       []string `json:"messages"`
}

// ChatReply is the bot's answer to one message.
type ChatReply struct {
	ConversationID string   `json:"conversationId"`
	Kind           string   `json:"kind"`
	Messages       []string `json:"messages"`
	Completed      bool     `json:"completed"`
	SessionExpired bool     `json:"sessionExpired"`
	// ResponseID is set once the conversation was persisted.
	ResponseID uint `json:"responseId,omitempty"`
}

func participantOrDefault(name string) string {
	if n := strings.TrimSpace(name); n != "" {
		return n
	}
	return DefaultParticipant
}

func (s *ChatbotService) newID() string {
	if s.NewID != nil {
		return s.NewID()
	}
	return uuid.NewString()
}

// ListSurveys returns the surveys a respondent can start right now, newest
// first. Blank titles fall back to chatbot.DefaultTitle.
func (s *ChatbotService) ListSurveys(ctx context.Context) ([]ChatSurvey, error) {
	tr := otel.Tracer("services/ChatbotService")
	ctx, span := tr.Start(ctx, "ListSurveys")
	defer span.End()

	items, err := repo.ListOpenSurveys(ctx, s.DB, clock(s.Now), 0, chatbotListLimit)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	out := make([]ChatSurvey, 0, len(items))
	for _, it := range items {
		title := strings.TrimSpace(it.Title)
		if title == "" {
			title = chatbot.DefaultTitle
		}
		out = append(out, ChatSurvey{SurveyID: it.ID, Title: title})
	}
	return out, nil
}

// Start opens a conversation for surveyID and returns the greeting followed
// by the first question prompt.
func (s *ChatbotService) Start(ctx context.Context, surveyID uint, participant string) (*ChatStart, error) {
	tr := otel.Tracer("services/ChatbotService")
	ctx, span := tr.Start(ctx, "Start",
		trace.WithAttributes(attribute.Int("survey.id", int(surveyID))),
	)
	defer span.End()

	sv, err := repo.GetSurveyTree(ctx, s.DB, surveyID)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, ErrSurveyNotFound
	}
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	now := clock(s.Now)
	if !sv.IsAvailable(now) {
		return nil, ErrSurveyUnavailable
	}

	sess := chatbot.NewSession(s.newID(), sv, now)
	if err := s.Store.Set(ctx, sess); err != nil {
		span.RecordError(err)
		return nil, err
	}
	chatSessionsStarted.Inc()
	span.SetAttributes(attribute.String("conversation.id", sess.ConversationID))

	first, _ := sess.Current()
	return &ChatStart{
		ConversationID: sess.ConversationID,
		SurveyTitle:    sess.SurveyTitle,
		Messages: []string{
			chatbot.Greeting(participantOrDefault(participant), sess.SurveyTitle),
			chatbot.Prompt(first),
		},
	}, nil
}

// Send handles one message of a conversation. Messages for the same
// conversation are processed one at a time. Unknown or expired ids yield a
// reply with SessionExpired set and a nil error.
func (s *ChatbotService) Send(ctx context.Context, conversationID, message, participant string) (*ChatReply, error) {
	tr := otel.Tracer("services/ChatbotService")
	ctx, span := tr.Start(ctx, "Send",
		trace.WithAttributes(attribute.String("conversation.id", conversationID)),
	)
	defer span.End()

	conversationID = strings.TrimSpace(conversationID)
	if conversationID == "" {
		return nil, ErrMissingConversation
	}
	if s.MaxMessageRunes > 0 && utf8.RuneCountInString(message) > s.MaxMessageRunes {
		return nil, ErrMessageTooLong
	}

	if s.Locks != nil {
		unlock := s.Locks.Lock(conversationID)
		defer unlock()
	}

	sess, err := s.Store.Get(ctx, conversationID)
	if errors.Is(err, chatbot.ErrSessionNotFound) {
		sess = nil
	} else if err != nil {
		span.RecordError(err)
		return nil, err
	}

	out := chatbot.Decide(sess, message, participantOrDefault(participant))
	span.SetAttributes(attribute.String("chatbot.outcome", out.Kind.String()))
	chatMessages.WithLabelValues(out.Kind.String()).Inc()

	reply := &ChatReply{
		ConversationID: conversationID,
		Kind:           out.Kind.String(),
		Messages:       out.Messages,
		Completed:      out.Completed,
		SessionExpired: out.SessionExpired,
	}

	switch {
	case out.Kind == chatbot.KindExpired:
		chatSessionsEnded.WithLabelValues("expired").Inc()
		return reply, nil

	case out.Evict:
		if err := s.Store.Delete(ctx, conversationID); err != nil {
			span.RecordError(err)
			return nil, err
		}
		chatSessionsEnded.WithLabelValues("cancelled").Inc()
		return reply, nil

	case out.Finalize:
		sess.Apply(out)
		id, err := s.finalize(ctx, sess)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "finalize")
			return nil, err
		}
		reply.ResponseID = id
		chatSessionsEnded.WithLabelValues("completed").Inc()
		return reply, nil

	case out.Mutates():
		sess.Apply(out)
		if err := s.Store.Set(ctx, sess); err != nil {
			span.RecordError(err)
			return nil, err
		}
		return reply, nil

	default:
		if err := s.Store.Touch(ctx, conversationID); err != nil && !errors.Is(err, chatbot.ErrSessionNotFound) {
			zerolog.Ctx(ctx).Warn().Err(err).Str("conversation_id", conversationID).Msg("touch chatbot session")
		}
		return reply, nil
	}
}

// finalize stores the session as an anonymous response and evicts it. The
// session is evicted even when storing fails.
func (s *ChatbotService) finalize(ctx context.Context, sess *chatbot.Session) (uint, error) {
	defer func() {
		if err := s.Store.Delete(ctx, sess.ConversationID); err != nil {
			zerolog.Ctx(ctx).Warn().Err(err).Str("conversation_id", sess.ConversationID).Msg("evict chatbot session")
		}
	}()

	sub := submission{
		SurveyID:    sess.SurveyID,
		StartedAt:   sess.StartedAt,
		SubmittedAt: clock(s.Now),
		Details:     sess.Details(),
	}
	r, err := sub.persist(ctx, s.DB, nil)
	if err != nil {
		return 0, err
	}
	return r.ID, nil
}
