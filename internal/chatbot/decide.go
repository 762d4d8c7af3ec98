package chatbot

import (
	"errors"
	"strings"
)

// Kind tags the outcome of one incoming message.
type Kind int

const (
	KindExpired Kind = iota
	KindEmpty
	KindCancel
	KindSuggest
	KindCompleted
	KindHelp
	KindRepeat
	KindSkipRefused
	KindSkip
	KindInvalid
	KindAnswer
)

var kindNames = [...]string{
	KindExpired:     "expired",
	KindEmpty:       "empty",
	KindCancel:      "cancel",
	KindSuggest:     "suggest",
	KindCompleted:   "completed",
	KindHelp:        "help",
	KindRepeat:      "repeat",
	KindSkipRefused: "skip_refused",
	KindSkip:        "skip",
	KindInvalid:     "invalid",
	KindAnswer:      "answer",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// Outcome is the decision taken for one message. Decide never mutates the
// session; callers apply the outcome with Session.Apply and then act on the
// Evict and Finalize flags.
type Outcome struct {
	Kind     Kind
	Messages []string

	// Answer is recorded for the current question (KindAnswer only).
	Answer *Answer
	// Advance moves the cursor by one (KindSkip and KindAnswer).
	Advance bool
	// Finalize marks that advancing reached the end: the session must be
	// persisted and evicted.
	Finalize bool
	// Evict removes the session without persisting it (KindCancel).
	Evict bool

	Completed      bool
	SessionExpired bool
}

// Mutates reports whether applying o changes the session.
func (o Outcome) Mutates() bool { return o.Answer != nil || o.Advance || o.Finalize }

// Expired is the outcome for an unknown or evicted conversation.
func Expired() Outcome {
	return Outcome{Kind: KindExpired, SessionExpired: true, Messages: []string{MsgExpired}}
}

// Decide evaluates message against s in priority order: empty, cancel,
// suggest, completed, help, repeat, skip, answer. A nil session yields
// Expired. participant personalizes the completion message.
func Decide(s *Session, message, participant string) Outcome {
	if s == nil {
		return Expired()
	}
	if strings.TrimSpace(message) == "" {
		return Outcome{Kind: KindEmpty, Messages: []string{MsgEmpty}}
	}

	n := normalize(message)

	if Has(n, IntentCancel) {
		return Outcome{Kind: KindCancel, Evict: true, SessionExpired: true, Messages: []string{MsgCancelled}}
	}

	if Has(n, IntentSuggest) {
		if q, ok := s.clampedCurrent(); ok {
			return Outcome{Kind: KindSuggest, Messages: []string{Suggestion(q)}}
		}
	}

	if s.Completed {
		return Outcome{Kind: KindCompleted, Completed: true, Messages: []string{MsgAlreadyDone}}
	}
	q, ok := s.Current()
	if !ok {
		return Outcome{Kind: KindCompleted, Completed: true, Messages: []string{MsgAtEnd}}
	}

	if Has(n, IntentHelp) {
		return Outcome{Kind: KindHelp, Messages: []string{Help(q)}}
	}
	if Has(n, IntentRepeat) {
		return Outcome{Kind: KindRepeat, Messages: []string{Prompt(q)}}
	}

	if Has(n, IntentSkip) {
		if q.IsRequired {
			return Outcome{Kind: KindSkipRefused, Messages: []string{MsgSkipRequired}}
		}
		return s.advance(Outcome{Kind: KindSkip, Advance: true, Messages: []string{MsgSkipped}}, participant)
	}

	ans, ack, err := ParseAnswer(q, message)
	if err != nil {
		msg := MsgNotUnderstood
		var iae *InvalidAnswerError
		if errors.As(err, &iae) && iae.Msg != "" {
			msg = iae.Msg
		}
		return Outcome{Kind: KindInvalid, Messages: []string{msg}}
	}
	if ack == "" {
		ack = "Đã ghi nhận câu trả lời."
	}
	return s.advance(Outcome{Kind: KindAnswer, Answer: &ans, Advance: true, Messages: []string{ack}}, participant)
}

// advance appends either the next prompt or the completion message to o.
func (s *Session) advance(o Outcome, participant string) Outcome {
	next := s.Cursor + 1
	if next < len(s.Questions) {
		o.Messages = append(o.Messages, Prompt(s.Questions[next]))
		return o
	}
	o.Finalize = true
	o.Completed = true
	o.Messages = append(o.Messages, Completion(participant))
	return o
}
