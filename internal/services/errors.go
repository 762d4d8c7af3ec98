// Package services defines the business logic for surveys, questions, topics,
// responses, statistics, exports, accounts and the chatbot flow. This file
// centralizes common service-level error values so that they can be
// consistently returned by service methods and checked by callers.
//
// These errors are intended for internal use by the service layer and translation
// into user-facing messages or HTTP status codes should be performed at the
// handler/controller layer.
package services

import (
	"errors"
	"strings"
)

// Survey-related errors.
var (
	// ErrSurveyNotFound indicates that the requested survey does not exist.
	ErrSurveyNotFound = errors.New("survey not found")

	// ErrSurveyUnavailable is returned when a survey exists but does not accept
	// responses right now (not active, outside its window, or without questions).
	ErrSurveyUnavailable = errors.New("survey is not available")

	// ErrForbidden is returned when the caller neither owns the resource nor
	// holds the Admin role.
	ErrForbidden = errors.New("not allowed to manage this resource")

	// ErrInvalidSurvey wraps survey field validation failures.
	ErrInvalidSurvey = errors.New("invalid survey")

	// ErrSurveyHasResponses is returned when deleting a survey that already
	// collected responses.
	ErrSurveyHasResponses = errors.New("survey already has responses")
)

// Question-related errors.
var (
	// ErrQuestionNotFound indicates that the requested question does not exist.
	ErrQuestionNotFound = errors.New("question not found")

	// ErrInvalidQuestion wraps question validation failures.
	ErrInvalidQuestion = errors.New("invalid question")

	// ErrInvalidOrder is returned when a reorder list is not a permutation of
	// the survey's question ids.
	ErrInvalidOrder = errors.New("question order must list every question exactly once")
)

// Topic-related errors.
var (
	// ErrTopicNotFound indicates that the requested topic does not exist.
	ErrTopicNotFound = errors.New("topic not found")

	// ErrInvalidTopic wraps topic validation failures.
	ErrInvalidTopic = errors.New("invalid topic")

	// ErrDuplicateSlug is returned when a topic slug is already taken.
	ErrDuplicateSlug = errors.New("slug already exists")

	// ErrTopicInUse is returned when deleting a topic referenced by a survey.
	ErrTopicInUse = errors.New("topic is used by surveys")
)

// Account-related errors.
var (
	// ErrEmailTaken is returned on registration with an existing email.
	ErrEmailTaken = errors.New("email already registered")

	// ErrWeakPassword is returned when a password is shorter than the minimum.
	ErrWeakPassword = errors.New("password must be at least 6 characters")

	// ErrInvalidEmail is returned for an empty or malformed email.
	ErrInvalidEmail = errors.New("invalid email")

	// ErrInvalidCredentials is returned on login with an unknown email or a
	// wrong password.
	ErrInvalidCredentials = errors.New("invalid email or password")

	// ErrAccountDisabled is returned on login to an inactive account.
	ErrAccountDisabled = errors.New("account is disabled")

	// ErrUserNotFound indicates that the requested user does not exist.
	ErrUserNotFound = errors.New("user not found")
)

// Response and export errors.
var (
	// ErrResponseNotFound indicates that the requested response does not exist.
	ErrResponseNotFound = errors.New("response not found")

	// ErrNoSubmittedResponses is returned when exporting a survey without
	// submitted responses.
	ErrNoSubmittedResponses = errors.New("no submitted responses")

	// ErrUnsupportedFormat is returned for an unknown export format.
	ErrUnsupportedFormat = errors.New("unsupported export format")

	// ErrIdempotencyConflict is returned when an idempotency key is reused
	// with a different form.
	ErrIdempotencyConflict = errors.New("idempotency key reused with a different request")
)

// Chatbot errors.
var (
	// ErrMessageTooLong is returned when a chatbot message exceeds the
	// configured rune limit.
	ErrMessageTooLong = errors.New("message too long")

	// ErrMissingConversation is returned when a message carries no
	// conversation id.
	ErrMissingConversation = errors.New("conversation id is required")
)

// ValidationError lists the problems found in a submitted form. Every
// message is user-facing.
type ValidationError struct {
	Messages []string
}

func (e *ValidationError) Error() string { return strings.Join(e.Messages, "; ") }

// add records msg.
func (e *ValidationError) add(msg string) { e.Messages = append(e.Messages, msg) }

// orNil returns e when it holds at least one message.
func (e *ValidationError) orNil() error {
	if len(e.Messages) == 0 {
		return nil
	}
	return e
}
