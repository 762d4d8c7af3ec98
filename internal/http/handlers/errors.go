// Package handlers defines the HTTP error codes used across all API endpoints.
//
// Codes are lowercase snake_case and stable; clients branch on them rather
// than on messages. Generic codes mirror HTTP status semantics, domain codes
// name conditions the status alone cannot convey.
//
// Example response:
//
//	{
//	  "request_id": "e1b9be03-4999-4289-9f03-999b042d65d6",
//	  "code": "conflict",
//	  "message": "slug already exists"
//	}
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-survey-backend/internal/services"
)

const (
	ErrCodeBadRequest       = "bad_request"
	ErrCodeUnauthorized     = "unauthorized"
	ErrCodeForbidden        = "forbidden"
	ErrCodeNotFound         = "not_found"
	ErrCodeConflict         = "conflict"
	ErrCodeInternal         = "internal_error"
	ErrCodeMethodNotAllowed = "method_not_allowed"

	// Domain-specific:
	ErrCodeValidation         = "validation_failed"
	ErrCodeSurveyUnavailable  = "survey_unavailable"
	ErrCodeSessionExpired     = "session_expired"
	ErrCodeInvalidCredentials = "invalid_credentials"
	ErrCodeAccountDisabled    = "account_disabled"
	ErrCodeNoResponses        = "no_responses"
	ErrCodeIdempotencyReused  = "idempotency_conflict"
)

// errorMapping pairs a service error with its HTTP status and code.
type errorMapping struct {
	err    error
	status int
	code   string
}

var serviceErrors = []errorMapping{
	{services.ErrSurveyNotFound, http.StatusNotFound, ErrCodeNotFound},
	{services.ErrQuestionNotFound, http.StatusNotFound, ErrCodeNotFound},
	{services.ErrTopicNotFound, http.StatusNotFound, ErrCodeNotFound},
	{services.ErrUserNotFound, http.StatusNotFound, ErrCodeNotFound},
	{services.ErrResponseNotFound, http.StatusNotFound, ErrCodeNotFound},
	{services.ErrSurveyUnavailable, http.StatusNotFound, ErrCodeSurveyUnavailable},
	{services.ErrNoSubmittedResponses, http.StatusNotFound, ErrCodeNoResponses},

	{services.ErrForbidden, http.StatusForbidden, ErrCodeForbidden},
	{services.ErrAccountDisabled, http.StatusForbidden, ErrCodeAccountDisabled},
	{services.ErrInvalidCredentials, http.StatusUnauthorized, ErrCodeInvalidCredentials},

	{services.ErrSurveyHasResponses, http.StatusConflict, ErrCodeConflict},
	{services.ErrTopicInUse, http.StatusConflict, ErrCodeConflict},
	{services.ErrDuplicateSlug, http.StatusConflict, ErrCodeConflict},
	{services.ErrEmailTaken, http.StatusConflict, ErrCodeConflict},
	{services.ErrIdempotencyConflict, http.StatusConflict, ErrCodeIdempotencyReused},

	{services.ErrInvalidSurvey, http.StatusBadRequest, ErrCodeValidation},
	{services.ErrInvalidQuestion, http.StatusBadRequest, ErrCodeValidation},
	{services.ErrInvalidOrder, http.StatusBadRequest, ErrCodeValidation},
	{services.ErrInvalidTopic, http.StatusBadRequest, ErrCodeValidation},
	{services.ErrInvalidEmail, http.StatusBadRequest, ErrCodeValidation},
	{services.ErrWeakPassword, http.StatusBadRequest, ErrCodeValidation},
	{services.ErrUnsupportedFormat, http.StatusBadRequest, ErrCodeBadRequest},
	{services.ErrMissingConversation, http.StatusBadRequest, ErrCodeBadRequest},
	{services.ErrMessageTooLong, http.StatusBadRequest, ErrCodeBadRequest},
}

// serviceError writes the envelope matching err. Form validation failures
// get 422 with every message; unknown errors become a logged 500 whose
// message does not leak internals.
func serviceError(c *gin.Context, err error) {
	var verr *services.ValidationError
	if errors.As(err, &verr) {
		failValidation(c, verr.Messages)
		return
	}
	for _, m := range serviceErrors {
		if errors.Is(err, m.err) {
			fail(c, m.status, m.code, err.Error())
			return
		}
	}
	_ = c.Error(err)
	fail(c, http.StatusInternalServerError, ErrCodeInternal, "internal server error")
}
