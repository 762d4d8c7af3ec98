package services

import (
	"time"

	"github.com/tbourn/go-survey-backend/internal/domain"
)

// Actor is the authenticated caller of an administrative operation.
type Actor struct {
	UserID  uint
	IsAdmin bool
}

// ownerFilter returns the owner id used to scope listings: 0 (everything)
// for admins, the caller's id otherwise.
func (a Actor) ownerFilter() uint {
	if a.IsAdmin {
		return 0
	}
	return a.UserID
}

// canManage reports whether a may manage a survey owned by ownerID.
func (a Actor) canManage(ownerID uint) bool {
	return a.IsAdmin || (a.UserID != 0 && a.UserID == ownerID)
}

// canManageSurvey checks ownership of s.
func (a Actor) canManageSurvey(s *domain.Survey) error {
	if s == nil || !a.canManage(s.OwnerUserID) {
		return ErrForbidden
	}
	return nil
}

// clock returns now() from fn or the wall clock, always in UTC.
func clock(fn func() time.Time) time.Time {
	if fn != nil {
		return fn().UTC()
	}
	return time.Now().UTC()
}
