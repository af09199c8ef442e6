// Package models defines the people schedules are generated for.
package models

import (
	"time"

	"github.com/google/uuid"

	id "vaxtrack/pkg/domain"
)

// Kind distinguishes account holders from the dependents they manage.
type Kind string

const (
	KindUser      Kind = "user"
	KindDependent Kind = "dependent"
)

// Subject is a user or dependent with the date of birth schedules derive from.
// A user's OwnerID equals its own ID.
type Subject struct {
	ID          id.SubjectID
	Kind        Kind
	OwnerID     id.UserID
	DateOfBirth *time.Time
	Country     string
	CreatedAt   time.Time
}

// OwnedBy reports whether userID may manage this subject.
func (s *Subject) OwnedBy(userID id.UserID) bool {
	if userID.IsNil() {
		return false
	}
	return uuid.UUID(s.ID) == uuid.UUID(userID) || s.OwnerID == userID
}

// HasDateOfBirth reports whether a schedule can be generated.
func (s *Subject) HasDateOfBirth() bool {
	return s.DateOfBirth != nil && !s.DateOfBirth.IsZero()
}

// AccessibleBy reports whether caller may read or act on the subject.
// A nil caller is an internal job (sweep worker, operator CLI) and sees every
// subject; HTTP routes always carry an authenticated user.
func (s *Subject) AccessibleBy(caller id.UserID) bool {
	return caller.IsNil() || s.OwnedBy(caller)
}
