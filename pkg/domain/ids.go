// Package domain provides type-safe identifiers to prevent mixing up IDs at compile time.
package domain

import (
	"github.com/google/uuid"

	dErrors "vaxtrack/pkg/domain-errors"
)

// Distinct ID types - compiler prevents passing a VaccineID where a SubjectID is expected.
type (
	UserID         uuid.UUID
	SubjectID      uuid.UUID
	VaccineID      uuid.UUID
	DoseID         uuid.UUID
	ReminderID     uuid.UUID
	PlannerEntryID uuid.UUID
)

// Parse functions - use at trust boundaries (handlers, API inputs).

func ParseUserID(s string) (UserID, error) {
	id, err := parseUUID(s, "user ID")
	return UserID(id), err
}

func ParseSubjectID(s string) (SubjectID, error) {
	id, err := parseUUID(s, "subject ID")
	return SubjectID(id), err
}

func ParseVaccineID(s string) (VaccineID, error) {
	id, err := parseUUID(s, "vaccine ID")
	return VaccineID(id), err
}

func ParseDoseID(s string) (DoseID, error) {
	id, err := parseUUID(s, "dose ID")
	return DoseID(id), err
}

func ParseReminderID(s string) (ReminderID, error) {
	id, err := parseUUID(s, "reminder ID")
	return ReminderID(id), err
}

func ParsePlannerEntryID(s string) (PlannerEntryID, error) {
	id, err := parseUUID(s, "planner entry ID")
	return PlannerEntryID(id), err
}

// New constructors.

func NewSubjectID() SubjectID           { return SubjectID(uuid.New()) }
func NewVaccineID() VaccineID           { return VaccineID(uuid.New()) }
func NewDoseID() DoseID                 { return DoseID(uuid.New()) }
func NewReminderID() ReminderID         { return ReminderID(uuid.New()) }
func NewPlannerEntryID() PlannerEntryID { return PlannerEntryID(uuid.New()) }

// String methods - for logging and debugging.

func (id UserID) String() string         { return uuid.UUID(id).String() }
func (id SubjectID) String() string      { return uuid.UUID(id).String() }
func (id VaccineID) String() string      { return uuid.UUID(id).String() }
func (id DoseID) String() string         { return uuid.UUID(id).String() }
func (id ReminderID) String() string     { return uuid.UUID(id).String() }
func (id PlannerEntryID) String() string { return uuid.UUID(id).String() }

// IsNil checks - used for service-layer validation.

func (id UserID) IsNil() bool         { return uuid.UUID(id) == uuid.Nil }
func (id SubjectID) IsNil() bool      { return uuid.UUID(id) == uuid.Nil }
func (id VaccineID) IsNil() bool      { return uuid.UUID(id) == uuid.Nil }
func (id DoseID) IsNil() bool         { return uuid.UUID(id) == uuid.Nil }
func (id ReminderID) IsNil() bool     { return uuid.UUID(id) == uuid.Nil }
func (id PlannerEntryID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }

// parseUUID is the shared validation logic.
// Nil UUIDs are allowed here; services reject them with IsNil so store lookups
// can still report "not found" consistently.
func parseUUID(s, label string) (uuid.UUID, error) {
	if s == "" {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, label+" cannot be empty")
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "invalid "+label+" format")
	}
	return id, nil
}
