package models

import (
	"strings"
	"time"

	id "vaxtrack/pkg/domain"
	dErrors "vaxtrack/pkg/domain-errors"
)

// Status is the lifecycle state of a dose instance.
type Status string

const (
	StatusUpcoming  Status = "upcoming"
	StatusDueSoon   Status = "due_soon"
	StatusOverdue   Status = "overdue"
	StatusCompleted Status = "completed"
)

// DueSoonWindowDays is the inclusive number of days before the scheduled date
// during which a dose is due soon.
const DueSoonWindowDays = 30

// IsValid reports whether s is a known status.
func (s Status) IsValid() bool {
	switch s {
	case StatusUpcoming, StatusDueSoon, StatusOverdue, StatusCompleted:
		return true
	}
	return false
}

// IsTerminal reports whether the status can no longer change.
func (s Status) IsTerminal() bool {
	return s == StatusCompleted
}

// ParseStatus validates a status string from an external caller.
func ParseStatus(raw string) (Status, error) {
	s := Status(strings.ToLower(strings.TrimSpace(raw)))
	if !s.IsValid() {
		return "", dErrors.New(dErrors.CodeValidation, "invalid status: "+raw)
	}
	return s, nil
}

// ComputeStatus derives a non-terminal status from calendar days between
// current and scheduled, both taken as UTC dates. It never returns
// StatusCompleted.
func ComputeStatus(scheduled, current time.Time) Status {
	diff := id.DaysBetween(current, scheduled)
	switch {
	case diff < 0:
		return StatusOverdue
	case diff <= DueSoonWindowDays:
		return StatusDueSoon
	default:
		return StatusUpcoming
	}
}
