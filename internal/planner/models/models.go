// Package models defines planner entries: the prioritized, near-term view of
// vaccinations a subject should act on, with reminder text.
package models

import (
	"cmp"
	"fmt"
	"slices"
	"strings"
	"time"

	id "vaxtrack/pkg/domain"
	dErrors "vaxtrack/pkg/domain-errors"
)

type Status string

const (
	StatusOverdue   Status = "overdue"
	StatusUpcoming  Status = "upcoming"
	StatusCompleted Status = "completed"
	StatusSkipped   Status = "skipped"
)

type Priority string

const (
	PriorityUrgent Priority = "urgent"
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// Planning windows, in days.
const (
	LookAheadDays      = 730
	HighPriorityDays   = 30
	MediumPriorityDays = 90
	ReminderLeadDays   = 7
)

// Annual vaccines are planned on a fixed calendar day each year.
const (
	AnnualMonth = time.March
	AnnualDay   = 15
)

// DefaultReminderTime is the local time of day reminders are suggested for.
const DefaultReminderTime = "09:00"

// Entry is one planned occurrence of a vaccine for a subject.
type Entry struct {
	ID              id.PlannerEntryID
	SubjectID       id.SubjectID
	VaccineID       id.VaccineID
	VaccineName     string
	Occurrence      int
	ScheduledDate   time.Time
	Status          Status
	Priority        Priority
	ReminderTitle   string
	ReminderMessage string
	ReminderDate    time.Time
	ReminderTime    string
	CompletedDate   *time.Time
	CompletedCity   string
	Notes           string
	CreatedAt       time.Time
}

// AnnualDate returns the planning date of an annual vaccine in year.
func AnnualDate(year int) time.Time {
	return time.Date(year, AnnualMonth, AnnualDay, 0, 0, 0, 0, time.UTC)
}

// StatusFor is overdue once the date has passed, upcoming otherwise.
func StatusFor(scheduled, today time.Time) Status {
	if id.DaysBetween(today, scheduled) < 0 {
		return StatusOverdue
	}
	return StatusUpcoming
}

// PriorityFor ranks an entry by how soon it needs attention. daysUntil is
// negative for overdue entries.
func PriorityFor(status Status, daysUntil int, mandatory bool) Priority {
	switch {
	case status == StatusOverdue:
		return PriorityUrgent
	case daysUntil <= HighPriorityDays && mandatory:
		return PriorityHigh
	case daysUntil <= MediumPriorityDays:
		return PriorityMedium
	default:
		return PriorityLow
	}
}

func ReminderTitle(status Status, daysUntil int) string {
	switch {
	case status == StatusOverdue:
		return "Overdue vaccination"
	case daysUntil <= HighPriorityDays:
		return "Upcoming vaccination"
	default:
		return "Scheduled vaccination"
	}
}

func ReminderMessage(name string, status Status, daysUntil int) string {
	switch {
	case status == StatusOverdue:
		return fmt.Sprintf("URGENT: %s is %d days overdue", name, -daysUntil)
	case daysUntil <= ReminderLeadDays:
		return fmt.Sprintf("REMINDER: %s is due in %d days", name, daysUntil)
	case daysUntil <= HighPriorityDays:
		return fmt.Sprintf("%s is due in %d days", name, daysUntil)
	default:
		return fmt.Sprintf("%s is scheduled for %d days from now", name, daysUntil)
	}
}

// ReminderDate is today for overdue entries, otherwise a week before the
// scheduled date but never in the past.
func ReminderDate(status Status, scheduled, today time.Time) time.Time {
	today = id.DateOnly(today)
	if status == StatusOverdue {
		return today
	}
	lead := id.AddDays(scheduled, -ReminderLeadDays)
	if lead.Before(today) {
		return today
	}
	return lead
}

// CompleteRequest records a planner entry as done.
type CompleteRequest struct {
	CompletedDate time.Time
	City          string
	Notes         string
}

// Complete marks the entry completed. Completion is terminal.
func (e *Entry) Complete(req CompleteRequest, now time.Time) error {
	if e.Status == StatusCompleted {
		return dErrors.New(dErrors.CodeInvalidState, "planner entry already completed")
	}
	if req.CompletedDate.IsZero() {
		req.CompletedDate = now
	}
	completed := id.DateOnly(req.CompletedDate)
	if completed.After(id.DateOnly(now)) {
		return dErrors.Invalid("completed_date", "cannot be in the future")
	}
	e.Status = StatusCompleted
	e.CompletedDate = &completed
	if req.City != "" {
		e.CompletedCity = req.City
	}
	if req.Notes != "" {
		e.Notes = req.Notes
	}
	return nil
}

func statusRank(s Status) int {
	switch s {
	case StatusOverdue:
		return 0
	case StatusUpcoming:
		return 1
	case StatusCompleted:
		return 2
	default:
		return 3
	}
}

// SortForDisplay orders entries overdue first, then upcoming, completed, and
// anything else, each group by ascending scheduled date.
func SortForDisplay(entries []*Entry) {
	slices.SortStableFunc(entries, func(a, b *Entry) int {
		return cmp.Or(
			cmp.Compare(statusRank(a.Status), statusRank(b.Status)),
			a.ScheduledDate.Compare(b.ScheduledDate),
			strings.Compare(a.VaccineName, b.VaccineName),
		)
	})
}
