// Package models defines dose instances, reminders, and the status rules
// that govern them.
package models

import (
	"time"

	id "vaxtrack/pkg/domain"
	dErrors "vaxtrack/pkg/domain-errors"
)

// DoseInstance is one dated dose of one vaccine for one subject.
// DoseNumber increases with ScheduledDate within a (subject, vaccine) group.
type DoseInstance struct {
	ID            id.DoseID
	SubjectID     id.SubjectID
	VaccineID     id.VaccineID
	DoseNumber    int
	ScheduledDate time.Time
	Status        Status
	CompletedDate *time.Time
	City          string
	ImageURL      string
	Notes         string
	Active        bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Key identifies a dose slot across regenerations.
type Key struct {
	VaccineID  id.VaccineID
	DoseNumber int
}

func (d *DoseInstance) Key() Key {
	return Key{VaccineID: d.VaccineID, DoseNumber: d.DoseNumber}
}

// IsPending reports whether the synchronizer may still change the status.
func (d *DoseInstance) IsPending() bool {
	return d.Active && !d.Status.IsTerminal()
}

// Completion carries the details recorded when a dose is administered.
type Completion struct {
	CompletedDate time.Time
	City          string
	ImageURL      string
	Notes         string
}

// Complete moves the dose to its terminal state. Empty completion fields keep
// any values already on the dose.
func (d *DoseInstance) Complete(c Completion, now time.Time) error {
	if d.Status == StatusCompleted {
		return dErrors.New(dErrors.CodeInvalidState, "dose already completed")
	}
	if !d.Active {
		return dErrors.New(dErrors.CodeInvalidState, "dose is inactive")
	}
	if c.CompletedDate.IsZero() {
		c.CompletedDate = now
	}
	if id.DateOnly(c.CompletedDate).After(id.DateOnly(now)) {
		return dErrors.Invalid("completed_date", "cannot be in the future")
	}
	completed := id.DateOnly(c.CompletedDate)
	d.Status = StatusCompleted
	d.CompletedDate = &completed
	if c.City != "" {
		d.City = c.City
	}
	if c.ImageURL != "" {
		d.ImageURL = c.ImageURL
	}
	if c.Notes != "" {
		d.Notes = c.Notes
	}
	d.UpdatedAt = now
	return nil
}

// Reminder is notification metadata attached to a dose. Delivery happens
// elsewhere.
type Reminder struct {
	ID        id.ReminderID
	DoseID    id.DoseID
	SubjectID id.SubjectID
	Title     string
	Message   string
	RemindAt  time.Time
	Active    bool
	CreatedAt time.Time
}

// ListFilter narrows a subject's schedule listing.
type ListFilter struct {
	Status    Status
	VaccineID *id.VaccineID
}

// Matches applies the filter to a dose.
func (f ListFilter) Matches(d *DoseInstance) bool {
	if f.Status != "" && d.Status != f.Status {
		return false
	}
	if f.VaccineID != nil && d.VaccineID != *f.VaccineID {
		return false
	}
	return true
}

// StatusChange is one row of a batched status update.
type StatusChange struct {
	DoseID id.DoseID
	Status Status
}

// DateChange is one row of a batched reschedule.
type DateChange struct {
	DoseID        id.DoseID
	ScheduledDate time.Time
}
