package handler

import (
	"strings"
	"time"

	"vaxtrack/internal/schedule/models"
	"vaxtrack/internal/schedule/service"
	dErrors "vaxtrack/pkg/domain-errors"
	"vaxtrack/pkg/platform/validation"
)

const dateLayout = "2006-01-02"

// CompleteDoseRequest records where and when a dose was administered. An
// empty completed_date means today.
type CompleteDoseRequest struct {
	CompletedDate string `json:"completed_date" validate:"omitempty,datetime=2006-01-02"`
	City          string `json:"city"`
	ImageURL      string `json:"image_url" validate:"omitempty,url"`
	Notes         string `json:"notes"`
}

func (r *CompleteDoseRequest) Normalize() {
	if r == nil {
		return
	}
	r.CompletedDate = strings.TrimSpace(r.CompletedDate)
	r.City = strings.TrimSpace(r.City)
	r.ImageURL = strings.TrimSpace(r.ImageURL)
	r.Notes = strings.TrimSpace(r.Notes)
}

func (r *CompleteDoseRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request is required")
	}
	// Phase 1: size limits
	if err := validation.CheckStringLength("city", r.City, validation.MaxCityLength); err != nil {
		return err
	}
	if err := validation.CheckStringLength("image_url", r.ImageURL, validation.MaxImageURLLength); err != nil {
		return err
	}
	if err := validation.CheckStringLength("notes", r.Notes, validation.MaxNotesLength); err != nil {
		return err
	}
	// Phase 2: syntax
	return validation.Validate(r)
}

func (r *CompleteDoseRequest) ToCompletion() models.Completion {
	c := models.Completion{City: r.City, ImageURL: r.ImageURL, Notes: r.Notes}
	if r.CompletedDate != "" {
		if d, err := time.Parse(dateLayout, r.CompletedDate); err == nil {
			c.CompletedDate = d
		}
	}
	return c
}

type CreateReminderRequest struct {
	Title    string `json:"title" validate:"required,notblank"`
	Message  string `json:"message"`
	RemindAt string `json:"remind_at" validate:"required,datetime=2006-01-02T15:04:05Z07:00"`
}

func (r *CreateReminderRequest) Normalize() {
	if r == nil {
		return
	}
	r.Title = strings.TrimSpace(r.Title)
	r.Message = strings.TrimSpace(r.Message)
	r.RemindAt = strings.TrimSpace(r.RemindAt)
}

func (r *CreateReminderRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request is required")
	}
	if err := validation.CheckStringLength("title", r.Title, validation.MaxReminderTitleLength); err != nil {
		return err
	}
	if err := validation.CheckStringLength("message", r.Message, validation.MaxReminderMessageLength); err != nil {
		return err
	}
	return validation.Validate(r)
}

func (r *CreateReminderRequest) ToCommand() service.ReminderCommand {
	cmd := service.ReminderCommand{Title: r.Title, Message: r.Message}
	if t, err := time.Parse(time.RFC3339, r.RemindAt); err == nil {
		cmd.RemindAt = t
	}
	return cmd
}
