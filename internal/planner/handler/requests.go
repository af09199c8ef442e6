package handler

import (
	"strings"
	"time"

	"vaxtrack/internal/planner/models"
	dErrors "vaxtrack/pkg/domain-errors"
	"vaxtrack/pkg/platform/validation"
)

const dateLayout = "2006-01-02"

type CompleteEntryRequest struct {
	CompletedDate string `json:"completed_date" validate:"omitempty,datetime=2006-01-02"`
	City          string `json:"city"`
	Notes         string `json:"notes"`
}

func (r *CompleteEntryRequest) Normalize() {
	if r == nil {
		return
	}
	r.CompletedDate = strings.TrimSpace(r.CompletedDate)
	r.City = strings.TrimSpace(r.City)
	r.Notes = strings.TrimSpace(r.Notes)
}

func (r *CompleteEntryRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request is required")
	}
	if err := validation.CheckStringLength("city", r.City, validation.MaxCityLength); err != nil {
		return err
	}
	if err := validation.CheckStringLength("notes", r.Notes, validation.MaxNotesLength); err != nil {
		return err
	}
	return validation.Validate(r)
}

func (r *CompleteEntryRequest) ToCompleteRequest() models.CompleteRequest {
	req := models.CompleteRequest{City: r.City, Notes: r.Notes}
	if r.CompletedDate != "" {
		if d, err := time.Parse(dateLayout, r.CompletedDate); err == nil {
			req.CompletedDate = d
		}
	}
	return req
}
