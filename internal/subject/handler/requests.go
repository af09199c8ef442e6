package handler

import (
	"strings"
	"time"

	"vaxtrack/internal/subject/models"
	"vaxtrack/internal/subject/service"
	dErrors "vaxtrack/pkg/domain-errors"
	"vaxtrack/pkg/platform/validation"
)

const dateLayout = "2006-01-02"

type RegisterSubjectRequest struct {
	Kind        string `json:"kind" validate:"required,oneof=user dependent"`
	DateOfBirth string `json:"date_of_birth" validate:"omitempty,datetime=2006-01-02"`
	Country     string `json:"country" validate:"omitempty,len=2,alpha"`
}

func (r *RegisterSubjectRequest) Normalize() {
	if r == nil {
		return
	}
	r.Kind = strings.ToLower(strings.TrimSpace(r.Kind))
	r.DateOfBirth = strings.TrimSpace(r.DateOfBirth)
	r.Country = strings.TrimSpace(r.Country)
}

func (r *RegisterSubjectRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request is required")
	}
	return validation.Validate(r)
}

func (r *RegisterSubjectRequest) ToCommand() service.RegisterCommand {
	cmd := service.RegisterCommand{Kind: models.Kind(r.Kind), Country: r.Country}
	if r.DateOfBirth != "" {
		// Validate already enforced the layout.
		if dob, err := time.Parse(dateLayout, r.DateOfBirth); err == nil {
			cmd.DateOfBirth = &dob
		}
	}
	return cmd
}
