package handler

import (
	"time"

	"vaxtrack/internal/subject/models"
)

type SubjectResponse struct {
	ID          string    `json:"id"`
	Kind        string    `json:"kind"`
	OwnerID     string    `json:"owner_id"`
	DateOfBirth *string   `json:"date_of_birth"`
	Country     string    `json:"country,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

func toSubjectResponse(s *models.Subject) *SubjectResponse {
	resp := &SubjectResponse{
		ID:        s.ID.String(),
		Kind:      string(s.Kind),
		OwnerID:   s.OwnerID.String(),
		Country:   s.Country,
		CreatedAt: s.CreatedAt,
	}
	if s.DateOfBirth != nil {
		dob := s.DateOfBirth.Format(dateLayout)
		resp.DateOfBirth = &dob
	}
	return resp
}
