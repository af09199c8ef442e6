package handler

import (
	"time"

	"vaxtrack/internal/planner/models"
)

type GenerateResponse struct {
	Success      bool `json:"success"`
	PlannedCount int  `json:"planned_count"`
}

type EntryResponse struct {
	ID              string    `json:"id"`
	VaccineID       string    `json:"vaccine_id"`
	VaccineName     string    `json:"vaccine_name"`
	Occurrence      int       `json:"occurrence"`
	ScheduledDate   string    `json:"scheduled_date"`
	Status          string    `json:"status"`
	Priority        string    `json:"priority"`
	ReminderTitle   string    `json:"reminder_title"`
	ReminderMessage string    `json:"reminder_message"`
	ReminderDate    string    `json:"reminder_date"`
	ReminderTime    string    `json:"reminder_time"`
	CompletedDate   *string   `json:"completed_date"`
	CompletedCity   string    `json:"completed_city,omitempty"`
	Notes           string    `json:"notes,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
}

type PlannerResponse struct {
	Success bool             `json:"success"`
	Entries []*EntryResponse `json:"entries"`
}

func toEntryResponse(e *models.Entry) *EntryResponse {
	resp := &EntryResponse{
		ID:              e.ID.String(),
		VaccineID:       e.VaccineID.String(),
		VaccineName:     e.VaccineName,
		Occurrence:      e.Occurrence,
		ScheduledDate:   e.ScheduledDate.Format(dateLayout),
		Status:          string(e.Status),
		Priority:        string(e.Priority),
		ReminderTitle:   e.ReminderTitle,
		ReminderMessage: e.ReminderMessage,
		ReminderDate:    e.ReminderDate.Format(dateLayout),
		ReminderTime:    e.ReminderTime,
		CompletedCity:   e.CompletedCity,
		Notes:           e.Notes,
		CreatedAt:       e.CreatedAt,
	}
	if e.CompletedDate != nil {
		d := e.CompletedDate.Format(dateLayout)
		resp.CompletedDate = &d
	}
	return resp
}
