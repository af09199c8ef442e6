package handler

import (
	"time"

	"vaxtrack/internal/schedule/models"
	"vaxtrack/internal/schedule/service"
)

type GenerateResponse struct {
	Success           bool `json:"success"`
	AddedCount        int  `json:"added_count"`
	UpdatedCount      int  `json:"updated_count"`
	RemovedCount      int  `json:"removed_count"`
	SynchronizedCount int  `json:"synchronized_count"`
}

type SyncResponse struct {
	Success      bool `json:"success"`
	UpdatedCount int  `json:"updated_count"`
}

type ReminderResponse struct {
	ID       string    `json:"id"`
	DoseID   string    `json:"dose_id"`
	Title    string    `json:"title"`
	Message  string    `json:"message,omitempty"`
	RemindAt time.Time `json:"remind_at"`
}

type DoseResponse struct {
	ID            string              `json:"id"`
	SubjectID     string              `json:"subject_id"`
	VaccineID     string              `json:"vaccine_id"`
	VaccineName   string              `json:"vaccine_name,omitempty"`
	DoseNumber    int                 `json:"dose_number"`
	ScheduledDate string              `json:"scheduled_date"`
	Status        string              `json:"status"`
	CompletedDate *string             `json:"completed_date"`
	City          string              `json:"city,omitempty"`
	ImageURL      string              `json:"image_url,omitempty"`
	Notes         string              `json:"notes,omitempty"`
	Reminders     []*ReminderResponse `json:"reminders,omitempty"`
}

type ScheduleResponse struct {
	Success bool            `json:"success"`
	Doses   []*DoseResponse `json:"doses"`
}

type VaccineGroupResponse struct {
	VaccineID   string          `json:"vaccine_id"`
	VaccineName string          `json:"vaccine_name"`
	Doses       []*DoseResponse `json:"doses"`
}

type GroupedScheduleResponse struct {
	Success  bool                    `json:"success"`
	Vaccines []*VaccineGroupResponse `json:"vaccines"`
}

func toGenerateResponse(r *service.GenerateResult) *GenerateResponse {
	return &GenerateResponse{
		Success:           true,
		AddedCount:        r.Added,
		UpdatedCount:      r.Updated,
		RemovedCount:      r.Removed,
		SynchronizedCount: r.Synchronized,
	}
}

func toDoseResponse(d *models.DoseInstance, vaccineName string, reminders []*models.Reminder) *DoseResponse {
	resp := &DoseResponse{
		ID:            d.ID.String(),
		SubjectID:     d.SubjectID.String(),
		VaccineID:     d.VaccineID.String(),
		VaccineName:   vaccineName,
		DoseNumber:    d.DoseNumber,
		ScheduledDate: d.ScheduledDate.Format(dateLayout),
		Status:        string(d.Status),
		City:          d.City,
		ImageURL:      d.ImageURL,
		Notes:         d.Notes,
	}
	if d.CompletedDate != nil {
		completed := d.CompletedDate.Format(dateLayout)
		resp.CompletedDate = &completed
	}
	for _, r := range reminders {
		resp.Reminders = append(resp.Reminders, toReminderResponse(r))
	}
	return resp
}

func toReminderResponse(r *models.Reminder) *ReminderResponse {
	return &ReminderResponse{
		ID:       r.ID.String(),
		DoseID:   r.DoseID.String(),
		Title:    r.Title,
		Message:  r.Message,
		RemindAt: r.RemindAt,
	}
}

func toEntryResponses(entries []*models.ScheduleEntry) []*DoseResponse {
	out := make([]*DoseResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, toDoseResponse(e.Dose, e.VaccineName, e.Reminders))
	}
	return out
}

func toGroupedResponse(groups []*models.VaccineGroup) *GroupedScheduleResponse {
	resp := &GroupedScheduleResponse{Success: true, Vaccines: make([]*VaccineGroupResponse, 0, len(groups))}
	for _, g := range groups {
		resp.Vaccines = append(resp.Vaccines, &VaccineGroupResponse{
			VaccineID:   g.VaccineID.String(),
			VaccineName: g.VaccineName,
			Doses:       toEntryResponses(g.Entries),
		})
	}
	return resp
}
