package service

import (
	"time"

	"vaxtrack/internal/catalog/frequency"
	catalogmodels "vaxtrack/internal/catalog/models"
	"vaxtrack/internal/planner/models"
	schedulemodels "vaxtrack/internal/schedule/models"
	subjectmodels "vaxtrack/internal/subject/models"
	id "vaxtrack/pkg/domain"
)

// history is what the subject has already done, per vaccine.
type history struct {
	completed      map[id.VaccineID]bool
	completedDates map[id.VaccineID]map[time.Time]bool
}

// newHistory treats a vaccine as completed when a planner entry for it was
// completed, or when every active dose instance of it is completed.
func newHistory(entries []*models.Entry, doses []*schedulemodels.DoseInstance) history {
	h := history{
		completed:      make(map[id.VaccineID]bool),
		completedDates: make(map[id.VaccineID]map[time.Time]bool),
	}
	for _, e := range entries {
		if e.Status != models.StatusCompleted {
			continue
		}
		h.completed[e.VaccineID] = true
		if h.completedDates[e.VaccineID] == nil {
			h.completedDates[e.VaccineID] = make(map[time.Time]bool)
		}
		h.completedDates[e.VaccineID][id.DateOnly(e.ScheduledDate)] = true
	}

	pending := make(map[id.VaccineID]bool)
	seen := make(map[id.VaccineID]bool)
	for _, d := range doses {
		if !d.Active {
			continue
		}
		seen[d.VaccineID] = true
		if d.Status != schedulemodels.StatusCompleted {
			pending[d.VaccineID] = true
		}
	}
	for vaccineID := range seen {
		if !pending[vaccineID] {
			h.completed[vaccineID] = true
		}
	}
	return h
}

func (h history) completedOn(vaccineID id.VaccineID, date time.Time) bool {
	return h.completedDates[vaccineID][id.DateOnly(date)]
}

// planEntries builds the planner for a subject as of now. Vaccines arrive
// ordered by minimum age.
func planEntries(subject *subjectmodels.Subject, vaccines []*catalogmodels.Vaccine, h history, now time.Time) []*models.Entry {
	today := id.DateOnly(now)
	dob := id.DateOnly(*subject.DateOfBirth)
	ageMonths := id.AgeInMonths(dob, today)

	var entries []*models.Entry
	for _, v := range vaccines {
		if !v.Active || !v.EligibleAt(ageMonths) {
			continue
		}
		recurrence := frequency.Classify(v.Frequency)
		if h.completed[v.ID] && !recurrence.IsRecurring() {
			continue
		}

		occurrence := 0
		for _, date := range occurrenceDates(v, recurrence, dob, ageMonths, today) {
			if id.DaysBetween(today, date) > models.LookAheadDays || h.completedOn(v.ID, date) {
				continue
			}
			occurrence++
			entries = append(entries, newEntry(subject.ID, v, occurrence, date, today, now))
		}
	}
	return entries
}

func occurrenceDates(v *catalogmodels.Vaccine, r frequency.Recurrence, dob time.Time, ageMonths int, today time.Time) []time.Time {
	switch r.Kind {
	case frequency.RecurrenceAnnual:
		return []time.Time{models.AnnualDate(today.Year()), models.AnnualDate(today.Year() + 1)}
	case frequency.RecurrenceEveryNYears:
		n := r.IntervalYears
		years := (ageMonths/(12*n))*n + n
		return []time.Time{dob.AddDate(years, 0, 0)}
	default:
		return []time.Time{dob.AddDate(0, v.MinAgeMonths, 0)}
	}
}

func newEntry(subjectID id.SubjectID, v *catalogmodels.Vaccine, occurrence int, date, today, now time.Time) *models.Entry {
	status := models.StatusFor(date, today)
	days := id.DaysBetween(today, date)
	return &models.Entry{
		ID:              id.NewPlannerEntryID(),
		SubjectID:       subjectID,
		VaccineID:       v.ID,
		VaccineName:     v.Name,
		Occurrence:      occurrence,
		ScheduledDate:   date,
		Status:          status,
		Priority:        models.PriorityFor(status, days, v.IsMandatory()),
		ReminderTitle:   models.ReminderTitle(status, days),
		ReminderMessage: models.ReminderMessage(v.Name, status, days),
		ReminderDate:    models.ReminderDate(status, date, today),
		ReminderTime:    models.DefaultReminderTime,
		CreatedAt:       now,
	}
}
