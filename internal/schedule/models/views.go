package models

import id "vaxtrack/pkg/domain"

// ScheduleEntry is a dose enriched for listing.
type ScheduleEntry struct {
	Dose        *DoseInstance
	VaccineName string
	Reminders   []*Reminder
}

// VaccineGroup collects a vaccine's doses in dose-number order.
type VaccineGroup struct {
	VaccineID   id.VaccineID
	VaccineName string
	Entries     []*ScheduleEntry
}

// GroupByVaccine groups entries by vaccine, keeping the first-seen order of
// vaccines and the input order within each group.
func GroupByVaccine(entries []*ScheduleEntry) []*VaccineGroup {
	var groups []*VaccineGroup
	index := make(map[id.VaccineID]*VaccineGroup)
	for _, e := range entries {
		g, ok := index[e.Dose.VaccineID]
		if !ok {
			g = &VaccineGroup{VaccineID: e.Dose.VaccineID, VaccineName: e.VaccineName}
			index[e.Dose.VaccineID] = g
			groups = append(groups, g)
		}
		g.Entries = append(g.Entries, e)
	}
	return groups
}
