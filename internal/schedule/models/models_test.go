package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	id "vaxtrack/pkg/domain"
	dErrors "vaxtrack/pkg/domain-errors"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestComputeStatus(t *testing.T) {
	today := day(2025, 3, 10)

	tests := []struct {
		name      string
		scheduled time.Time
		want      Status
	}{
		{"yesterday is overdue", today.AddDate(0, 0, -1), StatusOverdue},
		{"today is due soon", today, StatusDueSoon},
		{"thirty days out is due soon", today.AddDate(0, 0, 30), StatusDueSoon},
		{"thirty one days out is upcoming", today.AddDate(0, 0, 31), StatusUpcoming},
		{"long past is overdue", today.AddDate(-2, 0, 0), StatusOverdue},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ComputeStatus(tt.scheduled, today))
		})
	}
}

func TestComputeStatusUsesCalendarDates(t *testing.T) {
	scheduled := day(2025, 3, 10)
	lateEvening := time.Date(2025, 3, 10, 23, 59, 0, 0, time.UTC)
	earlyNextDay := time.Date(2025, 3, 11, 0, 1, 0, 0, time.UTC)
	lagos := time.FixedZone("WAT", 3600)

	assert.Equal(t, StatusDueSoon, ComputeStatus(scheduled, lateEvening))
	assert.Equal(t, StatusOverdue, ComputeStatus(scheduled, earlyNextDay))
	// 00:30 WAT on the 11th is still the 10th in UTC.
	assert.Equal(t, StatusDueSoon, ComputeStatus(scheduled, time.Date(2025, 3, 11, 0, 30, 0, 0, lagos)))
}

func TestComputeStatusScenarios(t *testing.T) {
	today := day(2025, 8, 20)
	oneMonth := 30

	t.Run("dose due ten days ago is overdue", func(t *testing.T) {
		dob := today.AddDate(0, 0, -40)
		assert.Equal(t, StatusOverdue, ComputeStatus(id.AddDays(dob, oneMonth), today))
	})
	t.Run("dose due in twenty five days is due soon", func(t *testing.T) {
		dob := today.AddDate(0, 0, -5)
		assert.Equal(t, StatusDueSoon, ComputeStatus(id.AddDays(dob, oneMonth), today))
	})
}

func TestParseStatus(t *testing.T) {
	s, err := ParseStatus(" Due_Soon ")
	require.NoError(t, err)
	assert.Equal(t, StatusDueSoon, s)

	_, err = ParseStatus("late")
	assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
}

type DoseSuite struct {
	suite.Suite
	now time.Time
}

func TestDoseSuite(t *testing.T) {
	suite.Run(t, &DoseSuite{now: time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC)})
}

func (s *DoseSuite) newDose() *DoseInstance {
	return &DoseInstance{
		ID:            id.NewDoseID(),
		DoseNumber:    1,
		ScheduledDate: day(2025, 4, 1),
		Status:        StatusOverdue,
		Notes:         "bring card",
		Active:        true,
	}
}

func (s *DoseSuite) TestComplete() {
	s.Run("records completion details", func() {
		d := s.newDose()
		err := d.Complete(Completion{CompletedDate: day(2025, 4, 28), City: "Lagos"}, s.now)
		s.Require().NoError(err)
		s.Equal(StatusCompleted, d.Status)
		s.Equal(day(2025, 4, 28), *d.CompletedDate)
		s.Equal("Lagos", d.City)
		s.Equal("bring card", d.Notes, "empty fields keep existing values")
		s.False(d.IsPending())
	})

	s.Run("defaults completed date to today", func() {
		d := s.newDose()
		s.Require().NoError(d.Complete(Completion{}, s.now))
		s.Equal(day(2025, 5, 1), *d.CompletedDate)
	})

	s.Run("completion is terminal", func() {
		d := s.newDose()
		s.Require().NoError(d.Complete(Completion{}, s.now))
		err := d.Complete(Completion{}, s.now)
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidState))
	})

	s.Run("future completion rejected", func() {
		d := s.newDose()
		err := d.Complete(Completion{CompletedDate: day(2025, 5, 2)}, s.now)
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
		s.Equal(StatusOverdue, d.Status)
	})
}

func TestGroupByVaccine(t *testing.T) {
	a, b := id.NewVaccineID(), id.NewVaccineID()
	entries := []*ScheduleEntry{
		{Dose: &DoseInstance{VaccineID: a, DoseNumber: 1}, VaccineName: "BCG"},
		{Dose: &DoseInstance{VaccineID: b, DoseNumber: 1}, VaccineName: "OPV"},
		{Dose: &DoseInstance{VaccineID: a, DoseNumber: 2}, VaccineName: "BCG"},
	}

	groups := GroupByVaccine(entries)
	require.Len(t, groups, 2)
	assert.Equal(t, "BCG", groups[0].VaccineName)
	assert.Len(t, groups[0].Entries, 2)
	assert.Equal(t, 2, groups[0].Entries[1].Dose.DoseNumber)
	assert.Equal(t, "OPV", groups[1].VaccineName)
}
