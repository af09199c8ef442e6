package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	catalogmodels "vaxtrack/internal/catalog/models"
	catalogstore "vaxtrack/internal/catalog/store"
	"vaxtrack/internal/events"
	"vaxtrack/internal/schedule/models"
	schedulestore "vaxtrack/internal/schedule/store"
	subjectmodels "vaxtrack/internal/subject/models"
	id "vaxtrack/pkg/domain"
	dErrors "vaxtrack/pkg/domain-errors"
	"vaxtrack/pkg/platform/sentinel"
	"vaxtrack/pkg/requestcontext"
	"vaxtrack/pkg/testutil"
)

type subjectDirectory struct {
	subjects map[id.SubjectID]*subjectmodels.Subject
}

func (d *subjectDirectory) Get(_ context.Context, subjectID id.SubjectID) (*subjectmodels.Subject, error) {
	s, ok := d.subjects[subjectID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return s, nil
}

type eventRecorder struct {
	mu     sync.Mutex
	events []events.Event
}

func (r *eventRecorder) Publish(_ context.Context, e events.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	return nil
}

func (r *eventRecorder) types() []events.Type {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]events.Type, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e.Type)
	}
	return out
}

type ServiceSuite struct {
	suite.Suite
	doses     *schedulestore.InMemory
	catalog   *catalogstore.InMemory
	directory *subjectDirectory
	events    *eventRecorder
	service   *Service
	subject   *subjectmodels.Subject
	today     time.Time
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.doses = schedulestore.NewInMemory()
	s.catalog = catalogstore.NewInMemory()
	s.directory = &subjectDirectory{subjects: map[id.SubjectID]*subjectmodels.Subject{}}
	s.events = &eventRecorder{}
	s.service = New(s.doses, s.doses, s.directory, s.catalog, WithPublisher(s.events))
	s.today = testutil.Date(2024, 1, 10)
	s.subject = s.addSubject(testutil.Date(2024, 1, 1))
}

func (s *ServiceSuite) addSubject(dob time.Time) *subjectmodels.Subject {
	subject := testutil.NewSubjectBuilder().DependentOf(testutil.TestIDs.UserID1).BornOn(dob).Build()
	s.directory.subjects[subject.ID] = subject
	return subject
}

func (s *ServiceSuite) addVaccine(v *catalogmodels.Vaccine) *catalogmodels.Vaccine {
	s.Require().NoError(s.catalog.Upsert(context.Background(), v))
	return v
}

// ctxAt returns a context for the subject's owner pinned to the given day.
func (s *ServiceSuite) ctxAt(day time.Time) context.Context {
	ctx := requestcontext.WithUserID(context.Background(), testutil.TestIDs.UserID1)
	return requestcontext.WithTime(ctx, day)
}

func (s *ServiceSuite) systemCtxAt(day time.Time) context.Context {
	return requestcontext.WithTime(context.Background(), day)
}

func (s *ServiceSuite) dosesOf(subjectID id.SubjectID) []*models.DoseInstance {
	doses, err := s.doses.ListBySubject(context.Background(), subjectID)
	s.Require().NoError(err)
	return doses
}

func (s *ServiceSuite) hepatitisB() *catalogmodels.Vaccine {
	return s.addVaccine(testutil.NewVaccineBuilder().
		WithName("Hepatitis B").
		WithDoses(3).
		WithWhenToGive("0, 1, and 6 months schedule").
		Build())
}

func (s *ServiceSuite) TestGenerate_DatesFromParsedOffsets() {
	s.hepatitisB()

	result, err := s.service.Generate(s.ctxAt(s.today), s.subject.ID)
	s.Require().NoError(err)
	s.Equal(3, result.Added)
	s.Zero(result.Updated)
	s.Zero(result.Removed)

	doses := s.dosesOf(s.subject.ID)
	s.Require().Len(doses, 3)
	s.Equal(testutil.Date(2024, 1, 1), doses[0].ScheduledDate)
	s.Equal(testutil.Date(2024, 1, 31), doses[1].ScheduledDate)
	s.Equal(testutil.Date(2024, 6, 29), doses[2].ScheduledDate)
	s.Equal(models.StatusOverdue, doses[0].Status)
	s.Equal(models.StatusDueSoon, doses[1].Status)
	s.Equal(models.StatusUpcoming, doses[2].Status)
	s.Contains(s.events.types(), events.TypeScheduleGenerated)
}

func (s *ServiceSuite) TestGenerate_Idempotent() {
	s.hepatitisB()
	s.addVaccine(testutil.NewVaccineBuilder().WithName("Measles").WithAgeRange(9, nil).Build())

	_, err := s.service.Generate(s.ctxAt(s.today), s.subject.ID)
	s.Require().NoError(err)
	before := s.dosesOf(s.subject.ID)

	result, err := s.service.Generate(s.ctxAt(s.today), s.subject.ID)
	s.Require().NoError(err)
	s.Equal(&GenerateResult{}, result)

	after := s.dosesOf(s.subject.ID)
	s.Require().Len(after, len(before))
	for i := range before {
		s.Equal(before[i].ID, after[i].ID)
		s.Equal(before[i].ScheduledDate, after[i].ScheduledDate)
		s.Equal(before[i].Status, after[i].Status)
	}
}

func (s *ServiceSuite) TestGenerate_StatusRelativeToToday() {
	s.addVaccine(testutil.NewVaccineBuilder().WithName("Rotavirus").WithAgeRange(1, nil).Build())

	s.Run("born forty days ago is overdue", func() {
		subject := s.addSubject(id.AddDays(s.today, -40))
		_, err := s.service.Generate(s.ctxAt(s.today), subject.ID)
		s.Require().NoError(err)
		doses := s.dosesOf(subject.ID)
		s.Require().Len(doses, 1)
		s.Equal(models.StatusOverdue, doses[0].Status)
	})

	s.Run("born five days ago is due soon", func() {
		subject := s.addSubject(id.AddDays(s.today, -5))
		_, err := s.service.Generate(s.ctxAt(s.today), subject.ID)
		s.Require().NoError(err)
		doses := s.dosesOf(subject.ID)
		s.Require().Len(doses, 1)
		s.Equal(models.StatusDueSoon, doses[0].Status)
	})
}

func (s *ServiceSuite) TestGenerate_Errors() {
	s.Run("unknown subject", func() {
		_, err := s.service.Generate(s.ctxAt(s.today), id.NewSubjectID())
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	s.Run("subject owned by someone else", func() {
		ctx := requestcontext.WithUserID(s.systemCtxAt(s.today), testutil.TestIDs.UserID2)
		_, err := s.service.Generate(ctx, s.subject.ID)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	s.Run("subject without date of birth", func() {
		subject := testutil.NewSubjectBuilder().DependentOf(testutil.TestIDs.UserID1).Build()
		s.directory.subjects[subject.ID] = subject
		_, err := s.service.Generate(s.ctxAt(s.today), subject.ID)
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})
}

func (s *ServiceSuite) TestGenerate_ReschedulesInPlaceKeepingNotes() {
	vaccine := s.addVaccine(testutil.NewVaccineBuilder().WithName("BCG").Build())
	stale := testutil.NewDoseBuilder(s.subject.ID, vaccine.ID).
		ScheduledOn(testutil.Date(2024, 3, 1)).
		WithNotes("bring card").
		Build()
	s.Require().NoError(s.doses.InsertBatch(context.Background(), []*models.DoseInstance{stale}))

	result, err := s.service.Generate(s.ctxAt(s.today), s.subject.ID)
	s.Require().NoError(err)
	s.Equal(1, result.Updated)
	s.Zero(result.Added)

	doses := s.dosesOf(s.subject.ID)
	s.Require().Len(doses, 1)
	s.Equal(stale.ID, doses[0].ID)
	s.Equal(testutil.Date(2024, 1, 1), doses[0].ScheduledDate)
	s.Equal("bring card", doses[0].Notes)
	s.Equal(models.StatusOverdue, doses[0].Status)
}

func (s *ServiceSuite) TestGenerate_LeavesCompletedDosesAlone() {
	vaccine := s.hepatitisB()
	_, err := s.service.Generate(s.ctxAt(s.today), s.subject.ID)
	s.Require().NoError(err)

	first := s.dosesOf(s.subject.ID)[0]
	_, err = s.service.CompleteDose(s.ctxAt(s.today), s.subject.ID, first.ID, models.Completion{City: "Abuja"})
	s.Require().NoError(err)

	vaccine.DoseOffsets = []int{14, 60, 200}
	s.addVaccine(vaccine)
	result, err := s.service.Generate(s.ctxAt(s.today), s.subject.ID)
	s.Require().NoError(err)
	s.Equal(2, result.Updated)

	doses := s.dosesOf(s.subject.ID)
	s.Require().Len(doses, 3)
	s.Equal(first.ID, doses[0].ID)
	s.Equal(models.StatusCompleted, doses[0].Status)
	s.Equal(testutil.Date(2024, 1, 1), doses[0].ScheduledDate)
	s.Equal(testutil.Date(2024, 3, 1), doses[1].ScheduledDate)
}

func (s *ServiceSuite) TestGenerate_RemovesUnplannedPendingDoses() {
	vaccine := s.hepatitisB()
	_, err := s.service.Generate(s.ctxAt(s.today), s.subject.ID)
	s.Require().NoError(err)
	first := s.dosesOf(s.subject.ID)[0]
	_, err = s.service.CompleteDose(s.ctxAt(s.today), s.subject.ID, first.ID, models.Completion{})
	s.Require().NoError(err)

	vaccine.Active = false
	s.addVaccine(vaccine)
	result, err := s.service.Generate(s.ctxAt(s.today), s.subject.ID)
	s.Require().NoError(err)
	s.Equal(2, result.Removed)

	doses := s.dosesOf(s.subject.ID)
	s.Require().Len(doses, 1)
	s.Equal(first.ID, doses[0].ID)
}

func (s *ServiceSuite) TestGenerate_SerializedPerSubject() {
	s.hepatitisB()
	s.addVaccine(testutil.NewVaccineBuilder().WithName("Measles").WithAgeRange(9, nil).Build())

	result := testutil.RunConcurrent(10, func(_ int) error {
		_, err := s.service.Generate(s.ctxAt(s.today), s.subject.ID)
		return err
	})
	s.Empty(result.Others)
	s.Equal(int32(10), result.Successes)
	s.Len(s.dosesOf(s.subject.ID), 4)
}

func (s *ServiceSuite) TestSynchronize() {
	s.hepatitisB()
	_, err := s.service.Generate(s.ctxAt(s.today), s.subject.ID)
	s.Require().NoError(err)
	first := s.dosesOf(s.subject.ID)[0]
	_, err = s.service.CompleteDose(s.ctxAt(s.today), s.subject.ID, first.ID, models.Completion{})
	s.Require().NoError(err)

	s.Run("no change on the same day", func() {
		result, err := s.service.Synchronize(s.ctxAt(s.today), s.subject.ID)
		s.Require().NoError(err)
		s.Zero(result.Updated)
	})

	s.Run("advances statuses and skips completed", func() {
		later := testutil.Date(2024, 6, 1)
		result, err := s.service.Synchronize(s.ctxAt(later), s.subject.ID)
		s.Require().NoError(err)
		s.Equal(2, result.Updated)

		doses := s.dosesOf(s.subject.ID)
		s.Equal(models.StatusCompleted, doses[0].Status)
		s.Equal(models.StatusOverdue, doses[1].Status)
		s.Equal(models.StatusDueSoon, doses[2].Status)
		s.Contains(s.events.types(), events.TypeScheduleSynchronized)
	})

	s.Run("system caller is allowed", func() {
		_, err := s.service.Synchronize(s.systemCtxAt(s.today), s.subject.ID)
		s.NoError(err)
	})
}

func (s *ServiceSuite) TestPendingSubjects() {
	s.hepatitisB()
	other := s.addSubject(testutil.Date(2023, 6, 1))
	for _, subject := range []*subjectmodels.Subject{s.subject, other} {
		_, err := s.service.Generate(s.ctxAt(s.today), subject.ID)
		s.Require().NoError(err)
	}

	first, err := s.service.PendingSubjects(context.Background(), id.SubjectID{}, 1)
	s.Require().NoError(err)
	s.Require().Len(first, 1)

	rest, err := s.service.PendingSubjects(context.Background(), first[0], 10)
	s.Require().NoError(err)
	s.Require().Len(rest, 1)
	s.NotEqual(first[0], rest[0])
}

func (s *ServiceSuite) TestCompleteDose() {
	s.hepatitisB()
	_, err := s.service.Generate(s.ctxAt(s.today), s.subject.ID)
	s.Require().NoError(err)
	dose := s.dosesOf(s.subject.ID)[0]

	s.Run("rejects a future completion date", func() {
		_, err := s.service.CompleteDose(s.ctxAt(s.today), s.subject.ID, dose.ID,
			models.Completion{CompletedDate: testutil.Date(2024, 2, 1)})
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})

	s.Run("records completion", func() {
		completed, err := s.service.CompleteDose(s.ctxAt(s.today), s.subject.ID, dose.ID,
			models.Completion{City: "Kano", Notes: "no reaction"})
		s.Require().NoError(err)
		s.Equal(models.StatusCompleted, completed.Status)
		s.Require().NotNil(completed.CompletedDate)
		s.Equal(s.today, *completed.CompletedDate)
		s.Contains(s.events.types(), events.TypeDoseCompleted)
	})

	s.Run("completion is terminal", func() {
		_, err := s.service.CompleteDose(s.ctxAt(s.today), s.subject.ID, dose.ID, models.Completion{})
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidState))
	})

	s.Run("unknown dose", func() {
		_, err := s.service.CompleteDose(s.ctxAt(s.today), s.subject.ID, id.NewDoseID(), models.Completion{})
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})
}

func (s *ServiceSuite) TestListWithReminders() {
	s.hepatitisB()
	s.addVaccine(testutil.NewVaccineBuilder().WithName("BCG").Build())
	_, err := s.service.Generate(s.ctxAt(s.today), s.subject.ID)
	s.Require().NoError(err)

	entries, err := s.service.List(s.ctxAt(s.today), s.subject.ID, models.ListFilter{})
	s.Require().NoError(err)
	s.Require().Len(entries, 4)
	s.Equal("BCG", entries[0].VaccineName)
	s.Equal("Hepatitis B", entries[1].VaccineName)

	target := entries[2].Dose
	reminder, err := s.service.CreateReminder(s.ctxAt(s.today), s.subject.ID, target.ID, ReminderCommand{
		Title:    "Second Hepatitis B dose",
		RemindAt: testutil.Date(2024, 1, 24),
	})
	s.Require().NoError(err)

	s.Run("attaches active reminders", func() {
		entries, err := s.service.List(s.ctxAt(s.today), s.subject.ID, models.ListFilter{Status: models.StatusDueSoon})
		s.Require().NoError(err)
		s.Require().Len(entries, 1)
		s.Require().Len(entries[0].Reminders, 1)
		s.Equal(reminder.ID, entries[0].Reminders[0].ID)
	})

	s.Run("deactivated reminders are hidden", func() {
		s.Require().NoError(s.service.DeactivateReminder(s.ctxAt(s.today), s.subject.ID, reminder.ID))
		entries, err := s.service.List(s.ctxAt(s.today), s.subject.ID, models.ListFilter{Status: models.StatusDueSoon})
		s.Require().NoError(err)
		s.Empty(entries[0].Reminders)

		err = s.service.DeactivateReminder(s.ctxAt(s.today), s.subject.ID, reminder.ID)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	s.Run("reminder requires a time", func() {
		_, err := s.service.CreateReminder(s.ctxAt(s.today), s.subject.ID, target.ID, ReminderCommand{Title: "x"})
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})
}
