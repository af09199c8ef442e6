package testutil

import (
	"time"

	"github.com/google/uuid"

	catalogmodels "vaxtrack/internal/catalog/models"
	schedulemodels "vaxtrack/internal/schedule/models"
	subjectmodels "vaxtrack/internal/subject/models"
	id "vaxtrack/pkg/domain"
)

// TestIDs provides convenient pre-generated IDs for tests.
// Use these for deterministic test data.
var TestIDs = struct {
	UserID1    id.UserID
	UserID2    id.UserID
	SubjectID1 id.SubjectID
	SubjectID2 id.SubjectID
	VaccineID1 id.VaccineID
	VaccineID2 id.VaccineID
}{
	UserID1:    id.UserID(uuid.MustParse("11111111-1111-1111-1111-111111111111")),
	UserID2:    id.UserID(uuid.MustParse("22222222-2222-2222-2222-222222222222")),
	SubjectID1: id.SubjectID(uuid.MustParse("5b000000-0000-0000-0000-000000000001")),
	SubjectID2: id.SubjectID(uuid.MustParse("5b000000-0000-0000-0000-000000000002")),
	VaccineID1: id.VaccineID(uuid.MustParse("7a000000-0000-0000-0000-000000000001")),
	VaccineID2: id.VaccineID(uuid.MustParse("7a000000-0000-0000-0000-000000000002")),
}

// Date returns midnight UTC on the given day.
func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// Ptr returns a pointer to v.
func Ptr[T any](v T) *T {
	return &v
}

// VaccineBuilder provides a fluent interface for building catalog vaccines.
type VaccineBuilder struct {
	vaccine *catalogmodels.Vaccine
}

// NewVaccineBuilder creates an active single-dose mandatory vaccine given at birth.
func NewVaccineBuilder() *VaccineBuilder {
	now := time.Now()
	return &VaccineBuilder{
		vaccine: &catalogmodels.Vaccine{
			ID:         id.NewVaccineID(),
			Name:       "Test Vaccine",
			Type:       catalogmodels.VaccineTypeMandatory,
			Category:   "Childhood",
			TotalDoses: Ptr(1),
			Active:     true,
			CreatedAt:  now,
			UpdatedAt:  now,
		},
	}
}

func (b *VaccineBuilder) WithID(vaccineID id.VaccineID) *VaccineBuilder {
	b.vaccine.ID = vaccineID
	return b
}

func (b *VaccineBuilder) WithName(name string) *VaccineBuilder {
	b.vaccine.Name = name
	return b
}

func (b *VaccineBuilder) WithType(t catalogmodels.VaccineType) *VaccineBuilder {
	b.vaccine.Type = t
	return b
}

func (b *VaccineBuilder) WithDoses(total int) *VaccineBuilder {
	b.vaccine.TotalDoses = Ptr(total)
	return b
}

func (b *VaccineBuilder) WithFrequency(frequency string) *VaccineBuilder {
	b.vaccine.Frequency = frequency
	return b
}

func (b *VaccineBuilder) WithWhenToGive(whenToGive string) *VaccineBuilder {
	b.vaccine.WhenToGive = whenToGive
	return b
}

func (b *VaccineBuilder) WithAgeRange(minMonths int, maxMonths *int) *VaccineBuilder {
	b.vaccine.MinAgeMonths = minMonths
	b.vaccine.MaxAgeMonths = maxMonths
	return b
}

func (b *VaccineBuilder) WithDoseOffsets(days ...int) *VaccineBuilder {
	b.vaccine.DoseOffsets = days
	return b
}

func (b *VaccineBuilder) Inactive() *VaccineBuilder {
	b.vaccine.Active = false
	return b
}

func (b *VaccineBuilder) Build() *catalogmodels.Vaccine {
	return b.vaccine
}

// SubjectBuilder provides a fluent interface for building subjects.
type SubjectBuilder struct {
	subject *subjectmodels.Subject
}

// NewSubjectBuilder creates a user subject owned by TestIDs.UserID1.
func NewSubjectBuilder() *SubjectBuilder {
	return &SubjectBuilder{
		subject: &subjectmodels.Subject{
			ID:        id.SubjectID(TestIDs.UserID1),
			Kind:      subjectmodels.KindUser,
			OwnerID:   TestIDs.UserID1,
			Country:   "NG",
			CreatedAt: time.Now(),
		},
	}
}

func (b *SubjectBuilder) WithID(subjectID id.SubjectID) *SubjectBuilder {
	b.subject.ID = subjectID
	return b
}

// DependentOf makes the subject a dependent managed by owner.
func (b *SubjectBuilder) DependentOf(owner id.UserID) *SubjectBuilder {
	if uuid.UUID(b.subject.ID) == uuid.UUID(b.subject.OwnerID) {
		b.subject.ID = id.NewSubjectID()
	}
	b.subject.Kind = subjectmodels.KindDependent
	b.subject.OwnerID = owner
	return b
}

func (b *SubjectBuilder) BornOn(dob time.Time) *SubjectBuilder {
	b.subject.DateOfBirth = &dob
	return b
}

func (b *SubjectBuilder) Build() *subjectmodels.Subject {
	return b.subject
}

// DoseBuilder provides a fluent interface for building dose instances.
type DoseBuilder struct {
	dose *schedulemodels.DoseInstance
}

// NewDoseBuilder creates an active upcoming first dose.
func NewDoseBuilder(subjectID id.SubjectID, vaccineID id.VaccineID) *DoseBuilder {
	now := time.Now()
	return &DoseBuilder{
		dose: &schedulemodels.DoseInstance{
			ID:            id.NewDoseID(),
			SubjectID:     subjectID,
			VaccineID:     vaccineID,
			DoseNumber:    1,
			ScheduledDate: id.DateOnly(now),
			Status:        schedulemodels.StatusUpcoming,
			Active:        true,
			CreatedAt:     now,
			UpdatedAt:     now,
		},
	}
}

func (b *DoseBuilder) Number(n int) *DoseBuilder {
	b.dose.DoseNumber = n
	return b
}

func (b *DoseBuilder) ScheduledOn(date time.Time) *DoseBuilder {
	b.dose.ScheduledDate = id.DateOnly(date)
	return b
}

func (b *DoseBuilder) WithStatus(status schedulemodels.Status) *DoseBuilder {
	b.dose.Status = status
	return b
}

func (b *DoseBuilder) CompletedOn(date time.Time) *DoseBuilder {
	d := id.DateOnly(date)
	b.dose.Status = schedulemodels.StatusCompleted
	b.dose.CompletedDate = &d
	return b
}

func (b *DoseBuilder) WithNotes(notes string) *DoseBuilder {
	b.dose.Notes = notes
	return b
}

func (b *DoseBuilder) Build() *schedulemodels.DoseInstance {
	return b.dose
}
