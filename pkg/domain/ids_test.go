package domain

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "vaxtrack/pkg/domain-errors"
)

// TestParseUUID_Invariants validates the parsing invariant at trust boundaries:
// IDs must be non-empty, well-formed UUIDs.
func TestParseUUID_Invariants(t *testing.T) {
	t.Run("rejects empty string", func(t *testing.T) {
		_, err := ParseSubjectID("")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("rejects invalid format", func(t *testing.T) {
		_, err := ParseDoseID("not-a-uuid")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("nil UUID parses but reports IsNil", func(t *testing.T) {
		id, err := ParseVaccineID(uuid.Nil.String())
		require.NoError(t, err)
		assert.True(t, id.IsNil())
	})

	t.Run("accepts valid UUID", func(t *testing.T) {
		raw := uuid.New()
		id, err := ParsePlannerEntryID(raw.String())
		require.NoError(t, err)
		assert.Equal(t, PlannerEntryID(raw), id)
		assert.Equal(t, raw.String(), id.String())
	})
}

// TestTypeDistinction verifies distinct ID types stay distinct at runtime too.
func TestTypeDistinction(t *testing.T) {
	subjectID := NewSubjectID()
	vaccineID := NewVaccineID()

	// var _ SubjectID = vaccineID // compile error
	assert.NotEqual(t, uuid.UUID(subjectID), uuid.UUID(vaccineID))
	assert.False(t, subjectID.IsNil())
}
