package seed

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vaxtrack/internal/catalog/frequency"
	"vaxtrack/internal/catalog/models"
	"vaxtrack/internal/catalog/store"
)

func TestEmbeddedCatalogParses(t *testing.T) {
	vaccines, err := Parse(defaultCatalog, time.Now())
	require.NoError(t, err)
	require.NotEmpty(t, vaccines)

	for _, v := range vaccines {
		offsets := frequency.Parse(v)
		assert.Len(t, offsets, v.DoseCount(), v.Name)
		assert.Equal(t, VaccineID(v.Name), v.ID)
	}
}

func TestParseRejectsBadDocuments(t *testing.T) {
	tests := map[string]string{
		"missing name":   "vaccines:\n  - type: mandatory\n",
		"bad type":       "vaccines:\n  - name: X\n    type: sometimes\n",
		"duplicate name": "vaccines:\n  - name: X\n    type: optional\n  - name: x\n    type: optional\n",
		"zero doses":     "vaccines:\n  - name: X\n    type: optional\n    total_doses: 0\n",
		"inverted ages":  "vaccines:\n  - name: X\n    type: optional\n    min_age_months: 12\n    max_age_months: 6\n",
		"not yaml":       "vaccines: [",
	}
	for name, doc := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(doc), time.Now())
			assert.Error(t, err)
		})
	}
}

func TestSeedAllIsRepeatable(t *testing.T) {
	ctx := context.Background()
	catalog := store.NewInMemory()
	seeder := New(catalog, slog.New(slog.NewTextHandler(io.Discard, nil)))

	first, err := seeder.SeedAll(ctx)
	require.NoError(t, err)
	second, err := seeder.SeedAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	vaccines, err := catalog.List(ctx, models.ListFilter{})
	require.NoError(t, err)
	assert.Len(t, vaccines, first)

	bcg, err := catalog.FindByID(ctx, VaccineID("BCG"))
	require.NoError(t, err)
	assert.Equal(t, "BCG", bcg.Name)
}
