package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vaxtrack/internal/catalog/models"
	"vaxtrack/internal/catalog/store"
	"vaxtrack/pkg/testutil"
)

type failingCatalog struct{}

func (failingCatalog) List(context.Context, models.ListFilter) ([]*models.Vaccine, error) {
	return nil, errors.New("database unavailable")
}

func newRouter(t *testing.T, catalog Catalog) http.Handler {
	t.Helper()
	r := chi.NewRouter()
	New(catalog, slog.New(slog.NewTextHandler(io.Discard, nil))).Register(r)
	return r
}

func get(router http.Handler, path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestHandleList(t *testing.T) {
	ctx := context.Background()
	catalog := store.NewInMemory()
	require.NoError(t, catalog.Upsert(ctx, testutil.NewVaccineBuilder().
		WithName("Hepatitis B").WithDoses(3).WithWhenToGive("0, 1, and 6 months schedule").Build()))
	require.NoError(t, catalog.Upsert(ctx, testutil.NewVaccineBuilder().
		WithName("Influenza").WithType(models.VaccineTypeOptional).WithFrequency("Annual").WithAgeRange(6, nil).Build()))
	require.NoError(t, catalog.Upsert(ctx, testutil.NewVaccineBuilder().WithName("Smallpox").Inactive().Build()))
	router := newRouter(t, catalog)

	t.Run("lists active vaccines with resolved offsets", func(t *testing.T) {
		rec := get(router, "/vaccines")
		require.Equal(t, http.StatusOK, rec.Code)

		var resp ListResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		require.Len(t, resp.Vaccines, 2)
		assert.Equal(t, "Hepatitis B", resp.Vaccines[0].Name)
		assert.Equal(t, []int{0, 30, 180}, resp.Vaccines[0].DoseOffsets)
		assert.Equal(t, "annual", resp.Vaccines[1].Recurrence)
	})

	t.Run("filters by type", func(t *testing.T) {
		var resp ListResponse
		require.NoError(t, json.Unmarshal(get(router, "/vaccines?type=optional").Body.Bytes(), &resp))
		require.Len(t, resp.Vaccines, 1)
		assert.Equal(t, "Influenza", resp.Vaccines[0].Name)
	})

	t.Run("includes inactive on request", func(t *testing.T) {
		var resp ListResponse
		require.NoError(t, json.Unmarshal(get(router, "/vaccines?include_inactive=true").Body.Bytes(), &resp))
		assert.Len(t, resp.Vaccines, 3)
	})

	t.Run("rejects unknown type", func(t *testing.T) {
		assert.Equal(t, http.StatusBadRequest, get(router, "/vaccines?type=sometimes").Code)
	})
}

func TestHandleListStoreFailure(t *testing.T) {
	rec := get(newRouter(t, failingCatalog{}), "/vaccines")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
