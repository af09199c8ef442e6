package httptransport

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vaxtrack/internal/platform/health"
	"vaxtrack/pkg/platform/middleware/auth"
	"vaxtrack/pkg/requestcontext"
	"vaxtrack/pkg/testutil"
)

type stubVerifier struct{}

func (stubVerifier) Verify(_ context.Context, token string) (auth.Principal, error) {
	if token != "good" {
		return auth.Principal{}, errors.New("invalid token")
	}
	return auth.Principal{UserID: testutil.TestIDs.UserID1}, nil
}

type registrarFunc func(r chi.Router)

func (f registrarFunc) Register(r chi.Router) { f(r) }

func newTestRouter() http.Handler {
	whoami := registrarFunc(func(r chi.Router) {
		r.Get("/subjects/me", func(w http.ResponseWriter, r *http.Request) {
			_, _ = io.WriteString(w, requestcontext.UserID(r.Context()).String())
		})
	})
	catalog := registrarFunc(func(r chi.Router) {
		r.Get("/vaccines", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		})
	})
	return NewRouter(Dependencies{
		Logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
		Verifier:  stubVerifier{},
		Health:    health.New("test"),
		Public:    []Registrar{catalog},
		Protected: []Registrar{whoami},
	})
}

func get(h http.Handler, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestRouterPublicRoutes(t *testing.T) {
	router := newTestRouter()

	for _, path := range []string{"/health/live", "/metrics", "/vaccines"} {
		rec := get(router, path, "")
		assert.Equal(t, http.StatusOK, rec.Code, path)
	}
}

func TestRouterProtectedRoutes(t *testing.T) {
	router := newTestRouter()

	t.Run("missing token", func(t *testing.T) {
		rec := get(router, "/subjects/me", "")
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.JSONEq(t, `{"success":false,"error":"unauthorized","error_description":"Missing or invalid Authorization header"}`, rec.Body.String())
	})

	t.Run("invalid token", func(t *testing.T) {
		rec := get(router, "/subjects/me", "bad")
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("caller in context", func(t *testing.T) {
		rec := get(router, "/subjects/me", "good")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, testutil.TestIDs.UserID1.String(), rec.Body.String())
		assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
	})
}

func TestRouterRejectsNonJSONBodies(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/subjects/me", nil)
	req.Header.Set("Content-Type", "text/plain")
	req.Header.Set("Authorization", "Bearer good")
	rec := httptest.NewRecorder()
	newTestRouter().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnsupportedMediaType, rec.Code)
}
