package auth

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	id "vaxtrack/pkg/domain"
	"vaxtrack/pkg/requestcontext"
)

// Principal is the caller a bearer token was issued to.
type Principal struct {
	UserID    id.UserID
	TokenID   string
	ExpiresAt time.Time
}

// Verifier checks a bearer token's signature and registered claims.
type Verifier interface {
	Verify(ctx context.Context, token string) (Principal, error)
}

const realm = "vaxtrack"

func unauthorized(w http.ResponseWriter, challenge, desc string) {
	w.Header().Set("WWW-Authenticate", challenge)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = fmt.Fprintf(w, `{"success":false,"error":"unauthorized","error_description":%q}`, desc) //nolint:errcheck // headers already sent
}

// bearerToken extracts the credentials of an Authorization header using the
// Bearer scheme. The scheme name is case-insensitive.
func bearerToken(header string) (string, bool) {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

// RequireAuth rejects requests without a valid bearer token and stores the
// caller's user ID in the request context.
func RequireAuth(verifier Verifier, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			requestID := requestcontext.RequestID(ctx)

			token, ok := bearerToken(r.Header.Get("Authorization"))
			if !ok {
				logger.WarnContext(ctx, "unauthorized access - missing token",
					"request_id", requestID,
				)
				unauthorized(w, fmt.Sprintf("Bearer realm=%q", realm), "Missing or invalid Authorization header")
				return
			}

			principal, err := verifier.Verify(ctx, token)
			if err == nil && principal.UserID.IsNil() {
				err = fmt.Errorf("token carries no user")
			}
			if err != nil {
				logger.WarnContext(ctx, "unauthorized access - invalid token",
					"error", err,
					"request_id", requestID,
				)
				unauthorized(w, fmt.Sprintf("Bearer realm=%q, error=\"invalid_token\"", realm), "Invalid or expired token")
				return
			}

			ctx = requestcontext.WithUserID(ctx, principal.UserID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
