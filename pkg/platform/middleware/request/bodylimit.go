package request

import (
	"fmt"
	"net/http"
)

// BodyLimit rejects requests whose declared Content-Length exceeds maxBytes
// with 413 and caps the readable body of the rest. Chunked bodies that run
// over surface as *http.MaxBytesError to the decoder.
func BodyLimit(maxBytes int64) func(http.Handler) http.Handler {
	tooLarge := fmt.Sprintf(`{"success":false,"error":"payload_too_large","error_description":"request body exceeds %d bytes"}`, maxBytes)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.ContentLength > maxBytes {
				w.Header().Set("Content-Type", "application/json")
				w.Header().Set("Connection", "close")
				w.WriteHeader(http.StatusRequestEntityTooLarge)
				_, _ = w.Write([]byte(tooLarge)) //nolint:errcheck // headers already sent
				return
			}
			if r.Body != nil && r.Body != http.NoBody {
				r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
			}
			next.ServeHTTP(w, r)
		})
	}
}
