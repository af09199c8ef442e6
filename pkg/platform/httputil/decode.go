package httputil

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	dErrors "vaxtrack/pkg/domain-errors"
)

// Normalizable requests trim and canonicalize their fields before validation.
type Normalizable interface {
	Normalize()
}

// Validatable requests check their own fields.
type Validatable interface {
	Validate() error
}

// DecodeAndPrepare decodes a JSON body into T, then calls Normalize and
// Validate when T implements them. An empty body decodes as {}. On failure
// it writes the error response and returns false.
//
//	req, ok := httputil.DecodeAndPrepare[CreateReminderRequest](w, r, h.logger, ctx, requestID)
//	if !ok {
//	    return
//	}
func DecodeAndPrepare[T any](w http.ResponseWriter, r *http.Request, logger *slog.Logger, ctx context.Context, requestID string) (*T, bool) {
	req := new(T)
	if err := decodeBody(r.Body, req); err != nil {
		logger.WarnContext(ctx, "failed to decode request body",
			"error", err,
			"request_id", requestID,
		)
		WriteError(w, err)
		return nil, false
	}

	if n, ok := any(req).(Normalizable); ok {
		n.Normalize()
	}
	if v, ok := any(req).(Validatable); ok {
		if err := v.Validate(); err != nil {
			logger.WarnContext(ctx, "invalid request",
				"error", err,
				"request_id", requestID,
			)
			var domainErr *dErrors.Error
			if !errors.As(err, &domainErr) {
				err = dErrors.New(dErrors.CodeValidation, err.Error())
			}
			WriteError(w, err)
			return nil, false
		}
	}
	return req, true
}

func decodeBody(body io.Reader, target any) error {
	if body == nil || body == http.NoBody {
		return nil
	}
	dec := json.NewDecoder(body)
	if err := dec.Decode(target); err != nil {
		return describeDecodeError(err)
	}
	if dec.More() {
		return dErrors.New(dErrors.CodeBadRequest, "request body must contain a single JSON object")
	}
	return nil
}

func describeDecodeError(err error) error {
	var (
		syntaxErr *json.SyntaxError
		typeErr   *json.UnmarshalTypeError
		sizeErr   *http.MaxBytesError
	)
	switch {
	case errors.Is(err, io.EOF):
		return nil
	case errors.As(err, &sizeErr):
		return dErrors.New(dErrors.CodeBadRequest, fmt.Sprintf("request body exceeds %d bytes", sizeErr.Limit))
	case errors.As(err, &syntaxErr):
		return dErrors.New(dErrors.CodeBadRequest, fmt.Sprintf("malformed JSON at offset %d", syntaxErr.Offset))
	case errors.As(err, &typeErr) && typeErr.Field != "":
		return dErrors.New(dErrors.CodeBadRequest, fmt.Sprintf("field %s must be %s", typeErr.Field, typeErr.Type))
	default:
		return dErrors.New(dErrors.CodeBadRequest, "invalid request body")
	}
}
