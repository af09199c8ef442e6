package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"vaxtrack/internal/subject/models"
	"vaxtrack/internal/subject/service"
	id "vaxtrack/pkg/domain"
	"vaxtrack/pkg/platform/httputil"
	"vaxtrack/pkg/requestcontext"
)

// Service defines the subject operations exposed over HTTP.
type Service interface {
	Register(ctx context.Context, cmd service.RegisterCommand) (*models.Subject, error)
	Get(ctx context.Context, subjectID id.SubjectID) (*models.Subject, error)
}

type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts the subject routes. Callers must already be authenticated.
func (h *Handler) Register(r chi.Router) {
	r.Post("/subjects", h.HandleRegister)
	r.Get("/subjects/{subjectID}", h.HandleGet)
}

func (h *Handler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[RegisterSubjectRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	subject, err := h.service.Register(ctx, req.ToCommand())
	if err != nil {
		h.logger.ErrorContext(ctx, "register subject failed", "error", err, "request_id", requestID)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, toSubjectResponse(subject))
}

func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	subjectID, err := id.ParseSubjectID(chi.URLParam(r, "subjectID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	subject, err := h.service.Get(ctx, subjectID)
	if err != nil {
		h.logger.ErrorContext(ctx, "get subject failed", "error", err, "request_id", requestID, "subject_id", subjectID.String())
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, toSubjectResponse(subject))
}
