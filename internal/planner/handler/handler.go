package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"vaxtrack/internal/planner/models"
	"vaxtrack/internal/planner/service"
	id "vaxtrack/pkg/domain"
	"vaxtrack/pkg/platform/httputil"
	"vaxtrack/pkg/requestcontext"
)

// Service defines the planner operations exposed over HTTP.
type Service interface {
	Generate(ctx context.Context, subjectID id.SubjectID) (*service.GenerateResult, error)
	Get(ctx context.Context, subjectID id.SubjectID) ([]*models.Entry, error)
	Complete(ctx context.Context, subjectID id.SubjectID, entryID id.PlannerEntryID, req models.CompleteRequest) (*models.Entry, error)
}

type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

func (h *Handler) Register(r chi.Router) {
	r.Route("/subjects/{subjectID}/planner", func(r chi.Router) {
		r.Post("/", h.HandleGenerate)
		r.Get("/", h.HandleGet)
		r.Post("/{entryID}/complete", h.HandleComplete)
	})
}

func (h *Handler) HandleGenerate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	subjectID, err := id.ParseSubjectID(chi.URLParam(r, "subjectID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	result, err := h.service.Generate(ctx, subjectID)
	if err != nil {
		h.logger.ErrorContext(ctx, "generate planner failed", "error", err, "request_id", requestID, "subject_id", subjectID.String())
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, &GenerateResponse{Success: true, PlannedCount: result.Planned})
}

func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	subjectID, err := id.ParseSubjectID(chi.URLParam(r, "subjectID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	entries, err := h.service.Get(ctx, subjectID)
	if err != nil {
		h.logger.ErrorContext(ctx, "get planner failed", "error", err, "request_id", requestID, "subject_id", subjectID.String())
		httputil.WriteError(w, err)
		return
	}

	resp := &PlannerResponse{Success: true, Entries: make([]*EntryResponse, 0, len(entries))}
	for _, e := range entries {
		resp.Entries = append(resp.Entries, toEntryResponse(e))
	}
	httputil.WriteJSON(w, http.StatusOK, resp)
}

func (h *Handler) HandleComplete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	subjectID, err := id.ParseSubjectID(chi.URLParam(r, "subjectID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	entryID, err := id.ParsePlannerEntryID(chi.URLParam(r, "entryID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	req, ok := httputil.DecodeAndPrepare[CompleteEntryRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	entry, err := h.service.Complete(ctx, subjectID, entryID, req.ToCompleteRequest())
	if err != nil {
		h.logger.ErrorContext(ctx, "complete planner entry failed", "error", err, "request_id", requestID, "entry_id", entryID.String())
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, toEntryResponse(entry))
}
