package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"vaxtrack/internal/schedule/models"
	"vaxtrack/internal/schedule/service"
	id "vaxtrack/pkg/domain"
	dErrors "vaxtrack/pkg/domain-errors"
	"vaxtrack/pkg/platform/httputil"
	"vaxtrack/pkg/requestcontext"
)

// Service defines the schedule operations exposed over HTTP.
type Service interface {
	Generate(ctx context.Context, subjectID id.SubjectID) (*service.GenerateResult, error)
	Synchronize(ctx context.Context, subjectID id.SubjectID) (*service.SyncResult, error)
	List(ctx context.Context, subjectID id.SubjectID, filter models.ListFilter) ([]*models.ScheduleEntry, error)
	CompleteDose(ctx context.Context, subjectID id.SubjectID, doseID id.DoseID, completion models.Completion) (*models.DoseInstance, error)
	CreateReminder(ctx context.Context, subjectID id.SubjectID, doseID id.DoseID, cmd service.ReminderCommand) (*models.Reminder, error)
	DeactivateReminder(ctx context.Context, subjectID id.SubjectID, reminderID id.ReminderID) error
}

type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts the schedule routes under /subjects/{subjectID}/schedule.
func (h *Handler) Register(r chi.Router) {
	r.Route("/subjects/{subjectID}/schedule", func(r chi.Router) {
		r.Post("/", h.HandleGenerate)
		r.Get("/", h.HandleList)
		r.Post("/sync", h.HandleSynchronize)
		r.Post("/doses/{doseID}/complete", h.HandleCompleteDose)
		r.Post("/doses/{doseID}/reminders", h.HandleCreateReminder)
		r.Delete("/doses/{doseID}/reminders/{reminderID}", h.HandleDeactivateReminder)
	})
}

func (h *Handler) HandleGenerate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	subjectID, ok := h.subjectParam(w, r)
	if !ok {
		return
	}

	result, err := h.service.Generate(ctx, subjectID)
	if err != nil {
		h.logger.ErrorContext(ctx, "generate schedule failed", "error", err, "request_id", requestID, "subject_id", subjectID.String())
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, toGenerateResponse(result))
}

func (h *Handler) HandleSynchronize(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	subjectID, ok := h.subjectParam(w, r)
	if !ok {
		return
	}

	result, err := h.service.Synchronize(ctx, subjectID)
	if err != nil {
		h.logger.ErrorContext(ctx, "synchronize statuses failed", "error", err, "request_id", requestID, "subject_id", subjectID.String())
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, &SyncResponse{Success: true, UpdatedCount: result.Updated})
}

// HandleList returns the subject's active doses. group=vaccine nests them
// per vaccine.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	subjectID, ok := h.subjectParam(w, r)
	if !ok {
		return
	}

	query := r.URL.Query()
	var filter models.ListFilter
	if raw := query.Get("status"); raw != "" {
		status, err := models.ParseStatus(raw)
		if err != nil {
			httputil.WriteError(w, err)
			return
		}
		filter.Status = status
	}
	if raw := query.Get("vaccine_id"); raw != "" {
		vaccineID, err := id.ParseVaccineID(raw)
		if err != nil {
			httputil.WriteError(w, err)
			return
		}
		filter.VaccineID = &vaccineID
	}
	group := query.Get("group")
	if group != "" && group != "vaccine" {
		httputil.WriteError(w, dErrors.New(dErrors.CodeValidation, "group must be one of [vaccine]"))
		return
	}

	entries, err := h.service.List(ctx, subjectID, filter)
	if err != nil {
		h.logger.ErrorContext(ctx, "list schedule failed", "error", err, "request_id", requestID, "subject_id", subjectID.String())
		httputil.WriteError(w, err)
		return
	}

	if group == "vaccine" {
		httputil.WriteJSON(w, http.StatusOK, toGroupedResponse(models.GroupByVaccine(entries)))
		return
	}
	httputil.WriteJSON(w, http.StatusOK, &ScheduleResponse{Success: true, Doses: toEntryResponses(entries)})
}

func (h *Handler) HandleCompleteDose(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	subjectID, ok := h.subjectParam(w, r)
	if !ok {
		return
	}
	doseID, err := id.ParseDoseID(chi.URLParam(r, "doseID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	req, ok := httputil.DecodeAndPrepare[CompleteDoseRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	dose, err := h.service.CompleteDose(ctx, subjectID, doseID, req.ToCompletion())
	if err != nil {
		h.logger.ErrorContext(ctx, "complete dose failed", "error", err, "request_id", requestID, "dose_id", doseID.String())
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, toDoseResponse(dose, "", nil))
}

func (h *Handler) HandleCreateReminder(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	subjectID, ok := h.subjectParam(w, r)
	if !ok {
		return
	}
	doseID, err := id.ParseDoseID(chi.URLParam(r, "doseID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	req, ok := httputil.DecodeAndPrepare[CreateReminderRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	reminder, err := h.service.CreateReminder(ctx, subjectID, doseID, req.ToCommand())
	if err != nil {
		h.logger.ErrorContext(ctx, "create reminder failed", "error", err, "request_id", requestID, "dose_id", doseID.String())
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, toReminderResponse(reminder))
}

func (h *Handler) HandleDeactivateReminder(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	subjectID, ok := h.subjectParam(w, r)
	if !ok {
		return
	}
	reminderID, err := id.ParseReminderID(chi.URLParam(r, "reminderID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	if err := h.service.DeactivateReminder(ctx, subjectID, reminderID); err != nil {
		h.logger.ErrorContext(ctx, "deactivate reminder failed", "error", err, "request_id", requestID, "reminder_id", reminderID.String())
		httputil.WriteError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) subjectParam(w http.ResponseWriter, r *http.Request) (id.SubjectID, bool) {
	subjectID, err := id.ParseSubjectID(chi.URLParam(r, "subjectID"))
	if err != nil {
		httputil.WriteError(w, err)
		return id.SubjectID{}, false
	}
	return subjectID, true
}
