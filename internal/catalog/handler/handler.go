// Package handler exposes the read-only vaccine catalog over HTTP.
package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"vaxtrack/internal/catalog/frequency"
	"vaxtrack/internal/catalog/models"
	dErrors "vaxtrack/pkg/domain-errors"
	"vaxtrack/pkg/platform/httputil"
	"vaxtrack/pkg/requestcontext"
)

type Catalog interface {
	List(ctx context.Context, filter models.ListFilter) ([]*models.Vaccine, error)
}

type Handler struct {
	catalog Catalog
	logger  *slog.Logger
}

func New(catalog Catalog, logger *slog.Logger) *Handler {
	return &Handler{catalog: catalog, logger: logger}
}

func (h *Handler) Register(r chi.Router) {
	r.Get("/vaccines", h.HandleList)
}

// HandleList lists active vaccines. ?type= and ?category= narrow the result;
// ?include_inactive=true lists retired vaccines too.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	query := r.URL.Query()
	filter := models.ListFilter{
		ActiveOnly: query.Get("include_inactive") != "true",
		Category:   strings.TrimSpace(query.Get("category")),
	}
	if raw := strings.ToLower(strings.TrimSpace(query.Get("type"))); raw != "" {
		vt := models.VaccineType(raw)
		if !vt.IsValid() {
			httputil.WriteError(w, dErrors.New(dErrors.CodeValidation, "type must be one of [mandatory optional recommended]"))
			return
		}
		filter.Type = vt
	}

	vaccines, err := h.catalog.List(ctx, filter)
	if err != nil {
		h.logger.ErrorContext(ctx, "list vaccines failed", "error", err, "request_id", requestID)
		httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list vaccines"))
		return
	}

	resp := &ListResponse{Success: true, Vaccines: make([]*VaccineResponse, 0, len(vaccines))}
	for _, v := range vaccines {
		resp.Vaccines = append(resp.Vaccines, toVaccineResponse(v))
	}
	httputil.WriteJSON(w, http.StatusOK, resp)
}

type VaccineResponse struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Type         string `json:"type"`
	Category     string `json:"category,omitempty"`
	TotalDoses   int    `json:"total_doses"`
	Frequency    string `json:"frequency,omitempty"`
	WhenToGive   string `json:"when_to_give,omitempty"`
	MinAgeMonths int    `json:"min_age_months"`
	MaxAgeMonths *int   `json:"max_age_months"`
	DoseOffsets  []int  `json:"dose_offsets"`
	Recurrence   string `json:"recurrence"`
	Active       bool   `json:"active"`
}

type ListResponse struct {
	Success  bool               `json:"success"`
	Vaccines []*VaccineResponse `json:"vaccines"`
}

// toVaccineResponse reports the offsets the schedule generator will use,
// parsed from the text when the catalog carries no structured table.
func toVaccineResponse(v *models.Vaccine) *VaccineResponse {
	offsets := frequency.Parse(v)
	days := make([]int, len(offsets))
	for i, o := range offsets {
		days[i] = o.MinAgeDays
	}
	return &VaccineResponse{
		ID:           v.ID.String(),
		Name:         v.Name,
		Type:         string(v.Type),
		Category:     v.Category,
		TotalDoses:   v.DoseCount(),
		Frequency:    v.Frequency,
		WhenToGive:   v.WhenToGive,
		MinAgeMonths: v.MinAgeMonths,
		MaxAgeMonths: v.MaxAgeMonths,
		DoseOffsets:  days,
		Recurrence:   string(frequency.Classify(v.Frequency).Kind),
		Active:       v.Active,
	}
}
