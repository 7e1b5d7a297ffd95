package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/lewismosage/acna-sub000/internal/model"
	"github.com/lewismosage/acna-sub000/internal/service"
)

// WorkshopHandler holds the HTTP handlers for workshops and registrations.
type WorkshopHandler struct {
	svc     *service.WorkshopService
	metrics *Metrics
	logger  *zap.Logger
}

// NewWorkshopHandler constructs a WorkshopHandler.
func NewWorkshopHandler(svc *service.WorkshopService, metrics *Metrics, logger *zap.Logger) *WorkshopHandler {
	return &WorkshopHandler{svc: svc, metrics: metrics, logger: logger}
}

// Create handles POST /workshops
func (h *WorkshopHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req model.CreateWorkshopRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	workshop, err := h.svc.Create(r.Context(), req)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, workshop)
}

// List handles GET /workshops
// Supports optional ?status= and ?featured= filters.
func (h *WorkshopHandler) List(w http.ResponseWriter, r *http.Request) {
	workshops, err := h.svc.List(r.Context(), r.URL.Query().Get("status"), boolParam(r, "featured"))
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	// Return an empty array rather than null for better client compatibility.
	if workshops == nil {
		workshops = []model.Workshop{}
	}
	writeJSON(w, http.StatusOK, workshops)
}

// Get handles GET /workshops/{id}
func (h *WorkshopHandler) Get(w http.ResponseWriter, r *http.Request) {
	workshop, err := h.svc.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, workshop)
}

// UpdateStatus handles PATCH /workshops/{id}/status
func (h *WorkshopHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	var req model.StatusUpdateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	workshop, err := h.svc.UpdateStatus(r.Context(), chi.URLParam(r, "id"), req.Status)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, workshop)
}

// ToggleFeatured handles POST /workshops/{id}/featured
func (h *WorkshopHandler) ToggleFeatured(w http.ResponseWriter, r *http.Request) {
	featured, err := h.svc.ToggleFeatured(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"featured": featured})
}

// ListRegistrations handles GET /workshops/{id}/registrations
func (h *WorkshopHandler) ListRegistrations(w http.ResponseWriter, r *http.Request) {
	regs, err := h.svc.ListRegistrations(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	if regs == nil {
		regs = []model.Registration{}
	}
	writeJSON(w, http.StatusOK, regs)
}

// Register handles POST /workshops/{id}/register
// Free workshops answer 201 with the created registration. Paid workshops
// answer 200 with a paymentRequired envelope and persist nothing; the
// client must open a checkout session next.
func (h *WorkshopHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req model.AttendeeRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	reg, payReq, err := h.svc.Register(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	if payReq != nil {
		writeJSON(w, http.StatusOK, payReq)
		return
	}

	h.metrics.RecordRegistration("free")
	writeJSON(w, http.StatusCreated, reg)
}
