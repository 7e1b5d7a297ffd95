package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/lewismosage/acna-sub000/internal/model"
	"github.com/lewismosage/acna-sub000/internal/service"
)

// NewsHandler holds the HTTP handlers for news posts.
type NewsHandler struct {
	svc    *service.NewsService
	logger *zap.Logger
}

// NewNewsHandler constructs a NewsHandler.
func NewNewsHandler(svc *service.NewsService, logger *zap.Logger) *NewsHandler {
	return &NewsHandler{svc: svc, logger: logger}
}

// Create handles POST /news
func (h *NewsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req model.CreateNewsRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	post, err := h.svc.Create(r.Context(), req)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, post)
}

// List handles GET /news
// The public listing only ever returns published posts. Authenticated
// callers use GET /news/all for the unfiltered view.
func (h *NewsHandler) List(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, true)
}

// ListAll handles GET /news/all
func (h *NewsHandler) ListAll(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, false)
}

func (h *NewsHandler) list(w http.ResponseWriter, r *http.Request, publishedOnly bool) {
	posts, err := h.svc.List(r.Context(), r.URL.Query().Get("status"), boolParam(r, "featured"), publishedOnly)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	if posts == nil {
		posts = []model.NewsPost{}
	}
	writeJSON(w, http.StatusOK, posts)
}

// Get handles GET /news/{id}
// Each read bumps the post's view counter.
func (h *NewsHandler) Get(w http.ResponseWriter, r *http.Request) {
	post, err := h.svc.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, post)
}

// Update handles PUT /news/{id}
func (h *NewsHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req model.UpdateNewsRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	post, err := h.svc.Update(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, post)
}

// UpdateStatus handles PATCH /news/{id}/status
func (h *NewsHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	var req model.StatusUpdateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	post, err := h.svc.UpdateStatus(r.Context(), chi.URLParam(r, "id"), req.Status)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, post)
}

// ToggleFeatured handles POST /news/{id}/featured
func (h *NewsHandler) ToggleFeatured(w http.ResponseWriter, r *http.Request) {
	featured, err := h.svc.ToggleFeatured(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"featured": featured})
}
