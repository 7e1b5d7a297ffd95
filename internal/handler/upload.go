package handler

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/lewismosage/acna-sub000/internal/model"
	"github.com/lewismosage/acna-sub000/internal/upload"
)

// UploadHandler holds the HTTP handler for file uploads.
type UploadHandler struct {
	svc    *upload.Service
	logger *zap.Logger
}

// NewUploadHandler constructs an UploadHandler.
func NewUploadHandler(svc *upload.Service, logger *zap.Logger) *UploadHandler {
	return &UploadHandler{svc: svc, logger: logger}
}

// Upload handles POST /uploads
// Accepts a multipart form with a single "file" field.
func (h *UploadHandler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, upload.MaxFileSize+1<<20)
	if err := r.ParseMultipartForm(upload.MaxFileSize); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			writeError(w, http.StatusRequestEntityTooLarge, "file exceeds the size limit")
			return
		}
		writeError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "missing file field")
		return
	}
	defer file.Close()

	url, err := h.svc.Store(header.Filename, header.Size, file)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, model.UploadResponse{URL: url})
}
