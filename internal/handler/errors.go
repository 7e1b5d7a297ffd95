package handler

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/lewismosage/acna-sub000/internal/model"
	"github.com/lewismosage/acna-sub000/internal/repository"
	"github.com/lewismosage/acna-sub000/internal/service"
	"github.com/lewismosage/acna-sub000/internal/upload"
)

// respondError is the single place service and repository errors become HTTP
// responses. Validation messages are safe to echo; everything unrecognized
// is logged and answered with a generic 500 so internal detail never leaks.
func respondError(w http.ResponseWriter, logger *zap.Logger, err error) {
	var ve service.ValidationError
	switch {
	case errors.As(err, &ve):
		writeError(w, http.StatusBadRequest, ve.Error())
	case errors.Is(err, model.ErrInvalidTransition):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, repository.ErrNotFound):
		writeError(w, http.StatusNotFound, "not found")
	case errors.Is(err, repository.ErrWorkshopFull):
		writeError(w, http.StatusConflict, "workshop is fully booked")
	case errors.Is(err, repository.ErrAlreadyRegistered):
		writeError(w, http.StatusConflict, "this email is already registered for this workshop")
	case errors.Is(err, repository.ErrWorkshopNotOpen):
		writeError(w, http.StatusConflict, "workshop is not open for registration")
	case errors.Is(err, repository.ErrDuplicateEmail):
		writeError(w, http.StatusConflict, "an account with this email already exists")
	case errors.Is(err, service.ErrInvalidCredentials):
		writeError(w, http.StatusUnauthorized, "invalid credentials")
	case errors.Is(err, service.ErrInvalidEvent):
		writeError(w, http.StatusBadRequest, "invalid webhook event")
	case errors.Is(err, service.ErrProvider):
		writeError(w, http.StatusBadGateway, "payment provider unavailable")
	case errors.Is(err, upload.ErrFileTooLarge):
		writeError(w, http.StatusRequestEntityTooLarge, "file exceeds the size limit")
	case errors.Is(err, upload.ErrDisallowedType):
		writeError(w, http.StatusBadRequest, "file type not allowed")
	default:
		logger.Error("request failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}
