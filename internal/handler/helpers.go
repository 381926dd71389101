package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	log "github.com/sirupsen/logrus"

	"github.com/parisxmas/oxiforms/internal/ai"
	"github.com/parisxmas/oxiforms/internal/models"
	"github.com/parisxmas/oxiforms/internal/repository"
	"github.com/parisxmas/oxiforms/internal/service"
)

const maxBodyBytes = 1 << 20

func readJSON(r *http.Request, v any) error {
	if err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return errors.New("request body is empty")
		}
		return err
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.WithError(err).Warn("handler: encode response")
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"message": msg})
}

func badBody(w http.ResponseWriter, err error) {
	writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
}

// writeServiceError maps service and store errors onto HTTP statuses.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case models.IsValidation(err):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrNotFound), errors.Is(err, repository.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrEmailTaken), errors.Is(err, repository.ErrDuplicate):
		writeError(w, http.StatusConflict, conflictMessage(err))
	case errors.Is(err, repository.ErrConflict):
		writeError(w, http.StatusConflict, "resource was modified concurrently, retry")
	case errors.Is(err, service.ErrInvalidCredentials):
		writeError(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, service.ErrForbidden):
		writeError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, ai.ErrNotConfigured):
		writeError(w, http.StatusServiceUnavailable, "AI service not configured")
	case errors.Is(err, ai.ErrProvider):
		log.WithError(err).WithField("path", r.URL.Path).Error("ai provider failed")
		writeError(w, http.StatusInternalServerError, "AI service failed")
	default:
		log.WithError(err).WithField("path", r.URL.Path).Error("request failed")
		writeError(w, http.StatusInternalServerError, "Internal server error")
	}
}

func conflictMessage(err error) string {
	if errors.Is(err, service.ErrEmailTaken) {
		return err.Error()
	}
	return "resource already exists"
}
