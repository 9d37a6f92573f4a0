package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/creeeasy/online-store-sub000/pkg/models"
)

// respond writes the standard envelope. A nil payload produces an envelope
// with no data object.
func (h *Handler) respond(w http.ResponseWriter, code int, message string, payload interface{}, pagination *models.Pagination) {
	resp := models.Response{
		Success:    code < 400,
		Message:    message,
		Timestamp:  time.Now().UTC().Format(time.RFC3339),
		Pagination: pagination,
	}
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			h.logger.WithError(err).Error("Failed to marshal response payload")
			h.respondError(w, http.StatusInternalServerError, "Internal server error")
			return
		}
		resp.Data = data
	}
	writeEnvelope(w, code, resp)
}

func (h *Handler) respondError(w http.ResponseWriter, code int, message string) {
	writeEnvelope(w, code, models.Response{
		Success:   false,
		Message:   message,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

// respondValidation returns 422 with field-level errors so clients can
// render them inline.
func (h *Handler) respondValidation(w http.ResponseWriter, errs []models.FieldError) {
	writeEnvelope(w, http.StatusUnprocessableEntity, models.Response{
		Success:   false,
		Message:   "Validation failed",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Errors:    errs,
	})
}

func writeEnvelope(w http.ResponseWriter, code int, resp models.Response) {
	body, _ := json.Marshal(resp)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(body)
}
