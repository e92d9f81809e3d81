// internal/handlers/respond.go
package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/avashisht/boutique-be/internal/core/domain"
)

// envelope is the uniform response shape of every API endpoint.
type envelope struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *apiError   `json:"error,omitempty"`
}

// apiError carries a machine-readable code alongside the message.
type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// respondJSON writes a success envelope.
func respondJSON(w http.ResponseWriter, logger *slog.Logger, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(envelope{Success: true, Data: data}); err != nil {
		logger.Error("failed to encode JSON response",
			slog.String("error", err.Error()))
	}
}

// respondError writes an error envelope with an explicit status and code.
func respondError(w http.ResponseWriter, logger *slog.Logger, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(envelope{
		Success: false,
		Error:   &apiError{Code: code, Message: message},
	}); err != nil {
		logger.Error("failed to encode JSON error response",
			slog.String("error", err.Error()))
	}
}

// respondDomainError maps a domain error onto its HTTP status and code.
// BackendUnavailable only reaches here after the fallback retry also failed.
func respondDomainError(w http.ResponseWriter, logger *slog.Logger, err error) {
	status, code := classifyDomainError(err)
	message := err.Error()
	if status == http.StatusInternalServerError {
		message = "internal server error"
	}
	respondError(w, logger, status, code, message)
}

// classifyDomainError translates the shared error taxonomy into HTTP terms.
func classifyDomainError(err error) (int, string) {
	switch {
	case domain.IsValidation(err):
		return http.StatusBadRequest, "validation_error"
	case domain.IsInsufficientStock(err):
		return http.StatusUnprocessableEntity, "insufficient_stock"
	case domain.IsBackendUnavailable(err):
		return http.StatusServiceUnavailable, "backend_unavailable"
	}

	switch {
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, domain.ErrDuplicateKey):
		return http.StatusConflict, "duplicate_key"
	}

	return http.StatusInternalServerError, "internal_error"
}
