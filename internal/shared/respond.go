package shared

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
)

// ErrorBody is the JSON envelope for failed requests.
type ErrorBody struct {
	Error string `json:"error"`
}

// WriteJSON writes a JSON response with the given status code. Responses are
// marked no-store since most carry credentials or personnel data.
func WriteJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError writes a JSON error envelope.
func WriteError(w http.ResponseWriter, code int, message string) {
	WriteJSON(w, code, ErrorBody{Error: message})
}

// WriteDomainError maps a core error to its HTTP status and writes the
// envelope. Unrecognised errors are logged and surfaced as 500; every
// taxonomy error stays a distinct, recoverable outcome.
func WriteDomainError(logger *slog.Logger, w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrInvalidCredentials):
		WriteError(w, http.StatusUnauthorized, "invalid email or password")
	case errors.Is(err, ErrRoleMismatch):
		WriteError(w, http.StatusUnauthorized, "account does not match the selected login role")
	case errors.Is(err, ErrSessionExpired):
		WriteError(w, http.StatusUnauthorized, "session expired, please log in again")
	case errors.Is(err, ErrCapabilityDenied):
		WriteError(w, http.StatusForbidden, "not allowed")
	case errors.Is(err, ErrValidation):
		WriteError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, ErrDuplicatePeriod):
		WriteError(w, http.StatusConflict, "a payroll record already exists for this employee and period")
	case errors.Is(err, ErrDuplicateIdentifier):
		WriteError(w, http.StatusConflict, err.Error())
	case errors.Is(err, ErrUnknownEmployee):
		WriteError(w, http.StatusBadRequest, "employee does not exist")
	case errors.Is(err, ErrUnknownRole):
		WriteError(w, http.StatusBadRequest, "role does not exist")
	case errors.Is(err, ErrReferentialConflict):
		WriteError(w, http.StatusConflict, "record is still referenced and cannot be deleted")
	case errors.Is(err, ErrNotFound):
		WriteError(w, http.StatusNotFound, "not found")
	default:
		if logger != nil {
			logger.Error("unhandled error", slog.Any("error", err))
		}
		WriteError(w, http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
	}
}

// ListMeta carries pagination metadata on list responses.
type ListMeta struct {
	Page       int `json:"page"`
	PerPage    int `json:"per_page"`
	Total      int `json:"total"`
	TotalPages int `json:"total_pages"`
}

// NewListMeta computes pagination metadata, clamping page and per_page to
// sane values.
func NewListMeta(page, perPage, total int) ListMeta {
	if perPage <= 0 {
		perPage = 20
	}
	if page <= 0 {
		page = 1
	}
	totalPages := (total + perPage - 1) / perPage
	return ListMeta{Page: page, PerPage: perPage, Total: total, TotalPages: totalPages}
}
