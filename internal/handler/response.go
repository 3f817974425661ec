package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/Hacka25/athenian-trading/internal/domain"
)

// WriteJSON writes a JSON response with the given status code and data.
// Sets Content-Type to application/json before writing the status code.
func WriteJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data) // Write error intentionally ignored in response helper
}

// errorResponse is the standard error response format.
type errorResponse struct {
	Error        string `json:"error"`
	Message      string `json:"message"`
	AuthorizeURL string `json:"authorize_url,omitempty"`
}

// WriteError writes a standard error response with the given status code,
// error code, and human-readable message.
func WriteError(w http.ResponseWriter, status int, errorCode, message string) {
	WriteJSON(w, status, errorResponse{
		Error:   errorCode,
		Message: message,
	})
}

// ParseJSON decodes the request body as JSON into v.
// It validates that the Content-Type header is application/json and
// returns an error for missing/incorrect content type or malformed JSON.
func ParseJSON(r *http.Request, v any) error {
	ct := r.Header.Get("Content-Type")
	if ct == "" || !strings.HasPrefix(ct, "application/json") {
		return fmt.Errorf("Request body must be valid JSON with Content-Type: application/json")
	}

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("Request body must be valid JSON with Content-Type: application/json")
	}

	return nil
}

// errorWriter maps service errors to HTTP responses. A missing credential
// response points the client at authorizeURL.
type errorWriter struct {
	authorizeURL string
}

func (e errorWriter) write(w http.ResponseWriter, err error) {
	var valErr *domain.ValidationError
	var refErr *domain.UnknownReferenceError

	switch {
	case errors.As(err, &valErr):
		WriteError(w, http.StatusBadRequest, "validation_error", valErr.Message)
	case errors.As(err, &refErr):
		WriteError(w, http.StatusUnprocessableEntity, "unknown_reference", err.Error())
	case errors.Is(err, domain.ErrNotEnoughUsers):
		WriteError(w, http.StatusUnprocessableEntity, "not_enough_users", "At least two users are needed")
	case errors.Is(err, domain.ErrNotEnoughUnits):
		WriteError(w, http.StatusUnprocessableEntity, "not_enough_units", "At least two units are needed")
	case errors.Is(err, domain.ErrMissingCredential):
		WriteJSON(w, http.StatusUnauthorized, errorResponse{
			Error:        "missing_credential",
			Message:      "The spreadsheet has not been authorized",
			AuthorizeURL: e.authorizeURL,
		})
	case errors.Is(err, domain.ErrRemoteStore):
		WriteError(w, http.StatusBadGateway, "remote_store_unavailable", err.Error())
	default:
		WriteError(w, http.StatusInternalServerError, "internal_error", "Internal server error")
	}
}
