package web

import (
	"encoding/json"
	"errors"
	"net/http"

	"repairdesk/internal/app"
	"repairdesk/internal/core"
	"repairdesk/internal/remote"
)

type errorResponse struct {
	Error     string `json:"error"`
	Code      string `json:"code"`
	RequestID string `json:"request_id,omitempty"`
}

// writeError writes a structured JSON error response.
func writeError(w http.ResponseWriter, r *http.Request, message, code string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	resp := errorResponse{
		Error:     message,
		Code:      code,
		RequestID: requestIDFromContext(r.Context()),
	}
	_ = json.NewEncoder(w).Encode(resp)
}

// writeJSON writes a JSON response with status 200.
func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

// writeJSONStatus writes a JSON response with an explicit status code.
func writeJSONStatus(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// serviceError maps application errors onto the HTTP taxonomy. Anything
// unrecognized is a 500 with a generic message so internals never leak.
func serviceError(w http.ResponseWriter, r *http.Request, err error) {
	var ve *core.ValidationError
	switch {
	case errors.As(err, &ve):
		writeError(w, r, ve.Error(), "VALIDATION", http.StatusBadRequest)
	case errors.Is(err, core.ErrNotFound):
		writeError(w, r, "not found", "NOT_FOUND", http.StatusNotFound)
	case errors.Is(err, remote.ErrForbidden):
		writeError(w, r, "insufficient role", "FORBIDDEN", http.StatusForbidden)
	case errors.Is(err, remote.ErrInvalidCredentials):
		writeError(w, r, "invalid email or password", "UNAUTHORIZED", http.StatusUnauthorized)
	case errors.Is(err, app.ErrUnsupported):
		writeError(w, r, "not supported by this backend", "NOT_IMPLEMENTED", http.StatusNotImplemented)
	default:
		writeError(w, r, "internal server error", "INTERNAL_ERROR", http.StatusInternalServerError)
	}
}

// decodeJSON decodes the request body into v, rejecting unknown fields.
// On failure it writes a 400 and returns false.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		writeError(w, r, "invalid request body: "+err.Error(), "BAD_REQUEST", http.StatusBadRequest)
		return false
	}
	return true
}
