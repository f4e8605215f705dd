// Package httputil provides shared request decoding and response helpers.
package httputil

import (
	"encoding/json"
	"net/http"

	"github.com/bod9dzys/order-api-mvp/internal/logging"
)

// ErrorBody is the JSON shape of every error response.
type ErrorBody struct {
	Detail  string                 `json:"detail"`
	Code    string                 `json:"code,omitempty"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// WriteJSON encodes data as JSON with the given status code.
func WriteJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		_ = json.NewEncoder(w).Encode(data)
	}
}

// WriteErrorResponse emits the standard error body.
func WriteErrorResponse(w http.ResponseWriter, r *http.Request, status int, code, message string, details map[string]interface{}) {
	if traceID := logging.GetTraceID(r.Context()); traceID != "" {
		w.Header().Set("X-Trace-ID", traceID)
	}
	WriteJSON(w, status, ErrorBody{Detail: message, Code: code, Details: details})
}

// DecodeJSON decodes a request body into dst, writing a 400 on failure.
// The return value reports whether decoding succeeded.
func DecodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	defer r.Body.Close()
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dst); err != nil {
		BadRequest(w, "invalid JSON body")
		return false
	}
	return true
}

// BadRequest writes a 400 with the given detail message.
func BadRequest(w http.ResponseWriter, detail string) {
	WriteJSON(w, http.StatusBadRequest, ErrorBody{Detail: detail})
}

// NotFound writes a 404 with the given detail message.
func NotFound(w http.ResponseWriter, detail string) {
	WriteJSON(w, http.StatusNotFound, ErrorBody{Detail: detail})
}

// Unauthorized writes a 401 with a WWW-Authenticate challenge.
func Unauthorized(w http.ResponseWriter, detail string) {
	if detail == "" {
		detail = "Not authenticated"
	}
	w.Header().Set("WWW-Authenticate", "Bearer")
	WriteJSON(w, http.StatusUnauthorized, ErrorBody{Detail: detail})
}

// Forbidden writes a 403 with the given detail message.
func Forbidden(w http.ResponseWriter, detail string) {
	WriteJSON(w, http.StatusForbidden, ErrorBody{Detail: detail})
}

// InternalError writes a 500 with the given detail message.
func InternalError(w http.ResponseWriter, detail string) {
	WriteJSON(w, http.StatusInternalServerError, ErrorBody{Detail: detail})
}

// RequireUserID extracts the authenticated user ID from the request context,
// writing a 401 when it is absent.
func RequireUserID(w http.ResponseWriter, r *http.Request) (string, bool) {
	userID := logging.GetUserID(r.Context())
	if userID == "" {
		Unauthorized(w, "")
		return "", false
	}
	return userID, true
}
