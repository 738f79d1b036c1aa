package httputil

import (
	"encoding/json"
	"net/http"
)

// Error codes carried alongside the message where the client branches on
// them (the global 401 interceptor keys off UNAUTHORIZED).
const (
	ErrCodeUnauthorized = "UNAUTHORIZED"
)

// ErrorResponse is the flat error body: {"error": "...", "code": "..."}.
// Code is omitted for plain errors.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// DataResponse wraps a successful payload: {"data": ...}.
type DataResponse struct {
	Data interface{} `json:"data"`
}

// WriteJSON writes a JSON response with the given status code
func WriteJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			// Headers already sent; nothing useful to do.
			return
		}
	}
}

// WriteData writes a 200 response with the payload wrapped in {"data": ...}.
func WriteData(w http.ResponseWriter, data interface{}) {
	WriteJSON(w, http.StatusOK, DataResponse{Data: data})
}

// WriteError writes {"error": message} with the given status.
func WriteError(w http.ResponseWriter, status int, message string) {
	WriteJSON(w, status, ErrorResponse{Error: message})
}

// WriteErrorCode writes {"error": message, "code": code} with the given status.
func WriteErrorCode(w http.ResponseWriter, status int, code, message string) {
	WriteJSON(w, status, ErrorResponse{Error: message, Code: code})
}

// Common error response helpers

// WriteBadRequest writes a 400 Bad Request error
func WriteBadRequest(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusBadRequest, message)
}

// WriteBadRequestWithCode writes a 400 Bad Request error with a code
func WriteBadRequestWithCode(w http.ResponseWriter, code, message string) {
	WriteErrorCode(w, http.StatusBadRequest, code, message)
}

// WriteUnauthorized writes a 401 with the UNAUTHORIZED code
func WriteUnauthorized(w http.ResponseWriter, message string) {
	WriteErrorCode(w, http.StatusUnauthorized, ErrCodeUnauthorized, message)
}

// WriteUnauthorizedWithCode writes a 401 with a custom code
func WriteUnauthorizedWithCode(w http.ResponseWriter, code, message string) {
	WriteErrorCode(w, http.StatusUnauthorized, code, message)
}

// WriteForbidden writes a 403 Forbidden error
func WriteForbidden(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusForbidden, message)
}

// WriteNotFound writes a 404 Not Found error
func WriteNotFound(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusNotFound, message)
}

// WriteInternalError writes a 500 Internal Server Error
func WriteInternalError(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusInternalServerError, message)
}
