package httputil

import (
	"encoding/json"
	"log"
	"net/http"
)

// ErrorResponse is the error envelope returned by every endpoint.
// Detail carries internal error text and is only populated outside
// production.
type ErrorResponse struct {
	Message string `json:"message"`
	Status  int    `json:"status"`
	Detail  string `json:"error,omitempty"`
}

// RespondJSON sends a JSON response with the given status code.
// Logs encoding errors to avoid silent failures.
func RespondJSON(w http.ResponseWriter, data any, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("ERROR: failed to encode JSON response: %v", err)
	}
}

// RespondError sends a JSON error response with the given message and status code.
func RespondError(w http.ResponseWriter, message string, statusCode int) {
	RespondJSON(w, ErrorResponse{Message: message, Status: statusCode}, statusCode)
}

// RespondErrorWithDetail sends a JSON error response carrying internal error
// detail. Callers must only pass detail in non-production environments.
func RespondErrorWithDetail(w http.ResponseWriter, message, detail string, statusCode int) {
	RespondJSON(w, ErrorResponse{Message: message, Status: statusCode, Detail: detail}, statusCode)
}
