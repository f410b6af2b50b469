package dto

import "net/http"

// General error codes
const (
	// ErrCodeUnknown is used when the error type is unknown
	ErrCodeUnknown = "ERR_UNKNOWN"
	// ErrCodeInternal is used for internal server errors
	ErrCodeInternal = "ERR_INTERNAL"
	// ErrCodeBadRequest is used for malformed requests
	ErrCodeBadRequest = "ERR_BAD_REQUEST"
	// ErrCodeInvalidJSON is used when JSON parsing fails
	ErrCodeInvalidJSON = "ERR_INVALID_JSON"
	// ErrCodeNotFound is used when a resource is not found
	ErrCodeNotFound = "ERR_NOT_FOUND"
	// ErrCodeConflict is used for general resource conflicts
	ErrCodeConflict = "ERR_CONFLICT"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes. Domain
// errors keep their original codes in the response body; only the
// status is derived here.
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeUnknown:     http.StatusInternalServerError,
	ErrCodeInternal:    http.StatusInternalServerError,
	ErrCodeBadRequest:  http.StatusBadRequest,
	ErrCodeInvalidJSON: http.StatusBadRequest,
	ErrCodeNotFound:    http.StatusNotFound,
	ErrCodeConflict:    http.StatusConflict,

	// Lookup failures -> 404 Not Found
	"INVOICE_NOT_FOUND":     http.StatusNotFound,
	"TRACK_RANGE_NOT_FOUND": http.StatusNotFound,

	// State conflicts -> 409 Conflict
	"INVOICE_ALREADY_VOIDED": http.StatusConflict,
	"TRACK_RANGE_OVERLAP":    http.StatusConflict,
	"TRACK_RANGE_INACTIVE":   http.StatusConflict,
	"INVALID_STATE":          http.StatusConflict,

	// No capacity left -> 422 Unprocessable Entity
	"TRACK_EXHAUSTED": http.StatusUnprocessableEntity,

	// Request validation -> 400 Bad Request
	"INVOICE_VALIDATION":      http.StatusBadRequest,
	"TRACK_RANGE_VALIDATION":  http.StatusBadRequest,
	"INVALID_TAX_RATE":        http.StatusBadRequest,
	"TAX_TYPE_NOT_COMPUTABLE": http.StatusBadRequest,
	"VALIDATION_ERROR":        http.StatusBadRequest,
}

// GetHTTPStatus returns the HTTP status code for an error code.
// Returns 500 Internal Server Error if the error code is not found.
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}
