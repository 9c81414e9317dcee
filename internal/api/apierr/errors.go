package apierr

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/mcoot/arcade-go/internal/model"
)

// APIError represents an API error response
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ErrorResponse wraps an APIError
type ErrorResponse struct {
	Error APIError `json:"error"`
}

// Common error codes
const (
	CodeInvalidRequest   = "INVALID_REQUEST"
	CodeUnauthorized     = "UNAUTHORIZED"
	CodeForbidden        = "FORBIDDEN"
	CodeNotFound         = "NOT_FOUND"
	CodeGameNotFound     = "GAME_NOT_FOUND"
	CodeSessionNotFound  = "SESSION_NOT_FOUND"
	CodeScoreOutOfRange  = "SCORE_OUT_OF_RANGE"
	CodeInvalidPlayTime  = "INVALID_PLAY_TIME"
	CodeInvalidPayload   = "INVALID_GAMEPLAY_DATA"
	CodeInvalidPeriod    = "INVALID_PERIOD"
	CodeInvalidLimit     = "INVALID_LIMIT"
	CodeConflict         = "CONFLICT"
	CodeMethodNotAllowed = "METHOD_NOT_ALLOWED"
	CodeInternalError    = "INTERNAL_ERROR"
)

// httpError combines an HTTP status code with an APIError
type httpError struct {
	status   int
	apiError APIError
}

// Error implements error interface
func (e *httpError) Error() string {
	return e.apiError.Message
}

// WriteError writes an error response to the response writer
func WriteError(w http.ResponseWriter, err error) {
	he := toHTTPError(err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(he.status)
	_ = json.NewEncoder(w).Encode(ErrorResponse{Error: he.apiError})
}

// Status returns the HTTP status an error maps to
func Status(err error) int {
	return toHTTPError(err).status
}

// toHTTPError maps specific model errors first, then falls back on the error kind
func toHTTPError(err error) *httpError {
	var he *httpError
	if errors.As(err, &he) {
		return he
	}

	switch {
	case errors.Is(err, model.ErrGameNotFound):
		return &httpError{http.StatusNotFound, APIError{CodeGameNotFound, "Game not found"}}
	case errors.Is(err, model.ErrGameInactive):
		return &httpError{http.StatusNotFound, APIError{CodeGameNotFound, "Game not found or inactive"}}
	case errors.Is(err, model.ErrSessionNotFound):
		return &httpError{http.StatusNotFound, APIError{CodeSessionNotFound, "Session not found"}}
	case errors.Is(err, model.ErrMissingGameID):
		return &httpError{http.StatusBadRequest, APIError{CodeInvalidRequest, "game_id is required"}}
	case errors.Is(err, model.ErrScoreOutOfRange):
		return &httpError{http.StatusBadRequest, APIError{CodeScoreOutOfRange, "Invalid score"}}
	case errors.Is(err, model.ErrInvalidPlayTime):
		return &httpError{http.StatusBadRequest, APIError{CodeInvalidPlayTime, "Invalid play time"}}
	case errors.Is(err, model.ErrInvalidPayload):
		return &httpError{http.StatusBadRequest, APIError{CodeInvalidPayload, "gameplay_data must be valid JSON"}}
	case errors.Is(err, model.ErrInvalidPeriod):
		return &httpError{http.StatusBadRequest, APIError{CodeInvalidPeriod, "period must be one of today, week, month, alltime"}}
	case errors.Is(err, model.ErrInvalidLimit):
		return &httpError{http.StatusBadRequest, APIError{CodeInvalidLimit, "limit must be between 1 and 200"}}
	case errors.Is(err, model.ErrInvalidToken):
		return &httpError{http.StatusUnauthorized, APIError{CodeUnauthorized, "Invalid or expired token"}}

	// Kinds
	case errors.Is(err, model.ErrNotFound):
		return &httpError{http.StatusNotFound, APIError{CodeNotFound, "Not found"}}
	case errors.Is(err, model.ErrInvalidInput):
		return &httpError{http.StatusBadRequest, APIError{CodeInvalidRequest, "Invalid request"}}
	case errors.Is(err, model.ErrConflict):
		return &httpError{http.StatusConflict, APIError{CodeConflict, "Concurrent update, please retry"}}
	case errors.Is(err, model.ErrUnauthorized):
		return &httpError{http.StatusUnauthorized, APIError{CodeUnauthorized, "Authentication required"}}

	default:
		return &httpError{http.StatusInternalServerError, APIError{CodeInternalError, "Internal server error"}}
	}
}

// NewInvalidRequestError creates an invalid request error
func NewInvalidRequestError(message string) error {
	return &httpError{http.StatusBadRequest, APIError{CodeInvalidRequest, message}}
}

// NewUnauthorizedError creates an unauthorized error
func NewUnauthorizedError() error {
	return &httpError{http.StatusUnauthorized, APIError{CodeUnauthorized, "Authentication required"}}
}

// NewForbiddenError creates an error for authenticated callers lacking a permission
func NewForbiddenError() error {
	return &httpError{http.StatusForbidden, APIError{CodeForbidden, "Not permitted"}}
}

// NewNotFoundError creates a not found error for unknown routes
func NewNotFoundError() error {
	return &httpError{http.StatusNotFound, APIError{CodeNotFound, "Not found"}}
}

// NewMethodNotAllowedError creates a method not allowed error
func NewMethodNotAllowedError() error {
	return &httpError{http.StatusMethodNotAllowed, APIError{CodeMethodNotAllowed, "Method not allowed"}}
}

// NewInternalError creates an internal server error
func NewInternalError() error {
	return &httpError{http.StatusInternalServerError, APIError{CodeInternalError, "Internal server error"}}
}
