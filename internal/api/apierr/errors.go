package apierr

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/ijo-project/ijo-backend/internal/model"
	"github.com/ijo-project/ijo-backend/internal/services/auth"
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
	CodeInvalidRequest     = "INVALID_REQUEST"
	CodeUnauthorized       = "UNAUTHORIZED"
	CodeInvalidCredentials = "INVALID_CREDENTIALS"
	CodeForbidden          = "FORBIDDEN"
	CodeAccountPending     = "ACCOUNT_PENDING"
	CodeAccountRejected    = "ACCOUNT_REJECTED"
	CodeAccountInactive    = "ACCOUNT_INACTIVE"
	CodeNotAdmin           = "NOT_ADMIN"
	CodeAccountNotFound    = "ACCOUNT_NOT_FOUND"
	CodeEmailExists        = "EMAIL_EXISTS"
	CodeTicketsExhausted   = "TICKETS_EXHAUSTED"
	CodeUnknownGame        = "UNKNOWN_GAME"
	CodeInvalidScore       = "INVALID_SCORE"
	CodeNoCompanion        = "NO_COMPANION"
	CodeCompanionExists    = "COMPANION_EXISTS"
	CodeInvalidItem        = "INVALID_ITEM"
	CodeAlreadyCheckedIn   = "ALREADY_CHECKED_IN"
	CodeInvalidStatus      = "INVALID_STATUS"
	CodeAdminStatusLocked  = "ADMIN_STATUS_LOCKED"
	CodeStatusTransition   = "INVALID_STATUS_TRANSITION"
	CodeInvalidContent     = "INVALID_CONTENT"
	CodeConflict           = "CONFLICT"
	CodeNotFound           = "NOT_FOUND"
	CodeRateLimited        = "RATE_LIMITED"
	CodeInternalError      = "INTERNAL_ERROR"
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

// Status returns the HTTP status WriteError would use for err
func Status(err error) int {
	return toHTTPError(err).status
}

// toHTTPError converts an error to an httpError
func toHTTPError(err error) *httpError {
	var he *httpError
	if errors.As(err, &he) {
		return he
	}

	switch {
	// Auth errors
	case errors.Is(err, auth.ErrInvalidCredentials):
		return &httpError{http.StatusUnauthorized, APIError{CodeInvalidCredentials, "Invalid email or password"}}
	case errors.Is(err, auth.ErrInvalidToken):
		return &httpError{http.StatusUnauthorized, APIError{CodeUnauthorized, "Invalid or expired token"}}
	case errors.Is(err, model.ErrAccountPending):
		return &httpError{http.StatusForbidden, APIError{CodeAccountPending, "Account is waiting for admin approval"}}
	case errors.Is(err, model.ErrAccountRejected):
		return &httpError{http.StatusForbidden, APIError{CodeAccountRejected, "Account registration was rejected"}}
	case errors.Is(err, model.ErrAccountInactive):
		return &httpError{http.StatusForbidden, APIError{CodeAccountInactive, "Account is not active"}}
	case errors.Is(err, model.ErrNotAdmin):
		return &httpError{http.StatusForbidden, APIError{CodeNotAdmin, "Admin role required"}}

	// Account errors
	case errors.Is(err, model.ErrAccountNotFound):
		return &httpError{http.StatusNotFound, APIError{CodeAccountNotFound, "User not found"}}
	case errors.Is(err, model.ErrEmailExists):
		return &httpError{http.StatusConflict, APIError{CodeEmailExists, "Email is already registered"}}
	case errors.Is(err, model.ErrInvalidStatus):
		return &httpError{http.StatusBadRequest, APIError{CodeInvalidStatus, "Status must be active or rejected"}}
	case errors.Is(err, model.ErrAdminStatusLocked):
		return &httpError{http.StatusForbidden, APIError{CodeAdminStatusLocked, "Admin accounts cannot be approved or rejected"}}
	case errors.Is(err, model.ErrStatusTransition):
		return &httpError{http.StatusConflict, APIError{CodeStatusTransition, "A rejected account cannot be reactivated"}}

	// Economy errors
	case errors.Is(err, model.ErrTicketsExhausted):
		return &httpError{http.StatusBadRequest, APIError{CodeTicketsExhausted, "Tickets exhausted! Scan some trash first."}}
	case errors.Is(err, model.ErrUnknownGameVariant):
		return &httpError{http.StatusBadRequest, APIError{CodeUnknownGame, "Unknown game type"}}
	case errors.Is(err, model.ErrInvalidScore):
		return &httpError{http.StatusBadRequest, APIError{CodeInvalidScore, fmt.Sprintf("Score must be between 0 and %d", model.MaxScore)}}

	// Companion errors
	case errors.Is(err, model.ErrNoCompanion), errors.Is(err, model.ErrItemNotFound):
		return &httpError{http.StatusNotFound, APIError{CodeNoCompanion, "You have not chosen a companion yet"}}
	case errors.Is(err, model.ErrCompanionExists):
		return &httpError{http.StatusConflict, APIError{CodeCompanionExists, "You already have a companion"}}
	case errors.Is(err, model.ErrInvalidItemType), errors.Is(err, model.ErrInvalidItem):
		return &httpError{http.StatusBadRequest, APIError{CodeInvalidItem, err.Error()}}
	case errors.Is(err, model.ErrAlreadyCheckedIn):
		return &httpError{http.StatusBadRequest, APIError{CodeAlreadyCheckedIn, "Already checked in today, come back tomorrow"}}

	// Content errors
	case errors.Is(err, model.ErrInvalidContentKey), errors.Is(err, model.ErrInvalidContentValue):
		return &httpError{http.StatusBadRequest, APIError{CodeInvalidContent, err.Error()}}
	}

	// Anything else the model classifies
	switch model.KindOf(err) {
	case model.KindNotFound:
		return &httpError{http.StatusNotFound, APIError{CodeNotFound, err.Error()}}
	case model.KindInvalidRequest:
		return &httpError{http.StatusBadRequest, APIError{CodeInvalidRequest, err.Error()}}
	case model.KindConflict:
		return &httpError{http.StatusConflict, APIError{CodeConflict, err.Error()}}
	case model.KindForbidden:
		return &httpError{http.StatusForbidden, APIError{CodeForbidden, err.Error()}}
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

// NewRateLimitedError is returned when a client exceeds its request budget
func NewRateLimitedError() error {
	return &httpError{http.StatusTooManyRequests, APIError{CodeRateLimited, "Too many requests, slow down"}}
}

// NewInternalError creates an internal server error
func NewInternalError() error {
	return &httpError{http.StatusInternalServerError, APIError{CodeInternalError, "Internal server error"}}
}
