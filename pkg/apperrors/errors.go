package apperrors

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"net/http"
)

// AppError is the application error type carried between services and
// handlers. HTTPCode decides the response status; Err keeps the wrapped
// cause out of the JSON body.
type AppError struct {
	Code     ErrorCode   `json:"code"`
	Message  string      `json:"message"`
	Details  interface{} `json:"details,omitempty"`
	Err      error       `json:"-"`
	HTTPCode int         `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func New(code ErrorCode, message string, httpCode int) *AppError {
	return &AppError{
		Code:     code,
		Message:  message,
		HTTPCode: httpCode,
	}
}

func Wrap(err error, code ErrorCode, message string, httpCode int) *AppError {
	return &AppError{
		Code:     code,
		Message:  message,
		Err:      err,
		HTTPCode: httpCode,
	}
}

func (e *AppError) WithDetails(details interface{}) *AppError {
	e.Details = details
	return e
}

func (e *AppError) MarshalJSON() ([]byte, error) {
	type alias struct {
		Code    ErrorCode   `json:"code"`
		Message string      `json:"message"`
		Details interface{} `json:"details,omitempty"`
	}
	return json.Marshal(&alias{
		Code:    e.Code,
		Message: e.Message,
		Details: e.Details,
	})
}

// Is and As wrap the standard errors helpers so callers don't need two
// imports.
func Is(err, target error) bool {
	return stderrors.Is(err, target)
}

func As(err error, target interface{}) bool {
	return stderrors.As(err, target)
}

// Predefined errors
var (
	// Authentication
	ErrInvalidCredentials = New(CodeInvalidCredentials, "Invalid email or password", http.StatusUnauthorized)
	ErrUnauthorized       = New(CodeUnauthorized, "Authentication required", http.StatusUnauthorized)
	ErrForbidden          = New(CodeForbidden, "Access denied", http.StatusForbidden)
	ErrInvalidToken       = New(CodeInvalidToken, "Invalid or expired token", http.StatusUnauthorized)

	// Users
	ErrUserNotFound       = New(CodeNotFound, "User not found", http.StatusNotFound)
	ErrEmailAlreadyExists = New(CodeAlreadyExists, "Email already exists", http.StatusConflict)

	// Sites and connections
	ErrSiteNotFound        = New(CodeNotFound, "Site not found", http.StatusNotFound)
	ErrSiteDisabled        = New(CodeInvalidOperation, "Site is not available for connection yet", http.StatusBadRequest)
	ErrConnectionNotFound  = New(CodeNotFound, "Site connection not found", http.StatusNotFound)
	ErrNoActiveConnections = New(CodeInvalidOperation, "No active connected sites found", http.StatusBadRequest)

	// Listings
	ErrListingNotFound = New(CodeNotFound, "Listing not found", http.StatusNotFound)
	ErrListingLimit    = New(CodeLimitExceeded, "Listing limit reached for the free plan", http.StatusForbidden)
	ErrInvalidPrice    = New(CodeValidationFailed, "Invalid price value", http.StatusBadRequest)

	// Subscriptions / billing
	ErrSubscriptionNotFound = New(CodeNotFound, "No subscription found", http.StatusNotFound)
	ErrSubscriptionCanceled = New(CodeInvalidStatus, "Subscription is already canceled", http.StatusBadRequest)
	ErrBillingNotConfigured = New(CodeBillingNotConfigured, "Billing is not configured", http.StatusInternalServerError)
	ErrWebhookVerification  = New(CodeWebhookVerification, "Webhook signature verification failed", http.StatusBadRequest)

	// Validation
	ErrValidationFailed = New(CodeValidationFailed, "Validation failed", http.StatusBadRequest)
)

// Factory helpers

func ValidationError(details interface{}) *AppError {
	return New(CodeValidationFailed, "Validation failed", http.StatusBadRequest).WithDetails(details)
}

func InternalError(err error) *AppError {
	return Wrap(err, CodeInternalError, "Internal server error", http.StatusInternalServerError)
}

func NewBadRequestError(message string) *AppError {
	return New(CodeValidationFailed, message, http.StatusBadRequest)
}

func NewNotFoundError(message string) *AppError {
	return New(CodeNotFound, message, http.StatusNotFound)
}

func NewUnauthorizedError(message string) *AppError {
	return New(CodeUnauthorized, message, http.StatusUnauthorized)
}

func NewConflictError(message string) *AppError {
	return New(CodeConflict, message, http.StatusConflict)
}
