// Package errors provides the error taxonomy shared by the sync server and the
// workspace store. Service-layer errors should use AppError so handlers can
// render consistent responses that never leak internal details to clients.
package errors

import "net/http"

// AppError represents a structured application error with an error code,
// human-readable message, HTTP status code, and optional internal error.
type AppError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	StatusCode int    `json:"-"`
	Internal   error  `json:"-"`
}

// Error implements the error interface.
func (e *AppError) Error() string { return e.Message }

// Unwrap returns the internal error for use with errors.Is/As.
func (e *AppError) Unwrap() error { return e.Internal }

// Is matches AppErrors by code so wrapped copies compare equal to their sentinel.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	return ok && t.Code == e.Code
}

// Wrap creates a new AppError with the same code/message/status but wraps an internal error.
func Wrap(sentinel *AppError, internal error) *AppError {
	return &AppError{
		Code:       sentinel.Code,
		Message:    sentinel.Message,
		StatusCode: sentinel.StatusCode,
		Internal:   internal,
	}
}

// WithMessage creates a new AppError with a custom message.
func WithMessage(sentinel *AppError, message string) *AppError {
	return &AppError{
		Code:       sentinel.Code,
		Message:    message,
		StatusCode: sentinel.StatusCode,
		Internal:   sentinel.Internal,
	}
}

// General errors.
var (
	ErrInvalidInput    = &AppError{Code: "INVALID_INPUT", Message: "Invalid input", StatusCode: http.StatusBadRequest}
	ErrNotFound        = &AppError{Code: "NOT_FOUND", Message: "Resource not found", StatusCode: http.StatusNotFound}
	ErrInternalServer  = &AppError{Code: "INTERNAL_ERROR", Message: "An internal error occurred", StatusCode: http.StatusInternalServerError}
	ErrRateLimited     = &AppError{Code: "RATE_LIMITED", Message: "Too many requests, slow down", StatusCode: http.StatusTooManyRequests}
	ErrPayloadTooLarge = &AppError{Code: "PAYLOAD_TOO_LARGE", Message: "Request body is too large", StatusCode: http.StatusRequestEntityTooLarge}
)

// Operator endpoint errors.
var (
	ErrOperatorNotConfigured = &AppError{Code: "OPERATOR_NOT_CONFIGURED", Message: "Operator endpoints are not configured", StatusCode: http.StatusServiceUnavailable}
	ErrInvalidAPIKey         = &AppError{Code: "INVALID_API_KEY", Message: "Invalid or missing API key", StatusCode: http.StatusUnauthorized}
)

// Sync errors.
var (
	ErrInvalidSnapshot   = &AppError{Code: "INVALID_SNAPSHOT", Message: "Snapshot data is malformed", StatusCode: http.StatusBadRequest}
	ErrInvalidIdentifier = &AppError{Code: "INVALID_IDENTIFIER", Message: "Sync identifier is malformed", StatusCode: http.StatusBadRequest}
	ErrSnapshotNotFound  = &AppError{Code: "SNAPSHOT_NOT_FOUND", Message: "No data stored for this identifier, upload first", StatusCode: http.StatusNotFound}
)

// Workspace errors.
var (
	ErrUserNotFound      = &AppError{Code: "USER_NOT_FOUND", Message: "User not found", StatusCode: http.StatusNotFound}
	ErrLastUser          = &AppError{Code: "LAST_USER", Message: "At least one user must be kept", StatusCode: http.StatusConflict}
	ErrAssetNotFound     = &AppError{Code: "ASSET_NOT_FOUND", Message: "Asset not found", StatusCode: http.StatusNotFound}
	ErrCurrencyNotFound  = &AppError{Code: "CURRENCY_NOT_FOUND", Message: "Currency not found", StatusCode: http.StatusNotFound}
	ErrDuplicateCurrency = &AppError{Code: "DUPLICATE_CURRENCY", Message: "A currency with this code already exists", StatusCode: http.StatusConflict}
	ErrHomeCurrency      = &AppError{Code: "HOME_CURRENCY", Message: "The home currency cannot be removed or re-rated", StatusCode: http.StatusConflict}
	ErrInvalidRate       = &AppError{Code: "INVALID_RATE", Message: "Exchange rate must be a positive number", StatusCode: http.StatusBadRequest}
	ErrPathNotFound      = &AppError{Code: "PATH_NOT_FOUND", Message: "Investment path not found", StatusCode: http.StatusNotFound}
)
