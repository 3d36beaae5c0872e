package errors

import (
	"errors"
	"net/http"
)

var (
	// ErrInvalidCredentials is returned when email or password is incorrect.
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrInvalidToken is returned when a bearer token is missing, malformed or expired.
	ErrInvalidToken = errors.New("invalid or expired token")
	// ErrEmailTaken is returned when the email is already registered to another user.
	ErrEmailTaken = errors.New("email already registered")
	// ErrJarNotFound is returned when a jar does not exist for the caller.
	ErrJarNotFound = errors.New("jar not found")
	// ErrDepositNotFound is returned when a deposit does not exist.
	ErrDepositNotFound = errors.New("deposit not found")
	// ErrForbidden is returned when a resource belongs to another user.
	ErrForbidden = errors.New("resource belongs to another user")
	// ErrInvalidAmount is returned when an amount fails validation.
	ErrInvalidAmount = errors.New("invalid amount")
	// ErrUserNotFound is returned when a user record is absent.
	ErrUserNotFound = errors.New("user not found")
)

// Response is the standard envelope for failed requests.
type Response struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// HTTPError represents an HTTP error with status code.
type HTTPError struct {
	StatusCode int
	Message    string
	Code       string
}

func (e *HTTPError) Error() string {
	return e.Message
}

// NewHTTPError creates a new HTTP error.
func NewHTTPError(statusCode int, message, code string) *HTTPError {
	return &HTTPError{
		StatusCode: statusCode,
		Message:    message,
		Code:       code,
	}
}

// ToResponse converts an HTTPError to the failure envelope.
func (e *HTTPError) ToResponse() Response {
	return Response{
		Success: false,
		Message: e.Message,
		Code:    e.Code,
	}
}

// MapErrorToHTTP maps domain errors to HTTP errors.
func MapErrorToHTTP(err error) *HTTPError {
	switch {
	case errors.Is(err, ErrInvalidCredentials):
		return NewHTTPError(http.StatusUnauthorized, err.Error(), "INVALID_CREDENTIALS")
	case errors.Is(err, ErrInvalidToken):
		return NewHTTPError(http.StatusUnauthorized, err.Error(), "INVALID_TOKEN")
	case errors.Is(err, ErrEmailTaken):
		return NewHTTPError(http.StatusConflict, err.Error(), "EMAIL_TAKEN")
	case errors.Is(err, ErrJarNotFound):
		return NewHTTPError(http.StatusNotFound, err.Error(), "JAR_NOT_FOUND")
	case errors.Is(err, ErrDepositNotFound):
		return NewHTTPError(http.StatusNotFound, err.Error(), "DEPOSIT_NOT_FOUND")
	case errors.Is(err, ErrUserNotFound):
		return NewHTTPError(http.StatusNotFound, err.Error(), "USER_NOT_FOUND")
	case errors.Is(err, ErrForbidden):
		return NewHTTPError(http.StatusForbidden, err.Error(), "FORBIDDEN")
	case errors.Is(err, ErrInvalidAmount):
		return NewHTTPError(http.StatusBadRequest, err.Error(), "INVALID_AMOUNT")
	default:
		return NewHTTPError(http.StatusInternalServerError, "internal server error", "INTERNAL_ERROR")
	}
}
