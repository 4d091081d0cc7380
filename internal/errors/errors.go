package errors

import (
	"errors"
	"net/http"
	"strings"
)

var (
	// ErrSweetNotFound is returned when no sweet matches a valid id.
	ErrSweetNotFound = errors.New("Sweet not found")
	// ErrInvalidSweetID is returned when the path id is not a valid identifier.
	ErrInvalidSweetID = errors.New("Invalid sweet ID")
	// ErrInsufficientStock is returned when a purchase asks for more than is in stock.
	ErrInsufficientStock = errors.New("Insufficient stock")
	// ErrDuplicateEmail is returned when registering an email that is already taken.
	ErrDuplicateEmail = errors.New("Email already registered")
	// ErrInvalidCredentials is returned for an unknown email and for a wrong password alike.
	ErrInvalidCredentials = errors.New("Invalid credentials")
	// ErrInvalidToken covers malformed, badly signed, expired and revoked tokens.
	ErrInvalidToken = errors.New("Invalid token")
	// ErrUserNotFound is returned when a token references a user that no longer exists.
	ErrUserNotFound = errors.New("Invalid token. User not found")
	// ErrNotAuthenticated is returned by role checks that run without an authenticated user.
	ErrNotAuthenticated = errors.New("User not authenticated")
	// ErrForbidden is returned when the user's role is not allowed.
	ErrForbidden = errors.New("Access denied. Insufficient permissions")
	// ErrNoToken is returned when the Authorization header is missing or not a bearer token.
	ErrNoToken = errors.New("Access denied. No token provided")
)

// FieldError describes one rejected input field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError carries field level messages for malformed or out of range input.
type ValidationError struct {
	Fields []FieldError
}

// NewValidationError builds a ValidationError from field/message pairs.
func NewValidationError(fields ...FieldError) *ValidationError {
	return &ValidationError{Fields: fields}
}

func (e *ValidationError) Error() string {
	msgs := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		msgs = append(msgs, f.Message)
	}
	if len(msgs) == 0 {
		return "validation failed"
	}
	return strings.Join(msgs, "; ")
}

// Add appends a field error.
func (e *ValidationError) Add(field, message string) {
	e.Fields = append(e.Fields, FieldError{Field: field, Message: message})
}

// OrNil returns nil when no field errors were collected.
func (e *ValidationError) OrNil() error {
	if e == nil || len(e.Fields) == 0 {
		return nil
	}
	return e
}

// HTTPError represents an HTTP error with status code.
type HTTPError struct {
	StatusCode int
	Message    string
	Code       string
	Fields     []FieldError
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

// MapErrorToHTTP maps domain errors to HTTP errors.
func MapErrorToHTTP(err error) *HTTPError {
	var verr *ValidationError
	if errors.As(err, &verr) {
		httpErr := NewHTTPError(http.StatusBadRequest, verr.Error(), "VALIDATION_ERROR")
		httpErr.Fields = verr.Fields
		return httpErr
	}

	switch {
	case errors.Is(err, ErrInvalidSweetID):
		return NewHTTPError(http.StatusBadRequest, ErrInvalidSweetID.Error(), "INVALID_ID")
	case errors.Is(err, ErrInsufficientStock):
		return NewHTTPError(http.StatusBadRequest, ErrInsufficientStock.Error(), "INSUFFICIENT_STOCK")
	case errors.Is(err, ErrDuplicateEmail):
		return NewHTTPError(http.StatusBadRequest, ErrDuplicateEmail.Error(), "DUPLICATE_EMAIL")
	case errors.Is(err, ErrSweetNotFound):
		return NewHTTPError(http.StatusNotFound, ErrSweetNotFound.Error(), "NOT_FOUND")
	case errors.Is(err, ErrInvalidCredentials):
		return NewHTTPError(http.StatusUnauthorized, ErrInvalidCredentials.Error(), "INVALID_CREDENTIALS")
	case errors.Is(err, ErrNoToken):
		return NewHTTPError(http.StatusUnauthorized, ErrNoToken.Error(), "NO_TOKEN")
	case errors.Is(err, ErrInvalidToken):
		return NewHTTPError(http.StatusUnauthorized, ErrInvalidToken.Error(), "INVALID_TOKEN")
	case errors.Is(err, ErrUserNotFound):
		return NewHTTPError(http.StatusUnauthorized, ErrUserNotFound.Error(), "INVALID_TOKEN")
	case errors.Is(err, ErrNotAuthenticated):
		return NewHTTPError(http.StatusUnauthorized, ErrNotAuthenticated.Error(), "NOT_AUTHENTICATED")
	case errors.Is(err, ErrForbidden):
		return NewHTTPError(http.StatusForbidden, ErrForbidden.Error(), "FORBIDDEN")
	default:
		return NewHTTPError(http.StatusInternalServerError, "internal server error", "INTERNAL_ERROR")
	}
}
