package netsync

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// ErrorKind classifies a failure. Kinds are stable identifiers, safe to
// switch on in UI code.
type ErrorKind string

const (
	ErrKindValidation  ErrorKind = "VALIDATION_ERROR"
	ErrKindNetwork     ErrorKind = "NETWORK_ERROR"
	ErrKindTimeout     ErrorKind = "TIMEOUT"
	ErrKindServer      ErrorKind = "SERVER_ERROR"
	ErrKindNotFound    ErrorKind = "RESOURCE_NOT_FOUND"
	ErrKindForbidden   ErrorKind = "ACCESS_DENIED"
	ErrKindAuth        ErrorKind = "AUTH_ERROR"
	ErrKindConflict    ErrorKind = "CONFLICT"
	ErrKindRateLimited ErrorKind = "RATE_LIMITED"
)

// APIError is the typed failure returned by every operation. Validation
// errors are resolved locally before any I/O; all other kinds attach the
// operation name, request id, and elapsed time at settlement.
type APIError struct {
	Kind      ErrorKind     `json:"kind"       yaml:"kind"`
	Status    int           `json:"status"     yaml:"status"`
	Message   string        `json:"message"    yaml:"message"`
	Detail    string        `json:"detail"     yaml:"detail"`
	Operation string        `json:"operation"  yaml:"operation"`
	RequestID string        `json:"request_id" yaml:"request_id"`
	Elapsed   time.Duration `json:"elapsed"    yaml:"elapsed"`
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.Status > 0 {
		return fmt.Sprintf("%s: %s (status %d)", e.Kind, e.Message, e.Status)
	}

	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Retryable reports whether the kind is worth retrying. Rate limiting is
// deliberately not retryable.
func (e *APIError) Retryable() bool {
	switch e.Kind {
	case ErrKindNetwork, ErrKindTimeout, ErrKindServer:
		return true
	default:
		return false
	}
}

// UserMessage is the short classified text shown to users, distinct from
// raw backend detail.
func (e *APIError) UserMessage() string {
	switch e.Kind {
	case ErrKindValidation:
		return "Some required fields are missing."
	case ErrKindNetwork:
		return "Could not reach the server. Check your connection and retry."
	case ErrKindTimeout:
		return "The request timed out. Retry in a moment."
	case ErrKindServer:
		return "The server had a problem. Retry in a moment."
	case ErrKindNotFound:
		return "The requested resource was not found."
	case ErrKindForbidden:
		return "You do not have permission to do that."
	case ErrKindAuth:
		return "Your session is no longer valid. Sign in again."
	case ErrKindConflict:
		return "The resource changed on the server. Reload and retry."
	case ErrKindRateLimited:
		return "Too many requests. Wait before trying again."
	default:
		return "Something went wrong."
	}
}

// ClassifyStatus maps an HTTP status to an error kind. 5xx statuses are
// only classified here after the retry budget is exhausted.
func ClassifyStatus(status int) ErrorKind {
	switch {
	case status == http.StatusUnauthorized:
		return ErrKindAuth
	case status == http.StatusForbidden:
		return ErrKindForbidden
	case status == http.StatusNotFound:
		return ErrKindNotFound
	case status == http.StatusConflict:
		return ErrKindConflict
	case status == http.StatusTooManyRequests:
		return ErrKindRateLimited
	case status >= 500:
		return ErrKindServer
	default:
		return ErrKindValidation
	}
}

// RetryableStatus reports whether a status is in the transient set.
func RetryableStatus(status int) bool {
	switch status {
	case http.StatusInternalServerError,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout:
		return true
	default:
		return false
	}
}

// NewValidationError builds the failure for missing required fields. No
// transport call is made for these.
func NewValidationError(operation string, missing []string) *APIError {
	return &APIError{
		Kind:      ErrKindValidation,
		Message:   fmt.Sprintf("missing required fields: %s", strings.Join(missing, ", ")),
		Operation: operation,
	}
}

// Static errors wrapped with context at call sites.
var (
	ErrConfigRequired    = errors.New("config is required")
	ErrBaseURLRequired   = errors.New("base URL is required")
	ErrCredentialsNeeded = errors.New("a token provider or basic-auth fallback is required")
	ErrUnknownModule     = errors.New("unknown module")
	ErrUnknownKind       = errors.New("unknown read kind for module")
	ErrUnknownAction     = errors.New("unknown action for module")
	ErrActionInFlight    = errors.New("an identical action is already in flight for this resource")
	ErrMalformedResponse = errors.New("malformed backend response")
	ErrSyncNotConfigured = errors.New("realtime sync is not configured")
)

// IsValidation checks if the error is a validation failure.
func IsValidation(err error) bool {
	return hasKind(err, ErrKindValidation)
}

// IsNotFound checks if the error is a not-found failure.
func IsNotFound(err error) bool {
	return hasKind(err, ErrKindNotFound)
}

// IsAuth checks if the error is an authentication failure.
func IsAuth(err error) bool {
	return hasKind(err, ErrKindAuth)
}

// IsRateLimited checks if the error is a rate-limit rejection.
func IsRateLimited(err error) bool {
	return hasKind(err, ErrKindRateLimited)
}

// IsRetryable reports whether the caller should be offered a retry action.
func IsRetryable(err error) bool {
	apiErr := &APIError{}
	if errors.As(err, &apiErr) {
		return apiErr.Retryable()
	}

	return false
}

func hasKind(err error, kind ErrorKind) bool {
	apiErr := &APIError{}
	if errors.As(err, &apiErr) {
		return apiErr.Kind == kind
	}

	return false
}
