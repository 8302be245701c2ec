package errors

import (
	"fmt"
	"net/http"
	"time"
)

// AppError is the application error type carried up to the HTTP layer.
// Raw is for logs only and is never written to a response body.
type AppError struct {
	Raw       error
	HTTPCode  int
	Code      ErrorCode
	Message   string
	Details   map[string]string
	Timestamp time.Time
}

// Error implements error interface
func (e AppError) Error() string {
	if e.Raw != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code.String(), e.Message, e.Raw)
	}
	return fmt.Sprintf("[%s] %s", e.Code.String(), e.Message)
}

// Unwrap exposes the raw cause to errors.Is / errors.As.
func (e AppError) Unwrap() error {
	return e.Raw
}

// WithDetail adds a detail to the error
func (e AppError) WithDetail(key, value string) AppError {
	details := make(map[string]string, len(e.Details)+1)
	for k, v := range e.Details {
		details[k] = v
	}
	details[key] = value
	e.Details = details
	return e
}

// Is matches two AppErrors by code so callers can compare against constructor results.
func (e AppError) Is(target error) bool {
	t, ok := target.(AppError)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// General Errors
func ErrInternal(err error) AppError {
	return AppError{
		Raw:       err,
		HTTPCode:  http.StatusInternalServerError,
		Code:      ErrorCode_INTERNAL,
		Message:   "Internal server error",
		Timestamp: time.Now().UTC(),
	}
}

func ErrInvalidArgument(message string) AppError {
	return AppError{
		HTTPCode:  http.StatusBadRequest,
		Code:      ErrorCode_INVALID_ARGUMENT,
		Message:   message,
		Timestamp: time.Now().UTC(),
	}
}

func ErrNotFound(resource string) AppError {
	return AppError{
		HTTPCode:  http.StatusNotFound,
		Code:      ErrorCode_NOT_FOUND,
		Message:   fmt.Sprintf("%s not found", resource),
		Timestamp: time.Now().UTC(),
	}
}

func ErrPermissionDenied(action string) AppError {
	return AppError{
		HTTPCode:  http.StatusForbidden,
		Code:      ErrorCode_PERMISSION_DENIED,
		Message:   fmt.Sprintf("Permission denied: %s", action),
		Timestamp: time.Now().UTC(),
	}
}

func ErrUnauthenticated() AppError {
	return AppError{
		HTTPCode:  http.StatusUnauthorized,
		Code:      ErrorCode_UNAUTHENTICATED,
		Message:   "User could not be identified",
		Timestamp: time.Now().UTC(),
	}
}

func ErrInvalidPayload() AppError {
	return AppError{
		HTTPCode:  http.StatusBadRequest,
		Code:      ErrorCode_INVALID_PAYLOAD,
		Message:   "Invalid payload",
		Timestamp: time.Now().UTC(),
	}
}

// Audio ingest errors
func ErrEmptyInput() AppError {
	return AppError{
		HTTPCode:  http.StatusBadRequest,
		Code:      ErrorCode_AUDIO_EMPTY_INPUT,
		Message:   "No audio file uploaded",
		Timestamp: time.Now().UTC(),
	}
}

func ErrTooLarge(limit int64) AppError {
	return AppError{
		HTTPCode:  http.StatusBadRequest,
		Code:      ErrorCode_AUDIO_TOO_LARGE,
		Message:   fmt.Sprintf("File is too large. Max %dMB allowed.", limit/(1024*1024)),
		Timestamp: time.Now().UTC(),
	}.WithDetail("max_bytes", fmt.Sprintf("%d", limit))
}

func ErrUnsupportedType(contentType string) AppError {
	return AppError{
		HTTPCode:  http.StatusBadRequest,
		Code:      ErrorCode_AUDIO_UNSUPPORTED_TYPE,
		Message:   "Only .webm, .wav and .mp3 audio files are allowed",
		Timestamp: time.Now().UTC(),
	}.WithDetail("content_type", contentType)
}

// Upstream errors
func ErrUpstreamRejected(service, errType, message string, err error) AppError {
	if errType == "" {
		errType = "unknown"
	}
	return AppError{
		Raw:       err,
		HTTPCode:  http.StatusBadGateway,
		Code:      ErrorCode_UPSTREAM_REJECTED,
		Message:   fmt.Sprintf("%s error (%s): %s", service, errType, message),
		Timestamp: time.Now().UTC(),
	}.WithDetail("service", service).
		WithDetail("type", errType)
}

func ErrUpstreamUnreachable(service string, err error) AppError {
	return AppError{
		Raw:       err,
		HTTPCode:  http.StatusServiceUnavailable,
		Code:      ErrorCode_UPSTREAM_UNREACHABLE,
		Message:   fmt.Sprintf("%s is temporarily unavailable, please try again later", service),
		Timestamp: time.Now().UTC(),
	}.WithDetail("service", service)
}

func ErrRequestCancelled(err error) AppError {
	return AppError{
		Raw:       err,
		HTTPCode:  http.StatusGatewayTimeout,
		Code:      ErrorCode_REQUEST_CANCELLED,
		Message:   "Transcription was cancelled or timed out",
		Timestamp: time.Now().UTC(),
	}
}

func ErrUpstreamNotConfigured(service string) AppError {
	return AppError{
		HTTPCode:  http.StatusBadRequest,
		Code:      ErrorCode_UPSTREAM_NOT_CONFIGURED,
		Message:   fmt.Sprintf("%s API key is not configured", service),
		Timestamp: time.Now().UTC(),
	}
}

// Database Errors
func ErrDBQueryFailed(query string, err error) AppError {
	return AppError{
		Raw:       err,
		HTTPCode:  http.StatusInternalServerError,
		Code:      ErrorCode_DB_QUERY_FAILED,
		Message:   "Database query failed",
		Timestamp: time.Now().UTC(),
	}.WithDetail("query", query)
}

func ErrPersistenceFailed(err error) AppError {
	return AppError{
		Raw:       err,
		HTTPCode:  http.StatusInternalServerError,
		Code:      ErrorCode_PERSISTENCE_FAILED,
		Message:   "Failed to save transcription",
		Timestamp: time.Now().UTC(),
	}
}
