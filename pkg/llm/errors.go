package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/sashabaranov/go-openai"
)

// ErrorType classifies analyzer failures.
type ErrorType string

const (
	ErrorTypeAuth        ErrorType = "auth"
	ErrorTypeRateLimit   ErrorType = "rate_limit"
	ErrorTypeTimeout     ErrorType = "timeout"
	ErrorTypeServer      ErrorType = "server"
	ErrorTypeBadRequest  ErrorType = "bad_request"
	ErrorTypeEmpty       ErrorType = "empty_response"
	ErrorTypeUnavailable ErrorType = "unavailable"
	ErrorTypeUnknown     ErrorType = "unknown"
)

// Error is a classified failure talking to the language model endpoint.
type Error struct {
	Type       ErrorType
	Message    string
	StatusCode int
	Model      string
	Cause      error
}

// Error implements the error interface.
func (e *Error) Error() string {
	parts := []string{string(e.Type)}
	if e.StatusCode > 0 {
		parts = append(parts, fmt.Sprintf("HTTP %d", e.StatusCode))
	}
	if e.Model != "" {
		parts = append(parts, fmt.Sprintf("model=%s", e.Model))
	}
	parts = append(parts, e.Message)

	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", strings.Join(parts, " "), e.Cause)
	}
	return strings.Join(parts, " ")
}

// Unwrap returns the underlying cause for errors.Is/As.
func (e *Error) Unwrap() error {
	return e.Cause
}

// NewError creates a classified error.
func NewError(errType ErrorType, message string, cause error) *Error {
	return &Error{Type: errType, Message: message, Cause: cause}
}

// ClassifyError maps transport, API and context failures onto an *Error.
func ClassifyError(err error) *Error {
	if err == nil {
		return nil
	}

	var llmErr *Error
	if errors.As(err, &llmErr) {
		return llmErr
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return NewError(ErrorTypeTimeout, "request timed out or was cancelled", err)
	}

	status := 0
	var apiErr *openai.APIError
	var reqErr *openai.RequestError
	switch {
	case errors.As(err, &apiErr):
		status = apiErr.HTTPStatusCode
	case errors.As(err, &reqErr):
		status = reqErr.HTTPStatusCode
	}

	var classified *Error
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		classified = NewError(ErrorTypeAuth, "authentication failed", err)
	case status == http.StatusTooManyRequests:
		classified = NewError(ErrorTypeRateLimit, "rate limited", err)
	case status >= 500:
		classified = NewError(ErrorTypeServer, "server error", err)
	case status >= 400:
		classified = NewError(ErrorTypeBadRequest, "request rejected", err)
	case status == 0:
		classified = NewError(ErrorTypeUnavailable, "endpoint unreachable", err)
	default:
		classified = NewError(ErrorTypeUnknown, "llm error", err)
	}
	classified.StatusCode = status
	return classified
}

// GetErrorType extracts the ErrorType from an error.
func GetErrorType(err error) ErrorType {
	var llmErr *Error
	if errors.As(err, &llmErr) {
		return llmErr.Type
	}
	return ErrorTypeUnknown
}
