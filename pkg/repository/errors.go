package repository

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
)

var (
	// ErrEmptyBaseURL is returned when connecting without an endpoint.
	ErrEmptyBaseURL = errors.New("repository base URL is required")
	// ErrNotConnected is returned when an operation runs before Connect.
	ErrNotConnected = errors.New("repository connection not established")
	// ErrEmptyCatalog is returned when the type catalog fetch yields no items.
	ErrEmptyCatalog = errors.New("repository returned an empty object-type catalog")
	// ErrContentType is returned when structured content arrives where text
	// was expected.
	ErrContentType = errors.New("unsupported file content type")
	// ErrEmptyResponse is returned when the server omits an expected body.
	ErrEmptyResponse = errors.New("repository returned an empty response")
)

// APIError carries the status and server-provided message of a failed call.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("repository API error (status %d): %s", e.Status, e.Message)
	}
	return fmt.Sprintf("repository API error (status %d)", e.Status)
}

// AsAPIError extracts an APIError if err carries one.
func AsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

// IsAccessDenied reports whether err is a 403 or 404 from the repository.
// These are recovered locally into a notification and an empty result.
func IsAccessDenied(err error) bool {
	if apiErr, ok := AsAPIError(err); ok {
		return apiErr.Status == http.StatusForbidden || apiErr.Status == http.StatusNotFound
	}
	return false
}

// ServerMessage returns the server-provided message for notification
// rendering, or the error text when none is available.
func ServerMessage(err error) string {
	if apiErr, ok := AsAPIError(err); ok && apiErr.Message != "" {
		return apiErr.Message
	}
	if err != nil {
		return err.Error()
	}
	return ""
}

func parseError(resp *http.Response) error {
	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return &APIError{Status: resp.StatusCode}
	}

	var payload struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err == nil && payload.Message != "" {
		return &APIError{Status: resp.StatusCode, Message: payload.Message}
	}
	return &APIError{Status: resp.StatusCode, Message: string(body)}
}
