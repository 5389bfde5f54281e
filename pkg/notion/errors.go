package notion

import (
	"errors"
	"fmt"
)

// ErrAbsent reports that the remote answered without a payload.
var ErrAbsent = errors.New("no payload returned")

// RetrievalError is returned when an object could not be fetched or was absent.
type RetrievalError struct {
	Endpoint Endpoint
	ID       string
	Err      error
}

func (e *RetrievalError) Error() string {
	return fmt.Sprintf("retrieve %s %s: %v", e.Endpoint, e.ID, e.Err)
}

func (e *RetrievalError) Unwrap() error { return e.Err }

// ContentError is returned when listing an object's children failed.
type ContentError struct {
	Endpoint Endpoint
	ID       string
	Cursor   string
	Err      error
}

func (e *ContentError) Error() string {
	if e.Cursor != "" {
		return fmt.Sprintf("list children of %s %s at cursor %s: %v", e.Endpoint, e.ID, e.Cursor, e.Err)
	}
	return fmt.Sprintf("list children of %s %s: %v", e.Endpoint, e.ID, e.Err)
}

func (e *ContentError) Unwrap() error { return e.Err }

// UpdateError is returned when a write failed or was not confirmed.
type UpdateError struct {
	Endpoint Endpoint
	ID       string
	Err      error
}

func (e *UpdateError) Error() string {
	return fmt.Sprintf("update %s %s: %v", e.Endpoint, e.ID, e.Err)
}

func (e *UpdateError) Unwrap() error { return e.Err }

// APIError is the error body the remote returns with a non-2xx status.
type APIError struct {
	Status  int    `json:"status"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("notion api: %d %s: %s", e.Status, e.Code, e.Message)
}

// IsNotFound reports whether err carries a 404 from the remote.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == 404
}
