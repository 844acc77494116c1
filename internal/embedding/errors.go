package embedding

import (
	"errors"
	"fmt"
)

// Common errors returned by the embedding fetcher.
var (
	// ErrNetworkError indicates the embedding service could not be reached.
	ErrNetworkError = errors.New("network error communicating with embedding service")

	// ErrInvalidResponse indicates a malformed payload.
	ErrInvalidResponse = errors.New("invalid response from embedding service")

	// ErrMissingViewer indicates a fetch was attempted without a viewer ID.
	ErrMissingViewer = errors.New("viewer ID is required")
)

// APIError represents a non-2xx response from the embedding service.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("embedding service error (status %d): %s", e.StatusCode, e.Message)
}

// FetchError wraps any failure of a single fetch for a viewer.
type FetchError struct {
	ViewerID string
	Err      error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetching embeddings for %s: %v", e.ViewerID, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// IsInvalidResponse returns true if the error indicates a malformed payload.
func IsInvalidResponse(err error) bool {
	return errors.Is(err, ErrInvalidResponse)
}
