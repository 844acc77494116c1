package profile

import (
	"errors"
	"fmt"
)

// Common errors returned by the profile client.
var (
	// ErrNotFound indicates no document exists for the requested ID.
	// Find never returns it; Document does.
	ErrNotFound = errors.New("profile not found")

	// ErrRateLimited indicates the service answered 429.
	ErrRateLimited = errors.New("profile service rate limit exceeded")

	// ErrNetworkError indicates a network connectivity issue.
	ErrNetworkError = errors.New("network error communicating with profile service")

	// ErrInvalidResponse indicates an unexpected API response.
	ErrInvalidResponse = errors.New("invalid response from profile service")

	// ErrCircuitOpen indicates recent lookups failed often enough that
	// requests are being refused without touching the network.
	ErrCircuitOpen = errors.New("profile service circuit open")
)

// APIError represents a non-2xx response from the profile service.
type APIError struct {
	StatusCode int
	Message    string
	UserID     string // For context in lookup errors
}

func (e *APIError) Error() string {
	if e.UserID != "" {
		return fmt.Sprintf("profile service error (status %d): %s (user: %s)", e.StatusCode, e.Message, e.UserID)
	}
	return fmt.Sprintf("profile service error (status %d): %s", e.StatusCode, e.Message)
}

// IsNotFound returns true if the error indicates a missing profile.
func IsNotFound(err error) bool {
	if errors.Is(err, ErrNotFound) {
		return true
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == 404
	}
	return false
}

// IsRateLimited returns true if the error indicates rate limiting.
func IsRateLimited(err error) bool {
	if errors.Is(err, ErrRateLimited) {
		return true
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == 429
	}
	return false
}
