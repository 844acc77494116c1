package network

import (
	"errors"
	"fmt"
)

var (
	// ErrEmbeddingFetchFailed is fatal for one refresh. Previously accepted
	// nodes are left in place.
	ErrEmbeddingFetchFailed = errors.New("embedding fetch failed")

	// ErrStaleRefresh is returned by a refresh that was superseded before it
	// resolved. Its result was discarded; callers should ignore it.
	ErrStaleRefresh = errors.New("refresh superseded by a newer one")
)

// ProfileLookupError records a lookup failure that degraded one node.
type ProfileLookupError struct {
	Index int
	ID    string
	Err   error
}

func (e *ProfileLookupError) Error() string {
	return fmt.Sprintf("profile lookup for node %d (%s): %v", e.Index, e.ID, e.Err)
}

func (e *ProfileLookupError) Unwrap() error {
	return e.Err
}

// IsStale returns true if the error is a discarded superseded refresh.
func IsStale(err error) bool {
	return errors.Is(err, ErrStaleRefresh)
}
