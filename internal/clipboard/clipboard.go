// Package clipboard copies member contact details to the system clipboard.
package clipboard

import (
	"errors"
	"fmt"

	"github.com/atotto/clipboard"

	"github.com/perspectr/perspectr/internal/network"
)

// ErrClipboardUnavailable is returned when clipboard access is not available.
var ErrClipboardUnavailable = errors.New("clipboard unavailable")

// ErrNothingToCopy is returned for nodes with no contact field.
var ErrNothingToCopy = errors.New("no contact details to copy")

// IsAvailable checks if clipboard functionality is available on this system.
func IsAvailable() bool {
	return !clipboard.Unsupported
}

// Copy copies the given text to the system clipboard.
// Returns ErrClipboardUnavailable if clipboard access is not available.
func Copy(text string) error {
	if !IsAvailable() {
		return ErrClipboardUnavailable
	}
	if err := clipboard.WriteAll(text); err != nil {
		return fmt.Errorf("%w: %v", ErrClipboardUnavailable, err)
	}
	return nil
}

// Contact picks the value to copy for a node: email, then Instagram URL,
// then Discord handle. Degraded nodes have nothing to copy.
func Contact(n network.Node) (string, error) {
	if n.Degraded {
		return "", ErrNothingToCopy
	}
	for _, v := range []string{n.Email, n.Instagram, n.Discord} {
		if v != "" {
			return v, nil
		}
	}
	return "", ErrNothingToCopy
}
