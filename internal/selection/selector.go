// Package selection resolves clicks on the plot to nodes and derives the
// per-node marker styling.
package selection

import (
	"sync"

	"github.com/perspectr/perspectr/internal/network"
)

// Selector holds at most one selected node. It is cleared only by Clear;
// new data does not reset it.
type Selector struct {
	mu       sync.Mutex
	node     network.Node
	selected bool
}

// ResolveClick selects nodes[pointIndex]. An out-of-range index leaves the
// selection unchanged and returns false.
func (s *Selector) ResolveClick(pointIndex int, nodes []network.Node) (network.Node, bool) {
	if pointIndex < 0 || pointIndex >= len(nodes) {
		return network.Node{}, false
	}
	n := nodes[pointIndex]

	s.mu.Lock()
	s.node, s.selected = n, true
	s.mu.Unlock()

	return n, true
}

// Selected returns the current selection.
func (s *Selector) Selected() (network.Node, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.node, s.selected
}

// Clear drops the selection. Clearing an empty selection is a no-op.
func (s *Selector) Clear() {
	s.mu.Lock()
	s.node, s.selected = network.Node{}, false
	s.mu.Unlock()
}
