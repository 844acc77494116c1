// Package network joins embedding coordinates with member profiles into the
// ordered node list that the viewer renders.
package network

import (
	"github.com/perspectr/perspectr/internal/embedding"
	"github.com/perspectr/perspectr/internal/profile"
)

// Placeholder names for nodes whose profile could not be used.
const (
	NameNotFound     = "Unknown User"       // lookup succeeded, no document
	NameUnnamed      = "Unknown"            // document has no name
	NameLookupFailed = "Error Loading User" // transport or parse failure
)

// Node is one member of the network: a coordinate plus profile fields.
type Node struct {
	ID        string  `json:"id"`
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
	Name      string  `json:"name"`
	Email     string  `json:"email"`
	Instagram string  `json:"instagram"`
	Discord   string  `json:"discord"`

	// Degraded is set when the profile fields are placeholders.
	Degraded bool `json:"degraded,omitempty"`
}

// Point returns the node's coordinate.
func (n Node) Point() embedding.Point {
	return embedding.Point{X: n.X, Y: n.Y}
}

// newNode merges a coordinate with a found profile record.
func newNode(id string, p embedding.Point, rec *profile.Record) Node {
	name := rec.Name
	if name == "" {
		name = NameUnnamed
	}
	return Node{
		ID:        id,
		X:         p.X,
		Y:         p.Y,
		Name:      name,
		Email:     rec.Email,
		Instagram: rec.Instagram(),
		Discord:   rec.Discord(),
	}
}

// placeholderNode keeps the coordinate but carries no contact fields.
func placeholderNode(id string, p embedding.Point, name string) Node {
	return Node{
		ID:       id,
		X:        p.X,
		Y:        p.Y,
		Name:     name,
		Degraded: true,
	}
}

// cloneNodes returns a copy that callers may keep without aliasing state.
func cloneNodes(nodes []Node) []Node {
	if nodes == nil {
		return nil
	}
	out := make([]Node, len(nodes))
	copy(out, nodes)
	return out
}
