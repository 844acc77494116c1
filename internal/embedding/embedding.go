// Package embedding fetches the precomputed 2D layout of a viewer's network.
package embedding

import (
	"fmt"
	"math"
)

// Point is a coordinate in the 2D embedding space.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Result holds the labels and coordinates returned by one fetch.
// Labels[i] is the node identifier placed at Coords[i].
type Result struct {
	Labels []string `json:"labels"`
	Coords []Point  `json:"coords"`
}

// Len returns the number of nodes in the result.
func (r *Result) Len() int {
	return len(r.Labels)
}

// validate checks that the parallel arrays line up and every point is usable.
func (r *Result) validate() error {
	if len(r.Labels) != len(r.Coords) {
		return fmt.Errorf("%w: %d labels but %d coordinates", ErrInvalidResponse, len(r.Labels), len(r.Coords))
	}
	for i, label := range r.Labels {
		if label == "" {
			return fmt.Errorf("%w: empty label at index %d", ErrInvalidResponse, i)
		}
	}
	for i, p := range r.Coords {
		if !finite(p.X) || !finite(p.Y) {
			return fmt.Errorf("%w: non-finite coordinate at index %d", ErrInvalidResponse, i)
		}
	}
	return nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
