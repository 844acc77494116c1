// Package viewport tracks the visible rectangle of the embedding plot.
package viewport

import (
	"errors"
	"fmt"
	"math"
)

// DefaultHalfExtent is the half width and height of DefaultRect.
const DefaultHalfExtent = 10.0

// ErrInvalidRect is returned for degenerate or non-finite bounds.
var ErrInvalidRect = errors.New("invalid viewport rectangle")

// Rect is an axis-aligned visible region. The zero value is not valid;
// build one with NewRect, CenteredRect or DefaultRect.
type Rect struct {
	XMin float64 `json:"xmin"`
	XMax float64 `json:"xmax"`
	YMin float64 `json:"ymin"`
	YMax float64 `json:"ymax"`
}

// NewRect returns a rectangle or ErrInvalidRect when max <= min on either
// axis or any bound is NaN or infinite.
func NewRect(xmin, xmax, ymin, ymax float64) (Rect, error) {
	if !validInterval(xmin, xmax) {
		return Rect{}, fmt.Errorf("%w: x range [%g, %g]", ErrInvalidRect, xmin, xmax)
	}
	if !validInterval(ymin, ymax) {
		return Rect{}, fmt.Errorf("%w: y range [%g, %g]", ErrInvalidRect, ymin, ymax)
	}
	return Rect{XMin: xmin, XMax: xmax, YMin: ymin, YMax: ymax}, nil
}

// CenteredRect returns the rectangle of the given half extents around (cx, cy).
func CenteredRect(cx, cy, halfW, halfH float64) (Rect, error) {
	return NewRect(cx-halfW, cx+halfW, cy-halfH, cy+halfH)
}

// DefaultRect is shown before any data has loaded.
func DefaultRect() Rect {
	return Rect{
		XMin: -DefaultHalfExtent,
		XMax: DefaultHalfExtent,
		YMin: -DefaultHalfExtent,
		YMax: DefaultHalfExtent,
	}
}

// Span returns the width and height.
func (r Rect) Span() (w, h float64) {
	return r.XMax - r.XMin, r.YMax - r.YMin
}

// Center returns the midpoint.
func (r Rect) Center() (x, y float64) {
	return (r.XMin + r.XMax) / 2, (r.YMin + r.YMax) / 2
}

// Contains reports whether (x, y) lies inside r, bounds included.
func (r Rect) Contains(x, y float64) bool {
	return x >= r.XMin && x <= r.XMax && y >= r.YMin && y <= r.YMax
}

// Pan shifts r by the given fractions of its span.
func (r Rect) Pan(fx, fy float64) Rect {
	w, h := r.Span()
	dx, dy := w*fx, h*fy
	return Rect{XMin: r.XMin + dx, XMax: r.XMax + dx, YMin: r.YMin + dy, YMax: r.YMax + dy}
}

// Zoom scales the span around the center. A factor above 1 zooms in.
// Non-positive or non-finite factors leave r unchanged.
func (r Rect) Zoom(factor float64) Rect {
	if factor <= 0 || math.IsInf(factor, 0) || math.IsNaN(factor) {
		return r
	}
	cx, cy := r.Center()
	w, h := r.Span()
	out, err := CenteredRect(cx, cy, w/2/factor, h/2/factor)
	if err != nil {
		return r
	}
	return out
}

// String formats r for logs and status lines.
func (r Rect) String() string {
	return fmt.Sprintf("x[%.2f, %.2f] y[%.2f, %.2f]", r.XMin, r.XMax, r.YMin, r.YMax)
}

func validInterval(lo, hi float64) bool {
	if math.IsNaN(lo) || math.IsNaN(hi) || math.IsInf(lo, 0) || math.IsInf(hi, 0) {
		return false
	}
	return hi > lo
}
