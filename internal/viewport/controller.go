package viewport

import (
	"sync"

	"github.com/perspectr/perspectr/internal/network"
)

// DefaultSpan is the half extent used when centering on the first node.
const DefaultSpan = 5.0

// Relayout is a range update reported by a rendering surface. Any field may
// be absent; an axis changes only when both of its bounds are present.
type Relayout struct {
	XMin *float64 `json:"xaxis.range[0],omitempty"`
	XMax *float64 `json:"xaxis.range[1],omitempty"`
	YMin *float64 `json:"yaxis.range[0],omitempty"`
	YMax *float64 `json:"yaxis.range[1],omitempty"`
}

// FullRelayout reports every bound of r.
func FullRelayout(r Rect) Relayout {
	return Relayout{XMin: &r.XMin, XMax: &r.XMax, YMin: &r.YMin, YMax: &r.YMax}
}

// Controller owns the current Rect. It is safe for concurrent use; the
// rectangle is always replaced as a whole value.
type Controller struct {
	mu   sync.Mutex
	rect Rect
	span float64
}

// NewController starts at DefaultRect. defaultSpan is the half extent used
// by InitFromNodes; non-positive values fall back to DefaultSpan.
func NewController(defaultSpan float64) *Controller {
	if defaultSpan <= 0 {
		defaultSpan = DefaultSpan
	}
	return &Controller{rect: DefaultRect(), span: defaultSpan}
}

// Rect returns the current rectangle.
func (c *Controller) Rect() Rect {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.rect
}

// InitFromNodes centers the view on the first node with the default span,
// or resets to DefaultRect when there are no nodes.
func (c *Controller) InitFromNodes(nodes []network.Node) {
	next := DefaultRect()
	if len(nodes) > 0 {
		if r, err := CenteredRect(nodes[0].X, nodes[0].Y, c.span, c.span); err == nil {
			next = r
		}
	}
	c.set(next)
}

// OnExternalRelayout applies the axis pairs of r that are complete and
// non-degenerate. It returns false, leaving the view untouched, when no
// pair applies.
func (c *Controller) OnExternalRelayout(r Relayout) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	next := c.rect
	applied := false
	if r.XMin != nil && r.XMax != nil && validInterval(*r.XMin, *r.XMax) {
		next.XMin, next.XMax = *r.XMin, *r.XMax
		applied = true
	}
	if r.YMin != nil && r.YMax != nil && validInterval(*r.YMin, *r.YMax) {
		next.YMin, next.YMax = *r.YMin, *r.YMax
		applied = true
	}
	if applied {
		c.rect = next
	}
	return applied
}

// RecenterOn moves the center to (x, y) keeping the current span.
func (c *Controller) RecenterOn(x, y float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	w, h := c.rect.Span()
	if r, err := CenteredRect(x, y, w/2, h/2); err == nil {
		c.rect = r
	}
}

func (c *Controller) set(r Rect) {
	c.mu.Lock()
	c.rect = r
	c.mu.Unlock()
}
