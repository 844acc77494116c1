// Package view wires the aggregator, viewport and selection into one
// interactive session for a viewer.
package view

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"

	"github.com/perspectr/perspectr/internal/network"
	"github.com/perspectr/perspectr/internal/selection"
	"github.com/perspectr/perspectr/internal/viewport"
)

// Viewer identifies who is looking at the network.
type Viewer struct {
	ID    string
	Email string
	Name  string
}

// SnapshotStore persists accepted node lists.
type SnapshotStore interface {
	SaveSnapshot(viewerID string, epoch int, nodes []network.Node) (int64, error)
}

// State is a point-in-time copy of everything a renderer needs.
type State struct {
	Viewer   Viewer
	Nodes    []network.Node
	Rect     viewport.Rect
	Selected *network.Node
	Markers  []selection.Marker
	Epoch    int
	Loading  bool
	Loaded   bool
	Err      error
	Failures int
}

// Session is safe for concurrent use; renderers call State from the UI
// loop while refreshes run in the background.
type Session struct {
	agg      *network.Aggregator
	viewer   Viewer
	viewport *viewport.Controller
	selector selection.Selector
	store    SnapshotStore
	logger   *zap.Logger
	span     float64

	mu      sync.Mutex
	epoch   int
	loaded  bool
	framed  bool   // viewport centered on real data
	applied uint64 // newest aggregator generation reflected in err
	err     error
}

// SessionOption configures a Session.
type SessionOption func(*Session)

// WithDefaultSpan sets the half extent used when centering on the first node.
func WithDefaultSpan(span float64) SessionOption {
	return func(s *Session) {
		s.span = span
	}
}

// WithSnapshotStore saves every accepted node list to store.
func WithSnapshotStore(store SnapshotStore) SessionOption {
	return func(s *Session) {
		s.store = store
	}
}

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) SessionOption {
	return func(s *Session) {
		s.logger = logger
	}
}

// NewSession creates a session that has not loaded yet.
func NewSession(agg *network.Aggregator, viewer Viewer, opts ...SessionOption) *Session {
	s := &Session{
		agg:    agg,
		viewer: viewer,
		logger: zap.NewNop(),
		span:   viewport.DefaultSpan,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.viewport = viewport.NewController(s.span)
	return s
}

// Load performs the first load. It is the same as Refresh; the viewport is
// centered on the first node only the first time data arrives.
func (s *Session) Load(ctx context.Context) error {
	return s.Refresh(ctx)
}

// Refresh starts a new render epoch and reloads the network. A refresh that
// was superseded by a newer one returns nil. An embedding failure leaves
// the previous nodes in place and is reported by State().Err.
func (s *Session) Refresh(ctx context.Context) error {
	s.mu.Lock()
	s.epoch++
	epoch := s.epoch
	s.mu.Unlock()

	nodes, gen, err := s.agg.RefreshGeneration(ctx, s.viewer.ID)
	if network.IsStale(err) {
		return nil
	}
	s.apply(gen, err)
	if err != nil {
		return err
	}

	if s.store != nil {
		if _, err := s.store.SaveSnapshot(s.viewer.ID, epoch, nodes); err != nil {
			s.logger.Warn("saving snapshot failed", zap.Int("epoch", epoch), zap.Error(err))
		}
	}
	return nil
}

// apply records the outcome of a settled refresh of generation gen. A result
// older than one already applied never replaces the newer error. The viewport
// is centered once, on the first published data that has nodes.
func (s *Session) apply(gen uint64, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if gen >= s.applied {
		s.applied = gen
		s.err = err
	}
	if err != nil {
		return
	}
	s.loaded = true
	if !s.framed {
		if nodes := s.agg.Nodes(); len(nodes) > 0 {
			s.viewport.InitFromNodes(nodes)
			s.framed = true
		}
	}
}

// Click selects the node at pointIndex and centers the view on it, keeping
// the current span. It returns false for an index outside the current data.
func (s *Session) Click(pointIndex int) bool {
	return s.ClickIn(s.agg.Nodes(), pointIndex)
}

// ClickIn is Click against the node list the surface actually drew, which
// may be older than the session's newest data.
func (s *Session) ClickIn(rendered []network.Node, pointIndex int) bool {
	n, ok := s.selector.ResolveClick(pointIndex, rendered)
	if !ok {
		return false
	}
	s.viewport.RecenterOn(n.X, n.Y)
	return true
}

// Relayout applies a range change reported by the rendering surface.
func (s *Session) Relayout(r viewport.Relayout) bool {
	return s.viewport.OnExternalRelayout(r)
}

// ClearSelection drops the selected node.
func (s *Session) ClearSelection() {
	s.selector.Clear()
}

// Viewer returns the session's viewer.
func (s *Session) Viewer() Viewer {
	return s.viewer
}

// State returns a snapshot of the session.
func (s *Session) State() State {
	nodes := s.agg.Nodes()
	st := State{
		Viewer:   s.viewer,
		Nodes:    nodes,
		Rect:     s.viewport.Rect(),
		Markers:  selection.Markers(nodes, s.viewer.Email),
		Loading:  s.agg.Loading(),
		Failures: len(s.agg.Failures()),
	}
	if n, ok := s.selector.Selected(); ok {
		st.Selected = &n
	}

	s.mu.Lock()
	st.Epoch = s.epoch
	st.Loaded = s.loaded
	st.Err = s.err
	s.mu.Unlock()

	return st
}

// IsEmbeddingError reports whether err came from the layout fetch.
func IsEmbeddingError(err error) bool {
	return errors.Is(err, network.ErrEmbeddingFetchFailed)
}
