package network

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/perspectr/perspectr/internal/embedding"
	"github.com/perspectr/perspectr/internal/metrics"
	"github.com/perspectr/perspectr/internal/profile"
)

// DefaultConcurrency bounds simultaneous profile lookups per refresh.
const DefaultConcurrency = 16

// Aggregator fetches the layout once per refresh, fans out one profile
// lookup per node and keeps the most recent accepted node list.
//
// Only the newest refresh may publish. Starting a refresh cancels the one in
// flight, and a superseded refresh that still resolves returns
// ErrStaleRefresh without touching stored state.
type Aggregator struct {
	fetcher     embedding.Fetcher
	lookup      profile.Lookup
	concurrency int
	logger      *zap.Logger
	metrics     *metrics.Collector

	mu         sync.Mutex
	generation uint64 // newest refresh started
	settled    uint64 // newest refresh resolved
	cancel     context.CancelFunc
	nodes      []Node
	failures   []ProfileLookupError
}

// Option configures an Aggregator.
type Option func(*Aggregator)

// WithConcurrency sets the maximum number of lookups in flight.
func WithConcurrency(n int) Option {
	return func(a *Aggregator) {
		if n > 0 {
			a.concurrency = n
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(a *Aggregator) {
		a.logger = logger
	}
}

// WithMetrics sets the metrics collector.
func WithMetrics(c *metrics.Collector) Option {
	return func(a *Aggregator) {
		a.metrics = c
	}
}

// NewAggregator creates an aggregator over the given fetcher and lookup.
func NewAggregator(f embedding.Fetcher, l profile.Lookup, opts ...Option) *Aggregator {
	a := &Aggregator{
		fetcher:     f,
		lookup:      l,
		concurrency: DefaultConcurrency,
		logger:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.metrics == nil {
		a.metrics = metrics.NewCollector()
	}
	return a
}

// Refresh loads the network for viewerID. On success the returned nodes are
// in coordinate order, one per coordinate. An embedding failure returns an
// error wrapping ErrEmbeddingFetchFailed and keeps the previous nodes.
func (a *Aggregator) Refresh(ctx context.Context, viewerID string) ([]Node, error) {
	nodes, _, err := a.RefreshGeneration(ctx, viewerID)
	return nodes, err
}

// RefreshGeneration is Refresh that also returns the generation the result
// belongs to. A larger generation is always the newer refresh.
func (a *Aggregator) RefreshGeneration(ctx context.Context, viewerID string) ([]Node, uint64, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	a.mu.Lock()
	if a.cancel != nil {
		a.cancel()
	}
	a.generation++
	gen := a.generation
	a.cancel = cancel
	a.mu.Unlock()

	start := time.Now()
	nodes, failures, err := a.build(ctx, viewerID)
	elapsed := time.Since(start)

	a.mu.Lock()
	defer a.mu.Unlock()

	if gen != a.generation {
		a.metrics.ObserveRefresh(metrics.OutcomeStale, elapsed)
		a.logger.Debug("discarding superseded refresh",
			zap.String("viewer", viewerID),
			zap.Uint64("generation", gen),
			zap.Uint64("latest", a.generation))
		return nil, gen, ErrStaleRefresh
	}

	a.settled = gen
	a.cancel = nil

	if err != nil {
		a.metrics.ObserveRefresh(metrics.OutcomeFailed, elapsed)
		a.logger.Error("refresh failed", zap.String("viewer", viewerID), zap.Error(err))
		return nil, gen, err
	}

	a.nodes = nodes
	a.failures = failures
	a.metrics.ObserveRefresh(metrics.OutcomeSuccess, elapsed)
	a.metrics.AddLookupFailures(len(failures))
	a.metrics.SetNodesLoaded(len(nodes))
	a.logger.Info("refresh complete",
		zap.String("viewer", viewerID),
		zap.Int("nodes", len(nodes)),
		zap.Int("degraded", len(failures)),
		zap.Duration("elapsed", elapsed))

	return cloneNodes(nodes), gen, nil
}

// build performs one fetch and the per-node fan-out.
func (a *Aggregator) build(ctx context.Context, viewerID string) ([]Node, []ProfileLookupError, error) {
	layout, err := a.fetcher.Fetch(ctx, viewerID)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %w", ErrEmbeddingFetchFailed, err)
	}

	nodes := make([]Node, layout.Len())
	lookupErrs := make([]error, layout.Len())

	var g errgroup.Group
	g.SetLimit(a.concurrency)
	for i, id := range layout.Labels {
		g.Go(func() error {
			nodes[i], lookupErrs[i] = a.resolve(ctx, id, layout.Coords[i])
			return nil
		})
	}
	_ = g.Wait() // branches never return errors

	var failures []ProfileLookupError
	for i, err := range lookupErrs {
		if err == nil {
			continue
		}
		failures = append(failures, ProfileLookupError{Index: i, ID: layout.Labels[i], Err: err})
		a.logger.Warn("profile lookup failed",
			zap.Int("index", i),
			zap.String("id", layout.Labels[i]),
			zap.Error(err))
	}

	return nodes, failures, nil
}

// resolve turns one lookup into a node. A lookup error still yields a
// placeholder node; the error is returned only for reporting.
func (a *Aggregator) resolve(ctx context.Context, id string, p embedding.Point) (Node, error) {
	rec, err := a.lookup.Find(ctx, id)
	if err != nil {
		return placeholderNode(id, p, NameLookupFailed), err
	}
	if rec == nil {
		return placeholderNode(id, p, NameNotFound), nil
	}
	return newNode(id, p, rec), nil
}

// Loading reports whether the newest refresh is still in flight.
func (a *Aggregator) Loading() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.settled != a.generation
}

// Nodes returns the most recently accepted node list.
func (a *Aggregator) Nodes() []Node {
	a.mu.Lock()
	defer a.mu.Unlock()
	return cloneNodes(a.nodes)
}

// Failures returns the lookup failures of the most recently accepted refresh.
func (a *Aggregator) Failures() []ProfileLookupError {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.failures == nil {
		return nil
	}
	out := make([]ProfileLookupError, len(a.failures))
	copy(out, a.failures)
	return out
}

// Generation returns the number of refreshes started so far.
func (a *Aggregator) Generation() uint64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.generation
}
