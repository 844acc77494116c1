// Package networktest provides in-memory fetchers and lookups for tests.
package networktest

import (
	"context"
	"errors"
	"sync"

	"github.com/perspectr/perspectr/internal/embedding"
	"github.com/perspectr/perspectr/internal/profile"
)

// ErrTransport simulates a network failure.
var ErrTransport = errors.New("simulated transport failure")

// FetchFunc adapts a function to embedding.Fetcher.
type FetchFunc func(ctx context.Context, viewerID string) (*embedding.Result, error)

// Fetch calls f.
func (f FetchFunc) Fetch(ctx context.Context, viewerID string) (*embedding.Result, error) {
	return f(ctx, viewerID)
}

// Static returns a fetcher that always answers with the given layout.
func Static(labels []string, coords ...embedding.Point) FetchFunc {
	return func(ctx context.Context, viewerID string) (*embedding.Result, error) {
		return &embedding.Result{Labels: labels, Coords: coords}, nil
	}
}

// Failing returns a fetcher that always fails with err.
func Failing(err error) FetchFunc {
	return func(ctx context.Context, viewerID string) (*embedding.Result, error) {
		return nil, &embedding.FetchError{ViewerID: viewerID, Err: err}
	}
}

// Lookup is a map-backed profile lookup. IDs listed in Fail return
// ErrTransport; IDs absent from Records are not found.
type Lookup struct {
	mu      sync.Mutex
	Records map[string]*profile.Record
	Fail    map[string]bool
	calls   map[string]int
}

// NewLookup creates a lookup over the given records.
func NewLookup(records map[string]*profile.Record) *Lookup {
	return &Lookup{Records: records, Fail: map[string]bool{}}
}

// Find implements profile.Lookup.
func (l *Lookup) Find(ctx context.Context, id string) (*profile.Record, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.calls == nil {
		l.calls = make(map[string]int)
	}
	l.calls[id]++
	if l.Fail[id] {
		return nil, ErrTransport
	}
	rec, ok := l.Records[id]
	if !ok {
		return nil, nil
	}
	cp := *rec
	return &cp, nil
}

// Calls returns how many times id was looked up.
func (l *Lookup) Calls(id string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.calls[id]
}
