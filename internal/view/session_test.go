package view

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/perspectr/perspectr/internal/embedding"
	"github.com/perspectr/perspectr/internal/network"
	"github.com/perspectr/perspectr/internal/network/networktest"
	"github.com/perspectr/perspectr/internal/profile"
	"github.com/perspectr/perspectr/internal/viewport"
)

func f(v float64) *float64 { return &v }

// twoUsers is the u1/u2 network where u2's profile lookup fails.
func twoUsers() (networktest.FetchFunc, *networktest.Lookup) {
	fetcher := networktest.Static([]string{"u1", "u2"},
		embedding.Point{X: 0, Y: 0}, embedding.Point{X: 3, Y: 4})
	lookup := networktest.NewLookup(map[string]*profile.Record{
		"u1": {Name: "Me", Email: "me@x.com"},
	})
	lookup.Fail["u2"] = true
	return fetcher, lookup
}

func newTestSession(t *testing.T, f embedding.Fetcher, l profile.Lookup, opts ...SessionOption) *Session {
	t.Helper()
	agg := network.NewAggregator(f, l)
	return NewSession(agg, Viewer{ID: "u1", Email: "me@x.com"}, opts...)
}

func TestLoad_InitializesViewportFromFirstNode(t *testing.T) {
	fetcher, lookup := twoUsers()
	s := newTestSession(t, fetcher, lookup)

	before := s.State()
	assert.Equal(t, viewport.DefaultRect(), before.Rect)
	assert.False(t, before.Loaded)

	require.NoError(t, s.Load(context.Background()))

	st := s.State()
	assert.Equal(t, viewport.Rect{XMin: -5, XMax: 5, YMin: -5, YMax: 5}, st.Rect)
	require.Len(t, st.Nodes, 2)
	assert.Equal(t, network.Node{ID: "u2", X: 3, Y: 4, Name: network.NameLookupFailed, Degraded: true}, st.Nodes[1])
	assert.Equal(t, 1, st.Failures)
	assert.True(t, st.Loaded)
	assert.Equal(t, 1, st.Epoch)
	assert.NoError(t, st.Err)

	require.Len(t, st.Markers, 2)
	assert.True(t, st.Markers[0].Self)
	assert.False(t, st.Markers[1].Self)
}

func TestLoad_EmptyNetworkKeepsDefaultRect(t *testing.T) {
	s := newTestSession(t, networktest.Static([]string{}), networktest.NewLookup(nil))

	require.NoError(t, s.Load(context.Background()))
	assert.Equal(t, viewport.DefaultRect(), s.State().Rect)
	assert.Empty(t, s.State().Nodes)
}

func TestRefresh_KeepsViewport(t *testing.T) {
	fetcher, lookup := twoUsers()
	s := newTestSession(t, fetcher, lookup)
	require.NoError(t, s.Load(context.Background()))

	require.True(t, s.Relayout(viewport.Relayout{XMin: f(10), XMax: f(20), YMin: f(10), YMax: f(20)}))
	require.NoError(t, s.Refresh(context.Background()))

	st := s.State()
	assert.Equal(t, viewport.Rect{XMin: 10, XMax: 20, YMin: 10, YMax: 20}, st.Rect)
	assert.Equal(t, 2, st.Epoch)
}

func TestClick_SelectsAndRecenters(t *testing.T) {
	fetcher, lookup := twoUsers()
	s := newTestSession(t, fetcher, lookup)
	require.NoError(t, s.Load(context.Background()))

	require.True(t, s.Relayout(viewport.Relayout{XMin: f(-1), XMax: f(1), YMin: f(-2), YMax: f(2)}))
	assert.True(t, s.Click(1))

	st := s.State()
	require.NotNil(t, st.Selected)
	assert.Equal(t, "u2", st.Selected.ID)
	assert.Equal(t, viewport.Rect{XMin: 2, XMax: 4, YMin: 2, YMax: 6}, st.Rect)

	assert.False(t, s.Click(99))
	assert.Equal(t, "u2", s.State().Selected.ID)
	assert.Equal(t, st.Rect, s.State().Rect, "missed click must not move the view")
}

func TestSelection_SurvivesRefreshUntilCleared(t *testing.T) {
	fetcher, lookup := twoUsers()
	s := newTestSession(t, fetcher, lookup)
	require.NoError(t, s.Load(context.Background()))
	require.True(t, s.Click(0))

	require.NoError(t, s.Refresh(context.Background()))
	require.NotNil(t, s.State().Selected)
	assert.Equal(t, "u1", s.State().Selected.ID)

	s.ClearSelection()
	s.ClearSelection()
	assert.Nil(t, s.State().Selected)
}

func TestRefresh_EmbeddingFailureKeepsNodes(t *testing.T) {
	var fail atomic.Bool
	good, lookup := twoUsers()
	fetcher := networktest.FetchFunc(func(ctx context.Context, id string) (*embedding.Result, error) {
		if fail.Load() {
			return networktest.Failing(networktest.ErrTransport)(ctx, id)
		}
		return good(ctx, id)
	})
	s := newTestSession(t, fetcher, lookup)
	require.NoError(t, s.Load(context.Background()))

	fail.Store(true)
	err := s.Refresh(context.Background())
	require.Error(t, err)
	assert.True(t, IsEmbeddingError(err))

	st := s.State()
	assert.Len(t, st.Nodes, 2, "prior nodes stay visible")
	assert.True(t, IsEmbeddingError(st.Err))
	assert.False(t, st.Loading)

	fail.Store(false)
	require.NoError(t, s.Refresh(context.Background()))
	assert.NoError(t, s.State().Err)
}

func TestRefresh_FirstLoadFailureThenSuccessInitializes(t *testing.T) {
	var fail atomic.Bool
	fail.Store(true)
	good, lookup := twoUsers()
	fetcher := networktest.FetchFunc(func(ctx context.Context, id string) (*embedding.Result, error) {
		if fail.Load() {
			return nil, networktest.ErrTransport
		}
		return good(ctx, id)
	})
	s := newTestSession(t, fetcher, lookup, WithDefaultSpan(2))

	require.Error(t, s.Load(context.Background()))
	assert.Equal(t, viewport.DefaultRect(), s.State().Rect)

	fail.Store(false)
	require.NoError(t, s.Refresh(context.Background()))
	assert.Equal(t, viewport.Rect{XMin: -2, XMax: 2, YMin: -2, YMax: 2}, s.State().Rect)
}

func TestRefresh_StaleResultIsSwallowed(t *testing.T) {
	var calls atomic.Int32
	started := make(chan struct{})
	fetcher := networktest.FetchFunc(func(ctx context.Context, id string) (*embedding.Result, error) {
		if calls.Add(1) == 1 {
			close(started)
			<-ctx.Done()
			return nil, ctx.Err()
		}
		return &embedding.Result{Labels: []string{"new"}, Coords: []embedding.Point{{X: 7, Y: 7}}}, nil
	})
	s := newTestSession(t, fetcher, networktest.NewLookup(nil))

	first := make(chan error, 1)
	go func() { first <- s.Refresh(context.Background()) }()
	<-started

	require.NoError(t, s.Refresh(context.Background()))

	select {
	case err := <-first:
		assert.NoError(t, err, "superseded refresh must be a silent no-op")
	case <-time.After(5 * time.Second):
		t.Fatal("superseded refresh never returned")
	}

	st := s.State()
	require.Len(t, st.Nodes, 1)
	assert.Equal(t, "new", st.Nodes[0].ID)
	assert.NoError(t, st.Err)
	assert.Equal(t, 2, st.Epoch)
	assert.Equal(t, viewport.Rect{XMin: 2, XMax: 12, YMin: 2, YMax: 12}, st.Rect)
}

type fakeStore struct {
	mu     sync.Mutex
	epochs []int
	counts []int
	err    error
}

func (f *fakeStore) SaveSnapshot(viewerID string, epoch int, nodes []network.Node) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.epochs = append(f.epochs, epoch)
	f.counts = append(f.counts, len(nodes))
	return int64(len(f.epochs)), f.err
}

func TestWithSnapshotStore(t *testing.T) {
	fetcher, lookup := twoUsers()
	store := &fakeStore{}
	s := newTestSession(t, fetcher, lookup, WithSnapshotStore(store))

	require.NoError(t, s.Load(context.Background()))
	require.NoError(t, s.Refresh(context.Background()))

	assert.Equal(t, []int{1, 2}, store.epochs)
	assert.Equal(t, []int{2, 2}, store.counts)
}

func TestWithSnapshotStore_SaveErrorDoesNotFailRefresh(t *testing.T) {
	fetcher, lookup := twoUsers()
	store := &fakeStore{err: errors.New("disk full")}
	s := newTestSession(t, fetcher, lookup, WithSnapshotStore(store))

	assert.NoError(t, s.Load(context.Background()))
	assert.Len(t, s.State().Nodes, 2)
}

func TestClickIn_UsesRenderedNodes(t *testing.T) {
	fetcher, lookup := twoUsers()
	s := newTestSession(t, fetcher, lookup)
	require.NoError(t, s.Load(context.Background()))

	// An older frame the session's newest data no longer matches.
	drawn := []network.Node{
		{ID: "u1", X: 0, Y: 0},
		{ID: "u7", X: -1, Y: 1},
	}

	require.True(t, s.ClickIn(drawn, 1))
	st := s.State()
	require.NotNil(t, st.Selected)
	assert.Equal(t, "u7", st.Selected.ID)
	assert.Equal(t, viewport.Rect{XMin: -6, XMax: 4, YMin: -4, YMax: 6}, st.Rect)

	assert.False(t, s.ClickIn(drawn, 2))
	assert.Equal(t, "u7", s.State().Selected.ID)
}

func TestApply_OlderSuccessKeepsNewerError(t *testing.T) {
	fetcher, lookup := twoUsers()
	s := newTestSession(t, fetcher, lookup)
	_, err := s.agg.Refresh(context.Background(), "u1")
	require.NoError(t, err)

	errNewest := errors.New("generation 3 failed")
	s.apply(3, errNewest)
	s.apply(2, nil)

	st := s.State()
	assert.ErrorIs(t, st.Err, errNewest)
	assert.True(t, st.Loaded)
	assert.Equal(t, viewport.Rect{XMin: -5, XMax: 5, YMin: -5, YMax: 5}, st.Rect)
}

func TestApply_OlderErrorKeepsNewerSuccess(t *testing.T) {
	fetcher, lookup := twoUsers()
	s := newTestSession(t, fetcher, lookup)

	s.apply(3, nil)
	s.apply(2, errors.New("old failure"))

	assert.NoError(t, s.State().Err)
}

func TestRefresh_EmptyFirstLoadThenNodesCenters(t *testing.T) {
	var empty atomic.Bool
	empty.Store(true)
	fetcher := networktest.FetchFunc(func(ctx context.Context, id string) (*embedding.Result, error) {
		if empty.Load() {
			return &embedding.Result{Labels: []string{}, Coords: []embedding.Point{}}, nil
		}
		return &embedding.Result{Labels: []string{"u1"}, Coords: []embedding.Point{{X: 3, Y: 4}}}, nil
	})
	s := newTestSession(t, fetcher, networktest.NewLookup(nil))

	require.NoError(t, s.Load(context.Background()))
	assert.True(t, s.State().Loaded)
	assert.Equal(t, viewport.DefaultRect(), s.State().Rect)

	empty.Store(false)
	require.NoError(t, s.Refresh(context.Background()))
	assert.Equal(t, viewport.Rect{XMin: -2, XMax: 8, YMin: -1, YMax: 9}, s.State().Rect)

	// Later refreshes leave the viewport alone.
	require.True(t, s.Relayout(viewport.FullRelayout(viewport.Rect{XMin: 0, XMax: 1, YMin: 0, YMax: 1})))
	require.NoError(t, s.Refresh(context.Background()))
	assert.Equal(t, viewport.Rect{XMin: 0, XMax: 1, YMin: 0, YMax: 1}, s.State().Rect)
}
