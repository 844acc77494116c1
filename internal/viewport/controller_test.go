package viewport

import (
	"sync"
	"testing"

	"github.com/perspectr/perspectr/internal/network"
)

func f(v float64) *float64 { return &v }

func TestNewController_StartsAtDefault(t *testing.T) {
	c := NewController(0)
	if c.Rect() != DefaultRect() {
		t.Errorf("Rect() = %v, want default", c.Rect())
	}
}

func TestInitFromNodes(t *testing.T) {
	c := NewController(DefaultSpan)

	c.InitFromNodes([]network.Node{{ID: "u1", X: 0, Y: 0}, {ID: "u2", X: 3, Y: 4}})
	want := Rect{XMin: -5, XMax: 5, YMin: -5, YMax: 5}
	if c.Rect() != want {
		t.Errorf("InitFromNodes() rect = %v, want %v", c.Rect(), want)
	}

	c.InitFromNodes([]network.Node{{X: 2, Y: -1}})
	want = Rect{XMin: -3, XMax: 7, YMin: -6, YMax: 4}
	if c.Rect() != want {
		t.Errorf("InitFromNodes() rect = %v, want %v", c.Rect(), want)
	}

	c.InitFromNodes(nil)
	if c.Rect() != DefaultRect() {
		t.Errorf("InitFromNodes(nil) rect = %v, want default", c.Rect())
	}
}

func TestRecenterOn_PreservesSpan(t *testing.T) {
	c := NewController(DefaultSpan)
	if !c.OnExternalRelayout(Relayout{XMin: f(0), XMax: f(4), YMin: f(10), YMax: f(16)}) {
		t.Fatal("relayout should apply")
	}

	c.RecenterOn(100, -50)

	r := c.Rect()
	if w, h := r.Span(); w != 4 || h != 6 {
		t.Errorf("span after recenter = %v x %v, want 4 x 6", w, h)
	}
	if cx, cy := r.Center(); cx != 100 || cy != -50 {
		t.Errorf("center after recenter = (%v, %v), want (100, -50)", cx, cy)
	}
}

func TestOnExternalRelayout(t *testing.T) {
	start := Rect{XMin: -5, XMax: 5, YMin: -5, YMax: 5}

	tests := []struct {
		name        string
		relayout    Relayout
		wantApplied bool
		want        Rect
	}{
		{
			name:        "both pairs",
			relayout:    Relayout{XMin: f(1), XMax: f(2), YMin: f(3), YMax: f(4)},
			wantApplied: true,
			want:        Rect{XMin: 1, XMax: 2, YMin: 3, YMax: 4},
		},
		{
			name:        "only xmin is ignored",
			relayout:    Relayout{XMin: f(1)},
			wantApplied: false,
			want:        start,
		},
		{
			name:        "x pair keeps y",
			relayout:    Relayout{XMin: f(-1), XMax: f(1)},
			wantApplied: true,
			want:        Rect{XMin: -1, XMax: 1, YMin: -5, YMax: 5},
		},
		{
			name:        "y pair with lone xmax",
			relayout:    Relayout{XMax: f(100), YMin: f(0), YMax: f(1)},
			wantApplied: true,
			want:        Rect{XMin: -5, XMax: 5, YMin: 0, YMax: 1},
		},
		{
			name:        "degenerate pair ignored",
			relayout:    Relayout{XMin: f(2), XMax: f(2)},
			wantApplied: false,
			want:        start,
		},
		{
			name:        "inverted pair ignored, valid pair applied",
			relayout:    Relayout{XMin: f(3), XMax: f(1), YMin: f(-1), YMax: f(1)},
			wantApplied: true,
			want:        Rect{XMin: -5, XMax: 5, YMin: -1, YMax: 1},
		},
		{
			name:        "empty",
			relayout:    Relayout{},
			wantApplied: false,
			want:        start,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewController(DefaultSpan)
			c.InitFromNodes([]network.Node{{X: 0, Y: 0}})

			if got := c.OnExternalRelayout(tt.relayout); got != tt.wantApplied {
				t.Errorf("OnExternalRelayout() = %v, want %v", got, tt.wantApplied)
			}
			if c.Rect() != tt.want {
				t.Errorf("Rect() = %v, want %v", c.Rect(), tt.want)
			}
		})
	}
}

func TestFullRelayout(t *testing.T) {
	r := Rect{XMin: 1, XMax: 2, YMin: 3, YMax: 4}
	c := NewController(DefaultSpan)
	if !c.OnExternalRelayout(FullRelayout(r)) {
		t.Fatal("full relayout should apply")
	}
	if c.Rect() != r {
		t.Errorf("Rect() = %v, want %v", c.Rect(), r)
	}
}

func TestController_ConcurrentUpdatesStayValid(t *testing.T) {
	c := NewController(DefaultSpan)
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			c.RecenterOn(float64(i), float64(-i))
		}(i)
		go func(i int) {
			defer wg.Done()
			lo := float64(i)
			c.OnExternalRelayout(Relayout{XMin: f(lo), XMax: f(lo + 3), YMin: f(lo), YMax: f(lo + 3)})
		}(i)
	}
	wg.Wait()

	r := c.Rect()
	if _, err := NewRect(r.XMin, r.XMax, r.YMin, r.YMax); err != nil {
		t.Errorf("rect became invalid: %v", err)
	}
}
