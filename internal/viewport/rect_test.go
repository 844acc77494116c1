package viewport

import (
	"errors"
	"math"
	"testing"
)

func TestNewRect(t *testing.T) {
	tests := []struct {
		name                   string
		xmin, xmax, ymin, ymax float64
		wantErr                bool
	}{
		{"valid", -1, 1, -2, 2, false},
		{"degenerate x", 1, 1, 0, 1, true},
		{"inverted y", 0, 1, 2, 1, true},
		{"nan", math.NaN(), 1, 0, 1, true},
		{"inf", 0, math.Inf(1), 0, 1, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := NewRect(tt.xmin, tt.xmax, tt.ymin, tt.ymax)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidRect) {
					t.Fatalf("NewRect() error = %v, want ErrInvalidRect", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("NewRect() unexpected error: %v", err)
			}
			if r.XMin != tt.xmin || r.YMax != tt.ymax {
				t.Errorf("NewRect() = %v", r)
			}
		})
	}
}

func TestDefaultRect(t *testing.T) {
	r := DefaultRect()
	w, h := r.Span()
	if w != 20 || h != 20 {
		t.Errorf("DefaultRect span = %v x %v, want 20 x 20", w, h)
	}
	if cx, cy := r.Center(); cx != 0 || cy != 0 {
		t.Errorf("DefaultRect center = (%v, %v), want origin", cx, cy)
	}
}

func TestRect_Contains(t *testing.T) {
	r, _ := NewRect(0, 10, 0, 10)
	if !r.Contains(0, 10) {
		t.Error("bounds should be contained")
	}
	if r.Contains(-0.1, 5) {
		t.Error("point left of rect should not be contained")
	}
}

func TestRect_Pan(t *testing.T) {
	r, _ := NewRect(0, 10, 0, 20)
	got := r.Pan(0.1, -0.5)
	want := Rect{XMin: 1, XMax: 11, YMin: -10, YMax: 10}
	if got != want {
		t.Errorf("Pan() = %v, want %v", got, want)
	}
}

func TestRect_Zoom(t *testing.T) {
	r, _ := NewRect(-4, 4, -2, 2)

	in := r.Zoom(2)
	if w, h := in.Span(); w != 4 || h != 2 {
		t.Errorf("Zoom(2) span = %v x %v, want 4 x 2", w, h)
	}
	if cx, cy := in.Center(); cx != 0 || cy != 0 {
		t.Errorf("Zoom(2) moved center to (%v, %v)", cx, cy)
	}

	out := r.Zoom(0.5)
	if w, _ := out.Span(); w != 16 {
		t.Errorf("Zoom(0.5) width = %v, want 16", w)
	}

	if r.Zoom(0) != r || r.Zoom(-1) != r {
		t.Error("non-positive zoom should leave rect unchanged")
	}
}
