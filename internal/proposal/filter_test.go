package proposal

import (
	"testing"

	"github.com/ironsheep/rcnn-detect/internal/geometry"
)

func TestFilterParamsFor(t *testing.T) {
	p := FilterParamsFor(200, 0.04, 0.4, 4.0)

	if p.MinDim != 8 {
		t.Errorf("MinDim = %d, want 8", p.MinDim)
	}
	if p.MaxDim != 80 {
		t.Errorf("MaxDim = %d, want 80", p.MaxDim)
	}
	if p.MinArea != 128 {
		t.Errorf("MinArea = %d, want 128", p.MinArea)
	}
	if p.MaxArea != 2112 {
		t.Errorf("MaxArea = %d, want 2112", p.MaxArea)
	}
	if p.MaxAspectRatio != 4.0 {
		t.Errorf("MaxAspectRatio = %v, want 4.0", p.MaxAspectRatio)
	}
}

func TestFilter(t *testing.T) {
	params := FilterParams{
		MinDim:         8,
		MaxDim:         80,
		MinArea:        128,
		MaxArea:        2112,
		MaxAspectRatio: 4.0,
	}

	tests := []struct {
		name string
		rect geometry.Box
		keep bool
	}{
		{"valid square", geometry.Box{X1: 0, Y1: 0, X2: 20, Y2: 20}, true},
		{"width below minimum", geometry.Box{X1: 0, Y1: 0, X2: 5, Y2: 20}, false},
		{"height below minimum", geometry.Box{X1: 0, Y1: 0, X2: 20, Y2: 5}, false},
		{"width above maximum", geometry.Box{X1: 0, Y1: 0, X2: 100, Y2: 50}, false},
		{"area below minimum", geometry.Box{X1: 0, Y1: 0, X2: 8, Y2: 8}, false},
		{"area above maximum", geometry.Box{X1: 0, Y1: 0, X2: 60, Y2: 60}, false},
		{"aspect above maximum", geometry.Box{X1: 0, Y1: 0, X2: 80, Y2: 10}, false},
		{"aspect exactly at maximum", geometry.Box{X1: 0, Y1: 0, X2: 40, Y2: 10}, true},
		{"degenerate", geometry.Box{X1: 5, Y1: 5, X2: 5, Y2: 25}, false},
		{"inverted", geometry.Box{X1: 30, Y1: 30, X2: 10, Y2: 10}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Filter([]geometry.Box{tt.rect}, params)
			if tt.keep && len(got) != 1 {
				t.Errorf("Filter() dropped %+v, want kept", tt.rect)
			}
			if !tt.keep && len(got) != 0 {
				t.Errorf("Filter() kept %+v, want dropped", tt.rect)
			}
		})
	}
}

func TestFilter_DropsDuplicates(t *testing.T) {
	params := FilterParamsFor(200, 0.04, 0.4, 4.0)
	rects := []geometry.Box{
		{X1: 0, Y1: 0, X2: 20, Y2: 20},
		{X1: 30, Y1: 30, X2: 60, Y2: 60},
		{X1: 0, Y1: 0, X2: 20, Y2: 20}, // duplicate of the first
	}

	got := Filter(rects, params)
	if len(got) != 2 {
		t.Fatalf("Filter() kept %d rects, want 2", len(got))
	}
	if got[0] != rects[0] || got[1] != rects[1] {
		t.Errorf("Filter() = %+v, want first occurrences in order", got)
	}
}

func TestFilter_SurvivorsSatisfyAllConstraints(t *testing.T) {
	// A mixed bag spanning valid, borderline, and invalid rectangles.
	rects := []geometry.Box{
		{X1: 0, Y1: 0, X2: 20, Y2: 20}, {X1: 0, Y1: 0, X2: 7, Y2: 30}, {X1: 10, Y1: 10, X2: 90, Y2: 40}, {X1: 0, Y1: 0, X2: 80, Y2: 80},
		{X1: 5, Y1: 5, X2: 45, Y2: 15}, {X1: 0, Y1: 0, X2: 8, Y2: 16}, {X1: 12, Y1: 9, X2: 60, Y2: 21}, {X1: 3, Y1: 3, X2: 3, Y2: 3},
		{X1: 0, Y1: 0, X2: 50, Y2: 45}, {X1: 7, Y1: 7, X2: 15, Y2: 63}, {X1: 20, Y1: 20, X2: 28, Y2: 36},
	}

	configs := []FilterParams{
		FilterParamsFor(200, 0.04, 0.4, 4.0),
		FilterParamsFor(200, 0.1, 0.3, 2.0),
		{MinDim: 1, MaxDim: 1000, MinArea: 1, MaxArea: 1 << 20, MaxAspectRatio: 100},
	}

	for _, params := range configs {
		for _, r := range Filter(rects, params) {
			w, h := r.Width(), r.Height()
			if w < params.MinDim || h < params.MinDim {
				t.Errorf("params %+v kept %+v below MinDim", params, r)
			}
			if w > params.MaxDim || h > params.MaxDim {
				t.Errorf("params %+v kept %+v above MaxDim", params, r)
			}
			if a := w * h; a < params.MinArea || a > params.MaxArea {
				t.Errorf("params %+v kept %+v with area %d out of bounds", params, r, a)
			}
			if r.AspectRatio() > params.MaxAspectRatio {
				t.Errorf("params %+v kept %+v with aspect %v", params, r, r.AspectRatio())
			}
		}
	}
}

func TestFallbackBox(t *testing.T) {
	tests := []struct {
		name          string
		width, height int
		want          geometry.Box
	}{
		{"normal frame", 200, 100, geometry.Box{X1: 5, Y1: 5, X2: 195, Y2: 95}},
		{"square frame", 200, 200, geometry.Box{X1: 5, Y1: 5, X2: 195, Y2: 195}},
		{"tiny frame clamps margin", 8, 8, geometry.Box{X1: 2, Y1: 2, X2: 6, Y2: 6}},
		{"minimal frame", 2, 2, geometry.Box{X1: 0, Y1: 0, X2: 2, Y2: 2}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FallbackBox(tt.width, tt.height)
			if got != tt.want {
				t.Errorf("FallbackBox(%d, %d) = %+v, want %+v",
					tt.width, tt.height, got, tt.want)
			}
			if got.Empty() {
				t.Errorf("FallbackBox(%d, %d) is degenerate", tt.width, tt.height)
			}
		})
	}
}
