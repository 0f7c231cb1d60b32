package proposal

import (
	"testing"
)

func TestGridBoxes_DegenerateInput(t *testing.T) {
	tests := []struct {
		name          string
		width, height int
		params        GridParams
	}{
		{"zero width", 0, 100, GridParams{Scales: 3}},
		{"zero height", 100, 0, GridParams{Scales: 3}},
		{"zero scales", 100, 100, GridParams{}},
		{"negative scales", 100, 100, GridParams{Scales: -1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := GridBoxes(tt.width, tt.height, tt.params); got != nil {
				t.Errorf("GridBoxes() = %d boxes, want none", len(got))
			}
		})
	}
}

func TestGridBoxes_StrictlyInsideFrame(t *testing.T) {
	width, height := 200, 100
	params := GridParams{Scales: 4, AspectRatios: []float64{1.0, 2.0, 0.5}}

	boxes := GridBoxes(width, height, params)
	if len(boxes) == 0 {
		t.Fatal("GridBoxes() returned no boxes")
	}

	for _, b := range boxes {
		if b.X1 < 0 || b.Y1 < 0 {
			t.Errorf("box %+v starts outside the frame", b)
		}
		if b.X2 >= width || b.Y2 >= height {
			t.Errorf("box %+v reaches the frame border", b)
		}
		if b.Empty() {
			t.Errorf("box %+v is degenerate", b)
		}
	}
}

func TestGridBoxes_LargeToSmall(t *testing.T) {
	boxes := GridBoxes(100, 200, GridParams{Scales: 3, AspectRatios: []float64{1.0}})
	if len(boxes) < 2 {
		t.Fatalf("GridBoxes() = %d boxes, want several", len(boxes))
	}

	first := boxes[0].Area()
	last := boxes[len(boxes)-1].Area()
	if first <= last {
		t.Errorf("first box area %d not larger than last %d", first, last)
	}
}

func TestGridBoxes_AspectRatios(t *testing.T) {
	boxes := GridBoxes(400, 400, GridParams{Scales: 3, AspectRatios: []float64{2.0}})
	if len(boxes) == 0 {
		t.Fatal("GridBoxes() returned no boxes")
	}

	for _, b := range boxes {
		w, h := b.Width(), b.Height()
		// Width should be about twice the height, up to integerization.
		if w < 2*h-2 || w > 2*h+2 {
			t.Errorf("box %+v has aspect %dx%d, want ~2:1", b, w, h)
		}
	}
}

func TestGridBoxes_DefaultAspectIsSquare(t *testing.T) {
	boxes := GridBoxes(300, 300, GridParams{Scales: 3})
	if len(boxes) == 0 {
		t.Fatal("GridBoxes() returned no boxes")
	}

	for _, b := range boxes {
		if diff := b.Width() - b.Height(); diff < -1 || diff > 1 {
			t.Errorf("box %+v is not square", b)
		}
	}
}

func TestGridBoxes_Deterministic(t *testing.T) {
	params := GridParams{Scales: 4, AspectRatios: []float64{1.0, 0.5}}

	a := GridBoxes(256, 192, params)
	b := GridBoxes(256, 192, params)

	if len(a) != len(b) {
		t.Fatalf("lengths differ: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Errorf("box %d differs: %+v vs %+v", i, a[i], b[i])
		}
	}
}
