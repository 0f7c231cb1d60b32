package geometry

import "math"

// Box is an axis-aligned rectangle in integer pixel coordinates.
//
// (X1, Y1) is the top-left corner (inclusive), (X2, Y2) the bottom-right
// corner (exclusive). A well-formed box has X1 <= X2 and Y1 <= Y2. The zero
// value is the padding sentinel meaning "no region".
type Box struct {
	X1 int `json:"x1"` // Left edge (inclusive)
	Y1 int `json:"y1"` // Top edge (inclusive)
	X2 int `json:"x2"` // Right edge (exclusive)
	Y2 int `json:"y2"` // Bottom edge (exclusive)
}

// Width returns X2 - X1. Negative for malformed boxes.
func (b Box) Width() int { return b.X2 - b.X1 }

// Height returns Y2 - Y1. Negative for malformed boxes.
func (b Box) Height() int { return b.Y2 - b.Y1 }

// Area returns Width * Height, or 0 when either side is non-positive.
func (b Box) Area() int {
	w, h := b.Width(), b.Height()
	if w <= 0 || h <= 0 {
		return 0
	}
	return w * h
}

// Empty reports whether the box encloses no pixels (zero or negative width
// or height).
func (b Box) Empty() bool {
	return b.Width() <= 0 || b.Height() <= 0
}

// IsZero reports whether the box is the all-zero padding sentinel.
func (b Box) IsZero() bool {
	return b.X1 == 0 && b.Y1 == 0 && b.X2 == 0 && b.Y2 == 0
}

// AspectRatio returns the long-side to short-side ratio, always >= 1 for a
// non-empty box. Empty boxes return 0.
func (b Box) AspectRatio() float64 {
	w, h := b.Width(), b.Height()
	if w <= 0 || h <= 0 {
		return 0
	}
	if w > h {
		return float64(w) / float64(h)
	}
	return float64(h) / float64(w)
}

// Intersect returns the overlapping region of two boxes. The result is
// empty when they do not overlap.
func (b Box) Intersect(o Box) Box {
	r := Box{
		X1: max(b.X1, o.X1),
		Y1: max(b.Y1, o.Y1),
		X2: min(b.X2, o.X2),
		Y2: min(b.Y2, o.Y2),
	}
	if r.Empty() {
		return Box{}
	}
	return r
}

// IoU returns the intersection-over-union of two boxes: the area of their
// overlap divided by the area of their union. Disjoint boxes score 0, as
// does any pair whose union has zero area.
func (b Box) IoU(o Box) float64 {
	inter := b.Intersect(o).Area()
	if inter == 0 {
		return 0
	}
	union := b.Area() + o.Area() - inter
	if union <= 0 {
		return 0
	}
	return float64(inter) / float64(union)
}

// Scaled returns the box with every coordinate multiplied by factor and
// rounded half to even.
func (b Box) Scaled(factor float64) Box {
	return Box{
		X1: int(math.RoundToEven(float64(b.X1) * factor)),
		Y1: int(math.RoundToEven(float64(b.Y1) * factor)),
		X2: int(math.RoundToEven(float64(b.X2) * factor)),
		Y2: int(math.RoundToEven(float64(b.Y2) * factor)),
	}
}

// Clip constrains the box to the frame [0, width) x [0, height). The result
// may be empty if the box lies entirely outside the frame.
func (b Box) Clip(width, height int) Box {
	return Box{
		X1: clampInt(b.X1, 0, width),
		Y1: clampInt(b.Y1, 0, height),
		X2: clampInt(b.X2, 0, width),
		Y2: clampInt(b.Y2, 0, height),
	}
}

// clampInt constrains v to the range [lo, hi].
func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
