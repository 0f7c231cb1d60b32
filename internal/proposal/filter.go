package proposal

import (
	"math"

	"github.com/ironsheep/rcnn-detect/internal/geometry"
)

// FilterParams bounds the rectangles accepted as region proposals. All
// checks apply to the resized segmentation frame.
type FilterParams struct {
	// MinDim and MaxDim bound both width and height, in pixels.
	MinDim int `json:"min_dim"`
	MaxDim int `json:"max_dim"`

	// MinArea and MaxArea bound width*height, in pixels.
	MinArea int `json:"min_area"`
	MaxArea int `json:"max_area"`

	// MaxAspectRatio bounds long side / short side.
	MaxAspectRatio float64 `json:"max_aspect_ratio"`
}

// FilterParamsFor resolves relative bounds to absolute pixels for a working
// frame whose longer dimension is resizeDim.
//
// The dimension bounds scale linearly with the frame; the area bounds use
// the conventional proposal heuristics: minimum area twice the square of
// the minimum dimension, maximum area a third of the square of the maximum
// dimension.
func FilterParamsFor(resizeDim int, minDimRel, maxDimRel, maxAspectRatio float64) FilterParams {
	d := float64(resizeDim)
	return FilterParams{
		MinDim:         int(math.Round(minDimRel * d)),
		MaxDim:         int(math.Round(maxDimRel * d)),
		MinArea:        int(math.Round(2 * minDimRel * minDimRel * d * d)),
		MaxArea:        int(math.Round(0.33 * maxDimRel * maxDimRel * d * d)),
		MaxAspectRatio: maxAspectRatio,
	}
}

// Filter returns the rectangles satisfying every configured bound, in
// input order. Degenerate rectangles are rejected, and exact duplicates
// are dropped keeping the first occurrence. Each rectangle is judged
// independently; no cross-rectangle comparison happens here.
func Filter(rects []geometry.Box, p FilterParams) []geometry.Box {
	seen := make(map[geometry.Box]struct{}, len(rects))
	out := make([]geometry.Box, 0, len(rects))

	for _, r := range rects {
		if _, dup := seen[r]; dup {
			continue
		}

		w, h := r.Width(), r.Height()
		if w <= 0 || h <= 0 {
			continue
		}
		if w < p.MinDim || h < p.MinDim || w > p.MaxDim || h > p.MaxDim {
			continue
		}
		area := w * h
		if area < p.MinArea || area > p.MaxArea {
			continue
		}
		if r.AspectRatio() > p.MaxAspectRatio {
			continue
		}

		seen[r] = struct{}{}
		out = append(out, r)
	}

	return out
}

// FallbackBox returns the single full-frame rectangle emitted when
// filtering rejects every candidate: the frame inset by a small margin,
// clamped so tiny frames still get a non-degenerate box.
func FallbackBox(width, height int) geometry.Box {
	margin := 5
	if limit := min(width, height) / 4; margin > limit {
		margin = limit
	}
	return geometry.Box{
		X1: margin,
		Y1: margin,
		X2: width - margin,
		Y2: height - margin,
	}
}
