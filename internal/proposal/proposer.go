package proposal

import (
	"fmt"
	"image"
	"math"

	"github.com/disintegration/imaging"

	"github.com/ironsheep/rcnn-detect/internal/geometry"
)

// Params configures the Proposer.
type Params struct {
	// Capacity is the fixed RegionSet slot count.
	Capacity int `json:"capacity"`

	// ResizeDim caps the longer dimension of the working frame used for
	// segmentation and grid generation.
	ResizeDim int `json:"resize_dim"`

	// Segment tunes the built-in segmenter. Ignored when a custom
	// Segmenter is supplied to New.
	Segment SegmentParams `json:"segment"`

	// Grid tunes supplementary grid generation.
	Grid GridParams `json:"grid"`

	// MinDimRel and MaxDimRel are the filter's dimension bounds as
	// fractions of ResizeDim.
	MinDimRel float64 `json:"min_dim_rel"`
	MaxDimRel float64 `json:"max_dim_rel"`

	// MaxAspectRatio bounds long side / short side of accepted proposals.
	MaxAspectRatio float64 `json:"max_aspect_ratio"`

	// CanvasWidth and CanvasHeight are the model input canvas dimensions.
	CanvasWidth  int `json:"canvas_width"`
	CanvasHeight int `json:"canvas_height"`
}

// DefaultParams returns the proposal configuration used for the grocery
// model: 100 slots, a 200 px working frame, a 7-scale grid at aspect
// ratios 1, 2 and 0.5, and a 1000x1000 model canvas.
func DefaultParams() Params {
	return Params{
		Capacity:       100,
		ResizeDim:      200,
		Segment:        DefaultSegmentParams(),
		Grid:           GridParams{Scales: 7, AspectRatios: []float64{1.0, 2.0, 0.5}},
		MinDimRel:      0.04,
		MaxDimRel:      0.4,
		MaxAspectRatio: 4.0,
		CanvasWidth:    1000,
		CanvasHeight:   1000,
	}
}

// Proposer generates normalized region sets for images. It is stateless
// across calls and safe for concurrent use as long as the segmenter is.
type Proposer struct {
	params    Params
	filter    FilterParams
	segmenter Segmenter
}

// New builds a Proposer from params. A nil segmenter selects the built-in
// ComponentSegmenter configured from params.Segment.
func New(params Params, segmenter Segmenter) (*Proposer, error) {
	if params.Capacity <= 0 {
		return nil, fmt.Errorf("invalid region capacity %d", params.Capacity)
	}
	if params.ResizeDim <= 0 {
		return nil, fmt.Errorf("invalid resize dimension %d", params.ResizeDim)
	}
	if params.CanvasWidth <= 0 || params.CanvasHeight <= 0 {
		return nil, fmt.Errorf("invalid canvas dimensions %dx%d",
			params.CanvasWidth, params.CanvasHeight)
	}

	if segmenter == nil {
		segmenter = NewComponentSegmenter(params.Segment)
	}

	return &Proposer{
		params: params,
		filter: FilterParamsFor(params.ResizeDim,
			params.MinDimRel, params.MaxDimRel, params.MaxAspectRatio),
		segmenter: segmenter,
	}, nil
}

// FilterParams returns the absolute filter bounds resolved from the
// relative configuration.
func (p *Proposer) FilterParams() FilterParams {
	return p.filter
}

// Transform returns the pad transform for an image of the given size, the
// same mapping Propose applies to its region coordinates.
func (p *Proposer) Transform(srcWidth, srcHeight int) (geometry.PadTransform, error) {
	return geometry.NewPadTransform(srcWidth, srcHeight,
		p.params.CanvasWidth, p.params.CanvasHeight)
}

// Propose runs the proposal pipeline on img and returns the normalized
// RegionSet: segmentation and grid candidates in the resized working
// frame, filtered, mapped back to original pixels, projected onto the
// model canvas, and truncated or zero-padded to the configured capacity.
//
// An image with no pixels is an error. A configuration that filters out
// every candidate is not: the fallback full-frame box guarantees at least
// one real region.
func (p *Proposer) Propose(img image.Image) (*RegionSet, error) {
	bounds := img.Bounds()
	srcW := bounds.Dx()
	srcH := bounds.Dy()
	if srcW <= 0 || srcH <= 0 {
		return nil, fmt.Errorf("empty image %dx%d", srcW, srcH)
	}

	// Downscale so the longer dimension fits ResizeDim. Images already
	// small enough are segmented as-is.
	resizeScale := 1.0
	working := img
	if longer := max(srcW, srcH); longer > p.params.ResizeDim {
		resizeScale = float64(p.params.ResizeDim) / float64(longer)
		workW := max(1, int(math.RoundToEven(float64(srcW)*resizeScale)))
		workH := max(1, int(math.RoundToEven(float64(srcH)*resizeScale)))
		working = imaging.Resize(img, workW, workH, imaging.Lanczos)
	}
	workBounds := working.Bounds()
	workW := workBounds.Dx()
	workH := workBounds.Dy()

	// Segmentation candidates order before grid candidates; nothing below
	// reorders survivors, so truncation keeps the earliest-generated.
	segRects := p.segmenter.Segment(working)
	rects := make([]geometry.Box, 0, len(segRects))
	for _, r := range segRects {
		clipped := r.Clip(workW, workH)
		if !clipped.Empty() {
			rects = append(rects, clipped)
		}
	}
	rects = append(rects, GridBoxes(workW, workH, p.params.Grid)...)

	filtered := Filter(rects, p.filter)
	if len(filtered) == 0 {
		filtered = []geometry.Box{FallbackBox(workW, workH)}
	}

	// Back to original-image pixels.
	originals := make([]geometry.Box, len(filtered))
	for i, r := range filtered {
		originals[i] = r.Scaled(1 / resizeScale).Clip(srcW, srcH)
	}

	tr, err := p.Transform(srcW, srcH)
	if err != nil {
		return nil, fmt.Errorf("pad transform: %w", err)
	}

	return NewRegionSet(p.params.Capacity, originals, tr)
}
