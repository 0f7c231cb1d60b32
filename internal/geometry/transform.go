package geometry

import (
	"fmt"
	"math"
)

// PadTransform is the affine mapping from an image's native frame onto a
// fixed padded canvas: a uniform scale that fits the image inside the
// canvas while preserving aspect ratio, followed by offsets that center it.
//
// The same transform is applied to the pixels (letterboxing) and to every
// region box, so regions and image content stay aligned in the model's
// input frame.
type PadTransform struct {
	// Scale is the uniform factor applied to source coordinates.
	Scale float64 `json:"scale"`

	// OffsetX and OffsetY position the scaled image on the canvas.
	OffsetX int `json:"offset_x"`
	OffsetY int `json:"offset_y"`

	// SrcWidth and SrcHeight are the source image dimensions.
	SrcWidth  int `json:"src_width"`
	SrcHeight int `json:"src_height"`

	// PadWidth and PadHeight are the canvas dimensions.
	PadWidth  int `json:"pad_width"`
	PadHeight int `json:"pad_height"`
}

// NewPadTransform computes the transform that fits a srcWidth x srcHeight
// image onto a padWidth x padHeight canvas.
//
// The scale is min(padWidth/srcWidth, padHeight/srcHeight), so the longer
// source dimension exactly fills its canvas dimension and the shorter one
// is centered with equal padding on both sides (up to one pixel when the
// leftover is odd).
//
// Returns an error when any dimension is non-positive.
func NewPadTransform(srcWidth, srcHeight, padWidth, padHeight int) (PadTransform, error) {
	if srcWidth <= 0 || srcHeight <= 0 {
		return PadTransform{}, fmt.Errorf("invalid source dimensions %dx%d", srcWidth, srcHeight)
	}
	if padWidth <= 0 || padHeight <= 0 {
		return PadTransform{}, fmt.Errorf("invalid canvas dimensions %dx%d", padWidth, padHeight)
	}

	scale := math.Min(
		float64(padWidth)/float64(srcWidth),
		float64(padHeight)/float64(srcHeight),
	)
	scaledW := int(math.RoundToEven(float64(srcWidth) * scale))
	scaledH := int(math.RoundToEven(float64(srcHeight) * scale))

	return PadTransform{
		Scale:     scale,
		OffsetX:   (padWidth - scaledW) / 2,
		OffsetY:   (padHeight - scaledH) / 2,
		SrcWidth:  srcWidth,
		SrcHeight: srcHeight,
		PadWidth:  padWidth,
		PadHeight: padHeight,
	}, nil
}

// ScaledWidth returns the source width after scaling, rounded half to even.
func (t PadTransform) ScaledWidth() int {
	return int(math.RoundToEven(float64(t.SrcWidth) * t.Scale))
}

// ScaledHeight returns the source height after scaling, rounded half to even.
func (t PadTransform) ScaledHeight() int {
	return int(math.RoundToEven(float64(t.SrcHeight) * t.Scale))
}

// Apply maps a source-frame box onto the padded canvas.
func (t PadTransform) Apply(b Box) Box {
	s := b.Scaled(t.Scale)
	return Box{
		X1: s.X1 + t.OffsetX,
		Y1: s.Y1 + t.OffsetY,
		X2: s.X2 + t.OffsetX,
		Y2: s.Y2 + t.OffsetY,
	}
}

// Invert maps a canvas-frame box back into the source frame. The result is
// clipped to the source bounds, so boxes touching the canvas padding come
// back flush with the image border.
func (t PadTransform) Invert(b Box) Box {
	shifted := Box{
		X1: b.X1 - t.OffsetX,
		Y1: b.Y1 - t.OffsetY,
		X2: b.X2 - t.OffsetX,
		Y2: b.Y2 - t.OffsetY,
	}
	return shifted.Scaled(1 / t.Scale).Clip(t.SrcWidth, t.SrcHeight)
}
