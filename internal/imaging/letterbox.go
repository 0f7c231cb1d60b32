package imaging

import (
	"fmt"
	"image"
	"image/color"

	"github.com/disintegration/imaging"

	"github.com/ironsheep/rcnn-detect/internal/geometry"
)

// PadColor fills the canvas around the scaled image. It matches the
// model's pixel mean, so padding contributes near-zero values after
// normalization.
var PadColor = color.NRGBA{R: 114, G: 114, B: 114, A: 255}

// Letterbox projects img onto the transform's model canvas: the image is
// scaled by the transform's factor with Lanczos resampling and pasted
// centered, with PadColor filling the rest.
//
// The transform must have been built for img's dimensions.
func Letterbox(img image.Image, tr geometry.PadTransform) (*image.NRGBA, error) {
	bounds := img.Bounds()
	if bounds.Dx() != tr.SrcWidth || bounds.Dy() != tr.SrcHeight {
		return nil, fmt.Errorf("image is %dx%d, transform expects %dx%d",
			bounds.Dx(), bounds.Dy(), tr.SrcWidth, tr.SrcHeight)
	}

	canvas := imaging.New(tr.PadWidth, tr.PadHeight, PadColor)
	resized := imaging.Resize(img, tr.ScaledWidth(), tr.ScaledHeight(), imaging.Lanczos)
	return imaging.Paste(canvas, resized, image.Pt(tr.OffsetX, tr.OffsetY)), nil
}
