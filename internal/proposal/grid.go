package proposal

import (
	"math"

	"github.com/ironsheep/rcnn-detect/internal/geometry"
)

// GridParams controls supplementary grid proposal generation.
type GridParams struct {
	// Scales is the number of halving scales; the first cell size is the
	// frame's short side, each further scale halves it.
	Scales int `json:"scales"`

	// AspectRatios lists the width/height ratios generated at every scale.
	// Empty means square cells only.
	AspectRatios []float64 `json:"aspect_ratios"`
}

// GridBoxes tiles a width x height frame with boxes at halving scales and
// the configured aspect ratios.
//
// For scale i the base cell is shortSide / 2^i and the tiling step is half
// the cell, giving 50% overlap between neighbors. For an aspect ratio a,
// the box is cell wide and cell/a tall when a > 1, and cell*a wide and
// cell tall otherwise. Only boxes whose right and bottom edges lie
// strictly inside the frame are emitted.
//
// Boxes are generated large-to-small: scale-major, then aspect ratio, then
// column, then row. Scales whose cell would shrink below 2 pixels are
// skipped.
func GridBoxes(width, height int, p GridParams) []geometry.Box {
	if width <= 0 || height <= 0 || p.Scales <= 0 {
		return nil
	}

	aspects := p.AspectRatios
	if len(aspects) == 0 {
		aspects = []float64{1.0}
	}

	var out []geometry.Box
	for iter := 0; iter < p.Scales; iter++ {
		cell := float64(min(width, height)) / math.Pow(2, float64(iter))
		if cell < 2 {
			break
		}
		step := cell / 2

		for _, a := range aspects {
			var bw, bh float64
			if a > 1 {
				bw, bh = cell, cell/a
			} else {
				bw, bh = cell*a, cell
			}

			// Integerize origin and size separately so every box of a
			// given scale and aspect has identical pixel dimensions.
			iw := int(math.RoundToEven(bw))
			ih := int(math.RoundToEven(bh))

			for x := 0.0; x < float64(width); x += step {
				for y := 0.0; y < float64(height); y += step {
					if x+bw < float64(width-1) && y+bh < float64(height-1) {
						x1 := int(math.RoundToEven(x))
						y1 := int(math.RoundToEven(y))
						out = append(out, geometry.Box{
							X1: x1,
							Y1: y1,
							X2: x1 + iw,
							Y2: y1 + ih,
						})
					}
				}
			}
		}
	}

	return out
}
