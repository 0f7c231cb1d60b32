package proposal

import (
	"image"

	"github.com/anthonynsimon/bild/blur"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/ironsheep/rcnn-detect/internal/geometry"
)

// Segmenter produces candidate rectangles from an image in the image's own
// coordinate frame. It is the boundary to the external region-segmentation
// routine: implementations are treated as black boxes by the proposer, and
// their output is clipped and filtered downstream.
type Segmenter interface {
	Segment(img image.Image) []geometry.Box
}

// SegmentParams carries the tuning knobs shared by segmentation backends.
type SegmentParams struct {
	// Scale controls merging aggressiveness: higher values group more
	// dissimilar pixels together, yielding fewer, larger regions.
	Scale float64 `json:"scale"`

	// Sigma is the Gaussian pre-blur radius applied before segmentation.
	Sigma float64 `json:"sigma"`

	// MinSize is the minimum component size in pixels; smaller components
	// are discarded.
	MinSize int `json:"min_size"`
}

// DefaultSegmentParams returns the tuning used for the grocery model.
func DefaultSegmentParams() SegmentParams {
	return SegmentParams{
		Scale:   100,
		Sigma:   1.2,
		MinSize: 20,
	}
}

// ComponentSegmenter is the built-in segmentation backend: connected
// components grown over perceptual color similarity.
//
// It is a stand-in honoring the standard selective-search knobs, not a
// selective-search implementation. The image is blurred at Sigma, then
// components are grown from unvisited pixels in scan order, admitting
// 8-connected neighbors whose CIE-Lab distance to the component's running
// mean color stays within Scale/1000. Components covering fewer than
// MinSize pixels are dropped; the rest are emitted as their bounding
// boxes, in seed scan order.
type ComponentSegmenter struct {
	Params SegmentParams
}

// NewComponentSegmenter returns a segmenter with the given tuning.
func NewComponentSegmenter(params SegmentParams) *ComponentSegmenter {
	return &ComponentSegmenter{Params: params}
}

// Segment returns the bounding boxes of color-coherent components found in
// img. The boxes are in img's coordinate frame with the origin shifted to
// (0, 0). Never returns an error; an empty or degenerate image yields nil.
func (s *ComponentSegmenter) Segment(img image.Image) []geometry.Box {
	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()
	if width <= 0 || height <= 0 {
		return nil
	}

	blurred := blur.Gaussian(img, s.Params.Sigma)

	// Precompute Lab coordinates per pixel.
	labL := make([]float64, width*height)
	labA := make([]float64, width*height)
	labB := make([]float64, width*height)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			r, g, b, _ := blurred.At(x+bounds.Min.X, y+bounds.Min.Y).RGBA()
			c := colorful.Color{
				R: float64(r) / 65535.0,
				G: float64(g) / 65535.0,
				B: float64(b) / 65535.0,
			}
			l, a, bb := c.Lab()
			i := y*width + x
			labL[i], labA[i], labB[i] = l, a, bb
		}
	}

	tolerance := s.Params.Scale / 1000.0
	visited := make([]bool, width*height)

	var boxes []geometry.Box
	for seedY := 0; seedY < height; seedY++ {
		for seedX := 0; seedX < width; seedX++ {
			if visited[seedY*width+seedX] {
				continue
			}

			box, size := s.growComponent(seedX, seedY, width, height,
				labL, labA, labB, visited, tolerance)
			if size >= s.Params.MinSize {
				boxes = append(boxes, box)
			}
		}
	}

	return boxes
}

// growComponent flood-fills the component containing the seed pixel,
// marking every member visited, and returns its bounding box and pixel
// count. A neighbor joins when its Lab distance to the component's running
// mean stays within tolerance.
func (s *ComponentSegmenter) growComponent(seedX, seedY, width, height int,
	labL, labA, labB []float64, visited []bool, tolerance float64) (geometry.Box, int) {

	type point struct{ x, y int }
	queue := []point{{seedX, seedY}}
	visited[seedY*width+seedX] = true

	minX, maxX := seedX, seedX
	minY, maxY := seedY, seedY

	var sumL, sumA, sumB float64
	count := 0

	for len(queue) > 0 {
		p := queue[0]
		queue = queue[1:]

		i := p.y*width + p.x
		sumL += labL[i]
		sumA += labA[i]
		sumB += labB[i]
		count++

		if p.x < minX {
			minX = p.x
		}
		if p.x > maxX {
			maxX = p.x
		}
		if p.y < minY {
			minY = p.y
		}
		if p.y > maxY {
			maxY = p.y
		}

		meanL := sumL / float64(count)
		meanA := sumA / float64(count)
		meanB := sumB / float64(count)

		// 8-connected neighbors
		for dy := -1; dy <= 1; dy++ {
			for dx := -1; dx <= 1; dx++ {
				if dx == 0 && dy == 0 {
					continue
				}
				nx, ny := p.x+dx, p.y+dy
				if nx < 0 || nx >= width || ny < 0 || ny >= height {
					continue
				}
				ni := ny*width + nx
				if visited[ni] {
					continue
				}

				dl := labL[ni] - meanL
				da := labA[ni] - meanA
				db := labB[ni] - meanB
				if dl*dl+da*da+db*db > tolerance*tolerance {
					continue
				}

				visited[ni] = true
				queue = append(queue, point{nx, ny})
			}
		}
	}

	box := geometry.Box{X1: minX, Y1: minY, X2: maxX + 1, Y2: maxY + 1}
	return box, count
}
