package classify

import (
	"fmt"
	"image"
	"math"

	"github.com/ironsheep/rcnn-detect/internal/geometry"
)

// Input is one classification request: a model-canvas image and the
// region slots to score against it.
type Input struct {
	// Image is the letterboxed model canvas the regions refer to.
	Image image.Image

	// Regions holds one box per slot in model-canvas pixels. Padding
	// slots are all-zero boxes; they are scored like any other slot and
	// the caller ignores their rows.
	Regions []geometry.Box
}

// Classifier scores every region slot of an input. Implementations
// return one score row per region, in region order.
type Classifier interface {
	Classify(in *Input) (*ScoreMatrix, error)
}

// Func adapts a plain function to the Classifier interface.
type Func func(in *Input) (*ScoreMatrix, error)

// Classify calls f.
func (f Func) Classify(in *Input) (*ScoreMatrix, error) {
	return f(in)
}

// ScoreMatrix holds raw per-region, per-class scores. Row i belongs to
// region slot i; column j belongs to class j, with class 0 conventionally
// the background class.
type ScoreMatrix struct {
	scores  [][]float32
	classes int
}

// NewScoreMatrix validates the raw score rows and wraps them. Every row
// must have the same non-zero number of columns and there must be at
// least one row.
func NewScoreMatrix(scores [][]float32) (*ScoreMatrix, error) {
	if len(scores) == 0 {
		return nil, fmt.Errorf("score matrix has no rows")
	}
	classes := len(scores[0])
	if classes == 0 {
		return nil, fmt.Errorf("score matrix has no classes")
	}
	for i, row := range scores {
		if len(row) != classes {
			return nil, fmt.Errorf("score row %d has %d columns, want %d",
				i, len(row), classes)
		}
	}
	return &ScoreMatrix{scores: scores, classes: classes}, nil
}

// Rows returns the number of region rows.
func (m *ScoreMatrix) Rows() int {
	return len(m.scores)
}

// Classes returns the number of score columns per row.
func (m *ScoreMatrix) Classes() int {
	return m.classes
}

// Row returns the raw scores for region slot i.
func (m *ScoreMatrix) Row(i int) []float32 {
	return m.scores[i]
}

// Softmax returns row i as a probability distribution. The largest raw
// score is subtracted before exponentiation so extreme values cannot
// overflow.
func (m *ScoreMatrix) Softmax(i int) []float64 {
	row := m.scores[i]

	maxScore := float64(row[0])
	for _, s := range row[1:] {
		if float64(s) > maxScore {
			maxScore = float64(s)
		}
	}

	probs := make([]float64, len(row))
	var sum float64
	for j, s := range row {
		e := math.Exp(float64(s) - maxScore)
		probs[j] = e
		sum += e
	}
	for j := range probs {
		probs[j] /= sum
	}
	return probs
}

// Argmax returns the winning class for region slot i and its softmax
// probability. Equal raw scores resolve to the lowest class index.
func (m *ScoreMatrix) Argmax(i int) (int, float64) {
	row := m.scores[i]

	best := 0
	for j := 1; j < len(row); j++ {
		if row[j] > row[best] {
			best = j
		}
	}
	return best, m.Softmax(i)[best]
}
