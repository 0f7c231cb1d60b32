package nms

import (
	"sort"

	"github.com/ironsheep/rcnn-detect/internal/geometry"
)

// Candidate is one scored, classified region entering suppression.
type Candidate struct {
	// Box is the region in original-image coordinates.
	Box geometry.Box `json:"box"`

	// Class is the predicted class id.
	Class int `json:"class"`

	// Score is the confidence for the predicted class.
	Score float64 `json:"score"`
}

// Options controls suppression behavior.
type Options struct {
	// IoUThreshold is the overlap above which the lower-scoring of two
	// same-class candidates is discarded. Kept same-class pairs always
	// satisfy IoU <= IoUThreshold.
	IoUThreshold float64

	// IgnoreBackground drops every candidate of BackgroundClass before
	// suppression, regardless of score.
	IgnoreBackground bool

	// BackgroundClass is the class id treated as background when
	// IgnoreBackground is set.
	BackgroundClass int

	// MinScore drops candidates scoring strictly below it before
	// suppression. Zero disables the filter.
	MinScore float64
}

// DefaultOptions returns the standard suppression settings: IoU threshold
// 0.1 with the background class (id 0) ignored.
func DefaultOptions() Options {
	return Options{
		IoUThreshold:     0.1,
		IgnoreBackground: true,
		BackgroundClass:  0,
	}
}

// Suppress returns the indices into cands of the candidates that survive
// per-class greedy non-maximum suppression.
//
// Candidates are grouped by class id (classes visited in ascending order).
// Within a class, candidates are sorted by descending score with a stable
// sort: equal scores keep their input order, so the lower input index is
// considered first and wins the tie. The highest-scoring remaining
// candidate is kept and every remaining candidate of the same class whose
// IoU with it exceeds opts.IoUThreshold is discarded; this repeats until
// the class is exhausted.
//
// An empty or nil input returns an empty result. The returned indices are
// grouped by class in greedy selection order; callers that need a specific
// ordering should sort the result themselves.
func Suppress(cands []Candidate, opts Options) []int {
	if len(cands) == 0 {
		return nil
	}

	// Partition candidate indices by class, preserving input order.
	byClass := make(map[int][]int)
	for i, c := range cands {
		if opts.IgnoreBackground && c.Class == opts.BackgroundClass {
			continue
		}
		if opts.MinScore > 0 && c.Score < opts.MinScore {
			continue
		}
		byClass[c.Class] = append(byClass[c.Class], i)
	}

	classes := make([]int, 0, len(byClass))
	for class := range byClass {
		classes = append(classes, class)
	}
	sort.Ints(classes)

	var kept []int
	for _, class := range classes {
		idxs := byClass[class]

		// Stable: equal scores keep input order, lower index first.
		sort.SliceStable(idxs, func(i, j int) bool {
			return cands[idxs[i]].Score > cands[idxs[j]].Score
		})

		suppressed := make([]bool, len(idxs))
		for i := 0; i < len(idxs); i++ {
			if suppressed[i] {
				continue
			}
			kept = append(kept, idxs[i])

			keptBox := cands[idxs[i]].Box
			for j := i + 1; j < len(idxs); j++ {
				if suppressed[j] {
					continue
				}
				if keptBox.IoU(cands[idxs[j]].Box) > opts.IoUThreshold {
					suppressed[j] = true
				}
			}
		}
	}

	return kept
}
