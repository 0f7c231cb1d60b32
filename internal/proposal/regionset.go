package proposal

import (
	"fmt"

	"github.com/ironsheep/rcnn-detect/internal/geometry"
)

// RegionSet is the normalized output of the proposer: exactly Capacity
// region slots in both the model's padded frame and the original image
// frame, index-aligned, with zero-box padding trailing the real regions.
type RegionSet struct {
	// Model holds Capacity boxes in the padded model frame. Slots at
	// index >= PaddingIndex are the all-zero padding sentinel.
	Model []geometry.Box `json:"model"`

	// Original holds the same regions in original-image coordinates,
	// index-aligned with Model, padded identically.
	Original []geometry.Box `json:"original"`

	// PaddingIndex is the number of real regions: slots [0, PaddingIndex)
	// are real, slots [PaddingIndex, Capacity) are padding. Scoring and
	// suppression must never look past it.
	PaddingIndex int `json:"padding_index"`

	// Capacity is the fixed slot count (len(Model) == len(Original)).
	Capacity int `json:"capacity"`

	// Transform maps original-frame coordinates onto the model canvas.
	Transform geometry.PadTransform `json:"transform"`
}

// NewRegionSet builds a RegionSet from real regions in original-image
// coordinates. Regions beyond capacity are truncated (earliest kept); the
// remainder of both slices is zero-padded. Each kept region is mapped into
// the model frame with tr.
func NewRegionSet(capacity int, originals []geometry.Box, tr geometry.PadTransform) (*RegionSet, error) {
	if capacity <= 0 {
		return nil, fmt.Errorf("invalid region capacity %d", capacity)
	}

	realCount := len(originals)
	if realCount > capacity {
		realCount = capacity
	}

	model := make([]geometry.Box, capacity)
	original := make([]geometry.Box, capacity)
	for i := 0; i < realCount; i++ {
		original[i] = originals[i]
		model[i] = tr.Apply(originals[i])
	}

	return &RegionSet{
		Model:        model,
		Original:     original,
		PaddingIndex: realCount,
		Capacity:     capacity,
		Transform:    tr,
	}, nil
}
