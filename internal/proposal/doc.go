// Package proposal generates the fixed-capacity set of candidate regions
// fed to the classifier.
//
// # Pipeline
//
// Propose runs the stages in order:
//
//  1. Resize: the image is scaled down so its longer dimension does not
//     exceed the working size (aspect preserved); images already small
//     enough are left untouched.
//  2. Segment: an external segmentation routine produces candidate
//     rectangles in the resized frame. The routine is a black box behind
//     the Segmenter interface; the built-in ComponentSegmenter is a
//     stand-in, not a selective-search implementation.
//  3. Grid: supplementary boxes tile the resized frame at halving scales
//     and several aspect ratios, guaranteeing coverage where segmentation
//     misses objects.
//  4. Filter: each rectangle is checked independently against dimension,
//     area, and aspect-ratio bounds; exact duplicates are dropped.
//  5. Fallback: if nothing survives, a single border-inset full-frame
//     rectangle is emitted so downstream stages always see one region.
//  6. Rescale: survivors are mapped back to original-image pixels.
//  7. Pad transform: the same scale-and-center transform that letterboxes
//     the image onto the model canvas is applied to every rectangle.
//  8. Normalize: the list is truncated or zero-padded to exactly the
//     configured capacity, recording the padding index.
//
// # Coordinate Frames
//
// Three frames are involved: the resized segmentation frame (stages 2-5),
// the original image frame (stage 6), and the padded model canvas
// (stage 7). The returned RegionSet carries the boxes in both the model
// and original frames plus the transform connecting them.
//
// # Ordering and Determinism
//
// Segmentation rectangles always precede grid rectangles, and no stage
// reorders survivors, so truncation keeps the earliest-generated regions.
// Every stage is deterministic: the same image and parameters produce the
// same RegionSet.
package proposal
