// Package geometry provides the box arithmetic shared by the detection
// pipeline: axis-aligned rectangles, intersection-over-union, and the
// affine transform between an image's native frame and the model's fixed
// padded canvas.
//
// # Coordinate System
//
// All coordinates are integer pixels with the origin at the top-left
// corner: X increases rightward, Y increases downward. Boxes are half-open,
// with (X1, Y1) inclusive and (X2, Y2) exclusive, so Width = X2-X1 and
// Height = Y2-Y1. The all-zero Box is the padding sentinel used to fill
// fixed-capacity region sets and must never be treated as a real region.
//
// # Rounding
//
// Whenever a coordinate crosses frames (resizing back to the original
// image, mapping onto the padded canvas, or inverting that mapping), the
// fractional result is rounded half to even. This keeps forward and inverse
// mappings consistent: a box mapped onto the canvas and back lands within
// one pixel of where it started for scale factors of 0.5 and above.
package geometry
