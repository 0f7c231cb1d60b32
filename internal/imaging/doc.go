// Package imaging handles the pixel-level work around the detection
// pipeline: loading and caching images, projecting them onto the model
// canvas, and rendering detection results.
//
// All operations work with standard Go image.Image types and use a
// coordinate system where (0,0) is at the top-left corner, X increases
// rightward, and Y increases downward. Regions follow the half-open
// convention: (x1,y1) inclusive, (x2,y2) exclusive.
//
// # Loading
//
// Load decodes PNG, JPEG and GIF files. ImageCache keeps decoded images
// in memory for repeated detections over the same files; it is safe for
// concurrent use. Large images consume memory while cached, so
// long-running processes should Evict or Clear between batches.
//
// # Letterboxing
//
// Letterbox maps an image onto the fixed model canvas described by a
// geometry.PadTransform: scaled to fit, centered, and padded with
// PadColor. The same transform converts region coordinates between the
// two frames, so pixels and boxes always agree.
//
// # Rendering
//
// Annotate draws labeled detection rectangles onto a copy of an image,
// one deterministic color per class. Render additionally encodes the
// result as a base64 PNG for protocol responses, and Save writes any
// image to disk with the format chosen by extension.
package imaging
