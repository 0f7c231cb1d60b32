// Package detect assembles the full detection pipeline.
//
// A Detector owns one proposal generator and one classifier and runs
// them end to end for each image: propose regions, letterbox the image
// onto the model canvas, score every region slot, pick each real
// region's best class, and suppress duplicate detections per class.
// Results carry boxes in original-image pixels.
//
// The classifier is a black box behind the classify.Classifier
// interface; the detector only checks that its output shape matches the
// region capacity and the label set.
package detect
