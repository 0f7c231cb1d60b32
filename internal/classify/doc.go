// Package classify scores region proposals against the detector's class
// set.
//
// The package defines the classifier boundary used by the detection
// pipeline: a Classifier receives one model-canvas image together with
// its fixed-size slice of region boxes and returns a ScoreMatrix with
// one row of per-class scores for every region slot, padded slots
// included. Downstream code decides which rows matter.
//
// # Backends
//
// The production backend is ONNXClassifier, which runs the pretrained
// network through the ONNX runtime. It needs cgo and the onnxruntime
// shared library at run time; binaries built without cgo still compile
// and fail with a descriptive error when the classifier is constructed.
// RuntimeAvailable reports which variant is linked in.
//
// Tests and callers that want custom scoring wire a Func instead.
//
// # Model Weights
//
// EnsureModel bootstraps the weights file: if the configured path is
// missing it downloads the model from the configured URL, writing
// through a temporary file so a failed transfer never leaves a partial
// model behind.
package classify
