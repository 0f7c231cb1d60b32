//go:build !cgo

package classify

import "fmt"

// RuntimeAvailable reports whether this binary carries the native
// inference runtime.
const RuntimeAvailable = false

// RuntimeBackend names the inference backend compiled into this binary.
const RuntimeBackend = "none (built without cgo)"

// ONNXClassifier is unavailable without cgo. The type exists so callers
// compile in both build modes; constructing one reports the missing
// runtime.
type ONNXClassifier struct {
	cfg ONNXConfig
}

// NewONNXClassifier always fails in builds without cgo.
func NewONNXClassifier(cfg ONNXConfig) (*ONNXClassifier, error) {
	cfg = cfg.withDefaults()
	return nil, fmt.Errorf("classifier for %s requires a cgo build with the onnxruntime library",
		cfg.ModelPath)
}

// Classify always fails in builds without cgo.
func (c *ONNXClassifier) Classify(*Input) (*ScoreMatrix, error) {
	return nil, fmt.Errorf("inference runtime not compiled into this binary")
}

// Info describes the missing backend.
func (c *ONNXClassifier) Info() RuntimeInfo {
	return RuntimeInfo{
		Available: false,
		Backend:   RuntimeBackend,
		Error:     "built without cgo",
	}
}

// Close is a no-op.
func (c *ONNXClassifier) Close() error {
	return nil
}
