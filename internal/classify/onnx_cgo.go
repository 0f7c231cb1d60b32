//go:build cgo

package classify

import (
	"fmt"
	"os"
	"sync"

	ort "github.com/yalue/onnxruntime_go"
)

// RuntimeAvailable reports whether this binary carries the native
// inference runtime.
const RuntimeAvailable = true

// RuntimeBackend names the inference backend compiled into this binary.
const RuntimeBackend = "onnxruntime (cgo)"

var (
	ortOnce sync.Once
	ortErr  error
)

// initRuntime initializes the onnxruntime environment once per process.
// The library path of the first caller wins; later values are ignored.
func initRuntime(libraryPath string) error {
	ortOnce.Do(func() {
		if libraryPath != "" {
			ort.SetSharedLibraryPath(libraryPath)
		}
		ortErr = ort.InitializeEnvironment()
	})
	return ortErr
}

// ONNXClassifier scores regions by running the pretrained network
// through onnxruntime. The session binds fixed-shape tensors, so every
// input must carry exactly the configured canvas size and region count.
//
// A classifier owns native resources; call Close when done. Classify is
// safe for concurrent use, serialized on the shared tensors.
type ONNXClassifier struct {
	cfg ONNXConfig

	mu      sync.Mutex
	session *ort.AdvancedSession
	image   *ort.Tensor[float32]
	rois    *ort.Tensor[float32]
	scores  *ort.Tensor[float32]
}

// NewONNXClassifier loads the model at cfg.ModelPath and prepares an
// inference session. Zero config fields fall back to the pretrained
// grocery model's values.
func NewONNXClassifier(cfg ONNXConfig) (*ONNXClassifier, error) {
	cfg = cfg.withDefaults()

	if _, err := os.Stat(cfg.ModelPath); err != nil {
		return nil, fmt.Errorf("model weights unavailable: %w", err)
	}
	if err := initRuntime(cfg.LibraryPath); err != nil {
		return nil, fmt.Errorf("failed to initialize onnxruntime: %w", err)
	}

	imageShape := ort.NewShape(1, 3, int64(cfg.CanvasHeight), int64(cfg.CanvasWidth))
	imageTensor, err := ort.NewTensor(imageShape,
		make([]float32, 3*cfg.CanvasHeight*cfg.CanvasWidth))
	if err != nil {
		return nil, fmt.Errorf("failed to create image tensor: %w", err)
	}

	roisShape := ort.NewShape(1, int64(cfg.Regions), 4)
	roisTensor, err := ort.NewTensor(roisShape, make([]float32, cfg.Regions*4))
	if err != nil {
		imageTensor.Destroy()
		return nil, fmt.Errorf("failed to create region tensor: %w", err)
	}

	scoresShape := ort.NewShape(1, int64(cfg.Regions), int64(cfg.Classes))
	scoresTensor, err := ort.NewEmptyTensor[float32](scoresShape)
	if err != nil {
		imageTensor.Destroy()
		roisTensor.Destroy()
		return nil, fmt.Errorf("failed to create score tensor: %w", err)
	}

	session, err := ort.NewAdvancedSession(
		cfg.ModelPath,
		[]string{cfg.ImageInput, cfg.RoisInput},
		[]string{cfg.ScoresOutput},
		[]ort.ArbitraryTensor{imageTensor, roisTensor},
		[]ort.ArbitraryTensor{scoresTensor},
		nil,
	)
	if err != nil {
		imageTensor.Destroy()
		roisTensor.Destroy()
		scoresTensor.Destroy()
		return nil, fmt.Errorf("failed to create inference session: %w", err)
	}

	return &ONNXClassifier{
		cfg:     cfg,
		session: session,
		image:   imageTensor,
		rois:    roisTensor,
		scores:  scoresTensor,
	}, nil
}

// Classify runs one inference pass and returns the per-region score
// rows, padding slots included.
func (c *ONNXClassifier) Classify(in *Input) (*ScoreMatrix, error) {
	if in == nil || in.Image == nil {
		return nil, fmt.Errorf("classify input has no image")
	}
	bounds := in.Image.Bounds()
	if bounds.Dx() != c.cfg.CanvasWidth || bounds.Dy() != c.cfg.CanvasHeight {
		return nil, fmt.Errorf("image is %dx%d, model canvas is %dx%d",
			bounds.Dx(), bounds.Dy(), c.cfg.CanvasWidth, c.cfg.CanvasHeight)
	}
	if len(in.Regions) != c.cfg.Regions {
		return nil, fmt.Errorf("got %d regions, model expects %d",
			len(in.Regions), c.cfg.Regions)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.session == nil {
		return nil, fmt.Errorf("classifier is closed")
	}

	c.fillImageTensor(in)
	c.fillRoisTensor(in)

	if err := c.session.Run(); err != nil {
		return nil, fmt.Errorf("inference failed: %w", err)
	}

	// Copy rows out: the output tensor's buffer is rewritten by the
	// next Run.
	out := c.scores.GetData()
	rows := make([][]float32, c.cfg.Regions)
	for i := range rows {
		row := make([]float32, c.cfg.Classes)
		copy(row, out[i*c.cfg.Classes:(i+1)*c.cfg.Classes])
		rows[i] = row
	}
	return NewScoreMatrix(rows)
}

// fillImageTensor writes the image as mean-subtracted planar RGB.
func (c *ONNXClassifier) fillImageTensor(in *Input) {
	data := c.image.GetData()
	bounds := in.Image.Bounds()
	plane := c.cfg.CanvasWidth * c.cfg.CanvasHeight

	idx := 0
	for y := 0; y < c.cfg.CanvasHeight; y++ {
		for x := 0; x < c.cfg.CanvasWidth; x++ {
			r, g, b, _ := in.Image.At(bounds.Min.X+x, bounds.Min.Y+y).RGBA()
			data[idx] = float32(r>>8) - c.cfg.PixelMean
			data[idx+plane] = float32(g>>8) - c.cfg.PixelMean
			data[idx+2*plane] = float32(b>>8) - c.cfg.PixelMean
			idx++
		}
	}
}

// fillRoisTensor writes the region boxes as canvas-pixel coordinates.
func (c *ONNXClassifier) fillRoisTensor(in *Input) {
	data := c.rois.GetData()
	for i, box := range in.Regions {
		data[i*4+0] = float32(box.X1)
		data[i*4+1] = float32(box.Y1)
		data[i*4+2] = float32(box.X2)
		data[i*4+3] = float32(box.Y2)
	}
}

// Info describes this classifier's backend and model.
func (c *ONNXClassifier) Info() RuntimeInfo {
	return RuntimeInfo{
		Available: true,
		Backend:   RuntimeBackend,
		ModelPath: c.cfg.ModelPath,
		Classes:   c.cfg.Classes,
	}
}

// Close releases the session and its tensors. Safe to call more than
// once.
func (c *ONNXClassifier) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	var firstErr error
	destroy := func(err error) {
		if err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if c.session != nil {
		destroy(c.session.Destroy())
		c.session = nil
	}
	if c.image != nil {
		destroy(c.image.Destroy())
		c.image = nil
	}
	if c.rois != nil {
		destroy(c.rois.Destroy())
		c.rois = nil
	}
	if c.scores != nil {
		destroy(c.scores.Destroy())
		c.scores = nil
	}
	return firstErr
}
