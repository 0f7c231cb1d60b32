package classify

// ONNXConfig locates the model and names its graph bindings. Zero
// fields fall back to the pretrained grocery model's values.
type ONNXConfig struct {
	// ModelPath is the .onnx weights file on disk. See EnsureModel for
	// the download bootstrap.
	ModelPath string `json:"model_path"`

	// LibraryPath optionally overrides where the onnxruntime shared
	// library is loaded from. Empty means the runtime's default lookup.
	LibraryPath string `json:"library_path,omitempty"`

	// ImageInput, RoisInput and ScoresOutput name the graph tensors the
	// session binds to.
	ImageInput   string `json:"image_input"`
	RoisInput    string `json:"rois_input"`
	ScoresOutput string `json:"scores_output"`

	// CanvasWidth and CanvasHeight are the image tensor dimensions. The
	// input image must match them exactly.
	CanvasWidth  int `json:"canvas_width"`
	CanvasHeight int `json:"canvas_height"`

	// Regions is the fixed region slot count per image and Classes the
	// score columns per region.
	Regions int `json:"regions"`
	Classes int `json:"classes"`

	// PixelMean is subtracted from every channel value before inference.
	PixelMean float32 `json:"pixel_mean"`
}

// DefaultONNXConfig returns the configuration of the pretrained grocery
// model: a 1000x1000 canvas, 100 region slots, 17 classes, and mean 114
// pixel normalization.
func DefaultONNXConfig() ONNXConfig {
	return ONNXConfig{
		ModelPath:    "models/grocery-frcnn.onnx",
		ImageInput:   "image",
		RoisInput:    "rois",
		ScoresOutput: "scores",
		CanvasWidth:  1000,
		CanvasHeight: 1000,
		Regions:      100,
		Classes:      17,
		PixelMean:    114,
	}
}

// withDefaults fills zero fields from DefaultONNXConfig.
func (c ONNXConfig) withDefaults() ONNXConfig {
	def := DefaultONNXConfig()
	if c.ModelPath == "" {
		c.ModelPath = def.ModelPath
	}
	if c.ImageInput == "" {
		c.ImageInput = def.ImageInput
	}
	if c.RoisInput == "" {
		c.RoisInput = def.RoisInput
	}
	if c.ScoresOutput == "" {
		c.ScoresOutput = def.ScoresOutput
	}
	if c.CanvasWidth <= 0 {
		c.CanvasWidth = def.CanvasWidth
	}
	if c.CanvasHeight <= 0 {
		c.CanvasHeight = def.CanvasHeight
	}
	if c.Regions <= 0 {
		c.Regions = def.Regions
	}
	if c.Classes <= 0 {
		c.Classes = def.Classes
	}
	if c.PixelMean == 0 {
		c.PixelMean = def.PixelMean
	}
	return c
}

// RuntimeInfo describes the inference backend compiled into this binary.
type RuntimeInfo struct {
	Available bool   `json:"available"`
	Backend   string `json:"backend"`
	ModelPath string `json:"model_path,omitempty"`
	Classes   int    `json:"classes,omitempty"`
	Error     string `json:"error,omitempty"`
}
