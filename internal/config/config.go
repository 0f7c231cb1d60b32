package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
	"go.uber.org/zap/zapcore"

	"github.com/ironsheep/rcnn-detect/internal/classify"
	"github.com/ironsheep/rcnn-detect/internal/nms"
	"github.com/ironsheep/rcnn-detect/internal/proposal"
)

// DefaultModelURL is where the pretrained grocery model is fetched from
// when the weights file is missing.
const DefaultModelURL = "https://www.cntk.ai/Models/FRCN_Grocery/Fast-RCNN.model.onnx"

// Config is the full runtime configuration.
type Config struct {
	Log      LogConfig      `mapstructure:"log"`
	Model    ModelConfig    `mapstructure:"model"`
	Proposal ProposalConfig `mapstructure:"proposal"`
	NMS      NMSConfig      `mapstructure:"nms"`
	Server   ServerConfig   `mapstructure:"server"`
}

// LogConfig controls diagnostic output.
type LogConfig struct {
	// Level is the minimum level logged: debug, info, warn or error.
	Level string `mapstructure:"level"`
}

// ModelConfig locates the classifier model and names its bindings.
type ModelConfig struct {
	Path         string  `mapstructure:"path"`
	URL          string  `mapstructure:"url"`
	LibraryPath  string  `mapstructure:"library_path"`
	ImageInput   string  `mapstructure:"image_input"`
	RoisInput    string  `mapstructure:"rois_input"`
	ScoresOutput string  `mapstructure:"scores_output"`
	Classes      int     `mapstructure:"classes"`
	PixelMean    float64 `mapstructure:"pixel_mean"`

	// Labels optionally names the classes, index-aligned with the score
	// columns. Empty selects the pretrained grocery names when Classes
	// matches them, generic class_N names otherwise.
	Labels []string `mapstructure:"labels"`
}

// ProposalConfig tunes region proposal generation.
type ProposalConfig struct {
	Capacity       int       `mapstructure:"capacity"`
	ResizeDim      int       `mapstructure:"resize_dim"`
	CanvasWidth    int       `mapstructure:"canvas_width"`
	CanvasHeight   int       `mapstructure:"canvas_height"`
	SegmentScale   float64   `mapstructure:"segment_scale"`
	SegmentSigma   float64   `mapstructure:"segment_sigma"`
	SegmentMinSize int       `mapstructure:"segment_min_size"`
	GridScales     int       `mapstructure:"grid_scales"`
	GridAspects    []float64 `mapstructure:"grid_aspects"`
	MinDimRel      float64   `mapstructure:"min_dim_rel"`
	MaxDimRel      float64   `mapstructure:"max_dim_rel"`
	MaxAspectRatio float64   `mapstructure:"max_aspect_ratio"`
}

// NMSConfig tunes non-maximum suppression.
type NMSConfig struct {
	IoUThreshold     float64 `mapstructure:"iou_threshold"`
	IgnoreBackground bool    `mapstructure:"ignore_background"`
	BackgroundClass  int     `mapstructure:"background_class"`
	MinScore         float64 `mapstructure:"min_score"`
}

// ServerConfig tunes serve mode.
type ServerConfig struct {
	// Workers bounds concurrent detections in batch requests.
	Workers int `mapstructure:"workers"`
}

// Load builds the configuration from defaults, the optional YAML file at
// path, and environment variables.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("RCNN_DETECT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// setDefaults seeds every key from the pipeline packages so the
// authoritative constants live in one place.
func setDefaults(v *viper.Viper) {
	pp := proposal.DefaultParams()
	no := nms.DefaultOptions()
	oc := classify.DefaultONNXConfig()

	v.SetDefault("log.level", "info")

	v.SetDefault("model.path", oc.ModelPath)
	v.SetDefault("model.url", DefaultModelURL)
	v.SetDefault("model.library_path", "")
	v.SetDefault("model.image_input", oc.ImageInput)
	v.SetDefault("model.rois_input", oc.RoisInput)
	v.SetDefault("model.scores_output", oc.ScoresOutput)
	v.SetDefault("model.classes", oc.Classes)
	v.SetDefault("model.pixel_mean", float64(oc.PixelMean))
	v.SetDefault("model.labels", []string{})

	v.SetDefault("proposal.capacity", pp.Capacity)
	v.SetDefault("proposal.resize_dim", pp.ResizeDim)
	v.SetDefault("proposal.canvas_width", pp.CanvasWidth)
	v.SetDefault("proposal.canvas_height", pp.CanvasHeight)
	v.SetDefault("proposal.segment_scale", pp.Segment.Scale)
	v.SetDefault("proposal.segment_sigma", pp.Segment.Sigma)
	v.SetDefault("proposal.segment_min_size", pp.Segment.MinSize)
	v.SetDefault("proposal.grid_scales", pp.Grid.Scales)
	v.SetDefault("proposal.grid_aspects", pp.Grid.AspectRatios)
	v.SetDefault("proposal.min_dim_rel", pp.MinDimRel)
	v.SetDefault("proposal.max_dim_rel", pp.MaxDimRel)
	v.SetDefault("proposal.max_aspect_ratio", pp.MaxAspectRatio)

	v.SetDefault("nms.iou_threshold", no.IoUThreshold)
	v.SetDefault("nms.ignore_background", no.IgnoreBackground)
	v.SetDefault("nms.background_class", no.BackgroundClass)
	v.SetDefault("nms.min_score", no.MinScore)

	v.SetDefault("server.workers", 4)
}

// Validate rejects configurations the pipeline cannot run with.
func (c *Config) Validate() error {
	if _, err := zapcore.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("invalid log level %q", c.Log.Level)
	}
	if c.Proposal.Capacity <= 0 {
		return fmt.Errorf("proposal.capacity must be positive, got %d", c.Proposal.Capacity)
	}
	if c.Proposal.ResizeDim <= 0 {
		return fmt.Errorf("proposal.resize_dim must be positive, got %d", c.Proposal.ResizeDim)
	}
	if c.Proposal.CanvasWidth <= 0 || c.Proposal.CanvasHeight <= 0 {
		return fmt.Errorf("proposal canvas must be positive, got %dx%d",
			c.Proposal.CanvasWidth, c.Proposal.CanvasHeight)
	}
	if c.NMS.IoUThreshold < 0 || c.NMS.IoUThreshold > 1 {
		return fmt.Errorf("nms.iou_threshold must be in [0,1], got %v", c.NMS.IoUThreshold)
	}
	if c.NMS.MinScore < 0 || c.NMS.MinScore > 1 {
		return fmt.Errorf("nms.min_score must be in [0,1], got %v", c.NMS.MinScore)
	}
	if c.Model.Classes <= 0 {
		return fmt.Errorf("model.classes must be positive, got %d", c.Model.Classes)
	}
	if n := len(c.Model.Labels); n > 0 && n != c.Model.Classes {
		return fmt.Errorf("model.labels has %d names for %d classes", n, c.Model.Classes)
	}
	if c.Server.Workers <= 0 {
		return fmt.Errorf("server.workers must be positive, got %d", c.Server.Workers)
	}
	return nil
}

// ProposalParams translates the proposal section.
func (c *Config) ProposalParams() proposal.Params {
	return proposal.Params{
		Capacity:  c.Proposal.Capacity,
		ResizeDim: c.Proposal.ResizeDim,
		Segment: proposal.SegmentParams{
			Scale:   c.Proposal.SegmentScale,
			Sigma:   c.Proposal.SegmentSigma,
			MinSize: c.Proposal.SegmentMinSize,
		},
		Grid: proposal.GridParams{
			Scales:       c.Proposal.GridScales,
			AspectRatios: c.Proposal.GridAspects,
		},
		MinDimRel:      c.Proposal.MinDimRel,
		MaxDimRel:      c.Proposal.MaxDimRel,
		MaxAspectRatio: c.Proposal.MaxAspectRatio,
		CanvasWidth:    c.Proposal.CanvasWidth,
		CanvasHeight:   c.Proposal.CanvasHeight,
	}
}

// Labels returns the class names the detector should report, one per
// score column.
func (c *Config) Labels() []string {
	if len(c.Model.Labels) > 0 {
		return c.Model.Labels
	}
	if def := classify.DefaultLabels(); c.Model.Classes == len(def) {
		return def
	}
	labels := make([]string, c.Model.Classes)
	for i := range labels {
		labels[i] = fmt.Sprintf("class_%d", i)
	}
	return labels
}

// NMSOptions translates the nms section.
func (c *Config) NMSOptions() nms.Options {
	return nms.Options{
		IoUThreshold:     c.NMS.IoUThreshold,
		IgnoreBackground: c.NMS.IgnoreBackground,
		BackgroundClass:  c.NMS.BackgroundClass,
		MinScore:         c.NMS.MinScore,
	}
}

// ONNXConfig translates the model section. The canvas dimensions and
// region count come from the proposal section so the classifier and the
// proposer always agree.
func (c *Config) ONNXConfig() classify.ONNXConfig {
	return classify.ONNXConfig{
		ModelPath:    c.Model.Path,
		LibraryPath:  c.Model.LibraryPath,
		ImageInput:   c.Model.ImageInput,
		RoisInput:    c.Model.RoisInput,
		ScoresOutput: c.Model.ScoresOutput,
		CanvasWidth:  c.Proposal.CanvasWidth,
		CanvasHeight: c.Proposal.CanvasHeight,
		Regions:      c.Proposal.Capacity,
		Classes:      c.Model.Classes,
		PixelMean:    float32(c.Model.PixelMean),
	}
}
