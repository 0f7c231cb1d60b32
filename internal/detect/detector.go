package detect

import (
	"fmt"
	"image"
	"time"

	"go.uber.org/zap"

	"github.com/ironsheep/rcnn-detect/internal/classify"
	"github.com/ironsheep/rcnn-detect/internal/geometry"
	"github.com/ironsheep/rcnn-detect/internal/imaging"
	"github.com/ironsheep/rcnn-detect/internal/nms"
	"github.com/ironsheep/rcnn-detect/internal/proposal"
)

// Detection is one detected object in original-image pixels.
type Detection struct {
	Box   geometry.Box `json:"box"`
	Class int          `json:"class"`
	Label string       `json:"label"`
	Score float64      `json:"score"`
}

// Result is the outcome of one detection pass over a single image.
type Result struct {
	// Width and Height are the original image dimensions.
	Width  int `json:"width"`
	Height int `json:"height"`

	// Regions is the number of real proposals that were scored.
	Regions int `json:"regions"`

	// Detections are the suppressed, labeled detections.
	Detections []Detection `json:"detections"`

	// ElapsedMS is the wall time of the pass in milliseconds.
	ElapsedMS int64 `json:"elapsed_ms"`
}

// Options assembles a Detector. Proposer and Classifier are required;
// Labels defaults to the pretrained grocery set, NMS to the standard
// suppression settings, and Logger to a no-op logger.
type Options struct {
	Proposer   *proposal.Proposer
	Classifier classify.Classifier
	Labels     []string
	NMS        nms.Options
	Logger     *zap.Logger
}

// Detector runs the detection pipeline. It is safe for concurrent use
// if its classifier is.
type Detector struct {
	proposer   *proposal.Proposer
	classifier classify.Classifier
	labels     []string
	nmsOpts    nms.Options
	log        *zap.Logger
}

// New validates opts and builds a Detector.
func New(opts Options) (*Detector, error) {
	if opts.Proposer == nil {
		return nil, fmt.Errorf("detector needs a proposer")
	}
	if opts.Classifier == nil {
		return nil, fmt.Errorf("detector needs a classifier")
	}

	labels := opts.Labels
	if len(labels) == 0 {
		labels = classify.DefaultLabels()
	}
	nmsOpts := opts.NMS
	if nmsOpts.IoUThreshold == 0 {
		nmsOpts.IoUThreshold = nms.DefaultOptions().IoUThreshold
	}
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}

	return &Detector{
		proposer:   opts.Proposer,
		classifier: opts.Classifier,
		labels:     labels,
		nmsOpts:    nmsOpts,
		log:        log,
	}, nil
}

// Labels returns the class names, index-aligned with detection classes.
func (d *Detector) Labels() []string {
	return d.labels
}

// Detect runs the full pipeline on img.
func (d *Detector) Detect(img image.Image) (*Result, error) {
	start := time.Now()
	bounds := img.Bounds()

	regions, err := d.proposer.Propose(img)
	if err != nil {
		return nil, fmt.Errorf("proposing regions: %w", err)
	}

	canvas, err := imaging.Letterbox(img, regions.Transform)
	if err != nil {
		return nil, fmt.Errorf("preparing model canvas: %w", err)
	}

	scores, err := d.classifier.Classify(&classify.Input{
		Image:   canvas,
		Regions: regions.Model,
	})
	if err != nil {
		return nil, fmt.Errorf("classifying regions: %w", err)
	}
	if scores.Rows() != regions.Capacity {
		return nil, fmt.Errorf("classifier returned %d rows for %d region slots",
			scores.Rows(), regions.Capacity)
	}
	if scores.Classes() != len(d.labels) {
		return nil, fmt.Errorf("classifier returned %d classes for %d labels",
			scores.Classes(), len(d.labels))
	}

	// Each real region contributes its best class; padding slots are
	// scored too but never read.
	candidates := make([]nms.Candidate, 0, regions.PaddingIndex)
	for i := 0; i < regions.PaddingIndex; i++ {
		class, prob := scores.Argmax(i)
		candidates = append(candidates, nms.Candidate{
			Box:   regions.Original[i],
			Class: class,
			Score: prob,
		})
	}

	detections := make([]Detection, 0)
	for _, idx := range nms.Suppress(candidates, d.nmsOpts) {
		c := candidates[idx]
		detections = append(detections, Detection{
			Box:   c.Box,
			Class: c.Class,
			Label: d.label(c.Class),
			Score: c.Score,
		})
	}

	elapsed := time.Since(start)
	d.log.Debug("detection pass complete",
		zap.Int("width", bounds.Dx()),
		zap.Int("height", bounds.Dy()),
		zap.Int("proposals", regions.PaddingIndex),
		zap.Int("detections", len(detections)),
		zap.Duration("elapsed", elapsed))

	return &Result{
		Width:      bounds.Dx(),
		Height:     bounds.Dy(),
		Regions:    regions.PaddingIndex,
		Detections: detections,
		ElapsedMS:  elapsed.Milliseconds(),
	}, nil
}

func (d *Detector) label(class int) string {
	if class >= 0 && class < len(d.labels) {
		return d.labels[class]
	}
	return fmt.Sprintf("class_%d", class)
}

// Annotations converts detections into render annotations.
func Annotations(detections []Detection) []imaging.Annotation {
	anns := make([]imaging.Annotation, len(detections))
	for i, det := range detections {
		anns[i] = imaging.Annotation{
			Box:   det.Box,
			Label: det.Label,
			Score: det.Score,
			Class: det.Class,
		}
	}
	return anns
}
