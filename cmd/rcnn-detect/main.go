package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/ironsheep/rcnn-detect/internal/classify"
	"github.com/ironsheep/rcnn-detect/internal/config"
	"github.com/ironsheep/rcnn-detect/internal/detect"
	"github.com/ironsheep/rcnn-detect/internal/imaging"
	"github.com/ironsheep/rcnn-detect/internal/proposal"
	"github.com/ironsheep/rcnn-detect/internal/server"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	// Handle --version and --help before flag parsing
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "--version", "-v", "version":
			fmt.Printf("rcnn-detect %s\n", Version)
			fmt.Printf("  Build time: %s\n", BuildTime)
			fmt.Printf("  Git commit: %s\n", GitCommit)
			return
		case "--help", "-h", "help":
			printUsage()
			return
		}
	}

	var (
		configPath = flag.String("config", "", "YAML configuration file (defaults apply without one)")
		outPath    = flag.String("out", "", "also write an annotated PNG of the detections here")
		serveMode  = flag.Bool("serve", false, "answer line-delimited JSON-RPC requests over stdio")
	)
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "rcnn-detect: %v\n", err)
		os.Exit(1)
	}

	logger, err := newLogger(cfg.Log.Level)
	if err != nil {
		fmt.Fprintf(os.Stderr, "rcnn-detect: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	if !*serveMode && flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "rcnn-detect: expected exactly one image argument, see --help")
		os.Exit(2)
	}

	classifier, detector := buildDetector(cfg, logger)
	defer classifier.Close()

	if *serveMode {
		runServe(cfg, detector, classifier, logger)
		return
	}
	runOnce(flag.Arg(0), *outPath, detector, logger)
}

// newLogger builds the process logger at the configured level. Logs go
// to stderr; stdout carries detection output and the serve protocol.
func newLogger(level string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q", level)
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	return cfg.Build()
}

// buildDetector fetches the model weights if they are missing and
// assembles the detection pipeline around them.
func buildDetector(cfg *config.Config, logger *zap.Logger) (*classify.ONNXClassifier, *detect.Detector) {
	downloaded, err := classify.EnsureModel(cfg.Model.Path, cfg.Model.URL)
	if err != nil {
		logger.Fatal("model weights unavailable", zap.Error(err))
	}
	if downloaded {
		logger.Info("downloaded model weights",
			zap.String("path", cfg.Model.Path),
			zap.String("url", cfg.Model.URL))
	}

	classifier, err := classify.NewONNXClassifier(cfg.ONNXConfig())
	if err != nil {
		logger.Fatal("classifier unavailable", zap.Error(err))
	}

	proposer, err := proposal.New(cfg.ProposalParams(), nil)
	if err != nil {
		logger.Fatal("invalid proposal parameters", zap.Error(err))
	}

	detector, err := detect.New(detect.Options{
		Proposer:   proposer,
		Classifier: classifier,
		Labels:     cfg.Labels(),
		NMS:        cfg.NMSOptions(),
		Logger:     logger.Named("detect"),
	})
	if err != nil {
		logger.Fatal("detector assembly failed", zap.Error(err))
	}

	return classifier, detector
}

// runOnce detects objects in a single image and prints the result as
// JSON on stdout.
func runOnce(imagePath, outPath string, detector *detect.Detector, logger *zap.Logger) {
	img, err := imaging.Load(imagePath)
	if err != nil {
		logger.Fatal("cannot load image", zap.String("path", imagePath), zap.Error(err))
	}

	result, err := detector.Detect(img)
	if err != nil {
		logger.Fatal("detection failed", zap.String("path", imagePath), zap.Error(err))
	}

	if outPath != "" {
		annotated := imaging.Annotate(img, detect.Annotations(result.Detections))
		if err := imaging.Save(annotated, outPath); err != nil {
			logger.Fatal("cannot write annotated image",
				zap.String("path", outPath), zap.Error(err))
		}
		logger.Info("wrote annotated image",
			zap.String("path", outPath),
			zap.Int("detections", len(result.Detections)))
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(result); err != nil {
		logger.Fatal("cannot encode result", zap.Error(err))
	}
}

// runServe answers JSON-RPC requests over stdio until stdin closes.
func runServe(cfg *config.Config, detector *detect.Detector, classifier *classify.ONNXClassifier, logger *zap.Logger) {
	srv, err := server.New(server.Options{
		Detector: detector,
		Workers:  cfg.Server.Workers,
		Info:     classifier.Info(),
		Version:  Version,
		Logger:   logger.Named("server"),
	})
	if err != nil {
		logger.Fatal("server init failed", zap.Error(err))
	}

	logger.Info("serving detection requests",
		zap.String("version", Version),
		zap.Int("workers", cfg.Server.Workers))
	if err := srv.Run(); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}

func printUsage() {
	fmt.Println("rcnn-detect - region-proposal object detection on single images")
	fmt.Println()
	fmt.Println("Usage: rcnn-detect [options] <image>")
	fmt.Println("       rcnn-detect -serve")
	fmt.Println()
	fmt.Println("Options:")
	fmt.Println("  -config path     YAML configuration file (defaults apply without one)")
	fmt.Println("  -out path        also write an annotated PNG of the detections")
	fmt.Println("  -serve           answer line-delimited JSON-RPC requests over stdio")
	fmt.Println("  --version, -v    print version information")
	fmt.Println("  --help, -h       print this help message")
	fmt.Println()
	fmt.Println("Any configuration key can be overridden through the environment,")
	fmt.Println("e.g. RCNN_DETECT_LOG_LEVEL=debug or RCNN_DETECT_NMS_IOU_THRESHOLD=0.3.")
	fmt.Println()
	fmt.Println("Detections are printed to stdout as JSON; logs go to stderr. Missing")
	fmt.Println("model weights are downloaded from model.url on first use.")
}
