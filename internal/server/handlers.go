package server

import (
	"encoding/json"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/ironsheep/rcnn-detect/internal/detect"
	"github.com/ironsheep/rcnn-detect/internal/imaging"
)

// DetectParams are the parameters of a detect request.
type DetectParams struct {
	// Path is the image file to analyze.
	Path string `json:"path"`

	// Annotate requests a base64 PNG with the detections drawn in.
	Annotate bool `json:"annotate"`
}

// DetectBatchParams are the parameters of a detect_batch request.
type DetectBatchParams struct {
	Paths    []string `json:"paths"`
	Annotate bool     `json:"annotate"`
}

// DetectResult is the per-image payload of detect and detect_batch
// responses. In a batch, a failed image carries Error instead of
// Result so the other images still come back.
type DetectResult struct {
	Path     string                `json:"path"`
	Result   *detect.Result        `json:"result,omitempty"`
	Rendered *imaging.RenderResult `json:"rendered,omitempty"`
	Error    string                `json:"error,omitempty"`
}

// handleDetect runs the pipeline on a single image.
func (s *Server) handleDetect(req *RPCRequest) *RPCResponse {
	var params DetectParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.errorResponse(req.ID, -32602, "Invalid params", err.Error())
	}
	if params.Path == "" {
		return s.errorResponse(req.ID, -32602, "Invalid params", "path is required")
	}

	result, err := s.detectOne(params.Path, params.Annotate)
	if err != nil {
		return s.errorResponse(req.ID, -32000, "Detection failed", err.Error())
	}

	return &RPCResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result:  result,
	}
}

// handleDetectBatch fans a list of images out across the worker pool.
func (s *Server) handleDetectBatch(req *RPCRequest) *RPCResponse {
	var params DetectBatchParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.errorResponse(req.ID, -32602, "Invalid params", err.Error())
	}
	if len(params.Paths) == 0 {
		return s.errorResponse(req.ID, -32602, "Invalid params", "paths must not be empty")
	}

	results := s.detectAll(params.Paths, params.Annotate)

	failed := 0
	for i := range results {
		if results[i].Error != "" {
			failed++
		}
	}

	return &RPCResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"results": results,
			"failed":  failed,
		},
	}
}

// handleLabels reports the class names of the loaded model.
func (s *Server) handleLabels(req *RPCRequest) *RPCResponse {
	labels := s.detector.Labels()
	return &RPCResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"labels": labels,
			"count":  len(labels),
		},
	}
}

// handleInfo reports backend and process details.
func (s *Server) handleInfo(req *RPCRequest) *RPCResponse {
	return &RPCResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"name":          "rcnn-detect",
			"version":       s.version,
			"runtime":       s.info,
			"classes":       len(s.detector.Labels()),
			"workers":       s.workers,
			"cached_images": s.cache.Len(),
		},
	}
}

// detectOne loads one image, runs the detector, and optionally renders
// the annotated copy.
func (s *Server) detectOne(path string, annotate bool) (*DetectResult, error) {
	img, err := s.cache.Load(path)
	if err != nil {
		return nil, err
	}

	res, err := s.detector.Detect(img)
	if err != nil {
		return nil, err
	}

	out := &DetectResult{Path: path, Result: res}
	if annotate {
		rendered, err := imaging.Render(img, detect.Annotations(res.Detections))
		if err != nil {
			return nil, fmt.Errorf("rendering annotations: %w", err)
		}
		out.Rendered = rendered
	}
	return out, nil
}

// detectAll processes paths on up to s.workers goroutines. Results line
// up index-for-index with paths; a failed image reports its error in
// place rather than aborting the batch.
func (s *Server) detectAll(paths []string, annotate bool) []DetectResult {
	results := make([]DetectResult, len(paths))

	workers := s.workers
	if workers > len(paths) {
		workers = len(paths)
	}

	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				res, err := s.detectOne(paths[i], annotate)
				if err != nil {
					s.log.Warn("batch item failed",
						zap.String("path", paths[i]),
						zap.Error(err))
					results[i] = DetectResult{Path: paths[i], Error: err.Error()}
					continue
				}
				results[i] = *res
			}
		}()
	}

	for i := range paths {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	return results
}
