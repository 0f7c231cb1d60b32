package server

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ironsheep/rcnn-detect/internal/classify"
	"github.com/ironsheep/rcnn-detect/internal/detect"
	"github.com/ironsheep/rcnn-detect/internal/imaging"
)

// Server answers line-delimited JSON-RPC requests over stdio.
type Server struct {
	detector *detect.Detector
	cache    *imaging.ImageCache
	workers  int
	info     classify.RuntimeInfo
	version  string
	log      *zap.Logger
}

// RPCRequest represents an incoming JSON-RPC request.
type RPCRequest struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      interface{}     `json:"id"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

// RPCResponse represents an outgoing JSON-RPC response.
type RPCResponse struct {
	JSONRPC string      `json:"jsonrpc"`
	ID      interface{} `json:"id"`
	Result  interface{} `json:"result,omitempty"`
	Error   *RPCError   `json:"error,omitempty"`
}

// RPCError represents a JSON-RPC error.
type RPCError struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// Options assembles a Server. Detector is required.
type Options struct {
	// Detector runs the pipeline for detect and detect_batch requests.
	Detector *detect.Detector

	// Workers bounds how many images detect_batch processes at once.
	// Zero means 4.
	Workers int

	// Info describes the inference backend, reported by the info
	// method. The zero value is filled from the compiled-in runtime.
	Info classify.RuntimeInfo

	// Version is reported by the info method. Empty means "dev".
	Version string

	// Logger receives request logs. Nil means no logging.
	Logger *zap.Logger
}

// New creates a server around a detector.
func New(opts Options) (*Server, error) {
	if opts.Detector == nil {
		return nil, fmt.Errorf("server needs a detector")
	}

	workers := opts.Workers
	if workers <= 0 {
		workers = 4
	}
	info := opts.Info
	if info == (classify.RuntimeInfo{}) {
		info = classify.RuntimeInfo{
			Available: classify.RuntimeAvailable,
			Backend:   classify.RuntimeBackend,
		}
	}
	version := opts.Version
	if version == "" {
		version = "dev"
	}
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}

	return &Server{
		detector: opts.Detector,
		cache:    imaging.NewImageCache(),
		workers:  workers,
		info:     info,
		version:  version,
		log:      log,
	}, nil
}

// Run reads requests from stdin and writes responses to stdout until
// stdin closes. Malformed lines are logged and skipped.
func (s *Server) Run() error {
	scanner := bufio.NewScanner(os.Stdin)
	// Increase buffer size for large requests
	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, 1024*1024)

	encoder := json.NewEncoder(os.Stdout)

	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var req RPCRequest
		if err := json.Unmarshal(line, &req); err != nil {
			s.log.Warn("failed to parse request", zap.Error(err))
			continue
		}

		resp := s.handleRequest(&req)
		if err := encoder.Encode(resp); err != nil {
			s.log.Error("failed to encode response", zap.Error(err))
		}
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("reading requests: %w", err)
	}

	return nil
}

// handleRequest routes a request to its handler. Requests arriving
// without an id get a generated one so responses and logs stay
// correlatable.
func (s *Server) handleRequest(req *RPCRequest) *RPCResponse {
	if req.ID == nil {
		req.ID = uuid.NewString()
	}
	s.log.Debug("request",
		zap.Any("id", req.ID),
		zap.String("method", req.Method))

	switch req.Method {
	case "detect":
		return s.handleDetect(req)
	case "detect_batch":
		return s.handleDetectBatch(req)
	case "labels":
		return s.handleLabels(req)
	case "info":
		return s.handleInfo(req)
	case "ping":
		return &RPCResponse{
			JSONRPC: "2.0",
			ID:      req.ID,
			Result:  map[string]interface{}{},
		}
	default:
		return &RPCResponse{
			JSONRPC: "2.0",
			ID:      req.ID,
			Error: &RPCError{
				Code:    -32601,
				Message: fmt.Sprintf("Method not found: %s", req.Method),
			},
		}
	}
}

// errorResponse creates a JSON-RPC error response with the given details.
func (s *Server) errorResponse(id interface{}, code int, message, data string) *RPCResponse {
	return &RPCResponse{
		JSONRPC: "2.0",
		ID:      id,
		Error: &RPCError{
			Code:    code,
			Message: message,
			Data:    data,
		},
	}
}
