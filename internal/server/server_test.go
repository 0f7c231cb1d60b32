package server

import (
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"

	"github.com/ironsheep/rcnn-detect/internal/classify"
	"github.com/ironsheep/rcnn-detect/internal/detect"
	"github.com/ironsheep/rcnn-detect/internal/geometry"
	"github.com/ironsheep/rcnn-detect/internal/nms"
	"github.com/ironsheep/rcnn-detect/internal/proposal"
)

// fixedSegmenter proposes the same regions for every image.
type fixedSegmenter struct {
	boxes []geometry.Box
}

func (f fixedSegmenter) Segment(_ image.Image) []geometry.Box {
	return f.boxes
}

// newTestServer builds a server whose detector proposes one fixed region
// and scores it as "orange" with high confidence.
func newTestServer(t *testing.T) *Server {
	t.Helper()

	params := proposal.Params{
		Capacity:       5,
		ResizeDim:      200,
		MinDimRel:      0.04,
		MaxDimRel:      0.4,
		MaxAspectRatio: 4.0,
		CanvasWidth:    200,
		CanvasHeight:   200,
	}
	seg := fixedSegmenter{boxes: []geometry.Box{{X1: 20, Y1: 20, X2: 60, Y2: 60}}}
	proposer, err := proposal.New(params, seg)
	if err != nil {
		t.Fatalf("proposal.New() error = %v", err)
	}

	classifier := classify.Func(func(in *classify.Input) (*classify.ScoreMatrix, error) {
		rows := make([][]float32, len(in.Regions))
		for i := range rows {
			if i == 0 {
				rows[i] = []float32{0, 1, 6}
			} else {
				rows[i] = []float32{5, 0, 0}
			}
		}
		return classify.NewScoreMatrix(rows)
	})

	detector, err := detect.New(detect.Options{
		Proposer:   proposer,
		Classifier: classifier,
		Labels:     []string{"__background__", "thing", "orange"},
		NMS:        nms.Options{IoUThreshold: 0.1, IgnoreBackground: true},
	})
	if err != nil {
		t.Fatalf("detect.New() error = %v", err)
	}

	srv, err := New(Options{Detector: detector, Workers: 2, Version: "test"})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return srv
}

// writeTestImage writes a 100x100 white PNG into dir and returns its path.
func writeTestImage(t *testing.T, dir, name string) string {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, 100, 100))
	for y := 0; y < 100; y++ {
		for x := 0; x < 100; x++ {
			img.Set(x, y, color.RGBA{R: 255, G: 255, B: 255, A: 255})
		}
	}

	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("Failed to create %s: %v", path, err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatalf("Failed to encode %s: %v", path, err)
	}
	return path
}

// mustParams marshals v into a raw params payload.
func mustParams(t *testing.T, v interface{}) json.RawMessage {
	t.Helper()
	b, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("Failed to marshal params: %v", err)
	}
	return b
}

func TestNew(t *testing.T) {
	srv := newTestServer(t)
	if srv.cache == nil {
		t.Fatal("New() did not initialize cache")
	}
	if srv.workers != 2 {
		t.Errorf("workers: got %d, want 2", srv.workers)
	}
	if srv.version != "test" {
		t.Errorf("version: got %s, want test", srv.version)
	}
}

func TestNew_Defaults(t *testing.T) {
	srv := newTestServer(t)

	defaulted, err := New(Options{Detector: srv.detector})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if defaulted.workers != 4 {
		t.Errorf("workers: got %d, want 4", defaulted.workers)
	}
	if defaulted.version != "dev" {
		t.Errorf("version: got %s, want dev", defaulted.version)
	}
	if defaulted.info.Backend != classify.RuntimeBackend {
		t.Errorf("info.Backend: got %s, want %s", defaulted.info.Backend, classify.RuntimeBackend)
	}
	if defaulted.info.Available != classify.RuntimeAvailable {
		t.Errorf("info.Available: got %v, want %v", defaulted.info.Available, classify.RuntimeAvailable)
	}
}

func TestNew_RequiresDetector(t *testing.T) {
	if _, err := New(Options{}); err == nil {
		t.Fatal("New() without a detector should fail")
	}
}

func TestRPCRequest_Unmarshal(t *testing.T) {
	tests := []struct {
		name       string
		json       string
		wantID     interface{}
		wantMethod string
	}{
		{
			"string id",
			`{"jsonrpc":"2.0","id":"req-1","method":"labels"}`,
			"req-1",
			"labels",
		},
		{
			"number id",
			`{"jsonrpc":"2.0","id":42,"method":"ping"}`,
			float64(42), // JSON numbers decode as float64
			"ping",
		},
		{
			"null id",
			`{"jsonrpc":"2.0","id":null,"method":"detect"}`,
			nil,
			"detect",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var req RPCRequest
			if err := json.Unmarshal([]byte(tt.json), &req); err != nil {
				t.Fatalf("Failed to unmarshal: %v", err)
			}

			if req.ID != tt.wantID {
				t.Errorf("ID: got %v (%T), want %v (%T)", req.ID, req.ID, tt.wantID, tt.wantID)
			}
			if req.Method != tt.wantMethod {
				t.Errorf("Method: got %s, want %s", req.Method, tt.wantMethod)
			}
			if req.JSONRPC != "2.0" {
				t.Errorf("JSONRPC: got %s, want 2.0", req.JSONRPC)
			}
		})
	}
}

func TestHandleRequest_Ping(t *testing.T) {
	srv := newTestServer(t)
	req := &RPCRequest{
		JSONRPC: "2.0",
		ID:      "ping-1",
		Method:  "ping",
	}

	resp := srv.handleRequest(req)

	if resp == nil {
		t.Fatal("handleRequest returned nil")
	}
	if resp.Error != nil {
		t.Fatalf("Unexpected error: %v", resp.Error)
	}
	if resp.ID != "ping-1" {
		t.Errorf("ID: got %v, want ping-1", resp.ID)
	}
}

func TestHandleRequest_MethodNotFound(t *testing.T) {
	srv := newTestServer(t)
	req := &RPCRequest{
		JSONRPC: "2.0",
		ID:      1,
		Method:  "nonexistent/method",
	}

	resp := srv.handleRequest(req)

	if resp.Error == nil {
		t.Fatal("Expected error for unknown method")
	}
	if resp.Error.Code != -32601 {
		t.Errorf("Error code: got %d, want -32601", resp.Error.Code)
	}
}

func TestHandleRequest_AssignsMissingID(t *testing.T) {
	srv := newTestServer(t)
	req := &RPCRequest{
		JSONRPC: "2.0",
		Method:  "ping",
	}

	resp := srv.handleRequest(req)

	id, ok := resp.ID.(string)
	if !ok || id == "" {
		t.Fatalf("ID: got %v (%T), want generated string", resp.ID, resp.ID)
	}
	if _, err := uuid.Parse(id); err != nil {
		t.Errorf("ID %q is not a valid UUID: %v", id, err)
	}
}
