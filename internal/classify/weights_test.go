package classify

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
)

func TestEnsureModel_DownloadsWhenMissing(t *testing.T) {
	payload := []byte("model-bytes")
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write(payload)
	}))
	defer srv.Close()

	dir := t.TempDir()
	path := filepath.Join(dir, "model.onnx")

	downloaded, err := EnsureModel(path, srv.URL)
	if err != nil {
		t.Fatalf("EnsureModel() error = %v", err)
	}
	if !downloaded {
		t.Error("EnsureModel() downloaded = false, want true")
	}

	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading model: %v", err)
	}
	if string(got) != string(payload) {
		t.Errorf("model content = %q, want %q", got, payload)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("reading dir: %v", err)
	}
	if len(entries) != 1 {
		t.Errorf("directory has %d entries, want just the model", len(entries))
	}
}

func TestEnsureModel_ExistingFileSkipsDownload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "model.onnx")
	if err := os.WriteFile(path, []byte("already here"), 0644); err != nil {
		t.Fatal(err)
	}

	// No URL: a download attempt would fail, proving none happens.
	downloaded, err := EnsureModel(path, "")
	if err != nil {
		t.Fatalf("EnsureModel() error = %v", err)
	}
	if downloaded {
		t.Error("EnsureModel() downloaded = true, want false")
	}

	got, _ := os.ReadFile(path)
	if string(got) != "already here" {
		t.Errorf("model content = %q, existing file was touched", got)
	}
}

func TestEnsureModel_MissingWithNoURL(t *testing.T) {
	path := filepath.Join(t.TempDir(), "model.onnx")

	if _, err := EnsureModel(path, ""); err == nil {
		t.Error("EnsureModel() expected error")
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("EnsureModel() created a file despite failing")
	}
}

func TestEnsureModel_ServerErrorLeavesNothing(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "gone", http.StatusInternalServerError)
	}))
	defer srv.Close()

	dir := t.TempDir()
	path := filepath.Join(dir, "model.onnx")

	if _, err := EnsureModel(path, srv.URL); err == nil {
		t.Error("EnsureModel() expected error")
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("reading dir: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("directory has %d leftover entries, want none", len(entries))
	}
}

func TestEnsureModel_UnreachableServer(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	path := filepath.Join(t.TempDir(), "model.onnx")
	if _, err := EnsureModel(path, url); err == nil {
		t.Error("EnsureModel() expected error")
	}
}

func TestEnsureModel_PathIsDirectory(t *testing.T) {
	dir := t.TempDir()

	if _, err := EnsureModel(dir, "http://unused.example"); err == nil {
		t.Error("EnsureModel() expected error for directory path")
	}
}
