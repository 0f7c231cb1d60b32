package classify

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
)

// EnsureModel makes sure the weights file exists at path, downloading it
// from url when missing. It reports whether a download happened.
//
// The transfer writes to a temporary file in the destination directory
// and renames it into place only after the full body arrived, so a
// failed or interrupted download never leaves a partial model at path.
func EnsureModel(path, url string) (bool, error) {
	info, err := os.Stat(path)
	if err == nil {
		if info.IsDir() {
			return false, fmt.Errorf("model path %s is a directory", path)
		}
		return false, nil
	}
	if !os.IsNotExist(err) {
		return false, fmt.Errorf("failed to check model path: %w", err)
	}

	if url == "" {
		return false, fmt.Errorf("model weights missing at %s and no download URL configured", path)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return false, fmt.Errorf("failed to create model directory: %w", err)
	}

	resp, err := http.Get(url)
	if err != nil {
		return false, fmt.Errorf("failed to download model weights: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return false, fmt.Errorf("failed to download model weights: %s returned %s", url, resp.Status)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".download-*")
	if err != nil {
		return false, fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := io.Copy(tmp, resp.Body); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return false, fmt.Errorf("failed to write model weights: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return false, fmt.Errorf("failed to write model weights: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return false, fmt.Errorf("failed to move model weights into place: %w", err)
	}
	return true, nil
}
