package nlp

// downloader.go - Auto-download the POS model for OSS distribution
//
// Only fetches the minimal files needed for ONNX inference:
// - model.onnx - the ONNX model
// - tokenizer.json - tokenizer vocabulary
// - config.json - model configuration (carries the id2label POS map)
// - tokenizer_config.json - tokenizer configuration
// - special_tokens_map.json - special tokens

import (
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"sync"
)

// HuggingFaceBaseURL is the base URL for model downloads.
const HuggingFaceBaseURL = "https://huggingface.co"

// posModelFiles lists the minimal files needed for ONNX inference.
var posModelFiles = []struct {
	Name     string
	Required bool
	Size     string // human-readable size for progress
}{
	{"model.onnx", true, "110MB"},
	{"tokenizer.json", true, "700KB"},
	{"config.json", true, "1KB"},
	{"tokenizer_config.json", false, "1KB"},
	{"special_tokens_map.json", false, "1KB"},
}

// downloadMutex prevents concurrent downloads of the same model.
var downloadMutex sync.Mutex

// EnsurePOSModelDownloaded checks if the model exists and downloads it if
// not. This is the main entry point for auto-download functionality.
func EnsurePOSModelDownloaded(modelPath string) error {
	if modelPath == "" {
		modelPath = DefaultPOSModelPath
	}

	if POSModelExists(modelPath) {
		return nil
	}

	downloadMutex.Lock()
	defer downloadMutex.Unlock()

	// Double-check after acquiring lock
	if POSModelExists(modelPath) {
		return nil
	}

	log.Printf("POS model not found at %s. Downloading %s...", modelPath, POSModelBERT)
	log.Printf("This is a one-time download (~110MB).")

	return downloadPOSModel(POSModelBERT, modelPath)
}

// POSModelExists checks if a usable ONNX model exists at the given path.
func POSModelExists(modelPath string) bool {
	if _, err := os.Stat(filepath.Join(modelPath, "model.onnx")); err != nil {
		return false
	}
	if _, err := os.Stat(filepath.Join(modelPath, "tokenizer.json")); err != nil {
		return false
	}
	return true
}

// downloadPOSModel downloads a model from HuggingFace to destPath.
func downloadPOSModel(repoID, destPath string) error {
	if err := os.MkdirAll(destPath, 0755); err != nil {
		return fmt.Errorf("failed to create model directory: %w", err)
	}

	baseURL := fmt.Sprintf("%s/%s/resolve/main", HuggingFaceBaseURL, repoID)

	for _, file := range posModelFiles {
		fileURL := fmt.Sprintf("%s/%s", baseURL, file.Name)
		destFile := filepath.Join(destPath, file.Name)

		if _, err := os.Stat(destFile); err == nil {
			log.Printf("  %s (already exists)", file.Name)
			continue
		}

		log.Printf("  downloading %s (%s)...", file.Name, file.Size)
		if err := downloadFile(fileURL, destFile); err != nil {
			if file.Required {
				return fmt.Errorf("failed to download %s: %w", file.Name, err)
			}
			log.Printf("  optional file %s not available: %v", file.Name, err)
		}
	}

	log.Printf("POS model downloaded to %s", destPath)
	return nil
}

// downloadFile downloads a file from url to destPath atomically.
func downloadFile(url, destPath string) error {
	tmpPath := destPath + ".tmp"
	defer func() { _ = os.Remove(tmpPath) }() // clean up on failure

	out, err := os.Create(tmpPath)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer func() { _ = out.Close() }()

	resp, err := http.Get(url) //nolint:gosec // URL is controlled
	if err != nil {
		return fmt.Errorf("HTTP request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("HTTP %d: %s", resp.StatusCode, resp.Status)
	}

	if _, err := io.Copy(out, resp.Body); err != nil {
		return fmt.Errorf("download failed: %w", err)
	}

	// Close before rename (required on Windows)
	_ = out.Close()

	if err := os.Rename(tmpPath, destPath); err != nil {
		return fmt.Errorf("failed to finalize download: %w", err)
	}
	return nil
}
