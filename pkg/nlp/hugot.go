package nlp

// hugot.go - Transformer-backed part-of-speech tagging using Hugot/ONNX
//
// This provides model-quality POS tags without a Python runtime. The
// pipeline runs a token-classification model trained on universal POS
// labels; tokenization, sentence segmentation and dependency attachment
// reuse the rule-based machinery so annotations look identical to the
// Tagger's regardless of backend.
//
// Architecture:
// - ONNX Runtime via Hugot when the shared library is present
// - Pure Go backend as a slower fallback
// - Auto-downloads the model on first use if enabled

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/knights-analytics/hugot"
	"github.com/knights-analytics/hugot/options"
	"github.com/knights-analytics/hugot/pipelines"
)

// POS model constants
const (
	// POSModelBERT is a compact English universal-POS tagger (~110MB).
	POSModelBERT = "vblagoje/bert-english-uncased-finetuned-pos"

	// DefaultPOSModelPath is the default location for the POS model.
	DefaultPOSModelPath = "./models/bert-english-pos"
)

// HugotAnalyzer tags parts of speech with an ONNX token-classification
// model. Safe for use from a single goroutine per the engine's model;
// the internal mutex only guards initialization against Close.
type HugotAnalyzer struct {
	session  *hugot.Session
	pipeline *pipelines.TokenClassificationPipeline
	mu       sync.RWMutex
	ready    bool
	config   HugotAnalyzerConfig
}

// HugotAnalyzerConfig configures the transformer analyzer.
type HugotAnalyzerConfig struct {
	ModelPath       string
	ModelName       string
	OnnxLibraryPath string
	Timeout         time.Duration
}

// DefaultHugotAnalyzerConfig returns a default configuration using the
// BERT universal-POS model.
func DefaultHugotAnalyzerConfig() HugotAnalyzerConfig {
	return HugotAnalyzerConfig{
		ModelPath:       DefaultPOSModelPath,
		ModelName:       POSModelBERT,
		OnnxLibraryPath: getDefaultOnnxPath(),
		Timeout:         30 * time.Second,
	}
}

// NewHugotAnalyzer creates a transformer-backed analyzer. The model is
// loaded eagerly; a missing model surfaces as an error here rather than
// on the first Annotate call.
func NewHugotAnalyzer(cfg HugotAnalyzerConfig) (*HugotAnalyzer, error) {
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}

	analyzer := &HugotAnalyzer{config: cfg}
	if err := analyzer.initialize(); err != nil {
		return nil, fmt.Errorf("pos analyzer initialization failed: %w", err)
	}
	return analyzer, nil
}

// AutoDetectHugotAnalyzerConfig searches for an installed POS model.
// Returns nil when none is available and auto-download is disabled.
func AutoDetectHugotAnalyzerConfig() *HugotAnalyzerConfig {
	// Check environment variable first
	if envPath := os.Getenv("UNSMARTEN_POS_MODEL_PATH"); envPath != "" {
		if _, err := os.Stat(filepath.Join(envPath, "model.onnx")); err == nil {
			log.Printf("Using POS model from UNSMARTEN_POS_MODEL_PATH: %s", envPath)
			return &HugotAnalyzerConfig{
				ModelPath:       envPath,
				OnnxLibraryPath: getDefaultOnnxPath(),
				Timeout:         30 * time.Second,
			}
		}
	}

	if _, err := os.Stat(filepath.Join(DefaultPOSModelPath, "model.onnx")); err == nil {
		log.Printf("Auto-detected POS model: %s", POSModelBERT)
		cfg := DefaultHugotAnalyzerConfig()
		return &cfg
	}

	autoDownload := os.Getenv("UNSMARTEN_AUTO_DOWNLOAD_MODEL")
	if autoDownload == "true" || autoDownload == "1" {
		log.Printf("No POS model found. Auto-downloading %s (~110MB)...", POSModelBERT)
		if err := EnsurePOSModelDownloaded(DefaultPOSModelPath); err != nil {
			log.Printf("POS model auto-download failed: %v", err)
			return nil
		}
		cfg := DefaultHugotAnalyzerConfig()
		return &cfg
	}

	return nil
}

// initialize sets up the ONNX session and pipeline.
func (h *HugotAnalyzer) initialize() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	session, err := h.createSession()
	if err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}
	h.session = session

	if h.config.ModelPath == "" {
		return fmt.Errorf("no model path specified")
	}
	if _, err := os.Stat(h.config.ModelPath); err != nil {
		return fmt.Errorf("model path does not exist: %s", h.config.ModelPath)
	}

	config := hugot.TokenClassificationConfig{
		ModelPath: h.config.ModelPath,
		Name:      "pos-tagger",
	}

	pipeline, err := hugot.NewPipeline(session, config)
	if err != nil {
		_ = h.session.Destroy() // already returning an error
		return fmt.Errorf("failed to create pos pipeline: %w", err)
	}

	h.pipeline = pipeline
	h.ready = true
	log.Printf("POS analyzer initialized (model: %s)", h.config.ModelPath)
	return nil
}

// createSession creates the Hugot session, preferring ONNX Runtime.
func (h *HugotAnalyzer) createSession() (*hugot.Session, error) {
	if h.config.OnnxLibraryPath != "" {
		opts := []options.WithOption{
			options.WithOnnxLibraryPath(h.config.OnnxLibraryPath),
		}
		session, err := hugot.NewORTSession(opts...)
		if err == nil {
			log.Printf("POS analyzer using ONNX Runtime backend")
			return session, nil
		}
		log.Printf("ONNX Runtime unavailable for POS tagging, falling back to Go backend: %v", err)
	}

	session, err := hugot.NewGoSession()
	if err != nil {
		return nil, fmt.Errorf("failed to create Go session: %w", err)
	}
	log.Printf("POS analyzer using pure Go backend (slower, consider installing ONNX Runtime)")
	return session, nil
}

// IsReady returns true if the analyzer can serve Annotate calls.
func (h *HugotAnalyzer) IsReady() bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.ready
}

// Annotate implements Analyzer. Token boundaries, sentences and
// dependencies come from the rule machinery; the model supplies POS tags,
// with the suffix heuristics filling any token the model left unlabeled.
func (h *HugotAnalyzer) Annotate(ctx context.Context, text string) ([]Annotation, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if !h.ready || h.pipeline == nil {
		return nil, ErrAnalysisUnavailable
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	tokens := tokenize(text)
	segmentSentences(tokens)

	result, err := h.pipeline.RunPipeline([]string{text})
	if err != nil {
		return nil, fmt.Errorf("pos tagging failed: %w", err)
	}

	var entities []pipelines.Entity
	if len(result.Entities) > 0 {
		entities = result.Entities[0]
	}
	applyModelTags(tokens, entities)

	for i := range tokens {
		if tokens[i].POS == "" {
			tokens[i].POS = tagToken(tokens, i)
		}
	}
	attachDependencies(tokens)
	return tokens, nil
}

// applyModelTags aligns model entities with our tokens by surface form,
// in order. Subword pieces repeat the word they belong to, so the first
// span match wins and later pieces are skipped.
func applyModelTags(tokens []Annotation, entities []pipelines.Entity) {
	next := 0
	for _, entity := range entities {
		label := normalizePOSLabel(entity.Entity)
		if label == "" {
			continue
		}
		word := strings.ToLower(strings.TrimSpace(entity.Word))
		for i := next; i < len(tokens); i++ {
			if strings.ToLower(tokens[i].Text) == word {
				tokens[i].POS = label
				next = i + 1
				break
			}
		}
	}
}

// normalizePOSLabel maps a model label onto our UPOS constants. Labels
// already in the UPOS inventory pass through; anything else is dropped so
// the heuristics can fill the gap.
func normalizePOSLabel(label string) POS {
	candidate := POS(strings.ToUpper(strings.TrimPrefix(strings.TrimPrefix(label, "B-"), "I-")))
	switch candidate {
	case POSAdj, POSAdp, POSAdv, POSAux, POSCconj, POSDet, POSIntj,
		POSNoun, POSNum, POSPart, POSPron, POSPropn, POSPunct,
		POSSconj, POSSym, POSVerb, POSX:
		return candidate
	case "CONJ":
		return POSCconj
	}
	return ""
}

// Close releases the ONNX session.
func (h *HugotAnalyzer) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.ready = false
	if h.session != nil {
		return h.session.Destroy()
	}
	return nil
}

// getDefaultOnnxPath returns the likely ONNX Runtime shared library path
// for the current platform, or "" to use the pure Go backend.
func getDefaultOnnxPath() string {
	candidates := []string{
		os.Getenv("ONNX_LIBRARY_PATH"),
		"/usr/lib/libonnxruntime.so",
		"/usr/local/lib/libonnxruntime.so",
		"/usr/local/lib/libonnxruntime.dylib",
		"/opt/homebrew/lib/libonnxruntime.dylib",
	}
	for _, candidate := range candidates {
		if candidate == "" {
			continue
		}
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}
	return ""
}
