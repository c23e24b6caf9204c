package nlp

import (
	"context"
	"sync"
)

// The default analyzer is process-wide state with an init-once, no-teardown
// lifecycle: construction is expensive (model load), so it happens lazily
// on first use and the instance is reused for the life of the process.
// Construction failure is sticky; Reset re-arms it for tests or explicit
// operator retry.

var (
	defaultMu       sync.Mutex
	defaultAnalyzer Analyzer
	defaultInit     bool
)

// Default returns the process-wide analyzer, constructing it on first
// call: the transformer backend when a POS model is installed (or
// auto-download is enabled), otherwise the rule-based tagger.
func Default() Analyzer {
	defaultMu.Lock()
	defer defaultMu.Unlock()

	if !defaultInit {
		defaultAnalyzer = buildDefault()
		defaultInit = true
	}
	return defaultAnalyzer
}

func buildDefault() Analyzer {
	if cfg := AutoDetectHugotAnalyzerConfig(); cfg != nil {
		analyzer, err := NewHugotAnalyzer(*cfg)
		if err == nil {
			return analyzer
		}
		// fall through to the rule tagger; failure already logged
	}
	return NewTagger()
}

// SetDefault replaces the process-wide analyzer. Tests use this to force
// a specific backend, including Unavailable() to exercise fallbacks.
func SetDefault(a Analyzer) {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	defaultAnalyzer = a
	defaultInit = true
}

// Reset discards the process-wide analyzer so the next Default call
// constructs it again. This is the only way a failed construction is
// retried.
func Reset() {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	defaultAnalyzer = nil
	defaultInit = false
}

// unavailable always fails with ErrAnalysisUnavailable.
type unavailable struct{}

func (unavailable) Annotate(context.Context, string) ([]Annotation, error) {
	return nil, ErrAnalysisUnavailable
}

// Unavailable returns an analyzer whose every call fails with
// ErrAnalysisUnavailable, for exercising the non-contextual fallback.
func Unavailable() Analyzer {
	return unavailable{}
}
