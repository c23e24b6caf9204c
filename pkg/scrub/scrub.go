// Package scrub implements the text normalization engine: per-category
// literal replacement, grammar-aware em dash handling, Unicode
// decomposition and whitespace cleanup, composed in a fixed pipeline
// order so each pass sees the output of the previous one.
package scrub

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/unsmarten/unsmarten/pkg/config"
	"github.com/unsmarten/unsmarten/pkg/nlp"
)

// ErrInvalidEncoding reports input that is not valid UTF-8. The engine
// refuses such input rather than guessing at byte semantics.
var ErrInvalidEncoding = errors.New("input is not valid UTF-8")

// DefaultMaxAnalysisBytes bounds the input size handed to the linguistic
// analyzer. Larger inputs still scrub, but em dashes fall back to the
// literal table.
const DefaultMaxAnalysisBytes = 1 << 20

// Result is the outcome of one scrub invocation.
type Result struct {
	// ID uniquely identifies the invocation, for logs and cache diagnostics.
	ID string `json:"id"`
	// Text is the normalized output.
	Text string `json:"text"`
	// Stats counts substitutions per enabled category.
	Stats map[config.Category]int `json:"stats"`
	// DashBreakdown counts em dashes per detected grammatical context.
	// Nil when no contextual analysis ran.
	DashBreakdown map[DashContext]int `json:"dash_breakdown,omitempty"`
	// Skipped lists categories dropped because their replacement table
	// failed validation.
	Skipped []config.Category `json:"skipped_categories,omitempty"`
}

// Total returns the number of substitutions across all categories.
func (r *Result) Total() int {
	total := 0
	for _, n := range r.Stats {
		total += n
	}
	return total
}

// Scrubber applies one validated configuration to any number of inputs.
// Safe for concurrent use; all mutable state is per call.
type Scrubber struct {
	cfg              *config.Config
	analyzer         nlp.Analyzer
	maxAnalysisBytes int
	rules            map[config.Category]*compiledRule
	skipped          []config.Category
	warnOnce         sync.Once
}

// Option customizes a Scrubber at construction.
type Option func(*Scrubber)

// WithAnalyzer overrides the process-wide linguistic analyzer for this
// scrubber only.
func WithAnalyzer(a nlp.Analyzer) Option {
	return func(s *Scrubber) { s.analyzer = a }
}

// WithMaxAnalysisBytes overrides the contextual analysis size cutoff.
func WithMaxAnalysisBytes(n int) Option {
	return func(s *Scrubber) { s.maxAnalysisBytes = n }
}

// New builds a Scrubber from cfg, compiling and validating every category
// table up front. A nil cfg means the built-in defaults. Categories with
// malformed tables are skipped and logged, never fatal.
func New(cfg *config.Config, opts ...Option) *Scrubber {
	if cfg == nil {
		cfg = config.Default()
	}
	s := &Scrubber{
		cfg:              cfg.Clone(),
		maxAnalysisBytes: DefaultMaxAnalysisBytes,
		rules:            make(map[config.Category]*compiledRule),
	}
	for _, opt := range opts {
		opt(s)
	}

	for _, cat := range config.Categories() {
		rule := s.cfg.Rule(cat)
		compiled, ok := compileRule(cat, rule)
		if !ok {
			s.skipped = append(s.skipped, cat)
			log.Printf("scrub: skipping category %s: malformed replacement table", cat)
			continue
		}
		s.rules[cat] = compiled
	}
	return s
}

// Skipped returns the categories whose tables failed validation.
func (s *Scrubber) Skipped() []config.Category {
	return append([]config.Category(nil), s.skipped...)
}

// Fingerprint returns the digest of this scrubber's effective
// configuration. Identical fingerprints produce identical output for
// identical input, so results are cacheable per fingerprint.
func (s *Scrubber) Fingerprint() string {
	return s.cfg.Fingerprint()
}

// Scrub normalizes text through the full pipeline: literal categories,
// em dashes (contextual when configured), en dashes, Unicode
// decomposition, whitespace, and finally non-ASCII stripping.
func (s *Scrubber) Scrub(ctx context.Context, text string) (*Result, error) {
	if !utf8.ValidString(text) {
		return nil, ErrInvalidEncoding
	}

	result := &Result{
		ID:      uuid.NewString(),
		Stats:   make(map[config.Category]int),
		Skipped: s.Skipped(),
	}

	for _, cat := range config.Categories() {
		if cat == config.CategoryDashesEm || cat == config.CategoryDashesEn {
			continue
		}
		if !s.cfg.Enabled(cat) {
			continue
		}
		rule, ok := s.rules[cat]
		if !ok {
			continue
		}
		var n int
		text, n = rule.apply(text)
		result.Stats[cat] = n
	}

	var err error
	text, err = s.scrubEmDashes(ctx, text, result)
	if err != nil {
		return nil, err
	}

	if s.cfg.Enabled(config.CategoryDashesEn) {
		if rule, ok := s.rules[config.CategoryDashesEn]; ok {
			var n int
			text, n = rule.apply(text)
			result.Stats[config.CategoryDashesEn] = n
		}
	}

	if s.cfg.General.NormalizeUnicode {
		text = decomposeUnicode(text)
	}
	if s.cfg.General.RemoveCombiningChars {
		text = removeCombining(text)
	}
	if s.cfg.General.NormalizeWhitespace {
		text = normalizeWhitespace(text)
	}
	if s.cfg.General.RemoveNonASCII {
		text = removeNonASCII(text)
	}

	result.Text = text
	return result, nil
}

// scrubEmDashes runs the em dash category: grammar-aware when configured
// and the input is small enough, literal otherwise. Analyzer failure
// degrades to the literal table with a single warning per scrubber.
func (s *Scrubber) scrubEmDashes(ctx context.Context, text string, result *Result) (string, error) {
	if !s.cfg.Enabled(config.CategoryDashesEm) {
		return text, nil
	}
	rule, ok := s.rules[config.CategoryDashesEm]
	if !ok {
		return text, nil
	}

	if s.cfg.ContextualDashes() && hasEmDash(text) && len(text) <= s.maxAnalysisBytes {
		out, n, breakdown, err := s.resolveContextual(ctx, text)
		if err == nil {
			result.Stats[config.CategoryDashesEm] = n
			result.DashBreakdown = breakdown
			return out, nil
		}
		if ctx.Err() != nil {
			return "", fmt.Errorf("contextual dash analysis: %w", err)
		}
		s.warnOnce.Do(func() {
			log.Printf("scrub: linguistic analysis unavailable, em dashes use literal replacement: %v", err)
		})
	}

	var n int
	text, n = rule.apply(text)
	result.Stats[config.CategoryDashesEm] = n
	return text, nil
}

func (s *Scrubber) resolveContextual(ctx context.Context, text string) (string, int, map[DashContext]int, error) {
	analyzer := s.analyzer
	if analyzer == nil {
		analyzer = nlp.Default()
	}
	anns, err := analyzer.Annotate(ctx, text)
	if err != nil {
		return "", 0, nil, err
	}
	out, n, breakdown := resolveDashes(text, anns)
	return out, n, breakdown, nil
}

// Scrub normalizes text with the built-in default configuration.
func Scrub(ctx context.Context, text string) (*Result, error) {
	return New(nil).Scrub(ctx, text)
}
