package scrub

import (
	"context"
	"errors"
	"testing"

	"github.com/unsmarten/unsmarten/pkg/config"
	"github.com/unsmarten/unsmarten/pkg/nlp"
)

func newTestScrubber(cfg *config.Config, opts ...Option) *Scrubber {
	opts = append([]Option{WithAnalyzer(nlp.NewTagger())}, opts...)
	return New(cfg, opts...)
}

func TestScrubDefaults(t *testing.T) {
	s := newTestScrubber(nil)

	result, err := s.Scrub(context.Background(), "“Smart” article… 2010–2020")
	if err != nil {
		t.Fatalf("Scrub failed: %v", err)
	}

	want := `"Smart" article... 2010-2020`
	if result.Text != want {
		t.Errorf("Text = %q, want %q", result.Text, want)
	}
	if result.ID == "" {
		t.Error("Result.ID should be set")
	}
	if result.Stats[config.CategorySmartQuotes] != 2 {
		t.Errorf("smart_quotes count = %d, want 2", result.Stats[config.CategorySmartQuotes])
	}
	if result.Stats[config.CategoryEllipsis] != 1 {
		t.Errorf("ellipsis count = %d, want 1", result.Stats[config.CategoryEllipsis])
	}
	if result.Stats[config.CategoryDashesEn] != 1 {
		t.Errorf("dashes_en count = %d, want 1", result.Stats[config.CategoryDashesEn])
	}
	if result.Total() != 4 {
		t.Errorf("Total = %d, want 4", result.Total())
	}
}

func TestScrubContextualDash(t *testing.T) {
	s := newTestScrubber(nil)

	result, err := s.Scrub(context.Background(), "He said “done”—then left.")
	if err != nil {
		t.Fatalf("Scrub failed: %v", err)
	}

	want := `He said "done", then left.`
	if result.Text != want {
		t.Errorf("Text = %q, want %q", result.Text, want)
	}
	if result.Stats[config.CategoryDashesEm] != 1 {
		t.Errorf("dashes_em count = %d, want 1", result.Stats[config.CategoryDashesEm])
	}
	if result.DashBreakdown[DashDialogue] != 1 {
		t.Errorf("DashBreakdown = %v, want one dialogue", result.DashBreakdown)
	}
}

func TestScrubSingleQuotedDialogue(t *testing.T) {
	s := newTestScrubber(nil)

	result, err := s.Scrub(context.Background(), "‘Hello’—she said")
	if err != nil {
		t.Fatalf("Scrub failed: %v", err)
	}

	want := "'Hello', she said"
	if result.Text != want {
		t.Errorf("Text = %q, want %q", result.Text, want)
	}
	if result.DashBreakdown[DashDialogue] != 1 {
		t.Errorf("DashBreakdown = %v, want one dialogue", result.DashBreakdown)
	}
}

func TestScrubIdempotent(t *testing.T) {
	s := newTestScrubber(nil)
	ctx := context.Background()

	first, err := s.Scrub(ctx, "“Hello”—world… café")
	if err != nil {
		t.Fatalf("first Scrub failed: %v", err)
	}
	second, err := s.Scrub(ctx, first.Text)
	if err != nil {
		t.Fatalf("second Scrub failed: %v", err)
	}

	if second.Text != first.Text {
		t.Errorf("not idempotent: %q then %q", first.Text, second.Text)
	}
	if second.Total() != 0 {
		t.Errorf("second pass made %d substitutions, want 0", second.Total())
	}
}

func TestScrubDisabledCategoryUntouched(t *testing.T) {
	cfg, err := config.Parse([]byte(`{"character_replacements": {"smart_quotes": {"enabled": false}}}`))
	if err != nil {
		t.Fatal(err)
	}
	s := newTestScrubber(cfg)

	result, err := s.Scrub(context.Background(), "“quoted” and… more")
	if err != nil {
		t.Fatalf("Scrub failed: %v", err)
	}

	want := "“quoted” and... more"
	if result.Text != want {
		t.Errorf("Text = %q, want %q", result.Text, want)
	}
	if _, ok := result.Stats[config.CategorySmartQuotes]; ok {
		t.Error("disabled category should not appear in stats")
	}
}

func TestScrubAllCategories(t *testing.T) {
	s := newTestScrubber(config.Default().EnableAll())

	in := "Price: €50 (≈ ¼ of retail™) ‹See reference› 5‰"
	want := "Price: EUR50 (~ 1/4 of retail(TM)) <See reference> 5 per thousand"

	result, err := s.Scrub(context.Background(), in)
	if err != nil {
		t.Fatalf("Scrub failed: %v", err)
	}
	if result.Text != want {
		t.Errorf("Text = %q, want %q", result.Text, want)
	}

	counts := map[config.Category]int{
		config.CategoryCurrency:    1,
		config.CategoryMath:        1,
		config.CategoryFractions:   1,
		config.CategoryTrademarks:  1,
		config.CategoryAngleQuotes: 2,
		config.CategoryUnits:       1,
	}
	for cat, n := range counts {
		if result.Stats[cat] != n {
			t.Errorf("%s count = %d, want %d", cat, result.Stats[cat], n)
		}
	}
}

func TestScrubAnalyzerUnavailable(t *testing.T) {
	s := New(nil, WithAnalyzer(nlp.Unavailable()))

	result, err := s.Scrub(context.Background(), "self—driving and “Hello”—she said")
	if err != nil {
		t.Fatalf("Scrub should degrade, not fail: %v", err)
	}

	// every em dash takes the literal rendering
	want := `self-driving and "Hello"-she said`
	if result.Text != want {
		t.Errorf("Text = %q, want %q", result.Text, want)
	}
	if result.DashBreakdown != nil {
		t.Errorf("no contextual analysis ran, breakdown should be nil: %v", result.DashBreakdown)
	}
	if result.Stats[config.CategoryDashesEm] != 2 {
		t.Errorf("dashes_em count = %d, want 2", result.Stats[config.CategoryDashesEm])
	}
}

func TestScrubMaxAnalysisBytes(t *testing.T) {
	s := newTestScrubber(nil, WithMaxAnalysisBytes(4))

	result, err := s.Scrub(context.Background(), "alpha—beta")
	if err != nil {
		t.Fatalf("Scrub failed: %v", err)
	}
	if result.Text != "alpha-beta" {
		t.Errorf("Text = %q, want literal fallback", result.Text)
	}
	if result.DashBreakdown != nil {
		t.Error("oversized input should skip contextual analysis")
	}
}

func TestScrubInvalidEncoding(t *testing.T) {
	s := newTestScrubber(nil)

	_, err := s.Scrub(context.Background(), "ok\xff\xfe")
	if !errors.Is(err, ErrInvalidEncoding) {
		t.Errorf("got %v, want ErrInvalidEncoding", err)
	}
}

func TestScrubSkipsMalformedCategory(t *testing.T) {
	cfg, err := config.Parse([]byte(`{
		"general": {"normalize_unicode": false},
		"character_replacements": {"ellipsis": {"replacements": {"…": "x…y"}}}
	}`))
	if err != nil {
		t.Fatal(err)
	}
	s := newTestScrubber(cfg)

	result, err := s.Scrub(context.Background(), "wait… “ok”")
	if err != nil {
		t.Fatalf("Scrub failed: %v", err)
	}

	// the poisoned category is skipped, the rest still applies
	if result.Text != "wait… \"ok\"" {
		t.Errorf("Text = %q", result.Text)
	}
	found := false
	for _, cat := range result.Skipped {
		if cat == config.CategoryEllipsis {
			found = true
		}
	}
	if !found {
		t.Errorf("Skipped = %v, want ellipsis", result.Skipped)
	}
}

func TestScrubWhitespace(t *testing.T) {
	cfg, err := config.Parse([]byte(`{"general": {"normalize_whitespace": true}}`))
	if err != nil {
		t.Fatal(err)
	}
	s := newTestScrubber(cfg)

	result, err := s.Scrub(context.Background(), "  a   b c  \n\n\n\n  d  ")
	if err != nil {
		t.Fatalf("Scrub failed: %v", err)
	}
	if result.Text != "a b c\n\nd" {
		t.Errorf("Text = %q, want %q", result.Text, "a b c\n\nd")
	}
}

func TestScrubRemoveNonASCII(t *testing.T) {
	cfg, err := config.Parse([]byte(`{"general": {"remove_non_ascii": true, "remove_combining_chars": true}}`))
	if err != nil {
		t.Fatal(err)
	}
	s := newTestScrubber(cfg)

	result, err := s.Scrub(context.Background(), "café → done")
	if err != nil {
		t.Fatalf("Scrub failed: %v", err)
	}
	if result.Text != "cafe  done" {
		t.Errorf("Text = %q, want %q", result.Text, "cafe  done")
	}
}

func TestScrubNeverMutatesInput(t *testing.T) {
	s := newTestScrubber(nil)
	in := "“input”"

	if _, err := s.Scrub(context.Background(), in); err != nil {
		t.Fatal(err)
	}
	if in != "“input”" {
		t.Error("input string changed")
	}
}

func TestScrubberFingerprintMatchesConfig(t *testing.T) {
	cfg := config.Default()
	s := New(cfg)
	if s.Fingerprint() != cfg.Fingerprint() {
		t.Error("scrubber fingerprint should match its configuration")
	}
}
