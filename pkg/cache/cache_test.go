package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/unsmarten/unsmarten/pkg/config"
	"github.com/unsmarten/unsmarten/pkg/nlp"
	"github.com/unsmarten/unsmarten/pkg/scrub"
)

func newTestCache(t *testing.T) (*Cache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	c := NewWithClient(client, time.Hour)
	t.Cleanup(func() { _ = c.Close() })
	return c, mr
}

func TestCachePutGet(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()

	stored := &scrub.Result{
		ID:    "abc",
		Text:  "clean text",
		Stats: map[config.Category]int{config.CategorySmartQuotes: 2},
	}
	if err := c.Put(ctx, "fp", "dirty text", stored); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	got, hit, err := c.Get(ctx, "fp", "dirty text")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if !hit {
		t.Fatal("expected a hit")
	}
	if got.Text != stored.Text || got.ID != stored.ID {
		t.Errorf("got %+v, want %+v", got, stored)
	}
	if got.Stats[config.CategorySmartQuotes] != 2 {
		t.Errorf("stats did not round-trip: %v", got.Stats)
	}
}

func TestCacheMiss(t *testing.T) {
	c, _ := newTestCache(t)

	_, hit, err := c.Get(context.Background(), "fp", "never stored")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if hit {
		t.Error("expected a miss")
	}
}

func TestCacheKeyDependsOnFingerprintAndText(t *testing.T) {
	if Key("a", "text") == Key("b", "text") {
		t.Error("different fingerprints should produce different keys")
	}
	if Key("a", "one") == Key("a", "two") {
		t.Error("different inputs should produce different keys")
	}
	if Key("a", "text") != Key("a", "text") {
		t.Error("keys must be stable")
	}
}

func TestCacheCorruptEntryIsAMiss(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()

	key := Key("fp", "text")
	mr.Set(key, "{not json")

	_, hit, err := c.Get(ctx, "fp", "text")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if hit {
		t.Error("corrupt entry should read as a miss")
	}
	if mr.Exists(key) {
		t.Error("corrupt entry should be evicted")
	}
}

func TestCacheTTL(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()

	if err := c.Put(ctx, "fp", "text", &scrub.Result{Text: "out"}); err != nil {
		t.Fatal(err)
	}
	mr.FastForward(2 * time.Hour)

	_, hit, err := c.Get(ctx, "fp", "text")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if hit {
		t.Error("entry should expire after the TTL")
	}
}

func TestWrappedScrubberReplaysResults(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()

	inner := scrub.New(nil, scrub.WithAnalyzer(nlp.NewTagger()))
	s := Wrap(inner, c)

	first, err := s.Scrub(ctx, "“hello”")
	if err != nil {
		t.Fatalf("first Scrub failed: %v", err)
	}
	second, err := s.Scrub(ctx, "“hello”")
	if err != nil {
		t.Fatalf("second Scrub failed: %v", err)
	}

	if second.Text != first.Text {
		t.Errorf("replayed text %q, want %q", second.Text, first.Text)
	}
	// a hit replays the stored invocation, ID included
	if second.ID != first.ID {
		t.Errorf("replayed ID %q, want %q", second.ID, first.ID)
	}
}

func TestWrappedScrubberSurvivesCacheOutage(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()

	inner := scrub.New(nil, scrub.WithAnalyzer(nlp.NewTagger()))
	s := Wrap(inner, c)

	mr.Close()

	result, err := s.Scrub(ctx, "“still works”")
	if err != nil {
		t.Fatalf("Scrub should not depend on the cache: %v", err)
	}
	if result.Text != `"still works"` {
		t.Errorf("Text = %q", result.Text)
	}
}

func TestDefaultOptionsFromEnv(t *testing.T) {
	t.Setenv("UNSMARTEN_REDIS_ADDR", "redis.internal:6380")

	opts := DefaultOptions()
	if opts.Addr != "redis.internal:6380" {
		t.Errorf("Addr = %q", opts.Addr)
	}
	if opts.TTL != 24*time.Hour {
		t.Errorf("TTL = %v", opts.TTL)
	}
}
