// Package cache provides an optional Redis-backed result cache. Scrubbing
// is referentially transparent on (configuration fingerprint, input text),
// so cached results can be replayed indefinitely within their TTL.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/unsmarten/unsmarten/pkg/scrub"
)

const keyPrefix = "unsmarten:scrub:"

// Options configures the Redis connection and entry lifetime.
type Options struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
}

// DefaultOptions reads the connection settings from the environment
// (UNSMARTEN_REDIS_ADDR, UNSMARTEN_REDIS_PASSWORD) with a 24 hour TTL.
func DefaultOptions() Options {
	opts := Options{
		Addr: "localhost:6379",
		TTL:  24 * time.Hour,
	}
	if addr := os.Getenv("UNSMARTEN_REDIS_ADDR"); addr != "" {
		opts.Addr = addr
	}
	if pw := os.Getenv("UNSMARTEN_REDIS_PASSWORD"); pw != "" {
		opts.Password = pw
	}
	return opts
}

// Cache stores scrub results in Redis keyed by configuration fingerprint
// and input digest.
type Cache struct {
	client redis.UniversalClient
	ttl    time.Duration
}

// New connects to Redis per opts and verifies the connection with a ping.
func New(opts Options) (*Cache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("connect result cache at %s: %w", opts.Addr, err)
	}
	return NewWithClient(client, opts.TTL), nil
}

// NewWithClient wraps an existing Redis client. A zero ttl means entries
// never expire.
func NewWithClient(client redis.UniversalClient, ttl time.Duration) *Cache {
	return &Cache{client: client, ttl: ttl}
}

// Key derives the cache key for one (fingerprint, text) pair.
func Key(fingerprint, text string) string {
	h := sha256.New()
	h.Write([]byte(fingerprint))
	h.Write([]byte{0})
	h.Write([]byte(text))
	return keyPrefix + hex.EncodeToString(h.Sum(nil))
}

// Get returns the cached result for (fingerprint, text), or a miss.
// A corrupt entry is treated as a miss and evicted.
func (c *Cache) Get(ctx context.Context, fingerprint, text string) (*scrub.Result, bool, error) {
	key := Key(fingerprint, text)
	raw, err := c.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("result cache get: %w", err)
	}
	var result scrub.Result
	if err := json.Unmarshal(raw, &result); err != nil {
		_ = c.client.Del(ctx, key).Err()
		return nil, false, nil
	}
	return &result, true, nil
}

// Put stores result under (fingerprint, text) with the configured TTL.
func (c *Cache) Put(ctx context.Context, fingerprint, text string, result *scrub.Result) error {
	raw, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("result cache encode: %w", err)
	}
	if err := c.client.Set(ctx, Key(fingerprint, text), raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("result cache put: %w", err)
	}
	return nil
}

// Close releases the underlying Redis connection.
func (c *Cache) Close() error {
	return c.client.Close()
}

// Scrubber is a caching wrapper around a scrub.Scrubber. Hits replay the
// stored result; misses scrub and store. Cache errors degrade to a plain
// scrub with a log line, never a failure.
type Scrubber struct {
	inner       *scrub.Scrubber
	cache       *Cache
	fingerprint string
}

// Wrap builds a caching scrubber around inner.
func Wrap(inner *scrub.Scrubber, cache *Cache) *Scrubber {
	return &Scrubber{
		inner:       inner,
		cache:       cache,
		fingerprint: inner.Fingerprint(),
	}
}

// Scrub returns the cached result when present, otherwise delegates to
// the wrapped scrubber and stores the outcome.
func (s *Scrubber) Scrub(ctx context.Context, text string) (*scrub.Result, error) {
	cached, hit, err := s.cache.Get(ctx, s.fingerprint, text)
	if err != nil {
		log.Printf("cache: lookup failed, scrubbing directly: %v", err)
	} else if hit {
		return cached, nil
	}

	result, err := s.inner.Scrub(ctx, text)
	if err != nil {
		return nil, err
	}
	if err := s.cache.Put(ctx, s.fingerprint, text, result); err != nil {
		log.Printf("cache: store failed: %v", err)
	}
	return result, nil
}
