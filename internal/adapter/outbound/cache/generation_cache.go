// Package cache provides an in-process LRU cache in front of a comment generator.
package cache

import (
	"context"
	"errors"
	"sync/atomic"

	"javadocgen/internal/application/common/slogger"
	"javadocgen/internal/port/outbound"

	lru "github.com/hashicorp/golang-lru/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"golang.org/x/sync/singleflight"
)

const meterName = "javadocgen/cache"

// CacheStatistics tracks cache performance.
type CacheStatistics struct {
	Hits      int64   `json:"hits"      yaml:"hits"`
	Misses    int64   `json:"misses"    yaml:"misses"`
	Evictions int64   `json:"evictions" yaml:"evictions"`
	Entries   int     `json:"entries"   yaml:"entries"`
	HitRate   float64 `json:"hit_rate"  yaml:"hit_rate"`
}

// CachingGenerator reuses responses for requests with identical declaration
// contexts. Concurrent requests for the same context share one backend call.
// Failed generations are never cached.
type CachingGenerator struct {
	next  outbound.CommentGenerator
	cache *lru.Cache[string, string]
	group singleflight.Group

	hits      atomic.Int64
	misses    atomic.Int64
	evictions atomic.Int64

	lookups metric.Int64Counter
}

// NewCachingGenerator wraps next with a cache of size entries.
func NewCachingGenerator(next outbound.CommentGenerator, size int) (*CachingGenerator, error) {
	if next == nil {
		return nil, errors.New("cache: next generator cannot be nil")
	}

	g := &CachingGenerator{next: next}

	cache, err := lru.NewWithEvict[string, string](size, func(string, string) {
		g.evictions.Add(1)
	})
	if err != nil {
		return nil, err
	}
	g.cache = cache

	lookups, err := otel.Meter(meterName).Int64Counter(
		"javadocgen_generation_cache_lookups_total",
		metric.WithDescription("Generation cache lookups by result"),
	)
	if err != nil {
		slogger.WarnNoCtx("Failed to initialize cache metrics, continuing without metrics", slogger.Fields{
			"error": err.Error(),
		})
	}
	g.lookups = lookups

	return g, nil
}

// GenerateComment returns a cached response for an identical context, or
// calls the wrapped generator and remembers a successful result.
func (g *CachingGenerator) GenerateComment(ctx context.Context, request outbound.GenerationRequest) (string, error) {
	key := request.Context.Digest()

	if text, ok := g.cache.Get(key); ok {
		g.record(ctx, true)
		slogger.Debug(ctx, "Generation cache hit", slogger.Fields{
			"candidate_id": request.CandidateID,
			"key":          key[:8],
		})
		return text, nil
	}
	g.record(ctx, false)

	v, err, shared := g.group.Do(key, func() (interface{}, error) {
		text, err := g.next.GenerateComment(ctx, request)
		if err != nil {
			return "", err
		}
		g.cache.Add(key, text)
		return text, nil
	})
	if err != nil {
		return "", err
	}
	if shared {
		slogger.Debug(ctx, "Generation shared with concurrent request", slogger.Field("candidate_id", request.CandidateID))
	}
	return v.(string), nil
}

// Stop forwards to the wrapped generator when it supports stopping.
func (g *CachingGenerator) Stop(ctx context.Context) error {
	if stopper, ok := g.next.(outbound.Stopper); ok {
		return stopper.Stop(ctx)
	}
	return nil
}

// Stats returns a snapshot of the cache counters.
func (g *CachingGenerator) Stats() CacheStatistics {
	stats := CacheStatistics{
		Hits:      g.hits.Load(),
		Misses:    g.misses.Load(),
		Evictions: g.evictions.Load(),
		Entries:   g.cache.Len(),
	}
	if total := stats.Hits + stats.Misses; total > 0 {
		stats.HitRate = float64(stats.Hits) / float64(total)
	}
	return stats
}

func (g *CachingGenerator) record(ctx context.Context, hit bool) {
	if hit {
		g.hits.Add(1)
	} else {
		g.misses.Add(1)
	}
	if g.lookups != nil {
		g.lookups.Add(ctx, 1, metric.WithAttributes(attribute.Bool("hit", hit)))
	}
}
