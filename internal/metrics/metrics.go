package metrics

import (
	"sync"
	"time"
)

type upstreamStats struct {
	calls           int
	errors          int
	rateLimitHits   int
	lastRetryAfter  time.Duration
	lastCallLatency time.Duration
}

type cacheStats struct {
	hits   int
	misses int
	writes int
}

// Recorder keeps in-memory counters for upstream calls, cache lookups and
// refresh cycles, and forwards them to OpenTelemetry when configured.
type Recorder struct {
	mu       sync.Mutex
	upstream map[string]*upstreamStats
	cache    map[string]*cacheStats
	refresh  RefreshSnapshot
	otel     *otelInstruments
}

func NewRecorder() *Recorder {
	return newRecorder(nil)
}

func newRecorder(otel *otelInstruments) *Recorder {
	return &Recorder{
		upstream: make(map[string]*upstreamStats),
		cache:    make(map[string]*cacheStats),
		otel:     otel,
	}
}

// RecordUpstreamCall counts one upstream request (e.g. "playergamelog") and its latency.
func (r *Recorder) RecordUpstreamCall(op string, duration time.Duration, err error) {
	if r == nil {
		return
	}

	r.mu.Lock()
	stats := r.upstreamLocked(op)
	stats.calls++
	stats.lastCallLatency = duration
	if err != nil {
		stats.errors++
	}
	r.mu.Unlock()

	r.otel.recordUpstreamCall(op, duration, err)
}

// RecordRateLimit tracks a throttled upstream response and its Retry-After hint.
func (r *Recorder) RecordRateLimit(op string, retryAfter time.Duration) {
	if r == nil {
		return
	}

	r.mu.Lock()
	stats := r.upstreamLocked(op)
	stats.rateLimitHits++
	if retryAfter > 0 {
		stats.lastRetryAfter = retryAfter
	}
	r.mu.Unlock()

	r.otel.recordRateLimit(op, retryAfter)
}

// RecordCacheLookup counts a hit or miss for an artifact family ("roster", "snapshot", "history").
func (r *Recorder) RecordCacheLookup(artifact string, hit bool) {
	if r == nil {
		return
	}

	r.mu.Lock()
	stats := r.cacheLocked(artifact)
	if hit {
		stats.hits++
	} else {
		stats.misses++
	}
	r.mu.Unlock()

	r.otel.recordCacheLookup(artifact, hit)
}

// RecordCacheWrite counts a persisted artifact.
func (r *Recorder) RecordCacheWrite(artifact string) {
	if r == nil {
		return
	}
	r.mu.Lock()
	r.cacheLocked(artifact).writes++
	r.mu.Unlock()
}

// RecordHTTPRequest tracks basic HTTP metrics.
func (r *Recorder) RecordHTTPRequest(method, path string, status int, duration time.Duration) {
	if r == nil {
		return
	}
	r.otel.recordHTTPRequest(method, path, status, duration)
}

// RecordRefreshCycle tracks scheduled cache warm-ups.
func (r *Recorder) RecordRefreshCycle(duration time.Duration, err error) {
	if r == nil {
		return
	}

	r.mu.Lock()
	r.refresh.Cycles++
	r.refresh.LastDuration = duration
	if err != nil {
		r.refresh.Errors++
	}
	r.mu.Unlock()

	r.otel.recordRefresh(duration, err)
}

// UpstreamSnapshot is a copy of the counters for one upstream operation.
type UpstreamSnapshot struct {
	Calls           int
	Errors          int
	RateLimitHits   int
	LastRetryAfter  time.Duration
	LastCallLatency time.Duration
}

// CacheSnapshot is a copy of the counters for one artifact family.
type CacheSnapshot struct {
	Hits   int
	Misses int
	Writes int
}

// RefreshSnapshot is a copy of the refresh cycle counters.
type RefreshSnapshot struct {
	Cycles       int
	Errors       int
	LastDuration time.Duration
}

func (r *Recorder) Upstream(op string) UpstreamSnapshot {
	if r == nil {
		return UpstreamSnapshot{}
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	stats, ok := r.upstream[op]
	if !ok {
		return UpstreamSnapshot{}
	}
	return UpstreamSnapshot{
		Calls:           stats.calls,
		Errors:          stats.errors,
		RateLimitHits:   stats.rateLimitHits,
		LastRetryAfter:  stats.lastRetryAfter,
		LastCallLatency: stats.lastCallLatency,
	}
}

func (r *Recorder) Cache(artifact string) CacheSnapshot {
	if r == nil {
		return CacheSnapshot{}
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	stats, ok := r.cache[artifact]
	if !ok {
		return CacheSnapshot{}
	}
	return CacheSnapshot{Hits: stats.hits, Misses: stats.misses, Writes: stats.writes}
}

func (r *Recorder) Refresh() RefreshSnapshot {
	if r == nil {
		return RefreshSnapshot{}
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.refresh
}

func (r *Recorder) upstreamLocked(op string) *upstreamStats {
	stats, ok := r.upstream[op]
	if !ok {
		stats = &upstreamStats{}
		r.upstream[op] = stats
	}
	return stats
}

func (r *Recorder) cacheLocked(artifact string) *cacheStats {
	stats, ok := r.cache[artifact]
	if !ok {
		stats = &cacheStats{}
		r.cache[artifact] = stats
	}
	return stats
}
