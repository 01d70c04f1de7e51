package monitoring

import (
	"sync"
	"sync/atomic"
	"time"
)

// Metrics holds application counters. Counter fields are updated with
// atomics; map-backed fields take their own mutex.
type Metrics struct {
	RequestCount        int64
	ErrorCount          int64
	CacheHits           int64
	CacheMisses         int64
	Evaluations         int64
	Simulations         int64
	SimulationTrials    int64
	AverageResponseTime int64 // nanoseconds
	StartTime           time.Time

	RequestCountByStatus map[int]int64
	statusMutex          sync.RWMutex

	ArchetypeWins  map[string]int64
	archetypeMutex sync.RWMutex

	RateLimitIPBlocks      int64
	RateLimitRedisErrors   int64
	RateLimitFallbackCount int64
}

// NewMetrics creates a new metrics instance
func NewMetrics() *Metrics {
	return &Metrics{
		StartTime:            time.Now(),
		RequestCountByStatus: make(map[int]int64),
		ArchetypeWins:        make(map[string]int64),
	}
}

// IncrementRequest increments the request count
func (m *Metrics) IncrementRequest() {
	atomic.AddInt64(&m.RequestCount, 1)
}

// IncrementError increments the error count
func (m *Metrics) IncrementError() {
	atomic.AddInt64(&m.ErrorCount, 1)
}

// IncrementCacheHit increments cache hit count
func (m *Metrics) IncrementCacheHit() {
	atomic.AddInt64(&m.CacheHits, 1)
}

// IncrementCacheMiss increments cache miss count
func (m *Metrics) IncrementCacheMiss() {
	atomic.AddInt64(&m.CacheMisses, 1)
}

// RecordEvaluation tallies one completed evaluation and its primary
// archetype.
func (m *Metrics) RecordEvaluation(primary string) {
	atomic.AddInt64(&m.Evaluations, 1)

	m.archetypeMutex.Lock()
	m.ArchetypeWins[primary]++
	m.archetypeMutex.Unlock()
}

// RecordSimulation tallies one Monte Carlo run and its trial count.
func (m *Metrics) RecordSimulation(trials int) {
	atomic.AddInt64(&m.Simulations, 1)
	atomic.AddInt64(&m.SimulationTrials, int64(trials))
}

// IncrementRateLimitIPBlock tallies a blocked request.
func (m *Metrics) IncrementRateLimitIPBlock() {
	atomic.AddInt64(&m.RateLimitIPBlocks, 1)
}

// IncrementRateLimitRedisError tallies a failed redis limiter check.
func (m *Metrics) IncrementRateLimitRedisError() {
	atomic.AddInt64(&m.RateLimitRedisErrors, 1)
}

// IncrementRateLimitFallback tallies an in-memory limiter decision.
func (m *Metrics) IncrementRateLimitFallback() {
	atomic.AddInt64(&m.RateLimitFallbackCount, 1)
}

// RecordResponseTime records response time for averaging.
func (m *Metrics) RecordResponseTime(duration time.Duration) {
	current := atomic.LoadInt64(&m.AverageResponseTime)
	newAverage := (current + duration.Nanoseconds()) / 2
	atomic.StoreInt64(&m.AverageResponseTime, newAverage)
}

// RecordRequestByStatus tallies a response status code.
func (m *Metrics) RecordRequestByStatus(statusCode int) {
	m.statusMutex.Lock()
	m.RequestCountByStatus[statusCode]++
	m.statusMutex.Unlock()
}

// GetStats returns a snapshot of all metrics.
func (m *Metrics) GetStats() map[string]interface{} {
	m.statusMutex.RLock()
	byStatus := make(map[int]int64, len(m.RequestCountByStatus))
	for code, count := range m.RequestCountByStatus {
		byStatus[code] = count
	}
	m.statusMutex.RUnlock()

	m.archetypeMutex.RLock()
	wins := make(map[string]int64, len(m.ArchetypeWins))
	for name, count := range m.ArchetypeWins {
		wins[name] = count
	}
	m.archetypeMutex.RUnlock()

	return map[string]interface{}{
		"request_count":            atomic.LoadInt64(&m.RequestCount),
		"error_count":              atomic.LoadInt64(&m.ErrorCount),
		"cache_hits":               atomic.LoadInt64(&m.CacheHits),
		"cache_misses":             atomic.LoadInt64(&m.CacheMisses),
		"evaluations":              atomic.LoadInt64(&m.Evaluations),
		"simulations":              atomic.LoadInt64(&m.Simulations),
		"simulation_trials":        atomic.LoadInt64(&m.SimulationTrials),
		"archetype_wins":           wins,
		"requests_by_status":       byStatus,
		"avg_response_time_ms":     float64(atomic.LoadInt64(&m.AverageResponseTime)) / 1e6,
		"rate_limit_ip_blocks":     atomic.LoadInt64(&m.RateLimitIPBlocks),
		"rate_limit_redis_errors":  atomic.LoadInt64(&m.RateLimitRedisErrors),
		"rate_limit_fallback_hits": atomic.LoadInt64(&m.RateLimitFallbackCount),
		"uptime_seconds":           time.Since(m.StartTime).Seconds(),
	}
}
