package ratelimit

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/go-redis/redis_rate/v10"
	"golang.org/x/time/rate"

	"github.com/innovatorlabs/itype/internal/monitoring"
)

// Config holds rate limiting configuration.
type Config struct {
	// IPLimitPerMin is the per-IP request budget per minute.
	IPLimitPerMin int
	// BurstMultiplier scales the burst allowance relative to the
	// per-minute budget.
	BurstMultiplier int
}

// DefaultConfig returns sensible defaults for the evaluate endpoint.
func DefaultConfig() Config {
	return Config{
		IPLimitPerMin:   60,
		BurstMultiplier: 2,
	}
}

// Limiter enforces per-IP limits with a Redis-backed sliding window and an
// in-memory token-bucket fallback when Redis is unavailable.
type Limiter struct {
	redis   *RedisClient
	limiter *redis_rate.Limiter
	cfg     Config
	metrics *monitoring.Metrics

	mu       sync.Mutex
	fallback map[string]*fallbackEntry
}

type fallbackEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewLimiter creates a rate limiter. The Redis client may be disabled, in
// which case every decision goes through the in-memory fallback.
func NewLimiter(rc *RedisClient, cfg Config, metrics *monitoring.Metrics) *Limiter {
	l := &Limiter{
		redis:    rc,
		cfg:      cfg,
		metrics:  metrics,
		fallback: make(map[string]*fallbackEntry),
	}
	if rc != nil && rc.IsEnabled() {
		l.limiter = redis_rate.NewLimiter(rc.GetClient())
	}
	go l.cleanupFallbackLimiters()
	return l
}

// Result describes a single rate-limit decision.
type Result struct {
	Allowed    bool
	Remaining  int
	RetryAfter time.Duration
}

// AllowIP checks whether the given client IP may issue another request.
func (l *Limiter) AllowIP(ctx context.Context, ip string) Result {
	if l.limiter != nil {
		res, err := l.limiter.Allow(ctx, "ip:"+ip, redis_rate.PerMinute(l.cfg.IPLimitPerMin))
		if err == nil {
			if res.Allowed == 0 && l.metrics != nil {
				l.metrics.IncrementRateLimitIPBlock()
			}
			return Result{
				Allowed:    res.Allowed > 0,
				Remaining:  res.Remaining,
				RetryAfter: res.RetryAfter,
			}
		}
		slog.Warn("Redis rate limit check failed, using fallback", "error", err, "ip", ip)
		if l.metrics != nil {
			l.metrics.IncrementRateLimitRedisError()
		}
	}
	return l.allowFallback(ip)
}

// allowFallback applies an in-memory token bucket keyed by IP.
func (l *Limiter) allowFallback(ip string) Result {
	if l.metrics != nil {
		l.metrics.IncrementRateLimitFallback()
	}

	l.mu.Lock()
	entry, ok := l.fallback[ip]
	if !ok {
		perSecond := rate.Limit(float64(l.cfg.IPLimitPerMin) / 60.0)
		burst := l.cfg.IPLimitPerMin * l.cfg.BurstMultiplier / 60
		if burst < 1 {
			burst = 1
		}
		entry = &fallbackEntry{limiter: rate.NewLimiter(perSecond, burst)}
		l.fallback[ip] = entry
	}
	entry.lastSeen = time.Now()
	l.mu.Unlock()

	if entry.limiter.Allow() {
		return Result{Allowed: true, Remaining: int(entry.limiter.Tokens())}
	}
	if l.metrics != nil {
		l.metrics.IncrementRateLimitIPBlock()
	}
	return Result{Allowed: false, RetryAfter: time.Second}
}

// cleanupFallbackLimiters evicts idle fallback buckets so a burst of unique
// IPs does not grow the map forever.
func (l *Limiter) cleanupFallbackLimiters() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()
	for range ticker.C {
		cutoff := time.Now().Add(-10 * time.Minute)
		l.mu.Lock()
		for ip, entry := range l.fallback {
			if entry.lastSeen.Before(cutoff) {
				delete(l.fallback, ip)
			}
		}
		l.mu.Unlock()
	}
}

// GetStats reports the current limiter mode and fallback population.
func (l *Limiter) GetStats() map[string]any {
	l.mu.Lock()
	fallbackSize := len(l.fallback)
	l.mu.Unlock()

	mode := "fallback"
	if l.limiter != nil {
		mode = "redis"
	}
	return map[string]any{
		"mode":              mode,
		"ip_limit_per_min":  l.cfg.IPLimitPerMin,
		"burst_multiplier":  l.cfg.BurstMultiplier,
		"fallback_limiters": fallbackSize,
		"redis_enabled":     l.limiter != nil,
	}
}
