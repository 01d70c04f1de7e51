package monitoring

import (
	"log/slog"
	"os"
	"time"
)

// Logger provides structured logging with assessment-domain helpers.
type Logger struct {
	*slog.Logger
}

// NewLogger creates a new enhanced logger
func NewLogger() *Logger {
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level:     slog.LevelInfo,
		AddSource: true,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey {
				return slog.Attr{
					Key:   "timestamp",
					Value: slog.StringValue(a.Value.Time().Format(time.RFC3339)),
				}
			}
			return a
		},
	})

	return &Logger{
		Logger: slog.New(handler),
	}
}

// RequestLogger logs HTTP request details
func (l *Logger) RequestLogger(method, path, ip, userAgent string, statusCode int, duration time.Duration) {
	l.Info("HTTP Request",
		"method", method,
		"path", path,
		"ip", ip,
		"user_agent", userAgent,
		"status_code", statusCode,
		"duration_ms", duration.Milliseconds(),
	)
}

// EvaluationLogger logs one completed assessment evaluation.
func (l *Logger) EvaluationLogger(answerCount, scenarioCount int, primary string, stability float64, simulated bool, duration time.Duration, cacheHit bool) {
	l.Info("Evaluation Completed",
		"answers", answerCount,
		"scenarios", scenarioCount,
		"primary", primary,
		"stability", stability,
		"simulated", simulated,
		"duration_ms", duration.Milliseconds(),
		"cache_hit", cacheHit,
	)
}

// SimulationLogger logs a Monte Carlo run.
func (l *Logger) SimulationLogger(runs int, noise float64, primary string, stability float64, duration time.Duration) {
	l.Info("Simulation Completed",
		"runs", runs,
		"noise", noise,
		"primary", primary,
		"stability", stability,
		"duration_ms", duration.Milliseconds(),
	)
}

// APIErrorLogger logs API errors with context
func (l *Logger) APIErrorLogger(err error, method, path, ip string, statusCode int) {
	l.Error("API Error",
		"error", err.Error(),
		"method", method,
		"path", path,
		"ip", ip,
		"status_code", statusCode,
	)
}

// CacheLogger logs cache operations
func (l *Logger) CacheLogger(operation, key string, hit bool, itemCount int) {
	short := key
	if len(short) > 8 {
		short = short[:8] + "..."
	}
	l.Debug("Cache Operation",
		"operation", operation,
		"key_hash", short,
		"hit", hit,
		"cache_size", itemCount,
	)
}

// SystemLogger logs system-level events
func (l *Logger) SystemLogger(event, details string) {
	l.Info("System Event",
		"event", event,
		"details", details,
		"uptime", time.Since(startTime).String(),
	)
}

// PerformanceLogger logs performance metrics
func (l *Logger) PerformanceLogger(metric string, value float64, unit string) {
	l.Info("Performance Metric",
		"metric", metric,
		"value", value,
		"unit", unit,
	)
}

var startTime = time.Now()
