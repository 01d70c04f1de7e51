package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/innovatorlabs/itype/internal/cache"
	"github.com/innovatorlabs/itype/internal/config"
	"github.com/innovatorlabs/itype/internal/errors"
	"github.com/innovatorlabs/itype/internal/monitoring"
	"github.com/innovatorlabs/itype/internal/quiz"
	"github.com/innovatorlabs/itype/internal/ratelimit"
	"github.com/innovatorlabs/itype/internal/results"
	"github.com/innovatorlabs/itype/internal/security"
	"github.com/innovatorlabs/itype/internal/types"
)

func main() {
	// Structured logging setup
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	// Configuration from environment with defaults
	port := getEnvOrDefault("PORT", "8080")
	dataDir := getEnvOrDefault("DATA_DIR", "./data")
	redisURL := os.Getenv("REDIS_URL")
	redisPassword := os.Getenv("REDIS_PASSWORD")
	blendWeight := getEnvFloat("BLEND_QUESTION_WEIGHT", 0.75)
	simRuns := getEnvInt("SIM_RUNS", quiz.DefaultRuns)
	simNoise := getEnvFloat("SIM_NOISE", quiz.DefaultNoise)
	strictSignatures := getEnvBool("STRICT_SIGNATURES", false)
	resultTTL := getEnvDuration("RESULT_TTL", time.Hour)
	ipLimitPerMin := getEnvInt("RATE_LIMIT_PER_MIN", 60)

	// Load quiz content
	store := config.NewStore(dataDir)

	questions, err := store.LoadQuestions()
	if err != nil {
		slog.Error("Failed to load questions", "error", err)
		os.Exit(1)
	}

	scenarios, err := store.LoadScenarios()
	if err != nil {
		slog.Error("Failed to load scenarios", "error", err)
		os.Exit(1)
	}

	archetypes, warnings, err := store.LoadArchetypes(strictSignatures)
	if err != nil {
		slog.Error("Failed to load archetypes", "error", err)
		os.Exit(1)
	}
	for _, w := range warnings {
		slog.Warn("Archetype configuration issue", "warning", w)
	}

	engine := quiz.NewEngine(questions, scenarios, archetypes, quiz.Options{
		Blend:  quiz.BlendWeights{Question: blendWeight, Scenario: 1 - blendWeight},
		Runs:   simRuns,
		Noise:  simNoise,
		Strict: strictSignatures,
	})

	slog.Info("Quiz content loaded",
		"questions", len(questions),
		"scenarios", len(scenarios),
		"archetypes", archetypes.Len(),
		"dimensions", len(engine.Dimensions()))

	// Initialize monitoring system
	appMetrics := monitoring.NewMetrics()
	appLogger := monitoring.NewLogger()

	// Redis-backed rate limiting with in-memory fallback
	redisClient, err := ratelimit.NewRedisClient(redisURL, redisPassword, 0)
	if err != nil {
		slog.Warn("Continuing without Redis rate limiting", "error", err)
	}
	limiterConfig := ratelimit.DefaultConfig()
	limiterConfig.IPLimitPerMin = ipLimitPerMin
	limiter := ratelimit.NewLimiter(redisClient, limiterConfig, appMetrics)

	// Result store for fetch-and-delete of past evaluations
	resultStore := results.NewStore(resultTTL)

	// Response cache for identical evaluate payloads (15 minutes TTL)
	appCache := cache.NewCache(15 * time.Minute)

	r := gin.New()

	// Monitoring middleware first to capture all requests
	r.Use(monitoring.MonitoringMiddleware(appMetrics, appLogger))

	// Error handling middleware
	r.Use(errors.ErrorHandler())
	r.Use(errors.RecoveryHandler())

	// Security middleware
	securityConfig := security.DefaultConfig()
	if err := r.SetTrustedProxies(securityConfig.TrustedProxies); err != nil {
		slog.Error("Invalid trusted proxy configuration", "error", err)
		os.Exit(1)
	}
	securityMiddleware := security.NewMiddleware(securityConfig)
	r.Use(securityMiddleware.Headers)
	r.Use(securityMiddleware.RequestTimeout)
	r.Use(securityMiddleware.ValidateContentType)
	r.Use(securityMiddleware.LimitBodySize)

	// CORS
	r.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOrigins(),
		AllowMethods:     []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Content-Type", "Accept", "Origin", "X-Requested-With"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))

	// Rate limit and response cache on the evaluate path
	r.Use(ratelimit.Middleware(limiter))
	r.Use(appCache.Middleware("/api/evaluate", appMetrics, appLogger))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":     "ok",
			"timestamp":  time.Now().Format(time.RFC3339),
			"version":    "1.0.0",
			"questions":  len(engine.Questions()),
			"archetypes": engine.Archetypes().Len(),
			"metrics":    appMetrics.GetStats(),
		})
	})

	api := r.Group("/api")

	api.GET("/questions", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"questions": engine.Questions()})
	})

	api.GET("/scenarios", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"scenarios": engine.Scenarios()})
	})

	api.GET("/archetypes", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"archetypes": engine.Archetypes().All()})
	})

	// Expected archetype spread over uniformly random profiles. Useful for
	// sanity-checking signature coverage after editing the content files.
	api.GET("/archetypes/distribution", func(c *gin.Context) {
		runs := simRuns
		if runsParam := c.Query("runs"); runsParam != "" {
			if n, err := strconv.Atoi(runsParam); err == nil && n > 0 && n <= simRuns {
				runs = n
			}
		}

		start := time.Now()
		sim := quiz.NewSimulator(runs, simNoise, time.Now().UnixNano())
		report := sim.DistributionSample(engine.Dimensions(), engine.Archetypes())
		appMetrics.RecordSimulation(runs)
		appLogger.SimulationLogger(runs, simNoise, report.Primary, report.Stability, time.Since(start))

		c.JSON(http.StatusOK, report)
	})

	api.POST("/evaluate", func(c *gin.Context) {
		start := time.Now()

		var req types.EvaluateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			appErr := errors.NewValidationError("invalid request body", err.Error())
			errors.LogError(c, appErr)
			c.JSON(appErr.HTTPStatus, appErr)
			return
		}

		evaluation, err := engine.Evaluate(quiz.EvaluateInput{
			Answers:  req.Answers,
			Choices:  req.Scenarios,
			Simulate: req.Simulate,
			Runs:     req.Runs,
			Noise:    req.Noise,
		})
		if err != nil {
			appErr := errors.NewValidationError(err.Error())
			errors.LogError(c, appErr)
			c.JSON(appErr.HTTPStatus, appErr)
			return
		}

		record := resultStore.Put(evaluation)
		appMetrics.RecordEvaluation(evaluation.Primary.Name)
		if evaluation.Stability != nil {
			appMetrics.RecordSimulation(evaluation.Stability.Runs)
		}

		stability := 0.0
		if evaluation.Stability != nil {
			stability = evaluation.Stability.Stability
		}
		appLogger.EvaluationLogger(len(req.Answers), len(req.Scenarios),
			evaluation.Primary.Name, stability, req.Simulate,
			time.Since(start), c.GetBool("cache_hit"))

		c.JSON(http.StatusOK, types.EvaluateResponse{
			ID:         record.ID,
			Evaluation: *evaluation,
			CreatedAt:  record.CreatedAt,
		})
	})

	api.GET("/results/:id", func(c *gin.Context) {
		record, ok := resultStore.Get(c.Param("id"))
		if !ok {
			c.JSON(http.StatusNotFound, types.ErrorResponse{Error: "result not found"})
			return
		}
		c.JSON(http.StatusOK, types.EvaluateResponse{
			ID:         record.ID,
			Evaluation: *record.Evaluation,
			CreatedAt:  record.CreatedAt,
		})
	})

	api.DELETE("/results/:id", func(c *gin.Context) {
		if !resultStore.Delete(c.Param("id")) {
			c.JSON(http.StatusNotFound, types.ErrorResponse{Error: "result not found"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "result deleted"})
	})

	// Swagger documentation routes
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Operational endpoints
	r.GET("/metrics", func(c *gin.Context) {
		c.JSON(http.StatusOK, appMetrics.GetStats())
	})

	r.GET("/cache/stats", func(c *gin.Context) {
		c.JSON(http.StatusOK, appCache.Stats())
	})

	r.GET("/ratelimit/stats", func(c *gin.Context) {
		c.JSON(http.StatusOK, limiter.GetStats())
	})

	r.GET("/results/stats", func(c *gin.Context) {
		c.JSON(http.StatusOK, resultStore.Stats())
	})

	// Start server with graceful shutdown
	srv := &http.Server{
		Addr:    ":" + port,
		Handler: r,
	}

	go func() {
		slog.Info("Starting server", "port", port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	slog.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if redisClient != nil {
		if err := redisClient.Close(); err != nil {
			slog.Warn("Failed to close Redis client", "error", err)
		}
	}

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("Server exited")
}

func allowedOrigins() []string {
	if origins := os.Getenv("ALLOWED_ORIGINS"); origins != "" {
		var out []string
		for _, part := range strings.Split(origins, ",") {
			if trimmed := strings.TrimSpace(part); trimmed != "" {
				out = append(out, trimmed)
			}
		}
		return out
	}
	return []string{"http://localhost:3000", "http://localhost:5173"}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
		slog.Warn("Invalid integer in environment, using default", "key", key, "value", value)
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
		slog.Warn("Invalid float in environment, using default", "key", key, "value", value)
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
		slog.Warn("Invalid boolean in environment, using default", "key", key, "value", value)
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
		slog.Warn("Invalid duration in environment, using default", "key", key, "value", value)
	}
	return defaultValue
}
