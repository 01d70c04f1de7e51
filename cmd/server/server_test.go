package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/innovatorlabs/itype/internal/config"
	"github.com/innovatorlabs/itype/internal/errors"
	"github.com/innovatorlabs/itype/internal/quiz"
	"github.com/innovatorlabs/itype/internal/results"
	"github.com/innovatorlabs/itype/internal/types"
)

// setupRouter assembles the API routes over the embedded default content,
// mirroring the wiring in main without rate limiting or Redis.
func setupRouter(t *testing.T) (*gin.Engine, *results.Store) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := config.NewStore(t.TempDir())

	questions, err := store.LoadQuestions()
	require.NoError(t, err)
	scenarios, err := store.LoadScenarios()
	require.NoError(t, err)
	archetypes, warnings, err := store.LoadArchetypes(false)
	require.NoError(t, err)
	require.Empty(t, warnings)

	engine := quiz.NewEngine(questions, scenarios, archetypes, quiz.Options{
		Runs: 500,
		Seed: 42,
	})
	resultStore := results.NewStore(time.Hour)

	r := gin.New()
	r.Use(errors.ErrorHandler())
	r.Use(errors.RecoveryHandler())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api")

	api.GET("/questions", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"questions": engine.Questions()})
	})

	api.GET("/archetypes", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"archetypes": engine.Archetypes().All()})
	})

	api.GET("/archetypes/distribution", func(c *gin.Context) {
		sim := quiz.NewSimulator(200, quiz.DefaultNoise, 42)
		c.JSON(http.StatusOK, sim.DistributionSample(engine.Dimensions(), engine.Archetypes()))
	})

	api.POST("/evaluate", func(c *gin.Context) {
		var req types.EvaluateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			appErr := errors.NewValidationError("invalid request body", err.Error())
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
			c.JSON(appErr.HTTPStatus, appErr)
			return
		}

		record := resultStore.Put(evaluation)
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

	return r, resultStore
}

func fullAnswerBody(value int) map[string]interface{} {
	dims := []string{"thinking", "execution", "risk", "motivation", "team", "commercial"}
	answers := map[string]interface{}{}
	for i, dim := range dims {
		answers[fmt.Sprintf("q%d", i+1)] = map[string]interface{}{
			"value":     value,
			"dimension": dim,
		}
	}
	return map[string]interface{}{"answers": answers}
}

func postJSON(r *gin.Engine, path string, body interface{}) *httptest.ResponseRecorder {
	data, _ := json.Marshal(body)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	return w
}

func TestHealthEndpoint(t *testing.T) {
	r, _ := setupRouter(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestQuestionsEndpoint(t *testing.T) {
	r, _ := setupRouter(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/questions", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var response struct {
		Questions []quiz.Question `json:"questions"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.NotEmpty(t, response.Questions)
	for _, q := range response.Questions {
		assert.NotEmpty(t, q.Dimension)
	}
}

func TestArchetypesEndpoint(t *testing.T) {
	r, _ := setupRouter(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/archetypes", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var response struct {
		Archetypes []quiz.Archetype `json:"archetypes"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Len(t, response.Archetypes, 6)
}

func TestEvaluateEndpoint(t *testing.T) {
	r, _ := setupRouter(t)

	w := postJSON(r, "/api/evaluate", fullAnswerBody(4))
	require.Equal(t, http.StatusOK, w.Code)

	var response types.EvaluateResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))

	assert.NotEmpty(t, response.ID)
	assert.True(t, response.Evaluation.Primary.Matched)
	assert.NotEqual(t, quiz.UndefinedArchetype, response.Evaluation.Primary.Name)
	for dim, score := range response.Evaluation.Scores {
		assert.GreaterOrEqual(t, score, 0.0, dim)
		assert.LessOrEqual(t, score, 100.0, dim)
	}
	assert.Nil(t, response.Evaluation.Stability)
}

func TestEvaluateWithSimulation(t *testing.T) {
	r, _ := setupRouter(t)

	body := fullAnswerBody(5)
	body["simulate"] = true
	w := postJSON(r, "/api/evaluate", body)
	require.Equal(t, http.StatusOK, w.Code)

	var response types.EvaluateResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))

	require.NotNil(t, response.Evaluation.Stability)
	assert.Equal(t, 500, response.Evaluation.Stability.Runs)

	total := 0.0
	for _, pct := range response.Evaluation.Stability.Distribution {
		total += pct
	}
	assert.InDelta(t, 100.0, total, 1e-9)
}

func TestEvaluateRejectsBadInput(t *testing.T) {
	r, _ := setupRouter(t)

	tests := []struct {
		name string
		body map[string]interface{}
	}{
		{name: "missing answers", body: map[string]interface{}{}},
		{name: "empty answers", body: map[string]interface{}{"answers": map[string]interface{}{}}},
		{name: "value out of range", body: map[string]interface{}{
			"answers": map[string]interface{}{
				"q1": map[string]interface{}{"value": 9, "dimension": "thinking"},
			},
		}},
		{name: "missing dimension", body: map[string]interface{}{
			"answers": map[string]interface{}{
				"q1": map[string]interface{}{"value": 3},
			},
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := postJSON(r, "/api/evaluate", tt.body)
			require.Equal(t, http.StatusBadRequest, w.Code)

			var body map[string]interface{}
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, "validation", body["category"])
			assert.Equal(t, float64(http.StatusBadRequest), body["http_status"])
			assert.NotEmpty(t, body["message"])
			assert.NotEmpty(t, body["cause"])
		})
	}
}

func TestResultLifecycle(t *testing.T) {
	r, _ := setupRouter(t)

	w := postJSON(r, "/api/evaluate", fullAnswerBody(2))
	require.Equal(t, http.StatusOK, w.Code)

	var created types.EvaluateResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))

	// Fetch it back.
	get := httptest.NewRecorder()
	r.ServeHTTP(get, httptest.NewRequest(http.MethodGet, "/api/results/"+created.ID, nil))
	require.Equal(t, http.StatusOK, get.Code)

	var fetched types.EvaluateResponse
	require.NoError(t, json.Unmarshal(get.Body.Bytes(), &fetched))
	assert.Equal(t, created.Evaluation.Primary.Name, fetched.Evaluation.Primary.Name)

	// Delete it.
	del := httptest.NewRecorder()
	r.ServeHTTP(del, httptest.NewRequest(http.MethodDelete, "/api/results/"+created.ID, nil))
	assert.Equal(t, http.StatusOK, del.Code)

	// Gone now.
	gone := httptest.NewRecorder()
	r.ServeHTTP(gone, httptest.NewRequest(http.MethodGet, "/api/results/"+created.ID, nil))
	assert.Equal(t, http.StatusNotFound, gone.Code)
}

func TestResultNotFound(t *testing.T) {
	r, _ := setupRouter(t)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/results/does-not-exist", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)

	d := httptest.NewRecorder()
	r.ServeHTTP(d, httptest.NewRequest(http.MethodDelete, "/api/results/does-not-exist", nil))
	assert.Equal(t, http.StatusNotFound, d.Code)
}

func TestDistributionEndpoint(t *testing.T) {
	r, _ := setupRouter(t)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/archetypes/distribution", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var report quiz.StabilityReport
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &report))

	total := 0.0
	for _, pct := range report.Distribution {
		total += pct
	}
	assert.InDelta(t, 100.0, total, 1e-9)
	assert.Equal(t, 200, report.Runs)
}

func TestEnvHelpers(t *testing.T) {
	t.Setenv("ITYPE_TEST_INT", "7")
	assert.Equal(t, 7, getEnvInt("ITYPE_TEST_INT", 3))
	assert.Equal(t, 3, getEnvInt("ITYPE_TEST_INT_MISSING", 3))

	t.Setenv("ITYPE_TEST_FLOAT", "0.4")
	assert.Equal(t, 0.4, getEnvFloat("ITYPE_TEST_FLOAT", 0.75))

	t.Setenv("ITYPE_TEST_BOOL", "true")
	assert.True(t, getEnvBool("ITYPE_TEST_BOOL", false))

	t.Setenv("ITYPE_TEST_DUR", "90s")
	assert.Equal(t, 90*time.Second, getEnvDuration("ITYPE_TEST_DUR", time.Hour))

	t.Setenv("ITYPE_TEST_BAD_INT", "seven")
	assert.Equal(t, 3, getEnvInt("ITYPE_TEST_BAD_INT", 3))
}
