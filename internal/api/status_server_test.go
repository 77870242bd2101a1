package api

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/annel0/chunk-inspector/internal/auth"
	"github.com/annel0/chunk-inspector/internal/inspector"
	"github.com/annel0/chunk-inspector/internal/save"
	"github.com/annel0/chunk-inspector/internal/vec"
	"github.com/gin-gonic/gin"
	"github.com/segmentio/encoding/json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type response struct {
	Success bool                   `json:"success"`
	Data    map[string]interface{} `json:"data"`
}

func get(t *testing.T, h http.Handler, path, token string) (int, response) {
	t.Helper()
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	h.ServeHTTP(w, req)

	var resp response
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	return w.Code, resp
}

func overloadedBricks() []save.Brick {
	bricks := make([]save.Brick, 0, 70001)
	for i := 0; i < 70000; i++ {
		bricks = append(bricks, save.NewBrick("PB_DefaultBrick", vec.Vec3Float{X: 700, Y: 10, Z: 5}, vec.Vec3Float{X: 5, Y: 5, Z: 5}))
	}
	return append(bricks, save.NewBrick("PB_DefaultBrick", vec.Vec3Float{X: 10, Y: 10, Z: 5}, vec.Vec3Float{X: 5, Y: 5, Z: 5}))
}

func TestHealthReportsState(t *testing.T) {
	engine := inspector.New(nil)
	ss := NewStatusServer(Config{Engine: engine, Version: "test"})

	w := httptest.NewRecorder()
	ss.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"state":"uninitialized"`)

	engine.Analyze(nil)
	w = httptest.NewRecorder()
	ss.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Contains(t, w.Body.String(), `"state":"analyzed"`)
}

func TestAnalysisEndpoints(t *testing.T) {
	engine := inspector.New(nil)
	h := NewStatusServer(Config{Engine: engine}).Handler()

	code, _ := get(t, h, "/api/analysis", "")
	assert.Equal(t, http.StatusServiceUnavailable, code)
	code, _ = get(t, h, "/api/chunks/0/0", "")
	assert.Equal(t, http.StatusServiceUnavailable, code)

	engine.Analyze(overloadedBricks())

	code, resp := get(t, h, "/api/analysis", "")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, 70001.0, resp.Data["bricks"])
	assert.Equal(t, 2.0, resp.Data["chunks"])
	flagged := resp.Data["flagged"].([]interface{})
	require.Len(t, flagged, 1)
	first := flagged[0].(map[string]interface{})
	assert.Equal(t, 1.0, first["x"])
	assert.Equal(t, "overloaded", first["severity"])

	code, resp = get(t, h, "/api/chunks/1/0", "")
	require.Equal(t, http.StatusOK, code)
	chunk := resp.Data["chunk"].(map[string]interface{})
	assert.Equal(t, 70000.0, chunk["colliders"])
	assert.Len(t, resp.Data["corners"], 8)

	code, resp = get(t, h, "/api/chunks/-4/9", "")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "empty", resp.Data["chunk"].(map[string]interface{})["severity"])

	code, _ = get(t, h, "/api/chunks/a/0", "")
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = get(t, h, "/api/chunks/9223372036854775807/0", "")
	assert.Equal(t, http.StatusBadRequest, code, "координата вне диапазона чанков")
	code, _ = get(t, h, "/api/chunks/0/-18014398509481983", "")
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestSystemAndMetrics(t *testing.T) {
	h := NewStatusServer(Config{Engine: inspector.New(nil)}).Handler()

	code, resp := get(t, h, "/api/system", "")
	require.Equal(t, http.StatusOK, code)
	assert.NotEmpty(t, resp.Data["uptime"])

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "chunks_api_http_request_duration_seconds")
}

func TestAPIRequiresTokenWhenIssuerSet(t *testing.T) {
	secret, err := auth.GenerateSecureSecret()
	require.NoError(t, err)
	issuer, err := auth.NewTokenIssuer(secret, []string{"ops"})
	require.NoError(t, err)
	token, err := issuer.Issue("ops", time.Minute)
	require.NoError(t, err)

	h := NewStatusServer(Config{Engine: inspector.New(nil), Issuer: issuer}).Handler()

	code, _ := get(t, h, "/api/system", "")
	assert.Equal(t, http.StatusUnauthorized, code)
	code, _ = get(t, h, "/api/system", token)
	assert.Equal(t, http.StatusOK, code)

	// health открыт всегда
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestFormatUptime(t *testing.T) {
	assert.Equal(t, "5с", formatUptime(5*time.Second))
	assert.Equal(t, "2м 3с", formatUptime(2*time.Minute+3*time.Second))
	assert.Equal(t, "1ч 0м 0с", formatUptime(time.Hour))
	assert.Equal(t, "1д 1ч 0м 0с", formatUptime(25*time.Hour))
}
