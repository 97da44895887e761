package http

import (
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHealth(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/api/health", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Status    string `json:"status"`
		Message   string `json:"message"`
		Timestamp string `json:"timestamp"`
	}
	decode(t, rec, &resp)
	assert.Equal(t, "OK", resp.Status)
	assert.Equal(t, "Server is running", resp.Message)
	_, err := time.Parse(time.RFC3339, resp.Timestamp)
	assert.NoError(t, err)
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}

func TestInfoAndDocs(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"environment":"development"`)

	rec = env.do(t, http.MethodGet, "/api", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "/api/tasks/stats")
}

func TestUnknownRoute(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/api/nothing?x=1", nil, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"error":"Route not found","message":"Cannot GET /api/nothing?x=1"}`, rec.Body.String())

	rec = env.do(t, http.MethodPatch, "/api/tasks/1", gin.H{}, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCORSPreflight(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodOptions, "/api/tasks", nil, "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestRecoveryExposesStackOnlyInDevelopment(t *testing.T) {
	dev := newTestEnv(t)
	dev.router.GET("/boom", func(*gin.Context) { panic("kaboom") })

	rec := dev.do(t, http.MethodGet, "/boom", nil, "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	var body map[string]any
	decode(t, rec, &body)
	assert.Equal(t, "kaboom", body["error"])
	assert.NotEmpty(t, body["stack"])

	prod := newTestEnv(t, production())
	prod.router.GET("/boom", func(*gin.Context) { panic("kaboom") })

	rec = prod.do(t, http.MethodGet, "/boom", nil, "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"Internal Server Error"}`, rec.Body.String())
}
