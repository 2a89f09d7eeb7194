package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSystemTestEngine() *gin.Engine {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	NewSystemHandler().RegisterRoutes(engine.Group("/api/v1"))
	return engine
}

func TestSystemHandlerPing(t *testing.T) {
	engine := newSystemTestEngine()

	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/system/ping", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Success bool         `json:"success"`
		Data    PingResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, "pong", resp.Data.Message)
	assert.NotEmpty(t, resp.Data.Timestamp)
}

func TestSystemHandlerGetSystemInfo(t *testing.T) {
	engine := newSystemTestEngine()

	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/system/info", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Success bool               `json:"success"`
		Data    SystemInfoResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, "PesoBook API", resp.Data.Name)
	assert.NotEmpty(t, resp.Data.Version)
	assert.NotEmpty(t, resp.Data.GoVersion)
}
