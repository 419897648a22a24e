package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"blog-edge/pkg/kv"
	"blog-edge/pkg/logger"
)

func checkHealth(t *testing.T, h *HealthHandler) (int, healthResponse) {
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	h.Check(rec, req)

	var body healthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return rec.Code, body
}

func TestHealthHandler_Healthy(t *testing.T) {
	h := NewHealthHandler(newTestStore(t), newAssetOrigin(t), logger.NewNop())

	code, body := checkHealth(t, h)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "healthy", body.Status)
	assert.Equal(t, "up", body.Checks["kv"])
	assert.Equal(t, "up", body.Checks["assets"])
	assert.NotEmpty(t, body.Timestamp)
}

func TestHealthHandler_DegradedWhenKVDown(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)

	store, err := kv.NewClient("redis://"+mr.Addr(), "test", zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	mr.Close()

	h := NewHealthHandler(store, newAssetOrigin(t), logger.NewNop())

	code, body := checkHealth(t, h)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "degraded", body.Status)
	assert.Equal(t, "down", body.Checks["kv"])
	assert.Equal(t, "up", body.Checks["assets"])
}

func TestHealthHandler_DegradedWhenAssetsDown(t *testing.T) {
	h := NewHealthHandler(newTestStore(t), downFetcher{}, logger.NewNop())

	code, body := checkHealth(t, h)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "degraded", body.Status)
	assert.Equal(t, "down", body.Checks["assets"])
}

func TestHealthHandler_Unhealthy(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)

	store, err := kv.NewClient("redis://"+mr.Addr(), "test", zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	mr.Close()

	h := NewHealthHandler(store, downFetcher{}, logger.NewNop())

	code, body := checkHealth(t, h)
	assert.Equal(t, http.StatusServiceUnavailable, code)
	assert.Equal(t, "unhealthy", body.Status)
}
