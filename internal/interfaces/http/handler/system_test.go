package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

type stubPinger struct {
	err error
}

func (s stubPinger) Ping() error {
	return s.err
}

func setupSystemRouter(db Pinger) *gin.Engine {
	h := NewSystemHandler(db)
	engine := gin.New()
	api := engine.Group("/api/v1")
	h.RegisterRoutes(api)
	return engine
}

func TestSystemHandler_GetSystemInfo(t *testing.T) {
	engine := setupSystemRouter(stubPinger{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/system/info", nil)
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "E-Invoice Backend API")
	assert.Contains(t, w.Body.String(), "go_version")
}

func TestSystemHandler_Health(t *testing.T) {
	t.Run("healthy", func(t *testing.T) {
		engine := setupSystemRouter(stubPinger{})

		req := httptest.NewRequest(http.MethodGet, "/api/v1/system/health", nil)
		w := httptest.NewRecorder()
		engine.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"database":"up"`)
	})

	t.Run("database down returns 503", func(t *testing.T) {
		engine := setupSystemRouter(stubPinger{err: assert.AnError})

		req := httptest.NewRequest(http.MethodGet, "/api/v1/system/health", nil)
		w := httptest.NewRecorder()
		engine.ServeHTTP(w, req)

		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
		assert.Contains(t, w.Body.String(), `"database":"down"`)
	})

	t.Run("nil pinger is healthy", func(t *testing.T) {
		engine := setupSystemRouter(nil)

		req := httptest.NewRequest(http.MethodGet, "/api/v1/system/health", nil)
		w := httptest.NewRecorder()
		engine.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
	})
}
