package logging

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

func TestGinLoggerWritesRequestEvent(t *testing.T) {
	gin.SetMode(gin.TestMode)
	var buf bytes.Buffer
	logger := newLogger(&buf, "json", "info")

	r := gin.New()
	r.Use(GinLogger(logger))
	r.GET("/api/rates", func(c *gin.Context) {
		c.Set("userID", uint(7))
		c.Status(http.StatusNoContent)
	})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/rates", nil))

	var evt map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &evt))
	require.Equal(t, "http_request", evt["message"])
	require.Equal(t, "/api/rates", evt["route"])
	require.Equal(t, float64(http.StatusNoContent), evt["status"])
	require.Equal(t, float64(7), evt["user_id"])
	require.Equal(t, "info", evt["level"])
}

func TestNewLoggerFallsBackToInfo(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, "json", "nonsense")
	logger.Debug().Msg("hidden")
	require.Zero(t, buf.Len())
	logger.Info().Msg("shown")
	require.NotZero(t, buf.Len())
}
