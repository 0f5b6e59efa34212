package middleware

import (
	"bytes"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newLogged() (*gin.Engine, *bytes.Buffer) {
	gin.SetMode(gin.TestMode)
	var buf bytes.Buffer
	log := slog.New(slog.NewJSONHandler(&buf, nil))

	r := gin.New()
	r.Use(RequestID(), ErrorLogger(log))
	return r, &buf
}

func TestErrorLoggerRecoversPanic(t *testing.T) {
	r, buf := newLogged()
	r.GET("/boom", func(c *gin.Context) { panic("kaboom") })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/boom", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "INTERNAL_ERROR")
	assert.NotContains(t, w.Body.String(), "kaboom")
	assert.Contains(t, buf.String(), "kaboom")
	assert.Contains(t, buf.String(), `"type":"panic"`)
}

func TestErrorLoggerSkipsBusinessErrors(t *testing.T) {
	r, buf := newLogged()
	r.GET("/conflict", func(c *gin.Context) { c.Status(http.StatusBadRequest) })
	r.GET("/fault", func(c *gin.Context) {
		_ = c.Error(errors.New("connection reset"))
		c.Status(http.StatusInternalServerError)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/conflict", nil))
	assert.Empty(t, buf.String())

	w = httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/fault", nil)
	req.Header.Set("X-Request-ID", "req-123")
	r.ServeHTTP(w, req)
	assert.Contains(t, buf.String(), "connection reset")
	assert.Contains(t, buf.String(), "req-123")
}

func TestRequestIDGeneratedAndEchoed(t *testing.T) {
	r, _ := newLogged()
	r.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, c.GetString("request_id")) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/ping", nil))
	id := w.Header().Get("X-Request-ID")
	require.NotEmpty(t, id)
	assert.Equal(t, id, w.Body.String())

	w = httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/ping", nil)
	req.Header.Set("X-Request-ID", "given")
	r.ServeHTTP(w, req)
	assert.Equal(t, "given", w.Header().Get("X-Request-ID"))
}

func TestCORS(t *testing.T) {
	r := gin.New()
	r.Use(CORS([]string{"https://fleet.example.kz"}))
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodOptions, "/x", nil)
	req.Header.Set("Origin", "https://fleet.example.kz")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "https://fleet.example.kz", w.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}
