package api

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/moyoez/deeddesk-go/api/controllers"
	"github.com/moyoez/deeddesk-go/api/notifyhub"
	"github.com/moyoez/deeddesk-go/preview"
	"github.com/moyoez/deeddesk-go/uploader"
)

func newTestServer(t *testing.T, hub *notifyhub.Hub) http.Handler {
	t.Helper()
	gin.SetMode(gin.TestMode)
	reg := prometheus.NewRegistry()
	registry := preview.NewRegistry("")
	manager := uploader.New(uploader.Options{
		Handles: registry,
		Metrics: uploader.NewMetrics(reg),
	})
	t.Cleanup(manager.Close)

	srv := NewServer(0, manager, registry, hub)
	srv.SetGatherer(reg)
	srv.SetSubmitRate(1)
	return srv.Handler()
}

func localRequest(method, path string) *http.Request {
	req := httptest.NewRequest(method, path, nil)
	req.RemoteAddr = "127.0.0.1:40000"
	return req
}

func TestServer_LocalOnly(t *testing.T) {
	h := newTestServer(t, nil)

	w := httptest.NewRecorder()
	h.ServeHTTP(w, localRequest(http.MethodGet, SelfAPIPrefix+"/state"))
	assert.Equal(t, http.StatusOK, w.Code)

	req := httptest.NewRequest(http.MethodGet, SelfAPIPrefix+"/state", nil)
	req.RemoteAddr = "10.0.0.8:40000"
	w = httptest.NewRecorder()
	h.ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestServer_SubmitRateLimited(t *testing.T) {
	h := newTestServer(t, nil)

	codes := make([]int, 0, 3)
	for range 3 {
		w := httptest.NewRecorder()
		h.ServeHTTP(w, localRequest(http.MethodPost, SelfAPIPrefix+"/submit"))
		codes = append(codes, w.Code)
	}
	assert.Equal(t, http.StatusBadRequest, codes[0])
	assert.Contains(t, codes, http.StatusTooManyRequests)
}

func TestServer_Metrics(t *testing.T) {
	h := newTestServer(t, nil)

	w := httptest.NewRecorder()
	h.ServeHTTP(w, localRequest(http.MethodPost, SelfAPIPrefix+"/submit"))
	require.Equal(t, http.StatusBadRequest, w.Code)

	w = httptest.NewRecorder()
	h.ServeHTTP(w, localRequest(http.MethodGet, "/metrics"))
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "deeddesk_preview_handles_live 0")
	assert.True(t, strings.Contains(body, `deeddesk_submits_total{outcome="rejected",reason="validation"} 1`), body)
}

func TestServer_NotifyRouteFollowsHub(t *testing.T) {
	w := httptest.NewRecorder()
	newTestServer(t, nil).ServeHTTP(w, localRequest(http.MethodGet, SelfAPIPrefix+"/notify-ws"))
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = httptest.NewRecorder()
	newTestServer(t, notifyhub.New()).ServeHTTP(w, localRequest(http.MethodGet, SelfAPIPrefix+"/notify-ws"))
	// A plain GET reaches the handler, which refuses the non-WebSocket handshake.
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestServer_MultipartMemory(t *testing.T) {
	engine, ok := newTestServer(t, nil).(*gin.Engine)
	require.True(t, ok)
	assert.Equal(t, int64(controllers.MaxMultipartMemory), engine.MaxMultipartMemory)
}
