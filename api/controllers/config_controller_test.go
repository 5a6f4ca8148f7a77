package controllers

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/bytedance/sonic"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/moyoez/deeddesk-go/tool"
	"github.com/moyoez/deeddesk-go/types"
	"github.com/moyoez/deeddesk-go/uploader"
)

func setupConfigRouter(t *testing.T) (*gin.Engine, *uploader.Manager) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	oldPath, oldCfg := tool.ConfigPath, tool.GetCurrentConfig()
	t.Cleanup(func() {
		tool.ConfigPath = oldPath
		tool.SetCurrentConfig(oldCfg)
	})
	tool.ConfigPath = filepath.Join(t.TempDir(), "config.yaml")
	cfg := tool.DefaultConfig()
	tool.SetCurrentConfig(cfg)

	manager := uploader.New(uploader.Options{BaseURL: cfg.APIBaseURL, Endpoint: cfg.UploadEndpoint})
	t.Cleanup(manager.Close)
	ctrl := NewConfigController(manager)
	router := gin.New()
	router.GET("/config", ctrl.HandleConfigGet)
	router.PATCH("/config", ctrl.HandleConfigPatch)
	return router, manager
}

func patchConfig(router http.Handler, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPatch, "/config", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)
	return w
}

func TestConfigPatch(t *testing.T) {
	router, manager := setupConfigRouter(t)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/config", nil))
	require.Equal(t, http.StatusOK, w.Code)
	var got types.ConfigResponse
	require.NoError(t, sonic.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, "http://127.0.0.1:8000/api/deeds/upload", got.UploadURL)

	body := `{"apiBaseUrl":"http://ocr.lan:8000/","uploadEndpoint":"extract","formFields":{"prompt":"transcribe"}}`
	w = patchConfig(router, body)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	require.NoError(t, sonic.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, "http://ocr.lan:8000/extract", got.UploadURL)
	assert.Equal(t, "http://ocr.lan:8000/extract", manager.UploadURL())

	data, err := os.ReadFile(tool.ConfigPath)
	require.NoError(t, err)
	var saved types.AppConfig
	require.NoError(t, yaml.Unmarshal(data, &saved))
	assert.Equal(t, "extract", saved.UploadEndpoint)
	assert.Equal(t, "transcribe", saved.FormFields["prompt"])

	w = patchConfig(router, "{")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

// Run with -race: readers and writers of the configuration overlap here.
func TestConfigPatch_Concurrent(t *testing.T) {
	router, manager := setupConfigRouter(t)

	const n = 20
	var wg sync.WaitGroup
	for i := range n {
		wg.Add(2)
		go func() {
			defer wg.Done()
			body := fmt.Sprintf(`{"uploadEndpoint":"/extract/%d","formFields":{"prompt":"p%d"}}`, i, i)
			w := patchConfig(router, body)
			assert.Equal(t, http.StatusOK, w.Code, w.Body.String())
		}()
		go func() {
			defer wg.Done()
			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/config", nil))
			assert.Equal(t, http.StatusOK, w.Code)
		}()
	}
	wg.Wait()

	// The last write wins everywhere: current config, file and manager agree.
	current := tool.GetCurrentConfig()
	assert.Equal(t, tool.BuildUploadURL(current.APIBaseURL, current.UploadEndpoint), manager.UploadURL())

	data, err := os.ReadFile(tool.ConfigPath)
	require.NoError(t, err)
	var saved types.AppConfig
	require.NoError(t, yaml.Unmarshal(data, &saved))
	assert.Equal(t, current.UploadEndpoint, saved.UploadEndpoint)
	assert.Equal(t, current.FormFields, saved.FormFields)
	assert.Equal(t, "p"+strings.TrimPrefix(current.UploadEndpoint, "/extract/"), current.FormFields["prompt"])
}
