package tool

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/moyoez/deeddesk-go/types"
)

func TestLoadConfig_CreatesDefault(t *testing.T) {
	t.Setenv(EnvAPIBaseURL, "")
	os.Unsetenv(EnvAPIBaseURL)
	t.Setenv(EnvUploadEndpoint, "")
	os.Unsetenv(EnvUploadEndpoint)

	path := filepath.Join(t.TempDir(), "config.yaml")
	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig().APIBaseURL, cfg.APIBaseURL)
	assert.Equal(t, DefaultUploadEndpoint, cfg.UploadEndpoint)
	assert.FileExists(t, path)
	assert.Equal(t, path, ConfigPath)
}

func TestLoadConfig_FileEnvAndFlags(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
apiBaseUrl: http://file:8000
uploadEndpoint: /extract
listenPort: 6000
formFields:
  prompt: transcribe
`), 0o644))
	t.Setenv(EnvAPIBaseURL, "  http://env:9000  ")
	t.Setenv(EnvUploadEndpoint, "   ")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "http://env:9000", cfg.APIBaseURL)
	assert.Equal(t, DefaultUploadEndpoint, cfg.UploadEndpoint, "blank endpoint falls back to the default")
	assert.Equal(t, 6000, cfg.ListenPort)
	assert.Equal(t, "transcribe", cfg.FormFields["prompt"])
	assert.Equal(t, 60, cfg.ReceiptTTLMinutes)

	ApplyFlagOverrides(&cfg, types.Config{UseBaseUrl: "http://flag:1", UsePort: 7000, UseNotifySocket: "/tmp/n.sock", SkipNotify: true})
	assert.Equal(t, "http://flag:1", cfg.APIBaseURL)
	assert.Equal(t, 7000, cfg.ListenPort)
	assert.Empty(t, cfg.NotifySocketPath)
	assert.Equal(t, cfg, GetCurrentConfig())
}

func TestLoadConfig_Errors(t *testing.T) {
	dir := t.TempDir()
	_, err := LoadConfig(dir)
	assert.ErrorContains(t, err, "directory")

	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("listenPort: [1"), 0o644))
	_, err = LoadConfig(bad)
	assert.ErrorContains(t, err, "failed to parse config file")
}

func TestPersistAppConfig(t *testing.T) {
	ConfigPath = filepath.Join(t.TempDir(), "config.yaml")
	cfg := DefaultConfig()
	cfg.UploadEndpoint = " /extract "
	require.NoError(t, PersistAppConfig(&cfg))
	assert.Equal(t, "/extract", GetCurrentConfig().UploadEndpoint)

	updated, err := UpdateConfig(func(c *types.AppConfig) {
		c.FormFields["prompt"] = "transcribe"
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, "transcribe", updated.FormFields["prompt"])

	got := GetCurrentConfig()
	got.FormFields["prompt"] = "changed by caller"
	assert.Equal(t, "transcribe", GetCurrentConfig().FormFields["prompt"], "callers get a copy")

	t.Setenv(EnvUploadEndpoint, "")
	os.Unsetenv(EnvUploadEndpoint)
	t.Setenv(EnvAPIBaseURL, "")
	os.Unsetenv(EnvAPIBaseURL)
	loaded, err := LoadConfig(ConfigPath)
	require.NoError(t, err)
	assert.Equal(t, "/extract", loaded.UploadEndpoint)
}
