package tool

import (
	"fmt"
	"maps"
	"os"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/moyoez/deeddesk-go/types"
)

const (
	DefaultUploadEndpoint = "/api/deeds/upload"
	// EnvAPIBaseURL and EnvUploadEndpoint override the config file, flags override both.
	EnvAPIBaseURL     = "DEEDDESK_API_BASE_URL"
	EnvUploadEndpoint = "DEEDDESK_UPLOAD_ENDPOINT"
)

var (
	ConfigPath = "config.yaml" // be aware that it can be changed, default to ./config.yaml

	configMu      sync.RWMutex
	currentConfig types.AppConfig
)

func DefaultConfig() types.AppConfig {
	return types.AppConfig{
		APIBaseURL:            "http://127.0.0.1:8000", // the OCR server listens here by default
		UploadEndpoint:        DefaultUploadEndpoint,
		ListenPort:            53318,
		RequestTimeoutSeconds: 300, // OCR over a batch of images is slow
		FormFields:            map[string]string{},
		ReceiptTTLMinutes:     60,
		SubmitRatePerSecond:   2,
	}
}

// LoadConfig reads path (or ConfigPath), writing a default file when none exists,
// then applies environment overrides.
func LoadConfig(path string) (types.AppConfig, error) {
	if path == "" {
		path = ConfigPath
	}
	ConfigPath = path

	cfg := DefaultConfig()

	info, err := os.Stat(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return cfg, fmt.Errorf("failed to read config file: %v", err)
		}
		if writeErr := writeDefaultConfig(path, cfg); writeErr != nil {
			return cfg, fmt.Errorf("config file not found, and failed to generate default config: %v", writeErr)
		}
		DefaultLogger.Infof("Created new config file at %s", path)
	} else {
		if info.IsDir() {
			return cfg, fmt.Errorf("config file path is a directory: %s", path)
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("failed to read config file: %v", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("failed to parse config file: %v", err)
		}
	}

	applyEnvOverrides(&cfg)
	normalizeConfig(&cfg)
	SetCurrentConfig(cfg)
	return cfg, nil
}

func applyEnvOverrides(cfg *types.AppConfig) {
	if v, ok := os.LookupEnv(EnvAPIBaseURL); ok {
		cfg.APIBaseURL = v
	}
	if v, ok := os.LookupEnv(EnvUploadEndpoint); ok {
		cfg.UploadEndpoint = v
	}
}

func normalizeConfig(cfg *types.AppConfig) {
	cfg.APIBaseURL = strings.TrimSpace(cfg.APIBaseURL)
	cfg.UploadEndpoint = strings.TrimSpace(cfg.UploadEndpoint)
	if cfg.UploadEndpoint == "" {
		cfg.UploadEndpoint = DefaultUploadEndpoint
	}
	if cfg.ListenPort <= 0 {
		cfg.ListenPort = DefaultConfig().ListenPort
	}
	if cfg.RequestTimeoutSeconds < 0 {
		cfg.RequestTimeoutSeconds = 0
	}
	if cfg.ReceiptTTLMinutes <= 0 {
		cfg.ReceiptTTLMinutes = DefaultConfig().ReceiptTTLMinutes
	}
	if cfg.FormFields == nil {
		cfg.FormFields = map[string]string{}
	}
}

// ApplyFlagOverrides merges non-zero CLI flags into cfg.
func ApplyFlagOverrides(cfg *types.AppConfig, flags types.Config) {
	if flags.UseBaseUrl != "" {
		cfg.APIBaseURL = flags.UseBaseUrl
	}
	if flags.UseEndpoint != "" {
		cfg.UploadEndpoint = flags.UseEndpoint
	}
	if flags.UsePort > 0 {
		cfg.ListenPort = flags.UsePort
	}
	if flags.UseTimeout > 0 {
		cfg.RequestTimeoutSeconds = flags.UseTimeout
	}
	if flags.UseNotifySocket != "" {
		cfg.NotifySocketPath = flags.UseNotifySocket
	}
	if flags.SkipNotify {
		cfg.NotifySocketPath = ""
	}
	normalizeConfig(cfg)
	SetCurrentConfig(*cfg)
}

func writeDefaultConfig(path string, cfg types.AppConfig) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// GetCurrentConfig returns a copy of the effective configuration.
func GetCurrentConfig() types.AppConfig {
	configMu.RLock()
	defer configMu.RUnlock()
	return cloneConfig(currentConfig)
}

// SetCurrentConfig replaces the effective configuration without writing the file.
func SetCurrentConfig(cfg types.AppConfig) {
	configMu.Lock()
	defer configMu.Unlock()
	currentConfig = cloneConfig(cfg)
}

// PersistAppConfig writes cfg to ConfigPath and makes it current.
func PersistAppConfig(cfg *types.AppConfig) error {
	configMu.Lock()
	defer configMu.Unlock()
	return persistLocked(cfg)
}

// UpdateConfig applies fn to a copy of the current configuration, writes the result to
// ConfigPath and makes it current, all under one lock. apply, when set, runs before the
// lock is released so whatever mirrors the configuration stays in the same order as
// the file. Nothing changes when persisting fails.
func UpdateConfig(fn func(cfg *types.AppConfig), apply func(cfg types.AppConfig)) (types.AppConfig, error) {
	configMu.Lock()
	defer configMu.Unlock()

	cfg := cloneConfig(currentConfig)
	fn(&cfg)
	if err := persistLocked(&cfg); err != nil {
		return cloneConfig(currentConfig), err
	}
	if apply != nil {
		apply(cloneConfig(cfg))
	}
	return cloneConfig(cfg), nil
}

func persistLocked(cfg *types.AppConfig) error {
	normalizeConfig(cfg)
	if err := writeDefaultConfig(ConfigPath, *cfg); err != nil {
		return fmt.Errorf("failed to write config file: %v", err)
	}
	currentConfig = cloneConfig(*cfg)
	return nil
}

func cloneConfig(cfg types.AppConfig) types.AppConfig {
	cfg.FormFields = maps.Clone(cfg.FormFields)
	return cfg
}
