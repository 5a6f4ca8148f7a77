package types

// AppConfig represents the application configuration loaded from config file
type AppConfig struct {
	APIBaseURL            string            `yaml:"apiBaseUrl"`     // empty means relative to the page origin
	UploadEndpoint        string            `yaml:"uploadEndpoint"` // joined to apiBaseUrl with exactly one slash
	ListenPort            int               `yaml:"listenPort"`
	RequestTimeoutSeconds int               `yaml:"requestTimeoutSeconds"` // 0 disables the client timeout
	InsecureSkipVerify    bool              `yaml:"insecureSkipVerify,omitempty"`
	FormFields            map[string]string `yaml:"formFields,omitempty"` // sent after the file parts, e.g. prompt
	ReceiptTTLMinutes     int               `yaml:"receiptTTLMinutes"`
	SubmitRatePerSecond   float64           `yaml:"submitRatePerSecond"`
	NotifySocketPath      string            `yaml:"notifySocketPath,omitempty"`
}

// Config holds runtime overrides from CLI flags
type Config struct {
	Log             string
	UseConfigPath   string
	UseBaseUrl      string
	UseEndpoint     string
	UsePort         int
	UseTimeout      int    // seconds, 0 keeps the config value
	UseNotifySocket string // unix socket that receives upload_end notifications
	SkipNotify      bool   // if true, never write to the notify socket
}
