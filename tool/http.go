package tool

import (
	"crypto/tls"
	"net/http"
	"time"
)

var (
	DefaultTimeout       = 300 * time.Second
	ConnectionHttpClient *http.Client
)

func init() {
	ConnectionHttpClient = NewHTTPClient(DefaultTimeout, false)
}

// NewHTTPClient creates the client used for upload requests. A zero timeout means no client timeout.
func NewHTTPClient(timeout time.Duration, insecureSkipVerify bool) *http.Client {
	transport := &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		MaxIdleConns:        10,
		MaxIdleConnsPerHost: 2,
		IdleConnTimeout:     90 * time.Second,
	}
	if insecureSkipVerify {
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true}
	}
	return &http.Client{
		Timeout:   timeout,
		Transport: transport,
	}
}

// InitHTTPClients (re)initializes the shared client from the loaded config.
func InitHTTPClients(timeoutSeconds int, insecureSkipVerify bool) {
	ConnectionHttpClient = NewHTTPClient(time.Duration(timeoutSeconds)*time.Second, insecureSkipVerify)
}

func GetHttpClient() *http.Client {
	return ConnectionHttpClient
}
