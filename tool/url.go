package tool

import (
	"fmt"
	"strings"
)

// BuildUploadURL joins base and endpoint with exactly one slash.
// An empty base returns the endpoint unchanged, i.e. relative to the page origin.
// An empty endpoint falls back to DefaultUploadEndpoint.
func BuildUploadURL(base, endpoint string) string {
	base = strings.TrimSpace(base)
	endpoint = strings.TrimSpace(endpoint)
	if endpoint == "" {
		endpoint = DefaultUploadEndpoint
	}
	if base == "" {
		return endpoint
	}
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(endpoint, "/")
}

// BuildLocalURL builds http://127.0.0.1:<port><path> for the local API.
func BuildLocalURL(port int, path string) string {
	if path != "" && !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return fmt.Sprintf("http://127.0.0.1:%d%s", port, path)
}

// BuildPreviewBaseURL is the prefix under which preview handles are served.
func BuildPreviewBaseURL(port int) string {
	return BuildLocalURL(port, "/api/self/v1/preview")
}
