// Package preview hands out transient local URLs for picked files and serves their bytes
// until the URL is revoked.
package preview

import (
	"errors"
	"strings"
	"sync"

	"github.com/moyoez/deeddesk-go/tool"
	"github.com/moyoez/deeddesk-go/types"
)

// SchemePrefix is used for handles when no HTTP base URL is configured (CLI mode).
const SchemePrefix = "preview://"

var ErrHandleNotFound = errors.New("preview handle not found or revoked")

// Registry maps preview tokens to file content.
type Registry struct {
	baseURL string

	mu      sync.RWMutex
	entries map[string]types.RawFile
}

// NewRegistry creates a registry whose handles look like <baseURL>/<token>.
// An empty baseURL yields preview://<token> handles.
func NewRegistry(baseURL string) *Registry {
	return &Registry{
		baseURL: strings.TrimRight(baseURL, "/"),
		entries: make(map[string]types.RawFile),
	}
}

// Create registers file and returns a fresh handle for it.
func (r *Registry) Create(file types.RawFile) string {
	token := tool.GenerateRandomUUID()
	r.mu.Lock()
	r.entries[token] = file
	r.mu.Unlock()
	return r.handleFor(token)
}

// Revoke frees the handle. Unknown or already revoked handles are ignored.
func (r *Registry) Revoke(handle string) {
	token := r.TokenFromHandle(handle)
	r.mu.Lock()
	delete(r.entries, token)
	r.mu.Unlock()
}

// Lookup returns the file behind token.
func (r *Registry) Lookup(token string) (types.RawFile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	file, ok := r.entries[token]
	if !ok {
		return types.RawFile{}, ErrHandleNotFound
	}
	return file, nil
}

// Live is the number of handles not yet revoked.
func (r *Registry) Live() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}

// TokenFromHandle strips the URL prefix from a handle.
func (r *Registry) TokenFromHandle(handle string) string {
	if r.baseURL != "" {
		if token, ok := strings.CutPrefix(handle, r.baseURL+"/"); ok {
			return token
		}
	}
	return strings.TrimPrefix(handle, SchemePrefix)
}

func (r *Registry) handleFor(token string) string {
	if r.baseURL == "" {
		return SchemePrefix + token
	}
	return r.baseURL + "/" + token
}
