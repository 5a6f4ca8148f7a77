package preview

import (
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/moyoez/deeddesk-go/tool"
)

func TestRegistryCreateLookupRevoke(t *testing.T) {
	r := NewRegistry("http://127.0.0.1:53318/api/self/v1/preview/")
	file := tool.RawFileFromBytes("a.png", "image/png", 1, []byte("png-bytes"))

	handle := r.Create(file)
	require.True(t, strings.HasPrefix(handle, "http://127.0.0.1:53318/api/self/v1/preview/"))
	assert.Equal(t, 1, r.Live())

	token := r.TokenFromHandle(handle)
	got, err := r.Lookup(token)
	require.NoError(t, err)
	assert.Equal(t, "a.png", got.Name)

	rc, err := got.Content.Open()
	require.NoError(t, err)
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, "png-bytes", string(data))

	r.Revoke(handle)
	assert.Equal(t, 0, r.Live())
	_, err = r.Lookup(token)
	assert.ErrorIs(t, err, ErrHandleNotFound)

	// revoking twice is harmless
	r.Revoke(handle)
	assert.Equal(t, 0, r.Live())
}

func TestRegistrySchemeHandles(t *testing.T) {
	r := NewRegistry("")
	file := tool.RawFileFromBytes("a.png", "image/png", 1, []byte("x"))

	h1 := r.Create(file)
	h2 := r.Create(file)
	assert.True(t, strings.HasPrefix(h1, SchemePrefix))
	assert.NotEqual(t, h1, h2, "every create yields a fresh handle")
	assert.Equal(t, 2, r.Live())

	r.Revoke(h1)
	_, err := r.Lookup(r.TokenFromHandle(h2))
	assert.NoError(t, err)
	assert.Equal(t, 1, r.Live())
}
