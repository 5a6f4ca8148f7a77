package tool

import (
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVersionLine(t *testing.T) {
	msg := BuildVersionMessage("v1.2.0", "abc123", "2024-01-01")
	assert.Equal(t, AppName, msg.Name)
	assert.Equal(t, runtime.Version(), msg.GoVersion)

	line := VersionLine(msg)
	assert.True(t, strings.HasPrefix(line, "deeddesk v1.2.0 (abc123, 2024-01-01) "), line)
	assert.True(t, strings.HasSuffix(line, runtime.GOOS+"/"+runtime.GOARCH), line)
}
