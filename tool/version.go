package tool

import (
	"fmt"
	"runtime"

	"github.com/moyoez/deeddesk-go/types"
)

// AppName is used in logs, the CLI and version output.
const AppName = "deeddesk"

// BuildVersionMessage fills in the runtime fields next to the build-time stamps.
func BuildVersionMessage(version, commit, date string) *types.VersionMessage {
	return &types.VersionMessage{
		Name:      AppName,
		Version:   version,
		Commit:    commit,
		Date:      date,
		GoVersion: runtime.Version(),
		Platform:  runtime.GOOS + "/" + runtime.GOARCH,
	}
}

// VersionLine renders the message on one line, e.g. "deeddesk v1.2.0 (abc123, 2024-01-01) go1.25 linux/amd64".
func VersionLine(msg *types.VersionMessage) string {
	return fmt.Sprintf("%s %s (%s, %s) %s %s", msg.Name, msg.Version, msg.Commit, msg.Date, msg.GoVersion, msg.Platform)
}
