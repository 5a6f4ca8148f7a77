package tool

import (
	"github.com/spf13/pflag"

	"github.com/moyoez/deeddesk-go/types"
)

// BindFlags registers the runtime override flags on fs and returns the struct they fill.
func BindFlags(fs *pflag.FlagSet) *types.Config {
	cfg := &types.Config{}
	fs.StringVar(&cfg.Log, "log", "", "log mode: dev|prod|none")
	fs.StringVar(&cfg.UseConfigPath, "useConfigPath", "", "override config file path")
	fs.StringVar(&cfg.UseBaseUrl, "useBaseUrl", "", "override API base URL (empty in config means relative)")
	fs.StringVar(&cfg.UseEndpoint, "useEndpoint", "", "override upload endpoint path")
	fs.IntVar(&cfg.UsePort, "usePort", 0, "override local API listen port")
	fs.IntVar(&cfg.UseTimeout, "useTimeout", 0, "override upload request timeout in seconds")
	fs.StringVar(&cfg.UseNotifySocket, "useNotifySocket", "", "unix socket path that receives upload_end notifications")
	fs.BoolVar(&cfg.SkipNotify, "skipNotify", false, "if true, never write to the notify socket")
	return cfg
}
