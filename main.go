package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/moyoez/deeddesk-go/tool"
	"github.com/moyoez/deeddesk-go/types"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, errorStyle.Render("Error: ")+err.Error())
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   tool.AppName,
		Short: "Upload scanned deed images to an extraction service",
		Long: `deeddesk keeps a selection of deed images, shows previews of them and uploads
the whole batch as one multipart request to the extraction service, then shows
what the service answered.

Run "deeddesk serve" for the local upload page API, or "deeddesk upload" to send
files straight from the command line.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	flags := tool.BindFlags(rootCmd.PersistentFlags())

	rootCmd.AddCommand(
		serveCmd(flags),
		uploadCmd(flags),
		versionCmd(),
	)
	return rootCmd
}

// setup applies the log mode, loads config.yaml with env and flag overrides and
// prepares the shared HTTP client.
func setup(flags *types.Config) (types.AppConfig, error) {
	tool.InitLogger()
	tool.SetLogMode(flags.Log)

	appCfg, err := tool.LoadConfig(flags.UseConfigPath)
	if err != nil {
		return appCfg, err
	}
	tool.ApplyFlagOverrides(&appCfg, *flags)
	tool.InitHTTPClients(appCfg.RequestTimeoutSeconds, appCfg.InsecureSkipVerify)
	tool.DefaultLogger.Debugf("Upload target %s", tool.BuildUploadURL(appCfg.APIBaseURL, appCfg.UploadEndpoint))
	return appCfg, nil
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), tool.VersionLine(tool.BuildVersionMessage(version, commit, date)))
		},
	}
}
