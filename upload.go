package main

import (
	"errors"
	"fmt"
	"maps"

	"github.com/spf13/cobra"

	"github.com/moyoez/deeddesk-go/notify"
	"github.com/moyoez/deeddesk-go/tool"
	"github.com/moyoez/deeddesk-go/transfer"
	"github.com/moyoez/deeddesk-go/types"
	"github.com/moyoez/deeddesk-go/uploader"
)

var errUploadFailed = errors.New("upload did not succeed")

func uploadCmd(flags *types.Config) *cobra.Command {
	var (
		fields  map[string]string
		rawOnly bool
	)
	cmd := &cobra.Command{
		Use:   "upload <file>...",
		Short: "Upload image files and print the service response",
		Long: `Upload sends every image among the given files (file:// urls or plain paths)
as one multipart request. Files that are not images are skipped. The command
exits non-zero when nothing was sent or the upload failed.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			appCfg, err := setup(flags)
			if err != nil {
				return err
			}
			formFields := make(map[string]string, len(appCfg.FormFields)+len(fields))
			maps.Copy(formFields, appCfg.FormFields)
			maps.Copy(formFields, fields)

			var dispatcher types.NotifyHub
			if appCfg.NotifySocketPath != "" {
				dispatcher = notify.NewDispatcher(nil, appCfg.NotifySocketPath)
			}
			manager := uploader.New(uploader.Options{
				BaseURL:    appCfg.APIBaseURL,
				Endpoint:   appCfg.UploadEndpoint,
				Sender:     transfer.NewClient(nil),
				FormFields: formFields,
				Hub:        dispatcher,
			})
			defer manager.Close()

			candidates := make([]types.RawFile, 0, len(args))
			for _, arg := range args {
				path, err := tool.ParseFileURL(arg)
				if err != nil {
					tool.DefaultLogger.Warnf("Skipping %s: %v", arg, err)
					continue
				}
				file, err := tool.RawFileFromPath(path)
				if err != nil {
					tool.DefaultLogger.Warnf("Skipping %s: %v", arg, err)
					continue
				}
				candidates = append(candidates, file)
			}
			if added := manager.AddFiles(candidates); added < len(candidates) {
				tool.DefaultLogger.Infof("Skipped %d file(s) that are not images", len(candidates)-added)
			}

			out := cmd.OutOrStdout()
			renderSelection(out, manager.Snapshot())
			res := manager.Submit(cmd.Context())
			if rawOnly {
				renderRaw(out, res)
			} else {
				renderResult(out, res, manager.Snapshot())
			}
			if res.State.Phase != types.PhaseSucceeded {
				return fmt.Errorf("%w: %s", errUploadFailed, res.Message)
			}
			return nil
		},
	}
	cmd.Flags().StringToStringVar(&fields, "field", nil, "extra form field sent after the files, key=value (repeatable)")
	cmd.Flags().BoolVar(&rawOnly, "raw", false, "print only the response body as displayed, for piping")
	return cmd
}
