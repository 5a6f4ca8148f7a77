package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/moyoez/deeddesk-go/api"
	"github.com/moyoez/deeddesk-go/api/models"
	"github.com/moyoez/deeddesk-go/api/notifyhub"
	"github.com/moyoez/deeddesk-go/notify"
	"github.com/moyoez/deeddesk-go/preview"
	"github.com/moyoez/deeddesk-go/tool"
	"github.com/moyoez/deeddesk-go/transfer"
	"github.com/moyoez/deeddesk-go/types"
	"github.com/moyoez/deeddesk-go/uploader"
)

// drainTimeout bounds how long shutdown waits for an upload already in flight.
const drainTimeout = 30 * time.Second

func serveCmd(flags *types.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the local upload page API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			appCfg, err := setup(flags)
			if err != nil {
				return err
			}
			return serve(cmd.Context(), appCfg)
		},
	}
}

func serve(ctx context.Context, appCfg types.AppConfig) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	metrics := uploader.NewMetrics(nil)
	client := transfer.NewClient(nil)
	client.OnBytes = metrics.AddBytes

	registry := preview.NewRegistry(tool.BuildPreviewBaseURL(appCfg.ListenPort))
	hub := notifyhub.New()
	models.InitReceiptCache(time.Duration(appCfg.ReceiptTTLMinutes) * time.Minute)

	manager := uploader.New(uploader.Options{
		BaseURL:    appCfg.APIBaseURL,
		Endpoint:   appCfg.UploadEndpoint,
		Handles:    registry,
		Sender:     client,
		FormFields: appCfg.FormFields,
		Hub:        notify.NewDispatcher(hub, appCfg.NotifySocketPath),
		OnSettled:  models.StoreReceipt,
		Metrics:    metrics,
	})
	defer manager.Close()

	server := api.NewServer(appCfg.ListenPort, manager, registry, hub)
	server.SetSubmitRate(appCfg.SubmitRatePerSecond)

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	tool.DefaultLogger.Info("Shutting down local API")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		tool.DefaultLogger.Errorf("Failed to shut down local API: %v", err)
	}

	drained := make(chan struct{})
	go func() {
		manager.Wait()
		close(drained)
	}()
	select {
	case <-drained:
	case <-time.After(drainTimeout):
		tool.DefaultLogger.Warnf("Upload still in flight after %s, exiting anyway", drainTimeout)
	}
	return nil
}
