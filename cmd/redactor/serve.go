package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/digimosa/doc-redact/internal/eventbus"
	"github.com/digimosa/doc-redact/internal/pipeline"
	"github.com/digimosa/doc-redact/internal/server"
	"github.com/digimosa/doc-redact/internal/storage"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the detection service",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
			cfg.ListenAddr = addr
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		store, err := storage.Open(cfg.DBPath)
		if err != nil {
			return err
		}
		defer store.Close()

		publisher, err := eventbus.NewPublisher(cfg.NatsURL)
		if err != nil {
			return err
		}
		defer publisher.Close()

		p, wl, err := newPipeline(ctx, cfg)
		if err != nil {
			return err
		}
		svc := pipeline.NewService(p, cfg.OutputDir,
			pipeline.WithRecorder(store),
			pipeline.WithPublisher(publisher),
			pipeline.WithMaxBytes(cfg.MaxUploadBytes),
		)

		srv := server.NewServer(server.Options{
			Processor: svc,
			Runs:      store,
			Whitelist: wl,
			MaxBytes:  cfg.MaxUploadBytes,
			Threshold: p.Threshold(),
		})
		return srv.Start(ctx, cfg.ListenAddr)
	},
}

func init() {
	serveCmd.Flags().String("addr", "", "listen address (overrides listen_addr)")
	rootCmd.AddCommand(serveCmd)
}
