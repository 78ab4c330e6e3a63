package main

import (
	"fmt"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/digimosa/doc-redact/internal/client"
	"github.com/digimosa/doc-redact/internal/controller"
	"github.com/digimosa/doc-redact/internal/logging"
	"github.com/digimosa/doc-redact/internal/pipeline"
	"github.com/digimosa/doc-redact/internal/reporting"
	"github.com/digimosa/doc-redact/internal/theme"
	"github.com/digimosa/doc-redact/internal/tui"
)

var uiCmd = &cobra.Command{
	Use:   "ui [file]...",
	Short: "Redact documents interactively",
	RunE: func(cmd *cobra.Command, args []string) error {
		local, _ := cmd.Flags().GetBool("local")
		light, _ := cmd.Flags().GetBool("light")

		// The terminal belongs to the UI; logs go to a file next to the outputs.
		if err := os.MkdirAll(cfg.OutputDir, 0o755); err != nil {
			return err
		}
		logFile, err := os.OpenFile(filepath.Join(cfg.OutputDir, "redactor-ui.log"), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return err
		}
		defer logFile.Close()
		logging.SetOutput(logFile)
		defer logging.SetOutput(os.Stderr)

		var service controller.DetectionService
		threshold := cfg.ConfidenceThreshold
		if local {
			p, _, err := newPipeline(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			threshold = p.Threshold()
			service = pipeline.NewService(p, cfg.OutputDir, pipeline.WithMaxBytes(cfg.MaxUploadBytes))
		} else {
			service = client.New(cfg.ServiceURL)
		}

		ctrl := controller.New(service,
			controller.WithStageDelayScale(cfg.StageDelayScale),
			controller.WithReportOptions(reporting.Options{Threshold: threshold}),
		)
		mode := theme.Dark
		if light {
			mode = theme.Light
		}
		model := tui.NewModel(ctrl, theme.NewStore(mode), tui.Options{
			Files:     args,
			MaxBytes:  cfg.MaxUploadBytes,
			ExportDir: filepath.Join(cfg.OutputDir, "reports"),
		})

		if _, err := tea.NewProgram(model).Run(); err != nil {
			return fmt.Errorf("run ui: %w", err)
		}
		return nil
	},
}

func init() {
	uiCmd.Flags().Bool("local", false, "process in-process instead of calling the detection service")
	uiCmd.Flags().Bool("light", false, "start with the light theme")
	rootCmd.AddCommand(uiCmd)
}
