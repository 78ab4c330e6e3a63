package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/digimosa/doc-redact/internal/eventbus"
	"github.com/digimosa/doc-redact/internal/pipeline"
	"github.com/digimosa/doc-redact/internal/reporting"
	"github.com/digimosa/doc-redact/internal/storage"
)

var processCmd = &cobra.Command{
	Use:   "process <path>...",
	Short: "Redact files and directories in a batch",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		workers, _ := cmd.Flags().GetInt("workers")
		if workers <= 0 {
			workers = cfg.Workers
		}
		formats, _ := cmd.Flags().GetStringSlice("format")
		for _, f := range formats {
			switch f {
			case "txt", "json", "html", "xlsx":
			default:
				return fmt.Errorf("unknown report format %q", f)
			}
		}
		reportDir, _ := cmd.Flags().GetString("report-dir")
		if reportDir == "" {
			reportDir = filepath.Join(cfg.OutputDir, "reports")
		}
		record, _ := cmd.Flags().GetBool("record")

		ctx := cmd.Context()
		p, _, err := newPipeline(ctx, cfg)
		if err != nil {
			return err
		}

		opts := []pipeline.ServiceOption{pipeline.WithMaxBytes(cfg.MaxUploadBytes)}
		if record {
			store, err := storage.Open(cfg.DBPath)
			if err != nil {
				return err
			}
			defer store.Close()
			opts = append(opts, pipeline.WithRecorder(store))
		}
		if cfg.NatsURL != "" {
			publisher, err := eventbus.NewPublisher(cfg.NatsURL)
			if err != nil {
				return err
			}
			defer publisher.Close()
			opts = append(opts, pipeline.WithPublisher(publisher))
		}
		svc := pipeline.NewService(p, cfg.OutputDir, opts...)

		results := svc.RunBatch(ctx, args, workers)
		if err := os.MkdirAll(reportDir, 0o755); err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		failed, err := writeReports(out, results, reportDir, formats, reporting.Options{Threshold: p.Threshold()})
		if err != nil {
			return err
		}

		fmt.Fprintf(out, "\n%s\n", dimStyle.Render(fmt.Sprintf("%d processed, %d failed, reports in %s", len(results)-failed, failed, reportDir)))
		if failed > 0 {
			return fmt.Errorf("%d of %d files failed", failed, len(results))
		}
		return nil
	},
}

// writeReports prints a line per result and saves its audit reports in every
// format. Documents sharing a name get a numeric suffix in the order of
// results. It returns the number of failed results.
func writeReports(w io.Writer, results []pipeline.BatchResult, dir string, formats []string, opts reporting.Options) (int, error) {
	failed := 0
	used := make(map[string]bool)
	for _, res := range results {
		if res.Err != nil {
			failed++
			fmt.Fprintf(w, "%s %s\n", failStyle.Render("✗"), fileStyle.Render(res.Path))
			fmt.Fprintf(w, "    %s\n", dimStyle.Render(res.Err.Error()))
			continue
		}

		log := res.Result.AuditLog
		fmt.Fprintf(w, "%s %s %s\n", okStyle.Render("✓"), fileStyle.Render(res.Path),
			dimStyle.Render(fmt.Sprintf("%d findings, risk %s, %s", log.TotalDetections(), log.RiskLevel, log.ComplianceStatus)))
		for _, category := range log.Categories() {
			fmt.Fprintf(w, "    %s %s\n", categoryStyle.Render(reporting.CategoryTitle(category)+":"),
				dimStyle.Render(fmt.Sprint(len(log.TextPII[category]))))
		}

		name := reporting.ReportName(log.Document)
		base := name
		for n := 2; used[base]; n++ {
			base = fmt.Sprintf("%s-%d", name, n)
		}
		used[base] = true
		for _, format := range formats {
			path := filepath.Join(dir, base+"."+format)
			if err := reporting.SaveFile(path, format, log, opts); err != nil {
				return failed, fmt.Errorf("write %s report for %s: %w", format, res.Path, err)
			}
		}
	}
	return failed, nil
}

var (
	fileStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#88C0D0"))
	categoryStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#81A1C1"))
	dimStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#7A8291"))
	okStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("#A3BE8C"))
	failStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#BF616A"))
)

func init() {
	processCmd.Flags().IntP("workers", "w", 0, "concurrent workers (default: workers from config)")
	processCmd.Flags().StringSlice("format", []string{"txt", "json"}, "report formats to write: txt, json, html, xlsx")
	processCmd.Flags().String("report-dir", "", "directory for audit reports (default: <output_dir>/reports)")
	processCmd.Flags().Bool("record", false, "store runs in the history database")
	rootCmd.AddCommand(processCmd)
}
