package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/digimosa/doc-redact/internal/config"
	"github.com/digimosa/doc-redact/internal/logging"
)

var (
	cfgFile  string
	logLevel string
	cfg      *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "redactor",
	Short: "Detect and redact PII in financial documents",
	Long: `redactor finds personal data in PDFs and images, writes a redacted text
artifact and an audit report for every document.

It runs as a detection service (serve), as a batch tool (process) or as an
interactive terminal UI (ui).`,
	CompletionOptions: cobra.CompletionOptions{
		DisableDefaultCmd: true,
	},
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := config.Load(cfgFile)
		if err != nil {
			return err
		}
		cfg = loaded

		level := cfg.LogLevel
		if cmd.Flags().Changed("loglevel") {
			level = logLevel
		}
		return logging.SetLogLevel(level)
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.redactor.yaml)")
	rootCmd.PersistentFlags().StringVarP(&logLevel, "loglevel", "l", "info", "Set log level. Available: debug, info, warn, error, fatal")
	rootCmd.SetHelpCommand(&cobra.Command{Hidden: true})
}
