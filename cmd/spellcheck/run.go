package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/JakeFAU/site-spellcheck/internal/app"
	"github.com/JakeFAU/site-spellcheck/internal/config"
	"github.com/JakeFAU/site-spellcheck/internal/id/uuid"
	"github.com/JakeFAU/site-spellcheck/internal/logging"
)

// flagKeys maps command-line flags onto configuration keys.
var flagKeys = map[string]string{
	"input":            "input.path",
	"batch-size":       "crawler.batch_size",
	"fetch-timeout":    "crawler.fetch_timeout",
	"user-agent":       "crawler.user_agent",
	"wait-until":       "crawler.wait_until",
	"engine":           "crawler.engine",
	"respect-robots":   "crawler.respect_robots",
	"chrome-path":      "crawler.chrome_path",
	"host-rps":         "crawler.host_rps",
	"host-burst":       "crawler.host_burst",
	"dictionary":       "spelling.dictionary_path",
	"extra-words":      "spelling.extra_words",
	"min-word-length":  "spelling.min_word_length",
	"format":           "report.format",
	"output":           "report.output",
	"context-radius":   "report.context_radius",
	"artifacts-dir":    "artifacts.dir",
	"metrics-textfile": "metrics.textfile",
	"trace-file":       "tracing.file",
	"dev":              "logging.development",
	"log-level":        "logging.level",
}

// newRunCmd creates and configures the 'run' subcommand.
func newRunCmd() *cobra.Command {
	var cfgFile string
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Crawl the listed pages and print the misspelling report",
		Long: `Reads label,target rows from the input CSV (the first row is a header and is
always skipped), fetches the pages in batches, and renders the aggregated
report. Failed pages are logged and left out of the report; the command only
fails for unreadable input, invalid settings, or a fetch engine that cannot
start.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			v := config.New()
			if err := bindFlags(v, cmd.Flags()); err != nil {
				return err
			}
			cfg, err := config.LoadFrom(v, cfgFile)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			return runSpellcheck(cmd, cfg)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&cfgFile, "config", "", "YAML config file")
	flags.StringP("input", "i", "", "CSV file of label,target rows")
	flags.Int("batch-size", 5, "pages fetched concurrently per batch")
	flags.Duration("fetch-timeout", 0, "per-page fetch budget (default 30s)")
	flags.String("user-agent", "", "User-Agent header override")
	flags.String("wait-until", "dom_ready", "navigation completion: dom_ready or load")
	flags.String("engine", config.EngineHeadless, "fetch engine: headless or static")
	flags.Bool("respect-robots", false, "honor robots.txt (static engine)")
	flags.String("chrome-path", "", "Chrome/Chromium binary for the headless engine")
	flags.Float64("host-rps", 0, "Maximum requests per second to any one host (0 = unlimited)")
	flags.Int("host-burst", 1, "Burst allowance for --host-rps")
	flags.String("dictionary", "", "newline-separated word list")
	flags.StringSlice("extra-words", nil, "additional accepted words")
	flags.Int("min-word-length", 2, "ignore shorter tokens")
	flags.String("format", "text", "report format: text, markdown or json")
	flags.StringP("output", "o", "", "write the report to this file instead of stdout")
	flags.Int("context-radius", 30, "characters of context on each side of a word")
	flags.String("artifacts-dir", "", "store extracted page text under this directory")
	flags.String("metrics-textfile", "", "write Prometheus metrics to this file after the run")
	flags.String("trace-file", "", "write OpenTelemetry spans to this file as JSON")
	flags.Bool("dev", true, "human-friendly console logging")
	flags.String("log-level", "info", "minimum log level")
	return cmd
}

// bindFlags lets explicitly set flags override file and environment values.
func bindFlags(v *viper.Viper, flags *pflag.FlagSet) error {
	for name, key := range flagKeys {
		flag := flags.Lookup(name)
		if flag == nil || !flag.Changed {
			continue
		}
		if err := v.BindPFlag(key, flag); err != nil {
			return fmt.Errorf("bind flag %s: %w", name, err)
		}
	}
	return nil
}

func runSpellcheck(cmd *cobra.Command, cfg config.Config) error {
	logger, err := logging.New(logging.Options{
		Development: cfg.Logging.Development,
		Level:       cfg.Logging.Level,
	})
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer func() {
		if syncErr := logging.Sync(logger); syncErr != nil {
			fmt.Fprintf(os.Stderr, "logger sync failed: %v\n", syncErr)
		}
	}()

	runID, err := uuid.NewRunID()
	if err != nil {
		return err
	}
	logger = logger.With(zap.String("run_id", runID))

	if _, err := app.New(cfg, logger, cmd.OutOrStdout(), app.WithRunInfo(runID, version)).Run(cmd.Context()); err != nil {
		logger.Error("run failed", zap.Error(err))
		return err
	}
	return nil
}
