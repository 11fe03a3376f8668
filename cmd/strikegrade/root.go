package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/FACorreiaa/transcript-strike/internal/domain/transcript/parser"
	"github.com/FACorreiaa/transcript-strike/pkg/config"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "strikegrade",
		Short: "Find the courses to strike for the best weighted average grade",
		Long: `strikegrade reads a transcript of records extracted from a PDF (tabula JSON,
nested JSON, CSV or XLSX), recovers the course records and searches every
admissible set of struck courses for the lowest weighted average grade.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := root.PersistentFlags()
	flags.String("weights", "", "CSV weight table (label,weight) merged over the built-in table")
	flags.Float64("thesis-credits", parser.DefaultThesisCredits, "credit volume of the thesis section")
	flags.Bool("strict", false, "fail when the input does not look like a transcript")
	flags.String("log-level", "", "log level (debug, info, warn, error)")
	flags.String("log-format", "", "log format (text, json)")

	root.AddCommand(newReportCmd(), newExtractCmd(), newWeightsCmd(), newSniffCmd())
	return root
}

// setup loads the configuration, applies flags that were set explicitly and
// builds the dependencies.
func setup(cmd *cobra.Command) (*Dependencies, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := applyFlags(cmd, cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	logger := newLogger(cfg.Logging, cmd.ErrOrStderr())
	return InitDependencies(cfg, logger)
}

func applyFlags(cmd *cobra.Command, cfg *config.Config) error {
	flags := cmd.Flags()
	var err error

	if flags.Changed("weights") {
		cfg.Transcript.WeightsFile, err = flags.GetString("weights")
	}
	if err == nil && flags.Changed("thesis-credits") {
		cfg.Transcript.ThesisCredits, err = flags.GetFloat64("thesis-credits")
	}
	if err == nil && flags.Changed("strict") {
		cfg.Transcript.StrictLayout, err = flags.GetBool("strict")
	}
	if err == nil && flags.Changed("log-level") {
		cfg.Logging.Level, err = flags.GetString("log-level")
	}
	if err == nil && flags.Changed("log-format") {
		cfg.Logging.Format, err = flags.GetString("log-format")
	}
	if err == nil && flags.Lookup("cap") != nil && flags.Changed("cap") {
		cfg.Strike.CreditCap, err = flags.GetFloat64("cap")
	}
	if err == nil && flags.Lookup("max-combinations") != nil && flags.Changed("max-combinations") {
		cfg.Strike.MaxCombinations, err = flags.GetUint64("max-combinations")
	}
	if err == nil && flags.Lookup("timeout") != nil && flags.Changed("timeout") {
		cfg.Strike.Timeout, err = flags.GetDuration("timeout")
	}
	if err == nil && flags.Lookup("metrics") != nil && flags.Changed("metrics") {
		cfg.Observability.MetricsEnabled, err = flags.GetBool("metrics")
	}
	return err
}

func newLogger(cfg config.LoggingConfig, w io.Writer) *slog.Logger {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	if cfg.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// openInput opens a file argument; "-" reads stdin.
func openInput(cmd *cobra.Command, path string) (io.ReadCloser, string, error) {
	if path == "-" {
		return io.NopCloser(cmd.InOrStdin()), "", nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, "", fmt.Errorf("failed to open input: %w", err)
	}
	return f, path, nil
}
