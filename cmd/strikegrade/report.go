package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/FACorreiaa/transcript-strike/internal/domain/strike"
	"github.com/FACorreiaa/transcript-strike/internal/domain/transcript/export"
	"github.com/FACorreiaa/transcript-strike/internal/domain/transcript/parser"
	"github.com/FACorreiaa/transcript-strike/internal/domain/transcript/service"
)

// formatRecords reads course records written by "extract" instead of a transcript.
const formatRecords = "records"

func newReportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report <input>",
		Short: "Print the best average and the strike sets reaching it",
		Long: `Extract the course records of a transcript and search every admissible
strike set. Use "-" to read standard input.`,
		Args: cobra.ExactArgs(1),
		RunE: runReport,
	}

	cmd.Flags().String("format", "", "input format: tabula, json, csv, xlsx or records (default: detect)")
	cmd.Flags().StringP("output", "o", "text", "report format: text or json")
	cmd.Flags().Float64("cap", strike.DefaultCreditCap, "maximum struck credit volume")
	cmd.Flags().Uint64("max-combinations", 0, "abort after evaluating this many combinations (0 = unlimited)")
	cmd.Flags().Duration("timeout", 0, "abort the search after this duration (0 = none)")
	cmd.Flags().Bool("metrics", false, "print collected metrics to stderr after the run")
	return cmd
}

func runReport(cmd *cobra.Command, args []string) error {
	output, _ := cmd.Flags().GetString("output")
	if output != "text" && output != "json" {
		return fmt.Errorf("unknown output %q, want text or json", output)
	}
	formatFlag, _ := cmd.Flags().GetString("format")

	deps, err := setup(cmd)
	if err != nil {
		return err
	}

	in, name, err := openInput(cmd, args[0])
	if err != nil {
		return err
	}
	defer in.Close()

	ctx := cmd.Context()
	var run *service.Run

	if formatFlag == formatRecords {
		format := export.FormatJSON
		if name != "" {
			if format, err = export.FormatFromPath(name); err != nil {
				return err
			}
		}
		courses, err := export.Read(in, format)
		if err != nil {
			return err
		}
		deps.Logger.Debug("records loaded", "courses", len(courses))
		if run, err = deps.Service.ReportCourses(ctx, courses); err != nil {
			return err
		}
	} else {
		format, err := parser.ParseFormat(formatFlag)
		if err != nil {
			return err
		}
		if run, err = deps.Service.Report(ctx, in, name, format); err != nil {
			return err
		}
	}

	out := cmd.OutOrStdout()
	if output == "json" {
		err = run.Report.WriteJSON(out)
	} else {
		err = run.Report.WriteText(out)
	}
	if err != nil {
		return err
	}

	return deps.DumpMetrics(cmd.ErrOrStderr())
}
