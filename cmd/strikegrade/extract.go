package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/FACorreiaa/transcript-strike/internal/domain/transcript/export"
	"github.com/FACorreiaa/transcript-strike/internal/domain/transcript/parser"
)

func newExtractCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "extract <input>",
		Short: "Write the course records of a transcript to CSV, XLSX or JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  runExtract,
	}

	cmd.Flags().String("format", "", "input format: tabula, json, csv or xlsx (default: detect)")
	cmd.Flags().String("to", "", "output file; the extension selects csv, xlsx or json")
	_ = cmd.MarkFlagRequired("to")
	return cmd
}

func runExtract(cmd *cobra.Command, args []string) error {
	formatFlag, _ := cmd.Flags().GetString("format")
	to, _ := cmd.Flags().GetString("to")

	inFormat, err := parser.ParseFormat(formatFlag)
	if err != nil {
		return err
	}
	outFormat, err := export.FormatFromPath(to)
	if err != nil {
		return err
	}

	deps, err := setup(cmd)
	if err != nil {
		return err
	}

	in, name, err := openInput(cmd, args[0])
	if err != nil {
		return err
	}
	defer in.Close()

	extraction, err := deps.Service.Extract(cmd.Context(), in, name, inFormat)
	if err != nil {
		return err
	}

	file, err := os.Create(to)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer file.Close()

	if err := export.Write(file, outFormat, extraction.Courses()); err != nil {
		return err
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("failed to close output file: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Extracted %d courses to %s\n", len(extraction.Courses()), to)
	return nil
}
