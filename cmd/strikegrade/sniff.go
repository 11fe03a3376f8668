package main

import (
	"fmt"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/FACorreiaa/transcript-strike/internal/domain/transcript/parser"
)

func newSniffCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sniff <input>",
		Short: "Describe the layout of an input without interpreting it",
		Args:  cobra.ExactArgs(1),
		RunE:  runSniff,
	}
	cmd.Flags().String("format", "", "input format: tabula, json, csv or xlsx (default: detect)")
	return cmd
}

func runSniff(cmd *cobra.Command, args []string) error {
	formatFlag, _ := cmd.Flags().GetString("format")
	format, err := parser.ParseFormat(formatFlag)
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

	layout, err := deps.Service.Sniff(cmd.Context(), in, name, format)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if layout.HeaderFound {
		fmt.Fprintf(out, "Header: table %d, row %d: %s\n", layout.HeaderTable, layout.HeaderRow, strings.Join(layout.Headers, " | "))
		fmt.Fprintf(out, "Fingerprint: %s\n", layout.Fingerprint)
	} else {
		fmt.Fprintln(out, "Header: not found")
	}
	fmt.Fprintf(out, "Rows: %d\n", layout.TotalRows)

	shapes := make([]int, 0, len(layout.ShapeCounts))
	for cells := range layout.ShapeCounts {
		shapes = append(shapes, cells)
	}
	slices.Sort(shapes)
	for _, cells := range shapes {
		fmt.Fprintf(out, "  %d cells: %d\n", cells, layout.ShapeCounts[cells])
	}

	fmt.Fprintf(out, "Section rows: %d\n", layout.SectionRows)
	fmt.Fprintf(out, "Course rows: %d\n", layout.CourseRows)
	fmt.Fprintf(out, "Thesis block: %t\n", layout.ThesisBlock)
	fmt.Fprintf(out, "Confidence: %.2f (recognized: %t)\n", layout.Confidence, layout.Recognized())
	return nil
}
