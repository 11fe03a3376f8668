package main

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/FACorreiaa/transcript-strike/pkg/numeric"
)

func newWeightsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "weights",
		Short: "Print the effective weight table",
		Args:  cobra.NoArgs,
		RunE:  runWeights,
	}
	cmd.Flags().StringP("output", "o", "text", "output format: text, csv or json")
	return cmd
}

func runWeights(cmd *cobra.Command, _ []string) error {
	output, _ := cmd.Flags().GetString("output")

	deps, err := setup(cmd)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	switch output {
	case "csv":
		return deps.Weights.WriteCSV(out)
	case "json":
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(deps.Weights.Entries())
	case "text":
		tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "LABEL\tWEIGHT")
		for _, e := range deps.Weights.Entries() {
			fmt.Fprintf(tw, "%s\t%s\n", e.Label, numeric.Format(e.Weight))
		}
		return tw.Flush()
	default:
		return fmt.Errorf("unknown output %q, want text, csv or json", output)
	}
}
