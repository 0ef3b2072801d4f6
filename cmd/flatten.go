package cmd

import (
	"fmt"
	"os"

	"netlist-analyzer/pkg/formatter"
	"netlist-analyzer/pkg/validator"

	"github.com/spf13/cobra"
)

var flattenCmd = &cobra.Command{
	Use:   "flatten [file]",
	Short: "Flatten the hierarchy below the top cell",
	Long: `Expand every instance below the top cell into uniquely named devices.

Device and net names are prefixed with the instance path (X1.X2.M1). Ports
are replaced by the nets they connect to, global nets keep their names, and
ports an instance leaves unconnected become nc#<path.port>.

Output formats:
  spice  a single-level netlist (default)
  json   a report checked against the built-in schema
  dump   the raw flattened structures`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		doc, err := loadDocument(cmd, args[0])
		if err != nil {
			return err
		}

		flat, err := doc.Flatten(topFlag(cmd))
		if err != nil {
			return err
		}

		if quiet, _ := cmd.Flags().GetBool("quiet"); !quiet {
			for _, w := range flat.Warnings {
				fmt.Fprintf(cmd.ErrOrStderr(), "Warning: %s\n", w)
			}
		}

		format, _ := cmd.Flags().GetString("format")
		width, _ := cmd.Flags().GetInt("width")
		outputFile, _ := cmd.Flags().GetString("output")

		out := cmd.OutOrStdout()
		if outputFile != "" {
			file, err := os.Create(outputFile)
			if err != nil {
				return fmt.Errorf("failed to create output file %s: %w", outputFile, err)
			}
			defer file.Close()
			out = file
		}

		switch format {
		case "spice":
			_, err = fmt.Fprint(out, formatter.New().WithLineWidth(width).FormatSpice(flat))
			return err
		case "json":
			report := formatter.NewFlatReport(flat)
			v, err := validator.New()
			if err != nil {
				return err
			}
			if err := v.ValidateReport(report); err != nil {
				return fmt.Errorf("flatten report failed validation: %w", err)
			}
			return writeJSON(out, report)
		case "dump":
			dumper.Fdump(out, flat)
			return nil
		default:
			return fmt.Errorf("unknown format %q (spice, json, dump)", format)
		}
	},
}

func init() {
	flattenCmd.Flags().StringP("format", "f", "spice", "Output format (spice, json, dump)")
	flattenCmd.Flags().IntP("width", "w", 80, "Wrap SPICE lines longer than this with '+' (0 disables)")
	flattenCmd.Flags().StringP("output", "o", "", "Write to a file instead of stdout")
}
