package cmd

import (
	"fmt"

	"netlist-analyzer/pkg/analyzer"
	"netlist-analyzer/pkg/formatter"

	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats [file]",
	Short: "Show component statistics",
	Long: `Show how many components of each family a netlist contains.

By default the direct components of the top cell are counted, with
instances counted as instances. With --flat the hierarchy is expanded first
and leaf cells are classified by name (mosfet, bjt, diode).`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		doc, err := loadDocument(cmd, args[0])
		if err != nil {
			return err
		}

		flatMode, _ := cmd.Flags().GetBool("flat")
		format, _ := cmd.Flags().GetString("format")

		var counts map[string]int
		var root string
		depth := -1
		if flatMode {
			flat, err := doc.Flatten(topFlag(cmd))
			if err != nil {
				return err
			}
			counts = analyzer.HierarchicalStats(flat)
			root = flat.Root
			depth = analyzer.MaxDepth(flat)
		} else {
			scope, err := doc.TopCell(topFlag(cmd))
			if err != nil {
				return err
			}
			counts = formatter.KindCounts(analyzer.CountComponents(scope))
			root = scope.ScopeName()
		}

		out := cmd.OutOrStdout()
		if format == "json" {
			result := map[string]interface{}{
				"root":   root,
				"flat":   flatMode,
				"counts": counts,
			}
			if flatMode {
				result["depth"] = depth
			}
			return writeJSON(out, result)
		}

		fmt.Fprintf(out, "Top cell: %s\n", root)
		if flatMode {
			fmt.Fprintf(out, "Depth: %d\n", depth)
		}
		fmt.Fprintln(out)
		fmt.Fprint(out, formatter.New().FormatCounts("family", counts))
		return nil
	},
}

var transistorsCmd = &cobra.Command{
	Use:   "transistors [file]",
	Short: "Count transistors in the flattened top cell",
	Long: `Flatten the top cell and count the MOSFET and BJT devices it contains.
Leaf cells and unresolved instances count when their subckt name classifies
as a transistor, the same rule 'stats --flat' uses.`,
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

		fmt.Fprintf(cmd.OutOrStdout(), "%s: %d transistors\n", flat.Root, analyzer.CountTransistors(flat))
		if n := len(flat.Unresolved); n > 0 {
			fmt.Fprintf(cmd.ErrOrStderr(), "Warning: %d unresolved instances, classified by name only\n", n)
		}
		return nil
	},
}

func init() {
	statsCmd.Flags().Bool("flat", false, "Expand the hierarchy before counting")
	statsCmd.Flags().StringP("format", "f", "human", "Output format (human, json)")
}
