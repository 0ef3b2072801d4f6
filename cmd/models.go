package cmd

import (
	"fmt"

	"netlist-analyzer/pkg/analyzer"
	"netlist-analyzer/pkg/formatter"

	"github.com/spf13/cobra"
)

var modelsCmd = &cobra.Command{
	Use:   "models",
	Short: "Inspect model and cell usage",
}

var modelsUsageCmd = &cobra.Command{
	Use:   "usage [file]",
	Short: "Count flattened devices per model and instances per cell",
	Long: `Flatten the top cell and count how many devices reference each model.
Leaf cells and unresolved instances are counted per subcircuit name.`,
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

		models := analyzer.ModelUsage(flat)
		cells := analyzer.CellUsage(flat)

		format, _ := cmd.Flags().GetString("format")
		out := cmd.OutOrStdout()
		if format == "json" {
			return writeJSON(out, map[string]interface{}{
				"root":   flat.Root,
				"models": models,
				"cells":  cells,
			})
		}

		f := formatter.New()
		fmt.Fprint(out, f.FormatCounts("model", models))
		if len(cells) > 0 {
			fmt.Fprintln(out)
			fmt.Fprint(out, f.FormatCounts("cell", cells))
		}
		return nil
	},
}

var modelsFindCmd = &cobra.Command{
	Use:   "find [file] [name]",
	Short: "List the subcircuits that use a model or subcircuit",
	Long: `List the scopes whose direct components reference a model or
instantiate a subcircuit with the given name. Components of the global
scope are reported as "global".`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		doc, err := loadDocument(cmd, args[0])
		if err != nil {
			return err
		}

		users, err := doc.ModelUsers(args[1])
		if err != nil {
			return err
		}

		printList(cmd.OutOrStdout(), fmt.Sprintf("Users of %s", args[1]), users)
		return nil
	},
}

func init() {
	modelsUsageCmd.Flags().StringP("format", "f", "human", "Output format (human, json)")

	modelsCmd.AddCommand(modelsUsageCmd)
	modelsCmd.AddCommand(modelsFindCmd)
}
