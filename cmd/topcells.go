package cmd

import (
	"fmt"
	"io"

	"netlist-analyzer/pkg/formatter"

	"github.com/spf13/cobra"
)

var topCellsCmd = &cobra.Command{
	Use:   "top-cells [file]",
	Short: "List subcircuits that are never instantiated",
	Long: `List the subcircuits that no other subcircuit (or the global scope)
instantiates, and the cell that would be picked as the default top.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		doc, err := loadDocument(cmd, args[0])
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		cells := doc.TopCells()
		printList(out, "Top cells", cells)

		root, err := doc.TopCell(topFlag(cmd))
		if err != nil {
			fmt.Fprintf(out, "\nNo default top cell: %v\n", err)
			return nil
		}
		fmt.Fprintf(out, "\nDefault top: %s\n", root.ScopeName())
		return nil
	},
}

func printList(w io.Writer, title string, names []string) {
	fmt.Fprintf(w, "%s (%d):\n", title, len(names))
	fmt.Fprint(w, formatter.New().FormatList(names))
}
