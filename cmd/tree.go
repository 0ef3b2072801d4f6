package cmd

import (
	"fmt"

	"netlist-analyzer/pkg/formatter"

	"github.com/spf13/cobra"
)

var treeCmd = &cobra.Command{
	Use:   "tree [file]",
	Short: "Print the instance hierarchy below the top cell",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		doc, err := loadDocument(cmd, args[0])
		if err != nil {
			return err
		}

		tree, err := doc.Hierarchy(topFlag(cmd))
		if err != nil {
			return err
		}

		format, _ := cmd.Flags().GetString("format")
		if format == "json" {
			return writeJSON(cmd.OutOrStdout(), tree)
		}
		fmt.Fprint(cmd.OutOrStdout(), formatter.New().FormatTree(tree))
		return nil
	},
}

func init() {
	treeCmd.Flags().StringP("format", "f", "human", "Output format (human, json)")
}
