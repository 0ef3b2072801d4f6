package cmd

import (
	"fmt"
	"strings"

	"netlist-analyzer/pkg/analyzer"
	"netlist-analyzer/pkg/formatter"

	"github.com/spf13/cobra"
)

var extractCmd = &cobra.Command{
	Use:   "extract [file] [subckt]",
	Short: "Extract a subcircuit and everything it instantiates",
	Long: `Extract a subcircuit definition as a standalone netlist. The subcircuits it
instantiates (directly or deeper) are written first, so the result can be
simulated or flattened on its own. Use --models to also copy the .model cards
its devices reference.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		doc, err := loadDocument(cmd, args[0])
		if err != nil {
			return err
		}

		c := doc.Circuit()
		names := []string{args[1]}
		scopeOnly, _ := cmd.Flags().GetBool("scope")
		if !scopeOnly {
			names, err = analyzer.Dependencies(c, args[1])
			if err != nil {
				return err
			}
		} else if _, ok := c.Subckt(args[1]); !ok {
			return &analyzer.NotFoundError{Kind: "subckt", Name: args[1]}
		}

		f := formatter.New()
		var b strings.Builder
		fmt.Fprintf(&b, "* %s extracted from %s\n", args[1], c.Name)

		if withModels, _ := cmd.Flags().GetBool("models"); withModels {
			for _, name := range analyzer.ModelsUsed(c, names) {
				if m, ok := c.Model(name); ok {
					b.WriteString(f.FormatModel(m))
				}
			}
		}

		for _, name := range names {
			s, _ := c.Subckt(name)
			b.WriteString(f.FormatSubckt(s))
		}

		fmt.Fprint(cmd.OutOrStdout(), b.String())
		return nil
	},
}

func init() {
	extractCmd.Flags().BoolP("models", "m", false, "Include the .model cards used by the extracted devices")
	extractCmd.Flags().BoolP("scope", "", false, "Extract only the named subckt (no dependencies)")
}
