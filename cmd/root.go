package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// Version information
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

var rootCmd = &cobra.Command{
	Use:   "netlist-analyzer",
	Short: "A SPICE/CDL netlist parser and hierarchy analyzer",
	Long: `netlist-analyzer is a CLI tool that parses SPICE and CDL netlists into a
hierarchical circuit model, finds the top cell, flattens the hierarchy into
uniquely named devices and reports statistics such as transistor counts and
model usage.

Relative .include files are followed. A .netlist.yaml file next to the netlist
(or in the working directory) tunes the device table and flattening.`,
	Version:       getVersionString(),
	SilenceUsage:  true,
	SilenceErrors: true,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "netlist-analyzer %s\n", getVersionString())
		fmt.Fprintf(out, "  Version: %s\n", version)
		fmt.Fprintf(out, "  Commit:  %s\n", commit)
		fmt.Fprintf(out, "  Date:    %s\n", date)
	},
}

func getVersionString() string {
	if version == "dev" {
		return fmt.Sprintf("%s (%s)", version, commit)
	}
	return version
}

func SetVersionInfo(v, c, d string) {
	version = v
	commit = c
	date = d
	rootCmd.Version = getVersionString()
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringP("config", "c", "", "Configuration file (default: .netlist.yaml next to the netlist or in the working directory)")
	rootCmd.PersistentFlags().StringP("top", "t", "", "Top cell to analyze (default: configured or detected)")
	rootCmd.PersistentFlags().BoolP("quiet", "q", false, "Suppress parse warnings")

	rootCmd.AddCommand(parseCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(transistorsCmd)
	rootCmd.AddCommand(flattenCmd)
	rootCmd.AddCommand(topCellsCmd)
	rootCmd.AddCommand(treeCmd)
	rootCmd.AddCommand(modelsCmd)
	rootCmd.AddCommand(extractCmd)
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(versionCmd)
}
