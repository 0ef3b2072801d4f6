package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"netlist-analyzer/pkg/config"

	"github.com/spf13/cobra"
)

var initCmd = &cobra.Command{
	Use:   "init [flags] [directory]",
	Short: "Initialize a .netlist.yaml configuration file",
	Long: `Initialize a .netlist.yaml configuration file holding the default settings.

The file is picked up automatically by every command run on a netlist in the
same directory. Edit it to change the hierarchy separator, the global nets,
the default top cell or the node count of a device prefix.

Examples:
  # Initialize .netlist.yaml for current directory
  netlist-analyzer init

  # Initialize with a fixed top cell
  netlist-analyzer init --top-cell chip designs/`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		targetDir := "."
		if len(args) == 1 {
			targetDir = args[0]
		}

		info, err := os.Stat(targetDir)
		if err != nil {
			return fmt.Errorf("failed to access %s: %w", targetDir, err)
		}
		if !info.IsDir() {
			return fmt.Errorf("%s is not a directory", targetDir)
		}

		path := filepath.Join(targetDir, config.FileName)
		overwrite, _ := cmd.Flags().GetBool("overwrite")
		if _, err := os.Stat(path); err == nil && !overwrite {
			return fmt.Errorf("%s already exists (use --overwrite to replace it)", path)
		}

		cfg := config.DefaultConfig()
		cfg.TopCell, _ = cmd.Flags().GetString("top-cell")

		if err := cfg.Save(path); err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
		return nil
	},
}

func init() {
	initCmd.Flags().Bool("overwrite", false, "Overwrite an existing .netlist.yaml file")
	initCmd.Flags().String("top-cell", "", "Default top cell to record in the file")
}
