package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/davecgh/go-spew/spew"
	"github.com/spf13/cobra"

	"netlist-analyzer/pkg/config"
	"netlist-analyzer/pkg/document"
	"netlist-analyzer/pkg/parser"
)

// dumper prints internal structures for --format dump
var dumper = spew.ConfigState{
	Indent:                  "  ",
	DisablePointerAddresses: true,
	DisableCapacities:       true,
	SortKeys:                true,
}

// loadDocument reads the netlist with the configuration that applies to it
// and reports parse warnings on stderr
func loadDocument(cmd *cobra.Command, filename string) (*document.Document, error) {
	cfg, err := loadConfig(cmd, filename)
	if err != nil {
		return nil, err
	}

	doc, err := document.NewFromFile(filename, document.WithConfig(cfg))
	if err != nil {
		return nil, err
	}

	printWarnings(cmd, doc.Warnings())
	return doc, nil
}

func loadConfig(cmd *cobra.Command, filename string) (*config.Config, error) {
	if path, _ := cmd.Flags().GetString("config"); path != "" {
		return config.LoadFile(path)
	}

	cwd, _ := os.Getwd()
	cfg, _, err := config.Load(filepath.Dir(filename), cwd)
	return cfg, err
}

func printWarnings(cmd *cobra.Command, warnings []parser.Warning) {
	if quiet, _ := cmd.Flags().GetBool("quiet"); quiet {
		return
	}
	for _, w := range warnings {
		fmt.Fprintf(cmd.ErrOrStderr(), "Warning: %s\n", w)
	}
}

func topFlag(cmd *cobra.Command) string {
	top, _ := cmd.Flags().GetString("top")
	return top
}

func writeJSON(w io.Writer, v interface{}) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}
