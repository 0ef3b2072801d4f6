package main

import (
	"fmt"
	"os"
	"path/filepath"

	"netlist-analyzer/pkg/ast"
	"netlist-analyzer/pkg/config"
	"netlist-analyzer/pkg/parser"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage: debug <netlist-file> [config-file]")
		os.Exit(1)
	}

	targetFile := os.Args[1]

	var (
		cfg        *config.Config
		configFile string
		err        error
	)
	if len(os.Args) > 2 {
		configFile = os.Args[2]
		cfg, err = config.LoadFile(configFile)
	} else {
		cwd, _ := os.Getwd()
		cfg, configFile, err = config.Load(filepath.Dir(targetFile), cwd)
	}
	if err != nil {
		fmt.Printf("Error loading config: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("=== Configuration Debug ===\n")
	fmt.Printf("Netlist: %s\n", targetFile)
	if configFile == "" {
		fmt.Printf("Config file: (none, defaults)\n")
	} else {
		fmt.Printf("Config file: %s\n", configFile)
	}
	fmt.Printf("Separator: %q\n", cfg.Separator)
	fmt.Printf("Global nets: %v\n", cfg.GlobalNets)
	fmt.Printf("Keep leaf cells: %t\n", cfg.FlattenOptions().KeepLeafCells)
	fmt.Printf("Top cell: %q\n", cfg.TopCell)

	table, err := cfg.DeviceTable()
	if err != nil {
		fmt.Printf("Error building device table: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("\n=== Device Table ===\n")
	for _, prefix := range table.Prefixes() {
		spec, _ := table.Lookup(prefix)
		fmt.Printf("  %c  %-10s nodes=%d trailer=%s\n", prefix, spec.Kind, spec.Nodes, spec.Trailer)
	}

	content, err := os.ReadFile(targetFile)
	if err != nil {
		fmt.Printf("Error reading netlist: %v\n", err)
		os.Exit(1)
	}

	p := parser.New(parser.WithDeviceTable(table))
	circuit, err := p.Parse(targetFile, string(content))
	if err != nil {
		fmt.Printf("Error parsing: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("\n=== Component Families ===\n")
	counts := make(map[string]int)
	for _, comp := range circuit.Components {
		counts[comp.Family().String()]++
	}
	for _, name := range circuit.SubcktNames() {
		s, _ := circuit.Subckt(name)
		for _, comp := range s.Components {
			counts[comp.Family().String()]++
		}
	}
	for _, family := range ast.SortedKeys(counts) {
		fmt.Printf("  %-10s %d\n", family, counts[family])
	}

	for _, w := range p.Warnings() {
		fmt.Printf("Warning: %s\n", w)
	}
}
