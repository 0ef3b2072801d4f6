// Package document provides a high-level abstraction over a netlist file. It
// reads the file, follows .include directives, applies the project
// configuration and caches derived views such as the flattened circuit.
package document

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"netlist-analyzer/pkg/analyzer"
	"netlist-analyzer/pkg/ast"
	"netlist-analyzer/pkg/config"
	"netlist-analyzer/pkg/parser"
)

// Document represents a parsed netlist together with everything it included
type Document struct {
	filename  string                           // Original filename (if loaded from file)
	content   string                           // Content of the main file
	circuit   *ast.Circuit                     // Parsed and merged circuit
	warnings  []parser.Warning                 // Parse warnings from all files
	files     []string                         // Every file read, main file first
	cfg       *config.Config                   // Configuration in effect
	flatCache map[string]*analyzer.FlatCircuit // Flatten results by cacheKey
}

// Option configures document loading
type Option func(*Document)

// WithConfig sets the configuration used for parsing and flattening
func WithConfig(cfg *config.Config) Option {
	return func(d *Document) {
		if cfg != nil {
			d.cfg = cfg
		}
	}
}

// NewFromFile creates a new document by loading and parsing a file
func NewFromFile(filename string, opts ...Option) (*Document, error) {
	content, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", filename, err)
	}

	absPath, err := filepath.Abs(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to get absolute path for %s: %w", filename, err)
	}

	return NewFromContent(absPath, string(content), opts...)
}

// NewFromContent creates a new document from content with a given name.
// Relative includes are resolved against the directory of name.
func NewFromContent(name, content string, opts ...Option) (*Document, error) {
	doc := &Document{
		filename:  name,
		content:   content,
		cfg:       config.DefaultConfig(),
		flatCache: make(map[string]*analyzer.FlatCircuit),
	}
	for _, opt := range opts {
		opt(doc)
	}

	table, err := doc.cfg.DeviceTable()
	if err != nil {
		return nil, fmt.Errorf("invalid device table: %w", err)
	}

	l := &loader{
		parser:  parser.New(parser.WithDeviceTable(table)),
		visited: make(map[string]bool),
	}
	if name != "" {
		l.visited[absOrSelf(name)] = true
	}

	circuit, err := l.load(name, content)
	if err != nil {
		return nil, fmt.Errorf("failed to parse content: %w", err)
	}

	doc.circuit = circuit
	doc.warnings = l.warnings
	doc.files = append([]string{name}, l.files...)
	return doc, nil
}

// GetFilename returns the document's filename
func (d *Document) GetFilename() string {
	return d.filename
}

// GetContent returns the content of the main file
func (d *Document) GetContent() string {
	return d.content
}

// Circuit returns the parsed circuit (for advanced use cases)
func (d *Document) Circuit() *ast.Circuit {
	return d.circuit
}

// Warnings returns parse warnings from the main file and every include
func (d *Document) Warnings() []parser.Warning {
	return d.warnings
}

// Files returns every file that was read, the main file first
func (d *Document) Files() []string {
	return d.files
}

// Config returns the configuration in effect
func (d *Document) Config() *config.Config {
	return d.cfg
}

// TopCells lists the subckts that are never instantiated
func (d *Document) TopCells() []string {
	return analyzer.ListTopCells(d.circuit)
}

// TopCell resolves the root scope. An empty name falls back to the
// configured top cell and then to automatic detection.
func (d *Document) TopCell(name string) (ast.Scope, error) {
	if name == "" {
		name = d.cfg.TopCell
	}
	return analyzer.FindTopCell(d.circuit, name)
}

// Flatten returns the flattened view below the selected top cell. Results
// are cached per root and must not be modified by the caller.
func (d *Document) Flatten(top string) (*analyzer.FlatCircuit, error) {
	root, err := d.TopCell(top)
	if err != nil {
		return nil, err
	}

	key := cacheKey(root)
	if flat, ok := d.flatCache[key]; ok {
		return flat, nil
	}

	flat, err := analyzer.Flatten(d.circuit, root, d.cfg.FlattenOptions())
	if err != nil {
		return nil, err
	}
	d.flatCache[key] = flat
	return flat, nil
}

// cacheKey keeps the global scope apart from a subckt that happens to be
// named "global"
func cacheKey(root ast.Scope) string {
	if root.IsGlobal() {
		return "\x00global"
	}
	return "subckt:" + root.ScopeName()
}

// Hierarchy returns the instance tree below the selected top cell
func (d *Document) Hierarchy(top string) (*analyzer.HierarchyNode, error) {
	root, err := d.TopCell(top)
	if err != nil {
		return nil, err
	}
	return analyzer.BuildHierarchy(d.circuit, root), nil
}

// ModelUsers returns the scopes that directly use a model or subckt name
func (d *Document) ModelUsers(name string) ([]string, error) {
	return analyzer.FindModelUsers(d.circuit, name)
}

// CircuitStats provides a size summary of the parsed netlist
type CircuitStats struct {
	Subckts    int
	Models     int
	Components int
	TopCells   int
	Includes   int
	Warnings   int
}

// GetCircuitStats returns a size summary of the document
func (d *Document) GetCircuitStats() *CircuitStats {
	subckts, models, components := d.circuit.Stats()
	return &CircuitStats{
		Subckts:    subckts,
		Models:     models,
		Components: components,
		TopCells:   len(d.TopCells()),
		Includes:   len(d.files) - 1,
		Warnings:   len(d.warnings),
	}
}

// String returns a string representation of the document
func (d *Document) String() string {
	stats := d.GetCircuitStats()
	var b strings.Builder
	fmt.Fprintf(&b, "Document: %s\n", d.filename)
	fmt.Fprintf(&b, "Subckts: %d, Models: %d, Components: %d\n", stats.Subckts, stats.Models, stats.Components)
	if stats.Includes > 0 {
		fmt.Fprintf(&b, "Includes: %d\n", stats.Includes)
	}
	if stats.Warnings > 0 {
		fmt.Fprintf(&b, "Warnings: %d\n", stats.Warnings)
	}
	return b.String()
}
