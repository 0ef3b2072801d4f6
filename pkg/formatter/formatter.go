// Package formatter renders analysis results as SPICE text, trees and tables
package formatter

import (
	"fmt"
	"sort"
	"strings"
	"text/tabwriter"

	"netlist-analyzer/pkg/analyzer"
	"netlist-analyzer/pkg/ast"
)

// Formatter handles netlist reconstruction and report formatting
type Formatter struct {
	lineWidth int // SPICE lines longer than this are continued with '+'
	indent    string
}

// New creates a new formatter
func New() *Formatter {
	return &Formatter{
		lineWidth: 80,
		indent:    "    ",
	}
}

// WithLineWidth returns a copy of the formatter with a different wrap width.
// Zero disables wrapping.
func (f *Formatter) WithLineWidth(width int) *Formatter {
	c := *f
	c.lineWidth = width
	return &c
}

// FormatSpice writes a flattened circuit back out as a single-level netlist.
// Leaf cells stay as instances of their (empty) subckt, black boxes are
// listed as comments.
func (f *Formatter) FormatSpice(flat *analyzer.FlatCircuit) string {
	var b strings.Builder
	fmt.Fprintf(&b, "* flattened from %s\n", flat.Root)

	for _, dev := range flat.Devices {
		b.WriteString(f.wrap(DeviceTokens(dev)))
	}

	for _, leaf := range flat.Leaves {
		tokens := append([]string{leaf.Path}, leaf.Nodes...)
		tokens = append(tokens, leaf.SubcktName)
		tokens = append(tokens, paramTokens(leaf.Params)...)
		b.WriteString(f.wrap(tokens))
	}

	for _, u := range flat.Unresolved {
		fmt.Fprintf(&b, "* unresolved: %s (%s) %s\n", u.Path, u.SubcktName, strings.Join(u.Nodes, " "))
	}

	b.WriteString(".end\n")
	return b.String()
}

// SpiceName returns the device name as it must appear on a SPICE line: a
// flattened name such as X1.M3 gets its family letter put back in front.
func SpiceName(dev *ast.Device) string {
	if dev.Prefix == "" || strings.HasPrefix(strings.ToUpper(dev.Name), dev.Prefix) {
		return dev.Name
	}
	return dev.Prefix + dev.Name
}

// DeviceTokens returns the SPICE tokens for a single device line
func DeviceTokens(dev *ast.Device) []string {
	tokens := append([]string{SpiceName(dev)}, dev.Nodes...)
	if dev.Model != "" {
		tokens = append(tokens, dev.Model)
	}
	if dev.Value != "" {
		tokens = append(tokens, dev.Value)
	}
	tokens = append(tokens, dev.Extra...)
	return append(tokens, paramTokens(dev.Params)...)
}

func paramTokens(params ast.Params) []string {
	tokens := make([]string, 0, len(params))
	for _, p := range params {
		tokens = append(tokens, p.Key+"="+p.Value)
	}
	return tokens
}

// wrap joins tokens into one logical line, continuing with '+' when the
// line would exceed the configured width
func (f *Formatter) wrap(tokens []string) string {
	var b strings.Builder
	lineLen := 0
	for i, tok := range tokens {
		if i > 0 {
			if f.lineWidth > 0 && lineLen+1+len(tok) > f.lineWidth {
				b.WriteString("\n+ ")
				lineLen = 2
			} else {
				b.WriteByte(' ')
				lineLen++
			}
		}
		b.WriteString(tok)
		lineLen += len(tok)
	}
	b.WriteByte('\n')
	return b.String()
}

// FormatTree renders an instance tree with box-drawing connectors
func (f *Formatter) FormatTree(root *analyzer.HierarchyNode) string {
	var b strings.Builder
	b.WriteString(root.Name)
	b.WriteByte('\n')
	f.formatChildren(&b, root.Children, "")
	return b.String()
}

func (f *Formatter) formatChildren(b *strings.Builder, children []*analyzer.HierarchyNode, prefix string) {
	for i, child := range children {
		last := i == len(children)-1
		connector := "├── "
		next := prefix + "│   "
		if last {
			connector = "└── "
			next = prefix + "    "
		}

		fmt.Fprintf(b, "%s%s%s (%s)", prefix, connector, child.Name, child.SubcktName)
		switch {
		case !child.Resolved:
			b.WriteString(" [unresolved]")
		case child.Cycle:
			b.WriteString(" [cycle]")
		}
		b.WriteByte('\n')

		f.formatChildren(b, child.Children, next)
	}
}

// FormatCounts renders a two-column table sorted by name, with a total row
func (f *Formatter) FormatCounts(title string, counts map[string]int) string {
	var b strings.Builder
	w := tabwriter.NewWriter(&b, 0, 0, 2, ' ', 0)

	fmt.Fprintf(w, "%s\tCOUNT\n", strings.ToUpper(title))
	total := 0
	for _, name := range ast.SortedKeys(counts) {
		fmt.Fprintf(w, "%s\t%d\n", name, counts[name])
		total += counts[name]
	}
	fmt.Fprintf(w, "TOTAL\t%d\n", total)
	w.Flush()
	return b.String()
}

// KindCounts converts a per-family count map to names for FormatCounts
func KindCounts(counts map[ast.DeviceKind]int) map[string]int {
	out := make(map[string]int, len(counts))
	for kind, n := range counts {
		out[kind.String()] += n
	}
	return out
}

// FormatList renders names one per line with an indent
func (f *Formatter) FormatList(names []string) string {
	var b strings.Builder
	for _, name := range names {
		b.WriteString(f.indent)
		b.WriteString(name)
		b.WriteByte('\n')
	}
	return b.String()
}

// FormatCircuit renders a human-readable outline of a parsed circuit
func (f *Formatter) FormatCircuit(c *ast.Circuit) string {
	var b strings.Builder
	subckts, models, components := c.Stats()
	fmt.Fprintf(&b, "Circuit: %s\n", c.Name)
	fmt.Fprintf(&b, "Subckts: %d, Models: %d, Components: %d\n", subckts, models, components)

	if len(c.Components) > 0 {
		fmt.Fprintf(&b, "\n%s (%d components)\n", ast.GlobalScopeName, len(c.Components))
		f.formatComponents(&b, c.Components)
	}

	for _, name := range c.SubcktNames() {
		s, _ := c.Subckt(name)
		fmt.Fprintf(&b, "\n.subckt %s %s (%d components)\n", s.Name, strings.Join(s.Ports, " "), len(s.Components))
		f.formatComponents(&b, s.Components)
	}

	if names := c.ModelNames(); len(names) > 0 {
		b.WriteString("\nModels:\n")
		sort.Strings(names)
		for _, name := range names {
			m, _ := c.Model(name)
			fmt.Fprintf(&b, "%s%s (%s)\n", f.indent, m.Name, m.Type)
		}
	}
	return b.String()
}

func (f *Formatter) formatComponents(b *strings.Builder, comps []ast.Component) {
	for _, comp := range comps {
		switch comp := comp.(type) {
		case *ast.Device:
			fmt.Fprintf(b, "%s%-10s %s\n", f.indent, comp.Kind, strings.Join(DeviceTokens(comp), " "))
		case *ast.Instance:
			fmt.Fprintf(b, "%s%-10s %s %s -> %s\n", f.indent, ast.KindInstance, comp.Name,
				strings.Join(comp.Nodes, " "), comp.SubcktName)
		}
	}
}

// FormatSubckt writes a subckt definition back out as SPICE
func (f *Formatter) FormatSubckt(s *ast.Subckt) string {
	var b strings.Builder
	header := append([]string{".subckt", s.Name}, s.Ports...)
	b.WriteString(f.wrap(append(header, paramTokens(s.Params)...)))

	for _, comp := range s.Components {
		switch comp := comp.(type) {
		case *ast.Device:
			b.WriteString(f.wrap(DeviceTokens(comp)))
		case *ast.Instance:
			b.WriteString(f.wrap(InstanceTokens(comp)))
		}
	}

	fmt.Fprintf(&b, ".ends %s\n", s.Name)
	return b.String()
}

// InstanceTokens returns the SPICE tokens for an X line, keeping the CDL
// "/" form when the instance was written that way
func InstanceTokens(x *ast.Instance) []string {
	tokens := append([]string{x.Name}, x.Nodes...)
	if x.CDL {
		tokens = append(tokens, "/")
	}
	tokens = append(tokens, x.SubcktName)
	tokens = append(tokens, x.Extra...)
	return append(tokens, paramTokens(x.Params)...)
}

// FormatModel writes a .model card
func (f *Formatter) FormatModel(m *ast.Model) string {
	tokens := []string{".model", m.Name, m.Type}
	return f.wrap(append(tokens, paramTokens(m.Params)...))
}
