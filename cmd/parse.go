package cmd

import (
	"fmt"

	"netlist-analyzer/pkg/ast"
	"netlist-analyzer/pkg/document"
	"netlist-analyzer/pkg/formatter"

	"github.com/spf13/cobra"
)

var parseCmd = &cobra.Command{
	Use:   "parse [file]",
	Short: "Parse a netlist and output the circuit structure",
	Long: `Parse a SPICE or CDL netlist (following relative .include files) and print
its subcircuits, components and models. The output can be in JSON format for
further processing, a raw dump of the parsed structures, or human-readable.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		doc, err := loadDocument(cmd, args[0])
		if err != nil {
			return err
		}

		format, _ := cmd.Flags().GetString("format")
		out := cmd.OutOrStdout()

		switch format {
		case "json":
			return writeJSON(out, circuitJSON(doc))
		case "dump":
			dumper.Fdump(out, doc.Circuit())
			return nil
		case "human":
			fmt.Fprint(out, formatter.New().FormatCircuit(doc.Circuit()))
			return nil
		default:
			return fmt.Errorf("unknown format %q (human, json, dump)", format)
		}
	},
}

func init() {
	parseCmd.Flags().StringP("format", "f", "human", "Output format (human, json, dump)")
}

// Simplified structures for JSON output
type jsonComponent struct {
	Name   string            `json:"name"`
	Kind   string            `json:"kind"`
	Nodes  []string          `json:"nodes"`
	Model  string            `json:"model,omitempty"`
	Value  string            `json:"value,omitempty"`
	Subckt string            `json:"subckt,omitempty"`
	Params map[string]string `json:"params,omitempty"`
	Line   int               `json:"line"`
}

type jsonSubckt struct {
	Name       string            `json:"name"`
	Ports      []string          `json:"ports"`
	Params     map[string]string `json:"params,omitempty"`
	Components []jsonComponent   `json:"components"`
	Line       int               `json:"line"`
}

type jsonModel struct {
	Name   string            `json:"name"`
	Type   string            `json:"type"`
	Params map[string]string `json:"params,omitempty"`
}

type jsonCircuit struct {
	Name       string          `json:"name"`
	Files      []string        `json:"files"`
	Globals    []string        `json:"globals,omitempty"`
	Components []jsonComponent `json:"components"`
	Subckts    []jsonSubckt    `json:"subckts"`
	Models     []jsonModel     `json:"models"`
	TopCells   []string        `json:"topCells"`
	Warnings   []string        `json:"warnings"`
}

func circuitJSON(doc *document.Document) jsonCircuit {
	c := doc.Circuit()
	out := jsonCircuit{
		Name:       c.Name,
		Files:      doc.Files(),
		Globals:    c.Globals,
		Components: convertComponents(c.Components),
		Subckts:    []jsonSubckt{},
		Models:     []jsonModel{},
		TopCells:   doc.TopCells(),
		Warnings:   []string{},
	}
	if out.TopCells == nil {
		out.TopCells = []string{}
	}

	for _, name := range c.SubcktNames() {
		s, _ := c.Subckt(name)
		out.Subckts = append(out.Subckts, jsonSubckt{
			Name:       s.Name,
			Ports:      nonNilStrings(s.Ports),
			Params:     paramMap(s.Params),
			Components: convertComponents(s.Components),
			Line:       s.Position.Line,
		})
	}
	for _, name := range c.ModelNames() {
		m, _ := c.Model(name)
		out.Models = append(out.Models, jsonModel{Name: m.Name, Type: m.Type, Params: paramMap(m.Params)})
	}
	for _, w := range doc.Warnings() {
		out.Warnings = append(out.Warnings, w.String())
	}
	return out
}

func convertComponents(comps []ast.Component) []jsonComponent {
	out := make([]jsonComponent, 0, len(comps))
	for _, comp := range comps {
		jc := jsonComponent{
			Name:  comp.GetName(),
			Kind:  comp.Family().String(),
			Nodes: nonNilStrings(comp.GetNodes()),
			Line:  comp.Pos().Line,
		}
		switch comp := comp.(type) {
		case *ast.Device:
			jc.Model = comp.Model
			jc.Value = comp.Value
			jc.Params = paramMap(comp.Params)
		case *ast.Instance:
			jc.Subckt = comp.SubcktName
			jc.Params = paramMap(comp.Params)
		}
		out = append(out, jc)
	}
	return out
}

func paramMap(params ast.Params) map[string]string {
	if len(params) == 0 {
		return nil
	}
	out := make(map[string]string, len(params))
	for _, p := range params {
		out[p.Key] = p.Value
	}
	return out
}

func nonNilStrings(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
