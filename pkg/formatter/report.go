package formatter

import (
	"netlist-analyzer/pkg/analyzer"
	"netlist-analyzer/pkg/ast"
)

// FlatReport is the JSON form of a flattened circuit. Slices are never nil so
// the encoded document always carries every list.
type FlatReport struct {
	Root        string         `json:"root"`
	Separator   string         `json:"separator"`
	Devices     []ReportDevice `json:"devices"`
	Unresolved  []ReportCell   `json:"unresolved"`
	Leaves      []ReportCell   `json:"leaves"`
	Warnings    []string       `json:"warnings"`
	Transistors int            `json:"transistors"`
}

// ReportDevice is one flattened device
type ReportDevice struct {
	Name   string        `json:"name"`
	Kind   string        `json:"kind"`
	Nodes  []string      `json:"nodes"`
	Model  string        `json:"model,omitempty"`
	Value  string        `json:"value,omitempty"`
	Params []ReportParam `json:"params,omitempty"`
}

// ReportCell is a leaf cell or black box
type ReportCell struct {
	Path   string        `json:"path"`
	Subckt string        `json:"subckt"`
	Nodes  []string      `json:"nodes"`
	Params []ReportParam `json:"params,omitempty"`
}

// ReportParam is a key=value pair in source order
type ReportParam struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// NewFlatReport builds the JSON report for a flattened circuit
func NewFlatReport(flat *analyzer.FlatCircuit) *FlatReport {
	report := &FlatReport{
		Root:        flat.Root,
		Separator:   flat.Separator,
		Devices:     make([]ReportDevice, 0, len(flat.Devices)),
		Unresolved:  make([]ReportCell, 0, len(flat.Unresolved)),
		Leaves:      make([]ReportCell, 0, len(flat.Leaves)),
		Warnings:    make([]string, 0, len(flat.Warnings)),
		Transistors: analyzer.CountTransistors(flat),
	}

	for _, dev := range flat.Devices {
		report.Devices = append(report.Devices, ReportDevice{
			Name:   dev.Name,
			Kind:   dev.Kind.String(),
			Nodes:  nonNil(dev.Nodes),
			Model:  dev.Model,
			Value:  dev.Value,
			Params: reportParams(dev.Params),
		})
	}
	for _, u := range flat.Unresolved {
		report.Unresolved = append(report.Unresolved, ReportCell{
			Path:   u.Path,
			Subckt: u.SubcktName,
			Nodes:  nonNil(u.Nodes),
			Params: reportParams(u.Params),
		})
	}
	for _, leaf := range flat.Leaves {
		report.Leaves = append(report.Leaves, ReportCell{
			Path:   leaf.Path,
			Subckt: leaf.SubcktName,
			Nodes:  nonNil(leaf.Nodes),
			Params: reportParams(leaf.Params),
		})
	}
	for _, w := range flat.Warnings {
		report.Warnings = append(report.Warnings, w.String())
	}
	return report
}

func reportParams(params ast.Params) []ReportParam {
	if len(params) == 0 {
		return nil
	}
	out := make([]ReportParam, len(params))
	for i, p := range params {
		out[i] = ReportParam{Key: p.Key, Value: p.Value}
	}
	return out
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
