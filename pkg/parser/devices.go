package parser

import (
	"fmt"
	"sort"
	"strings"

	"netlist-analyzer/pkg/ast"
)

// Trailer describes what follows the fixed node list of a device line
type Trailer int

const (
	TrailerNone  Trailer = iota
	TrailerModel         // one model-name token (M, Q, D, J)
	TrailerValue         // one value token (R, C, L)
	TrailerExpr          // every non key=value token joined (V, I, E, F, G, H)
)

func (t Trailer) String() string {
	switch t {
	case TrailerModel:
		return "model"
	case TrailerValue:
		return "value"
	case TrailerExpr:
		return "expr"
	default:
		return "none"
	}
}

// ParseTrailer maps a trailer name back to its value
func ParseTrailer(name string) (Trailer, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "model":
		return TrailerModel, nil
	case "value":
		return TrailerValue, nil
	case "expr":
		return TrailerExpr, nil
	case "none", "":
		return TrailerNone, nil
	default:
		return TrailerNone, fmt.Errorf("unknown trailer %q", name)
	}
}

// DeviceSpec is the fixed shape of one device family
type DeviceSpec struct {
	Kind    ast.DeviceKind
	Nodes   int
	Trailer Trailer
}

// MinTokens is the shortest valid line for this family, name included
func (s DeviceSpec) MinTokens() int {
	n := 1 + s.Nodes
	if s.Trailer == TrailerModel || s.Trailer == TrailerValue {
		n++
	}
	return n
}

// DeviceTable maps an upper-case prefix letter to its device shape.
// Letters missing from the table are parsed as generic passthrough devices.
type DeviceTable map[byte]DeviceSpec

// DefaultDeviceTable returns the conventional SPICE node counts
func DefaultDeviceTable() DeviceTable {
	return DeviceTable{
		'R': {Kind: ast.KindResistor, Nodes: 2, Trailer: TrailerValue},
		'C': {Kind: ast.KindCapacitor, Nodes: 2, Trailer: TrailerValue},
		'L': {Kind: ast.KindInductor, Nodes: 2, Trailer: TrailerValue},
		'M': {Kind: ast.KindMosfet, Nodes: 4, Trailer: TrailerModel},
		'Q': {Kind: ast.KindBJT, Nodes: 3, Trailer: TrailerModel},
		'D': {Kind: ast.KindDiode, Nodes: 2, Trailer: TrailerModel},
		'J': {Kind: ast.KindJFET, Nodes: 3, Trailer: TrailerModel},
		'V': {Kind: ast.KindVoltageSource, Nodes: 2, Trailer: TrailerExpr},
		'I': {Kind: ast.KindCurrentSource, Nodes: 2, Trailer: TrailerExpr},
		'E': {Kind: ast.KindControlledSource, Nodes: 4, Trailer: TrailerExpr},
		'G': {Kind: ast.KindControlledSource, Nodes: 4, Trailer: TrailerExpr},
		'F': {Kind: ast.KindControlledSource, Nodes: 2, Trailer: TrailerExpr},
		'H': {Kind: ast.KindControlledSource, Nodes: 2, Trailer: TrailerExpr},
	}
}

// Lookup finds the spec for a prefix letter (case-insensitive)
func (t DeviceTable) Lookup(prefix byte) (DeviceSpec, bool) {
	spec, ok := t[upper(prefix)]
	return spec, ok
}

// Set adds or replaces a family. X is reserved for subckt instances.
func (t DeviceTable) Set(prefix byte, spec DeviceSpec) error {
	p := upper(prefix)
	if p < 'A' || p > 'Z' {
		return fmt.Errorf("device prefix %q is not a letter", prefix)
	}
	if p == 'X' {
		return fmt.Errorf("device prefix X is reserved for subckt instances")
	}
	if spec.Nodes < 0 {
		return fmt.Errorf("device prefix %c: negative node count", p)
	}
	t[p] = spec
	return nil
}

// Clone returns an independent copy of the table
func (t DeviceTable) Clone() DeviceTable {
	out := make(DeviceTable, len(t))
	for k, v := range t {
		out[k] = v
	}
	return out
}

// Prefixes returns the table's prefix letters in order
func (t DeviceTable) Prefixes() []byte {
	out := make([]byte, 0, len(t))
	for k := range t {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func upper(b byte) byte {
	if b >= 'a' && b <= 'z' {
		return b - 'a' + 'A'
	}
	return b
}
