package analyzer

import (
	"netlist-analyzer/pkg/ast"
	"netlist-analyzer/pkg/utils"
)

// CountComponents tallies the direct components of a scope by family.
// Instances are counted under "instance" and are not expanded.
func CountComponents(scope ast.Scope) map[ast.DeviceKind]int {
	counts := make(map[ast.DeviceKind]int)
	for _, comp := range scope.ScopeComponents() {
		counts[comp.Family()]++
	}
	return counts
}

// CountTransistors returns the number of MOSFET and BJT devices in a
// flattened circuit. Leaf cells and black boxes count when Classify puts
// them in a transistor family, as in LVS netlists where every transistor is
// an empty subckt.
func CountTransistors(flat *FlatCircuit) int {
	n := 0
	for _, dev := range flat.Devices {
		if dev.Kind.IsTransistor() {
			n++
		}
	}
	for _, leaf := range flat.Leaves {
		if Classify(leaf.SubcktName, leaf.Params).IsTransistor() {
			n++
		}
	}
	for _, u := range flat.Unresolved {
		if Classify(u.SubcktName, u.Params).IsTransistor() {
			n++
		}
	}
	return n
}

// ModelUsage counts how many flattened devices reference each model.
// Devices without a model are ignored.
func ModelUsage(flat *FlatCircuit) map[string]int {
	usage := make(map[string]int)
	for _, dev := range flat.Devices {
		if dev.Model != "" {
			usage[dev.Model]++
		}
	}
	return usage
}

// CellUsage counts leaf cells and black boxes by the subckt name they reference
func CellUsage(flat *FlatCircuit) map[string]int {
	usage := make(map[string]int)
	for _, leaf := range flat.Leaves {
		usage[leaf.SubcktName]++
	}
	for _, u := range flat.Unresolved {
		usage[u.SubcktName]++
	}
	return usage
}

// Classify guesses the device family of a leaf cell or black box from its
// subckt name and parameters. Cells that match no rule are "instance".
func Classify(subcktName string, params ast.Params) ast.DeviceKind {
	switch {
	case utils.ContainsAny(subcktName, "fet", "mos") && params.Has("W") && params.Has("L"):
		return ast.KindMosfet
	case utils.ContainsAny(subcktName, "bjt", "npn", "pnp"):
		return ast.KindBJT
	case utils.ContainsAny(subcktName, "diode"):
		return ast.KindDiode
	default:
		return ast.KindInstance
	}
}

// HierarchicalStats counts every element of a flattened circuit by family
// name. Leaf cells and black boxes are classified with Classify.
func HierarchicalStats(flat *FlatCircuit) map[string]int {
	stats := make(map[string]int)
	for _, dev := range flat.Devices {
		stats[dev.Kind.String()]++
	}
	for _, leaf := range flat.Leaves {
		stats[Classify(leaf.SubcktName, leaf.Params).String()]++
	}
	for _, u := range flat.Unresolved {
		stats[Classify(u.SubcktName, u.Params).String()]++
	}
	return stats
}

// MaxDepth returns the deepest instance nesting in a flattened circuit. A
// device inside X1.X2 is at depth 2, as is the leaf cell X1.XL.
func MaxDepth(flat *FlatCircuit) int {
	return flat.Depth
}
