package analyzer

import (
	"fmt"

	"netlist-analyzer/pkg/ast"
	"netlist-analyzer/pkg/utils"
)

// UnconnectedPrefix marks ports that an instance left unconnected
const UnconnectedPrefix = "nc#"

// GroundNet is the SPICE ground node
const GroundNet = "0"

// Options controls flattening
type Options struct {
	Separator     string   // joins instance names into hierarchical paths
	GlobalNets    []string // nets never prefixed, matched case-insensitively
	GroundNets    []string // aliases renamed to the ground node, matched case-insensitively
	KeepLeafCells bool     // record instances of empty subckts as LeafCell entries
}

// DefaultOptions returns the standard flattening options
func DefaultOptions() Options {
	return Options{
		Separator:     ".",
		GlobalNets:    []string{GroundNet},
		GroundNets:    []string{"GND"},
		KeepLeafCells: true,
	}
}

// UnresolvedInstance is an instance whose subckt is not defined. It is kept
// as a black box and contributes no devices.
type UnresolvedInstance struct {
	Path       string
	SubcktName string
	Nodes      []string
	Params     ast.Params
}

// LeafCell is an instance of an empty subckt, typically a transistor cell in
// an LVS netlist
type LeafCell struct {
	Path       string
	SubcktName string
	Nodes      []string
	Params     ast.Params
}

// PortArityWarning reports an instance whose node count differs from the
// port count of its subckt
type PortArityWarning struct {
	Path       string
	SubcktName string
	Ports      int
	Nodes      int
}

func (w PortArityWarning) String() string {
	return fmt.Sprintf("instance %s: subckt %s has %d ports but %d nodes were given",
		w.Path, w.SubcktName, w.Ports, w.Nodes)
}

// FlatCircuit is the single-level view of a hierarchy
type FlatCircuit struct {
	Root       string
	Separator  string
	Devices    []*ast.Device
	Unresolved []UnresolvedInstance
	Leaves     []LeafCell
	Warnings   []PortArityWarning
	Depth      int // deepest instance nesting reached
}

// flattener holds the per-call state; each Flatten call owns its own
type flattener struct {
	circuit *ast.Circuit
	opts    Options
	globals []string
	out     *FlatCircuit
}

// Flatten expands every instance below root into a flat device list with
// hierarchical names. Devices are cloned, the circuit is left untouched.
func Flatten(c *ast.Circuit, root ast.Scope, opts Options) (*FlatCircuit, error) {
	if root == nil {
		return nil, fmt.Errorf("flatten: nil root scope")
	}

	f := &flattener{
		circuit: c,
		opts:    opts,
		globals: append(append([]string(nil), opts.GlobalNets...), c.Globals...),
		out: &FlatCircuit{
			Root:      root.ScopeName(),
			Separator: opts.Separator,
		},
	}

	var stack []string
	if !root.IsGlobal() {
		stack = append(stack, root.ScopeName())
	}

	if err := f.walk(root.ScopeComponents(), "", nil, stack, 0); err != nil {
		return nil, err
	}
	return f.out, nil
}

// walk flattens one scope. portMap maps local port names to resolved nets
// and stack holds the subckt names currently being expanded.
func (f *flattener) walk(comps []ast.Component, prefix string, portMap map[string]string, stack []string, depth int) error {
	for _, comp := range comps {
		switch comp := comp.(type) {
		case *ast.Device:
			f.reach(depth)
			dev := comp.Clone()
			dev.Name = f.join(prefix, comp.Name)
			for i, node := range comp.Nodes {
				dev.Nodes[i] = f.resolve(node, prefix, portMap)
			}
			f.out.Devices = append(f.out.Devices, dev)

		case *ast.Instance:
			if err := f.expand(comp, prefix, portMap, stack, depth+1); err != nil {
				return err
			}

		default:
			return fmt.Errorf("flatten: unsupported component %T", comp)
		}
	}
	return nil
}

// expand handles a single instance: black box, leaf cell, or recursion.
// depth is the nesting level of the instance itself.
func (f *flattener) expand(inst *ast.Instance, prefix string, portMap map[string]string, stack []string, depth int) error {
	path := f.join(prefix, inst.Name)

	nodes := make([]string, len(inst.Nodes))
	for i, node := range inst.Nodes {
		nodes[i] = f.resolve(node, prefix, portMap)
	}

	sub, ok := f.circuit.Subckt(inst.SubcktName)
	if !ok {
		f.reach(depth)
		f.out.Unresolved = append(f.out.Unresolved, UnresolvedInstance{
			Path:       path,
			SubcktName: inst.SubcktName,
			Nodes:      nodes,
			Params:     inst.Params.Clone(),
		})
		return nil
	}

	if contains(stack, sub.Name) {
		cycle := append(append([]string(nil), stack...), sub.Name)
		return &CyclicHierarchyError{Cycle: trimCycle(cycle), Path: path}
	}

	if len(sub.Ports) != len(nodes) {
		f.out.Warnings = append(f.out.Warnings, PortArityWarning{
			Path:       path,
			SubcktName: sub.Name,
			Ports:      len(sub.Ports),
			Nodes:      len(nodes),
		})
	}

	if sub.IsEmpty() && f.opts.KeepLeafCells {
		f.reach(depth)
		f.out.Leaves = append(f.out.Leaves, LeafCell{
			Path:       path,
			SubcktName: sub.Name,
			Nodes:      nodes,
			Params:     inst.Params.Clone(),
		})
		return nil
	}

	childMap := make(map[string]string, len(sub.Ports))
	for i, port := range sub.Ports {
		if i < len(nodes) {
			childMap[port] = nodes[i]
		} else {
			childMap[port] = UnconnectedPrefix + f.join(path, port)
		}
	}

	childStack := append(append([]string(nil), stack...), sub.Name)
	return f.walk(sub.Components, path, childMap, childStack, depth)
}

func (f *flattener) reach(depth int) {
	if depth > f.out.Depth {
		f.out.Depth = depth
	}
}

// resolve maps a local net to its flattened name
func (f *flattener) resolve(node, prefix string, portMap map[string]string) string {
	if mapped, ok := portMap[node]; ok {
		return mapped
	}
	if utils.ContainsFold(f.opts.GroundNets, node) {
		return GroundNet
	}
	if utils.ContainsFold(f.globals, node) {
		return node
	}
	return f.join(prefix, node)
}

func (f *flattener) join(prefix, name string) string {
	return utils.JoinPath(prefix, f.opts.Separator, name)
}

// trimCycle drops the acyclic lead-in so the result starts at the repeated name
func trimCycle(stack []string) []string {
	last := stack[len(stack)-1]
	for i, name := range stack[:len(stack)-1] {
		if name == last {
			return stack[i:]
		}
	}
	return stack
}
