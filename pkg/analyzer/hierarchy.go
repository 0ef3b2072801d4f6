package analyzer

import (
	"sort"

	"netlist-analyzer/pkg/ast"
)

// HierarchyNode is one instance in the instantiation tree
type HierarchyNode struct {
	Name       string           `json:"name"` // instance name, or the root scope name
	SubcktName string           `json:"subckt,omitempty"`
	Resolved   bool             `json:"resolved"`        // the subckt is defined
	Cycle      bool             `json:"cycle,omitempty"` // expansion stopped because the subckt is already an ancestor
	Children   []*HierarchyNode `json:"children,omitempty"`
}

// BuildHierarchy returns the instance tree below root. Only instances are
// included; siblings are sorted by instance name.
func BuildHierarchy(c *ast.Circuit, root ast.Scope) *HierarchyNode {
	node := &HierarchyNode{Resolved: true}
	var ancestors []string

	if root.IsGlobal() {
		node.Name = c.Name
	} else {
		node.Name = root.ScopeName()
		node.SubcktName = root.ScopeName()
		ancestors = append(ancestors, root.ScopeName())
	}

	node.Children = buildChildren(c, root.ScopeComponents(), ancestors)
	return node
}

func buildChildren(c *ast.Circuit, comps []ast.Component, ancestors []string) []*HierarchyNode {
	var children []*HierarchyNode
	for _, comp := range comps {
		inst, ok := comp.(*ast.Instance)
		if !ok {
			continue
		}

		child := &HierarchyNode{Name: inst.Name, SubcktName: inst.SubcktName}
		if sub, ok := c.Subckt(inst.SubcktName); ok {
			child.Resolved = true
			if contains(ancestors, sub.Name) {
				child.Cycle = true
			} else {
				next := append(append([]string(nil), ancestors...), sub.Name)
				child.Children = buildChildren(c, sub.Components, next)
			}
		}
		children = append(children, child)
	}

	sort.SliceStable(children, func(i, j int) bool {
		return children[i].Name < children[j].Name
	})
	return children
}

// Walk visits the node and its descendants depth-first
func (n *HierarchyNode) Walk(fn func(node *HierarchyNode, depth int)) {
	n.walk(fn, 0)
}

func (n *HierarchyNode) walk(fn func(node *HierarchyNode, depth int), depth int) {
	fn(n, depth)
	for _, child := range n.Children {
		child.walk(fn, depth+1)
	}
}

func contains(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}

// Dependencies returns name and every subckt it transitively instantiates,
// each listed after the subckts it uses. Undefined references are skipped;
// a cycle is an error.
func Dependencies(c *ast.Circuit, name string) ([]string, error) {
	if _, ok := c.Subckt(name); !ok {
		return nil, &NotFoundError{Kind: "subckt", Name: name}
	}

	var order []string
	done := make(map[string]bool)

	var visit func(name string, stack []string) error
	visit = func(name string, stack []string) error {
		if done[name] {
			return nil
		}
		if contains(stack, name) {
			cycle := append(append([]string(nil), stack...), name)
			return &CyclicHierarchyError{Cycle: trimCycle(cycle)}
		}
		sub, ok := c.Subckt(name)
		if !ok {
			return nil
		}

		next := append(append([]string(nil), stack...), name)
		for _, comp := range sub.Components {
			if inst, ok := comp.(*ast.Instance); ok {
				if err := visit(inst.SubcktName, next); err != nil {
					return err
				}
			}
		}
		done[name] = true
		order = append(order, name)
		return nil
	}

	if err := visit(name, nil); err != nil {
		return nil, err
	}
	return order, nil
}

// ModelsUsed returns the sorted, distinct model names referenced by devices
// directly inside the named subckts
func ModelsUsed(c *ast.Circuit, subckts []string) []string {
	seen := make(map[string]bool)
	for _, name := range subckts {
		sub, ok := c.Subckt(name)
		if !ok {
			continue
		}
		for _, comp := range sub.Components {
			if dev, ok := comp.(*ast.Device); ok && dev.Model != "" {
				seen[dev.Model] = true
			}
		}
	}
	return ast.SortedKeys(seen)
}
