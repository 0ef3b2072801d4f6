// Package analyzer derives views from a parsed circuit: top cells, the
// flattened device list, statistics, model usage and the instance tree.
// Nothing in this package mutates the circuit it is given.
package analyzer

import (
	"sort"

	"netlist-analyzer/pkg/ast"
)

// ListTopCells returns every subckt name that is never referenced by an
// instance, in the global scope or in any subckt body. The result is sorted.
func ListTopCells(c *ast.Circuit) []string {
	referenced := make(map[string]bool)
	for _, instances := range c.Instances() {
		for _, inst := range instances {
			referenced[inst.SubcktName] = true
		}
	}

	var tops []string
	for _, name := range c.SubcktNames() {
		if !referenced[name] {
			tops = append(tops, name)
		}
	}
	sort.Strings(tops)
	return tops
}

// FindTopCell resolves the root scope for flattening. An explicit name must
// exist. Otherwise a non-empty global scope wins, then a unique indegree-zero
// subckt.
func FindTopCell(c *ast.Circuit, name string) (ast.Scope, error) {
	if name != "" {
		s, ok := c.Subckt(name)
		if !ok {
			return nil, &NotFoundError{Kind: "subckt", Name: name}
		}
		return s, nil
	}

	if len(c.Components) > 0 {
		return c, nil
	}

	candidates := ListTopCells(c)
	if len(candidates) != 1 {
		return nil, &AmbiguousTopCellError{Candidates: candidates}
	}
	s, _ := c.Subckt(candidates[0])
	return s, nil
}
