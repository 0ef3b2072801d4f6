package analyzer

import (
	"sort"

	"netlist-analyzer/pkg/ast"
)

// FindModelUsers returns the scopes whose direct components use name, either
// as a device model or as an instance's subckt reference. Matches in the
// global scope are reported as "global". The result is sorted.
func FindModelUsers(c *ast.Circuit, name string) ([]string, error) {
	var users []string

	if usesName(c.Components, name) {
		users = append(users, ast.GlobalScopeName)
	}
	for _, sub := range c.SubcktNames() {
		s, _ := c.Subckt(sub)
		if usesName(s.Components, name) {
			users = append(users, sub)
		}
	}

	if len(users) == 0 {
		_, isModel := c.Model(name)
		_, isSubckt := c.Subckt(name)
		if !isModel && !isSubckt {
			return nil, &NotFoundError{Kind: "model", Name: name}
		}
	}

	sort.Strings(users)
	return users, nil
}

func usesName(comps []ast.Component, name string) bool {
	for _, comp := range comps {
		switch comp := comp.(type) {
		case *ast.Device:
			if comp.Model == name {
				return true
			}
		case *ast.Instance:
			if comp.SubcktName == name {
				return true
			}
		}
	}
	return false
}
