package analyzer

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for analyzer faults. The typed errors below unwrap to them.
var (
	ErrCyclicHierarchy = errors.New("cyclic hierarchy")
	ErrAmbiguousTop    = errors.New("ambiguous top cell")
	ErrNotFound        = errors.New("not found")
)

// CyclicHierarchyError is returned when a subckt transitively instantiates
// itself. Cycle lists the subckt names along the path, starting and ending
// with the repeated name.
type CyclicHierarchyError struct {
	Cycle []string
	Path  string // hierarchical instance path where the cycle closed
}

func (e *CyclicHierarchyError) Error() string {
	msg := fmt.Sprintf("cyclic hierarchy: %s", strings.Join(e.Cycle, " -> "))
	if e.Path != "" {
		msg += fmt.Sprintf(" (at instance %s)", e.Path)
	}
	return msg
}

func (e *CyclicHierarchyError) Unwrap() error {
	return ErrCyclicHierarchy
}

// AmbiguousTopCellError is returned when automatic top-cell detection finds
// zero or several candidates
type AmbiguousTopCellError struct {
	Candidates []string
}

func (e *AmbiguousTopCellError) Error() string {
	if len(e.Candidates) == 0 {
		return "no top cell candidates found, specify one explicitly"
	}
	return fmt.Sprintf("multiple top cell candidates (%s), specify one explicitly",
		strings.Join(e.Candidates, ", "))
}

func (e *AmbiguousTopCellError) Unwrap() error {
	return ErrAmbiguousTop
}

// NotFoundError is returned when a named subckt or model does not exist
type NotFoundError struct {
	Kind string // "subckt" or "model"
	Name string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Kind, e.Name)
}

func (e *NotFoundError) Unwrap() error {
	return ErrNotFound
}
