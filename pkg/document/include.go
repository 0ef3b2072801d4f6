package document

import (
	"fmt"
	"os"
	"path/filepath"

	"netlist-analyzer/pkg/ast"
	"netlist-analyzer/pkg/parser"
)

// loader parses a file and everything it includes, depth-first
type loader struct {
	parser   *parser.Parser
	visited  map[string]bool
	warnings []parser.Warning
	files    []string
}

func (l *loader) load(name, content string) (*ast.Circuit, error) {
	circuit, err := l.parser.Parse(name, content)
	if err != nil {
		return nil, err
	}
	l.warnings = append(l.warnings, l.parser.Warnings()...)

	includes := circuit.Includes
	for _, inc := range includes {
		path := resolveInclude(name, inc)
		key := absOrSelf(path)
		if l.visited[key] {
			l.warn(name, fmt.Sprintf("include %s skipped, already loaded", inc))
			continue
		}

		data, err := os.ReadFile(path)
		if err != nil {
			l.warn(name, fmt.Sprintf("include %s not readable: %v", inc, err))
			continue
		}
		l.visited[key] = true
		l.files = append(l.files, path)

		child, err := l.load(path, string(data))
		if err != nil {
			return nil, err
		}
		if err := circuit.Merge(child); err != nil {
			return nil, &parser.SyntaxError{
				Err:     parser.ErrDuplicateSubckt,
				File:    path,
				Message: err.Error(),
			}
		}
	}
	return circuit, nil
}

func (l *loader) warn(file, msg string) {
	l.warnings = append(l.warnings, parser.Warning{
		Kind:    parser.WarnInclude,
		File:    file,
		Message: msg,
	})
}

// resolveInclude interprets a relative include path against the including file
func resolveInclude(from, inc string) string {
	if filepath.IsAbs(inc) || from == "" {
		return inc
	}
	return filepath.Join(filepath.Dir(from), inc)
}

func absOrSelf(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}
	return path
}
