package parser

import (
	"netlist-analyzer/pkg/ast"
)

// currentFrame returns the innermost scope frame
func (p *Parser) currentFrame() *frame {
	return p.scopeStack[len(p.scopeStack)-1]
}

// addComponent adds a component to the current scope
func (p *Parser) addComponent(comp ast.Component) {
	f := p.currentFrame()
	switch {
	case f.discard:
	case f.subckt != nil:
		f.subckt.AddComponent(comp)
	default:
		p.circuit.AddComponent(comp)
	}
}

// enterScope pushes a new subckt frame
func (p *Parser) enterScope(f *frame) {
	p.scopeStack = append(p.scopeStack, f)
}

// exitScope pops the current frame and registers its subckt. The global
// frame is never popped.
func (p *Parser) exitScope(line int) error {
	if len(p.scopeStack) <= 1 {
		return &SyntaxError{Err: ErrUnmatchedEnds, File: p.filename, Line: line}
	}

	f := p.currentFrame()
	p.scopeStack = p.scopeStack[:len(p.scopeStack)-1]

	if f.discard || f.subckt == nil {
		return nil
	}
	if err := p.circuit.AddSubckt(f.subckt); err != nil {
		return &SyntaxError{
			Err:     ErrDuplicateSubckt,
			File:    p.filename,
			Line:    f.line,
			Message: err.Error(),
		}
	}
	return nil
}
