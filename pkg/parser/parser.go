// Package parser implements a line-driven SPICE/CDL netlist parser with an
// explicit scope stack
package parser

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"netlist-analyzer/pkg/ast"
	"netlist-analyzer/pkg/utils"
)

// Parser implements a scope-aware parser over the tokenizer's logical lines
type Parser struct {
	tokenizer  *Tokenizer
	devices    DeviceTable
	circuit    *ast.Circuit
	scopeStack []*frame
	warnings   []Warning
	filename   string
	ended      bool // .END seen
}

// frame is one entry of the scope stack; the bottom frame is the global scope
type frame struct {
	subckt  *ast.Subckt // nil for the global frame
	discard bool        // malformed .SUBCKT whose body is dropped
	line    int
}

// Option configures a Parser
type Option func(*Parser)

// WithDeviceTable overrides the per-family node-count table
func WithDeviceTable(table DeviceTable) Option {
	return func(p *Parser) {
		if table != nil {
			p.devices = table.Clone()
		}
	}
}

// New creates a new parser instance
func New(opts ...Option) *Parser {
	p := &Parser{
		devices: DefaultDeviceTable(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Parse parses netlist text into a Circuit. Structural faults (unmatched
// .ENDS, subckt redefinition) abort with a *SyntaxError; everything else is
// recorded in Warnings and parsing continues.
func (p *Parser) Parse(filename, content string) (*ast.Circuit, error) {
	p.filename = filename
	p.circuit = ast.NewCircuit(circuitName(filename))
	p.scopeStack = []*frame{{}}
	p.warnings = nil
	p.ended = false
	p.tokenizer = NewTokenizer(content)

	lastLine := 0
	for !p.ended {
		line, ok := p.tokenizer.Next()
		if !ok {
			break
		}
		lastLine = line.Line
		if err := p.parseLine(line); err != nil {
			return nil, err
		}
	}

	for _, d := range p.tokenizer.Diagnostics() {
		p.warn(WarnMalformedLine, d.Line, d.Message)
	}

	// Close anything left open so its definition is not lost
	for len(p.scopeStack) > 1 {
		f := p.currentFrame()
		if f.subckt != nil {
			p.warn(WarnUnterminatedSubckt, f.line, fmt.Sprintf("subckt %s has no .ENDS", f.subckt.Name))
		}
		if err := p.exitScope(lastLine); err != nil {
			return nil, err
		}
	}

	sort.SliceStable(p.warnings, func(i, j int) bool {
		return p.warnings[i].Line < p.warnings[j].Line
	})

	return p.circuit, nil
}

// Warnings returns the recoverable problems found by the last Parse
func (p *Parser) Warnings() []Warning {
	return p.warnings
}

// parseLine dispatches on the first token of a logical line
func (p *Parser) parseLine(line LogicalLine) error {
	head := line.Tokens[0]

	if head[0] == '.' {
		return p.parseDirective(line)
	}

	prefix := upper(head[0])
	switch {
	case prefix == 'X':
		p.parseInstance(line)
	case prefix >= 'A' && prefix <= 'Z':
		p.parseDevice(line, prefix)
	default:
		p.warn(WarnMalformedLine, line.Line, fmt.Sprintf("unrecognized element %q", head))
	}
	return nil
}

// parseDirective handles dot-commands
func (p *Parser) parseDirective(line LogicalLine) error {
	switch strings.ToUpper(line.Tokens[0]) {
	case ".SUBCKT":
		p.parseSubckt(line)
	case ".ENDS":
		return p.parseEnds(line)
	case ".MODEL":
		p.parseModel(line)
	case ".PARAM":
		p.parseParam(line)
	case ".GLOBAL":
		for _, net := range line.Tokens[1:] {
			if !utils.ContainsFold(p.circuit.Globals, net) {
				p.circuit.Globals = append(p.circuit.Globals, net)
			}
		}
	case ".INCLUDE", ".INC", ".LIB":
		p.parseInclude(line)
	case ".ENDL":
		// end of a library section, nothing to close
	case ".END":
		p.ended = true
	default:
		p.warn(WarnUnsupportedDirective, line.Line, fmt.Sprintf("directive %s ignored", line.Tokens[0]))
	}
	return nil
}

// parseSubckt opens a new subckt scope
func (p *Parser) parseSubckt(line LogicalLine) {
	tokens := line.Tokens
	if len(tokens) < 2 {
		p.warn(WarnMalformedLine, line.Line, ".SUBCKT without a name")
		p.enterScope(&frame{discard: true, line: line.Line})
		return
	}

	subckt := &ast.Subckt{
		Name:     tokens[1],
		Position: p.pos(line),
	}
	for _, tok := range tokens[2:] {
		if strings.EqualFold(tok, "params:") {
			continue
		}
		if key, value, ok := utils.SplitParam(tok); ok {
			subckt.Params.Set(key, utils.TrimQuotes(value))
			continue
		}
		subckt.Ports = append(subckt.Ports, tok)
	}

	p.enterScope(&frame{subckt: subckt, line: line.Line})
}

// parseEnds closes the current subckt scope
func (p *Parser) parseEnds(line LogicalLine) error {
	if len(p.scopeStack) <= 1 {
		return &SyntaxError{
			Err:     ErrUnmatchedEnds,
			File:    p.filename,
			Line:    line.Line,
			Message: "no open .SUBCKT",
		}
	}

	f := p.currentFrame()
	if len(line.Tokens) > 1 && f.subckt != nil && !strings.EqualFold(line.Tokens[1], f.subckt.Name) {
		p.warn(WarnEndsMismatch, line.Line,
			fmt.Sprintf(".ENDS %s closes subckt %s", line.Tokens[1], f.subckt.Name))
	}
	return p.exitScope(line.Line)
}

// parseModel records a .MODEL card at circuit scope
func (p *Parser) parseModel(line LogicalLine) {
	tokens := line.Tokens
	if len(tokens) < 3 {
		p.warn(WarnMalformedLine, line.Line, ".MODEL needs a name and a type")
		return
	}

	model := &ast.Model{
		Name:     tokens[1],
		Position: p.pos(line),
	}

	rest := tokens[3:]
	typeTok := tokens[2]
	if idx := strings.IndexByte(typeTok, '('); idx >= 0 {
		if tail := typeTok[idx+1:]; tail != "" {
			rest = append([]string{tail}, rest...)
		}
		typeTok = typeTok[:idx]
	}
	model.Type = typeTok

	for _, tok := range rest {
		tok = utils.TrimParens(tok)
		if key, value, ok := utils.SplitParam(tok); ok {
			model.Params.Set(key, value)
		}
	}

	if p.circuit.AddModel(model) {
		p.warn(WarnDuplicateModel, line.Line, fmt.Sprintf("model %s redefined", model.Name))
	}
}

// parseParam stores .PARAM values on the current scope
func (p *Parser) parseParam(line LogicalLine) {
	found := false
	for _, tok := range line.Tokens[1:] {
		key, value, ok := utils.SplitParam(tok)
		if !ok {
			continue
		}
		found = true
		value = utils.TrimQuotes(value)

		f := p.currentFrame()
		switch {
		case f.discard:
		case f.subckt != nil:
			f.subckt.Params.Set(key, value)
		default:
			p.circuit.Params.Set(key, value)
		}
	}
	if !found {
		p.warn(WarnMalformedLine, line.Line, ".PARAM without key=value")
	}
}

// parseInclude records the referenced file; resolution is up to the caller
func (p *Parser) parseInclude(line LogicalLine) {
	if len(line.Tokens) < 2 {
		p.warn(WarnMalformedLine, line.Line, fmt.Sprintf("%s without a path", line.Tokens[0]))
		return
	}
	p.circuit.Includes = append(p.circuit.Includes, utils.TrimQuotes(line.Tokens[1]))
}

// parseInstance parses an X line in either CDL ("/") or generic form
func (p *Parser) parseInstance(line LogicalLine) {
	tokens := line.Tokens
	if len(tokens) < 2 {
		p.warn(WarnMalformedLine, line.Line, fmt.Sprintf("instance %s has no subckt reference", tokens[0]))
		return
	}

	inst := &ast.Instance{
		Name:     tokens[0],
		Position: p.pos(line),
	}
	body := tokens[1:]

	slash := -1
	for i, tok := range body {
		if tok == "/" {
			slash = i
			break
		}
	}

	if slash >= 0 {
		if slash+1 >= len(body) {
			p.warn(WarnMalformedLine, line.Line, fmt.Sprintf("instance %s: missing subckt name after /", inst.Name))
			return
		}
		inst.CDL = true
		inst.Nodes = append([]string(nil), body[:slash]...)
		inst.SubcktName = body[slash+1]
		inst.Params, inst.Extra = splitTrailing(body[slash+2:])
		p.addComponent(inst)
		return
	}

	end := len(body)
	for i, tok := range body {
		if utils.IsParam(tok) {
			end = i
			break
		}
	}
	if end == 0 {
		p.warn(WarnMalformedLine, line.Line, fmt.Sprintf("instance %s has no subckt reference", inst.Name))
		return
	}

	// Only the reference position may carry the "/NAME" shorthand; nodes
	// such as /top/net1 are hierarchical net names
	ref := body[end-1]
	if len(ref) > 1 && ref[0] == '/' {
		inst.CDL = true
		ref = ref[1:]
	}
	inst.SubcktName = ref
	inst.Nodes = append([]string(nil), body[:end-1]...)
	inst.Params, inst.Extra = splitTrailing(body[end:])

	p.addComponent(inst)
}

// parseDevice parses a primitive device line using the device table
func (p *Parser) parseDevice(line LogicalLine, prefix byte) {
	tokens := line.Tokens
	spec, ok := p.devices.Lookup(prefix)
	if !ok {
		p.parseGenericDevice(line, prefix)
		return
	}

	if len(tokens) < spec.MinTokens() {
		p.warn(WarnMalformedLine, line.Line,
			fmt.Sprintf("%s: %s needs at least %d tokens, got %d", tokens[0], spec.Kind, spec.MinTokens(), len(tokens)))
		return
	}

	dev := &ast.Device{
		Kind:     spec.Kind,
		Prefix:   string(prefix),
		Name:     tokens[0],
		Nodes:    append([]string(nil), tokens[1:1+spec.Nodes]...),
		Position: p.pos(line),
	}
	rest := tokens[1+spec.Nodes:]

	switch spec.Trailer {
	case TrailerModel:
		if utils.IsParam(rest[0]) {
			p.warn(WarnMalformedLine, line.Line, fmt.Sprintf("%s: missing model name", dev.Name))
			return
		}
		dev.Model = rest[0]
		rest = rest[1:]
	case TrailerValue:
		if !utils.IsParam(rest[0]) {
			dev.Value = rest[0]
			rest = rest[1:]
		}
	case TrailerExpr:
		var expr []string
		var tail []string
		for _, tok := range rest {
			if utils.IsParam(tok) {
				tail = append(tail, tok)
			} else {
				expr = append(expr, tok)
			}
		}
		dev.Value = strings.Join(expr, " ")
		rest = tail
	}

	dev.Params, dev.Extra = splitTrailing(rest)
	p.addComponent(dev)
}

// parseGenericDevice handles families outside the table: nodes run until the
// first value-like token
func (p *Parser) parseGenericDevice(line LogicalLine, prefix byte) {
	tokens := line.Tokens
	if len(tokens) < 2 {
		p.warn(WarnMalformedLine, line.Line, fmt.Sprintf("%s: no connections", tokens[0]))
		return
	}

	dev := &ast.Device{
		Kind:     ast.KindGeneric,
		Prefix:   string(prefix),
		Name:     tokens[0],
		Position: p.pos(line),
	}

	i := 1
	for ; i < len(tokens); i++ {
		if utils.IsValueLike(tokens[i]) {
			break
		}
		dev.Nodes = append(dev.Nodes, tokens[i])
	}
	rest := tokens[i:]
	if len(rest) > 0 && !utils.IsParam(rest[0]) {
		dev.Value = rest[0]
		rest = rest[1:]
	}

	dev.Params, dev.Extra = splitTrailing(rest)
	p.addComponent(dev)
}

// splitTrailing separates key=value parameters from loose tokens
func splitTrailing(tokens []string) (ast.Params, []string) {
	var params ast.Params
	var extra []string
	for _, tok := range tokens {
		if key, value, ok := utils.SplitParam(tok); ok {
			params.Set(key, value)
			continue
		}
		extra = append(extra, tok)
	}
	return params, extra
}

func (p *Parser) warn(kind WarningKind, line int, msg string) {
	p.warnings = append(p.warnings, Warning{
		Kind:    kind,
		File:    p.filename,
		Line:    line,
		Message: msg,
	})
}

func (p *Parser) pos(line LogicalLine) ast.Position {
	return ast.Position{File: p.filename, Line: line.Line}
}

// circuitName derives the circuit name from the file name
func circuitName(filename string) string {
	base := filepath.Base(filename)
	name := strings.TrimSuffix(base, filepath.Ext(base))
	if filename == "" || name == "" || name == "." || strings.HasPrefix(name, "<") {
		return "top"
	}
	return name
}
