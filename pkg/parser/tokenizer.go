// Package parser - tokenizer that turns SPICE/CDL text into logical lines
package parser

import (
	"strings"
	"unicode"
)

// LogicalLine is one netlist statement after continuation joining and
// comment removal
type LogicalLine struct {
	Line   int      // 1-based physical line the statement starts on
	Tokens []string // Whitespace-separated tokens, original case preserved
}

// Diagnostic is a recoverable problem noticed while tokenizing
type Diagnostic struct {
	Line    int
	Message string
}

// Tokenizer represents the tokenizer state. Lines are produced lazily by Next
// and the sequence can be restarted with Reset.
type Tokenizer struct {
	lines       []string
	pos         int // index of the next physical line to read
	diagnostics []Diagnostic
	maxTokens   int // per logical line, prevents runaway continuation chains
}

// NewTokenizer creates a new tokenizer over the whole input
func NewTokenizer(input string) *Tokenizer {
	const maxTokensLimit = 100000
	input = strings.ReplaceAll(input, "\r\n", "\n")
	return &Tokenizer{
		lines:     strings.Split(input, "\n"),
		maxTokens: maxTokensLimit,
	}
}

// Reset rewinds the tokenizer to the first line
func (t *Tokenizer) Reset() {
	t.pos = 0
	t.diagnostics = nil
}

// Tokenize returns every logical line from the start of the input
func (t *Tokenizer) Tokenize() []LogicalLine {
	t.Reset()
	var out []LogicalLine
	for {
		line, ok := t.Next()
		if !ok {
			return out
		}
		out = append(out, line)
	}
}

// HasErrors returns true if the tokenizer recorded diagnostics
func (t *Tokenizer) HasErrors() bool {
	return len(t.diagnostics) > 0
}

// Diagnostics returns the problems recorded so far
func (t *Tokenizer) Diagnostics() []Diagnostic {
	return t.diagnostics
}

// Next returns the next logical line. ok is false once the input is exhausted.
func (t *Tokenizer) Next() (line LogicalLine, ok bool) {
	started := false

	for t.pos < len(t.lines) {
		lineNum := t.pos + 1
		trimmed := strings.TrimSpace(t.lines[t.pos])

		// Blank and full-line comments never end a continuation chain
		if trimmed == "" || trimmed[0] == '*' {
			t.pos++
			continue
		}

		if trimmed[0] == '+' {
			t.pos++
			tokens := t.split(trimmed[1:], lineNum)
			if len(tokens) == 0 {
				continue
			}
			if !started {
				t.addDiagnostic(lineNum, "continuation line without a preceding statement")
				line = LogicalLine{Line: lineNum}
				started = true
			}
			line.Tokens = append(line.Tokens, tokens...)
			if len(line.Tokens) > t.maxTokens {
				t.addDiagnostic(lineNum, "excessive tokens in statement, truncated")
				line.Tokens = line.Tokens[:t.maxTokens]
			}
			continue
		}

		if trimmed[0] == '$' {
			// Inline comment with nothing before it
			t.pos++
			continue
		}
		if started {
			break
		}
		t.pos++
		tokens := t.split(trimmed, lineNum)
		if len(tokens) == 0 {
			continue
		}
		line = LogicalLine{Line: lineNum, Tokens: tokens}
		started = true
	}

	if !started {
		return LogicalLine{}, false
	}
	line.Tokens = joinAssignments(line.Tokens)
	return line, true
}

func (t *Tokenizer) addDiagnostic(line int, msg string) {
	t.diagnostics = append(t.diagnostics, Diagnostic{Line: line, Message: msg})
}

// split breaks a physical line into tokens. Single-quoted and braced
// expressions stay whole; a '$' outside them starts an inline comment.
func (t *Tokenizer) split(s string, lineNum int) []string {
	var tokens []string
	var b strings.Builder
	inQuote := false
	depth := 0

	flush := func() {
		if b.Len() > 0 {
			tokens = append(tokens, b.String())
			b.Reset()
		}
	}

	for _, r := range s {
		switch {
		case r == '\'' && depth == 0:
			inQuote = !inQuote
			b.WriteRune(r)
		case inQuote:
			b.WriteRune(r)
		case r == '{':
			depth++
			b.WriteRune(r)
		case r == '}' && depth > 0:
			depth--
			b.WriteRune(r)
		case depth > 0:
			b.WriteRune(r)
		case r == '$':
			flush()
			return tokens
		case unicode.IsSpace(r):
			flush()
		default:
			b.WriteRune(r)
		}
	}
	if inQuote || depth > 0 {
		t.addDiagnostic(lineNum, "unterminated quoted expression")
	}
	flush()
	return tokens
}

// joinAssignments glues "w = 1u", "w= 1u" and "w =1u" into "w=1u"
func joinAssignments(tokens []string) []string {
	out := make([]string, 0, len(tokens))
	for i := 0; i < len(tokens); i++ {
		tok := tokens[i]
		if strings.HasPrefix(tok, "=") && len(out) > 0 {
			out[len(out)-1] += tok
			if tok == "=" && i+1 < len(tokens) {
				out[len(out)-1] += tokens[i+1]
				i++
			}
			continue
		}
		if len(tok) > 1 && strings.HasSuffix(tok, "=") && i+1 < len(tokens) {
			tok += tokens[i+1]
			i++
		}
		out = append(out, tok)
	}
	return out
}
