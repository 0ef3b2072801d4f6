package parser

import (
	"errors"
	"fmt"
)

// WarningKind classifies recoverable parse problems
type WarningKind int

const (
	WarnMalformedLine WarningKind = iota
	WarnUnsupportedDirective
	WarnUnterminatedSubckt
	WarnEndsMismatch
	WarnDuplicateModel
	WarnInclude
)

func (k WarningKind) String() string {
	switch k {
	case WarnMalformedLine:
		return "malformed-line"
	case WarnUnsupportedDirective:
		return "unsupported-directive"
	case WarnUnterminatedSubckt:
		return "unterminated-subckt"
	case WarnEndsMismatch:
		return "ends-mismatch"
	case WarnDuplicateModel:
		return "duplicate-model"
	case WarnInclude:
		return "include"
	default:
		return "unknown"
	}
}

// Warning is a recoverable problem; the offending line was skipped or
// handled best-effort and parsing continued
type Warning struct {
	Kind    WarningKind
	File    string
	Line    int
	Message string
}

func (w Warning) String() string {
	if w.File != "" {
		return fmt.Sprintf("%s:%d: %s: %s", w.File, w.Line, w.Kind, w.Message)
	}
	return fmt.Sprintf("line %d: %s: %s", w.Line, w.Kind, w.Message)
}

// Sentinel errors for structural faults that abort parsing
var (
	ErrUnmatchedEnds   = errors.New("unmatched .ENDS")
	ErrDuplicateSubckt = errors.New("duplicate subckt definition")
)

// SyntaxError reports an unrecoverable structural fault
type SyntaxError struct {
	Err     error
	File    string
	Line    int
	Message string
}

func (e *SyntaxError) Error() string {
	loc := fmt.Sprintf("line %d", e.Line)
	if e.File != "" {
		loc = fmt.Sprintf("%s:%d", e.File, e.Line)
	}
	if e.Message != "" {
		return fmt.Sprintf("%s: %v: %s", loc, e.Err, e.Message)
	}
	return fmt.Sprintf("%s: %v", loc, e.Err)
}

func (e *SyntaxError) Unwrap() error {
	return e.Err
}
