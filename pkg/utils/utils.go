// Package utils provides token-level helpers shared by the parser and analyzer
package utils

import (
	"regexp"
	"strings"
)

// valuePattern matches SPICE numeric literals with an optional scale suffix
// and unit tail, e.g. 1k, 10meg, 2.5e-3, 100nF, 0.18u
var valuePattern = regexp.MustCompile(`^[-+]?(\d+\.?\d*|\.\d+)([eE][-+]?\d+)?(meg|mil|[TtGgMmKkUuNnPpFfAa])?[A-Za-z]*$`)

// IsNumericValue reports whether the token looks like a SPICE number
func IsNumericValue(token string) bool {
	return valuePattern.MatchString(token)
}

// IsQuoted reports whether the token is a single-quoted or braced expression
func IsQuoted(token string) bool {
	if len(token) < 2 {
		return false
	}
	return (token[0] == '\'' && token[len(token)-1] == '\'') ||
		(token[0] == '{' && token[len(token)-1] == '}')
}

// IsParam reports whether the token is a key=value pair
func IsParam(token string) bool {
	idx := strings.IndexByte(token, '=')
	return idx > 0
}

// IsValueLike reports whether the token terminates a variable-length node list:
// a number, a quoted expression or a key=value parameter
func IsValueLike(token string) bool {
	return IsNumericValue(token) || IsQuoted(token) || IsParam(token)
}

// SplitParam splits key=value. ok is false when the token is not a parameter.
func SplitParam(token string) (key, value string, ok bool) {
	idx := strings.IndexByte(token, '=')
	if idx <= 0 {
		return "", "", false
	}
	return token[:idx], token[idx+1:], true
}

// TrimQuotes strips one level of surrounding single or double quotes
func TrimQuotes(s string) string {
	if len(s) >= 2 {
		first, last := s[0], s[len(s)-1]
		if (first == '\'' && last == '\'') || (first == '"' && last == '"') {
			return s[1 : len(s)-1]
		}
	}
	return s
}

// TrimParens strips model-card parentheses from a token, e.g. "(level=1" or "vto=0.7)"
func TrimParens(s string) string {
	return strings.Trim(s, "()")
}

// JoinPath joins a prefix and a local name with the hierarchy separator.
// An empty prefix yields the name unchanged.
func JoinPath(prefix, sep, name string) string {
	if prefix == "" {
		return name
	}
	return prefix + sep + name
}

// ContainsFold reports whether list contains s, ignoring case
func ContainsFold(list []string, s string) bool {
	for _, item := range list {
		if strings.EqualFold(item, s) {
			return true
		}
	}
	return false
}

// ContainsAny reports whether s contains any of the substrings, ignoring case
func ContainsAny(s string, subs ...string) bool {
	lower := strings.ToLower(s)
	for _, sub := range subs {
		if strings.Contains(lower, strings.ToLower(sub)) {
			return true
		}
	}
	return false
}
