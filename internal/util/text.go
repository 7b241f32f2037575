package util

import (
	"regexp"
	"strings"
)

var (
	reSpaces   = regexp.MustCompile(`\s+`)
	reNonAlnum = regexp.MustCompile(`[^A-Z0-9]`)
)

// NormalizeSpaces collapses runs of whitespace to single spaces and
// trims the ends.
func NormalizeSpaces(input string) string {
	return strings.TrimSpace(reSpaces.ReplaceAllString(input, " "))
}

// AlnumPrefix upper-cases the input, drops every non-alphanumeric
// character and returns at most n leading characters of what is left.
// This is the canonical form the capacity-code decoder reads positions
// from.
func AlnumPrefix(input string, n int) string {
	s := reNonAlnum.ReplaceAllString(strings.ToUpper(input), "")
	if len(s) > n {
		return s[:n]
	}
	return s
}

// AllDigits reports whether s is non-empty and made of ASCII digits.
func AllDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// JoinNonEmpty joins the trimmed, non-empty parts with sep.
func JoinNonEmpty(sep string, parts ...string) string {
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return strings.Join(out, sep)
}

func StringPtr(v string) *string { return &v }

func FloatPtr(v float64) *float64 { return &v }
