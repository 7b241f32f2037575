package pipeline

import (
	"regexp"
	"sort"
	"strings"

	"hvacquote/internal"
)

// Extraction is an ordered list of pattern rules; adding a model family
// means adding a rule, not growing one expression. Order is precedence:
// a span claimed by an earlier rule is invisible to later ones.
type modelRule struct {
	family  internal.ModelFamily
	pattern *regexp.Regexp
}

var modelRules = []modelRule{
	// Three uppercase letters then two digits, e.g. ZHG04N4B.
	{internal.FamilyAlternate, regexp.MustCompile(`(?i)\b[A-Z]{3}\d{2}[A-Z0-9-]*\b`)},
	// Two uppercase letters then three digits or two digits and a
	// letter, e.g. ZF078C00A2, AC36B-1.
	{internal.FamilyStandard, regexp.MustCompile(`(?i)\b[A-Z]{2}(?:\d{3}|\d{2}[A-Z])[A-Z0-9-]*\b`)},
}

type modelMatch struct {
	start  int
	raw    string
	family internal.ModelFamily
}

// ExtractModelTokens scans text for model-code-shaped substrings and
// tallies exact occurrences of each upper-cased match. The returned
// slice is in first-appearance order. No matches means an empty slice,
// never an error. Callers scrub serial noise first (ScrubSerials).
func ExtractModelTokens(text string) []internal.ModelToken {
	matches := make([]modelMatch, 0)
	claimed := make([][2]int, 0)

	for _, rule := range modelRules {
		for _, loc := range rule.pattern.FindAllStringIndex(text, -1) {
			if overlapsClaimed(claimed, loc[0], loc[1]) {
				continue
			}
			claimed = append(claimed, [2]int{loc[0], loc[1]})
			matches = append(matches, modelMatch{
				start:  loc[0],
				raw:    strings.ToUpper(text[loc[0]:loc[1]]),
				family: rule.family,
			})
		}
	}

	sort.Slice(matches, func(i, j int) bool { return matches[i].start < matches[j].start })

	index := map[string]int{}
	tokens := make([]internal.ModelToken, 0, len(matches))
	for _, m := range matches {
		if at, seen := index[m.raw]; seen {
			tokens[at].Quantity++
			continue
		}
		index[m.raw] = len(tokens)
		tokens = append(tokens, internal.ModelToken{
			Raw:      m.raw,
			Family:   m.family,
			Quantity: 1,
			Order:    len(tokens),
		})
	}
	return tokens
}

func overlapsClaimed(claimed [][2]int, start, end int) bool {
	for _, span := range claimed {
		if start < span[1] && end > span[0] {
			return true
		}
	}
	return false
}
