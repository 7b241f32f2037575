package pipeline

import (
	"regexp"
	"strings"
)

// Serial-number noise is deleted before model extraction so a serial
// sitting next to a model code is never captured as one. The two rules
// run in order; each rewrites the text the next one sees.
var (
	alnumRunPattern      = regexp.MustCompile(`[A-Za-z0-9]+`)
	labeledSerialPattern = regexp.MustCompile(`(?i)(?:serial\s?no?\.?#?|s/n|sn)\s*[A-Z0-9-]{10,}`)
)

// ScrubSerials removes serial-number-shaped substrings from text:
// first any word-bounded 10-character alphanumeric run containing at
// least one digit, then any labeled serial ("serial no. XXX", "s/n
// XXX", ...) with a 10+ character alphanumeric-and-hyphen tail.
// Matches are deleted, not extracted.
func ScrubSerials(text string) string {
	scrubbed := alnumRunPattern.ReplaceAllStringFunc(text, func(run string) string {
		if len(run) == 10 && strings.ContainsAny(run, "0123456789") {
			return ""
		}
		return run
	})
	return labeledSerialPattern.ReplaceAllString(scrubbed, "")
}
