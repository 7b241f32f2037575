package pipeline

import "regexp"

// Street number, street words, a two-letter state token, a 5-digit
// zip. Best-effort: finds something shaped like a US address, not a
// validated one.
var addressPattern = regexp.MustCompile(`(?i)\d{3,}\s+[\w\s.,#]+\b[A-Za-z]{2}\b\s+\d{5}`)

// ExtractAddress returns the first address-shaped substring of the raw
// text, verbatim. It runs on the text before serial scrubbing so the
// scrub rules cannot eat pieces of the address.
func ExtractAddress(text string) (string, bool) {
	match := addressPattern.FindString(text)
	if match == "" {
		return "", false
	}
	return match, true
}
