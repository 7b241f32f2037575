package pipeline

import "strings"

type DetectResult struct {
	IsRFQ  bool
	Score  float64
	Reason string
}

var rfqKeywords = []string{"quote", "rfq", "pricing", "price", "proposal", "replace", "rooftop", "rtu", "tonnage", "install"}

// DetectRFQ scores how much a message looks like a quote request:
// keyword hits, model-shaped tokens in the body, spreadsheet or PDF
// attachments, HTML tables. Mail below the threshold is skipped
// without processing.
func DetectRFQ(subject, text, html string, attachmentNames []string) DetectResult {
	subject = strings.ToLower(subject)
	loweredText := strings.ToLower(text)
	html = strings.ToLower(html)

	score := 0.0
	for _, kw := range rfqKeywords {
		if strings.Contains(subject, kw) {
			score += 0.2
		}
		if strings.Contains(loweredText, kw) || strings.Contains(html, kw) {
			score += 0.1
		}
	}

	modelHits := len(ExtractModelTokens(ScrubSerials(text)))
	if modelHits >= 2 {
		score += 0.4
	} else if modelHits == 1 {
		score += 0.2
	}

	for _, name := range attachmentNames {
		ln := strings.ToLower(name)
		if strings.HasSuffix(ln, ".xlsx") || strings.HasSuffix(ln, ".xls") || strings.HasSuffix(ln, ".pdf") {
			score += 0.25
			break
		}
	}

	if strings.Contains(html, "<table") {
		score += 0.25
	}
	if score > 1 {
		score = 1
	}

	isRFQ := score >= 0.45
	reason := "rules_negative"
	if isRFQ {
		reason = "rules_positive"
	}

	return DetectResult{IsRFQ: isRFQ, Score: score, Reason: reason}
}
