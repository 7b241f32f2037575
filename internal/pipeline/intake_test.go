package pipeline

import (
	"strings"
	"testing"
)

func TestTextFromEmailRawPlain(t *testing.T) {
	raw := "From: buyer@example.com\r\nTo: quotes@example.com\r\nSubject: Quote request\r\nMIME-Version: 1.0\r\nContent-Type: text/plain; charset=utf-8\r\n\r\nPlease quote AB060X.\r\n"

	content, err := TextFromEmailRaw([]byte(raw))
	if err != nil {
		t.Fatal(err)
	}
	if content.Subject != "Quote request" {
		t.Fatalf("subject = %q", content.Subject)
	}
	if !strings.Contains(content.Text, "AB060X") {
		t.Fatalf("text = %q", content.Text)
	}
}

func TestTextFromEmailRawHTMLTable(t *testing.T) {
	html := `<html><body><p>Please quote:</p><table><tr><td>AB060X</td><td>2</td></tr><tr><td>AB125C</td><td>1</td></tr></table></body></html>`
	raw := "From: buyer@example.com\r\nSubject: RFQ\r\nMIME-Version: 1.0\r\nContent-Type: text/html; charset=utf-8\r\n\r\n" + html + "\r\n"

	content, err := TextFromEmailRaw([]byte(raw))
	if err != nil {
		t.Fatal(err)
	}
	if content.HTML == "" {
		t.Fatal("html body not captured")
	}

	tokens := ExtractModelTokens(ScrubSerials(content.Text))
	if len(tokens) != 2 {
		t.Fatalf("tokens = %+v, want both models from the table", tokens)
	}
}

func TestHTMLToTextKeepsCellsApart(t *testing.T) {
	// Adjacent cells must not fuse into one model-shaped run.
	text := htmlToText(`<table><tr><td>AB060X</td><td>123456</td></tr></table>`)
	if !strings.Contains(text, "AB060X\n") {
		t.Fatalf("text = %q", text)
	}
}
