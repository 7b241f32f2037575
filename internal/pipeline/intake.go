package pipeline

import (
	"bytes"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/jhillyerd/enmime"
	pdf "github.com/ledongthuc/pdf"
	"github.com/xuri/excelize/v2"

	"hvacquote/internal/util"
)

// EmailContent is everything the pipeline wants from one raw message:
// the flattened text of body plus readable attachments, and the parts
// the RFQ detector scores separately.
type EmailContent struct {
	Subject         string
	Text            string
	BodyText        string
	HTML            string
	AttachmentNames []string
}

// TextFromEmailRaw parses a raw RFC822 message and flattens its plain
// body, HTML body and XLSX/PDF attachments into one scannable text.
// Unreadable attachments are skipped, not fatal.
func TextFromEmailRaw(raw []byte) (EmailContent, error) {
	env, err := enmime.ReadEnvelope(bytes.NewReader(raw))
	if err != nil {
		return EmailContent{}, err
	}

	content := EmailContent{
		Subject:  env.GetHeader("Subject"),
		BodyText: env.Text,
		HTML:     env.HTML,
	}

	parts := make([]string, 0, 2+len(env.Attachments))
	if env.Text != "" {
		parts = append(parts, env.Text)
	}
	if env.HTML != "" {
		parts = append(parts, htmlToText(env.HTML))
	}

	for _, att := range env.Attachments {
		filename := strings.TrimSpace(att.FileName)
		if filename == "" {
			filename = "attachment"
		}
		content.AttachmentNames = append(content.AttachmentNames, filename)

		lower := strings.ToLower(filename)
		switch {
		case strings.HasSuffix(lower, ".xlsx") || strings.HasSuffix(lower, ".xls"):
			if text, err := textFromXLSX(att.Content); err == nil && text != "" {
				parts = append(parts, text)
			}
		case strings.HasSuffix(lower, ".pdf"):
			if text, err := textFromPDF(att.Content); err == nil && text != "" {
				parts = append(parts, text)
			}
		}
	}

	content.Text = strings.Join(parts, "\n")
	return content, nil
}

// htmlToText flattens an HTML body to line-per-block text. Tag edges
// become line breaks so adjacent table cells can never fuse into one
// model-shaped token.
func htmlToText(html string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return ""
	}
	doc.Find("script,style,head").Remove()

	var b strings.Builder
	doc.Find("p, li, td, th, h1, h2, h3, h4, pre, blockquote, span, a, b, strong, em, div").Each(func(_ int, s *goquery.Selection) {
		if s.Children().Length() > 0 {
			return
		}
		if text := util.NormalizeSpaces(s.Text()); text != "" {
			b.WriteString(text)
			b.WriteByte('\n')
		}
	})

	if b.Len() == 0 {
		return util.NormalizeSpaces(doc.Text())
	}
	return b.String()
}

func textFromXLSX(content []byte) (string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(content))
	if err != nil {
		return "", err
	}
	defer f.Close()

	var b strings.Builder
	for _, sheet := range f.GetSheetList() {
		rows, err := f.GetRows(sheet)
		if err != nil {
			continue
		}
		for _, row := range rows {
			line := util.JoinNonEmpty(" | ", row...)
			if line != "" {
				b.WriteString(line)
				b.WriteByte('\n')
			}
		}
	}
	return b.String(), nil
}

func textFromPDF(content []byte) (string, error) {
	r, err := pdf.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return "", err
	}

	var b strings.Builder
	for i := 1; i <= r.NumPage(); i++ {
		p := r.Page(i)
		if p.V.IsNull() {
			continue
		}
		text, err := p.GetPlainText(nil)
		if err != nil {
			continue
		}
		b.WriteString(text)
		b.WriteByte('\n')
	}
	return b.String(), nil
}
