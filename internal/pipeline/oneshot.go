package pipeline

import (
	"fmt"
	"os"
)

// TextFromInput resolves a one-off CLI input to scannable text: raw
// text as-is, or a path to an .eml, .xlsx or .pdf file.
func TextFromInput(inputType, input string) (string, error) {
	switch inputType {
	case "text":
		return input, nil
	case "email":
		raw, err := os.ReadFile(input)
		if err != nil {
			return "", err
		}
		content, err := TextFromEmailRaw(raw)
		if err != nil {
			return "", err
		}
		return content.Text, nil
	case "xlsx":
		blob, err := os.ReadFile(input)
		if err != nil {
			return "", err
		}
		return textFromXLSX(blob)
	case "pdf":
		blob, err := os.ReadFile(input)
		if err != nil {
			return "", err
		}
		return textFromPDF(blob)
	default:
		return "", fmt.Errorf("unsupported input type: %s", inputType)
	}
}
