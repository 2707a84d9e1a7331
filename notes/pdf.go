// Package notes reads brokerage notes and operation spreadsheets into raw
// operations.
package notes

import (
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

// MaxTextLength caps the text extracted from a PDF.
const MaxTextLength = 50000

// ExtractPDFText returns the plain text of the PDF at path, page after page,
// truncated to MaxTextLength bytes. Pages without text are skipped.
func ExtractPDFText(path string) (string, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open PDF %s: %w", path, err)
	}
	defer f.Close()

	var sb strings.Builder
	for i := 1; i <= r.NumPage(); i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		sb.WriteString(text)
		sb.WriteString("\n")
		if sb.Len() > MaxTextLength {
			break
		}
	}

	text := sb.String()
	if len(text) > MaxTextLength {
		text = text[:MaxTextLength]
	}
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("no text found in %s", path)
	}
	return text, nil
}
