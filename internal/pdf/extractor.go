package pdfutil

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	pdf "github.com/ledongthuc/pdf"
)

// ErrNoText is returned when a document parses but yields no extractable
// text (scanned images, for example).
var ErrNoText = errors.New("no extractable text")

// Extract returns the plain text of a PDF. Pages that fail to decode are
// skipped so one bad page does not lose the rest of the document; the
// document fails only when it cannot be parsed at all or no page produced
// text.
func Extract(data []byte) (string, error) {
	doc, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("parse pdf: %w", err)
	}
	var (
		builder   strings.Builder
		extracted int
	)
	for page := 1; page <= doc.NumPage(); page++ {
		p := doc.Page(page)
		if p.V.IsNull() {
			continue
		}
		content, err := p.GetPlainText(nil)
		if err != nil || content == "" {
			continue
		}
		builder.WriteString(content)
		builder.WriteString("\n")
		extracted++
	}
	if extracted == 0 {
		return "", ErrNoText
	}
	return builder.String(), nil
}
