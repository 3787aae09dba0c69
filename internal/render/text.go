package render

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/jung-kurt/gofpdf"
)

const (
	pageMargin = 15.0
	fontSize   = 12.0
	lineHeight = 6.0
)

// renderText writes plain text into an A4 PDF, one MultiCell per paragraph.
func (r *Renderer) renderText(text string) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(pageMargin, pageMargin, pageMargin)
	pdf.SetAutoPageBreak(true, pageMargin)
	pdf.AddPage()

	family := "Helvetica"
	if r.cfg.FontPath != "" {
		family = "doc"
		pdf.AddUTF8Font(family, "", r.cfg.FontPath)
	}
	pdf.SetFont(family, "", fontSize)

	for _, para := range strings.Split(text, "\n\n") {
		pdf.MultiCell(0, lineHeight, para, "", "L", false)
		pdf.Ln(lineHeight / 2)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("write pdf: %w", err)
	}
	return buf.Bytes(), nil
}
