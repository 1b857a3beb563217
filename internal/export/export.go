// Package export renders an aggregated shopping list as a downloadable
// document.
package export

import (
	_ "embed"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/go-pdf/fpdf"

	"github.com/pageza/foodgram/backend/internal/service"
)

// Format is a supported document format
type Format string

const (
	PDF  Format = "pdf"
	Text Format = "txt"
)

const (
	title    = "Shopping list:"
	fontName = "DejaVu"
)

// DejaVu covers Cyrillic, which the core PDF fonts cannot encode
//
//go:embed fonts/DejaVuSansCondensed.ttf
var dejaVuSans []byte

// ParseFormat maps a query value to a Format. An empty value selects PDF.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case "", PDF:
		return PDF, nil
	case Text:
		return Text, nil
	default:
		return "", fmt.Errorf("unsupported format %q", s)
	}
}

// ContentType returns the MIME type of documents in f
func (f Format) ContentType() string {
	if f == Text {
		return "text/plain; charset=utf-8"
	}
	return "application/pdf"
}

// Filename returns the attachment name for f
func (f Format) Filename() string {
	return "shopping_cart." + string(f)
}

// Lines formats items as "{index}. {name} {total} {unit}." starting at 1
func Lines(items []service.ShoppingItem) []string {
	lines := make([]string, len(items))
	for i, item := range items {
		lines[i] = strconv.Itoa(i+1) + ". " + item.Name + " " + strconv.Itoa(item.Total) + " " + item.Unit + "."
	}
	return lines
}

// Render writes items to w in format. An empty list still produces a
// document: a PDF holding only the title, or an empty text body.
func Render(w io.Writer, format Format, items []service.ShoppingItem) error {
	switch format {
	case Text:
		return renderText(w, items)
	case PDF:
		return renderPDF(w, items)
	default:
		return fmt.Errorf("unsupported format %q", format)
	}
}

func renderText(w io.Writer, items []service.ShoppingItem) error {
	for _, line := range Lines(items) {
		if _, err := io.WriteString(w, line+"\n"); err != nil {
			return err
		}
	}
	return nil
}

func renderPDF(w io.Writer, items []service.ShoppingItem) error {
	pdf := buildPDF(items)
	if err := pdf.Error(); err != nil {
		return fmt.Errorf("failed to build pdf: %w", err)
	}
	return pdf.Output(w)
}

func buildPDF(items []service.ShoppingItem) *fpdf.Fpdf {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.AddUTF8FontFromBytes(fontName, "", dejaVuSans)
	pdf.SetTitle("Shopping list", true)
	pdf.AddPage()

	pdf.SetFont(fontName, "", 16)
	pdf.Cell(0, 10, title)
	pdf.Ln(12)

	pdf.SetFont(fontName, "", 12)
	for _, line := range Lines(items) {
		pdf.Cell(0, 8, line)
		pdf.Ln(8)
	}
	return pdf
}
