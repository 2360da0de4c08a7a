// Package pdfdoc models an ingested paginated document and wraps PDF
// access: native per-page text, page count validation, and embedded page
// images for the OCR fallback.
package pdfdoc

import (
	"bytes"
	"fmt"
	"strings"

	pdflib "github.com/ledongthuc/pdf"
)

// Page is one physical page. Text is the native (embedded) text layer and
// may be empty for scanned pages. Watermarked text is unreliable and must
// be discarded in favor of OCR.
type Page struct {
	Index       int
	Text        string
	Watermarked bool
}

// Document is an immutable, ordered page sequence. After mapping, each
// page belongs to at most one account.
type Document struct {
	ID       string
	Filename string
	Pages    []Page
}

func (d *Document) PageCount() int {
	return len(d.Pages)
}

// FullText is the linearized document text: all page text concatenated in
// page order. This is the segmenter's only input.
func (d *Document) FullText() string {
	var sb strings.Builder
	for i, p := range d.Pages {
		if i > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString(p.Text)
	}
	return sb.String()
}

// Load parses PDF bytes into a Document. Pages whose text layer cannot be
// read get empty text; the page-to-account mapper falls back to OCR for
// those.
func Load(data []byte, id, filename string) (*Document, error) {
	reader, err := pdflib.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("open pdf: %w", err)
	}

	doc := &Document{ID: id, Filename: filename}
	numPages := reader.NumPage()
	for i := 1; i <= numPages; i++ {
		page := Page{Index: i - 1}
		p := reader.Page(i)
		if !p.V.IsNull() {
			if text, err := p.GetPlainText(nil); err == nil {
				page.Text = text
				page.Watermarked = HasWatermark(text)
			}
		}
		doc.Pages = append(doc.Pages, page)
	}
	if len(doc.Pages) == 0 {
		return nil, fmt.Errorf("pdf has no pages")
	}
	return doc, nil
}
