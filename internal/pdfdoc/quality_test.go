package pdfdoc

import (
	"strings"
	"testing"
)

func TestHasWatermark(t *testing.T) {
	if !HasWatermark("some text\nEvaluation Only. Created with PDFill PDF Editor") {
		t.Error("expected watermark to be detected")
	}
	if HasWatermark("ACCOUNT NUMBER: 468869904\nJohn Q. Public") {
		t.Error("expected clean text to pass")
	}
}

func TestNeedsOCR_ShortText(t *testing.T) {
	if !NeedsOCR("", false) {
		t.Error("expected empty text to need OCR")
	}
	if !NeedsOCR("short", false) {
		t.Error("expected short text to need OCR")
	}
	long := strings.Repeat("signature card account holder ", 10)
	if NeedsOCR(long, false) {
		t.Error("expected long clean text to be usable")
	}
}

func TestNeedsOCR_Watermarked(t *testing.T) {
	long := strings.Repeat("perfectly good text ", 20)
	if !NeedsOCR(long, true) {
		t.Error("expected watermarked page to need OCR regardless of length")
	}
}

func TestNeedsOCR_ReplacementChars(t *testing.T) {
	// Every third rune corrupted: well above the 5% threshold.
	corrupted := strings.Repeat("ab�", 40)
	if !NeedsOCR(corrupted, false) {
		t.Error("expected corrupted text to need OCR")
	}
}

func TestDocument_FullText(t *testing.T) {
	doc := &Document{
		ID: "d1",
		Pages: []Page{
			{Index: 0, Text: "page zero"},
			{Index: 1, Text: "page one"},
		},
	}
	want := "page zero\npage one"
	if got := doc.FullText(); got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
	if doc.PageCount() != 2 {
		t.Errorf("expected 2 pages, got %d", doc.PageCount())
	}
}
