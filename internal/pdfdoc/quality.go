package pdfdoc

import (
	"strings"
	"unicode/utf8"
)

// MinTextLen is the minimum native text length considered usable. Below
// this the page is assumed to be a scan and OCR kicks in.
const MinTextLen = 50

// watermarkSignatures are overlay stamps left by demo/trial PDF software.
// Native text containing one of these is unreliable: the stamp text is
// interleaved with the page content.
var watermarkSignatures = []string{
	"PDFill PDF Editor",
	"Evaluation Only",
	"EVALUATION COPY",
	"Demo Version",
	"Created with a trial version",
}

// HasWatermark reports whether text carries a known watermark signature.
func HasWatermark(text string) bool {
	lower := strings.ToLower(text)
	for _, sig := range watermarkSignatures {
		if strings.Contains(lower, strings.ToLower(sig)) {
			return true
		}
	}
	return false
}

// NeedsOCR reports whether native page text should be discarded in favor
// of OCR: absent or too short, watermark-tainted, or visibly corrupted by
// bad font encoding.
func NeedsOCR(text string, watermarked bool) bool {
	if watermarked {
		return true
	}
	trimmed := strings.TrimSpace(text)
	if len(trimmed) < MinTextLen {
		return true
	}
	return replacementCharRatio(trimmed) > 0.05
}

// replacementCharRatio is the fraction of runes that are the Unicode
// replacement character, a sign of font-encoding corruption.
func replacementCharRatio(text string) float64 {
	if text == "" {
		return 0
	}
	total := 0
	bad := 0
	for _, r := range text {
		total++
		if r == utf8.RuneError {
			bad++
		}
	}
	if total == 0 {
		return 0
	}
	return float64(bad) / float64(total)
}
