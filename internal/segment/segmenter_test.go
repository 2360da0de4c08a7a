package segment

import (
	"reflect"
	"strings"
	"testing"
)

func TestSegment_InlineMarker(t *testing.T) {
	text := strings.Join([]string{
		"ACCOUNT NUMBER: 468869904",
		"John Q. Public",
		"Joint tenancy with right of survivorship",
	}, "\n")

	chunks := Segment(text)
	if len(chunks) != 1 {
		t.Fatalf("expected 1 chunk, got %d", len(chunks))
	}
	if chunks[0].AccountNumber != "468869904" {
		t.Errorf("expected account 468869904, got %q", chunks[0].AccountNumber)
	}
	if !strings.Contains(chunks[0].Text, "John Q. Public") {
		t.Errorf("expected chunk text to contain body, got %q", chunks[0].Text)
	}
}

func TestSegment_TwoFormsInOrder(t *testing.T) {
	// Inline marker first, then the multi-line header form.
	text := strings.Join([]string{
		"ACCOUNT NUMBER: 468869904",
		"first account body",
		"ACCOUNT NUMBER:",
		"Account Holder Names:",
		"123456",
		"second account body",
	}, "\n")

	chunks := Segment(text)
	if len(chunks) != 2 {
		t.Fatalf("expected 2 chunks, got %d", len(chunks))
	}
	if chunks[0].AccountNumber != "468869904" || chunks[1].AccountNumber != "123456" {
		t.Errorf("expected accounts [468869904 123456], got [%s %s]",
			chunks[0].AccountNumber, chunks[1].AccountNumber)
	}
	if chunks[0].Text != "first account body" {
		t.Errorf("chunk 0 text: got %q", chunks[0].Text)
	}
	if chunks[1].Text != "second account body" {
		t.Errorf("chunk 1 text: got %q", chunks[1].Text)
	}
}

func TestSegment_MultilineFormSkipsBlanks(t *testing.T) {
	text := strings.Join([]string{
		"ACCOUNT NUMBER:",
		"",
		"Account Holder Names:",
		"",
		"",
		"7788990011",
		"body line",
	}, "\n")

	chunks := Segment(text)
	if len(chunks) != 1 {
		t.Fatalf("expected 1 chunk, got %d", len(chunks))
	}
	if chunks[0].AccountNumber != "7788990011" {
		t.Errorf("expected account 7788990011, got %q", chunks[0].AccountNumber)
	}
	if chunks[0].Text != "body line" {
		t.Errorf("expected body only, got %q", chunks[0].Text)
	}
}

func TestSegment_Accumulation(t *testing.T) {
	// The same account number appears twice with different bodies; both
	// bodies must land in one chunk, in document order, newline-separated.
	text := strings.Join([]string{
		"ACCOUNT NUMBER: 468869904",
		"body one",
		"ACCOUNT NUMBER: 555666777",
		"other account",
		"ACCOUNT NUMBER: 468869904",
		"body two",
	}, "\n")

	chunks := Segment(text)
	if len(chunks) != 2 {
		t.Fatalf("expected 2 chunks, got %d", len(chunks))
	}
	if chunks[0].AccountNumber != "468869904" {
		t.Fatalf("expected first chunk 468869904, got %q", chunks[0].AccountNumber)
	}
	want := "body one\nbody two"
	if chunks[0].Text != want {
		t.Errorf("expected accumulated text %q, got %q", want, chunks[0].Text)
	}
}

func TestSegment_Idempotence(t *testing.T) {
	text := strings.Join([]string{
		"preamble to discard",
		"ACCOUNT NUMBER: 468869904",
		"alpha",
		"ACCOUNT NUMBER:",
		"Account Holder Names:",
		"123456",
		"beta",
	}, "\n")

	first := Segment(text)
	second := Segment(text)
	if !reflect.DeepEqual(first, second) {
		t.Errorf("expected identical results on repeated runs:\n%v\n%v", first, second)
	}
}

func TestSegment_NoMarkers(t *testing.T) {
	chunks := Segment("just some text\nwith no account markers\n123")
	if len(chunks) != 0 {
		t.Errorf("expected 0 chunks, got %d", len(chunks))
	}
}

func TestSegment_LinesBeforeFirstMarkerDiscarded(t *testing.T) {
	text := strings.Join([]string{
		"cover sheet",
		"branch 042",
		"ACCOUNT NUMBER: 468869904",
		"body",
	}, "\n")

	chunks := Segment(text)
	if len(chunks) != 1 {
		t.Fatalf("expected 1 chunk, got %d", len(chunks))
	}
	if strings.Contains(chunks[0].Text, "cover sheet") {
		t.Errorf("expected pre-marker lines to be discarded, got %q", chunks[0].Text)
	}
}

func TestSegment_MalformedHeaderIsPlainContent(t *testing.T) {
	// Header present but the digit line is missing: currentAccount must not
	// change and the lines become ordinary buffer content.
	text := strings.Join([]string{
		"ACCOUNT NUMBER: 468869904",
		"body",
		"ACCOUNT NUMBER:",
		"Account Holder Names:",
		"not a number",
	}, "\n")

	chunks := Segment(text)
	if len(chunks) != 1 {
		t.Fatalf("expected 1 chunk, got %d", len(chunks))
	}
	if !strings.Contains(chunks[0].Text, "not a number") {
		t.Errorf("expected malformed form lines in buffer, got %q", chunks[0].Text)
	}
}

func TestSegment_DigitLengthBounds(t *testing.T) {
	// 5 digits is below the 6-digit minimum; the marker must not fire.
	chunks := Segment("ACCOUNT NUMBER: 12345\nbody")
	if len(chunks) != 0 {
		t.Errorf("expected no chunks for 5-digit number, got %d", len(chunks))
	}

	chunks = Segment("ACCOUNT NUMBER: 123456\nbody")
	if len(chunks) != 1 || chunks[0].AccountNumber != "123456" {
		t.Errorf("expected single chunk for 6-digit number, got %v", chunks)
	}
}
