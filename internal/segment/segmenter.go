// Package segment splits the linearized text of a multi-account document
// into per-account chunks keyed by account number.
package segment

import (
	"regexp"
	"strings"
)

// Chunk is the text segment attributed to one account number. Account
// numbers are unique within a document's chunk set; text from repeated
// sightings of the same number accumulates into a single chunk.
type Chunk struct {
	AccountNumber string
	Text          string
}

var (
	// Inline form: the account number sits on the marker line itself.
	inlineRe = regexp.MustCompile(`^ACCOUNT NUMBER[:\s]*([0-9]{6,15})`)
	// Multi-line form: bare header, holder-names header, then a digit line.
	headerRe = regexp.MustCompile(`^ACCOUNT NUMBER:$`)
	holderRe = regexp.MustCompile(`^Account Holder Names?:$`)
	digitsRe = regexp.MustCompile(`^([0-9]{6,15})$`)
)

// Segment scans text line by line and returns one chunk per distinct
// account number, in order of first sighting. Lines before the first
// marker are discarded. A document with no markers yields zero chunks.
//
// The scan is strictly sequential: each line's classification depends on
// the current-account state carried from earlier lines.
func Segment(text string) []Chunk {
	lines := strings.Split(text, "\n")

	var order []string
	texts := make(map[string]string)

	current := ""
	var buf []string

	flush := func() {
		if current == "" || len(buf) == 0 {
			buf = nil
			return
		}
		seg := strings.Join(buf, "\n")
		if prior := texts[current]; prior != "" {
			texts[current] = prior + "\n" + seg
		} else {
			texts[current] = seg
		}
		buf = nil
	}

	switchTo := func(num string) {
		flush()
		if _, seen := texts[num]; !seen {
			texts[num] = ""
			order = append(order, num)
		}
		current = num
	}

	for i := 0; i < len(lines); i++ {
		trimmed := strings.TrimSpace(lines[i])

		if m := inlineRe.FindStringSubmatch(trimmed); m != nil {
			switchTo(m[1])
			continue
		}
		if headerRe.MatchString(trimmed) {
			if num, last, ok := multilineNumber(lines, i+1); ok {
				switchTo(num)
				i = last
				continue
			}
			// Header without the rest of the form: ordinary content.
		}
		if current != "" {
			buf = append(buf, lines[i])
		}
	}
	flush()

	chunks := make([]Chunk, 0, len(order))
	for _, num := range order {
		chunks = append(chunks, Chunk{AccountNumber: num, Text: texts[num]})
	}
	return chunks
}

// multilineNumber validates the multi-line header form starting after the
// "ACCOUNT NUMBER:" line. It skips blank lines, expects the holder-names
// header, skips blank lines again, and expects a line that is purely 6-15
// digits. Returns the number and the index of the digit line.
func multilineNumber(lines []string, start int) (string, int, bool) {
	i := start
	for i < len(lines) && strings.TrimSpace(lines[i]) == "" {
		i++
	}
	if i >= len(lines) || !holderRe.MatchString(strings.TrimSpace(lines[i])) {
		return "", 0, false
	}
	i++
	for i < len(lines) && strings.TrimSpace(lines[i]) == "" {
		i++
	}
	if i >= len(lines) {
		return "", 0, false
	}
	m := digitsRe.FindStringSubmatch(strings.TrimSpace(lines[i]))
	if m == nil {
		return "", 0, false
	}
	return m[1], i, true
}
