package mrz

import (
	"strings"
	"unicode"
)

const (
	lineCount  = 3
	lineLength = 30
	filler     = '<'
)

// fillerLookalikes are characters OCR engines commonly return for '<'.
var fillerLookalikes = map[rune]bool{
	'«': true, '‹': true, '(': true, '[': true, '{': true,
	'〈': true, '＜': true, '≤': true,
}

// normalizeLine uppercases a line, drops whitespace and maps filler
// look-alikes to '<'.
func normalizeLine(line string) string {
	var b strings.Builder
	b.Grow(len(line))
	for _, r := range line {
		switch {
		case unicode.IsSpace(r):
			continue
		case fillerLookalikes[r]:
			b.WriteByte(filler)
		default:
			b.WriteRune(unicode.ToUpper(r))
		}
	}
	return b.String()
}

// Normalize splits text into normalized, non-empty lines.
func Normalize(text string) []string {
	var lines []string
	for _, raw := range strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n") {
		if l := normalizeLine(raw); l != "" {
			lines = append(lines, l)
		}
	}
	return lines
}

func validChar(c byte) bool {
	return (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9') || c == filler
}

// FindLines picks the machine-readable zone out of free OCR output.
//
// OCR of a whole card returns the zone as the last lines of text,
// frequently with one or two trailing fillers dropped or a stray character
// appended. Lines within two characters of the zone width with at most one
// character outside the zone alphabet are kept. That character becomes a
// filler so the check digits decide whether it mattered. Short lines are
// padded with fillers and long ones lose trailing fillers. The last three
// such lines are returned. Fewer than three means no zone was found.
func FindLines(text string) []string {
	var candidates []string
	for _, l := range Normalize(text) {
		if len(l) < lineLength-2 || len(l) > lineLength+2 {
			continue
		}
		bad := -1
		for i := 0; i < len(l); i++ {
			if validChar(l[i]) {
				continue
			}
			if bad >= 0 {
				bad = len(l)
				break
			}
			bad = i
		}
		if bad == len(l) {
			continue
		}
		if bad >= 0 {
			l = l[:bad] + string(filler) + l[bad+1:]
		}
		if len(l) < lineLength {
			l += strings.Repeat(string(filler), lineLength-len(l))
		}
		for len(l) > lineLength && l[len(l)-1] == filler {
			l = l[:len(l)-1]
		}
		if len(l) != lineLength {
			continue
		}
		candidates = append(candidates, l)
	}
	if len(candidates) > lineCount {
		candidates = candidates[len(candidates)-lineCount:]
	}
	return candidates
}
