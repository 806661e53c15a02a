package format

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// listState is the scan state while wrapping list runs.
type listState int

const (
	notInList listState = iota
	inNumberedList
	inBulletList
)

func (s listState) openTag() string {
	if s == inNumberedList {
		return "<ol>"
	}
	return "<ul>"
}

func (s listState) closeTag() string {
	if s == inNumberedList {
		return "</ol>"
	}
	return "</ul>"
}

// isSpace reports whether r is whitespace in the regular-expression \s sense:
// Unicode spaces plus BOM, without NEL.
func isSpace(r rune) bool {
	if r == '\uFEFF' {
		return true
	}
	return r != '\u0085' && unicode.IsSpace(r)
}

// numberedMarker returns the length in bytes of a leading "\d+\.\s" marker
// on line, or 0 if there is none. The marker whitespace never spans a line
// break.
func numberedMarker(line string) int {
	i := 0
	for i < len(line) && line[i] >= '0' && line[i] <= '9' {
		i++
	}
	if i == 0 || i >= len(line) || line[i] != '.' {
		return 0
	}
	i++
	return spaceAfter(line, i)
}

// bulletMarker returns the length in bytes of a leading "[-*]\s" marker on
// line, or 0 if there is none.
func bulletMarker(line string) int {
	if line == "" || (line[0] != '-' && line[0] != '*') {
		return 0
	}
	return spaceAfter(line, 1)
}

// spaceAfter returns i plus the width of the whitespace rune at line[i:], or
// 0 if line[i:] does not start with one.
func spaceAfter(line string, i int) int {
	r, n := utf8.DecodeRuneInString(line[i:])
	if n == 0 || r == '\n' || !isSpace(r) {
		return 0
	}
	return i + n
}

// lineTerminators are the characters that end a line for inline spans and
// whole list lines.
const lineTerminators = "\n\r\u2028\u2029"

// hasLineBreak reports whether s contains a line terminator.
func hasLineBreak(s string) bool {
	return strings.ContainsAny(s, lineTerminators)
}

// lineBreakAt reports whether a line terminator starts at byte i of s.
func lineBreakAt(s string, i int) bool {
	switch s[i] {
	case '\n', '\r':
		return true
	}
	return strings.HasPrefix(s[i:], "\u2028") || strings.HasPrefix(s[i:], "\u2029")
}

// classify matches a single line against the numbered and bullet list
// patterns and returns the item content after the marker.
func classify(line string) (listState, string) {
	if n := numberedMarker(line); n > 0 && !hasLineBreak(line[n:]) {
		return inNumberedList, line[n:]
	}
	if n := bulletMarker(line); n > 0 && !hasLineBreak(line[n:]) {
		return inBulletList, line[n:]
	}
	return notInList, ""
}

// byteOffset converts a rune offset into a byte offset into s, clamping to
// [0, len(s)].
func byteOffset(s string, runeOff int) int {
	if runeOff <= 0 {
		return 0
	}
	for i := range s {
		if runeOff == 0 {
			return i
		}
		runeOff--
	}
	return len(s)
}

// runeOffset converts a byte offset into s into a rune offset.
func runeOffset(s string, byteOff int) int {
	return utf8.RuneCountInString(s[:byteOff])
}

// lineBounds returns the byte range [start, end) of the line containing the
// byte offset b.
func lineBounds(s string, b int) (start, end int) {
	start = strings.LastIndexByte(s[:b], '\n') + 1
	end = len(s)
	if i := strings.IndexByte(s[b:], '\n'); i >= 0 {
		end = b + i
	}
	return start, end
}
