package format

import (
	"strings"

	"github.com/rivo/uniseg"
)

// StripFormatting removes bold, italic and list markers from raw, keeping the
// text they wrap. Newlines are preserved. Passes repeat until nothing
// changes, so stripping twice gives the same result as stripping once.
func StripFormatting(raw string) string {
	for {
		next := stripOnce(raw)
		if next == raw {
			return raw
		}
		raw = next
	}
}

func stripOnce(s string) string {
	s = replacePairs(s, "", "")
	s = dropStarPairs(s)
	return dropLineMarkers(s)
}

// dropStarPairs removes both asterisks of every "*X*" on a single line. Unlike
// rendering, neighbouring asterisks are not considered and X may be empty.
func dropStarPairs(s string) string {
	if !strings.Contains(s, "*") {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); {
		if s[i] == '*' {
			if j := closingPair(s, i+1); j >= 0 {
				b.WriteString(s[i+1 : j])
				i = j + 1
				continue
			}
		}
		b.WriteByte(s[i])
		i++
	}
	return b.String()
}

// closingPair returns the index of the next asterisk at or after from on the
// same line, or -1.
func closingPair(s string, from int) int {
	for k := from; k < len(s); k++ {
		if lineBreakAt(s, k) {
			return -1
		}
		if s[k] == '*' {
			return k
		}
	}
	return -1
}

// dropLineMarkers removes one leading numbered marker and then one leading
// bullet marker from every line.
func dropLineMarkers(s string) string {
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		line = line[numberedMarker(line):]
		lines[i] = line[bulletMarker(line):]
	}
	return strings.Join(lines, "\n")
}

// Preview returns the stripped text of raw cut to max user-perceived
// characters, with "..." appended when anything was cut. A max of zero or
// less disables truncation.
func Preview(raw string, max int) string {
	plain := StripFormatting(raw)
	if max <= 0 || uniseg.GraphemeClusterCount(plain) <= max {
		return plain
	}
	var b strings.Builder
	g := uniseg.NewGraphemes(plain)
	for n := 0; n < max && g.Next(); n++ {
		b.WriteString(g.Str())
	}
	b.WriteString("...")
	return b.String()
}
