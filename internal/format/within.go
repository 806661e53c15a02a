package format

import "strings"

// IsWithinFormatting reports whether the cursor, a rune offset into raw,
// sits inside formatting of the given kind. It drives the toolbar's active
// button states.
//
// For list kinds the whole line holding the cursor must start with the
// list marker. For bold and italic the answer comes from the nearest
// markers around the cursor rather than a full parse: a marker must occur
// somewhere before the cursor and another somewhere after it.
func IsWithinFormatting(raw string, cursor int, kind Kind) bool {
	if raw == "" {
		return false
	}
	b := byteOffset(raw, cursor)
	switch kind {
	case NumberedList:
		start, end := lineBounds(raw, b)
		return numberedMarker(raw[start:end]) > 0
	case BulletList:
		start, end := lineBounds(raw, b)
		return bulletMarker(raw[start:end]) > 0
	case Bold, Italic:
		return withinSpan(raw[:b], raw[b:], kind.marker())
	}
	return false
}

func withinSpan(before, after, marker string) bool {
	// Opening and closing markers are the same string, so the last marker
	// before the cursor is never closed before it, and the first marker
	// after the cursor is always the nearest closing one.
	return strings.LastIndex(before, marker) >= 0 && strings.Contains(after, marker)
}
