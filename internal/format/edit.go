package format

import (
	"html"
	"strings"
)

// Edit is the outcome of an editor action: the new text and the new cursor
// (a rune offset). Handled is false when the action does not apply and the
// caller should fall back to its default behaviour.
type Edit struct {
	Text    string `json:"text"`
	Cursor  int    `json:"cursor"`
	Handled bool   `json:"handled"`
}

// ContinueList decides what pressing Enter at cursor does to a list line.
// Only the text from the start of the line up to the cursor is considered.
//
//   - "N. text": a new item "N+1. " is inserted after a line break. The space
//     after the period is only added while N+1 is a single digit.
//   - "- text" or "* text": a new "- " item is inserted.
//   - an item with no text ends the list: its marker is removed and the
//     cursor moves to the start of the now empty line.
//
// Any other line is not handled and the caller inserts a plain newline.
func ContinueList(raw string, cursor int) Edit {
	b := byteOffset(raw, cursor)
	start, _ := lineBounds(raw, b)
	line := raw[start:b]

	var marker string
	switch kind, content := classify(line); kind {
	case inNumberedList:
		if strings.TrimFunc(content, isSpace) == "" {
			return exitList(raw, start, b)
		}
		digits := line[:strings.IndexByte(line, '.')]
		next := increment(digits)
		marker = "\n" + next + "."
		if len(next) == 1 {
			marker += " "
		}
	case inBulletList:
		if strings.TrimFunc(content, isSpace) == "" {
			return exitList(raw, start, b)
		}
		marker = "\n- "
	default:
		return Edit{Text: raw, Cursor: runeOffset(raw, b)}
	}
	return Edit{
		Text:    raw[:b] + marker + raw[b:],
		Cursor:  runeOffset(raw, b) + len(marker),
		Handled: true,
	}
}

// exitList deletes raw[start:end], the marker of an empty list item.
func exitList(raw string, start, end int) Edit {
	return Edit{
		Text:    raw[:start] + raw[end:],
		Cursor:  runeOffset(raw, start),
		Handled: true,
	}
}

// increment adds one to a string of ASCII digits of any length. Leading
// zeros are dropped.
func increment(digits string) string {
	digits = strings.TrimLeft(digits, "0")
	buf := []byte("0" + digits)
	for i := len(buf) - 1; i >= 0; i-- {
		if buf[i] < '9' {
			buf[i]++
			break
		}
		buf[i] = '0'
	}
	if buf[0] == '0' {
		buf = buf[1:]
	}
	return string(buf)
}

// ApplyFormat performs a toolbar action at the cursor.
//
// Inside an existing bold or italic span the cursor steps past its closing
// marker; otherwise an empty marker pair is inserted with the cursor between
// the markers. List kinds toggle the marker at the start of the cursor's
// line.
func ApplyFormat(raw string, cursor int, kind Kind) Edit {
	b := byteOffset(raw, cursor)
	cur := runeOffset(raw, b)
	switch kind {
	case Bold, Italic:
		m := kind.marker()
		if IsWithinFormatting(raw, cur, kind) {
			end := b + strings.Index(raw[b:], m) + len(m)
			return Edit{Text: raw, Cursor: runeOffset(raw, end), Handled: true}
		}
		return Edit{Text: raw[:b] + m + m + raw[b:], Cursor: cur + len(m), Handled: true}
	case NumberedList, BulletList:
		start, end := lineBounds(raw, b)
		line := raw[start:end]
		if n := lineMarker(line, kind); n > 0 {
			moved := min(n, b-start)
			return Edit{
				Text:    raw[:start] + line[n:] + raw[end:],
				Cursor:  cur - runeOffset(line, moved),
				Handled: true,
			}
		}
		m := "- "
		if kind == NumberedList {
			m = "1. "
		}
		return Edit{Text: raw[:start] + m + raw[start:], Cursor: cur + len(m), Handled: true}
	}
	return Edit{Text: raw, Cursor: cur}
}

func lineMarker(line string, kind Kind) int {
	if kind == NumberedList {
		return numberedMarker(line)
	}
	return bulletMarker(line)
}

// ImageTag returns the <img> tag the editor splices into note text for an
// uploaded image.
func ImageTag(url, alt string) string {
	return `<img src="` + html.EscapeString(url) + `" alt="` + html.EscapeString(alt) + `">`
}
