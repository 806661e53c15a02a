// Package format implements StarNote's markdown-like note syntax: rendering
// to HTML, stripping markers for previews, cursor-context queries for the
// toolbar, and the list-continuation rule the editor applies on Enter.
//
// Supported syntax:
//
//	**bold**
//	*italic*
//	1. numbered item
//	- bullet item   (or "* bullet item")
//
// Everything else, embedded HTML included, passes through untouched. All
// functions are pure and safe for concurrent use.
package format

import "strings"

// FormatText renders raw note text as an HTML fragment.
//
// Passes run in a fixed order: bold, italic, list runs, then line breaks.
// Unterminated markers are left as literal text.
func FormatText(raw string) string {
	if raw == "" {
		return ""
	}
	s := replaceBold(raw)
	s = replaceItalic(s)
	s = wrapLists(s)
	return breakLines(s)
}

// replaceBold turns each "**X**" into "<strong>X</strong>", taking the
// shortest X. X may span lines.
func replaceBold(s string) string {
	return replacePairs(s, "<strong>", "</strong>")
}

// replacePairs rewrites every "**X**" with open+X+close.
func replacePairs(s, open, close string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); {
		if strings.HasPrefix(s[i:], "**") {
			if j := strings.Index(s[i+2:], "**"); j >= 0 {
				b.WriteString(open)
				b.WriteString(s[i+2 : i+2+j])
				b.WriteString(close)
				i += j + 4
				continue
			}
			// No closing marker anywhere after i.
			b.WriteString(s[i:])
			break
		}
		b.WriteByte(s[i])
		i++
	}
	return b.String()
}

// replaceItalic turns each "*X*" whose asterisks have no asterisk neighbour
// into "<em>X</em>". X stays within one line.
func replaceItalic(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); {
		if loneStar(s, i) {
			if j := closingStar(s, i+1); j >= 0 {
				b.WriteString("<em>")
				b.WriteString(s[i+1 : j])
				b.WriteString("</em>")
				i = j + 1
				continue
			}
		}
		b.WriteByte(s[i])
		i++
	}
	return b.String()
}

// loneStar reports whether s[i] is an asterisk with no asterisk on either
// side.
func loneStar(s string, i int) bool {
	if s[i] != '*' {
		return false
	}
	if i > 0 && s[i-1] == '*' {
		return false
	}
	return i+1 >= len(s) || s[i+1] != '*'
}

// closingStar finds the first lone asterisk at or after from on the same
// line, or -1.
func closingStar(s string, from int) int {
	for k := from; k < len(s); k++ {
		if lineBreakAt(s, k) {
			return -1
		}
		if loneStar(s, k) {
			return k
		}
	}
	return -1
}

// wrapLists wraps each run of consecutive numbered lines in <ol> and each
// run of bullet lines in <ul>. The typed numbers are dropped; a run of one
// kind is closed before a run of the other kind opens.
func wrapLists(s string) string {
	lines := strings.Split(s, "\n")
	out := make([]string, 0, len(lines))
	state := notInList
	for _, line := range lines {
		kind, content := classify(line)
		if kind != notInList && kind == state {
			out = append(out, "  <li>"+content+"</li>")
			continue
		}
		prefix := ""
		if state != notInList {
			prefix = state.closeTag() + "\n"
		}
		if kind == notInList {
			out = append(out, prefix+line)
		} else {
			out = append(out, prefix+kind.openTag()+"\n  <li>"+content+"</li>")
		}
		state = kind
	}
	res := strings.Join(out, "\n")
	if state != notInList {
		res += "\n" + state.closeTag()
	}
	return res
}

// breakLines replaces each newline with <br> unless the next line opens or
// closes a list or holds a list item.
func breakLines(s string) string {
	if !strings.Contains(s, "\n") {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if s[i] != '\n' {
			b.WriteByte(s[i])
			continue
		}
		if listBoundary(s[i+1:]) {
			b.WriteByte('\n')
		} else {
			b.WriteString("<br>")
		}
	}
	return b.String()
}

func listBoundary(rest string) bool {
	for _, tag := range []string{"<ol>", "</ol>", "<ul>", "</ul>"} {
		if strings.HasPrefix(rest, tag) {
			return true
		}
	}
	return strings.HasPrefix(strings.TrimLeftFunc(rest, isSpace), "<li>")
}
