package editor

import (
	"strings"

	"charm.land/lipgloss/v2"
	"github.com/charmbracelet/x/ansi"
	"github.com/xonecas/starnote/internal/highlight"
)

// ---------------------------------------------------------------------------
// View
// ---------------------------------------------------------------------------

func (m Model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}
	if len(m.lines) == 1 && len(m.lines[0]) == 0 && m.Placeholder != "" {
		return m.placeholderView()
	}

	tw := m.textWidth()
	bg := m.bgForRender()

	// Highlight the whole note at once so spans crossing lines keep their
	// colour, then carry style state into each line.
	var hl []string
	if m.hasSyntax() {
		hl = highlight.SplitLines(highlight.Highlight(m.Value(), m.Language, m.SyntaxTheme, m.bgHex()))
	}

	bufRow, off := m.visualToBuffer(m.scroll)
	var b strings.Builder
	for vi := 0; vi < m.height; vi++ {
		if vi > 0 {
			b.WriteByte('\n')
		}
		if bufRow >= len(m.lines) {
			b.WriteString(bg.Render(strings.Repeat(" ", m.width)))
			continue
		}

		line := m.lines[bufRow]
		end := min(off+tw, len(line))
		var full string
		if bufRow < len(hl) {
			full = hl[bufRow]
		}

		rendered := m.renderSegment(line, full, off, end, bufRow == m.row)
		if rw := lipgloss.Width(rendered); rw < tw {
			rendered += bg.Render(strings.Repeat(" ", tw-rw))
		} else if rw > tw {
			rendered = ansi.Truncate(rendered, tw, "")
		}
		b.WriteString(rendered)

		off += tw
		if off >= wrapRows(len(line), tw)*tw {
			bufRow++
			off = 0
		}
	}
	return b.String()
}

// renderSegment renders runes [start, end) of line. full is the line's
// highlighted form, or "" when highlighting is off. The cursor is drawn
// when it falls inside the segment.
func (m Model) renderSegment(line []rune, full string, start, end int, cursorRow bool) string {
	plain := func(from, to int) string {
		if from >= to {
			return ""
		}
		if full != "" {
			return ansi.Cut(full, from, to)
		}
		return m.bgForRender().Render(string(line[from:to]))
	}

	tw := m.textWidth()
	if !m.focus || !cursorRow || m.col < start || m.col >= start+tw {
		return plain(start, end)
	}

	cursorChar := " "
	after := m.col
	if m.col < len(line) {
		cursorChar = string(line[m.col])
		after = m.col + 1
	}
	return plain(start, m.col) + m.CursorStyle.Render(cursorChar) + plain(after, end)
}

func (m Model) placeholderView() string {
	bg := m.bgForRender()
	tw := m.textWidth()

	ph := []rune(m.Placeholder)
	var first string
	if m.focus {
		first = m.CursorStyle.Render(string(ph[0])) + m.PlaceholderSty.Render(string(ph[1:]))
	} else {
		first = m.PlaceholderSty.Render(m.Placeholder)
	}
	first = ansi.Truncate(first, tw, "")

	var b strings.Builder
	b.WriteString(first)
	if w := lipgloss.Width(first); w < tw {
		b.WriteString(bg.Render(strings.Repeat(" ", tw-w)))
	}
	for vi := 1; vi < m.height; vi++ {
		b.WriteByte('\n')
		b.WriteString(bg.Render(strings.Repeat(" ", m.width)))
	}
	return b.String()
}
