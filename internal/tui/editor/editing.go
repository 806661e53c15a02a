package editor

import "github.com/xonecas/starnote/internal/format"

// ---------------------------------------------------------------------------
// Editing operations
// ---------------------------------------------------------------------------

// InsertText inserts a multi-line string at the cursor. Carriage returns
// are dropped and tabs become the indent string.
func (m *Model) InsertText(text string) {
	if m.ReadOnly {
		return
	}
	for _, r := range text {
		switch r {
		case '\n':
			m.insertNewline()
		case '\r':
		case '\t':
			for _, ir := range indent {
				m.insertRune(ir)
			}
		default:
			m.insertRune(r)
		}
	}
	m.clampScroll()
}

func (m *Model) insertRune(r rune) {
	line := m.currentLine()
	newLine := make([]rune, 0, len(line)+1)
	newLine = append(newLine, line[:m.col]...)
	newLine = append(newLine, r)
	newLine = append(newLine, line[m.col:]...)
	m.lines[m.row] = newLine
	m.col++
}

func (m *Model) insertNewline() {
	line := m.currentLine()
	after := make([]rune, len(line[m.col:]))
	copy(after, line[m.col:])
	m.lines[m.row] = line[:m.col]

	newLines := make([][]rune, 0, len(m.lines)+1)
	newLines = append(newLines, m.lines[:m.row+1]...)
	newLines = append(newLines, after)
	newLines = append(newLines, m.lines[m.row+1:]...)
	m.lines = newLines
	m.row++
	m.col = 0
}

// enter continues or ends a list on the cursor line, falling back to a
// plain line break.
func (m *Model) enter() {
	if m.ReadOnly {
		return
	}
	if m.Apply(format.ContinueList(m.Value(), m.Cursor())) {
		return
	}
	m.insertNewline()
}

func (m *Model) deleteBack() {
	if m.ReadOnly {
		return
	}
	if m.col > 0 {
		line := m.currentLine()
		m.lines[m.row] = append(line[:m.col-1], line[m.col:]...)
		m.col--
	} else if m.row > 0 {
		prev := m.lines[m.row-1]
		m.col = len(prev)
		m.lines[m.row-1] = append(prev, m.currentLine()...)
		m.lines = append(m.lines[:m.row], m.lines[m.row+1:]...)
		m.row--
	}
}

func (m *Model) deleteForward() {
	if m.ReadOnly {
		return
	}
	line := m.currentLine()
	if m.col < len(line) {
		m.lines[m.row] = append(line[:m.col], line[m.col+1:]...)
	} else if m.row < len(m.lines)-1 {
		m.lines[m.row] = append(line, m.lines[m.row+1]...)
		m.lines = append(m.lines[:m.row+1], m.lines[m.row+2:]...)
	}
}
