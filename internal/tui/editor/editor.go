// Package editor provides the note text editor component for bubbletea.
// Lines soft-wrap to the viewport width and are coloured with the note
// markup lexer. Enter continues or exits lists like the web editor does.
package editor

import (
	"image/color"
	"strings"

	"charm.land/lipgloss/v2"
	"github.com/xonecas/starnote/internal/format"
	"github.com/xonecas/starnote/internal/highlight"
)

// indent is inserted by the tab key.
const indent = "  "

// Model is a multi-line note editor.
type Model struct {
	// Public configuration, set before first Update/View.
	ReadOnly    bool
	Language    string // Chroma lexer name (empty = no highlighting)
	SyntaxTheme string // Chroma style name (empty = no highlighting)
	Placeholder string // Shown when empty

	// Styles, set by parent.
	CursorStyle    lipgloss.Style
	PlaceholderSty lipgloss.Style
	BgColor        color.Color // Fallback bg when no syntax theme

	lines  [][]rune // one entry per line
	row    int      // cursor row into lines
	col    int      // cursor column into the row's runes
	scroll int      // first visible visual row

	width  int
	height int
	focus  bool
}

// New creates an empty editor.
func New() Model {
	return Model{
		lines:       [][]rune{{}},
		CursorStyle: lipgloss.NewStyle().Reverse(true),
	}
}

func (m *Model) SetWidth(w int)  { m.width = w; m.clampScroll() }
func (m *Model) SetHeight(h int) { m.height = h; m.clampScroll() }

func (m *Model) Focus()        { m.focus = true }
func (m *Model) Blur()         { m.focus = false }
func (m Model) Focused() bool { return m.focus }

// SetValue replaces the buffer and moves the cursor to the start.
func (m *Model) SetValue(s string) {
	m.setText(s)
	m.row, m.col, m.scroll = 0, 0, 0
}

func (m *Model) setText(s string) {
	raw := strings.Split(s, "\n")
	m.lines = make([][]rune, len(raw))
	for i, l := range raw {
		m.lines[i] = []rune(l)
	}
}

// Value returns the buffer as a single string.
func (m Model) Value() string {
	var sb strings.Builder
	for i, line := range m.lines {
		if i > 0 {
			sb.WriteByte('\n')
		}
		sb.WriteString(string(line))
	}
	return sb.String()
}

// Reset empties the buffer.
func (m *Model) Reset() { m.SetValue("") }

// Cursor returns the cursor position as a rune offset into Value.
func (m Model) Cursor() int {
	off := 0
	for i := 0; i < m.row; i++ {
		off += len(m.lines[i]) + 1
	}
	return off + m.col
}

// SetCursor moves the cursor to a rune offset into Value, clamped to the
// buffer.
func (m *Model) SetCursor(off int) {
	if off < 0 {
		off = 0
	}
	for i, line := range m.lines {
		if off <= len(line) || i == len(m.lines)-1 {
			m.row = i
			m.col = min(off, len(line))
			m.clampScroll()
			return
		}
		off -= len(line) + 1
	}
}

// Apply replaces the buffer and cursor with the result of a formatting
// operation. It reports whether anything changed.
func (m *Model) Apply(e format.Edit) bool {
	if !e.Handled || m.ReadOnly {
		return false
	}
	m.setText(e.Text)
	m.SetCursor(e.Cursor)
	return true
}

// ---------------------------------------------------------------------------
// Geometry
// ---------------------------------------------------------------------------

func (m *Model) currentLine() []rune { return m.lines[m.row] }

func (m *Model) clampCursor() {
	m.row = max(0, min(m.row, len(m.lines)-1))
	m.col = max(0, min(m.col, len(m.currentLine())))
}

// textWidth is the number of cells a visual row holds.
func (m Model) textWidth() int {
	return max(1, m.width)
}

// wrapRows is how many visual rows a line of n runes takes. A line that
// exactly fills its rows gets one more so the cursor can sit at its end.
func wrapRows(n, tw int) int {
	return n/tw + 1
}

// visualRow returns the visual row holding buffer position (row, col).
func (m Model) visualRow(row, col int) int {
	tw := m.textWidth()
	v := 0
	for i := 0; i < row && i < len(m.lines); i++ {
		v += wrapRows(len(m.lines[i]), tw)
	}
	return v + col/tw
}

func (m Model) totalRows() int {
	tw := m.textWidth()
	n := 0
	for _, l := range m.lines {
		n += wrapRows(len(l), tw)
	}
	return n
}

// visualToBuffer maps a visual row to a buffer row and the rune offset its
// segment starts at.
func (m Model) visualToBuffer(v int) (row, off int) {
	tw := m.textWidth()
	for i, l := range m.lines {
		n := wrapRows(len(l), tw)
		if v < n {
			return i, v * tw
		}
		v -= n
	}
	last := len(m.lines) - 1
	return last, (wrapRows(len(m.lines[last]), tw) - 1) * tw
}

func (m *Model) clampScroll() {
	if m.height <= 0 {
		return
	}
	cur := m.visualRow(m.row, m.col)
	if cur < m.scroll {
		m.scroll = cur
	}
	if cur >= m.scroll+m.height {
		m.scroll = cur - m.height + 1
	}
	m.clampScrollBounds()
}

func (m *Model) clampScrollBounds() {
	maxScroll := max(0, m.totalRows()-m.height)
	m.scroll = max(0, min(m.scroll, maxScroll))
}

// screenToPos converts component-relative x,y to a buffer row and column.
func (m Model) screenToPos(x, y int) (row, col int) {
	row, off := m.visualToBuffer(m.scroll + max(0, y))
	col = min(off+max(0, x), len(m.lines[row]))
	return row, col
}

// ---------------------------------------------------------------------------
// Styling
// ---------------------------------------------------------------------------

func (m Model) hasSyntax() bool {
	return m.Language != "" && m.SyntaxTheme != ""
}

func (m Model) bgHex() string {
	if !m.hasSyntax() {
		return ""
	}
	return highlight.ThemeBg(m.SyntaxTheme)
}

// bgForRender returns the background style, taken from the syntax theme
// when it has one.
func (m Model) bgForRender() lipgloss.Style {
	if hex := m.bgHex(); hex != "" {
		return lipgloss.NewStyle().Background(lipgloss.Color(hex))
	}
	if m.BgColor == nil {
		return lipgloss.NewStyle()
	}
	return lipgloss.NewStyle().Background(m.BgColor)
}
