package tui

import (
	"strconv"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"github.com/xonecas/starnote/internal/format"
)

// ---------------------------------------------------------------------------
// View
// ---------------------------------------------------------------------------

func (m Model) View() tea.View {
	v := tea.NewView(m.renderContent())
	v.AltScreen = true
	v.MouseMode = tea.MouseModeCellMotion
	return v
}

// toolbarLabels are the toolbar button captions.
var toolbarLabels = map[format.Kind]string{
	format.Bold:         " B ",
	format.Italic:       " I ",
	format.BulletList:   " • ",
	format.NumberedList: " 1. ",
}

// renderContent produces the string content for the view.
func (m Model) renderContent() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}
	bg := m.styles.BgFill
	var b strings.Builder

	b.WriteString(padRow(m.styles.Title.Render("✦ ")+m.title.View(), m.width, bg))
	b.WriteByte('\n')
	b.WriteString(m.styles.Border.Render(strings.Repeat("─", m.width)))
	b.WriteByte('\n')

	if m.preview {
		h := m.bodyHeight()
		for i := 0; i < h; i++ {
			var line string
			if idx := m.previewScroll + i; idx < len(m.previewLines) {
				line = m.previewLines[idx]
			}
			b.WriteString(padRow(line, m.width, bg))
			b.WriteByte('\n')
		}
	} else {
		b.WriteString(m.editor.View())
		b.WriteByte('\n')
	}

	b.WriteString(m.styles.Border.Render(strings.Repeat("─", m.width)))
	b.WriteByte('\n')
	m.renderStatusBar(&b)
	b.WriteByte('\n')
	b.WriteString(padRow(m.help.ShortHelpView(m.keys.ShortHelp()), m.width, bg))
	return b.String()
}

// renderStatusBar writes the toolbar on the left and note state on the right.
func (m Model) renderStatusBar(b *strings.Builder) {
	gap := m.styles.BgFill.Render(" ")

	var left []string
	value, cursor := m.editor.Value(), m.editor.Cursor()
	for _, kind := range format.Kinds {
		sty := m.styles.Inactive
		if !m.preview && m.focus == focusBody && format.IsWithinFormatting(value, cursor, kind) {
			sty = m.styles.Active
		}
		left = append(left, sty.Render(toolbarLabels[kind]))
	}
	if m.preview {
		left = append(left, m.styles.Muted.Render(" preview"))
	}

	var right []string
	if m.status != "" {
		sty := m.styles.Muted
		if m.statusErr {
			sty = m.styles.Error
		}
		right = append(right, sty.Render(m.status))
	}
	state := "saved"
	switch {
	case m.dirty:
		state = "modified"
	case m.note.ID == "":
		state = "new"
	}
	right = append(right, m.styles.Dim.Render(state))
	if t := strings.TrimSpace(m.title.Value()); t != "" {
		right = append(right, m.styles.Text.Render(format.Preview(t, m.titleLength)))
	}
	words := len(strings.Fields(format.StripFormatting(value)))
	right = append(right, m.styles.Dim.Render(strconv.Itoa(words)+" words"))

	l := strings.Join(left, gap)
	r := strings.Join(right, m.styles.Dim.Render(" · "))
	space := max(1, m.width-lipgloss.Width(l)-lipgloss.Width(r)-1)
	b.WriteString(padRow(l+m.styles.BgFill.Render(strings.Repeat(" ", space))+r, m.width, m.styles.BgFill))
}
