package tui

import (
	"charm.land/bubbles/v2/key"
	tea "charm.land/bubbletea/v2"
	"github.com/xonecas/starnote/internal/format"
)

// ---------------------------------------------------------------------------
// Update
// ---------------------------------------------------------------------------

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil

	case saveResultMsg:
		m.handleSaved(msg)
		return m, nil

	case tea.KeyPressMsg:
		return m.handleKeyPress(msg)

	case tea.MouseClickMsg:
		if m.preview {
			return m, nil
		}
		if msg.Y < bodyTop {
			m.focusOn(focusTitle)
			return m, nil
		}
		m.focusOn(focusBody)
		msg.Y -= bodyTop
		m.editor, _ = m.editor.Update(msg)
		return m, nil

	case tea.MouseWheelMsg:
		if m.preview {
			switch msg.Button {
			case tea.MouseWheelUp:
				m.previewScroll -= 3
			case tea.MouseWheelDown:
				m.previewScroll += 3
			}
			m.clampPreviewScroll()
			return m, nil
		}
		m.editor, _ = m.editor.Update(msg)
		return m, nil
	}

	return m.forward(msg)
}

// handleKeyPress runs global bindings first, then hands the key to the
// focused component.
func (m Model) handleKeyPress(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Quit) {
		if m.dirty && !m.quitArmed {
			m.quitArmed = true
			m.setStatus("unsaved changes, press again to quit", true)
			return m, nil
		}
		return m, tea.Quit
	}
	m.quitArmed = false

	switch {
	case key.Matches(msg, m.keys.Save):
		return m, m.save()
	case key.Matches(msg, m.keys.Preview):
		m.preview = !m.preview
		if m.preview {
			m.previewScroll = 0
			m.refreshPreview()
		}
		return m, nil
	}

	if m.preview {
		switch {
		case key.Matches(msg, m.keys.ScrollUp):
			m.previewScroll -= scrollStep(msg, m.bodyHeight())
		case key.Matches(msg, m.keys.ScrollDown):
			m.previewScroll += scrollStep(msg, m.bodyHeight())
		}
		m.clampPreviewScroll()
		return m, nil
	}

	if m.focus == focusTitle {
		if key.Matches(msg, m.keys.Body) {
			m.focusOn(focusBody)
			return m, nil
		}
		return m.forward(msg)
	}

	if key.Matches(msg, m.keys.Title) {
		m.focusOn(focusTitle)
		return m, nil
	}
	if kind, ok := m.keys.formatKind(msg); ok {
		m.applyFormat(kind)
		return m, nil
	}
	return m.forward(msg)
}

func scrollStep(msg tea.KeyPressMsg, page int) int {
	switch msg.Keystroke() {
	case "pgup", "pgdown":
		return page
	}
	return 1
}

// applyFormat runs a toolbar action at the cursor.
func (m *Model) applyFormat(kind format.Kind) {
	if m.editor.Apply(format.ApplyFormat(m.editor.Value(), m.editor.Cursor(), kind)) {
		m.dirty = true
	}
}

// forward passes msg to the focused component and tracks edits.
func (m Model) forward(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.focus {
	case focusTitle:
		before := m.title.Value()
		m.title, cmd = m.title.Update(msg)
		if m.title.Value() != before {
			m.dirty = true
		}
	case focusBody:
		before := m.editor.Value()
		m.editor, cmd = m.editor.Update(msg)
		if m.editor.Value() != before {
			m.dirty = true
		}
	}
	return m, cmd
}
