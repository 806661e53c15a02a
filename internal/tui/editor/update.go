package editor

import tea "charm.land/bubbletea/v2"

// ---------------------------------------------------------------------------
// Update
// ---------------------------------------------------------------------------

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyPressMsg:
		if !m.focus {
			break
		}
		switch msg.Keystroke() {
		case "up":
			m.row--
		case "down":
			m.row++
		case "left":
			if m.col > 0 {
				m.col--
			} else if m.row > 0 {
				m.row--
				m.col = len(m.currentLine())
			}
		case "right":
			if m.col < len(m.currentLine()) {
				m.col++
			} else if m.row < len(m.lines)-1 {
				m.row++
				m.col = 0
			}
		case "home", "ctrl+a":
			m.col = 0
		case "end", "ctrl+e":
			m.col = len(m.currentLine())
		case "pgup":
			m.row -= m.height
		case "pgdown":
			m.row += m.height
		case "ctrl+home":
			m.row, m.col = 0, 0
		case "ctrl+end":
			m.row = len(m.lines) - 1
			m.col = len(m.currentLine())

		case "backspace", "ctrl+h":
			m.deleteBack()
		case "delete", "ctrl+d":
			m.deleteForward()
		case "enter":
			m.enter()
		case "tab":
			m.InsertText(indent)

		default:
			if m.ReadOnly || msg.Text == "" {
				return m, nil
			}
			m.InsertText(msg.Text)
		}
		m.clampCursor()
		m.clampScroll()

	case tea.PasteMsg:
		if m.focus {
			m.InsertText(msg.Content)
		}

	case tea.MouseClickMsg:
		if m.focus && msg.Button == tea.MouseLeft {
			m.row, m.col = m.screenToPos(msg.X, msg.Y)
			m.clampCursor()
		}

	case tea.MouseWheelMsg:
		switch msg.Button {
		case tea.MouseWheelUp:
			m.scroll -= 3
		case tea.MouseWheelDown:
			m.scroll += 3
		}
		m.clampScrollBounds()
	}

	return m, nil
}
