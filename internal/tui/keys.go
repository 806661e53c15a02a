package tui

import (
	"fmt"

	"charm.land/bubbles/v2/key"
	"github.com/xonecas/starnote/internal/format"
)

type keyMap struct {
	Bold     key.Binding
	Italic   key.Binding
	Bullet   key.Binding
	Numbered key.Binding
	Preview  key.Binding
	Save     key.Binding
	Title    key.Binding
	Body     key.Binding
	Quit     key.Binding

	ScrollUp   key.Binding
	ScrollDown key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		// ctrl+i arrives as tab in most terminals.
		Bold:     key.NewBinding(key.WithKeys("ctrl+b"), key.WithHelp("^b", "bold")),
		Italic:   key.NewBinding(key.WithKeys("ctrl+t"), key.WithHelp("^t", "italic")),
		Bullet:   key.NewBinding(key.WithKeys("ctrl+l"), key.WithHelp("^l", "bullets")),
		Numbered: key.NewBinding(key.WithKeys("ctrl+n"), key.WithHelp("^n", "numbers")),
		Preview:  key.NewBinding(key.WithKeys("ctrl+p"), key.WithHelp("^p", "preview")),
		Save:     key.NewBinding(key.WithKeys("ctrl+s"), key.WithHelp("^s", "save")),
		Title:    key.NewBinding(key.WithKeys("shift+tab"), key.WithHelp("⇧tab", "title")),
		Body:     key.NewBinding(key.WithKeys("tab", "enter", "down")),
		Quit:     key.NewBinding(key.WithKeys("ctrl+c", "esc"), key.WithHelp("esc", "quit")),

		ScrollUp:   key.NewBinding(key.WithKeys("up", "k", "pgup")),
		ScrollDown: key.NewBinding(key.WithKeys("down", "j", "pgdown")),
	}
}

// formatKind maps a toolbar binding to its format.
func (k keyMap) formatKind(msg fmt.Stringer) (format.Kind, bool) {
	switch {
	case key.Matches(msg, k.Bold):
		return format.Bold, true
	case key.Matches(msg, k.Italic):
		return format.Italic, true
	case key.Matches(msg, k.Bullet):
		return format.BulletList, true
	case key.Matches(msg, k.Numbered):
		return format.NumberedList, true
	}
	return "", false
}

// ShortHelp implements help.KeyMap.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Bold, k.Italic, k.Bullet, k.Numbered, k.Preview, k.Save, k.Title, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}
