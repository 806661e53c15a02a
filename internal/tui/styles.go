package tui

import (
	"charm.land/lipgloss/v2"
	"github.com/xonecas/starnote/internal/highlight"
)

// styles are the UI chrome styles, derived from the syntax theme so the
// frame matches the highlighted note.
type styles struct {
	BgFill     lipgloss.Style
	Text       lipgloss.Style
	Title      lipgloss.Style
	Border     lipgloss.Style
	Dim        lipgloss.Style
	Muted      lipgloss.Style
	Error      lipgloss.Style
	Active     lipgloss.Style // toolbar button whose format surrounds the cursor
	Inactive   lipgloss.Style
	ListMarker lipgloss.Style
	Image      lipgloss.Style
}

func newStyles(theme string) styles {
	p := highlight.ThemePalette(theme)
	bg := lipgloss.Color(p.Bg)
	base := lipgloss.NewStyle().Background(bg)

	return styles{
		BgFill:     base,
		Text:       base.Foreground(lipgloss.Color(p.Fg)),
		Title:      base.Foreground(lipgloss.Color(p.Accent)).Bold(true),
		Border:     base.Foreground(lipgloss.Color(p.Border)),
		Dim:        base.Foreground(lipgloss.Color(p.Dim)),
		Muted:      base.Foreground(lipgloss.Color(p.Muted)),
		Error:      base.Foreground(lipgloss.Color(p.Error)),
		Active:     base.Foreground(lipgloss.Color(p.Bg)).Background(lipgloss.Color(p.Accent)).Bold(true),
		Inactive:   base.Foreground(lipgloss.Color(p.Muted)),
		ListMarker: base.Foreground(lipgloss.Color(p.Accent)),
		Image:      base.Foreground(lipgloss.Color(p.Muted)).Italic(true),
	}
}
