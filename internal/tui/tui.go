// Package tui is the terminal note editor: a title, the note body with
// live list continuation, a formatting toolbar and a rendered preview.
package tui

import (
	"context"
	"strings"
	"time"

	"charm.land/bubbles/v2/help"
	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
	"github.com/rs/zerolog/log"
	"github.com/xonecas/starnote/internal/highlight"
	"github.com/xonecas/starnote/internal/store"
	"github.com/xonecas/starnote/internal/tui/editor"
)

// NoteSaver persists the edited note. *store.Store implements it.
type NoteSaver interface {
	Create(ctx context.Context, n store.Note) (store.Note, error)
	Update(ctx context.Context, n store.Note) (store.Note, error)
}

// Options configures a Model.
type Options struct {
	Notes NoteSaver
	// Note is the note to edit. An empty ID creates a new note on save.
	Note        store.Note
	SyntaxTheme string
	// TitleLength caps the title shown in the status bar.
	TitleLength int
}

type focusArea int

const (
	focusTitle focusArea = iota
	focusBody
)

// Rows taken by the title, two borders, the toolbar and the help line.
const chromeRows = 5

// bodyTop is the screen row the note body starts on.
const bodyTop = 2

const saveTimeout = 5 * time.Second

// Model is the application model.
type Model struct {
	width  int
	height int
	styles styles
	keys   keyMap
	help   help.Model

	notes       NoteSaver
	note        store.Note
	titleLength int

	title  textinput.Model
	editor editor.Model
	focus  focusArea

	preview       bool
	previewLines  []string
	previewScroll int

	dirty     bool
	quitArmed bool
	status    string
	statusErr bool
}

// New creates the editor for opts.Note.
func New(opts Options) Model {
	st := newStyles(opts.SyntaxTheme)

	title := textinput.New()
	title.Prompt = ""
	title.Placeholder = "Note title"
	title.SetValue(opts.Note.Title)

	ed := editor.New()
	ed.Language = highlight.Note
	ed.SyntaxTheme = opts.SyntaxTheme
	ed.Placeholder = "Start writing. **bold**, *italic*, - bullets, 1. numbers"
	ed.PlaceholderSty = st.Dim
	ed.SetValue(opts.Note.Content)

	h := help.New()
	h.Styles.ShortKey = st.Muted
	h.Styles.ShortDesc = st.Dim
	h.Styles.ShortSeparator = st.Dim

	m := Model{
		styles:      st,
		keys:        defaultKeyMap(),
		help:        h,
		notes:       opts.Notes,
		note:        opts.Note,
		titleLength: opts.TitleLength,
		title:       title,
		editor:      ed,
	}
	if opts.Note.Title == "" {
		m.focusOn(focusTitle)
	} else {
		m.focusOn(focusBody)
	}
	return m
}

// Init initializes the TUI.
func (m Model) Init() tea.Cmd { return nil }

// Note returns the note as last saved.
func (m Model) Note() store.Note { return m.note }

// Dirty reports whether there are unsaved changes.
func (m Model) Dirty() bool { return m.dirty }

func (m *Model) focusOn(f focusArea) {
	m.focus = f
	if f == focusTitle {
		m.title.Focus()
		m.editor.Blur()
		return
	}
	m.title.Blur()
	m.editor.Focus()
}

func (m *Model) bodyHeight() int {
	return max(1, m.height-chromeRows)
}

func (m *Model) resize(w, h int) {
	m.width, m.height = w, h
	m.title.SetWidth(max(1, w-2))
	m.editor.SetWidth(w)
	m.editor.SetHeight(m.bodyHeight())
	if m.preview {
		m.refreshPreview()
	}
}

func (m *Model) refreshPreview() {
	m.previewLines = renderPreview(m.editor.Value(), m.width, m.styles)
	m.clampPreviewScroll()
}

func (m *Model) clampPreviewScroll() {
	maxScroll := max(0, len(m.previewLines)-m.bodyHeight())
	m.previewScroll = max(0, min(m.previewScroll, maxScroll))
}

func (m *Model) setStatus(msg string, isErr bool) {
	m.status, m.statusErr = msg, isErr
}

// saveResultMsg reports the outcome of a save.
type saveResultMsg struct {
	note store.Note
	err  error
}

// save persists the current title and body. New notes are created, the
// rest updated in place.
func (m *Model) save() tea.Cmd {
	if m.notes == nil {
		m.setStatus("nowhere to save", true)
		return nil
	}
	n := m.note
	n.Title = strings.TrimSpace(m.title.Value())
	n.Content = m.editor.Value()
	notes := m.notes
	m.setStatus("saving…", false)

	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), saveTimeout)
		defer cancel()

		var (
			saved store.Note
			err   error
		)
		if n.ID == "" {
			saved, err = notes.Create(ctx, n)
		} else {
			saved, err = notes.Update(ctx, n)
		}
		return saveResultMsg{note: saved, err: err}
	}
}

func (m *Model) handleSaved(msg saveResultMsg) {
	if msg.err != nil {
		log.Warn().Err(msg.err).Str("note", m.note.ID).Msg("save failed")
		m.setStatus("save failed: "+msg.err.Error(), true)
		return
	}
	log.Info().Str("note", msg.note.ID).Msg("note saved")
	m.note = msg.note
	m.dirty = strings.TrimSpace(m.title.Value()) != msg.note.Title || m.editor.Value() != msg.note.Content
	m.setStatus("saved", false)
}
