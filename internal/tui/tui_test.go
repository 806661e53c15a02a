package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"github.com/charmbracelet/x/ansi"
	"github.com/google/go-cmp/cmp"
	"github.com/xonecas/starnote/internal/format"
	"github.com/xonecas/starnote/internal/store"
)

type fakeSaver struct {
	created, updated []store.Note
	err              error
}

func (f *fakeSaver) Create(_ context.Context, n store.Note) (store.Note, error) {
	if f.err != nil {
		return store.Note{}, f.err
	}
	n.ID = fmt.Sprintf("n%d", len(f.created)+1)
	f.created = append(f.created, n)
	return n, nil
}

func (f *fakeSaver) Update(_ context.Context, n store.Note) (store.Note, error) {
	if f.err != nil {
		return store.Note{}, f.err
	}
	f.updated = append(f.updated, n)
	return n, nil
}

func plainStyles() styles {
	s := lipgloss.NewStyle()
	return styles{BgFill: s, Text: s, Title: s, Border: s, Dim: s, Muted: s, Error: s, Active: s, Inactive: s, ListMarker: s, Image: s}
}

func stripAll(lines []string) []string {
	out := make([]string, len(lines))
	for i, l := range lines {
		out[i] = ansi.Strip(l)
	}
	return out
}

func TestRenderPreview(t *testing.T) {
	note := "**Books** to read\n" +
		"1. *Atomic* Habits\n" +
		"2. Deep Work\n" +
		"\n" +
		"Ideas:\n" +
		"- one\n" +
		"* two\n" +
		format.ImageTag("https://example.com/a.png", "cover")

	got := renderPreview(note, 40, plainStyles())
	want := []string{
		"Books to read",
		"  1. Atomic Habits",
		"  2. Deep Work",
		"",
		"",
		"Ideas:",
		"  • one",
		"  • two",
		"",
		"[image: cover]",
	}
	if diff := cmp.Diff(want, stripAll(got)); diff != "" {
		t.Errorf("preview (-want +got):\n%s", diff)
	}
	if !strings.Contains(got[0], "\x1b[1m") {
		t.Errorf("bold not styled: %q", got[0])
	}
	if !strings.Contains(got[1], "\x1b[3m") {
		t.Errorf("italic not styled: %q", got[1])
	}
}

func TestRenderPreviewWraps(t *testing.T) {
	got := stripAll(renderPreview("one two three four five six", 10, plainStyles()))
	if len(got) < 3 {
		t.Fatalf("expected wrapped lines, got %q", got)
	}
	for _, l := range got {
		if ansi.StringWidth(l) > 10 {
			t.Errorf("line %q wider than 10", l)
		}
	}
}

var (
	ctrl = func(r rune) tea.KeyPressMsg { return tea.KeyPressMsg{Code: r, Mod: tea.ModCtrl} }
	char = func(r rune) tea.KeyPressMsg { return tea.KeyPressMsg{Code: r, Text: string(r)} }
	esc  = tea.KeyPressMsg{Code: tea.KeyEscape}
	ret  = tea.KeyPressMsg{Code: tea.KeyEnter}
)

func newTestModel(t *testing.T, saver NoteSaver, note store.Note) Model {
	t.Helper()
	m := New(Options{Notes: saver, Note: note, SyntaxTheme: "github-dark", TitleLength: 8})
	updated, _ := m.Update(tea.WindowSizeMsg{Width: 60, Height: 12})
	return updated.(Model)
}

func send(t *testing.T, m Model, msgs ...tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	var cmd tea.Cmd
	for _, msg := range msgs {
		var updated tea.Model
		updated, cmd = m.Update(msg)
		m = updated.(Model)
	}
	return m, cmd
}

func TestToolbarFormatting(t *testing.T) {
	m := newTestModel(t, &fakeSaver{}, store.Note{UserID: "u1", Title: "Groceries"})

	m, _ = send(t, m, ctrl('b'), char('h'), char('i'))
	if got := m.editor.Value(); got != "**hi**" {
		t.Fatalf("value = %q", got)
	}
	if !m.Dirty() {
		t.Error("expected dirty after formatting")
	}
	if !strings.Contains(m.renderContent(), "modified") {
		t.Error("status bar should show modified")
	}

	m, _ = send(t, m, ctrl('l'))
	if got := m.editor.Value(); got != "- **hi**" {
		t.Errorf("bullet toggle: %q", got)
	}
}

func TestEnterContinuesList(t *testing.T) {
	m := newTestModel(t, &fakeSaver{}, store.Note{UserID: "u1", Title: "Todo", Content: "1. milk"})
	m.editor.SetCursor(7)

	m, _ = send(t, m, ret, char('x'))
	if got := m.editor.Value(); got != "1. milk\n2. x" {
		t.Errorf("value = %q", got)
	}
}

func TestSaveCreatesThenUpdates(t *testing.T) {
	saver := &fakeSaver{}
	m := newTestModel(t, saver, store.Note{UserID: "u1", Title: "Ideas"})
	m, _ = send(t, m, char('a'))

	m, cmd := send(t, m, ctrl('s'))
	if cmd == nil {
		t.Fatal("expected save command")
	}
	m, _ = send(t, m, cmd())
	if len(saver.created) != 1 || m.Note().ID != "n1" {
		t.Fatalf("create not recorded: %+v", saver.created)
	}
	if m.Dirty() {
		t.Error("dirty after save")
	}

	m, _ = send(t, m, char('b'))
	m, cmd = send(t, m, ctrl('s'))
	m, _ = send(t, m, cmd())
	if len(saver.updated) != 1 || saver.updated[0].Content != "ab" {
		t.Errorf("update not recorded: %+v", saver.updated)
	}
}

func TestSaveFailureKeepsDirty(t *testing.T) {
	saver := &fakeSaver{err: errors.New("disk full")}
	m := newTestModel(t, saver, store.Note{UserID: "u1", Title: "x"})
	m, _ = send(t, m, char('a'))
	m, cmd := send(t, m, ctrl('s'))
	m, _ = send(t, m, cmd())

	if !m.Dirty() || !m.statusErr {
		t.Error("expected failed save to leave note dirty with an error status")
	}
	if !strings.Contains(ansi.Strip(m.renderContent()), "disk full") {
		t.Error("status bar should show the error")
	}
}

func TestQuitConfirmsUnsavedChanges(t *testing.T) {
	m := newTestModel(t, &fakeSaver{}, store.Note{UserID: "u1", Title: "x"})
	m, _ = send(t, m, char('a'))

	m, cmd := send(t, m, esc)
	if cmd != nil {
		t.Fatal("first esc with unsaved changes should not quit")
	}
	_, cmd = send(t, m, esc)
	if cmd == nil {
		t.Fatal("second esc should quit")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("expected tea.QuitMsg")
	}
}

func TestPreviewToggle(t *testing.T) {
	m := newTestModel(t, &fakeSaver{}, store.Note{UserID: "u1", Title: "x", Content: "- **one**\n- two"})

	m, _ = send(t, m, ctrl('p'))
	if !m.preview {
		t.Fatal("preview not enabled")
	}
	out := ansi.Strip(m.renderContent())
	if !strings.Contains(out, "• one") || strings.Contains(out, "**") {
		t.Errorf("preview not rendered:\n%s", out)
	}

	// Typing is ignored while previewing.
	m, _ = send(t, m, char('z'))
	if strings.Contains(m.editor.Value(), "z") {
		t.Error("preview should not edit")
	}

	m, _ = send(t, m, ctrl('p'))
	if m.preview {
		t.Error("preview not disabled")
	}
}

func TestLayoutFillsScreen(t *testing.T) {
	for _, size := range [][2]int{{60, 12}, {80, 24}} {
		t.Run(fmt.Sprintf("%dx%d", size[0], size[1]), func(t *testing.T) {
			m := New(Options{Notes: &fakeSaver{}, Note: store.Note{UserID: "u", Title: "Plan", Content: "1. **a**\n2. b"}, SyntaxTheme: "github-dark"})
			updated, _ := m.Update(tea.WindowSizeMsg{Width: size[0], Height: size[1]})
			m = updated.(Model)

			lines := strings.Split(m.renderContent(), "\n")
			if len(lines) != size[1] {
				t.Fatalf("got %d rows, want %d", len(lines), size[1])
			}
			for i, l := range lines {
				if w := lipgloss.Width(l); w != size[0] {
					t.Errorf("row %d: width %d, want %d", i, w, size[0])
				}
			}
		})
	}
}
