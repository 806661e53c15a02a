package highlight

import (
	"strings"
	"testing"

	"github.com/alecthomas/chroma/v2"
	"github.com/charmbracelet/x/ansi"
)

func TestNoteLexerTokens(t *testing.T) {
	it, err := chroma.Coalesce(noteLexer).Tokenise(nil, "1. **bold** and *it*\n- <img src=\"x\">")
	if err != nil {
		t.Fatal(err)
	}

	got := map[chroma.TokenType][]string{}
	for _, tok := range it.Tokens() {
		got[tok.Type] = append(got[tok.Type], tok.Value)
	}

	want := map[chroma.TokenType][]string{
		chroma.Keyword:       {"1. ", "- "},
		chroma.GenericStrong: {"**bold**"},
		chroma.GenericEmph:   {"*it*"},
		chroma.NameTag:       {`<img src="x">`},
	}
	for tt, vals := range want {
		if strings.Join(got[tt], "|") != strings.Join(vals, "|") {
			t.Errorf("%s tokens = %q, want %q", tt, got[tt], vals)
		}
	}
}

func TestHighlightPreservesText(t *testing.T) {
	text := "Intro\n1. **one**\n2. *two*"
	out := Highlight(text, Note, "github-dark", "#0d1117")

	if !strings.HasPrefix(out, hexToBgSeq("#0d1117")) {
		t.Errorf("missing background prefix: %q", out[:min(len(out), 24)])
	}
	if got := ansi.Strip(out); got != text {
		t.Errorf("stripped output = %q, want %q", got, text)
	}

	lines := SplitLines(out)
	if len(lines) != 3 {
		t.Fatalf("got %d lines, want 3", len(lines))
	}
	for i, want := range strings.Split(text, "\n") {
		if got := ansi.Strip(lines[i]); got != want {
			t.Errorf("line %d = %q, want %q", i, got, want)
		}
	}
}

func TestHighlightUnknownLanguage(t *testing.T) {
	if got := Highlight("plain", "no-such-language", "github-dark", ""); got != "plain" {
		t.Errorf("got %q", got)
	}
}

func TestSplitLinesCarriesStyle(t *testing.T) {
	block := "\x1b[1mbold\nstill\x1b[0m\nplain"
	lines := SplitLines(block)
	want := []string{"\x1b[1mbold", "\x1b[1mstill\x1b[0m", "plain"}
	for i := range want {
		if lines[i] != want[i] {
			t.Errorf("line %d = %q, want %q", i, lines[i], want[i])
		}
	}
}

func TestThemePalette(t *testing.T) {
	p := ThemePalette("github-dark")
	if p != ThemePalette("github-dark") {
		t.Error("palette is not deterministic")
	}
	if p.Bg != ThemeBg("github-dark") {
		t.Errorf("Bg = %s, ThemeBg = %s", p.Bg, ThemeBg("github-dark"))
	}
	for name, c := range map[string]string{"fg": p.Fg, "border": p.Border, "dim": p.Dim, "muted": p.Muted, "accent": p.Accent, "error": p.Error} {
		if _, _, _, ok := parseHex(c); !ok {
			t.Errorf("%s = %q is not #rrggbb", name, c)
		}
	}
	if got := lerpHex("#000000", "#ffffff", 0.5); got != "#808080" {
		t.Errorf("lerpHex midpoint = %s", got)
	}
}
