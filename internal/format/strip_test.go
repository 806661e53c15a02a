package format

import (
	"strings"
	"testing"

	"pgregory.net/rapid"
)

func TestStripFormatting(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"**bold** and *it*", "bold and it"},
		{"1. a\n2. b", "a\nb"},
		{"- a\n* b", "a\nb"},
		{"line\n\nline", "line\n\nline"},
		{"**open", "open"},
		{"- - nested", "nested"},
		{"2 * 3", "2 * 3"},
		{`<img src="u" alt="a">`, `<img src="u" alt="a">`},
		{"*a\rb*", "*a\rb*"},
		{"*a\u2028b*", "*a\u2028b*"},
		{"*a*\r*b*", "a\rb"},
	}
	for _, tt := range tests {
		if got := StripFormatting(tt.in); got != tt.want {
			t.Errorf("StripFormatting(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestPreview(t *testing.T) {
	tests := []struct {
		name string
		in   string
		max  int
		want string
	}{
		{"fits", "abc", 3, "abc"},
		{"cut", "abcdef", 3, "abc..."},
		{"no limit", "abcdef", 0, "abcdef"},
		{"stripped first", "**Books**\n1. Atomic Habits", 100, "Books\nAtomic Habits"},
		{"markers do not count", "**abc**", 3, "abc"},
		{"grapheme clusters", "e\u0301e\u0301e\u0301", 2, "e\u0301e\u0301..."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Preview(tt.in, tt.max); got != tt.want {
				t.Errorf("Preview(%q, %d) = %q, want %q", tt.in, tt.max, got, tt.want)
			}
		})
	}
}

// noteText draws strings dense in formatting markers.
func noteText() *rapid.Generator[string] {
	return rapid.OneOf(
		rapid.StringMatching(`[-*0-9. \na-z]{0,60}`),
		rapid.String(),
	)
}

func TestStripFormattingIdempotent(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		s := noteText().Draw(t, "text")
		once := StripFormatting(s)
		if twice := StripFormatting(once); twice != once {
			t.Fatalf("not idempotent: %q -> %q -> %q", s, once, twice)
		}
	})
}

func TestStripMatchesItalicLines(t *testing.T) {
	for _, sep := range []string{"\n", "\r", "\u2028", "\u2029"} {
		in := "*a" + sep + "b*"
		if got := FormatText(in); strings.Contains(got, "<em>") {
			t.Errorf("FormatText(%q) = %q, italic crossed a line", in, got)
		}
		if got := StripFormatting(in); got != in {
			t.Errorf("StripFormatting(%q) = %q, want unchanged", in, got)
		}
	}
}

func TestTotal(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		s := noteText().Draw(t, "text")
		n := len([]rune(s))
		cursor := rapid.IntRange(-2, n+2).Draw(t, "cursor")
		kind := rapid.SampledFrom(Kinds).Draw(t, "kind")

		FormatText(s)
		IsWithinFormatting(s, cursor, kind)

		for _, e := range []Edit{ContinueList(s, cursor), ApplyFormat(s, cursor, kind)} {
			if e.Cursor < 0 || e.Cursor > len([]rune(e.Text)) {
				t.Fatalf("cursor %d out of range for %q", e.Cursor, e.Text)
			}
		}
	})
}
