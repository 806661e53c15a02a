package highlight

import (
	"fmt"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/styles"
)

// ThemeBg extracts the background hex colour from a Chroma style, or "".
func ThemeBg(theme string) string {
	sty := styles.Get(theme)
	if sty == nil {
		return ""
	}
	bg := sty.Get(chroma.Background).Background
	if !bg.IsSet() {
		return ""
	}
	return bg.String()
}

// Palette holds UI chrome colours derived from a Chroma theme so the editor
// frame matches the highlighted text.
type Palette struct {
	Bg     string
	Fg     string
	Border string // 10% bg to fg
	Dim    string // 25% bg to fg
	Muted  string // 45% bg to fg
	Accent string // most saturated token colour
	Error  string
}

// ThemePalette derives a Palette from a theme name. Missing entries fall
// back to a neutral dark palette.
func ThemePalette(theme string) Palette {
	sty := styles.Get(theme)
	if sty == nil {
		return Palette{
			Bg: "#000000", Fg: "#c8c8c8",
			Border: "#141414", Dim: "#323232", Muted: "#5a5a5a",
			Accent: "#00dfff", Error: "#932e2e",
		}
	}
	entry := sty.Get(chroma.Background)
	bg, fg := "#000000", "#c8c8c8"
	if entry.Background.IsSet() {
		bg = entry.Background.String()
	}
	if entry.Colour.IsSet() {
		fg = entry.Colour.String()
	}

	errColour := fg
	if e := sty.Get(chroma.Error); e.Colour.IsSet() {
		errColour = e.Colour.String()
	}

	return Palette{
		Bg:     bg,
		Fg:     fg,
		Border: lerpHex(bg, fg, 0.10),
		Dim:    lerpHex(bg, fg, 0.25),
		Muted:  lerpHex(bg, fg, 0.45),
		Accent: accent(sty, fg),
		Error:  lerpHex(bg, errColour, 0.45),
	}
}

// accent returns the most saturated foreground colour across the
// token types notes use, or fallback.
func accent(sty *chroma.Style, fallback string) string {
	best, bestSat := fallback, 0.0
	for _, tt := range []chroma.TokenType{
		chroma.Keyword, chroma.NameTag, chroma.NameFunction, chroma.LiteralString,
		chroma.GenericStrong, chroma.GenericEmph, chroma.GenericHeading,
	} {
		e := sty.Get(tt)
		if !e.Colour.IsSet() {
			continue
		}
		hex := e.Colour.String()
		r, g, b, _ := parseHex(hex)
		mx := max(r, g, b)
		if mx == 0 {
			continue
		}
		sat := float64(mx-min(r, g, b)) / float64(mx)
		if sat > bestSat {
			best, bestSat = hex, sat
		}
	}
	return best
}

// lerpHex linearly interpolates between two hex colours at fraction t.
func lerpHex(a, b string, t float64) string {
	ar, ag, ab, _ := parseHex(a)
	br, bg, bb, _ := parseHex(b)
	mix := func(x, y int) int {
		v := float64(x) + float64(y-x)*t + 0.5
		return min(max(int(v), 0), 255)
	}
	return fmt.Sprintf("#%02x%02x%02x", mix(ar, br), mix(ag, bg), mix(ab, bb))
}
