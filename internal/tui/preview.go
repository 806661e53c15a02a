package tui

import (
	"strconv"
	"strings"

	"charm.land/lipgloss/v2"
	"github.com/xonecas/starnote/internal/format"
	"golang.org/x/net/html"
)

type listFrame struct {
	ordered bool
	n       int
}

// renderPreview renders a note's formatted HTML for the terminal, wrapped
// to width. It understands the tags the formatter emits: strong, em, ol,
// ul, li, br and img. Unknown tags are dropped and their text kept.
func renderPreview(raw string, width int, st styles) []string {
	z := html.NewTokenizer(strings.NewReader(format.FormatText(raw)))

	var (
		lines  []string
		cur    strings.Builder
		bold   int
		italic int
		lists  []listFrame
		inItem bool
	)
	flush := func() {
		lines = append(lines, cur.String())
		cur.Reset()
	}

	for {
		tt := z.Next()
		switch tt {
		case html.ErrorToken:
			if cur.Len() > 0 {
				flush()
			}
			var out []string
			for _, l := range lines {
				out = append(out, wrapANSI(l, width)...)
			}
			return out

		case html.TextToken:
			text := strings.ReplaceAll(string(z.Text()), "\n", "")
			if text == "" || (len(lists) > 0 && !inItem && strings.TrimSpace(text) == "") {
				continue
			}
			cur.WriteString(textStyle(st.Text, bold, italic).Render(text))

		case html.StartTagToken, html.SelfClosingTagToken:
			name, hasAttr := z.TagName()
			switch string(name) {
			case "strong", "b":
				bold++
			case "em", "i":
				italic++
			case "br":
				flush()
			case "ol", "ul":
				if cur.Len() > 0 {
					flush()
				}
				lists = append(lists, listFrame{ordered: string(name) == "ol"})
			case "li":
				if cur.Len() > 0 {
					flush()
				}
				inItem = true
				marker := "• "
				if len(lists) > 0 {
					top := &lists[len(lists)-1]
					top.n++
					if top.ordered {
						marker = strconv.Itoa(top.n) + ". "
					}
				}
				indent := strings.Repeat("  ", max(1, len(lists)))
				cur.WriteString(st.Text.Render(indent) + st.ListMarker.Render(marker))
			case "img":
				alt := "image"
				for hasAttr {
					var k, v []byte
					k, v, hasAttr = z.TagAttr()
					if string(k) == "alt" && len(v) > 0 {
						alt = string(v)
					}
				}
				cur.WriteString(st.Image.Render("[image: " + alt + "]"))
			}

		case html.EndTagToken:
			name, _ := z.TagName()
			switch string(name) {
			case "strong", "b":
				bold = max(0, bold-1)
			case "em", "i":
				italic = max(0, italic-1)
			case "li":
				flush()
				inItem = false
			case "ol", "ul":
				if len(lists) > 0 {
					lists = lists[:len(lists)-1]
				}
			}
		}
	}
}

func textStyle(base lipgloss.Style, bold, italic int) lipgloss.Style {
	if bold > 0 {
		base = base.Bold(true)
	}
	if italic > 0 {
		base = base.Italic(true)
	}
	return base
}
