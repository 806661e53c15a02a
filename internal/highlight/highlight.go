// Package highlight colours raw note text for the terminal via Chroma,
// independent of any TUI component.
package highlight

import (
	"fmt"
	"strings"
	"sync"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
)

// Note is the language name of the note markup lexer.
const Note = "starnote"

var (
	cache   = make(map[string]string)
	cacheMu sync.RWMutex
)

// Highlight returns an ANSI-highlighted version of text using the given
// language and Chroma theme. Results are cached. bgHex ("#rrggbb") is
// injected after every ANSI reset so the background colour is never lost.
func Highlight(text, language, theme, bgHex string) string {
	key := language + ":" + theme + ":" + bgHex + ":" + text
	cacheMu.RLock()
	if v, ok := cache[key]; ok {
		cacheMu.RUnlock()
		return v
	}
	cacheMu.RUnlock()

	out := render(text, language, theme, bgHex)

	cacheMu.Lock()
	if len(cache) > 2000 {
		cache = make(map[string]string)
	}
	cache[key] = out
	cacheMu.Unlock()
	return out
}

func lexerFor(language string) chroma.Lexer {
	if language == Note {
		return noteLexer
	}
	return lexers.Get(language)
}

func render(text, language, theme, bgHex string) string {
	lex := lexerFor(language)
	if lex == nil {
		return text
	}
	lex = chroma.Coalesce(lex)
	fmtr := formatters.Get("terminal16m")
	if fmtr == nil {
		fmtr = formatters.Fallback
	}
	it, err := lex.Tokenise(nil, text)
	if err != nil {
		return text
	}
	var buf strings.Builder
	if err := fmtr.Format(&buf, styles.Get(theme), it); err != nil {
		return text
	}
	raw := strings.TrimRight(buf.String(), "\n")

	// terminal16m skips bg on tokens inheriting Background, and every reset
	// clears it, so re-apply bg after each reset.
	bgSeq := hexToBgSeq(bgHex)
	return bgSeq + strings.ReplaceAll(raw, "\x1b[0m", "\x1b[0m"+bgSeq)
}

// hexToBgSeq converts "#rrggbb" to an ANSI 24-bit background escape sequence.
func hexToBgSeq(hex string) string {
	r, g, b, ok := parseHex(hex)
	if !ok {
		return ""
	}
	return fmt.Sprintf("\x1b[48;2;%d;%d;%dm", r, g, b)
}

func parseHex(hex string) (r, g, b int, ok bool) {
	if len(hex) != 7 || hex[0] != '#' {
		return 0, 0, 0, false
	}
	return hexByte(hex[1], hex[2]), hexByte(hex[3], hex[4]), hexByte(hex[5], hex[6]), true
}

func hexByte(hi, lo byte) int {
	return hexNibble(hi)<<4 | hexNibble(lo)
}

func hexNibble(c byte) int {
	switch {
	case c >= '0' && c <= '9':
		return int(c - '0')
	case c >= 'a' && c <= 'f':
		return int(c-'a') + 10
	case c >= 'A' && c <= 'F':
		return int(c-'A') + 10
	}
	return 0
}

// SplitLines splits a highlighted block into per-line strings, carrying
// ANSI style state across lines so each renders on its own.
func SplitLines(block string) []string {
	lines := strings.Split(block, "\n")
	if len(lines) <= 1 {
		return lines
	}
	var active []string
	for i, line := range lines {
		if i > 0 && len(active) > 0 {
			lines[i] = strings.Join(active, "") + line
		}
		active = scanSGR(line, active)
	}
	return lines
}

// scanSGR updates the active SGR list from line. Resets clear it.
func scanSGR(line string, active []string) []string {
	for j := 0; j < len(line); j++ {
		if line[j] != '\x1b' || j+1 >= len(line) || line[j+1] != '[' {
			continue
		}
		k := j + 2
		for k < len(line) && line[k] != 'm' && line[k] != '\x1b' {
			k++
		}
		if k >= len(line) || line[k] != 'm' {
			continue
		}
		if params := line[j+2 : k]; params == "" || params == "0" {
			active = active[:0]
		} else {
			active = append(active, line[j:k+1])
		}
		j = k
	}
	return active
}
