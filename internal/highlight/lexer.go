package highlight

import "github.com/alecthomas/chroma/v2"

// noteLexer tokenises note markup: list markers, **bold**, *italic* and
// inline image tags. Everything else is plain text.
var noteLexer = chroma.MustNewLexer(
	&chroma.Config{
		Name:      "StarNote",
		Aliases:   []string{Note},
		Filenames: []string{"*.note"},
		MimeTypes: []string{"text/x-starnote"},
	},
	func() chroma.Rules {
		return chroma.Rules{
			"root": {
				{Pattern: `^[ \t]*\d+\.[ \t]`, Type: chroma.Keyword},
				{Pattern: `^[ \t]*[-*][ \t]`, Type: chroma.Keyword},
				{Pattern: `\*\*[^*]+?\*\*`, Type: chroma.GenericStrong},
				{Pattern: `\*[^*\n]+\*`, Type: chroma.GenericEmph},
				{Pattern: `<img\b[^>]*>`, Type: chroma.NameTag},
				{Pattern: `[^*<\n]+`, Type: chroma.Text},
				{Pattern: `\n`, Type: chroma.Text},
				{Pattern: `.`, Type: chroma.Text},
			},
		}
	},
)
