package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	tea "charm.land/bubbletea/v2"
	"github.com/rs/zerolog/log"
	"github.com/xonecas/starnote/internal/config"
	"github.com/xonecas/starnote/internal/format"
	"github.com/xonecas/starnote/internal/server"
	"github.com/xonecas/starnote/internal/store"
	"github.com/xonecas/starnote/internal/tui"
)

const usage = `usage: starnote <command> [flags]

commands:
  serve    run the HTTP API
  edit     edit a note in the terminal
  list     list notes
  cards    list or export flashcards
  import   import flashcards from a JSON file
  render   print a note file as HTML
  login    remember the user for edit and list
  logout   forget the remembered user

Run 'starnote <command> -h' for command flags.`

var errUsage = errors.New("invalid usage")

func main() {
	err := run(os.Args[1:], os.Stdin, os.Stdout)
	switch {
	case err == nil:
	case errors.Is(err, errUsage), errors.Is(err, flag.ErrHelp):
		fmt.Fprintln(os.Stderr, usage)
		os.Exit(2)
	default:
		fmt.Fprintf(os.Stderr, "starnote: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, stdin io.Reader, stdout io.Writer) error {
	if len(args) == 0 {
		return errUsage
	}
	cmd, args := args[0], args[1:]
	switch cmd {
	case "serve":
		return runServe(args)
	case "edit":
		return runEdit(args)
	case "list":
		return runList(args, stdout)
	case "cards":
		return runCards(args, stdout)
	case "import":
		return runImport(args, stdin, stdout)
	case "render":
		return runRender(args, stdin, stdout)
	case "login":
		return runLogin(args, stdout)
	case "logout":
		return config.ClearProfile()
	case "help", "-h", "--help":
		fmt.Fprintln(stdout, usage)
		return nil
	}
	return fmt.Errorf("%w: unknown command %q", errUsage, cmd)
}

// newFlags returns a flag set with the shared -config flag.
func newFlags(name string) (*flag.FlagSet, *string) {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	path := fs.String("config", config.DefaultPath(), "config file")
	return fs, path
}

func openStore(cfg *config.Config) (*store.Store, error) {
	path, err := cfg.StorePathOrDefault()
	if err != nil {
		return nil, fmt.Errorf("resolve database path: %w", err)
	}
	return store.Open(path)
}

// userOrProfile returns user, falling back to the remembered profile.
func userOrProfile(user string) (string, error) {
	if user != "" {
		return user, nil
	}
	p, err := config.LoadProfile()
	if err != nil {
		return "", err
	}
	if p == nil {
		return "", fmt.Errorf("%w: -user is required (or run 'starnote login')", errUsage)
	}
	return p.UserID, nil
}

func runServe(args []string) error {
	fs, cfgPath := newFlags("serve")
	addr := fs.String("addr", "", "listen address (overrides config)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	cfg, err := config.Load(*cfgPath)
	if err != nil {
		return err
	}
	if *addr != "" {
		cfg.Server.Addr = *addr
	}
	if err := setupConsoleLogging(cfg, os.Stderr); err != nil {
		return err
	}

	st, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return server.New(st, cfg).Run(ctx)
}

func runEdit(args []string) error {
	fs, cfgPath := newFlags("edit")
	user := fs.String("user", "", "user id (defaults to the logged in user)")
	id := fs.String("id", "", "note id to edit; omit to start a new note")
	category := fs.String("category", "", "category for a new note")
	if err := fs.Parse(args); err != nil {
		return err
	}
	cfg, err := config.Load(*cfgPath)
	if err != nil {
		return err
	}
	userID, err := userOrProfile(*user)
	if err != nil {
		return err
	}
	closeLog, err := setupFileLogging(cfg)
	if err != nil {
		return err
	}
	defer closeLog()

	st, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	note := store.Note{UserID: userID, Category: *category}
	if *id != "" {
		if note, err = st.Get(context.Background(), userID, *id); err != nil {
			return fmt.Errorf("open note %s: %w", *id, err)
		}
	}

	model := tui.New(tui.Options{
		Notes:       st,
		Note:        note,
		SyntaxTheme: cfg.Editor.SyntaxTheme,
		TitleLength: cfg.Editor.TitleLength,
	})
	final, err := tea.NewProgram(model).Run()
	if err != nil {
		return fmt.Errorf("run editor: %w", err)
	}
	if m, ok := final.(tui.Model); ok {
		if m.Dirty() {
			log.Warn().Str("note", m.Note().ID).Msg("quit with unsaved changes")
		}
		if n := m.Note(); n.ID != "" {
			fmt.Println(n.ID)
		}
	}
	return nil
}

func runList(args []string, stdout io.Writer) error {
	fs, cfgPath := newFlags("list")
	user := fs.String("user", "", "user id (defaults to the logged in user)")
	status := fs.String("status", "", "active, favorite or trash (default: all but trash)")
	query := fs.String("q", "", "only notes whose title or content contains this")
	if err := fs.Parse(args); err != nil {
		return err
	}
	cfg, err := config.Load(*cfgPath)
	if err != nil {
		return err
	}
	userID, err := userOrProfile(*user)
	if err != nil {
		return err
	}
	opts := store.ListOptions{UserID: userID, Query: *query}
	if *status != "" {
		if opts.Status, err = store.ParseStatus(*status); err != nil {
			return err
		}
	}

	st, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	notes, err := st.List(context.Background(), opts)
	if err != nil {
		return err
	}
	for _, n := range notes {
		fmt.Fprintf(stdout, "%s  %-*s  %s\n",
			n.ID,
			cfg.Editor.TitleLength+3, format.Preview(n.Title, cfg.Editor.TitleLength),
			format.Preview(n.Content, cfg.Editor.PreviewLength))
	}
	return nil
}

func runCards(args []string, stdout io.Writer) error {
	fs, cfgPath := newFlags("cards")
	user := fs.String("user", "", "user id (defaults to the logged in user)")
	status := fs.String("status", "", "active, favorite or trash (default: all)")
	category := fs.String("category", "", "only cards in this category")
	query := fs.String("q", "", "only cards whose question or answer contains this")
	export := fs.Bool("export", false, "print live cards as JSON for import")
	if err := fs.Parse(args); err != nil {
		return err
	}
	cfg, err := config.Load(*cfgPath)
	if err != nil {
		return err
	}
	userID, err := userOrProfile(*user)
	if err != nil {
		return err
	}
	q := store.FlashcardQuery{UserID: userID, Category: *category, Search: *query}
	if *status != "" {
		if q.Status, err = store.ParseStatus(*status); err != nil {
			return err
		}
	}

	st, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	ctx := context.Background()
	if *export {
		cards, err := st.ExportFlashcards(ctx, userID)
		if err != nil {
			return err
		}
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(cards)
	}

	cards, err := st.ListFlashcards(ctx, q)
	if err != nil {
		return err
	}
	for _, c := range cards {
		fmt.Fprintf(stdout, "%s  %-12s  %s  ->  %s\n",
			c.ID, c.Category,
			format.Preview(c.Question, cfg.Editor.TitleLength),
			format.Preview(c.Answer, cfg.Editor.PreviewLength))
	}
	return nil
}

// runImport reads cards in the form printed by 'cards -export', either a
// bare array or an object with a "flashcards" array.
func runImport(args []string, stdin io.Reader, stdout io.Writer) error {
	fs, cfgPath := newFlags("import")
	user := fs.String("user", "", "user id (defaults to the logged in user)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	cfg, err := config.Load(*cfgPath)
	if err != nil {
		return err
	}
	userID, err := userOrProfile(*user)
	if err != nil {
		return err
	}

	in := stdin
	if fs.NArg() > 0 {
		f, err := os.Open(fs.Arg(0))
		if err != nil {
			return err
		}
		defer f.Close()
		in = f
	}
	raw, err := io.ReadAll(in)
	if err != nil {
		return err
	}
	var cards []store.ExportedFlashcard
	if err := json.Unmarshal(raw, &cards); err != nil {
		var wrapped struct {
			Flashcards []store.ExportedFlashcard `json:"flashcards"`
		}
		if werr := json.Unmarshal(raw, &wrapped); werr != nil {
			return fmt.Errorf("parse flashcards: %w", err)
		}
		cards = wrapped.Flashcards
	}

	st, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	created, err := st.CreateFlashcards(context.Background(), userID, cards)
	if err != nil {
		return err
	}
	fmt.Fprintf(stdout, "imported %d flashcards\n", len(created))
	return nil
}

func runRender(args []string, stdin io.Reader, stdout io.Writer) error {
	fs := flag.NewFlagSet("render", flag.ContinueOnError)
	plain := fs.Bool("plain", false, "print the text with formatting stripped instead of HTML")
	if err := fs.Parse(args); err != nil {
		return err
	}

	in := stdin
	if fs.NArg() > 0 {
		f, err := os.Open(fs.Arg(0))
		if err != nil {
			return err
		}
		defer f.Close()
		in = f
	}
	raw, err := io.ReadAll(in)
	if err != nil {
		return err
	}
	text := strings.TrimSuffix(string(raw), "\n")

	if *plain {
		_, err = fmt.Fprintln(stdout, format.StripFormatting(text))
	} else {
		_, err = fmt.Fprintln(stdout, format.FormatText(text))
	}
	return err
}

func runLogin(args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("login", flag.ContinueOnError)
	user := fs.String("user", "", "user id")
	name := fs.String("name", "", "display name")
	email := fs.String("email", "", "email address")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *user == "" {
		return fmt.Errorf("%w: -user is required", errUsage)
	}
	if err := config.SaveProfile(&config.Profile{UserID: *user, Name: *name, Email: *email}); err != nil {
		return err
	}
	fmt.Fprintf(stdout, "logged in as %s\n", *user)
	return nil
}
