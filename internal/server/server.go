// Package server exposes notes, flashcards and the text formatter over a
// JSON HTTP API.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/xonecas/starnote/internal/config"
	"github.com/xonecas/starnote/internal/store"
)

// NoteStore is the note persistence the API needs.
type NoteStore interface {
	Create(ctx context.Context, n store.Note) (store.Note, error)
	Get(ctx context.Context, userID, id string) (store.Note, error)
	List(ctx context.Context, opts store.ListOptions) ([]store.Note, error)
	Update(ctx context.Context, n store.Note) (store.Note, error)
	Trash(ctx context.Context, userID, id string) (store.Note, error)
	Restore(ctx context.Context, userID, id string) (store.Note, error)
	ToggleFavorite(ctx context.Context, userID, id string) (store.Note, error)
	Delete(ctx context.Context, userID, id string) error
	EmptyTrash(ctx context.Context, userID string) (int64, error)
	Stats(ctx context.Context, userID string) (store.Stats, error)
	Categories(ctx context.Context, userID string) ([]string, error)
	Ping() error
}

// FlashcardStore is the flashcard persistence the API needs.
type FlashcardStore interface {
	CreateFlashcard(ctx context.Context, c store.Flashcard) (store.Flashcard, error)
	CreateFlashcards(ctx context.Context, userID string, cards []store.ExportedFlashcard) ([]store.Flashcard, error)
	GetFlashcard(ctx context.Context, userID, id string) (store.Flashcard, error)
	ListFlashcards(ctx context.Context, q store.FlashcardQuery) ([]store.Flashcard, error)
	UpdateFlashcard(ctx context.Context, c store.Flashcard) (store.Flashcard, error)
	TrashFlashcard(ctx context.Context, userID, id string) (store.Flashcard, error)
	RestoreFlashcard(ctx context.Context, userID, id string) (store.Flashcard, error)
	ToggleFlashcardFavorite(ctx context.Context, userID, id string) (store.Flashcard, error)
	ReviewFlashcard(ctx context.Context, userID, id string) (store.Flashcard, error)
	DeleteFlashcard(ctx context.Context, userID, id string) error
	EmptyFlashcardTrash(ctx context.Context, userID string) (int64, error)
	FlashcardStats(ctx context.Context, userID string) (store.FlashcardStats, error)
	FlashcardCategoryList(ctx context.Context, userID string) ([]string, error)
	ExportFlashcards(ctx context.Context, userID string) ([]store.ExportedFlashcard, error)
	AddFlashcardImage(ctx context.Context, userID, id, fileURL string) (store.FlashcardImage, error)
	FlashcardImages(ctx context.Context, userID, id string) ([]store.FlashcardImage, error)
}

// Repository is everything the API persists. *store.Store implements it.
type Repository interface {
	NoteStore
	FlashcardStore
}

// Server serves the StarNote API.
type Server struct {
	notes   NoteStore
	cards   FlashcardStore
	cfg     config.ServerConfig
	editor  config.EditorConfig
	started time.Time
}

// New creates a Server backed by repo.
func New(repo Repository, cfg *config.Config) *Server {
	return &Server{
		notes:   repo,
		cards:   repo,
		cfg:     cfg.Server,
		editor:  cfg.Editor,
		started: time.Now(),
	}
}

// Handler returns the routed handler with CORS and request logging applied.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/health", s.handleHealth)

	mux.HandleFunc("POST /api/format", s.handleFormat)
	mux.HandleFunc("POST /api/format/enter", s.handleEnter)
	mux.HandleFunc("POST /api/format/apply", s.handleApply)

	mux.HandleFunc("GET /api/notes", s.handleListNotes)
	mux.HandleFunc("GET /api/notes/stats", s.handleStats)
	mux.HandleFunc("GET /api/notes/categories", s.handleCategories)
	mux.HandleFunc("GET /api/notes/{id}", s.handleGetNote)
	mux.HandleFunc("POST /api/notes", s.handleCreateNote)
	mux.HandleFunc("PUT /api/notes/{id}", s.handleUpdateNote)
	mux.HandleFunc("PUT /api/notes/{id}/trash", s.transition(s.notes.Trash))
	mux.HandleFunc("PUT /api/notes/{id}/restore", s.transition(s.notes.Restore))
	mux.HandleFunc("PUT /api/notes/{id}/favorite", s.transition(s.notes.ToggleFavorite))
	mux.HandleFunc("DELETE /api/notes/trash/empty", s.handleEmptyTrash)
	mux.HandleFunc("DELETE /api/notes/{id}", s.handleDeleteNote)

	mux.HandleFunc("GET /api/flashcards", s.handleListFlashcards)
	mux.HandleFunc("POST /api/flashcards", s.handleCreateFlashcard)
	mux.HandleFunc("GET /api/flashcards/categories/list", s.handleFlashcardCategories)
	mux.HandleFunc("GET /api/flashcards/stats", s.handleFlashcardStats)
	mux.HandleFunc("DELETE /api/flashcards/trash/empty", s.handleEmptyFlashcardTrash)
	mux.HandleFunc("GET /api/flashcards/export", s.handleExportFlashcards)
	mux.HandleFunc("POST /api/flashcards/batch", s.handleBatchFlashcards)
	mux.HandleFunc("GET /api/flashcards/{id}", s.handleGetFlashcard)
	mux.HandleFunc("PUT /api/flashcards/{id}", s.handleUpdateFlashcard)
	mux.HandleFunc("DELETE /api/flashcards/{id}", s.handleDeleteFlashcard)
	mux.HandleFunc("PUT /api/flashcards/{id}/trash", s.cardTransition(s.cards.TrashFlashcard, trashedMessage))
	mux.HandleFunc("PUT /api/flashcards/{id}/restore", s.cardTransition(s.cards.RestoreFlashcard, restoredMessage))
	mux.HandleFunc("PUT /api/flashcards/{id}/favorite", s.cardTransition(s.cards.ToggleFlashcardFavorite, favoriteMessage))
	mux.HandleFunc("PUT /api/flashcards/{id}/review", s.cardTransition(s.cards.ReviewFlashcard, reviewMessage))
	mux.HandleFunc("POST /api/flashcards/{id}/image", s.handleAddFlashcardImage)
	mux.HandleFunc("GET /api/flashcards/{id}/images", s.handleFlashcardImages)

	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		log.Warn().Str("method", r.Method).Str("path", r.URL.Path).Msg("route not found")
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "Route not found"})
	})

	return s.withLogging(s.withCORS(mux))
}

// Run serves on the configured address until ctx is cancelled, then shuts
// down gracefully within the configured timeout.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", s.cfg.Addr).Msg("server listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	log.Warn().Msg("received shutdown signal, closing connections")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout())
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("could not close connections in time")
		return err
	}
	log.Info().Msg("server stopped")
	return nil
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	dbStatus := "connected"
	if err := s.notes.Ping(); err != nil {
		log.Warn().Err(err).Msg("health check: database unreachable")
		dbStatus = "disconnected"
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"message":   "Server is running",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"uptime":    time.Since(s.started).Seconds(),
		"dbStatus":  dbStatus,
	})
}

// --- Helpers ---

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Warn().Err(err).Msg("failed to write response")
	}
}

func writeMessage(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"message": msg})
}

// writeError maps store errors onto HTTP statuses.
func writeError(w http.ResponseWriter, err error, notFound string) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		writeMessage(w, http.StatusNotFound, notFound)
	case errors.Is(err, store.ErrInvalid):
		writeMessage(w, http.StatusBadRequest, err.Error())
	default:
		log.Error().Err(err).Msg("request failed")
		writeMessage(w, http.StatusInternalServerError, err.Error())
	}
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	return json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20)).Decode(v)
}
