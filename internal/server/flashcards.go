package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/xonecas/starnote/internal/format"
	"github.com/xonecas/starnote/internal/store"
)

const errCardNotFound = "Flashcard not found"

// cardView is a flashcard as returned by the API, with both sides rendered.
type cardView struct {
	store.Flashcard
	QuestionHTML string `json:"questionHtml"`
	AnswerHTML   string `json:"answerHtml"`
}

func cardViewOf(c store.Flashcard) cardView {
	return cardView{
		Flashcard:    c,
		QuestionHTML: format.FormatText(c.Question),
		AnswerHTML:   format.FormatText(c.Answer),
	}
}

func cardViews(cards []store.Flashcard) []cardView {
	out := make([]cardView, len(cards))
	for i, c := range cards {
		out[i] = cardViewOf(c)
	}
	return out
}

type cardRequest struct {
	UserID   string `json:"user_id"`
	Question string `json:"question"`
	Answer   string `json:"answer"`
	Category string `json:"category"`
	Status   string `json:"status"`
}

// queryUser returns the user_id query parameter, writing a 400 when it is
// missing.
func queryUser(w http.ResponseWriter, r *http.Request) (string, bool) {
	userID := r.URL.Query().Get("user_id")
	if userID == "" {
		writeMessage(w, http.StatusBadRequest, errUserRequired)
		return "", false
	}
	return userID, true
}

func (s *Server) handleListFlashcards(w http.ResponseWriter, r *http.Request) {
	userID, ok := queryUser(w, r)
	if !ok {
		return
	}
	q := r.URL.Query()
	query := store.FlashcardQuery{UserID: userID, Category: q.Get("category"), Search: q.Get("search")}
	if raw := q.Get("status"); raw != "" {
		st, err := store.ParseStatus(raw)
		if err != nil {
			writeMessage(w, http.StatusBadRequest, err.Error())
			return
		}
		query.Status = st
	}

	cards, err := s.cards.ListFlashcards(r.Context(), query)
	if err != nil {
		writeError(w, err, errCardNotFound)
		return
	}
	writeJSON(w, http.StatusOK, cardViews(cards))
}

func (s *Server) handleCreateFlashcard(w http.ResponseWriter, r *http.Request) {
	var req cardRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	if req.UserID == "" {
		writeMessage(w, http.StatusBadRequest, errUserRequired)
		return
	}
	if req.Question == "" || req.Answer == "" || req.Category == "" {
		writeMessage(w, http.StatusBadRequest, "Question, answer, and category are required")
		return
	}

	c, err := s.cards.CreateFlashcard(r.Context(), store.Flashcard{
		UserID:   req.UserID,
		Question: req.Question,
		Answer:   req.Answer,
		Category: req.Category,
		Status:   store.Status(req.Status),
	})
	if err != nil {
		writeError(w, err, errCardNotFound)
		return
	}
	writeJSON(w, http.StatusCreated, cardViewOf(c))
}

func (s *Server) handleFlashcardCategories(w http.ResponseWriter, r *http.Request) {
	userID, ok := queryUser(w, r)
	if !ok {
		return
	}
	cats, err := s.cards.FlashcardCategoryList(r.Context(), userID)
	if err != nil {
		writeError(w, err, errCardNotFound)
		return
	}
	writeJSON(w, http.StatusOK, cats)
}

func (s *Server) handleFlashcardStats(w http.ResponseWriter, r *http.Request) {
	userID, ok := queryUser(w, r)
	if !ok {
		return
	}
	st, err := s.cards.FlashcardStats(r.Context(), userID)
	if err != nil {
		writeError(w, err, errCardNotFound)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

func (s *Server) handleEmptyFlashcardTrash(w http.ResponseWriter, r *http.Request) {
	userID, ok := queryUser(w, r)
	if !ok {
		return
	}
	n, err := s.cards.EmptyFlashcardTrash(r.Context(), userID)
	if err != nil {
		writeError(w, err, errCardNotFound)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message":      "Trash emptied",
		"deletedCount": n,
	})
}

func (s *Server) handleExportFlashcards(w http.ResponseWriter, r *http.Request) {
	userID, ok := queryUser(w, r)
	if !ok {
		return
	}
	cards, err := s.cards.ExportFlashcards(r.Context(), userID)
	if err != nil {
		writeError(w, err, errCardNotFound)
		return
	}
	writeJSON(w, http.StatusOK, cards)
}

func (s *Server) handleBatchFlashcards(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UserID     string                    `json:"user_id"`
		Flashcards []store.ExportedFlashcard `json:"flashcards"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid flashcards data")
		return
	}
	if req.UserID == "" {
		writeMessage(w, http.StatusBadRequest, errUserRequired)
		return
	}
	if len(req.Flashcards) == 0 {
		writeMessage(w, http.StatusBadRequest, "Invalid flashcards data")
		return
	}

	cards, err := s.cards.CreateFlashcards(r.Context(), req.UserID, req.Flashcards)
	if err != nil {
		writeError(w, err, errCardNotFound)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"message":    fmt.Sprintf("Successfully imported %d flashcards", len(cards)),
		"flashcards": cardViews(cards),
	})
}

func (s *Server) handleGetFlashcard(w http.ResponseWriter, r *http.Request) {
	userID, ok := queryUser(w, r)
	if !ok {
		return
	}
	c, err := s.cards.GetFlashcard(r.Context(), userID, r.PathValue("id"))
	if err != nil {
		writeError(w, err, errCardNotFound)
		return
	}
	writeJSON(w, http.StatusOK, cardViewOf(c))
}

func (s *Server) handleUpdateFlashcard(w http.ResponseWriter, r *http.Request) {
	var req cardRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	if req.UserID == "" {
		writeMessage(w, http.StatusBadRequest, errUserRequired)
		return
	}
	if req.Question == "" && req.Answer == "" && req.Category == "" {
		writeMessage(w, http.StatusBadRequest, "Please provide fields to update")
		return
	}

	c, err := s.cards.UpdateFlashcard(r.Context(), store.Flashcard{
		ID:       r.PathValue("id"),
		UserID:   req.UserID,
		Question: req.Question,
		Answer:   req.Answer,
		Category: req.Category,
	})
	if err != nil {
		writeError(w, err, errCardNotFound)
		return
	}
	writeJSON(w, http.StatusOK, cardViewOf(c))
}

func (s *Server) handleDeleteFlashcard(w http.ResponseWriter, r *http.Request) {
	userID, ok := queryUser(w, r)
	if !ok {
		return
	}
	if err := s.cards.DeleteFlashcard(r.Context(), userID, r.PathValue("id")); err != nil {
		writeError(w, err, errCardNotFound)
		return
	}
	writeMessage(w, http.StatusOK, "Flashcard permanently deleted")
}

// Responses of the card transitions.

func trashedMessage(store.Flashcard) map[string]any {
	return map[string]any{"message": "Flashcard moved to trash"}
}

func restoredMessage(store.Flashcard) map[string]any {
	return map[string]any{"message": "Flashcard restored from trash"}
}

func favoriteMessage(c store.Flashcard) map[string]any {
	msg := "Flashcard removed from favorites"
	if c.Status == store.StatusFavorite {
		msg = "Flashcard marked as favorite"
	}
	return map[string]any{"message": msg, "status": c.Status}
}

func reviewMessage(c store.Flashcard) map[string]any {
	var last time.Time
	if c.LastReviewed != nil {
		last = *c.LastReviewed
	}
	return map[string]any{
		"message":      "Flashcard review tracked",
		"reviewCount":  c.ReviewCount,
		"lastReviewed": last,
	}
}

// cardTransition adapts a flashcard change to a handler that answers with
// respond's body.
func (s *Server) cardTransition(
	change func(ctx context.Context, userID, id string) (store.Flashcard, error),
	respond func(store.Flashcard) map[string]any,
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := bodyUser(w, r)
		if !ok {
			return
		}
		c, err := change(r.Context(), userID, r.PathValue("id"))
		if err != nil {
			writeError(w, err, errCardNotFound)
			return
		}
		writeJSON(w, http.StatusOK, respond(c))
	}
}

func (s *Server) handleAddFlashcardImage(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UserID  string `json:"user_id"`
		FileURL string `json:"file_url"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	if req.UserID == "" {
		writeMessage(w, http.StatusBadRequest, errUserRequired)
		return
	}
	if req.FileURL == "" {
		writeMessage(w, http.StatusBadRequest, "File URL is required")
		return
	}

	img, err := s.cards.AddFlashcardImage(r.Context(), req.UserID, r.PathValue("id"), req.FileURL)
	if err != nil {
		writeError(w, err, errCardNotFound)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"message": "Image added to flashcard",
		"file":    img,
	})
}

func (s *Server) handleFlashcardImages(w http.ResponseWriter, r *http.Request) {
	userID, ok := queryUser(w, r)
	if !ok {
		return
	}
	imgs, err := s.cards.FlashcardImages(r.Context(), userID, r.PathValue("id"))
	if err != nil {
		writeError(w, err, errCardNotFound)
		return
	}
	writeJSON(w, http.StatusOK, imgs)
}
