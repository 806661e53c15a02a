package server

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/xonecas/starnote/internal/format"
	"github.com/xonecas/starnote/internal/store"
)

const errUserRequired = "User ID is required"

// noteView is a note as returned by the API, with its rendered content.
type noteView struct {
	store.Note
	HTML    string `json:"html"`
	Preview string `json:"preview"`
}

func (s *Server) view(n store.Note) noteView {
	return noteView{
		Note:    n,
		HTML:    format.FormatText(n.Content),
		Preview: format.Preview(n.Content, s.editor.PreviewLength),
	}
}

func (s *Server) views(notes []store.Note) []noteView {
	out := make([]noteView, len(notes))
	for i, n := range notes {
		out[i] = s.view(n)
	}
	return out
}

type noteRequest struct {
	UserID     string `json:"user_id"`
	Title      string `json:"title"`
	Content    string `json:"content"`
	CoverImage string `json:"cover_image"`
	Category   string `json:"category"`
	Status     string `json:"status"`
}

func (s *Server) handleListNotes(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	userID := q.Get("user_id")
	if userID == "" {
		writeMessage(w, http.StatusBadRequest, errUserRequired)
		return
	}

	opts := store.ListOptions{UserID: userID, Query: q.Get("q")}
	if raw := q.Get("status"); raw != "" {
		st, err := store.ParseStatus(raw)
		if err != nil {
			writeMessage(w, http.StatusBadRequest, err.Error())
			return
		}
		opts.Status = st
	}
	if raw := q.Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			writeMessage(w, http.StatusBadRequest, "limit must be a non-negative integer")
			return
		}
		opts.Limit = n
	}

	notes, err := s.notes.List(r.Context(), opts)
	if err != nil {
		writeError(w, err, "Notes not found")
		return
	}
	writeJSON(w, http.StatusOK, s.views(notes))
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("user_id")
	if userID == "" {
		writeMessage(w, http.StatusBadRequest, errUserRequired)
		return
	}
	st, err := s.notes.Stats(r.Context(), userID)
	if err != nil {
		writeError(w, err, "Notes not found")
		return
	}
	writeJSON(w, http.StatusOK, struct {
		TotalCount  int        `json:"totalCount"`
		RecentNotes []noteView `json:"recentNotes"`
	}{st.TotalCount, s.views(st.RecentNotes)})
}

func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("user_id")
	if userID == "" {
		writeMessage(w, http.StatusBadRequest, errUserRequired)
		return
	}
	cats, err := s.notes.Categories(r.Context(), userID)
	if err != nil {
		writeError(w, err, "Notes not found")
		return
	}
	writeJSON(w, http.StatusOK, cats)
}

func (s *Server) handleGetNote(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("user_id")
	if userID == "" {
		writeMessage(w, http.StatusBadRequest, errUserRequired)
		return
	}
	n, err := s.notes.Get(r.Context(), userID, r.PathValue("id"))
	if err != nil {
		writeError(w, err, "Note not found")
		return
	}
	writeJSON(w, http.StatusOK, s.view(n))
}

func (s *Server) handleCreateNote(w http.ResponseWriter, r *http.Request) {
	var req noteRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	if req.UserID == "" {
		writeMessage(w, http.StatusBadRequest, errUserRequired)
		return
	}

	n, err := s.notes.Create(r.Context(), store.Note{
		UserID:     req.UserID,
		Title:      req.Title,
		Content:    req.Content,
		CoverImage: req.CoverImage,
		Category:   req.Category,
		Status:     store.Status(req.Status),
	})
	if err != nil {
		writeError(w, err, "Note not found")
		return
	}
	writeJSON(w, http.StatusCreated, s.view(n))
}

func (s *Server) handleUpdateNote(w http.ResponseWriter, r *http.Request) {
	var req noteRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	if req.UserID == "" {
		writeMessage(w, http.StatusBadRequest, errUserRequired)
		return
	}

	n, err := s.notes.Update(r.Context(), store.Note{
		ID:         r.PathValue("id"),
		UserID:     req.UserID,
		Title:      req.Title,
		Content:    req.Content,
		CoverImage: req.CoverImage,
		Category:   req.Category,
		Status:     store.Status(req.Status),
	})
	if err != nil {
		writeError(w, err, "Note not found")
		return
	}
	writeJSON(w, http.StatusOK, s.view(n))
}

// bodyUser reads the user from an optional JSON body, falling back to the
// user_id query parameter. It writes the error response and returns false
// when there is no user.
func bodyUser(w http.ResponseWriter, r *http.Request) (string, bool) {
	var req struct {
		UserID string `json:"user_id"`
	}
	if err := decodeJSON(w, r, &req); err != nil && !errors.Is(err, io.EOF) {
		writeMessage(w, http.StatusBadRequest, "Invalid JSON body")
		return "", false
	}
	if req.UserID == "" {
		req.UserID = r.URL.Query().Get("user_id")
	}
	if req.UserID == "" {
		writeMessage(w, http.StatusBadRequest, errUserRequired)
		return "", false
	}
	return req.UserID, true
}

// transition adapts a status change to a handler.
func (s *Server) transition(change func(ctx context.Context, userID, id string) (store.Note, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := bodyUser(w, r)
		if !ok {
			return
		}
		n, err := change(r.Context(), userID, r.PathValue("id"))
		if err != nil {
			writeError(w, err, "Note not found")
			return
		}
		writeJSON(w, http.StatusOK, s.view(n))
	}
}

func (s *Server) handleDeleteNote(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("user_id")
	if userID == "" {
		writeMessage(w, http.StatusBadRequest, errUserRequired)
		return
	}
	if err := s.notes.Delete(r.Context(), userID, r.PathValue("id")); err != nil {
		writeError(w, err, "Note not found")
		return
	}
	writeMessage(w, http.StatusOK, "Note permanently deleted")
}

func (s *Server) handleEmptyTrash(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("user_id")
	if userID == "" {
		writeMessage(w, http.StatusBadRequest, errUserRequired)
		return
	}
	n, err := s.notes.EmptyTrash(r.Context(), userID)
	if err != nil {
		writeError(w, err, "Notes not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message":      "Trash emptied successfully",
		"deletedCount": n,
	})
}
