package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// Status is the lifecycle state of a note or flashcard.
type Status string

const (
	StatusActive   Status = "active"
	StatusFavorite Status = "favorite"
	StatusTrash    Status = "trash"
)

// ParseStatus validates a status name.
func ParseStatus(s string) (Status, error) {
	switch st := Status(s); st {
	case StatusActive, StatusFavorite, StatusTrash:
		return st, nil
	}
	return "", fmt.Errorf("%w: status %q must be one of active, favorite, trash", ErrInvalid, s)
}

// DefaultCategory is assigned to notes created without one.
const DefaultCategory = "personal"

// Note is a user's note. Content holds the raw formatted text.
type Note struct {
	ID         string    `json:"id"`
	UserID     string    `json:"user_id"`
	Title      string    `json:"title"`
	Content    string    `json:"content"`
	CoverImage string    `json:"cover_image,omitempty"`
	Category   string    `json:"category"`
	Status     Status    `json:"status"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// ListOptions filters List results.
type ListOptions struct {
	UserID string
	// Status limits results to one status. Empty means everything but trash.
	Status Status
	// Query keeps notes whose title or content contains it, ignoring case.
	Query string
	// Limit caps the number of results when positive.
	Limit int
}

// Stats summarises a user's notes for the dashboard.
type Stats struct {
	TotalCount  int    `json:"totalCount"`
	RecentNotes []Note `json:"recentNotes"`
}

const noteColumns = `id, user_id, title, content, cover_image, category, status, created, updated`

type scanner interface {
	Scan(dest ...any) error
}

func scanNote(row scanner) (Note, error) {
	var n Note
	var created, updated int64
	if err := row.Scan(&n.ID, &n.UserID, &n.Title, &n.Content, &n.CoverImage,
		&n.Category, &n.Status, &created, &updated); err != nil {
		return Note{}, err
	}
	n.CreatedAt = time.UnixMilli(created)
	n.UpdatedAt = time.UnixMilli(updated)
	return n, nil
}

func (s *Store) timestamp() time.Time {
	return time.UnixMilli(s.now().UnixMilli())
}

func requireUser(userID string) error {
	if userID == "" {
		return fmt.Errorf("%w: user id is required", ErrInvalid)
	}
	return nil
}

// Create validates and inserts a new note, assigning its ID and timestamps.
func (s *Store) Create(ctx context.Context, n Note) (Note, error) {
	var errs []error
	if n.UserID == "" {
		errs = append(errs, errors.New("user id is required"))
	}
	if n.Title == "" {
		errs = append(errs, errors.New("title is required"))
	}
	if n.Content == "" {
		errs = append(errs, errors.New("content is required"))
	}
	if len(errs) > 0 {
		return Note{}, fmt.Errorf("%w: %w", ErrInvalid, errors.Join(errs...))
	}

	n.Category = normalizeCategory(n.Category)
	if n.Status == "" {
		n.Status = StatusActive
	} else if _, err := ParseStatus(string(n.Status)); err != nil {
		return Note{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	n.ID = uuid.NewString()
	n.CreatedAt = s.timestamp()
	n.UpdatedAt = n.CreatedAt

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO notes (`+noteColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		n.ID, n.UserID, n.Title, n.Content, n.CoverImage, n.Category, n.Status,
		n.CreatedAt.UnixMilli(), n.UpdatedAt.UnixMilli(),
	)
	if err != nil {
		return Note{}, fmt.Errorf("insert note: %w", err)
	}
	return n, nil
}

// Get returns the note with the given id owned by userID.
func (s *Store) Get(ctx context.Context, userID, id string) (Note, error) {
	if err := requireUser(userID); err != nil {
		return Note{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.get(ctx, userID, id)
}

func (s *Store) get(ctx context.Context, userID, id string) (Note, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+noteColumns+` FROM notes WHERE id = ? AND user_id = ?`, id, userID)
	n, err := scanNote(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Note{}, ErrNotFound
	}
	if err != nil {
		return Note{}, fmt.Errorf("get note %s: %w", id, err)
	}
	return n, nil
}

// List returns a user's notes, most recently updated first.
func (s *Store) List(ctx context.Context, opts ListOptions) ([]Note, error) {
	if err := requireUser(opts.UserID); err != nil {
		return nil, err
	}

	query := `SELECT ` + noteColumns + ` FROM notes WHERE user_id = ?`
	args := []any{opts.UserID}
	if opts.Status != "" {
		if _, err := ParseStatus(string(opts.Status)); err != nil {
			return nil, err
		}
		query += ` AND status = ?`
		args = append(args, opts.Status)
	} else {
		query += ` AND status != ?`
		args = append(args, StatusTrash)
	}
	query += ` ORDER BY updated DESC, rowid DESC`

	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list notes: %w", err)
	}
	defer rows.Close()

	needle := normalizeQuery(opts.Query)
	notes := []Note{}
	for rows.Next() {
		n, err := scanNote(rows)
		if err != nil {
			return nil, fmt.Errorf("scan note: %w", err)
		}
		if needle != "" && !matches(n, needle) {
			continue
		}
		notes = append(notes, n)
		if opts.Limit > 0 && len(notes) == opts.Limit {
			break
		}
	}
	return notes, rows.Err()
}

// Update overwrites the non-empty fields of n on the stored note with the
// same ID and user, and bumps its update time.
func (s *Store) Update(ctx context.Context, n Note) (Note, error) {
	if err := requireUser(n.UserID); err != nil {
		return Note{}, err
	}
	if n.Status != "" {
		if _, err := ParseStatus(string(n.Status)); err != nil {
			return Note{}, err
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	cur, err := s.get(ctx, n.UserID, n.ID)
	if err != nil {
		return Note{}, err
	}
	if n.Title != "" {
		cur.Title = n.Title
	}
	if n.Content != "" {
		cur.Content = n.Content
	}
	if n.CoverImage != "" {
		cur.CoverImage = n.CoverImage
	}
	if n.Category != "" {
		cur.Category = normalizeCategory(n.Category)
	}
	if n.Status != "" {
		cur.Status = n.Status
	}
	return cur, s.save(ctx, &cur)
}

// save writes every mutable field of n and stamps its update time.
func (s *Store) save(ctx context.Context, n *Note) error {
	n.UpdatedAt = s.timestamp()
	_, err := s.db.ExecContext(ctx,
		`UPDATE notes SET title = ?, content = ?, cover_image = ?, category = ?, status = ?, updated = ?
		 WHERE id = ? AND user_id = ?`,
		n.Title, n.Content, n.CoverImage, n.Category, n.Status, n.UpdatedAt.UnixMilli(),
		n.ID, n.UserID,
	)
	if err != nil {
		return fmt.Errorf("update note %s: %w", n.ID, err)
	}
	return nil
}

// setStatus moves a note to a new status computed from its current one.
// next returns false when the transition is not allowed.
func (s *Store) setStatus(ctx context.Context, userID, id string, next func(Status) (Status, bool)) (Note, error) {
	if err := requireUser(userID); err != nil {
		return Note{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	n, err := s.get(ctx, userID, id)
	if err != nil {
		return Note{}, err
	}
	st, ok := next(n.Status)
	if !ok {
		return Note{}, ErrNotFound
	}
	n.Status = st
	return n, s.save(ctx, &n)
}

// Status transitions shared by notes and flashcards. Each returns false
// when the move is not allowed from the current status.
var (
	toTrash = func(Status) (Status, bool) { return StatusTrash, true }

	outOfTrash = func(cur Status) (Status, bool) { return StatusActive, cur == StatusTrash }

	toggleFavorite = func(cur Status) (Status, bool) {
		if cur == StatusFavorite {
			return StatusActive, true
		}
		return StatusFavorite, true
	}
)

// Trash soft-deletes a note.
func (s *Store) Trash(ctx context.Context, userID, id string) (Note, error) {
	return s.setStatus(ctx, userID, id, toTrash)
}

// Restore brings a trashed note back. Notes not in the trash are reported
// as ErrNotFound.
func (s *Store) Restore(ctx context.Context, userID, id string) (Note, error) {
	return s.setStatus(ctx, userID, id, outOfTrash)
}

// ToggleFavorite flips a note between favorite and active.
func (s *Store) ToggleFavorite(ctx context.Context, userID, id string) (Note, error) {
	return s.setStatus(ctx, userID, id, toggleFavorite)
}

// Delete permanently removes a note.
func (s *Store) Delete(ctx context.Context, userID, id string) error {
	return s.deleteOne(ctx, "notes", userID, id)
}

// EmptyTrash permanently removes every trashed note of a user and returns
// how many were deleted.
func (s *Store) EmptyTrash(ctx context.Context, userID string) (int64, error) {
	return s.deleteTrash(ctx, "notes", userID)
}

// deleteOne removes the row of table with the given id and owner.
func (s *Store) deleteOne(ctx context.Context, table, userID, id string) error {
	if err := requireUser(userID); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `DELETE FROM `+table+` WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("delete from %s %s: %w", table, id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// deleteTrash removes every trashed row of table owned by userID.
func (s *Store) deleteTrash(ctx context.Context, table, userID string) (int64, error) {
	if err := requireUser(userID); err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `DELETE FROM `+table+` WHERE user_id = ? AND status = ?`, userID, StatusTrash)
	if err != nil {
		return 0, fmt.Errorf("empty %s trash: %w", table, err)
	}
	n, _ := res.RowsAffected()
	if n > 0 {
		log.Info().Int64("deleted", n).Str("user", userID).Str("table", table).Msg("emptied trash")
	}
	return n, nil
}

// Stats returns the number of non-trashed notes and the three most recent.
func (s *Store) Stats(ctx context.Context, userID string) (Stats, error) {
	recent, err := s.List(ctx, ListOptions{UserID: userID, Limit: 3})
	if err != nil {
		return Stats{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var total int
	err = s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM notes WHERE user_id = ? AND status != ?`, userID, StatusTrash,
	).Scan(&total)
	if err != nil {
		return Stats{}, fmt.Errorf("count notes: %w", err)
	}
	return Stats{TotalCount: total, RecentNotes: recent}, nil
}

// Categories returns the distinct categories a user has filed notes under,
// sorted.
func (s *Store) Categories(ctx context.Context, userID string) ([]string, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.QueryContext(ctx, `SELECT DISTINCT category FROM notes WHERE user_id = ?`, userID)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var cats []string
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			continue
		}
		cats = append(cats, c)
	}
	sort.Strings(cats)
	return cats, rows.Err()
}

// --- Helpers ---

func normalizeCategory(c string) string {
	c = strings.ToLower(strings.TrimSpace(c))
	if c == "" {
		return DefaultCategory
	}
	return c
}

// normalizeQuery lowercases and trims a search string.
func normalizeQuery(q string) string {
	return strings.ToLower(strings.TrimSpace(q))
}

func matches(n Note, needle string) bool {
	return strings.Contains(strings.ToLower(n.Title), needle) ||
		strings.Contains(strings.ToLower(n.Content), needle)
}
