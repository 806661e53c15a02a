package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"slices"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// FlashcardCategories are offered to every user, whether or not they have
// filed a card under them. Batch imports fall back to the last one.
var FlashcardCategories = []string{"Math", "Science", "History", "Language", "Programming", "Other"}

const otherCategory = "Other"

// Flashcard is a study card. Question and Answer hold raw formatted text.
type Flashcard struct {
	ID           string     `json:"id"`
	UserID       string     `json:"user_id"`
	Question     string     `json:"question"`
	Answer       string     `json:"answer"`
	Category     string     `json:"category"`
	Status       Status     `json:"status"`
	ReviewCount  int        `json:"reviewCount"`
	LastReviewed *time.Time `json:"lastReviewed,omitempty"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
}

// FlashcardQuery filters ListFlashcards results.
type FlashcardQuery struct {
	UserID string
	// Status limits results to one status. Empty means every status.
	Status Status
	// Category limits results to one category. Empty or "All" means any.
	Category string
	// Search keeps cards whose question or answer contains it, ignoring case.
	Search string
}

// CategoryCount is the number of live cards filed under one category.
type CategoryCount struct {
	Category string `json:"_id"`
	Count    int    `json:"count"`
}

// FlashcardStats summarises a user's flashcards for the dashboard.
type FlashcardStats struct {
	TotalCount        int             `json:"totalCount"`
	CategoryStats     []CategoryCount `json:"categoryStats"`
	ReviewedLast7Days int             `json:"reviewedLast7Days"`
	FavoriteCount     int             `json:"favoriteCount"`
}

// ExportedFlashcard is the portable form of a card, accepted back by
// CreateFlashcards.
type ExportedFlashcard struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
	Category string `json:"category"`
}

// FlashcardImage is an image URL attached to a card.
type FlashcardImage struct {
	ID          string    `json:"id"`
	FlashcardID string    `json:"flashcard_id"`
	FileURL     string    `json:"file_url"`
	CreatedAt   time.Time `json:"createdAt"`
}

const flashcardColumns = `id, user_id, question, answer, category, status, review_count, last_reviewed, created, updated`

func scanFlashcard(row scanner) (Flashcard, error) {
	var c Flashcard
	var reviewed sql.NullInt64
	var created, updated int64
	if err := row.Scan(&c.ID, &c.UserID, &c.Question, &c.Answer, &c.Category, &c.Status,
		&c.ReviewCount, &reviewed, &created, &updated); err != nil {
		return Flashcard{}, err
	}
	if reviewed.Valid {
		t := time.UnixMilli(reviewed.Int64)
		c.LastReviewed = &t
	}
	c.CreatedAt = time.UnixMilli(created)
	c.UpdatedAt = time.UnixMilli(updated)
	return c, nil
}

func validateFlashcard(c Flashcard) error {
	var errs []error
	if c.UserID == "" {
		errs = append(errs, errors.New("user id is required"))
	}
	if strings.TrimSpace(c.Question) == "" {
		errs = append(errs, errors.New("question is required"))
	}
	if strings.TrimSpace(c.Answer) == "" {
		errs = append(errs, errors.New("answer is required"))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalid, errors.Join(errs...))
	}
	return nil
}

func (s *Store) insertFlashcard(ctx context.Context, ex execer, c *Flashcard) error {
	c.ID = uuid.NewString()
	c.CreatedAt = s.timestamp()
	c.UpdatedAt = c.CreatedAt
	_, err := ex.ExecContext(ctx,
		`INSERT INTO flashcards (`+flashcardColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.UserID, c.Question, c.Answer, c.Category, c.Status, c.ReviewCount, nil,
		c.CreatedAt.UnixMilli(), c.UpdatedAt.UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("insert flashcard: %w", err)
	}
	return nil
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// CreateFlashcard validates and inserts a new card. Question, answer and
// category are required.
func (s *Store) CreateFlashcard(ctx context.Context, c Flashcard) (Flashcard, error) {
	if err := validateFlashcard(c); err != nil {
		return Flashcard{}, err
	}
	c.Category = strings.TrimSpace(c.Category)
	if c.Category == "" {
		return Flashcard{}, fmt.Errorf("%w: category is required", ErrInvalid)
	}
	if c.Status == "" {
		c.Status = StatusActive
	} else if _, err := ParseStatus(string(c.Status)); err != nil {
		return Flashcard{}, err
	}
	c.ReviewCount, c.LastReviewed = 0, nil

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.insertFlashcard(ctx, s.db, &c); err != nil {
		return Flashcard{}, err
	}
	return c, nil
}

// CreateFlashcards imports cards in one transaction. Every card needs a
// question and an answer; categories outside FlashcardCategories become
// "Other". Nothing is inserted when any card is invalid.
func (s *Store) CreateFlashcards(ctx context.Context, userID string, cards []ExportedFlashcard) ([]Flashcard, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}
	if len(cards) == 0 {
		return nil, fmt.Errorf("%w: no flashcards to import", ErrInvalid)
	}
	out := make([]Flashcard, len(cards))
	for i, in := range cards {
		c := Flashcard{UserID: userID, Question: in.Question, Answer: in.Answer, Category: in.Category, Status: StatusActive}
		if err := validateFlashcard(c); err != nil {
			return nil, fmt.Errorf("flashcard %d: %w", i+1, err)
		}
		if !slices.Contains(FlashcardCategories, c.Category) {
			c.Category = otherCategory
		}
		out[i] = c
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin import: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit
	for i := range out {
		if err := s.insertFlashcard(ctx, tx, &out[i]); err != nil {
			return nil, err
		}
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit import: %w", err)
	}
	log.Info().Int("count", len(out)).Str("user", userID).Msg("imported flashcards")
	return out, nil
}

// GetFlashcard returns the card with the given id owned by userID.
func (s *Store) GetFlashcard(ctx context.Context, userID, id string) (Flashcard, error) {
	if err := requireUser(userID); err != nil {
		return Flashcard{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.getFlashcard(ctx, userID, id)
}

func (s *Store) getFlashcard(ctx context.Context, userID, id string) (Flashcard, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+flashcardColumns+` FROM flashcards WHERE id = ? AND user_id = ?`, id, userID)
	c, err := scanFlashcard(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Flashcard{}, ErrNotFound
	}
	if err != nil {
		return Flashcard{}, fmt.Errorf("get flashcard %s: %w", id, err)
	}
	return c, nil
}

// ListFlashcards returns a user's cards, most recently updated first.
func (s *Store) ListFlashcards(ctx context.Context, q FlashcardQuery) ([]Flashcard, error) {
	if err := requireUser(q.UserID); err != nil {
		return nil, err
	}

	query := `SELECT ` + flashcardColumns + ` FROM flashcards WHERE user_id = ?`
	args := []any{q.UserID}
	if q.Status != "" {
		if _, err := ParseStatus(string(q.Status)); err != nil {
			return nil, err
		}
		query += ` AND status = ?`
		args = append(args, q.Status)
	}
	if q.Category != "" && q.Category != "All" {
		query += ` AND category = ?`
		args = append(args, q.Category)
	}
	query += ` ORDER BY updated DESC, rowid DESC`

	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list flashcards: %w", err)
	}
	defer rows.Close()

	needle := normalizeQuery(q.Search)
	cards := []Flashcard{}
	for rows.Next() {
		c, err := scanFlashcard(rows)
		if err != nil {
			return nil, fmt.Errorf("scan flashcard: %w", err)
		}
		if needle != "" &&
			!strings.Contains(strings.ToLower(c.Question), needle) &&
			!strings.Contains(strings.ToLower(c.Answer), needle) {
			continue
		}
		cards = append(cards, c)
	}
	return cards, rows.Err()
}

// UpdateFlashcard overwrites the non-empty question, answer and category of
// the stored card. At least one of them must be set.
func (s *Store) UpdateFlashcard(ctx context.Context, c Flashcard) (Flashcard, error) {
	if err := requireUser(c.UserID); err != nil {
		return Flashcard{}, err
	}
	if c.Question == "" && c.Answer == "" && c.Category == "" {
		return Flashcard{}, fmt.Errorf("%w: provide fields to update", ErrInvalid)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	cur, err := s.getFlashcard(ctx, c.UserID, c.ID)
	if err != nil {
		return Flashcard{}, err
	}
	if c.Question != "" {
		cur.Question = c.Question
	}
	if c.Answer != "" {
		cur.Answer = c.Answer
	}
	if c.Category != "" {
		cur.Category = c.Category
	}
	return cur, s.saveFlashcard(ctx, &cur)
}

func (s *Store) saveFlashcard(ctx context.Context, c *Flashcard) error {
	c.UpdatedAt = s.timestamp()
	var reviewed any
	if c.LastReviewed != nil {
		reviewed = c.LastReviewed.UnixMilli()
	}
	_, err := s.db.ExecContext(ctx,
		`UPDATE flashcards SET question = ?, answer = ?, category = ?, status = ?,
		 review_count = ?, last_reviewed = ?, updated = ?
		 WHERE id = ? AND user_id = ?`,
		c.Question, c.Answer, c.Category, c.Status, c.ReviewCount, reviewed,
		c.UpdatedAt.UnixMilli(), c.ID, c.UserID,
	)
	if err != nil {
		return fmt.Errorf("update flashcard %s: %w", c.ID, err)
	}
	return nil
}

// changeFlashcard loads a card, applies change and saves it. change returns
// false when the card may not be changed.
func (s *Store) changeFlashcard(ctx context.Context, userID, id string, change func(*Flashcard) bool) (Flashcard, error) {
	if err := requireUser(userID); err != nil {
		return Flashcard{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	c, err := s.getFlashcard(ctx, userID, id)
	if err != nil {
		return Flashcard{}, err
	}
	if !change(&c) {
		return Flashcard{}, ErrNotFound
	}
	return c, s.saveFlashcard(ctx, &c)
}

func (s *Store) setFlashcardStatus(ctx context.Context, userID, id string, next func(Status) (Status, bool)) (Flashcard, error) {
	return s.changeFlashcard(ctx, userID, id, func(c *Flashcard) bool {
		st, ok := next(c.Status)
		c.Status = st
		return ok
	})
}

// TrashFlashcard soft-deletes a card.
func (s *Store) TrashFlashcard(ctx context.Context, userID, id string) (Flashcard, error) {
	return s.setFlashcardStatus(ctx, userID, id, toTrash)
}

// RestoreFlashcard brings a trashed card back. Cards not in the trash are
// reported as ErrNotFound.
func (s *Store) RestoreFlashcard(ctx context.Context, userID, id string) (Flashcard, error) {
	return s.setFlashcardStatus(ctx, userID, id, outOfTrash)
}

// ToggleFlashcardFavorite flips a card between favorite and active.
func (s *Store) ToggleFlashcardFavorite(ctx context.Context, userID, id string) (Flashcard, error) {
	return s.setFlashcardStatus(ctx, userID, id, toggleFavorite)
}

// ReviewFlashcard records one study pass over a card.
func (s *Store) ReviewFlashcard(ctx context.Context, userID, id string) (Flashcard, error) {
	return s.changeFlashcard(ctx, userID, id, func(c *Flashcard) bool {
		now := s.timestamp()
		c.ReviewCount++
		c.LastReviewed = &now
		return true
	})
}

// DeleteFlashcard permanently removes a card and its images.
func (s *Store) DeleteFlashcard(ctx context.Context, userID, id string) error {
	if err := s.deleteOne(ctx, "flashcards", userID, id); err != nil {
		return err
	}
	return s.dropOrphanImages(ctx)
}

// EmptyFlashcardTrash permanently removes every trashed card of a user and
// returns how many were deleted.
func (s *Store) EmptyFlashcardTrash(ctx context.Context, userID string) (int64, error) {
	n, err := s.deleteTrash(ctx, "flashcards", userID)
	if err != nil || n == 0 {
		return n, err
	}
	return n, s.dropOrphanImages(ctx)
}

func (s *Store) dropOrphanImages(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM flashcard_images WHERE flashcard_id NOT IN (SELECT id FROM flashcards)`)
	if err != nil {
		return fmt.Errorf("drop flashcard images: %w", err)
	}
	return nil
}

// FlashcardStats counts a user's live cards overall and per category, the
// cards reviewed in the last seven days and the favorites.
func (s *Store) FlashcardStats(ctx context.Context, userID string) (FlashcardStats, error) {
	if err := requireUser(userID); err != nil {
		return FlashcardStats{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	st := FlashcardStats{CategoryStats: []CategoryCount{}}
	weekAgo := s.timestamp().Add(-7 * 24 * time.Hour).UnixMilli()
	err := s.db.QueryRowContext(ctx, `
		SELECT
			COUNT(CASE WHEN status != ? THEN 1 END),
			COUNT(CASE WHEN last_reviewed >= ? THEN 1 END),
			COUNT(CASE WHEN status = ? THEN 1 END)
		FROM flashcards WHERE user_id = ?`,
		StatusTrash, weekAgo, StatusFavorite, userID,
	).Scan(&st.TotalCount, &st.ReviewedLast7Days, &st.FavoriteCount)
	if err != nil {
		return FlashcardStats{}, fmt.Errorf("count flashcards: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT category, COUNT(*) AS n FROM flashcards
		WHERE user_id = ? AND status != ?
		GROUP BY category ORDER BY n DESC, category`,
		userID, StatusTrash)
	if err != nil {
		return FlashcardStats{}, fmt.Errorf("count flashcard categories: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var cc CategoryCount
		if err := rows.Scan(&cc.Category, &cc.Count); err != nil {
			return FlashcardStats{}, fmt.Errorf("scan category count: %w", err)
		}
		st.CategoryStats = append(st.CategoryStats, cc)
	}
	return st, rows.Err()
}

// FlashcardCategoryList returns FlashcardCategories followed by any other
// categories the user has filed cards under, sorted.
func (s *Store) FlashcardCategoryList(ctx context.Context, userID string) ([]string, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.QueryContext(ctx, `SELECT DISTINCT category FROM flashcards WHERE user_id = ?`, userID)
	if err != nil {
		return nil, fmt.Errorf("list flashcard categories: %w", err)
	}
	defer rows.Close()

	var extra []string
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		if !slices.Contains(FlashcardCategories, c) {
			extra = append(extra, c)
		}
	}
	sort.Strings(extra)
	return append(slices.Clone(FlashcardCategories), extra...), rows.Err()
}

// ExportFlashcards returns the portable form of every live card.
func (s *Store) ExportFlashcards(ctx context.Context, userID string) ([]ExportedFlashcard, error) {
	cards, err := s.ListFlashcards(ctx, FlashcardQuery{UserID: userID})
	if err != nil {
		return nil, err
	}
	out := []ExportedFlashcard{}
	for _, c := range cards {
		if c.Status == StatusTrash {
			continue
		}
		out = append(out, ExportedFlashcard{Question: c.Question, Answer: c.Answer, Category: c.Category})
	}
	return out, nil
}

// AddFlashcardImage attaches an image URL to a card.
func (s *Store) AddFlashcardImage(ctx context.Context, userID, id, fileURL string) (FlashcardImage, error) {
	if strings.TrimSpace(fileURL) == "" {
		return FlashcardImage{}, fmt.Errorf("%w: file url is required", ErrInvalid)
	}
	if err := requireUser(userID); err != nil {
		return FlashcardImage{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.getFlashcard(ctx, userID, id); err != nil {
		return FlashcardImage{}, err
	}
	img := FlashcardImage{ID: uuid.NewString(), FlashcardID: id, FileURL: fileURL, CreatedAt: s.timestamp()}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO flashcard_images (id, flashcard_id, file_url, created) VALUES (?, ?, ?, ?)`,
		img.ID, img.FlashcardID, img.FileURL, img.CreatedAt.UnixMilli())
	if err != nil {
		return FlashcardImage{}, fmt.Errorf("insert flashcard image: %w", err)
	}
	return img, nil
}

// FlashcardImages lists the images attached to a card, oldest first.
func (s *Store) FlashcardImages(ctx context.Context, userID, id string) ([]FlashcardImage, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.getFlashcard(ctx, userID, id); err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, flashcard_id, file_url, created FROM flashcard_images
		 WHERE flashcard_id = ? ORDER BY created, rowid`, id)
	if err != nil {
		return nil, fmt.Errorf("list flashcard images: %w", err)
	}
	defer rows.Close()

	imgs := []FlashcardImage{}
	for rows.Next() {
		var img FlashcardImage
		var created int64
		if err := rows.Scan(&img.ID, &img.FlashcardID, &img.FileURL, &created); err != nil {
			return nil, fmt.Errorf("scan flashcard image: %w", err)
		}
		img.CreatedAt = time.UnixMilli(created)
		imgs = append(imgs, img)
	}
	return imgs, rows.Err()
}
