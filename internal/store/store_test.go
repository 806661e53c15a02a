package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// tick makes the store clock advance one second per call.
func tick(s *Store) {
	base := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	n := 0
	s.now = func() time.Time {
		n++
		return base.Add(time.Duration(n) * time.Second)
	}
}

func mustCreate(t *testing.T, s *Store, n Note) Note {
	t.Helper()
	created, err := s.Create(context.Background(), n)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	return created
}

func titles(notes []Note) []string {
	out := make([]string, len(notes))
	for i, n := range notes {
		out[i] = n.Title
	}
	return out
}

func TestCreateGet(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	created := mustCreate(t, s, Note{
		UserID:   "u1",
		Title:    "Books to Read",
		Content:  "1. Atomic Habits\n2. Deep Work",
		Category: "Personal",
	})
	if created.ID == "" {
		t.Fatal("expected an id")
	}

	got, err := s.Get(ctx, "u1", created.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	want := Note{
		ID:       created.ID,
		UserID:   "u1",
		Title:    "Books to Read",
		Content:  "1. Atomic Habits\n2. Deep Work",
		Category: "personal",
		Status:   StatusActive,
	}
	if diff := cmp.Diff(want, got, cmpopts.IgnoreFields(Note{}, "CreatedAt", "UpdatedAt")); diff != "" {
		t.Errorf("Get mismatch (-want +got):\n%s", diff)
	}
	if !got.CreatedAt.Equal(created.CreatedAt) {
		t.Errorf("created %v, want %v", got.CreatedAt, created.CreatedAt)
	}

	// Other users cannot see it.
	if _, err := s.Get(ctx, "u2", created.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound for other user, got %v", err)
	}
}

func TestCreate_Validation(t *testing.T) {
	s := openTestStore(t)

	tests := []struct {
		name string
		note Note
	}{
		{"no user", Note{Title: "t", Content: "c"}},
		{"no title", Note{UserID: "u", Content: "c"}},
		{"no content", Note{UserID: "u", Title: "t"}},
		{"bad status", Note{UserID: "u", Title: "t", Content: "c", Status: "archived"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := s.Create(context.Background(), tt.note); !errors.Is(err, ErrInvalid) {
				t.Errorf("expected ErrInvalid, got %v", err)
			}
		})
	}
}

func TestList_OrderAndFilters(t *testing.T) {
	s := openTestStore(t)
	tick(s)
	ctx := context.Background()

	a := mustCreate(t, s, Note{UserID: "u1", Title: "Grocery List", Content: "- Apples\n- Bread"})
	mustCreate(t, s, Note{UserID: "u1", Title: "Project Ideas", Content: "- Recipe manager"})
	mustCreate(t, s, Note{UserID: "u2", Title: "Someone else", Content: "x"})
	c := mustCreate(t, s, Note{UserID: "u1", Title: "CSS Grid", Content: "grid-area"})

	if _, err := s.Trash(ctx, "u1", c.ID); err != nil {
		t.Fatalf("Trash: %v", err)
	}
	// Touching a moves it to the front.
	if _, err := s.Update(ctx, Note{ID: a.ID, UserID: "u1", Content: "- Apples\n- Bread\n- Milk"}); err != nil {
		t.Fatalf("Update: %v", err)
	}

	tests := []struct {
		name string
		opts ListOptions
		want []string
	}{
		{"default hides trash", ListOptions{UserID: "u1"}, []string{"Grocery List", "Project Ideas"}},
		{"trash only", ListOptions{UserID: "u1", Status: StatusTrash}, []string{"CSS Grid"}},
		{"search content", ListOptions{UserID: "u1", Query: "RECIPE"}, []string{"Project Ideas"}},
		{"search title", ListOptions{UserID: "u1", Query: "grocery"}, []string{"Grocery List"}},
		{"limit", ListOptions{UserID: "u1", Limit: 1}, []string{"Grocery List"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.List(ctx, tt.opts)
			if err != nil {
				t.Fatalf("List: %v", err)
			}
			if diff := cmp.Diff(tt.want, titles(got)); diff != "" {
				t.Errorf("titles (-want +got):\n%s", diff)
			}
		})
	}

	if _, err := s.List(ctx, ListOptions{}); !errors.Is(err, ErrInvalid) {
		t.Errorf("expected ErrInvalid without user, got %v", err)
	}
}

func TestUpdate_KeepsUnsetFields(t *testing.T) {
	s := openTestStore(t)
	tick(s)
	ctx := context.Background()

	n := mustCreate(t, s, Note{UserID: "u1", Title: "Old", Content: "body", CoverImage: "https://img/a.png"})

	got, err := s.Update(ctx, Note{ID: n.ID, UserID: "u1", Title: "New", Category: "WORK"})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if got.Title != "New" || got.Content != "body" || got.CoverImage != "https://img/a.png" || got.Category != "work" {
		t.Errorf("unexpected note after update: %+v", got)
	}
	if !got.UpdatedAt.After(n.UpdatedAt) {
		t.Errorf("updatedAt not bumped: %v <= %v", got.UpdatedAt, n.UpdatedAt)
	}

	if _, err := s.Update(ctx, Note{ID: "missing", UserID: "u1", Title: "x"}); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestStatusTransitions(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	n := mustCreate(t, s, Note{UserID: "u1", Title: "t", Content: "c"})

	fav, err := s.ToggleFavorite(ctx, "u1", n.ID)
	if err != nil || fav.Status != StatusFavorite {
		t.Fatalf("ToggleFavorite: %v, %v", fav.Status, err)
	}
	fav, err = s.ToggleFavorite(ctx, "u1", n.ID)
	if err != nil || fav.Status != StatusActive {
		t.Fatalf("ToggleFavorite back: %v, %v", fav.Status, err)
	}

	// Restore only works from the trash.
	if _, err := s.Restore(ctx, "u1", n.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("restore of active note: got %v", err)
	}
	if _, err := s.Trash(ctx, "u1", n.ID); err != nil {
		t.Fatalf("Trash: %v", err)
	}
	restored, err := s.Restore(ctx, "u1", n.ID)
	if err != nil || restored.Status != StatusActive {
		t.Fatalf("Restore: %v, %v", restored.Status, err)
	}
}

func TestDeleteAndEmptyTrash(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	keep := mustCreate(t, s, Note{UserID: "u1", Title: "keep", Content: "c"})
	for _, title := range []string{"a", "b"} {
		n := mustCreate(t, s, Note{UserID: "u1", Title: title, Content: "c"})
		if _, err := s.Trash(ctx, "u1", n.ID); err != nil {
			t.Fatalf("Trash: %v", err)
		}
	}

	deleted, err := s.EmptyTrash(ctx, "u1")
	if err != nil || deleted != 2 {
		t.Fatalf("EmptyTrash = %d, %v; want 2", deleted, err)
	}

	if err := s.Delete(ctx, "u2", keep.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("delete by other user: got %v", err)
	}
	if err := s.Delete(ctx, "u1", keep.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := s.Get(ctx, "u1", keep.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestStats(t *testing.T) {
	s := openTestStore(t)
	tick(s)
	ctx := context.Background()

	for _, title := range []string{"one", "two", "three", "four"} {
		mustCreate(t, s, Note{UserID: "u1", Title: title, Content: "c", Category: title})
	}
	trashed := mustCreate(t, s, Note{UserID: "u1", Title: "gone", Content: "c"})
	if _, err := s.Trash(ctx, "u1", trashed.ID); err != nil {
		t.Fatalf("Trash: %v", err)
	}

	st, err := s.Stats(ctx, "u1")
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if st.TotalCount != 4 {
		t.Errorf("total = %d, want 4", st.TotalCount)
	}
	if diff := cmp.Diff([]string{"four", "three", "two"}, titles(st.RecentNotes)); diff != "" {
		t.Errorf("recent (-want +got):\n%s", diff)
	}

	cats, err := s.Categories(ctx, "u1")
	if err != nil {
		t.Fatalf("Categories: %v", err)
	}
	if diff := cmp.Diff([]string{"four", "one", "personal", "three", "two"}, cats); diff != "" {
		t.Errorf("categories (-want +got):\n%s", diff)
	}
}
