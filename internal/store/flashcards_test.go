package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func mustCreateCard(t *testing.T, s *Store, c Flashcard) Flashcard {
	t.Helper()
	created, err := s.CreateFlashcard(context.Background(), c)
	if err != nil {
		t.Fatalf("CreateFlashcard: %v", err)
	}
	return created
}

func questions(cards []Flashcard) []string {
	out := make([]string, len(cards))
	for i, c := range cards {
		out[i] = c.Question
	}
	return out
}

func TestCreateGetFlashcard(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	created := mustCreateCard(t, s, Flashcard{
		UserID:   "u1",
		Question: "What is **2+2**?",
		Answer:   "1. four",
		Category: "Math",
	})
	if created.ID == "" || created.Status != StatusActive || created.LastReviewed != nil {
		t.Fatalf("unexpected defaults: %+v", created)
	}

	got, err := s.GetFlashcard(ctx, "u1", created.ID)
	if err != nil {
		t.Fatalf("GetFlashcard: %v", err)
	}
	if diff := cmp.Diff(created, got); diff != "" {
		t.Errorf("round trip (-want +got):\n%s", diff)
	}

	if _, err := s.GetFlashcard(ctx, "u2", created.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("other user: got %v, want ErrNotFound", err)
	}
}

func TestCreateFlashcard_Validation(t *testing.T) {
	s := openTestStore(t)
	tests := []struct {
		name string
		card Flashcard
	}{
		{"no user", Flashcard{Question: "q", Answer: "a", Category: "Math"}},
		{"no question", Flashcard{UserID: "u1", Answer: "a", Category: "Math"}},
		{"blank answer", Flashcard{UserID: "u1", Question: "q", Answer: "  ", Category: "Math"}},
		{"no category", Flashcard{UserID: "u1", Question: "q", Answer: "a"}},
		{"bad status", Flashcard{UserID: "u1", Question: "q", Answer: "a", Category: "Math", Status: "gone"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := s.CreateFlashcard(context.Background(), tt.card); !errors.Is(err, ErrInvalid) {
				t.Errorf("got %v, want ErrInvalid", err)
			}
		})
	}
}

func TestListFlashcards_Filters(t *testing.T) {
	s := openTestStore(t)
	tick(s)
	ctx := context.Background()

	mustCreateCard(t, s, Flashcard{UserID: "u1", Question: "Capital of France?", Answer: "Paris", Category: "History"})
	mustCreateCard(t, s, Flashcard{UserID: "u1", Question: "H2O is?", Answer: "Water", Category: "Science"})
	gone := mustCreateCard(t, s, Flashcard{UserID: "u1", Question: "Old", Answer: "card", Category: "Science"})
	mustCreateCard(t, s, Flashcard{UserID: "u2", Question: "Not mine", Answer: "x", Category: "Science"})
	if _, err := s.TrashFlashcard(ctx, "u1", gone.ID); err != nil {
		t.Fatalf("TrashFlashcard: %v", err)
	}

	tests := []struct {
		name string
		q    FlashcardQuery
		want []string
	}{
		{"every status", FlashcardQuery{UserID: "u1"}, []string{"Old", "H2O is?", "Capital of France?"}},
		{"trash only", FlashcardQuery{UserID: "u1", Status: StatusTrash}, []string{"Old"}},
		{"category", FlashcardQuery{UserID: "u1", Category: "Science", Status: StatusActive}, []string{"H2O is?"}},
		{"all categories", FlashcardQuery{UserID: "u1", Category: "All", Status: StatusActive}, []string{"H2O is?", "Capital of France?"}},
		{"search answer", FlashcardQuery{UserID: "u1", Search: "PARIS"}, []string{"Capital of France?"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.ListFlashcards(ctx, tt.q)
			if err != nil {
				t.Fatalf("ListFlashcards: %v", err)
			}
			if diff := cmp.Diff(tt.want, questions(got)); diff != "" {
				t.Errorf("(-want +got):\n%s", diff)
			}
		})
	}
}

func TestUpdateFlashcard(t *testing.T) {
	s := openTestStore(t)
	tick(s)
	ctx := context.Background()
	c := mustCreateCard(t, s, Flashcard{UserID: "u1", Question: "q", Answer: "a", Category: "Math"})

	if _, err := s.UpdateFlashcard(ctx, Flashcard{ID: c.ID, UserID: "u1"}); !errors.Is(err, ErrInvalid) {
		t.Errorf("empty update: got %v, want ErrInvalid", err)
	}

	got, err := s.UpdateFlashcard(ctx, Flashcard{ID: c.ID, UserID: "u1", Answer: "*b*"})
	if err != nil {
		t.Fatalf("UpdateFlashcard: %v", err)
	}
	if got.Question != "q" || got.Answer != "*b*" || got.Category != "Math" {
		t.Errorf("unexpected card: %+v", got)
	}
	if !got.UpdatedAt.After(c.UpdatedAt) {
		t.Error("update time not bumped")
	}

	if _, err := s.UpdateFlashcard(ctx, Flashcard{ID: "missing", UserID: "u1", Answer: "x"}); !errors.Is(err, ErrNotFound) {
		t.Errorf("missing card: got %v", err)
	}
}

func TestFlashcardStatusAndReview(t *testing.T) {
	s := openTestStore(t)
	tick(s)
	ctx := context.Background()
	c := mustCreateCard(t, s, Flashcard{UserID: "u1", Question: "q", Answer: "a", Category: "Math"})

	fav, err := s.ToggleFlashcardFavorite(ctx, "u1", c.ID)
	if err != nil || fav.Status != StatusFavorite {
		t.Fatalf("ToggleFlashcardFavorite: %v, %v", fav.Status, err)
	}
	if _, err := s.RestoreFlashcard(ctx, "u1", c.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("restore outside trash: got %v", err)
	}
	if _, err := s.TrashFlashcard(ctx, "u1", c.ID); err != nil {
		t.Fatalf("TrashFlashcard: %v", err)
	}
	restored, err := s.RestoreFlashcard(ctx, "u1", c.ID)
	if err != nil || restored.Status != StatusActive {
		t.Fatalf("RestoreFlashcard: %v, %v", restored.Status, err)
	}

	for range 2 {
		if _, err := s.ReviewFlashcard(ctx, "u1", c.ID); err != nil {
			t.Fatalf("ReviewFlashcard: %v", err)
		}
	}
	got, err := s.GetFlashcard(ctx, "u1", c.ID)
	if err != nil {
		t.Fatalf("GetFlashcard: %v", err)
	}
	if got.ReviewCount != 2 || got.LastReviewed == nil {
		t.Errorf("review not recorded: %+v", got)
	}
}

func TestCreateFlashcards_Batch(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	_, err := s.CreateFlashcards(ctx, "u1", []ExportedFlashcard{
		{Question: "ok", Answer: "a", Category: "Math"},
		{Question: "", Answer: "a"},
	})
	if !errors.Is(err, ErrInvalid) {
		t.Fatalf("invalid batch: got %v", err)
	}
	if cards, _ := s.ListFlashcards(ctx, FlashcardQuery{UserID: "u1"}); len(cards) != 0 {
		t.Fatalf("invalid batch inserted %d cards", len(cards))
	}

	cards, err := s.CreateFlashcards(ctx, "u1", []ExportedFlashcard{
		{Question: "a", Answer: "1", Category: "Math"},
		{Question: "b", Answer: "2", Category: "Cooking"},
		{Question: "c", Answer: "3"},
	})
	if err != nil {
		t.Fatalf("CreateFlashcards: %v", err)
	}
	var cats []string
	for _, c := range cards {
		cats = append(cats, c.Category)
	}
	if diff := cmp.Diff([]string{"Math", "Other", "Other"}, cats); diff != "" {
		t.Errorf("categories (-want +got):\n%s", diff)
	}

	if _, err := s.CreateFlashcards(ctx, "u1", nil); !errors.Is(err, ErrInvalid) {
		t.Errorf("empty batch: got %v", err)
	}
}

func TestFlashcardStatsAndCategories(t *testing.T) {
	s := openTestStore(t)
	base := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	now := base
	s.now = func() time.Time { return now }
	ctx := context.Background()

	old := mustCreateCard(t, s, Flashcard{UserID: "u1", Question: "old", Answer: "a", Category: "Math"})
	if _, err := s.ReviewFlashcard(ctx, "u1", old.ID); err != nil {
		t.Fatal(err)
	}
	now = base.Add(10 * 24 * time.Hour)

	recent := mustCreateCard(t, s, Flashcard{UserID: "u1", Question: "new", Answer: "a", Category: "Math"})
	if _, err := s.ReviewFlashcard(ctx, "u1", recent.ID); err != nil {
		t.Fatal(err)
	}
	fav := mustCreateCard(t, s, Flashcard{UserID: "u1", Question: "fav", Answer: "a", Category: "Baking"})
	if _, err := s.ToggleFlashcardFavorite(ctx, "u1", fav.ID); err != nil {
		t.Fatal(err)
	}
	gone := mustCreateCard(t, s, Flashcard{UserID: "u1", Question: "gone", Answer: "a", Category: "History"})
	if _, err := s.TrashFlashcard(ctx, "u1", gone.ID); err != nil {
		t.Fatal(err)
	}

	st, err := s.FlashcardStats(ctx, "u1")
	if err != nil {
		t.Fatalf("FlashcardStats: %v", err)
	}
	want := FlashcardStats{
		TotalCount:        3,
		CategoryStats:     []CategoryCount{{"Math", 2}, {"Baking", 1}},
		ReviewedLast7Days: 1,
		FavoriteCount:     1,
	}
	if diff := cmp.Diff(want, st); diff != "" {
		t.Errorf("stats (-want +got):\n%s", diff)
	}

	cats, err := s.FlashcardCategoryList(ctx, "u1")
	if err != nil {
		t.Fatalf("FlashcardCategoryList: %v", err)
	}
	wantCats := append(append([]string{}, FlashcardCategories...), "Baking")
	if diff := cmp.Diff(wantCats, cats); diff != "" {
		t.Errorf("categories (-want +got):\n%s", diff)
	}

	exported, err := s.ExportFlashcards(ctx, "u1")
	if err != nil {
		t.Fatalf("ExportFlashcards: %v", err)
	}
	if len(exported) != 3 {
		t.Errorf("export has %d cards, want 3 live ones", len(exported))
	}
}

func TestFlashcardImagesAndDelete(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	c := mustCreateCard(t, s, Flashcard{UserID: "u1", Question: "q", Answer: "a", Category: "Math"})

	if _, err := s.AddFlashcardImage(ctx, "u1", c.ID, ""); !errors.Is(err, ErrInvalid) {
		t.Errorf("empty url: got %v", err)
	}
	if _, err := s.AddFlashcardImage(ctx, "u2", c.ID, "https://x/y.png"); !errors.Is(err, ErrNotFound) {
		t.Errorf("other user: got %v", err)
	}
	img, err := s.AddFlashcardImage(ctx, "u1", c.ID, "https://x/y.png")
	if err != nil {
		t.Fatalf("AddFlashcardImage: %v", err)
	}
	imgs, err := s.FlashcardImages(ctx, "u1", c.ID)
	if err != nil || len(imgs) != 1 || imgs[0].FileURL != img.FileURL {
		t.Fatalf("FlashcardImages = %+v, %v", imgs, err)
	}

	if _, err := s.TrashFlashcard(ctx, "u1", c.ID); err != nil {
		t.Fatal(err)
	}
	n, err := s.EmptyFlashcardTrash(ctx, "u1")
	if err != nil || n != 1 {
		t.Fatalf("EmptyFlashcardTrash = %d, %v", n, err)
	}
	var left int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM flashcard_images`).Scan(&left); err != nil || left != 0 {
		t.Errorf("images left = %d, %v", left, err)
	}
	if err := s.DeleteFlashcard(ctx, "u1", c.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("delete after purge: got %v", err)
	}
}
