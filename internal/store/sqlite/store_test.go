package sqlite

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/hitorimeshi/hitori-server/internal/domain"
	"github.com/hitorimeshi/hitori-server/internal/store"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
	s, err := Open(dbPath, logger)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

type captureEmitter struct {
	changes []store.Change
}

func (c *captureEmitter) Emit(event any) {
	if ch, ok := event.(store.Change); ok {
		c.changes = append(c.changes, ch)
	}
}

func makeTestRestaurant(id string, created time.Time) *domain.Restaurant {
	return &domain.Restaurant{
		ID:           id,
		Name:         "Torikizoku " + id,
		Cities:       []string{"Tokyo"},
		Cuisine:      domain.CuisineIzakaya,
		Style:        domain.StyleAlaCarte,
		Price:        2500,
		AlcoholType:  domain.AlcoholNomihodai,
		AlcoholPrice: 1500,
		SoloRating:   4,
		Description:  "Counter seats.",
		Tags:         []string{"yakitori"},
		ImageURLs:    nil,
		CreatedAt:    created,
		UpdatedAt:    created,
	}
}

func TestOpen(t *testing.T) {
	s := newTestStore(t)

	var journalMode string
	if err := s.db.QueryRow("PRAGMA journal_mode").Scan(&journalMode); err != nil {
		t.Fatalf("query journal_mode: %v", err)
	}
	if journalMode != "wal" {
		t.Errorf("expected wal, got %s", journalMode)
	}

	if err := s.Ping(context.Background()); err != nil {
		t.Errorf("Ping: %v", err)
	}
}

func TestCreateAndGetRestaurant(t *testing.T) {
	s := newTestStore(t)
	emitter := &captureEmitter{}
	s.SetEmitter(emitter)
	ctx := context.Background()

	created := time.Date(2026, 5, 1, 18, 30, 0, 123456789, time.UTC)
	r := makeTestRestaurant("rst-1", created)

	if err := s.CreateRestaurant(ctx, r); err != nil {
		t.Fatalf("CreateRestaurant: %v", err)
	}

	got, err := s.GetRestaurant(ctx, "rst-1")
	if err != nil {
		t.Fatalf("GetRestaurant: %v", err)
	}

	if got.Name != r.Name {
		t.Errorf("Name: got %q, want %q", got.Name, r.Name)
	}
	if got.Cuisine != domain.CuisineIzakaya || got.Style != domain.StyleAlaCarte || got.AlcoholType != domain.AlcoholNomihodai {
		t.Errorf("enums did not round-trip: %+v", got)
	}
	if len(got.Cities) != 1 || got.Cities[0] != "Tokyo" {
		t.Errorf("Cities: got %v", got.Cities)
	}
	if got.ImageURLs == nil || len(got.ImageURLs) != 0 {
		t.Errorf("ImageURLs: want empty non-nil slice, got %#v", got.ImageURLs)
	}
	if !got.CreatedAt.Equal(created) {
		t.Errorf("CreatedAt: got %v, want %v", got.CreatedAt, created)
	}

	if len(emitter.changes) != 1 || emitter.changes[0].Kind != store.ChangeCreated {
		t.Errorf("expected one created change, got %+v", emitter.changes)
	}
}

func TestCreateRestaurant_Duplicate(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	r := makeTestRestaurant("rst-1", time.Now())
	if err := s.CreateRestaurant(ctx, r); err != nil {
		t.Fatalf("CreateRestaurant: %v", err)
	}
	if err := s.CreateRestaurant(ctx, r); !errors.Is(err, store.ErrAlreadyExists) {
		t.Errorf("expected ErrAlreadyExists, got %v", err)
	}
}

func TestCreateRestaurant_RatingCheck(t *testing.T) {
	s := newTestStore(t)
	r := makeTestRestaurant("rst-1", time.Now())
	r.SoloRating = 9

	if err := s.CreateRestaurant(context.Background(), r); !errors.Is(err, store.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput, got %v", err)
	}
}

func TestGetRestaurant_NotFound(t *testing.T) {
	s := newTestStore(t)
	if _, err := s.GetRestaurant(context.Background(), "missing"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestUpdateRestaurant(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	created := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	if err := s.CreateRestaurant(ctx, makeTestRestaurant("rst-1", created)); err != nil {
		t.Fatalf("CreateRestaurant: %v", err)
	}

	edited := makeTestRestaurant("rst-1", created.Add(time.Hour)) // created_at must be ignored
	edited.Name = "Torikizoku Shibuya"
	edited.ImageURLs = []string{"A", "B", "C"}
	edited.UpdatedAt = created.Add(2 * time.Hour)

	if err := s.UpdateRestaurant(ctx, edited); err != nil {
		t.Fatalf("UpdateRestaurant: %v", err)
	}

	got, err := s.GetRestaurant(ctx, "rst-1")
	if err != nil {
		t.Fatalf("GetRestaurant: %v", err)
	}
	if got.Name != "Torikizoku Shibuya" {
		t.Errorf("Name: got %q", got.Name)
	}
	if len(got.ImageURLs) != 3 || got.ImageURLs[0] != "A" || got.ImageURLs[2] != "C" {
		t.Errorf("ImageURLs: got %v", got.ImageURLs)
	}
	if !got.CreatedAt.Equal(created) {
		t.Errorf("CreatedAt changed: got %v, want %v", got.CreatedAt, created)
	}
	if !got.UpdatedAt.Equal(edited.UpdatedAt) {
		t.Errorf("UpdatedAt: got %v, want %v", got.UpdatedAt, edited.UpdatedAt)
	}
}

func TestUpdateRestaurant_NotFound(t *testing.T) {
	s := newTestStore(t)
	err := s.UpdateRestaurant(context.Background(), makeTestRestaurant("ghost", time.Now()))
	if !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestListRestaurants_NewestFirst(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	for _, r := range []*domain.Restaurant{
		makeTestRestaurant("old", base),
		makeTestRestaurant("new", base.Add(2*time.Second)),
		makeTestRestaurant("tie-b", base.Add(time.Second)),
		makeTestRestaurant("tie-a", base.Add(time.Second)),
		makeTestRestaurant("frac", base.Add(1500*time.Millisecond)),
	} {
		if err := s.CreateRestaurant(ctx, r); err != nil {
			t.Fatalf("CreateRestaurant(%s): %v", r.ID, err)
		}
	}

	list, err := s.ListRestaurants(ctx)
	if err != nil {
		t.Fatalf("ListRestaurants: %v", err)
	}

	want := []string{"new", "frac", "tie-a", "tie-b", "old"}
	if len(list) != len(want) {
		t.Fatalf("got %d restaurants, want %d", len(list), len(want))
	}
	for i, r := range list {
		if r.ID != want[i] {
			t.Errorf("position %d: got %s, want %s", i, r.ID, want[i])
		}
	}
}
