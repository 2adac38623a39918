package memory

import (
	"context"
	"testing"

	"github.com/JakeFAU/watchrec/internal/catalog"
)

func TestMovieStoreLifecycle(t *testing.T) {
	t.Parallel()

	store := NewMovieStore()
	ctx := context.Background()

	if err := store.Init(ctx); err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	movies, err := store.ScanAll(ctx)
	if err != nil || len(movies) != 0 {
		t.Fatalf("ScanAll() on empty store: movies=%v err=%v", movies, err)
	}

	if err := store.Upsert(ctx, catalog.Movie{CatalogID: 1, Title: "one", Cast: []string{"a"}}); err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}
	if err := store.Upsert(ctx, catalog.Movie{CatalogID: 2, Title: "two"}); err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}
	if err := store.Upsert(ctx, catalog.Movie{CatalogID: 1, Title: "uno"}); err != nil {
		t.Fatalf("Upsert() replace error = %v", err)
	}

	movies, err = store.ScanAll(ctx)
	if err != nil {
		t.Fatalf("ScanAll() error = %v", err)
	}
	if len(movies) != 2 {
		t.Fatalf("expected 2 movies, got %d", len(movies))
	}
	if movies[0].Title != "uno" || movies[0].Cast != nil {
		t.Fatalf("expected full replacement of movie 1, got %+v", movies[0])
	}
	movies[1].Title = "modified"
	if store.movies[1].Title != "two" {
		t.Fatal("expected ScanAll to return a copy")
	}
}

func TestMovieStoreRejectsInvalid(t *testing.T) {
	t.Parallel()

	store := NewMovieStore()
	if err := store.Upsert(context.Background(), catalog.Movie{}); err == nil {
		t.Fatal("expected invalid movie error")
	}
}
