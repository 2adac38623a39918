// Package memory provides an in-memory movie store for development and tests.
package memory

import (
	"context"
	"sync"

	"github.com/JakeFAU/watchrec/internal/catalog"
)

// MovieStore keeps movies in insertion order. Replacing a movie keeps its position.
type MovieStore struct {
	mu     sync.RWMutex
	index  map[int64]int
	movies []catalog.Movie
}

var _ catalog.Store = (*MovieStore)(nil)

// NewMovieStore constructs an empty MovieStore.
func NewMovieStore() *MovieStore {
	return &MovieStore{index: make(map[int64]int)}
}

// Init is a no-op; the store is ready once constructed.
func (s *MovieStore) Init(context.Context) error {
	return nil
}

// Upsert stores a copy of movie, replacing any movie with the same catalog id.
func (s *MovieStore) Upsert(_ context.Context, movie catalog.Movie) error {
	if err := movie.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	movie = cloneMovie(movie)
	if i, ok := s.index[movie.CatalogID]; ok {
		s.movies[i] = movie
		return nil
	}
	s.index[movie.CatalogID] = len(s.movies)
	s.movies = append(s.movies, movie)
	return nil
}

// ScanAll returns copies of every stored movie.
func (s *MovieStore) ScanAll(context.Context) ([]catalog.Movie, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.movies) == 0 {
		return nil, nil
	}
	out := make([]catalog.Movie, len(s.movies))
	for i, m := range s.movies {
		out[i] = cloneMovie(m)
	}
	return out, nil
}

// Close is a no-op.
func (s *MovieStore) Close() error {
	return nil
}

func cloneMovie(m catalog.Movie) catalog.Movie {
	cp := m
	cp.Genres = cloneStringSlice(m.Genres)
	cp.Cast = cloneStringSlice(m.Cast)
	cp.Directors = cloneStringSlice(m.Directors)
	cp.Keywords = cloneStringSlice(m.Keywords)
	if m.Poster != nil {
		p := *m.Poster
		cp.Poster = &p
	}
	return cp
}

func cloneStringSlice(src []string) []string {
	if len(src) == 0 {
		return nil
	}
	dst := make([]string, len(src))
	copy(dst, src)
	return dst
}
