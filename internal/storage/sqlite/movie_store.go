// Package sqlite provides the SQLite-backed movie cache.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/JakeFAU/watchrec/internal/catalog"
)

const createTable = `
CREATE TABLE IF NOT EXISTS movies (
	tmdb_id INTEGER PRIMARY KEY,
	title TEXT,
	genres TEXT,
	overview TEXT,
	cast_list TEXT,
	directors TEXT,
	keywords TEXT,
	popularity REAL,
	poster TEXT
)`

const upsertMovie = `
INSERT OR REPLACE INTO movies
	(tmdb_id, title, genres, overview, cast_list, directors, keywords, popularity, poster)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`

const selectMovies = `
SELECT tmdb_id, title, genres, overview, cast_list, directors, keywords, popularity, poster
FROM movies
ORDER BY tmdb_id`

// MovieStore implements catalog.Store on a single SQLite file.
type MovieStore struct {
	db *sql.DB
}

var _ catalog.Store = (*MovieStore)(nil)

// NewMovieStore opens the database file at path. The file is created on first write.
func NewMovieStore(path string) (*MovieStore, error) {
	if path == "" {
		return nil, fmt.Errorf("store.path is required")
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	// One writer at a time; SQLite serializes anyway.
	db.SetMaxOpenConns(1)
	return &MovieStore{db: db}, nil
}

// NewMovieStoreWithDB wraps an already opened handle (primarily for testing).
func NewMovieStoreWithDB(db *sql.DB) (*MovieStore, error) {
	if db == nil {
		return nil, fmt.Errorf("db is required")
	}
	return &MovieStore{db: db}, nil
}

// Init creates the movies table. Safe to call on every start.
func (s *MovieStore) Init(ctx context.Context) error {
	return s.withConn(ctx, func(conn *sql.Conn) error {
		if _, err := conn.ExecContext(ctx, createTable); err != nil {
			return fmt.Errorf("create movies table: %w", err)
		}
		return nil
	})
}

// Upsert writes the movie, replacing any row with the same catalog id.
func (s *MovieStore) Upsert(ctx context.Context, movie catalog.Movie) error {
	if err := movie.Validate(); err != nil {
		return err
	}
	return s.withConn(ctx, func(conn *sql.Conn) error {
		_, err := conn.ExecContext(ctx, upsertMovie,
			movie.CatalogID,
			movie.Title,
			catalog.JoinList(movie.Genres),
			movie.Overview,
			catalog.JoinList(movie.Cast),
			catalog.JoinList(movie.Directors),
			catalog.JoinList(movie.Keywords),
			movie.Popularity,
			movie.Poster,
		)
		if err != nil {
			return fmt.Errorf("upsert movie %d: %w", movie.CatalogID, err)
		}
		return nil
	})
}

// ScanAll returns every row. tmdb_id aliases the rowid, so catalog id order is
// the table's natural scan order.
func (s *MovieStore) ScanAll(ctx context.Context) ([]catalog.Movie, error) {
	var movies []catalog.Movie
	err := s.withConn(ctx, func(conn *sql.Conn) error {
		rows, err := conn.QueryContext(ctx, selectMovies)
		if err != nil {
			return fmt.Errorf("query movies: %w", err)
		}
		defer rows.Close()
		for rows.Next() {
			movie, err := scanMovie(rows)
			if err != nil {
				return err
			}
			movies = append(movies, movie)
		}
		if err := rows.Err(); err != nil {
			return fmt.Errorf("iterate movies: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return movies, nil
}

// Close releases the database handle.
func (s *MovieStore) Close() error {
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("close sqlite: %w", err)
	}
	return nil
}

// withConn scopes a single connection to fn and always releases it.
func (s *MovieStore) withConn(ctx context.Context, fn func(*sql.Conn) error) error {
	conn, err := s.db.Conn(ctx)
	if err != nil {
		return fmt.Errorf("acquire sqlite connection: %w", err)
	}
	defer conn.Close() //nolint:errcheck // returning the conn to the pool
	return fn(conn)
}

func scanMovie(rows *sql.Rows) (catalog.Movie, error) {
	var (
		movie                         catalog.Movie
		title, genres, overview, cast sql.NullString
		directors, keywords, poster   sql.NullString
		popularity                    sql.NullFloat64
	)
	if err := rows.Scan(
		&movie.CatalogID,
		&title,
		&genres,
		&overview,
		&cast,
		&directors,
		&keywords,
		&popularity,
		&poster,
	); err != nil {
		return catalog.Movie{}, fmt.Errorf("scan movie: %w", err)
	}
	movie.Title = title.String
	movie.Genres = catalog.SplitList(genres.String)
	movie.Overview = overview.String
	movie.Cast = catalog.SplitList(cast.String)
	movie.Directors = catalog.SplitList(directors.String)
	movie.Keywords = catalog.SplitList(keywords.String)
	movie.Popularity = popularity.Float64
	if poster.Valid {
		p := poster.String
		movie.Poster = &p
	}
	return movie, nil
}
