// Package postgres provides Postgres-backed persistence implementations.
package postgres

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/JakeFAU/watchrec/internal/catalog"
)

var validTableName = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// MovieStoreConfig controls the Postgres connection pool used for movie rows.
type MovieStoreConfig struct {
	DSN             string
	Table           string
	MaxConns        int32
	MaxConnLifetime time.Duration
}

type pool interface {
	Exec(context.Context, string, ...any) (pgconn.CommandTag, error)
	Query(context.Context, string, ...any) (pgx.Rows, error)
	Close()
}

// MovieStore writes movie rows into Postgres. Every call borrows a pooled
// connection for its own duration only.
type MovieStore struct {
	pool  pool
	table string
}

var _ catalog.Store = (*MovieStore)(nil)

// NewMovieStore creates a Postgres-backed MovieStore using the provided config.
func NewMovieStore(ctx context.Context, cfg MovieStoreConfig) (*MovieStore, error) {
	if cfg.DSN == "" {
		return nil, fmt.Errorf("store.dsn is required")
	}
	table, err := tableName(cfg.Table)
	if err != nil {
		return nil, err
	}
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("parse postgres dsn: %w", err)
	}
	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = cfg.MaxConns
	}
	if cfg.MaxConnLifetime > 0 {
		poolCfg.MaxConnLifetime = cfg.MaxConnLifetime
	}
	p, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	return &MovieStore{pool: p, table: table}, nil
}

// NewMovieStoreWithPool constructs a store from an existing pool (primarily for testing).
func NewMovieStoreWithPool(p pool, table string) (*MovieStore, error) {
	if p == nil {
		return nil, fmt.Errorf("pool is required")
	}
	name, err := tableName(table)
	if err != nil {
		return nil, err
	}
	return &MovieStore{pool: p, table: name}, nil
}

func tableName(table string) (string, error) {
	if table == "" {
		table = "movies"
	}
	if !validTableName.MatchString(table) {
		return "", fmt.Errorf("invalid table name %q", table)
	}
	return table, nil
}

// Init creates the movie table if it is missing.
func (s *MovieStore) Init(ctx context.Context) error {
	query := fmt.Sprintf(`
CREATE TABLE IF NOT EXISTS %s (
	tmdb_id BIGINT PRIMARY KEY,
	title TEXT,
	genres TEXT,
	overview TEXT,
	cast_list TEXT,
	directors TEXT,
	keywords TEXT,
	popularity DOUBLE PRECISION,
	poster TEXT
)`, s.table)
	if _, err := s.pool.Exec(ctx, query); err != nil {
		return fmt.Errorf("create %s table: %w", s.table, err)
	}
	return nil
}

// Upsert inserts the movie or overwrites every column of the existing row.
func (s *MovieStore) Upsert(ctx context.Context, movie catalog.Movie) error {
	if err := movie.Validate(); err != nil {
		return err
	}
	query := fmt.Sprintf(`
INSERT INTO %s (
	tmdb_id,
	title,
	genres,
	overview,
	cast_list,
	directors,
	keywords,
	popularity,
	poster
) VALUES (
	$1,$2,$3,$4,$5,$6,$7,$8,$9
)
ON CONFLICT (tmdb_id) DO UPDATE SET
	title = EXCLUDED.title,
	genres = EXCLUDED.genres,
	overview = EXCLUDED.overview,
	cast_list = EXCLUDED.cast_list,
	directors = EXCLUDED.directors,
	keywords = EXCLUDED.keywords,
	popularity = EXCLUDED.popularity,
	poster = EXCLUDED.poster`, s.table)

	args := []any{
		movie.CatalogID,
		movie.Title,
		catalog.JoinList(movie.Genres),
		movie.Overview,
		catalog.JoinList(movie.Cast),
		catalog.JoinList(movie.Directors),
		catalog.JoinList(movie.Keywords),
		movie.Popularity,
		movie.Poster,
	}
	if _, err := s.pool.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert movie %d: %w", movie.CatalogID, err)
	}
	return nil
}

// ScanAll returns every row in heap order.
func (s *MovieStore) ScanAll(ctx context.Context) ([]catalog.Movie, error) {
	query := fmt.Sprintf(`
SELECT tmdb_id, title, genres, overview, cast_list, directors, keywords, popularity, poster
FROM %s`, s.table)
	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query movies: %w", err)
	}
	defer rows.Close()

	var movies []catalog.Movie
	for rows.Next() {
		var (
			movie                         catalog.Movie
			title, genres, overview, cast *string
			directors, keywords           *string
			popularity                    *float64
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
			&movie.Poster,
		); err != nil {
			return nil, fmt.Errorf("scan movie: %w", err)
		}
		movie.Title = deref(title)
		movie.Genres = catalog.SplitList(deref(genres))
		movie.Overview = deref(overview)
		movie.Cast = catalog.SplitList(deref(cast))
		movie.Directors = catalog.SplitList(deref(directors))
		movie.Keywords = catalog.SplitList(deref(keywords))
		if popularity != nil {
			movie.Popularity = *popularity
		}
		movies = append(movies, movie)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate movies: %w", err)
	}
	return movies, nil
}

// Close releases the underlying pool resources.
func (s *MovieStore) Close() error {
	if s == nil || s.pool == nil {
		return nil
	}
	s.pool.Close()
	return nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
