package catalog

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

// ErrInvalidMovie marks records that must not be written to a store.
var ErrInvalidMovie = errors.New("invalid movie record")

// listSeparator joins multi-valued columns into a single text column.
const listSeparator = ","

// Movie is one row of the movies table.
type Movie struct {
	CatalogID  int64
	Title      string
	Genres     []string
	Overview   string
	Cast       []string
	Directors  []string
	Keywords   []string
	Popularity float64
	Poster     *string
}

// Validate rejects records that would produce a corrupt row.
func (m Movie) Validate() error {
	if m.CatalogID <= 0 {
		return fmt.Errorf("%w: catalog id %d must be positive", ErrInvalidMovie, m.CatalogID)
	}
	if math.IsNaN(m.Popularity) || math.IsInf(m.Popularity, 0) {
		return fmt.Errorf("%w: popularity for %d is not finite", ErrInvalidMovie, m.CatalogID)
	}
	return nil
}

// Tuple renders the movie in fixed column order:
// catalog_id, title, genres, overview, cast_list, directors, keywords, popularity, poster.
func (m Movie) Tuple() []any {
	var poster any
	if m.Poster != nil {
		poster = *m.Poster
	}
	return []any{
		m.CatalogID,
		m.Title,
		JoinList(m.Genres),
		m.Overview,
		JoinList(m.Cast),
		JoinList(m.Directors),
		JoinList(m.Keywords),
		m.Popularity,
		poster,
	}
}

// JoinList serializes a list column.
func JoinList(values []string) string {
	return strings.Join(values, listSeparator)
}

// SplitList parses a list column written by JoinList. An empty column is an empty list.
func SplitList(column string) []string {
	if column == "" {
		return nil
	}
	return strings.Split(column, listSeparator)
}
