package catalog

import "context"

// Store persists movie records keyed by catalog id.
type Store interface {
	// Init creates the movies table when it does not exist yet.
	Init(ctx context.Context) error
	// Upsert inserts the movie or replaces every column of the existing row.
	Upsert(ctx context.Context, movie Movie) error
	// ScanAll returns every row in the store's natural scan order.
	ScanAll(ctx context.Context) ([]Movie, error)
	Close() error
}
