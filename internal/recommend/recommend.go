// Package recommend builds the canned recommendation buckets from the movie cache.
package recommend

import (
	"bytes"
	"context"
	"fmt"
	"math/rand/v2"
	"slices"

	"github.com/goccy/go-json"

	"github.com/JakeFAU/watchrec/internal/catalog"
	"github.com/JakeFAU/watchrec/internal/metrics"
)

// Bucket names, in response order.
const (
	BucketBecauseYouWatched = "Because You Watched…"
	BucketDark              = "Dark / Psychological"
	BucketSlowBurn          = "Slow-Burn Character Films"
	BucketPopular           = "High Popularity Picks"
)

// BucketSize caps every bucket.
const BucketSize = 10

// BucketNames lists the buckets in response order.
var BucketNames = []string{BucketBecauseYouWatched, BucketDark, BucketSlowBurn, BucketPopular}

// Bucket is one named group of movies.
type Bucket struct {
	Name   string
	Movies []catalog.Movie
}

// Buckets is the ordered recommendation response.
type Buckets []Bucket

// Get returns the movies of the named bucket.
func (b Buckets) Get(name string) ([]catalog.Movie, bool) {
	for _, bucket := range b {
		if bucket.Name == name {
			return bucket.Movies, true
		}
	}
	return nil, false
}

// MarshalJSON renders an object keyed by bucket name, preserving bucket order.
// Each movie is a 9-element array in column order.
func (b Buckets) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, bucket := range b {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(bucket.Name)
		if err != nil {
			return nil, fmt.Errorf("encode bucket name: %w", err)
		}
		rows := make([][]any, 0, len(bucket.Movies))
		for _, m := range bucket.Movies {
			rows = append(rows, m.Tuple())
		}
		value, err := json.Marshal(rows)
		if err != nil {
			return nil, fmt.Errorf("encode bucket %q: %w", bucket.Name, err)
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Scanner reads the whole cache.
type Scanner interface {
	ScanAll(ctx context.Context) ([]catalog.Movie, error)
}

// Recommender samples buckets from the cache on every call.
type Recommender struct {
	store Scanner
	perm  func(n int) []int
}

// Option customizes a Recommender.
type Option func(*Recommender)

// WithRand draws samples from r instead of the unseeded global source.
func WithRand(r *rand.Rand) Option {
	return func(rec *Recommender) {
		rec.perm = r.Perm
	}
}

// New constructs a Recommender over store.
func New(store Scanner, opts ...Option) *Recommender {
	rec := &Recommender{store: store, perm: rand.Perm}
	for _, opt := range opts {
		opt(rec)
	}
	return rec
}

// Build reads every row and returns the four buckets. An empty cache yields
// four empty buckets.
func (r *Recommender) Build(ctx context.Context) (Buckets, error) {
	movies, err := r.store.ScanAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("scan movies: %w", err)
	}
	metrics.SetCatalogRows(len(movies))

	return Buckets{
		{Name: BucketBecauseYouWatched, Movies: r.sample(movies)},
		{Name: BucketDark, Movies: r.sample(movies)},
		{Name: BucketSlowBurn, Movies: r.sample(movies)},
		{Name: BucketPopular, Movies: TopByPopularity(movies, BucketSize)},
	}, nil
}

// sample draws min(BucketSize, len(movies)) rows uniformly without replacement.
func (r *Recommender) sample(movies []catalog.Movie) []catalog.Movie {
	k := min(BucketSize, len(movies))
	out := make([]catalog.Movie, 0, k)
	for _, i := range r.perm(len(movies))[:k] {
		out = append(out, movies[i])
	}
	return out
}

// TopByPopularity returns the n most popular movies, highest first. Ties keep
// scan order.
func TopByPopularity(movies []catalog.Movie, n int) []catalog.Movie {
	sorted := slices.Clone(movies)
	slices.SortStableFunc(sorted, func(a, b catalog.Movie) int {
		switch {
		case a.Popularity > b.Popularity:
			return -1
		case a.Popularity < b.Popularity:
			return 1
		default:
			return 0
		}
	})
	if len(sorted) > n {
		sorted = sorted[:n]
	}
	if sorted == nil {
		sorted = []catalog.Movie{}
	}
	return sorted
}
