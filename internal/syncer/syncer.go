package syncer

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/JakeFAU/watchrec/internal/catalog"
	"github.com/JakeFAU/watchrec/internal/metrics"
	"github.com/JakeFAU/watchrec/internal/tmdb"
)

// SourceFetcher lists the external identifiers on a watchlist.
type SourceFetcher interface {
	FetchIDs(ctx context.Context, listID string) ([]string, error)
}

// Resolver maps an external identifier to a catalog id.
type Resolver interface {
	Resolve(ctx context.Context, externalID string) (int64, bool, error)
}

// MetadataFetcher loads the full record for a catalog id.
type MetadataFetcher interface {
	Details(ctx context.Context, catalogID int64) (tmdb.Details, error)
}

// Result summarizes one run.
type Result struct {
	// Discovered is the number of distinct identifiers scraped from the page.
	Discovered int
	// Resolved is the number of catalog ids that reached the fetch step,
	// duplicates included.
	Resolved int
	// Stored is the number of successful upserts.
	Stored int
	// Skipped counts resolved ids whose details were unusable.
	Skipped int
}

// Synced is the count reported to API callers: resolved ids attempted, not rows stored.
func (r Result) Synced() int {
	return r.Resolved
}

// Syncer composes the fetch, resolve, detail and store steps.
type Syncer struct {
	source   SourceFetcher
	resolver Resolver
	metadata MetadataFetcher
	store    catalog.Store
	listID   string
	logger   *zap.Logger
}

// New constructs a Syncer for listID.
func New(
	source SourceFetcher,
	resolver Resolver,
	metadata MetadataFetcher,
	store catalog.Store,
	listID string,
	logger *zap.Logger,
) *Syncer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Syncer{
		source:   source,
		resolver: resolver,
		metadata: metadata,
		store:    store,
		listID:   listID,
		logger:   logger,
	}
}

// Run performs one full sync. On error the partial Result is returned with it.
func (s *Syncer) Run(ctx context.Context) (Result, error) {
	res, err := s.run(ctx)
	status := "ok"
	if err != nil {
		status = "error"
	}
	metrics.ObserveSyncRun(status)
	return res, err
}

func (s *Syncer) run(ctx context.Context) (Result, error) {
	var res Result

	externalIDs, err := s.source.FetchIDs(ctx, s.listID)
	if err != nil {
		return res, fmt.Errorf("fetch watchlist %s: %w", s.listID, err)
	}
	res.Discovered = len(externalIDs)
	s.logger.Info("watchlist fetched", zap.String("list_id", s.listID), zap.Int("ids", res.Discovered))

	catalogIDs := make([]int64, 0, len(externalIDs))
	for _, externalID := range externalIDs {
		id, ok, err := s.resolver.Resolve(ctx, externalID)
		if err != nil {
			return res, fmt.Errorf("resolve %s: %w", externalID, err)
		}
		if !ok {
			metrics.ObserveTitle(metrics.OutcomeUnresolved)
			s.logger.Debug("no catalog match", zap.String("external_id", externalID))
			continue
		}
		catalogIDs = append(catalogIDs, id)
	}
	res.Resolved = len(catalogIDs)

	for _, id := range catalogIDs {
		details, err := s.metadata.Details(ctx, id)
		if err != nil {
			return res, fmt.Errorf("fetch details %d: %w", id, err)
		}
		if !details.Usable() {
			res.Skipped++
			metrics.ObserveTitle(metrics.OutcomeUnusable)
			s.logger.Debug("unusable details", zap.Int64("catalog_id", id))
			continue
		}
		movie := Normalize(details)
		if err := s.store.Upsert(ctx, movie); err != nil {
			return res, fmt.Errorf("store movie %d: %w", movie.CatalogID, err)
		}
		res.Stored++
		metrics.ObserveTitle(metrics.OutcomeStored)
	}

	s.logger.Info("sync complete",
		zap.Int("discovered", res.Discovered),
		zap.Int("resolved", res.Resolved),
		zap.Int("stored", res.Stored),
		zap.Int("skipped", res.Skipped),
	)
	return res, nil
}
