// Package app initializes and holds long-lived application services, acting as a dependency injection container.
package app

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/JakeFAU/watchrec/internal/api"
	"github.com/JakeFAU/watchrec/internal/catalog"
	"github.com/JakeFAU/watchrec/internal/config"
	collyfetcher "github.com/JakeFAU/watchrec/internal/fetcher/colly"
	"github.com/JakeFAU/watchrec/internal/logging"
	"github.com/JakeFAU/watchrec/internal/recommend"
	"github.com/JakeFAU/watchrec/internal/storage/memory"
	"github.com/JakeFAU/watchrec/internal/storage/postgres"
	"github.com/JakeFAU/watchrec/internal/storage/sqlite"
	"github.com/JakeFAU/watchrec/internal/syncer"
	"github.com/JakeFAU/watchrec/internal/tmdb"
)

// App holds the services shared by every command: the movie cache, the
// sync pipeline and the recommender.
type App struct {
	cfg         config.Config
	logger      *zap.Logger
	store       catalog.Store
	syncer      *syncer.Syncer
	recommender *recommend.Recommender
}

// GetLogger returns the shared zap logger.
func (a *App) GetLogger() *zap.Logger {
	return a.logger
}

// GetStore exposes the initialized movie cache.
func (a *App) GetStore() catalog.Store {
	return a.store
}

// GetSyncer returns the sync pipeline.
func (a *App) GetSyncer() *syncer.Syncer {
	return a.syncer
}

// GetRecommender returns the bucket builder.
func (a *App) GetRecommender() *recommend.Recommender {
	return a.recommender
}

// Config returns the configuration the App was built from.
func (a *App) Config() config.Config {
	return a.cfg
}

// NewServer builds the HTTP surface over the App's services.
func (a *App) NewServer() *api.Server {
	return api.NewServer(a.syncer, a.recommender, a.logger.Named("api"))
}

// NewApp opens the configured store, runs its idempotent table setup, and
// wires the fetch, resolve and recommend components around it. It fails fast
// if the store cannot be opened or initialized.
func NewApp(ctx context.Context, cfg config.Config, logger *zap.Logger) (*App, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	logger.Info("initializing application services",
		zap.String("store_driver", cfg.Store.Driver),
		zap.String("list_id", cfg.Watchlist.ListID),
	)
	if cfg.TMDB.APIKey == "" {
		logger.Warn("TMDB API key is not set; sync requests will fail",
			logging.RedactedString("tmdb_api_key", cfg.TMDB.APIKey))
	}

	store, err := OpenStore(ctx, cfg.Store, logger)
	if err != nil {
		return nil, err
	}
	if err := store.Init(ctx); err != nil {
		if closeErr := store.Close(); closeErr != nil {
			logger.Warn("close store after failed init", zap.Error(closeErr))
		}
		return nil, fmt.Errorf("initialize store: %w", err)
	}

	source := collyfetcher.New(collyfetcher.Config{
		BaseURL:   cfg.Watchlist.BaseURL,
		UserAgent: cfg.Watchlist.UserAgent,
		Timeout:   cfg.OutboundTimeout(),
	})
	client := tmdb.NewClient(tmdb.Config{
		APIKey:  cfg.TMDB.APIKey,
		BaseURL: cfg.TMDB.BaseURL,
		Timeout: cfg.OutboundTimeout(),
	})

	return &App{
		cfg:         cfg,
		logger:      logger,
		store:       store,
		syncer:      syncer.New(source, client, client, store, cfg.Watchlist.ListID, logger.Named("syncer")),
		recommender: recommend.New(store),
	}, nil
}

// OpenStore constructs the movie cache selected by cfg.Driver.
func OpenStore(ctx context.Context, cfg config.StoreConfig, logger *zap.Logger) (catalog.Store, error) {
	switch cfg.Driver {
	case config.DriverSQLite, "":
		logger.Info("using sqlite movie store", zap.String("path", cfg.Path))
		store, err := sqlite.NewMovieStore(cfg.Path)
		if err != nil {
			return nil, fmt.Errorf("open sqlite store: %w", err)
		}
		return store, nil
	case config.DriverPostgres:
		logger.Info("connecting to postgres movie store", zap.String("table", cfg.Table))
		store, err := postgres.NewMovieStore(ctx, postgres.MovieStoreConfig{
			DSN:      cfg.DSN,
			Table:    cfg.Table,
			MaxConns: cfg.MaxConns,
		})
		if err != nil {
			return nil, fmt.Errorf("open postgres store: %w", err)
		}
		return store, nil
	case config.DriverMemory:
		logger.Info("using in-memory movie store; rows are lost on exit")
		return memory.NewMovieStore(), nil
	default:
		return nil, fmt.Errorf("unknown store driver: %s", cfg.Driver)
	}
}

// Close releases the store. It is called by a Cobra hook after the command finishes.
func (a *App) Close() {
	a.logger.Info("shutting down application services")
	if err := a.store.Close(); err != nil {
		a.logger.Warn("error closing movie store", zap.Error(err))
	}
}

// RunSync performs one sync pipeline run.
func (a *App) RunSync(ctx context.Context) (syncer.Result, error) {
	res, err := a.syncer.Run(ctx)
	if err != nil {
		return res, fmt.Errorf("run sync: %w", err)
	}
	return res, nil
}
