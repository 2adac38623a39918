// Package cmd defines and implements the CLI commands for the watchrec executable.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/JakeFAU/watchrec/internal/api"
	"github.com/JakeFAU/watchrec/internal/app"
	"github.com/JakeFAU/watchrec/internal/config"
	"github.com/JakeFAU/watchrec/internal/logging"
	"github.com/JakeFAU/watchrec/internal/syncer"
)

var cfgFile string

// appKeyType is the key for storing the App in the context.
type appKeyType string

const appKey appKeyType = "app"

// App defines the application interface that commands use, so tests can
// inject a fake.
type App interface {
	Close()
	GetLogger() *zap.Logger
	Config() config.Config
	NewServer() *api.Server
	RunSync(ctx context.Context) (syncer.Result, error)
}

// newApp is the application factory. Tests replace it.
var newApp = func(ctx context.Context, cfg config.Config, logger *zap.Logger) (App, error) {
	return app.NewApp(ctx, cfg, logger)
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watchrec",
		Short: "Watchlist sync and recommendation service.",
		Long: `watchrec scrapes a public watchlist, enriches each title with TMDB
metadata, caches the records locally and serves sampled recommendation
buckets over HTTP.`,
		SilenceUsage: true,

		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(cfgFile)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			logger, err := logging.New(cfg.Logging.Development)
			if err != nil {
				return fmt.Errorf("init logger: %w", err)
			}
			zap.ReplaceGlobals(logger)

			appInstance, err := newApp(cmd.Context(), cfg, logger)
			if err != nil {
				return fmt.Errorf("failed to initialize application services: %w", err)
			}
			cmd.SetContext(context.WithValue(cmd.Context(), appKey, appInstance))
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (YAML); environment variables override it")

	cmd.AddCommand(newServeCmd())
	cmd.AddCommand(newSyncCmd())

	return cmd
}

// Execute is the main entry point.
func Execute() {
	root := newRootCmd()
	if err := root.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "watchrec:", err)
		os.Exit(1)
	}
}

// closeApp releases the App. Each RunE defers it, so a failed command still
// closes the store.
func closeApp(appInstance App) {
	appInstance.Close()
	// Sync reports EINVAL for stderr on some terminals.
	_ = appInstance.GetLogger().Sync()
}

func resolveApp(ctx context.Context) (App, error) {
	appInstance, ok := ctx.Value(appKey).(App)
	if !ok || appInstance == nil {
		return nil, errors.New("application services not initialized")
	}
	return appInstance, nil
}
