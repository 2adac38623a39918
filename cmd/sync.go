package cmd

import (
	"fmt"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type syncSummary struct {
	Status     string `json:"status"`
	Synced     int    `json:"synced"`
	Stored     int    `json:"stored"`
	Discovered int    `json:"discovered"`
	Skipped    int    `json:"skipped"`
}

func newSyncCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Runs one sync of the watchlist into the movie cache",
		Long: `Scrapes the configured watchlist, resolves every title against TMDB and
upserts the enriched records, then prints a JSON summary.`,
		RunE: runSyncCommand,
	}
}

func runSyncCommand(cmd *cobra.Command, _ []string) error {
	appInstance, err := resolveApp(cmd.Context())
	if err != nil {
		return err
	}

	defer closeApp(appInstance)

	res, err := appInstance.RunSync(cmd.Context())
	if err != nil {
		appInstance.GetLogger().Error("sync failed", zap.Int("stored", res.Stored), zap.Error(err))
		return err
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	if err := enc.Encode(syncSummary{
		Status:     "ok",
		Synced:     res.Synced(),
		Stored:     res.Stored,
		Discovered: res.Discovered,
		Skipped:    res.Skipped,
	}); err != nil {
		return fmt.Errorf("write summary: %w", err)
	}
	return nil
}
