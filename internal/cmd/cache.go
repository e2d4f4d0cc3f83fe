package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Iron-Ham/appcanvas/internal/cache"
	"github.com/Iron-Ham/appcanvas/internal/errors"
)

func newCacheCmd() *cobra.Command {
	cacheCmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect or clear the model response cache",
		Long: `Inspect or clear the model response cache.

Only the sqlite backend keeps responses between runs; the memory backend
is empty at the start of every command.`,
	}
	cacheCmd.AddCommand(
		&cobra.Command{
			Use:   "stats",
			Short: "Show the number of cached responses",
			Args:  cobra.NoArgs,
			RunE:  runCacheStats,
		},
		&cobra.Command{
			Use:   "clear",
			Short: "Remove every cached response",
			Args:  cobra.NoArgs,
			RunE:  runCacheClear,
		},
	)
	return cacheCmd
}

func runCacheStats(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	store, err := cache.NewFromConfig(cfg.Cache)
	if err != nil {
		return errors.Wrap(err, "opening cache")
	}
	defer store.Close()

	n, err := store.Len(cmd.Context())
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Backend: %s\n", cfg.Cache.Backend)
	if cfg.Cache.Backend == "sqlite" {
		fmt.Fprintf(out, "Path:    %s\n", cfg.Cache.ResolvePath())
	}
	fmt.Fprintf(out, "Entries: %d\n", n)
	return nil
}

func runCacheClear(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	store, err := cache.NewFromConfig(cfg.Cache)
	if err != nil {
		return errors.Wrap(err, "opening cache")
	}
	defer store.Close()

	n, err := store.Len(cmd.Context())
	if err != nil {
		return err
	}
	if err := store.Clear(cmd.Context()); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Removed %d cached %s\n", n, pluralize(n, "response", "responses"))
	return nil
}
