package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/Iron-Ham/appcanvas/internal/errors"
	"github.com/Iron-Ham/appcanvas/internal/mindmap"
	"github.com/Iron-Ham/appcanvas/internal/plan"
	"github.com/Iron-Ham/appcanvas/internal/session"
)

type treeOptions struct {
	plain  bool
	search string
	watch  bool
}

func newTreeCmd() *cobra.Command {
	opts := &treeOptions{}
	cmd := &cobra.Command{
		Use:   "tree [slot]",
		Short: "Print the mind map of a saved session",
		Long: `Print the idea → module → feature → action mind map of a saved session.

Nodes collapsed in the TUI stay collapsed here and show how many
descendants they hide. --search highlights matching nodes; prefix the
query with "r:" for a regular expression.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTree(cmd, args, opts)
		},
	}
	cmd.Flags().BoolVar(&opts.plain, "plain", false, "Disable colors")
	cmd.Flags().StringVarP(&opts.search, "search", "s", "", "Highlight nodes matching this query")
	cmd.Flags().BoolVarP(&opts.watch, "watch", "w", false, "Redraw whenever the session is saved")
	return cmd
}

func runTree(cmd *cobra.Command, args []string, opts *treeOptions) error {
	store, cfg, err := openStore()
	if err != nil {
		return err
	}
	slot := cfg.Session.Slot
	if len(args) > 0 {
		slot = args[0]
	}
	snap, err := store.Load(slot)
	if err != nil {
		return errors.New(errors.UserMessage(err))
	}

	out := cmd.OutOrStdout()
	show := func(snap *plan.Snapshot) {
		hits := printTree(out, snap, opts.plain, opts.search)
		if opts.search != "" {
			fmt.Fprintf(out, "\n%d %s matching %q\n", hits, pluralize(hits, "node", "nodes"), opts.search)
		}
	}
	show(snap)
	if !opts.watch {
		return nil
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return watchSession(ctx, store, slot, func(snap *plan.Snapshot, err error) {
		fmt.Fprintln(out)
		if err != nil {
			fmt.Fprintln(out, errors.UserMessage(err))
			return
		}
		fmt.Fprintf(out, "-- %s --\n", time.Now().Format("15:04:05"))
		show(snap)
	})
}

// watchSession calls onChange with the reloaded session each time slot is
// written or removed, until ctx is done. Saves rename a temporary file over
// the slot, so the directory is watched.
func watchSession(ctx context.Context, store *session.Store, slot string, onChange func(*plan.Snapshot, error)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer watcher.Close()

	if err := os.MkdirAll(store.Dir(), 0o755); err != nil {
		return fmt.Errorf("failed to create session directory: %w", err)
	}
	if err := watcher.Add(store.Dir()); err != nil {
		return fmt.Errorf("failed to watch directory: %w", err)
	}

	target := filepath.Clean(store.Path(slot))
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != target {
				continue
			}
			switch {
			case ev.Has(fsnotify.Create), ev.Has(fsnotify.Write):
				onChange(store.Load(slot))
			case ev.Has(fsnotify.Remove):
				onChange(nil, errors.ErrNoSavedSession)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			return fmt.Errorf("watching sessions: %w", err)
		}
	}
}

// printTree renders the mind map of snap to out and returns the number of
// nodes matching query.
func printTree(out io.Writer, snap *plan.Snapshot, plain bool, query string) int {
	g := mindmap.Build(snap.Idea, snap.AppData)
	if len(g.Nodes) == 0 {
		fmt.Fprintln(out, "(empty)")
		return 0
	}
	collapsed := make(map[string]bool, len(snap.CollapsedNodes))
	for _, id := range snap.CollapsedNodes {
		collapsed[id] = true
	}
	matches := g.Matches(query)
	fmt.Fprintln(out, mindmap.RenderTree(g, mindmap.RenderOptions{
		Collapsed: collapsed,
		Matches:   matches,
		Plain:     plain,
	}))
	return len(matches)
}

func pluralize(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
