package cmd

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/charmbracelet/x/ansi"
	"github.com/spf13/cobra"

	"github.com/Iron-Ham/appcanvas/internal/config"
	"github.com/Iron-Ham/appcanvas/internal/errors"
	"github.com/Iron-Ham/appcanvas/internal/session"
	"github.com/Iron-Ham/appcanvas/internal/steps"
	"github.com/Iron-Ham/appcanvas/internal/tui/styles"
	"github.com/Iron-Ham/appcanvas/internal/wizard"
)

// openStore opens the configured session store.
func openStore() (*session.Store, *config.Config, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}
	return session.NewFileStore(cfg.Session.ResolveDir()), cfg, nil
}

func newSessionsCmd() *cobra.Command {
	sessionsCmd := &cobra.Command{
		Use:     "sessions",
		Aliases: []string{"session"},
		Short:   "Manage saved sessions",
		Long: `Manage saved wizard sessions.

A session is saved to a named slot. The TUI and 'appcanvas run' use the
slot from session.slot unless told otherwise.`,
		RunE: runSessionsList,
	}

	var asJSON bool
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List saved sessions",
		RunE: func(cmd *cobra.Command, args []string) error {
			if asJSON {
				return runSessionsJSON(cmd)
			}
			return runSessionsList(cmd, args)
		},
	}
	listCmd.Flags().BoolVar(&asJSON, "json", false, "Output as JSON")

	showCmd := &cobra.Command{
		Use:   "show [slot]",
		Short: "Show the progress and mind map of a session",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runSessionsShow,
	}

	deleteCmd := &cobra.Command{
		Use:     "delete <slot>",
		Aliases: []string{"rm"},
		Short:   "Delete a saved session",
		Args:    cobra.ExactArgs(1),
		RunE:    runSessionsDelete,
	}

	sessionsCmd.AddCommand(listCmd, showCmd, deleteCmd)
	return sessionsCmd
}

func runSessionsList(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	store, cfg, err := openStore()
	if err != nil {
		return err
	}
	infos, err := store.List()
	if err != nil {
		return err
	}
	if len(infos) == 0 {
		fmt.Fprintln(out, "No saved sessions.")
		fmt.Fprintf(out, "Sessions are stored in %s\n", store.Dir())
		return nil
	}

	s := styles.New(nil)
	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(s.Muted).
		Headers("SLOT", "IDEA", "PROGRESS", "SAVED").
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return s.PaneTitle.Padding(0, 1)
			}
			return lipgloss.NewStyle().Padding(0, 1)
		})
	for _, info := range infos {
		slot := info.Slot
		if slot == cfg.Session.Slot {
			slot += " *"
		}
		if !info.Valid {
			t.Row(slot, "(unreadable)", "-", info.ModTime.Format("2006-01-02 15:04"))
			continue
		}
		t.Row(
			slot,
			truncate(info.Idea, 40),
			fmt.Sprintf("%d/%d", info.Completed, steps.Count()),
			info.ModTime.Format("2006-01-02 15:04"),
		)
	}
	fmt.Fprintln(out, t.Render())
	fmt.Fprintf(out, "%d %s in %s\n", len(infos), pluralize(len(infos), "session", "sessions"), store.Dir())
	return nil
}

func runSessionsJSON(cmd *cobra.Command) error {
	store, _, err := openStore()
	if err != nil {
		return err
	}
	infos, err := store.List()
	if err != nil {
		return err
	}
	data, err := session.MarshalInfo(infos)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(data))
	return nil
}

func runSessionsShow(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
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

	s := styles.New(nil)
	fmt.Fprintf(out, "%s %s\n", s.Title.Render("Idea:"), snap.Idea)
	fmt.Fprintf(out, "Slot: %s\n\n", slot)

	w := wizard.New(nil)
	if err := w.Restore(snap); err != nil {
		return errors.New(errors.UserMessage(err))
	}
	for _, entry := range w.Timeline() {
		status := entry.Status.String()
		fmt.Fprintf(out, "%s %d. %s\n",
			s.StepStyle(status).Render(styles.StepIcon(status)),
			int(entry.Step.ID)+1, entry.Step.Name)
	}
	fmt.Fprintln(out)
	printTree(out, snap, false, "")
	return nil
}

func runSessionsDelete(cmd *cobra.Command, args []string) error {
	store, _, err := openStore()
	if err != nil {
		return err
	}
	if err := store.Delete(args[0]); err != nil {
		return errors.New(errors.UserMessage(err))
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Deleted session %s\n", args[0])
	return nil
}

func truncate(s string, n int) string {
	if lipgloss.Width(s) <= n {
		return s
	}
	return ansi.Truncate(s, n, "…")
}
