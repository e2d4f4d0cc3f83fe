package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/Iron-Ham/appcanvas/internal/errors"
	"github.com/Iron-Ham/appcanvas/internal/export"
	"github.com/Iron-Ham/appcanvas/internal/tui"
	"github.com/Iron-Ham/appcanvas/internal/tui/styles"
)

type startOptions struct {
	load  bool
	slot  string
	theme string
}

func newStartCmd() *cobra.Command {
	opts := &startOptions{}
	cmd := &cobra.Command{
		Use:   "start [idea]",
		Short: "Start the interactive wizard",
		Long: `Start the interactive wizard.

With an idea argument the first step starts right away; otherwise the
wizard opens on the idea input. Use --load to continue a saved session.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStart(cmd, args, opts)
		},
	}
	cmd.Flags().BoolVarP(&opts.load, "load", "l", false, "Restore the saved session before starting")
	cmd.Flags().StringVar(&opts.slot, "slot", "", "Session slot to save to and load from (default: session.slot)")
	cmd.Flags().StringVar(&opts.theme, "theme", "", "Theme name or YAML theme file (default: tui.theme)")
	return cmd
}

func runStart(cmd *cobra.Command, args []string, opts *startOptions) error {
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return fmt.Errorf("start needs an interactive terminal; use 'appcanvas run' instead")
	}

	ctx := cmd.Context()
	rt, err := newRuntime(ctx, nil)
	if err != nil {
		return err
	}
	defer rt.Close()

	cfg := rt.cfg
	slot := firstNonEmpty(opts.slot, cfg.Session.Slot)

	theme := firstNonEmpty(opts.theme, cfg.TUI.Theme)
	palette, err := styles.ResolvePalette(afero.NewOsFs(), theme)
	if err != nil {
		return err
	}

	format, err := export.ParseFormat(cfg.Export.Format)
	if err != nil {
		return err
	}

	if opts.load {
		if err := rt.wizard.Load(rt.store, slot); err != nil {
			return errors.New(errors.UserMessage(err))
		}
	} else if idea := strings.TrimSpace(strings.Join(args, " ")); idea != "" {
		if err := rt.wizard.Start(idea); err != nil {
			return errors.New(errors.UserMessage(err))
		}
	}

	app := tui.New(ctx, rt.wizard, tui.Options{
		Store:            rt.store,
		Slot:             slot,
		ExportDir:        cfg.Export.Dir,
		ExportFormat:     format,
		Styles:           styles.New(palette),
		FeedbackDuration: cfg.TUI.FeedbackDuration(),
		ErrorDuration:    cfg.TUI.ErrorDuration(),
		Bus:              rt.bus,
		Logger:           rt.logger,
	})
	return app.Run()
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
