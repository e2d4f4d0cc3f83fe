package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Iron-Ham/appcanvas/internal/errors"
	"github.com/Iron-Ham/appcanvas/internal/export"
)

type exportOptions struct {
	format string
	dir    string
	stdout bool
}

func newExportCmd() *cobra.Command {
	opts := &exportOptions{}
	formats := make([]string, 0, len(export.Formats()))
	for _, f := range export.Formats() {
		formats = append(formats, string(f))
	}
	cmd := &cobra.Command{
		Use:   "export [slot]",
		Short: "Export a saved session",
		Long: `Export a saved session to a file.

Supported formats: ` + strings.Join(formats, ", ") + `. The file is named
app-canvas-export.<format> and written to --dir (default: export.dir, or
the current directory).`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(cmd, args, opts)
		},
	}
	cmd.Flags().StringVarP(&opts.format, "format", "f", "", "Export format (default: export.format)")
	cmd.Flags().StringVarP(&opts.dir, "dir", "d", "", "Output directory (default: export.dir)")
	cmd.Flags().BoolVar(&opts.stdout, "stdout", false, "Write to standard output instead of a file")
	return cmd
}

func runExport(cmd *cobra.Command, args []string, opts *exportOptions) error {
	store, cfg, err := openStore()
	if err != nil {
		return err
	}
	format, err := export.ParseFormat(firstNonEmpty(opts.format, cfg.Export.Format))
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
	if opts.stdout {
		data, err := export.Render(format, snap)
		if err != nil {
			return err
		}
		_, err = out.Write(data)
		return err
	}

	path, err := export.Write(format, snap, firstNonEmpty(opts.dir, cfg.Export.Dir))
	if err != nil {
		return errors.Wrap(err, "exporting")
	}
	fmt.Fprintf(out, "Exported %s to %s\n", slot, path)
	return nil
}
