package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Iron-Ham/appcanvas/internal/steps"
	"github.com/Iron-Ham/appcanvas/internal/tui/styles"
)

func newStepsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "steps",
		Short: "List the wizard steps",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			s := styles.New(nil)
			for _, step := range steps.All() {
				fmt.Fprintf(out, "%d. %s\n", int(step.ID)+1, s.Title.Render(step.Name))
				fmt.Fprintf(out, "   %s\n", s.Muted.Render(step.Description))
			}
			return nil
		},
	}
}
