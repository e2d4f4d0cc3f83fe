package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Iron-Ham/appcanvas/internal/errors"
	"github.com/Iron-Ham/appcanvas/internal/export"
	"github.com/Iron-Ham/appcanvas/internal/plan"
	"github.com/Iron-Ham/appcanvas/internal/steps"
	"github.com/Iron-Ham/appcanvas/internal/tui/styles"
	"github.com/Iron-Ham/appcanvas/internal/wizard"
)

type runOptions struct {
	answers  []string
	maxSteps int
	load     bool
	slot     string
	noSave   bool
	format   string
	dir      string
	tree     bool
	trace    bool
}

func newRunCmd() *cobra.Command {
	opts := &runOptions{}
	cmd := &cobra.Command{
		Use:   "run [idea]",
		Short: "Generate a plan without the TUI",
		Long: `Generate a plan without the TUI.

Every step asks a clarifying question first. Answers are taken from
--answer in order: a number picks that option, anything else is sent as
written. When the answers run out the first option is used.

The session is saved after each step, so an interrupted run can be
continued with --load.`,
		Example: `  appcanvas run "A shared grocery list for families"
  appcanvas run "Recipe swap" --answer 2 --answer "Home cooks" --steps 3
  appcanvas run --load --format md --dir ./plans`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRun(cmd, args, opts)
		},
	}
	cmd.Flags().StringArrayVarP(&opts.answers, "answer", "a", nil, "Clarification answer (repeatable; a number picks that option)")
	cmd.Flags().IntVarP(&opts.maxSteps, "steps", "n", 0, "Generate at most this many steps (0 = all)")
	cmd.Flags().BoolVarP(&opts.load, "load", "l", false, "Continue the saved session instead of starting a new one")
	cmd.Flags().StringVar(&opts.slot, "slot", "", "Session slot (default: session.slot)")
	cmd.Flags().BoolVar(&opts.noSave, "no-save", false, "Do not save the session")
	cmd.Flags().StringVarP(&opts.format, "format", "f", "", "Export the plan in this format when done (json, md, txt, yaml)")
	cmd.Flags().StringVarP(&opts.dir, "dir", "d", "", "Export directory (default: export.dir)")
	cmd.Flags().BoolVar(&opts.tree, "tree", false, "Print the mind map when done")
	cmd.Flags().BoolVar(&opts.trace, "trace", false, "Print a line for every model request")
	return cmd
}

func runRun(cmd *cobra.Command, args []string, opts *runOptions) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	var format export.Format
	if opts.format != "" {
		f, err := export.ParseFormat(opts.format)
		if err != nil {
			return err
		}
		format = f
	}

	var tracing *traceOutput
	if opts.trace {
		tracing = newTraceOutput(cmd.ErrOrStderr())
		defer tracing.Close()
	}

	rt, err := newRuntime(ctx, tracing.Tracer("appcanvas"))
	if err != nil {
		return err
	}
	defer rt.Close()

	w := rt.wizard
	slot := firstNonEmpty(opts.slot, rt.cfg.Session.Slot)

	idea := strings.TrimSpace(strings.Join(args, " "))
	switch {
	case opts.load:
		if err := w.Load(rt.store, slot); err != nil {
			return errors.New(errors.UserMessage(err))
		}
	case idea == "":
		return fmt.Errorf("an idea is required (or use --load)")
	default:
		if err := w.Start(idea); err != nil {
			return errors.New(errors.UserMessage(err))
		}
	}

	s := styles.New(nil)
	fmt.Fprintf(out, "%s %s\n\n", s.Title.Render("Idea:"), w.State().Idea)

	answers := &answerQueue{answers: opts.answers}
	limit := steps.Count()
	if opts.maxSteps > 0 {
		limit = opts.maxSteps
	}

	generated := 0
	for {
		active := w.ActiveStep()
		if !w.IsComplete(active) {
			if err := runStep(cmd, w, answers, s); err != nil {
				return err
			}
			generated++
			if !opts.noSave {
				if _, err := w.Save(rt.store, slot); err != nil {
					return errors.Wrap(err, "saving session")
				}
			}
		}
		if active == steps.Last() || generated >= limit {
			break
		}
		if err := w.Next(); err != nil {
			return err
		}
	}

	fmt.Fprintln(out)
	if w.AllComplete() {
		fmt.Fprintln(out, s.Secondary.Render("All steps complete."))
	} else {
		fmt.Fprintf(out, "Completed %d of %d steps.\n", len(w.Snapshot().CompletedSteps), steps.Count())
	}
	if !opts.noSave {
		fmt.Fprintf(out, "Session saved to %s\n", rt.store.Path(slot))
	}

	if rt.client != nil {
		st := rt.client.Stats()
		fmt.Fprintf(out, "Model requests: %d (%d cached, %d retried, %d failed)\n",
			st.Requests, st.CacheHits, st.Retries, st.Failures)
	}

	snap := w.Snapshot()
	if opts.tree {
		fmt.Fprintln(out)
		printTree(out, snap, true, "")
	}
	if format != "" {
		path, err := export.Write(format, snap, firstNonEmpty(opts.dir, rt.cfg.Export.Dir))
		if err != nil {
			return errors.Wrap(err, "exporting")
		}
		fmt.Fprintf(out, "Exported to %s\n", path)
	}
	return nil
}

// runStep asks the active step's question, answers it and generates the
// step.
func runStep(cmd *cobra.Command, w *wizard.Wizard, answers *answerQueue, s *styles.Styles) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()
	step, err := steps.Get(w.ActiveStep())
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "%s %d. %s\n", s.Primary.Render("●"), step.ID+1, step.Name)

	action, err := w.Advance(ctx)
	if err != nil {
		return errors.New(errors.UserMessage(err))
	}
	if action == wizard.ActionAskClarification {
		q := w.Clarification()
		answer := answers.next(q.Clarification)
		fmt.Fprintf(out, "  %s %s\n", s.Warning.Render("?"), q.Question)
		fmt.Fprintf(out, "  %s %s\n", s.Muted.Render("→"), answer)
		if err := w.AnswerClarification(ctx, answer); err != nil {
			return errors.New(errors.UserMessage(err))
		}
	}
	if !w.IsComplete(step.ID) {
		return fmt.Errorf("step %q did not complete", step.Name)
	}
	fmt.Fprintf(out, "  %s %s\n", s.Secondary.Render("✓"), step.Name)
	return nil
}

// answerQueue hands out --answer values in order.
type answerQueue struct {
	answers []string
	pos     int
}

// next returns the answer for q. A number selects that option (1-based);
// other text is used as is; with no answers left the first option is used.
func (a *answerQueue) next(q plan.Clarification) string {
	if a.pos >= len(a.answers) {
		if len(q.Options) > 0 {
			return q.Options[0]
		}
		return "No preference"
	}
	raw := strings.TrimSpace(a.answers[a.pos])
	a.pos++
	if n, err := strconv.Atoi(raw); err == nil && n >= 1 && n <= len(q.Options) {
		return q.Options[n-1]
	}
	if raw == "" && len(q.Options) > 0 {
		return q.Options[0]
	}
	return raw
}
