// Package wizard implements the step-progression controller that turns an
// idea into a complete plan, one model-generated step at a time.
//
// The controller owns all session state: the idea, the accumulated step
// data, the active and completed steps, a pending clarifying question and
// the UI selection. Callers drive it with Advance, which looks at the state
// and either asks the model for a clarifying question, asks it for the step
// content, or does nothing because the wizard is waiting on the user.
//
// All methods are safe for concurrent use. Model calls run without the lock
// held; a second request while one is outstanding is rejected with
// errors.ErrBusy.
package wizard

import (
	"context"
	"encoding/json"
	"slices"
	"strings"
	"sync"

	"github.com/Iron-Ham/appcanvas/internal/cache"
	"github.com/Iron-Ham/appcanvas/internal/errors"
	"github.com/Iron-Ham/appcanvas/internal/event"
	"github.com/Iron-Ham/appcanvas/internal/logging"
	"github.com/Iron-Ham/appcanvas/internal/plan"
	"github.com/Iron-Ham/appcanvas/internal/schema"
	"github.com/Iron-Ham/appcanvas/internal/steps"
)

// Generator produces model output for the wizard. *ai.Client implements it.
type Generator interface {
	GenerateContent(ctx context.Context, prompt string, s *schema.Schema) (json.RawMessage, error)
	GenerateClarifyingQuestion(ctx context.Context, prompt string) (plan.Clarification, error)
}

// Action is what the wizard needs to do next.
type Action int

const (
	// ActionIdle means there is nothing to do: the wizard has not started,
	// a request is outstanding, or the active step is complete.
	ActionIdle Action = iota
	// ActionAskClarification means a clarifying question must be generated.
	ActionAskClarification
	// ActionGenerate means the active step's content must be generated.
	ActionGenerate
	// ActionAwaitInput means the user must answer a question or retry a
	// failed step.
	ActionAwaitInput
)

func (a Action) String() string {
	switch a {
	case ActionIdle:
		return "idle"
	case ActionAskClarification:
		return "ask_clarification"
	case ActionGenerate:
		return "generate"
	case ActionAwaitInput:
		return "await_input"
	default:
		return "unknown"
	}
}

// PendingClarification is a question waiting for an answer before Step can
// be generated.
type PendingClarification struct {
	Step plan.StepKey
	plan.Clarification
}

// Wizard is the step-progression controller.
type Wizard struct {
	mu sync.Mutex

	gen    Generator
	bus    *event.Bus
	logger *logging.Logger

	started       bool
	idea          string
	data          plan.AppData
	active        plan.StepKey
	completed     []plan.StepKey
	clarification *PendingClarification
	loading       bool
	lastErr       error
	failed        bool // the last attempt at the active step failed
	collapsed     map[string]bool
	selected      []string
	stale         map[plan.StepKey]bool // regenerated steps whose cached answers must not be reused
}

// Option configures a Wizard.
type Option func(*Wizard)

// WithBus publishes state transitions on bus.
func WithBus(bus *event.Bus) Option {
	return func(w *Wizard) { w.bus = bus }
}

// WithLogger sets the logger.
func WithLogger(logger *logging.Logger) Option {
	return func(w *Wizard) { w.logger = logger }
}

// New creates a Wizard. A nil gen is allowed: the wizard can still restore
// and display saved sessions, but Start fails with errors.ErrMissingAPIKey.
func New(gen Generator, opts ...Option) *Wizard {
	w := &Wizard{
		gen:       gen,
		logger:    logging.NopLogger(),
		data:      plan.AppData{},
		completed: []plan.StepKey{},
		collapsed: make(map[string]bool),
		stale:     make(map[plan.StepKey]bool),
	}
	for _, opt := range opts {
		opt(w)
	}
	w.logger = w.logger.WithComponent("wizard")
	return w
}

// Start begins a new session for idea, discarding any previous state.
func (w *Wizard) Start(idea string) error {
	idea = strings.TrimSpace(idea)

	w.mu.Lock()
	if w.gen == nil {
		w.lastErr = errors.ErrMissingAPIKey
		w.mu.Unlock()
		return errors.ErrMissingAPIKey
	}
	if idea == "" {
		w.mu.Unlock()
		return errors.NewValidationError("idea cannot be empty").WithField("idea").WithCause(errors.ErrInvalidInput)
	}
	if w.loading {
		w.mu.Unlock()
		return errors.ErrBusy
	}

	w.started = true
	w.idea = idea
	w.data = plan.AppData{}
	w.active = plan.StepRefineIdea
	w.completed = []plan.StepKey{}
	w.clarification = nil
	w.lastErr = nil
	w.failed = false
	w.collapsed = make(map[string]bool)
	w.selected = nil
	w.stale = make(map[plan.StepKey]bool)
	w.mu.Unlock()

	w.logger.Info("wizard started", "idea_length", len(idea))
	w.bus.Publish(event.NewWizardStartedEvent(idea))
	return nil
}

// Decide reports what the wizard needs to do next.
func (w *Wizard) Decide() Action {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.decideLocked()
}

func (w *Wizard) decideLocked() Action {
	switch {
	case !w.started || w.loading:
		return ActionIdle
	case w.clarification != nil || w.failed:
		return ActionAwaitInput
	case slices.Contains(w.completed, w.active):
		return ActionIdle
	}
	step, err := steps.Get(w.active)
	if err != nil {
		return ActionIdle
	}
	if step.NeedsClarification {
		return ActionAskClarification
	}
	return ActionGenerate
}

// Advance performs whatever Decide says and returns the action taken.
func (w *Wizard) Advance(ctx context.Context) (Action, error) {
	w.mu.Lock()
	action := w.decideLocked()
	active := w.active
	w.mu.Unlock()

	switch action {
	case ActionAskClarification, ActionGenerate:
		return action, w.RunStep(ctx, active, "")
	default:
		return action, nil
	}
}

// RunStep runs one step. When the step needs clarification and answer is
// empty, a clarifying question is generated and stored, and RunStep returns
// without generating content. Otherwise the step's content is generated
// from the prompt and the answer, stored, and the step is marked complete.
//
// A failure is recorded as the wizard's last error and returned wrapped in
// an errors.StepError.
func (w *Wizard) RunStep(ctx context.Context, key plan.StepKey, answer string) error {
	step, err := steps.Get(key)
	if err != nil {
		stepErr := errors.NewStepError(int(key), "step not found", errors.Join(errors.ErrStepNotFound, err))
		w.mu.Lock()
		w.lastErr = stepErr
		w.mu.Unlock()
		return stepErr
	}

	w.mu.Lock()
	switch {
	case !w.started:
		w.mu.Unlock()
		return errors.ErrNotStarted
	case w.gen == nil:
		w.mu.Unlock()
		return errors.ErrMissingAPIKey
	case w.loading:
		w.mu.Unlock()
		return errors.ErrBusy
	}
	w.loading = true
	w.lastErr = nil
	w.failed = false
	idea := w.data.EffectiveIdea(w.idea)
	data := w.data.Clone()
	refresh := w.stale[key]
	w.mu.Unlock()

	log := w.logger.WithStep(int(key), step.Name)
	if refresh {
		ctx = cache.WithRefresh(ctx)
	}

	if step.NeedsClarification && answer == "" {
		log.Debug("requesting clarification")
		q, err := w.gen.GenerateClarifyingQuestion(ctx, step.BuildClarificationPrompt(idea, data))
		if err != nil {
			return w.fail(step, err)
		}

		w.mu.Lock()
		w.clarification = &PendingClarification{Step: key, Clarification: q}
		w.loading = false
		w.mu.Unlock()

		log.Info("clarification requested", "options", len(q.Options))
		w.bus.Publish(event.NewClarificationRequestedEvent(int(key), step.Name, q.Question, slices.Clone(q.Options)))
		return nil
	}

	log.Debug("generating step content", "has_answer", answer != "")
	result, err := w.gen.GenerateContent(ctx, step.BuildPrompt(idea, data, answer), step.Schema)
	if err != nil {
		return w.fail(step, err)
	}

	w.mu.Lock()
	w.data.Set(key, result)
	w.completed = plan.SortedUnique(append(w.completed, key))
	delete(w.stale, key)
	w.selected = nil
	w.clarification = nil
	w.loading = false
	final := key == steps.Last() && len(w.completed) == steps.Count()
	w.mu.Unlock()

	log.Info("step completed", "bytes", len(result))
	w.bus.Publish(event.NewStepCompletedEvent(int(key), step.Name, final))
	return nil
}

func (w *Wizard) fail(step steps.Step, err error) error {
	stepErr := errors.NewStepError(int(step.ID), "generation failed", err).WithStepName(step.Name)

	w.mu.Lock()
	w.lastErr = stepErr
	w.failed = step.ID == w.active
	w.clarification = nil
	w.loading = false
	w.mu.Unlock()

	msg := errors.UserMessage(err)
	w.logger.WithStep(int(step.ID), step.Name).Error("step failed", "error", err.Error())
	w.bus.Publish(event.NewStepFailedEvent(int(step.ID), step.Name, msg, err))
	return stepErr
}

// AnswerClarification answers the pending question and generates the step
// it belongs to.
func (w *Wizard) AnswerClarification(ctx context.Context, answer string) error {
	answer = strings.TrimSpace(answer)

	w.mu.Lock()
	pending := w.clarification
	w.mu.Unlock()

	if pending == nil {
		return errors.ErrNoPendingClarification
	}
	if answer == "" {
		return errors.NewValidationError("answer cannot be empty").WithField("answer").WithCause(errors.ErrInvalidInput)
	}
	return w.RunStep(ctx, pending.Step, answer)
}

// Retry clears a failure on the active step so the next Advance tries again.
func (w *Wizard) Retry() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.failed || w.loading {
		return false
	}
	w.failed = false
	w.lastErr = nil
	return true
}

// Next moves to the following step. The active step must be complete, no
// request may be outstanding, and the active step must not be the last.
func (w *Wizard) Next() error {
	w.mu.Lock()
	switch {
	case !w.started:
		w.mu.Unlock()
		return errors.ErrNotStarted
	case w.loading:
		w.mu.Unlock()
		return errors.ErrBusy
	case w.clarification != nil:
		w.mu.Unlock()
		return errors.ErrAwaitingClarification
	case !slices.Contains(w.completed, w.active):
		w.mu.Unlock()
		return errors.ErrStepIncomplete
	case w.active >= steps.Last():
		w.mu.Unlock()
		return errors.ErrLastStep
	}
	from := w.active
	w.active++
	w.failed = false
	to := w.active
	w.mu.Unlock()

	w.bus.Publish(event.NewStepNavigatedEvent(int(from), int(to)))
	return nil
}

// Back moves to the previous step, staying at the first. A pending
// clarification is discarded.
func (w *Wizard) Back() error {
	w.mu.Lock()
	if !w.started {
		w.mu.Unlock()
		return errors.ErrNotStarted
	}
	if w.loading {
		w.mu.Unlock()
		return errors.ErrBusy
	}
	from := w.active
	w.active = max(plan.StepRefineIdea, w.active-1)
	to := w.active
	if from != to {
		w.clarification = nil
		w.failed = false
	}
	w.mu.Unlock()

	if from != to {
		w.bus.Publish(event.NewStepNavigatedEvent(int(from), int(to)))
	}
	return nil
}

// Regenerate discards the data and completion of the active step and every
// later step so the next Advance generates them again. Those steps bypass
// the response cache until they complete again. It is ignored while a
// request is outstanding or a clarification is pending, and returns the
// steps that were dropped.
func (w *Wizard) Regenerate() []plan.StepKey {
	w.mu.Lock()
	if !w.started || w.loading || w.clarification != nil {
		w.mu.Unlock()
		return nil
	}
	active := w.active

	dropped := slices.DeleteFunc(w.data.Keys(), func(k plan.StepKey) bool { return k < active })
	for _, k := range w.completed {
		if k >= active {
			dropped = append(dropped, k)
		}
	}
	dropped = plan.SortedUnique(dropped)
	w.stale[active] = true
	for _, k := range dropped {
		w.stale[k] = true
	}

	w.data.TruncateFrom(active)
	w.completed = slices.DeleteFunc(w.completed, func(k plan.StepKey) bool { return k >= active })
	w.failed = false
	w.lastErr = nil
	w.mu.Unlock()

	ints := make([]int, len(dropped))
	for i, k := range dropped {
		ints[i] = int(k)
	}
	w.logger.Info("regenerating", "step", int(active), "dropped", ints)
	w.bus.Publish(event.NewStepRegeneratedEvent(int(active), ints))
	return dropped
}
