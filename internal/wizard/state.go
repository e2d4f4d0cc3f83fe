package wizard

import (
	"maps"
	"slices"

	"github.com/Iron-Ham/appcanvas/internal/errors"
	"github.com/Iron-Ham/appcanvas/internal/event"
	"github.com/Iron-Ham/appcanvas/internal/plan"
	"github.com/Iron-Ham/appcanvas/internal/session"
	"github.com/Iron-Ham/appcanvas/internal/steps"
)

// State is a consistent copy of the wizard's state for rendering.
type State struct {
	Started        bool
	Idea           string
	Data           plan.AppData
	ActiveStep     plan.StepKey
	CompletedSteps []plan.StepKey
	Clarification  *PendingClarification
	Loading        bool
	Err            error
	Collapsed      map[string]bool
	Selected       []string
}

// State returns a copy of the current state.
func (w *Wizard) State() State {
	w.mu.Lock()
	defer w.mu.Unlock()

	var pending *PendingClarification
	if w.clarification != nil {
		c := *w.clarification
		c.Options = slices.Clone(c.Options)
		pending = &c
	}
	return State{
		Started:        w.started,
		Idea:           w.idea,
		Data:           w.data.Clone(),
		ActiveStep:     w.active,
		CompletedSteps: slices.Clone(w.completed),
		Clarification:  pending,
		Loading:        w.loading,
		Err:            w.lastErr,
		Collapsed:      maps.Clone(w.collapsed),
		Selected:       slices.Clone(w.selected),
	}
}

// Started reports whether an idea has been submitted or a session restored.
func (w *Wizard) Started() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.started
}

// ActiveStep returns the active step.
func (w *Wizard) ActiveStep() plan.StepKey {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.active
}

// Clarification returns the pending question, or nil.
func (w *Wizard) Clarification() *PendingClarification {
	return w.State().Clarification
}

// Err returns the last recorded error, or nil.
func (w *Wizard) Err() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.lastErr
}

// ClearErr forgets the last error without clearing a step failure.
func (w *Wizard) ClearErr() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.lastErr = nil
}

// IsComplete reports whether step has been generated.
func (w *Wizard) IsComplete(step plan.StepKey) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return slices.Contains(w.completed, step)
}

// AllComplete reports whether every step has been generated.
func (w *Wizard) AllComplete() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.completed) == steps.Count()
}

// Navigation is the state of the wizard's navigation controls.
type Navigation struct {
	NextLabel     string
	ShowNextArrow bool
	DisableNext   bool
	DisableBack   bool
	CanRegenerate bool
}

// Navigation computes the navigation controls for the current state.
func (w *Wizard) Navigation() Navigation {
	w.mu.Lock()
	defer w.mu.Unlock()

	isFirst := w.active == plan.StepRefineIdea
	isLast := w.active == steps.Last()
	allComplete := len(w.completed) == steps.Count()
	currentComplete := slices.Contains(w.completed, w.active)

	label := "Next"
	if !isLast && currentComplete {
		next, err := steps.Get(w.active + 1)
		if err == nil && !slices.Contains(w.completed, next.ID) {
			label = "Generate: " + next.Name
		}
	}
	if isLast && allComplete {
		label = "Finished"
	}

	return Navigation{
		NextLabel:     label,
		ShowNextArrow: !(isLast && allComplete),
		DisableNext:   w.loading || w.clarification != nil || (isLast && currentComplete) || !currentComplete,
		DisableBack:   isFirst || w.loading,
		CanRegenerate: !w.loading && w.clarification == nil && currentComplete,
	}
}

// StepStatus is a step's position in the timeline.
type StepStatus int

const (
	StatusPending StepStatus = iota
	StatusCompleted
	StatusActive
)

func (s StepStatus) String() string {
	switch s {
	case StatusCompleted:
		return "completed"
	case StatusActive:
		return "active"
	default:
		return "pending"
	}
}

// TimelineEntry is one row of the timeline.
type TimelineEntry struct {
	Step   steps.Step
	Status StepStatus
}

// Timeline returns every step with its status. The active step is reported
// as active even when it is complete.
func (w *Wizard) Timeline() []TimelineEntry {
	w.mu.Lock()
	defer w.mu.Unlock()

	all := steps.All()
	out := make([]TimelineEntry, len(all))
	for i, step := range all {
		status := StatusPending
		switch {
		case step.ID == w.active:
			status = StatusActive
		case slices.Contains(w.completed, step.ID):
			status = StatusCompleted
		}
		out[i] = TimelineEntry{Step: step, Status: status}
	}
	return out
}

// -----------------------------------------------------------------------------
// Node selection
// -----------------------------------------------------------------------------

// SelectNode updates the selection. An empty id clears it. With additive
// set the node is toggled in the selection, otherwise it replaces it.
func (w *Wizard) SelectNode(id string, additive bool) []string {
	w.mu.Lock()
	defer w.mu.Unlock()

	switch {
	case id == "":
		w.selected = nil
	case additive:
		if i := slices.Index(w.selected, id); i >= 0 {
			w.selected = slices.Delete(w.selected, i, i+1)
		} else {
			w.selected = append(w.selected, id)
		}
	default:
		w.selected = []string{id}
	}
	return slices.Clone(w.selected)
}

// Selected returns the selected node IDs in selection order.
func (w *Wizard) Selected() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return slices.Clone(w.selected)
}

// ToggleCollapse collapses or expands a node and reports whether it is now
// collapsed.
func (w *Wizard) ToggleCollapse(id string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.collapsed[id] {
		delete(w.collapsed, id)
		return false
	}
	w.collapsed[id] = true
	return true
}

// CollapsedNodes returns the collapsed node IDs sorted.
func (w *Wizard) CollapsedNodes() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return slices.Sorted(maps.Keys(w.collapsed))
}

// -----------------------------------------------------------------------------
// Persistence
// -----------------------------------------------------------------------------

// Snapshot returns the persisted form of the session.
func (w *Wizard) Snapshot() *plan.Snapshot {
	w.mu.Lock()
	defer w.mu.Unlock()

	return &plan.Snapshot{
		Idea:           w.idea,
		AppData:        w.data.Clone(),
		ActiveStep:     w.active,
		CompletedSteps: slices.Clone(w.completed),
		CollapsedNodes: slices.Sorted(maps.Keys(w.collapsed)),
	}
}

// Restore replaces the session with snap.
func (w *Wizard) Restore(snap *plan.Snapshot) error {
	if snap == nil {
		return errors.ErrInvalidSession
	}
	if err := snap.Validate(); err != nil {
		return err
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.loading {
		return errors.ErrBusy
	}

	w.started = true
	w.idea = snap.Idea
	w.data = snap.AppData.Clone()
	w.active = snap.ActiveStep
	w.completed = plan.SortedUnique(snap.CompletedSteps)
	w.clarification = nil
	w.lastErr = nil
	w.failed = false
	w.selected = nil
	w.stale = make(map[plan.StepKey]bool)
	w.collapsed = make(map[string]bool, len(snap.CollapsedNodes))
	for _, id := range snap.CollapsedNodes {
		w.collapsed[id] = true
	}
	return nil
}

// Save writes the session to slot and returns the file path.
func (w *Wizard) Save(store *session.Store, slot string) (string, error) {
	path, err := store.Save(slot, w.Snapshot())
	if err != nil {
		w.logger.Error("save failed", "slot", slot, "error", err.Error())
		return "", err
	}
	w.logger.WithSession(slot).Info("session saved", "path", path)
	w.bus.Publish(event.NewSessionSavedEvent(slot, path))
	return path, nil
}

// Load restores the session saved in slot.
func (w *Wizard) Load(store *session.Store, slot string) error {
	snap, err := store.Load(slot)
	if err != nil {
		w.logger.WithSession(slot).Warn("load failed", "error", err.Error())
		return err
	}
	if err := w.Restore(snap); err != nil {
		return err
	}
	w.logger.WithSession(slot).Info("session loaded", "active_step", int(snap.ActiveStep))
	w.bus.Publish(event.NewSessionLoadedEvent(slot, snap.Idea, int(snap.ActiveStep)))
	return nil
}
