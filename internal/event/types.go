package event

import "time"

// Event is the interface that all events must implement.
type Event interface {
	// EventType returns a "category.action" identifier, e.g. "step.completed".
	EventType() string

	// Timestamp returns when the event occurred.
	Timestamp() time.Time
}

// Event type identifiers.
const (
	TypeWizardStarted          = "wizard.started"
	TypeClarificationRequested = "step.clarification_requested"
	TypeStepCompleted          = "step.completed"
	TypeStepFailed             = "step.failed"
	TypeStepRegenerated        = "step.regenerated"
	TypeStepNavigated          = "step.navigated"
	TypeSessionSaved           = "session.saved"
	TypeSessionLoaded          = "session.loaded"
)

// baseEvent provides common fields for all events.
type baseEvent struct {
	eventType string
	timestamp time.Time
}

func (e baseEvent) EventType() string    { return e.eventType }
func (e baseEvent) Timestamp() time.Time { return e.timestamp }

func newBaseEvent(eventType string) baseEvent {
	return baseEvent{
		eventType: eventType,
		timestamp: time.Now(),
	}
}

// -----------------------------------------------------------------------------
// Wizard Lifecycle Events
// -----------------------------------------------------------------------------

// WizardStartedEvent is emitted when a new idea is submitted.
type WizardStartedEvent struct {
	baseEvent
	Idea string
}

// NewWizardStartedEvent creates a WizardStartedEvent.
func NewWizardStartedEvent(idea string) WizardStartedEvent {
	return WizardStartedEvent{
		baseEvent: newBaseEvent(TypeWizardStarted),
		Idea:      idea,
	}
}

// -----------------------------------------------------------------------------
// Step Events
// -----------------------------------------------------------------------------

// ClarificationRequestedEvent is emitted when the model has produced a
// question that must be answered before a step can be generated.
type ClarificationRequestedEvent struct {
	baseEvent
	Step     int
	StepName string
	Question string
	Options  []string
}

// NewClarificationRequestedEvent creates a ClarificationRequestedEvent.
func NewClarificationRequestedEvent(step int, stepName, question string, options []string) ClarificationRequestedEvent {
	return ClarificationRequestedEvent{
		baseEvent: newBaseEvent(TypeClarificationRequested),
		Step:      step,
		StepName:  stepName,
		Question:  question,
		Options:   options,
	}
}

// StepCompletedEvent is emitted when a step's content has been generated.
type StepCompletedEvent struct {
	baseEvent
	Step     int
	StepName string
	Final    bool // true when the last step of the wizard completed
}

// NewStepCompletedEvent creates a StepCompletedEvent.
func NewStepCompletedEvent(step int, stepName string, final bool) StepCompletedEvent {
	return StepCompletedEvent{
		baseEvent: newBaseEvent(TypeStepCompleted),
		Step:      step,
		StepName:  stepName,
		Final:     final,
	}
}

// StepFailedEvent is emitted when generating a step or its clarification fails.
type StepFailedEvent struct {
	baseEvent
	Step     int
	StepName string
	Message  string // user-facing message
	Err      error
}

// NewStepFailedEvent creates a StepFailedEvent.
func NewStepFailedEvent(step int, stepName, message string, err error) StepFailedEvent {
	return StepFailedEvent{
		baseEvent: newBaseEvent(TypeStepFailed),
		Step:      step,
		StepName:  stepName,
		Message:   message,
		Err:       err,
	}
}

// StepRegeneratedEvent is emitted when the active step and every later step
// have been discarded.
type StepRegeneratedEvent struct {
	baseEvent
	Step    int
	Dropped []int // steps whose data was removed
}

// NewStepRegeneratedEvent creates a StepRegeneratedEvent.
func NewStepRegeneratedEvent(step int, dropped []int) StepRegeneratedEvent {
	return StepRegeneratedEvent{
		baseEvent: newBaseEvent(TypeStepRegenerated),
		Step:      step,
		Dropped:   dropped,
	}
}

// StepNavigatedEvent is emitted when the active step changes.
type StepNavigatedEvent struct {
	baseEvent
	From int
	To   int
}

// NewStepNavigatedEvent creates a StepNavigatedEvent.
func NewStepNavigatedEvent(from, to int) StepNavigatedEvent {
	return StepNavigatedEvent{
		baseEvent: newBaseEvent(TypeStepNavigated),
		From:      from,
		To:        to,
	}
}

// -----------------------------------------------------------------------------
// Session Events
// -----------------------------------------------------------------------------

// SessionSavedEvent is emitted after a session blob has been written.
type SessionSavedEvent struct {
	baseEvent
	Slot string
	Path string
}

// NewSessionSavedEvent creates a SessionSavedEvent.
func NewSessionSavedEvent(slot, path string) SessionSavedEvent {
	return SessionSavedEvent{
		baseEvent: newBaseEvent(TypeSessionSaved),
		Slot:      slot,
		Path:      path,
	}
}

// SessionLoadedEvent is emitted after a session blob has been restored.
type SessionLoadedEvent struct {
	baseEvent
	Slot       string
	Idea       string
	ActiveStep int
}

// NewSessionLoadedEvent creates a SessionLoadedEvent.
func NewSessionLoadedEvent(slot, idea string, activeStep int) SessionLoadedEvent {
	return SessionLoadedEvent{
		baseEvent:  newBaseEvent(TypeSessionLoaded),
		Slot:       slot,
		Idea:       idea,
		ActiveStep: activeStep,
	}
}
