// Package event provides a pub-sub event bus that lets the wizard controller
// announce state transitions without knowing who listens.
//
// The TUI subscribes to refresh its panes and show feedback, the logger
// subscribes to record an audit trail, and tests subscribe to assert on the
// sequence of transitions.
//
// # Event Types
//
// Wizard lifecycle:
//   - [WizardStartedEvent] ("wizard.started"): a new idea was submitted
//
// Step progression:
//   - [ClarificationRequestedEvent] ("step.clarification_requested")
//   - [StepCompletedEvent] ("step.completed")
//   - [StepFailedEvent] ("step.failed")
//   - [StepRegeneratedEvent] ("step.regenerated")
//   - [StepNavigatedEvent] ("step.navigated")
//
// Session persistence:
//   - [SessionSavedEvent] ("session.saved")
//   - [SessionLoadedEvent] ("session.loaded")
//
// # Thread Safety
//
// [Bus] is safe for concurrent use. Handlers run synchronously on the
// publishing goroutine; a panicking handler is recovered and does not stop
// delivery to the others.
//
// # Basic Usage
//
//	bus := event.NewBus()
//	bus.Subscribe(event.TypeStepCompleted, func(e event.Event) {
//	    done := e.(event.StepCompletedEvent)
//	    fmt.Println("finished", done.StepName)
//	})
//	bus.Publish(event.NewStepCompletedEvent(1, "Modules & Core Concept", false))
package event
