// Package internal contains integration tests that verify the wizard, model
// client, cache, session store, export and mind map packages work together.
package internal

import (
	"context"
	"slices"
	"strings"
	"sync"
	"testing"

	"github.com/spf13/afero"

	"github.com/Iron-Ham/appcanvas/internal/ai"
	"github.com/Iron-Ham/appcanvas/internal/cache"
	"github.com/Iron-Ham/appcanvas/internal/config"
	"github.com/Iron-Ham/appcanvas/internal/event"
	"github.com/Iron-Ham/appcanvas/internal/export"
	"github.com/Iron-Ham/appcanvas/internal/mindmap"
	"github.com/Iron-Ham/appcanvas/internal/plan"
	"github.com/Iron-Ham/appcanvas/internal/session"
	"github.com/Iron-Ham/appcanvas/internal/steps"
	"github.com/Iron-Ham/appcanvas/internal/testutil"
	"github.com/Iron-Ham/appcanvas/internal/wizard"
)

// stepBackend answers step requests with testutil.StepPayloads and every
// other request with a clarifying question.
type stepBackend struct {
	mu    sync.Mutex
	calls int
}

func (b *stepBackend) Name() ai.BackendName { return "scripted" }
func (b *stepBackend) DisplayName() string  { return "Scripted" }

func (b *stepBackend) Generate(_ context.Context, req ai.Request) (string, error) {
	b.mu.Lock()
	b.calls++
	b.mu.Unlock()
	for _, step := range steps.All() {
		if step.Schema == req.Schema {
			return testutil.StepPayloads[step.ID], nil
		}
	}
	return `{"question":"Which goal?","options":["Save time","Save money"]}`, nil
}

func (b *stepBackend) callCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.calls
}

// recordEvents subscribes to every event and returns the observed types.
func recordEvents(bus *event.Bus) func() []string {
	var mu sync.Mutex
	var types []string
	bus.SubscribeAll(func(e event.Event) {
		mu.Lock()
		types = append(types, e.EventType())
		mu.Unlock()
	})
	return func() []string {
		mu.Lock()
		defer mu.Unlock()
		return slices.Clone(types)
	}
}

func completeActiveStep(t *testing.T, w *wizard.Wizard, answer string) {
	t.Helper()
	ctx := context.Background()
	action, err := w.Advance(ctx)
	if err != nil {
		t.Fatalf("Advance() error = %v", err)
	}
	if action != wizard.ActionAskClarification {
		t.Fatalf("Advance() action = %v, want ask_clarification", action)
	}
	if err := w.AnswerClarification(ctx, answer); err != nil {
		t.Fatalf("AnswerClarification() error = %v", err)
	}
}

// TestClientDrivesWizard runs steps through the real model client and checks
// that regenerating a step asks the model again instead of replaying the
// cached answers.
func TestClientDrivesWizard(t *testing.T) {
	backend := &stepBackend{}
	client := ai.NewClient(backend,
		ai.WithCache(cache.NewMemoryStore()),
		ai.WithRetry(config.RetryConfig{MaxAttempts: 2, BaseDelayMs: 1, MaxDelayMs: 2}),
	)
	w := wizard.New(client)

	if err := w.Start("Grocery app"); err != nil {
		t.Fatal(err)
	}
	completeActiveStep(t, w, "Save time")
	if err := w.Next(); err != nil {
		t.Fatal(err)
	}
	completeActiveStep(t, w, "Save money")

	if got := w.State().Data.Modules(); len(got) != 1 || got[0].ID != "lists" {
		t.Fatalf("modules = %+v", got)
	}
	calls := backend.callCount()
	hits := client.Stats().CacheHits

	if dropped := w.Regenerate(); !slices.Equal(dropped, []plan.StepKey{plan.StepModules}) {
		t.Fatalf("Regenerate() dropped %v", dropped)
	}
	completeActiveStep(t, w, "Save money")

	if got := backend.callCount() - calls; got != 2 {
		t.Errorf("backend called %d more times after Regenerate, want 2 (question and content)", got)
	}
	if got := client.Stats().CacheHits; got != hits {
		t.Errorf("CacheHits = %d, want %d: regenerated steps must not use the cache", got, hits)
	}
	if !w.IsComplete(plan.StepModules) {
		t.Error("regenerated step should be complete again")
	}
}

// TestSessionLifecycle completes every step, saves, reloads into a fresh
// wizard and exports the result.
func TestSessionLifecycle(t *testing.T) {
	bus := event.NewBus()
	events := recordEvents(bus)
	w := wizard.New(testutil.NewFakeGenerator(), wizard.WithBus(bus))

	if err := w.Start("Grocery app"); err != nil {
		t.Fatal(err)
	}
	for {
		completeActiveStep(t, w, "Save time")
		if w.ActiveStep() == steps.Last() {
			break
		}
		if err := w.Next(); err != nil {
			t.Fatal(err)
		}
	}
	if !w.AllComplete() {
		t.Fatal("expected every step complete")
	}
	w.ToggleCollapse("lists")

	fs := afero.NewMemMapFs()
	store := session.NewStore(fs, "/sessions")
	if _, err := w.Save(store, config.DefaultSlot); err != nil {
		t.Fatal(err)
	}

	restored := wizard.New(nil, wizard.WithBus(bus))
	if err := restored.Load(store, config.DefaultSlot); err != nil {
		t.Fatal(err)
	}
	if restored.ActiveStep() != steps.Last() || !restored.AllComplete() {
		t.Errorf("restored active=%d complete=%v", restored.ActiveStep(), restored.AllComplete())
	}
	if got := restored.CollapsedNodes(); !slices.Equal(got, []string{"lists"}) {
		t.Errorf("collapsed = %v, want [lists]", got)
	}

	snap := restored.Snapshot()
	g := mindmap.Build(snap.Idea, snap.AppData)
	if got := len(g.Nodes); got != 4 {
		t.Errorf("mind map has %d nodes, want 4", got)
	}
	collapsed := map[string]bool{"lists": true}
	if got := len(g.Visible(collapsed).Nodes); got != 2 {
		t.Errorf("visible nodes with lists collapsed = %d, want 2", got)
	}

	path, err := export.WriteFS(fs, export.FormatMarkdown, snap, "/out")
	if err != nil {
		t.Fatal(err)
	}
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"Lists", "Create List", "Tap New"} {
		if !strings.Contains(string(data), want) {
			t.Errorf("markdown export missing %q", want)
		}
	}

	got := events()
	count := func(eventType string) int {
		n := 0
		for _, e := range got {
			if e == eventType {
				n++
			}
		}
		return n
	}
	if n := count(event.TypeStepCompleted); n != steps.Count() {
		t.Errorf("%d step.completed events, want %d", n, steps.Count())
	}
	if n := count(event.TypeClarificationRequested); n != steps.Count() {
		t.Errorf("%d clarification events, want %d", n, steps.Count())
	}
	if count(event.TypeSessionSaved) != 1 || count(event.TypeSessionLoaded) != 1 {
		t.Errorf("expected one save and one load event, got %v", got)
	}
	if got[0] != event.TypeWizardStarted {
		t.Errorf("first event = %q, want %q", got[0], event.TypeWizardStarted)
	}
}
