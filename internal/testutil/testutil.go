// Package testutil provides testing utilities for App Canvas tests.
package testutil

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"slices"
	"sync"
	"testing"

	"github.com/Iron-Ham/appcanvas/internal/plan"
	"github.com/Iron-Ham/appcanvas/internal/schema"
	"github.com/Iron-Ham/appcanvas/internal/steps"
)

// StepPayloads are minimal valid model answers for every step. The first
// four build a one-branch mind map: Lists → Create List → Tap New.
var StepPayloads = map[plan.StepKey]string{
	plan.StepRefineIdea:     `{"refinedIdea":"A shared grocery list","targetAudience":"Families"}`,
	plan.StepModules:        `{"description":"Lists for households","modules":[{"id":"lists","name":"Lists","description":"Shopping lists"}]}`,
	plan.StepFeatures:       `{"features":[{"id":"create_list","moduleId":"lists","name":"Create List","description":"Make a list"}]}`,
	plan.StepActions:        `{"actions":[{"id":"tap_new","featureId":"create_list","name":"Tap New","description":"Start a list"}]}`,
	plan.StepPages:          `{"pages":[]}`,
	plan.StepDatabase:       `{"database":[]}`,
	plan.StepFeatureDetails: `{"featureDetails":[]}`,
	plan.StepBackend:        `{"backend":{"functions":[],"cronJobs":[]}}`,
	plan.StepDesignSystem:   `{"designGuidelines":{"colors":{"primary":"#000","secondary":"#111","accent":"#222","neutral":"#fff"},"typography":{"heading":"Inter","body":"Inter"},"style":"s","spacing":"s","icons":"i"}}`,
}

// DefaultQuestion is the clarification a new FakeGenerator asks.
var DefaultQuestion = plan.Clarification{
	Question: "Which goal?",
	Options:  []string{"Save time", "Save money"},
}

// FakeGenerator is an in-memory model. It answers content requests with
// StepPayloads, matching the schema to its step, and records every prompt.
// It is safe for concurrent use.
type FakeGenerator struct {
	mu       sync.Mutex
	prompts  []string
	asks     []string
	genErr   error
	askErr   error
	question plan.Clarification
}

// NewFakeGenerator returns a generator that asks DefaultQuestion.
func NewFakeGenerator() *FakeGenerator {
	return &FakeGenerator{question: DefaultQuestion}
}

func (f *FakeGenerator) GenerateContent(_ context.Context, prompt string, s *schema.Schema) (json.RawMessage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.prompts = append(f.prompts, prompt)
	if f.genErr != nil {
		return nil, f.genErr
	}
	for _, step := range steps.All() {
		if step.Schema == s {
			return json.RawMessage(StepPayloads[step.ID]), nil
		}
	}
	return nil, fmt.Errorf("unexpected schema")
}

func (f *FakeGenerator) GenerateClarifyingQuestion(_ context.Context, prompt string) (plan.Clarification, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.asks = append(f.asks, prompt)
	if f.askErr != nil {
		return plan.Clarification{}, f.askErr
	}
	return f.question, nil
}

// SetGenErr makes content requests fail with err until it is reset to nil.
func (f *FakeGenerator) SetGenErr(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.genErr = err
}

// SetAskErr makes clarification requests fail with err until it is reset.
func (f *FakeGenerator) SetAskErr(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.askErr = err
}

// SetQuestion replaces the clarification the generator asks.
func (f *FakeGenerator) SetQuestion(q plan.Clarification) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.question = q
}

// Prompts returns the content prompts received so far.
func (f *FakeGenerator) Prompts() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.prompts)
}

// Asks returns the clarification prompts received so far.
func (f *FakeGenerator) Asks() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.asks)
}

// LastPrompt returns the most recent content prompt, or "" if none.
func (f *FakeGenerator) LastPrompt() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.prompts) == 0 {
		return ""
	}
	return f.prompts[len(f.prompts)-1]
}

// SetupDirs points the XDG config and data directories at a temporary
// directory, so configuration, sessions, the cache and logs stay inside the
// test. It returns the temporary directory.
func SetupDirs(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "config"))
	t.Setenv("XDG_DATA_HOME", filepath.Join(dir, "data"))
	return dir
}
