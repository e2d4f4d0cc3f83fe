// Package plan defines the application plan produced by the wizard: the
// per-step payloads returned by the model and the container that holds them.
package plan

import (
	"bytes"
	"encoding/json"
	"fmt"
	"maps"
	"slices"
	"strconv"
)

// StepKey identifies one of the wizard steps.
type StepKey int

const (
	StepRefineIdea StepKey = iota
	StepModules
	StepFeatures
	StepActions
	StepPages
	StepDatabase
	StepFeatureDetails
	StepBackend
	StepDesignSystem
)

// StepCount is the number of wizard steps.
const StepCount = 9

// Valid reports whether k names an existing step.
func (k StepKey) Valid() bool {
	return k >= 0 && k < StepCount
}

func (k StepKey) String() string {
	return strconv.Itoa(int(k))
}

// Refinement is the payload of the Refine Idea step.
type Refinement struct {
	RefinedIdea    string `json:"refinedIdea"`
	TargetAudience string `json:"targetAudience"`
}

// Module is a high-level area of the application.
type Module struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Concept is the payload of the Modules & Core Concept step.
type Concept struct {
	Description string   `json:"description"`
	Modules     []Module `json:"modules"`
}

// Feature belongs to a module.
type Feature struct {
	ID          string `json:"id"`
	ModuleID    string `json:"moduleId"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Action is a single user task within a feature.
type Action struct {
	ID          string `json:"id"`
	FeatureID   string `json:"featureId"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Page is a UI screen.
type Page struct {
	Name        string   `json:"name"`
	ModuleID    string   `json:"moduleId"`
	Description string   `json:"description"`
	Layout      string   `json:"layout"`
	Components  []string `json:"components"`
}

// Attribute is a column of an entity.
type Attribute struct {
	Name        string `json:"name"`
	Type        string `json:"type"`
	Description string `json:"description"`
}

// Entity is a table in the database schema.
type Entity struct {
	Name          string      `json:"name"`
	Attributes    []Attribute `json:"attributes"`
	Relationships []string    `json:"relationships"`
	Constraints   []string    `json:"constraints"`
	Logging       []string    `json:"logging"`
}

// FeatureDetail holds implementation notes for a feature.
type FeatureDetail struct {
	FeatureID       string `json:"featureId"`
	StateManagement string `json:"stateManagement"`
	FormHandling    string `json:"formHandling"`
	Authorization   string `json:"authorization"`
}

// BackendFunction is a serverless function or API endpoint.
type BackendFunction struct {
	FeatureID   string `json:"featureId"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// CronJob is a recurring background task.
type CronJob struct {
	Name        string `json:"name"`
	Schedule    string `json:"schedule"`
	Description string `json:"description"`
}

// Backend groups the backend logic of the application.
type Backend struct {
	Functions []BackendFunction `json:"functions"`
	CronJobs  []CronJob         `json:"cronJobs"`
}

// Colors is the design palette as hex codes.
type Colors struct {
	Primary   string `json:"primary"`
	Secondary string `json:"secondary"`
	Accent    string `json:"accent"`
	Neutral   string `json:"neutral"`
}

// Typography names the heading and body fonts.
type Typography struct {
	Heading string `json:"heading"`
	Body    string `json:"body"`
}

// DesignGuidelines is the visual style of the application.
type DesignGuidelines struct {
	Colors     Colors     `json:"colors"`
	Typography Typography `json:"typography"`
	Style      string     `json:"style"`
	Spacing    string     `json:"spacing"`
	Icons      string     `json:"icons"`
}

// Clarification is a multiple-choice question asked before a step runs.
type Clarification struct {
	Question string   `json:"question"`
	Options  []string `json:"options"`
}

// AppData maps each completed step to the JSON the model returned for it.
// Payloads are kept verbatim so nothing the model produced is lost; the typed
// accessors decode on demand and return zero values for absent steps.
type AppData map[StepKey]json.RawMessage

// Set stores the payload for a step.
func (d AppData) Set(key StepKey, payload json.RawMessage) {
	d[key] = slices.Clone(payload)
}

// Has reports whether a step has data.
func (d AppData) Has(key StepKey) bool {
	_, ok := d[key]
	return ok
}

// Raw returns the payload for a step, or nil.
func (d AppData) Raw(key StepKey) json.RawMessage {
	return d[key]
}

// Keys returns the steps with data in ascending order.
func (d AppData) Keys() []StepKey {
	return slices.Sorted(maps.Keys(d))
}

// Clone returns a deep copy.
func (d AppData) Clone() AppData {
	out := make(AppData, len(d))
	for k, v := range d {
		out[k] = slices.Clone(v)
	}
	return out
}

// TruncateFrom deletes the data for step and every later step.
func (d AppData) TruncateFrom(step StepKey) {
	for k := range d {
		if k >= step {
			delete(d, k)
		}
	}
}

// Decode unmarshals the payload for key into v. It reports false when the
// step has no data.
func (d AppData) Decode(key StepKey, v any) (bool, error) {
	raw, ok := d[key]
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return true, fmt.Errorf("decode step %d: %w", key, err)
	}
	return true, nil
}

// Pretty returns the payload for key as 2-space indented JSON.
func (d AppData) Pretty(key StepKey) string {
	raw, ok := d[key]
	if !ok {
		return ""
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, raw, "", "  "); err != nil {
		return string(raw)
	}
	return buf.String()
}

// Field returns one top-level property of a step payload as indented JSON,
// preserving the model's own key order. It reports false when the step or
// property is absent.
func (d AppData) Field(key StepKey, name string) (string, bool) {
	raw, ok := d[key]
	if !ok {
		return "", false
	}
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err != nil {
		return "", false
	}
	val, ok := obj[name]
	if !ok {
		return "", false
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, val, "", "  "); err != nil {
		return string(val), true
	}
	return buf.String(), true
}

func decodeOrZero[T any](d AppData, key StepKey) T {
	var v T
	_, _ = d.Decode(key, &v)
	return v
}

// Refinement returns the Refine Idea payload.
func (d AppData) Refinement() Refinement {
	return decodeOrZero[Refinement](d, StepRefineIdea)
}

// Concept returns the Modules & Core Concept payload.
func (d AppData) Concept() Concept {
	return decodeOrZero[Concept](d, StepModules)
}

// Modules returns the modules, or nil before step 1 completes.
func (d AppData) Modules() []Module {
	return d.Concept().Modules
}

// Features returns all features.
func (d AppData) Features() []Feature {
	return decodeOrZero[struct {
		Features []Feature `json:"features"`
	}](d, StepFeatures).Features
}

// Actions returns all user actions.
func (d AppData) Actions() []Action {
	return decodeOrZero[struct {
		Actions []Action `json:"actions"`
	}](d, StepActions).Actions
}

// Pages returns the application pages.
func (d AppData) Pages() []Page {
	return decodeOrZero[struct {
		Pages []Page `json:"pages"`
	}](d, StepPages).Pages
}

// Database returns the entities of the database schema.
func (d AppData) Database() []Entity {
	return decodeOrZero[struct {
		Database []Entity `json:"database"`
	}](d, StepDatabase).Database
}

// FeatureDetails returns the implementation notes.
func (d AppData) FeatureDetails() []FeatureDetail {
	return decodeOrZero[struct {
		FeatureDetails []FeatureDetail `json:"featureDetails"`
	}](d, StepFeatureDetails).FeatureDetails
}

// Backend returns the backend logic.
func (d AppData) Backend() Backend {
	return decodeOrZero[struct {
		Backend Backend `json:"backend"`
	}](d, StepBackend).Backend
}

// DesignGuidelines returns the design system.
func (d AppData) DesignGuidelines() DesignGuidelines {
	return decodeOrZero[struct {
		DesignGuidelines DesignGuidelines `json:"designGuidelines"`
	}](d, StepDesignSystem).DesignGuidelines
}

// EffectiveIdea returns the refined idea when step 0 produced one, otherwise
// the original idea.
func (d AppData) EffectiveIdea(idea string) string {
	if refined := d.Refinement().RefinedIdea; refined != "" {
		return refined
	}
	return idea
}

// Summary returns the best available one-paragraph description of the idea.
func (d AppData) Summary() string {
	if desc := d.Concept().Description; desc != "" {
		return desc
	}
	return d.Refinement().RefinedIdea
}

// ModuleByID finds a module.
func (d AppData) ModuleByID(id string) (Module, bool) {
	for _, m := range d.Modules() {
		if m.ID == id {
			return m, true
		}
	}
	return Module{}, false
}

// FeatureByID finds a feature.
func (d AppData) FeatureByID(id string) (Feature, bool) {
	for _, f := range d.Features() {
		if f.ID == id {
			return f, true
		}
	}
	return Feature{}, false
}

// ActionByID finds an action.
func (d AppData) ActionByID(id string) (Action, bool) {
	for _, a := range d.Actions() {
		if a.ID == id {
			return a, true
		}
	}
	return Action{}, false
}
