package plan

import (
	"encoding/json"
	"fmt"
	"slices"

	"github.com/Iron-Ham/appcanvas/internal/errors"
)

// Snapshot is the persisted form of a wizard session.
type Snapshot struct {
	Idea           string    `json:"idea"`
	AppData        AppData   `json:"appData"`
	ActiveStep     StepKey   `json:"activeStep"`
	CompletedSteps []StepKey `json:"completedSteps"`
	CollapsedNodes []string  `json:"collapsedNodes"`
}

// Marshal encodes the snapshot as JSON.
func (s *Snapshot) Marshal() ([]byte, error) {
	out := *s
	if out.AppData == nil {
		out.AppData = AppData{}
	}
	if out.CompletedSteps == nil {
		out.CompletedSteps = []StepKey{}
	}
	if out.CollapsedNodes == nil {
		out.CollapsedNodes = []string{}
	}
	return json.Marshal(out)
}

// DecodeSnapshot parses and validates a persisted snapshot. A blob without an
// idea or without app data is rejected with errors.ErrInvalidSession.
// Missing optional fields default to step 0 with nothing completed.
func DecodeSnapshot(data []byte) (*Snapshot, error) {
	var s Snapshot
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("%w: %v", errors.ErrInvalidSession, err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	s.CompletedSteps = SortedUnique(s.CompletedSteps)
	if s.CollapsedNodes == nil {
		s.CollapsedNodes = []string{}
	}
	return &s, nil
}

// Validate reports whether the snapshot can be restored.
func (s *Snapshot) Validate() error {
	if s.Idea == "" {
		return fmt.Errorf("%w: missing idea", errors.ErrInvalidSession)
	}
	if s.AppData == nil {
		return fmt.Errorf("%w: missing app data", errors.ErrInvalidSession)
	}
	if !s.ActiveStep.Valid() {
		return fmt.Errorf("%w: active step %d out of range", errors.ErrInvalidSession, s.ActiveStep)
	}
	for k := range s.AppData {
		if !k.Valid() {
			return fmt.Errorf("%w: unknown step %d in app data", errors.ErrInvalidSession, k)
		}
	}
	for _, k := range s.CompletedSteps {
		if !k.Valid() {
			return fmt.Errorf("%w: unknown completed step %d", errors.ErrInvalidSession, k)
		}
	}
	return nil
}

// SortedUnique returns keys sorted ascending with duplicates removed.
func SortedUnique(keys []StepKey) []StepKey {
	out := slices.Clone(keys)
	slices.Sort(out)
	out = slices.Compact(out)
	if out == nil {
		out = []StepKey{}
	}
	return out
}
