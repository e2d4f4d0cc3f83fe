package session

import (
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/spf13/afero"

	"github.com/Iron-Ham/appcanvas/internal/errors"
	"github.com/Iron-Ham/appcanvas/internal/plan"
)

func newTestStore(t *testing.T) (*Store, afero.Fs) {
	t.Helper()
	fs := afero.NewMemMapFs()
	return NewStore(fs, "/data/sessions"), fs
}

func sampleSnapshot() *plan.Snapshot {
	data := plan.AppData{}
	data.Set(plan.StepRefineIdea, json.RawMessage(`{"refinedIdea":"A shared grocery list","targetAudience":"Families"}`))
	data.Set(plan.StepModules, json.RawMessage(`{"description":"d","modules":[{"id":"lists","name":"Lists","description":"x"}]}`))
	return &plan.Snapshot{
		Idea:           "Grocery app",
		AppData:        data,
		ActiveStep:     plan.StepModules,
		CompletedSteps: []plan.StepKey{plan.StepRefineIdea, plan.StepModules},
		CollapsedNodes: []string{"lists"},
	}
}

func TestStore_SaveLoadRoundTrip(t *testing.T) {
	store, fs := newTestStore(t)

	path, err := store.Save("appCanvasAIState", sampleSnapshot())
	if err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if path != filepath.Join("/data/sessions", "appCanvasAIState.json") {
		t.Errorf("Save() path = %q", path)
	}
	if ok, _ := afero.Exists(fs, path); !ok {
		t.Fatal("session file should exist after Save")
	}

	got, err := store.Load("appCanvasAIState")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got.Idea != "Grocery app" || got.ActiveStep != plan.StepModules {
		t.Errorf("Load() = %+v", got)
	}
	if len(got.CompletedSteps) != 2 || len(got.CollapsedNodes) != 1 {
		t.Errorf("Load() lost fields: %+v", got)
	}
	if got.AppData.Refinement().RefinedIdea != "A shared grocery list" {
		t.Errorf("app data not restored: %s", got.AppData.Raw(plan.StepRefineIdea))
	}
}

func TestStore_SaveOverwrites(t *testing.T) {
	store, _ := newTestStore(t)

	first := sampleSnapshot()
	if _, err := store.Save("slot", first); err != nil {
		t.Fatal(err)
	}
	second := sampleSnapshot()
	second.Idea = "Second idea"
	if _, err := store.Save("slot", second); err != nil {
		t.Fatal(err)
	}

	got, err := store.Load("slot")
	if err != nil {
		t.Fatal(err)
	}
	if got.Idea != "Second idea" {
		t.Errorf("Idea = %q, want overwritten value", got.Idea)
	}
}

func TestStore_LoadErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr error
	}{
		{"missing slot", "", errors.ErrNoSavedSession},
		{"not json", "{nope", errors.ErrInvalidSession},
		{"missing idea", `{"appData":{}}`, errors.ErrInvalidSession},
		{"missing app data", `{"idea":"x"}`, errors.ErrInvalidSession},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, fs := newTestStore(t)
			if tt.content != "" {
				if err := afero.WriteFile(fs, store.Path("slot"), []byte(tt.content), 0o644); err != nil {
					t.Fatal(err)
				}
			}

			_, err := store.Load("slot")
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Load() error = %v, want %v", err, tt.wantErr)
			}
			if errors.UserMessage(err) != tt.wantErr.Error() {
				t.Errorf("UserMessage() = %q", errors.UserMessage(err))
			}
		})
	}
}

func TestStore_LoadDefaultsOptionalFields(t *testing.T) {
	store, fs := newTestStore(t)
	_ = afero.WriteFile(fs, store.Path("slot"), []byte(`{"idea":"x","appData":{"0":{"refinedIdea":"r","targetAudience":"t"}}}`), 0o644)

	got, err := store.Load("slot")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got.ActiveStep != plan.StepRefineIdea || len(got.CompletedSteps) != 0 || got.CollapsedNodes == nil {
		t.Errorf("optional fields not defaulted: %+v", got)
	}
}

func TestStore_SlotValidation(t *testing.T) {
	store, _ := newTestStore(t)
	for _, slot := range []string{"", "../escape", ".hidden", "a/b"} {
		if _, err := store.Save(slot, sampleSnapshot()); !errors.Is(err, errors.ErrInvalidInput) {
			t.Errorf("Save(%q) error = %v, want invalid input", slot, err)
		}
		if _, err := store.Load(slot); !errors.Is(err, errors.ErrInvalidInput) {
			t.Errorf("Load(%q) error = %v, want invalid input", slot, err)
		}
	}
}

func TestStore_SaveRejectsUnstartedSession(t *testing.T) {
	store, _ := newTestStore(t)
	if _, err := store.Save("slot", &plan.Snapshot{}); !errors.Is(err, errors.ErrInvalidSession) {
		t.Errorf("Save(empty) error = %v, want ErrInvalidSession", err)
	}
	if _, err := store.Save("slot", nil); !errors.Is(err, errors.ErrInvalidSession) {
		t.Errorf("Save(nil) error = %v, want ErrInvalidSession", err)
	}
}

func TestStore_ExistsDeleteList(t *testing.T) {
	store, fs := newTestStore(t)

	infos, err := store.List()
	if err != nil || len(infos) != 0 {
		t.Fatalf("List() on empty store = %v, %v", infos, err)
	}

	_, _ = store.Save("beta", sampleSnapshot())
	_, _ = store.Save("alpha", sampleSnapshot())
	_ = afero.WriteFile(fs, store.Path("broken"), []byte("garbage"), 0o644)
	_ = afero.WriteFile(fs, filepath.Join(store.Dir(), "notes.txt"), []byte("ignored"), 0o644)

	if ok, err := store.Exists("alpha"); err != nil || !ok {
		t.Errorf("Exists(alpha) = %v, %v", ok, err)
	}
	if ok, _ := store.Exists("gamma"); ok {
		t.Error("Exists(gamma) should be false")
	}

	infos, err = store.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(infos) != 3 {
		t.Fatalf("List() returned %d slots, want 3: %+v", len(infos), infos)
	}
	wantOrder := []string{"alpha", "beta", "broken"}
	for i, info := range infos {
		if info.Slot != wantOrder[i] {
			t.Errorf("infos[%d].Slot = %q, want %q", i, info.Slot, wantOrder[i])
		}
	}
	if !infos[0].Valid || infos[0].Idea != "Grocery app" || infos[0].Completed != 2 {
		t.Errorf("alpha info = %+v", infos[0])
	}
	if infos[2].Valid {
		t.Error("broken slot should be reported invalid")
	}

	if err := store.Delete("alpha"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if err := store.Delete("alpha"); !errors.Is(err, errors.ErrNoSavedSession) {
		t.Errorf("second Delete() error = %v, want ErrNoSavedSession", err)
	}
}

func TestStore_OSFilesystem(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "sessions")
	store := NewFileStore(dir)

	if _, err := store.Save("slot", sampleSnapshot()); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if _, err := store.Load("slot"); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	matches, _ := filepath.Glob(filepath.Join(dir, ".tmp-*"))
	if len(matches) != 0 {
		t.Errorf("temp files left behind: %v", matches)
	}
}
