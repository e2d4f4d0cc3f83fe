// Package session persists wizard snapshots in named slots.
//
// Each slot is one JSON file, {dir}/{slot}.json, holding the blob
// {idea, appData, activeStep, completedSteps, collapsedNodes}. Writes are
// atomic (temp file + rename) so an interrupted save never leaves a torn
// blob behind. The filesystem is abstracted with afero so tests run against
// an in-memory filesystem.
package session

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/spf13/afero"

	"github.com/Iron-Ham/appcanvas/internal/config"
	"github.com/Iron-Ham/appcanvas/internal/errors"
	"github.com/Iron-Ham/appcanvas/internal/plan"
)

const fileExt = ".json"

// Info describes a saved slot without loading it into a wizard.
type Info struct {
	Slot       string    `json:"slot"`
	Path       string    `json:"path"`
	ModTime    time.Time `json:"modTime"`
	Size       int64     `json:"size"`
	Idea       string    `json:"idea,omitempty"`
	ActiveStep int       `json:"activeStep"`
	Completed  int       `json:"completed"`
	Valid      bool      `json:"valid"`
}

// Store reads and writes session slots under a base directory.
type Store struct {
	fs  afero.Fs
	dir string
	mu  sync.RWMutex
}

// NewStore creates a Store on fs rooted at dir.
func NewStore(fs afero.Fs, dir string) *Store {
	return &Store{fs: fs, dir: dir}
}

// NewFileStore creates a Store on the OS filesystem.
func NewFileStore(dir string) *Store {
	return NewStore(afero.NewOsFs(), dir)
}

// Dir returns the base directory.
func (s *Store) Dir() string {
	return s.dir
}

// Path returns the file backing slot.
func (s *Store) Path(slot string) string {
	return filepath.Join(s.dir, slot+fileExt)
}

func checkSlot(slot string) error {
	if !config.ValidSlotName(slot) {
		return errors.NewValidationError("invalid session slot name").
			WithField("slot").
			WithValue(slot).
			WithCause(errors.ErrInvalidInput)
	}
	return nil
}

// Save writes snap to slot, replacing any previous content, and returns the
// file path.
func (s *Store) Save(slot string, snap *plan.Snapshot) (string, error) {
	if err := checkSlot(slot); err != nil {
		return "", err
	}
	if snap == nil {
		return "", errors.NewSessionError("nothing to save", errors.ErrInvalidSession).WithSlot(slot)
	}
	if err := snap.Validate(); err != nil {
		return "", errors.NewSessionError("refusing to save", err).WithSlot(slot)
	}

	data, err := snap.Marshal()
	if err != nil {
		return "", errors.NewSessionError("encode session", err).WithSlot(slot)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.fs.MkdirAll(s.dir, 0o755); err != nil {
		return "", errors.NewSessionError("create session directory", err).WithSlot(slot)
	}
	path := s.Path(slot)
	if err := atomicWriteFile(s.fs, path, data, 0o644); err != nil {
		return "", errors.NewSessionError("write session", err).WithSlot(slot)
	}
	return path, nil
}

// Load reads slot. A missing slot yields errors.ErrNoSavedSession; a blob
// that cannot be restored yields errors.ErrInvalidSession.
func (s *Store) Load(slot string) (*plan.Snapshot, error) {
	if err := checkSlot(slot); err != nil {
		return nil, err
	}

	s.mu.RLock()
	data, err := afero.ReadFile(s.fs, s.Path(slot))
	s.mu.RUnlock()
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NewSessionError("load session", errors.ErrNoSavedSession).WithSlot(slot)
		}
		return nil, errors.NewSessionError("read session", err).WithSlot(slot)
	}

	snap, err := plan.DecodeSnapshot(data)
	if err != nil {
		return nil, errors.NewSessionError("load session", err).WithSlot(slot)
	}
	return snap, nil
}

// Exists reports whether slot has been saved.
func (s *Store) Exists(slot string) (bool, error) {
	if err := checkSlot(slot); err != nil {
		return false, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return afero.Exists(s.fs, s.Path(slot))
}

// Delete removes slot.
func (s *Store) Delete(slot string) error {
	if err := checkSlot(slot); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.fs.Remove(s.Path(slot)); err != nil {
		if os.IsNotExist(err) {
			return errors.NewSessionError("delete session", errors.ErrNoSavedSession).WithSlot(slot)
		}
		return errors.NewSessionError("delete session", err).WithSlot(slot)
	}
	return nil
}

// List returns every saved slot sorted by name. Slots whose content cannot
// be decoded are included with Valid set to false.
func (s *Store) List() ([]Info, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries, err := afero.ReadDir(s.fs, s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return []Info{}, nil
		}
		return nil, fmt.Errorf("list sessions: %w", err)
	}

	infos := make([]Info, 0, len(entries))
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, fileExt) || strings.HasPrefix(name, ".") {
			continue
		}
		slot := strings.TrimSuffix(name, fileExt)
		info := Info{
			Slot:    slot,
			Path:    filepath.Join(s.dir, name),
			ModTime: entry.ModTime(),
			Size:    entry.Size(),
		}
		if data, err := afero.ReadFile(s.fs, info.Path); err == nil {
			if snap, err := plan.DecodeSnapshot(data); err == nil {
				info.Valid = true
				info.Idea = snap.Idea
				info.ActiveStep = int(snap.ActiveStep)
				info.Completed = len(snap.CompletedSteps)
			}
		}
		infos = append(infos, info)
	}

	slices.SortFunc(infos, func(a, b Info) int { return strings.Compare(a.Slot, b.Slot) })
	return infos, nil
}

// MarshalInfo renders slot metadata as indented JSON.
func MarshalInfo(infos []Info) ([]byte, error) {
	return json.MarshalIndent(infos, "", "  ")
}

// atomicWriteFile writes data to a temporary file and renames it into place.
func atomicWriteFile(fs afero.Fs, path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)

	tmpFile, err := afero.TempFile(fs, dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	success := false
	defer func() {
		if !success {
			_ = fs.Remove(tmpPath)
		}
	}()

	if _, err := tmpFile.Write(data); err != nil {
		tmpFile.Close()
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmpFile.Sync(); err != nil {
		tmpFile.Close()
		return fmt.Errorf("failed to sync temp file: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := fs.Chmod(tmpPath, perm); err != nil {
		return fmt.Errorf("failed to set permissions: %w", err)
	}
	if err := fs.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("failed to rename temp file: %w", err)
	}

	success = true
	return nil
}
