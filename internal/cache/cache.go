// Package cache stores model responses so an identical prompt and schema are
// never sent to the provider twice.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/Iron-Ham/appcanvas/internal/config"
	"github.com/Iron-Ham/appcanvas/internal/schema"
)

// Store is a key-value store for parsed model responses.
type Store interface {
	Get(ctx context.Context, key string) (json.RawMessage, bool, error)
	Put(ctx context.Context, key string, value json.RawMessage) error
	Delete(ctx context.Context, key string) error
	Clear(ctx context.Context) error
	Len(ctx context.Context) (int, error)
	Close() error
}

// Key derives the cache key for a request: the SHA-256 digest of the JSON
// object {prompt, schema}. Schemas that describe the same shape always encode
// identically, so the key is stable across runs.
func Key(prompt string, s *schema.Schema) string {
	payload, err := json.Marshal(struct {
		Prompt string         `json:"prompt"`
		Schema *schema.Schema `json:"schema,omitempty"`
	}{prompt, s})
	if err != nil {
		payload = []byte(prompt)
	}
	sum := sha256.Sum256(payload)
	return hex.EncodeToString(sum[:])
}

type refreshKey struct{}

// WithRefresh marks ctx so lookups are skipped and the response replaces any
// cached entry for the same key.
func WithRefresh(ctx context.Context) context.Context {
	return context.WithValue(ctx, refreshKey{}, true)
}

// RefreshRequested reports whether ctx was marked by WithRefresh.
func RefreshRequested(ctx context.Context) bool {
	refresh, _ := ctx.Value(refreshKey{}).(bool)
	return refresh
}

// NewFromConfig opens the store selected by cache.backend.
func NewFromConfig(cfg config.CacheConfig) (Store, error) {
	switch strings.ToLower(cfg.Backend) {
	case "memory", "":
		return NewMemoryStore(), nil
	case "sqlite":
		return OpenSQLite(cfg.ResolvePath())
	case "none":
		return Nop{}, nil
	default:
		return nil, fmt.Errorf("unknown cache backend: %s", cfg.Backend)
	}
}

// MemoryStore keeps responses for the lifetime of the process.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]json.RawMessage
}

// NewMemoryStore creates an empty in-process store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string]json.RawMessage)}
}

func (m *MemoryStore) Get(_ context.Context, key string) (json.RawMessage, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.entries[key]
	if !ok {
		return nil, false, nil
	}
	return slices.Clone(v), true, nil
}

func (m *MemoryStore) Put(_ context.Context, key string, value json.RawMessage) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key] = slices.Clone(value)
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, key)
	return nil
}

func (m *MemoryStore) Clear(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	clear(m.entries)
	return nil
}

func (m *MemoryStore) Len(_ context.Context) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries), nil
}

func (m *MemoryStore) Close() error { return nil }

// Nop never stores anything.
type Nop struct{}

func (Nop) Get(context.Context, string) (json.RawMessage, bool, error) { return nil, false, nil }
func (Nop) Put(context.Context, string, json.RawMessage) error         { return nil }
func (Nop) Delete(context.Context, string) error                       { return nil }
func (Nop) Clear(context.Context) error                                { return nil }
func (Nop) Len(context.Context) (int, error)                           { return 0, nil }
func (Nop) Close() error                                               { return nil }
