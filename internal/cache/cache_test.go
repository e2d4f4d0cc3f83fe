package cache

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/Iron-Ham/appcanvas/internal/config"
	"github.com/Iron-Ham/appcanvas/internal/schema"
)

func openTestSQLite(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := OpenSQLite(filepath.Join(t.TempDir(), "nested", "cache.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestKey(t *testing.T) {
	s1 := schema.Object(map[string]*schema.Schema{"a": schema.String(), "b": schema.String()}, "a", "b")
	s2 := schema.Object(map[string]*schema.Schema{"b": schema.String(), "a": schema.String()}, "a", "b")

	if Key("prompt", s1) != Key("prompt", s2) {
		t.Error("equal schemas must produce equal keys")
	}
	if Key("prompt", s1) == Key("prompt ", s1) {
		t.Error("different prompts must produce different keys")
	}
	if Key("prompt", s1) == Key("prompt", nil) {
		t.Error("schema must be part of the key")
	}
	if got := len(Key("p", nil)); got != 64 {
		t.Errorf("key length = %d, want 64 hex chars", got)
	}
}

func TestStores(t *testing.T) {
	stores := map[string]func(t *testing.T) Store{
		"memory": func(t *testing.T) Store { return NewMemoryStore() },
		"sqlite": func(t *testing.T) Store { return openTestSQLite(t) },
	}

	for name, open := range stores {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			store := open(t)

			if _, ok, err := store.Get(ctx, "missing"); err != nil || ok {
				t.Fatalf("Get(missing) = ok %v, err %v", ok, err)
			}

			value := json.RawMessage(`{"question":"q","options":["a"]}`)
			if err := store.Put(ctx, "k1", value); err != nil {
				t.Fatalf("Put: %v", err)
			}
			got, ok, err := store.Get(ctx, "k1")
			if err != nil || !ok {
				t.Fatalf("Get(k1) = ok %v, err %v", ok, err)
			}
			if string(got) != string(value) {
				t.Errorf("Get(k1) = %s, want %s", got, value)
			}

			if err := store.Put(ctx, "k1", json.RawMessage(`{"v":2}`)); err != nil {
				t.Fatalf("Put overwrite: %v", err)
			}
			got, _, _ = store.Get(ctx, "k1")
			if string(got) != `{"v":2}` {
				t.Errorf("overwrite not applied: %s", got)
			}

			_ = store.Put(ctx, "k2", json.RawMessage(`[]`))
			if n, err := store.Len(ctx); err != nil || n != 2 {
				t.Errorf("Len() = %d, %v, want 2", n, err)
			}

			if err := store.Delete(ctx, "k1"); err != nil {
				t.Fatalf("Delete: %v", err)
			}
			if _, ok, _ := store.Get(ctx, "k1"); ok {
				t.Error("k1 should be gone after Delete")
			}

			if err := store.Clear(ctx); err != nil {
				t.Fatalf("Clear: %v", err)
			}
			if n, _ := store.Len(ctx); n != 0 {
				t.Errorf("Len() after Clear = %d, want 0", n)
			}
		})
	}
}

func TestSQLiteStore_PersistsAcrossOpen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.db")
	ctx := context.Background()

	first, err := OpenSQLite(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := first.Put(ctx, "k", json.RawMessage(`{"ok":true}`)); err != nil {
		t.Fatal(err)
	}
	_ = first.Close()

	second, err := OpenSQLite(path)
	if err != nil {
		t.Fatal(err)
	}
	defer second.Close()

	got, ok, err := second.Get(ctx, "k")
	if err != nil || !ok || string(got) != `{"ok":true}` {
		t.Errorf("reopened Get = %s, %v, %v", got, ok, err)
	}
}

func TestMemoryStore_CopiesValues(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	value := json.RawMessage(`{"a":1}`)
	_ = store.Put(ctx, "k", value)
	value[2] = 'X'

	got, _, _ := store.Get(ctx, "k")
	if string(got) != `{"a":1}` {
		t.Errorf("store should keep its own copy, got %s", got)
	}
}

func TestNewFromConfig(t *testing.T) {
	tests := []struct {
		backend string
		wantErr bool
		check   func(Store) bool
	}{
		{"memory", false, func(s Store) bool { _, ok := s.(*MemoryStore); return ok }},
		{"", false, func(s Store) bool { _, ok := s.(*MemoryStore); return ok }},
		{"none", false, func(s Store) bool { _, ok := s.(Nop); return ok }},
		{"sqlite", false, func(s Store) bool { _, ok := s.(*SQLiteStore); return ok }},
		{"redis", true, nil},
	}

	for _, tt := range tests {
		t.Run(tt.backend, func(t *testing.T) {
			cfg := config.CacheConfig{Backend: tt.backend, Path: filepath.Join(t.TempDir(), "c.db")}
			store, err := NewFromConfig(cfg)
			if (err != nil) != tt.wantErr {
				t.Fatalf("NewFromConfig() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				return
			}
			defer store.Close()
			if !tt.check(store) {
				t.Errorf("NewFromConfig(%q) returned %T", tt.backend, store)
			}
		})
	}
}

func TestNop(t *testing.T) {
	ctx := context.Background()
	var s Store = Nop{}
	_ = s.Put(ctx, "k", json.RawMessage(`1`))
	if _, ok, _ := s.Get(ctx, "k"); ok {
		t.Error("Nop should never return a hit")
	}
}

func TestRefreshContext(t *testing.T) {
	ctx := context.Background()
	if RefreshRequested(ctx) {
		t.Error("a plain context must not request a refresh")
	}
	if !RefreshRequested(WithRefresh(ctx)) {
		t.Error("WithRefresh should request a refresh")
	}
}
