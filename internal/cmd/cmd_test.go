package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/viper"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/Iron-Ham/appcanvas/internal/config"
	"github.com/Iron-Ham/appcanvas/internal/plan"
	"github.com/Iron-Ham/appcanvas/internal/session"
	"github.com/Iron-Ham/appcanvas/internal/steps"
	"github.com/Iron-Ham/appcanvas/internal/testutil"
	"github.com/Iron-Ham/appcanvas/internal/wizard"
)

// setupTestEnvironment points configuration and data at a temporary
// directory and replaces the model with a fake.
func setupTestEnvironment(t *testing.T) (string, *testutil.FakeGenerator) {
	t.Helper()

	viper.Reset()
	t.Cleanup(viper.Reset)

	dir := testutil.SetupDirs(t)
	t.Chdir(dir)

	gen := testutil.NewFakeGenerator()
	orig := generatorFactory
	generatorFactory = func(context.Context, *config.Config, *runtime, trace.Tracer) (wizard.Generator, error) {
		return gen, nil
	}
	t.Cleanup(func() { generatorFactory = orig })

	return dir, gen
}

// executeCommand runs a fresh command tree with args and returns captured output
func executeCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := NewRootCmd()
	buf := new(bytes.Buffer)
	root.SetOut(buf)
	root.SetErr(buf)
	root.SetArgs(args)
	err := root.Execute()
	return buf.String(), err
}

func sessionPath(dir string) string {
	return filepath.Join(dir, "data", "appcanvas", "sessions", config.DefaultSlot+".json")
}

func TestRootCommand(t *testing.T) {
	root := NewRootCmd()
	if root.Use != "appcanvas" {
		t.Errorf("root.Use = %q, want %q", root.Use, "appcanvas")
	}

	names := make(map[string]bool)
	for _, c := range root.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"start", "run", "sessions", "export", "tree", "steps", "cache", "config"} {
		if !names[want] {
			t.Errorf("expected subcommand %q not found", want)
		}
	}
}

func TestRunCommand(t *testing.T) {
	dir, _ := setupTestEnvironment(t)

	out, err := executeCommand(t, "run", "A grocery app", "--answer", "2", "--answer", "Parents", "--steps", "4")
	if err != nil {
		t.Fatalf("run failed: %v\n%s", err, out)
	}

	for _, want := range []string{
		"A grocery app",
		"1. Refine Idea",
		"? Which goal?",
		"→ Save money",
		"→ Parents",
		"→ Save time",
		"✓ User Actions",
		"Completed 4 of 9 steps.",
		"Session saved to",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "Application Pages") {
		t.Errorf("run went past --steps:\n%s", out)
	}

	store := session.NewFileStore(filepath.Dir(sessionPath(dir)))
	snap, err := store.Load(config.DefaultSlot)
	if err != nil {
		t.Fatalf("session not saved: %v", err)
	}
	if got := len(snap.CompletedSteps); got != 4 {
		t.Errorf("completed steps = %d, want 4", got)
	}
	if snap.ActiveStep != plan.StepActions {
		t.Errorf("active step = %d, want %d", snap.ActiveStep, plan.StepActions)
	}
}

func TestRunCommandAllSteps(t *testing.T) {
	setupTestEnvironment(t)

	out, err := executeCommand(t, "run", "A grocery app", "--tree", "--format", "json", "--dir", "plans")
	if err != nil {
		t.Fatalf("run failed: %v\n%s", err, out)
	}
	if !strings.Contains(out, "All steps complete.") {
		t.Errorf("output missing completion line:\n%s", out)
	}
	if !strings.Contains(out, "Tap New") {
		t.Errorf("output missing mind map:\n%s", out)
	}

	data, err := os.ReadFile(filepath.Join("plans", "app-canvas-export.json"))
	if err != nil {
		t.Fatalf("export not written: %v", err)
	}
	if !strings.Contains(string(data), `"refinedIdea": "A shared grocery list"`) {
		t.Errorf("unexpected export:\n%s", data)
	}
}

func TestRunCommandResume(t *testing.T) {
	setupTestEnvironment(t)

	if out, err := executeCommand(t, "run", "A grocery app", "--steps", "2"); err != nil {
		t.Fatalf("first run failed: %v\n%s", err, out)
	}
	out, err := executeCommand(t, "run", "--load", "--steps", "1")
	if err != nil {
		t.Fatalf("resume failed: %v\n%s", err, out)
	}
	if !strings.Contains(out, "3. Features") {
		t.Errorf("resume did not continue at step 3:\n%s", out)
	}
	if !strings.Contains(out, "Completed 3 of 9 steps.") {
		t.Errorf("unexpected summary:\n%s", out)
	}
}

func TestRunCommandErrors(t *testing.T) {
	t.Run("missing idea", func(t *testing.T) {
		setupTestEnvironment(t)
		if _, err := executeCommand(t, "run"); err == nil {
			t.Error("expected error without an idea")
		}
	})

	t.Run("bad format", func(t *testing.T) {
		setupTestEnvironment(t)
		_, err := executeCommand(t, "run", "idea", "--format", "pdf")
		if err == nil {
			t.Fatal("expected error for unsupported format")
		}
	})

	t.Run("nothing to load", func(t *testing.T) {
		setupTestEnvironment(t)
		_, err := executeCommand(t, "run", "--load")
		if err == nil || !strings.Contains(err.Error(), "No saved session found.") {
			t.Errorf("err = %v, want no saved session", err)
		}
	})

	t.Run("generation failure", func(t *testing.T) {
		_, gen := setupTestEnvironment(t)
		gen.SetGenErr(fmt.Errorf("backend down"))
		_, err := executeCommand(t, "run", "A grocery app", "--no-save")
		if err == nil {
			t.Fatal("expected error when generation fails")
		}
	})
}

func TestSessionsCommands(t *testing.T) {
	dir, _ := setupTestEnvironment(t)
	if out, err := executeCommand(t, "run", "A grocery app", "--steps", "4"); err != nil {
		t.Fatalf("run failed: %v\n%s", err, out)
	}

	t.Run("list", func(t *testing.T) {
		out, err := executeCommand(t, "sessions", "list")
		if err != nil {
			t.Fatal(err)
		}
		for _, want := range []string{config.DefaultSlot + " *", "A grocery app", "4/9", "1 session in"} {
			if !strings.Contains(out, want) {
				t.Errorf("list missing %q:\n%s", want, out)
			}
		}
	})

	t.Run("list json", func(t *testing.T) {
		out, err := executeCommand(t, "sessions", "list", "--json")
		if err != nil {
			t.Fatal(err)
		}
		var infos []session.Info
		if err := json.Unmarshal([]byte(out), &infos); err != nil {
			t.Fatalf("invalid json: %v\n%s", err, out)
		}
		if len(infos) != 1 || infos[0].Completed != 4 || !infos[0].Valid {
			t.Errorf("infos = %+v", infos)
		}
	})

	t.Run("show", func(t *testing.T) {
		out, err := executeCommand(t, "sessions", "show")
		if err != nil {
			t.Fatal(err)
		}
		for _, want := range []string{"A grocery app", "✓ 1. Refine Idea", "● 4. User Actions", "○ 5. Application Pages", "Create List"} {
			if !strings.Contains(out, want) {
				t.Errorf("show missing %q:\n%s", want, out)
			}
		}
	})

	t.Run("delete", func(t *testing.T) {
		if _, err := executeCommand(t, "sessions", "delete", config.DefaultSlot); err != nil {
			t.Fatal(err)
		}
		if _, err := os.Stat(sessionPath(dir)); !os.IsNotExist(err) {
			t.Errorf("session file still exists: %v", err)
		}
		out, err := executeCommand(t, "sessions")
		if err != nil {
			t.Fatal(err)
		}
		if !strings.Contains(out, "No saved sessions.") {
			t.Errorf("unexpected list after delete:\n%s", out)
		}
		_, err = executeCommand(t, "sessions", "delete", config.DefaultSlot)
		if err == nil || !strings.Contains(err.Error(), "No saved session found.") {
			t.Errorf("err = %v, want no saved session", err)
		}
	})
}

func TestExportCommand(t *testing.T) {
	setupTestEnvironment(t)

	if _, err := executeCommand(t, "export"); err == nil {
		t.Error("expected error without a saved session")
	}

	if out, err := executeCommand(t, "run", "A grocery app", "--steps", "4"); err != nil {
		t.Fatalf("run failed: %v\n%s", err, out)
	}

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"json", []string{"--format", "json"}, `"name": "Create List"`},
		{"yaml", []string{"--format", "yml"}, "name: Tap New"},
		{"markdown", []string{"--format", "md"}, "Lists"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := executeCommand(t, append([]string{"export", "--stdout"}, tt.args...)...)
			if err != nil {
				t.Fatal(err)
			}
			if !strings.Contains(out, tt.want) {
				t.Errorf("output missing %q:\n%s", tt.want, out)
			}
		})
	}

	t.Run("file", func(t *testing.T) {
		out, err := executeCommand(t, "export", "--dir", "out")
		if err != nil {
			t.Fatal(err)
		}
		if !strings.Contains(out, filepath.Join("out", "app-canvas-export.json")) {
			t.Errorf("unexpected output: %s", out)
		}
		if _, err := os.Stat(filepath.Join("out", "app-canvas-export.json")); err != nil {
			t.Errorf("export file missing: %v", err)
		}
	})
}

func TestTreeCommand(t *testing.T) {
	setupTestEnvironment(t)
	if out, err := executeCommand(t, "run", "A grocery app", "--steps", "4"); err != nil {
		t.Fatalf("run failed: %v\n%s", err, out)
	}

	out, err := executeCommand(t, "tree", "--plain")
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"Lists", "Create List", "Tap New"} {
		if !strings.Contains(out, want) {
			t.Errorf("tree missing %q:\n%s", want, out)
		}
	}

	out, err = executeCommand(t, "tree", "--plain", "--search", "tap")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, `1 node matching "tap"`) {
		t.Errorf("unexpected search summary:\n%s", out)
	}
}

func TestStepsCommand(t *testing.T) {
	setupTestEnvironment(t)
	out, err := executeCommand(t, "steps")
	if err != nil {
		t.Fatal(err)
	}
	for _, step := range steps.All() {
		if !strings.Contains(out, step.Name) {
			t.Errorf("steps output missing %q", step.Name)
		}
	}
}

func TestCacheCommands(t *testing.T) {
	setupTestEnvironment(t)

	out, err := executeCommand(t, "cache", "stats")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "Backend: memory") || !strings.Contains(out, "Entries: 0") {
		t.Errorf("unexpected stats:\n%s", out)
	}

	out, err = executeCommand(t, "cache", "clear")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "Removed 0 cached responses") {
		t.Errorf("unexpected clear output:\n%s", out)
	}
}

func TestConfigCommands(t *testing.T) {
	dir, _ := setupTestEnvironment(t)
	configFile := filepath.Join(dir, "config", "appcanvas", "config.yaml")

	out, err := executeCommand(t, "config", "path")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "(not created)") {
		t.Errorf("unexpected path output:\n%s", out)
	}

	if _, err := executeCommand(t, "config", "init"); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(configFile); err != nil {
		t.Fatalf("config file not created: %v", err)
	}
	if _, err := executeCommand(t, "config", "init"); err == nil {
		t.Error("expected error when config file exists")
	}

	if _, err := executeCommand(t, "config", "set", "cache.backend", "none"); err != nil {
		t.Fatal(err)
	}
	out, err = executeCommand(t, "config", "show")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "backend: none") {
		t.Errorf("config show missing updated value:\n%s", out)
	}
	if !strings.Contains(out, "Config file: "+configFile) {
		t.Errorf("config show missing file path:\n%s", out)
	}

	if _, err := executeCommand(t, "config", "set", "nope", "1"); err == nil {
		t.Error("expected error for unknown key")
	}
}

func TestParseConfigValue(t *testing.T) {
	tests := []struct {
		key     string
		value   string
		want    any
		wantErr bool
	}{
		{"ai.backend", "claude", "claude", false},
		{"ai.backend", "openai", nil, true},
		{"ai.timeout_seconds", "30", 30, false},
		{"ai.timeout_seconds", "-1", nil, true},
		{"ai.timeout_seconds", "soon", nil, true},
		{"ai.gemini.temperature", "0.2", 0.2, false},
		{"logging.enabled", "true", true, false},
		{"logging.enabled", "maybe", nil, true},
		{"export.format", "md", "md", false},
		{"export.format", "pdf", nil, true},
		{"session.slot", "work", "work", false},
		{"session.slot", "../etc", nil, true},
		{"tui.theme", "nord", "nord", false},
		{"tui.theme", "mytheme.yaml", "mytheme.yaml", false},
		{"tui.theme", "neon", nil, true},
		{"tui.feedback_seconds", "4", 4, false},
		{"unknown.key", "x", nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.key+"="+tt.value, func(t *testing.T) {
			got, err := parseConfigValue(tt.key, tt.value)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("got %v (%T), want %v (%T)", got, got, tt.want, tt.want)
			}
		})
	}
}

func TestConfigKeysAreDefaults(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)
	config.SetDefaults()
	for key := range configKeys {
		if !viper.IsSet(key) {
			t.Errorf("config key %q has no default", key)
		}
	}
}

func TestAnswerQueue(t *testing.T) {
	q := plan.Clarification{Question: "Which?", Options: []string{"A", "B", "C"}}
	tests := []struct {
		name    string
		answers []string
		want    []string
	}{
		{"none uses first option", nil, []string{"A", "A"}},
		{"numbers pick options", []string{"2", "3"}, []string{"B", "C"}},
		{"out of range is text", []string{"7"}, []string{"7"}},
		{"free text", []string{"Something else"}, []string{"Something else"}},
		{"runs out", []string{"2"}, []string{"B", "A"}},
		{"blank uses first option", []string{"  "}, []string{"A"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := &answerQueue{answers: tt.answers}
			for i, want := range tt.want {
				if got := a.next(q); got != want {
					t.Errorf("answer %d = %q, want %q", i, got, want)
				}
			}
		})
	}

	empty := &answerQueue{}
	if got := empty.next(plan.Clarification{Question: "?"}); got != "No preference" {
		t.Errorf("no options = %q", got)
	}
}

func TestMaskSecret(t *testing.T) {
	tests := []struct{ in, want string }{
		{"abc", "****"},
		{"abcdefgh", "****efgh"},
	}
	for _, tt := range tests {
		if got := maskSecret(tt.in); got != tt.want {
			t.Errorf("maskSecret(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSpanPrinter(t *testing.T) {
	tests := []struct {
		name  string
		attrs []attribute.KeyValue
		err   bool
		want  string
	}{
		{"plain", []attribute.KeyValue{attribute.Int("ai.attempts", 1)}, false, "ok"},
		{"cached", []attribute.KeyValue{attribute.Bool("ai.cache_hit", true)}, false, "(cached) ok"},
		{"retried", []attribute.KeyValue{attribute.Int("ai.attempts", 3)}, false, "(3 attempts) ok"},
		{"failed", nil, true, "error: boom"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			out := newTraceOutput(&buf)
			_, span := out.Tracer("test").Start(context.Background(), "ai.generate_content")
			span.SetAttributes(tt.attrs...)
			if tt.err {
				span.SetStatus(codes.Error, "boom")
			}
			span.End()
			out.Close()

			got := buf.String()
			if !strings.HasPrefix(got, "  [trace] ai.generate_content ") || !strings.Contains(got, tt.want) {
				t.Errorf("output = %q, want it to contain %q", got, tt.want)
			}
		})
	}

	var off *traceOutput
	if off.Tracer("x") != nil {
		t.Error("nil traceOutput should return a nil tracer")
	}
	off.Close()
}

func TestWatchSession(t *testing.T) {
	dir := t.TempDir()
	store := session.NewFileStore(dir)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	changes := make(chan *plan.Snapshot, 4)
	done := make(chan error, 1)
	go func() {
		done <- watchSession(ctx, store, "watched", func(snap *plan.Snapshot, err error) {
			if err == nil {
				changes <- snap
			}
		})
	}()

	snap := &plan.Snapshot{Idea: "Watched idea", AppData: plan.AppData{}}
	// The watcher may not be registered yet, so keep saving until a change
	// arrives.
	deadline := time.After(5 * time.Second)
	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case got := <-changes:
			if got.Idea != "Watched idea" {
				t.Errorf("idea = %q", got.Idea)
			}
			cancel()
			if err := <-done; err != nil {
				t.Errorf("watchSession returned %v", err)
			}
			return
		case <-ticker.C:
			if _, err := store.Save("watched", snap); err != nil {
				t.Fatal(err)
			}
		case <-deadline:
			t.Fatal("no change observed")
		}
	}
}
