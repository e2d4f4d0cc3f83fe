package ai

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"

	"github.com/Iron-Ham/appcanvas/internal/cache"
	"github.com/Iron-Ham/appcanvas/internal/config"
	"github.com/Iron-Ham/appcanvas/internal/errors"
	"github.com/Iron-Ham/appcanvas/internal/schema"
)

// fakeBackend replays scripted answers in order; the last one repeats.
type fakeBackend struct {
	mu      sync.Mutex
	answers []fakeAnswer
	calls   []Request
}

type fakeAnswer struct {
	text string
	err  error
}

func (f *fakeBackend) Name() BackendName   { return "fake" }
func (f *fakeBackend) DisplayName() string { return "Fake" }

func (f *fakeBackend) Generate(ctx context.Context, req Request) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, req)
	i := len(f.calls) - 1
	if i >= len(f.answers) {
		i = len(f.answers) - 1
	}
	return f.answers[i].text, f.answers[i].err
}

func (f *fakeBackend) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

var fastRetry = config.RetryConfig{MaxAttempts: 3, BaseDelayMs: 1, MaxDelayMs: 2}

var ideaSchema = schema.Object(map[string]*schema.Schema{
	"refinedIdea":    schema.String(),
	"targetAudience": schema.String(),
}, "refinedIdea", "targetAudience")

func newTestTracer() (trace.Tracer, *tracetest.SpanRecorder) {
	recorder := tracetest.NewSpanRecorder()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	return provider.Tracer("ai-test"), recorder
}

func findSpanByName(spans []sdktrace.ReadOnlySpan, name string) sdktrace.ReadOnlySpan {
	for _, span := range spans {
		if span.Name() == name {
			return span
		}
	}
	return nil
}

func getAttr(attrs []attribute.KeyValue, key string) (attribute.Value, bool) {
	for _, attr := range attrs {
		if string(attr.Key) == key {
			return attr.Value, true
		}
	}
	return attribute.Value{}, false
}

func TestGenerateContent_CachesSuccessfulAnswers(t *testing.T) {
	backend := &fakeBackend{answers: []fakeAnswer{{text: `{"refinedIdea":"r","targetAudience":"t"}`}}}
	client := NewClient(backend, WithRetry(fastRetry))
	ctx := context.Background()

	first, err := client.GenerateContent(ctx, "prompt", ideaSchema)
	if err != nil {
		t.Fatalf("GenerateContent() error = %v", err)
	}
	second, err := client.GenerateContent(ctx, "prompt", ideaSchema)
	if err != nil {
		t.Fatalf("GenerateContent() second error = %v", err)
	}

	if string(first) != string(second) {
		t.Errorf("cached answer differs: %s vs %s", first, second)
	}
	if backend.callCount() != 1 {
		t.Errorf("backend called %d times, want 1", backend.callCount())
	}
	stats := client.Stats()
	if stats.Requests != 2 || stats.CacheHits != 1 {
		t.Errorf("Stats() = %+v, want 2 requests and 1 hit", stats)
	}

	if _, err := client.GenerateContent(ctx, "other prompt", ideaSchema); err != nil {
		t.Fatal(err)
	}
	if backend.callCount() != 2 {
		t.Errorf("a different prompt must miss the cache")
	}
}

func TestGenerateContent_SharedStore(t *testing.T) {
	store := cache.NewMemoryStore()
	_ = store.Put(context.Background(), cache.Key("p", ideaSchema), []byte(`{"refinedIdea":"cached","targetAudience":"t"}`))

	backend := &fakeBackend{answers: []fakeAnswer{{err: fmt.Errorf("must not be called")}}}
	client := NewClient(backend, WithCache(store))

	got, err := client.GenerateContent(context.Background(), "p", ideaSchema)
	if err != nil {
		t.Fatalf("GenerateContent() error = %v", err)
	}
	if string(got) != `{"refinedIdea":"cached","targetAudience":"t"}` {
		t.Errorf("GenerateContent() = %s", got)
	}
}

func TestGenerateContent_Refresh(t *testing.T) {
	store := cache.NewMemoryStore()
	ctx := context.Background()
	_ = store.Put(ctx, cache.Key("p", ideaSchema), []byte(`{"refinedIdea":"old","targetAudience":"t"}`))

	backend := &fakeBackend{answers: []fakeAnswer{{text: `{"refinedIdea":"new","targetAudience":"t"}`}}}
	client := NewClient(backend, WithCache(store), WithRetry(fastRetry))

	got, err := client.GenerateContent(cache.WithRefresh(ctx), "p", ideaSchema)
	if err != nil {
		t.Fatalf("GenerateContent() error = %v", err)
	}
	if string(got) != `{"refinedIdea":"new","targetAudience":"t"}` {
		t.Errorf("GenerateContent() = %s, want the fresh answer", got)
	}
	if backend.callCount() != 1 || client.Stats().CacheHits != 0 {
		t.Errorf("refresh must reach the backend: calls=%d stats=%+v", backend.callCount(), client.Stats())
	}

	stored, ok, _ := store.Get(ctx, cache.Key("p", ideaSchema))
	if !ok || string(stored) != string(got) {
		t.Errorf("cache entry = %s, want it replaced by the fresh answer", stored)
	}

	again, err := client.GenerateContent(ctx, "p", ideaSchema)
	if err != nil {
		t.Fatal(err)
	}
	if string(again) != string(got) || backend.callCount() != 1 {
		t.Errorf("a plain request should be served the refreshed entry")
	}
}

func TestGenerateContent_ErrorHandling(t *testing.T) {
	transient := errors.NewModelError("overloaded", errors.ErrTransient)
	quota := errors.NewModelError("quota", errors.ErrQuotaExceeded).WithStatus(429)
	badKey := errors.NewModelError("bad key", errors.ErrInvalidAPIKey).WithStatus(401)

	tests := []struct {
		name      string
		answers   []fakeAnswer
		wantErr   error
		wantCalls int
	}{
		{
			name:      "transient then success",
			answers:   []fakeAnswer{{err: transient}, {text: `{"refinedIdea":"r","targetAudience":"t"}`}},
			wantCalls: 2,
		},
		{
			name:      "transient exhausts attempts",
			answers:   []fakeAnswer{{err: transient}},
			wantErr:   errors.ErrTransient,
			wantCalls: 3,
		},
		{
			name:      "quota is not retried",
			answers:   []fakeAnswer{{err: quota}},
			wantErr:   errors.ErrQuotaExceeded,
			wantCalls: 1,
		},
		{
			name:      "invalid key is not retried",
			answers:   []fakeAnswer{{err: badKey}},
			wantErr:   errors.ErrInvalidAPIKey,
			wantCalls: 1,
		},
		{
			name:      "malformed JSON is not retried",
			answers:   []fakeAnswer{{text: "I cannot help with that."}},
			wantErr:   errors.ErrMalformedResponse,
			wantCalls: 1,
		},
		{
			name:      "schema mismatch is malformed",
			answers:   []fakeAnswer{{text: `{"refinedIdea":"r"}`}},
			wantErr:   errors.ErrMalformedResponse,
			wantCalls: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			backend := &fakeBackend{answers: tt.answers}
			client := NewClient(backend, WithRetry(fastRetry))

			_, err := client.GenerateContent(context.Background(), "prompt", ideaSchema)
			if tt.wantErr == nil && err != nil {
				t.Fatalf("GenerateContent() error = %v", err)
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Fatalf("GenerateContent() error = %v, want %v", err, tt.wantErr)
			}
			if backend.callCount() != tt.wantCalls {
				t.Errorf("backend called %d times, want %d", backend.callCount(), tt.wantCalls)
			}
		})
	}
}

func TestGenerateContent_FailuresAreNotCached(t *testing.T) {
	backend := &fakeBackend{answers: []fakeAnswer{
		{text: "not json"},
		{text: `{"refinedIdea":"r","targetAudience":"t"}`},
	}}
	client := NewClient(backend, WithRetry(fastRetry))
	ctx := context.Background()

	if _, err := client.GenerateContent(ctx, "prompt", ideaSchema); err == nil {
		t.Fatal("first call should fail")
	}
	if _, err := client.GenerateContent(ctx, "prompt", ideaSchema); err != nil {
		t.Fatalf("second call should reach the backend again: %v", err)
	}
	if client.Stats().Failures != 1 {
		t.Errorf("Failures = %d, want 1", client.Stats().Failures)
	}
}

func TestGenerateContent_Timeout(t *testing.T) {
	backend := &slowBackend{delay: 50 * time.Millisecond}
	client := NewClient(backend,
		WithRetry(config.RetryConfig{MaxAttempts: 2, BaseDelayMs: 1, MaxDelayMs: 1}),
		WithTimeout(5*time.Millisecond),
	)

	_, err := client.GenerateContent(context.Background(), "prompt", nil)
	if !errors.Is(err, errors.ErrTimeout) {
		t.Fatalf("GenerateContent() error = %v, want timeout", err)
	}
	if backend.calls != 2 {
		t.Errorf("timeouts should be retried: %d calls", backend.calls)
	}
}

type slowBackend struct {
	delay time.Duration
	calls int
}

func (s *slowBackend) Name() BackendName   { return "slow" }
func (s *slowBackend) DisplayName() string { return "Slow" }

func (s *slowBackend) Generate(ctx context.Context, _ Request) (string, error) {
	s.calls++
	select {
	case <-time.After(s.delay):
		return "{}", nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

func TestGenerateContent_Span(t *testing.T) {
	tracer, recorder := newTestTracer()
	backend := &fakeBackend{answers: []fakeAnswer{{err: errors.NewModelError("quota", errors.ErrQuotaExceeded)}}}
	client := NewClient(backend, WithTracer(tracer), WithRetry(fastRetry))

	_, _ = client.GenerateContent(context.Background(), "prompt", ideaSchema)

	span := findSpanByName(recorder.Ended(), "ai.generate_content")
	if span == nil {
		t.Fatal("ai.generate_content span not recorded")
	}
	if span.Status().Code != codes.Error {
		t.Errorf("span status = %v, want Error", span.Status().Code)
	}
	if v, ok := getAttr(span.Attributes(), "ai.backend"); !ok || v.AsString() != "fake" {
		t.Errorf("ai.backend attribute = %v", v.AsString())
	}
	if v, ok := getAttr(span.Attributes(), "ai.cache_hit"); !ok || v.AsBool() {
		t.Error("ai.cache_hit should be false")
	}
	if v, ok := getAttr(span.Attributes(), "ai.attempts"); !ok || v.AsInt64() != 1 {
		t.Errorf("ai.attempts = %d, want 1", v.AsInt64())
	}
}

func TestGenerateClarifyingQuestion(t *testing.T) {
	tests := []struct {
		name    string
		answer  string
		wantErr bool
	}{
		{"valid", `{"question":"Which goal?","options":["Speed","Cost"]}`, false},
		{"fenced", "```json\n{\"question\":\"Which goal?\",\"options\":[\"Speed\"]}\n```", false},
		{"no options", `{"question":"Which goal?","options":[]}`, true},
		{"missing question", `{"options":["a"]}`, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := NewClient(&fakeBackend{answers: []fakeAnswer{{text: tt.answer}}}, WithRetry(fastRetry))
			q, err := client.GenerateClarifyingQuestion(context.Background(), "ask")
			if (err != nil) != tt.wantErr {
				t.Fatalf("GenerateClarifyingQuestion() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				if !errors.Is(err, errors.ErrMalformedResponse) {
					t.Errorf("error should be malformed response, got %v", err)
				}
				return
			}
			if q.Question != "Which goal?" || len(q.Options) == 0 {
				t.Errorf("clarification = %+v", q)
			}
		})
	}
}
