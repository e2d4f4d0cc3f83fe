package ai

import (
	"context"
	"encoding/json"
	"sync/atomic"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/Iron-Ham/appcanvas/internal/cache"
	"github.com/Iron-Ham/appcanvas/internal/config"
	"github.com/Iron-Ham/appcanvas/internal/errors"
	"github.com/Iron-Ham/appcanvas/internal/logging"
	"github.com/Iron-Ham/appcanvas/internal/plan"
	"github.com/Iron-Ham/appcanvas/internal/schema"
	"github.com/Iron-Ham/appcanvas/internal/steps"
)

const tracerName = "github.com/Iron-Ham/appcanvas/internal/ai"

// Stats counts requests made through a Client.
type Stats struct {
	Requests  int64
	CacheHits int64
	Retries   int64
	Failures  int64
}

// Client wraps a Backend with response caching, JSON validation, retries and
// tracing. It is safe for concurrent use.
type Client struct {
	backend Backend
	cache   cache.Store
	logger  *logging.Logger
	tracer  trace.Tracer
	retry   config.RetryConfig
	timeout time.Duration

	requests  atomic.Int64
	cacheHits atomic.Int64
	retries   atomic.Int64
	failures  atomic.Int64
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithCache sets the response cache. The default is an in-memory store.
func WithCache(store cache.Store) ClientOption {
	return func(c *Client) { c.cache = store }
}

// WithLogger sets the logger.
func WithLogger(logger *logging.Logger) ClientOption {
	return func(c *Client) { c.logger = logger }
}

// WithTracer sets the tracer used for request spans.
func WithTracer(tracer trace.Tracer) ClientOption {
	return func(c *Client) { c.tracer = tracer }
}

// WithRetry sets the retry policy.
func WithRetry(retry config.RetryConfig) ClientOption {
	return func(c *Client) { c.retry = retry }
}

// WithTimeout bounds each individual backend call. Zero disables the bound.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) { c.timeout = d }
}

// NewClient creates a Client for backend.
func NewClient(backend Backend, opts ...ClientOption) *Client {
	c := &Client{
		backend: backend,
		cache:   cache.NewMemoryStore(),
		logger:  logging.NopLogger(),
		tracer:  otel.Tracer(tracerName),
		retry:   config.Default().Retry,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = c.logger.WithComponent("ai")
	return c
}

// Backend returns the wrapped backend.
func (c *Client) Backend() Backend {
	return c.backend
}

// Stats returns a snapshot of the request counters.
func (c *Client) Stats() Stats {
	return Stats{
		Requests:  c.requests.Load(),
		CacheHits: c.cacheHits.Load(),
		Retries:   c.retries.Load(),
		Failures:  c.failures.Load(),
	}
}

// GenerateContent sends prompt to the model and returns its JSON answer,
// validated against s. Identical prompt and schema pairs are served from the
// cache unless ctx carries cache.WithRefresh; only successful answers are
// cached.
func (c *Client) GenerateContent(ctx context.Context, prompt string, s *schema.Schema) (json.RawMessage, error) {
	ctx, span := c.tracer.Start(ctx, "ai.generate_content", trace.WithAttributes(
		attribute.String("ai.backend", string(c.backend.Name())),
		attribute.Int("ai.prompt_length", len(prompt)),
	))
	defer span.End()

	c.requests.Add(1)
	key := cache.Key(prompt, s)

	refresh := cache.RefreshRequested(ctx)
	span.SetAttributes(attribute.Bool("ai.cache_refresh", refresh))

	var (
		cached json.RawMessage
		ok     bool
		err    error
	)
	if !refresh {
		cached, ok, err = c.cache.Get(ctx, key)
		if err != nil {
			c.logger.Warn("cache lookup failed", "error", err)
		}
	}
	if ok {
		c.cacheHits.Add(1)
		span.SetAttributes(attribute.Bool("ai.cache_hit", true))
		c.logger.Debug("cache hit", "key", key[:12])
		return cached, nil
	}
	span.SetAttributes(attribute.Bool("ai.cache_hit", false))

	attempts := 0
	result, err := backoff.RetryNotifyWithData(func() (json.RawMessage, error) {
		attempts++
		out, err := c.attempt(ctx, Request{Prompt: prompt, Schema: s})
		if err != nil && !errors.IsRetryable(err) {
			return nil, backoff.Permanent(err)
		}
		return out, err
	}, c.newBackOff(ctx), func(err error, wait time.Duration) {
		c.retries.Add(1)
		c.logger.Warn("retrying model request",
			"attempt", attempts,
			"wait_ms", wait.Milliseconds(),
			"error", err.Error(),
		)
	})
	span.SetAttributes(attribute.Int("ai.attempts", attempts))

	if err != nil {
		c.failures.Add(1)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		c.logger.Error("model request failed", "attempts", attempts, "error", err.Error())
		return nil, err
	}

	if err := c.cache.Put(ctx, key, result); err != nil {
		c.logger.Warn("cache store failed", "error", err)
	}
	c.logger.Info("model request completed", "attempts", attempts, "response_bytes", len(result))
	return result, nil
}

// GenerateClarifyingQuestion asks the model for a multiple-choice question.
// An answer without options is treated as malformed.
func (c *Client) GenerateClarifyingQuestion(ctx context.Context, prompt string) (plan.Clarification, error) {
	raw, err := c.GenerateContent(ctx, prompt, steps.ClarificationSchema())
	if err != nil {
		return plan.Clarification{}, err
	}

	var q plan.Clarification
	if err := json.Unmarshal(raw, &q); err != nil {
		return plan.Clarification{}, errors.NewModelError("decode clarification", errors.ErrMalformedResponse).WithBackend(string(c.backend.Name()))
	}
	if q.Question == "" || len(q.Options) == 0 {
		return plan.Clarification{}, errors.NewModelError("clarification has no options", errors.ErrMalformedResponse).WithBackend(string(c.backend.Name()))
	}
	return q, nil
}

func (c *Client) attempt(ctx context.Context, req Request) (json.RawMessage, error) {
	callCtx := ctx
	if c.timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	text, err := c.backend.Generate(callCtx, req)
	if err != nil {
		if ctx.Err() == nil && errors.Is(callCtx.Err(), context.DeadlineExceeded) {
			return nil, errors.NewModelError("generate content",
				errors.NewTimeoutError("generate content", c.timeout).WithCause(err)).
				WithBackend(string(c.backend.Name()))
		}
		return nil, err
	}

	raw, err := ParseResponse(text, req.Schema)
	if err != nil {
		c.logger.Warn("failed to parse model response", "error", err.Error(), "response_length", len(text))
		return nil, err
	}
	return raw, nil
}

func (c *Client) newBackOff(ctx context.Context) backoff.BackOff {
	attempts := c.retry.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}
	base := c.retry.BaseDelay()
	if base <= 0 {
		base = time.Millisecond
	}
	maxDelay := c.retry.MaxDelay()
	if maxDelay < base {
		maxDelay = base
	}

	b := backoff.NewExponentialBackOff(
		backoff.WithInitialInterval(base),
		backoff.WithMaxInterval(maxDelay),
		backoff.WithMaxElapsedTime(0),
	)
	return backoff.WithContext(backoff.WithMaxRetries(b, uint64(attempts-1)), ctx)
}
