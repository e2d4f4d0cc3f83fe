package cmd

import (
	"context"

	"go.opentelemetry.io/otel/trace"

	"github.com/Iron-Ham/appcanvas/internal/ai"
	"github.com/Iron-Ham/appcanvas/internal/cache"
	"github.com/Iron-Ham/appcanvas/internal/config"
	"github.com/Iron-Ham/appcanvas/internal/errors"
	"github.com/Iron-Ham/appcanvas/internal/event"
	"github.com/Iron-Ham/appcanvas/internal/logging"
	"github.com/Iron-Ham/appcanvas/internal/session"
	"github.com/Iron-Ham/appcanvas/internal/wizard"
)

// runtime is everything a wizard command needs, built from configuration.
type runtime struct {
	cfg    *config.Config
	logger *logging.Logger
	cache  cache.Store
	client *ai.Client
	bus    *event.Bus
	store  *session.Store
	wizard *wizard.Wizard
}

// generatorFactory builds the model client. Tests replace it with a fake.
var generatorFactory = func(ctx context.Context, cfg *config.Config, rt *runtime, tracer trace.Tracer) (wizard.Generator, error) {
	backend, err := ai.NewFromConfig(ctx, cfg)
	if err != nil {
		return nil, err
	}
	opts := []ai.ClientOption{
		ai.WithCache(rt.cache),
		ai.WithLogger(rt.logger),
		ai.WithRetry(cfg.Retry),
		ai.WithTimeout(cfg.AI.RequestTimeout()),
	}
	if tracer != nil {
		opts = append(opts, ai.WithTracer(tracer))
	}
	rt.client = ai.NewClient(backend, opts...)
	return rt.client, nil
}

// loadConfig loads and validates the configuration.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, errors.Wrap(err, "invalid configuration")
	}
	return cfg, nil
}

// newLogger opens the log file when logging is enabled.
func newLogger(cfg *config.Config) *logging.Logger {
	if !cfg.Logging.Enabled {
		return logging.NopLogger()
	}
	logger, err := logging.NewLogger(config.DataDir(), cfg.Logging.Level)
	if err != nil {
		return logging.NopLogger()
	}
	return logger
}

// newRuntime wires the cache, model client, event bus, session store and
// wizard. A missing API key is not an error here: the wizard is created
// without a generator and reports the problem when a step is started.
func newRuntime(ctx context.Context, tracer trace.Tracer) (*runtime, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	rt := &runtime{
		cfg:    cfg,
		logger: newLogger(cfg),
		store:  session.NewFileStore(cfg.Session.ResolveDir()),
	}
	rt.bus = event.NewBus().WithLogger(rt.logger)

	rt.cache, err = cache.NewFromConfig(cfg.Cache)
	if err != nil {
		_ = rt.logger.Close()
		return nil, errors.Wrap(err, "opening cache")
	}

	gen, err := generatorFactory(ctx, cfg, rt, tracer)
	switch {
	case errors.Is(err, errors.ErrMissingAPIKey):
		rt.logger.Warn("no API key configured")
		gen = nil
	case err != nil:
		rt.Close()
		return nil, err
	}

	rt.wizard = wizard.New(gen, wizard.WithBus(rt.bus), wizard.WithLogger(rt.logger))
	return rt, nil
}

// Close releases the cache and log file.
func (rt *runtime) Close() {
	if rt.cache != nil {
		_ = rt.cache.Close()
	}
	_ = rt.logger.Close()
}
