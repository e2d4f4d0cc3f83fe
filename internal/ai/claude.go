package ai

import (
	"bytes"
	"context"
	"os/exec"
	"strings"

	"github.com/Iron-Ham/appcanvas/internal/config"
	"github.com/Iron-Ham/appcanvas/internal/errors"
)

// CommandRunner executes a command with the given stdin and returns its
// combined output. This allows for dependency injection in tests.
type CommandRunner func(ctx context.Context, stdin string, name string, args ...string) ([]byte, error)

// defaultRunner runs commands using os/exec.
var defaultRunner CommandRunner = func(ctx context.Context, stdin string, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdin = strings.NewReader(stdin)
	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out
	err := cmd.Run()
	return out.Bytes(), err
}

// ClaudeBackend implements Backend by running the Claude CLI in print mode.
// The CLI has no native structured output, so the response schema is
// appended to the prompt and the JSON is extracted from the answer.
type ClaudeBackend struct {
	command string
	model   string
	run     CommandRunner
}

// NewClaudeBackend creates a Claude backend from config.
func NewClaudeBackend(cfg config.ClaudeBackendConfig) *ClaudeBackend {
	command := cfg.Command
	if command == "" {
		command = "claude"
	}
	return &ClaudeBackend{
		command: command,
		model:   cfg.Model,
		run:     defaultRunner,
	}
}

// WithRunner replaces the command runner, for tests.
func (c *ClaudeBackend) WithRunner(run CommandRunner) *ClaudeBackend {
	c.run = run
	return c
}

func (c *ClaudeBackend) Name() BackendName { return BackendClaude }

func (c *ClaudeBackend) DisplayName() string { return "Claude" }

// Args returns the command-line arguments passed to the CLI.
func (c *ClaudeBackend) Args() []string {
	args := []string{"--print", "--output-format", "text"}
	if c.model != "" {
		args = append(args, "--model", c.model)
	}
	return args
}

func (c *ClaudeBackend) Generate(ctx context.Context, req Request) (string, error) {
	prompt := req.Prompt
	if req.Schema != nil {
		prompt += "\n\nRespond with only a JSON object matching this JSON schema, with no commentary:\n" + req.Schema.Describe()
	}

	output, err := c.run(ctx, prompt, c.command, c.Args()...)
	if err != nil {
		return "", classifyClaudeError(ctx, err, output)
	}
	return strings.TrimSpace(string(output)), nil
}

// classifyClaudeError inspects the CLI's exit error and output.
func classifyClaudeError(ctx context.Context, err error, output []byte) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		if errors.Is(ctxErr, context.DeadlineExceeded) {
			return errors.NewModelError("request deadline exceeded", errors.ErrTimeout).WithBackend(string(BackendClaude))
		}
		return ctxErr
	}

	var execErr *exec.Error
	if errors.As(err, &execErr) {
		return errors.NewModelError("claude CLI is not installed or not in PATH", err).WithBackend(string(BackendClaude))
	}

	outStr := strings.ToLower(string(output))
	var cause error
	switch {
	case strings.Contains(outStr, "invalid api key") ||
		strings.Contains(outStr, "please run /login") ||
		strings.Contains(outStr, "authentication_error"):
		cause = errors.ErrInvalidAPIKey
	case strings.Contains(outStr, "usage limit") ||
		strings.Contains(outStr, "credit balance is too low"):
		cause = errors.ErrQuotaExceeded
	case strings.Contains(outStr, "overloaded") ||
		strings.Contains(outStr, "rate limit") ||
		strings.Contains(outStr, "connection error") ||
		strings.Contains(outStr, "internal server error"):
		cause = errors.Join(errors.ErrTransient, err)
	default:
		cause = err
	}

	msg := strings.TrimSpace(string(output))
	if msg == "" {
		msg = "claude CLI failed"
	}
	return errors.NewModelError(msg, cause).WithBackend(string(BackendClaude))
}
