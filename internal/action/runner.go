// Package action runs user supplied commands against clipboard item
// text and drives the external editor.
package action

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"go.uber.org/zap"
)

const (
	defaultShell     = "sh -c"
	defaultTimeout   = 30 * time.Second
	defaultSeparator = "\n"
)

// Runner executes action commands. The item text is piped to the
// command's stdin and its stdout is split into new history items.
type Runner struct {
	shell   []string
	timeout time.Duration
	logger  *zap.Logger
}

// RunnerConfig configures a Runner.
type RunnerConfig struct {
	// Shell is the command prefix the action is passed to, for
	// example "sh -c".
	Shell   string
	Timeout time.Duration
	Logger  *zap.Logger
}

// NewRunner creates an action runner.
func NewRunner(cfg RunnerConfig) *Runner {
	shell := strings.Fields(cfg.Shell)
	if len(shell) == 0 {
		shell = strings.Fields(defaultShell)
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Runner{
		shell:   shell,
		timeout: timeout,
		logger:  logger,
	}
}

// Run executes command with input on its stdin and returns the stdout
// split on separator, empty parts removed. The command is killed when
// it outlives the configured timeout.
func (r *Runner) Run(ctx context.Context, command, input, separator string) ([]string, error) {
	if separator == "" {
		separator = defaultSeparator
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	args := append(append([]string{}, r.shell[1:]...), command)
	cmd := exec.CommandContext(ctx, r.shell[0], args...)
	cmd.Stdin = strings.NewReader(input)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	r.logger.Debug("Running action command",
		zap.String("command", command),
		zap.Int("inputBytes", len(input)))

	start := time.Now()
	if err := cmd.Run(); err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return nil, fmt.Errorf("action timed out after %s: %w", r.timeout, ctx.Err())
		}
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return nil, fmt.Errorf("action failed: %w: %s", err, msg)
		}
		return nil, fmt.Errorf("action failed: %w", err)
	}

	outputs := splitOutput(stdout.String(), separator)

	r.logger.Debug("Action command finished",
		zap.Duration("elapsed", time.Since(start)),
		zap.Int("outputs", len(outputs)))
	return outputs, nil
}

// splitOutput cuts stdout on separator and drops empty parts, so a
// trailing newline does not produce an empty history item.
func splitOutput(output, separator string) []string {
	parts := strings.Split(output, separator)
	outputs := make([]string, 0, len(parts))
	for _, part := range parts {
		if part != "" {
			outputs = append(outputs, part)
		}
	}
	return outputs
}
