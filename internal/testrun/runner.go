// Package testrun runs a test file with deno and reports its exit code.
package testrun

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"time"

	"github.com/whaaaley/cynthia/common/logger"
	"github.com/whaaaley/cynthia/common/otel"
	"github.com/whaaaley/cynthia/internal/cynerr"
)

const DefaultDeno = "deno"

var ErrStart = errors.New("failed to start test process")

// CommandFunc builds the process to run. exec.CommandContext by default.
type CommandFunc func(ctx context.Context, name string, args ...string) *exec.Cmd

type Runner struct {
	Deno    string
	Stdout  io.Writer
	Stderr  io.Writer
	Command CommandFunc
}

func NewRunner(deno string) *Runner {
	if deno == "" {
		deno = DefaultDeno
	}
	return &Runner{Deno: deno, Stdout: os.Stdout, Stderr: os.Stderr, Command: exec.CommandContext}
}

// Args returns the deno arguments used to test path.
func Args(path string) []string {
	return []string{"test", "-A", path}
}

// Run executes `deno test -A path` with the output forwarded and the trace
// context exported as TRACEPARENT. A non-zero
// exit code is a result, not an error; an error means the process could not
// be started or was interrupted.
func (r *Runner) Run(ctx context.Context, path string) (int, error) {
	span := logger.StartSpan(ctx, "testrun.Run")
	defer span.End()
	ctx = span.Context()

	command := r.Command
	if command == nil {
		command = exec.CommandContext
	}
	deno := r.Deno
	if deno == "" {
		deno = DefaultDeno
	}

	cmd := command(ctx, deno, Args(path)...)
	cmd.Stdout = r.Stdout
	cmd.Stderr = r.Stderr
	if env := otel.Environ(ctx); len(env) > 0 {
		if cmd.Env == nil {
			cmd.Env = os.Environ()
		}
		cmd.Env = append(cmd.Env, env...)
	}

	slog.InfoContext(ctx, "running tests", "path", path, "deno", deno)
	start := time.Now()
	err := cmd.Run()
	duration := time.Since(start)

	var exitErr *exec.ExitError
	switch {
	case err == nil:
	case errors.As(err, &exitErr) && ctx.Err() == nil:
	case ctx.Err() != nil:
		span.RecordError(ctx.Err())
		return -1, fmt.Errorf("running tests: %w", ctx.Err())
	default:
		span.RecordError(err)
		return -1, cynerr.Precondition(fmt.Errorf("%w: %s: %w", ErrStart, deno, err))
	}

	code := cmd.ProcessState.ExitCode()
	slog.InfoContext(ctx, "tests finished",
		"path", path,
		"exit_code", code,
		"duration_ms", duration.Milliseconds())
	return code, nil
}
