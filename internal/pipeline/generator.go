// Package pipeline runs one generation: extract the specification from a
// test file, synthesize an implementation, persist it, and validate it by
// running the test file, retrying within the configured budget.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"go.opentelemetry.io/otel/attribute"

	"github.com/whaaaley/cynthia/common"
	"github.com/whaaaley/cynthia/common/id"
	"github.com/whaaaley/cynthia/common/logger"
	"github.com/whaaaley/cynthia/core/config"
	"github.com/whaaaley/cynthia/internal/confirm"
	"github.com/whaaaley/cynthia/internal/cynerr"
	"github.com/whaaaley/cynthia/internal/prompt"
	"github.com/whaaaley/cynthia/internal/retry"
	"github.com/whaaaley/cynthia/internal/spec"
	"github.com/whaaaley/cynthia/internal/store"
	"github.com/whaaaley/cynthia/internal/synth"
)

var (
	ErrTestFileNotFound = errors.New("test file not found")
	ErrTestsFailed      = errors.New("generated code failed the tests")
)

type Synthesizer interface {
	Synthesize(ctx context.Context, p prompt.Prompts) (synth.Result, error)
}

type TestRunner interface {
	Run(ctx context.Context, path string) (int, error)
}

// Options override config for one run.
type Options struct {
	// MaxRetries overrides generation.maxRetries when non-nil.
	MaxRetries *int
	// SkipTests disables the test run; the first valid generation wins.
	SkipTests bool
	// AssumeYes skips the confirmation prompt.
	AssumeYes bool
	// Format overrides generation.specFormat when non-empty.
	Format spec.Format
}

// Outcome describes the last attempt. It is returned alongside the error
// when the retry budget is spent.
type Outcome struct {
	RunID    int64
	Attempts int
	Spec     *spec.Spec
	Artifact store.ArtifactRef
	ShimPath string
	// ExitCode is the deno exit code of the last attempt, -1 when that
	// attempt did not run the tests.
	ExitCode int
}

type Generator struct {
	cfg       *config.Config
	cwd       string
	synth     Synthesizer
	runner    TestRunner
	confirmer confirm.Confirmer
	extractor spec.Extractor
}

func NewGenerator(cfg *config.Config, cwd string, s Synthesizer, r TestRunner, c confirm.Confirmer) *Generator {
	if c == nil {
		c = confirm.Always(true)
	}
	return &Generator{
		cfg:       cfg,
		cwd:       cwd,
		synth:     s,
		runner:    r,
		confirmer: c,
		extractor: spec.Extractor{SystemUnderTest: cfg.Analysis.SystemUnderTest},
	}
}

type attemptResult struct {
	artifact store.ArtifactRef
	shim     string
	exitCode int
}

// Generate fails fast on missing preconditions (credential, project
// directory, test file) and on a test file that yields no specification.
// From there every attempt synthesizes, validates, writes and tests. A
// failed attempt moves on to the next one unless its error is a
// precondition, which ends the run.
func (g *Generator) Generate(ctx context.Context, testPath string, opts Options) (*Outcome, error) {
	runID := id.New()
	abs := testPath
	if !filepath.IsAbs(abs) {
		abs = filepath.Join(g.cwd, testPath)
	}

	ctx = logger.WithLogFields(ctx, logger.LogFields{
		RunID:     logger.Ptr(runID),
		TestFile:  logger.Ptr(testPath),
		Component: "cynthia.pipeline",
	})
	span := logger.StartSpan(ctx, "pipeline.Generate",
		attribute.Int64("run_id", runID),
		attribute.String("test_file", testPath))
	defer span.End()
	ctx = span.Context()

	artifacts, err := g.preconditions(abs)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	format := opts.Format
	if format == "" {
		if format, err = spec.ParseFormat(g.cfg.Generation.SpecFormat); err != nil {
			return nil, cynerr.Precondition(err)
		}
	}

	s, err := g.extractor.Extract(ctx, abs, format)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("extracting specification: %w", err)
	}
	prompts, err := prompt.Build(ctx, g.cwd, s.Text)
	if err != nil {
		return nil, fmt.Errorf("building prompts: %w", err)
	}

	if g.cfg.CLI.ConfirmGenerations && !opts.AssumeYes {
		desc := fmt.Sprintf("%s specification, %d characters", s.Format, len(s.Text))
		if err := confirm.Require(ctx, g.confirmer, "Generate code for "+testPath+"?", desc); err != nil {
			return nil, err
		}
	}

	maxRetries := g.cfg.Generation.MaxRetries
	if opts.MaxRetries != nil {
		maxRetries = *opts.MaxRetries
	}
	runTests := g.cfg.Testing.RunTestsAfterGeneration && !opts.SkipTests
	base := common.BaseName(abs)

	outcome := &Outcome{RunID: runID, Spec: s, ExitCode: -1}
	slog.InfoContext(ctx, "generation started",
		"format", string(s.Format),
		"max_retries", maxRetries,
		"run_tests", runTests,
		"project_dir", artifacts.Dir())

	_, err = retry.Do(ctx, retry.Options[attemptResult]{
		Name:       "generation",
		MaxRetries: maxRetries,
		Operation: func(ctx context.Context, attempt int) (attemptResult, error) {
			outcome.Attempts = attempt + 1
			outcome.ExitCode = -1
			res, err := g.attempt(ctx, runID, abs, base, prompts, artifacts, runTests)
			if res.artifact.CodePath != "" {
				outcome.Artifact, outcome.ShimPath, outcome.ExitCode = res.artifact, res.shim, res.exitCode
			}
			return res, err
		},
		IsSuccess: func(r attemptResult) bool {
			return !runTests || r.exitCode == 0
		},
		Retryable: func(err error) bool {
			return cynerr.KindOf(err) != cynerr.KindPrecondition
		},
	})
	if err != nil {
		span.RecordError(err)
		if outcome.ExitCode > 0 {
			err = fmt.Errorf("%w: %w", ErrTestsFailed, err)
		}
		return outcome, err
	}

	slog.InfoContext(ctx, "generation completed",
		"attempts", outcome.Attempts,
		"code_path", outcome.Artifact.CodePath,
		"shim_path", outcome.ShimPath)
	return outcome, nil
}

func (g *Generator) preconditions(abs string) (*store.ArtifactStore, error) {
	if err := g.cfg.RequireAPIKey(); err != nil {
		return nil, cynerr.Precondition(err)
	}

	info, err := os.Stat(abs)
	if err != nil || info.IsDir() {
		return nil, cynerr.Precondition(fmt.Errorf("%w: %s", ErrTestFileNotFound, abs))
	}

	dir, err := store.FindProjectDir(g.cwd)
	if err != nil {
		return nil, err
	}
	artifacts, err := store.NewArtifactStore(dir)
	if err != nil {
		return nil, cynerr.Precondition(err)
	}
	return artifacts, nil
}

func (g *Generator) attempt(ctx context.Context, runID int64, testPath, base string, p prompt.Prompts, artifacts *store.ArtifactStore, runTests bool) (attemptResult, error) {
	attempt := 0
	if a := logger.GetLogFields(ctx).Attempt; a != nil {
		attempt = *a
	}
	span := logger.StartSpan(ctx, "pipeline.attempt", attribute.Int("attempt", attempt))
	defer span.End()
	ctx = span.Context()

	res, err := g.synth.Synthesize(ctx, p)
	if err != nil {
		span.RecordError(err)
		return attemptResult{exitCode: -1}, err
	}
	if err := synth.Validate(res.Code); err != nil {
		span.RecordError(err)
		return attemptResult{exitCode: -1}, err
	}

	ref, err := artifacts.Write(ctx, runID, base, res.Code, res.Prompt)
	if err != nil {
		return attemptResult{exitCode: -1}, fmt.Errorf("writing artifacts: %w", err)
	}
	shim, err := store.WriteShim(testPath, ref.CodePath)
	if err != nil {
		return attemptResult{artifact: ref, exitCode: -1}, err
	}
	out := attemptResult{artifact: ref, shim: shim, exitCode: -1}

	if !runTests {
		return out, nil
	}
	code, err := g.runner.Run(ctx, testPath)
	if err != nil {
		return out, fmt.Errorf("running tests: %w", err)
	}
	out.exitCode = code
	span.SetAttributes(attribute.Int("exit_code", code))
	return out, nil
}
