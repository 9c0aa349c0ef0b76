// Package synth asks a language model for a TypeScript implementation of a
// specification and checks the shape of what comes back.
package synth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/whaaaley/cynthia/common/llm"
	"github.com/whaaaley/cynthia/common/logger"
	"github.com/whaaaley/cynthia/internal/cynerr"
	"github.com/whaaaley/cynthia/internal/prompt"
)

var (
	ErrEmptyCode      = errors.New("generated code is empty")
	ErrMissingExport  = errors.New(`code must start with "export default"`)
	ErrMissingBrace   = errors.New("code must end with closing brace")
	ErrNoModel        = errors.New("synthesizer has no model client")
	ErrBadTemperature = errors.New("temperature must be between 0 and 2")
)

const (
	schemaName        = "typescript_function"
	schemaDescription = "A single TypeScript function exported as the default export"
)

// Function is the structured response requested from the model.
type Function struct {
	Name         string `json:"name" jsonschema_description:"Name of the function"`
	Language     string `json:"language" jsonschema:"enum=typescript"`
	Type         string `json:"type" jsonschema:"enum=function"`
	Dependencies string `json:"dependencies" jsonschema:"enum=none"`
	Code         string `json:"code" jsonschema_description:"Complete source, starting with export default and ending with a closing brace"`
}

var functionSchema = llm.GenerateSchema[Function]()

type Options struct {
	Temperature float64
	MaxTokens   *int
	Seed        *int64
}

type Result struct {
	Code   string
	Prompt string
	Name   string
	Usage  llm.Response
}

type Synthesizer struct {
	llm  llm.Client
	opts Options
}

func New(client llm.Client, opts Options) *Synthesizer {
	return &Synthesizer{llm: client, opts: opts}
}

// Synthesize makes one model call. The returned code is not checked; see
// Validate. Errors the provider will repeat on every call are preconditions.
func (s *Synthesizer) Synthesize(ctx context.Context, p prompt.Prompts) (Result, error) {
	if s.llm == nil {
		return Result{}, ErrNoModel
	}
	if s.opts.Temperature < 0 || s.opts.Temperature > 2 {
		return Result{}, cynerr.Precondition(fmt.Errorf("%w: %v", ErrBadTemperature, s.opts.Temperature))
	}

	span := logger.StartSpan(ctx, "synth.Synthesize")
	defer span.End()
	ctx = span.Context()

	req := llm.Request{
		SystemPrompt:      p.System,
		UserPrompt:        p.User,
		SchemaName:        schemaName,
		SchemaDescription: schemaDescription,
		Schema:            functionSchema,
		Temperature:       llm.Temp(s.opts.Temperature),
		Seed:              s.opts.Seed,
	}
	if s.opts.MaxTokens != nil {
		req.MaxTokens = *s.opts.MaxTokens
	}

	slog.InfoContext(ctx, "synthesizing code",
		"model", s.llm.Model(),
		"prompt_length", len(p.User))

	var fn Function
	start := time.Now()
	resp, err := s.llm.Chat(ctx, req, &fn)
	if err != nil {
		span.RecordError(err)
		err = fmt.Errorf("synthesize: %w", err)
		// a rejected request (bad key, unknown model) fails every attempt alike
		if ctx.Err() == nil && !llm.IsRetryable(ctx, err) {
			return Result{}, cynerr.Precondition(err)
		}
		return Result{}, err
	}

	res := Result{Code: fn.Code, Prompt: p.User, Name: fn.Name}
	if resp != nil {
		res.Usage = *resp
	}
	slog.InfoContext(ctx, "code synthesized",
		"function", fn.Name,
		"code_length", len(fn.Code),
		"prompt_tokens", res.Usage.PromptTokens,
		"completion_tokens", res.Usage.CompletionTokens,
		"latency_ms", time.Since(start).Milliseconds())
	return res, nil
}

// Validate checks the generated code has the single exported function
// shape. Surrounding whitespace is ignored.
func Validate(code string) error {
	trimmed := strings.TrimSpace(code)
	switch {
	case trimmed == "":
		return cynerr.Validation(ErrEmptyCode)
	case !strings.HasPrefix(trimmed, "export default"):
		return cynerr.Validation(fmt.Errorf("%w: got %q", ErrMissingExport, logger.Truncate(trimmed, 40)))
	case !strings.HasSuffix(trimmed, "}"):
		return cynerr.Validation(ErrMissingBrace)
	}
	return nil
}
