// Package spec extracts the specification text sent to code synthesis from
// a test file. Test files are never executed; their syntax tree is replayed
// into the harness builder, the morph compiler or a capture proxy.
package spec

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/whaaaley/cynthia/internal/cynerr"
	"github.com/whaaaley/cynthia/internal/model"
	"github.com/whaaaley/cynthia/internal/morph"
	"github.com/whaaaley/cynthia/internal/prompt"
	"github.com/whaaaley/cynthia/internal/syntax"
)

var (
	ErrUnknownFormat = errors.New("unknown spec format")
	ErrEmpty         = errors.New("no specification found in test file")
)

type Format string

const (
	// FormatAuto picks suites when the file records DSL expectations, then
	// feature, then flat.
	FormatAuto    Format = "auto"
	FormatSuites  Format = "suites"
	FormatFeature Format = "feature"
	FormatFlat    Format = "flat"
)

var Formats = []Format{FormatAuto, FormatSuites, FormatFeature, FormatFlat}

func ParseFormat(s string) (Format, error) {
	for _, f := range Formats {
		if string(f) == s {
			return f, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
}

type Spec struct {
	Format Format
	Text   string
	// State is set for the suites format.
	State *model.TestState
}

// Extractor turns test files into specifications.
type Extractor struct {
	// SystemUnderTest is the name of the function the tests call, used by
	// the feature format.
	SystemUnderTest string
}

// Extract parses path and renders it in format. An unreadable file is a
// precondition error; unparseable content or an empty result is structural.
func (x Extractor) Extract(ctx context.Context, path string, format Format) (*Spec, error) {
	f, err := syntax.ParseFile(ctx, path)
	if err != nil {
		if errors.Is(err, syntax.ErrInvalidContent) || errors.Is(err, syntax.ErrParse) {
			return nil, cynerr.Structural(err)
		}
		return nil, cynerr.Precondition(err)
	}
	if f.HasErrors {
		slog.WarnContext(ctx, "test file has syntax errors, extraction may be incomplete",
			"path", path)
	}

	s, err := x.FromFile(f, format)
	if err != nil {
		return nil, err
	}
	slog.DebugContext(ctx, "extracted specification",
		"path", path,
		"format", string(s.Format),
		"length", len(s.Text))
	return s, nil
}

// FromFile renders an already parsed file.
func (x Extractor) FromFile(f *syntax.File, format Format) (*Spec, error) {
	var (
		s   *Spec
		err error
	)
	switch format {
	case FormatSuites:
		s, err = suites(f)
	case FormatFeature:
		s = x.feature(f)
	case FormatFlat:
		s, err = flat(f)
	case FormatAuto, "":
		s, err = x.auto(f)
	default:
		return nil, cynerr.Precondition(fmt.Errorf("%w: %q", ErrUnknownFormat, format))
	}
	if err != nil {
		return nil, err
	}
	if s.Text == "" {
		return nil, cynerr.Structural(fmt.Errorf("%w: %s (format %s)", ErrEmpty, f.Path, s.Format))
	}
	return s, nil
}

func (x Extractor) auto(f *syntax.File) (*Spec, error) {
	if state := replaySuites(f); countExpectations(state) > 0 {
		return suitesSpec(state)
	}
	if s := x.feature(f); s.Text != "" {
		return s, nil
	}
	return flat(f)
}

func suites(f *syntax.File) (*Spec, error) {
	return suitesSpec(replaySuites(f))
}

func suitesSpec(state model.TestState) (*Spec, error) {
	text, err := prompt.UserPrompt(state.Suites)
	if err != nil {
		return nil, err
	}
	if countExpectations(state) == 0 {
		text = ""
	}
	return &Spec{Format: FormatSuites, Text: text, State: &state}, nil
}

func (x Extractor) feature(f *syntax.File) *Spec {
	a := morph.Analyzer{Compiler: morph.Compiler{SystemUnderTest: x.SystemUnderTest}}
	return &Spec{Format: FormatFeature, Text: a.AnalyzeFile(f)}
}

func flat(f *syntax.File) (*Spec, error) {
	p, err := replayFlat(f)
	if err != nil {
		return nil, cynerr.Structural(err)
	}
	text, err := p.Serialize()
	if err != nil {
		return nil, err
	}
	return &Spec{Format: FormatFlat, Text: text}, nil
}
