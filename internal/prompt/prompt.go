// Package prompt builds the system and user messages for code synthesis.
package prompt

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/whaaaley/cynthia/common"
	"github.com/whaaaley/cynthia/internal/cynerr"
	"github.com/whaaaley/cynthia/internal/model"
	"github.com/whaaaley/cynthia/internal/pattern"
)

// PersonalizationFile is looked up from the working directory toward the
// filesystem root.
const PersonalizationFile = ".vscode/instructions/cynthia.instructions.md"

var coreInstructions = []string{
	"You are an expert TypeScript developer.",
	"Your task is to write a TypeScript function that strictly adheres to the test specifications.",

	"The function must:",
	"- Be fully typed with TypeScript",
	"- Not use any external dependencies",
	"- Not include comments or documentation",
	`- Use specific types (no "any" type)`,
	"- Be exported as the default export",

	"Write clean, efficient, and maintainable code.",
	"Keep the implementation simple and focused.",
	"Follow TypeScript best practices and patterns.",
}

func SystemPrompt(personal []string) string {
	lines := append([]string(nil), coreInstructions...)
	if len(personal) > 0 {
		lines = append(lines, "Additional personalization instructions:")
		lines = append(lines, personal...)
	}
	return strings.Join(lines, "\n")
}

// ReadPersonalization returns the non-blank lines of the nearest
// personalization file, or nil when there is none.
func ReadPersonalization(cwd string) ([]string, error) {
	path, err := common.FindUp(cwd, PersonalizationFile, false)
	if errors.Is(err, common.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("finding %s: %w", PersonalizationFile, err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	var lines []string
	for _, line := range strings.Split(strings.TrimSpace(string(data)), "\n") {
		line = strings.TrimRight(line, "\r")
		if strings.TrimSpace(line) != "" {
			lines = append(lines, line)
		}
	}
	return lines, nil
}

var operators = map[model.Matcher]string{
	model.MatcherToBe:             "to be",
	model.MatcherToMatchObject:    "to match the object",
	model.MatcherNotToBe:          "not to be",
	model.MatcherNotToMatchObject: "not to match the object",
}

// UserPrompt describes every recorded expectation in prose. An expectation
// without exactly one matcher is a structural error.
func UserPrompt(suites []model.Suite) (string, error) {
	out := make([]string, 0, len(suites))
	for _, suite := range suites {
		tests := make([]string, 0, len(suite.Tests))
		for _, t := range suite.Tests {
			lines := make([]string, 0, len(t.Expects))
			for i, e := range t.Expects {
				line, err := expectation(e)
				if err != nil {
					return "", cynerr.Structural(fmt.Errorf("%s > %s > expectation %d: %w", suite.Name, t.Name, i+1, err))
				}
				lines = append(lines, line)
			}
			tests = append(tests, fmt.Sprintf("  This function %s:\n  %s", t.Name, strings.Join(lines, "\n  ")))
		}
		out = append(out, "Description: \""+suite.Name+"\":\n"+strings.Join(tests, "\n"))
	}
	return strings.Join(out, "\n"), nil
}

func expectation(e model.Expectation) (string, error) {
	m, value, err := e.Matcher()
	if err != nil {
		return "", err
	}

	input := e.Input
	if input == nil {
		input = []any{}
	}
	args, err := pattern.MarshalJSON(input)
	if err != nil {
		return "", fmt.Errorf("encoding input: %w", err)
	}
	want, err := pattern.MarshalJSON(value)
	if err != nil {
		return "", fmt.Errorf("encoding expected value: %w", err)
	}

	inner := string(args[1 : len(args)-1])
	return fmt.Sprintf("  I expect the function, with the arguments `%s`, %s `%s`", inner, operators[m], want), nil
}

type Prompts struct {
	System   string
	User     string
	Personal []string
}

// Build assembles both prompts for a specification text.
func Build(ctx context.Context, cwd, specText string) (Prompts, error) {
	personal, err := ReadPersonalization(cwd)
	if err != nil {
		return Prompts{}, err
	}
	if len(personal) > 0 {
		slog.InfoContext(ctx, "using personalization instructions",
			"file", PersonalizationFile,
			"lines", len(personal))
	}
	return Prompts{
		System:   SystemPrompt(personal),
		User:     specText,
		Personal: personal,
	}, nil
}
