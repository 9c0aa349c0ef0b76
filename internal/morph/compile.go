package morph

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/whaaaley/cynthia/internal/cynerr"
	"github.com/whaaaley/cynthia/internal/pattern"
	"github.com/whaaaley/cynthia/internal/syntax"
)

const DefaultSystemUnderTest = "testFn"

const (
	suiteName = "describe"
	caseName  = "it"
)

type Compiler struct {
	// SystemUnderTest is the call name that feeds input to the candidate.
	SystemUnderTest string
}

// Compile renders the forest depth-first with two spaces of indent per
// level. Fragments that are blank after trimming are dropped and the rest
// joined by a blank line.
func (c Compiler) Compile(nodes []Node) string {
	return c.compile(nodes, 0)
}

func (c Compiler) sut() string {
	if c.SystemUnderTest == "" {
		return DefaultSystemUnderTest
	}
	return c.SystemUnderTest
}

func (c Compiler) compile(nodes []Node, depth int) string {
	parts := make([]string, 0, len(nodes))
	for _, n := range nodes {
		if s := c.node(n, depth); strings.TrimSpace(s) != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, "\n\n")
}

func (c Compiler) node(n Node, depth int) string {
	indent := strings.Repeat("  ", depth)

	switch n.Name {
	case suiteName:
		return indent + "Feature: " + unquote(n.literal(0)) + "\n\n" + c.compile(n.Children, depth+1)

	case caseName:
		input, okInput := n.find(func(ch Node) bool { return ch.Name == c.sut() })
		check, okCheck := n.find(func(ch Node) bool { return pattern.IsAssertion(ch.Name) })
		if !okInput || !okCheck {
			return c.compile(n.Children, depth)
		}

		template := pattern.DefaultTemplate
		expected := ""
		if a, ok := pattern.Lookup(check.Name); ok {
			template = a.Template
			if a.ArgIndex != pattern.NoArg {
				expected = check.literal(a.ArgIndex)
			}
		}
		return indent + "Scenario: " + unquote(n.literal(0)) + "\n" +
			indent + "Given input " + input.literal(0) + "\n" +
			indent + strings.TrimRight("Then it "+template+" "+expected, " ")
	}

	return c.compile(n.Children, depth)
}

// unquote drops every quote character, matching how names read in prose.
func unquote(s string) string {
	return strings.NewReplacer(`'`, "", `"`, "").Replace(s)
}

type Analyzer struct {
	Compiler Compiler
}

// Analyze parses path and compiles it to Feature/Scenario text.
func (a Analyzer) Analyze(ctx context.Context, path string) (string, error) {
	f, err := syntax.ParseFile(ctx, path)
	if err != nil {
		if errors.Is(err, syntax.ErrInvalidContent) || errors.Is(err, syntax.ErrParse) {
			return "", cynerr.Structural(err)
		}
		return "", cynerr.Precondition(err)
	}
	if f.HasErrors {
		slog.WarnContext(ctx, "test file has syntax errors, analysis may be incomplete",
			"path", path)
	}
	return a.AnalyzeFile(f), nil
}

func (a Analyzer) AnalyzeFile(f *syntax.File) string {
	return a.Compiler.Compile(BuildFile(f))
}

// String renders a node tree for debugging.
func (n Node) String() string {
	var b strings.Builder
	n.write(&b, 0)
	return strings.TrimRight(b.String(), "\n")
}

func (n Node) write(b *strings.Builder, depth int) {
	fmt.Fprintf(b, "%s%s(%s)\n", strings.Repeat("  ", depth), n.Name, strings.Join(n.Literals, ", "))
	for _, c := range n.Children {
		c.write(b, depth+1)
	}
}
