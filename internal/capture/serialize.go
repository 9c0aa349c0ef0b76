package capture

import (
	"fmt"
	"strings"

	"github.com/whaaaley/cynthia/internal/cynerr"
	"github.com/whaaaley/cynthia/internal/pattern"
)

const (
	DescribeName = "describe"
	ItName       = "it"
)

// Serialize renders the log one line per call. Indentation depends only on
// the call name: describe at 0, it at 2, everything else at 4 as a
// formatted assertion.
func Serialize(calls []CapturedCall) (string, error) {
	lines := make([]string, 0, len(calls))
	for _, c := range calls {
		switch c.Function {
		case DescribeName:
			lines = append(lines, fmt.Sprintf("%s %s:", pattern.TitleCase(c.Function), label(c.Args)))
		case ItName:
			lines = append(lines, fmt.Sprintf("  %s %s:", pattern.TitleCase(c.Function), label(c.Args)))
		default:
			line, err := pattern.FormatCall(c.Function, c.Args)
			if err != nil {
				return "", cynerr.Structural(fmt.Errorf("serialize %s: %w", c.Function, err))
			}
			lines = append(lines, "    "+line)
		}
	}
	return strings.Join(lines, "\n"), nil
}

func label(args []any) string {
	if len(args) == 0 {
		return pattern.FormatValue(pattern.Undefined)
	}
	return pattern.Plain(args[0])
}
