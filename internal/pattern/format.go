package pattern

import (
	"errors"
	"fmt"
	"strings"
)

var ErrUnknownPattern = errors.New("unknown pattern")

type renderer func(args []any, functionName string) string

var renderers = map[Category]renderer{
	CategoryEquality: func(args []any, _ string) string {
		return fmt.Sprintf("Assert that %s equals %s", arg(args, 0), arg(args, 1))
	},
	CategoryNegation: func(args []any, _ string) string {
		return fmt.Sprintf("Assert that %s does not equal %s", arg(args, 0), arg(args, 1))
	},
	CategoryThrowing: func(args []any, _ string) string {
		msg := "an error"
		if len(args) > 2 && Truthy(args[2]) {
			msg = Plain(args[2])
		}
		return `Assert that function throws "` + msg + `"`
	},
	CategoryExistence: func(args []any, _ string) string {
		return fmt.Sprintf("Assert that %s exists", arg(args, 0))
	},
	CategoryComparison: func(args []any, functionName string) string {
		op := "less than"
		if strings.Contains(strings.ToLower(functionName), "greater") {
			op = "greater than"
		}
		return fmt.Sprintf("Assert that %s is %s %s", arg(args, 0), op, arg(args, 1))
	},
	CategoryBoolean: func(args []any, functionName string) string {
		state := "true"
		if strings.Contains(strings.ToLower(functionName), "false") {
			state = "false"
		}
		return fmt.Sprintf("Assert that %s is %s", arg(args, 0), state)
	},
	CategoryContains: func(args []any, _ string) string {
		return fmt.Sprintf("Assert that %s contains %s", arg(args, 0), arg(args, 1))
	},
	CategoryType: func(args []any, _ string) string {
		return fmt.Sprintf("Assert that %s is type %s", arg(args, 0), arg(args, 1))
	},
	CategoryGeneric: func(args []any, functionName string) string {
		// FormatValue already renders func values as the placeholder.
		parts := []string{SentenceCase(functionName)}
		for _, a := range args {
			parts = append(parts, FormatValue(a))
		}
		return strings.Join(parts, " ")
	},
}

// Format renders one assertion line for the given category.
func Format(category Category, functionName string, args []any) (string, error) {
	render, ok := renderers[category]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownPattern, category)
	}
	return render(args, functionName), nil
}

// FormatCall detects the category of functionName and formats the call.
func FormatCall(functionName string, args []any) (string, error) {
	return Format(Detect(functionName), functionName, args)
}

func arg(args []any, i int) string {
	if i >= len(args) {
		return FormatValue(Undefined)
	}
	return FormatValue(args[i])
}
