package harness

import (
	"fmt"
	"testing"

	"github.com/onsi/gomega"
	"github.com/onsi/gomega/types"

	"github.com/whaaaley/cynthia/internal/cynerr"
	"github.com/whaaaley/cynthia/internal/model"
	"github.com/whaaaley/cynthia/internal/pattern"
)

// TB is the part of testing.TB the runner needs. A *testing.T gets one
// subtest per suite and per test; other implementations run inline.
type TB interface {
	Helper()
	Errorf(format string, args ...any)
	Fatalf(format string, args ...any)
}

// Candidate is the implementation under test.
type Candidate func(args ...any) any

// Run replays every recorded expectation against candidate. Failures are
// reported through t and are never swallowed.
func Run(t TB, state model.TestState, candidate Candidate) {
	t.Helper()
	for _, suite := range state.Suites {
		subtest(t, suite.Name, func(t TB) {
			for _, test := range suite.Tests {
				subtest(t, test.Name, func(t TB) {
					runTest(t, test, candidate)
				})
			}
		})
	}
}

func subtest(t TB, name string, fn func(TB)) {
	t.Helper()
	if tt, ok := t.(*testing.T); ok {
		tt.Run(name, func(t *testing.T) { fn(t) })
		return
	}
	fn(t)
}

func runTest(t TB, test model.Test, candidate Candidate) {
	t.Helper()
	g := gomega.NewWithT(t)
	for i, e := range test.Expects {
		m, want, err := e.Matcher()
		if err != nil {
			t.Errorf("%s: expectation %d: %v", test.Name, i+1, cynerr.Structural(err))
			continue
		}

		got, err := invoke(candidate, e.Input)
		if err != nil {
			t.Errorf("%s: expectation %d: %v", test.Name, i+1, err)
			continue
		}

		desc := fmt.Sprintf("%s: candidate(%s)", test.Name, pattern.FormatValue(e.Input))
		g.Expect(got).To(matcherFor(m, want), desc)
	}
}

func matcherFor(m model.Matcher, want any) types.GomegaMatcher {
	switch m {
	case model.MatcherToBe:
		return EqualValue(want)
	case model.MatcherToMatchObject:
		return MatchObject(want)
	case model.MatcherNotToBe:
		return gomega.Not(EqualValue(want))
	default:
		return gomega.Not(MatchObject(want))
	}
}

func invoke(candidate Candidate, input []any) (out any, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("candidate panicked: %v", r)
		}
	}()
	return candidate(input...), nil
}
