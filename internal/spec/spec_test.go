package spec_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/whaaaley/cynthia/internal/cynerr"
	"github.com/whaaaley/cynthia/internal/pattern"
	"github.com/whaaaley/cynthia/internal/spec"
	"github.com/whaaaley/cynthia/internal/syntax"
)

const dslSource = `import { createTestSuites, runTestSuites } from 'cynthia'
import testFn from './math.ts'

const t = createTestSuites()

t.describe('math', () => {
  t.it('adds', () => {
    t.expect([1, 2]).toBe(3)
    t.expect([2, 2]).not.toBe(5)
  })
  t.it('builds', () => {
    t.expect(['a']).toMatchObject({ name: 'a', tags: [] })
  })
})

runTestSuites(t.getState(), testFn)

export default t.getState()
`

const bddSource = `import { assertEquals } from '@std/assert'
import { describe, it } from '@std/testing/bdd'
import testFn from './phone.ts'

describe('Phone', () => {
  it('formats', () => {
    const result = testFn('1234567890')
    assertEquals(result, '(123) 456-7890')
  })
})
`

func parse(src string) *syntax.File {
	f, err := syntax.Parse(context.Background(), []byte(src), "x.cyn.ts")
	Expect(err).NotTo(HaveOccurred())
	return f
}

var _ = Describe("Extractor", func() {
	var x spec.Extractor

	It("replays DSL suites into prompt text", func() {
		s, err := x.FromFile(parse(dslSource), spec.FormatSuites)
		Expect(err).NotTo(HaveOccurred())
		Expect(s.Format).To(Equal(spec.FormatSuites))
		Expect(s.Text).To(Equal(strings.Join([]string{
			`Description: "math":`,
			`  This function adds:`,
			"    I expect the function, with the arguments `1,2`, to be `3`",
			"    I expect the function, with the arguments `2,2`, not to be `5`",
			`  This function builds:`,
			"    I expect the function, with the arguments `\"a\"`, to match the object `{\"name\":\"a\",\"tags\":[]}`",
		}, "\n")))

		Expect(s.State).NotTo(BeNil())
		Expect(s.State.Suites).To(HaveLen(1))
		Expect(s.State.Suites[0].Tests).To(HaveLen(2))
		Expect(s.State.Validate()).To(Succeed())
	})

	It("renders non-finite expected values as JSON does", func() {
		src := "t.describe('parse', () => {\n  t.it('rejects junk', () => {\n    t.expect(['abc']).toBe(NaN)\n    t.expect([1, 0]).toBe(Infinity)\n  })\n})\n"
		s, err := x.FromFile(parse(src), spec.FormatSuites)
		Expect(err).NotTo(HaveOccurred())
		Expect(s.Text).To(Equal(strings.Join([]string{
			`Description: "parse":`,
			`  This function rejects junk:`,
			"    I expect the function, with the arguments `\"abc\"`, to be `null`",
			"    I expect the function, with the arguments `1,0`, to be `null`",
		}, "\n")))
	})

	It("compiles BDD files to feature text", func() {
		s, err := x.FromFile(parse(bddSource), spec.FormatFeature)
		Expect(err).NotTo(HaveOccurred())
		Expect(s.Text).To(Equal("Feature: Phone\n\n  Scenario: formats\n  Given input '1234567890'\n  Then it should equal '(123) 456-7890'"))
	})

	It("serializes captured assertion calls with bindings substituted", func() {
		s, err := x.FromFile(parse(bddSource), spec.FormatFlat)
		Expect(err).NotTo(HaveOccurred())
		Expect(s.Text).To(Equal("Describe Phone:\n  It formats:\n    Assert that testFn('1234567890') equals \"(123) 456-7890\""))
	})

	DescribeTable("auto format",
		func(src string, want spec.Format) {
			s, err := x.FromFile(parse(src), spec.FormatAuto)
			Expect(err).NotTo(HaveOccurred())
			Expect(s.Format).To(Equal(want))
		},
		Entry("DSL expectations", dslSource, spec.FormatSuites),
		Entry("describe blocks", bddSource, spec.FormatFeature),
		Entry("top-level assertions", "assertEquals(testFn(2), 4)\n", spec.FormatFlat),
	)

	It("uses the configured system under test name", func() {
		src := strings.ReplaceAll(bddSource, "testFn(", "format(")
		s, err := spec.Extractor{SystemUnderTest: "format"}.FromFile(parse(src), spec.FormatFeature)
		Expect(err).NotTo(HaveOccurred())
		Expect(s.Text).To(ContainSubstring("Given input '1234567890'"))
	})

	It("rejects a file without a specification", func() {
		_, err := x.FromFile(parse("const a = 1\n"), spec.FormatAuto)
		Expect(err).To(MatchError(spec.ErrEmpty))
		Expect(errors.Is(err, cynerr.ErrStructural)).To(BeTrue())
	})

	It("rejects a DSL file without expectations in suites format", func() {
		_, err := x.FromFile(parse("t.describe('a', () => {})\n"), spec.FormatSuites)
		Expect(err).To(MatchError(spec.ErrEmpty))
	})

	It("rejects an unknown format", func() {
		_, err := x.FromFile(parse(dslSource), spec.Format("yaml"))
		Expect(err).To(MatchError(spec.ErrUnknownFormat))
		Expect(cynerr.KindOf(err)).To(Equal(cynerr.KindPrecondition))
	})

	It("extracts from a file on disk", func() {
		path := filepath.Join(GinkgoT().TempDir(), "math.cyn.ts")
		Expect(os.WriteFile(path, []byte(dslSource), 0o644)).To(Succeed())

		s, err := x.Extract(context.Background(), path, spec.FormatAuto)
		Expect(err).NotTo(HaveOccurred())
		Expect(s.Format).To(Equal(spec.FormatSuites))
	})

	It("reports a missing file as a precondition", func() {
		_, err := x.Extract(context.Background(), filepath.Join(GinkgoT().TempDir(), "missing.cyn.ts"), spec.FormatAuto)
		Expect(err).To(HaveOccurred())
		Expect(cynerr.KindOf(err)).To(Equal(cynerr.KindPrecondition))
	})
})

var _ = Describe("ParseFormat", func() {
	It("accepts known formats", func() {
		for _, f := range spec.Formats {
			got, err := spec.ParseFormat(string(f))
			Expect(err).NotTo(HaveOccurred())
			Expect(got).To(Equal(f))
		}
	})

	It("rejects anything else", func() {
		_, err := spec.ParseFormat("gherkin")
		Expect(err).To(MatchError(spec.ErrUnknownFormat))
	})
})

var _ = Describe("Value", func() {
	arg := func(src string) syntax.Expr {
		f := parse("x(" + src + ")\n")
		calls := f.Calls()
		Expect(calls).To(HaveLen(1))
		Expect(calls[0].Args).To(HaveLen(1))
		return calls[0].Args[0]
	}

	DescribeTable("literal conversion",
		func(src string, want any) {
			Expect(spec.Value(arg(src))).To(Equal(want))
		},
		Entry("string", `'hi'`, "hi"),
		Entry("template", "`plain`", "plain"),
		Entry("number", `42`, 42.0),
		Entry("negative number", `-1.5`, -1.5),
		Entry("bool", `true`, true),
		Entry("null", `null`, pattern.Null),
		Entry("undefined", `undefined`, pattern.Undefined),
		Entry("array", `[1, 'a']`, []any{1.0, "a"}),
		Entry("call", `testFn(1)`, pattern.Expr("testFn(1)")),
		Entry("identifier", `result`, pattern.Expr("result")),
		Entry("interpolated template", "`a${b}`", pattern.Expr("`a${b}`")),
	)

	It("keeps object key order", func() {
		obj, ok := spec.Value(arg(`{ b: 1, a: 'x' }`)).(*pattern.Object)
		Expect(ok).To(BeTrue())
		Expect(obj.Keys()).To(Equal([]string{"b", "a"}))
	})

	It("falls back to source text for objects with spreads", func() {
		Expect(spec.Value(arg(`{ ...rest }`))).To(Equal(pattern.Expr("{ ...rest }")))
	})
})
