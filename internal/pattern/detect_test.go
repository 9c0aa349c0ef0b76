package pattern_test

import (
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/whaaaley/cynthia/internal/pattern"
)

var _ = Describe("Detect", func() {
	DescribeTable("resolves categories",
		func(name string, want pattern.Category) {
			Expect(pattern.Detect(name)).To(Equal(want))
		},
		Entry("equality", "assertEquals", pattern.CategoryEquality),
		Entry("jest style", "toBe", pattern.CategoryEquality),
		Entry("negation before equality", "assertNotEquals", pattern.CategoryNegation),
		Entry("false is negation", "assertFalse", pattern.CategoryNegation),
		Entry("throwing", "assertThrows", pattern.CategoryThrowing),
		Entry("existence", "assertExists", pattern.CategoryExistence),
		Entry("defined", "isDefined", pattern.CategoryExistence),
		Entry("tobe wins over defined", "toBeDefined", pattern.CategoryEquality),
		Entry("comparison", "assertGreater", pattern.CategoryComparison),
		Entry("boolean", "assertTrue", pattern.CategoryBoolean),
		Entry("contains", "assertArrayIncludes", pattern.CategoryContains),
		Entry("type", "assertInstanceOf", pattern.CategoryType),
		Entry("match counts as equality", "assertMatch", pattern.CategoryEquality),
		Entry("case insensitive", "ASSERTEQUALS", pattern.CategoryEquality),
		Entry("generic", "fail", pattern.CategoryGeneric),
		Entry("empty name", "", pattern.CategoryGeneric),
	)

	It("returns the first matching category for every catalog entry", func() {
		order := []struct {
			cat      pattern.Category
			keywords []string
		}{
			{pattern.CategoryNegation, []string{"not", "false"}},
			{pattern.CategoryThrowing, []string{"throw"}},
			{pattern.CategoryEquality, []string{"equal", "tobe", "match"}},
			{pattern.CategoryExistence, []string{"exist", "defined", "null", "undefined"}},
			{pattern.CategoryComparison, []string{"greater", "less"}},
			{pattern.CategoryBoolean, []string{"true", "truthy", "falsy"}},
			{pattern.CategoryContains, []string{"contain", "include"}},
			{pattern.CategoryType, []string{"instanceof"}},
		}
		for _, name := range pattern.AssertionNames() {
			want := pattern.CategoryGeneric
		search:
			for _, set := range order {
				for _, kw := range set.keywords {
					if strings.Contains(strings.ToLower(name), kw) {
						want = set.cat
						break search
					}
				}
			}
			Expect(pattern.Detect(name)).To(Equal(want), name)
		}
	})
})

var _ = Describe("catalog", func() {
	It("looks up templates and argument indexes", func() {
		a, ok := pattern.Lookup("assertEquals")
		Expect(ok).To(BeTrue())
		Expect(a.ArgIndex).To(Equal(0))
		Expect(a.Template).To(Equal("should equal"))

		a, ok = pattern.Lookup("assert")
		Expect(ok).To(BeTrue())
		Expect(a.ArgIndex).To(Equal(pattern.NoArg))
		Expect(a.Template).To(Equal("should be truthy"))

		_, ok = pattern.Lookup("expect")
		Expect(ok).To(BeFalse())
	})

	It("lists every assertion once in sorted order", func() {
		names := pattern.AssertionNames()
		Expect(names).To(HaveLen(26))
		Expect(names).To(ContainElements("assertThrows", "unreachable", "equal"))
		for i := 1; i < len(names); i++ {
			Expect(names[i-1] < names[i]).To(BeTrue())
		}
		Expect(pattern.IsAssertion("assertObjectMatch")).To(BeTrue())
		Expect(pattern.IsAssertion("describe")).To(BeFalse())
	})
})
