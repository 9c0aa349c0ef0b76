package harness_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/whaaaley/cynthia/internal/harness"
	"github.com/whaaaley/cynthia/internal/model"
)

var _ = Describe("Builder", func() {
	var b *harness.Builder

	BeforeEach(func() {
		b = harness.NewBuilder()
	})

	It("records suites, tests and expectations in order", func() {
		b.Describe("formatPhone", func() {
			b.It("formats 10 digits", func() {
				b.Expect("1234567890").ToBe("(123) 456-7890")
				b.Expect("123").Not().ToBe("(123)")
			})
			b.It("returns parts", func() {
				b.Expect("1234567890", true).ToMatchObject(map[string]any{"area": "123"})
				b.Expect("1").Not().ToMatchObject(map[string]any{"area": "1"})
			})
		})

		state := b.State()
		Expect(state.Suites).To(HaveLen(1))
		suite := state.Suites[0]
		Expect(suite.Name).To(Equal("formatPhone"))
		Expect(suite.Tests).To(HaveLen(2))
		Expect(suite.Tests[0].Expects).To(Equal([]model.Expectation{
			model.NewExpectation([]any{"1234567890"}, model.MatcherToBe, "(123) 456-7890"),
			model.NewExpectation([]any{"123"}, model.MatcherNotToBe, "(123)"),
		}))
		Expect(suite.Tests[1].Expects[0].Input).To(Equal([]any{"1234567890", true}))
		m, _, err := suite.Tests[1].Expects[1].Matcher()
		Expect(err).NotTo(HaveOccurred())
		Expect(m).To(Equal(model.MatcherNotToMatchObject))
	})

	It("treats it without a suite as a no-op", func() {
		ran := false
		Expect(b.It("orphan", func() { ran = true })).To(Equal(harness.StatusNoSuite))
		Expect(ran).To(BeFalse())
		Expect(b.State().Suites).To(BeEmpty())
	})

	It("never records expect without an active suite", func() {
		a := b.Expect(1)
		Expect(a.Inert()).To(BeTrue())
		Expect(a.ToBe(1)).To(Equal(harness.StatusNoSuite))
		Expect(a.Not().ToMatchObject(1)).To(Equal(harness.StatusNoSuite))
		Expect(b.State().Suites).To(BeEmpty())

		b.Describe("empty", func() {
			Expect(b.Expect(2).Inert()).To(BeTrue())
		})
		Expect(b.State().Suites[0].Tests).To(BeEmpty())
	})

	It("restores the outer suite after a nested describe", func() {
		b.Describe("outer", func() {
			b.Describe("inner", func() {
				b.It("inner test", nil)
			})
			b.It("outer test", nil)
		})
		Expect(b.It("after", nil)).To(Equal(harness.StatusNoSuite))

		state := b.State()
		Expect(state.Suites).To(HaveLen(2))
		Expect(state.Suites[0].Name).To(Equal("outer"))
		Expect(state.Suites[0].Tests[0].Name).To(Equal("outer test"))
		Expect(state.Suites[1].Tests[0].Name).To(Equal("inner test"))
	})

	It("keeps assertions valid while more tests are added", func() {
		b.Describe("S", func() {
			b.It("first", nil)
			pending := b.Expect(1)
			b.It("second", nil)
			b.It("third", nil)
			pending.ToBe(1)
		})

		tests := b.State().Suites[0].Tests
		Expect(tests[0].Expects).To(HaveLen(1))
		Expect(tests[1].Expects).To(BeEmpty())
	})

	It("returns snapshots", func() {
		b.Describe("S", func() { b.It("T", nil) })
		snap := b.State()
		b.Describe("S2", nil)
		Expect(snap.Suites).To(HaveLen(1))
		Expect(b.State().Suites).To(HaveLen(2))
	})
})
