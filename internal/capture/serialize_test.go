package capture_test

import (
	"errors"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/whaaaley/cynthia/internal/capture"
)

var _ = Describe("Serialize", func() {
	var (
		p    *capture.Proxy
		call func(name string, args ...any)
	)

	BeforeEach(func() {
		extended := append(mockAssert(), capture.Module{
			{Name: "assertThrows", Fn: func(...any) (any, error) { return nil, nil }},
			{Name: "assertTrue", Fn: func(...any) (any, error) { return nil, nil }},
			{Name: "assertContains", Fn: func(...any) (any, error) { return nil, nil }},
		}...)
		p = capture.New(capture.Options{}, extended, mockBDD())
		call = func(name string, args ...any) {
			_, _ = p.Call(name, args...)
		}
	})

	serialize := func() []string {
		out, err := p.Serialize()
		Expect(err).NotTo(HaveOccurred())
		return strings.Split(out, "\n")
	}

	It("serializes a simple test structure", func() {
		call("describe", "Calculator Functions", func() {
			call("it", "should add correctly", func() {
				call("assertEquals", 5, 5)
			})
		})

		out, err := p.Serialize()
		Expect(err).NotTo(HaveOccurred())
		Expect(out).To(Equal("Describe Calculator Functions:\n  It should add correctly:\n    Assert that 5 equals 5"))
	})

	It("serializes multiple assertions", func() {
		call("describe", "Test Suite", func() {
			call("it", "first test", func() {
				call("assertEquals", 1, 1)
				call("assertExists", true)
			})
		})

		Expect(serialize()).To(Equal([]string{
			"Describe Test Suite:",
			"  It first test:",
			"    Assert that 1 equals 1",
			"    Assert that true exists",
		}))
	})

	It("serializes different assertion patterns", func() {
		call("describe", "Pattern Tests", func() {
			call("it", "should test various patterns", func() {
				call("assertEquals", 1, 1)
				call("assertThrows", func() { panic("test") }, errors.New("Error"), "test error")
				call("assertTrue", true)
				call("assertContains", []any{1, 2, 3}, 2)
			})
		})

		lines := serialize()
		Expect(lines[2:]).To(Equal([]string{
			"    Assert that 1 equals 1",
			`    Assert that function throws "test error"`,
			"    Assert that true is true",
			"    Assert that [ 1, 2, 3 ] contains 2",
		}))
	})

	It("handles multiple suites", func() {
		call("describe", "First Suite", func() {
			call("it", "first test", func() { call("assertEquals", 1, 1) })
		})
		call("describe", "Second Suite", func() {
			call("it", "second test", func() { call("assertEquals", 2, 2) })
		})

		Expect(serialize()).To(Equal([]string{
			"Describe First Suite:",
			"  It first test:",
			"    Assert that 1 equals 1",
			"Describe Second Suite:",
			"  It second test:",
			"    Assert that 2 equals 2",
		}))
	})

	It("keeps the casing of names", func() {
		call("describe", "test suite", func() {
			call("it", "test case", func() {})
		})

		Expect(serialize()).To(Equal([]string{"Describe test suite:", "  It test case:"}))
	})

	It("renders an empty log as empty text", func() {
		out, err := capture.Serialize(nil)
		Expect(err).NotTo(HaveOccurred())
		Expect(out).To(BeEmpty())
	})

	It("is idempotent", func() {
		call("describe", "S", func() {
			call("it", "T", func() { call("assertEquals", map[string]any{"a": 1}, 5) })
		})

		first, _ := p.Serialize()
		second, _ := p.Serialize()
		Expect(first).To(Equal(second))
	})

	It("renders the first argument of containers as plain text", func() {
		out, err := capture.Serialize([]capture.CapturedCall{
			{Function: "describe", Args: []any{42}},
			{Function: "it"},
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(out).To(Equal("Describe 42:\n  It undefined:"))
	})
})
