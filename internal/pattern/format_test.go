package pattern_test

import (
	"errors"
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/whaaaley/cynthia/internal/pattern"
)

type chain struct {
	Name string
	Next *chain
}

var _ = Describe("FormatCall", func() {
	var fn = func() {}

	DescribeTable("renders one line per category",
		func(name string, args []any, want string) {
			got, err := pattern.FormatCall(name, args)
			Expect(err).NotTo(HaveOccurred())
			Expect(got).To(Equal(want))
		},
		Entry("equality", "assertEquals", []any{5, 5}, "Assert that 5 equals 5"),
		Entry("equality with strings", "assertStrictEquals", []any{"a", "b"}, `Assert that "a" equals "b"`),
		Entry("negation", "assertNotEquals", []any{1, 2}, "Assert that 1 does not equal 2"),
		Entry("throwing with message", "assertThrows", []any{fn, errors.New("x"), "test error"}, `Assert that function throws "test error"`),
		Entry("throwing without message", "assertThrows", []any{fn}, `Assert that function throws "an error"`),
		Entry("throwing with empty message", "assertThrows", []any{fn, nil, ""}, `Assert that function throws "an error"`),
		Entry("existence", "assertExists", []any{true}, "Assert that true exists"),
		Entry("greater", "assertGreater", []any{3, 1}, "Assert that 3 is greater than 1"),
		Entry("less", "assertLess", []any{1, 3}, "Assert that 1 is less than 3"),
		Entry("boolean", "assertTrue", []any{true}, "Assert that true is true"),
		Entry("contains", "assertArrayIncludes", []any{[]any{1, 2, 3}, 2}, "Assert that [ 1, 2, 3 ] contains 2"),
		Entry("type", "assertInstanceOf", []any{pattern.Expr("err"), pattern.Expr("Error")}, "Assert that err is type Error"),
		Entry("generic", "assertCustomThing", []any{1, "two", fn}, `Assert custom thing 1 "two" [Function]`),
		Entry("generic without args", "fail", nil, "Fail"),
		Entry("missing argument", "assertEquals", []any{1}, "Assert that 1 equals undefined"),
	)

	It("is deterministic", func() {
		args := []any{map[string]any{"b": 1, "a": []any{true}}, 2}
		first, err := pattern.FormatCall("assertEquals", args)
		Expect(err).NotTo(HaveOccurred())
		second, _ := pattern.FormatCall("assertEquals", args)
		Expect(first).To(Equal(second))
		Expect(first).To(Equal("Assert that { a: [ true ], b: 1 } equals 2"))
	})

	It("rejects categories without a renderer", func() {
		_, err := pattern.Format(pattern.Category("prose"), "x", nil)
		Expect(err).To(MatchError(pattern.ErrUnknownPattern))
	})
})

var _ = Describe("FormatValue", func() {
	DescribeTable("renders compact inline values",
		func(v any, want string) {
			Expect(pattern.FormatValue(v)).To(Equal(want))
		},
		Entry("nil", nil, "null"),
		Entry("null", pattern.Null, "null"),
		Entry("undefined", pattern.Undefined, "undefined"),
		Entry("string", "hi", `"hi"`),
		Entry("string with double quotes", `say "hi"`, `'say "hi"'`),
		Entry("integer float", 10.0, "10"),
		Entry("fraction", 0.25, "0.25"),
		Entry("negative", -3, "-3"),
		Entry("bool", false, "false"),
		Entry("empty slice", []int{}, "[]"),
		Entry("nested slice", []any{1, []any{"a"}}, `[ 1, [ "a" ] ]`),
		Entry("empty map", map[string]any{}, "{}"),
		Entry("ordered object", pattern.NewObject().Set("z", 1).Set("a-b", "x"), `{ z: 1, "a-b": "x" }`),
		Entry("struct", struct {
			Name string
			age  int
		}{"n", 3}, `{ Name: "n" }`),
		Entry("func", func(int) int { return 0 }, "[Function]"),
		Entry("expr", pattern.Expr("testFn(1)"), "testFn(1)"),
		Entry("pointer", func() *int { v := 4; return &v }(), "4"),
	)

	It("marks containers that contain themselves", func() {
		m := map[string]any{"a": 1}
		m["self"] = m
		Expect(pattern.FormatValue(m)).To(Equal("{ a: 1, self: [Circular] }"))

		s := []any{1, nil}
		s[1] = s
		Expect(pattern.FormatValue(s)).To(Equal("[ 1, [Circular] ]"))

		n := &chain{Name: "head"}
		n.Next = n
		Expect(pattern.FormatValue(n)).To(Equal(`{ Name: "head", Next: [Circular] }`))

		obj := pattern.NewObject()
		obj.Set("inner", obj)
		Expect(pattern.FormatValue(obj)).To(Equal("{ inner: [Circular] }"))

		out, err := pattern.FormatCall("assertEquals", []any{m, 1})
		Expect(err).NotTo(HaveOccurred())
		Expect(out).To(ContainSubstring("[Circular]"))
	})

	It("repeats a shared value that is not a cycle", func() {
		shared := []any{1}
		Expect(pattern.FormatValue([]any{shared, shared})).To(Equal("[ [ 1 ], [ 1 ] ]"))
	})

	DescribeTable("encodes non-finite numbers as JSON null",
		func(v any, want string) {
			data, err := pattern.MarshalJSON(v)
			Expect(err).NotTo(HaveOccurred())
			Expect(string(data)).To(Equal(want))
		},
		Entry("NaN", math.NaN(), "null"),
		Entry("infinity in an array", []any{1.0, math.Inf(1), math.Inf(-1)}, "[1,null,null]"),
		Entry("NaN in an object", pattern.NewObject().Set("a", math.NaN()), `{"a":null}`),
		Entry("NaN in a map", map[string]any{"a": []any{math.NaN()}}, `{"a":[null]}`),
		Entry("finite float32 keeps its form", float32(0.5), "0.5"),
	)

	It("keeps insertion order when marshalling objects to JSON", func() {
		obj := pattern.NewObject().Set("b", 1).Set("a", pattern.Undefined).Set("c", []any{pattern.Null})
		obj.Set("b", 2)
		data, err := obj.MarshalJSON()
		Expect(err).NotTo(HaveOccurred())
		Expect(string(data)).To(Equal(`{"b":2,"c":[null]}`))
		Expect(obj.Keys()).To(Equal([]string{"b", "a", "c"}))
	})
})

var _ = Describe("casing", func() {
	DescribeTable("SplitWords",
		func(in string, want []string) {
			Expect(pattern.SplitWords(in)).To(Equal(want))
		},
		Entry("camel", "assertStrictEquals", []string{"assert", "Strict", "Equals"}),
		Entry("acronym", "HTTPServer", []string{"HTTP", "Server"}),
		Entry("separators", "my_custom-check", []string{"my", "custom", "check"}),
		Entry("digits", "checkV2Thing", []string{"check", "V2", "Thing"}),
		Entry("digits after a separator", "retry_2x", []string{"retry", "2", "x"}),
		Entry("non-ASCII", "überCalc-größe", []string{"über", "Calc", "größe"}),
		Entry("only separators", "--", []string(nil)),
	)

	It("title-cases container names", func() {
		Expect(pattern.TitleCase("describe")).To(Equal("Describe"))
		Expect(pattern.TitleCase("it")).To(Equal("It"))
	})

	It("sentence-cases identifiers", func() {
		Expect(pattern.SentenceCase("assertCustomThing")).To(Equal("Assert custom thing"))
		Expect(pattern.SentenceCase("")).To(BeEmpty())
	})
})
