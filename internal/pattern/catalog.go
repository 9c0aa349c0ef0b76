// Package pattern classifies assertion function names and renders assertion
// calls as plain sentences.
package pattern

import "sort"

// Category is the semantic family of an assertion function.
type Category string

const (
	CategoryEquality   Category = "equality"
	CategoryNegation   Category = "negation"
	CategoryThrowing   Category = "throwing"
	CategoryExistence  Category = "existence"
	CategoryComparison Category = "comparison"
	CategoryBoolean    Category = "boolean"
	CategoryContains   Category = "contains"
	CategoryType       Category = "type"
	CategoryGeneric    Category = "generic"
)

type keywordSet struct {
	category Category
	keywords []string
}

// Order matters: negation is checked before equality so "assertNotEquals"
// is a negation.
var keywordTable = []keywordSet{
	{CategoryNegation, []string{"not", "false"}},
	{CategoryThrowing, []string{"throw"}},
	{CategoryEquality, []string{"equal", "tobe", "match"}},
	{CategoryExistence, []string{"exist", "defined", "null", "undefined"}},
	{CategoryComparison, []string{"greater", "less"}},
	{CategoryBoolean, []string{"true", "truthy", "falsy"}},
	{CategoryContains, []string{"contain", "include"}},
	{CategoryType, []string{"instanceof"}},
}

// NoArg marks an assertion that carries no expected literal.
const NoArg = -1

// Assertion describes how a statically parsed assertion call reads in a
// Scenario. ArgIndex is the argument holding the expected literal.
type Assertion struct {
	ArgIndex    int
	Template    string
	Description string
}

// DefaultTemplate is used for assertions missing from the catalog.
const DefaultTemplate = "should return"

// Catalog of the @std/assert surface.
var assertions = map[string]Assertion{
	"assertEquals":          {0, "should equal", "Actual and expected are deeply equal."},
	"assertStrictEquals":    {0, "should strictly equal", "Actual and expected are equal under Object.is."},
	"equal":                 {0, "should equal", "Deep equality comparison."},
	"assertNotEquals":       {0, "should not equal", "Actual and expected are not deeply equal."},
	"assertNotStrictEquals": {0, "should not strictly equal", "Actual and expected differ under Object.is."},

	"assertGreater":        {0, "should be greater than", "Actual is greater than expected."},
	"assertGreaterOrEqual": {0, "should be greater than or equal to", "Actual is greater than or equal to expected."},
	"assertLess":           {0, "should be less than", "Actual is less than expected."},
	"assertLessOrEqual":    {0, "should be less than or equal to", "Actual is less than or equal to expected."},
	"assertAlmostEquals":   {0, "should approximately equal", "Actual and expected are equal within a tolerance."},

	"assertMatch":          {0, "should match pattern", "Actual matches the expected RegExp."},
	"assertNotMatch":       {0, "should not match pattern", "Actual does not match the expected RegExp."},
	"assertStringIncludes": {0, "should include", "Actual includes the expected substring."},

	"assertArrayIncludes": {0, "should include", "Actual includes the expected values."},
	"assertObjectMatch":   {0, "should match object", "Expected is a deep subset of actual."},

	"assertInstanceOf":    {0, "should be instance of", "Value is an instance of the type."},
	"assertNotInstanceOf": {0, "should not be instance of", "Value is not an instance of the type."},

	"assert":       {NoArg, "should be truthy", "Expression is truthy."},
	"assertFalse":  {NoArg, "should be falsy", "Expression is falsy."},
	"assertExists": {NoArg, "should exist", "Actual is neither null nor undefined."},

	"assertThrows":  {0, "should throw", "Function throws when executed."},
	"assertRejects": {0, "should reject with", "Promise-returning function rejects."},
	"assertIsError": {0, "should be error of type", "Value is an Error of the given class."},

	"fail":          {NoArg, "should fail", "Forcefully fails."},
	"unimplemented": {NoArg, "should be unimplemented", "Stub that throws when invoked."},
	"unreachable":   {NoArg, "should be unreachable", "Marks unreachable code."},
}

func Lookup(name string) (Assertion, bool) {
	a, ok := assertions[name]
	return a, ok
}

func IsAssertion(name string) bool {
	_, ok := assertions[name]
	return ok
}

// AssertionNames returns the catalog names in sorted order.
func AssertionNames() []string {
	names := make([]string, 0, len(assertions))
	for n := range assertions {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
