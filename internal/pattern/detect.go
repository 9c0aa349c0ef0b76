package pattern

import "strings"

// Detect returns the category of the first keyword set matching the
// lower-cased name, or CategoryGeneric.
func Detect(functionName string) Category {
	fn := strings.ToLower(functionName)
	for _, set := range keywordTable {
		for _, kw := range set.keywords {
			if strings.Contains(fn, kw) {
				return set.category
			}
		}
	}
	return CategoryGeneric
}
