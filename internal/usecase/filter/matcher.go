// Package filter compiles operator keywords and evaluates them against
// message bodies. Matching is case-insensitive.
package filter

import "strings"

type Pattern interface {
	Match(text string) bool
	String() string
}

func IsPairwise(raw string) bool {
	return strings.Contains(raw, pairSeparator)
}

// Compile picks the matcher kind from the raw keyword.
func Compile(raw string) (Pattern, error) {
	if IsPairwise(raw) {
		return CompilePairwise(raw), nil
	}
	return CompileWildcard(raw)
}

// Evaluate returns the first keyword, in stored order, that matches text.
// Keywords are compiled on every call; a keyword that does not compile never
// matches.
func Evaluate(keywords []string, text string) (string, bool) {
	for _, kw := range keywords {
		pattern, err := Compile(kw)
		if err != nil {
			continue
		}
		if pattern.Match(text) {
			return kw, true
		}
	}
	return "", false
}
