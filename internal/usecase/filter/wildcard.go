package filter

import (
	"fmt"
	"regexp"
	"strings"
)

// WildcardPattern matches a keyword in which '*' stands for any run of
// characters. Each literal segment must appear once, except for its last
// character which may repeat.
type WildcardPattern struct {
	raw string
	re  *regexp.Regexp
}

func CompileWildcard(raw string) (*WildcardPattern, error) {
	re, err := regexp.Compile(wildcardExpr(strings.ToUpper(raw)))
	if err != nil {
		return nil, fmt.Errorf("filter: compile %q: %w", raw, err)
	}
	return &WildcardPattern{raw: raw, re: re}, nil
}

// wildcardExpr builds the unanchored expression for an upper-cased pattern.
// "+" is appended after the quoted segment, so it binds to the segment's
// final character only.
func wildcardExpr(pattern string) string {
	parts := strings.Split(pattern, "*")
	exprs := make([]string, 0, len(parts))
	for _, part := range parts {
		if part == "" {
			continue
		}
		exprs = append(exprs, regexp.QuoteMeta(part)+"+")
	}
	return strings.Join(exprs, ".*?")
}

func (p *WildcardPattern) Match(text string) bool {
	return p.re.MatchString(strings.ToUpper(text))
}

func (p *WildcardPattern) String() string {
	return p.raw
}

// Expr exposes the compiled expression, mostly for logging.
func (p *WildcardPattern) Expr() string {
	return p.re.String()
}
