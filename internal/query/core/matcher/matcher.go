// Package matcher compiles property filters into predicates.
package matcher

import (
	"fmt"
	"regexp"
	"strings"

	"site-analytics-service/internal/query/core/domain"
)

// Predicate reports whether a property value passes a filter.
type Predicate func(value string) bool

func matchAll(string) bool { return true }

// Compile turns sel into a Predicate. Malformed patterns fail here, never
// during evaluation.
func Compile(sel domain.Select) (Predicate, error) {
	if sel.MatchesAll() {
		return matchAll, nil
	}
	switch sel.Kind {
	case domain.MatchExact:
		pattern := sel.Pattern
		return func(v string) bool { return v == pattern }, nil
	case domain.MatchRegex:
		re, err := regexp.Compile(sel.Pattern)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrInvalidFilter, err)
		}
		return re.MatchString, nil
	case domain.MatchGlob:
		re, err := globToRegexp(sel.Pattern)
		if err != nil {
			return nil, err
		}
		return re.MatchString, nil
	default:
		return nil, fmt.Errorf("%w: unknown match kind %d", domain.ErrInvalidFilter, sel.Kind)
	}
}

// globToRegexp translates a glob into an anchored expression. Supported
// syntax: * (any run), ? (one rune), [...] and [!...] classes, \ escapes.
func globToRegexp(glob string) (*regexp.Regexp, error) {
	var b strings.Builder
	b.WriteString("^")
	runes := []rune(glob)
	for i := 0; i < len(runes); i++ {
		switch r := runes[i]; r {
		case '*':
			b.WriteString(".*")
		case '?':
			b.WriteString(".")
		case '\\':
			if i+1 == len(runes) {
				return nil, fmt.Errorf("%w: trailing escape in glob %q", domain.ErrInvalidFilter, glob)
			}
			i++
			b.WriteString(regexp.QuoteMeta(string(runes[i])))
		case '[':
			end := i + 1
			if end < len(runes) && (runes[end] == '!' || runes[end] == '^') {
				end++
			}
			if end < len(runes) && runes[end] == ']' {
				end++
			}
			for end < len(runes) && runes[end] != ']' {
				end++
			}
			if end >= len(runes) {
				return nil, fmt.Errorf("%w: unterminated class in glob %q", domain.ErrInvalidFilter, glob)
			}
			class := runes[i+1 : end]
			b.WriteString("[")
			if len(class) > 0 && (class[0] == '!' || class[0] == '^') {
				b.WriteString("^")
				class = class[1:]
			}
			for _, c := range class {
				if c == '\\' || c == '[' || c == ']' {
					b.WriteRune('\\')
				}
				b.WriteRune(c)
			}
			b.WriteString("]")
			i = end
		default:
			b.WriteString(regexp.QuoteMeta(string(r)))
		}
	}
	b.WriteString("$")
	re, err := regexp.Compile(b.String())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidFilter, err)
	}
	return re, nil
}
