package domain

import "fmt"

// MatchKind selects the strategy a Select filter uses.
type MatchKind int

const (
	MatchAny MatchKind = iota
	MatchExact
	MatchRegex
	MatchGlob
)

func (k MatchKind) String() string {
	switch k {
	case MatchAny:
		return "any"
	case MatchExact:
		return "exact"
	case MatchRegex:
		return "re"
	case MatchGlob:
		return "glob"
	default:
		return "unknown"
	}
}

// Select filters the values of a property. The zero value matches everything.
type Select struct {
	Kind    MatchKind
	Pattern string
}

func Exact(pattern string) Select { return Select{Kind: MatchExact, Pattern: pattern} }
func Regex(pattern string) Select { return Select{Kind: MatchRegex, Pattern: pattern} }
func Glob(pattern string) Select  { return Select{Kind: MatchGlob, Pattern: pattern} }

// FromText builds a Select from the free text form: literal equality, or a
// regular expression when isRe is set.
func FromText(text string, isRe bool) Select {
	if isRe {
		return Regex(text)
	}
	return Exact(text)
}

// NewSelect builds a Select from the keyed form where at most one of exact,
// re and glob may be set.
func NewSelect(exact, re, glob *string) (Select, error) {
	var out Select
	set := 0
	if exact != nil {
		out, set = Exact(*exact), set+1
	}
	if re != nil {
		out, set = Regex(*re), set+1
	}
	if glob != nil {
		out, set = Glob(*glob), set+1
	}
	if set > 1 {
		return Select{}, fmt.Errorf("%w: only one of exact, re, glob may be set", ErrInvalidFilter)
	}
	return out, nil
}

// MatchesAll reports whether the filter accepts every value.
func (s Select) MatchesAll() bool {
	return s.Kind == MatchAny || s.Pattern == ""
}

func (s Select) String() string {
	if s.MatchesAll() {
		return "any"
	}
	return s.Kind.String() + ":" + s.Pattern
}
