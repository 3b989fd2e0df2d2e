package domain

import (
	"fmt"
	"math"
	"net/url"
	"time"
)

type Op string

const (
	OpAbove Op = "above"
	OpBelow Op = "below"
	OpEqual Op = "equal"
)

type Condition struct {
	Op        Op
	Threshold float64
}

// Met reports whether v satisfies the condition.
func (c Condition) Met(v float64) bool {
	switch c.Op {
	case OpAbove:
		return v > c.Threshold
	case OpBelow:
		return v < c.Threshold
	case OpEqual:
		return math.Abs(v-c.Threshold) < 1e-9
	default:
		return false
	}
}

func (c Condition) String() string {
	return fmt.Sprintf("%s %g", c.Op, c.Threshold)
}

// Match filters the property values an alert looks at. At most one field
// may be set; all empty matches every value.
type Match struct {
	Exact string
	Re    string
	Glob  string
}

// Definition is a declarative alert: every Interval, query Metric over the
// last Window grouped by Property, and fire when the latest bucket of any
// group meets Condition.
type Definition struct {
	Name      string
	Domain    string
	Interval  string
	Window    string
	Property  string
	Metric    string
	Match     Match
	Condition Condition
	Webhook   string
}

// Validate checks the fields that do not depend on the query vocabulary.
// It returns the parsed window.
func (d Definition) Validate() (time.Duration, error) {
	if d.Name == "" {
		return 0, fmt.Errorf("%w: name is required", ErrInvalidDefinition)
	}
	if err := ValidateDomain(d.Domain); err != nil {
		return 0, fmt.Errorf("alert %q: %w", d.Name, err)
	}
	if _, err := ParseInterval(d.Interval); err != nil {
		return 0, fmt.Errorf("alert %q: %w", d.Name, err)
	}
	window, err := time.ParseDuration(d.Window)
	if err != nil || window <= 0 {
		return 0, fmt.Errorf("%w: alert %q: window %q must be a positive duration", ErrInvalidDefinition, d.Name, d.Window)
	}
	if d.Metric == "" {
		return 0, fmt.Errorf("%w: alert %q: metric is required", ErrInvalidDefinition, d.Name)
	}
	switch d.Condition.Op {
	case OpAbove, OpBelow, OpEqual:
	default:
		return 0, fmt.Errorf("%w: alert %q: unknown condition %q", ErrInvalidDefinition, d.Name, d.Condition.Op)
	}
	set := 0
	for _, s := range []string{d.Match.Exact, d.Match.Re, d.Match.Glob} {
		if s != "" {
			set++
		}
	}
	if set > 1 {
		return 0, fmt.Errorf("%w: alert %q: match sets more than one of exact, re, glob", ErrInvalidDefinition, d.Name)
	}
	if d.Webhook != "" {
		u, err := url.Parse(d.Webhook)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return 0, fmt.Errorf("%w: alert %q: webhook %q is not an http(s) URL", ErrInvalidDefinition, d.Name, d.Webhook)
		}
	}
	return window, nil
}
