package domain

import (
	"fmt"
	"time"
)

// Range is a closed time interval [From, To], normalized to UTC.
type Range struct {
	From time.Time
	To   time.Time
}

func NewRange(from, to time.Time) (Range, error) {
	if from.IsZero() || to.IsZero() {
		return Range{}, fmt.Errorf("%w: from and to are required", ErrInvalidQuery)
	}
	from, to = from.UTC(), to.UTC()
	if from.After(to) {
		return Range{}, fmt.Errorf("%w: from %s is after to %s", ErrInvalidQuery,
			from.Format(time.RFC3339), to.Format(time.RFC3339))
	}
	return Range{From: from, To: to}, nil
}

// Day returns the UTC calendar day containing t.
func Day(t time.Time) Range {
	start := t.UTC().Truncate(24 * time.Hour)
	return Range{From: start, To: start.Add(24*time.Hour - time.Nanosecond)}
}

// Last returns the range covering the window that ends at now.
func Last(now time.Time, window time.Duration) Range {
	now = now.UTC()
	return Range{From: now.Add(-window), To: now}
}

func (r Range) Contains(t time.Time) bool {
	return !t.Before(r.From) && !t.After(r.To)
}

func (r Range) Span() time.Duration {
	return r.To.Sub(r.From)
}
