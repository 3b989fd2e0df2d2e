package aggregate

import (
	"fmt"
	"time"

	"site-analytics-service/internal/query/core/domain"
)

// Resolution is the width of a time bucket.
type Resolution time.Duration

const (
	Minute = Resolution(time.Minute)
	Hour   = Resolution(time.Hour)
	Day    = Resolution(24 * time.Hour)
)

func (r Resolution) String() string {
	switch r {
	case Minute:
		return "minute"
	case Hour:
		return "hour"
	case Day:
		return "day"
	default:
		return time.Duration(r).String()
	}
}

// ResolutionFor picks the bucket width for a range:
//
//	span <= 1h  -> minute
//	span <= 24h -> hour
//	otherwise   -> day
func ResolutionFor(r domain.Range) Resolution {
	switch span := r.Span(); {
	case span <= time.Hour:
		return Minute
	case span <= 24*time.Hour:
		return Hour
	default:
		return Day
	}
}

// MaxBuckets caps the series length of one query. At day resolution it
// allows ranges of a little over 27 years.
const MaxBuckets = 10000

// Count returns the number of buckets NewBuckets produces for r. It works on
// unix seconds so spans beyond the time.Duration range do not saturate.
func Count(r domain.Range) int64 {
	width := time.Duration(ResolutionFor(r))
	first := r.From.UTC().Truncate(width).Unix()
	last := r.To.UTC().Truncate(width).Unix()
	return (last-first)/int64(width/time.Second) + 1
}

// CheckRange rejects ranges with more than MaxBuckets buckets.
func CheckRange(r domain.Range) error {
	if n := Count(r); n > MaxBuckets {
		return fmt.Errorf("%w: range needs %d %s buckets, at most %d allowed",
			domain.ErrInvalidQuery, n, ResolutionFor(r), MaxBuckets)
	}
	return nil
}

// Buckets is the ordered bucket sequence of a range. Bucket starts are UTC
// aligned to the resolution; the first bucket contains From and the last
// contains To.
type Buckets struct {
	Resolution Resolution
	Starts     []time.Time
}

func NewBuckets(r domain.Range) Buckets {
	res := ResolutionFor(r)
	width := time.Duration(res)
	first := r.From.UTC().Truncate(width)
	n := int(Count(r))
	starts := make([]time.Time, n)
	for i := range starts {
		starts[i] = first.Add(time.Duration(i) * width)
	}
	return Buckets{Resolution: res, Starts: starts}
}

func (b Buckets) Len() int { return len(b.Starts) }

// Index returns the bucket containing t, or -1 when t is outside the range.
func (b Buckets) Index(t time.Time) int {
	if len(b.Starts) == 0 {
		return -1
	}
	width := time.Duration(b.Resolution)
	i := int(t.UTC().Truncate(width).Sub(b.Starts[0]) / width)
	if i < 0 || i >= len(b.Starts) {
		return -1
	}
	return i
}
