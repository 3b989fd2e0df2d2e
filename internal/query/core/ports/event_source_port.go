package ports

import (
	"context"
	"time"

	"site-analytics-service/internal/query/core/domain"
)

type ScanFilter struct {
	Domain string // optional; empty scans every domain
	From   time.Time
	To     time.Time // inclusive
}

// EventSource is the read side of the event store. Implementations must be
// safe for concurrent readers and should yield events in ascending time.
type EventSource interface {
	// ScanEvents calls fn for every event in [From, To]. A non-nil error
	// from fn stops the scan and is returned as is.
	ScanEvents(ctx context.Context, f ScanFilter, fn func(domain.Event) error) error
}
