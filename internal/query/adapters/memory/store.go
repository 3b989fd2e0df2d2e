// Package memory is an in-process EventSource used for demo mode and tests.
package memory

import (
	"context"
	"sort"
	"sync"

	"site-analytics-service/internal/query/core/domain"
	"site-analytics-service/internal/query/core/ports"
)

type Store struct {
	mu     sync.RWMutex
	events []domain.Event // sorted by Timestamp
}

var _ ports.EventSource = (*Store)(nil)

func NewStore(events ...domain.Event) *Store {
	s := &Store{}
	s.Append(events...)
	return s
}

// Append seeds the store. It keeps events ordered by time.
func (s *Store) Append(events ...domain.Event) {
	if len(events) == 0 {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	merged := make([]domain.Event, 0, len(s.events)+len(events))
	merged = append(merged, s.events...)
	for _, e := range events {
		e.Timestamp = e.Timestamp.UTC()
		merged = append(merged, e)
	}
	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].Timestamp.Before(merged[j].Timestamp)
	})
	s.events = merged
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.events)
}

func (s *Store) ScanEvents(ctx context.Context, f ports.ScanFilter, fn func(domain.Event) error) error {
	s.mu.RLock()
	start := sort.Search(len(s.events), func(i int) bool {
		return !s.events[i].Timestamp.Before(f.From)
	})
	end := sort.Search(len(s.events), func(i int) bool {
		return s.events[i].Timestamp.After(f.To)
	})
	var window []domain.Event
	if start < end {
		window = s.events[start:end]
	}
	s.mu.RUnlock()

	// Append swaps in a new slice, so window stays valid without the lock.
	for _, e := range window {
		if err := ctx.Err(); err != nil {
			return err
		}
		if f.Domain != "" && e.Domain != f.Domain {
			continue
		}
		if err := fn(e); err != nil {
			return err
		}
	}
	return nil
}
