package domain

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Exec is one alert evaluation. ctx is cancelled when the evaluation runs
// past its deadline or the registration is removed.
type Exec func(ctx context.Context)

type State int32

const (
	StateIdle State = iota
	StateRunning
	// StateCancelled marks a registration whose last evaluation was abandoned.
	// It is eligible for dispatch on the next tick.
	StateCancelled
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	case StateCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// Registration is a snapshot of one scheduled alert.
type Registration struct {
	ID           uuid.UUID
	Name         string
	Domain       string
	Interval     time.Duration
	State        State
	CreatedAt    time.Time
	LastDispatch time.Time
	Dispatches   int64
}

// ParseInterval accepts Go duration strings ("30s", "5m", "1h30m").
func ParseInterval(s string) (time.Duration, error) {
	d, err := time.ParseDuration(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidInterval, s)
	}
	if d <= 0 {
		return 0, fmt.Errorf("%w: %q must be positive", ErrInvalidInterval, s)
	}
	return d, nil
}

// ValidateDomain checks that d is a hostname: dot separated labels of
// letters, digits and hyphens, 1-63 characters each, 253 in total.
func ValidateDomain(d string) error {
	if d == "" {
		return fmt.Errorf("%w: domain is required", ErrInvalidDomain)
	}
	if len(d) > 253 {
		return fmt.Errorf("%w: %q is too long", ErrInvalidDomain, d)
	}
	for _, label := range strings.Split(d, ".") {
		if len(label) == 0 || len(label) > 63 {
			return fmt.Errorf("%w: %q has an empty or oversized label", ErrInvalidDomain, d)
		}
		if label[0] == '-' || label[len(label)-1] == '-' {
			return fmt.Errorf("%w: %q", ErrInvalidDomain, d)
		}
		for i := 0; i < len(label); i++ {
			c := label[i]
			switch {
			case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9', c == '-':
			default:
				return fmt.Errorf("%w: %q contains %q", ErrInvalidDomain, d, c)
			}
		}
	}
	return nil
}
