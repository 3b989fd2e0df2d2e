package postgres

import (
	"context"
	"fmt"
	"time"

	"site-analytics-service/internal/query/adapters/sqlevents"
	"site-analytics-service/internal/query/core/domain"
	"site-analytics-service/internal/query/core/ports"
)

type DB interface {
	QueryContext(ctx context.Context, query string, args ...any) (sqlevents.RowScanner, error)
}

type EventRepository struct {
	db DB
}

func NewEventRepository(db DB) *EventRepository {
	return &EventRepository{db: db}
}

var _ ports.EventSource = (*EventRepository)(nil)

func (r *EventRepository) ScanEvents(ctx context.Context, f ports.ScanFilter, fn func(domain.Event) error) error {
	where := "event_time BETWEEN $1 AND $2"
	args := []any{f.From.UTC(), f.To.UTC()}

	if f.Domain != "" {
		where += " AND domain = $3"
		args = append(args, f.Domain)
	}

	query := fmt.Sprintf(`
SELECT %s
FROM events
WHERE %s
ORDER BY event_time`, sqlevents.SelectList("event_time"), where)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return err
	}

	var ts time.Time
	return sqlevents.Drain(ctx, rows, &ts, func(e *domain.Event) {
		e.Timestamp = ts.UTC()
	}, fn)
}
