package ports

import (
	"context"

	"github.com/google/uuid"

	"site-analytics-service/internal/alerts/core/domain"
	"site-analytics-service/internal/alerts/core/scheduler"
	querydomain "site-analytics-service/internal/query/core/domain"
	queryusecase "site-analytics-service/internal/query/core/usecase"
)

// Scheduler runs alert evaluations periodically.
type Scheduler interface {
	Register(site, interval string, exec domain.Exec, opts ...scheduler.RegisterOption) (uuid.UUID, error)
	Unregister(id uuid.UUID) error
	List() []domain.Registration
}

// Querier is the query path alert evaluations read through.
type Querier interface {
	Query(ctx context.Context, in queryusecase.QueryInput) (*querydomain.QueryResult, error)
}

// Notifier delivers a fired alert to target.
type Notifier interface {
	Notify(ctx context.Context, target string, n domain.Notification) error
}
