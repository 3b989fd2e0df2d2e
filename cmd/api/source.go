package main

import (
	"context"
	"fmt"

	"site-analytics-service/internal/platform/config"
	chsource "site-analytics-service/internal/query/adapters/clickhouse"
	"site-analytics-service/internal/query/adapters/memory"
	pgsource "site-analytics-service/internal/query/adapters/postgres"
	sqlitesource "site-analytics-service/internal/query/adapters/sqlite"
	"site-analytics-service/internal/query/core/ports"
)

// openSource returns the configured event source and a func releasing it.
func openSource(ctx context.Context, cfg config.SourceConfig) (ports.EventSource, func() error, error) {
	noop := func() error { return nil }

	switch cfg.Driver {
	case config.DriverMemory:
		if cfg.DSN == "" {
			return memory.NewStore(), noop, nil
		}
		store, err := memory.LoadFile(cfg.DSN)
		if err != nil {
			return nil, nil, err
		}
		return store, noop, nil

	case config.DriverPostgres:
		db, err := pgsource.Open(cfg.DSN, pgsource.PoolConfig{
			MaxOpenConns:    cfg.MaxOpenConns,
			MaxIdleConns:    cfg.MaxIdleConns,
			ConnMaxLifetime: cfg.ConnMaxLifetime,
		})
		if err != nil {
			return nil, nil, err
		}
		return pgsource.NewEventRepository(pgsource.NewSQLDB(db)), db.Close, nil

	case config.DriverSQLite:
		db, err := sqlitesource.Open(ctx, sqlitesource.Config{
			Path:           cfg.DSN,
			MaxConnections: cfg.MaxOpenConns,
		})
		if err != nil {
			return nil, nil, err
		}
		return sqlitesource.NewEventRepository(db), db.Close, nil

	case config.DriverClickHouse:
		chCfg, err := chsource.ConfigFromDSN(cfg.DSN)
		if err != nil {
			return nil, nil, err
		}
		chCfg.MaxOpenConns = cfg.MaxOpenConns
		chCfg.MaxIdleConns = cfg.MaxIdleConns
		chCfg.ConnMaxLifetime = cfg.ConnMaxLifetime

		conn, err := chsource.Open(ctx, chCfg)
		if err != nil {
			return nil, nil, err
		}
		return chsource.NewEventRepository(chsource.NewConn(conn)), conn.Close, nil
	}
	return nil, nil, fmt.Errorf("unknown source driver %q", cfg.Driver)
}
