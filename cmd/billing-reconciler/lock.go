package main

import (
	"context"
	"fmt"

	"github.com/cyphera/billing-reconciler/internal/db"
	"github.com/cyphera/billing-reconciler/internal/logger"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// advisoryLock holds a session-level Postgres advisory lock on a dedicated
// pooled connection for the length of a run.
type advisoryLock struct {
	pool *pgxpool.Pool
	key  int64
}

func (l *advisoryLock) Acquire(ctx context.Context) (func(), bool, error) {
	conn, err := l.pool.Acquire(ctx)
	if err != nil {
		return nil, false, fmt.Errorf("failed to acquire connection: %w", err)
	}

	queries := db.New(conn)
	acquired, err := queries.TryAdvisoryLock(ctx, l.key)
	if err != nil || !acquired {
		conn.Release()
		return nil, false, err
	}

	release := func() {
		// The lock is session scoped; unlock on the same connection.
		if _, err := queries.AdvisoryUnlock(context.Background(), l.key); err != nil {
			logger.Warn("Failed to release run lock", zap.Int64("key", l.key), zap.Error(err))
		}
		conn.Release()
	}
	return release, true, nil
}
