// SPDX-License-Identifier: Apache-2.0

package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Pool is a Querier backed by a pgx connection pool.
type Pool struct {
	statements
	pool *pgxpool.Pool
}

var _ Querier = (*Pool)(nil)

// NewConnPool creates the pool. Connections are established lazily, use Ping
// to check the server is reachable.
func NewConnPool(ctx context.Context, url string) (*Pool, error) {
	cfg, err := ParsePoolConfig(url)
	if err != nil {
		return nil, err
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("creating postgres connection pool: %w", mapError(err))
	}
	return &Pool{statements: statements{q: pool}, pool: pool}, nil
}

func (p *Pool) ExecInTx(ctx context.Context, fn func(Tx) error) error {
	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return mapError(err)
	}

	if err := fn(statements{q: tx}); err != nil {
		if rbErr := tx.Rollback(ctx); rbErr != nil {
			return errors.Join(mapError(err), fmt.Errorf("rolling back: %w", mapError(rbErr)))
		}
		return mapError(err)
	}
	return mapError(tx.Commit(ctx))
}

func (p *Pool) Ping(ctx context.Context) error {
	return mapError(p.pool.Ping(ctx))
}

func (p *Pool) Close(context.Context) error {
	p.pool.Close()
	return nil
}
