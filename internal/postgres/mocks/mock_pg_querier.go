// SPDX-License-Identifier: Apache-2.0

package mocks

import (
	"context"
	"sync/atomic"

	"github.com/xataio/recordhub/internal/postgres"
)

// Querier calls the Fn fields. ExecFn receives the number of the call,
// starting at 1.
type Querier struct {
	QueryRowFn func(ctx context.Context, query string, args ...any) postgres.Row
	QueryFn    func(ctx context.Context, query string, args ...any) (postgres.Rows, error)
	ExecFn     func(ctx context.Context, i uint, query string, args ...any) (postgres.CommandTag, error)
	ExecInTxFn func(ctx context.Context, fn func(tx postgres.Tx) error) error
	PingFn     func(ctx context.Context) error
	CloseFn    func(ctx context.Context) error

	execCalls atomic.Uint32
}

func (m *Querier) QueryRow(ctx context.Context, query string, args ...any) postgres.Row {
	return m.QueryRowFn(ctx, query, args...)
}

func (m *Querier) Query(ctx context.Context, query string, args ...any) (postgres.Rows, error) {
	return m.QueryFn(ctx, query, args...)
}

func (m *Querier) Exec(ctx context.Context, query string, args ...any) (postgres.CommandTag, error) {
	return m.ExecFn(ctx, uint(m.execCalls.Add(1)), query, args...)
}

func (m *Querier) ExecInTx(ctx context.Context, fn func(tx postgres.Tx) error) error {
	return m.ExecInTxFn(ctx, fn)
}

func (m *Querier) Ping(ctx context.Context) error {
	if m.PingFn == nil {
		return nil
	}
	return m.PingFn(ctx)
}

func (m *Querier) Close(ctx context.Context) error {
	if m.CloseFn == nil {
		return nil
	}
	return m.CloseFn(ctx)
}
