// SPDX-License-Identifier: Apache-2.0

package instrumentation

import (
	"context"
	"fmt"
	"strings"
	"time"

	pglib "github.com/xataio/recordhub/internal/postgres"
	"github.com/xataio/recordhub/pkg/otel"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// Querier traces every statement sent to postgres and records its latency,
// including the statements run inside transactions.
type Querier struct {
	inner        pglib.Querier
	tracer       trace.Tracer
	queryLatency metric.Int64Histogram
}

// Tx instruments the statements of a transaction opened by Querier.
type Tx struct {
	inner    pglib.Tx
	observer *Querier
}

const (
	queryTypeAttributeKey = "query_type"
	queryAttributeKey     = "query"
	unknownQueryType      = "unknown"
	txQueryType           = "TX"
)

func NewQuerier(q pglib.Querier, instrumentation *otel.Instrumentation) (pglib.Querier, error) {
	if !instrumentation.IsEnabled() {
		return q, nil
	}

	querier := &Querier{
		inner:  q,
		tracer: instrumentation.Tracer,
	}
	if instrumentation.Meter != nil {
		var err error
		querier.queryLatency, err = instrumentation.Meter.Int64Histogram("recordhub.postgres.querier.latency",
			metric.WithUnit("ms"),
			metric.WithDescription("Distribution of the time taken to perform a query"))
		if err != nil {
			return nil, fmt.Errorf("initialising postgres querier metrics: %w", err)
		}
	}
	return querier, nil
}

func (i *Querier) Query(ctx context.Context, query string, args ...any) (rows pglib.Rows, err error) {
	ctx, done := i.observe(ctx, "querier.Query", queryAttributes(query))
	defer func() { done(err) }()
	return i.inner.Query(ctx, query, args...)
}

func (i *Querier) QueryRow(ctx context.Context, query string, args ...any) pglib.Row {
	ctx, done := i.observe(ctx, "querier.QueryRow", queryAttributes(query))
	defer done(nil)
	return i.inner.QueryRow(ctx, query, args...)
}

func (i *Querier) Exec(ctx context.Context, query string, args ...any) (tag pglib.CommandTag, err error) {
	ctx, done := i.observe(ctx, "querier.Exec", queryAttributes(query))
	defer func() { done(err) }()
	return i.inner.Exec(ctx, query, args...)
}

func (i *Querier) ExecInTx(ctx context.Context, fn func(tx pglib.Tx) error) (err error) {
	ctx, done := i.observe(ctx, "querier.ExecInTx", []attribute.KeyValue{attribute.String(queryTypeAttributeKey, txQueryType)})
	defer func() { done(err) }()
	return i.inner.ExecInTx(ctx, func(tx pglib.Tx) error {
		return fn(&Tx{inner: tx, observer: i})
	})
}

func (i *Querier) Ping(ctx context.Context) error {
	return i.inner.Ping(ctx)
}

func (i *Querier) Close(ctx context.Context) error {
	return i.inner.Close(ctx)
}

func (t *Tx) Query(ctx context.Context, query string, args ...any) (rows pglib.Rows, err error) {
	ctx, done := t.observer.observe(ctx, "tx.Query", queryAttributes(query))
	defer func() { done(err) }()
	return t.inner.Query(ctx, query, args...)
}

func (t *Tx) QueryRow(ctx context.Context, query string, args ...any) pglib.Row {
	ctx, done := t.observer.observe(ctx, "tx.QueryRow", queryAttributes(query))
	defer done(nil)
	return t.inner.QueryRow(ctx, query, args...)
}

func (t *Tx) Exec(ctx context.Context, query string, args ...any) (tag pglib.CommandTag, err error) {
	ctx, done := t.observer.observe(ctx, "tx.Exec", queryAttributes(query))
	defer func() { done(err) }()
	return t.inner.Exec(ctx, query, args...)
}

// observe starts a span for the statement. The returned func closes it and
// records the statement latency.
func (i *Querier) observe(ctx context.Context, name string, attrs []attribute.KeyValue) (context.Context, func(error)) {
	ctx, span := otel.StartSpan(ctx, i.tracer, name, trace.WithAttributes(attrs...))
	start := time.Now()
	return ctx, func(err error) {
		if i.queryLatency != nil {
			i.queryLatency.Record(ctx, time.Since(start).Milliseconds(), metric.WithAttributes(attrs...))
		}
		otel.CloseSpan(span, err)
	}
}

// queryAttributes labels a statement with its command, and the statement
// itself when it has one.
func queryAttributes(query string) []attribute.KeyValue {
	fields := strings.Fields(query)
	if len(fields) == 0 {
		return []attribute.KeyValue{attribute.String(queryTypeAttributeKey, unknownQueryType)}
	}
	return []attribute.KeyValue{
		attribute.String(queryTypeAttributeKey, strings.ToUpper(fields[0])),
		attribute.String(queryAttributeKey, query),
	}
}
