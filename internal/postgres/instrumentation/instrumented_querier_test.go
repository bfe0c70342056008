// SPDX-License-Identifier: Apache-2.0

package instrumentation

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	pglib "github.com/xataio/recordhub/internal/postgres"
	pgmocks "github.com/xataio/recordhub/internal/postgres/mocks"
	"github.com/xataio/recordhub/pkg/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	metricnoop "go.opentelemetry.io/otel/metric/noop"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	tracenoop "go.opentelemetry.io/otel/trace/noop"
)

func TestNewQuerier(t *testing.T) {
	t.Parallel()

	inner := &pgmocks.Querier{}

	q, err := NewQuerier(inner, nil)
	require.NoError(t, err)
	require.Equal(t, inner, q)

	q, err = NewQuerier(inner, &otel.Instrumentation{
		Tracer: tracenoop.NewTracerProvider().Tracer("test"),
		Meter:  metricnoop.NewMeterProvider().Meter("test"),
	})
	require.NoError(t, err)
	require.IsType(t, &Querier{}, q)
}

func TestQuerier_ExecInTx(t *testing.T) {
	t.Parallel()

	execCalled := false
	inner := &pgmocks.Querier{
		ExecInTxFn: func(ctx context.Context, fn func(tx pglib.Tx) error) error {
			return fn(&pgmocks.Tx{
				ExecFn: func(ctx context.Context, query string, args ...any) (pglib.CommandTag, error) {
					require.Equal(t, "DELETE FROM records", query)
					execCalled = true
					return pglib.CommandTag{}, nil
				},
			})
		},
	}

	q, err := NewQuerier(inner, &otel.Instrumentation{Tracer: tracenoop.NewTracerProvider().Tracer("test")})
	require.NoError(t, err)

	err = q.ExecInTx(context.Background(), func(tx pglib.Tx) error {
		require.IsType(t, &Tx{}, tx)
		_, err := tx.Exec(context.Background(), "DELETE FROM records")
		return err
	})
	require.NoError(t, err)
	require.True(t, execCalled)
}

func TestQueryAttributes(t *testing.T) {
	t.Parallel()

	require.Equal(t, []attribute.KeyValue{
		attribute.String(queryTypeAttributeKey, unknownQueryType),
	}, queryAttributes(""))

	require.Equal(t, []attribute.KeyValue{
		attribute.String(queryTypeAttributeKey, "SELECT"),
		attribute.String(queryAttributeKey, "select id from records"),
	}, queryAttributes("select id from records"))
}

func TestQuerier_txSpans(t *testing.T) {
	t.Parallel()

	errTest := errors.New("oh noes")
	recorder := tracetest.NewSpanRecorder()
	tracer := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder)).Tracer("test")

	inner := &pgmocks.Querier{
		ExecInTxFn: func(ctx context.Context, fn func(tx pglib.Tx) error) error {
			return fn(&pgmocks.Tx{
				ExecFn: func(context.Context, string, ...any) (pglib.CommandTag, error) {
					return pglib.CommandTag{}, errTest
				},
			})
		},
	}
	q, err := NewQuerier(inner, &otel.Instrumentation{Tracer: tracer})
	require.NoError(t, err)

	err = q.ExecInTx(context.Background(), func(tx pglib.Tx) error {
		_, err := tx.Exec(context.Background(), "insert into records values ($1)", 1)
		return err
	})
	require.ErrorIs(t, err, errTest)

	spans := recorder.Ended()
	require.Len(t, spans, 2)
	require.Equal(t, "tx.Exec", spans[0].Name())
	require.Equal(t, codes.Error, spans[0].Status().Code)
	require.Equal(t, "querier.ExecInTx", spans[1].Name())
	require.Equal(t, codes.Error, spans[1].Status().Code)
}
