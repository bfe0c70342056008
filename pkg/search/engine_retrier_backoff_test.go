// SPDX-License-Identifier: Apache-2.0

package search

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/xataio/recordhub/internal/backoff"
	backoffmocks "github.com/xataio/recordhub/internal/backoff/mocks"
	"github.com/xataio/recordhub/pkg/dataset"
	loglib "github.com/xataio/recordhub/pkg/log"
)

type stubEngine struct {
	Engine
	deleteRecordsFn func(context.Context, *dataset.Dataset, []uuid.UUID) error
}

func (e *stubEngine) DeleteRecords(ctx context.Context, ds *dataset.Dataset, ids []uuid.UUID) error {
	return e.deleteRecordsFn(ctx, ds, ids)
}

func TestEngineRetrier_retry(t *testing.T) {
	t.Parallel()

	errRetriable := fmt.Errorf("too many requests: %w", ErrRetriable)
	errTest := errors.New("oh noes")

	// retryTwice runs the operation up to twice, notifying in between.
	retryTwice := &backoffmocks.Backoff{
		RetryNotifyFn: func(op backoff.Operation, notify backoff.Notify) error {
			err := op()
			if err == nil || errors.Is(err, backoff.ErrPermanent) {
				return err
			}
			notify(err, time.Millisecond)
			return op()
		},
	}

	tests := []struct {
		name   string
		errors []error

		wantCalls int
		wantErr   error
	}{
		{
			name:      "ok - retriable error then success",
			errors:    []error{errRetriable, nil},
			wantCalls: 2,
		},
		{
			name:      "error - permanent error is not retried",
			errors:    []error{errTest},
			wantCalls: 1,
			wantErr:   backoff.ErrPermanent,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			calls := 0
			r := &EngineRetrier{
				inner: &stubEngine{
					deleteRecordsFn: func(context.Context, *dataset.Dataset, []uuid.UUID) error {
						err := tc.errors[calls]
						calls++
						return err
					},
				},
				logger:          loglib.NewNoopLogger(),
				backoffProvider: func(context.Context) backoff.Backoff { return retryTwice },
			}

			err := r.DeleteRecords(context.Background(), &dataset.Dataset{ID: uuid.New()}, []uuid.UUID{uuid.New()})
			require.ErrorIs(t, err, tc.wantErr)
			require.Equal(t, tc.wantCalls, calls)
		})
	}
}
