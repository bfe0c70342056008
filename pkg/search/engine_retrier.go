// SPDX-License-Identifier: Apache-2.0

package search

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/xataio/recordhub/internal/backoff"
	"github.com/xataio/recordhub/pkg/dataset"
	loglib "github.com/xataio/recordhub/pkg/log"
)

// EngineRetrier retries document operations that failed with a retriable
// backend error. Index lifecycle operations and queries are not retried.
type EngineRetrier struct {
	inner           Engine
	logger          loglib.Logger
	backoffProvider backoff.Provider
}

type EngineRetryConfig struct {
	// If not provided it defaults to using exponential backoff with initial
	// interval of 500ms, max interval of 30s, and 5 max retries.
	Backoff backoff.Config
}

type EngineRetrierOption func(*EngineRetrier)

const (
	defaultEngineRetryInitialInterval = 500 * time.Millisecond
	defaultEngineRetryMaxInterval     = 30 * time.Second
	defaultEngineRetryMaxRetries      = 5
)

func NewEngineRetrier(e Engine, cfg *EngineRetryConfig, opts ...EngineRetrierOption) *EngineRetrier {
	r := &EngineRetrier{
		inner:           e,
		logger:          loglib.NewNoopLogger(),
		backoffProvider: backoff.NewProvider(cfg.backoffConfig()),
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

func WithRetrierLogger(l loglib.Logger) EngineRetrierOption {
	return func(r *EngineRetrier) {
		r.logger = loglib.NewLogger(l)
	}
}

func (r *EngineRetrier) CreateIndex(ctx context.Context, ds *dataset.Dataset) error {
	return r.inner.CreateIndex(ctx, ds)
}

func (r *EngineRetrier) DeleteIndex(ctx context.Context, ds *dataset.Dataset) error {
	return r.inner.DeleteIndex(ctx, ds)
}

func (r *EngineRetrier) ConfigureMetadataProperty(ctx context.Context, ds *dataset.Dataset, property *dataset.MetadataProperty) error {
	return r.inner.ConfigureMetadataProperty(ctx, ds, property)
}

func (r *EngineRetrier) ConfigureIndexVectors(ctx context.Context, ds *dataset.Dataset) error {
	return r.inner.ConfigureIndexVectors(ctx, ds)
}

func (r *EngineRetrier) IndexRecords(ctx context.Context, ds *dataset.Dataset, records []*dataset.Record) error {
	return r.retry(ctx, "index records", ds, len(records), func(ctx context.Context) error {
		return r.inner.IndexRecords(ctx, ds, records)
	})
}

func (r *EngineRetrier) DeleteRecords(ctx context.Context, ds *dataset.Dataset, ids []uuid.UUID) error {
	return r.retry(ctx, "delete records", ds, len(ids), func(ctx context.Context) error {
		return r.inner.DeleteRecords(ctx, ds, ids)
	})
}

func (r *EngineRetrier) Search(ctx context.Context, ds *dataset.Dataset, query *Query) (*Result, error) {
	return r.inner.Search(ctx, ds, query)
}

func (r *EngineRetrier) SimilaritySearch(ctx context.Context, ds *dataset.Dataset, query *SimilarityQuery) (*Result, error) {
	return r.inner.SimilaritySearch(ctx, ds, query)
}

func (r *EngineRetrier) retry(ctx context.Context, op string, ds *dataset.Dataset, count int, fn func(context.Context) error) error {
	numRetries := 0
	reportErr := func(err error, d time.Duration) {
		r.logger.Warn(err, "engine retrier: "+op+" failed, retrying", loglib.Fields{
			loglib.DatasetIDField: ds.ID,
			loglib.RecordsField:   count,
			"retries":             numRetries,
			"backoff":             d,
		})
		numRetries++
	}

	bo := r.backoffProvider(ctx)
	return bo.RetryNotify(func() error {
		err := fn(ctx)
		if err != nil && !errors.Is(err, ErrRetriable) {
			return backoff.Permanent(err)
		}
		return err
	}, reportErr)
}

func (c *EngineRetryConfig) backoffConfig() *backoff.Config {
	if c != nil && c.Backoff.IsSet() {
		return &c.Backoff
	}
	return &backoff.Config{
		Exponential: &backoff.ExponentialConfig{
			InitialInterval: defaultEngineRetryInitialInterval,
			MaxInterval:     defaultEngineRetryMaxInterval,
			MaxRetries:      defaultEngineRetryMaxRetries,
		},
	}
}
