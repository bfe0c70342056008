// SPDX-License-Identifier: Apache-2.0

package mocks

import (
	"context"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/xataio/recordhub/pkg/dataset"
	"github.com/xataio/recordhub/pkg/search"
)

type Engine struct {
	CreateIndexFn               func(ctx context.Context, ds *dataset.Dataset) error
	DeleteIndexFn               func(ctx context.Context, ds *dataset.Dataset) error
	ConfigureMetadataPropertyFn func(ctx context.Context, ds *dataset.Dataset, property *dataset.MetadataProperty) error
	ConfigureIndexVectorsFn     func(ctx context.Context, ds *dataset.Dataset) error
	IndexRecordsFn              func(ctx context.Context, i uint, ds *dataset.Dataset, records []*dataset.Record) error
	DeleteRecordsFn             func(ctx context.Context, i uint, ds *dataset.Dataset, ids []uuid.UUID) error
	SearchFn                    func(ctx context.Context, ds *dataset.Dataset, query *search.Query) (*search.Result, error)
	SimilaritySearchFn          func(ctx context.Context, ds *dataset.Dataset, query *search.SimilarityQuery) (*search.Result, error)

	indexRecordsCalls  uint32
	deleteRecordsCalls uint32
}

func (m *Engine) CreateIndex(ctx context.Context, ds *dataset.Dataset) error {
	return m.CreateIndexFn(ctx, ds)
}

func (m *Engine) DeleteIndex(ctx context.Context, ds *dataset.Dataset) error {
	return m.DeleteIndexFn(ctx, ds)
}

func (m *Engine) ConfigureMetadataProperty(ctx context.Context, ds *dataset.Dataset, property *dataset.MetadataProperty) error {
	return m.ConfigureMetadataPropertyFn(ctx, ds, property)
}

func (m *Engine) ConfigureIndexVectors(ctx context.Context, ds *dataset.Dataset) error {
	return m.ConfigureIndexVectorsFn(ctx, ds)
}

func (m *Engine) IndexRecords(ctx context.Context, ds *dataset.Dataset, records []*dataset.Record) error {
	return m.IndexRecordsFn(ctx, uint(atomic.AddUint32(&m.indexRecordsCalls, 1)), ds, records)
}

func (m *Engine) DeleteRecords(ctx context.Context, ds *dataset.Dataset, ids []uuid.UUID) error {
	return m.DeleteRecordsFn(ctx, uint(atomic.AddUint32(&m.deleteRecordsCalls, 1)), ds, ids)
}

func (m *Engine) Search(ctx context.Context, ds *dataset.Dataset, query *search.Query) (*search.Result, error) {
	return m.SearchFn(ctx, ds, query)
}

func (m *Engine) SimilaritySearch(ctx context.Context, ds *dataset.Dataset, query *search.SimilarityQuery) (*search.Result, error) {
	return m.SimilaritySearchFn(ctx, ds, query)
}

func (m *Engine) IndexRecordsCalls() uint {
	return uint(atomic.LoadUint32(&m.indexRecordsCalls))
}
