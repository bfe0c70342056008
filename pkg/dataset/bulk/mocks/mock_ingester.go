// SPDX-License-Identifier: Apache-2.0

package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/xataio/recordhub/pkg/dataset"
	"github.com/xataio/recordhub/pkg/dataset/bulk"
)

type Ingester struct {
	CreateFn func(ctx context.Context, ds *dataset.Dataset, items []*dataset.RecordUpsert) (*bulk.Result, error)
	UpdateFn func(ctx context.Context, ds *dataset.Dataset, items []*dataset.RecordUpsert) (*bulk.Result, error)
	UpsertFn func(ctx context.Context, ds *dataset.Dataset, items []*dataset.RecordUpsert) (*bulk.Result, error)
	DeleteFn func(ctx context.Context, ds *dataset.Dataset, ids []uuid.UUID) (*bulk.Result, error)
}

func (m *Ingester) Create(ctx context.Context, ds *dataset.Dataset, items []*dataset.RecordUpsert) (*bulk.Result, error) {
	return m.CreateFn(ctx, ds, items)
}

func (m *Ingester) Update(ctx context.Context, ds *dataset.Dataset, items []*dataset.RecordUpsert) (*bulk.Result, error) {
	return m.UpdateFn(ctx, ds, items)
}

func (m *Ingester) Upsert(ctx context.Context, ds *dataset.Dataset, items []*dataset.RecordUpsert) (*bulk.Result, error) {
	return m.UpsertFn(ctx, ds, items)
}

func (m *Ingester) Delete(ctx context.Context, ds *dataset.Dataset, ids []uuid.UUID) (*bulk.Result, error) {
	return m.DeleteFn(ctx, ds, ids)
}
