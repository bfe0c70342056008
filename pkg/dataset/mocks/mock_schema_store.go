// SPDX-License-Identifier: Apache-2.0

package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/xataio/recordhub/pkg/dataset"
)

type SchemaStore struct {
	GetDatasetFn    func(ctx context.Context, id uuid.UUID) (*dataset.Dataset, error)
	SaveDatasetFn   func(ctx context.Context, ds *dataset.Dataset, hook func(context.Context) error) error
	DeleteDatasetFn func(ctx context.Context, id uuid.UUID, hook func(context.Context) error) error
}

func (m *SchemaStore) GetDataset(ctx context.Context, id uuid.UUID) (*dataset.Dataset, error) {
	return m.GetDatasetFn(ctx, id)
}

func (m *SchemaStore) SaveDataset(ctx context.Context, ds *dataset.Dataset, hook func(context.Context) error) error {
	return m.SaveDatasetFn(ctx, ds, hook)
}

func (m *SchemaStore) DeleteDataset(ctx context.Context, id uuid.UUID, hook func(context.Context) error) error {
	return m.DeleteDatasetFn(ctx, id, hook)
}
