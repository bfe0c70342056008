// SPDX-License-Identifier: Apache-2.0

package bulk

import (
	"context"

	"github.com/google/uuid"
	"github.com/xataio/recordhub/pkg/dataset"
)

// Ingester writes batches of records of a dataset.
type Ingester interface {
	Create(ctx context.Context, ds *dataset.Dataset, items []*dataset.RecordUpsert) (*Result, error)
	Update(ctx context.Context, ds *dataset.Dataset, items []*dataset.RecordUpsert) (*Result, error)
	Upsert(ctx context.Context, ds *dataset.Dataset, items []*dataset.RecordUpsert) (*Result, error)
	Delete(ctx context.Context, ds *dataset.Dataset, ids []uuid.UUID) (*Result, error)
}

var _ Ingester = (*Coordinator)(nil)
