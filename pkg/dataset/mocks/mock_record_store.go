// SPDX-License-Identifier: Apache-2.0

package mocks

import (
	"context"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/xataio/recordhub/pkg/dataset"
)

type RecordStore struct {
	GetRecordFn               func(ctx context.Context, id uuid.UUID) (*dataset.Record, error)
	GetRecordsByIDsFn         func(ctx context.Context, datasetID uuid.UUID, ids []uuid.UUID) ([]*dataset.Record, error)
	GetRecordsByExternalIDsFn func(ctx context.Context, datasetID uuid.UUID, externalIDs []string) ([]*dataset.Record, error)
	GetRecordDatasetIDsFn     func(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]uuid.UUID, error)
	CommitRecordsFn           func(ctx context.Context, i uint, batch *dataset.RecordBatch) error
	DeleteRecordsFn           func(ctx context.Context, datasetID uuid.UUID, ids []uuid.UUID) error
	commitCalls               uint32
}

func (m *RecordStore) GetRecord(ctx context.Context, id uuid.UUID) (*dataset.Record, error) {
	return m.GetRecordFn(ctx, id)
}

func (m *RecordStore) GetRecordsByIDs(ctx context.Context, datasetID uuid.UUID, ids []uuid.UUID) ([]*dataset.Record, error) {
	return m.GetRecordsByIDsFn(ctx, datasetID, ids)
}

func (m *RecordStore) GetRecordsByExternalIDs(ctx context.Context, datasetID uuid.UUID, externalIDs []string) ([]*dataset.Record, error) {
	return m.GetRecordsByExternalIDsFn(ctx, datasetID, externalIDs)
}

// GetRecordDatasetIDs reports no existing record when GetRecordDatasetIDsFn
// is not set.
func (m *RecordStore) GetRecordDatasetIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]uuid.UUID, error) {
	if m.GetRecordDatasetIDsFn == nil {
		return map[uuid.UUID]uuid.UUID{}, nil
	}
	return m.GetRecordDatasetIDsFn(ctx, ids)
}

func (m *RecordStore) CommitRecords(ctx context.Context, batch *dataset.RecordBatch) error {
	return m.CommitRecordsFn(ctx, uint(atomic.AddUint32(&m.commitCalls, 1)), batch)
}

func (m *RecordStore) DeleteRecords(ctx context.Context, datasetID uuid.UUID, ids []uuid.UUID) error {
	return m.DeleteRecordsFn(ctx, datasetID, ids)
}

func (m *RecordStore) CommitRecordsCalls() uint {
	return uint(atomic.LoadUint32(&m.commitCalls))
}
