// SPDX-License-Identifier: Apache-2.0

package dataset

import (
	"context"

	"github.com/google/uuid"
)

// RecordStore is the relational persistence of records and their responses,
// suggestions and vectors.
type RecordStore interface {
	GetRecord(ctx context.Context, id uuid.UUID) (*Record, error)
	GetRecordsByIDs(ctx context.Context, datasetID uuid.UUID, ids []uuid.UUID) ([]*Record, error)
	GetRecordsByExternalIDs(ctx context.Context, datasetID uuid.UUID, externalIDs []string) ([]*Record, error)
	// GetRecordDatasetIDs returns the dataset id of each of the given records
	// that exists, whatever dataset it belongs to.
	GetRecordDatasetIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]uuid.UUID, error)
	// CommitRecords persists the batch with all the record children in a
	// single transaction. Either every record is written or none is.
	CommitRecords(ctx context.Context, batch *RecordBatch) error
	DeleteRecords(ctx context.Context, datasetID uuid.UUID, ids []uuid.UUID) error
}

// SchemaStore persists dataset schema snapshots. The hook passed to writes
// runs before the write becomes durable: a hook error discards the write and
// is returned to the caller.
type SchemaStore interface {
	GetDataset(ctx context.Context, id uuid.UUID) (*Dataset, error)
	SaveDataset(ctx context.Context, ds *Dataset, hook func(context.Context) error) error
	DeleteDataset(ctx context.Context, id uuid.UUID, hook func(context.Context) error) error
}

// RecordBatch is the set of records written by one commit. Created records
// must not exist yet. Updated records must exist in their own dataset.
type RecordBatch struct {
	Created []*Record
	Updated []*Record
}

func (b *RecordBatch) Len() int {
	return len(b.Created) + len(b.Updated)
}
