// SPDX-License-Identifier: Apache-2.0

package search

import (
	"context"

	"github.com/google/uuid"
	"github.com/xataio/recordhub/pkg/dataset"
)

// Engine is the search index of the records of a dataset. Implementations
// hide the differences between the supported search backends.
type Engine interface {
	// index lifecycle
	CreateIndex(ctx context.Context, ds *dataset.Dataset) error
	DeleteIndex(ctx context.Context, ds *dataset.Dataset) error
	ConfigureMetadataProperty(ctx context.Context, ds *dataset.Dataset, property *dataset.MetadataProperty) error
	ConfigureIndexVectors(ctx context.Context, ds *dataset.Dataset) error
	// document operations
	IndexRecords(ctx context.Context, ds *dataset.Dataset, records []*dataset.Record) error
	DeleteRecords(ctx context.Context, ds *dataset.Dataset, ids []uuid.UUID) error
	// queries
	Search(ctx context.Context, ds *dataset.Dataset, query *Query) (*Result, error)
	SimilaritySearch(ctx context.Context, ds *dataset.Dataset, query *SimilarityQuery) (*Result, error)
}
