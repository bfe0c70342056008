// SPDX-License-Identifier: Apache-2.0

package instrumentation

import (
	"context"

	"github.com/google/uuid"
	"github.com/xataio/recordhub/pkg/dataset"
	"github.com/xataio/recordhub/pkg/otel"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

type RecordStore struct {
	inner  dataset.RecordStore
	tracer trace.Tracer
}

func NewRecordStore(inner dataset.RecordStore, instrumentation *otel.Instrumentation) dataset.RecordStore {
	if !instrumentation.IsEnabled() || instrumentation.Tracer == nil {
		return inner
	}

	return &RecordStore{
		inner:  inner,
		tracer: instrumentation.Tracer,
	}
}

func (s *RecordStore) GetRecord(ctx context.Context, id uuid.UUID) (r *dataset.Record, err error) {
	ctx, span := otel.StartSpan(ctx, s.tracer, "recordstore.GetRecord", trace.WithAttributes(attribute.String("record_id", id.String())))
	defer func() { otel.CloseSpan(span, err) }()
	return s.inner.GetRecord(ctx, id)
}

func (s *RecordStore) GetRecordsByIDs(ctx context.Context, datasetID uuid.UUID, ids []uuid.UUID) (r []*dataset.Record, err error) {
	ctx, span := otel.StartSpan(ctx, s.tracer, "recordstore.GetRecordsByIDs", trace.WithAttributes(
		attribute.String(datasetIDAttributeKey, datasetID.String()),
		attribute.Int("idCount", len(ids)),
	))
	defer func() { otel.CloseSpan(span, err) }()
	return s.inner.GetRecordsByIDs(ctx, datasetID, ids)
}

func (s *RecordStore) GetRecordsByExternalIDs(ctx context.Context, datasetID uuid.UUID, externalIDs []string) (r []*dataset.Record, err error) {
	ctx, span := otel.StartSpan(ctx, s.tracer, "recordstore.GetRecordsByExternalIDs", trace.WithAttributes(
		attribute.String(datasetIDAttributeKey, datasetID.String()),
		attribute.Int("idCount", len(externalIDs)),
	))
	defer func() { otel.CloseSpan(span, err) }()
	return s.inner.GetRecordsByExternalIDs(ctx, datasetID, externalIDs)
}

func (s *RecordStore) GetRecordDatasetIDs(ctx context.Context, ids []uuid.UUID) (r map[uuid.UUID]uuid.UUID, err error) {
	ctx, span := otel.StartSpan(ctx, s.tracer, "recordstore.GetRecordDatasetIDs", trace.WithAttributes(attribute.Int("idCount", len(ids))))
	defer func() { otel.CloseSpan(span, err) }()
	return s.inner.GetRecordDatasetIDs(ctx, ids)
}

func (s *RecordStore) CommitRecords(ctx context.Context, batch *dataset.RecordBatch) (err error) {
	ctx, span := otel.StartSpan(ctx, s.tracer, "recordstore.CommitRecords", trace.WithAttributes(
		attribute.Int("createdCount", len(batch.Created)),
		attribute.Int("updatedCount", len(batch.Updated)),
	))
	defer func() { otel.CloseSpan(span, err) }()
	return s.inner.CommitRecords(ctx, batch)
}

func (s *RecordStore) DeleteRecords(ctx context.Context, datasetID uuid.UUID, ids []uuid.UUID) (err error) {
	ctx, span := otel.StartSpan(ctx, s.tracer, "recordstore.DeleteRecords", trace.WithAttributes(
		attribute.String(datasetIDAttributeKey, datasetID.String()),
		attribute.Int("idCount", len(ids)),
	))
	defer func() { otel.CloseSpan(span, err) }()
	return s.inner.DeleteRecords(ctx, datasetID, ids)
}
