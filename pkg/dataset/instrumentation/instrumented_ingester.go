// SPDX-License-Identifier: Apache-2.0

package instrumentation

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/xataio/recordhub/pkg/dataset"
	"github.com/xataio/recordhub/pkg/dataset/bulk"
	"github.com/xataio/recordhub/pkg/otel"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// Ingester traces bulk operations and counts the records written and the
// validation violations found.
type Ingester struct {
	inner   bulk.Ingester
	tracer  trace.Tracer
	meter   metric.Meter
	metrics *ingesterMetrics
}

type ingesterMetrics struct {
	records    metric.Int64Counter
	violations metric.Int64Counter
}

const (
	datasetIDAttributeKey = "dataset_id"
	operationAttributeKey = "operation"
)

func NewIngester(inner bulk.Ingester, instrumentation *otel.Instrumentation) (bulk.Ingester, error) {
	if !instrumentation.IsEnabled() {
		return inner, nil
	}

	i := &Ingester{
		inner:   inner,
		tracer:  instrumentation.Tracer,
		meter:   instrumentation.Meter,
		metrics: &ingesterMetrics{},
	}

	if err := i.initMetrics(); err != nil {
		return nil, fmt.Errorf("error initialising bulk ingester metrics: %w", err)
	}

	return i, nil
}

func (i *Ingester) Create(ctx context.Context, ds *dataset.Dataset, items []*dataset.RecordUpsert) (*bulk.Result, error) {
	return i.observe(ctx, "create", ds, len(items), func(ctx context.Context) (*bulk.Result, error) {
		return i.inner.Create(ctx, ds, items)
	})
}

func (i *Ingester) Update(ctx context.Context, ds *dataset.Dataset, items []*dataset.RecordUpsert) (*bulk.Result, error) {
	return i.observe(ctx, "update", ds, len(items), func(ctx context.Context) (*bulk.Result, error) {
		return i.inner.Update(ctx, ds, items)
	})
}

func (i *Ingester) Upsert(ctx context.Context, ds *dataset.Dataset, items []*dataset.RecordUpsert) (*bulk.Result, error) {
	return i.observe(ctx, "upsert", ds, len(items), func(ctx context.Context) (*bulk.Result, error) {
		return i.inner.Upsert(ctx, ds, items)
	})
}

func (i *Ingester) Delete(ctx context.Context, ds *dataset.Dataset, ids []uuid.UUID) (*bulk.Result, error) {
	return i.observe(ctx, "delete", ds, len(ids), func(ctx context.Context) (*bulk.Result, error) {
		return i.inner.Delete(ctx, ds, ids)
	})
}

func (i *Ingester) observe(ctx context.Context, operation string, ds *dataset.Dataset, count int, fn func(context.Context) (*bulk.Result, error)) (res *bulk.Result, err error) {
	ctx, span := otel.StartSpan(ctx, i.tracer, "bulkingester."+operation, trace.WithAttributes(
		attribute.String(datasetIDAttributeKey, ds.ID.String()),
		attribute.Int("itemCount", count),
	))
	defer func() { otel.CloseSpan(span, err) }()

	res, err = fn(ctx)
	if i.meter == nil {
		return res, err
	}

	attrs := metric.WithAttributes(
		attribute.String(datasetIDAttributeKey, ds.ID.String()),
		attribute.String(operationAttributeKey, operation),
	)
	if res != nil {
		i.metrics.records.Add(ctx, int64(len(res.Records)), attrs)
	}
	var validationErr *dataset.SchemaValidationError
	if errors.As(err, &validationErr) {
		i.metrics.violations.Add(ctx, int64(len(validationErr.Violations)), attrs)
	}
	return res, err
}

func (i *Ingester) initMetrics() error {
	if i.meter == nil {
		return nil
	}

	var err error
	i.metrics.records, err = i.meter.Int64Counter("recordhub.bulk.records",
		metric.WithUnit("records"),
		metric.WithDescription("Count of records written by bulk operations"))
	if err != nil {
		return err
	}

	i.metrics.violations, err = i.meter.Int64Counter("recordhub.bulk.validation.violations",
		metric.WithUnit("violations"),
		metric.WithDescription("Count of record validation violations found in bulk operations"))
	if err != nil {
		return err
	}

	return nil
}
