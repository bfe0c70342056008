// SPDX-License-Identifier: Apache-2.0

package instrumentation

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/xataio/recordhub/pkg/dataset"
	"github.com/xataio/recordhub/pkg/otel"
	"github.com/xataio/recordhub/pkg/search"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

type Engine struct {
	inner   search.Engine
	tracer  trace.Tracer
	meter   metric.Meter
	metrics *engineMetrics
}

type engineMetrics struct {
	indexedDocs  metric.Int64Counter
	deletedDocs  metric.Int64Counter
	queryLatency metric.Int64Histogram
}

const (
	datasetIDAttributeKey = "dataset_id"
	queryTypeAttributeKey = "query_type"
)

func NewEngine(inner search.Engine, instrumentation *otel.Instrumentation) (search.Engine, error) {
	if !instrumentation.IsEnabled() {
		return inner, nil
	}

	e := &Engine{
		inner:   inner,
		tracer:  instrumentation.Tracer,
		meter:   instrumentation.Meter,
		metrics: &engineMetrics{},
	}

	if err := e.initMetrics(); err != nil {
		return nil, fmt.Errorf("error initialising search engine metrics: %w", err)
	}

	return e, nil
}

func (e *Engine) CreateIndex(ctx context.Context, ds *dataset.Dataset) (err error) {
	ctx, span := otel.StartSpan(ctx, e.tracer, "searchengine.CreateIndex", datasetAttributes(ds))
	defer func() { otel.CloseSpan(span, err) }()
	return e.inner.CreateIndex(ctx, ds)
}

func (e *Engine) DeleteIndex(ctx context.Context, ds *dataset.Dataset) (err error) {
	ctx, span := otel.StartSpan(ctx, e.tracer, "searchengine.DeleteIndex", datasetAttributes(ds))
	defer func() { otel.CloseSpan(span, err) }()
	return e.inner.DeleteIndex(ctx, ds)
}

func (e *Engine) ConfigureMetadataProperty(ctx context.Context, ds *dataset.Dataset, property *dataset.MetadataProperty) (err error) {
	ctx, span := otel.StartSpan(ctx, e.tracer, "searchengine.ConfigureMetadataProperty", trace.WithAttributes(
		attribute.String(datasetIDAttributeKey, ds.ID.String()),
		attribute.String("property", property.Name),
	))
	defer func() { otel.CloseSpan(span, err) }()
	return e.inner.ConfigureMetadataProperty(ctx, ds, property)
}

func (e *Engine) ConfigureIndexVectors(ctx context.Context, ds *dataset.Dataset) (err error) {
	ctx, span := otel.StartSpan(ctx, e.tracer, "searchengine.ConfigureIndexVectors", trace.WithAttributes(
		attribute.String(datasetIDAttributeKey, ds.ID.String()),
		attribute.Int("vectorCount", len(ds.VectorSettings)),
	))
	defer func() { otel.CloseSpan(span, err) }()
	return e.inner.ConfigureIndexVectors(ctx, ds)
}

func (e *Engine) IndexRecords(ctx context.Context, ds *dataset.Dataset, records []*dataset.Record) (err error) {
	ctx, span := otel.StartSpan(ctx, e.tracer, "searchengine.IndexRecords", trace.WithAttributes(
		attribute.String(datasetIDAttributeKey, ds.ID.String()),
		attribute.Int("docCount", len(records)),
	))
	defer func() { otel.CloseSpan(span, err) }()

	if err = e.inner.IndexRecords(ctx, ds, records); err != nil {
		return err
	}
	if e.meter != nil {
		e.metrics.indexedDocs.Add(ctx, int64(len(records)), metric.WithAttributes(attribute.String(datasetIDAttributeKey, ds.ID.String())))
	}
	return nil
}

func (e *Engine) DeleteRecords(ctx context.Context, ds *dataset.Dataset, ids []uuid.UUID) (err error) {
	ctx, span := otel.StartSpan(ctx, e.tracer, "searchengine.DeleteRecords", trace.WithAttributes(
		attribute.String(datasetIDAttributeKey, ds.ID.String()),
		attribute.Int("docCount", len(ids)),
	))
	defer func() { otel.CloseSpan(span, err) }()

	if err = e.inner.DeleteRecords(ctx, ds, ids); err != nil {
		return err
	}
	if e.meter != nil {
		e.metrics.deletedDocs.Add(ctx, int64(len(ids)), metric.WithAttributes(attribute.String(datasetIDAttributeKey, ds.ID.String())))
	}
	return nil
}

func (e *Engine) Search(ctx context.Context, ds *dataset.Dataset, query *search.Query) (res *search.Result, err error) {
	ctx, span := otel.StartSpan(ctx, e.tracer, "searchengine.Search", datasetAttributes(ds))
	defer func() { otel.CloseSpan(span, err) }()
	defer e.recordLatency(ctx, "search", time.Now())
	return e.inner.Search(ctx, ds, query)
}

func (e *Engine) SimilaritySearch(ctx context.Context, ds *dataset.Dataset, query *search.SimilarityQuery) (res *search.Result, err error) {
	ctx, span := otel.StartSpan(ctx, e.tracer, "searchengine.SimilaritySearch", trace.WithAttributes(
		attribute.String(datasetIDAttributeKey, ds.ID.String()),
		attribute.String("order", string(query.Order)),
		attribute.Int("maxResults", query.MaxResults),
	))
	defer func() { otel.CloseSpan(span, err) }()
	defer e.recordLatency(ctx, "similarity", time.Now())
	return e.inner.SimilaritySearch(ctx, ds, query)
}

func (e *Engine) recordLatency(ctx context.Context, queryType string, start time.Time) {
	if e.meter == nil {
		return
	}
	e.metrics.queryLatency.Record(ctx, time.Since(start).Milliseconds(), metric.WithAttributes(attribute.String(queryTypeAttributeKey, queryType)))
}

func (e *Engine) initMetrics() error {
	if e.meter == nil {
		return nil
	}

	var err error
	e.metrics.indexedDocs, err = e.meter.Int64Counter("recordhub.search.engine.indexed.docs",
		metric.WithUnit("docs"),
		metric.WithDescription("Count of records indexed in the search engine"))
	if err != nil {
		return err
	}

	e.metrics.deletedDocs, err = e.meter.Int64Counter("recordhub.search.engine.deleted.docs",
		metric.WithUnit("docs"),
		metric.WithDescription("Count of records deleted from the search engine"))
	if err != nil {
		return err
	}

	e.metrics.queryLatency, err = e.meter.Int64Histogram("recordhub.search.engine.query.latency",
		metric.WithUnit("ms"),
		metric.WithDescription("Distribution of the time taken to run a search query"))
	if err != nil {
		return err
	}

	return nil
}

func datasetAttributes(ds *dataset.Dataset) trace.SpanStartEventOption {
	return trace.WithAttributes(attribute.String(datasetIDAttributeKey, ds.ID.String()))
}
