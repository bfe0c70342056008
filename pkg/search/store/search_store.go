// SPDX-License-Identifier: Apache-2.0

package store

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/xataio/recordhub/internal/json"
	"github.com/xataio/recordhub/internal/searchstore"
	elasticsearchstore "github.com/xataio/recordhub/internal/searchstore/elasticsearch"
	opensearchstore "github.com/xataio/recordhub/internal/searchstore/opensearch"
	"github.com/xataio/recordhub/pkg/dataset"
	loglib "github.com/xataio/recordhub/pkg/log"
	"github.com/xataio/recordhub/pkg/search"
	"github.com/xataio/recordhub/pkg/tls"
)

// Store is the search engine implementation backed by OpenSearch or
// Elasticsearch. Each dataset gets its own index.
type Store struct {
	logger           loglib.Logger
	client           searchstore.Client
	mapper           searchstore.Mapper
	indexNameAdapter IndexNameAdapter
	marshaler        func(any) ([]byte, error)
	indexSettings    searchstore.IndexSettings
	refresh          bool
}

type Config struct {
	OpenSearchURL    string
	ElasticsearchURL string
	NumberOfShards   int
	NumberOfReplicas int
	MaxResultWindow  int
	// KNNEnabled is fixed when the index is created and cannot be changed
	// afterwards.
	KNNEnabled bool
	// Refresh makes writes visible to searches before returning.
	Refresh bool
	TLS     tls.Config
}

type Option func(*Store)

const (
	defaultNumberOfShards   = 1
	defaultNumberOfReplicas = 0
	defaultMaxResultWindow  = 10000
)

var _ search.Engine = (*Store)(nil)

func NewStore(cfg Config, opts ...Option) (*Store, error) {
	transport, err := cfg.TLS.Transport()
	if err != nil {
		return nil, fmt.Errorf("search store tls config: %w", err)
	}

	var searchStore searchstore.Client
	switch {
	case cfg.OpenSearchURL != "" && cfg.ElasticsearchURL != "":
		return nil, errors.New("only one store URL must be provided")
	case cfg.OpenSearchURL == "" && cfg.ElasticsearchURL == "":
		return nil, errors.New("a store URL must be provided")
	case cfg.OpenSearchURL != "":
		searchStore, err = opensearchstore.NewClient(cfg.OpenSearchURL, transport)
	case cfg.ElasticsearchURL != "":
		searchStore, err = elasticsearchstore.NewClient(cfg.ElasticsearchURL, transport)
	}
	if err != nil {
		return nil, fmt.Errorf("create search store client: %w", err)
	}

	return NewStoreWithClient(searchStore, cfg, opts...), nil
}

func NewStoreWithClient(client searchstore.Client, cfg Config, opts ...Option) *Store {
	s := &Store{
		logger:           loglib.NewNoopLogger(),
		client:           client,
		mapper:           client.GetMapper(),
		indexNameAdapter: newDefaultIndexNameAdapter(),
		marshaler:        json.Marshal,
		indexSettings:    cfg.indexSettings(),
		refresh:          cfg.Refresh,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

func WithLogger(l loglib.Logger) Option {
	return func(s *Store) {
		s.logger = loglib.NewLogger(l).WithFields(loglib.Fields{
			loglib.ModuleField: "search_store",
		})
	}
}

func WithIndexNameAdapter(a IndexNameAdapter) Option {
	return func(s *Store) {
		s.indexNameAdapter = a
	}
}

func (c Config) indexSettings() searchstore.IndexSettings {
	settings := searchstore.IndexSettings{
		NumberOfShards:   c.NumberOfShards,
		NumberOfReplicas: c.NumberOfReplicas,
		MaxResultWindow:  c.MaxResultWindow,
		KNNEnabled:       c.KNNEnabled,
	}
	if settings.NumberOfShards <= 0 {
		settings.NumberOfShards = defaultNumberOfShards
	}
	if settings.NumberOfReplicas < 0 {
		settings.NumberOfReplicas = defaultNumberOfReplicas
	}
	if settings.MaxResultWindow <= 0 {
		settings.MaxResultWindow = defaultMaxResultWindow
	}
	return settings
}

// CreateIndex creates the versioned index for the dataset and points the
// dataset alias at it.
func (s *Store) CreateIndex(ctx context.Context, ds *dataset.Dataset) error {
	index := s.indexNameAdapter.DatasetToIndex(ds)
	definition, err := s.indexDefinition(ds)
	if err != nil {
		return fmt.Errorf("building index definition for dataset %s: %w", ds.ID, err)
	}

	if err := s.client.CreateIndex(ctx, index.NameWithVersion(), definition); err != nil {
		if errors.As(err, &searchstore.ErrResourceAlreadyExists{}) {
			return dataset.ConflictError{Msg: fmt.Sprintf("index for dataset `%s` already exists", ds.ID)}
		}
		return mapError(err)
	}

	if err := s.client.PutIndexAlias(ctx, index.NameWithVersion(), index.Name()); err != nil {
		return mapError(err)
	}

	s.logger.Debug("search index created", loglib.Fields{
		loglib.DatasetIDField: ds.ID.String(),
		loglib.IndexField:     index.NameWithVersion(),
	})
	return nil
}

func (s *Store) DeleteIndex(ctx context.Context, ds *dataset.Dataset) error {
	index := s.indexNameAdapter.DatasetToIndex(ds)
	exists, err := s.client.IndexExists(ctx, index.NameWithVersion())
	if err != nil {
		return mapError(err)
	}
	if !exists {
		return nil
	}

	if err := s.client.DeleteIndex(ctx, index.NameWithVersion()); err != nil {
		return mapError(err)
	}
	return nil
}

// ConfigureMetadataProperty adds the mapping for a new metadata property.
// Existing documents are not reindexed.
func (s *Store) ConfigureMetadataProperty(ctx context.Context, ds *dataset.Dataset, property *dataset.MetadataProperty) error {
	mapping, err := s.metadataPropertyMapping(property)
	if err != nil {
		return err
	}
	return s.putMapping(ctx, ds, metadataProperty, map[string]any{property.Name: mapping})
}

// ConfigureIndexVectors adds the mappings for all the dataset vector
// settings. Vector fields already mapped are sent unchanged.
func (s *Store) ConfigureIndexVectors(ctx context.Context, ds *dataset.Dataset) error {
	vectors, err := s.vectorsMappings(ds)
	if err != nil {
		return err
	}
	if len(vectors) == 0 {
		return nil
	}
	return s.putMapping(ctx, ds, vectorsProperty, vectors)
}

func (s *Store) putMapping(ctx context.Context, ds *dataset.Dataset, parent string, properties map[string]any) error {
	index := s.indexNameAdapter.DatasetToIndex(ds)
	err := s.client.PutIndexMappings(ctx, index.NameWithVersion(), map[string]any{
		"properties": map[string]any{
			parent: map[string]any{
				"properties": properties,
			},
		},
	})
	if err != nil {
		if errors.Is(err, searchstore.ErrResourceNotFound) {
			return dataset.NotFoundError{Msg: fmt.Sprintf("index for dataset `%s` not found", ds.ID)}
		}
		return mapError(err)
	}
	return nil
}

func (s *Store) IndexRecords(ctx context.Context, ds *dataset.Dataset, records []*dataset.Record) error {
	if len(records) == 0 {
		return nil
	}
	index := s.indexNameAdapter.DatasetToIndex(ds)
	items := make([]searchstore.BulkItem, 0, len(records))
	for _, r := range records {
		items = append(items, recordToBulkItem(index, ds, r))
	}
	return s.sendBulk(ctx, index, items)
}

func (s *Store) DeleteRecords(ctx context.Context, ds *dataset.Dataset, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	index := s.indexNameAdapter.DatasetToIndex(ds)
	items := make([]searchstore.BulkItem, 0, len(ids))
	for _, id := range ids {
		items = append(items, idToDeleteItem(index, id))
	}
	return s.sendBulk(ctx, index, items)
}

func (s *Store) sendBulk(ctx context.Context, index IndexName, items []searchstore.BulkItem) error {
	failed, err := s.client.SendBulkRequest(ctx, items)
	if err != nil {
		return mapError(err)
	}
	if err := bulkFailuresToError(failed, len(items)); err != nil {
		s.logger.Error(err, "bulk request partially failed", loglib.Fields{
			loglib.IndexField: index.Name(),
			"failed":          len(failed),
			"total":           len(items),
		})
		return err
	}

	if s.refresh {
		if err := s.client.RefreshIndex(ctx, index.Name()); err != nil {
			return mapError(err)
		}
	}
	return nil
}

func (s *Store) Search(ctx context.Context, ds *dataset.Dataset, query *search.Query) (*search.Result, error) {
	if query == nil {
		query = &search.Query{}
	}
	body, err := s.compileSearch(ds, query)
	if err != nil {
		return nil, err
	}
	return s.search(ctx, ds, body)
}

func (s *Store) SimilaritySearch(ctx context.Context, ds *dataset.Dataset, query *search.SimilarityQuery) (*search.Result, error) {
	body, err := s.compileSimilarity(ds, query)
	if err != nil {
		return nil, err
	}
	return s.search(ctx, ds, body)
}

// search runs the compiled query against the dataset alias. A dataset without
// an index yields an empty result.
func (s *Store) search(ctx context.Context, ds *dataset.Dataset, body *searchstore.QueryBody) (*search.Result, error) {
	index := s.indexNameAdapter.DatasetToIndex(ds)
	queryBytes, err := s.marshaler(body)
	if err != nil {
		return nil, fmt.Errorf("marshaling search query: %w", err)
	}

	resp, err := s.client.Search(ctx, &searchstore.SearchRequest{
		Index: index.Name(),
		Body:  bytes.NewReader(queryBytes),
	})
	if err != nil {
		if errors.Is(err, searchstore.ErrResourceNotFound) {
			return search.EmptyResult(), nil
		}
		return nil, mapError(err)
	}

	return hitsToResult(&resp.Hits)
}

func hitsToResult(hits *searchstore.Hits) (*search.Result, error) {
	result := &search.Result{
		Items: make([]search.Item, 0, len(hits.Hits)),
		Total: hits.Total.Value,
	}
	for _, hit := range hits.Hits {
		id, err := uuid.Parse(hit.ID)
		if err != nil {
			return nil, fmt.Errorf("parsing record id %q from search hit: %w", hit.ID, err)
		}
		result.Items = append(result.Items, search.Item{
			RecordID: id,
			Score:    hit.Score,
		})
	}
	return result, nil
}

func mapError(err error) error {
	if errors.As(err, &searchstore.RetryableError{}) {
		return fmt.Errorf("%w: %w", search.ErrRetriable, err)
	}
	if errors.As(err, &searchstore.ErrQueryInvalid{}) {
		return dataset.InvalidQueryError{Msg: err.Error()}
	}
	return err
}
