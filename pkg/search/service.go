// SPDX-License-Identifier: Apache-2.0

package search

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/xataio/recordhub/pkg/dataset"
	loglib "github.com/xataio/recordhub/pkg/log"
)

// RecordGetter resolves records used as similarity anchors.
type RecordGetter interface {
	GetRecord(ctx context.Context, id uuid.UUID) (*dataset.Record, error)
}

// Service resolves high level search requests against the relational state
// before handing them over to the engine.
type Service struct {
	engine  Engine
	records RecordGetter
	logger  loglib.Logger
}

type ServiceOption func(*Service)

const defaultMaxSimilarResults = 50

func NewService(engine Engine, records RecordGetter, opts ...ServiceOption) *Service {
	s := &Service{
		engine:  engine,
		records: records,
		logger:  loglib.NewNoopLogger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func WithServiceLogger(l loglib.Logger) ServiceOption {
	return func(s *Service) {
		s.logger = loglib.NewLogger(l).WithFields(loglib.Fields{
			loglib.ModuleField: "search_service",
		})
	}
}

func (s *Service) Search(ctx context.Context, ds *dataset.Dataset, query *Query) (*Result, error) {
	if query == nil {
		query = &Query{}
	}
	return s.engine.Search(ctx, ds, query)
}

// SimilaritySearch ranks the dataset records by distance to the request
// anchor. A record anchor must belong to the dataset and is excluded from the
// results.
func (s *Service) SimilaritySearch(ctx context.Context, ds *dataset.Dataset, req *SimilarityRequest) (*Result, error) {
	if req == nil {
		return nil, dataset.InvalidQueryError{Msg: "similarity search requires a request"}
	}
	switch {
	case req.RecordID == nil && len(req.Value) == 0:
		return nil, dataset.InvalidQueryError{Msg: "similarity search requires either a record_id or a vector value"}
	case req.RecordID != nil && len(req.Value) > 0:
		return nil, dataset.InvalidQueryError{Msg: "similarity search accepts either a record_id or a vector value, not both"}
	}

	settings, found := ds.VectorSettingsByName(req.VectorName)
	if !found {
		return nil, dataset.NotFoundError{Msg: fmt.Sprintf("vector settings with name `%s` not found for dataset `%s`", req.VectorName, ds.ID)}
	}

	order := req.Order
	if order == "" {
		order = MostSimilar
	}
	if order != MostSimilar && order != LeastSimilar {
		return nil, dataset.InvalidQueryError{Msg: fmt.Sprintf("similarity order `%s` is not one of [most_similar, least_similar]", order)}
	}

	maxResults := req.MaxResults
	if maxResults == 0 {
		maxResults = defaultMaxSimilarResults
	}

	query := &SimilarityQuery{
		VectorSettings:  settings,
		Value:           req.Value,
		Order:           order,
		MaxResults:      maxResults,
		Text:            req.Text,
		MetadataFilters: req.MetadataFilters,
		ResponseStatus:  req.ResponseStatus,
	}

	if req.RecordID != nil {
		value, err := s.recordVector(ctx, ds, settings, *req.RecordID)
		if err != nil {
			return nil, err
		}
		query.Value = value
		query.ExcludeRecordID = req.RecordID
	} else if len(req.Value) != settings.Dimensions {
		return nil, dataset.InvalidQueryError{Msg: fmt.Sprintf("vector value for `%s` must have %d elements, got %d elements", settings.Name, settings.Dimensions, len(req.Value))}
	}

	s.logger.Debug("similarity search", loglib.Fields{
		loglib.DatasetIDField: ds.ID,
		"vector_name":         settings.Name,
		"order":               order,
		"max_results":         maxResults,
	})

	return s.engine.SimilaritySearch(ctx, ds, query)
}

func (s *Service) recordVector(ctx context.Context, ds *dataset.Dataset, settings *dataset.VectorSettings, recordID uuid.UUID) ([]float32, error) {
	notFound := dataset.NotFoundError{Msg: fmt.Sprintf("record with id `%s` not found in dataset `%s`", recordID, ds.ID)}

	record, err := s.records.GetRecord(ctx, recordID)
	if err != nil {
		if errors.As(err, &dataset.NotFoundError{}) {
			return nil, notFound
		}
		return nil, fmt.Errorf("get anchor record: %w", err)
	}
	if record.DatasetID != ds.ID {
		return nil, notFound
	}

	vector, found := record.VectorBySettings(settings.ID)
	if !found {
		return nil, dataset.NotFoundError{Msg: fmt.Sprintf("record with id `%s` has no vector `%s` in dataset `%s`", recordID, settings.Name, ds.ID)}
	}
	return vector.Value, nil
}
