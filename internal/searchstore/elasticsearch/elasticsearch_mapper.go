// SPDX-License-Identifier: Apache-2.0

package elasticsearch

import (
	"github.com/xataio/recordhub/internal/searchstore"
)

type Mapper struct{}

func NewMapper() *Mapper {
	return &Mapper{}
}

func (m *Mapper) IndexSettings(settings *searchstore.IndexSettings) map[string]any {
	return map[string]any{
		"number_of_shards":   settings.NumberOfShards,
		"number_of_replicas": settings.NumberOfReplicas,
		"max_result_window":  settings.MaxResultWindow,
	}
}

func (m *Mapper) FieldMapping(field *searchstore.Field) (map[string]any, error) {
	switch field.SearchType {
	case searchstore.KeywordType:
		return map[string]any{"type": "keyword"}, nil
	case searchstore.IntegerType:
		return map[string]any{"type": "long"}, nil
	case searchstore.FloatType:
		return map[string]any{"type": "float"}, nil
	case searchstore.TextType:
		return map[string]any{"type": "text"}, nil
	case searchstore.TimestampType:
		return map[string]any{"type": "date_nanos"}, nil
	case searchstore.VectorType:
		return map[string]any{
			"type":       "dense_vector",
			"dims":       field.Metadata.VectorDimension,
			"index":      true,
			"similarity": "cosine",
		}, nil
	default:
		return nil, searchstore.ErrUnsupportedSearchFieldType
	}
}

// KNNQuery uses the top level knn search option. Filters are applied during
// the approximate search, an optional text query is combined with the knn
// score.
func (m *Mapper) KNNQuery(req *searchstore.KNNRequest) *searchstore.QueryBody {
	knn := &searchstore.KNNSearch{
		Field:         req.Field,
		QueryVector:   req.Vector,
		K:             req.K,
		NumCandidates: req.NumCandidates,
	}
	if req.Filter != nil {
		knn.Filter = &searchstore.Condition{Bool: req.Filter}
	}

	body := &searchstore.QueryBody{
		KNN:  knn,
		Size: req.K,
	}
	if req.Text != nil {
		body.Query = &searchstore.Query{
			Bool: &searchstore.BoolFilter{
				Should: []searchstore.Condition{*req.Text},
			},
		}
	}
	return body
}
