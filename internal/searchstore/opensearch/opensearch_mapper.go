// SPDX-License-Identifier: Apache-2.0

package opensearch

import (
	"github.com/xataio/recordhub/internal/searchstore"
)

type Mapper struct{}

func NewMapper() *Mapper {
	return &Mapper{}
}

// IndexSettings includes the index.knn toggle. It is a static setting, so it
// is fixed for the lifetime of the index.
func (m *Mapper) IndexSettings(settings *searchstore.IndexSettings) map[string]any {
	return map[string]any{
		"number_of_shards":   settings.NumberOfShards,
		"number_of_replicas": settings.NumberOfReplicas,
		"max_result_window":  settings.MaxResultWindow,
		"index.knn":          settings.KNNEnabled,
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
		dims := field.Metadata.VectorDimension
		return map[string]any{
			"type":      "knn_vector",
			"dimension": dims,
			"method": map[string]any{
				"name":       "hnsw",
				"engine":     "lucene",
				"space_type": "l2",
				"parameters": map[string]any{
					"m":               2 * dims,
					"ef_construction": 4 * dims,
				},
			},
		}, nil
	default:
		return nil, searchstore.ErrUnsupportedSearchFieldType
	}
}

// KNNQuery uses the knn query clause with an efficient filter. When a text
// query is provided it becomes an optional clause next to the knn one.
func (m *Mapper) KNNQuery(req *searchstore.KNNRequest) *searchstore.QueryBody {
	knn := searchstore.KNNQuery{
		Vector: req.Vector,
		K:      req.K,
	}
	if req.Filter != nil {
		knn.Filter = &searchstore.Condition{Bool: req.Filter}
	}
	clause := map[string]searchstore.KNNQuery{req.Field: knn}

	body := &searchstore.QueryBody{Size: req.K}
	if req.Text == nil {
		body.Query = &searchstore.Query{KNN: clause}
		return body
	}
	body.Query = &searchstore.Query{
		Bool: &searchstore.BoolFilter{
			Must:   []searchstore.Condition{{KNN: clause}},
			Should: []searchstore.Condition{*req.Text},
		},
	}
	return body
}
