// SPDX-License-Identifier: Apache-2.0

package store

import (
	"fmt"

	"github.com/xataio/recordhub/internal/searchstore"
	"github.com/xataio/recordhub/pkg/dataset"
)

const (
	idProperty                   = "id"
	externalIDProperty           = "external_id"
	insertedAtProperty           = "inserted_at"
	updatedAtProperty            = "updated_at"
	fieldsProperty               = "fields"
	metadataProperty             = "metadata"
	responsesProperty            = "responses"
	vectorsProperty              = "vectors"
	statusProperty               = "status"
	allResponsesStatusesProperty = "all_responses_statuses"
)

// indexDefinition builds the create index body for the dataset: the shared
// mapping plus the backend specific settings and vector leaves.
func (s *Store) indexDefinition(ds *dataset.Dataset) (map[string]any, error) {
	mappings, err := s.indexMappings(ds)
	if err != nil {
		return nil, err
	}
	return map[string]any{
		"settings": s.mapper.IndexSettings(&s.indexSettings),
		"mappings": mappings,
	}, nil
}

func (s *Store) indexMappings(ds *dataset.Dataset) (map[string]any, error) {
	keyword, err := s.fieldMapping(searchstore.KeywordType, 0)
	if err != nil {
		return nil, err
	}
	timestamp, err := s.fieldMapping(searchstore.TimestampType, 0)
	if err != nil {
		return nil, err
	}

	fields, err := s.fieldsMappings(ds)
	if err != nil {
		return nil, err
	}
	metadata := map[string]any{}
	for i := range ds.MetadataProperties {
		p := &ds.MetadataProperties[i]
		mapping, err := s.metadataPropertyMapping(p)
		if err != nil {
			return nil, err
		}
		metadata[p.Name] = mapping
	}
	vectors, err := s.vectorsMappings(ds)
	if err != nil {
		return nil, err
	}

	return map[string]any{
		"dynamic": "strict",
		"dynamic_templates": []any{
			map[string]any{
				"status_responses": map[string]any{
					"path_match": responsesProperty + ".*." + statusProperty,
					"mapping": map[string]any{
						"type":    "keyword",
						"copy_to": allResponsesStatusesProperty,
					},
				},
			},
		},
		"properties": map[string]any{
			idProperty:                   keyword,
			externalIDProperty:           keyword,
			insertedAtProperty:           timestamp,
			updatedAtProperty:            timestamp,
			allResponsesStatusesProperty: keyword,
			responsesProperty: map[string]any{
				"type":    "object",
				"dynamic": "true",
			},
			fieldsProperty: map[string]any{
				"type":       "object",
				"dynamic":    "false",
				"properties": fields,
			},
			metadataProperty: map[string]any{
				"type":       "object",
				"dynamic":    "false",
				"properties": metadata,
			},
			vectorsProperty: map[string]any{
				"type":       "object",
				"dynamic":    "false",
				"properties": vectors,
			},
		},
	}, nil
}

// fieldsMappings maps text fields for full text search. Other field types are
// stored with the record but not indexed.
func (s *Store) fieldsMappings(ds *dataset.Dataset) (map[string]any, error) {
	fields := map[string]any{}
	for i := range ds.Fields {
		f := &ds.Fields[i]
		if !f.IsText() {
			continue
		}
		mapping, err := s.fieldMapping(searchstore.TextType, 0)
		if err != nil {
			return nil, err
		}
		fields[f.Name] = mapping
	}
	return fields, nil
}

func (s *Store) vectorsMappings(ds *dataset.Dataset) (map[string]any, error) {
	vectors := map[string]any{}
	for i := range ds.VectorSettings {
		vs := &ds.VectorSettings[i]
		mapping, err := s.fieldMapping(searchstore.VectorType, vs.Dimensions)
		if err != nil {
			return nil, err
		}
		vectors[vs.ID.String()] = mapping
	}
	return vectors, nil
}

func (s *Store) metadataPropertyMapping(p *dataset.MetadataProperty) (map[string]any, error) {
	switch p.Type() {
	case dataset.MetadataPropertyTypeTerms:
		return s.fieldMapping(searchstore.KeywordType, 0)
	case dataset.MetadataPropertyTypeInteger:
		return s.fieldMapping(searchstore.IntegerType, 0)
	case dataset.MetadataPropertyTypeFloat:
		return s.fieldMapping(searchstore.FloatType, 0)
	default:
		return nil, fmt.Errorf("metadata property `%s`: %w: %q", p.Name, searchstore.ErrUnsupportedSearchFieldType, p.Type())
	}
}

func (s *Store) fieldMapping(t searchstore.Type, dims int) (map[string]any, error) {
	return s.mapper.FieldMapping(&searchstore.Field{
		SearchType: t,
		Metadata:   searchstore.Metadata{VectorDimension: dims},
	})
}
