// SPDX-License-Identifier: Apache-2.0

package mocks

import "github.com/xataio/recordhub/internal/searchstore"

type Mapper struct {
	IndexSettingsFn func(*searchstore.IndexSettings) map[string]any
	FieldMappingFn  func(*searchstore.Field) (map[string]any, error)
	KNNQueryFn      func(*searchstore.KNNRequest) *searchstore.QueryBody
}

func (m *Mapper) IndexSettings(s *searchstore.IndexSettings) map[string]any {
	if m.IndexSettingsFn == nil {
		return map[string]any{}
	}
	return m.IndexSettingsFn(s)
}

func (m *Mapper) FieldMapping(f *searchstore.Field) (map[string]any, error) {
	return m.FieldMappingFn(f)
}

func (m *Mapper) KNNQuery(req *searchstore.KNNRequest) *searchstore.QueryBody {
	return m.KNNQueryFn(req)
}
