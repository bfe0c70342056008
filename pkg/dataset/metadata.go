// SPDX-License-Identifier: Apache-2.0

package dataset

import (
	"github.com/google/uuid"
)

// MetadataProperty is a typed, searchable side-channel attribute attached to
// records.
type MetadataProperty struct {
	ID                   uuid.UUID        `json:"id" yaml:"id"`
	Name                 string           `json:"name" yaml:"name"`
	Title                string           `json:"title" yaml:"title"`
	VisibleForAnnotators bool             `json:"visible_for_annotators" yaml:"visible_for_annotators"`
	AllowedRoles         []string         `json:"allowed_roles" yaml:"allowed_roles"`
	Settings             MetadataSettings `json:"settings" yaml:"-"`
	DatasetID            uuid.UUID        `json:"dataset_id" yaml:"dataset_id"`
}

type MetadataPropertyType string

const (
	MetadataPropertyTypeTerms   MetadataPropertyType = "terms"
	MetadataPropertyTypeInteger MetadataPropertyType = "integer"
	MetadataPropertyTypeFloat   MetadataPropertyType = "float"
)

// MetadataSettings is implemented by one settings struct per metadata
// property type.
type MetadataSettings interface {
	Type() MetadataPropertyType
}

type TermsMetadataSettings struct {
	// Values is the allowed set of terms. A nil set accepts any term.
	Values []string `json:"values" yaml:"values"`
}

type IntegerMetadataSettings struct {
	Min *int64 `json:"min,omitempty" yaml:"min,omitempty"`
	Max *int64 `json:"max,omitempty" yaml:"max,omitempty"`
}

type FloatMetadataSettings struct {
	Min *float64 `json:"min,omitempty" yaml:"min,omitempty"`
	Max *float64 `json:"max,omitempty" yaml:"max,omitempty"`
}

func (TermsMetadataSettings) Type() MetadataPropertyType   { return MetadataPropertyTypeTerms }
func (IntegerMetadataSettings) Type() MetadataPropertyType { return MetadataPropertyTypeInteger }
func (FloatMetadataSettings) Type() MetadataPropertyType   { return MetadataPropertyTypeFloat }

func (s TermsMetadataSettings) IsRestricted() bool {
	return s.Values != nil
}

func (s TermsMetadataSettings) Allows(term string) bool {
	if !s.IsRestricted() {
		return true
	}
	for _, v := range s.Values {
		if v == term {
			return true
		}
	}
	return false
}

func (m *MetadataProperty) Type() MetadataPropertyType {
	if m.Settings == nil {
		return ""
	}
	return m.Settings.Type()
}
