// SPDX-License-Identifier: Apache-2.0

package dataset

import (
	"github.com/google/uuid"
)

// Dataset is a read-only snapshot of a dataset and its schema objects, as
// supplied by the relational layer for the duration of one request.
type Dataset struct {
	ID                 uuid.UUID          `json:"id" yaml:"id"`
	Name               string             `json:"name" yaml:"name"`
	Status             Status             `json:"status" yaml:"status"`
	AllowExtraMetadata bool               `json:"allow_extra_metadata" yaml:"allow_extra_metadata"`
	Fields             []Field            `json:"fields" yaml:"fields"`
	Questions          []Question         `json:"questions" yaml:"questions"`
	MetadataProperties []MetadataProperty `json:"metadata_properties" yaml:"metadata_properties"`
	VectorSettings     []VectorSettings   `json:"vectors_settings" yaml:"vectors_settings"`
}

type Status string

const (
	StatusDraft Status = "draft"
	StatusReady Status = "ready"
)

func (d *Dataset) IsReady() bool {
	return d.Status == StatusReady
}

func (d *Dataset) IsDraft() bool {
	return d.Status == StatusDraft
}

func (d *Dataset) FieldByName(name string) (*Field, bool) {
	for i := range d.Fields {
		if d.Fields[i].Name == name {
			return &d.Fields[i], true
		}
	}
	return nil, false
}

func (d *Dataset) QuestionByID(id uuid.UUID) (*Question, bool) {
	for i := range d.Questions {
		if d.Questions[i].ID == id {
			return &d.Questions[i], true
		}
	}
	return nil, false
}

func (d *Dataset) QuestionByName(name string) (*Question, bool) {
	for i := range d.Questions {
		if d.Questions[i].Name == name {
			return &d.Questions[i], true
		}
	}
	return nil, false
}

func (d *Dataset) MetadataPropertyByName(name string) (*MetadataProperty, bool) {
	for i := range d.MetadataProperties {
		if d.MetadataProperties[i].Name == name {
			return &d.MetadataProperties[i], true
		}
	}
	return nil, false
}

func (d *Dataset) VectorSettingsByName(name string) (*VectorSettings, bool) {
	for i := range d.VectorSettings {
		if d.VectorSettings[i].Name == name {
			return &d.VectorSettings[i], true
		}
	}
	return nil, false
}

func (d *Dataset) VectorSettingsByID(id uuid.UUID) (*VectorSettings, bool) {
	for i := range d.VectorSettings {
		if d.VectorSettings[i].ID == id {
			return &d.VectorSettings[i], true
		}
	}
	return nil, false
}

// Field is a typed slot for record content shown to annotators. Fields are
// immutable once the dataset is ready.
type Field struct {
	ID       uuid.UUID     `json:"id" yaml:"id"`
	Name     string        `json:"name" yaml:"name"`
	Title    string        `json:"title" yaml:"title"`
	Required bool          `json:"required" yaml:"required"`
	Settings FieldSettings `json:"settings" yaml:"settings"`
}

type FieldSettings struct {
	Type FieldType `json:"type" yaml:"type"`
}

type FieldType string

const (
	FieldTypeText   FieldType = "text"
	FieldTypeImage  FieldType = "image"
	FieldTypeChat   FieldType = "chat"
	FieldTypeCustom FieldType = "custom"
)

func (f *Field) IsText() bool {
	return f.Settings.Type == FieldTypeText
}

// VectorSettings is a named, fixed-dimension embedding slot attachable to
// records.
type VectorSettings struct {
	ID         uuid.UUID `json:"id" yaml:"id"`
	Name       string    `json:"name" yaml:"name"`
	Title      string    `json:"title" yaml:"title"`
	Dimensions int       `json:"dimensions" yaml:"dimensions"`
	DatasetID  uuid.UUID `json:"dataset_id" yaml:"dataset_id"`
}
