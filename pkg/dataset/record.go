// SPDX-License-Identifier: Apache-2.0

package dataset

import (
	"time"

	"github.com/google/uuid"
)

// Record is a unit of annotation work inside a dataset. Records are created
// and updated exclusively through bulk ingestion.
type Record struct {
	ID          uuid.UUID      `json:"id"`
	DatasetID   uuid.UUID      `json:"dataset_id"`
	ExternalID  *string        `json:"external_id,omitempty"`
	Fields      map[string]any `json:"fields"`
	Metadata    map[string]any `json:"metadata,omitempty"`
	Responses   []Response     `json:"responses,omitempty"`
	Suggestions []Suggestion   `json:"suggestions,omitempty"`
	Vectors     []Vector       `json:"vectors,omitempty"`
	InsertedAt  time.Time      `json:"inserted_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

type ResponseStatus string

const (
	ResponseStatusSubmitted ResponseStatus = "submitted"
	ResponseStatusDiscarded ResponseStatus = "discarded"
	ResponseStatusDraft     ResponseStatus = "draft"
)

func (s ResponseStatus) IsValid() bool {
	switch s {
	case ResponseStatusSubmitted, ResponseStatusDiscarded, ResponseStatusDraft:
		return true
	default:
		return false
	}
}

type ResponseValue struct {
	Value any `json:"value"`
}

// Response is one user's answer set for a record. There is at most one
// response per (record, user).
type Response struct {
	ID         uuid.UUID                `json:"id"`
	RecordID   uuid.UUID                `json:"record_id"`
	UserID     uuid.UUID                `json:"user_id"`
	Status     ResponseStatus           `json:"status"`
	Values     map[string]ResponseValue `json:"values,omitempty"`
	InsertedAt time.Time                `json:"inserted_at"`
	UpdatedAt  time.Time                `json:"updated_at"`
}

type SuggestionType string

const (
	SuggestionTypeModel SuggestionType = "model"
	SuggestionTypeHuman SuggestionType = "human"
)

// Suggestion is a proposed answer to a question. There is at most one
// suggestion per (record, question).
type Suggestion struct {
	ID         uuid.UUID       `json:"id"`
	RecordID   uuid.UUID       `json:"record_id"`
	QuestionID uuid.UUID       `json:"question_id"`
	Value      any             `json:"value"`
	Score      any             `json:"score,omitempty"`
	Agent      *string         `json:"agent,omitempty"`
	Type       *SuggestionType `json:"type,omitempty"`
	InsertedAt time.Time       `json:"inserted_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

// Vector is the embedding of a record for one vector settings slot.
type Vector struct {
	ID               uuid.UUID `json:"id"`
	RecordID         uuid.UUID `json:"record_id"`
	VectorSettingsID uuid.UUID `json:"vector_settings_id"`
	Value            []float32 `json:"value"`
	InsertedAt       time.Time `json:"inserted_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

func (r *Record) ResponseByUser(userID uuid.UUID) (*Response, bool) {
	for i := range r.Responses {
		if r.Responses[i].UserID == userID {
			return &r.Responses[i], true
		}
	}
	return nil, false
}

func (r *Record) SuggestionByQuestion(questionID uuid.UUID) (*Suggestion, bool) {
	for i := range r.Suggestions {
		if r.Suggestions[i].QuestionID == questionID {
			return &r.Suggestions[i], true
		}
	}
	return nil, false
}

func (r *Record) VectorBySettings(settingsID uuid.UUID) (*Vector, bool) {
	for i := range r.Vectors {
		if r.Vectors[i].VectorSettingsID == settingsID {
			return &r.Vectors[i], true
		}
	}
	return nil, false
}

// RecordUpsert is the ingestion payload for one record. On update, nil Fields
// and Metadata mean the value was not provided and is kept as is.
type RecordUpsert struct {
	ID          *uuid.UUID           `json:"id,omitempty"`
	ExternalID  *string              `json:"external_id,omitempty"`
	Fields      map[string]any       `json:"fields,omitempty"`
	Metadata    map[string]any       `json:"metadata,omitempty"`
	Vectors     map[string][]float32 `json:"vectors,omitempty"`
	Responses   []ResponseUpsert     `json:"responses,omitempty"`
	Suggestions []SuggestionUpsert   `json:"suggestions,omitempty"`
}

type ResponseUpsert struct {
	UserID uuid.UUID                `json:"user_id"`
	Status ResponseStatus           `json:"status"`
	Values map[string]ResponseValue `json:"values,omitempty"`
}

type SuggestionUpsert struct {
	QuestionID uuid.UUID       `json:"question_id"`
	Value      any             `json:"value"`
	Score      any             `json:"score,omitempty"`
	Agent      *string         `json:"agent,omitempty"`
	Type       *SuggestionType `json:"type,omitempty"`
}
