// SPDX-License-Identifier: Apache-2.0

package bulk

import (
	"maps"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/xataio/recordhub/pkg/dataset"
)

// recordBuilder turns validated payloads into records stamped with the batch
// timestamp.
type recordBuilder struct {
	dataset *dataset.Dataset
	now     time.Time
	newID   func() uuid.UUID
}

func (b *recordBuilder) create(item *dataset.RecordUpsert) *dataset.Record {
	id := b.newID()
	if item.ID != nil {
		id = *item.ID
	}
	r := &dataset.Record{
		ID:          id,
		DatasetID:   b.dataset.ID,
		ExternalID:  item.ExternalID,
		Fields:      item.Fields,
		Metadata:    item.Metadata,
		Responses:   []dataset.Response{},
		Suggestions: []dataset.Suggestion{},
		Vectors:     []dataset.Vector{},
		InsertedAt:  b.now,
		UpdatedAt:   b.now,
	}
	if r.Fields == nil {
		r.Fields = map[string]any{}
	}
	b.upsertChildren(r, item)
	return r
}

// update returns a copy of the existing record with the payload applied.
// Fields and metadata are replaced when provided; responses, suggestions and
// vectors are upserted by user, question and vector settings respectively.
func (b *recordBuilder) update(existing *dataset.Record, item *dataset.RecordUpsert) *dataset.Record {
	r := &dataset.Record{
		ID:          existing.ID,
		DatasetID:   existing.DatasetID,
		ExternalID:  existing.ExternalID,
		Fields:      maps.Clone(existing.Fields),
		Metadata:    maps.Clone(existing.Metadata),
		Responses:   slices.Clone(existing.Responses),
		Suggestions: slices.Clone(existing.Suggestions),
		Vectors:     slices.Clone(existing.Vectors),
		InsertedAt:  existing.InsertedAt,
		UpdatedAt:   b.now,
	}
	if item.ExternalID != nil {
		r.ExternalID = item.ExternalID
	}
	if item.Fields != nil {
		r.Fields = item.Fields
	}
	if item.Metadata != nil {
		r.Metadata = item.Metadata
	}
	b.upsertChildren(r, item)
	return r
}

func (b *recordBuilder) upsertChildren(r *dataset.Record, item *dataset.RecordUpsert) {
	for _, ru := range item.Responses {
		if resp, found := r.ResponseByUser(ru.UserID); found {
			resp.Status = ru.Status
			resp.Values = ru.Values
			resp.UpdatedAt = b.now
			continue
		}
		r.Responses = append(r.Responses, dataset.Response{
			ID:         b.newID(),
			RecordID:   r.ID,
			UserID:     ru.UserID,
			Status:     ru.Status,
			Values:     ru.Values,
			InsertedAt: b.now,
			UpdatedAt:  b.now,
		})
	}

	for _, su := range item.Suggestions {
		if s, found := r.SuggestionByQuestion(su.QuestionID); found {
			s.Value = su.Value
			s.Score = su.Score
			s.Agent = su.Agent
			s.Type = su.Type
			s.UpdatedAt = b.now
			continue
		}
		r.Suggestions = append(r.Suggestions, dataset.Suggestion{
			ID:         b.newID(),
			RecordID:   r.ID,
			QuestionID: su.QuestionID,
			Value:      su.Value,
			Score:      su.Score,
			Agent:      su.Agent,
			Type:       su.Type,
			InsertedAt: b.now,
			UpdatedAt:  b.now,
		})
	}

	// sorted so that the record children order does not depend on map
	// iteration
	for _, name := range slices.Sorted(maps.Keys(item.Vectors)) {
		settings, found := b.dataset.VectorSettingsByName(name)
		if !found {
			continue
		}
		value := item.Vectors[name]
		if v, found := r.VectorBySettings(settings.ID); found {
			v.Value = value
			v.UpdatedAt = b.now
			continue
		}
		r.Vectors = append(r.Vectors, dataset.Vector{
			ID:               b.newID(),
			RecordID:         r.ID,
			VectorSettingsID: settings.ID,
			Value:            value,
			InsertedAt:       b.now,
			UpdatedAt:        b.now,
		})
	}
}
