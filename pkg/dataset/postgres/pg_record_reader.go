// SPDX-License-Identifier: Apache-2.0

package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/xataio/recordhub/internal/json"
	pglib "github.com/xataio/recordhub/internal/postgres"
	"github.com/xataio/recordhub/pkg/dataset"
	"golang.org/x/sync/errgroup"
)

// scanRecords reads the record rows and loads their responses, suggestions
// and vectors. The rows are closed before the children are loaded.
func (s *Store) scanRecords(ctx context.Context, rows pglib.Rows) ([]*dataset.Record, error) {
	records, err := readRecordRows(rows)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return records, nil
	}

	byID := make(map[uuid.UUID]*dataset.Record, len(records))
	ids := make([]uuid.UUID, 0, len(records))
	for _, r := range records {
		byID[r.ID] = r
		ids = append(ids, r.ID)
	}

	// each loader only writes its own record slice, so they can run
	// concurrently on the pool
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return s.loadResponses(gctx, ids, byID) })
	g.Go(func() error { return s.loadSuggestions(gctx, ids, byID) })
	g.Go(func() error { return s.loadVectors(gctx, ids, byID) })
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return records, nil
}

func readRecordRows(rows pglib.Rows) ([]*dataset.Record, error) {
	defer rows.Close()

	records := []*dataset.Record{}
	for rows.Next() {
		r := &dataset.Record{}
		var fields, metadata []byte
		if err := rows.Scan(&r.ID, &r.DatasetID, &r.ExternalID, &fields, &metadata, &r.InsertedAt, &r.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scanning record row: %w", err)
		}
		if err := json.Unmarshal(fields, &r.Fields); err != nil {
			return nil, fmt.Errorf("unmarshaling fields of record %s: %w", r.ID, err)
		}
		if len(metadata) > 0 {
			if err := json.Unmarshal(metadata, &r.Metadata); err != nil {
				return nil, fmt.Errorf("unmarshaling metadata of record %s: %w", r.ID, err)
			}
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

func (s *Store) loadResponses(ctx context.Context, ids []uuid.UUID, byID map[uuid.UUID]*dataset.Record) error {
	sql := fmt.Sprintf(`select id, record_id, user_id, status, "values", inserted_at, updated_at from %s where record_id = any($1::uuid[]) order by inserted_at, id`, responsesTable)
	rows, err := s.querier.Query(ctx, sql, uuidStrings(ids))
	if err != nil {
		return fmt.Errorf("fetching responses: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		r := dataset.Response{}
		var status string
		var values []byte
		if err := rows.Scan(&r.ID, &r.RecordID, &r.UserID, &status, &values, &r.InsertedAt, &r.UpdatedAt); err != nil {
			return fmt.Errorf("scanning response row: %w", err)
		}
		r.Status = dataset.ResponseStatus(status)
		if len(values) > 0 {
			if err := json.Unmarshal(values, &r.Values); err != nil {
				return fmt.Errorf("unmarshaling values of response %s: %w", r.ID, err)
			}
		}
		if record, found := byID[r.RecordID]; found {
			record.Responses = append(record.Responses, r)
		}
	}
	return rows.Err()
}

func (s *Store) loadSuggestions(ctx context.Context, ids []uuid.UUID, byID map[uuid.UUID]*dataset.Record) error {
	sql := fmt.Sprintf(`select id, record_id, question_id, value, score, agent, type, inserted_at, updated_at from %s where record_id = any($1::uuid[]) order by inserted_at, id`, suggestionsTable)
	rows, err := s.querier.Query(ctx, sql, uuidStrings(ids))
	if err != nil {
		return fmt.Errorf("fetching suggestions: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		sg := dataset.Suggestion{}
		var value, score []byte
		var suggestionType *string
		if err := rows.Scan(&sg.ID, &sg.RecordID, &sg.QuestionID, &value, &score, &sg.Agent, &suggestionType, &sg.InsertedAt, &sg.UpdatedAt); err != nil {
			return fmt.Errorf("scanning suggestion row: %w", err)
		}
		if err := json.Unmarshal(value, &sg.Value); err != nil {
			return fmt.Errorf("unmarshaling value of suggestion %s: %w", sg.ID, err)
		}
		if len(score) > 0 {
			if err := json.Unmarshal(score, &sg.Score); err != nil {
				return fmt.Errorf("unmarshaling score of suggestion %s: %w", sg.ID, err)
			}
		}
		if suggestionType != nil {
			t := dataset.SuggestionType(*suggestionType)
			sg.Type = &t
		}
		if record, found := byID[sg.RecordID]; found {
			record.Suggestions = append(record.Suggestions, sg)
		}
	}
	return rows.Err()
}

func (s *Store) loadVectors(ctx context.Context, ids []uuid.UUID, byID map[uuid.UUID]*dataset.Record) error {
	sql := fmt.Sprintf(`select id, record_id, vector_settings_id, value, inserted_at, updated_at from %s where record_id = any($1::uuid[]) order by inserted_at, id`, vectorsTable)
	rows, err := s.querier.Query(ctx, sql, uuidStrings(ids))
	if err != nil {
		return fmt.Errorf("fetching vectors: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		v := dataset.Vector{}
		if err := rows.Scan(&v.ID, &v.RecordID, &v.VectorSettingsID, &v.Value, &v.InsertedAt, &v.UpdatedAt); err != nil {
			return fmt.Errorf("scanning vector row: %w", err)
		}
		if record, found := byID[v.RecordID]; found {
			record.Vectors = append(record.Vectors, v)
		}
	}
	return rows.Err()
}
