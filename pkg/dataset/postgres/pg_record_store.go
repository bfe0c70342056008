// SPDX-License-Identifier: Apache-2.0

package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/xataio/recordhub/internal/json"
	pglib "github.com/xataio/recordhub/internal/postgres"
	"github.com/xataio/recordhub/pkg/dataset"
)

// Store is a postgres implementation of the dataset.RecordStore interface.
type Store struct {
	querier pglib.Querier
}

type Config struct {
	URL string
}

const schemaName = "recordhub"

var (
	recordsTable     = pglib.QuoteQualifiedIdentifier(schemaName, "records")
	responsesTable   = pglib.QuoteQualifiedIdentifier(schemaName, "responses")
	suggestionsTable = pglib.QuoteQualifiedIdentifier(schemaName, "suggestions")
	vectorsTable     = pglib.QuoteQualifiedIdentifier(schemaName, "vectors")
)

const (
	externalIDConstraint = "records_dataset_id_external_id_key"
	recordIDConstraint   = "records_pkey"

	recordColumns = "id, dataset_id, external_id, fields, metadata, inserted_at, updated_at"
)

var _ dataset.RecordStore = (*Store)(nil)

func NewStore(ctx context.Context, cfg Config) (*Store, error) {
	pool, err := pglib.NewConnPool(ctx, cfg.URL)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close(ctx)
		return nil, fmt.Errorf("connecting to postgres: %w", err)
	}
	return &Store{
		querier: pool,
	}, nil
}

func NewStoreWithQuerier(querier pglib.Querier) *Store {
	return &Store{
		querier: querier,
	}
}

func (s *Store) GetRecord(ctx context.Context, id uuid.UUID) (*dataset.Record, error) {
	sql := fmt.Sprintf(`select %s from %s where id = $1`, recordColumns, recordsTable)
	rows, err := s.querier.Query(ctx, sql, id)
	if err != nil {
		return nil, fmt.Errorf("fetching record %s: %w", id, err)
	}
	records, err := s.scanRecords(ctx, rows)
	if err != nil {
		return nil, fmt.Errorf("fetching record %s: %w", id, err)
	}
	if len(records) == 0 {
		return nil, dataset.NotFoundError{Msg: fmt.Sprintf("record with id `%s` not found", id)}
	}
	return records[0], nil
}

// GetRecordsByIDs returns the records of the dataset matching the ids. Ids
// that do not exist are ignored.
func (s *Store) GetRecordsByIDs(ctx context.Context, datasetID uuid.UUID, ids []uuid.UUID) ([]*dataset.Record, error) {
	if len(ids) == 0 {
		return []*dataset.Record{}, nil
	}
	sql := fmt.Sprintf(`select %s from %s where dataset_id = $1 and id = any($2::uuid[]) order by inserted_at, id`, recordColumns, recordsTable)
	rows, err := s.querier.Query(ctx, sql, datasetID, uuidStrings(ids))
	if err != nil {
		return nil, fmt.Errorf("fetching records for dataset %s: %w", datasetID, err)
	}
	return s.scanRecords(ctx, rows)
}

func (s *Store) GetRecordsByExternalIDs(ctx context.Context, datasetID uuid.UUID, externalIDs []string) ([]*dataset.Record, error) {
	if len(externalIDs) == 0 {
		return []*dataset.Record{}, nil
	}
	sql := fmt.Sprintf(`select %s from %s where dataset_id = $1 and external_id = any($2::text[]) order by inserted_at, id`, recordColumns, recordsTable)
	rows, err := s.querier.Query(ctx, sql, datasetID, externalIDs)
	if err != nil {
		return nil, fmt.Errorf("fetching records by external id for dataset %s: %w", datasetID, err)
	}
	return s.scanRecords(ctx, rows)
}

// GetRecordDatasetIDs looks the ids up across all datasets, so callers can
// tell records of another dataset apart from missing ones.
func (s *Store) GetRecordDatasetIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]uuid.UUID, error) {
	owners := make(map[uuid.UUID]uuid.UUID, len(ids))
	if len(ids) == 0 {
		return owners, nil
	}
	sql := fmt.Sprintf(`select id, dataset_id from %s where id = any($1::uuid[])`, recordsTable)
	rows, err := s.querier.Query(ctx, sql, uuidStrings(ids))
	if err != nil {
		return nil, fmt.Errorf("fetching record datasets: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id, datasetID uuid.UUID
		if err := rows.Scan(&id, &datasetID); err != nil {
			return nil, fmt.Errorf("scanning record dataset: %w", err)
		}
		owners[id] = datasetID
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("fetching record datasets: %w", err)
	}
	return owners, nil
}

func (s *Store) CommitRecords(ctx context.Context, batch *dataset.RecordBatch) error {
	if batch == nil || batch.Len() == 0 {
		return nil
	}
	err := s.querier.ExecInTx(ctx, func(tx pglib.Tx) error {
		for _, r := range batch.Created {
			if err := insertRecord(ctx, tx, r); err != nil {
				return err
			}
			if err := upsertChildren(ctx, tx, r); err != nil {
				return err
			}
		}
		for _, r := range batch.Updated {
			if err := updateRecord(ctx, tx, r); err != nil {
				return err
			}
			if err := upsertChildren(ctx, tx, r); err != nil {
				return err
			}
		}
		return nil
	})
	return mapError(err)
}

// DeleteRecords removes the records of the dataset. Responses, suggestions
// and vectors are removed by cascade.
func (s *Store) DeleteRecords(ctx context.Context, datasetID uuid.UUID, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	sql := fmt.Sprintf(`delete from %s where dataset_id = $1 and id = any($2::uuid[])`, recordsTable)
	if _, err := s.querier.Exec(ctx, sql, datasetID, uuidStrings(ids)); err != nil {
		return fmt.Errorf("deleting records for dataset %s: %w", datasetID, err)
	}
	return nil
}

func (s *Store) Close() error {
	return s.querier.Close(context.Background())
}

func insertRecord(ctx context.Context, tx pglib.Tx, r *dataset.Record) error {
	fields, metadata, err := marshalRecordContent(r)
	if err != nil {
		return err
	}

	sql := fmt.Sprintf(`insert into %s (%s) values ($1, $2, $3, $4, $5, $6, $7)`, recordsTable, recordColumns)
	if _, err := tx.Exec(ctx, sql, r.ID, r.DatasetID, r.ExternalID, fields, metadata, r.InsertedAt, r.UpdatedAt); err != nil {
		return fmt.Errorf("inserting record %s: %w", r.ID, err)
	}
	return nil
}

// updateRecord only matches the record within its own dataset. A record that
// is missing or owned by another dataset fails the commit.
func updateRecord(ctx context.Context, tx pglib.Tx, r *dataset.Record) error {
	fields, metadata, err := marshalRecordContent(r)
	if err != nil {
		return err
	}

	sql := fmt.Sprintf(`update %s set external_id = $3, fields = $4, metadata = $5, updated_at = $6 where id = $1 and dataset_id = $2`, recordsTable)
	tag, err := tx.Exec(ctx, sql, r.ID, r.DatasetID, r.ExternalID, fields, metadata, r.UpdatedAt)
	if err != nil {
		return fmt.Errorf("updating record %s: %w", r.ID, err)
	}
	if tag.RowsAffected() != 1 {
		return dataset.ConflictError{Msg: fmt.Sprintf("Record with id `%s` does not exist in dataset `%s`", r.ID, r.DatasetID)}
	}
	return nil
}

func marshalRecordContent(r *dataset.Record) (fields, metadata []byte, err error) {
	if fields, err = json.Marshal(r.Fields); err != nil {
		return nil, nil, fmt.Errorf("marshaling fields for record %s: %w", r.ID, err)
	}
	if metadata, err = marshalNullable(r.Metadata); err != nil {
		return nil, nil, fmt.Errorf("marshaling metadata for record %s: %w", r.ID, err)
	}
	return fields, metadata, nil
}

func upsertChildren(ctx context.Context, tx pglib.Tx, r *dataset.Record) error {
	for i := range r.Responses {
		if err := upsertResponse(ctx, tx, &r.Responses[i]); err != nil {
			return err
		}
	}
	for i := range r.Suggestions {
		if err := upsertSuggestion(ctx, tx, &r.Suggestions[i]); err != nil {
			return err
		}
	}
	for i := range r.Vectors {
		if err := upsertVector(ctx, tx, &r.Vectors[i]); err != nil {
			return err
		}
	}
	return nil
}

func upsertResponse(ctx context.Context, tx pglib.Tx, r *dataset.Response) error {
	values, err := marshalNullable(r.Values)
	if err != nil {
		return fmt.Errorf("marshaling values for response %s: %w", r.ID, err)
	}

	sql := fmt.Sprintf(`insert into %s (id, record_id, user_id, status, "values", inserted_at, updated_at) values ($1, $2, $3, $4, $5, $6, $7)
on conflict (record_id, user_id) do update set status = excluded.status, "values" = excluded."values", updated_at = excluded.updated_at`, responsesTable)
	if _, err := tx.Exec(ctx, sql, r.ID, r.RecordID, r.UserID, string(r.Status), values, r.InsertedAt, r.UpdatedAt); err != nil {
		return fmt.Errorf("upserting response of user %s for record %s: %w", r.UserID, r.RecordID, err)
	}
	return nil
}

func upsertSuggestion(ctx context.Context, tx pglib.Tx, s *dataset.Suggestion) error {
	value, err := json.Marshal(s.Value)
	if err != nil {
		return fmt.Errorf("marshaling value for suggestion %s: %w", s.ID, err)
	}
	var score []byte
	if s.Score != nil {
		if score, err = json.Marshal(s.Score); err != nil {
			return fmt.Errorf("marshaling score for suggestion %s: %w", s.ID, err)
		}
	}
	var suggestionType *string
	if s.Type != nil {
		t := string(*s.Type)
		suggestionType = &t
	}

	sql := fmt.Sprintf(`insert into %s (id, record_id, question_id, value, score, agent, type, inserted_at, updated_at) values ($1, $2, $3, $4, $5, $6, $7, $8, $9)
on conflict (record_id, question_id) do update set value = excluded.value, score = excluded.score, agent = excluded.agent, type = excluded.type, updated_at = excluded.updated_at`, suggestionsTable)
	if _, err := tx.Exec(ctx, sql, s.ID, s.RecordID, s.QuestionID, value, score, s.Agent, suggestionType, s.InsertedAt, s.UpdatedAt); err != nil {
		return fmt.Errorf("upserting suggestion for question %s of record %s: %w", s.QuestionID, s.RecordID, err)
	}
	return nil
}

func upsertVector(ctx context.Context, tx pglib.Tx, v *dataset.Vector) error {
	sql := fmt.Sprintf(`insert into %s (id, record_id, vector_settings_id, value, inserted_at, updated_at) values ($1, $2, $3, $4, $5, $6)
on conflict (record_id, vector_settings_id) do update set value = excluded.value, updated_at = excluded.updated_at`, vectorsTable)
	if _, err := tx.Exec(ctx, sql, v.ID, v.RecordID, v.VectorSettingsID, v.Value, v.InsertedAt, v.UpdatedAt); err != nil {
		return fmt.Errorf("upserting vector %s for record %s: %w", v.VectorSettingsID, v.RecordID, err)
	}
	return nil
}

func marshalNullable[T any](m map[string]T) ([]byte, error) {
	if m == nil {
		return nil, nil
	}
	return json.Marshal(m)
}

func uuidStrings(ids []uuid.UUID) []string {
	strs := make([]string, 0, len(ids))
	for _, id := range ids {
		strs = append(strs, id.String())
	}
	return strs
}

func mapError(err error) error {
	if err == nil {
		return nil
	}
	var uniqueErr *pglib.ErrUniqueViolation
	if errors.As(err, &uniqueErr) {
		switch uniqueErr.Constraint {
		case externalIDConstraint:
			return dataset.ConflictError{Msg: "Found records with an external id already in use in the dataset"}
		case recordIDConstraint:
			return dataset.ConflictError{Msg: "Found records with an id already in use"}
		}
	}
	return err
}
