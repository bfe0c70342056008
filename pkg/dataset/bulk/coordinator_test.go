// SPDX-License-Identifier: Apache-2.0

package bulk

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/require"
	"github.com/xataio/recordhub/pkg/dataset"
	datasetmocks "github.com/xataio/recordhub/pkg/dataset/mocks"
	searchmocks "github.com/xataio/recordhub/pkg/search/mocks"
)

var (
	testDatasetID   = uuid.MustParse("5a1f2d3c-0b6e-4c1e-9d62-8f4a0c1b2e3d")
	testEmbeddingID = uuid.MustParse("0c9e8a7b-6d5c-4b3a-8291-a0b1c2d3e4f5")
	testSentimentID = uuid.MustParse("11111111-2222-4333-8444-555555555555")
	testRecordID    = uuid.MustParse("21111111-2222-4333-8444-555555555555")
	testRecordID2   = uuid.MustParse("31111111-2222-4333-8444-555555555555")
	testUserID      = uuid.MustParse("71111111-2222-4333-8444-555555555555")
	testGeneratedID = uuid.MustParse("a1111111-2222-4333-8444-555555555555")
	testOtherDSID   = uuid.MustParse("b1111111-2222-4333-8444-555555555555")

	testExternalID = "ext-1"

	testNow    = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	testBefore = testNow.Add(-time.Hour)
)

func newTestDataset() *dataset.Dataset {
	return &dataset.Dataset{
		ID:     testDatasetID,
		Status: dataset.StatusReady,
		Fields: []dataset.Field{
			{Name: "text", Required: true, Settings: dataset.FieldSettings{Type: dataset.FieldTypeText}},
		},
		Questions: []dataset.Question{
			{ID: testSentimentID, Name: "sentiment", Settings: dataset.LabelSelectionQuestionSettings{
				Options: []dataset.Option{{Value: "positive", Text: "positive"}, {Value: "negative", Text: "negative"}},
			}},
		},
		MetadataProperties: []dataset.MetadataProperty{
			{Name: "colors", Settings: dataset.TermsMetadataSettings{Values: []string{"a", "b", "c"}}},
		},
		VectorSettings: []dataset.VectorSettings{
			{ID: testEmbeddingID, Name: "emb", Dimensions: 2, DatasetID: testDatasetID},
		},
	}
}

func newTestRecord() *dataset.Record {
	return &dataset.Record{
		ID:          testRecordID,
		DatasetID:   testDatasetID,
		Fields:      map[string]any{"text": "hello"},
		Metadata:    map[string]any{"colors": "a"},
		Responses:   []dataset.Response{},
		Suggestions: []dataset.Suggestion{},
		Vectors: []dataset.Vector{
			{ID: testGeneratedID, RecordID: testRecordID, VectorSettingsID: testEmbeddingID, Value: []float32{1, 2}, InsertedAt: testBefore, UpdatedAt: testBefore},
		},
		InsertedAt: testBefore,
		UpdatedAt:  testBefore,
	}
}

func newTestCoordinator(records *datasetmocks.RecordStore, engine *searchmocks.Engine) *Coordinator {
	return NewCoordinator(records, engine, Config{MaxItems: 3},
		WithClock(clockwork.NewFakeClockAt(testNow)),
		WithIDGenerator(func() uuid.UUID { return testGeneratedID }),
	)
}

func TestCoordinator_Create(t *testing.T) {
	t.Parallel()

	errTest := errors.New("oh noes")
	label := dataset.SuggestionTypeModel

	validItem := &dataset.RecordUpsert{
		Fields:   map[string]any{"text": "hello"},
		Metadata: map[string]any{"colors": "b"},
		Vectors:  map[string][]float32{"emb": {0.1, 0.2}},
		Responses: []dataset.ResponseUpsert{
			{UserID: testUserID, Status: dataset.ResponseStatusDraft},
		},
		Suggestions: []dataset.SuggestionUpsert{
			{QuestionID: testSentimentID, Value: "positive", Type: &label},
		},
	}
	wantRecord := &dataset.Record{
		ID:        testGeneratedID,
		DatasetID: testDatasetID,
		Fields:    map[string]any{"text": "hello"},
		Metadata:  map[string]any{"colors": "b"},
		Responses: []dataset.Response{
			{ID: testGeneratedID, RecordID: testGeneratedID, UserID: testUserID, Status: dataset.ResponseStatusDraft, InsertedAt: testNow, UpdatedAt: testNow},
		},
		Suggestions: []dataset.Suggestion{
			{ID: testGeneratedID, RecordID: testGeneratedID, QuestionID: testSentimentID, Value: "positive", Type: &label, InsertedAt: testNow, UpdatedAt: testNow},
		},
		Vectors: []dataset.Vector{
			{ID: testGeneratedID, RecordID: testGeneratedID, VectorSettingsID: testEmbeddingID, Value: []float32{0.1, 0.2}, InsertedAt: testNow, UpdatedAt: testNow},
		},
		InsertedAt: testNow,
		UpdatedAt:  testNow,
	}

	tests := []struct {
		name    string
		dataset *dataset.Dataset
		items   []*dataset.RecordUpsert
		records *datasetmocks.RecordStore
		engine  *searchmocks.Engine

		wantResult  *Result
		wantErr     error
		wantCommits uint
	}{
		{
			name:  "ok",
			items: []*dataset.RecordUpsert{validItem},
			records: &datasetmocks.RecordStore{
				CommitRecordsFn: func(ctx context.Context, i uint, batch *dataset.RecordBatch) error {
					require.Equal(t, &dataset.RecordBatch{Created: []*dataset.Record{wantRecord}}, batch)
					return nil
				},
			},
			engine: &searchmocks.Engine{
				IndexRecordsFn: func(ctx context.Context, i uint, ds *dataset.Dataset, records []*dataset.Record) error {
					require.Equal(t, []*dataset.Record{wantRecord}, records)
					return nil
				},
			},

			wantResult:  &Result{Records: []*dataset.Record{wantRecord}, Created: 1, Indexed: 1},
			wantCommits: 1,
		},
		{
			name:    "error - empty batch",
			items:   []*dataset.RecordUpsert{},
			records: &datasetmocks.RecordStore{},
			engine:  &searchmocks.Engine{},

			wantErr: dataset.LimitExceededError{Msg: "Expected a number of records between 1 and 3, got 0"},
		},
		{
			name:    "error - batch too big",
			items:   []*dataset.RecordUpsert{validItem, validItem, validItem, validItem},
			records: &datasetmocks.RecordStore{},
			engine:  &searchmocks.Engine{},

			wantErr: dataset.LimitExceededError{Msg: "Expected a number of records between 1 and 3, got 4"},
		},
		{
			name: "error - dataset not ready",
			dataset: func() *dataset.Dataset {
				ds := newTestDataset()
				ds.Status = dataset.StatusDraft
				return ds
			}(),
			items:   []*dataset.RecordUpsert{validItem},
			records: &datasetmocks.RecordStore{},
			engine:  &searchmocks.Engine{},

			wantErr: dataset.ConflictError{Msg: "Records cannot be created for a non published dataset `" + testDatasetID.String() + "`"},
		},
		{
			name: "error - id in use in another dataset",
			items: []*dataset.RecordUpsert{
				{ID: &testRecordID, Fields: map[string]any{"text": "hello"}},
				{ID: &testRecordID2, Fields: map[string]any{"text": "hello"}},
			},
			records: &datasetmocks.RecordStore{
				GetRecordDatasetIDsFn: func(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]uuid.UUID, error) {
					require.Equal(t, []uuid.UUID{testRecordID, testRecordID2}, ids)
					return map[uuid.UUID]uuid.UUID{testRecordID2: testOtherDSID}, nil
				},
			},
			engine: &searchmocks.Engine{},

			wantErr: dataset.ConflictError{Msg: "Found records that already exist: " + testRecordID2.String()},
		},
		{
			name:  "error - id in use in the dataset",
			items: []*dataset.RecordUpsert{{ID: &testRecordID, Fields: map[string]any{"text": "hello"}}},
			records: &datasetmocks.RecordStore{
				GetRecordDatasetIDsFn: func(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]uuid.UUID, error) {
					return map[uuid.UUID]uuid.UUID{testRecordID: testDatasetID}, nil
				},
			},
			engine: &searchmocks.Engine{},

			wantErr: dataset.ConflictError{Msg: "Found records that already exist: " + testRecordID.String()},
		},
		{
			name: "error - duplicate external ids",
			items: []*dataset.RecordUpsert{
				{ExternalID: &testExternalID, Fields: map[string]any{"text": "first"}},
				{ExternalID: &testExternalID, Fields: map[string]any{"text": "second"}},
			},
			records: &datasetmocks.RecordStore{},
			engine:  &searchmocks.Engine{},

			wantErr: dataset.ConflictError{Msg: "Found duplicate records external IDs"},
		},
		{
			name:  "error - committing records",
			items: []*dataset.RecordUpsert{validItem},
			records: &datasetmocks.RecordStore{
				CommitRecordsFn: func(ctx context.Context, i uint, batch *dataset.RecordBatch) error {
					return errTest
				},
			},
			engine: &searchmocks.Engine{},

			wantErr:     errTest,
			wantCommits: 1,
		},
		{
			name:  "error - indexing after commit",
			items: []*dataset.RecordUpsert{validItem},
			records: &datasetmocks.RecordStore{
				CommitRecordsFn: func(ctx context.Context, i uint, batch *dataset.RecordBatch) error {
					return nil
				},
			},
			engine: &searchmocks.Engine{
				IndexRecordsFn: func(ctx context.Context, i uint, ds *dataset.Dataset, records []*dataset.Record) error {
					return errTest
				},
			},

			wantResult:  &Result{Records: []*dataset.Record{wantRecord}, Created: 1},
			wantErr:     dataset.BackendUnavailableError{Cause: errTest},
			wantCommits: 1,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			ds := tc.dataset
			if ds == nil {
				ds = newTestDataset()
			}
			c := newTestCoordinator(tc.records, tc.engine)
			result, err := c.Create(context.Background(), ds, tc.items)
			if tc.wantErr != nil {
				require.ErrorIs(t, err, tc.wantErr)
			} else {
				require.NoError(t, err)
			}
			require.Equal(t, tc.wantResult, result)
			require.Equal(t, tc.wantCommits, tc.records.CommitRecordsCalls())
		})
	}
}

func TestCoordinator_Create_aggregatesViolations(t *testing.T) {
	t.Parallel()

	records := &datasetmocks.RecordStore{}
	c := newTestCoordinator(records, &searchmocks.Engine{})
	result, err := c.Create(context.Background(), newTestDataset(), []*dataset.RecordUpsert{
		{Fields: map[string]any{"text": "ok"}, Metadata: map[string]any{"colors": "z"}},
		{Fields: map[string]any{"text": "ok"}},
		{Fields: map[string]any{"text": "ok"}, Vectors: map[string][]float32{"emb": {1}}},
	})
	require.Nil(t, result)
	require.Equal(t, &dataset.SchemaValidationError{Violations: []dataset.Violation{
		{Position: 0, Reason: "metadata is not valid: `colors` metadata property validation failed because `z` is not an allowed term"},
		{Position: 2, Reason: "vector with name `emb` is not valid: vector must have 2 elements, got 1 elements"},
	}}, err)
	require.EqualError(t, err, "Record at position 0 is not valid because metadata is not valid: `colors` metadata property validation failed because `z` is not an allowed term; "+
		"Record at position 2 is not valid because vector with name `emb` is not valid: vector must have 2 elements, got 1 elements")
	require.Zero(t, records.CommitRecordsCalls())
}

func TestCoordinator_Update(t *testing.T) {
	t.Parallel()

	getExisting := func(ctx context.Context, datasetID uuid.UUID, ids []uuid.UUID) ([]*dataset.Record, error) {
		return []*dataset.Record{newTestRecord()}, nil
	}

	tests := []struct {
		name    string
		dataset *dataset.Dataset
		items   []*dataset.RecordUpsert
		records *datasetmocks.RecordStore
		engine  *searchmocks.Engine

		wantResult  func() *Result
		wantErr     error
		wantCommits uint
		wantIndexed uint
	}{
		{
			name: "error - dataset not ready",
			dataset: func() *dataset.Dataset {
				ds := newTestDataset()
				ds.Status = dataset.StatusDraft
				return ds
			}(),
			items:   []*dataset.RecordUpsert{{ID: &testRecordID, Metadata: map[string]any{"colors": "b"}}},
			records: &datasetmocks.RecordStore{},
			engine:  &searchmocks.Engine{},

			wantErr: dataset.ConflictError{Msg: "Records cannot be updated for a non published dataset `" + testDatasetID.String() + "`"},
		},
		{
			name: "error - duplicate record ids",
			items: []*dataset.RecordUpsert{
				{ID: &testRecordID, Metadata: map[string]any{"colors": "b"}},
				{ID: &testRecordID, Metadata: map[string]any{"colors": "c"}},
			},
			records: &datasetmocks.RecordStore{},
			engine:  &searchmocks.Engine{},

			wantErr: dataset.ConflictError{Msg: "Found duplicate records IDs"},
		},
		{
			name: "error - missing records are listed together",
			items: []*dataset.RecordUpsert{
				{ID: &testRecordID, Metadata: map[string]any{"colors": "b"}},
				{ID: &testRecordID2, Metadata: map[string]any{"colors": "c"}},
				{ID: &testGeneratedID, Metadata: map[string]any{"colors": "c"}},
			},
			records: &datasetmocks.RecordStore{GetRecordsByIDsFn: getExisting},
			engine:  &searchmocks.Engine{},

			wantErr: dataset.NotFoundError{Msg: "Found records that do not exist: " + testRecordID2.String() + ", " + testGeneratedID.String()},
		},
		{
			name: "error - duplicate external ids",
			items: []*dataset.RecordUpsert{
				{ID: &testRecordID, ExternalID: &testExternalID},
				{ID: &testRecordID2, ExternalID: &testExternalID},
			},
			records: &datasetmocks.RecordStore{},
			engine:  &searchmocks.Engine{},

			wantErr: dataset.ConflictError{Msg: "Found duplicate records external IDs"},
		},
		{
			name:    "error - missing id",
			items:   []*dataset.RecordUpsert{{Metadata: map[string]any{"colors": "b"}}},
			records: &datasetmocks.RecordStore{},
			engine:  &searchmocks.Engine{},

			wantErr: &dataset.SchemaValidationError{Violations: []dataset.Violation{{Position: 0, Reason: "missing record id"}}},
		},
		{
			name:  "ok - metadata change is reindexed",
			items: []*dataset.RecordUpsert{{ID: &testRecordID, Metadata: map[string]any{"colors": "b"}}},
			records: &datasetmocks.RecordStore{
				GetRecordsByIDsFn: getExisting,
				CommitRecordsFn: func(ctx context.Context, i uint, batch *dataset.RecordBatch) error {
					return nil
				},
			},
			engine: &searchmocks.Engine{
				IndexRecordsFn: func(ctx context.Context, i uint, ds *dataset.Dataset, records []*dataset.Record) error {
					require.Len(t, records, 1)
					require.Equal(t, map[string]any{"colors": "b"}, records[0].Metadata)
					return nil
				},
			},

			wantResult: func() *Result {
				r := newTestRecord()
				r.Metadata = map[string]any{"colors": "b"}
				r.UpdatedAt = testNow
				return &Result{Records: []*dataset.Record{r}, Updated: 1, Indexed: 1}
			},
			wantCommits: 1,
			wantIndexed: 1,
		},
		{
			name: "ok - suggestion only change is not reindexed",
			items: []*dataset.RecordUpsert{{
				ID:          &testRecordID,
				Suggestions: []dataset.SuggestionUpsert{{QuestionID: testSentimentID, Value: "negative"}},
			}},
			records: &datasetmocks.RecordStore{
				GetRecordsByIDsFn: getExisting,
				CommitRecordsFn: func(ctx context.Context, i uint, batch *dataset.RecordBatch) error {
					return nil
				},
			},
			engine: &searchmocks.Engine{},

			wantResult: func() *Result {
				r := newTestRecord()
				r.Suggestions = []dataset.Suggestion{
					{ID: testGeneratedID, RecordID: testRecordID, QuestionID: testSentimentID, Value: "negative", InsertedAt: testNow, UpdatedAt: testNow},
				}
				r.UpdatedAt = testNow
				return &Result{Records: []*dataset.Record{r}, Updated: 1}
			},
			wantCommits: 1,
		},
		{
			name: "ok - vector update replaces value",
			items: []*dataset.RecordUpsert{{
				ID:      &testRecordID,
				Vectors: map[string][]float32{"emb": {3, 4}},
			}},
			records: &datasetmocks.RecordStore{
				GetRecordsByIDsFn: getExisting,
				CommitRecordsFn: func(ctx context.Context, i uint, batch *dataset.RecordBatch) error {
					return nil
				},
			},
			engine: &searchmocks.Engine{
				IndexRecordsFn: func(ctx context.Context, i uint, ds *dataset.Dataset, records []*dataset.Record) error {
					return nil
				},
			},

			wantResult: func() *Result {
				r := newTestRecord()
				r.Vectors[0].Value = []float32{3, 4}
				r.Vectors[0].UpdatedAt = testNow
				r.UpdatedAt = testNow
				return &Result{Records: []*dataset.Record{r}, Updated: 1, Indexed: 1}
			},
			wantCommits: 1,
			wantIndexed: 1,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			ds := tc.dataset
			if ds == nil {
				ds = newTestDataset()
			}
			c := newTestCoordinator(tc.records, tc.engine)
			result, err := c.Update(context.Background(), ds, tc.items)
			require.Equal(t, tc.wantErr, err)
			if tc.wantResult != nil {
				require.Equal(t, tc.wantResult(), result)
			} else {
				require.Nil(t, result)
			}
			require.Equal(t, tc.wantCommits, tc.records.CommitRecordsCalls())
			require.Equal(t, tc.wantIndexed, tc.engine.IndexRecordsCalls())
		})
	}
}

func TestCoordinator_Upsert(t *testing.T) {
	t.Parallel()

	externalID := "ext-1"
	newExternalID := "ext-2"
	existing := newTestRecord()
	existing.ExternalID = &externalID

	records := &datasetmocks.RecordStore{
		GetRecordsByIDsFn: func(ctx context.Context, datasetID uuid.UUID, ids []uuid.UUID) ([]*dataset.Record, error) {
			return nil, errors.New("GetRecordsByIDsFn: should not be called")
		},
		GetRecordsByExternalIDsFn: func(ctx context.Context, datasetID uuid.UUID, externalIDs []string) ([]*dataset.Record, error) {
			require.Equal(t, testDatasetID, datasetID)
			require.Equal(t, []string{externalID, newExternalID}, externalIDs)
			return []*dataset.Record{existing}, nil
		},
		CommitRecordsFn: func(ctx context.Context, i uint, batch *dataset.RecordBatch) error {
			require.Len(t, batch.Created, 1)
			require.Len(t, batch.Updated, 1)
			require.Equal(t, testRecordID, batch.Updated[0].ID)
			return nil
		},
	}
	engine := &searchmocks.Engine{
		IndexRecordsFn: func(ctx context.Context, i uint, ds *dataset.Dataset, records []*dataset.Record) error {
			require.Len(t, records, 2)
			return nil
		},
	}

	c := newTestCoordinator(records, engine)
	result, err := c.Upsert(context.Background(), newTestDataset(), []*dataset.RecordUpsert{
		{ExternalID: &externalID, Fields: map[string]any{"text": "updated"}},
		{ExternalID: &newExternalID, Fields: map[string]any{"text": "new"}},
	})
	require.NoError(t, err)
	require.Equal(t, 1, result.Created)
	require.Equal(t, 1, result.Updated)
	require.Equal(t, 2, result.Indexed)
	require.Equal(t, testRecordID, result.Records[0].ID)
	require.Equal(t, map[string]any{"text": "updated"}, result.Records[0].Fields)
	require.Equal(t, testGeneratedID, result.Records[1].ID)
	require.Equal(t, &newExternalID, result.Records[1].ExternalID)
}

func TestCoordinator_Upsert_conflicts(t *testing.T) {
	t.Parallel()

	existing := newTestRecord()
	existing.ExternalID = &testExternalID

	tests := []struct {
		name    string
		dataset *dataset.Dataset
		items   []*dataset.RecordUpsert
		records *datasetmocks.RecordStore

		wantErr error
	}{
		{
			name: "id of a record in another dataset",
			items: []*dataset.RecordUpsert{
				{ID: &testRecordID2, Fields: map[string]any{"text": "hello"}},
			},
			records: &datasetmocks.RecordStore{
				GetRecordsByIDsFn: func(ctx context.Context, datasetID uuid.UUID, ids []uuid.UUID) ([]*dataset.Record, error) {
					require.Equal(t, testDatasetID, datasetID)
					return []*dataset.Record{}, nil
				},
				GetRecordDatasetIDsFn: func(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]uuid.UUID, error) {
					require.Equal(t, []uuid.UUID{testRecordID2}, ids)
					return map[uuid.UUID]uuid.UUID{testRecordID2: testOtherDSID}, nil
				},
			},

			wantErr: dataset.ConflictError{Msg: "Found records that belong to another dataset: " + testRecordID2.String()},
		},
		{
			name: "duplicate external ids",
			items: []*dataset.RecordUpsert{
				{ExternalID: &testExternalID, Fields: map[string]any{"text": "first"}, Metadata: map[string]any{"colors": "b"}},
				{ExternalID: &testExternalID, Fields: map[string]any{"text": "second"}},
			},
			records: &datasetmocks.RecordStore{},

			wantErr: dataset.ConflictError{Msg: "Found duplicate records external IDs"},
		},
		{
			name: "id and external id resolve to the same record",
			items: []*dataset.RecordUpsert{
				{ID: &testRecordID, Fields: map[string]any{"text": "first"}},
				{ExternalID: &testExternalID, Fields: map[string]any{"text": "second"}},
			},
			records: &datasetmocks.RecordStore{
				GetRecordsByIDsFn: func(ctx context.Context, datasetID uuid.UUID, ids []uuid.UUID) ([]*dataset.Record, error) {
					return []*dataset.Record{existing}, nil
				},
				GetRecordsByExternalIDsFn: func(ctx context.Context, datasetID uuid.UUID, externalIDs []string) ([]*dataset.Record, error) {
					return []*dataset.Record{existing}, nil
				},
			},

			wantErr: dataset.ConflictError{Msg: "Found duplicate records IDs"},
		},
		{
			name: "dataset not ready",
			dataset: func() *dataset.Dataset {
				ds := newTestDataset()
				ds.Status = dataset.StatusDraft
				return ds
			}(),
			items:   []*dataset.RecordUpsert{{Fields: map[string]any{"text": "hello"}}},
			records: &datasetmocks.RecordStore{},

			wantErr: dataset.ConflictError{Msg: "Records cannot be written for a non published dataset `" + testDatasetID.String() + "`"},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			ds := tc.dataset
			if ds == nil {
				ds = newTestDataset()
			}
			c := newTestCoordinator(tc.records, &searchmocks.Engine{})
			result, err := c.Upsert(context.Background(), ds, tc.items)
			require.Equal(t, tc.wantErr, err)
			require.Nil(t, result)
			require.Zero(t, tc.records.CommitRecordsCalls())
		})
	}
}

func TestCoordinator_Upsert_unusedIDIsCreated(t *testing.T) {
	t.Parallel()

	records := &datasetmocks.RecordStore{
		GetRecordsByIDsFn: func(ctx context.Context, datasetID uuid.UUID, ids []uuid.UUID) ([]*dataset.Record, error) {
			return []*dataset.Record{}, nil
		},
		GetRecordDatasetIDsFn: func(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]uuid.UUID, error) {
			require.Equal(t, []uuid.UUID{testRecordID2}, ids)
			return map[uuid.UUID]uuid.UUID{}, nil
		},
		CommitRecordsFn: func(ctx context.Context, i uint, batch *dataset.RecordBatch) error {
			require.Empty(t, batch.Updated)
			require.Len(t, batch.Created, 1)
			require.Equal(t, testRecordID2, batch.Created[0].ID)
			require.Equal(t, testDatasetID, batch.Created[0].DatasetID)
			return nil
		},
	}
	engine := &searchmocks.Engine{
		IndexRecordsFn: func(ctx context.Context, i uint, ds *dataset.Dataset, records []*dataset.Record) error {
			return nil
		},
	}

	c := newTestCoordinator(records, engine)
	result, err := c.Upsert(context.Background(), newTestDataset(), []*dataset.RecordUpsert{
		{ID: &testRecordID2, Fields: map[string]any{"text": "hello"}},
	})
	require.NoError(t, err)
	require.Equal(t, 1, result.Created)
	require.Equal(t, uint(1), records.CommitRecordsCalls())
}

func TestCoordinator_Delete(t *testing.T) {
	t.Parallel()

	errTest := errors.New("oh noes")

	tests := []struct {
		name    string
		ids     []uuid.UUID
		records *datasetmocks.RecordStore
		engine  *searchmocks.Engine

		wantResult *Result
		wantErr    error
	}{
		{
			name: "ok - duplicates removed once",
			ids:  []uuid.UUID{testRecordID, testRecordID},
			records: &datasetmocks.RecordStore{
				GetRecordsByIDsFn: func(ctx context.Context, datasetID uuid.UUID, ids []uuid.UUID) ([]*dataset.Record, error) {
					require.Equal(t, []uuid.UUID{testRecordID}, ids)
					return []*dataset.Record{newTestRecord()}, nil
				},
				DeleteRecordsFn: func(ctx context.Context, datasetID uuid.UUID, ids []uuid.UUID) error {
					require.Equal(t, []uuid.UUID{testRecordID}, ids)
					return nil
				},
			},
			engine: &searchmocks.Engine{
				DeleteRecordsFn: func(ctx context.Context, i uint, ds *dataset.Dataset, ids []uuid.UUID) error {
					require.Equal(t, []uuid.UUID{testRecordID}, ids)
					return nil
				},
			},

			wantResult: &Result{Records: []*dataset.Record{}, Deleted: 1},
		},
		{
			name: "error - record not found",
			ids:  []uuid.UUID{testRecordID2},
			records: &datasetmocks.RecordStore{
				GetRecordsByIDsFn: func(ctx context.Context, datasetID uuid.UUID, ids []uuid.UUID) ([]*dataset.Record, error) {
					return []*dataset.Record{}, nil
				},
			},
			engine: &searchmocks.Engine{},

			wantErr: dataset.NotFoundError{Msg: "Found records that do not exist: " + testRecordID2.String()},
		},
		{
			name: "error - removing from index",
			ids:  []uuid.UUID{testRecordID},
			records: &datasetmocks.RecordStore{
				GetRecordsByIDsFn: func(ctx context.Context, datasetID uuid.UUID, ids []uuid.UUID) ([]*dataset.Record, error) {
					return []*dataset.Record{newTestRecord()}, nil
				},
				DeleteRecordsFn: func(ctx context.Context, datasetID uuid.UUID, ids []uuid.UUID) error {
					return nil
				},
			},
			engine: &searchmocks.Engine{
				DeleteRecordsFn: func(ctx context.Context, i uint, ds *dataset.Dataset, ids []uuid.UUID) error {
					return errTest
				},
			},

			wantResult: &Result{Records: []*dataset.Record{}, Deleted: 1},
			wantErr:    dataset.BackendUnavailableError{Cause: errTest},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			c := newTestCoordinator(tc.records, tc.engine)
			result, err := c.Delete(context.Background(), newTestDataset(), tc.ids)
			require.Equal(t, tc.wantErr, err)
			require.Equal(t, tc.wantResult, result)
		})
	}
}

func TestSearchableContentChanged(t *testing.T) {
	t.Parallel()

	before := newTestRecord()

	tests := []struct {
		name   string
		update func(r *dataset.Record)

		wantChanged bool
	}{
		{
			name:        "unchanged",
			update:      func(r *dataset.Record) { r.UpdatedAt = testNow },
			wantChanged: false,
		},
		{
			name:        "suggestions are ignored",
			update:      func(r *dataset.Record) { r.Suggestions = nil },
			wantChanged: false,
		},
		{
			name: "response status change",
			update: func(r *dataset.Record) {
				r.Responses = []dataset.Response{{UserID: testUserID, Status: dataset.ResponseStatusSubmitted}}
			},
			wantChanged: true,
		},
		{
			name:        "field change",
			update:      func(r *dataset.Record) { r.Fields = map[string]any{"text": "bye"} },
			wantChanged: true,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			after := newTestRecord()
			tc.update(after)
			require.Equal(t, tc.wantChanged, searchableContentChanged(before, after))
		})
	}
}
