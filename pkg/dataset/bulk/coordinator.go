// SPDX-License-Identifier: Apache-2.0

package bulk

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/xataio/recordhub/pkg/dataset"
	"github.com/xataio/recordhub/pkg/dataset/validator"
	loglib "github.com/xataio/recordhub/pkg/log"
	"github.com/xataio/recordhub/pkg/search"
)

// Coordinator runs bulk record ingestion for a dataset. A batch is validated
// as a whole, committed relationally in one transaction and then indexed in
// the search engine. Indexing happens after the commit and is not rolled back
// on failure.
type Coordinator struct {
	logger  loglib.Logger
	records dataset.RecordStore
	engine  search.Engine
	clock   clockwork.Clock
	newID   func() uuid.UUID

	minItems int
	maxItems int
}

type Config struct {
	MinItems int
	MaxItems int
}

// Result holds the records written by a batch, in input order.
type Result struct {
	Records []*dataset.Record
	Created int
	Updated int
	Deleted int
	// Indexed is the number of records sent to the search engine. Records
	// whose searchable content did not change are not reindexed.
	Indexed int
}

type Option func(*Coordinator)

const (
	defaultMinItems = 1
	defaultMaxItems = 500
)

func NewCoordinator(records dataset.RecordStore, engine search.Engine, cfg Config, opts ...Option) *Coordinator {
	c := &Coordinator{
		logger:   loglib.NewNoopLogger(),
		records:  records,
		engine:   engine,
		clock:    clockwork.NewRealClock(),
		newID:    uuid.New,
		minItems: cfg.minItems(),
		maxItems: cfg.maxItems(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

func WithLogger(l loglib.Logger) Option {
	return func(c *Coordinator) {
		c.logger = loglib.NewLogger(l).WithFields(loglib.Fields{
			loglib.ModuleField: "bulk_coordinator",
		})
	}
}

func WithClock(clock clockwork.Clock) Option {
	return func(c *Coordinator) {
		c.clock = clock
	}
}

func WithIDGenerator(fn func() uuid.UUID) Option {
	return func(c *Coordinator) {
		c.newID = fn
	}
}

func (c Config) minItems() int {
	if c.MinItems > 0 {
		return c.MinItems
	}
	return defaultMinItems
}

func (c Config) maxItems() int {
	if c.MaxItems > 0 {
		return c.MaxItems
	}
	return defaultMaxItems
}

// Create inserts a new record per item. Items with an id keep it, and the id
// must not be in use by any record.
func (c *Coordinator) Create(ctx context.Context, ds *dataset.Dataset, items []*dataset.RecordUpsert) (*Result, error) {
	if err := c.checkBatch(ds, len(items), "created"); err != nil {
		return nil, err
	}
	if err := checkDuplicates(items, false); err != nil {
		return nil, err
	}

	ids := []uuid.UUID{}
	for _, item := range items {
		if item.ID != nil {
			ids = append(ids, *item.ID)
		}
	}
	owners, err := c.recordDatasets(ctx, ids)
	if err != nil {
		return nil, err
	}
	if len(owners) > 0 {
		existing := []string{}
		for _, id := range ids {
			if _, found := owners[id]; found {
				existing = append(existing, id.String())
			}
		}
		return nil, dataset.ConflictError{Msg: fmt.Sprintf("Found records that already exist: %s", strings.Join(existing, ", "))}
	}

	return c.apply(ctx, ds, items, make([]*dataset.Record, len(items)))
}

// Update modifies existing records, resolved by id. Every id must exist in
// the dataset.
func (c *Coordinator) Update(ctx context.Context, ds *dataset.Dataset, items []*dataset.RecordUpsert) (*Result, error) {
	if err := c.checkBatch(ds, len(items), "updated"); err != nil {
		return nil, err
	}
	if err := checkDuplicates(items, true); err != nil {
		return nil, err
	}

	ids := make([]uuid.UUID, 0, len(items))
	for _, item := range items {
		ids = append(ids, *item.ID)
	}
	existing, err := c.recordsByID(ctx, ds, ids)
	if err != nil {
		return nil, err
	}

	matched := make([]*dataset.Record, len(items))
	missing := []string{}
	for i, item := range items {
		r, found := existing[*item.ID]
		if !found {
			missing = append(missing, item.ID.String())
			continue
		}
		matched[i] = r
	}
	if len(missing) > 0 {
		return nil, dataset.NotFoundError{Msg: fmt.Sprintf("Found records that do not exist: %s", strings.Join(missing, ", "))}
	}

	return c.apply(ctx, ds, items, matched)
}

// Upsert updates the items that resolve to an existing record, by id or else
// by external id, and creates the rest. An id used by a record of another
// dataset is a conflict.
func (c *Coordinator) Upsert(ctx context.Context, ds *dataset.Dataset, items []*dataset.RecordUpsert) (*Result, error) {
	if err := c.checkBatch(ds, len(items), "written"); err != nil {
		return nil, err
	}
	if err := checkDuplicates(items, false); err != nil {
		return nil, err
	}

	ids := []uuid.UUID{}
	externalIDs := []string{}
	for _, item := range items {
		switch {
		case item.ID != nil:
			ids = append(ids, *item.ID)
		case item.ExternalID != nil:
			externalIDs = append(externalIDs, *item.ExternalID)
		}
	}

	byID, err := c.recordsByID(ctx, ds, ids)
	if err != nil {
		return nil, err
	}
	byExternalID := map[string]*dataset.Record{}
	if len(externalIDs) > 0 {
		records, err := c.records.GetRecordsByExternalIDs(ctx, ds.ID, externalIDs)
		if err != nil {
			return nil, fmt.Errorf("resolving records by external id: %w", err)
		}
		for _, r := range records {
			if r.ExternalID != nil {
				byExternalID[*r.ExternalID] = r
			}
		}
	}

	unresolved := []uuid.UUID{}
	for _, id := range ids {
		if _, found := byID[id]; !found {
			unresolved = append(unresolved, id)
		}
	}
	owners, err := c.recordDatasets(ctx, unresolved)
	if err != nil {
		return nil, err
	}
	if len(owners) > 0 {
		foreign := []string{}
		for _, id := range unresolved {
			if _, found := owners[id]; found {
				foreign = append(foreign, id.String())
			}
		}
		return nil, dataset.ConflictError{Msg: fmt.Sprintf("Found records that belong to another dataset: %s", strings.Join(foreign, ", "))}
	}

	matched := make([]*dataset.Record, len(items))
	seen := make(map[uuid.UUID]struct{}, len(items))
	for i, item := range items {
		switch {
		case item.ID != nil:
			matched[i] = byID[*item.ID]
		case item.ExternalID != nil:
			matched[i] = byExternalID[*item.ExternalID]
		}
		if matched[i] == nil {
			continue
		}
		// an id and an external id of two items can resolve to the same record
		if _, found := seen[matched[i].ID]; found {
			return nil, dataset.ConflictError{Msg: "Found duplicate records IDs"}
		}
		seen[matched[i].ID] = struct{}{}
	}

	return c.apply(ctx, ds, items, matched)
}

// Delete removes the records from the relational store and then from the
// search index.
func (c *Coordinator) Delete(ctx context.Context, ds *dataset.Dataset, ids []uuid.UUID) (*Result, error) {
	if err := c.checkBatchSize(len(ids)); err != nil {
		return nil, err
	}

	unique := make([]uuid.UUID, 0, len(ids))
	seen := make(map[uuid.UUID]struct{}, len(ids))
	for _, id := range ids {
		if _, found := seen[id]; found {
			continue
		}
		seen[id] = struct{}{}
		unique = append(unique, id)
	}

	existing, err := c.recordsByID(ctx, ds, unique)
	if err != nil {
		return nil, err
	}
	missing := []string{}
	for _, id := range unique {
		if _, found := existing[id]; !found {
			missing = append(missing, id.String())
		}
	}
	if len(missing) > 0 {
		return nil, dataset.NotFoundError{Msg: fmt.Sprintf("Found records that do not exist: %s", strings.Join(missing, ", "))}
	}

	if err := c.records.DeleteRecords(ctx, ds.ID, unique); err != nil {
		return nil, fmt.Errorf("deleting records: %w", err)
	}

	result := &Result{Records: []*dataset.Record{}, Deleted: len(unique)}
	if err := c.engine.DeleteRecords(ctx, ds, unique); err != nil {
		c.logger.Error(err, "removing deleted records from search index", loglib.Fields{
			loglib.DatasetIDField: ds.ID.String(),
			loglib.RecordsField:   len(unique),
		})
		return result, dataset.BackendUnavailableError{Cause: err}
	}
	return result, nil
}

// apply validates every item against its matched record (nil for creates),
// commits the batch and indexes the records whose searchable content
// changed.
func (c *Coordinator) apply(ctx context.Context, ds *dataset.Dataset, items []*dataset.RecordUpsert, matched []*dataset.Record) (*Result, error) {
	v := validator.New(ds)
	violations := []dataset.Violation{}
	for i, item := range items {
		violations = append(violations, v.Validate(i, item, matched[i])...)
	}
	if len(violations) > 0 {
		return nil, &dataset.SchemaValidationError{Violations: violations}
	}

	now := c.clock.Now().UTC()
	builder := &recordBuilder{dataset: ds, now: now, newID: c.newID}

	result := &Result{Records: make([]*dataset.Record, 0, len(items))}
	batch := &dataset.RecordBatch{}
	toIndex := []*dataset.Record{}
	for i, item := range items {
		if matched[i] == nil {
			r := builder.create(item)
			result.Records = append(result.Records, r)
			result.Created++
			batch.Created = append(batch.Created, r)
			toIndex = append(toIndex, r)
			continue
		}

		r := builder.update(matched[i], item)
		result.Records = append(result.Records, r)
		result.Updated++
		batch.Updated = append(batch.Updated, r)
		if searchableContentChanged(matched[i], r) {
			toIndex = append(toIndex, r)
		}
	}

	if err := c.records.CommitRecords(ctx, batch); err != nil {
		return nil, fmt.Errorf("committing records: %w", err)
	}

	if len(toIndex) == 0 {
		return result, nil
	}
	if err := c.engine.IndexRecords(ctx, ds, toIndex); err != nil {
		c.logger.Error(err, "indexing committed records", loglib.Fields{
			loglib.DatasetIDField: ds.ID.String(),
			loglib.RecordsField:   len(toIndex),
		})
		return result, dataset.BackendUnavailableError{Cause: err}
	}
	result.Indexed = len(toIndex)

	c.logger.Debug("bulk ingestion completed", loglib.Fields{
		loglib.DatasetIDField: ds.ID.String(),
		"created":             result.Created,
		"updated":             result.Updated,
		"indexed":             result.Indexed,
	})
	return result, nil
}

// checkBatch validates the batch bounds and the dataset status. The action
// names the write in the error, e.g. created.
func (c *Coordinator) checkBatch(ds *dataset.Dataset, n int, action string) error {
	if err := c.checkBatchSize(n); err != nil {
		return err
	}
	if !ds.IsReady() {
		return dataset.ConflictError{Msg: fmt.Sprintf("Records cannot be %s for a non published dataset `%s`", action, ds.ID)}
	}
	return nil
}

func (c *Coordinator) checkBatchSize(n int) error {
	if n < c.minItems || n > c.maxItems {
		return dataset.LimitExceededError{Msg: fmt.Sprintf("Expected a number of records between %d and %d, got %d", c.minItems, c.maxItems, n)}
	}
	return nil
}

func (c *Coordinator) recordsByID(ctx context.Context, ds *dataset.Dataset, ids []uuid.UUID) (map[uuid.UUID]*dataset.Record, error) {
	byID := make(map[uuid.UUID]*dataset.Record, len(ids))
	if len(ids) == 0 {
		return byID, nil
	}
	records, err := c.records.GetRecordsByIDs(ctx, ds.ID, ids)
	if err != nil {
		return nil, fmt.Errorf("resolving records by id: %w", err)
	}
	for _, r := range records {
		if r.DatasetID == ds.ID {
			byID[r.ID] = r
		}
	}
	return byID, nil
}

func (c *Coordinator) recordDatasets(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]uuid.UUID, error) {
	if len(ids) == 0 {
		return map[uuid.UUID]uuid.UUID{}, nil
	}
	owners, err := c.records.GetRecordDatasetIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("resolving record datasets: %w", err)
	}
	return owners, nil
}

// checkDuplicates rejects batches that reference the same record twice, by
// id or by external id. When idRequired is set, every item must carry an id.
func checkDuplicates(items []*dataset.RecordUpsert, idRequired bool) error {
	ids := make(map[uuid.UUID]struct{}, len(items))
	externalIDs := make(map[string]struct{}, len(items))
	violations := []dataset.Violation{}
	for i, item := range items {
		if item.ExternalID != nil {
			if _, found := externalIDs[*item.ExternalID]; found {
				return dataset.ConflictError{Msg: "Found duplicate records external IDs"}
			}
			externalIDs[*item.ExternalID] = struct{}{}
		}

		if item.ID == nil {
			if idRequired {
				violations = append(violations, dataset.Violation{Position: i, Reason: "missing record id"})
			}
			continue
		}
		if _, found := ids[*item.ID]; found {
			return dataset.ConflictError{Msg: "Found duplicate records IDs"}
		}
		ids[*item.ID] = struct{}{}
	}
	if len(violations) > 0 {
		return &dataset.SchemaValidationError{Violations: violations}
	}
	return nil
}
