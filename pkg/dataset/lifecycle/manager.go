// SPDX-License-Identifier: Apache-2.0

package lifecycle

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/xataio/recordhub/pkg/dataset"
	loglib "github.com/xataio/recordhub/pkg/log"
	"github.com/xataio/recordhub/pkg/search"
)

// Manager applies dataset schema changes that require a matching change in
// the search index. The index change runs inside the schema write, so a
// failing index change leaves the stored schema untouched.
type Manager struct {
	logger  loglib.Logger
	schemas dataset.SchemaStore
	engine  search.Engine
}

type Option func(*Manager)

var ErrInvalidDimensions = errors.New("vector dimensions must be greater than 0")

func NewManager(schemas dataset.SchemaStore, engine search.Engine, opts ...Option) *Manager {
	m := &Manager{
		logger:  loglib.NewNoopLogger(),
		schemas: schemas,
		engine:  engine,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func WithLogger(l loglib.Logger) Option {
	return func(m *Manager) {
		m.logger = loglib.NewLogger(l).WithFields(loglib.Fields{
			loglib.ModuleField: "dataset_lifecycle",
		})
	}
}

// Publish moves a draft dataset to ready and creates its search index.
func (m *Manager) Publish(ctx context.Context, id uuid.UUID) (*dataset.Dataset, error) {
	ds, err := m.schemas.GetDataset(ctx, id)
	if err != nil {
		return nil, err
	}
	if ds.IsReady() {
		return nil, fmt.Errorf("publishing dataset %s: %w", id, dataset.ErrAlreadyReady)
	}
	if len(ds.Fields) == 0 {
		return nil, fmt.Errorf("publishing dataset %s: %w", id, dataset.ErrNoFields)
	}

	published := *ds
	published.Status = dataset.StatusReady
	if err := m.schemas.SaveDataset(ctx, &published, func(ctx context.Context) error {
		return m.engine.CreateIndex(ctx, &published)
	}); err != nil {
		return nil, err
	}

	m.logger.Info("dataset published", loglib.Fields{loglib.DatasetIDField: id.String(), "dataset_name": ds.Name})
	return &published, nil
}

// AddMetadataProperty adds the property to the dataset schema. On a ready
// dataset the property is also mapped in the search index.
func (m *Manager) AddMetadataProperty(ctx context.Context, id uuid.UUID, property dataset.MetadataProperty) (*dataset.Dataset, error) {
	ds, err := m.schemas.GetDataset(ctx, id)
	if err != nil {
		return nil, err
	}
	if _, found := ds.MetadataPropertyByName(property.Name); found {
		return nil, dataset.ConflictError{Msg: fmt.Sprintf("Metadata property with name `%s` already exists for dataset with id `%s`", property.Name, id)}
	}
	if property.Settings == nil {
		return nil, fmt.Errorf("metadata property `%s`: %w", property.Name, dataset.ErrUnknownSettingsType)
	}
	if property.ID == uuid.Nil {
		property.ID = uuid.New()
	}
	property.DatasetID = ds.ID

	updated := *ds
	updated.MetadataProperties = append(append([]dataset.MetadataProperty{}, ds.MetadataProperties...), property)

	hook := func(ctx context.Context) error {
		if !updated.IsReady() {
			return nil
		}
		return m.engine.ConfigureMetadataProperty(ctx, &updated, &property)
	}
	if err := m.schemas.SaveDataset(ctx, &updated, hook); err != nil {
		return nil, err
	}

	m.logger.Info("metadata property added", loglib.Fields{loglib.DatasetIDField: id.String(), "property": property.Name})
	return &updated, nil
}

// AddVectorSettings adds the vector settings to the dataset schema. On a
// ready dataset the vector is also mapped in the search index.
func (m *Manager) AddVectorSettings(ctx context.Context, id uuid.UUID, settings dataset.VectorSettings) (*dataset.Dataset, error) {
	ds, err := m.schemas.GetDataset(ctx, id)
	if err != nil {
		return nil, err
	}
	if _, found := ds.VectorSettingsByName(settings.Name); found {
		return nil, dataset.ConflictError{Msg: fmt.Sprintf("Vector settings with name `%s` already exists for dataset with id `%s`", settings.Name, id)}
	}
	if settings.Dimensions <= 0 {
		return nil, ErrInvalidDimensions
	}
	if settings.ID == uuid.Nil {
		settings.ID = uuid.New()
	}
	settings.DatasetID = ds.ID

	updated := *ds
	updated.VectorSettings = append(append([]dataset.VectorSettings{}, ds.VectorSettings...), settings)

	hook := func(ctx context.Context) error {
		if !updated.IsReady() {
			return nil
		}
		return m.engine.ConfigureIndexVectors(ctx, &updated)
	}
	if err := m.schemas.SaveDataset(ctx, &updated, hook); err != nil {
		return nil, err
	}

	m.logger.Info("vector settings added", loglib.Fields{loglib.DatasetIDField: id.String(), "vector": settings.Name})
	return &updated, nil
}

// Delete removes the dataset schema and, for a ready dataset, its index.
func (m *Manager) Delete(ctx context.Context, id uuid.UUID) error {
	ds, err := m.schemas.GetDataset(ctx, id)
	if err != nil {
		return err
	}

	hook := func(ctx context.Context) error {
		if !ds.IsReady() {
			return nil
		}
		return m.engine.DeleteIndex(ctx, ds)
	}
	if err := m.schemas.DeleteDataset(ctx, id, hook); err != nil {
		return err
	}

	m.logger.Info("dataset deleted", loglib.Fields{loglib.DatasetIDField: id.String()})
	return nil
}
