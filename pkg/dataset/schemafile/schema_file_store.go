// SPDX-License-Identifier: Apache-2.0

package schemafile

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"
	"github.com/xataio/recordhub/internal/json"
	"github.com/xataio/recordhub/pkg/dataset"
	loglib "github.com/xataio/recordhub/pkg/log"
	"gopkg.in/yaml.v3"
)

// Store keeps one YAML file per dataset, named <dataset-id>.yaml, in a
// directory.
type Store struct {
	logger loglib.Logger
	dir    string
	mutex  sync.Mutex
}

type Config struct {
	Dir string
}

type Option func(*Store)

const fileExtension = ".yaml"

var _ dataset.SchemaStore = (*Store)(nil)

func NewStore(cfg Config, opts ...Option) (*Store, error) {
	if cfg.Dir == "" {
		return nil, errors.New("a schema directory must be provided")
	}
	if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating schema directory: %w", err)
	}

	s := &Store{
		logger: loglib.NewNoopLogger(),
		dir:    cfg.Dir,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

func WithLogger(l loglib.Logger) Option {
	return func(s *Store) {
		s.logger = loglib.NewLogger(l).WithFields(loglib.Fields{
			loglib.ModuleField: "schema_file_store",
		})
	}
}

func (s *Store) GetDataset(_ context.Context, id uuid.UUID) (*dataset.Dataset, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	return ReadFile(s.path(id))
}

// SaveDataset writes the dataset to a temporary file, runs the hook and
// renames the file into place once the hook succeeds.
func (s *Store) SaveDataset(ctx context.Context, ds *dataset.Dataset, hook func(context.Context) error) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	b, err := Marshal(ds)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(s.dir, ds.ID.String()+"-*.tmp")
	if err != nil {
		return fmt.Errorf("creating schema file for dataset %s: %w", ds.ID, err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(b); err != nil {
		tmp.Close()
		return fmt.Errorf("writing schema file for dataset %s: %w", ds.ID, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing schema file for dataset %s: %w", ds.ID, err)
	}

	if hook != nil {
		if err := hook(ctx); err != nil {
			s.logger.Warn(err, "discarding dataset schema write", loglib.Fields{loglib.DatasetIDField: ds.ID.String()})
			return err
		}
	}

	if err := os.Rename(tmp.Name(), s.path(ds.ID)); err != nil {
		return fmt.Errorf("saving schema file for dataset %s: %w", ds.ID, err)
	}
	s.logger.Debug("dataset schema saved", loglib.Fields{loglib.DatasetIDField: ds.ID.String(), "status": string(ds.Status)})
	return nil
}

func (s *Store) DeleteDataset(ctx context.Context, id uuid.UUID, hook func(context.Context) error) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	path := s.path(id)
	if _, err := os.Stat(path); err != nil {
		return mapError(id, err)
	}

	if hook != nil {
		if err := hook(ctx); err != nil {
			return err
		}
	}

	if err := os.Remove(path); err != nil {
		return mapError(id, err)
	}
	return nil
}

func (s *Store) path(id uuid.UUID) string {
	return filepath.Join(s.dir, id.String()+fileExtension)
}

// ReadFile parses the dataset schema YAML file at path.
func ReadFile(path string) (*dataset.Dataset, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, dataset.NotFoundError{Msg: fmt.Sprintf("dataset schema file `%s` not found", path)}
		}
		return nil, fmt.Errorf("reading dataset schema file: %w", err)
	}
	return Unmarshal(b)
}

// Unmarshal decodes a YAML dataset schema. The document goes through the
// JSON codec of the dataset so the tagged question and metadata settings are
// decoded the same way in both formats.
func Unmarshal(b []byte) (*dataset.Dataset, error) {
	ds := &dataset.Dataset{}
	if err := decode(b, ds); err != nil {
		return nil, fmt.Errorf("dataset schema: %w", err)
	}
	if ds.Status == "" {
		ds.Status = dataset.StatusDraft
	}
	return ds, nil
}

// UnmarshalMetadataProperty decodes a YAML or JSON metadata property
// definition.
func UnmarshalMetadataProperty(b []byte) (*dataset.MetadataProperty, error) {
	property := &dataset.MetadataProperty{}
	if err := decode(b, property); err != nil {
		return nil, fmt.Errorf("metadata property: %w", err)
	}
	return property, nil
}

func decode(b []byte, v any) error {
	var raw map[string]any
	if err := yaml.Unmarshal(b, &raw); err != nil {
		return fmt.Errorf("parsing: %w", err)
	}
	jsonBytes, err := json.Marshal(raw)
	if err != nil {
		return fmt.Errorf("converting: %w", err)
	}
	if err := json.Unmarshal(jsonBytes, v); err != nil {
		return fmt.Errorf("decoding: %w", err)
	}
	return nil
}

func Marshal(ds *dataset.Dataset) ([]byte, error) {
	jsonBytes, err := json.Marshal(ds)
	if err != nil {
		return nil, fmt.Errorf("encoding dataset schema: %w", err)
	}
	var raw map[string]any
	if err := json.Unmarshal(jsonBytes, &raw); err != nil {
		return nil, fmt.Errorf("converting dataset schema: %w", err)
	}
	b, err := yaml.Marshal(raw)
	if err != nil {
		return nil, fmt.Errorf("writing dataset schema: %w", err)
	}
	return b, nil
}

func mapError(id uuid.UUID, err error) error {
	if errors.Is(err, fs.ErrNotExist) {
		return dataset.NotFoundError{Msg: fmt.Sprintf("dataset with id `%s` not found", id)}
	}
	return err
}
