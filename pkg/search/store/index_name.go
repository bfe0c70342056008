// SPDX-License-Identifier: Apache-2.0

package store

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/xataio/recordhub/pkg/dataset"
)

type IndexNameAdapter interface {
	DatasetToIndex(ds *dataset.Dataset) IndexName
}

// IndexName is the search index name derived from a dataset id. Names are
// deterministic, so creating the index twice for one dataset collides.
type IndexName interface {
	Name() string
	Version() int
	NameWithVersion() string
	DatasetID() uuid.UUID
}

const defaultIndexPrefix = "ds."

type defaultIndexNameAdapter struct {
	prefix string
}

func newDefaultIndexNameAdapter() IndexNameAdapter {
	return &defaultIndexNameAdapter{prefix: defaultIndexPrefix}
}

func (a *defaultIndexNameAdapter) DatasetToIndex(ds *dataset.Dataset) IndexName {
	return &defaultIndexName{
		prefix:    a.prefix,
		datasetID: ds.ID,
		version:   1,
	}
}

type defaultIndexName struct {
	prefix    string
	datasetID uuid.UUID
	version   int
}

func (i *defaultIndexName) DatasetID() uuid.UUID {
	return i.datasetID
}

// NameWithVersion is the physical index name. The alias returned by Name
// should be used for everything but index creation and deletion.
func (i *defaultIndexName) NameWithVersion() string {
	return fmt.Sprintf("%s-%d", i.Name(), i.version)
}

// Name returns the alias used to query the index.
func (i *defaultIndexName) Name() string {
	return i.prefix + i.datasetID.String()
}

func (i *defaultIndexName) Version() int {
	return i.version
}
