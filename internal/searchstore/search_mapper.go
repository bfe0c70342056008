// SPDX-License-Identifier: Apache-2.0

package searchstore

// Mapper holds the backend specific leaves of the index mapping and of the
// query DSL. Everything else is shared between backends.
type Mapper interface {
	IndexSettings(*IndexSettings) map[string]any
	FieldMapping(*Field) (map[string]any, error)
	KNNQuery(*KNNRequest) *QueryBody
}

type IndexSettings struct {
	NumberOfShards   int
	NumberOfReplicas int
	MaxResultWindow  int
	// KNNEnabled is only honoured by backends that require vector search to
	// be enabled per index.
	KNNEnabled bool
}

type Field struct {
	SearchType Type
	Metadata   Metadata
}

type Metadata struct {
	VectorDimension int
}

type Type uint

const (
	KeywordType Type = iota
	IntegerType
	FloatType
	TextType
	TimestampType
	VectorType
)
