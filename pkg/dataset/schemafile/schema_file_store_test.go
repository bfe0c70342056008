// SPDX-License-Identifier: Apache-2.0

package schemafile

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/xataio/recordhub/pkg/dataset"
)

var testDatasetID = uuid.MustParse("8e6f6a37-6b9b-4b4c-9c3a-4d3d0f2f3a11")

const testSchemaYAML = `id: 8e6f6a37-6b9b-4b4c-9c3a-4d3d0f2f3a11
name: reviews
status: draft
allow_extra_metadata: false
fields:
  - id: 3a0c1d7e-1f0a-4a57-9b3e-1d2c3b4a5f61
    name: text
    title: Text
    required: true
    settings:
      type: text
questions:
  - id: 4b1d2e8f-2a1b-4b68-8c4f-2e3d4c5b6a71
    name: sentiment
    title: Sentiment
    required: true
    settings:
      type: label_selection
      options:
        - value: positive
          text: Positive
        - value: negative
          text: Negative
metadata_properties:
  - id: 5c2e3f9a-3b2c-4c79-9d5a-3f4e5d6c7b81
    name: stars
    title: Stars
    visible_for_annotators: true
    settings:
      type: integer
      min: 1
      max: 5
vectors_settings:
  - id: 6d3f4a0b-4c3d-4d8a-8e6b-4a5f6e7d8c91
    name: emb
    title: Embedding
    dimensions: 3
`

func TestUnmarshal(t *testing.T) {
	t.Parallel()

	ds, err := Unmarshal([]byte(testSchemaYAML))
	require.NoError(t, err)

	min, max := int64(1), int64(5)
	require.Equal(t, testDatasetID, ds.ID)
	require.Equal(t, dataset.StatusDraft, ds.Status)
	require.Len(t, ds.Fields, 1)
	require.Equal(t, dataset.FieldTypeText, ds.Fields[0].Settings.Type)
	require.Len(t, ds.Questions, 1)
	require.Equal(t, dataset.LabelSelectionQuestionSettings{
		Options: []dataset.Option{
			{Value: "positive", Text: "Positive"},
			{Value: "negative", Text: "Negative"},
		},
	}, ds.Questions[0].Settings)
	require.Equal(t, dataset.IntegerMetadataSettings{Min: &min, Max: &max}, ds.MetadataProperties[0].Settings)
	require.Equal(t, 3, ds.VectorSettings[0].Dimensions)
}

func TestUnmarshal_errors(t *testing.T) {
	t.Parallel()

	_, err := Unmarshal([]byte("id: [not"))
	require.Error(t, err)

	_, err = Unmarshal([]byte(`questions:
  - name: q
    settings:
      type: unknown
`))
	require.ErrorIs(t, err, dataset.ErrUnknownSettingsType)
}

func TestStore_SaveDataset(t *testing.T) {
	t.Parallel()

	ds, err := Unmarshal([]byte(testSchemaYAML))
	require.NoError(t, err)

	errTest := errors.New("oh noes")

	tests := []struct {
		name string
		hook func(context.Context) error

		wantSaved bool
		wantErr   error
	}{
		{
			name:      "ok - no hook",
			wantSaved: true,
		},
		{
			name:      "ok - hook",
			hook:      func(context.Context) error { return nil },
			wantSaved: true,
		},
		{
			name:      "error - hook fails",
			hook:      func(context.Context) error { return errTest },
			wantSaved: false,
			wantErr:   errTest,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			dir := t.TempDir()
			s, err := NewStore(Config{Dir: dir})
			require.NoError(t, err)

			err = s.SaveDataset(context.Background(), ds, tc.hook)
			require.ErrorIs(t, err, tc.wantErr)

			got, err := s.GetDataset(context.Background(), ds.ID)
			if !tc.wantSaved {
				require.ErrorAs(t, err, &dataset.NotFoundError{})
				return
			}
			require.NoError(t, err)
			require.Equal(t, ds, got)

			// no temporary files are left behind
			entries, err := os.ReadDir(dir)
			require.NoError(t, err)
			require.Len(t, entries, 1)
			require.Equal(t, ds.ID.String()+".yaml", entries[0].Name())
		})
	}
}

func TestStore_DeleteDataset(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	s, err := NewStore(Config{Dir: dir})
	require.NoError(t, err)

	err = s.DeleteDataset(context.Background(), testDatasetID, nil)
	require.ErrorAs(t, err, &dataset.NotFoundError{})

	require.NoError(t, os.WriteFile(filepath.Join(dir, testDatasetID.String()+".yaml"), []byte(testSchemaYAML), 0o600))

	errTest := errors.New("oh noes")
	err = s.DeleteDataset(context.Background(), testDatasetID, func(context.Context) error { return errTest })
	require.ErrorIs(t, err, errTest)
	_, err = s.GetDataset(context.Background(), testDatasetID)
	require.NoError(t, err)

	require.NoError(t, s.DeleteDataset(context.Background(), testDatasetID, nil))
	_, err = s.GetDataset(context.Background(), testDatasetID)
	require.ErrorAs(t, err, &dataset.NotFoundError{})
}

func TestNewStore_noDir(t *testing.T) {
	t.Parallel()

	_, err := NewStore(Config{})
	require.Error(t, err)
}

func TestUnmarshalMetadataProperty(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string

		wantSettings dataset.MetadataSettings
		wantErr      error
	}{
		{
			name: "ok - yaml",
			input: `name: genre
title: Genre
settings:
  type: terms
  values: [rock, jazz]
`,
			wantSettings: dataset.TermsMetadataSettings{Values: []string{"rock", "jazz"}},
		},
		{
			name:         "ok - json",
			input:        `{"name": "genre", "title": "Genre", "settings": {"type": "terms", "values": ["rock"]}}`,
			wantSettings: dataset.TermsMetadataSettings{Values: []string{"rock"}},
		},
		{
			name:    "error - unknown settings type",
			input:   `{"name": "genre", "settings": {"type": "date"}}`,
			wantErr: dataset.ErrUnknownSettingsType,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			property, err := UnmarshalMetadataProperty([]byte(tc.input))
			if tc.wantErr != nil {
				require.ErrorIs(t, err, tc.wantErr)
				return
			}
			require.NoError(t, err)
			require.Equal(t, "genre", property.Name)
			require.Equal(t, tc.wantSettings, property.Settings)
		})
	}
}
