// SPDX-License-Identifier: Apache-2.0

package dataset

import (
	"errors"
	"fmt"

	"github.com/mitchellh/mapstructure"
	"github.com/xataio/recordhub/internal/json"
)

const settingsTypeKey = "type"

var ErrUnknownSettingsType = errors.New("unknown settings type")

// DecodeQuestionSettings builds the question settings variant selected by the
// "type" key of the raw settings.
func DecodeQuestionSettings(raw map[string]any) (QuestionSettings, error) {
	t, _ := raw[settingsTypeKey].(string)
	var settings QuestionSettings
	switch QuestionType(t) {
	case QuestionTypeText:
		s := TextQuestionSettings{}
		if err := decodeSettings(raw, &s); err != nil {
			return nil, err
		}
		settings = s
	case QuestionTypeRating:
		s := RatingQuestionSettings{}
		if err := decodeSettings(raw, &s); err != nil {
			return nil, err
		}
		settings = s
	case QuestionTypeLabelSelection:
		s := LabelSelectionQuestionSettings{}
		if err := decodeSettings(raw, &s); err != nil {
			return nil, err
		}
		settings = s
	case QuestionTypeMultiLabelSelection:
		s := MultiLabelSelectionQuestionSettings{}
		if err := decodeSettings(raw, &s); err != nil {
			return nil, err
		}
		settings = s
	case QuestionTypeRanking:
		s := RankingQuestionSettings{}
		if err := decodeSettings(raw, &s); err != nil {
			return nil, err
		}
		settings = s
	case QuestionTypeSpan:
		s := SpanQuestionSettings{}
		if err := decodeSettings(raw, &s); err != nil {
			return nil, err
		}
		settings = s
	default:
		return nil, fmt.Errorf("question settings: %w: %q", ErrUnknownSettingsType, t)
	}
	return settings, nil
}

// DecodeMetadataSettings builds the metadata settings variant selected by the
// "type" key of the raw settings.
func DecodeMetadataSettings(raw map[string]any) (MetadataSettings, error) {
	t, _ := raw[settingsTypeKey].(string)
	switch MetadataPropertyType(t) {
	case MetadataPropertyTypeTerms:
		s := TermsMetadataSettings{}
		if err := decodeSettings(raw, &s); err != nil {
			return nil, err
		}
		return s, nil
	case MetadataPropertyTypeInteger:
		s := IntegerMetadataSettings{}
		if err := decodeSettings(raw, &s); err != nil {
			return nil, err
		}
		return s, nil
	case MetadataPropertyTypeFloat:
		s := FloatMetadataSettings{}
		if err := decodeSettings(raw, &s); err != nil {
			return nil, err
		}
		return s, nil
	default:
		return nil, fmt.Errorf("metadata settings: %w: %q", ErrUnknownSettingsType, t)
	}
}

// EncodeQuestionSettings flattens the settings into a map carrying their
// type, the inverse of DecodeQuestionSettings.
func EncodeQuestionSettings(settings QuestionSettings) (map[string]any, error) {
	return encodeSettings(settings, string(settings.Type()))
}

// EncodeMetadataSettings flattens the settings into a map carrying their
// type, the inverse of DecodeMetadataSettings.
func EncodeMetadataSettings(settings MetadataSettings) (map[string]any, error) {
	return encodeSettings(settings, string(settings.Type()))
}

func encodeSettings(settings any, t string) (map[string]any, error) {
	b, err := json.Marshal(settings)
	if err != nil {
		return nil, err
	}
	raw := map[string]any{}
	if err := json.Unmarshal(b, &raw); err != nil {
		return nil, err
	}
	raw[settingsTypeKey] = t
	return raw, nil
}

func decodeSettings(raw map[string]any, out any) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName: "json",
		Result:  out,
	})
	if err != nil {
		return err
	}
	if err := decoder.Decode(raw); err != nil {
		return fmt.Errorf("decoding settings: %w", err)
	}
	return nil
}

func (q Question) MarshalJSON() ([]byte, error) {
	type plain Question
	var settings map[string]any
	if q.Settings != nil {
		var err error
		if settings, err = EncodeQuestionSettings(q.Settings); err != nil {
			return nil, err
		}
	}
	return json.Marshal(struct {
		plain
		Settings map[string]any `json:"settings"`
	}{plain: plain(q), Settings: settings})
}

func (q *Question) UnmarshalJSON(b []byte) error {
	type plain Question
	aux := struct {
		*plain
		Settings map[string]any `json:"settings"`
	}{plain: (*plain)(q)}
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}
	settings, err := DecodeQuestionSettings(aux.Settings)
	if err != nil {
		return fmt.Errorf("question %q: %w", q.Name, err)
	}
	q.Settings = settings
	return nil
}

func (m MetadataProperty) MarshalJSON() ([]byte, error) {
	type plain MetadataProperty
	var settings map[string]any
	if m.Settings != nil {
		var err error
		if settings, err = EncodeMetadataSettings(m.Settings); err != nil {
			return nil, err
		}
	}
	return json.Marshal(struct {
		plain
		Settings map[string]any `json:"settings"`
	}{plain: plain(m), Settings: settings})
}

func (m *MetadataProperty) UnmarshalJSON(b []byte) error {
	type plain MetadataProperty
	aux := struct {
		*plain
		Settings map[string]any `json:"settings"`
	}{plain: (*plain)(m)}
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}
	settings, err := DecodeMetadataSettings(aux.Settings)
	if err != nil {
		return fmt.Errorf("metadata property %q: %w", m.Name, err)
	}
	m.Settings = settings
	return nil
}
