// SPDX-License-Identifier: Apache-2.0

package dataset

import (
	"github.com/google/uuid"
)

// Question is a typed annotation prompt presented to annotators and
// suggesters.
type Question struct {
	ID       uuid.UUID        `json:"id" yaml:"id"`
	Name     string           `json:"name" yaml:"name"`
	Title    string           `json:"title" yaml:"title"`
	Required bool             `json:"required" yaml:"required"`
	Settings QuestionSettings `json:"settings" yaml:"-"`
}

type QuestionType string

const (
	QuestionTypeText                QuestionType = "text"
	QuestionTypeRating              QuestionType = "rating"
	QuestionTypeLabelSelection      QuestionType = "label_selection"
	QuestionTypeMultiLabelSelection QuestionType = "multi_label_selection"
	QuestionTypeRanking             QuestionType = "ranking"
	QuestionTypeSpan                QuestionType = "span"
)

// QuestionSettings is implemented by one settings struct per question type.
type QuestionSettings interface {
	Type() QuestionType
}

type TextQuestionSettings struct {
	UseMarkdown bool `json:"use_markdown" yaml:"use_markdown"`
}

type RatingOption struct {
	Value int `json:"value" yaml:"value"`
}

type RatingQuestionSettings struct {
	Options []RatingOption `json:"options" yaml:"options"`
}

type Option struct {
	Value       string `json:"value" yaml:"value"`
	Text        string `json:"text" yaml:"text"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
}

type LabelSelectionQuestionSettings struct {
	Options []Option `json:"options" yaml:"options"`
}

type MultiLabelSelectionQuestionSettings struct {
	Options []Option `json:"options" yaml:"options"`
}

type RankingQuestionSettings struct {
	Options []Option `json:"options" yaml:"options"`
}

type SpanQuestionSettings struct {
	// Field is the name of the text field the spans point into.
	Field            string   `json:"field" yaml:"field"`
	Options          []Option `json:"options" yaml:"options"`
	AllowOverlapping bool     `json:"allow_overlapping" yaml:"allow_overlapping"`
}

func (TextQuestionSettings) Type() QuestionType           { return QuestionTypeText }
func (RatingQuestionSettings) Type() QuestionType         { return QuestionTypeRating }
func (LabelSelectionQuestionSettings) Type() QuestionType { return QuestionTypeLabelSelection }
func (MultiLabelSelectionQuestionSettings) Type() QuestionType {
	return QuestionTypeMultiLabelSelection
}
func (RankingQuestionSettings) Type() QuestionType { return QuestionTypeRanking }
func (SpanQuestionSettings) Type() QuestionType    { return QuestionTypeSpan }

func (q *Question) Type() QuestionType {
	if q.Settings == nil {
		return ""
	}
	return q.Settings.Type()
}

// OptionValues returns the declared option values for the question types that
// carry a string option set, or nil otherwise.
func (q *Question) OptionValues() []string {
	var opts []Option
	switch s := q.Settings.(type) {
	case LabelSelectionQuestionSettings:
		opts = s.Options
	case MultiLabelSelectionQuestionSettings:
		opts = s.Options
	case RankingQuestionSettings:
		opts = s.Options
	case SpanQuestionSettings:
		opts = s.Options
	default:
		return nil
	}
	values := make([]string, 0, len(opts))
	for _, o := range opts {
		values = append(values, o.Value)
	}
	return values
}
