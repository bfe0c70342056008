// SPDX-License-Identifier: Apache-2.0

package validator

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/xataio/recordhub/pkg/dataset"
)

// validateQuestionValue type checks an answer against the question settings.
// The record fields are needed to bound span offsets.
func validateQuestionValue(q *dataset.Question, value any, fields map[string]any) error {
	if value == nil {
		return errEmptyValue
	}

	switch settings := q.Settings.(type) {
	case dataset.TextQuestionSettings:
		s, ok := value.(string)
		if !ok {
			return fmt.Errorf("text question expects a string value, found `%v`", value)
		}
		if s == "" {
			return errEmptyValue
		}
	case dataset.RatingQuestionSettings:
		return validateRating(settings, value)
	case dataset.LabelSelectionQuestionSettings:
		label, ok := value.(string)
		if !ok {
			return fmt.Errorf("label selection question expects a string value, found `%v`", value)
		}
		if !containsString(q.OptionValues(), label) {
			return fmt.Errorf("`%s` is not a valid label for label selection question, valid labels are: [%s]", label, strings.Join(q.OptionValues(), ", "))
		}
	case dataset.MultiLabelSelectionQuestionSettings:
		return validateMultiLabel(q.OptionValues(), value)
	case dataset.RankingQuestionSettings:
		return validateRanking(q.OptionValues(), value)
	case dataset.SpanQuestionSettings:
		return validateSpans(settings, value, fields)
	default:
		return fmt.Errorf("unsupported question type `%s`", q.Type())
	}
	return nil
}

func validateRating(settings dataset.RatingQuestionSettings, value any) error {
	n, ok := asInt(value)
	if !ok {
		return fmt.Errorf("rating question expects an integer value, found `%v`", value)
	}
	valid := make([]string, 0, len(settings.Options))
	for _, o := range settings.Options {
		if int64(o.Value) == n {
			return nil
		}
		valid = append(valid, fmt.Sprint(o.Value))
	}
	return fmt.Errorf("`%d` is not a valid rating for rating question, valid ratings are: [%s]", n, strings.Join(valid, ", "))
}

func validateMultiLabel(options []string, value any) error {
	labels, ok := asStrings(value)
	if !ok {
		return fmt.Errorf("multi label selection question expects a list of strings, found `%v`", value)
	}
	if len(labels) == 0 {
		return errEmptyValue
	}
	seen := make(map[string]struct{}, len(labels))
	for _, l := range labels {
		if !containsString(options, l) {
			return fmt.Errorf("`%s` is not a valid label for multi label selection question, valid labels are: [%s]", l, strings.Join(options, ", "))
		}
		if _, dup := seen[l]; dup {
			return fmt.Errorf("multi label selection question value contains duplicated label `%s`", l)
		}
		seen[l] = struct{}{}
	}
	return nil
}

func validateRanking(options []string, value any) error {
	items, ok := asList(value)
	if !ok || len(items) == 0 {
		return fmt.Errorf("ranking question expects a non empty list of `{value, rank}` items, found `%v`", value)
	}
	seen := make(map[string]struct{}, len(items))
	for i, item := range items {
		m, ok := item.(map[string]any)
		if !ok {
			return fmt.Errorf("ranking item at index idx=%d is not an object", i)
		}
		v, ok := m["value"].(string)
		if !ok {
			return fmt.Errorf("ranking item at index idx=%d has no string value", i)
		}
		if !containsString(options, v) {
			return fmt.Errorf("`%s` is not a valid value for ranking question, valid values are: [%s]", v, strings.Join(options, ", "))
		}
		if _, dup := seen[v]; dup {
			return fmt.Errorf("ranking question value contains duplicated value `%s`", v)
		}
		seen[v] = struct{}{}

		rank, present := m["rank"]
		if !present || rank == nil {
			continue
		}
		r, ok := asInt(rank)
		if !ok || r < 1 || r > int64(len(options)) {
			return fmt.Errorf("rank `%v` for value `%s` is not valid, ranks must be integers between 1 and %d", rank, v, len(options))
		}
	}
	return nil
}

type span struct {
	start int64
	end   int64
	label string
}

func (s span) overlaps(o span) bool {
	return s.start < o.end && o.start < s.end
}

func validateSpans(settings dataset.SpanQuestionSettings, value any, fields map[string]any) error {
	items, ok := asList(value)
	if !ok {
		return fmt.Errorf("span question expects a list of `{start, end, label}` items, found `%v`", value)
	}
	text, ok := fields[settings.Field].(string)
	if !ok {
		return fmt.Errorf("span question requires record to have a text value for field `%s`", settings.Field)
	}
	textLen := int64(utf8.RuneCountInString(text))
	labels := make([]string, 0, len(settings.Options))
	for _, o := range settings.Options {
		labels = append(labels, o.Value)
	}

	spans := make([]span, 0, len(items))
	for i, item := range items {
		s, err := parseSpan(i, item)
		if err != nil {
			return err
		}
		if s.start < 0 {
			return fmt.Errorf("span at index idx=%d has invalid start `%d`, start must be greater or equal than 0", i, s.start)
		}
		if s.end <= s.start {
			return fmt.Errorf("span at index idx=%d has invalid end `%d`, end must be greater than start `%d`", i, s.end, s.start)
		}
		if s.end > textLen {
			return fmt.Errorf("span at index idx=%d has invalid end `%d`, end must be lower or equal than field `%s` length `%d`", i, s.end, settings.Field, textLen)
		}
		if !containsString(labels, s.label) {
			return fmt.Errorf("span at index idx=%d has invalid label `%s`, valid labels are: [%s]", i, s.label, strings.Join(labels, ", "))
		}
		spans = append(spans, s)
	}

	if settings.AllowOverlapping {
		return nil
	}
	if i, j, found := firstOverlap(spans); found {
		return fmt.Errorf("overlapping values found between spans at index idx=%d and idx=%d", i, j)
	}
	return nil
}

// firstOverlap returns the first overlapping pair of spans in input order.
func firstOverlap(spans []span) (int, int, bool) {
	for i := range spans {
		for j := i + 1; j < len(spans); j++ {
			if spans[i].overlaps(spans[j]) {
				return i, j, true
			}
		}
	}
	return 0, 0, false
}

func parseSpan(idx int, item any) (span, error) {
	m, ok := item.(map[string]any)
	if !ok {
		return span{}, fmt.Errorf("span at index idx=%d is not an object", idx)
	}
	start, ok := asInt(m["start"])
	if !ok {
		return span{}, fmt.Errorf("span at index idx=%d has no integer start", idx)
	}
	end, ok := asInt(m["end"])
	if !ok {
		return span{}, fmt.Errorf("span at index idx=%d has no integer end", idx)
	}
	label, ok := m["label"].(string)
	if !ok {
		return span{}, fmt.Errorf("span at index idx=%d has no string label", idx)
	}
	return span{start: start, end: end, label: label}, nil
}

func containsString(values []string, s string) bool {
	for _, v := range values {
		if v == s {
			return true
		}
	}
	return false
}
