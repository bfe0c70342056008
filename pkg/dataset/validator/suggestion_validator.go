// SPDX-License-Identifier: Apache-2.0

package validator

import (
	"github.com/google/uuid"
	"github.com/xataio/recordhub/pkg/dataset"
)

func (v *Validator) validateSuggestions(c *collector, suggestions []dataset.SuggestionUpsert, fields map[string]any) {
	seen := make(map[uuid.UUID]struct{}, len(suggestions))
	for i := range suggestions {
		s := &suggestions[i]
		q, found := v.dataset.QuestionByID(s.QuestionID)
		if !found {
			c.add("question with question_id=`%s` does not exist for dataset `%s`", s.QuestionID, v.dataset.ID)
			continue
		}
		if _, dup := seen[s.QuestionID]; dup {
			c.add("found multiple suggestions for the same question_id `%s`", s.QuestionID)
			continue
		}
		seen[s.QuestionID] = struct{}{}

		if err := validateQuestionValue(q, s.Value, fields); err != nil {
			c.add("suggestion for question name=`%s` is not valid: %v", q.Name, err)
			continue
		}
		if err := validateScore(s.Value, s.Score); err != nil {
			c.add("suggestion for question name=`%s` is not valid: %v", q.Name, err)
		}
		if s.Type != nil && *s.Type != dataset.SuggestionTypeModel && *s.Type != dataset.SuggestionTypeHuman {
			c.add("suggestion for question name=`%s` is not valid: type `%s` is not one of [model, human]", q.Name, *s.Type)
		}
	}
}

// validateScore checks the score matches the value shape: a single number for
// single values, a list of the same length for list values.
func validateScore(value, score any) error {
	if score == nil {
		return nil
	}
	values, valueIsList := asList(value)
	scores, scoreIsList := asList(score)
	if valueIsList != scoreIsList {
		return errScoreLenMismatch
	}
	if !scoreIsList {
		return validateScoreValue(score)
	}
	if len(values) != len(scores) {
		return errScoreLenMismatch
	}
	for _, s := range scores {
		if s == nil {
			continue
		}
		if err := validateScoreValue(s); err != nil {
			return err
		}
	}
	return nil
}

func validateScoreValue(score any) error {
	f, ok := asFloat(score)
	if !ok || f < 0 || f > 1 {
		return errScoreOutOfRange
	}
	return nil
}
