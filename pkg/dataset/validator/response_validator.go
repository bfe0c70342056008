// SPDX-License-Identifier: Apache-2.0

package validator

import (
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/xataio/recordhub/pkg/dataset"
)

func (v *Validator) validateResponses(c *collector, responses []dataset.ResponseUpsert, fields map[string]any) {
	seen := make(map[uuid.UUID]struct{}, len(responses))
	for _, r := range responses {
		if _, dup := seen[r.UserID]; dup {
			c.add("found multiple responses for the same user_id `%s`", r.UserID)
			continue
		}
		seen[r.UserID] = struct{}{}
		v.validateResponse(c, &r, fields)
	}
}

func (v *Validator) validateResponse(c *collector, r *dataset.ResponseUpsert, fields map[string]any) {
	if !r.Status.IsValid() {
		c.add("response for user_id=`%s` is not valid: status `%s` is not one of [submitted, discarded, draft]", r.UserID, r.Status)
		return
	}

	if r.Status == dataset.ResponseStatusSubmitted {
		if len(r.Values) == 0 {
			c.add("response for user_id=`%s` is not valid: missing response values for submitted response", r.UserID)
			return
		}
		for i := range v.dataset.Questions {
			q := &v.dataset.Questions[i]
			if _, found := r.Values[q.Name]; q.Required && !found {
				c.add("response for user_id=`%s` is not valid: missing response value for required question with name `%s`", r.UserID, q.Name)
			}
		}
	}

	unknown := []string{}
	names := make([]string, 0, len(r.Values))
	for name := range r.Values {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		q, found := v.dataset.QuestionByName(name)
		if !found {
			unknown = append(unknown, "`"+name+"`")
			continue
		}
		if err := validateQuestionValue(q, r.Values[name].Value, fields); err != nil {
			c.add("response for user_id=`%s` is not valid: value for question `%s` is not valid: %v", r.UserID, name, err)
		}
	}
	if len(unknown) > 0 {
		c.add("response for user_id=`%s` is not valid: found responses for non configured questions: [%s]", r.UserID, strings.Join(unknown, ", "))
	}
}
