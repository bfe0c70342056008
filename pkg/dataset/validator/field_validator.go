// SPDX-License-Identifier: Apache-2.0

package validator

import (
	"sort"
	"strings"

	"github.com/xataio/recordhub/pkg/dataset"
)

func (v *Validator) validateFields(c *collector, fields map[string]any) {
	for i := range v.dataset.Fields {
		field := &v.dataset.Fields[i]
		value, found := fields[field.Name]
		if !found || value == nil {
			if field.Required {
				c.add("missing required value for field: `%s`", field.Name)
			}
			continue
		}
		if reason, ok := validateFieldValue(field, value); !ok {
			c.add("%s", reason)
		}
	}

	unknown := []string{}
	for name := range fields {
		if _, found := v.dataset.FieldByName(name); !found {
			unknown = append(unknown, "`"+name+"`")
		}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		c.add("found fields values for non configured fields: [%s]", strings.Join(unknown, ", "))
	}
}

func validateFieldValue(field *dataset.Field, value any) (string, bool) {
	switch field.Settings.Type {
	case dataset.FieldTypeText, dataset.FieldTypeImage:
		if _, ok := value.(string); !ok {
			return "wrong value found for field `" + field.Name + "`: " + string(field.Settings.Type) + " field expects a string value", false
		}
	case dataset.FieldTypeChat:
		if !isChat(value) {
			return "wrong value found for field `" + field.Name + "`: chat field expects a list of messages with `role` and `content`", false
		}
	case dataset.FieldTypeCustom:
		if _, ok := value.(map[string]any); !ok {
			return "wrong value found for field `" + field.Name + "`: custom field expects an object value", false
		}
	}
	return "", true
}

func isChat(value any) bool {
	messages, ok := asList(value)
	if !ok {
		return false
	}
	for _, m := range messages {
		msg, ok := m.(map[string]any)
		if !ok {
			return false
		}
		if _, ok := msg["role"].(string); !ok {
			return false
		}
		if _, ok := msg["content"].(string); !ok {
			return false
		}
	}
	return true
}
