// SPDX-License-Identifier: Apache-2.0

package validator

import (
	"fmt"

	"github.com/xataio/recordhub/pkg/dataset"
)

// Validator checks record payloads against one dataset schema snapshot. It
// performs no I/O and is safe for concurrent use as long as the snapshot is
// not mutated.
type Validator struct {
	dataset *dataset.Dataset
}

func New(ds *dataset.Dataset) *Validator {
	return &Validator{dataset: ds}
}

// Validate returns every violation found for the payload at the given batch
// position. The existing record is nil when the payload creates a new record.
func (v *Validator) Validate(position int, item *dataset.RecordUpsert, existing *dataset.Record) []dataset.Violation {
	c := &collector{position: position}
	if item == nil {
		c.add("record payload is empty")
		return c.violations
	}

	if existing == nil || item.Fields != nil {
		v.validateFields(c, item.Fields)
	}
	v.validateMetadata(c, item.Metadata)
	v.validateVectors(c, item.Vectors)
	fields := recordFields(item, existing)
	v.validateResponses(c, item.Responses, fields)
	v.validateSuggestions(c, item.Suggestions, fields)

	return c.violations
}

// recordFields returns the field values the record will hold once the payload
// is applied.
func recordFields(item *dataset.RecordUpsert, existing *dataset.Record) map[string]any {
	if item.Fields != nil || existing == nil {
		return item.Fields
	}
	return existing.Fields
}

type collector struct {
	position   int
	violations []dataset.Violation
}

func (c *collector) add(format string, args ...any) {
	c.violations = append(c.violations, dataset.Violation{
		Position: c.position,
		Reason:   fmt.Sprintf(format, args...),
	})
}
