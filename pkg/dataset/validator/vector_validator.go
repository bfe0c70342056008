// SPDX-License-Identifier: Apache-2.0

package validator

import (
	"math"
	"sort"

	"github.com/google/uuid"
)

func (v *Validator) validateVectors(c *collector, vectors map[string][]float32) {
	names := make([]string, 0, len(vectors))
	for name := range vectors {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		value := vectors[name]
		settings, found := v.dataset.VectorSettingsByName(name)
		if !found || (settings.DatasetID != uuid.Nil && settings.DatasetID != v.dataset.ID) {
			c.add("vector with name `%s` does not exist for dataset `%s`", name, v.dataset.ID)
			continue
		}
		if len(value) != settings.Dimensions {
			c.add("vector with name `%s` is not valid: vector must have %d elements, got %d elements", name, settings.Dimensions, len(value))
			continue
		}
		for _, f := range value {
			if math.IsNaN(float64(f)) || math.IsInf(float64(f), 0) {
				c.add("vector with name `%s` is not valid: vector values must be finite numbers", name)
				break
			}
		}
	}
}
