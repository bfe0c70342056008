// SPDX-License-Identifier: Apache-2.0

package validator

import (
	"fmt"
	"math"
	"sort"

	"github.com/xataio/recordhub/pkg/dataset"
)

func (v *Validator) validateMetadata(c *collector, metadata map[string]any) {
	names := make([]string, 0, len(metadata))
	for name := range metadata {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		value := metadata[name]
		property, found := v.dataset.MetadataPropertyByName(name)
		if !found {
			if !v.dataset.AllowExtraMetadata {
				c.add("metadata is not valid: `%s` metadata property does not exist for dataset `%s` and extra metadata is not allowed for this dataset", name, v.dataset.ID)
			} else if isNaN(value) {
				c.add("metadata is not valid: `%s` metadata property validation failed because NaN is not allowed", name)
			}
			continue
		}
		if value == nil {
			continue
		}
		if err := validateMetadataValue(property, value); err != nil {
			c.add("metadata is not valid: `%s` metadata property validation failed because %v", name, err)
		}
	}
}

func validateMetadataValue(property *dataset.MetadataProperty, value any) error {
	if isNaN(value) {
		return errNaNNotAllowed
	}

	switch settings := property.Settings.(type) {
	case dataset.TermsMetadataSettings:
		return validateTerms(settings, value)
	case dataset.IntegerMetadataSettings:
		n, ok := asInt(value)
		if !ok {
			return fmt.Errorf("`%v` is not an integer", value)
		}
		if settings.Min != nil && n < *settings.Min {
			return fmt.Errorf("value `%d` is less than min value `%d`", n, *settings.Min)
		}
		if settings.Max != nil && n > *settings.Max {
			return fmt.Errorf("value `%d` is greater than max value `%d`", n, *settings.Max)
		}
	case dataset.FloatMetadataSettings:
		f, ok := asFloat(value)
		if !ok {
			return fmt.Errorf("`%v` is not a number", value)
		}
		if settings.Min != nil && f < *settings.Min {
			return fmt.Errorf("value `%v` is less than min value `%v`", f, *settings.Min)
		}
		if settings.Max != nil && f > *settings.Max {
			return fmt.Errorf("value `%v` is greater than max value `%v`", f, *settings.Max)
		}
	default:
		return fmt.Errorf("unsupported metadata property type `%s`", property.Type())
	}
	return nil
}

func validateTerms(settings dataset.TermsMetadataSettings, value any) error {
	terms, ok := asStrings(value)
	if !ok {
		if term, isString := value.(string); isString {
			terms = []string{term}
		} else {
			return fmt.Errorf("`%v` is not a string or a list of strings", value)
		}
	}
	for _, term := range terms {
		if !settings.Allows(term) {
			return fmt.Errorf("`%s` is not an allowed term", term)
		}
	}
	return nil
}

// isNaN reports whether the value, or any element of a list value, is a NaN
// float.
func isNaN(value any) bool {
	switch v := value.(type) {
	case float64:
		return math.IsNaN(v)
	case float32:
		return math.IsNaN(float64(v))
	case []any:
		for _, e := range v {
			if isNaN(e) {
				return true
			}
		}
	case []float64:
		for _, e := range v {
			if math.IsNaN(e) {
				return true
			}
		}
	}
	return false
}
