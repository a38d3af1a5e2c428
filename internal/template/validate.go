package template

import (
	"fmt"
	"math"
	"slices"
	"time"
	"unicode/utf8"

	"github.com/matsen/learner/internal/value"
)

// multipleOfEpsilon is the tolerance for multiple_of checks.
const multipleOfEpsilon = 1e-9

// Validate checks an assembled field map against the template. Required
// fields are checked first, then every present field in template order.
// The first violation is returned.
func (t *Template) Validate(values map[string]any) error {
	for i := range t.Fields {
		f := &t.Fields[i]
		if _, ok := values[f.Name]; f.Required && !ok {
			return &MissingFieldError{Field: f.Name}
		}
	}

	for i := range t.Fields {
		f := &t.Fields[i]
		v, ok := values[f.Name]
		if !ok {
			continue
		}
		if err := validateValue(f.Name, f, v); err != nil {
			return err
		}
	}
	return nil
}

func validateValue(path string, f *FieldDefinition, v any) error {
	v = value.Normalize(v)
	kind := value.KindOf(v)

	switch {
	case f.BaseType == TypeString && kind == value.String:
		return validateString(path, f.Validation, v.(string))
	case f.BaseType == TypeNumber && kind == value.Number:
		return validateNumber(path, f.Validation, v.(float64))
	case f.BaseType == TypeArray && kind == value.Array:
		return validateArray(path, f, v.([]any))
	case f.BaseType == TypeObject && kind == value.Object:
		return validateObject(path, f, v.(map[string]any))
	case f.BaseType == TypeBoolean && kind == value.Boolean,
		f.BaseType == TypeNull && kind == value.Null:
		return nil
	default:
		return &TypeMismatchError{Field: path, Expected: f.BaseType, Actual: string(kind)}
	}
}

func validateString(path string, rules *ValidationRules, s string) error {
	if rules == nil {
		return nil
	}
	n := utf8.RuneCountInString(s)
	if rules.MinLength != nil && n < *rules.MinLength {
		return &ValidationError{Field: path, Rule: "min_length",
			Detail: fmt.Sprintf("length %d is less than %d", n, *rules.MinLength)}
	}
	if rules.MaxLength != nil && n > *rules.MaxLength {
		return &ValidationError{Field: path, Rule: "max_length",
			Detail: fmt.Sprintf("length %d exceeds %d", n, *rules.MaxLength)}
	}
	if rules.pattern != nil && !rules.pattern.MatchString(s) {
		return &ValidationError{Field: path, Rule: "pattern",
			Detail: fmt.Sprintf("%q does not match %s", s, rules.Pattern)}
	}
	if rules.Datetime {
		if _, err := time.Parse(time.RFC3339, s); err != nil {
			return &ValidationError{Field: path, Rule: "datetime",
				Detail: fmt.Sprintf("%q is not an RFC3339 datetime", s)}
		}
	}
	if len(rules.EnumValues) > 0 && !slices.Contains(rules.EnumValues, s) {
		return &ValidationError{Field: path, Rule: "enum_values",
			Detail: fmt.Sprintf("%q is not one of %v", s, rules.EnumValues)}
	}
	return nil
}

func validateNumber(path string, rules *ValidationRules, n float64) error {
	if rules == nil {
		return nil
	}
	if rules.Minimum != nil && n < *rules.Minimum {
		return &ValidationError{Field: path, Rule: "minimum",
			Detail: fmt.Sprintf("%v is less than %v", n, *rules.Minimum)}
	}
	if rules.Maximum != nil && n > *rules.Maximum {
		return &ValidationError{Field: path, Rule: "maximum",
			Detail: fmt.Sprintf("%v exceeds %v", n, *rules.Maximum)}
	}
	if rules.MultipleOf != nil {
		q := n / *rules.MultipleOf
		if math.Abs(q-math.Round(q)) > multipleOfEpsilon {
			return &ValidationError{Field: path, Rule: "multiple_of",
				Detail: fmt.Sprintf("%v is not a multiple of %v", n, *rules.MultipleOf)}
		}
	}
	return nil
}

func validateArray(path string, f *FieldDefinition, arr []any) error {
	if rules := f.Validation; rules != nil {
		if rules.MinItems != nil && len(arr) < *rules.MinItems {
			return &ValidationError{Field: path, Rule: "min_items",
				Detail: fmt.Sprintf("%d items, need at least %d", len(arr), *rules.MinItems)}
		}
		if rules.MaxItems != nil && len(arr) > *rules.MaxItems {
			return &ValidationError{Field: path, Rule: "max_items",
				Detail: fmt.Sprintf("%d items, allowed at most %d", len(arr), *rules.MaxItems)}
		}
		if rules.UniqueItems {
			seen := make(map[string]int, len(arr))
			for i, e := range arr {
				key := value.Canonical(e)
				if j, dup := seen[key]; dup {
					return &ValidationError{Field: path, Rule: "unique_items",
						Detail: fmt.Sprintf("items %d and %d are identical", j, i)}
				}
				seen[key] = i
			}
		}
	}

	if f.Items != nil {
		for i, e := range arr {
			if err := validateValue(fmt.Sprintf("%s[%d]", path, i), f.Items, e); err != nil {
				return err
			}
		}
	}
	return nil
}

func validateObject(path string, f *FieldDefinition, obj map[string]any) error {
	for i := range f.Fields {
		sub := &f.Fields[i]
		v, ok := obj[sub.Name]
		if !ok {
			if sub.Required {
				return &MissingFieldError{Field: path + "." + sub.Name}
			}
			continue
		}
		if err := validateValue(path+"."+sub.Name, sub, v); err != nil {
			return err
		}
	}
	return nil
}
