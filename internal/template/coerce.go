package template

import (
	"strconv"
	"strings"

	"github.com/matsen/learner/internal/value"
)

// Coerce reshapes v to match the field's declared type. It never fails:
// values that cannot be reshaped pass through unchanged and are reported by
// Validate.
//
//   - array: arrays are kept, anything else is wrapped in a one-element
//     array; elements are coerced against Items when declared.
//   - string: a one-element array is unwrapped; numbers and booleans are
//     rendered as text.
//   - number: numeric strings are parsed; a one-element array is unwrapped.
//   - boolean: "true"/"false" strings are parsed; a one-element array is
//     unwrapped.
//   - object: with declared sub-fields, known keys are coerced recursively
//     and unknown keys dropped; a bare string becomes {"name": s} when a
//     "name" sub-field exists.
func Coerce(v any, f *FieldDefinition) any {
	v = value.Normalize(v)

	switch f.BaseType {
	case TypeArray:
		arr, ok := v.([]any)
		if !ok {
			arr = []any{v}
		}
		if f.Items == nil {
			return arr
		}
		out := make([]any, len(arr))
		for i, e := range arr {
			out[i] = Coerce(e, f.Items)
		}
		return out

	case TypeString:
		if arr, ok := v.([]any); ok && len(arr) == 1 {
			return value.Stringify(arr[0])
		}
		switch v.(type) {
		case float64, bool:
			return value.Stringify(v)
		}
		return v

	case TypeNumber:
		if arr, ok := v.([]any); ok && len(arr) == 1 {
			v = arr[0]
		}
		if s, ok := v.(string); ok {
			if n, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil {
				return n
			}
		}
		return v

	case TypeBoolean:
		if arr, ok := v.([]any); ok && len(arr) == 1 {
			v = arr[0]
		}
		if s, ok := v.(string); ok {
			switch strings.ToLower(strings.TrimSpace(s)) {
			case "true":
				return true
			case "false":
				return false
			}
		}
		return v

	case TypeObject:
		if len(f.Fields) == 0 {
			return v
		}
		switch t := v.(type) {
		case map[string]any:
			out := make(map[string]any, len(f.Fields))
			for i := range f.Fields {
				sub := &f.Fields[i]
				if sv, ok := t[sub.Name]; ok {
					out[sub.Name] = Coerce(sv, sub)
				}
			}
			return out
		case string:
			for i := range f.Fields {
				if f.Fields[i].Name == "name" {
					return map[string]any{"name": t}
				}
			}
		}
		return v

	default:
		return v
	}
}
