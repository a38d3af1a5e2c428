// Package value defines the canonical tree that XML and JSON responses are
// normalized into.
//
// A tree node is one of nil, bool, float64, string, []any or map[string]any.
// Config decoders may hand in other Go numeric types; Normalize folds them
// into float64 so the rest of the engine only sees the canonical shapes.
package value

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Kind names a node shape.
type Kind string

const (
	Null    Kind = "null"
	Boolean Kind = "boolean"
	Number  Kind = "number"
	String  Kind = "string"
	Array   Kind = "array"
	Object  Kind = "object"
)

// KindOf reports the shape of v. Unknown Go types report as their %T name
// so error messages stay useful.
func KindOf(v any) Kind {
	switch v.(type) {
	case nil:
		return Null
	case bool:
		return Boolean
	case float64, float32, int, int32, int64, uint, uint32, uint64:
		return Number
	case string:
		return String
	case []any:
		return Array
	case map[string]any:
		return Object
	default:
		return Kind(fmt.Sprintf("%T", v))
	}
}

// Normalize converts v into canonical form, recursing into arrays and
// objects. Integer types become float64 and typed slices/maps produced by
// config decoders become []any and map[string]any.
func Normalize(v any) any {
	switch t := v.(type) {
	case int:
		return float64(t)
	case int32:
		return float64(t)
	case int64:
		return float64(t)
	case uint:
		return float64(t)
	case uint32:
		return float64(t)
	case uint64:
		return float64(t)
	case float32:
		return float64(t)
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = Normalize(e)
		}
		return out
	case []string:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = e
		}
		return out
	case []map[string]any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = Normalize(e)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, e := range t {
			out[k] = Normalize(e)
		}
		return out
	case map[string]string:
		out := make(map[string]any, len(t))
		for k, e := range t {
			out[k] = e
		}
		return out
	default:
		return v
	}
}

// Clone returns a deep copy of a canonical tree.
func Clone(v any) any {
	switch t := v.(type) {
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = Clone(e)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, e := range t {
			out[k] = Clone(e)
		}
		return out
	default:
		return v
	}
}

// AsString returns the string form of a scalar node. Strings pass through,
// numbers use the shortest representation that round-trips, booleans render
// as true/false. Null, arrays and objects are not string-representable.
func AsString(v any) (string, bool) {
	switch t := Normalize(v).(type) {
	case string:
		return t, true
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64), true
	case bool:
		return strconv.FormatBool(t), true
	default:
		return "", false
	}
}

// Stringify renders any node as text. Scalars use AsString, null becomes the
// empty string and composite nodes are rendered as canonical JSON.
func Stringify(v any) string {
	if s, ok := AsString(v); ok {
		return s
	}
	if v == nil {
		return ""
	}
	return Canonical(v)
}

// Canonical renders v as compact JSON with sorted object keys. Two trees
// with equal content always produce the same text.
func Canonical(v any) string {
	data, err := json.Marshal(Normalize(v))
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(data)
}

// IsEmpty reports whether v carries no content: nil, an empty or
// whitespace-only string, an empty array or an empty object.
func IsEmpty(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(t) == ""
	case []any:
		return len(t) == 0
	case map[string]any:
		return len(t) == 0
	default:
		return false
	}
}
