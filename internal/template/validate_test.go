package template

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(i int) *int { return &i }
func floatPtr(f float64) *float64 { return &f }

func compiled(t *testing.T, fields ...FieldDefinition) *Template {
	t.Helper()
	tmpl := &Template{Name: "test", Fields: fields}
	require.NoError(t, tmpl.Compile())
	return tmpl
}

func TestValidateRequired(t *testing.T) {
	tmpl := compiled(t,
		FieldDefinition{Name: "title", BaseType: TypeString, Required: true},
		FieldDefinition{Name: "doi", BaseType: TypeString},
	)

	err := tmpl.Validate(map[string]any{"doi": "10.1/x"})
	var missing *MissingFieldError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, "title", missing.Field)
	assert.ErrorIs(t, err, ErrMissingRequiredField)

	assert.NoError(t, tmpl.Validate(map[string]any{"title": "T"}))
}

func TestValidateTypeMismatch(t *testing.T) {
	tmpl := compiled(t, FieldDefinition{Name: "title", BaseType: TypeString})

	err := tmpl.Validate(map[string]any{"title": []any{"a", "b"}})
	var mismatch *TypeMismatchError
	require.ErrorAs(t, err, &mismatch)
	assert.Equal(t, "title", mismatch.Field)
	assert.Equal(t, "string", mismatch.Expected)
	assert.Equal(t, "array", mismatch.Actual)
	assert.EqualError(t, err, "field 'title' expected type 'string' but got 'array'")
}

func TestValidateStringRules(t *testing.T) {
	tmpl := compiled(t,
		FieldDefinition{Name: "code", BaseType: TypeString, Validation: &ValidationRules{
			MinLength: intPtr(2), MaxLength: intPtr(5), Pattern: `^[a-z]+$`,
		}},
		FieldDefinition{Name: "when", BaseType: TypeString, Validation: &ValidationRules{Datetime: true}},
		FieldDefinition{Name: "kind", BaseType: TypeString, Validation: &ValidationRules{
			EnumValues: []string{"article", "preprint"},
		}},
	)

	tests := []struct {
		name     string
		values   map[string]any
		wantRule string
	}{
		{"ok", map[string]any{"code": "abc", "when": "2023-01-17T00:00:00Z", "kind": "preprint"}, ""},
		{"too short", map[string]any{"code": "a"}, "min_length"},
		{"too long", map[string]any{"code": "abcdef"}, "max_length"},
		{"pattern", map[string]any{"code": "AB1"}, "pattern"},
		{"datetime", map[string]any{"when": "2023-01-17"}, "datetime"},
		{"enum", map[string]any{"kind": "book"}, "enum_values"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tmpl.Validate(tt.values)
			if tt.wantRule == "" {
				assert.NoError(t, err)
				return
			}
			var vErr *ValidationError
			require.ErrorAs(t, err, &vErr)
			assert.Equal(t, tt.wantRule, vErr.Rule)
			assert.ErrorIs(t, err, ErrValidation)
		})
	}
}

func TestValidateNumberRules(t *testing.T) {
	tmpl := compiled(t, FieldDefinition{Name: "score", BaseType: TypeNumber, Validation: &ValidationRules{
		Minimum: floatPtr(0), Maximum: floatPtr(1), MultipleOf: floatPtr(0.1),
	}})

	assert.NoError(t, tmpl.Validate(map[string]any{"score": 0.3}))
	assert.NoError(t, tmpl.Validate(map[string]any{"score": int64(1)}))

	for value, rule := range map[float64]string{-1: "minimum", 2: "maximum", 0.35: "multiple_of"} {
		var vErr *ValidationError
		require.ErrorAs(t, tmpl.Validate(map[string]any{"score": value}), &vErr, "score %v", value)
		assert.Equal(t, rule, vErr.Rule)
	}
}

func TestValidateArrayRules(t *testing.T) {
	tmpl := compiled(t, FieldDefinition{
		Name:     "tags",
		BaseType: TypeArray,
		Items:    &FieldDefinition{BaseType: TypeString},
		Validation: &ValidationRules{
			MinItems: intPtr(1), MaxItems: intPtr(3), UniqueItems: true,
		},
	})

	assert.NoError(t, tmpl.Validate(map[string]any{"tags": []any{"a", "b"}}))

	tests := []struct {
		tags     []any
		wantRule string
	}{
		{[]any{}, "min_items"},
		{[]any{"a", "b", "c", "d"}, "max_items"},
		{[]any{"a", "a"}, "unique_items"},
	}
	for _, tt := range tests {
		var vErr *ValidationError
		require.ErrorAs(t, tmpl.Validate(map[string]any{"tags": tt.tags}), &vErr)
		assert.Equal(t, tt.wantRule, vErr.Rule)
	}

	var mismatch *TypeMismatchError
	require.ErrorAs(t, tmpl.Validate(map[string]any{"tags": []any{"a", 1.0}}), &mismatch)
	assert.Equal(t, "tags[1]", mismatch.Field)
}

func TestValidateUniqueObjects(t *testing.T) {
	tmpl := compiled(t, FieldDefinition{
		Name: "authors", BaseType: TypeArray, Validation: &ValidationRules{UniqueItems: true},
	})

	err := tmpl.Validate(map[string]any{"authors": []any{
		map[string]any{"name": "A", "x": 1.0},
		map[string]any{"x": 1.0, "name": "A"},
	}})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestValidateNestedObject(t *testing.T) {
	tmpl := compiled(t, FieldDefinition{
		Name:     "authors",
		BaseType: TypeArray,
		Items: &FieldDefinition{
			BaseType: TypeObject,
			Fields: []FieldDefinition{
				{Name: "name", BaseType: TypeString, Required: true},
				{Name: "email", BaseType: TypeString},
			},
		},
	})

	assert.NoError(t, tmpl.Validate(map[string]any{"authors": []any{map[string]any{"name": "A"}}}))

	var missing *MissingFieldError
	require.ErrorAs(t, tmpl.Validate(map[string]any{"authors": []any{map[string]any{"email": "a@b"}}}), &missing)
	assert.Equal(t, "authors[0].name", missing.Field)
}

func TestValidateShapeOnlyTypes(t *testing.T) {
	tmpl := compiled(t,
		FieldDefinition{Name: "flag", BaseType: TypeBoolean},
		FieldDefinition{Name: "nothing", BaseType: TypeNull},
		FieldDefinition{Name: "meta", BaseType: TypeObject},
	)
	assert.NoError(t, tmpl.Validate(map[string]any{"flag": true, "nothing": nil, "meta": map[string]any{}}))
	assert.ErrorIs(t, tmpl.Validate(map[string]any{"flag": "true"}), ErrTypeMismatch)
	assert.ErrorIs(t, tmpl.Validate(map[string]any{"extra": "ignored", "meta": "x"}), ErrTypeMismatch)
}
