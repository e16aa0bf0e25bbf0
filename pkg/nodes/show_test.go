package nodes

import (
	"testing"

	"github.com/agavesunset/agave/pkg/domain"
	"github.com/stretchr/testify/assert"
)

func TestShow(t *testing.T) {
	tests := []struct {
		name  string
		value any
		want  string
	}{
		{"string", "hi", "hi"},
		{"float", 1.5, "1.5"},
		{"whole float", 2.0, "2.0"},
		{"bool", true, "True"},
		{"none", nil, "None"},
		{"map", map[string]any{"b": 1, "a": "<x>"}, "{\n  \"a\": \"<x>\",\n  \"b\": 1\n}"},
		{"list", []any{1, "猫"}, "[\n  1,\n  \"猫\"\n]"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := run(t, Show{}, map[string]any{"anything": tt.value})
			assert.Equal(t, []any{tt.value}, out.Result)
			assert.Equal(t, []any{tt.want}, out.UI["text"])
		})
	}
}

func TestShow_AlwaysVolatile(t *testing.T) {
	assert.True(t, Show{}.IsVolatile(domain.Request{}))
	assert.True(t, Show{}.Spec().OutputNode)
}

func TestPrimitives(t *testing.T) {
	out := run(t, Primitives{}, map[string]any{
		"float_value": 0.25, "boolean_value": true, "string_value": "s", "int_value": 3,
	})
	assert.Equal(t, []any{0.25, true, "s", int64(3)}, out.Result)

	out = run(t, Primitives{}, map[string]any{})
	assert.Equal(t, []any{0.0, false, "", int64(0)}, out.Result)
}
