package nodes

import (
	"encoding/json"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTransforms_FromText(t *testing.T) {
	tests := []struct {
		name     string
		hint     string
		text     string
		source   any
		asInt    int64
		asFloat  float64
		asBool   bool
		asString string
		warnings int
	}{
		{"chinese true", HintAuto, "是", true, 1, 1, true, "True", 0},
		{"english off", HintAuto, " OFF ", false, 0, 0, false, "False", 0},
		{"empty is false", HintAuto, "", false, 0, 0, false, "False", 0},
		{"full width digits", HintAuto, "１，２３４", int64(1234), 1234, 1234, true, "1234", 0},
		{"one is boolean", HintAuto, "1", true, 1, 1, true, "True", 0},
		{"float", HintAuto, "3.5", 3.5, 3, 3.5, true, "3.5", 0},
		{"negative full width", HintAuto, "－２．５", -2.5, -2, -2.5, true, "-2.5", 0},
		{"plain text", HintAuto, "hello", "hello", 0, 0, false, "hello", 3},
		{"int hint", HintInt, "1,000", int64(1000), 1000, 1000, true, "1000", 0},
		{"int hint fails", HintInt, "abc", int64(0), 0, 0, false, "0", 1},
		{"float hint", HintFloat, "2", 2.0, 2, 2, true, "2.0", 0},
		{"float hint fails", HintFloat, "x", 0.0, 0, 0, false, "0.0", 1},
		{"boolean hint", HintBoolean, "对", true, 1, 1, true, "True", 0},
		{"boolean hint fails", HintBoolean, "maybe", false, 0, 0, false, "False", 1},
		{"string hint", HintString, " 42 ", " 42 ", 42, 42, false, " 42 ", 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := transform(tt.hint, nil, tt.text)
			assert.Equal(t, tt.source, got.source)
			assert.Equal(t, tt.asInt, got.asInt)
			assert.Equal(t, tt.asFloat, got.asFloat)
			assert.Equal(t, tt.asBool, got.asBool)
			assert.Equal(t, tt.asString, got.asString)
			assert.Len(t, got.warnings, tt.warnings, got.warnings)
		})
	}
}

func TestTransforms_Warnings(t *testing.T) {
	got := transform(HintAuto, nil, "hello")
	assert.Equal(t, []string{
		"INT parse failed for 'hello': invalid literal for int() with base 10: 'hello'; fallback 0",
		"FLOAT parse failed for 'hello': could not convert string to float: 'hello'; fallback 0.0",
		"BOOLEAN parse failed for 'hello'; expected 是/否 真/假 开/关 对/错 true/false yes/no on/off 1/0",
	}, got.warnings)
}

func TestTransforms_FromInput(t *testing.T) {
	got := transform(HintAuto, []any{1, 2}, "ignored")
	assert.Equal(t, "from input (list)", got.desc)
	assert.Equal(t, int64(0), got.asInt)
	assert.True(t, got.asBool)
	assert.Equal(t, "[1, 2]", got.asString)
	assert.Equal(t, []string{"INT fallback 0 for type list", "FLOAT fallback 0.0 for type list"}, got.warnings)

	got = transform(HintAuto, math.NaN(), "")
	assert.Equal(t, []string{"INT conversion error: cannot convert float NaN to integer; fallback 0"}, got.warnings)
	assert.True(t, got.asBool)

	got = transform(HintAuto, 7.9, "")
	assert.Equal(t, int64(7), got.asInt)
	assert.Equal(t, "7.9", got.asString)
}

func TestTransforms_Execute(t *testing.T) {
	out := run(t, Transforms{}, map[string]any{"parse_hint": HintAuto, "value": json.Number("7")})
	assert.Equal(t, []any{int64(7), int64(7), 7.0, true, "7"}, out.Result)
	assert.Equal(t, strings.Join([]string{
		"Transforms (AgaveSunset)",
		"source: from input (int)",
		"passthrough: 7",
		"as_int: 7",
		"as_float: 7.0",
		"as_bool: True",
		"as_string: '7'",
	}, "\n"), out.UI["text"])

	out = run(t, Transforms{}, map[string]any{"parse_hint": HintAuto, "value_text": "no"})
	text := out.UI["text"].(string)
	assert.Contains(t, text, "source: from text 'no' → bool")
	assert.Equal(t, false, out.Result[0])
}

func TestTransforms_LongString(t *testing.T) {
	long := make([]any, 300)
	for i := range long {
		long[i] = "ab"
	}
	got := transform(HintAuto, long, "")
	assert.Equal(t, maxStringOutput, len([]rune(got.asString)))
	assert.True(t, strings.HasSuffix(got.asString, "..."))
}
