package nodes

import (
	"context"
	"fmt"
	"math"
	"strings"
	"unicode/utf8"

	"github.com/agavesunset/agave/pkg/domain"
)

// Parse hints of the Transforms node.
const (
	HintAuto    = "AUTO"
	HintInt     = "INT"
	HintFloat   = "FLOAT"
	HintBoolean = "BOOLEAN"
	HintString  = "STRING"
)

const maxStringOutput = 512

var (
	trueWords  = wordSet("1", "true", "yes", "on", "t", "y", "是", "真", "开启", "开", "对", "赞成")
	falseWords = wordSet("0", "false", "no", "off", "f", "n", "", "否", "假", "关闭", "关", "错", "反对")

	fullWidth = strings.NewReplacer(
		"０", "0", "１", "1", "２", "2", "３", "3", "４", "4",
		"５", "5", "６", "6", "７", "7", "８", "8", "９", "9",
		"－", "-", "．", ".", "，", ",", "＋", "+",
	)
)

func wordSet(words ...string) map[string]struct{} {
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return set
}

// Transforms converts any value, or text typed into its widget, to every
// primitive type at once. It never fails: problems become warnings in the UI.
type Transforms struct{}

type transformsInputs struct {
	ParseHint string `input:"parse_hint"`
	Value     any    `input:"value"`
	ValueText string `input:"value_text"`
}

func (Transforms) Spec() domain.Spec {
	return domain.Spec{
		Class:       "Transforms_input_AgaveSunset",
		DisplayName: "Transforms_input_AgaveSunset",
		Category:    "AgaveSunset/utils",
		Function:    "transform",
		Required: []domain.Input{
			{Name: "parse_hint", Type: domain.SocketCombo,
				Choices: []string{HintAuto, HintInt, HintFloat, HintBoolean, HintString},
				Options: map[string]any{"default": HintAuto}},
		},
		Optional: []domain.Input{
			{Name: "value", Type: domain.SocketAny},
			{Name: "value_text", Type: domain.SocketString, Options: map[string]any{"default": "", "multiline": false}},
		},
		ReturnTypes: []domain.SocketType{domain.SocketAny, domain.SocketInt, domain.SocketFloat, domain.SocketBoolean, domain.SocketString},
		ReturnNames: []string{"passthrough", "as_int", "as_float", "as_bool", "as_string"},
	}
}

func (Transforms) Execute(_ context.Context, req domain.Request) (domain.Output, error) {
	var in transformsInputs
	if err := decodeInputs(req.Inputs, &in); err != nil {
		return domain.Output{}, err
	}
	t := transform(in.ParseHint, native(in.Value), in.ValueText)
	return domain.Output{
		Result: []any{t.source, t.asInt, t.asFloat, t.asBool, t.asString},
		UI:     map[string]any{"text": t.text()},
	}, nil
}

type transformed struct {
	source   any
	desc     string
	asInt    int64
	asFloat  float64
	asBool   bool
	asString string
	warnings []string
}

func transform(hint string, value any, text string) transformed {
	var t transformed
	if value != nil {
		t.source = value
		t.desc = fmt.Sprintf("from input (%s)", typeName(value))
	} else {
		src, warns := fromText(text, hint)
		t.source = src
		t.desc = fmt.Sprintf("from text %s → %s", repr(text), typeName(src))
		t.warnings = append(t.warnings, warns...)
	}

	warn := func(w string) {
		if w != "" {
			t.warnings = append(t.warnings, w)
		}
	}
	var w string
	t.asInt, w = toInt(t.source)
	warn(w)
	t.asFloat, w = toFloat(t.source)
	warn(w)
	t.asBool, w = toBool(t.source)
	warn(w)
	t.asString = toString(t.source)
	return t
}

func (t transformed) text() string {
	lines := []string{
		"Transforms (AgaveSunset)",
		"source: " + t.desc,
		"passthrough: " + repr(t.source),
		"as_int: " + str(t.asInt),
		"as_float: " + str(t.asFloat),
		"as_bool: " + str(t.asBool),
		"as_string: " + repr(t.asString),
	}
	for _, w := range t.warnings {
		lines = append(lines, "⚠ "+w)
	}
	return strings.Join(lines, "\n")
}

// fromText parses text according to hint. AUTO tries boolean words, then
// integers, then floats, and keeps the raw text otherwise.
func fromText(raw, hint string) (any, []string) {
	txt := strings.TrimSpace(fullWidth.Replace(raw))
	digits := strings.ReplaceAll(txt, ",", "")

	switch hint {
	case HintBoolean:
		b, ok := parseBool(txt)
		if !ok {
			return false, []string{boolWarning(raw)}
		}
		return b, nil
	case HintInt:
		i, err := parseInt(digits)
		if err != nil {
			return int64(0), []string{fmt.Sprintf("INT parse failed for %s: %v; fallback 0", repr(raw), err)}
		}
		return i, nil
	case HintFloat:
		f, err := parseFloat(digits)
		if err != nil {
			return 0.0, []string{fmt.Sprintf("FLOAT parse failed for %s: %v; fallback 0.0", repr(raw), err)}
		}
		return f, nil
	case HintString:
		return raw, nil
	}

	if b, ok := parseBool(txt); ok {
		return b, nil
	}
	if i, err := parseInt(digits); err == nil {
		return i, nil
	}
	if f, err := parseFloat(digits); err == nil {
		return f, nil
	}
	return raw, nil
}

func parseBool(s string) (bool, bool) {
	low := strings.ToLower(s)
	if _, ok := trueWords[low]; ok {
		return true, true
	}
	if _, ok := falseWords[low]; ok {
		return false, true
	}
	return false, false
}

func boolWarning(raw string) string {
	return fmt.Sprintf("BOOLEAN parse failed for %s; expected 是/否 真/假 开/关 对/错 true/false yes/no on/off 1/0", repr(raw))
}

func toInt(v any) (int64, string) {
	switch x := v.(type) {
	case bool:
		if x {
			return 1, ""
		}
		return 0, ""
	case int64:
		return x, ""
	case int:
		return int64(x), ""
	case float64:
		switch {
		case math.IsNaN(x):
			return 0, "INT conversion error: cannot convert float NaN to integer; fallback 0"
		case math.IsInf(x, 0):
			return 0, "INT conversion error: cannot convert float infinity to integer; fallback 0"
		case x >= math.MaxInt64 || x < math.MinInt64:
			return 0, fmt.Sprintf("INT conversion error: %s out of range; fallback 0", str(x))
		}
		return int64(x), ""
	case string:
		parsed, warns := fromText(x, HintInt)
		i, _ := parsed.(int64)
		if len(warns) > 0 {
			return i, warns[0]
		}
		return i, ""
	}
	return 0, fmt.Sprintf("INT fallback 0 for type %s", typeName(v))
}

func toFloat(v any) (float64, string) {
	switch x := v.(type) {
	case bool, int, int64, float64:
		f, _ := asFloat(x)
		return f, ""
	case string:
		parsed, warns := fromText(x, HintFloat)
		f, _ := parsed.(float64)
		if len(warns) > 0 {
			return f, warns[0]
		}
		return f, ""
	}
	return 0, fmt.Sprintf("FLOAT fallback 0.0 for type %s", typeName(v))
}

func toBool(v any) (bool, string) {
	if s, ok := v.(string); ok {
		parsed, warns := fromText(s, HintBoolean)
		b, _ := parsed.(bool)
		if len(warns) > 0 {
			return b, warns[0]
		}
		return b, ""
	}
	return truthy(v), ""
}

// toString truncates long renderings of containers and other objects.
func toString(v any) string {
	switch v.(type) {
	case bool, int, int64, float64, string:
		return str(v)
	}
	s := str(v)
	if utf8.RuneCountInString(s) > maxStringOutput {
		s = string([]rune(s)[:maxStringOutput-3]) + "..."
	}
	return s
}
