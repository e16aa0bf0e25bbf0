package nodes

import (
	"context"
	"errors"
	"math"
	"strings"

	"github.com/agavesunset/agave/pkg/domain"
)

const epsilon = 1e-9

var (
	ErrDivisionByZero = errors.New("division by zero is not allowed")
	ErrModuloByZero   = errors.New("modulo by zero is not allowed")
	ErrMathRange      = errors.New("math range error")
)

const opCustom = "custom_expression"

type operation struct {
	expression string
	apply      func(a, b, c float64) (float64, error)
}

func pure(f func(a, b, c float64) float64) func(a, b, c float64) (float64, error) {
	return func(a, b, c float64) (float64, error) { return f(a, b, c), nil }
}

func safeDivide(n, d float64) (float64, error) {
	if math.Abs(d) < epsilon {
		return 0, ErrDivisionByZero
	}
	return n / d, nil
}

// safeModulo keeps the sign of the dividend.
func safeModulo(n, d float64) (float64, error) {
	if math.Abs(d) < epsilon {
		return 0, ErrModuloByZero
	}
	return math.Mod(n, d), nil
}

// operationOrder is the order of the operation drop-down.
var operationOrder = []string{
	"add_ab", "add_abc", "sub_ab", "sub_abc", "reverse_sub",
	"mul_ab", "mul_abc", "div_ab", "div_abc", "div_ba",
	"pow", "mod_ab", "mod_abc", "average", "average_ab",
	"max", "min", "clamp", "abs", "negate", opCustom,
}

var operations = map[string]operation{
	"add_ab":      {"a + b", pure(func(a, b, _ float64) float64 { return a + b })},
	"add_abc":     {"a + b + c", pure(func(a, b, c float64) float64 { return a + b + c })},
	"sub_ab":      {"a - b", pure(func(a, b, _ float64) float64 { return a - b })},
	"sub_abc":     {"a - b - c", pure(func(a, b, c float64) float64 { return a - b - c })},
	"reverse_sub": {"b - a", pure(func(a, b, _ float64) float64 { return b - a })},
	"mul_ab":      {"a * b", pure(func(a, b, _ float64) float64 { return a * b })},
	"mul_abc":     {"a * b * c", pure(func(a, b, c float64) float64 { return a * b * c })},
	"div_ab":      {"a / b", func(a, b, _ float64) (float64, error) { return safeDivide(a, b) }},
	"div_abc": {"a / b / c", func(a, b, c float64) (float64, error) {
		q, err := safeDivide(a, b)
		if err != nil {
			return 0, err
		}
		return safeDivide(q, c)
	}},
	"div_ba": {"b / a", func(a, b, _ float64) (float64, error) { return safeDivide(b, a) }},
	"pow": {"a ** b", func(a, b, _ float64) (float64, error) {
		if a == 0 && b < 0 || a < 0 && b != math.Trunc(b) {
			return 0, errors.New("math domain error")
		}
		r := math.Pow(a, b)
		if math.IsInf(r, 0) && !math.IsInf(a, 0) {
			return 0, ErrMathRange
		}
		return r, nil
	}},
	"mod_ab": {"a % b", func(a, b, _ float64) (float64, error) { return safeModulo(a, b) }},
	"mod_abc": {"a % b % c", func(a, b, c float64) (float64, error) {
		m, err := safeModulo(a, b)
		if err != nil {
			return 0, err
		}
		return safeModulo(m, c)
	}},
	"average":    {"(a + b + c) / 3", pure(func(a, b, c float64) float64 { return (a + b + c) / 3 })},
	"average_ab": {"(a + b) / 2", pure(func(a, b, _ float64) float64 { return (a + b) / 2 })},
	"max":        {"max(a, b, c)", pure(func(a, b, c float64) float64 { return max(a, b, c) })},
	"min":        {"min(a, b, c)", pure(func(a, b, c float64) float64 { return min(a, b, c) })},
	"clamp":      {"clamp(a, b, c)", pure(clamp)},
	"abs":        {"abs(a)", pure(func(a, _, _ float64) float64 { return math.Abs(a) })},
	"negate":     {"-a", pure(func(a, _, _ float64) float64 { return -a })},
}

// operationAliases maps the spellings saved by older workflows to operation keys.
var operationAliases = map[string]string{
	"add": "add_ab", "addition": "add_ab", "plus": "add_ab", "a+b": "add_ab", "a + b": "add_ab",
	"sum": "add_ab", "sum_ab": "add_ab", "add_ab": "add_ab", "add(a,b)": "add_ab",
	"a+b+c": "add_abc", "a + b + c": "add_abc", "sum3": "add_abc", "add3": "add_abc", "sum_abc": "add_abc",
	"subtract": "sub_ab", "minus": "sub_ab", "a-b": "sub_ab", "a - b": "sub_ab", "sub": "sub_ab",
	"subtract_abc": "sub_abc", "a-b-c": "sub_abc", "a - b - c": "sub_abc",
	"b-a": "reverse_sub", "b - a": "reverse_sub", "reverse_sub": "reverse_sub", "swap_sub": "reverse_sub",
	"multiply": "mul_ab", "mul": "mul_ab", "a*b": "mul_ab", "a * b": "mul_ab", "product": "mul_ab",
	"multiply3": "mul_abc", "a*b*c": "mul_abc", "a * b * c": "mul_abc", "product3": "mul_abc",
	"divide": "div_ab", "division": "div_ab", "a/b": "div_ab", "a / b": "div_ab", "div": "div_ab",
	"divide3": "div_abc", "a/b/c": "div_abc", "a / b / c": "div_abc", "divabc": "div_abc",
	"b/a": "div_ba", "b / a": "div_ba", "div_ba": "div_ba",
	"power": "pow", "pow": "pow", "a^b": "pow", "a ** b": "pow", "a**b": "pow",
	"mod": "mod_ab", "modulo": "mod_ab", "a%b": "mod_ab", "a % b": "mod_ab",
	"mod3": "mod_abc", "a%b%c": "mod_abc", "a % b % c": "mod_abc",
	"average": "average", "avg": "average", "mean": "average", "average3": "average", "avg3": "average",
	"average_ab": "average_ab", "avg_ab": "average_ab", "avg2": "average_ab",
	"max": "max", "maximum": "max", "max3": "max",
	"min": "min", "minimum": "min", "min3": "min",
	"clamp": "clamp", "clamp_a": "clamp", "clamp(a,b,c)": "clamp",
	"abs": "abs", "absolute": "abs",
	"neg": "negate", "negative": "negate", "negate": "negate", "invert": "negate",
	"custom_expression": opCustom, "custom": opCustom, "expression": opCustom,
}

// normalizeOperation resolves an operation name to its key. Unknown names
// come back lower-cased and trimmed.
func normalizeOperation(op string) string {
	key := strings.ToLower(strings.TrimSpace(op))
	if k, ok := operationAliases[key]; ok {
		return k
	}
	if k, ok := operationAliases[strings.ReplaceAll(key, " ", "")]; ok {
		return k
	}
	return key
}

// Calculate combines a, b and c with a named operation or a free-form
// expression. Named operations stay compatible with legacy workflows.
type Calculate struct{}

type calculateInputs struct {
	A          float64 `input:"a"`
	B          float64 `input:"b"`
	C          float64 `input:"c"`
	Operation  string  `input:"operation"`
	Expression string  `input:"expression"`
}

func (Calculate) Spec() domain.Spec {
	number := func(name string) domain.Input {
		return domain.Input{Name: name, Type: domain.SocketFloat, Options: map[string]any{
			"display": "number",
			"step":    0.01,
			"min":     -1_000_000_000.0,
			"max":     1_000_000_000.0,
			"default": 0.0,
		}}
	}
	return domain.Spec{
		Class:       "calculate_AgaveSunset",
		DisplayName: "calculate_AgaveSunset",
		Category:    "AgaveSunset",
		Function:    "calculate",
		Required: []domain.Input{
			number("a"),
			number("b"),
			number("c"),
			{Name: "operation", Type: domain.SocketCombo, Choices: operationOrder, Options: map[string]any{"default": "add_ab"}},
			{Name: "expression", Type: domain.SocketString, Options: map[string]any{"default": "a + b", "multiline": true}},
		},
		ReturnTypes: []domain.SocketType{domain.SocketFloat},
		ReturnNames: []string{"result"},
	}
}

func (Calculate) Execute(ctx context.Context, req domain.Request) (domain.Output, error) {
	var in calculateInputs
	if err := decodeInputs(req.Inputs, &in); err != nil {
		return domain.Output{}, err
	}
	r, err := calculate(ctx, in)
	if err != nil {
		return domain.Output{}, err
	}
	return domain.Output{Result: []any{r}}, nil
}

func calculate(ctx context.Context, in calculateInputs) (float64, error) {
	key := normalizeOperation(in.Operation)
	values := map[string]float64{"a": in.A, "b": in.B, "c": in.C}
	src := strings.TrimSpace(in.Expression)
	op, known := operations[key]

	// An edited expression wins over the drop-down.
	if src != "" && (!known || compact(src) != compact(op.expression)) {
		return evalSandboxed(ctx, src, values)
	}
	if known {
		return op.apply(in.A, in.B, in.C)
	}
	if src == "" {
		src = in.Operation
	}
	return evalSandboxed(ctx, src, values)
}

func compact(s string) string {
	return strings.ReplaceAll(s, " ", "")
}
