package nodes

import (
	"context"
	"testing"

	"github.com/agavesunset/agave/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeOperation(t *testing.T) {
	tests := map[string]string{
		"add_ab":         "add_ab",
		"  Addition ":    "add_ab",
		"a + b":          "add_ab",
		"a ^ b":          "pow",
		"A*B*C":          "mul_abc",
		"clamp(a, b, c)": "clamp",
		"Custom":         opCustom,
		"a*b+c":          "a*b+c",
		" Foo ":          "foo",
	}
	for in, want := range tests {
		assert.Equal(t, want, normalizeOperation(in), in)
	}
}

func TestCalculate(t *testing.T) {
	tests := []struct {
		name       string
		a, b, c    float64
		operation  string
		expression string
		want       float64
	}{
		{"default", 1, 2, 0, "add_ab", "a + b", 3},
		{"canonical expression", 2, 3, 0, "mul_ab", "a*b", 6},
		{"edited expression wins", 2, 3, 0, "mul_ab", "a + b", 5},
		{"legacy alias", 2, 3, 0, "Multiply", "", 6},
		{"compact alias", 2, 3, 0, "a ^ b", "", 8},
		{"reverse sub", 2, 3, 0, "reverse_sub", "", 1},
		{"div abc", 12, 3, 2, "div_abc", "", 2},
		{"div ba", 4, 2, 0, "div_ba", "", 0.5},
		{"fmod keeps dividend sign", -7, 3, 0, "mod_ab", "", -1},
		{"mod abc", 17, 10, 4, "mod_abc", "", 3},
		{"average", 1, 2, 6, "average", "", 3},
		{"average ab", 1, 2, 0, "avg2", "", 1.5},
		{"max", 1, 9, 4, "max", "", 9},
		{"min", 1, 9, -4, "minimum", "", -4},
		{"clamp reversed bounds", 15, 10, 0, "clamp", "", 10},
		{"abs", -2.5, 0, 0, "abs", "", 2.5},
		{"negate", 2.5, 0, 0, "invert", "", -2.5},
		{"math module", 16, 0, 0, opCustom, "sqrt(a) + x", 20},
		{"math namespace", 0, 0, 0, opCustom, "math.floor(math.pi)", 3},
		{"pow builtin", 2, 10, 0, "custom", "pow(a, b)", 1024},
		{"power operator", 2, 3, 0, opCustom, "a ** b", 8},
		{"power in edited expression", 3, 1, 0, "add_ab", "a ** 2 + b", 10},
		{"power right associative", 2, 3, 2, opCustom, "a ** b ** c", 512},
		{"power over unary minus", 2, 2, 0, opCustom, "-a ** b", -4},
		{"power in call", 2, 0, 0, opCustom, "math.sqrt(a ** 4) + max(x ** 2, 1)", 8},
		{"power with chained compare", 2, 3, 0, opCustom, "1 if 0 < a ** 2 < 5 else 0", 1},
		{"power with alias", 3, 0, 0, opCustom, "x**2.0", 9},
		{"clamp builtin", 5, 0, 10, "custom", "clamp(a + 20, B, C)", 10},
		{"sum builtin", 1, 2, 3, "custom", "sum([a, b, c], 10)", 16},
		{"round half even", 2.5, 0, 0, "custom", "round(a)", 2},
		{"round digits", 2.675, 0, 0, "custom", "round(a, 1)", 2.7},
		{"starlark min", 3, 1, 2, "custom", "min(a, b, c)", 1},
		{"bool result", 3, 1, 0, "custom", "a > b", 1},
		{"operation as expression", 2, 3, 4, "a*b+c", "", 10},
		{"unknown op with expression", 2, 3, 4, "whatever", "a - c", -2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := calculate(context.Background(), calculateInputs{
				A: tt.a, B: tt.b, C: tt.c, Operation: tt.operation, Expression: tt.expression,
			})
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, 1e-12)
		})
	}
}

func TestCalculate_Errors(t *testing.T) {
	tests := []struct {
		name       string
		a, b, c    float64
		operation  string
		expression string
		wantErr    error
	}{
		{"divide by zero", 1, 0, 0, "div_ab", "", ErrDivisionByZero},
		{"divide by epsilon", 1, 1e-10, 0, "div_ab", "", ErrDivisionByZero},
		{"divide abc by zero", 1, 1, 0, "div_abc", "", ErrDivisionByZero},
		{"modulo by zero", 1, 0, 0, "mod", "", ErrModuloByZero},
		{"pow overflow", 10, 400, 0, "pow", "", ErrMathRange},
		{"custom without expression", 1, 2, 3, opCustom, "", ErrExpression},
		{"power of zero to negative", 0, -1, 0, opCustom, "a ** b", ErrExpression},
		{"power with is", 2, 3, 0, opCustom, "a ** b is None", ErrExpression},
		{"power syntax error", 2, 3, 0, opCustom, "a ** ", ErrExpression},
		{"no imports", 0, 0, 0, opCustom, `load("os", "os")`, ErrExpression},
		{"unknown name", 0, 0, 0, opCustom, "open", ErrExpression},
		{"float division by zero", 1, 0, 0, opCustom, "a / b", ErrExpression},
		{"string result", 0, 0, 0, opCustom, `"abc"`, ErrExpression},
		{"step limit", 0, 0, 0, opCustom, "sum([i for i in range(10000000)])", ErrExpression},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := calculate(context.Background(), calculateInputs{
				A: tt.a, B: tt.b, C: tt.c, Operation: tt.operation, Expression: tt.expression,
			})
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestCalculate_ErrorMessages(t *testing.T) {
	_, err := calculate(context.Background(), calculateInputs{A: 1, Operation: "div_ab"})
	assert.EqualError(t, err, "division by zero is not allowed")

	_, err = calculate(context.Background(), calculateInputs{Operation: "custom", Expression: "nope"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to evaluate expression 'nope'")
}

func TestEvalSandboxed_Empty(t *testing.T) {
	_, err := evalSandboxed(context.Background(), "  \n", nil)
	assert.ErrorIs(t, err, ErrEmptyExpression)
}

func TestEvalSandboxed_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := evalSandboxed(ctx, "sum([i for i in range(900000)])", nil)
	assert.ErrorIs(t, err, ErrExpression)
}

func TestCalculate_Execute(t *testing.T) {
	out, err := Calculate{}.Execute(context.Background(), domain.Request{Inputs: map[string]any{
		"a": "1.5", "b": 2, "c": 0.0, "operation": "add_ab", "expression": "a + b",
	}})
	require.NoError(t, err)
	assert.Equal(t, []any{3.5}, out.Result)
	assert.Nil(t, out.UI)
}

func TestStarlarkSource(t *testing.T) {
	tests := []struct {
		src  string
		want string
	}{
		{"a + b", "a + b"},
		{"a ** b", "pow(a, b)"},
		{"-a ** 2", "(-pow(a, 2))"},
		{"(a + 1) ** 0.5 * 2", "(pow((a + 1), 0.5) * 2)"},
		{"a ** b if a < b < c else 1e3", "(pow(a, b) if ((a < b) and (b < c)) else 1000.0)"},
		{"not a ** 2 and b", "((not pow(a, 2)) and b)"},
		{"math.floor(a ** 2, 'x')", `math.floor(pow(a, 2), "x")`},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			got, err := starlarkSource(tt.src)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
