package nodes

import (
	"cmp"
	"context"
	"fmt"

	"github.com/agavesunset/agave/pkg/domain"
)

var compareOperators = []string{"==", "!=", ">", ">=", "<", "<="}

// Compare tests two values of any type with a relational operator.
// Unconnected inputs read as 0.0.
type Compare struct{}

type compareInputs struct {
	Operator string `input:"operator"`
	A        any    `input:"a"`
	B        any    `input:"b"`
}

func (Compare) Spec() domain.Spec {
	return domain.Spec{
		Class:       "CompareAgaveSunset",
		DisplayName: "Compare_AS",
		Category:    categoryAS,
		Function:    "compare",
		Required: []domain.Input{
			{Name: "operator", Type: domain.SocketCombo, Choices: compareOperators},
		},
		Optional: []domain.Input{
			{Name: "a", Type: domain.SocketAny},
			{Name: "b", Type: domain.SocketAny},
		},
		ReturnTypes: []domain.SocketType{domain.SocketBoolean},
		ReturnNames: []string{"result"},
	}
}

func (Compare) Execute(_ context.Context, req domain.Request) (domain.Output, error) {
	var in compareInputs
	if err := decodeInputs(req.Inputs, &in); err != nil {
		return domain.Output{}, err
	}
	a, b := native(in.A), native(in.B)
	if a == nil {
		a = 0.0
	}
	if b == nil {
		b = 0.0
	}

	res, err := compareValues(in.Operator, a, b)
	if err != nil {
		return domain.Output{}, err
	}
	text := fmt.Sprintf("%s %s %s -> %s", repr(a), in.Operator, repr(b), str(res))
	return domain.Output{
		Result: []any{res},
		UI:     map[string]any{"text": []any{text}},
	}, nil
}

func compareValues(op string, a, b any) (bool, error) {
	switch op {
	case "==":
		return equal(a, b), nil
	case "!=":
		return !equal(a, b), nil
	}
	if !isOrdering(op) {
		return false, fmt.Errorf("%w: unknown operator: %s", domain.ErrInvalidInput, op)
	}

	// Numbers first, then strings lexicographically.
	if x, ok := orderable(a); ok {
		if y, ok := orderable(b); ok {
			return order(op, x, y), nil
		}
	}
	sa, okA := a.(string)
	sb, okB := b.(string)
	if okA && okB {
		return order(op, sa, sb), nil
	}
	return false, fmt.Errorf("%w: operator %s requires numeric or string inputs for ordering", domain.ErrInvalidInput, quote(op))
}

func isOrdering(op string) bool {
	switch op {
	case ">", ">=", "<", "<=":
		return true
	}
	return false
}

// order applies an ordering operator. Every comparison with NaN is false.
func order[T cmp.Ordered](op string, x, y T) bool {
	switch op {
	case ">":
		return x > y
	case ">=":
		return x >= y
	case "<":
		return x < y
	}
	return x <= y
}

// orderable converts numbers, numeric strings and one-element lists of
// either to float64.
func orderable(v any) (float64, bool) {
	v = unwrapSingleton(v)
	if s, ok := v.(string); ok {
		f, err := parseFloat(s)
		return f, err == nil
	}
	return asFloat(v)
}
