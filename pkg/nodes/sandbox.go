package nodes

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"math"
	"strconv"
	"strings"

	starlarkmath "go.starlark.net/lib/math"
	"go.starlark.net/starlark"
	"go.starlark.net/syntax"
)

// maxSandboxSteps bounds the work a single free-form expression may do.
const maxSandboxSteps = 1 << 20

var (
	// ErrEmptyExpression is returned when a free-form expression is blank.
	ErrEmptyExpression = errors.New("expression must not be empty")
	// ErrExpression wraps failures raised while running a free-form expression.
	ErrExpression = errors.New("failed to evaluate expression")
)

// sandboxGlobals are the names visible to free-form expressions besides the
// variables: the math module flattened to top level plus a few builtins.
var sandboxGlobals = func() starlark.StringDict {
	env := maps.Clone(starlarkmath.Module.Members)
	env["math"] = starlarkmath.Module
	env["abs"] = starlark.NewBuiltin("abs", builtinAbs)
	env["pow"] = starlark.NewBuiltin("pow", builtinPow)
	env["round"] = starlark.NewBuiltin("round", builtinRound)
	env["sum"] = starlark.NewBuiltin("sum", builtinSum)
	env["clamp"] = starlark.NewBuiltin("clamp", builtinClamp)
	return env
}()

var aliases = [][2]string{{"x", "a"}, {"y", "b"}, {"z", "c"}, {"A", "a"}, {"B", "b"}, {"C", "c"}}

// evalSandboxed runs a free-form expression in a Starlark thread with no
// access to anything but math and the given variables.
func evalSandboxed(ctx context.Context, src string, values map[string]float64) (float64, error) {
	if strings.TrimSpace(src) == "" {
		return 0, ErrEmptyExpression
	}

	env := maps.Clone(sandboxGlobals)
	for name, v := range values {
		env[name] = starlark.Float(v)
	}
	for _, pair := range aliases {
		if _, taken := env[pair[0]]; !taken {
			env[pair[0]] = starlark.Float(values[pair[1]])
		}
	}

	code, err := starlarkSource(src)
	if err != nil {
		return 0, fmt.Errorf("%w '%s': %v", ErrExpression, src, err)
	}

	thread := &starlark.Thread{Name: "calculate"}
	thread.SetMaxExecutionSteps(maxSandboxSteps)
	stop := context.AfterFunc(ctx, func() { thread.Cancel(ctx.Err().Error()) })
	defer stop()

	v, err := starlark.EvalOptions(&syntax.FileOptions{}, thread, "<expression>", code, env)
	if err != nil {
		return 0, fmt.Errorf("%w '%s': %v", ErrExpression, src, err)
	}
	f, err := starlarkFloat(v)
	if err != nil {
		return 0, fmt.Errorf("%w: expression result cannot be converted to float", ErrExpression)
	}
	return f, nil
}

func starlarkFloat(v starlark.Value) (float64, error) {
	switch x := v.(type) {
	case starlark.Bool:
		if x {
			return 1, nil
		}
		return 0, nil
	case starlark.String:
		return parseFloat(string(x))
	}
	if f, ok := starlark.AsFloat(v); ok {
		return f, nil
	}
	return 0, fmt.Errorf("got %s, want float or int", v.Type())
}

func floatArgs(b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple, lo, hi int) ([]float64, error) {
	if len(kwargs) > 0 {
		return nil, fmt.Errorf("%s: unexpected keyword arguments", b.Name())
	}
	if len(args) < lo || len(args) > hi {
		return nil, fmt.Errorf("%s: got %d arguments, want %d to %d", b.Name(), len(args), lo, hi)
	}
	out := make([]float64, len(args))
	for i, a := range args {
		f, ok := starlark.AsFloat(a)
		if !ok {
			return nil, fmt.Errorf("%s: argument %d: got %s, want number", b.Name(), i+1, a.Type())
		}
		out[i] = f
	}
	return out, nil
}

func builtinAbs(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	if len(args) == 1 {
		if i, ok := args[0].(starlark.Int); ok {
			if i.Sign() < 0 {
				return starlark.MakeInt(0).Sub(i), nil
			}
			return i, nil
		}
	}
	f, err := floatArgs(b, args, kwargs, 1, 1)
	if err != nil {
		return nil, err
	}
	return starlark.Float(math.Abs(f[0])), nil
}

func builtinPow(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	f, err := floatArgs(b, args, kwargs, 2, 2)
	if err != nil {
		return nil, err
	}
	base, exp := f[0], f[1]
	if base == 0 && exp < 0 {
		return nil, errors.New("pow: 0.0 cannot be raised to a negative power")
	}
	if base < 0 && exp != math.Trunc(exp) {
		return nil, errors.New("pow: negative number cannot be raised to a fractional power")
	}
	return starlark.Float(math.Pow(base, exp)), nil
}

// builtinRound rounds half to even. Without ndigits the result is an int.
func builtinRound(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	f, err := floatArgs(b, args, kwargs, 1, 2)
	if err != nil {
		return nil, err
	}
	x := f[0]
	if len(f) == 1 {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return nil, fmt.Errorf("round: cannot convert %v to integer", x)
		}
		return starlark.MakeInt64(int64(math.RoundToEven(x))), nil
	}
	nd := int(f[1])
	if nd >= 0 {
		r, err := strconv.ParseFloat(strconv.FormatFloat(x, 'f', nd, 64), 64)
		if err != nil {
			return nil, err
		}
		return starlark.Float(r), nil
	}
	unit := math.Pow10(-nd)
	return starlark.Float(math.RoundToEven(x/unit) * unit), nil
}

func builtinSum(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var iterable starlark.Iterable
	var start starlark.Value = starlark.MakeInt(0)
	if err := starlark.UnpackPositionalArgs(b.Name(), args, kwargs, 1, &iterable, &start); err != nil {
		return nil, err
	}
	total, ok := starlark.AsFloat(start)
	if !ok {
		return nil, fmt.Errorf("sum: start: got %s, want number", start.Type())
	}

	iter := iterable.Iterate()
	defer iter.Done()
	var x starlark.Value
	for iter.Next(&x) {
		f, ok := starlark.AsFloat(x)
		if !ok {
			return nil, fmt.Errorf("sum: got %s, want number", x.Type())
		}
		total += f
	}
	return starlark.Float(total), nil
}

func builtinClamp(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	f, err := floatArgs(b, args, kwargs, 3, 3)
	if err != nil {
		return nil, err
	}
	return starlark.Float(clamp(f[0], f[1], f[2])), nil
}

// clamp limits v to the range spanned by the bounds in either order.
func clamp(v, lower, upper float64) float64 {
	lo, hi := math.Min(lower, upper), math.Max(lower, upper)
	return math.Min(math.Max(v, lo), hi)
}
