package expr

import (
	"math"
	"math/rand/v2"
	"sort"
	"strconv"
)

// unbounded marks a function without an upper arity limit.
const unbounded = -1

type function struct {
	minArgs, maxArgs int
	hint             string
	call             func(rng *rand.Rand, args []Value) (Value, error)
}

// functions is the whitelist of callable names.
var functions = map[string]function{
	"round":        {1, 2, "number, dp? = 0", round},
	"ceil":         {1, 1, "number", func(_ *rand.Rand, a []Value) (Value, error) { return toInt(a[0], math.Ceil) }},
	"floor":        {1, 1, "number", func(_ *rand.Rand, a []Value) (Value, error) { return toInt(a[0], math.Floor) }},
	"min":          {2, unbounded, "...numbers", func(_ *rand.Rand, a []Value) (Value, error) { return extreme(CmpLt, a), nil }},
	"max":          {2, unbounded, "...numbers", func(_ *rand.Rand, a []Value) (Value, error) { return extreme(CmpGt, a), nil }},
	"randomint":    {2, 2, "min, max", randomInt},
	"randomchoice": {2, unbounded, "...numbers", func(rng *rand.Rand, a []Value) (Value, error) { return a[rng.IntN(len(a))], nil }},
	"sqrt":         {1, 1, "number", sqrt},
	"int":          {1, 1, "number", func(_ *rand.Rand, a []Value) (Value, error) { return toInt(a[0], math.Trunc) }},
	"iif": {3, 3, "cond, true, false", func(_ *rand.Rand, a []Value) (Value, error) {
		if a[0].Truthy() {
			return a[1], nil
		}
		return a[2], nil
	}},
}

func (f function) accepts(n int) bool {
	return n >= f.minArgs && (f.maxArgs == unbounded || n <= f.maxArgs)
}

func (f function) arityText() string {
	if f.maxArgs == unbounded {
		return strconv.Itoa(f.minArgs) + " or more"
	}
	return strconv.Itoa(f.minArgs) + " to " + strconv.Itoa(f.maxArgs)
}

// AutocompleteWord is a host UI completion entry for a whitelisted function.
type AutocompleteWord struct {
	Text        string `json:"text"`
	Value       string `json:"value"`
	ShowValue   bool   `json:"showValue"`
	Hint        string `json:"hint"`
	CaretOffset int    `json:"caretOffset"`
}

// AutocompleteWords lists the whitelisted functions, sorted by name.
func AutocompleteWords() []AutocompleteWord {
	names := FunctionNames()
	words := make([]AutocompleteWord, 0, len(names))
	for _, name := range names {
		words = append(words, AutocompleteWord{
			Text:        name,
			Value:       name + "()",
			Hint:        functions[name].hint,
			CaretOffset: -1,
		})
	}
	return words
}

// FunctionNames returns the callable function names in sorted order.
func FunctionNames() []string {
	names := make([]string, 0, len(functions))
	for name := range functions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func toInt(v Value, fn func(float64) float64) (Value, error) {
	if v.IsInt() {
		return Int(v.i), nil
	}
	f := fn(v.f)
	if math.IsNaN(f) {
		return Value{}, newError(ErrDomain, -1, "cannot convert float NaN to integer")
	}
	if f >= math.MaxInt64 || f < math.MinInt64 {
		return Value{}, newError(ErrDomain, -1, "cannot convert %s to integer", formatFloat(v.f))
	}
	return Int(int64(f)), nil
}

func round(_ *rand.Rand, args []Value) (Value, error) {
	x := args[0]
	if len(args) == 1 {
		return toInt(x, math.RoundToEven)
	}
	if !args[1].IsInt() {
		return Value{}, newError(ErrTypeMismatch, -1, "'float' object cannot be interpreted as an integer")
	}
	nd := args[1].i

	if x.IsInt() {
		if nd >= 0 {
			return Int(x.i), nil
		}
		if nd < -18 {
			return Int(0), nil
		}
		unit := int64(math.Pow10(int(-nd)))
		q, r := x.i/unit, x.i%unit
		if r < 0 {
			q, r = q-1, r+unit
		}
		if 2*r > unit || (2*r == unit && q%2 != 0) {
			q++
		}
		p, ok := mulInt(q, unit)
		if !ok {
			return Value{}, overflow()
		}
		return Int(p), nil
	}

	f := x.f
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return Float(f), nil
	}
	switch {
	case nd > 308:
		return Float(f), nil
	case nd >= 0:
		r, err := strconv.ParseFloat(strconv.FormatFloat(f, 'f', int(nd), 64), 64)
		if err != nil {
			return Value{}, newError(ErrDomain, -1, "%v", err)
		}
		return Float(r), nil
	case nd < -308:
		return Float(math.Copysign(0, f)), nil
	}
	unit := math.Pow10(int(-nd))
	return Float(math.RoundToEven(f/unit) * unit), nil
}

func extreme(want CmpOp, args []Value) Value {
	best := args[0]
	for _, v := range args[1:] {
		if better, _ := compare(want, v, best); better {
			best = v
		}
	}
	return best
}

func randomInt(rng *rand.Rand, args []Value) (Value, error) {
	lo, hi := args[0], args[1]
	if !lo.IsInt() || !hi.IsInt() {
		return Value{}, newError(ErrTypeMismatch, -1, "randomint() needs integer bounds")
	}
	if lo.i > hi.i {
		return Value{}, newError(ErrDomain, -1, "empty range in randomint(%d, %d)", lo.i, hi.i)
	}
	span := uint64(hi.i-lo.i) + 1
	if span == 0 {
		return Int(int64(rng.Uint64())), nil
	}
	return Int(lo.i + int64(rng.Uint64N(span))), nil
}

func sqrt(_ *rand.Rand, args []Value) (Value, error) {
	f := args[0].Float()
	if f < 0 {
		return Value{}, newError(ErrDomain, -1, "math domain error")
	}
	return Float(math.Sqrt(f)), nil
}
