package expr

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
)

// Kind tags the representation held by a Value.
type Kind uint8

const (
	KindInt Kind = iota
	KindFloat
	KindBool
)

func (k Kind) String() string {
	switch k {
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindBool:
		return "bool"
	}
	return "unknown"
}

// Value is a numeric scalar produced by the evaluator.
type Value struct {
	kind Kind
	i    int64
	f    float64
}

// Int returns an integer Value.
func Int(i int64) Value { return Value{kind: KindInt, i: i} }

// Float returns a floating point Value.
func Float(f float64) Value { return Value{kind: KindFloat, f: f} }

// Bool returns a boolean Value. It behaves as 0 or 1 in arithmetic.
func Bool(b bool) Value {
	if b {
		return Value{kind: KindBool, i: 1}
	}
	return Value{kind: KindBool}
}

func boolInt(b bool) Value {
	if b {
		return Int(1)
	}
	return Int(0)
}

// Kind reports the representation of v.
func (v Value) Kind() Kind { return v.kind }

// IsInt reports whether v is integral (int or bool).
func (v Value) IsInt() bool { return v.kind != KindFloat }

// Int returns v truncated toward zero. Non-finite floats saturate.
func (v Value) Int() int64 {
	if v.kind != KindFloat {
		return v.i
	}
	switch {
	case math.IsNaN(v.f):
		return 0
	case v.f >= math.MaxInt64:
		return math.MaxInt64
	case v.f <= math.MinInt64:
		return math.MinInt64
	}
	return int64(v.f)
}

// Float returns v as float64.
func (v Value) Float() float64 {
	if v.kind == KindFloat {
		return v.f
	}
	return float64(v.i)
}

// Truthy follows the usual numeric truth rule: zero is false.
func (v Value) Truthy() bool {
	if v.kind == KindFloat {
		return v.f != 0
	}
	return v.i != 0
}

// numeric normalizes booleans to integers.
func (v Value) numeric() Value {
	if v.kind == KindBool {
		return Int(v.i)
	}
	return v
}

// Interface returns the Go value: int64, float64 or bool.
func (v Value) Interface() any {
	switch v.kind {
	case KindFloat:
		return v.f
	case KindBool:
		return v.i != 0
	}
	return v.i
}

func (v Value) String() string {
	switch v.kind {
	case KindFloat:
		return formatFloat(v.f)
	case KindBool:
		if v.i != 0 {
			return "True"
		}
		return "False"
	}
	return strconv.FormatInt(v.i, 10)
}

// MarshalJSON encodes the underlying number.
func (v Value) MarshalJSON() ([]byte, error) {
	if v.kind == KindFloat && (math.IsNaN(v.f) || math.IsInf(v.f, 0)) {
		return nil, fmt.Errorf("cannot encode non-finite value %s", v)
	}
	return json.Marshal(v.Interface())
}

func formatFloat(f float64) string {
	switch {
	case math.IsNaN(f):
		return "nan"
	case math.IsInf(f, 1):
		return "inf"
	case math.IsInf(f, -1):
		return "-inf"
	}
	abs := math.Abs(f)
	if abs != 0 && (abs < 1e-4 || abs >= 1e16) {
		return strconv.FormatFloat(f, 'e', -1, 64)
	}
	s := strconv.FormatFloat(f, 'f', -1, 64)
	for i := 0; i < len(s); i++ {
		if s[i] == '.' {
			return s
		}
	}
	return s + ".0"
}

// ValueOf converts a Go scalar into a Value. ok is false for anything that is
// not a number or a boolean.
func ValueOf(x any) (Value, bool) {
	switch n := x.(type) {
	case Value:
		return n, true
	case bool:
		return Bool(n), true
	case int:
		return Int(int64(n)), true
	case int8:
		return Int(int64(n)), true
	case int16:
		return Int(int64(n)), true
	case int32:
		return Int(int64(n)), true
	case int64:
		return Int(n), true
	case uint8:
		return Int(int64(n)), true
	case uint16:
		return Int(int64(n)), true
	case uint32:
		return Int(int64(n)), true
	case uint:
		if uint64(n) > math.MaxInt64 {
			return Float(float64(n)), true
		}
		return Int(int64(n)), true
	case uint64:
		if n > math.MaxInt64 {
			return Float(float64(n)), true
		}
		return Int(int64(n)), true
	case float32:
		return Float(float64(n)), true
	case float64:
		return Float(n), true
	case json.Number:
		if i, err := n.Int64(); err == nil {
			return Int(i), true
		}
		if f, err := n.Float64(); err == nil {
			return Float(f), true
		}
	}
	return Value{}, false
}

// Result is the outcome of a successful evaluation. It exposes the same number
// as an integer view and a float view.
type Result struct {
	Value Value
}

// Int returns the integer view, truncating fractional results.
func (r Result) Int() int64 { return r.Value.Int() }

// Float returns the float view.
func (r Result) Float() float64 { return r.Value.Float() }

func (r Result) String() string { return r.Value.String() }
