package expr

import (
	"math"
)

type binaryFunc func(l, r Value) (Value, error)
type unaryFunc func(v Value) (Value, error)

// binaryOperators is the whitelist for BinaryOp and BoolOp nodes. Operands
// reaching these functions are already numeric (no bool kind) except for the
// logical entries, which receive raw values.
var binaryOperators = map[Operator]binaryFunc{
	OpAdd:      add,
	OpSub:      sub,
	OpMult:     mul,
	OpDiv:      trueDiv,
	OpFloorDiv: floorDiv,
	OpMod:      mod,
	OpPow:      pow,
	OpBitXor:   intOnly("^", func(a, b int64) (int64, error) { return a ^ b, nil }),
	OpBitAnd:   intOnly("&", func(a, b int64) (int64, error) { return a & b, nil }),
	OpBitOr:    intOnly("|", func(a, b int64) (int64, error) { return a | b, nil }),
	OpLShift:   intOnly("<<", lshift),
	OpRShift:   intOnly(">>", rshift),
	OpAnd:      func(l, r Value) (Value, error) { return boolInt(l.Truthy() && r.Truthy()), nil },
	OpOr:       func(l, r Value) (Value, error) { return boolInt(l.Truthy() || r.Truthy()), nil },
}

// unaryOperators is the whitelist for UnaryOp nodes. Unary plus is
// deliberately absent.
var unaryOperators = map[Operator]unaryFunc{
	OpUSub: neg,
	OpInvert: func(v Value) (Value, error) {
		if !v.IsInt() {
			return Value{}, newError(ErrTypeMismatch, -1, "bad operand type for unary ~: 'float'")
		}
		return Int(^v.i), nil
	},
	OpNot: func(v Value) (Value, error) { return boolInt(!v.Truthy()), nil },
}

func add(l, r Value) (Value, error) {
	if l.IsInt() && r.IsInt() {
		s := l.i + r.i
		if (s > l.i) != (r.i > 0) {
			return Value{}, overflow()
		}
		return Int(s), nil
	}
	return Float(l.Float() + r.Float()), nil
}

func sub(l, r Value) (Value, error) {
	if l.IsInt() && r.IsInt() {
		d := l.i - r.i
		if (d < l.i) != (r.i > 0) {
			return Value{}, overflow()
		}
		return Int(d), nil
	}
	return Float(l.Float() - r.Float()), nil
}

func mul(l, r Value) (Value, error) {
	if l.IsInt() && r.IsInt() {
		p, ok := mulInt(l.i, r.i)
		if !ok {
			return Value{}, overflow()
		}
		return Int(p), nil
	}
	return Float(l.Float() * r.Float()), nil
}

func mulInt(a, b int64) (int64, bool) {
	if a == 0 || b == 0 {
		return 0, true
	}
	p := a * b
	if p/b != a || (a == -1 && b == math.MinInt64) || (b == -1 && a == math.MinInt64) {
		return 0, false
	}
	return p, true
}

func trueDiv(l, r Value) (Value, error) {
	if r.Float() == 0 {
		return Value{}, newError(ErrDivisionByZero, -1, "division by zero")
	}
	return Float(l.Float() / r.Float()), nil
}

func floorDiv(l, r Value) (Value, error) {
	if l.IsInt() && r.IsInt() {
		if r.i == 0 {
			return Value{}, newError(ErrDivisionByZero, -1, "integer division or modulo by zero")
		}
		if l.i == math.MinInt64 && r.i == -1 {
			return Value{}, overflow()
		}
		q := l.i / r.i
		if (l.i%r.i != 0) && ((l.i < 0) != (r.i < 0)) {
			q--
		}
		return Int(q), nil
	}
	if r.Float() == 0 {
		return Value{}, newError(ErrDivisionByZero, -1, "float floor division by zero")
	}
	return Float(math.Floor(l.Float() / r.Float())), nil
}

func mod(l, r Value) (Value, error) {
	if l.IsInt() && r.IsInt() {
		if r.i == 0 {
			return Value{}, newError(ErrDivisionByZero, -1, "integer division or modulo by zero")
		}
		if r.i == -1 {
			return Int(0), nil
		}
		m := l.i % r.i
		if m != 0 && (m < 0) != (r.i < 0) {
			m += r.i
		}
		return Int(m), nil
	}
	b := r.Float()
	if b == 0 {
		return Value{}, newError(ErrDivisionByZero, -1, "float modulo")
	}
	m := math.Mod(l.Float(), b)
	if m != 0 && (m < 0) != (b < 0) {
		m += b
	}
	return Float(m), nil
}

func pow(l, r Value) (Value, error) {
	if l.IsInt() && r.IsInt() {
		if r.i >= 0 {
			return powInt(l.i, r.i)
		}
		if l.i == 0 {
			return Value{}, newError(ErrDivisionByZero, -1, "0.0 cannot be raised to a negative power")
		}
		return Float(math.Pow(float64(l.i), float64(r.i))), nil
	}
	base, exp := l.Float(), r.Float()
	if base == 0 && exp < 0 {
		return Value{}, newError(ErrDivisionByZero, -1, "0.0 cannot be raised to a negative power")
	}
	if base < 0 && exp != math.Trunc(exp) && !math.IsInf(exp, 0) {
		return Value{}, newError(ErrDomain, -1, "negative number cannot be raised to a fractional power")
	}
	res := math.Pow(base, exp)
	if math.IsInf(res, 0) && !math.IsInf(base, 0) && !math.IsInf(exp, 0) {
		return Value{}, newError(ErrDomain, -1, "numerical result out of range")
	}
	return Float(res), nil
}

func powInt(base, exp int64) (Value, error) {
	result := int64(1)
	for exp > 0 {
		if exp&1 == 1 {
			var ok bool
			if result, ok = mulInt(result, base); !ok {
				return Value{}, overflow()
			}
		}
		exp >>= 1
		if exp > 0 {
			var ok bool
			if base, ok = mulInt(base, base); !ok {
				return Value{}, overflow()
			}
		}
	}
	return Int(result), nil
}

func lshift(a, n int64) (int64, error) {
	if n < 0 {
		return 0, newError(ErrDomain, -1, "negative shift count")
	}
	if a == 0 {
		return 0, nil
	}
	if n >= 63 || (a<<n)>>n != a {
		return 0, overflow()
	}
	return a << n, nil
}

func rshift(a, n int64) (int64, error) {
	if n < 0 {
		return 0, newError(ErrDomain, -1, "negative shift count")
	}
	if n >= 63 {
		if a < 0 {
			return -1, nil
		}
		return 0, nil
	}
	return a >> n, nil
}

func intOnly(symbol string, fn func(a, b int64) (int64, error)) binaryFunc {
	return func(l, r Value) (Value, error) {
		if !l.IsInt() || !r.IsInt() {
			return Value{}, newError(ErrTypeMismatch, -1, "unsupported operand type(s) for %s: '%s' and '%s'",
				symbol, l.kind, r.kind)
		}
		v, err := fn(l.i, r.i)
		if err != nil {
			return Value{}, err
		}
		return Int(v), nil
	}
}

func neg(v Value) (Value, error) {
	if v.IsInt() {
		if v.i == math.MinInt64 {
			return Value{}, overflow()
		}
		return Int(-v.i), nil
	}
	return Float(-v.f), nil
}

func overflow() *Error {
	return newError(ErrDomain, -1, "integer overflow")
}

// compare applies a relational operator to two scalars.
func compare(op CmpOp, l, r Value) (bool, error) {
	if l.IsInt() && r.IsInt() {
		a, b := l.i, r.i
		switch op {
		case CmpEq:
			return a == b, nil
		case CmpNotEq:
			return a != b, nil
		case CmpLt:
			return a < b, nil
		case CmpLtE:
			return a <= b, nil
		case CmpGt:
			return a > b, nil
		case CmpGtE:
			return a >= b, nil
		}
	} else {
		a, b := l.Float(), r.Float()
		switch op {
		case CmpEq:
			return a == b, nil
		case CmpNotEq:
			return a != b, nil
		case CmpLt:
			return a < b, nil
		case CmpLtE:
			return a <= b, nil
		case CmpGt:
			return a > b, nil
		case CmpGtE:
			return a >= b, nil
		}
	}
	return false, newError(ErrUnsupportedOperator, -1, "Unsupported compare operator: %s", op)
}
