package expr

import (
	"errors"
	"math"
	"math/rand/v2"
	"strconv"
	"strings"
)

// Bindings maps identifiers to numbers or composite values (see Dimensioned).
type Bindings map[string]any

// FieldResolver looks up literal configuration of sibling nodes for
// `Node.field` references.
type FieldResolver interface {
	Resolve(node, field string) (any, error)
}

// ResolverFunc adapts a function to FieldResolver.
type ResolverFunc func(node, field string) (any, error)

func (f ResolverFunc) Resolve(node, field string) (any, error) { return f(node, field) }

// Option configures a single evaluation.
type Option func(*evaluator)

// WithResolver sets the sibling-field lookup used for dotted references that
// are not width/height of a binding.
func WithResolver(r FieldResolver) Option {
	return func(e *evaluator) {
		e.resolver = r
	}
}

// WithRand sets the source used by randomint and randomchoice.
func WithRand(r *rand.Rand) Option {
	return func(e *evaluator) {
		e.rng = r
	}
}

type evaluator struct {
	bindings Bindings
	resolver FieldResolver
	rng      *rand.Rand
}

// Evaluate parses and evaluates src against b.
func Evaluate(src string, b Bindings, opts ...Option) (Result, error) {
	n, err := Parse(src)
	if err != nil {
		return Result{}, err
	}
	return Eval(n, b, opts...)
}

// Eval reduces an already parsed tree.
func Eval(n Node, b Bindings, opts ...Option) (Result, error) {
	e := &evaluator{bindings: b}
	for _, opt := range opts {
		opt(e)
	}
	if e.rng == nil {
		e.rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}

	v, err := e.eval(n)
	if err != nil {
		return Result{}, err
	}
	if v.kind == KindFloat && (math.IsNaN(v.f) || math.IsInf(v.f, 0)) {
		return Result{}, newError(ErrDomain, n.Pos(), "result %s has no integer value", v)
	}
	return Result{Value: v}, nil
}

// IsVolatile reports whether an expression calls a random function, in which
// case its result must not be cached.
func IsVolatile(expression string) bool {
	return strings.Contains(expression, "random")
}

func (e *evaluator) eval(n Node) (Value, error) {
	switch n := n.(type) {
	case *Constant:
		return e.constant(n)
	case *BinaryOp:
		return e.binary(n)
	case *UnaryOp:
		return e.unary(n)
	case *BoolOp:
		return e.boolOp(n)
	case *Compare:
		return e.compare(n)
	case *Name:
		return e.name(n)
	case *Attribute:
		return e.attribute(n)
	case *Call:
		return e.call(n)
	case *Subscript:
		return Value{}, newError(ErrUnsupportedNode, n.Pos(), "Unsupported expression node: Subscript")
	case *IfExp:
		return Value{}, newError(ErrUnsupportedNode, n.Pos(), "Unsupported expression node: IfExp")
	}
	return Value{}, newError(ErrUnsupportedNode, -1, "Unsupported expression node: %T", n)
}

func (e *evaluator) constant(n *Constant) (Value, error) {
	if v, ok := ValueOf(n.Value); ok {
		return v, nil
	}
	if n.Value == nil {
		return Value{}, newError(ErrTypeMismatch, n.Pos(), "None is not a number")
	}
	return Value{}, newError(ErrTypeMismatch, n.Pos(), "%T constant is not a number", n.Value)
}

func (e *evaluator) binary(n *BinaryOp) (Value, error) {
	l, err := e.eval(n.Left)
	if err != nil {
		return Value{}, err
	}
	r, err := e.eval(n.Right)
	if err != nil {
		return Value{}, err
	}
	fn, ok := binaryOperators[n.Op]
	if !ok || n.Op == OpAnd || n.Op == OpOr {
		return Value{}, newError(ErrUnsupportedOperator, n.Pos(), "Unsupported binary op: %s", n.Op)
	}
	v, err := fn(l.numeric(), r.numeric())
	return v, at(n, err)
}

func (e *evaluator) unary(n *UnaryOp) (Value, error) {
	v, err := e.eval(n.Operand)
	if err != nil {
		return Value{}, err
	}
	fn, ok := unaryOperators[n.Op]
	if !ok {
		return Value{}, newError(ErrUnsupportedOperator, n.Pos(), "Unsupported unary op: %s", n.Op)
	}
	v, err = fn(v.numeric())
	return v, at(n, err)
}

func (e *evaluator) boolOp(n *BoolOp) (Value, error) {
	fn, ok := binaryOperators[n.Op]
	if !ok || (n.Op != OpAnd && n.Op != OpOr) {
		return Value{}, newError(ErrUnsupportedOperator, n.Pos(), "Unsupported bool op: %s", n.Op)
	}
	acc, err := e.eval(n.Values[0])
	if err != nil {
		return Value{}, err
	}
	for _, operand := range n.Values[1:] {
		next, err := e.eval(operand)
		if err != nil {
			return Value{}, err
		}
		if acc, err = fn(acc, next); err != nil {
			return Value{}, at(n, err)
		}
	}
	return acc, nil
}

func (e *evaluator) compare(n *Compare) (Value, error) {
	left, err := e.eval(n.Left)
	if err != nil {
		return Value{}, err
	}
	for i, op := range n.Ops {
		right, err := e.eval(n.Comparators[i])
		if err != nil {
			return Value{}, err
		}
		ok, err := compare(op, left, right)
		if err != nil {
			return Value{}, at(n, err)
		}
		if !ok {
			return Int(0), nil
		}
		left = right
	}
	return Int(1), nil
}

func (e *evaluator) name(n *Name) (Value, error) {
	raw, ok := e.bindings[n.ID]
	if !ok {
		return Value{}, newError(ErrNameNotFound, n.Pos(), "Name not found: %s", n.ID)
	}
	if v, ok := ValueOf(raw); ok {
		return v, nil
	}
	return Value{}, newError(ErrTypeMismatch, n.Pos(), "Complex types need .width/.height, e.g. %s.width", n.ID)
}

func (e *evaluator) attribute(n *Attribute) (Value, error) {
	base, ok := n.Value.(*Name)
	if !ok {
		return Value{}, newError(ErrUnsupportedNode, n.Pos(), "Unsupported attribute base.")
	}

	if raw, bound := e.bindings[base.ID]; bound && (n.Attr == "width" || n.Attr == "height") {
		d, ok := raw.(Dimensioned)
		if !ok {
			return Value{}, newError(ErrTypeMismatch, n.Pos(), "%s has no %s", base.ID, n.Attr)
		}
		w, h, err := d.Dimensions()
		if err != nil {
			return Value{}, newError(ErrTypeMismatch, n.Pos(), "%v", err)
		}
		if n.Attr == "width" {
			return Int(int64(w)), nil
		}
		return Int(int64(h)), nil
	}

	if e.resolver == nil {
		return Value{}, newError(ErrNameNotFound, n.Pos(), "Node not found: %s.%s", base.ID, n.Attr)
	}
	raw, err := e.resolver.Resolve(base.ID, n.Attr)
	if err != nil {
		return Value{}, at(n, err)
	}
	if v, ok := ValueOf(raw); ok {
		return v, nil
	}
	if s, ok := raw.(string); ok {
		if v, ok := parseLiteral(s); ok {
			return v, nil
		}
	}
	return Value{}, newError(ErrTypeMismatch, n.Pos(), "%s.%s is not a number", base.ID, n.Attr)
}

func (e *evaluator) call(n *Call) (Value, error) {
	callee, ok := n.Func.(*Name)
	if !ok {
		return Value{}, newError(ErrNameNotFound, n.Pos(), "Invalid function call.")
	}
	fn, ok := functions[callee.ID]
	if !ok {
		return Value{}, newError(ErrNameNotFound, n.Pos(), "Invalid function call: %s", callee.ID)
	}
	if !fn.accepts(len(n.Args)) {
		return Value{}, newError(ErrSyntax, n.Pos(), "Invalid function call: %s requires %s arguments",
			callee.ID, fn.arityText())
	}

	args := make([]Value, len(n.Args))
	for i, arg := range n.Args {
		v, err := e.eval(arg)
		if err != nil {
			return Value{}, err
		}
		args[i] = v
	}
	v, err := fn.call(e.rng, args)
	return v, at(n, err)
}

// parseLiteral accepts numeric widget text such as "12" or "0.5".
func parseLiteral(s string) (Value, bool) {
	s = strings.TrimSpace(s)
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return Int(i), true
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return Float(f), true
	}
	return Value{}, false
}

// at fills in the position of errors raised below the tree walk.
func at(n Node, err error) error {
	var e *Error
	if errors.As(err, &e) && e.Pos < 0 {
		return &Error{Kind: e.Kind, Pos: n.Pos(), Msg: e.Msg}
	}
	return err
}
