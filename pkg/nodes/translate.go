package nodes

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/agavesunset/agave/pkg/expr"
)

// Starlark has no ** operator. Expressions that use it are parsed with the
// expression grammar and printed back as Starlark with pow() calls; every
// other expression is handed to Starlark untouched.
func starlarkSource(src string) (string, error) {
	if !strings.Contains(src, "**") {
		return src, nil
	}
	n, err := expr.Parse(src)
	if err != nil {
		return "", err
	}
	var b strings.Builder
	if err := writeStarlark(&b, n); err != nil {
		return "", err
	}
	return b.String(), nil
}

var starlarkBinary = map[expr.Operator]string{
	expr.OpAdd: "+", expr.OpSub: "-", expr.OpMult: "*", expr.OpDiv: "/",
	expr.OpFloorDiv: "//", expr.OpMod: "%", expr.OpLShift: "<<", expr.OpRShift: ">>",
	expr.OpBitOr: "|", expr.OpBitXor: "^", expr.OpBitAnd: "&",
}

var starlarkUnary = map[expr.Operator]string{
	expr.OpUAdd: "+", expr.OpUSub: "-", expr.OpInvert: "~", expr.OpNot: "not ",
}

var starlarkCompare = map[expr.CmpOp]string{
	expr.CmpEq: "==", expr.CmpNotEq: "!=", expr.CmpLt: "<", expr.CmpLtE: "<=",
	expr.CmpGt: ">", expr.CmpGtE: ">=", expr.CmpIn: "in", expr.CmpNotIn: "not in",
}

// writeStarlark parenthesizes every compound node so precedence never
// depends on the target grammar.
func writeStarlark(b *strings.Builder, n expr.Node) error {
	switch n := n.(type) {
	case *expr.Constant:
		b.WriteString(starlarkLiteral(n.Value))

	case *expr.Name:
		b.WriteString(n.ID)

	case *expr.BinaryOp:
		if n.Op == expr.OpPow {
			return writeCall(b, "pow", n.Left, n.Right)
		}
		op, ok := starlarkBinary[n.Op]
		if !ok {
			return fmt.Errorf("operator %s is not supported at offset %d", n.Op, n.Pos())
		}
		b.WriteByte('(')
		if err := writeStarlark(b, n.Left); err != nil {
			return err
		}
		b.WriteString(" " + op + " ")
		if err := writeStarlark(b, n.Right); err != nil {
			return err
		}
		b.WriteByte(')')

	case *expr.UnaryOp:
		op, ok := starlarkUnary[n.Op]
		if !ok {
			return fmt.Errorf("operator %s is not supported at offset %d", n.Op, n.Pos())
		}
		b.WriteString("(" + op)
		if err := writeStarlark(b, n.Operand); err != nil {
			return err
		}
		b.WriteByte(')')

	case *expr.BoolOp:
		sep := " and "
		if n.Op == expr.OpOr {
			sep = " or "
		}
		b.WriteByte('(')
		for i, v := range n.Values {
			if i > 0 {
				b.WriteString(sep)
			}
			if err := writeStarlark(b, v); err != nil {
				return err
			}
		}
		b.WriteByte(')')

	case *expr.Compare:
		// a < b < c is expanded to (a < b) and (b < c); Starlark does not chain.
		left := n.Left
		b.WriteByte('(')
		for i, op := range n.Ops {
			sym, ok := starlarkCompare[op]
			if !ok {
				return fmt.Errorf("comparison %s is not supported at offset %d", op, n.Pos())
			}
			if i > 0 {
				b.WriteString(" and ")
			}
			b.WriteByte('(')
			if err := writeStarlark(b, left); err != nil {
				return err
			}
			b.WriteString(" " + sym + " ")
			if err := writeStarlark(b, n.Comparators[i]); err != nil {
				return err
			}
			b.WriteByte(')')
			left = n.Comparators[i]
		}
		b.WriteByte(')')

	case *expr.Attribute:
		if err := writeStarlark(b, n.Value); err != nil {
			return err
		}
		b.WriteString("." + n.Attr)

	case *expr.Call:
		if err := writeStarlark(b, n.Func); err != nil {
			return err
		}
		return writeArgs(b, n.Args)

	case *expr.Subscript:
		if err := writeStarlark(b, n.Value); err != nil {
			return err
		}
		b.WriteByte('[')
		if err := writeStarlark(b, n.Index); err != nil {
			return err
		}
		b.WriteByte(']')

	case *expr.IfExp:
		b.WriteByte('(')
		if err := writeStarlark(b, n.Body); err != nil {
			return err
		}
		b.WriteString(" if ")
		if err := writeStarlark(b, n.Test); err != nil {
			return err
		}
		b.WriteString(" else ")
		if err := writeStarlark(b, n.Else); err != nil {
			return err
		}
		b.WriteByte(')')

	default:
		return fmt.Errorf("unsupported expression node %T", n)
	}
	return nil
}

func writeCall(b *strings.Builder, fn string, args ...expr.Node) error {
	b.WriteString(fn)
	return writeArgs(b, args)
}

func writeArgs(b *strings.Builder, args []expr.Node) error {
	b.WriteByte('(')
	for i, a := range args {
		if i > 0 {
			b.WriteString(", ")
		}
		if err := writeStarlark(b, a); err != nil {
			return err
		}
	}
	b.WriteByte(')')
	return nil
}

func starlarkLiteral(v any) string {
	switch x := v.(type) {
	case nil:
		return "None"
	case bool:
		if x {
			return "True"
		}
		return "False"
	case int64:
		return strconv.FormatInt(x, 10)
	case float64:
		switch {
		case math.IsNaN(x):
			return `float("nan")`
		case math.IsInf(x, 1):
			return `float("inf")`
		case math.IsInf(x, -1):
			return `float("-inf")`
		}
		s := strconv.FormatFloat(x, 'g', -1, 64)
		if !strings.ContainsAny(s, ".e") {
			s += ".0"
		}
		return s
	case string:
		return strconv.Quote(x)
	}
	return fmt.Sprint(v)
}
