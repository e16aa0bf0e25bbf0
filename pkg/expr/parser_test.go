package expr

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_Precedence(t *testing.T) {
	n, err := Parse("1 + 2 * 3")
	require.NoError(t, err)

	add, ok := n.(*BinaryOp)
	require.True(t, ok, "root should be BinaryOp, got %T", n)
	assert.Equal(t, OpAdd, add.Op)
	mul, ok := add.Right.(*BinaryOp)
	require.True(t, ok)
	assert.Equal(t, OpMult, mul.Op)
}

func TestParse_PowerBindsTighterThanUnaryMinus(t *testing.T) {
	n, err := Parse("-2 ** 2")
	require.NoError(t, err)

	neg, ok := n.(*UnaryOp)
	require.True(t, ok, "root should be UnaryOp, got %T", n)
	assert.Equal(t, OpUSub, neg.Op)
	_, ok = neg.Operand.(*BinaryOp)
	assert.True(t, ok)
}

func TestParse_ChainsAndAttributes(t *testing.T) {
	n, err := Parse("a.width < b < 3")
	require.NoError(t, err)
	cmp, ok := n.(*Compare)
	require.True(t, ok)
	assert.Equal(t, []CmpOp{CmpLt, CmpLt}, cmp.Ops)
	attr, ok := cmp.Left.(*Attribute)
	require.True(t, ok)
	assert.Equal(t, "width", attr.Attr)

	n, err = Parse("1 and 0 and 1")
	require.NoError(t, err)
	b, ok := n.(*BoolOp)
	require.True(t, ok)
	assert.Len(t, b.Values, 3)

	n, err = Parse("x not in y")
	require.NoError(t, err)
	assert.Equal(t, []CmpOp{CmpNotIn}, n.(*Compare).Ops)
}

func TestParse_Numbers(t *testing.T) {
	tests := []struct {
		src  string
		want any
	}{
		{"42", int64(42)},
		{"1_000", int64(1000)},
		{"0x1F", int64(31)},
		{"0o17", int64(15)},
		{"0b101", int64(5)},
		{"0", int64(0)},
		{"00", int64(0)},
		{"1.5", 1.5},
		{".5", 0.5},
		{"1.", 1.0},
		{"1e3", 1000.0},
		{"2.5E-1", 0.25},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			n, err := Parse(tt.src)
			require.NoError(t, err)
			c, ok := n.(*Constant)
			require.True(t, ok)
			assert.Equal(t, tt.want, c.Value)
		})
	}
}

func TestParse_Newlines(t *testing.T) {
	n, err := Parse("1 +\r\n 2")
	require.NoError(t, err)
	assert.IsType(t, &BinaryOp{}, n)
}

func TestParse_SyntaxErrors(t *testing.T) {
	tests := []string{
		"",
		"1 +",
		"(1",
		"010",
		"1j",
		"1__0",
		"3abc",
		"a = 1",
		"lambda: 1",
		"'open",
		"1 if 2",
		"f(1,,2)",
		"a.if",
		"$",
	}
	for _, src := range tests {
		t.Run(src, func(t *testing.T) {
			_, err := Parse(src)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrSyntax)
		})
	}
}

func TestParse_ErrorOffset(t *testing.T) {
	_, err := Parse("1 + $")
	require.Error(t, err)

	var e *Error
	require.ErrorAs(t, err, &e)
	assert.Equal(t, 4, e.Pos)
}

func TestParse_TupleIsUnsupported(t *testing.T) {
	_, err := Parse("(1, 2)")
	assert.ErrorIs(t, err, ErrUnsupportedNode)
}
