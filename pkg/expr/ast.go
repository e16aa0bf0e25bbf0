package expr

// Node is a parsed expression. The set of implementations is closed: the
// evaluator switches over exactly these types and rejects anything else.
type Node interface {
	Pos() int
	node()
}

// Operator identifies the syntactic operator of a BinaryOp, UnaryOp or BoolOp.
type Operator int

const (
	OpAdd Operator = iota
	OpSub
	OpMult
	OpMatMult
	OpDiv
	OpFloorDiv
	OpMod
	OpPow
	OpLShift
	OpRShift
	OpBitOr
	OpBitXor
	OpBitAnd
	OpUAdd
	OpUSub
	OpInvert
	OpNot
	OpAnd
	OpOr
)

var operatorNames = [...]string{
	OpAdd: "Add", OpSub: "Sub", OpMult: "Mult", OpMatMult: "MatMult",
	OpDiv: "Div", OpFloorDiv: "FloorDiv", OpMod: "Mod", OpPow: "Pow",
	OpLShift: "LShift", OpRShift: "RShift", OpBitOr: "BitOr", OpBitXor: "BitXor",
	OpBitAnd: "BitAnd", OpUAdd: "UAdd", OpUSub: "USub", OpInvert: "Invert",
	OpNot: "Not", OpAnd: "And", OpOr: "Or",
}

func (o Operator) String() string {
	if int(o) < len(operatorNames) {
		return operatorNames[o]
	}
	return "Unknown"
}

// CmpOp identifies a comparison operator in a Compare chain.
type CmpOp int

const (
	CmpEq CmpOp = iota
	CmpNotEq
	CmpLt
	CmpLtE
	CmpGt
	CmpGtE
	CmpIn
	CmpNotIn
	CmpIs
	CmpIsNot
)

var cmpNames = [...]string{
	CmpEq: "Eq", CmpNotEq: "NotEq", CmpLt: "Lt", CmpLtE: "LtE", CmpGt: "Gt",
	CmpGtE: "GtE", CmpIn: "In", CmpNotIn: "NotIn", CmpIs: "Is", CmpIsNot: "IsNot",
}

func (c CmpOp) String() string {
	if int(c) < len(cmpNames) {
		return cmpNames[c]
	}
	return "Unknown"
}

type pos int

func (p pos) Pos() int { return int(p) }

// Constant is a literal: int64, float64, bool, string or nil (None).
type Constant struct {
	pos
	Value any
}

// BinaryOp is `Left Op Right`.
type BinaryOp struct {
	pos
	Op          Operator
	Left, Right Node
}

// UnaryOp is `Op Operand`.
type UnaryOp struct {
	pos
	Op      Operator
	Operand Node
}

// BoolOp is a chain of `and` or `or` over two or more values.
type BoolOp struct {
	pos
	Op     Operator
	Values []Node
}

// Compare is `Left Ops[0] Comparators[0] Ops[1] Comparators[1] ...`.
type Compare struct {
	pos
	Left        Node
	Ops         []CmpOp
	Comparators []Node
}

// Name is an identifier reference.
type Name struct {
	pos
	ID string
}

// Attribute is `Value.Attr`.
type Attribute struct {
	pos
	Value Node
	Attr  string
}

// Call is `Func(Args...)`.
type Call struct {
	pos
	Func Node
	Args []Node
}

// Subscript is `Value[Index]`. It parses but never evaluates.
type Subscript struct {
	pos
	Value, Index Node
}

// IfExp is `Body if Test else Else`. It parses but never evaluates.
type IfExp struct {
	pos
	Test, Body, Else Node
}

func (*Constant) node()  {}
func (*BinaryOp) node()  {}
func (*UnaryOp) node()   {}
func (*BoolOp) node()    {}
func (*Compare) node()   {}
func (*Name) node()      {}
func (*Attribute) node() {}
func (*Call) node()      {}
func (*Subscript) node() {}
func (*IfExp) node()     {}
