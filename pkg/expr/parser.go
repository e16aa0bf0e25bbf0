package expr

import (
	"errors"
	"strconv"
	"strings"
)

var keywords = map[string]bool{
	"and": true, "or": true, "not": true, "in": true, "is": true,
	"if": true, "else": true, "lambda": true,
	"True": true, "False": true, "None": true,
}

var (
	bitOrOps  = map[string]Operator{"|": OpBitOr}
	bitXorOps = map[string]Operator{"^": OpBitXor}
	bitAndOps = map[string]Operator{"&": OpBitAnd}
	shiftOps  = map[string]Operator{"<<": OpLShift, ">>": OpRShift}
	arithOps  = map[string]Operator{"+": OpAdd, "-": OpSub}
	termOps   = map[string]Operator{"*": OpMult, "/": OpDiv, "//": OpFloorDiv, "%": OpMod, "@": OpMatMult}
	unaryOps  = map[string]Operator{"+": OpUAdd, "-": OpUSub, "~": OpInvert}
	cmpOps    = map[string]CmpOp{"==": CmpEq, "!=": CmpNotEq, "<": CmpLt, "<=": CmpLtE, ">": CmpGt, ">=": CmpGtE}
)

// Normalize prepares raw widget text for parsing: newlines become spaces and
// carriage returns are dropped.
func Normalize(src string) string {
	return strings.ReplaceAll(strings.ReplaceAll(src, "\n", " "), "\r", "")
}

// Parse turns src into a syntax tree. Only a single expression is accepted.
func Parse(src string) (Node, error) {
	toks, err := tokenize(Normalize(src))
	if err != nil {
		return nil, err
	}
	p := &parser{tokens: toks}
	if p.peek().typ == tokEOF {
		return nil, newError(ErrSyntax, 0, "empty expression")
	}
	n, err := p.test()
	if err != nil {
		return nil, err
	}
	if tok := p.peek(); tok.typ != tokEOF {
		return nil, newError(ErrSyntax, tok.pos, "unexpected %q", tok.value)
	}
	return n, nil
}

type parser struct {
	tokens []token
	pos    int
}

func (p *parser) peek() token {
	return p.tokens[p.pos]
}

func (p *parser) peekAt(offset int) token {
	if p.pos+offset >= len(p.tokens) {
		return p.tokens[len(p.tokens)-1]
	}
	return p.tokens[p.pos+offset]
}

func (p *parser) advance() token {
	tok := p.tokens[p.pos]
	if tok.typ != tokEOF {
		p.pos++
	}
	return tok
}

func (p *parser) isKeyword(word string) bool {
	tok := p.peek()
	return tok.typ == tokName && tok.value == word
}

func (p *parser) expect(typ tokenType, what string) (token, error) {
	tok := p.peek()
	if tok.typ != typ {
		if tok.typ == tokEOF {
			return tok, newError(ErrSyntax, tok.pos, "expected %s, got end of expression", what)
		}
		return tok, newError(ErrSyntax, tok.pos, "expected %s, got %q", what, tok.value)
	}
	return p.advance(), nil
}

// test: or_test ['if' or_test 'else' test]
func (p *parser) test() (Node, error) {
	start := p.peek().pos
	body, err := p.orTest()
	if err != nil {
		return nil, err
	}
	if !p.isKeyword("if") {
		return body, nil
	}
	p.advance()
	cond, err := p.orTest()
	if err != nil {
		return nil, err
	}
	if !p.isKeyword("else") {
		tok := p.peek()
		return nil, newError(ErrSyntax, tok.pos, "expected 'else' in conditional expression")
	}
	p.advance()
	els, err := p.test()
	if err != nil {
		return nil, err
	}
	return &IfExp{pos: pos(start), Test: cond, Body: body, Else: els}, nil
}

func (p *parser) orTest() (Node, error)  { return p.boolChain("or", OpOr, p.andTest) }
func (p *parser) andTest() (Node, error) { return p.boolChain("and", OpAnd, p.notTest) }

func (p *parser) boolChain(word string, op Operator, next func() (Node, error)) (Node, error) {
	start := p.peek().pos
	first, err := next()
	if err != nil {
		return nil, err
	}
	values := []Node{first}
	for p.isKeyword(word) {
		p.advance()
		n, err := next()
		if err != nil {
			return nil, err
		}
		values = append(values, n)
	}
	if len(values) == 1 {
		return first, nil
	}
	return &BoolOp{pos: pos(start), Op: op, Values: values}, nil
}

func (p *parser) notTest() (Node, error) {
	if !p.isKeyword("not") {
		return p.comparison()
	}
	tok := p.advance()
	operand, err := p.notTest()
	if err != nil {
		return nil, err
	}
	return &UnaryOp{pos: pos(tok.pos), Op: OpNot, Operand: operand}, nil
}

func (p *parser) comparison() (Node, error) {
	start := p.peek().pos
	left, err := p.bitOr()
	if err != nil {
		return nil, err
	}
	var ops []CmpOp
	var comparators []Node
	for {
		op, ok := p.cmpOp()
		if !ok {
			break
		}
		right, err := p.bitOr()
		if err != nil {
			return nil, err
		}
		ops = append(ops, op)
		comparators = append(comparators, right)
	}
	if len(ops) == 0 {
		return left, nil
	}
	return &Compare{pos: pos(start), Left: left, Ops: ops, Comparators: comparators}, nil
}

func (p *parser) cmpOp() (CmpOp, bool) {
	tok := p.peek()
	switch {
	case tok.typ == tokOp:
		if op, ok := cmpOps[tok.value]; ok {
			p.advance()
			return op, true
		}
	case p.isKeyword("in"):
		p.advance()
		return CmpIn, true
	case p.isKeyword("not"):
		next := p.peekAt(1)
		if next.typ == tokName && next.value == "in" {
			p.advance()
			p.advance()
			return CmpNotIn, true
		}
	case p.isKeyword("is"):
		p.advance()
		if p.isKeyword("not") {
			p.advance()
			return CmpIsNot, true
		}
		return CmpIs, true
	}
	return 0, false
}

func (p *parser) bitOr() (Node, error)  { return p.binary(p.bitXor, bitOrOps) }
func (p *parser) bitXor() (Node, error) { return p.binary(p.bitAnd, bitXorOps) }
func (p *parser) bitAnd() (Node, error) { return p.binary(p.shift, bitAndOps) }
func (p *parser) shift() (Node, error)  { return p.binary(p.arith, shiftOps) }
func (p *parser) arith() (Node, error)  { return p.binary(p.term, arithOps) }
func (p *parser) term() (Node, error)   { return p.binary(p.factor, termOps) }

// binary parses a left-associative level of the grammar.
func (p *parser) binary(next func() (Node, error), ops map[string]Operator) (Node, error) {
	left, err := next()
	if err != nil {
		return nil, err
	}
	for {
		tok := p.peek()
		if tok.typ != tokOp {
			return left, nil
		}
		op, ok := ops[tok.value]
		if !ok {
			return left, nil
		}
		p.advance()
		right, err := next()
		if err != nil {
			return nil, err
		}
		left = &BinaryOp{pos: pos(tok.pos), Op: op, Left: left, Right: right}
	}
}

// factor: ('+'|'-'|'~') factor | power
func (p *parser) factor() (Node, error) {
	tok := p.peek()
	if tok.typ == tokOp {
		if op, ok := unaryOps[tok.value]; ok {
			p.advance()
			operand, err := p.factor()
			if err != nil {
				return nil, err
			}
			return &UnaryOp{pos: pos(tok.pos), Op: op, Operand: operand}, nil
		}
	}
	return p.power()
}

// power: primary ['**' factor]
func (p *parser) power() (Node, error) {
	base, err := p.primary()
	if err != nil {
		return nil, err
	}
	tok := p.peek()
	if tok.typ != tokOp || tok.value != "**" {
		return base, nil
	}
	p.advance()
	exp, err := p.factor()
	if err != nil {
		return nil, err
	}
	return &BinaryOp{pos: pos(tok.pos), Op: OpPow, Left: base, Right: exp}, nil
}

func (p *parser) primary() (Node, error) {
	n, err := p.atom()
	if err != nil {
		return nil, err
	}
	for {
		tok := p.peek()
		switch tok.typ {
		case tokDot:
			p.advance()
			name, err := p.expect(tokName, "attribute name")
			if err != nil {
				return nil, err
			}
			if keywords[name.value] {
				return nil, newError(ErrSyntax, name.pos, "invalid attribute name %q", name.value)
			}
			n = &Attribute{pos: pos(tok.pos), Value: n, Attr: name.value}
		case tokLParen:
			p.advance()
			args, err := p.arguments()
			if err != nil {
				return nil, err
			}
			n = &Call{pos: pos(tok.pos), Func: n, Args: args}
		case tokLBracket:
			p.advance()
			index, err := p.test()
			if err != nil {
				return nil, err
			}
			if _, err := p.expect(tokRBracket, "']'"); err != nil {
				return nil, err
			}
			n = &Subscript{pos: pos(tok.pos), Value: n, Index: index}
		default:
			return n, nil
		}
	}
}

func (p *parser) arguments() ([]Node, error) {
	var args []Node
	for p.peek().typ != tokRParen {
		arg, err := p.test()
		if err != nil {
			return nil, err
		}
		args = append(args, arg)
		if p.peek().typ != tokComma {
			break
		}
		p.advance()
	}
	if _, err := p.expect(tokRParen, "')'"); err != nil {
		return nil, err
	}
	return args, nil
}

func (p *parser) atom() (Node, error) {
	tok := p.peek()
	switch tok.typ {
	case tokNumber:
		p.advance()
		v, err := parseNumber(tok)
		if err != nil {
			return nil, err
		}
		return &Constant{pos: pos(tok.pos), Value: v}, nil

	case tokString:
		var b strings.Builder
		for p.peek().typ == tokString {
			b.WriteString(p.advance().value)
		}
		return &Constant{pos: pos(tok.pos), Value: b.String()}, nil

	case tokName:
		p.advance()
		switch tok.value {
		case "True":
			return &Constant{pos: pos(tok.pos), Value: true}, nil
		case "False":
			return &Constant{pos: pos(tok.pos), Value: false}, nil
		case "None":
			return &Constant{pos: pos(tok.pos), Value: nil}, nil
		}
		if keywords[tok.value] {
			return nil, newError(ErrSyntax, tok.pos, "unexpected keyword %q", tok.value)
		}
		return &Name{pos: pos(tok.pos), ID: tok.value}, nil

	case tokLParen:
		p.advance()
		if p.peek().typ == tokRParen {
			return nil, newError(ErrUnsupportedNode, tok.pos, "Unsupported expression node: Tuple")
		}
		inner, err := p.test()
		if err != nil {
			return nil, err
		}
		if p.peek().typ == tokComma {
			return nil, newError(ErrUnsupportedNode, tok.pos, "Unsupported expression node: Tuple")
		}
		if _, err := p.expect(tokRParen, "')'"); err != nil {
			return nil, err
		}
		return inner, nil

	case tokEOF:
		return nil, newError(ErrSyntax, tok.pos, "unexpected end of expression")
	}
	return nil, newError(ErrSyntax, tok.pos, "unexpected %q", tok.value)
}

func parseNumber(tok token) (any, error) {
	raw := tok.value
	if err := checkUnderscores(raw); err != nil {
		return nil, newError(ErrSyntax, tok.pos, "%s", err)
	}
	s := strings.ReplaceAll(raw, "_", "")

	if len(s) > 1 && s[0] == '0' {
		base := 0
		switch s[1] {
		case 'x', 'X':
			base = 16
		case 'o', 'O':
			base = 8
		case 'b', 'B':
			base = 2
		}
		if base != 0 {
			i, err := strconv.ParseInt(s[2:], base, 64)
			if err != nil {
				return nil, numberError(tok, err)
			}
			return i, nil
		}
	}

	if strings.ContainsAny(s, ".eE") {
		f, err := strconv.ParseFloat(s, 64)
		if err != nil && !errors.Is(err, strconv.ErrRange) {
			return nil, numberError(tok, err)
		}
		return f, nil
	}

	if len(s) > 1 && s[0] == '0' && strings.Trim(s, "0") != "" {
		return nil, newError(ErrSyntax, tok.pos, "leading zeros in decimal integer literals are not permitted")
	}
	i, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return nil, numberError(tok, err)
	}
	return i, nil
}

func numberError(tok token, err error) error {
	if errors.Is(err, strconv.ErrRange) {
		return newError(ErrSyntax, tok.pos, "integer literal %s is too large", tok.value)
	}
	return newError(ErrSyntax, tok.pos, "invalid numeric literal %s", tok.value)
}

func checkUnderscores(s string) error {
	for i := 0; i < len(s); i++ {
		if s[i] != '_' {
			continue
		}
		if i == 0 || i == len(s)-1 || !isHexDigit(s[i+1]) || !(isHexDigit(s[i-1]) || (i == 2 && s[0] == '0')) {
			return errors.New("invalid underscore in numeric literal")
		}
	}
	return nil
}
