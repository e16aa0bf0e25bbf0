package expr

import (
	"strings"
)

type tokenType int

const (
	tokEOF tokenType = iota
	tokNumber
	tokName
	tokString
	tokOp
	tokLParen
	tokRParen
	tokLBracket
	tokRBracket
	tokComma
	tokDot
)

type token struct {
	typ   tokenType
	value string
	pos   int
}

// multi-character operators first so that the longest match wins.
var operatorTokens = []string{
	"**", "//", "<<", ">>", "<=", ">=", "==", "!=",
	"+", "-", "*", "/", "%", "@", "&", "|", "^", "~", "<", ">",
}

type lexer struct {
	input  string
	pos    int
	tokens []token
}

func tokenize(input string) ([]token, error) {
	l := &lexer{input: input, tokens: make([]token, 0, len(input)/2+1)}
	for {
		l.skipSpace()
		if l.pos >= len(l.input) {
			l.tokens = append(l.tokens, token{typ: tokEOF, pos: l.pos})
			return l.tokens, nil
		}
		if err := l.next(); err != nil {
			return nil, err
		}
	}
}

func (l *lexer) skipSpace() {
	for l.pos < len(l.input) {
		switch l.input[l.pos] {
		case ' ', '\t', '\f', '\v':
			l.pos++
		default:
			return
		}
	}
}

func (l *lexer) emit(typ tokenType, start int) {
	l.tokens = append(l.tokens, token{typ: typ, value: l.input[start:l.pos], pos: start})
}

func (l *lexer) next() error {
	start := l.pos
	c := l.input[l.pos]

	switch {
	case isDigit(c) || (c == '.' && l.pos+1 < len(l.input) && isDigit(l.input[l.pos+1])):
		return l.number()
	case isNameStart(c):
		for l.pos < len(l.input) && isNameChar(l.input[l.pos]) {
			l.pos++
		}
		l.emit(tokName, start)
		return nil
	case c == '\'' || c == '"':
		return l.str(c)
	}

	single := map[byte]tokenType{
		'(': tokLParen, ')': tokRParen,
		'[': tokLBracket, ']': tokRBracket,
		',': tokComma, '.': tokDot,
	}
	if typ, ok := single[c]; ok {
		l.pos++
		l.emit(typ, start)
		return nil
	}

	rest := l.input[l.pos:]
	for _, op := range operatorTokens {
		if strings.HasPrefix(rest, op) {
			l.pos += len(op)
			l.emit(tokOp, start)
			return nil
		}
	}
	return newError(ErrSyntax, start, "invalid character %q", rune(c))
}

func (l *lexer) number() error {
	start := l.pos
	in := l.input

	if in[l.pos] == '0' && l.pos+1 < len(in) && strings.ContainsRune("xXoObB", rune(in[l.pos+1])) {
		l.pos += 2
		for l.pos < len(in) && (isHexDigit(in[l.pos]) || in[l.pos] == '_') {
			l.pos++
		}
	} else {
		l.digits()
		if l.pos < len(in) && in[l.pos] == '.' {
			l.pos++
			l.digits()
		}
		if l.pos < len(in) && (in[l.pos] == 'e' || in[l.pos] == 'E') {
			mark := l.pos
			l.pos++
			if l.pos < len(in) && (in[l.pos] == '+' || in[l.pos] == '-') {
				l.pos++
			}
			if l.pos >= len(in) || !isDigit(in[l.pos]) {
				l.pos = mark
				return newError(ErrSyntax, start, "invalid decimal literal")
			}
			l.digits()
		}
	}

	if l.pos < len(in) {
		switch c := in[l.pos]; {
		case c == 'j' || c == 'J':
			return newError(ErrSyntax, start, "complex literals are not supported")
		case isNameChar(c):
			return newError(ErrSyntax, start, "invalid decimal literal")
		}
	}
	l.emit(tokNumber, start)
	return nil
}

func (l *lexer) digits() {
	for l.pos < len(l.input) && (isDigit(l.input[l.pos]) || l.input[l.pos] == '_') {
		l.pos++
	}
}

func (l *lexer) str(quote byte) error {
	start := l.pos
	l.pos++
	var b strings.Builder
	for l.pos < len(l.input) {
		c := l.input[l.pos]
		switch {
		case c == quote:
			l.pos++
			l.tokens = append(l.tokens, token{typ: tokString, value: b.String(), pos: start})
			return nil
		case c == '\\' && l.pos+1 < len(l.input):
			b.WriteByte(l.input[l.pos+1])
			l.pos += 2
		default:
			b.WriteByte(c)
			l.pos++
		}
	}
	return newError(ErrSyntax, start, "unterminated string literal")
}

func isDigit(c byte) bool     { return c >= '0' && c <= '9' }
func isNameStart(c byte) bool { return c == '_' || (c|0x20 >= 'a' && c|0x20 <= 'z') || c >= 0x80 }
func isNameChar(c byte) bool  { return isNameStart(c) || isDigit(c) }
func isHexDigit(c byte) bool  { return isDigit(c) || (c|0x20 >= 'a' && c|0x20 <= 'f') }
