// Package sanitize checks text received from users before it reaches a node.
//
// Text is never rewritten: an expression with a stray byte removed is a
// different expression, so anything suspicious is rejected with the byte
// offset where it was found.
package sanitize

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"unicode"
	"unicode/utf8"
)

// EnvMaxInputSize overrides DefaultMaxInputSize.
const EnvMaxInputSize = "AGAVE_MAX_INPUT_SIZE"

// DefaultMaxInputSize is 16KB, enough for long multiline expressions.
const DefaultMaxInputSize = 16384

var (
	ErrInputTooLarge    = errors.New("input exceeds maximum allowed size")
	ErrInvalidUTF8      = errors.New("invalid UTF-8")
	ErrControlCharacter = errors.New("invalid control character")
)

// Error locates a rejected byte in the checked text.
type Error struct {
	Kind error
	Pos  int
	Msg  string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s at offset %d: %s", e.Kind, e.Pos, e.Msg)
}

func (e *Error) Unwrap() error {
	return e.Kind
}

// Check accepts text that fits the size limit, is valid UTF-8 and holds no
// control characters besides newline, tab and carriage return.
func Check(text string) error {
	if limit := MaxInputSize(); len(text) > limit {
		return &Error{Kind: ErrInputTooLarge, Pos: limit, Msg: fmt.Sprintf("size=%d limit=%d", len(text), limit)}
	}

	for pos, r := range text {
		switch {
		case r == utf8.RuneError && !validAt(text, pos):
			return &Error{Kind: ErrInvalidUTF8, Pos: pos, Msg: fmt.Sprintf("byte %#02x", text[pos])}
		case unicode.IsControl(r) && r != '\n' && r != '\t' && r != '\r':
			return &Error{Kind: ErrControlCharacter, Pos: pos, Msg: strconv.QuoteRune(r)}
		}
	}
	return nil
}

// validAt tells a literal U+FFFD apart from a decoding failure.
func validAt(text string, pos int) bool {
	_, size := utf8.DecodeRuneInString(text[pos:])
	return size > 1
}

// MaxInputSize returns the configured limit in bytes.
func MaxInputSize() int {
	if val := os.Getenv(EnvMaxInputSize); val != "" {
		if size, err := strconv.Atoi(val); err == nil && size > 0 {
			return size
		}
	}
	return DefaultMaxInputSize
}
