package sanitize

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheck_SizeLimit(t *testing.T) {
	limit := DefaultMaxInputSize

	tests := []struct {
		name    string
		size    int
		wantErr bool
	}{
		{"Under Limit", limit - 1, false},
		{"Exact Limit", limit, false},
		{"Over Limit", limit + 1, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Check(strings.Repeat("a", tt.size))
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInputTooLarge)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestCheck_Accepts(t *testing.T) {
	for _, text := range []string{
		"a * 2 + b",
		"a +\n\tb\r\n",
		"是 + 1",
		"literal � replacement",
		"",
	} {
		assert.NoError(t, Check(text), "%q", text)
	}
}

func TestCheck_Rejects(t *testing.T) {
	tests := []struct {
		name string
		text string
		kind error
		pos  int
		msg  string
	}{
		{"Null Byte", "1\x002", ErrControlCharacter, 1, `'\x00'`},
		{"Vertical Tab", "10\x0b5", ErrControlCharacter, 2, `'\v'`},
		{"ANSI Code", "\x1b[31ma", ErrControlCharacter, 0, `'\x1b'`},
		{"C1 Control", "a + \u0085b", ErrControlCharacter, 4, `'\u0085'`},
		{"Invalid UTF-8", "a\xffb", ErrInvalidUTF8, 1, "byte 0xff"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Check(tt.text)
			require.ErrorIs(t, err, tt.kind)

			var serr *Error
			require.True(t, errors.As(err, &serr))
			assert.Equal(t, tt.pos, serr.Pos)
			assert.Equal(t, tt.msg, serr.Msg)
		})
	}
}

func TestCheck_EnvOverride(t *testing.T) {
	t.Setenv(EnvMaxInputSize, "10")

	assert.NoError(t, Check(strings.Repeat("a", 10)))
	assert.ErrorIs(t, Check(strings.Repeat("a", 11)), ErrInputTooLarge)

	t.Setenv(EnvMaxInputSize, "garbage")
	assert.Equal(t, DefaultMaxInputSize, MaxInputSize())
}
