package parser

import (
	"errors"
	"fmt"

	"github.com/xiam/guix-crates/lexer"
)

var (
	ErrUnterminatedString = errors.New("unterminated string")
	ErrUnterminatedList   = errors.New("unterminated list")
	ErrUnexpectedInput    = errors.New("unexpected input")
	ErrMaxDepth           = errors.New("maximum nesting depth exceeded")
)

// errNoMatch tells the caller to try the next alternative. It never leaves
// this package.
var errNoMatch = errors.New("no match")

// excerptLen is the number of bytes of input quoted in an Error
const excerptLen = 24

// Error describes the point where parsing failed.
type Error struct {
	Pos  lexer.Pos
	Near string
	Err  error
}

func newError(c lexer.Cursor, err error) *Error {
	return &Error{
		Pos:  c.Pos(),
		Near: c.Excerpt(excerptLen),
		Err:  err,
	}
}

func (e *Error) Error() string {
	if e.Near == "" {
		return fmt.Sprintf("%v: %v at end of input", e.Pos, e.Err)
	}
	return fmt.Sprintf("%v: %v near %q", e.Pos, e.Err, e.Near)
}

func (e *Error) Unwrap() error {
	return e.Err
}
