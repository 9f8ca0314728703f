package lexer

import (
	"unicode/utf8"
)

// EOF is returned by Peek and Next at the end of the input
const EOF rune = -1

// Cursor is a read position over a source string. Cursors are values:
// advancing returns a new Cursor and leaves the receiver untouched, so any
// earlier Cursor is a valid rewind point.
type Cursor struct {
	src string
	pos Pos
}

// NewCursor returns a Cursor at the start of src
func NewCursor(src string) Cursor {
	return Cursor{
		src: src,
		pos: Pos{Line: 1, Col: 1},
	}
}

// Pos returns the location of the next rune
func (c Cursor) Pos() Pos {
	return c.pos
}

// EOF returns true when no input is left
func (c Cursor) EOF() bool {
	return c.pos.Offset >= len(c.src)
}

// Peek returns the next rune without consuming it
func (c Cursor) Peek() rune {
	r, _ := c.Next()
	return r
}

// Next returns the next rune and the Cursor past it. At the end of the input
// it returns EOF and the receiver.
func (c Cursor) Next() (rune, Cursor) {
	if c.EOF() {
		return EOF, c
	}

	r, size := utf8.DecodeRuneInString(c.src[c.pos.Offset:])

	next := c
	next.pos.Offset += size
	if IsNewLine(r) {
		next.pos.Line++
		next.pos.Col = 1
	} else {
		next.pos.Col++
	}
	return r, next
}

// TakeWhile consumes the longest run of runes matching fn and returns it
// along with the Cursor past it. The run may be empty.
func (c Cursor) TakeWhile(fn func(r rune) bool) (string, Cursor) {
	start := c
	for {
		r, next := c.Next()
		if r == EOF || !fn(r) {
			break
		}
		c = next
	}
	return c.Since(start), c
}

// TakeUntil consumes runes up to, but excluding, the first one matching fn.
func (c Cursor) TakeUntil(fn func(r rune) bool) (string, Cursor) {
	return c.TakeWhile(func(r rune) bool {
		return !fn(r)
	})
}

// Since returns the source text between start and c. Both cursors must come
// from the same source and start must not be past c.
func (c Cursor) Since(start Cursor) string {
	return c.src[start.pos.Offset:c.pos.Offset]
}

// Excerpt returns up to n bytes of the remaining input, cut at a rune
// boundary and at the first newline.
func (c Cursor) Excerpt(n int) string {
	rest := c.src[c.pos.Offset:]
	if len(rest) > n {
		for n > 0 && !utf8.RuneStart(rest[n]) {
			n--
		}
		rest = rest[:n]
	}
	for i, r := range rest {
		if IsNewLine(r) {
			return rest[:i]
		}
	}
	return rest
}
