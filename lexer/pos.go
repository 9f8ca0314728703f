package lexer

import (
	"fmt"
)

// Pos represents a location in the source text. Line and Col are 1-based,
// Col counts runes.
type Pos struct {
	Offset int
	Line   int
	Col    int
}

// LineCol returns the line and column of the location
func (p Pos) LineCol() (int, int) {
	return p.Line, p.Col
}

// IsValid returns true for positions produced by a Cursor
func (p Pos) IsValid() bool {
	return p.Line > 0
}

func (p Pos) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Col)
}
