package main

import (
	"fmt"

	"github.com/xiam/guix-crates/lexer"
)

func main() {
	input := `(define-public rust-foo-1 ; comment
  (package (version "1.2.3")))`

	c := lexer.NewCursor(input)
	for i := 0; !c.EOF(); i++ {
		start := c
		class := lexer.Classify(c.Peek())

		var text string
		if class == lexer.CharSymbol {
			text, c = c.TakeWhile(lexer.IsSymbol)
		} else {
			_, c = c.Next()
			text = c.Since(start)
		}

		fmt.Printf("run[%d] (class: %v, pos: %v)\n\t-> %q\n\n", i, class, start.Pos(), text)
	}
}
