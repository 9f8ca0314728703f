package parser

import (
	"io"

	"github.com/xiam/guix-crates/ast"
	"github.com/xiam/guix-crates/lexer"
)

// DefaultMaxDepth is the nesting limit used when Options.MaxDepth is zero
const DefaultMaxDepth = 1024

// Options configures a Parser
type Options struct {
	// MaxDepth bounds how deeply lists and quoted nodes may nest.
	MaxDepth int
}

// parseFn parses one node at c. It returns errNoMatch, leaving the input
// untouched, if the node does not start at c; any other error is final.
type parseFn func(c lexer.Cursor, depth int) (*ast.Node, lexer.Cursor, error)

// Parser turns source text into a sequence of top-level nodes
type Parser struct {
	r    io.Reader
	opts Options

	node parseFn
}

// New creates a Parser reading the whole of r
func New(r io.Reader) *Parser {
	p := &Parser{r: r}
	p.node = p.skipping(alt(p.parseString, p.parseList, p.parseQuoted, p.parseSymbol))
	return p
}

// SetOptions replaces the parser options
func (p *Parser) SetOptions(opts Options) {
	p.opts = opts
}

// Parse reads the input and parses it
func (p *Parser) Parse() ([]*ast.Node, error) {
	buf, err := io.ReadAll(p.r)
	if err != nil {
		return nil, err
	}
	return p.ParseString(string(buf))
}

// ParseString parses src, ignoring the reader. Symbol and string nodes share
// memory with src.
func (p *Parser) ParseString(src string) ([]*ast.Node, error) {
	c := lexer.NewCursor(src)

	nodes := []*ast.Node{}
	for {
		node, next, err := p.node(c, 0)
		if err == errNoMatch {
			break
		}
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, node)
		c = next
	}

	c = skipSpace(c)
	if !c.EOF() {
		return nil, newError(c, ErrUnexpectedInput)
	}

	return nodes, nil
}

func (p *Parser) maxDepth() int {
	if p.opts.MaxDepth > 0 {
		return p.opts.MaxDepth
	}
	return DefaultMaxDepth
}

// alt tries each alternative in order and returns the first result that is
// not errNoMatch.
func alt(fns ...parseFn) parseFn {
	return func(c lexer.Cursor, depth int) (*ast.Node, lexer.Cursor, error) {
		for _, fn := range fns {
			node, next, err := fn(c, depth)
			if err == errNoMatch {
				continue
			}
			return node, next, err
		}
		return nil, c, errNoMatch
	}
}

// skipping runs fn after any whitespace and comments. On errNoMatch the
// skipped input is given back.
func (p *Parser) skipping(fn parseFn) parseFn {
	return func(c lexer.Cursor, depth int) (*ast.Node, lexer.Cursor, error) {
		node, next, err := fn(skipSpace(c), depth)
		if err == errNoMatch {
			return nil, c, err
		}
		return node, next, err
	}
}

func skipSpace(c lexer.Cursor) lexer.Cursor {
	for {
		switch r := c.Peek(); {
		case lexer.IsWhitespace(r):
			_, c = c.TakeWhile(lexer.IsWhitespace)
		case lexer.IsSemicolon(r):
			_, c = c.TakeUntil(lexer.IsNewLine)
		default:
			return c
		}
	}
}

func (p *Parser) parseString(c lexer.Cursor, depth int) (*ast.Node, lexer.Cursor, error) {
	open, body := c.Next()
	if !lexer.IsDoubleQuote(open) {
		return nil, c, errNoMatch
	}

	for end := body; ; {
		r, next := end.Next()
		switch {
		case r == lexer.EOF:
			return nil, c, newError(c, ErrUnterminatedString)
		case lexer.IsBackslash(r):
			// the escaped character is kept as written
			if next.EOF() {
				return nil, c, newError(c, ErrUnterminatedString)
			}
			_, next = next.Next()
		case lexer.IsDoubleQuote(r):
			return ast.NewString(end.Since(body), c.Pos()), next, nil
		}
		end = next
	}
}

func (p *Parser) parseList(c lexer.Cursor, depth int) (*ast.Node, lexer.Cursor, error) {
	open, next := c.Next()
	if !lexer.IsOpenList(open) {
		return nil, c, errNoMatch
	}
	if depth >= p.maxDepth() {
		return nil, c, newError(c, ErrMaxDepth)
	}

	children := []*ast.Node{}
	for {
		next = skipSpace(next)

		r, after := next.Next()
		switch {
		case r == lexer.EOF:
			return nil, c, newError(c, ErrUnterminatedList)
		case lexer.IsCloseList(r):
			return ast.NewList(children, c.Pos()), after, nil
		}

		child, rest, err := p.node(next, depth+1)
		if err == errNoMatch {
			return nil, c, newError(next, ErrUnexpectedInput)
		}
		if err != nil {
			return nil, c, err
		}
		children = append(children, child)
		next = rest
	}
}

func (p *Parser) parseQuoted(c lexer.Cursor, depth int) (*ast.Node, lexer.Cursor, error) {
	quote, next := c.Next()
	if !lexer.IsQuote(quote) {
		return nil, c, errNoMatch
	}
	if depth >= p.maxDepth() {
		return nil, c, newError(c, ErrMaxDepth)
	}

	node, rest, err := p.node(next, depth+1)
	if err != nil {
		return nil, c, err
	}
	return node, rest, nil
}

func (p *Parser) parseSymbol(c lexer.Cursor, depth int) (*ast.Node, lexer.Cursor, error) {
	text, next := c.TakeWhile(lexer.IsSymbol)
	if text == "" {
		return nil, c, errNoMatch
	}
	return ast.NewSymbol(text, c.Pos()), next, nil
}

// Parse parses a complete buffer into its top-level nodes
func Parse(in []byte) ([]*ast.Node, error) {
	return ParseString(string(in))
}

// ParseString parses a complete string into its top-level nodes
func ParseString(src string) ([]*ast.Node, error) {
	return New(nil).ParseString(src)
}
