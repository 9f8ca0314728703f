package ast

import (
	"fmt"

	"github.com/xiam/guix-crates/lexer"
)

// Node represents an element of the parsed tree: a symbol, a string literal
// or a list. Nodes are not modified after construction.
type Node struct {
	nt       NodeType
	pos      lexer.Pos
	text     string
	children []*Node
}

func newNode(nt NodeType, pos lexer.Pos, text string, children []*Node) *Node {
	return &Node{
		nt:       nt,
		pos:      pos,
		text:     text,
		children: children,
	}
}

// NewSymbol creates a bareword node
func NewSymbol(text string, pos lexer.Pos) *Node {
	return newNode(NodeTypeSymbol, pos, text, nil)
}

// NewString creates a string literal node. text is the raw content between
// the quotes, escape sequences included.
func NewString(text string, pos lexer.Pos) *Node {
	return newNode(NodeTypeString, pos, text, nil)
}

// NewList creates a list node holding the given children
func NewList(children []*Node, pos lexer.Pos) *Node {
	if children == nil {
		children = []*Node{}
	}
	return newNode(NodeTypeList, pos, "", children)
}

// Type returns the type of the node
func (n *Node) Type() NodeType {
	if n == nil {
		return 0
	}
	return n.nt
}

// Pos returns the location of the first character of the node
func (n *Node) Pos() lexer.Pos {
	if n == nil {
		return lexer.Pos{}
	}
	return n.pos
}

// IsValue returns true if the node is a symbol or a string
func (n *Node) IsValue() bool {
	return n.Type()&nodeTypeValue > 0
}

// IsVector returns true if the node is a list
func (n *Node) IsVector() bool {
	return n.Type()&nodeTypeVector > 0
}

// IsSymbol returns true if the node is the symbol name
func (n *Node) IsSymbol(name string) bool {
	return n.Type() == NodeTypeSymbol && n.text == name
}

// Text returns the raw text of a symbol or string node.
func (n *Node) Text() (string, bool) {
	if !n.IsValue() {
		return "", false
	}
	return n.text, true
}

// List returns the children of a list node.
func (n *Node) List() ([]*Node, bool) {
	if !n.IsVector() {
		return nil, false
	}
	return n.children, true
}

// Named treats the node as a keyword form (tag arg1 arg2 ...). If the node is
// a list headed by the symbol tag it returns the arguments following it.
func (n *Node) Named(tag string) ([]*Node, bool) {
	list, ok := n.List()
	if !ok || len(list) == 0 || !list[0].IsSymbol(tag) {
		return nil, false
	}
	return list[1:], true
}

// Equal reports whether both trees have the same shape and text. Positions
// are ignored.
func (n *Node) Equal(o *Node) bool {
	if n == nil || o == nil {
		return n == o
	}
	if n.nt != o.nt || n.text != o.text || len(n.children) != len(o.children) {
		return false
	}
	for i := range n.children {
		if !n.children[i].Equal(o.children[i]) {
			return false
		}
	}
	return true
}

func (n *Node) String() string {
	if n == nil {
		return "(nil)"
	}
	if n.IsVector() {
		return fmt.Sprintf("(%v)[%d]", n.nt, len(n.children))
	}
	return fmt.Sprintf("(%v): %v", n.nt, n.text)
}
