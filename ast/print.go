package ast

import (
	"fmt"
	"io"
	"strings"
)

// Print writes a human-readable, indented representation of the given nodes
func Print(w io.Writer, nodes ...*Node) error {
	for i := range nodes {
		if err := printLevel(w, nodes[i], 0); err != nil {
			return err
		}
	}
	return nil
}

func printLevel(w io.Writer, n *Node, level int) error {
	indent := strings.Repeat("    ", level)
	if n == nil {
		_, err := fmt.Fprintf(w, "%s:nil\n", indent)
		return err
	}

	switch n.Type() {
	case NodeTypeList:
		if _, err := fmt.Fprintf(w, "%s(%s) [%v]\n", indent, n.Type(), n.Pos()); err != nil {
			return err
		}
		for _, child := range n.children {
			if err := printLevel(w, child, level+1); err != nil {
				return err
			}
		}
		return nil

	case NodeTypeSymbol, NodeTypeString:
		_, err := fmt.Fprintf(w, "%s(%s): %s [%v]\n", indent, n.Type(), encodeNode(n), n.Pos())
		return err
	}

	return fmt.Errorf("unknown node type %d", n.Type())
}

// Encode transforms nodes back into source text. Top-level nodes are
// separated by a single space; comments, quote prefixes and the original
// whitespace are not reproduced. Parsing the output yields equal nodes.
func Encode(nodes ...*Node) []byte {
	parts := make([]string, 0, len(nodes))
	for i := range nodes {
		parts = append(parts, encodeNode(nodes[i]))
	}
	return []byte(strings.Join(parts, " "))
}

func encodeNode(n *Node) string {
	if n == nil {
		return ":nil"
	}
	switch n.Type() {
	case NodeTypeList:
		parts := make([]string, 0, len(n.children))
		for _, child := range n.children {
			parts = append(parts, encodeNode(child))
		}
		return fmt.Sprintf("(%s)", strings.Join(parts, " "))

	case NodeTypeString:
		// text still holds its escape sequences
		return `"` + n.text + `"`

	case NodeTypeSymbol:
		return n.text
	}

	return ":invalid"
}
