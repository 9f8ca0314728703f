package main

import (
	"fmt"
	"log"
	"strings"

	"github.com/xiam/guix-crates/ast"
	"github.com/xiam/guix-crates/parser"
)

func printTree(node *ast.Node) {
	printIndentedTree(node, 0)
}

func printIndentedTree(node *ast.Node, indentationLevel int) {
	indent := strings.Repeat("  ", indentationLevel)
	if children, ok := node.List(); ok {
		fmt.Printf("%s<%s>\n", indent, node.Type())
		for i := range children {
			printIndentedTree(children[i], indentationLevel+1)
		}
		fmt.Printf("%s</%s>\n", indent, node.Type())
		return
	}
	text, _ := node.Text()
	fmt.Printf("%s<%s>%s</%s>\n", indent, node.Type(), text, node.Type())
}

func main() {
	input := `(define-public rust-foo-1 (package (version "1.2.3") 'quoted 😊))`

	nodes, err := parser.ParseString(input)
	if err != nil {
		log.Fatal("parser.ParseString:", err)
	}

	for _, node := range nodes {
		printTree(node)
	}
}
