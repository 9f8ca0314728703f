package main

import (
	"fmt"
	"log"
	"os"

	crates "github.com/xiam/guix-crates"
	"github.com/xiam/guix-crates/ast"
	"github.com/xiam/guix-crates/parser"
)

func main() {
	input := `(define-public rust-foo-1
  (package
    (name "rust-foo")
    (version "1.2.3")
    (source (origin (method url-fetch) (uri (crate-uri "foo" version))))))`

	nodes, err := parser.ParseString(input)
	if err != nil {
		log.Fatal("parser.ParseString:", err)
	}

	if err := ast.Print(os.Stdout, nodes...); err != nil {
		log.Fatal("ast.Print:", err)
	}

	for pkg := range crates.Extract(nodes) {
		fmt.Printf("%s %s\n", pkg.Name, pkg.Version)
	}
}
