// Package crates extracts Rust crate packages from Guix package definition
// files.
//
// A Guix module such as gnu/packages/crates-io.scm holds forms like
//
//	(define-public rust-foo-1
//	  (package
//	    (name "rust-foo")
//	    (version "1.2.3")
//	    (source (origin
//	              (method url-fetch)
//	              (uri (crate-uri "foo" version))
//	              (sha256 (base32 "..."))))))
//
// For each such form the extractor yields Package{Name: "foo", Version:
// "1.2.3"}: the name is the crate-uri argument, not the Guix package name.
// Forms of any other shape are skipped.
package crates

import (
	"io"
	"iter"

	"github.com/xiam/guix-crates/parser"
)

// GuixRepoURL is the upstream repository holding gnu/packages
const GuixRepoURL = "https://git.savannah.gnu.org/git/guix.git"

// Package is a crate packaged in Guix
type Package struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

// Reader extracts packages from a reader
type Reader struct {
	r    io.Reader
	opts parser.Options
}

// Parse extracts the packages defined in a complete buffer. An error is
// returned only when in is not a well-formed sequence of expressions.
func Parse(in []byte) (iter.Seq[Package], error) {
	return ParseString(string(in))
}

// ParseString is like Parse for a string source.
func ParseString(src string) (iter.Seq[Package], error) {
	nodes, err := parser.ParseString(src)
	if err != nil {
		return nil, err
	}
	return Extract(nodes), nil
}

// NewReader creates a Reader. The input is consumed by Packages.
func NewReader(r io.Reader) *Reader {
	return &Reader{r: r}
}

// SetOptions sets the options of the underlying parser
func (r *Reader) SetOptions(opts parser.Options) {
	r.opts = opts
}

// Packages reads the whole input, parses it, and returns the packages it
// defines in source order.
func (r *Reader) Packages() (iter.Seq[Package], error) {
	p := parser.New(r.r)
	p.SetOptions(r.opts)

	nodes, err := p.Parse()
	if err != nil {
		return nil, err
	}
	return Extract(nodes), nil
}
