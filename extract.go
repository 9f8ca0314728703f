package crates

import (
	"iter"

	"github.com/xiam/guix-crates/ast"
)

const (
	tagDefinePublic = "define-public"
	tagPackage      = "package"
	tagSource       = "source"
	tagOrigin       = "origin"
	tagURI          = "uri"
	tagCrateURI     = "crate-uri"
	tagVersion      = "version"
)

// Extract returns the packages defined by the given top-level forms. The
// sequence is lazy and follows source order; forms that do not match are
// skipped.
func Extract(nodes []*ast.Node) iter.Seq[Package] {
	return func(yield func(Package) bool) {
		for _, node := range nodes {
			pkg, ok := extractPackage(node)
			if !ok {
				continue
			}
			if !yield(pkg) {
				return
			}
		}
	}
}

// extractPackage matches
//
//	(define-public _ (package ... (source (origin ... (uri (crate-uri NAME ...)))) ... (version VERSION) ...))
func extractPackage(node *ast.Node) (Package, bool) {
	form, ok := node.List()
	if !ok || len(form) < 3 || !form[0].IsSymbol(tagDefinePublic) {
		return Package{}, false
	}

	fields, ok := form[2].Named(tagPackage)
	if !ok {
		return Package{}, false
	}

	name, ok := crateName(fields)
	if !ok {
		return Package{}, false
	}

	version, ok := packageVersion(fields)
	if !ok {
		return Package{}, false
	}

	return Package{Name: name, Version: version}, true
}

// crateName follows the first (source ...) field down to its crate-uri.
func crateName(fields []*ast.Node) (string, bool) {
	source, ok := findNamed(fields, tagSource)
	if !ok {
		return "", false
	}

	origin, ok := first(source).Named(tagOrigin)
	if !ok {
		return "", false
	}

	for _, field := range origin {
		uri, ok := field.Named(tagURI)
		if !ok {
			continue
		}
		crateURI, ok := first(uri).Named(tagCrateURI)
		if !ok {
			continue
		}
		return first(crateURI).Text()
	}

	return "", false
}

// packageVersion returns the first (version V) field with a literal V. The
// first match wins when a package declares several.
func packageVersion(fields []*ast.Node) (string, bool) {
	for _, field := range fields {
		args, ok := field.Named(tagVersion)
		if !ok {
			continue
		}
		if version, ok := first(args).Text(); ok {
			return version, true
		}
	}
	return "", false
}

func findNamed(nodes []*ast.Node, tag string) ([]*ast.Node, bool) {
	for _, node := range nodes {
		if args, ok := node.Named(tag); ok {
			return args, true
		}
	}
	return nil, false
}

// first returns the first node or nil; ast.Node methods accept nil.
func first(nodes []*ast.Node) *ast.Node {
	if len(nodes) == 0 {
		return nil
	}
	return nodes[0]
}
