// Package source supplies the package definition files to scan, either from
// a local directory or from a shallow clone of the Guix repository.
package source

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"errors"
	"fmt"
	"iter"
	"strings"
)

const (
	// DefaultPattern selects the package modules directly under a directory
	DefaultPattern = "*.scm"
	// DefaultBranch is the Guix development branch
	DefaultBranch = "master"
	// DefaultSubdir is where Guix keeps its package modules
	DefaultSubdir = "gnu/packages"

	fileSuffix = ".scm"
)

var (
	ErrMissingSubdir = errors.New("subdirectory not found")
	ErrBadObject     = errors.New("unexpected git object")
)

// File is the content of one package module.
type File struct {
	// Name identifies the module, e.g. "crates-io" for crates-io.scm.
	Name string
	// ID is the git blob id of the content; equal content has equal IDs.
	ID string
	// Text is the content decoded as UTF-8, invalid bytes replaced.
	Text string
}

// Provider supplies package modules in a stable order.
type Provider interface {
	// Files yields each module. A non-nil error ends the sequence.
	Files(ctx context.Context) iter.Seq2[File, error]
}

// newFile builds a File from raw content
func newFile(name string, data []byte) File {
	return File{
		Name: name,
		ID:   blobID(data),
		Text: decode(data),
	}
}

// moduleName strips the .scm suffix. ok is false for other files.
func moduleName(path string) (string, bool) {
	if !strings.HasSuffix(path, fileSuffix) {
		return "", false
	}
	return strings.TrimSuffix(path, fileSuffix), true
}

func decode(data []byte) string {
	return strings.ToValidUTF8(string(data), "\uFFFD")
}

// blobID hashes data the way git hashes blob objects
func blobID(data []byte) string {
	h := sha1.New()
	fmt.Fprintf(h, "blob %d\x00", len(data))
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}
