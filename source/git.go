package source

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"iter"
	"net/url"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xiam/guix-crates/internal/ctxlog"
)

// GitOptions selects what to clone and read.
type GitOptions struct {
	URL    string
	Branch string
	Subdir string
	// Depth limits the fetched history. Zero fetches everything.
	Depth int
}

func (o GitOptions) withDefaults() GitOptions {
	if o.Branch == "" {
		o.Branch = DefaultBranch
	}
	if o.Subdir == "" {
		o.Subdir = DefaultSubdir
	}
	return o
}

// Git reads package modules from a bare clone, using the git binary.
type Git struct {
	path string
	opts GitOptions
	bin  string
}

type treeEntry struct {
	name string
	hash string
}

// OpenGit opens the clone of opts.URL kept under cacheDir, cloning it first
// if it does not exist yet. The first clone of the Guix repository takes a
// while.
func OpenGit(ctx context.Context, cacheDir string, opts GitOptions) (*Git, error) {
	opts = opts.withDefaults()
	if opts.URL == "" {
		return nil, errors.New("git source needs a url")
	}

	g := &Git{
		path: filepath.Join(cacheDir, RepoDirName(opts.URL)),
		opts: opts,
		bin:  "git",
	}

	_, err := os.Stat(g.path)
	if err == nil {
		return g, nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}

	if err := os.MkdirAll(cacheDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create cache dir: %w", err)
	}

	ctxlog.FromContext(ctx).Info("cloning repository", "url", opts.URL, "path", g.path)

	args := []string{"clone", "--bare", "--single-branch", "--branch", opts.Branch}
	args = append(args, g.depthArgs()...)
	args = append(args, opts.URL, g.path)
	if _, err := g.run(ctx, cacheDir, args...); err != nil {
		_ = os.RemoveAll(g.path)
		return nil, err
	}

	return g, nil
}

// RepoDirName turns a repository URL into a directory name, e.g.
// git.savannah.gnu.org-git-guix.git.
func RepoDirName(repoURL string) string {
	name := repoURL
	if u, err := url.Parse(repoURL); err == nil && u.Path != "" {
		name = u.Host + u.Path
	}

	name = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '_', r == '-':
			return r
		}
		return '-'
	}, name)
	return strings.Trim(name, "-")
}

// Path returns the location of the bare clone
func (g *Git) Path() string {
	return g.path
}

// Update fetches the latest commit of the branch.
func (g *Git) Update(ctx context.Context) error {
	ref := "refs/heads/" + g.opts.Branch

	args := []string{"fetch", "--force"}
	args = append(args, g.depthArgs()...)
	args = append(args, "origin", "+"+ref+":"+ref)

	ctxlog.FromContext(ctx).Info("fetching repository", "url", g.opts.URL, "branch", g.opts.Branch)

	_, err := g.run(ctx, g.path, args...)
	return err
}

// Revision returns the commit id the branch points to.
func (g *Git) Revision(ctx context.Context) (string, error) {
	out, err := g.run(ctx, g.path, "rev-parse", "--verify", "refs/heads/"+g.opts.Branch+"^{commit}")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(out)), nil
}

// Files yields the .scm blobs of the configured subdirectory in tree order.
func (g *Git) Files(ctx context.Context) iter.Seq2[File, error] {
	return func(yield func(File, error) bool) {
		entries, err := g.listTree(ctx)
		if err != nil {
			yield(File{}, err)
			return
		}
		if len(entries) == 0 {
			return
		}
		if err := g.catFiles(ctx, entries, yield); err != nil {
			yield(File{}, err)
		}
	}
}

func (g *Git) listTree(ctx context.Context) ([]treeEntry, error) {
	treeish := "refs/heads/" + g.opts.Branch + ":" + strings.Trim(g.opts.Subdir, "/")

	out, err := g.run(ctx, g.path, "ls-tree", "-z", treeish)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		// only a readable branch means the subdirectory is what's missing
		if _, revErr := g.Revision(ctx); revErr != nil {
			return nil, revErr
		}
		return nil, fmt.Errorf("%w: %s: %v", ErrMissingSubdir, g.opts.Subdir, err)
	}
	return parseTree(out)
}

// parseTree reads `git ls-tree -z` output, keeping module blobs.
func parseTree(out []byte) ([]treeEntry, error) {
	entries := []treeEntry{}
	for _, record := range bytes.Split(out, []byte{0}) {
		if len(record) == 0 {
			continue
		}

		// <mode> SP <type> SP <hash> TAB <name>
		meta, name, ok := strings.Cut(string(record), "\t")
		if !ok {
			return nil, fmt.Errorf("malformed tree entry %q", record)
		}
		fields := strings.Fields(meta)
		if len(fields) != 3 {
			return nil, fmt.Errorf("malformed tree entry %q", record)
		}
		if fields[1] != "blob" {
			continue
		}

		module, ok := moduleName(name)
		if !ok {
			continue
		}
		entries = append(entries, treeEntry{name: module, hash: fields[2]})
	}
	return entries, nil
}

// catFiles streams the blobs through a single `git cat-file --batch`.
func (g *Git) catFiles(ctx context.Context, entries []treeEntry, yield func(File, error) bool) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var request strings.Builder
	for _, entry := range entries {
		request.WriteString(entry.hash)
		request.WriteByte('\n')
	}

	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, g.bin, "cat-file", "--batch")
	cmd.Dir = g.path
	cmd.Stdin = strings.NewReader(request.String())
	cmd.Stderr = &stderr

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return err
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("git cat-file: %w", err)
	}

	r := bufio.NewReader(stdout)
	for _, entry := range entries {
		data, err := readBlob(r, entry.hash)
		if err != nil {
			cancel()
			_ = cmd.Wait()
			return err
		}
		if !yield(newFile(entry.name, data), nil) {
			cancel()
			_ = cmd.Wait()
			return nil
		}
	}

	if err := cmd.Wait(); err != nil {
		return fmt.Errorf("git cat-file: %w: %s", err, strings.TrimSpace(stderr.String()))
	}
	return nil
}

// readBlob reads one `<hash> <type> <size>\n<content>\n` record.
func readBlob(r *bufio.Reader, hash string) ([]byte, error) {
	header, err := r.ReadString('\n')
	if err != nil {
		return nil, fmt.Errorf("reading object %s: %w", hash, err)
	}

	fields := strings.Fields(header)
	if len(fields) != 3 || fields[0] != hash || fields[1] != "blob" {
		return nil, fmt.Errorf("%w: %q", ErrBadObject, strings.TrimSpace(header))
	}

	size, err := strconv.Atoi(fields[2])
	if err != nil || size < 0 {
		return nil, fmt.Errorf("%w: bad size in %q", ErrBadObject, strings.TrimSpace(header))
	}

	buf := make([]byte, size+1)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, fmt.Errorf("reading object %s: %w", hash, err)
	}
	return buf[:size], nil
}

func (g *Git) depthArgs() []string {
	if g.opts.Depth <= 0 {
		return nil
	}
	return []string{"--depth", strconv.Itoa(g.opts.Depth)}
}

func (g *Git) run(ctx context.Context, dir string, args ...string) ([]byte, error) {
	var stderr bytes.Buffer

	cmd := exec.CommandContext(ctx, g.bin, args...)
	cmd.Dir = dir
	cmd.Stderr = &stderr

	out, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("git %s: %w: %s", args[0], err, strings.TrimSpace(stderr.String()))
	}
	return out, nil
}
