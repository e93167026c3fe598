// Package discovery resolves source files and the spec documents that
// describe them.
package discovery

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/gobwas/glob"
	ignore "github.com/sabhiram/go-gitignore"
)

// ErrRootNotFound is returned when the source or spec root does not exist.
var ErrRootNotFound = errors.New("directory not found")

const (
	DefaultSourceExt = ".rs"
	DefaultDocExt    = ".md"
)

// Options configures file-pair resolution.
type Options struct {
	SourceDir string
	SpecDir   string

	// SourceExt and DocExt default to ".rs" and ".md".
	SourceExt string
	DocExt    string

	// Ignore holds glob patterns matched against slash-separated paths
	// relative to SourceDir, e.g. "generated/**" or "**/*_test.rs".
	Ignore []string

	// RespectGitignore applies SourceDir/.gitignore when present.
	RespectGitignore bool
}

// Pair links a source file to its spec document.
type Pair struct {
	// Rel is the slash-separated source path relative to SourceDir.
	Rel string
	// Source is the source file path (SourceDir joined with Rel).
	Source string
	// Spec is the derived spec document path.
	Spec string
	// HasSpec reports whether Spec exists as a regular file.
	HasSpec bool
}

// compiledPattern holds both the pattern string and compiled glob
type compiledPattern struct {
	pattern string
	glob    glob.Glob
}

// Resolver walks the source tree and pairs files with documents.
type Resolver struct {
	opts      Options
	ignores   []compiledPattern
	gitignore *ignore.GitIgnore
}

// New validates the roots and compiles ignore patterns.
func New(opts Options) (*Resolver, error) {
	if opts.SourceExt == "" {
		opts.SourceExt = DefaultSourceExt
	}
	if opts.DocExt == "" {
		opts.DocExt = DefaultDocExt
	}

	for _, dir := range []string{opts.SourceDir, opts.SpecDir} {
		info, err := os.Stat(dir)
		if err != nil || !info.IsDir() {
			return nil, fmt.Errorf("%w: %s", ErrRootNotFound, dir)
		}
	}

	r := &Resolver{opts: opts}
	for _, pattern := range opts.Ignore {
		g, err := glob.Compile(pattern, '/')
		if err != nil {
			return nil, fmt.Errorf("invalid ignore pattern %q: %w", pattern, err)
		}
		r.ignores = append(r.ignores, compiledPattern{pattern: pattern, glob: g})
	}

	if opts.RespectGitignore {
		gi, err := ignore.CompileIgnoreFile(filepath.Join(opts.SourceDir, ".gitignore"))
		if err == nil {
			r.gitignore = gi
		}
	}

	return r, nil
}

// Options returns the resolver's effective options.
func (r *Resolver) Options() Options { return r.opts }

// Pairs walks SourceDir and returns one Pair per source file, sorted by Rel.
func (r *Resolver) Pairs() ([]Pair, error) {
	var pairs []Pair

	err := filepath.WalkDir(r.opts.SourceDir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}

		rel, err := filepath.Rel(r.opts.SourceDir, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)

		if d.IsDir() {
			if rel != "." && r.shouldIgnore(rel, true) {
				return filepath.SkipDir
			}
			return nil
		}

		if filepath.Ext(path) != r.opts.SourceExt || r.shouldIgnore(rel, false) {
			return nil
		}

		pairs = append(pairs, r.pair(rel))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk %s: %w", r.opts.SourceDir, err)
	}

	slices.SortFunc(pairs, func(a, b Pair) int {
		return strings.Compare(a.Rel, b.Rel)
	})
	return pairs, nil
}

// Pair resolves a single source path such as one reported by a file watcher.
// ok is false when the path is outside SourceDir, has the wrong extension
// or is ignored.
func (r *Resolver) Pair(path string) (p Pair, ok bool) {
	root, err := filepath.Abs(r.opts.SourceDir)
	if err != nil {
		return Pair{}, false
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return Pair{}, false
	}
	rel, err := filepath.Rel(root, abs)
	if err != nil {
		return Pair{}, false
	}
	rel = filepath.ToSlash(rel)
	if rel == ".." || strings.HasPrefix(rel, "../") {
		return Pair{}, false
	}
	if filepath.Ext(rel) != r.opts.SourceExt || r.shouldIgnore(rel, false) {
		return Pair{}, false
	}
	return r.pair(rel), true
}

func (r *Resolver) pair(rel string) Pair {
	spec := r.SpecPath(rel)
	info, err := os.Stat(spec)
	return Pair{
		Rel:     rel,
		Source:  filepath.Join(r.opts.SourceDir, filepath.FromSlash(rel)),
		Spec:    spec,
		HasSpec: err == nil && info.Mode().IsRegular(),
	}
}

// SpecPath derives the spec document path for a source path relative to
// SourceDir: spec_dir/<rel with the source extension replaced>.
func (r *Resolver) SpecPath(rel string) string {
	return SpecPath(r.opts.SpecDir, rel, r.opts.SourceExt, r.opts.DocExt)
}

// SpecPath mirrors rel under specDir and swaps sourceExt for docExt.
func SpecPath(specDir, rel, sourceExt, docExt string) string {
	rel = strings.TrimSuffix(filepath.FromSlash(rel), sourceExt)
	return filepath.Join(specDir, rel+docExt)
}

// shouldIgnore checks if a path matches any ignore pattern or the gitignore.
func (r *Resolver) shouldIgnore(rel string, isDir bool) bool {
	if r.gitignore != nil {
		if r.gitignore.MatchesPath(rel) || (isDir && r.gitignore.MatchesPath(rel+"/")) {
			return true
		}
	}

	if r.matchesAny(rel) {
		return true
	}

	// "target" should match pattern "target/**"
	return r.matchesAny(rel + "/**")
}

// matchesAny checks if a path matches any ignore pattern.
func (r *Resolver) matchesAny(path string) bool {
	for _, cp := range r.ignores {
		if cp.glob.Match(path) {
			return true
		}
	}

	// Root-level files also match patterns with the leading **/ removed,
	// so "**/*_test.rs" matches "lib_test.rs".
	if !strings.Contains(path, "/") {
		for _, cp := range r.ignores {
			if !strings.HasPrefix(cp.pattern, "**/") {
				continue
			}
			if g, err := glob.Compile(strings.TrimPrefix(cp.pattern, "**/"), '/'); err == nil && g.Match(path) {
				return true
			}
		}
	}

	return false
}
