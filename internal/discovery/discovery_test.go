package discovery

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test Plan for Discovery:
// - Missing source or spec root fails with ErrRootNotFound
// - Pairs returns only source-extension files, sorted by relative path
// - Spec path mirrors the source tree with the doc extension
// - HasSpec reflects whether the document exists (directories don't count)
// - Ignore globs skip files and whole directories, including root-level **/ matches
// - .gitignore is honoured only when RespectGitignore is set
// - Invalid ignore pattern is rejected
// - Pair resolves a single watcher path and rejects outside/foreign files

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func setupTree(t *testing.T) (srcDir, specDir string) {
	t.Helper()
	root := t.TempDir()
	srcDir = filepath.Join(root, "src")
	specDir = filepath.Join(root, "spec")

	writeFile(t, filepath.Join(srcDir, "lib.rs"), "pub fn a() {}\n")
	writeFile(t, filepath.Join(srcDir, "shapes", "circle.rs"), "pub struct Circle;\n")
	writeFile(t, filepath.Join(srcDir, "shapes", "square.rs"), "pub struct Square;\n")
	writeFile(t, filepath.Join(srcDir, "README.md"), "# not source\n")
	writeFile(t, filepath.Join(srcDir, "generated", "bindings.rs"), "pub fn ffi() {}\n")
	writeFile(t, filepath.Join(srcDir, "lib_test.rs"), "fn t() {}\n")

	writeFile(t, filepath.Join(specDir, "lib.md"), "```rust\npub fn a() {}\n```\n")
	writeFile(t, filepath.Join(specDir, "shapes", "circle.md"), "```rust\npub struct Circle;\n```\n")
	require.NoError(t, os.MkdirAll(filepath.Join(specDir, "shapes", "square.md"), 0755))
	return srcDir, specDir
}

func rels(pairs []Pair) []string {
	var out []string
	for _, p := range pairs {
		out = append(out, p.Rel)
	}
	return out
}

func TestNew_MissingRoot(t *testing.T) {
	t.Parallel()

	srcDir, specDir := setupTree(t)

	_, err := New(Options{SourceDir: filepath.Join(srcDir, "nope"), SpecDir: specDir})
	assert.True(t, errors.Is(err, ErrRootNotFound))

	_, err = New(Options{SourceDir: srcDir, SpecDir: filepath.Join(specDir, "nope")})
	assert.True(t, errors.Is(err, ErrRootNotFound))
}

func TestPairs_SortedSourceFiles(t *testing.T) {
	t.Parallel()

	srcDir, specDir := setupTree(t)
	r, err := New(Options{SourceDir: srcDir, SpecDir: specDir})
	require.NoError(t, err)

	pairs, err := r.Pairs()
	require.NoError(t, err)

	assert.Equal(t, []string{
		"generated/bindings.rs",
		"lib.rs",
		"lib_test.rs",
		"shapes/circle.rs",
		"shapes/square.rs",
	}, rels(pairs))
}

func TestPairs_SpecPathAndHasSpec(t *testing.T) {
	t.Parallel()

	srcDir, specDir := setupTree(t)
	r, err := New(Options{SourceDir: srcDir, SpecDir: specDir})
	require.NoError(t, err)

	pairs, err := r.Pairs()
	require.NoError(t, err)

	byRel := map[string]Pair{}
	for _, p := range pairs {
		byRel[p.Rel] = p
	}

	circle := byRel["shapes/circle.rs"]
	assert.Equal(t, filepath.Join(srcDir, "shapes", "circle.rs"), circle.Source)
	assert.Equal(t, filepath.Join(specDir, "shapes", "circle.md"), circle.Spec)
	assert.True(t, circle.HasSpec)

	assert.True(t, byRel["lib.rs"].HasSpec)
	assert.False(t, byRel["shapes/square.rs"].HasSpec, "a directory is not a spec document")
	assert.False(t, byRel["generated/bindings.rs"].HasSpec)
}

func TestSpecPath(t *testing.T) {
	t.Parallel()

	assert.Equal(t, filepath.Join("spec", "lib.md"), SpecPath("spec", "lib.rs", ".rs", ".md"))
	assert.Equal(t, filepath.Join("spec", "a", "b", "mod.md"), SpecPath("spec", "a/b/mod.rs", ".rs", ".md"))
	assert.Equal(t, filepath.Join("docs", "x.rs.txt"), SpecPath("docs", "x.rs", ".go", ".txt"))
}

func TestPairs_IgnorePatterns(t *testing.T) {
	t.Parallel()

	srcDir, specDir := setupTree(t)
	r, err := New(Options{
		SourceDir: srcDir,
		SpecDir:   specDir,
		Ignore:    []string{"generated/**", "**/*_test.rs"},
	})
	require.NoError(t, err)

	pairs, err := r.Pairs()
	require.NoError(t, err)
	assert.Equal(t, []string{"lib.rs", "shapes/circle.rs", "shapes/square.rs"}, rels(pairs))
}

func TestPairs_Gitignore(t *testing.T) {
	t.Parallel()

	srcDir, specDir := setupTree(t)
	writeFile(t, filepath.Join(srcDir, ".gitignore"), "generated/\nlib_test.rs\n")

	r, err := New(Options{SourceDir: srcDir, SpecDir: specDir})
	require.NoError(t, err)
	pairs, err := r.Pairs()
	require.NoError(t, err)
	assert.Len(t, pairs, 5, "gitignore is off by default")

	r, err = New(Options{SourceDir: srcDir, SpecDir: specDir, RespectGitignore: true})
	require.NoError(t, err)
	pairs, err = r.Pairs()
	require.NoError(t, err)
	assert.Equal(t, []string{"lib.rs", "shapes/circle.rs", "shapes/square.rs"}, rels(pairs))
}

func TestNew_InvalidPattern(t *testing.T) {
	t.Parallel()

	srcDir, specDir := setupTree(t)
	_, err := New(Options{SourceDir: srcDir, SpecDir: specDir, Ignore: []string{"[unclosed"}})
	assert.Error(t, err)
}

func TestResolver_Pair(t *testing.T) {
	t.Parallel()

	srcDir, specDir := setupTree(t)
	r, err := New(Options{SourceDir: srcDir, SpecDir: specDir, Ignore: []string{"generated/**"}})
	require.NoError(t, err)

	p, ok := r.Pair(filepath.Join(srcDir, "shapes", "circle.rs"))
	require.True(t, ok)
	assert.Equal(t, "shapes/circle.rs", p.Rel)
	assert.True(t, p.HasSpec)

	_, ok = r.Pair(filepath.Join(srcDir, "README.md"))
	assert.False(t, ok, "wrong extension")

	_, ok = r.Pair(filepath.Join(srcDir, "generated", "bindings.rs"))
	assert.False(t, ok, "ignored")

	_, ok = r.Pair(filepath.Join(specDir, "elsewhere.rs"))
	assert.False(t, ok, "outside source root")
}
