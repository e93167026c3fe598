package report

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mvp-joe/spec-check/internal/compare"
	"github.com/mvp-joe/spec-check/internal/item"
	"github.com/mvp-joe/spec-check/internal/parsers"
)

// Test Plan for Report:
// - Compared maps a clean diff to OK and any difference to ERROR
// - Summary reduction counts each verdict once and splits errors into mismatched/failed
// - Exit code: 0 only when all OK; WARNING fails unless missing specs are allowed
// - Writer renders OK, WARNING and ERROR entries in the log format
// - Writer renders mismatch details with 1-based first-difference position
// - Writer labels parse failures and other failures differently
// - Create truncates an existing log file

func mismatchDiff() compare.Diff {
	return compare.Diff{
		CodeOnly: []item.Item{{Kind: item.Function, Name: "helper", Line: 3}},
		SpecOnly: []item.Item{{Kind: item.TraitMethod, Trait: "Shape", Name: "area", Line: 12}},
		Mismatched: []compare.Mismatch{{
			Code:      item.Item{Kind: item.Function, Name: "area", Display: "fn area(f32, f32) -> f32", Line: 1},
			Spec:      item.Item{Kind: item.Function, Name: "area", Display: "fn area(f32) -> f32", Line: 8},
			FirstDiff: 11,
		}},
	}
}

func TestCompared_Verdict(t *testing.T) {
	t.Parallel()

	assert.Equal(t, OK, Compared("a.rs", "a.md", compare.Diff{}).Verdict)
	assert.Equal(t, Error, Compared("a.rs", "a.md", mismatchDiff()).Verdict)
	assert.Equal(t, Warning, Missing("a.rs", "a.md").Verdict)
	assert.Equal(t, Error, Failed("a.rs", "a.md", errors.New("boom")).Verdict)
}

func TestSummarize(t *testing.T) {
	t.Parallel()

	s := Summarize([]FileResult{
		Compared("a.rs", "a.md", compare.Diff{}),
		Compared("b.rs", "b.md", compare.Diff{}),
		Compared("c.rs", "c.md", mismatchDiff()),
		Missing("d.rs", "d.md"),
		Failed("e.rs", "e.md", errors.New("read failed")),
	})

	assert.Equal(t, Summary{Total: 5, MissingSpec: 1, Passed: 2, Mismatched: 1, Failed: 1}, s)
	assert.Equal(t, 2, s.Errors())
	assert.Equal(t, s.Total, s.Passed+s.MissingSpec+s.Errors())
}

func TestSummary_ExitCode(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name         string
		summary      Summary
		allowMissing bool
		want         int
	}{
		{name: "empty run", summary: Summary{}, want: 0},
		{name: "all pass", summary: Summary{Total: 2, Passed: 2}, want: 0},
		{name: "missing spec fails", summary: Summary{Total: 1, MissingSpec: 1}, want: 1},
		{name: "missing spec allowed", summary: Summary{Total: 1, MissingSpec: 1}, allowMissing: true, want: 0},
		{name: "mismatch fails", summary: Summary{Total: 1, Mismatched: 1}, allowMissing: true, want: 1},
		{name: "failure fails", summary: Summary{Total: 1, Failed: 1}, allowMissing: true, want: 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.summary.ExitCode(tt.allowMissing))
		})
	}
}

func TestWriter_Entries(t *testing.T) {
	t.Parallel()

	results := []FileResult{
		Compared("src/ok.rs", "spec/ok.md", compare.Diff{}),
		Missing("src/missing.rs", "spec/missing.md"),
		Compared("src/shapes.rs", "spec/shapes.md", mismatchDiff()),
	}

	var buf bytes.Buffer
	w := NewWriter(&buf)
	require.NoError(t, w.Write(results, Summarize(results)))

	want := `OK: src/ok.rs
WARNING: No spec file found for src/missing.rs

ERROR: src/shapes.rs
  Items in code but not in spec:
    - fn helper (line 3)
  Items in spec but not in code:
    - Shape::area (line 12)
  Signature mismatches:
    - fn area
      Code (line 1): fn area(f32, f32) -> f32
      Spec (line 8): fn area(f32) -> f32
      First difference at character 12


================================================================================
SUMMARY
Total files checked: 3
Files with errors: 1
Files missing spec: 1
Files passing: 1
`
	assert.Equal(t, want, buf.String())
}

func TestWriter_AttributeMismatch(t *testing.T) {
	t.Parallel()

	d := compare.Diff{AttributeMismatched: []compare.AttributeMismatch{{
		Code: item.Item{Kind: item.Struct, Name: "Foo", Line: 1},
		Spec: item.Item{Kind: item.Struct, Name: "Foo", Line: 5, Attributes: []item.Attribute{{Text: "#[derive(Debug)]", Signature: "# [ derive ( Debug ) ]"}}},
	}}}

	var buf bytes.Buffer
	w := NewWriter(&buf)
	w.WriteResult(Compared("foo.rs", "foo.md", d))
	require.NoError(t, w.Flush())

	assert.Contains(t, buf.String(), "  Attribute mismatches:\n    - struct Foo (code line 1, spec line 5)\n")
	assert.Contains(t, buf.String(), "      Code attributes: none\n")
	assert.Contains(t, buf.String(), "      Spec attributes: #[derive(Debug)]\n")
}

func TestWriter_ErrorLabels(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	w := NewWriter(&buf)
	w.WriteResult(Failed("bad.rs", "bad.md", &parsers.ParseError{File: "bad.rs", Line: 3, Column: 1, Msg: "missing }"}))
	w.WriteResult(Failed("gone.rs", "gone.md", errors.New("permission denied")))
	require.NoError(t, w.Flush())

	assert.Contains(t, buf.String(), "ERROR: bad.rs\n  Parse error: bad.rs:3:1: missing }\n")
	assert.Contains(t, buf.String(), "ERROR: gone.rs\n  Error: permission denied\n")
}

func TestCreate_Truncates(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "logs", "spec-check.log")
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte("stale content from a previous run\n"), 0644))

	w, err := Create(path)
	require.NoError(t, err)
	w.WriteSummary(Summary{})
	require.NoError(t, w.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "stale")
	assert.Contains(t, string(data), "Total files checked: 0\n")
}
