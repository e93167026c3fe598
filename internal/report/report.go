// Package report holds per-file check results, the run summary and the
// plain-text log writer.
package report

import (
	"github.com/mvp-joe/spec-check/internal/compare"
)

// Verdict is the outcome for one source file.
type Verdict int

const (
	// OK means the spec document matches the source file.
	OK Verdict = iota
	// Warning means no spec document exists for the source file.
	Warning
	// Error means a mismatch was found or extraction failed.
	Error
)

func (v Verdict) String() string {
	switch v {
	case OK:
		return "OK"
	case Warning:
		return "WARNING"
	case Error:
		return "ERROR"
	}
	return "UNKNOWN"
}

// FileResult is the result of checking one file pair.
type FileResult struct {
	// Source is the source path as reported in the log.
	Source string
	// Spec is the derived spec document path.
	Spec    string
	Verdict Verdict
	Diff    compare.Diff
	// Err is set when reading or parsing either side failed.
	Err error
}

// Missing builds the result for a source file without a spec document.
func Missing(source, spec string) FileResult {
	return FileResult{Source: source, Spec: spec, Verdict: Warning}
}

// Failed builds the result for a pair whose extraction failed.
func Failed(source, spec string, err error) FileResult {
	return FileResult{Source: source, Spec: spec, Verdict: Error, Err: err}
}

// Compared builds the result for a pair that was compared.
func Compared(source, spec string, d compare.Diff) FileResult {
	v := OK
	if !d.Clean() {
		v = Error
	}
	return FileResult{Source: source, Spec: spec, Verdict: v, Diff: d}
}

// Summary aggregates verdicts over a run.
type Summary struct {
	Total       int
	MissingSpec int
	Passed      int
	// Mismatched counts ERROR verdicts caused by a non-empty diff.
	Mismatched int
	// Failed counts ERROR verdicts caused by a read or parse failure.
	Failed int
}

// Add folds one result into the summary.
func (s *Summary) Add(r FileResult) {
	s.Total++
	switch r.Verdict {
	case OK:
		s.Passed++
	case Warning:
		s.MissingSpec++
	case Error:
		if r.Err != nil {
			s.Failed++
		} else {
			s.Mismatched++
		}
	}
}

// Errors returns the number of files with an ERROR verdict.
func (s Summary) Errors() int {
	return s.Mismatched + s.Failed
}

// Summarize reduces a list of results into a Summary.
func Summarize(results []FileResult) Summary {
	var s Summary
	for _, r := range results {
		s.Add(r)
	}
	return s
}

// ExitCode returns the process exit status for the summary.
// ERROR verdicts always fail; WARNING verdicts fail unless allowMissing is set.
func (s Summary) ExitCode(allowMissing bool) int {
	if s.Errors() > 0 {
		return 1
	}
	if s.MissingSpec > 0 && !allowMissing {
		return 1
	}
	return 0
}
