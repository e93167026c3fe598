package report

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/mvp-joe/spec-check/internal/item"
	"github.com/mvp-joe/spec-check/internal/parsers"
)

const separator = "================================================================================"

// Writer renders results in the plain-text log format.
type Writer struct {
	w   *bufio.Writer
	c   io.Closer
	err error
}

// NewWriter creates a Writer on w. Call Flush when done.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: bufio.NewWriter(w)}
}

// Create truncates or creates the log file at path and returns a Writer on it.
func Create(path string) (*Writer, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create log directory: %w", err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	w := NewWriter(f)
	w.c = f
	return w, nil
}

// WriteResult appends the entry for one file.
func (w *Writer) WriteResult(r FileResult) {
	switch r.Verdict {
	case OK:
		w.printf("OK: %s\n", r.Source)
	case Warning:
		w.printf("WARNING: No spec file found for %s\n", r.Source)
	case Error:
		w.printf("\nERROR: %s\n", r.Source)
		if r.Err != nil {
			w.printf("  %s: %s\n\n", errorLabel(r.Err), r.Err)
			return
		}
		w.writeDiff(r)
		w.printf("\n")
	}
}

func (w *Writer) writeDiff(r FileResult) {
	d := r.Diff
	if len(d.CodeOnly) > 0 {
		w.printf("  Items in code but not in spec:\n")
		for _, it := range d.CodeOnly {
			w.printf("    - %s (line %d)\n", it.Key(), it.Line)
		}
	}
	if len(d.SpecOnly) > 0 {
		w.printf("  Items in spec but not in code:\n")
		for _, it := range d.SpecOnly {
			w.printf("    - %s (line %d)\n", it.Key(), it.Line)
		}
	}
	if len(d.Mismatched) > 0 {
		w.printf("  Signature mismatches:\n")
		for _, m := range d.Mismatched {
			w.printf("    - %s\n", m.Key())
			w.printf("      Code (line %d): %s\n", m.Code.Line, m.Code.Display)
			w.printf("      Spec (line %d): %s\n", m.Spec.Line, m.Spec.Display)
			if m.FirstDiff >= 0 {
				w.printf("      First difference at character %d\n", m.FirstDiff+1)
			}
		}
	}
	if len(d.AttributeMismatched) > 0 {
		w.printf("  Attribute mismatches:\n")
		for _, m := range d.AttributeMismatched {
			w.printf("    - %s (code line %d, spec line %d)\n", m.Code.Key(), m.Code.Line, m.Spec.Line)
			w.printf("      Code attributes: %s\n", attributeList(m.Code))
			w.printf("      Spec attributes: %s\n", attributeList(m.Spec))
		}
	}
}

// WriteSummary appends the summary block.
func (w *Writer) WriteSummary(s Summary) {
	w.printf("\n%s\n", separator)
	w.printf("SUMMARY\n")
	w.printf("Total files checked: %d\n", s.Total)
	w.printf("Files with errors: %d\n", s.Errors())
	w.printf("Files missing spec: %d\n", s.MissingSpec)
	w.printf("Files passing: %d\n", s.Passed)
}

// Write renders every result followed by the summary.
func (w *Writer) Write(results []FileResult, s Summary) error {
	for _, r := range results {
		w.WriteResult(r)
	}
	w.WriteSummary(s)
	return w.Flush()
}

// Flush writes buffered output and returns the first error encountered.
func (w *Writer) Flush() error {
	if w.err != nil {
		return w.err
	}
	return w.w.Flush()
}

// Close flushes and closes the underlying file, if any.
func (w *Writer) Close() error {
	err := w.Flush()
	if w.c != nil {
		if cerr := w.c.Close(); err == nil {
			err = cerr
		}
	}
	return err
}

func (w *Writer) printf(format string, args ...any) {
	if w.err != nil {
		return
	}
	_, w.err = fmt.Fprintf(w.w, format, args...)
}

func attributeList(it item.Item) string {
	if len(it.Attributes) == 0 {
		return "none"
	}
	texts := make([]string, len(it.Attributes))
	for i, a := range it.Attributes {
		texts[i] = a.Text
	}
	return strings.Join(texts, " ")
}

func errorLabel(err error) string {
	var perr *parsers.ParseError
	var serr *parsers.SampleParseError
	if errors.As(err, &perr) || errors.As(err, &serr) {
		return "Parse error"
	}
	return "Error"
}
