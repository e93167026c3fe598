// Package compare diffs the declarations found in a source file against the
// declarations found in its specification document.
package compare

import (
	"slices"
	"strings"

	"github.com/mvp-joe/spec-check/internal/item"
)

// Mismatch is a declaration present on both sides with different signatures.
type Mismatch struct {
	Code item.Item
	Spec item.Item

	// FirstDiff is the 0-based rune index of the first difference between
	// the two display signatures, or -1 if they render identically.
	FirstDiff int
}

// Key returns the shared key of the mismatched pair.
func (m Mismatch) Key() item.Key { return m.Code.Key() }

// AttributeMismatch is a declaration present on both sides whose outer
// attributes differ after filtering ignored attributes.
type AttributeMismatch struct {
	Code item.Item
	Spec item.Item
}

// Diff classifies the differences between a code set and a spec set.
// Every list is sorted by key.
type Diff struct {
	CodeOnly            []item.Item
	SpecOnly            []item.Item
	Mismatched          []Mismatch
	AttributeMismatched []AttributeMismatch
}

// Clean reports whether the two sides agree completely.
func (d Diff) Clean() bool {
	return len(d.CodeOnly) == 0 &&
		len(d.SpecOnly) == 0 &&
		len(d.Mismatched) == 0 &&
		len(d.AttributeMismatched) == 0
}

// Options configures a Comparator.
type Options struct {
	// CheckAttributes enables attribute comparison on matched pairs.
	CheckAttributes bool

	// IgnoredAttributes lists attribute names excluded from comparison,
	// e.g. "doc" drops #[doc = "..."].
	IgnoredAttributes []string
}

// Comparator compares item sets.
type Comparator struct {
	opts Options
}

// New creates a Comparator.
func New(opts Options) *Comparator {
	return &Comparator{opts: opts}
}

// Compare diffs code against spec with default options.
func Compare(code, spec *item.Set) Diff {
	return New(Options{}).Compare(code, spec)
}

// Compare diffs code against spec. Neither set is modified.
func (c *Comparator) Compare(code, spec *item.Set) Diff {
	var d Diff

	for _, ci := range code.Items() {
		si, ok := spec.Get(ci.Key())
		if !ok {
			d.CodeOnly = append(d.CodeOnly, ci)
			continue
		}
		if ci.Signature != si.Signature {
			d.Mismatched = append(d.Mismatched, Mismatch{
				Code:      ci,
				Spec:      si,
				FirstDiff: FirstDifference(ci.Display, si.Display),
			})
		}
		if c.opts.CheckAttributes && !slices.Equal(c.attributes(ci), c.attributes(si)) {
			d.AttributeMismatched = append(d.AttributeMismatched, AttributeMismatch{Code: ci, Spec: si})
		}
	}

	for _, si := range spec.Items() {
		if _, ok := code.Get(si.Key()); !ok {
			d.SpecOnly = append(d.SpecOnly, si)
		}
	}

	// Items() is already sorted, so the lists are too.
	return d
}

// attributes returns the sorted token forms of the attributes of it that
// are not ignored.
func (c *Comparator) attributes(it item.Item) []string {
	var out []string
	for _, a := range it.Attributes {
		if c.ignored(a.Text) {
			continue
		}
		out = append(out, a.Signature)
	}
	slices.Sort(out)
	return out
}

func (c *Comparator) ignored(attr string) bool {
	name := AttributeName(attr)
	for _, ig := range c.opts.IgnoredAttributes {
		if name == ig {
			return true
		}
	}
	return false
}

// AttributeName returns the path of an outer attribute,
// e.g. "derive" for "#[derive(Debug)]" and "doc" for `#[doc = "x"]`.
func AttributeName(attr string) string {
	s := strings.TrimSpace(attr)
	s = strings.TrimPrefix(s, "#")
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "[")
	s = strings.TrimSpace(s)
	if i := strings.IndexAny(s, "(=] \t"); i >= 0 {
		s = s[:i]
	}
	return s
}

// FirstDifference returns the 0-based rune index where a and b first differ,
// or -1 if they are equal.
func FirstDifference(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	n := min(len(ra), len(rb))
	for i := 0; i < n; i++ {
		if ra[i] != rb[i] {
			return i
		}
	}
	if len(ra) != len(rb) {
		return n
	}
	return -1
}
