// Package item defines the declarations extracted from Rust source files and
// from the code samples embedded in specification documents.
package item

import (
	"cmp"
	"fmt"
	"slices"
)

// Kind is the syntactic kind of an extracted declaration.
// The set is closed; switches over Kind are expected to be exhaustive.
type Kind int

const (
	Struct Kind = iota
	Enum
	Trait
	TraitMethod
	Function
)

func (k Kind) String() string {
	switch k {
	case Struct:
		return "struct"
	case Enum:
		return "enum"
	case Trait:
		return "trait"
	case TraitMethod:
		return "method"
	case Function:
		return "fn"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Visibility records whether a declaration carries the `pub` qualifier.
type Visibility int

const (
	Public Visibility = iota
	Private
)

func (v Visibility) String() string {
	if v == Public {
		return "public"
	}
	return "private"
}

// Key identifies a declaration for comparison purposes.
// Trait is only set for TraitMethod items.
type Key struct {
	Kind  Kind
	Trait string
	Name  string
}

// Compare orders keys by kind, then trait, then name.
func (k Key) Compare(o Key) int {
	return cmp.Or(
		cmp.Compare(k.Kind, o.Kind),
		cmp.Compare(k.Trait, o.Trait),
		cmp.Compare(k.Name, o.Name),
	)
}

// Less reports whether k sorts before o.
func (k Key) Less(o Key) bool {
	return k.Compare(o) < 0
}

// String formats the key the way it appears in reports,
// e.g. "struct Point", "Shape::area" or "fn helper".
func (k Key) String() string {
	if k.Kind == TraitMethod {
		return k.Trait + "::" + k.Name
	}
	return k.Kind.String() + " " + k.Name
}

// Attribute is an outer attribute such as #[derive(Debug)].
type Attribute struct {
	// Text is the source text with whitespace collapsed, for reports.
	Text string
	// Signature is the canonical token form used for equality.
	Signature string
}

// Item is a single declared program entity.
type Item struct {
	Kind  Kind
	Name  string
	Trait string // enclosing trait for TraitMethod

	// Signature is the canonical token form used for equality.
	// Display is the compact, human-readable form used in reports.
	Signature string
	Display   string

	Visibility Visibility
	Attributes []Attribute
	Line       int
}

// Key returns the identity of the item.
func (i Item) Key() Key {
	return Key{Kind: i.Kind, Trait: i.Trait, Name: i.Name}
}

// Set is a collection of items keyed by Key.
// The first item added for a key wins; later ones are kept as duplicates.
type Set struct {
	items      map[Key]Item
	duplicates []Item
}

// NewSet creates an empty set.
func NewSet() *Set {
	return &Set{items: make(map[Key]Item)}
}

// Add inserts it unless its key is already present.
// It reports whether the item was inserted.
func (s *Set) Add(it Item) bool {
	k := it.Key()
	if _, ok := s.items[k]; ok {
		s.duplicates = append(s.duplicates, it)
		return false
	}
	s.items[k] = it
	return true
}

// Get looks up an item by key.
func (s *Set) Get(k Key) (Item, bool) {
	if s == nil {
		return Item{}, false
	}
	it, ok := s.items[k]
	return it, ok
}

// Len returns the number of unique keys.
func (s *Set) Len() int {
	if s == nil {
		return 0
	}
	return len(s.items)
}

// Items returns the items sorted by key.
func (s *Set) Items() []Item {
	if s == nil {
		return nil
	}
	out := make([]Item, 0, len(s.items))
	for _, it := range s.items {
		out = append(out, it)
	}
	SortItems(out)
	return out
}

// Duplicates returns the items that were rejected because their key was
// already present, in insertion order.
func (s *Set) Duplicates() []Item {
	if s == nil {
		return nil
	}
	return append([]Item(nil), s.duplicates...)
}

// SortItems sorts items in place by key.
func SortItems(items []Item) {
	slices.SortFunc(items, func(a, b Item) int {
		return a.Key().Compare(b.Key())
	})
}
