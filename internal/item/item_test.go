package item

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test Plan for Item Model:
// - Key distinguishes kinds sharing a name
// - Trait methods are qualified by their trait
// - Set.Add keeps the first item for a key and records later duplicates
// - Set.Items is sorted by kind, trait, name regardless of insertion order
// - Key.Compare orders by kind, then trait, then name
// - Key.String formats struct, method and function keys for reports
// - nil Set behaves as empty

func TestKey_DistinguishesKinds(t *testing.T) {
	t.Parallel()

	s := NewSet()
	require.True(t, s.Add(Item{Kind: Struct, Name: "Shape"}))
	require.True(t, s.Add(Item{Kind: Function, Name: "Shape"}))

	assert.Equal(t, 2, s.Len())
}

func TestKey_QualifiesTraitMethods(t *testing.T) {
	t.Parallel()

	s := NewSet()
	require.True(t, s.Add(Item{Kind: TraitMethod, Trait: "Shape", Name: "area"}))
	require.True(t, s.Add(Item{Kind: TraitMethod, Trait: "Solid", Name: "area"}))

	_, ok := s.Get(Key{Kind: TraitMethod, Trait: "Shape", Name: "area"})
	assert.True(t, ok)
	_, ok = s.Get(Key{Kind: TraitMethod, Name: "area"})
	assert.False(t, ok)
}

func TestSet_FirstWins(t *testing.T) {
	t.Parallel()

	s := NewSet()
	require.True(t, s.Add(Item{Kind: Function, Name: "run", Signature: "( )", Line: 3}))
	require.False(t, s.Add(Item{Kind: Function, Name: "run", Signature: "( i32 )", Line: 9}))

	got, ok := s.Get(Key{Kind: Function, Name: "run"})
	require.True(t, ok)
	assert.Equal(t, 3, got.Line)

	dups := s.Duplicates()
	require.Len(t, dups, 1)
	assert.Equal(t, 9, dups[0].Line)
}

func TestSet_ItemsSorted(t *testing.T) {
	t.Parallel()

	s := NewSet()
	s.Add(Item{Kind: Function, Name: "b"})
	s.Add(Item{Kind: TraitMethod, Trait: "Z", Name: "a"})
	s.Add(Item{Kind: Function, Name: "a"})
	s.Add(Item{Kind: Struct, Name: "Point"})
	s.Add(Item{Kind: TraitMethod, Trait: "A", Name: "z"})

	var keys []string
	for _, it := range s.Items() {
		keys = append(keys, it.Key().String())
	}
	assert.Equal(t, []string{"struct Point", "A::z", "Z::a", "fn a", "fn b"}, keys)
}

func TestKey_Compare(t *testing.T) {
	t.Parallel()

	a := Key{Kind: Struct, Name: "Z"}
	b := Key{Kind: TraitMethod, Trait: "A", Name: "z"}
	c := Key{Kind: TraitMethod, Trait: "B", Name: "a"}

	assert.Equal(t, 0, a.Compare(a))
	assert.Negative(t, a.Compare(b))
	assert.Positive(t, c.Compare(b))
	assert.True(t, b.Less(c))
	assert.False(t, c.Less(b))
}

func TestKey_String(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "struct Point", Key{Kind: Struct, Name: "Point"}.String())
	assert.Equal(t, "enum Color", Key{Kind: Enum, Name: "Color"}.String())
	assert.Equal(t, "trait Marker", Key{Kind: Trait, Name: "Marker"}.String())
	assert.Equal(t, "Shape::area", Key{Kind: TraitMethod, Trait: "Shape", Name: "area"}.String())
	assert.Equal(t, "fn helper", Key{Kind: Function, Name: "helper"}.String())
}

func TestSet_Nil(t *testing.T) {
	t.Parallel()

	var s *Set
	assert.Equal(t, 0, s.Len())
	assert.Empty(t, s.Items())
	_, ok := s.Get(Key{Kind: Function, Name: "x"})
	assert.False(t, ok)
}
