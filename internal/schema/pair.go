// Package schema turns JSON-LD documents into comparable (type, property)
// pair sets and diffs a reference set against competitor sets.
//
// Everything in this package is pure: no I/O, no logging, no shared state.
// Callers may flatten and compare independent inputs concurrently.
package schema

import (
	"sort"
)

const (
	// TypeMarker is the property recorded when a node declares its own type.
	TypeMarker = "@type"

	// UnknownType is used for properties with no declared or inherited type.
	UnknownType = "Unknown"
)

// Document is one parsed JSON-LD block: map[string]any, []any or a scalar.
type Document = any

// Pair is one observed (type, property) fact.
type Pair struct {
	Type     string `json:"type" yaml:"type"`
	Property string `json:"property" yaml:"property"`
}

// Less orders pairs by type, then property.
func (p Pair) Less(o Pair) bool {
	if p.Type != o.Type {
		return p.Type < o.Type
	}
	return p.Property < o.Property
}

// IsTypeMarker reports whether the pair only records a type declaration.
func (p Pair) IsTypeMarker() bool {
	return p.Property == TypeMarker
}

// PairSet is an unordered set of pairs.
type PairSet map[Pair]struct{}

// NewPairSet builds a set from the given pairs.
func NewPairSet(pairs ...Pair) PairSet {
	s := make(PairSet, len(pairs))
	for _, p := range pairs {
		s.Add(p)
	}
	return s
}

// Add inserts p into the set.
func (s PairSet) Add(p Pair) {
	s[p] = struct{}{}
}

// Has reports whether p is in the set. A nil set contains nothing.
func (s PairSet) Has(p Pair) bool {
	_, ok := s[p]
	return ok
}

// Len returns the number of pairs.
func (s PairSet) Len() int {
	return len(s)
}

// Union returns a new set holding every pair of s and others.
func (s PairSet) Union(others ...PairSet) PairSet {
	out := make(PairSet, len(s))
	for p := range s {
		out.Add(p)
	}
	for _, o := range others {
		for p := range o {
			out.Add(p)
		}
	}
	return out
}

// Sorted returns the pairs ordered by type, then property.
func (s PairSet) Sorted() []Pair {
	out := make([]Pair, 0, len(s))
	for p := range s {
		out = append(out, p)
	}
	SortPairs(out)
	return out
}

// Equal reports whether both sets hold exactly the same pairs.
func (s PairSet) Equal(o PairSet) bool {
	if len(s) != len(o) {
		return false
	}
	for p := range s {
		if !o.Has(p) {
			return false
		}
	}
	return true
}

// SortPairs sorts pairs in place by type, then property.
func SortPairs(pairs []Pair) {
	sort.Slice(pairs, func(i, j int) bool { return pairs[i].Less(pairs[j]) })
}

// NamedPairSet associates a display name with a pair set.
type NamedPairSet struct {
	Name  string
	Pairs PairSet
}
