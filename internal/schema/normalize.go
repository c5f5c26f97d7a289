package schema

import (
	"fmt"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// RawKind discriminates the shapes a raw schema can arrive in.
type RawKind int

const (
	// KindInvalid is any shape that is not recognized. It normalizes to an
	// empty set.
	KindInvalid RawKind = iota
	// KindPairs is a set or sequence of (type, property) pairs.
	KindPairs
	// KindMapping maps a type to its property names.
	KindMapping
)

func (k RawKind) String() string {
	switch k {
	case KindPairs:
		return "pairs"
	case KindMapping:
		return "mapping"
	default:
		return "invalid"
	}
}

// RawSchema is a schema representation whose shape has been resolved once.
// Only the field matching Kind is populated.
type RawSchema struct {
	Kind    RawKind
	Pairs   []Pair
	Mapping map[string][]string
}

// ParseRawSchema resolves an upstream value into a RawSchema. Accepted shapes:
//
//   - PairSet, []Pair, [][2]string, [][]string or []any of 2-element []any
//   - map[string]any whose values are []any, []string, map[string]any,
//     map[string]bool or map[string]struct{}
//   - map[string][]string
//
// Sequences with any element that is not a 2-element pair are invalid.
// Mapping entries with an unrecognized value are dropped.
func ParseRawSchema(v any) RawSchema {
	switch t := v.(type) {
	case RawSchema:
		return t
	case PairSet:
		return RawSchema{Kind: KindPairs, Pairs: t.Sorted()}
	case []Pair:
		return RawSchema{Kind: KindPairs, Pairs: append([]Pair(nil), t...)}
	case [][2]string:
		pairs := make([]Pair, 0, len(t))
		for _, e := range t {
			pairs = append(pairs, Pair{Type: e[0], Property: e[1]})
		}
		return RawSchema{Kind: KindPairs, Pairs: pairs}
	case [][]string:
		pairs := make([]Pair, 0, len(t))
		for _, e := range t {
			if len(e) != 2 {
				return RawSchema{Kind: KindInvalid}
			}
			pairs = append(pairs, Pair{Type: e[0], Property: e[1]})
		}
		return RawSchema{Kind: KindPairs, Pairs: pairs}
	case []any:
		pairs := make([]Pair, 0, len(t))
		for _, e := range t {
			p, ok := pairFromAny(e)
			if !ok {
				return RawSchema{Kind: KindInvalid}
			}
			pairs = append(pairs, p)
		}
		return RawSchema{Kind: KindPairs, Pairs: pairs}
	case map[string][]string:
		m := make(map[string][]string, len(t))
		for typ, props := range t {
			m[typ] = append([]string(nil), props...)
		}
		return RawSchema{Kind: KindMapping, Mapping: m}
	case map[string]any:
		m := make(map[string][]string, len(t))
		for typ, val := range t {
			props, ok := propertyNames(val)
			if !ok {
				continue
			}
			m[typ] = props
		}
		return RawSchema{Kind: KindMapping, Mapping: m}
	}
	return RawSchema{Kind: KindInvalid}
}

// Normalize converts a resolved raw schema into a pair set. Invalid input
// yields an empty set rather than an error. Pairs with an empty type or
// property, including those built from null values, are dropped.
func Normalize(raw RawSchema) PairSet {
	out := make(PairSet)
	add := func(p Pair) {
		if p.Type == "" || p.Property == "" {
			return
		}
		out.Add(p)
	}
	switch raw.Kind {
	case KindPairs:
		for _, p := range raw.Pairs {
			add(p)
		}
	case KindMapping:
		for typ, props := range raw.Mapping {
			for _, prop := range props {
				add(Pair{Type: typ, Property: prop})
			}
		}
	}
	return out
}

// NormalizeAny is shorthand for Normalize(ParseRawSchema(v)).
func NormalizeAny(v any) PairSet {
	return Normalize(ParseRawSchema(v))
}

func pairFromAny(v any) (Pair, bool) {
	switch e := v.(type) {
	case Pair:
		return e, true
	case [2]string:
		return Pair{Type: e[0], Property: e[1]}, true
	case []string:
		if len(e) == 2 {
			return Pair{Type: e[0], Property: e[1]}, true
		}
	case []any:
		if len(e) == 2 {
			return Pair{Type: stringify(e[0]), Property: stringify(e[1])}, true
		}
	}
	return Pair{}, false
}

func propertyNames(v any) ([]string, bool) {
	switch t := v.(type) {
	case []string:
		return append([]string(nil), t...), true
	case []any:
		out := make([]string, 0, len(t))
		for _, e := range t {
			out = append(out, stringify(e))
		}
		return out, true
	case map[string]any:
		return mapKeys(t), true
	case map[string]bool:
		return mapKeys(t), true
	case map[string]struct{}:
		return mapKeys(t), true
	}
	return nil, false
}

func mapKeys[V any](m map[string]V) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}

// stringify maps null to "" so it never becomes a "<nil>" name.
func stringify(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	}
	return fmt.Sprint(v)
}

// CompetitorNames returns exactly n display names, one per competitor schema,
// in input order. Missing or blank names become "Competitor N" (1-indexed)
// and a name already taken gets " (N)" appended, N being its 1-indexed
// position.
func CompetitorNames(raw []string, n int) []string {
	if n <= 0 {
		return []string{}
	}
	out := make([]string, n)
	seen := make(map[string]bool, n)

	for i := 0; i < n; i++ {
		name := ""
		if i < len(raw) {
			name = strings.TrimSpace(norm.NFC.String(raw[i]))
		}
		if name == "" {
			name = fmt.Sprintf("Competitor %d", i+1)
		}
		base, suffix := name, i+1
		for seen[name] {
			name = fmt.Sprintf("%s (%d)", base, suffix)
			suffix++
		}
		seen[name] = true
		out[i] = name
	}
	return out
}
