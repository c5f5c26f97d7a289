package schema

import "strings"

// frame is one pending node of the flatten walk with the type it inherits.
type frame struct {
	node      any
	inherited string
}

// Flatten walks a JSON-LD document and returns every (type, property) pair it
// declares. Nested objects without their own @type inherit the nearest
// enclosing type; properties with no type anywhere above them are recorded
// under UnknownType. Unexpected node kinds are treated as scalars.
//
// The walk uses an explicit stack so deeply nested documents cannot exhaust
// the goroutine stack. JSON trees are acyclic, so no visited set is kept.
func Flatten(doc Document) PairSet {
	out := make(PairSet)
	stack := []frame{{node: doc}}

	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		switch n := f.node.(type) {
		case map[string]any:
			types := declaredTypes(n[TypeMarker])
			if len(types) == 0 && f.inherited != "" {
				types = []string{f.inherited}
			}
			for _, t := range types {
				out.Add(Pair{Type: t, Property: TypeMarker})
			}

			owners := types
			if len(owners) == 0 {
				owners = []string{UnknownType}
			}
			next := ""
			if len(types) > 0 {
				next = types[0]
			}

			for k, v := range n {
				if k == TypeMarker {
					continue
				}
				for _, t := range owners {
					out.Add(Pair{Type: t, Property: k})
				}
				stack = append(stack, frame{node: v, inherited: next})
			}
		case []any:
			for _, v := range n {
				stack = append(stack, frame{node: v, inherited: f.inherited})
			}
		case []map[string]any:
			for _, v := range n {
				stack = append(stack, frame{node: v, inherited: f.inherited})
			}
		}
	}

	return out
}

// FlattenAll flattens each document and returns the union.
func FlattenAll(docs []Document) PairSet {
	out := make(PairSet)
	for _, d := range docs {
		for p := range Flatten(d) {
			out.Add(p)
		}
	}
	return out
}

// declaredTypes reads an @type value. JSON-LD allows a single string or an
// array of strings; blanks and non-string entries are ignored.
func declaredTypes(v any) []string {
	switch t := v.(type) {
	case string:
		if s := strings.TrimSpace(t); s != "" {
			return []string{s}
		}
	case []any:
		var out []string
		seen := make(map[string]bool, len(t))
		for _, e := range t {
			s, ok := e.(string)
			if !ok {
				continue
			}
			s = strings.TrimSpace(s)
			if s == "" || seen[s] {
				continue
			}
			seen[s] = true
			out = append(out, s)
		}
		return out
	case []string:
		return declaredTypes(toAnySlice(t))
	}
	return nil
}

func toAnySlice(ss []string) []any {
	out := make([]any, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}
