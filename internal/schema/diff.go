package schema

import (
	"github.com/rotisserie/eris"
)

// ErrLengthMismatch is returned when competitor sets and names disagree in
// length. It signals a caller bug, not bad input data.
var ErrLengthMismatch = eris.New("schema: competitor sets and names differ in length")

// Row is the presence of one (type, property) key across all sources.
type Row struct {
	Pair        `yaml:",inline"`
	Reference   bool   `json:"reference" yaml:"reference"`
	Competitors []bool `json:"competitors" yaml:"competitors"`
}

// AnyCompetitor reports whether at least one competitor has the key.
func (r Row) AnyCompetitor() bool {
	for _, has := range r.Competitors {
		if has {
			return true
		}
	}
	return false
}

// IsOpportunity reports whether the reference lacks a key some competitor has.
func (r Row) IsOpportunity() bool {
	return !r.Reference && r.AnyCompetitor()
}

// Comparison is the result of diffing a reference against competitors.
// Rows and Opportunities are sorted by type, then property.
type Comparison struct {
	Names         []string `json:"competitors" yaml:"competitors"`
	Rows          []Row    `json:"rows" yaml:"rows"`
	Opportunities []Pair   `json:"opportunities" yaml:"opportunities"`
}

// Empty reports whether no structured data was observed anywhere.
func (c *Comparison) Empty() bool {
	return len(c.Rows) == 0
}

// AllKeys returns every key that appears in any row.
func (c *Comparison) AllKeys() PairSet {
	out := make(PairSet, len(c.Rows))
	for _, r := range c.Rows {
		out.Add(r.Pair)
	}
	return out
}

// Types returns the distinct types of all rows in sorted order.
func (c *Comparison) Types() []string {
	var out []string
	for i, r := range c.Rows {
		if i == 0 || c.Rows[i-1].Type != r.Type {
			out = append(out, r.Type)
		}
	}
	return out
}

// Compare diffs ref against each competitor set. names[i] labels comps[i];
// the two slices must have equal length.
func Compare(ref PairSet, comps []PairSet, names []string) (*Comparison, error) {
	if len(comps) != len(names) {
		return nil, eris.Wrapf(ErrLengthMismatch, "%d sets, %d names", len(comps), len(names))
	}

	keys := ref.Union(comps...).Sorted()

	c := &Comparison{
		Names:         append([]string{}, names...),
		Rows:          make([]Row, 0, len(keys)),
		Opportunities: []Pair{},
	}
	for _, k := range keys {
		row := Row{
			Pair:        k,
			Reference:   ref.Has(k),
			Competitors: make([]bool, len(comps)),
		}
		for i, s := range comps {
			row.Competitors[i] = s.Has(k)
		}
		if row.IsOpportunity() {
			c.Opportunities = append(c.Opportunities, k)
		}
		c.Rows = append(c.Rows, row)
	}
	return c, nil
}

// CompareNamed diffs ref against named competitor sets.
func CompareNamed(ref PairSet, comps []NamedPairSet) (*Comparison, error) {
	sets := make([]PairSet, len(comps))
	names := make([]string, len(comps))
	for i, c := range comps {
		sets[i] = c.Pairs
		names[i] = c.Name
	}
	return Compare(ref, sets, names)
}
