package schema

import "sort"

const (
	// ContextKey and SchemaOrgContext tag every generated template.
	ContextKey       = "@context"
	SchemaOrgContext = "https://schema.org"

	placeholderPrefix = "Exemple_"
)

// Template is a JSON-LD object skeleton for one missing type.
type Template map[string]any

// Type returns the template's @type.
func (t Template) Type() string {
	s, _ := t[TypeMarker].(string)
	return s
}

// Placeholder returns the example value written for a missing property.
func Placeholder(property string) string {
	return placeholderPrefix + property
}

// GenerateTemplates groups opportunity properties by type and returns one
// template per type, sorted by type. Type-declaration markers carry no value
// to fill in and are skipped, so a type with nothing else missing yields no
// template. A missing @context is skipped too; every template already has one.
func GenerateTemplates(opps []Pair) []Template {
	byType := make(map[string]Template)
	for _, p := range opps {
		if p.IsTypeMarker() || p.Property == ContextKey {
			continue
		}
		t, ok := byType[p.Type]
		if !ok {
			t = Template{ContextKey: SchemaOrgContext, TypeMarker: p.Type}
			byType[p.Type] = t
		}
		t[p.Property] = Placeholder(p.Property)
	}

	types := make([]string, 0, len(byType))
	for typ := range byType {
		types = append(types, typ)
	}
	sort.Strings(types)

	out := make([]Template, 0, len(types))
	for _, typ := range types {
		out = append(out, byType[typ])
	}
	return out
}
