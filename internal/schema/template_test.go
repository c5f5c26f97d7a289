package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenerateTemplates_GroupsByType(t *testing.T) {
	got := GenerateTemplates([]Pair{
		{"Product", "sku"},
		{"Offer", "priceCurrency"},
		{"Product", "gtin13"},
		{"Offer", "@type"},
	})

	assert.Equal(t, []Template{
		{"@context": "https://schema.org", "@type": "Offer", "priceCurrency": "Exemple_priceCurrency"},
		{"@context": "https://schema.org", "@type": "Product", "sku": "Exemple_sku", "gtin13": "Exemple_gtin13"},
	}, got)
	assert.Equal(t, "Offer", got[0].Type())
}

func TestGenerateTemplates_MarkerOnlyTypeSkipped(t *testing.T) {
	got := GenerateTemplates([]Pair{{"FAQPage", "@type"}, {"Product", "@context"}})
	assert.Empty(t, got)
}

func TestGenerateTemplates_Empty(t *testing.T) {
	assert.Empty(t, GenerateTemplates(nil))
}

func TestPlaceholder(t *testing.T) {
	assert.Equal(t, "Exemple_aggregateRating", Placeholder("aggregateRating"))
}
