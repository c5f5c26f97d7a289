package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/sells-group/schema-gap/internal/schema"
)

func TestReport_Status(t *testing.T) {
	t.Parallel()

	withRows := schema.Comparison{Rows: []schema.Row{{Pair: schema.Pair{Type: "A", Property: "b"}}}}

	t.Run("empty", func(t *testing.T) {
		t.Parallel()
		r := &Report{Warnings: []SourceWarning{{Source: "x", Stage: StageFetch}}}
		assert.Equal(t, RunStatusEmpty, r.Status())
	})

	t.Run("partial", func(t *testing.T) {
		t.Parallel()
		r := &Report{Comparison: withRows, Warnings: []SourceWarning{{Source: "x", Stage: StageExtract}}}
		assert.Equal(t, RunStatusPartial, r.Status())
	})

	t.Run("complete", func(t *testing.T) {
		t.Parallel()
		r := &Report{Comparison: withRows}
		assert.Equal(t, RunStatusComplete, r.Status())
	})
}

func TestReport_Summary(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	r := &Report{
		RunID:       "run-1",
		CreatedAt:   now,
		Target:      SourceSummary{Input: "https://me.test"},
		Competitors: []SourceSummary{{Name: "Rival"}},
		Comparison: schema.Comparison{
			Names: []string{"Rival"},
			Rows: []schema.Row{
				{Pair: schema.Pair{Type: "Product", Property: "name"}, Reference: true, Competitors: []bool{true}},
				{Pair: schema.Pair{Type: "Product", Property: "price"}, Competitors: []bool{true}},
			},
			Opportunities: []schema.Pair{{Type: "Product", Property: "price"}},
		},
	}

	assert.Equal(t, RunSummary{
		ID:            "run-1",
		Target:        "https://me.test",
		Competitors:   1,
		Keys:          2,
		Opportunities: 1,
		Status:        RunStatusComplete,
		CreatedAt:     now,
	}, r.Summary())
	assert.Equal(t, []string{"Rival"}, r.CompetitorNames())
}
