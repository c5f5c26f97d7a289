package model

import (
	"time"

	"github.com/sells-group/schema-gap/internal/schema"
)

// RunStatus summarizes how complete a comparison run was.
type RunStatus string

const (
	RunStatusComplete RunStatus = "complete" // every source loaded
	RunStatusPartial  RunStatus = "partial"  // at least one source warned
	RunStatusEmpty    RunStatus = "empty"    // no structured data anywhere
)

// Report is the full outcome of one comparison run.
type Report struct {
	RunID       string            `json:"run_id" yaml:"run_id"`
	CreatedAt   time.Time         `json:"created_at" yaml:"created_at"`
	Target      SourceSummary     `json:"target" yaml:"target"`
	Competitors []SourceSummary   `json:"competitors" yaml:"competitors"`
	Comparison  schema.Comparison `json:"comparison" yaml:"comparison"`
	Templates   []schema.Template `json:"templates" yaml:"templates"`
	Warnings    []SourceWarning   `json:"warnings,omitempty" yaml:"warnings,omitempty"`
}

// Status derives the run status from the comparison and warnings.
func (r *Report) Status() RunStatus {
	switch {
	case r.Comparison.Empty():
		return RunStatusEmpty
	case len(r.Warnings) > 0:
		return RunStatusPartial
	default:
		return RunStatusComplete
	}
}

// CompetitorNames returns the display names in column order.
func (r *Report) CompetitorNames() []string {
	return r.Comparison.Names
}

// Summary condenses the report for listings.
func (r *Report) Summary() RunSummary {
	return RunSummary{
		ID:            r.RunID,
		Target:        r.Target.Input,
		Competitors:   len(r.Competitors),
		Keys:          len(r.Comparison.Rows),
		Opportunities: len(r.Comparison.Opportunities),
		Warnings:      len(r.Warnings),
		Status:        r.Status(),
		CreatedAt:     r.CreatedAt,
	}
}

// RunSummary is the listing view of a stored run.
type RunSummary struct {
	ID            string    `json:"id"`
	Target        string    `json:"target"`
	Competitors   int       `json:"competitors"`
	Keys          int       `json:"keys"`
	Opportunities int       `json:"opportunities"`
	Warnings      int       `json:"warnings"`
	Status        RunStatus `json:"status"`
	CreatedAt     time.Time `json:"created_at"`
}
