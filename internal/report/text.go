package report

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/rotisserie/eris"

	"github.com/sells-group/schema-gap/internal/model"
	"github.com/sells-group/schema-gap/internal/schema"
)

const (
	markPresent = "✅"
	markMissing = "❌"
)

// NoDataMessage is printed when no source exposed any JSON-LD.
const NoDataMessage = "No structured data (JSON-LD) detected for these URLs. " +
	"Check that the pages are reachable and publish application/ld+json blocks."

func mark(b bool) string {
	if b {
		return markPresent
	}
	return markMissing
}

// Text writes a human-readable report: one presence table per type followed
// by the opportunity list and any source warnings.
func Text(w io.Writer, r *model.Report) error {
	var b strings.Builder

	fmt.Fprintf(&b, "Run:     %s\n", r.RunID)
	fmt.Fprintf(&b, "Target:  %s\n", r.Target.Input)
	for _, c := range r.Competitors {
		fmt.Fprintf(&b, "Rival:   %s (%s)\n", c.Name, c.Input)
	}
	b.WriteString("\n")

	cmp := r.Comparison
	if cmp.Empty() {
		b.WriteString(NoDataMessage + "\n")
	} else {
		if err := writeTables(&b, r); err != nil {
			return err
		}
		writeOpportunities(&b, cmp.Opportunities)
	}

	if len(r.Warnings) > 0 {
		b.WriteString("\nWarnings:\n")
		for _, wn := range r.Warnings {
			fmt.Fprintf(&b, "  - %s [%s]: %s\n", wn.Source, wn.Stage, wn.Message)
		}
	}

	_, err := io.WriteString(w, b.String())
	return eris.Wrap(err, "report: write text")
}

func writeTables(b *strings.Builder, r *model.Report) error {
	cmp := r.Comparison
	b.WriteString("Compared data by type\n")

	rowsByType := make(map[string][]schema.Row)
	for _, row := range cmp.Rows {
		rowsByType[row.Type] = append(rowsByType[row.Type], row)
	}

	header := append([]string{"Property", targetLabel(r)}, cmp.Names...)
	for _, typ := range cmp.Types() {
		fmt.Fprintf(b, "\n== %s ==\n", typ)
		tw := tabwriter.NewWriter(b, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, strings.Join(header, "\t"))
		for _, row := range rowsByType[typ] {
			cells := []string{row.Property, mark(row.Reference)}
			for _, has := range row.Competitors {
				cells = append(cells, mark(has))
			}
			fmt.Fprintln(tw, strings.Join(cells, "\t"))
		}
		if err := tw.Flush(); err != nil {
			return eris.Wrap(err, "report: flush table")
		}
	}
	return nil
}

func writeOpportunities(b *strings.Builder, opps []schema.Pair) {
	b.WriteString("\n")
	if len(opps) == 0 {
		b.WriteString("No opportunities: the target already exposes every property its competitors use.\n")
		return
	}
	fmt.Fprintf(b, "Opportunities (%d)\n", len(opps))
	for _, p := range opps {
		fmt.Fprintf(b, "  - %s.%s\n", p.Type, p.Property)
	}
}

func targetLabel(r *model.Report) string {
	if r.Target.Name != "" {
		return r.Target.Name
	}
	return "Target"
}
