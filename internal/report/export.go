package report

import (
	"encoding/csv"
	"encoding/json"
	"io"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/schema-gap/internal/model"
	"github.com/sells-group/schema-gap/internal/schema"
)

// Sheet names used by XLSX.
const (
	SheetComparison    = "Comparison"
	SheetOpportunities = "Opportunities"
)

// JSON writes the full report as indented JSON.
func JSON(w io.Writer, r *model.Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return eris.Wrap(enc.Encode(r), "report: encode json")
}

// YAML writes the full report as YAML.
func YAML(w io.Writer, r *model.Report) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(r); err != nil {
		return eris.Wrap(err, "report: encode yaml")
	}
	return eris.Wrap(enc.Close(), "report: close yaml encoder")
}

// comparisonHeader is Type, Property, the target label, then one column per
// competitor.
func comparisonHeader(r *model.Report) []string {
	return append([]string{"Type", "Property", targetLabel(r)}, r.Comparison.Names...)
}

func comparisonRecord(row schema.Row) []string {
	rec := []string{row.Type, row.Property, boolCell(row.Reference)}
	for _, has := range row.Competitors {
		rec = append(rec, boolCell(has))
	}
	return rec
}

func boolCell(b bool) string {
	if b {
		return "true"
	}
	return "false"
}

// CSV writes the presence matrix, one line per (type, property) key.
func CSV(w io.Writer, r *model.Report) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(comparisonHeader(r)); err != nil {
		return eris.Wrap(err, "report: write csv header")
	}
	for _, row := range r.Comparison.Rows {
		if err := cw.Write(comparisonRecord(row)); err != nil {
			return eris.Wrap(err, "report: write csv row")
		}
	}

	cw.Flush()
	return eris.Wrap(cw.Error(), "report: flush csv")
}

// XLSX writes a workbook with the presence matrix and the opportunity list.
func XLSX(w io.Writer, r *model.Report) error {
	f := xlsx.NewFile()

	cmpSheet, err := f.AddSheet(SheetComparison)
	if err != nil {
		return eris.Wrap(err, "report: add comparison sheet")
	}
	addRow(cmpSheet, comparisonHeader(r))
	for _, row := range r.Comparison.Rows {
		xr := cmpSheet.AddRow()
		xr.AddCell().SetString(row.Type)
		xr.AddCell().SetString(row.Property)
		xr.AddCell().SetBool(row.Reference)
		for _, has := range row.Competitors {
			xr.AddCell().SetBool(has)
		}
	}

	oppSheet, err := f.AddSheet(SheetOpportunities)
	if err != nil {
		return eris.Wrap(err, "report: add opportunities sheet")
	}
	addRow(oppSheet, []string{"Type", "Property", "Seen on"})
	seenOn := opportunitySources(r)
	for _, p := range r.Comparison.Opportunities {
		addRow(oppSheet, []string{p.Type, p.Property, seenOn[p]})
	}

	return eris.Wrap(f.Write(w), "report: write xlsx")
}

func addRow(sheet *xlsx.Sheet, cells []string) {
	row := sheet.AddRow()
	for _, c := range cells {
		row.AddCell().SetString(c)
	}
}

// opportunitySources maps each opportunity to the comma-separated names of
// the competitors exposing it.
func opportunitySources(r *model.Report) map[schema.Pair]string {
	out := make(map[schema.Pair]string, len(r.Comparison.Opportunities))
	for _, row := range r.Comparison.Rows {
		if !row.IsOpportunity() {
			continue
		}
		var names string
		for i, has := range row.Competitors {
			if !has || i >= len(r.Comparison.Names) {
				continue
			}
			if names != "" {
				names += ", "
			}
			names += r.Comparison.Names[i]
		}
		out[row.Pair] = names
	}
	return out
}

// Templates writes the suggested JSON-LD objects as an indented JSON array.
// An empty list is written as [].
func Templates(w io.Writer, templates []schema.Template) error {
	if templates == nil {
		templates = []schema.Template{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return eris.Wrap(enc.Encode(templates), "report: encode templates")
}
