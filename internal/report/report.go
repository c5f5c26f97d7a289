// Package report renders comparison reports for terminals and exports.
package report

import (
	"io"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/schema-gap/internal/model"
)

// Format names an output format.
type Format string

const (
	FormatTable Format = "table"
	FormatJSON  Format = "json"
	FormatYAML  Format = "yaml"
	FormatCSV   Format = "csv"
	FormatXLSX  Format = "xlsx"
)

// Formats lists the supported formats in help order.
var Formats = []Format{FormatTable, FormatJSON, FormatYAML, FormatCSV, FormatXLSX}

// ParseFormat maps a user-supplied name to a Format.
func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(s)))
	if f == "" || f == "text" {
		return FormatTable, nil
	}
	for _, known := range Formats {
		if f == known {
			return f, nil
		}
	}
	return "", eris.Errorf("report: unknown format %q", s)
}

// Binary reports whether the format is not printable to a terminal.
func (f Format) Binary() bool { return f == FormatXLSX }

// Render writes r to w in the given format.
func Render(w io.Writer, f Format, r *model.Report) error {
	switch f {
	case FormatTable:
		return Text(w, r)
	case FormatJSON:
		return JSON(w, r)
	case FormatYAML:
		return YAML(w, r)
	case FormatCSV:
		return CSV(w, r)
	case FormatXLSX:
		return XLSX(w, r)
	default:
		return eris.Errorf("report: unknown format %q", f)
	}
}
