package main

import (
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/schema-gap/internal/analyze"
	"github.com/sells-group/schema-gap/internal/model"
	"github.com/sells-group/schema-gap/internal/report"
)

// compareOpts mirrors the compare flags.
type compareOpts struct {
	Target         string
	TargetHTML     string
	Competitors    []string
	CompetitorHTML []string
	Names          []string
	Format         string
	Out            string
	TemplatesOut   string
	NoCache        bool
}

var compareFlags compareOpts

var compareCmd = &cobra.Command{
	Use:   "compare",
	Short: "Compare a page's JSON-LD against competitor pages",
	Long: "Fetches the target and each competitor, extracts their JSON-LD, and prints which (type, property) pairs competitors declare that the target lacks. " +
		"Sources may be URLs, local files or literal markup.",
	Example: `  schema-gap compare --target https://ours.example/product --competitor https://rival.example/product --name Rival
  schema-gap compare --target-html ours.html --competitor-html rival.html --format xlsx --out gap.xlsx`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		if err := cfg.Validate("compare"); err != nil {
			return err
		}

		format, err := report.ParseFormat(compareFlags.Format)
		if err != nil {
			return err
		}
		if format.Binary() && compareFlags.Out == "" {
			return eris.Errorf("format %s requires --out", format)
		}

		req, err := buildRequest(compareFlags)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		env, err := initAnalyzer(ctx, true)
		if err != nil {
			return err
		}
		defer env.Close()

		rep, err := env.Analyzer.Run(ctx, req)
		if err != nil {
			return eris.Wrap(err, "compare")
		}

		if err := writeReport(rep, format, compareFlags.Out, os.Stdout); err != nil {
			return err
		}
		if compareFlags.TemplatesOut != "" {
			if err := writeTemplates(rep, compareFlags.TemplatesOut); err != nil {
				return err
			}
			zap.L().Info("templates written",
				zap.String("path", compareFlags.TemplatesOut),
				zap.Int("count", len(rep.Templates)),
			)
		}
		return nil
	},
}

// buildRequest turns the flags into an analyze.Request. Competitor URLs come
// first, then competitor files, and names apply in that order.
func buildRequest(o compareOpts) (analyze.Request, error) {
	req := analyze.Request{Names: o.Names, NoCache: o.NoCache}

	switch {
	case o.TargetHTML != "" && o.Target != "":
		return req, eris.New("use either --target or --target-html, not both")
	case o.TargetHTML != "":
		html, err := readHTMLFile(o.TargetHTML)
		if err != nil {
			return req, err
		}
		req.Target = model.Source{HTML: html}
	case o.Target != "":
		req.Target = model.Source{URL: o.Target}
	default:
		return req, eris.New("--target or --target-html is required")
	}

	for _, u := range o.Competitors {
		req.Competitors = append(req.Competitors, model.Source{URL: u})
	}
	for _, path := range o.CompetitorHTML {
		html, err := readHTMLFile(path)
		if err != nil {
			return req, err
		}
		req.Competitors = append(req.Competitors, model.Source{HTML: html})
	}
	if len(req.Competitors) == 0 {
		return req, eris.New("at least one --competitor or --competitor-html is required")
	}
	return req, nil
}

func readHTMLFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", eris.Wrapf(err, "read %s", path)
	}
	return string(data), nil
}

// writeReport renders rep to the file at out, or to stdout when out is empty.
func writeReport(rep *model.Report, f report.Format, out string, stdout io.Writer) error {
	if out == "" {
		return report.Render(stdout, f, rep)
	}
	return writeFile(out, func(w io.Writer) error {
		return report.Render(w, f, rep)
	})
}

func writeTemplates(rep *model.Report, path string) error {
	return writeFile(path, func(w io.Writer) error {
		return report.Templates(w, rep.Templates)
	})
}

func writeFile(path string, write func(io.Writer) error) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return eris.Wrapf(err, "create %s", path)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = eris.Wrapf(cerr, "close %s", path)
		}
	}()
	if err := write(f); err != nil {
		return eris.Wrapf(err, "write %s", path)
	}
	return nil
}

func init() {
	f := compareCmd.Flags()
	f.StringVar(&compareFlags.Target, "target", "", "target page URL or local file")
	f.StringVar(&compareFlags.TargetHTML, "target-html", "", "read the target page from an HTML file")
	f.StringArrayVar(&compareFlags.Competitors, "competitor", nil, "competitor page URL or local file (repeatable)")
	f.StringArrayVar(&compareFlags.CompetitorHTML, "competitor-html", nil, "competitor HTML file (repeatable)")
	f.StringArrayVar(&compareFlags.Names, "name", nil, "competitor display name, in competitor order (repeatable)")
	f.StringVar(&compareFlags.Format, "format", "table", "output format: table, json, yaml, csv, xlsx")
	f.StringVar(&compareFlags.Out, "out", "", "write the report to this file instead of stdout")
	f.StringVar(&compareFlags.TemplatesOut, "templates", "", "write JSON-LD templates for the opportunities to this file")
	f.BoolVar(&compareFlags.NoCache, "no-cache", false, "always refetch pages")
	rootCmd.AddCommand(compareCmd)
}
