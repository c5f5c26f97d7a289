package store

import (
	"time"

	"github.com/sells-group/schema-gap/internal/model"
	"github.com/sells-group/schema-gap/internal/schema"
)

func sampleReport(target string, warnings int) *model.Report {
	cmp, err := schema.Compare(
		schema.NewPairSet(schema.Pair{Type: "Product", Property: "name"}),
		[]schema.PairSet{schema.NewPairSet(
			schema.Pair{Type: "Product", Property: "name"},
			schema.Pair{Type: "Product", Property: "sku"},
		)},
		[]string{"Rival"},
	)
	if err != nil {
		panic(err)
	}
	r := &model.Report{
		Target: model.SourceSummary{Name: "target", Role: model.RoleTarget, Input: target, Kind: model.InputURL},
		Competitors: []model.SourceSummary{
			{Name: "Rival", Role: model.RoleCompetitor, Input: "https://rival.example", Kind: model.InputURL},
		},
		Comparison: *cmp,
		Templates:  schema.GenerateTemplates(cmp.Opportunities),
	}
	for i := 0; i < warnings; i++ {
		r.Warnings = append(r.Warnings, model.SourceWarning{Source: "x", Stage: model.StageFetch, Message: "timeout"})
	}
	return r
}

func samplePage(url string) model.FetchedPage {
	return model.FetchedPage{
		URL:        url,
		FinalURL:   url,
		HTML:       `<script type="application/ld+json">{"@type":"Thing"}</script>`,
		StatusCode: 200,
		FetchedAt:  time.Now().UTC().Truncate(time.Second),
	}
}
