// Package jsonld pulls JSON-LD blocks out of HTML markup.
package jsonld

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/rotisserie/eris"

	"github.com/sells-group/schema-gap/internal/schema"
)

// MediaType is the script type that carries JSON-LD.
const MediaType = "application/ld+json"

// Extract returns every JSON-LD document embedded in html. A block that
// fails to parse is skipped and reported in errs; the remaining blocks are
// still returned. A top-level JSON array contributes one document per
// element.
func Extract(html []byte) (docs []schema.Document, errs []error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(html))
	if err != nil {
		return nil, []error{eris.Wrap(err, "jsonld: parse html")}
	}

	doc.Find("script").Each(func(i int, s *goquery.Selection) {
		typ, _ := s.Attr("type")
		if !IsJSONLDType(typ) {
			return
		}
		payload := cleanPayload(s.Text())
		if payload == "" {
			return
		}
		parsed, err := ParseJSON([]byte(payload))
		docs = append(docs, parsed...)
		if err != nil {
			errs = append(errs, eris.Wrapf(err, "jsonld: script block %d", i))
		}
	})

	return docs, errs
}

// ParseJSON decodes raw JSON-LD. Concatenated values are all decoded; arrays
// are split into their elements. Values decoded before a syntax error are
// returned along with the error.
func ParseJSON(data []byte) ([]schema.Document, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var docs []schema.Document
	for {
		var v any
		err := dec.Decode(&v)
		if errors.Is(err, io.EOF) {
			return docs, nil
		}
		if err != nil {
			return docs, eris.Wrap(err, "jsonld: decode")
		}
		if arr, ok := v.([]any); ok {
			docs = append(docs, arr...)
			continue
		}
		docs = append(docs, v)
	}
}

// IsJSONLDType reports whether a script type attribute denotes JSON-LD.
// Matching is case-insensitive and ignores media type parameters.
func IsJSONLDType(attr string) bool {
	mt, _, _ := strings.Cut(attr, ";")
	return strings.EqualFold(strings.TrimSpace(mt), MediaType)
}

// cleanPayload strips whitespace and the comment or CDATA wrappers some
// CMSes put around inline scripts.
func cleanPayload(s string) string {
	s = strings.TrimSpace(s)
	for _, w := range [][2]string{
		{"<!--", "-->"},
		{"//<![CDATA[", "//]]>"},
		{"/*<![CDATA[*/", "/*]]>*/"},
		{"<![CDATA[", "]]>"},
	} {
		if strings.HasPrefix(s, w[0]) && strings.HasSuffix(s, w[1]) {
			s = strings.TrimSpace(s[len(w[0]) : len(s)-len(w[1])])
		}
	}
	return s
}
