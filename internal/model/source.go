package model

// SourceRole tells whether a source is the reference page or a competitor.
type SourceRole string

const (
	RoleTarget     SourceRole = "target"
	RoleCompetitor SourceRole = "competitor"
)

// InputKind describes how a source's markup was supplied.
type InputKind string

const (
	InputURL    InputKind = "url"    // fetched over the network
	InputHTML   InputKind = "html"   // literal markup
	InputJSONLD InputKind = "jsonld" // literal JSON-LD, no extraction
)

// Source is one page to analyze. Exactly one of URL, HTML or JSON is set.
type Source struct {
	URL  string `json:"url,omitempty" yaml:"url,omitempty"`
	HTML string `json:"html,omitempty" yaml:"html,omitempty"`
	JSON string `json:"json,omitempty" yaml:"json,omitempty"`
}

// Kind returns how the source was supplied. Literal markup wins over a URL.
func (s Source) Kind() InputKind {
	switch {
	case s.JSON != "":
		return InputJSONLD
	case s.HTML != "":
		return InputHTML
	default:
		return InputURL
	}
}

// IsZero reports whether nothing was supplied.
func (s Source) IsZero() bool {
	return s.URL == "" && s.HTML == "" && s.JSON == ""
}

// Label is a short identifier for logs and warnings.
func (s Source) Label() string {
	if s.URL != "" {
		return s.URL
	}
	return "inline " + string(s.Kind())
}

// SourceSummary records what was observed for one source during a run.
type SourceSummary struct {
	Name      string     `json:"name" yaml:"name"`
	Role      SourceRole `json:"role" yaml:"role"`
	Input     string     `json:"input" yaml:"input"`
	Kind      InputKind  `json:"kind" yaml:"kind"`
	Fetcher   string     `json:"fetcher,omitempty" yaml:"fetcher,omitempty"`
	FromCache bool       `json:"from_cache" yaml:"from_cache"`
	Documents int        `json:"documents" yaml:"documents"`
	Pairs     int        `json:"pairs" yaml:"pairs"`
}

// WarningStage is where a per-source failure happened.
type WarningStage string

const (
	StageFetch   WarningStage = "fetch"
	StageExtract WarningStage = "extract"
)

// SourceWarning is a non-fatal, per-source failure. The source contributes an
// empty pair set and the comparison continues.
type SourceWarning struct {
	Source  string       `json:"source" yaml:"source"`
	Stage   WarningStage `json:"stage" yaml:"stage"`
	Message string       `json:"message" yaml:"message"`
}
