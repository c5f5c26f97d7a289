package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/schema-gap/internal/analyze"
	"github.com/sells-group/schema-gap/internal/model"
	"github.com/sells-group/schema-gap/internal/report"
	"github.com/sells-group/schema-gap/internal/schema"
	"github.com/sells-group/schema-gap/internal/store"
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().Debug("api: encode response", zap.Error(err))
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// POST /v1/compare
func (s *Server) handleCompare(w http.ResponseWriter, r *http.Request) {
	var req analyze.Request
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Target.IsZero() {
		writeError(w, http.StatusBadRequest, "target is required")
		return
	}

	rep, err := s.runner.Run(r.Context(), req)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, rep)
	case eris.Is(err, analyze.ErrNoTarget):
		writeError(w, http.StatusBadRequest, "target is required")
	case r.Context().Err() != nil:
		writeError(w, http.StatusServiceUnavailable, "request cancelled")
	default:
		zap.L().Error("api: compare failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "comparison failed")
	}
}

// diffRequest compares schemas supplied directly, with no fetching. Each
// schema may be a list of [type, property] pairs or a mapping of type to
// property names.
type diffRequest struct {
	Reference   any      `json:"reference"`
	Competitors []any    `json:"competitors"`
	Names       []string `json:"names,omitempty"`
}

type diffResponse struct {
	Comparison *schema.Comparison `json:"comparison"`
	Templates  []schema.Template  `json:"templates"`
	// Invalid lists inputs whose shape was not recognized. They count as
	// empty schemas.
	Invalid []string `json:"invalid,omitempty"`
}

// POST /v1/diff
func (s *Server) handleDiff(w http.ResponseWriter, r *http.Request) {
	var req diffRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	var invalid []string
	normalize := func(label string, v any) schema.PairSet {
		raw := schema.ParseRawSchema(v)
		if raw.Kind == schema.KindInvalid && v != nil {
			invalid = append(invalid, label)
		}
		return schema.Normalize(raw)
	}

	ref := normalize("reference", req.Reference)
	names := schema.CompetitorNames(req.Names, len(req.Competitors))
	comps := make([]schema.PairSet, len(req.Competitors))
	for i, c := range req.Competitors {
		comps[i] = normalize(names[i], c)
	}

	cmp, err := schema.Compare(ref, comps, names)
	if err != nil {
		zap.L().Error("api: diff failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "diff failed")
		return
	}
	writeJSON(w, http.StatusOK, diffResponse{
		Comparison: cmp,
		Templates:  schema.GenerateTemplates(cmp.Opportunities),
		Invalid:    invalid,
	})
}

func (s *Server) requireStore(w http.ResponseWriter) bool {
	if s.store == nil {
		writeError(w, http.StatusServiceUnavailable, "run history is disabled")
		return false
	}
	return true
}

// GET /v1/runs
func (s *Server) handleListRuns(w http.ResponseWriter, r *http.Request) {
	if !s.requireStore(w) {
		return
	}
	q := r.URL.Query()
	filter := store.RunFilter{
		Status: model.RunStatus(q.Get("status")),
		Target: q.Get("target"),
	}
	for name, dst := range map[string]*int{"limit": &filter.Limit, "offset": &filter.Offset} {
		v := q.Get(name)
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid %s", name))
			return
		}
		*dst = n
	}

	runs, err := s.store.ListRuns(r.Context(), filter)
	if err != nil {
		zap.L().Error("api: list runs", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to list runs")
		return
	}
	if runs == nil {
		runs = []model.RunSummary{}
	}
	writeJSON(w, http.StatusOK, runs)
}

func (s *Server) loadRun(w http.ResponseWriter, r *http.Request) (*model.Report, bool) {
	if !s.requireStore(w) {
		return nil, false
	}
	id := chi.URLParam(r, "id")
	rep, err := s.store.GetRun(r.Context(), id)
	if err != nil {
		if eris.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "run not found")
			return nil, false
		}
		zap.L().Error("api: get run", zap.String("run_id", id), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to load run")
		return nil, false
	}
	return rep, true
}

// GET /v1/runs/{id}
func (s *Server) handleGetRun(w http.ResponseWriter, r *http.Request) {
	if rep, ok := s.loadRun(w, r); ok {
		writeJSON(w, http.StatusOK, rep)
	}
}

// GET /v1/runs/{id}/templates
func (s *Server) handleRunTemplates(w http.ResponseWriter, r *http.Request) {
	rep, ok := s.loadRun(w, r)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="schema-templates-%s.json"`, rep.RunID))
	if err := report.Templates(w, rep.Templates); err != nil {
		zap.L().Debug("api: write templates", zap.Error(err))
	}
}
