package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"sort"
	"strconv"
	"time"

	"github.com/julienschmidt/httprouter"
	"go.uber.org/zap"

	"github.com/ddd/discovery-tracker/changelog"
	"github.com/ddd/discovery-tracker/diff"
	"github.com/ddd/discovery-tracker/storage"
)

const (
	defaultMaxResults = 50
	maxResultsCeiling = 50
)

type listResponse struct {
	Data       []changeSummary `json:"data"`
	HasMore    bool            `json:"has_more"`
	Offset     int             `json:"offset"`
	MaxResults int             `json:"max_results"`
}

type changeSummary struct {
	Revision  string                  `json:"revision"`
	Timestamp int64                   `json:"timestamp"`
	Service   string                  `json:"service"`
	Summary   changelog.ChangeSummary `json:"summary"`
}

type changeDetails struct {
	Additions     []diff.Change `json:"additions"`
	Modifications []diff.Change `json:"modifications"`
	Deletions     []diff.Change `json:"deletions"`
}

type diffResponse struct {
	Service   string      `json:"service"`
	Timestamp int64       `json:"timestamp"`
	Changes   []diffEntry `json:"changes"`
}

// diffEntry is one flattened change in the unified diff view: "+" for an
// addition, "-" for a deletion, "M" for a modification.
type diffEntry struct {
	ChangeType string `json:"change_type"`
	Path       string `json:"path"`
	OldValue   any    `json:"old_value,omitempty"`
	NewValue   any    `json:"new_value,omitempty"`
}

const indexHTML = `<!DOCTYPE html>
<h1>Discovery Document Tracker API</h1>
<h3><code>GET /api/status</code></h3>
<p>Uptime and the list of tracked services.</p>
<h3><code>GET /api/changes</code></h3>
<p>Change summaries across all services, newest first. Pagination via <code>offset</code> and <code>max_results</code>.</p>
<h3><code>GET /api/changes/:service</code></h3>
<p>Change summaries for one service.</p>
<h3><code>GET /api/changes/:service/:timestamp</code></h3>
<p>Full change detail for one detection event. The timestamp is unix seconds.</p>
<h3><code>GET /api/changes/:service/:timestamp/diff</code></h3>
<p>The same event flattened into +/-/M entries.</p>
`

func (s *Server) handleIndex(w http.ResponseWriter, _ *http.Request, _ httprouter.Params) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write([]byte(indexHTML))
}

func (s *Server) handleStatus(w http.ResponseWriter, _ *http.Request, _ httprouter.Params) {
	documents, err := s.snapshots.GetAll()
	if err != nil {
		s.writeError(w, err)
		return
	}
	services := make([]string, 0, len(documents))
	for service := range documents {
		services = append(services, service)
	}
	sort.Strings(services)

	s.writeJSON(w, http.StatusOK, map[string]any{
		"uptime":   int64(time.Since(s.start).Seconds()),
		"services": services,
	})
}

func (s *Server) handleAllChanges(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	offset, maxResults := paginationParams(r)
	// Over-fetch one record to learn whether another page exists.
	changes, err := s.changes.ListAll(offset, maxResults+1)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeListing(w, changes, offset, maxResults)
}

func (s *Server) handleServiceChanges(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	offset, maxResults := paginationParams(r)
	changes, err := s.changes.ListForService(ps.ByName("service"), offset, maxResults+1)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeListing(w, changes, offset, maxResults)
}

func (s *Server) handleSpecificChange(w http.ResponseWriter, _ *http.Request, ps httprouter.Params) {
	change, ok := s.lookupChange(w, ps)
	if !ok {
		return
	}
	s.writeJSON(w, http.StatusOK, changeDetails{
		Additions:     change.Additions,
		Modifications: change.Modifications,
		Deletions:     change.Deletions,
	})
}

func (s *Server) handleDiffFormat(w http.ResponseWriter, _ *http.Request, ps httprouter.Params) {
	change, ok := s.lookupChange(w, ps)
	if !ok {
		return
	}

	entries := []diffEntry{}
	for _, c := range change.Additions {
		entries = append(entries, diffEntry{ChangeType: "+", Path: c.Path, NewValue: c.Value})
	}
	for _, c := range change.Deletions {
		entries = append(entries, diffEntry{ChangeType: "-", Path: c.Path, OldValue: c.OldValue})
	}
	for _, c := range change.Modifications {
		entries = append(entries, diffEntry{ChangeType: "M", Path: c.Path, OldValue: c.OldValue, NewValue: c.NewValue})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		oi, oj := typeOrder(entries[i].ChangeType), typeOrder(entries[j].ChangeType)
		if oi != oj {
			return oi < oj
		}
		return entries[i].Path < entries[j].Path
	})

	s.writeJSON(w, http.StatusOK, diffResponse{
		Service:   change.Service,
		Timestamp: change.Timestamp,
		Changes:   entries,
	})
}

func typeOrder(t string) int {
	switch t {
	case "+":
		return 0
	case "-":
		return 1
	case "M":
		return 2
	default:
		return 3
	}
}

func (s *Server) lookupChange(w http.ResponseWriter, ps httprouter.Params) (*changelog.LoggedChange, bool) {
	timestamp, err := strconv.ParseInt(ps.ByName("timestamp"), 10, 64)
	if err != nil {
		http.Error(w, "timestamp must be unix seconds", http.StatusBadRequest)
		return nil, false
	}
	change, err := s.changes.Get(ps.ByName("service"), timestamp)
	if err != nil {
		s.writeError(w, err)
		return nil, false
	}
	return change, true
}

func (s *Server) writeListing(w http.ResponseWriter, changes []*changelog.LoggedChange, offset, maxResults int) {
	hasMore := len(changes) > maxResults
	if hasMore {
		changes = changes[:maxResults]
	}
	summaries := make([]changeSummary, 0, len(changes))
	for _, change := range changes {
		summaries = append(summaries, changeSummary{
			Revision:  change.Revision,
			Timestamp: change.Timestamp,
			Service:   change.Service,
			Summary:   change.Summary,
		})
	}
	s.writeJSON(w, http.StatusOK, listResponse{
		Data:       summaries,
		HasMore:    hasMore,
		Offset:     offset,
		MaxResults: maxResults,
	})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		s.log.Error("failed to encode response", zap.Error(err))
	}
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, storage.ErrNotFound):
		http.Error(w, "not found", http.StatusNotFound)
	default:
		s.log.Error("storage failure serving request", zap.Error(err))
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func paginationParams(r *http.Request) (offset, maxResults int) {
	q := r.URL.Query()
	offset, _ = strconv.Atoi(q.Get("offset"))
	if offset < 0 {
		offset = 0
	}
	maxResults = defaultMaxResults
	if raw := q.Get("max_results"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v >= 0 {
			maxResults = v
		}
	}
	if maxResults > maxResultsCeiling {
		maxResults = maxResultsCeiling
	}
	return offset, maxResults
}
