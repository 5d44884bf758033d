package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/verte-zerg/testlens/internal/parser"
	"github.com/verte-zerg/testlens/internal/pipeline"
	"github.com/verte-zerg/testlens/internal/report"
	"github.com/verte-zerg/testlens/internal/store"
)

type errResp struct {
	Error string `json:"error"`
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}

func respondErr(w http.ResponseWriter, status int, msg string) {
	respondJSON(w, status, errResp{Error: msg})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// readRecord decodes a request body holding exactly one record.
func readRecord(w http.ResponseWriter, r *http.Request) (map[string]any, bool) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respondErr(w, http.StatusRequestEntityTooLarge, "request body too large")
			return nil, false
		}
		respondErr(w, http.StatusBadRequest, "could not read request body")
		return nil, false
	}
	items, err := parser.Decode(body)
	if err != nil {
		respondErr(w, http.StatusBadRequest, err.Error())
		return nil, false
	}
	if len(items) != 1 {
		respondErr(w, http.StatusBadRequest, fmt.Sprintf("expected a single record, got %d", len(items)))
		return nil, false
	}
	if items[0].Err != nil {
		respondErr(w, http.StatusBadRequest, items[0].Err.Error())
		return nil, false
	}
	return items[0].Raw, true
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	raw, ok := readRecord(w, r)
	if !ok {
		return
	}
	doc, err := s.pipeline.Summarize(raw)
	if err != nil {
		respondErr(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	s.writeDocument(w, http.StatusOK, doc, report.FormatJSON, nil)
}

func (s *Server) handleCreateReport(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	format, err := report.ParseFormat(q.Get("format"))
	if err != nil {
		respondErr(w, http.StatusBadRequest, err.Error())
		return
	}
	if q.Get("format") == "" {
		format = report.FormatJSON
	}
	withNarrative := true
	if v := q.Get("narrative"); v != "" {
		withNarrative, err = strconv.ParseBool(v)
		if err != nil {
			respondErr(w, http.StatusBadRequest, "narrative must be true or false")
			return
		}
	}

	raw, ok := readRecord(w, r)
	if !ok {
		return
	}
	out, err := s.pipeline.Process(r.Context(), raw, pipeline.Options{
		Narrative: withNarrative,
		Save:      s.reports != nil,
	})
	if err != nil {
		if errors.Is(err, parser.ErrNoQuestionList) {
			respondErr(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		s.logger.Error("process record", "error", err)
		respondErr(w, http.StatusInternalServerError, "could not process record")
		return
	}

	status := http.StatusOK
	var headers http.Header
	if out.ReportID != "" {
		headers = http.Header{"Location": {"/api/reports/" + out.ReportID}}
		status = http.StatusCreated
	}
	s.writeDocument(w, status, out.Document, format, headers)
}

func (s *Server) handleListReports(w http.ResponseWriter, r *http.Request) {
	if s.reports == nil {
		respondErr(w, http.StatusServiceUnavailable, "report history is disabled")
		return
	}
	q := r.URL.Query()
	filter := store.ListFilter{Student: strings.TrimSpace(q.Get("student"))}
	if v := q.Get("since"); v != "" {
		since, err := time.Parse(time.RFC3339, v)
		if err != nil {
			respondErr(w, http.StatusBadRequest, "since must be an RFC 3339 timestamp")
			return
		}
		filter.Since = &since
	}
	if v := q.Get("limit"); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil || limit < 0 {
			respondErr(w, http.StatusBadRequest, "limit must be a non-negative integer")
			return
		}
		filter.Limit = limit
	}

	metas, err := s.reports.ListReports(r.Context(), filter)
	if err != nil {
		s.logger.Error("list reports", "error", err)
		respondErr(w, http.StatusInternalServerError, "could not list reports")
		return
	}
	respondJSON(w, http.StatusOK, metas)
}

func (s *Server) handleGetReport(w http.ResponseWriter, r *http.Request) {
	if s.reports == nil {
		respondErr(w, http.StatusServiceUnavailable, "report history is disabled")
		return
	}
	format := report.FormatJSON
	if v := r.URL.Query().Get("format"); v != "" {
		f, err := report.ParseFormat(v)
		if err != nil {
			respondErr(w, http.StatusBadRequest, err.Error())
			return
		}
		format = f
	}

	id := chi.URLParam(r, "reportID")
	rec, err := s.reports.GetReport(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			respondErr(w, http.StatusNotFound, "report not found")
			return
		}
		s.logger.Error("get report", "id", id, "error", err)
		respondErr(w, http.StatusInternalServerError, "could not load report")
		return
	}

	doc := report.Document{
		Identity:  rec.Identity,
		Summary:   rec.Summary,
		Narrative: rec.Narrative,
	}
	if rec.NarrativeError != "" {
		doc.NarrativeErr = errors.New(rec.NarrativeError)
	}
	s.writeDocument(w, http.StatusOK, doc, format, nil)
}

// writeDocument renders doc before touching the response, so headers are
// only sent together with a body that rendered.
func (s *Server) writeDocument(w http.ResponseWriter, status int, doc report.Document, format report.Format, headers http.Header) {
	var buf bytes.Buffer
	// Text output keeps a fixed width and no colour over HTTP.
	if err := report.Render(&buf, doc, report.Options{Format: format, Width: 100}); err != nil {
		s.logger.Error("render report", "error", err)
		respondErr(w, http.StatusInternalServerError, "could not render report")
		return
	}
	for k, v := range headers {
		w.Header()[k] = v
	}
	w.Header().Set("Content-Type", contentType(format))
	w.WriteHeader(status)
	_, _ = w.Write(buf.Bytes())
}

func contentType(f report.Format) string {
	switch f {
	case report.FormatJSON:
		return "application/json"
	case report.FormatMarkdown:
		return "text/markdown; charset=utf-8"
	default:
		return "text/plain; charset=utf-8"
	}
}
