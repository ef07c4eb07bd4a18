package server

import (
	"encoding/json"
	"errors"
	"mime"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jonathan/presence-audit/internal/export"
	"github.com/jonathan/presence-audit/internal/preferences"
	"github.com/jonathan/presence-audit/internal/progress"
	"github.com/jonathan/presence-audit/internal/types"
)

// ReportResponse is the JSON view of a stored report
type ReportResponse struct {
	ID        string             `json:"id"`
	Request   types.AuditRequest `json:"request"`
	Title     string             `json:"title"`
	Currency  string             `json:"currency"`
	Fragment  string             `json:"fragment,omitempty"`
	CreatedAt string             `json:"created_at"`
	Links     ReportLinks        `json:"links"`
}

// ReportLinks point at the export endpoints of a report
type ReportLinks struct {
	HTML string `json:"html"`
	PDF  string `json:"pdf,omitempty"`
}

func (s *Server) reportResponse(r types.Report, withFragment bool) ReportResponse {
	base := "/audits/" + r.ID.String()
	resp := ReportResponse{
		ID:        r.ID.String(),
		Request:   r.Request,
		Title:     r.Title,
		Currency:  r.Currency,
		CreatedAt: r.CreatedAt.Format(time.RFC3339),
		Links:     ReportLinks{HTML: base + "/report.html"},
	}
	if withFragment {
		resp.Fragment = r.Fragment
	}
	if s.audits.PDFEnabled() {
		resp.Links.PDF = base + "/report.pdf"
	}
	return resp
}

// handleHealth returns server health status
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleIndex serves the embedded form page
func (s *Server) handleIndex(w http.ResponseWriter, _ *http.Request) {
	page, err := staticFS.ReadFile("static/index.html")
	if err != nil {
		http.Error(w, "index missing", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(page)
}

func (s *Server) handleCurrencies(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, map[string]any{
		"currencies": s.catalog.All(),
		"default":    s.catalog.First().Code,
	})
}

// PreferencesResponse never carries the full API key.
type PreferencesResponse struct {
	APIKeySet    bool        `json:"api_key_set"`
	APIKeyMasked string      `json:"api_key_masked,omitempty"`
	Theme        types.Theme `json:"theme"`
	Currency     string      `json:"currency"`
}

// PreferencesUpdate is a partial update; nil fields keep their stored value.
type PreferencesUpdate struct {
	APIKey      *string `json:"api_key,omitempty"`
	ClearAPIKey bool    `json:"clear_api_key,omitempty"`
	Theme       *string `json:"theme,omitempty"`
	Currency    *string `json:"currency,omitempty"`
}

func preferencesResponse(p types.Preferences) PreferencesResponse {
	return PreferencesResponse{
		APIKeySet:    p.APIKey != "",
		APIKeyMasked: p.MaskedAPIKey(),
		Theme:        p.Theme,
		Currency:     p.Currency,
	}
}

func (s *Server) handleGetPreferences(w http.ResponseWriter, r *http.Request) {
	prefs, err := s.prefs.Get(r.Context(), sessionFrom(r.Context()))
	if err != nil {
		s.errorResponse(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, preferencesResponse(prefs))
}

func (s *Server) handlePutPreferences(w http.ResponseWriter, r *http.Request) {
	var update PreferencesUpdate
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		s.badRequest(w, "Invalid request body: "+err.Error())
		return
	}

	session := sessionFrom(r.Context())
	prefs, err := s.prefs.Get(r.Context(), session)
	if err != nil {
		s.errorResponse(w, r, err)
		return
	}
	if update.ClearAPIKey {
		prefs.APIKey = ""
	} else if update.APIKey != nil {
		prefs.APIKey = *update.APIKey
	}
	if update.Theme != nil {
		prefs.Theme = types.Theme(*update.Theme)
	}
	if update.Currency != nil {
		prefs.Currency = *update.Currency
	}

	if err := s.prefs.Put(r.Context(), session, prefs); err != nil {
		if errors.Is(err, preferences.ErrInvalid) {
			s.badRequest(w, err.Error())
			return
		}
		s.errorResponse(w, r, err)
		return
	}

	saved, err := s.prefs.Get(r.Context(), session)
	if err != nil {
		s.errorResponse(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, preferencesResponse(saved))
}

func decodeAuditRequest(r *http.Request) (types.AuditRequest, error) {
	var req types.AuditRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	err := dec.Decode(&req)
	return req, err
}

// handleCreateAudit runs a generation synchronously and returns the report
func (s *Server) handleCreateAudit(w http.ResponseWriter, r *http.Request) {
	req, err := decodeAuditRequest(r)
	if err != nil {
		s.badRequest(w, "Invalid request body: "+err.Error())
		return
	}

	report, err := s.audits.Generate(r.Context(), sessionFrom(r.Context()), req, nil)
	if err != nil {
		s.errorResponse(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusCreated, s.reportResponse(report, true))
}

// handleCreateAuditStream runs a generation and streams loading phases as SSE
func (s *Server) handleCreateAuditStream(w http.ResponseWriter, r *http.Request) {
	req, err := decodeAuditRequest(r)
	if err != nil {
		s.badRequest(w, "Invalid request body: "+err.Error())
		return
	}

	sse, err := NewSSEWriter(w)
	if err != nil {
		s.jsonResponse(w, http.StatusInternalServerError, ErrorBody{Error: CodeInternal, Message: err.Error()})
		return
	}

	onPhase := func(snap progress.Snapshot) {
		if err := sse.WriteEvent(EventPhase, snap); err != nil {
			s.logger.Debug("failed to write phase event", zap.Error(err))
		}
	}

	report, err := s.audits.Generate(r.Context(), sessionFrom(r.Context()), req, onPhase)
	if err != nil {
		status := HTTPStatus(err)
		if status >= http.StatusInternalServerError {
			s.logger.Error("streamed generation failed", zap.Int("status", status), zap.Error(err))
		}
		body := errorBody(err)
		if werr := sse.WriteEvent(EventError, body); werr != nil {
			s.logger.Debug("failed to write error event", zap.Error(werr))
		}
		return
	}
	if err := sse.WriteEvent(EventComplete, s.reportResponse(report, true)); err != nil {
		s.logger.Debug("failed to write complete event", zap.Error(err))
	}
}

func (s *Server) handleListAudits(w http.ResponseWriter, r *http.Request) {
	limit := 20
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 || n > 100 {
			s.badRequest(w, "limit must be between 1 and 100")
			return
		}
		limit = n
	}

	list, err := s.audits.Recent(r.Context(), sessionFrom(r.Context()), limit)
	if err != nil {
		s.errorResponse(w, r, err)
		return
	}
	out := make([]ReportResponse, 0, len(list))
	for _, rep := range list {
		out = append(out, s.reportResponse(rep, false))
	}
	s.jsonResponse(w, http.StatusOK, map[string]any{"reports": out})
}

// loadReport parses the {id} URL parameter and fetches the caller's report,
// writing the error response itself when it returns false. Reports of other
// sessions are reported as not found.
func (s *Server) loadReport(w http.ResponseWriter, r *http.Request) (types.Report, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		s.badRequest(w, "Invalid report ID")
		return types.Report{}, false
	}
	report, err := s.audits.Report(r.Context(), sessionFrom(r.Context()), id)
	if err != nil {
		s.errorResponse(w, r, err)
		return types.Report{}, false
	}
	return report, true
}

func (s *Server) handleGetAudit(w http.ResponseWriter, r *http.Request) {
	report, ok := s.loadReport(w, r)
	if !ok {
		return
	}
	s.jsonResponse(w, http.StatusOK, s.reportResponse(report, true))
}

func (s *Server) handleReportHTML(w http.ResponseWriter, r *http.Request) {
	report, ok := s.loadReport(w, r)
	if !ok {
		return
	}
	dl, err := s.audits.ExportHTML(report)
	if err != nil {
		s.errorResponse(w, r, err)
		return
	}
	disposition := "attachment"
	if r.URL.Query().Get("inline") != "" {
		disposition = "inline"
	}
	writeDownload(w, dl.ContentType, dl.Filename, disposition, dl.Body)
}

func (s *Server) handleReportPDF(w http.ResponseWriter, r *http.Request) {
	report, ok := s.loadReport(w, r)
	if !ok {
		return
	}
	dl, err := s.audits.ExportPDF(r.Context(), sessionFrom(r.Context()), report)
	if err != nil {
		body := errorBody(err)
		var exportErr *export.ExportError
		if errors.As(err, &exportErr) {
			body.Fallback = "/audits/" + report.ID.String() + "/report.html"
			s.logger.Error("pdf export failed", zap.String("id", report.ID.String()), zap.Error(err))
		}
		s.jsonResponse(w, HTTPStatus(err), body)
		return
	}
	writeDownload(w, dl.ContentType, dl.Filename, "attachment", dl.Body)
}

func writeDownload(w http.ResponseWriter, contentType, filename, disposition string, body []byte) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", mime.FormatMediaType(disposition, map[string]string{"filename": filename}))
	w.Header().Set("Content-Length", strconv.Itoa(len(body)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}
