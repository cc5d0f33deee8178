package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"hyperserp/internal/fetch"
	"hyperserp/internal/models"
	"hyperserp/internal/urlutil"
	"hyperserp/internal/version"
)

const (
	defaultTopK         = 10
	maxTopK             = 50
	defaultSummarizeTop = 3
	defaultScrapeMax    = 10
)

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

type apiError struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    int    `json:"code"`
}

func writeError(w http.ResponseWriter, status int, errStr, message string) {
	writeJSON(w, status, apiError{Error: errStr, Message: message, Code: status})
}

func (a *API) handleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		writeError(w, http.StatusNotFound, "not_found", "")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"service":      "hyperserp",
		"version":      version.Version,
		"indexed_docs": a.bld.IndexedDocs(),
		"endpoints":    []string{"/search", "/ingest", "/scrape_and_ingest", "/healthz"},
	})
}

type ingestRequest struct {
	URL     string `json:"url"`
	Snippet string `json:"snippet"`
	Title   string `json:"title"`
}

func (a *API) handleIngest(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "")
		return
	}
	var req ingestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	req.URL = urlutil.Canonicalize(req.URL)
	if req.URL == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "url required")
		return
	}
	page, err := a.ftr.FetchAndExtract(r.Context(), req.URL)
	if err != nil {
		if errors.Is(err, fetch.ErrExtract) {
			writeError(w, http.StatusInternalServerError, "extract_failed", err.Error())
			return
		}
		writeError(w, http.StatusBadGateway, "fetch_failed", err.Error())
		return
	}
	title := req.Title
	if title == "" {
		title = page.Title
	}
	if title == "" {
		title = req.URL
	}
	snippet := req.Snippet
	if snippet == "" {
		snippet = fetch.SnippetFromText(page.Text, 300)
	}
	ids, err := a.bld.Ingest([]models.Document{{
		URL:     req.URL,
		Title:   title,
		Snippet: snippet,
		Text:    page.Text,
	}})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "ingest_failed", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ingested_ids": ids})
}

type scrapeRequest struct {
	Query      string `json:"query"`
	FetchPages *bool  `json:"fetch_pages"`
	MaxResults int    `json:"max_results"`
}

func (a *API) handleScrapeAndIngest(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "")
		return
	}
	var req scrapeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	req.Query = strings.TrimSpace(req.Query)
	if req.Query == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "query required")
		return
	}
	fetchPages := true
	if req.FetchPages != nil {
		fetchPages = *req.FetchPages
	}
	maxResults := req.MaxResults
	if maxResults <= 0 || maxResults > maxTopK {
		maxResults = defaultScrapeMax
	}
	ids, err := a.pipe.ScrapeAndIngest(r.Context(), req.Query, fetchPages, maxResults)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "ingest_failed", err.Error())
		return
	}
	if len(ids) == 0 {
		writeJSON(w, http.StatusOK, map[string]any{"ingested": 0, "error": "no docs"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ingested": len(ids), "ids": ids})
}

func (a *API) handleSearch(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "")
		return
	}
	q := strings.TrimSpace(r.URL.Query().Get("q"))
	if q == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "q required")
		return
	}
	topK := intParam(r, "top_k", defaultTopK)
	if topK > maxTopK {
		topK = maxTopK
	}
	summarizeTop := intParam(r, "summarize_top", defaultSummarizeTop)
	resp := a.pipe.Run(r.Context(), q, topK, summarizeTop)
	if resp.Results == nil {
		resp.Results = []models.SearchHit{}
	}
	writeJSON(w, http.StatusOK, resp)
}

func intParam(r *http.Request, name string, def int) int {
	v := r.URL.Query().Get(name)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return def
	}
	return n
}
