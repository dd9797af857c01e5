// Package handler implements the HTTP API of the query service: word → name
// lookups, document content fetches, claim resolution, and resolve-cache
// administration.
package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/factive/claimsearch/internal/analytics"
	"github.com/factive/claimsearch/internal/indexer/docindex"
	"github.com/factive/claimsearch/internal/indexer/nameindex"
	"github.com/factive/claimsearch/internal/resolver"
	"github.com/factive/claimsearch/pkg/errors"
	"github.com/factive/claimsearch/pkg/logger"
	"github.com/factive/claimsearch/pkg/metrics"
	"github.com/factive/claimsearch/pkg/tracing"
)

// NamesResponse is the body of GET /api/v1/names.
type NamesResponse struct {
	Word  string   `json:"word"`
	Names []string `json:"names"`
	Count int      `json:"count"`
}

// DocumentResponse is the body of GET /api/v1/document.
type DocumentResponse struct {
	Name      string         `json:"name"`
	Sentences []SentenceJSON `json:"sentences"`
}

// SentenceJSON is one numbered sentence of a document.
type SentenceJSON struct {
	No   int    `json:"no"`
	Text string `json:"text"`
}

// ResolveResponse is the body of GET /api/v1/resolve.
type ResolveResponse struct {
	Claim string   `json:"claim"`
	Names []string `json:"names"`
	Count int      `json:"count"`
}

// InvalidateResponse is the body of POST /api/v1/cache/invalidate.
type InvalidateResponse struct {
	Deleted int64 `json:"deleted"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// Handler serves the query API.
type Handler struct {
	names     nameindex.Store
	docs      docindex.Store
	resolver  *resolver.CachedResolver
	collector *analytics.Collector
	metrics   *metrics.Metrics
}

// New creates a Handler. collector may be nil when Kafka is disabled.
func New(names nameindex.Store, docs docindex.Store, res *resolver.CachedResolver, collector *analytics.Collector, m *metrics.Metrics) *Handler {
	return &Handler{
		names:     names,
		docs:      docs,
		resolver:  res,
		collector: collector,
		metrics:   m,
	}
}

// Names handles GET /api/v1/names?word=<word>.
func (h *Handler) Names(w http.ResponseWriter, r *http.Request) {
	word := r.URL.Query().Get("word")
	if word == "" {
		writeError(w, r, errors.New(errors.ErrInvalidInput, http.StatusBadRequest, "missing word parameter"))
		return
	}

	start := time.Now()
	names, err := h.names.Names(word)
	if h.metrics != nil {
		h.metrics.LookupDuration.WithLabelValues("name").Observe(time.Since(start).Seconds())
	}
	if err != nil {
		writeError(w, r, err)
		return
	}
	h.record(analytics.QueryEvent{
		Type:        analytics.EventWordLookup,
		Query:       word,
		ResultCount: len(names),
		DurationMs:  time.Since(start).Milliseconds(),
	})
	if names == nil {
		names = []string{}
	}
	writeJSON(w, http.StatusOK, NamesResponse{Word: word, Names: names, Count: len(names)})
}

// Document handles GET /api/v1/document?name=<name>.
func (h *Handler) Document(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("name")
	if name == "" {
		writeError(w, r, errors.New(errors.ErrInvalidInput, http.StatusBadRequest, "missing name parameter"))
		return
	}

	start := time.Now()
	sentences, err := h.docs.Content(name)
	if h.metrics != nil {
		h.metrics.LookupDuration.WithLabelValues("doc").Observe(time.Since(start).Seconds())
	}
	if err != nil {
		writeError(w, r, err)
		return
	}
	if sentences == nil {
		writeError(w, r, errors.Newf(errors.ErrNotFound, http.StatusNotFound, "document %q is not indexed", name))
		return
	}
	h.record(analytics.QueryEvent{
		Type:        analytics.EventDocumentFetch,
		Query:       name,
		ResultCount: len(sentences),
		DurationMs:  time.Since(start).Milliseconds(),
	})

	out := make([]SentenceJSON, 0, len(sentences))
	for _, s := range sentences {
		out = append(out, SentenceJSON{No: s.No, Text: s.Text})
	}
	writeJSON(w, http.StatusOK, DocumentResponse{Name: name, Sentences: out})
}

// Resolve handles GET /api/v1/resolve?claim=<sentence>.
func (h *Handler) Resolve(w http.ResponseWriter, r *http.Request) {
	claim := r.URL.Query().Get("claim")
	if claim == "" {
		writeError(w, r, errors.New(errors.ErrInvalidInput, http.StatusBadRequest, "missing claim parameter"))
		return
	}

	start := time.Now()
	ctx, span := tracing.StartSpan(r.Context(), "resolve", logger.RequestIDFromContext(r.Context()))
	names, err := h.resolver.Resolve(ctx, claim)
	span.SetAttr("result_count", len(names))
	span.End()
	span.Log()
	if err != nil {
		writeError(w, r, err)
		return
	}
	h.record(analytics.QueryEvent{
		Type:        analytics.EventResolve,
		Query:       claim,
		ResultCount: len(names),
		DurationMs:  time.Since(start).Milliseconds(),
	})
	if names == nil {
		names = []string{}
	}
	writeJSON(w, http.StatusOK, ResolveResponse{Claim: claim, Names: names, Count: len(names)})
}

// CacheStats handles GET /api/v1/cache/stats.
func (h *Handler) CacheStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.resolver.Stats())
}

// CacheInvalidate handles POST /api/v1/cache/invalidate.
func (h *Handler) CacheInvalidate(w http.ResponseWriter, r *http.Request) {
	deleted, err := h.resolver.Invalidate(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, InvalidateResponse{Deleted: deleted})
}

func (h *Handler) record(ev analytics.QueryEvent) {
	if h.collector != nil {
		h.collector.Record(ev)
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := errors.HTTPStatusCode(err)
	if status >= http.StatusInternalServerError {
		logger.FromContext(r.Context()).Error("request failed",
			slog.String("path", r.URL.Path),
			slog.Any("error", err),
		)
	}
	writeJSON(w, status, errorResponse{Error: err.Error()})
}
