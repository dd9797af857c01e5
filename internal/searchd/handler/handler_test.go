package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"

	"github.com/factive/claimsearch/internal/indexer/docindex"
	"github.com/factive/claimsearch/internal/indexer/nameindex"
	"github.com/factive/claimsearch/internal/resolver"
)

func newTestHandler(t *testing.T) *Handler {
	t.Helper()
	nameDir := t.TempDir()
	docDir := t.TempDir()

	nix := nameindex.New()
	dix := docindex.New()
	for name, sentences := range map[string][]docindex.Sentence{
		"Soul":      {{No: 0, Text: "Soul is a concept ."}},
		"Soul_Food": {{No: 0, Text: "Soul Food is a film ."}, {No: 1, Text: "It was released in 1997 ."}},
		"Elon_Musk": {{No: 0, Text: "Elon Musk founded SpaceX ."}},
	} {
		nix.Add(name)
		dix.Add(name, sentences)
	}
	if err := nix.Flush(nameDir); err != nil {
		t.Fatalf("flushing name index: %v", err)
	}
	if err := dix.Flush(docDir); err != nil {
		t.Fatalf("flushing doc index: %v", err)
	}

	names := nameindex.Store{Dir: nameDir}
	docs := docindex.Store{Dir: docDir}
	base := resolver.New(names, resolver.StopWordSet([]string{"i"}), 0, slog.Default())
	cached := resolver.NewCached(base, nil, 0, nil, slog.Default())
	return New(names, docs, cached, nil, nil)
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	if err := json.NewDecoder(rec.Body).Decode(&out); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	return out
}

func TestNames(t *testing.T) {
	h := newTestHandler(t)

	rec := httptest.NewRecorder()
	h.Names(rec, httptest.NewRequest(http.MethodGet, "/api/v1/names?word=soul", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body)
	}
	resp := decode[NamesResponse](t, rec)
	want := []string{"Soul", "Soul_Food"}
	if !reflect.DeepEqual(resp.Names, want) || resp.Count != 2 {
		t.Fatalf("response = %+v, want names %v", resp, want)
	}
}

func TestNamesUnknownWordIsEmpty(t *testing.T) {
	h := newTestHandler(t)

	rec := httptest.NewRecorder()
	h.Names(rec, httptest.NewRequest(http.MethodGet, "/api/v1/names?word=zyxwv", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	resp := decode[NamesResponse](t, rec)
	if resp.Count != 0 || len(resp.Names) != 0 {
		t.Fatalf("response = %+v, want empty result", resp)
	}
}

func TestNamesMissingParameter(t *testing.T) {
	h := newTestHandler(t)

	rec := httptest.NewRecorder()
	h.Names(rec, httptest.NewRequest(http.MethodGet, "/api/v1/names", nil))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestDocument(t *testing.T) {
	h := newTestHandler(t)

	rec := httptest.NewRecorder()
	h.Document(rec, httptest.NewRequest(http.MethodGet, "/api/v1/document?name=Soul_Food", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body)
	}
	resp := decode[DocumentResponse](t, rec)
	if resp.Name != "Soul_Food" || len(resp.Sentences) != 2 {
		t.Fatalf("response = %+v", resp)
	}
	if resp.Sentences[1].No != 1 || resp.Sentences[1].Text != "It was released in 1997 ." {
		t.Fatalf("sentence 1 = %+v", resp.Sentences[1])
	}
}

func TestDocumentNotFound(t *testing.T) {
	h := newTestHandler(t)

	rec := httptest.NewRecorder()
	h.Document(rec, httptest.NewRequest(http.MethodGet, "/api/v1/document?name=Missing", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestResolve(t *testing.T) {
	h := newTestHandler(t)

	rec := httptest.NewRecorder()
	h.Resolve(rec, httptest.NewRequest(http.MethodGet, "/api/v1/resolve?claim=I+love+Soul+Food", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body)
	}
	resp := decode[ResolveResponse](t, rec)
	if !reflect.DeepEqual(resp.Names, []string{"Soul_Food"}) {
		t.Fatalf("response = %+v, want [Soul_Food]", resp)
	}
}

func TestResolveMissingParameter(t *testing.T) {
	h := newTestHandler(t)

	rec := httptest.NewRecorder()
	h.Resolve(rec, httptest.NewRequest(http.MethodGet, "/api/v1/resolve", nil))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestCacheStatsAndInvalidate(t *testing.T) {
	h := newTestHandler(t)

	rec := httptest.NewRecorder()
	h.Resolve(rec, httptest.NewRequest(http.MethodGet, "/api/v1/resolve?claim=Soul", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("resolve status = %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	h.CacheStats(rec, httptest.NewRequest(http.MethodGet, "/api/v1/cache/stats", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("stats status = %d", rec.Code)
	}
	stats := decode[resolver.CacheStats](t, rec)
	if stats.Misses != 1 {
		t.Fatalf("stats = %+v, want one miss", stats)
	}

	rec = httptest.NewRecorder()
	h.CacheInvalidate(rec, httptest.NewRequest(http.MethodPost, "/api/v1/cache/invalidate", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("invalidate status = %d", rec.Code)
	}
	inv := decode[InvalidateResponse](t, rec)
	if inv.Deleted != 0 {
		t.Fatalf("invalidate = %+v, want 0 deleted", inv)
	}
}
