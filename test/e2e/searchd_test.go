// Package e2e contains end-to-end tests that exercise a running searchd
// instance over HTTP, with real persisted indexes and (optionally) Redis.
//
// Prerequisites:
//   - indexbuilder has been run against a corpus containing the documents
//     used below (any FEVER-style wiki-pages-text extract works)
//   - searchd running and pointed at the resulting index directories
//
// Run with:
//
//	go test -v -timeout=60s ./test/e2e/...
package e2e

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"testing"
	"time"
)

func searcherURL() string {
	if v := os.Getenv("E2E_SEARCHD_URL"); v != "" {
		return v
	}
	return "http://localhost:8080"
}

func skipUnlessUp(t *testing.T, client *http.Client) {
	t.Helper()
	resp, err := client.Get(searcherURL() + "/health/live")
	if err != nil {
		t.Skipf("searchd unavailable: %v", err)
	}
	resp.Body.Close()
}

// TestHealth verifies liveness and readiness endpoints respond.
func TestHealth(t *testing.T) {
	client := &http.Client{Timeout: 5 * time.Second}
	skipUnlessUp(t, client)

	for _, path := range []string{"/health/live", "/health/ready"} {
		t.Run(path, func(t *testing.T) {
			resp, err := client.Get(searcherURL() + path)
			if err != nil {
				t.Fatalf("GET %s: %v", path, err)
			}
			defer resp.Body.Close()
			if resp.StatusCode != http.StatusOK {
				body, _ := io.ReadAll(resp.Body)
				t.Errorf("expected 200, got %d: %s", resp.StatusCode, body)
			}
		})
	}
}

// TestWordToDocumentFlow exercises the full query chain: word lookup, then
// content fetch of one returned name, then claim resolution over it.
func TestWordToDocumentFlow(t *testing.T) {
	client := &http.Client{Timeout: 10 * time.Second}
	skipUnlessUp(t, client)

	word := os.Getenv("E2E_WORD")
	if word == "" {
		word = "soul"
	}

	var names struct {
		Names []string `json:"names"`
		Count int      `json:"count"`
	}
	getJSON(t, client, fmt.Sprintf("%s/api/v1/names?word=%s", searcherURL(), url.QueryEscape(word)), &names)
	if names.Count == 0 {
		t.Skipf("word %q not present in the deployed index", word)
	}

	var doc struct {
		Name      string `json:"name"`
		Sentences []struct {
			No   int    `json:"no"`
			Text string `json:"text"`
		} `json:"sentences"`
	}
	getJSON(t, client, fmt.Sprintf("%s/api/v1/document?name=%s", searcherURL(), url.QueryEscape(names.Names[0])), &doc)
	if len(doc.Sentences) == 0 {
		t.Fatalf("document %q has no sentences", names.Names[0])
	}
	for i := 1; i < len(doc.Sentences); i++ {
		if doc.Sentences[i].No <= doc.Sentences[i-1].No {
			t.Fatalf("sentences not in ascending order: %d after %d",
				doc.Sentences[i].No, doc.Sentences[i-1].No)
		}
	}

	var resolved struct {
		Names []string `json:"names"`
	}
	getJSON(t, client, fmt.Sprintf("%s/api/v1/resolve?claim=%s", searcherURL(), url.QueryEscape(word)), &resolved)
	// A one-word claim is valid input regardless of whether it resolves.
}

// TestResolveCacheRoundTrip resolves the same claim twice and checks the
// cache counters moved.
func TestResolveCacheRoundTrip(t *testing.T) {
	client := &http.Client{Timeout: 10 * time.Second}
	skipUnlessUp(t, client)

	claim := fmt.Sprintf("%s/api/v1/resolve?claim=%s", searcherURL(), url.QueryEscape("I love Soul Food"))
	var first, second struct {
		Names []string `json:"names"`
	}
	getJSON(t, client, claim, &first)
	getJSON(t, client, claim, &second)
	if len(first.Names) != len(second.Names) {
		t.Fatalf("repeated resolution differs: %v vs %v", first.Names, second.Names)
	}

	var stats struct {
		Hits   int64 `json:"hits"`
		Misses int64 `json:"misses"`
	}
	getJSON(t, client, searcherURL()+"/api/v1/cache/stats", &stats)
	if stats.Hits+stats.Misses == 0 {
		t.Error("cache counters did not move")
	}
}

// TestUnknownDocumentReturns404 checks the not-found contract.
func TestUnknownDocumentReturns404(t *testing.T) {
	client := &http.Client{Timeout: 5 * time.Second}
	skipUnlessUp(t, client)

	resp, err := client.Get(searcherURL() + "/api/v1/document?name=definitely_not_indexed_anywhere")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("expected 404, got %d", resp.StatusCode)
	}
}

func getJSON(t *testing.T, client *http.Client, url string, out any) {
	t.Helper()
	resp, err := client.Get(url)
	if err != nil {
		t.Fatalf("GET %s: %v", url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		t.Fatalf("GET %s: %d: %s", url, resp.StatusCode, body)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		t.Fatalf("decoding %s: %v", url, err)
	}
}
