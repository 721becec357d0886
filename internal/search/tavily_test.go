package search

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"ustad/internal/config"
)

func testTavily(url string) *TavilyClient {
	return NewTavilyClient(config.SearchConfig{
		APIKey:     "tv-key",
		BaseURL:    url,
		MaxResults: 2,
	})
}

func TestTavilyClient_Search(t *testing.T) {
	var gotReq searchRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/search" {
			t.Errorf("path = %q", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&gotReq); err != nil {
			t.Errorf("decode: %v", err)
		}
		json.NewEncoder(w).Encode(searchResponse{
			Answer: "Go 1.24 shipped in February 2025.",
			Results: []Result{
				{Title: "Go release notes", URL: "https://go.dev/doc", Content: "Go 1.24 adds generic type aliases. More detail follows."},
			},
		})
	}))
	defer srv.Close()

	answer, results, err := testTavily(srv.URL).Search(context.Background(), "latest go release")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if gotReq.APIKey != "tv-key" || gotReq.Query != "latest go release" || gotReq.MaxResults != 2 {
		t.Errorf("request = %+v", gotReq)
	}
	if answer == "" || len(results) != 1 {
		t.Errorf("answer = %q, results = %d", answer, len(results))
	}
}

func TestTavilyClient_LookupCondenses(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(searchResponse{
			Answer: "Short answer.",
			Results: []Result{
				{URL: "https://example.com/a", Content: "First sentence here. Second sentence dropped."},
			},
		})
	}))
	defer srv.Close()

	snippet, err := testTavily(srv.URL).Lookup(context.Background(), "q")
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if !strings.Contains(snippet, "Short answer.") {
		t.Errorf("snippet missing answer: %q", snippet)
	}
	if !strings.Contains(snippet, "First sentence here.") || strings.Contains(snippet, "Second sentence") {
		t.Errorf("snippet should keep only the first sentence: %q", snippet)
	}
}

func TestTavilyClient_Unconfigured(t *testing.T) {
	c := NewTavilyClient(config.SearchConfig{})
	if c.Configured() {
		t.Error("client without key reports configured")
	}
	if _, err := c.Lookup(context.Background(), "q"); err == nil {
		t.Error("expected error from unconfigured lookup")
	}
}

func TestTavilyClient_HTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota", http.StatusPaymentRequired)
	}))
	defer srv.Close()

	if _, _, err := testTavily(srv.URL).Search(context.Background(), "q"); err == nil {
		t.Error("expected error on non-200 status")
	}
}
