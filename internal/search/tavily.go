// Package search wraps the Tavily REST API for the verification lookup
// used by research-tier dialogues.
package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"ustad/internal/config"
	"ustad/internal/logging"
)

// Result is one search hit.
type Result struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Content string `json:"content"`
}

// TavilyClient calls the Tavily search endpoint. An unconfigured client
// fails lookups with an error; callers degrade instead of aborting.
type TavilyClient struct {
	apiKey     string
	baseURL    string
	maxResults int
	httpClient *http.Client
}

func NewTavilyClient(cfg config.SearchConfig) *TavilyClient {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = "https://api.tavily.com"
	}
	maxResults := cfg.MaxResults
	if maxResults <= 0 {
		maxResults = 3
	}
	return &TavilyClient{
		apiKey:     cfg.APIKey,
		baseURL:    strings.TrimRight(baseURL, "/"),
		maxResults: maxResults,
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
}

// Configured reports whether an API key is present.
func (c *TavilyClient) Configured() bool { return c.apiKey != "" }

type searchRequest struct {
	APIKey        string `json:"api_key"`
	Query         string `json:"query"`
	MaxResults    int    `json:"max_results"`
	IncludeAnswer bool   `json:"include_answer"`
}

type searchResponse struct {
	Answer  string   `json:"answer"`
	Results []Result `json:"results"`
}

// Search runs one query and returns the raw hits.
func (c *TavilyClient) Search(ctx context.Context, query string) (string, []Result, error) {
	if !c.Configured() {
		return "", nil, fmt.Errorf("search API key not configured")
	}

	body, err := json.Marshal(searchRequest{
		APIKey:        c.apiKey,
		Query:         query,
		MaxResults:    c.maxResults,
		IncludeAnswer: true,
	})
	if err != nil {
		return "", nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+"/search", bytes.NewReader(body))
	if err != nil {
		return "", nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", nil, fmt.Errorf("search request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", nil, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		logging.SearchWarn("tavily status %d: %.200s", resp.StatusCode, respBody)
		return "", nil, fmt.Errorf("search failed with status %d", resp.StatusCode)
	}

	var parsed searchResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return "", nil, fmt.Errorf("failed to parse response: %w", err)
	}

	logging.Search("query %.60q: %d results in %v", query, len(parsed.Results), time.Since(start))
	return parsed.Answer, parsed.Results, nil
}

// Lookup condenses one search into a background snippet for dialogue
// prompts.
func (c *TavilyClient) Lookup(ctx context.Context, query string) (string, error) {
	answer, results, err := c.Search(ctx, query)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	if answer != "" {
		b.WriteString(answer)
	}
	for _, r := range results {
		if r.Content == "" {
			continue
		}
		if b.Len() > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "- %s (%s)", firstSentence(r.Content), r.URL)
	}
	return b.String(), nil
}

func firstSentence(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexAny(s, ".!?"); i > 0 && i < 300 {
		return s[:i+1]
	}
	if len(s) > 300 {
		return s[:300]
	}
	return s
}
