package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"ustad/internal/config"
)

func testClient(url string) *OpenAIClient {
	cfg := config.DefaultLLMConfig()
	cfg.APIKey = "test-key"
	cfg.BaseURL = url
	cfg.Model = "test-model"
	return NewOpenAIClient(cfg)
}

func chatOK(t *testing.T, w http.ResponseWriter, content string) {
	t.Helper()
	resp := map[string]any{
		"choices": []map[string]any{
			{"message": map[string]string{"role": "assistant", "content": content}},
		},
	}
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		t.Fatalf("encode: %v", err)
	}
}

func TestOpenAIClient_CompleteWithSystem(t *testing.T) {
	var gotAuth, gotPath string
	var gotReq chatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotPath = r.URL.Path
		if err := json.NewDecoder(r.Body).Decode(&gotReq); err != nil {
			t.Errorf("decode request: %v", err)
		}
		chatOK(t, w, "  the answer  ")
	}))
	defer srv.Close()

	c := testClient(srv.URL)
	got, err := c.CompleteWithSystem(context.Background(), "be brief", "what is up")
	if err != nil {
		t.Fatalf("CompleteWithSystem: %v", err)
	}
	if got != "the answer" {
		t.Errorf("response = %q, want trimmed %q", got, "the answer")
	}
	if gotAuth != "Bearer test-key" {
		t.Errorf("auth header = %q", gotAuth)
	}
	if gotPath != "/chat/completions" {
		t.Errorf("path = %q", gotPath)
	}
	if len(gotReq.Messages) != 2 || gotReq.Messages[0].Role != "system" || gotReq.Messages[0].Content != "be brief" {
		t.Errorf("messages = %+v", gotReq.Messages)
	}
}

func TestOpenAIClient_EmptySystemGetsDefault(t *testing.T) {
	var gotReq chatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&gotReq)
		chatOK(t, w, "ok")
	}))
	defer srv.Close()

	if _, err := testClient(srv.URL).Complete(context.Background(), "hi"); err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if gotReq.Messages[0].Content == "" {
		t.Error("system message should fall back to the default prompt")
	}
}

func TestOpenAIClient_RetriesRateLimit(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		chatOK(t, w, "second try")
	}))
	defer srv.Close()

	got, err := testClient(srv.URL).Complete(context.Background(), "hi")
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if got != "second try" {
		t.Errorf("response = %q", got)
	}
	if calls.Load() != 2 {
		t.Errorf("calls = %d, want 2", calls.Load())
	}
}

func TestOpenAIClient_ServerErrorFailsFast(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := testClient(srv.URL).Complete(context.Background(), "hi")
	if err == nil || !strings.Contains(err.Error(), "status 500") {
		t.Fatalf("err = %v, want status 500 failure", err)
	}
	if calls.Load() != 1 {
		t.Errorf("calls = %d, server errors must not retry", calls.Load())
	}
}

func TestOpenAIClient_MissingAPIKey(t *testing.T) {
	cfg := config.DefaultLLMConfig()
	cfg.BaseURL = "http://localhost:0"
	c := NewOpenAIClient(cfg)
	if _, err := c.Complete(context.Background(), "hi"); err == nil {
		t.Error("expected error without API key")
	}
}

func TestNewClient_UnknownProvider(t *testing.T) {
	cfg := config.DefaultLLMConfig()
	cfg.Provider = "carrier-pigeon"
	if _, err := NewClient(context.Background(), cfg); err == nil {
		t.Error("expected error for unknown provider")
	}
}
