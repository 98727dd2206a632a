package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/carthago-ai/carthago/engine/rag"
	"github.com/carthago-ai/carthago/engine/semantic"
	"github.com/carthago-ai/carthago/pkg/ollama"
)

// --- fakes wired through the exported rag interfaces ---

type fakeEmbedder struct{}

func (fakeEmbedder) Embed(context.Context, string) ([]float32, error) { return []float32{0.1}, nil }
func (fakeEmbedder) Model() string                                    { return "nomic-embed-text" }

type fakeSearcher struct {
	results []semantic.SearchResult
}

func (f fakeSearcher) Search(context.Context, []float32, int) ([]semantic.SearchResult, error) {
	return f.results, nil
}
func (fakeSearcher) Count(context.Context) (uint64, error) { return 3, nil }
func (fakeSearcher) Collection() string                    { return "sites_archeologiques_tunisie" }

type fakeGenerator struct{}

func (fakeGenerator) Chat(context.Context, []ollama.Message, ollama.GenOptions) (*ollama.ChatResult, error) {
	return &ollama.ChatResult{Answer: "Carthage est près de Tunis.", Tokens: 10, LatencyMs: 5}, nil
}

func (fakeGenerator) Status(context.Context) ollama.ServiceStatus {
	return ollama.ServiceStatus{Status: ollama.StatusOnline, CurrentModel: "llama3", ModelAvailable: true}
}
func (fakeGenerator) Model() string { return "llama3" }

func testHub() *sessionHub {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	searcher := fakeSearcher{results: []semantic.SearchResult{{
		Content:  "Site archéologique: Carthage.",
		Distance: 0.2,
		Meta:     map[string]string{"site": "Carthage", "source": "inventaire"},
	}}}
	return newSessionHub(func() *rag.Chatbot {
		return rag.New(fakeEmbedder{}, searcher, fakeGenerator{}, nil, rag.DefaultOptions(), log)
	}, nil, log)
}

func TestChatEndpoint(t *testing.T) {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	handler := handleChat(testHub(), log)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/api/chat", bytes.NewBufferString(`{"question":"Où est Carthage ?"}`))
	handler(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var resp rag.Response
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Answer != "Carthage est près de Tunis." || len(resp.Sources) != 1 {
		t.Errorf("response = %+v", resp)
	}
}

func TestChatEndpoint_EmptyQuestionIsTerminalAnswer(t *testing.T) {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	handler := handleChat(testHub(), log)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/api/chat", bytes.NewBufferString(`{"question":"  "}`))
	handler(rec, req)

	// Validation failures answer in French; they are not HTTP errors.
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var resp rag.Response
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Err != "invalid_query" || resp.TokensUsed != 0 {
		t.Errorf("response = %+v", resp)
	}
}

func TestChatEndpoint_InvalidJSON(t *testing.T) {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	handler := handleChat(testHub(), log)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/api/chat", bytes.NewBufferString("not json"))
	handler(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestHealthEndpoint(t *testing.T) {
	handler := handleHealth(testHub())

	rec := httptest.NewRecorder()
	handler(rec, httptest.NewRequest("GET", "/api/health", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var resp HealthResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Status != "ok" || resp.Generation.Status != "online" {
		t.Errorf("health = %+v", resp)
	}
	if resp.Collection == nil || resp.Collection.DocumentCount != 3 {
		t.Errorf("collection stats = %+v", resp.Collection)
	}
}

func TestSessionHubReusesBots(t *testing.T) {
	hub := testHub()
	a := hub.get(context.Background(), "s1")
	b := hub.get(context.Background(), "s1")
	c := hub.get(context.Background(), "s2")
	if a != b {
		t.Error("same session must reuse its chatbot")
	}
	if a == c {
		t.Error("distinct sessions must not share a chatbot")
	}
}

func TestChatEndpoint_ConcurrentSameSession(t *testing.T) {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	hub := testHub()
	handler := handleChat(hub, log)

	const requests = 8
	var wg sync.WaitGroup
	codes := make([]int, requests)
	for i := 0; i < requests; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			rec := httptest.NewRecorder()
			req := httptest.NewRequest("POST", "/api/chat",
				bytes.NewBufferString(`{"question":"Où est Carthage ?","session_id":"s1"}`))
			handler(rec, req)
			codes[i] = rec.Code
		}(i)
	}
	wg.Wait()

	for i, code := range codes {
		if code != http.StatusOK {
			t.Errorf("request %d: status %d", i, code)
		}
	}
	// 8 exchanges through one session: the window caps at 6 pairs and the
	// slice is only ever mutated under the session lock.
	if got := len(hub.get(context.Background(), "s1").bot.History()); got != rag.MaxHistoryMessages*2 {
		t.Errorf("history length = %d, want %d", got, rag.MaxHistoryMessages*2)
	}
}

func TestLoadConfig_Defaults(t *testing.T) {
	cfg := loadConfig()
	if cfg.Port != "8080" {
		t.Fatalf("expected default port 8080, got %s", cfg.Port)
	}
	if cfg.Collection != "sites_archeologiques_tunisie" {
		t.Fatalf("default collection = %s", cfg.Collection)
	}
	if cfg.ChatModel != "llama3" || cfg.EmbedModel != "nomic-embed-text" {
		t.Fatalf("default models = %s/%s", cfg.ChatModel, cfg.EmbedModel)
	}
}

func TestEnvHelpers(t *testing.T) {
	t.Setenv("TEST_ENV_VAR_XYZ", "custom")
	if v := envOr("TEST_ENV_VAR_XYZ", "default"); v != "custom" {
		t.Fatalf("expected custom, got %s", v)
	}
	if v := envOr("NONEXISTENT_VAR_ABC", "fallback"); v != "fallback" {
		t.Fatalf("expected fallback, got %s", v)
	}
	t.Setenv("TEST_RATE_RPS", "2.5")
	if v := envFloat("TEST_RATE_RPS", 5); v != 2.5 {
		t.Fatalf("envFloat = %v", v)
	}
	t.Setenv("TEST_RATE_BURST", "junk")
	if v := envInt("TEST_RATE_BURST", 10); v != 10 {
		t.Fatalf("envInt must fall back on junk, got %v", v)
	}
}
