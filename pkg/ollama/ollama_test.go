package ollama

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestChat_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/chat" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		var req chatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if req.Stream {
			t.Error("streaming must be disabled")
		}
		if req.Model != "llama3" {
			t.Errorf("model = %q", req.Model)
		}
		if len(req.Messages) != 2 {
			t.Errorf("messages = %d", len(req.Messages))
		}
		json.NewEncoder(w).Encode(map[string]any{
			"message":    map[string]string{"content": "El Jem abrite un amphithéâtre romain."},
			"eval_count": 37,
		})
	}))
	defer srv.Close()

	c := NewChatClient(srv.URL, "llama3", 0)
	res, err := c.Chat(context.Background(), []Message{
		{Role: "system", Content: "règles"},
		{Role: "user", Content: "Où est El Jem?"},
	}, DefaultGenOptions())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Answer != "El Jem abrite un amphithéâtre romain." {
		t.Errorf("answer = %q", res.Answer)
	}
	if res.Tokens != 37 {
		t.Errorf("tokens = %d", res.Tokens)
	}
	if res.LatencyMs < 0 {
		t.Errorf("latency = %d", res.LatencyMs)
	}
}

func TestChat_ModelMissing(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	c := NewChatClient(srv.URL, "llama3", 0)
	_, err := c.Chat(context.Background(), []Message{{Role: "user", Content: "x"}}, DefaultGenOptions())

	var serr *ServiceError
	if !errors.As(err, &serr) || serr.Kind != KindModelMissing {
		t.Fatalf("expected model_missing, got %v", err)
	}
	if serr.Model != "llama3" {
		t.Errorf("error model = %q", serr.Model)
	}
}

func TestChat_BadStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewChatClient(srv.URL, "llama3", 0)
	_, err := c.Chat(context.Background(), []Message{{Role: "user", Content: "x"}}, DefaultGenOptions())

	var serr *ServiceError
	if !errors.As(err, &serr) || serr.Kind != KindBadStatus || serr.Status != 500 {
		t.Fatalf("expected bad_status 500, got %v", err)
	}
}

func TestChat_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	srv.Close() // nothing listening anymore

	c := NewChatClient(srv.URL, "llama3", 0)
	_, err := c.Chat(context.Background(), []Message{{Role: "user", Content: "x"}}, DefaultGenOptions())

	var serr *ServiceError
	if !errors.As(err, &serr) || serr.Kind != KindUnreachable {
		t.Fatalf("expected unreachable, got %v", err)
	}
}

func TestChat_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		time.Sleep(300 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := NewChatClient(srv.URL, "llama3", 20*time.Millisecond)
	_, err := c.Chat(context.Background(), []Message{{Role: "user", Content: "x"}}, DefaultGenOptions())

	var serr *ServiceError
	if !errors.As(err, &serr) || serr.Kind != KindTimeout {
		t.Fatalf("expected timeout, got %v", err)
	}
	if serr.LatencyMs != 0 {
		t.Errorf("timeout latency should be zero, got %d", serr.LatencyMs)
	}
}

func TestEmbedBatch(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/embeddings" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		calls++
		json.NewEncoder(w).Encode(map[string]any{"embedding": []float64{0.1, 0.2, 0.3}})
	}))
	defer srv.Close()

	c := NewEmbedClient(srv.URL, "nomic-embed-text")
	vecs, err := c.EmbedBatch(context.Background(), []string{"un", "deux"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(vecs) != 2 || len(vecs[0]) != 3 {
		t.Fatalf("unexpected vectors: %v", vecs)
	}
	if calls != 2 {
		t.Errorf("expected 2 embed calls, got %d", calls)
	}
}

func TestEmbed_BadStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := NewEmbedClient(srv.URL, "nomic-embed-text")
	if _, err := c.Embed(context.Background(), "x"); err == nil {
		t.Fatal("expected error for non-200 status")
	}
}

func TestStatus_Online(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/tags" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"models": []map[string]string{
				{"name": "llama3:latest"},
				{"name": "nomic-embed-text:latest"},
			},
		})
	}))
	defer srv.Close()

	c := NewChatClient(srv.URL, "llama3", 0)
	st := c.Status(context.Background())
	if st.Status != StatusOnline {
		t.Fatalf("status = %q", st.Status)
	}
	if !st.ModelAvailable {
		t.Error("llama3:latest should satisfy model llama3")
	}
	if len(st.Models) != 2 {
		t.Errorf("models = %v", st.Models)
	}
}

func TestStatus_Offline(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	srv.Close()

	c := NewChatClient(srv.URL, "llama3", 0)
	st := c.Status(context.Background())
	if st.Status != StatusOffline {
		t.Fatalf("status = %q", st.Status)
	}
	if st.ModelAvailable {
		t.Error("model cannot be available while offline")
	}
}

func TestStatus_TimeoutIsErrorNotOffline(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	c := NewChatClient(srv.URL, "llama3", 0)
	st := c.Status(ctx)
	if st.Status != StatusError {
		t.Fatalf("status = %q, want %q", st.Status, StatusError)
	}
	if st.Message == "" || st.Message == "le service de génération n'est pas en cours d'exécution" {
		t.Errorf("timeout must report the transport error, got %q", st.Message)
	}
}

func TestStatus_ModelNotPulled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"models": []map[string]string{{"name": "mistral:latest"}},
		})
	}))
	defer srv.Close()

	c := NewChatClient(srv.URL, "llama3", 0)
	st := c.Status(context.Background())
	if st.Status != StatusOnline || st.ModelAvailable {
		t.Fatalf("expected online without model, got %+v", st)
	}
}
