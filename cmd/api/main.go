// Package main implements the Carthago question-answering API server.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/carthago-ai/carthago/engine/graph"
	"github.com/carthago-ai/carthago/engine/rag"
	"github.com/carthago-ai/carthago/engine/semantic"
	"github.com/carthago-ai/carthago/pkg/history"
	"github.com/carthago-ai/carthago/pkg/mid"
	"github.com/carthago-ai/carthago/pkg/ollama"
)

// Config holds all environment-based configuration.
type Config struct {
	Port       string
	OllamaURL  string
	ChatModel  string
	EmbedModel string
	QdrantURL  string
	Collection string
	Neo4jURL   string
	Neo4jUser  string
	Neo4jPass  string
	NATSURL    string
	CORSOrigin string
	RateRPS    float64
	RateBurst  int
}

func loadConfig() Config {
	return Config{
		Port:       envOr("PORT", "8080"),
		OllamaURL:  envOr("OLLAMA_URL", "http://localhost:11434"),
		ChatModel:  envOr("CHAT_MODEL", "llama3"),
		EmbedModel: envOr("EMBED_MODEL", "nomic-embed-text"),
		QdrantURL:  envOr("QDRANT_URL", "localhost:6334"),
		Collection: envOr("QDRANT_COLLECTION", "sites_archeologiques_tunisie"),
		Neo4jURL:   os.Getenv("NEO4J_URL"),
		Neo4jUser:  envOr("NEO4J_USER", "neo4j"),
		Neo4jPass:  envOr("NEO4J_PASS", "password"),
		NATSURL:    os.Getenv("NATS_URL"),
		CORSOrigin: envOr("CORS_ORIGIN", "*"),
		RateRPS:    envFloat("RATE_RPS", 5),
		RateBurst:  envInt("RATE_BURST", 10),
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	cfg := loadConfig()

	if err := run(cfg, logger); err != nil {
		logger.Error("server exited with error", "err", err)
		os.Exit(1)
	}
}

func run(cfg Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// --- Connect to Qdrant ---
	vectorStore, err := semantic.New(cfg.QdrantURL, cfg.Collection)
	if err != nil {
		return fmt.Errorf("qdrant connect: %w", err)
	}
	defer vectorStore.Close()

	// --- Generation and embedding clients ---
	chatClient := ollama.NewChatClient(cfg.OllamaURL, cfg.ChatModel, ollama.DefaultTimeout)
	embedClient := ollama.NewEmbedClient(cfg.OllamaURL, cfg.EmbedModel)

	// --- Neo4j heritage graph (optional) ---
	var enricher rag.GraphEnricher
	if cfg.Neo4jURL != "" {
		driver, err := neo4j.NewDriverWithContext(cfg.Neo4jURL, neo4j.BasicAuth(cfg.Neo4jUser, cfg.Neo4jPass, ""))
		if err != nil {
			return fmt.Errorf("neo4j driver: %w", err)
		}
		defer driver.Close(ctx)
		enricher = graph.New(driver)
		logger.Info("heritage graph enabled", "url", cfg.Neo4jURL)
	}

	// --- Transcript collaborator (optional) ---
	var transcripts *history.Client
	if cfg.NATSURL != "" {
		transcripts, err = history.New(cfg.NATSURL)
		if err != nil {
			return fmt.Errorf("transcript service: %w", err)
		}
		defer transcripts.Close()
		logger.Info("transcript service enabled", "url", cfg.NATSURL)
	}

	hub := newSessionHub(func() *rag.Chatbot {
		return rag.New(embedClient, vectorStore, chatClient, enricher, rag.DefaultOptions(), logger)
	}, transcripts, logger)

	// --- Build HTTP server ---
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/health", handleHealth(hub))
	mux.HandleFunc("POST /api/chat", handleChat(hub, logger))
	mux.HandleFunc("POST /api/sessions/{id}/clear", handleClear(hub))

	handler := mid.Chain(mux,
		mid.Recover(logger),
		mid.Logger(logger),
		mid.OTel("carthago-api"),
		mid.CORS(cfg.CORSOrigin),
		mid.RateLimit(cfg.RateRPS, cfg.RateBurst),
		mid.MaxBody(1<<16),
	)

	srv := &http.Server{
		Addr:        ":" + cfg.Port,
		Handler:     handler,
		ReadTimeout: 15 * time.Second,
		// Generation may take up to its full 120s budget.
		WriteTimeout: 150 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// --- Graceful shutdown ---
	errCh := make(chan error, 1)
	go func() {
		logger.Info("api server starting", "port", cfg.Port, "collection", cfg.Collection)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			return err
		}
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	}

	shutCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutCtx)
}

// --- Handlers ---

// ChatRequest is the JSON body for POST /api/chat.
type ChatRequest struct {
	Question  string `json:"question"`
	SessionID string `json:"session_id,omitempty"`
	TopK      int    `json:"top_k,omitempty"`
}

func handleChat(hub *sessionHub, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req ChatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
			return
		}

		sessionID := req.SessionID
		if sessionID == "" {
			sessionID = "default"
		}

		topK := req.TopK
		if topK <= 0 {
			topK = rag.DefaultTopK
		}

		resp, err := hub.answer(r.Context(), sessionID, req.Question, topK)
		if err != nil {
			logger.Error("answer failed", "session", sessionID, "err", err)
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
			return
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

// HealthResponse reports the state of the generation service and the
// vector collection.
type HealthResponse struct {
	Status     string            `json:"status"`
	Generation rag.ServiceStatus `json:"generation"`
	Collection *rag.Stats        `json:"collection,omitempty"`
	Error      string            `json:"collection_error,omitempty"`
}

func handleHealth(hub *sessionHub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		bot := hub.probe

		resp := HealthResponse{Status: "ok"}
		resp.Generation = bot.GenerationServiceStatus(r.Context())
		if resp.Generation.Status != ollama.StatusOnline {
			resp.Status = "degraded"
		}

		stats, err := bot.CollectionStats(r.Context())
		if err != nil {
			resp.Status = "degraded"
			resp.Error = err.Error()
		} else {
			resp.Collection = &stats
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

func handleClear(hub *sessionHub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		hub.clear(r.Context(), r.PathValue("id"))
		writeJSON(w, http.StatusOK, map[string]string{"status": "cleared"})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
