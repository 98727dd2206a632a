// Command chat is an interactive terminal client for asking questions
// about Tunisian archaeological sites.
package main

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"

	"github.com/carthago-ai/carthago/engine/rag"
	"github.com/carthago-ai/carthago/engine/semantic"
	"github.com/carthago-ai/carthago/pkg/ollama"
)

func envOr(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func main() {
	ollamaURL := envOr("OLLAMA_URL", "http://localhost:11434")
	qdrantAddr := envOr("QDRANT_URL", "localhost:6334")
	collection := envOr("QDRANT_COLLECTION", "sites_archeologiques_tunisie")
	embedModel := envOr("EMBED_MODEL", "nomic-embed-text")
	chatModel := envOr("CHAT_MODEL", "llama3")

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))

	store, err := semantic.New(qdrantAddr, collection)
	if err != nil {
		fmt.Fprintln(os.Stderr, "connexion Qdrant impossible:", err)
		os.Exit(1)
	}
	defer store.Close()

	bot := rag.New(
		ollama.NewEmbedClient(ollamaURL, embedModel),
		store,
		ollama.NewChatClient(ollamaURL, chatModel, ollama.DefaultTimeout),
		nil,
		rag.DefaultOptions(),
		logger,
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	fmt.Println("Assistant des sites archéologiques de Tunisie.")
	fmt.Println("Commandes: /stats  /status  /clear  /quit")

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("\n> ")
		if !scanner.Scan() || ctx.Err() != nil {
			fmt.Println()
			return
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		switch line {
		case "/quit", "/exit":
			return
		case "/clear":
			bot.ClearHistory()
			fmt.Println("Historique effacé.")
			continue
		case "/stats":
			printStats(ctx, bot)
			continue
		case "/status":
			printStatus(ctx, bot)
			continue
		}

		resp, err := bot.Answer(ctx, line)
		if err != nil {
			fmt.Fprintln(os.Stderr, "erreur:", err)
			continue
		}

		fmt.Println("\n" + resp.Answer)
		printSources(resp.Sources)
		if resp.TokensUsed > 0 {
			fmt.Printf("\n(%d tokens, %d ms)\n", resp.TokensUsed, resp.ResponseTimeMs)
		}
	}
}

func printSources(sources []rag.Source) {
	if len(sources) == 0 {
		return
	}
	fmt.Println("\nSources:")
	for _, s := range sources {
		line := "  - " + s.Site
		if s.Ville != "" {
			line += " (" + s.Ville + ")"
		}
		if s.Relevance != nil {
			line += fmt.Sprintf(" [pertinence %.3f]", *s.Relevance)
		}
		fmt.Println(line)
	}
}

func printStats(ctx context.Context, bot *rag.Chatbot) {
	stats, err := bot.CollectionStats(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, "stats indisponibles:", err)
		return
	}
	fmt.Printf("Collection %s: %d chunks, embeddings %s\n",
		stats.CollectionName, stats.DocumentCount, stats.EmbeddingModel)
}

func printStatus(ctx context.Context, bot *rag.Chatbot) {
	st := bot.GenerationServiceStatus(ctx)
	fmt.Printf("Service de génération: %s", st.Status)
	if st.Message != "" {
		fmt.Printf(" (%s)", st.Message)
	}
	fmt.Println()
	if st.Status == ollama.StatusOnline {
		fmt.Printf("Modèle %s disponible: %v\n", st.CurrentModel, st.ModelAvailable)
	}
}
