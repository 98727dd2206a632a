// Command ingest rebuilds the vector collection and the heritage graph
// from a JSON Lines corpus of archaeological site records.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/carthago-ai/carthago/engine/corpus"
	"github.com/carthago-ai/carthago/engine/domain"
	"github.com/carthago-ai/carthago/engine/graph"
	"github.com/carthago-ai/carthago/engine/ingest"
	"github.com/carthago-ai/carthago/engine/semantic"
	"github.com/carthago-ai/carthago/pkg/ollama"
)

func main() {
	var (
		corpusPath = flag.String("corpus", "data/sites.jsonl", "JSON Lines corpus of site records")
		ollamaURL  = flag.String("ollama", "http://localhost:11434", "Ollama base URL")
		embedModel = flag.String("model", "nomic-embed-text", "Ollama embedding model")
		qdrantAddr = flag.String("qdrant", "localhost:6334", "Qdrant gRPC address")
		collection = flag.String("collection", "sites_archeologiques_tunisie", "Qdrant collection name")
		neo4jURL   = flag.String("neo4j", "", "Neo4j bolt URL (empty disables the heritage graph)")
		neo4jUser  = flag.String("neo4j-user", "neo4j", "Neo4j username")
		neo4jPass  = flag.String("neo4j-pass", "password", "Neo4j password")
	)
	flag.Parse()

	log := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	docs, err := corpus.ReadFile(*corpusPath, log)
	if err != nil {
		log.Error("corpus read failed", "path", *corpusPath, "error", err)
		os.Exit(1)
	}
	if len(docs) == 0 {
		log.Error("corpus is empty", "path", *corpusPath)
		os.Exit(1)
	}
	log.Info("corpus loaded", "path", *corpusPath, "documents", len(docs))

	// Connect Qdrant
	vs, err := semantic.New(*qdrantAddr, *collection)
	if err != nil {
		log.Error("qdrant connect failed", "error", err)
		os.Exit(1)
	}
	defer vs.Close()
	log.Info("connected to Qdrant", "collection", *collection)

	// Ollama embedder
	embedder := ollama.NewEmbedClient(*ollamaURL, *embedModel)
	log.Info("using Ollama embeddings", "model", *embedModel)

	// Heritage graph rebuild is best effort: losing it degrades answers,
	// it never blocks the reindex.
	if *neo4jURL != "" {
		rebuildGraph(ctx, *neo4jURL, *neo4jUser, *neo4jPass, docs, log)
	}

	indexer := ingest.NewIndexer(embedder, vs, log)

	start := time.Now()
	chunks, err := indexer.Reindex(ctx, docs)
	if err != nil {
		log.Error("reindex failed", "error", err)
		os.Exit(1)
	}
	log.Info("reindex complete",
		"documents", len(docs),
		"chunks", chunks,
		"collection", *collection,
		"duration", time.Since(start).Round(time.Millisecond),
	)
}

func rebuildGraph(ctx context.Context, url, user, pass string, docs []domain.SiteDocument, log *slog.Logger) {
	driver, err := neo4j.NewDriverWithContext(url, neo4j.BasicAuth(user, pass, ""))
	if err != nil {
		log.Warn("neo4j driver failed, skipping graph rebuild", "error", err)
		return
	}
	defer driver.Close(ctx)

	hg := graph.New(driver)
	if err := hg.Reset(ctx); err != nil {
		log.Warn("graph reset failed, skipping graph rebuild", "error", err)
		return
	}
	saved := 0
	for i, doc := range docs {
		if err := hg.SaveSite(ctx, doc, ingest.DocumentID(doc, i)); err != nil {
			log.Warn("graph save failed", "site", doc.Site, "error", err)
			continue
		}
		saved++
	}
	log.Info("heritage graph rebuilt", "sites", saved)
}
