// Package rag orchestrates the retrieval-augmented answering pipeline: it
// sanitizes the question, embeds it, searches the vector store, optionally
// enriches from the heritage graph, builds a grounded French prompt, and
// calls the generation service — absorbing every generation failure into a
// renderable answer.
package rag

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/carthago-ai/carthago/engine/domain"
	"github.com/carthago-ai/carthago/engine/graph"
	"github.com/carthago-ai/carthago/engine/semantic"
	"github.com/carthago-ai/carthago/pkg/ollama"
)

// Embedder turns a query into a vector.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	Model() string
}

// SemanticSearcher abstracts the vector store's query-time surface.
type SemanticSearcher interface {
	Search(ctx context.Context, embedding []float32, topK int) ([]semantic.SearchResult, error)
	Count(ctx context.Context) (uint64, error)
	Collection() string
}

// Generator issues the synchronous generation call and the liveness probe.
type Generator interface {
	Chat(ctx context.Context, messages []ollama.Message, opts ollama.GenOptions) (*ollama.ChatResult, error)
	Status(ctx context.Context) ollama.ServiceStatus
	Model() string
}

// GraphEnricher optionally supplements retrieved context from the heritage
// graph; failures are logged and skipped.
type GraphEnricher interface {
	RelatedSites(ctx context.Context, keywords []string) ([]graph.SiteNode, error)
}

// Chatbot is one conversational session over the shared index. The history
// buffer is not guarded against concurrent Answer calls; callers needing
// concurrent users create one Chatbot per session, sharing the embedder,
// store, and generator, which are read-mostly and safe to reuse.
type Chatbot struct {
	embedder Embedder
	search   SemanticSearcher
	gen      Generator
	graph    GraphEnricher
	opts     Options
	history  []domain.ConversationTurn
	log      *slog.Logger
}

// New creates a Chatbot. graphEnricher may be nil.
func New(embedder Embedder, search SemanticSearcher, gen Generator, graphEnricher GraphEnricher, opts Options, log *slog.Logger) *Chatbot {
	if log == nil {
		log = slog.Default()
	}
	return &Chatbot{
		embedder: embedder,
		search:   search,
		gen:      gen,
		graph:    graphEnricher,
		opts:     opts.withDefaults(),
		log:      log,
	}
}

// User-facing messages for the absorbed failure categories, in the corpus
// language.
const (
	msgInvalidQuery = "Veuillez entrer une question valide."
	msgNoContext    = "Aucun document trouvé dans la base de données. Exécutez d'abord l'ingestion du corpus avec carthago-ingest."
	msgUnreachable  = "Impossible de se connecter au service de génération. Vérifiez qu'il est lancé avec: ollama serve"
	msgTimeout      = "Délai d'attente dépassé. Le modèle prend trop de temps à répondre."
)

// Answer runs the full pipeline with the configured TopK.
func (c *Chatbot) Answer(ctx context.Context, query string) (*Response, error) {
	return c.AnswerTopK(ctx, query, c.opts.TopK)
}

// AnswerTopK runs sanitize → retrieve → prompt → generate → history update.
// The returned error is non-nil only for query-time infrastructure failures
// (embedder or vector store down); every generation-service failure is
// absorbed into the Response so the conversation can continue.
func (c *Chatbot) AnswerTopK(ctx context.Context, query string, topK int) (*Response, error) {
	if topK <= 0 {
		topK = c.opts.TopK
	}

	query = Sanitize(query, c.opts.MaxInputLength)
	if query == "" {
		return &Response{Answer: msgInvalidQuery, Err: ErrTagInvalidQuery}, nil
	}

	c.log.Info("rag: answering", "len", len(query), "lang", DetectLanguage(query), "top_k", topK)

	contextText, sources, err := c.retrieve(ctx, query, topK)
	if err != nil {
		return nil, err
	}
	if contextText == "" {
		return &Response{Answer: msgNoContext, Err: ErrTagNoContext}, nil
	}

	var graphContext string
	if c.opts.UseGraph && c.graph != nil {
		graphContext = c.enrichFromGraph(ctx, query)
	}

	messages := BuildMessages(query, contextText, graphContext, c.history, c.opts.MaxHistoryMessages)

	resp := &Response{Sources: sources}
	result, err := c.gen.Chat(ctx, messages, c.opts.Gen)
	switch {
	case err == nil:
		resp.Answer = result.Answer
		resp.TokensUsed = result.Tokens
		resp.ResponseTimeMs = result.LatencyMs
	default:
		resp.Answer, resp.ResponseTimeMs = failureAnswer(err)
		resp.Err = failureTag(err)
		c.log.Warn("rag: generation failed", "err", err)
	}

	c.pushExchange(query, resp.Answer)
	return resp, nil
}

// failureAnswer maps a generation failure to the actionable user-facing
// message that stands in for the answer, plus the latency to report.
func failureAnswer(err error) (string, int64) {
	var serr *ollama.ServiceError
	if !errors.As(err, &serr) {
		return fmt.Sprintf("Erreur: %v", err), 0
	}
	switch serr.Kind {
	case ollama.KindModelMissing:
		return fmt.Sprintf("Modèle %q non trouvé. Exécutez: ollama pull %s", serr.Model, serr.Model), serr.LatencyMs
	case ollama.KindBadStatus:
		return fmt.Sprintf("Erreur du service de génération (code %d).", serr.Status), serr.LatencyMs
	case ollama.KindTimeout:
		return msgTimeout, 0
	default:
		return msgUnreachable, 0
	}
}

func failureTag(err error) string {
	var serr *ollama.ServiceError
	if errors.As(err, &serr) {
		return "generation_" + string(serr.Kind)
	}
	return "generation_error"
}

// enrichFromGraph formats related heritage-graph sites as a supplementary
// context block. Best effort: any failure is logged and skipped.
func (c *Chatbot) enrichFromGraph(ctx context.Context, query string) string {
	keywords := ExtractKeywords(query)
	if len(keywords) == 0 {
		return ""
	}

	sites, err := c.graph.RelatedSites(ctx, keywords)
	if err != nil {
		c.log.Warn("rag: graph enrichment failed, continuing without", "err", err)
		return ""
	}
	if len(sites) == 0 {
		return ""
	}

	lines := []string{"Sites liés (graphe du patrimoine):"}
	for _, s := range sites {
		line := "- " + s.Name
		if s.Ville != "" {
			line += " (" + s.Ville + ")"
		}
		if s.Periode != "" {
			line += ", période: " + s.Periode
		}
		lines = append(lines, line)
	}
	out := lines[0]
	for _, l := range lines[1:] {
		out += "\n" + l
	}
	return out
}
