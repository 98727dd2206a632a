// Package ingest builds the vector index: it enriches each site record into
// dense French text, chunks it, embeds the chunks in one batch per document,
// and writes the records to the vector store in bounded batches. A reindex
// run destructively replaces the whole collection.
package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/carthago-ai/carthago/engine/corpus"
	"github.com/carthago-ai/carthago/engine/domain"
	"github.com/carthago-ai/carthago/engine/semantic"
	"github.com/carthago-ai/carthago/pkg/fn"
	"github.com/google/uuid"
)

// UpsertBatchSize bounds staged records per vector-store write.
const UpsertBatchSize = 500

// Embedder turns chunk texts into vectors, one call per document.
type Embedder interface {
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}

// ChunkStore is the slice of the vector store the indexer needs.
type ChunkStore interface {
	Recreate(ctx context.Context, dims int) error
	Drop(ctx context.Context) error
	Upsert(ctx context.Context, records []semantic.Record) error
}

// Indexer drives the reindex pipeline.
type Indexer struct {
	embedder  Embedder
	store     ChunkStore
	chunkOpts ChunkOptions
	batchSize int
	log       *slog.Logger
}

// NewIndexer creates an Indexer with default chunking and batch sizes.
func NewIndexer(embedder Embedder, store ChunkStore, log *slog.Logger) *Indexer {
	if log == nil {
		log = slog.Default()
	}
	return &Indexer{
		embedder:  embedder,
		store:     store,
		batchSize: UpsertBatchSize,
		log:       log,
	}
}

// Reindex rebuilds the collection from docs and returns the number of chunk
// records written. The existing collection is dropped and recreated (sized
// to the embedding dimensionality observed on the first document; dropped
// outright when no document yields records), so it must never run
// concurrently with queries against the same collection.
// Embedding or store failures abort the run; they are unrecoverable
// preconditions, unlike malformed corpus lines which were already skipped
// by the reader.
func (ix *Indexer) Reindex(ctx context.Context, docs []domain.SiteDocument) (int, error) {
	pipeline := ix.pipeline()

	written := 0
	recreated := false
	staged := make([]semantic.Record, 0, ix.batchSize)

	flush := func() error {
		if len(staged) == 0 {
			return nil
		}
		if err := ix.store.Upsert(ctx, staged); err != nil {
			return fmt.Errorf("ingest: flush %d records: %w", len(staged), err)
		}
		written += len(staged)
		staged = staged[:0]
		return nil
	}

	for i, doc := range docs {
		src := sourceDoc{doc: doc, docID: DocumentID(doc, i)}

		if strings.TrimSpace(corpus.Enrich(doc)) == "" {
			ix.log.Warn("ingest: skipping empty document", "doc_id", src.docID)
			continue
		}

		records, err := pipeline(ctx, src).Unwrap()
		if err != nil {
			return written, fmt.Errorf("ingest: document %s: %w", src.docID, err)
		}
		if len(records) == 0 {
			continue
		}

		if !recreated {
			dims := len(records[0].Embedding)
			if err := ix.store.Recreate(ctx, dims); err != nil {
				return written, fmt.Errorf("ingest: recreate collection: %w", err)
			}
			recreated = true
		}

		for _, rec := range records {
			staged = append(staged, rec)
			if len(staged) >= ix.batchSize {
				if err := flush(); err != nil {
					return written, err
				}
			}
		}
	}

	if err := flush(); err != nil {
		return written, err
	}

	// A rebuild is destructive even when nothing survived enrichment: drop
	// the old collection rather than leave stale chunks answering queries.
	if !recreated {
		if err := ix.store.Drop(ctx); err != nil {
			return written, fmt.Errorf("ingest: drop stale collection: %w", err)
		}
	}
	return written, nil
}

// pipeline composes the per-document stages: enrich → chunk → embed → stage.
func (ix *Indexer) pipeline() fn.Stage[sourceDoc, []semantic.Record] {
	enrich := fn.TracedStage("ingest.enrich", fn.MapStage(func(src sourceDoc) enrichedDoc {
		return enrichedDoc{sourceDoc: src, text: corpus.Enrich(src.doc)}
	}))

	chunk := fn.TracedStage("ingest.chunk", fn.MapStage(func(ed enrichedDoc) chunkedDoc {
		chunks := ChunkText(ed.text, ix.chunkOpts)
		fallback := false
		if len(chunks) == 0 {
			// Keep the whole enriched text as one chunk rather than
			// losing the document to the minimum-length filter.
			chunks = []string{ed.text}
			fallback = true
		}
		return chunkedDoc{enrichedDoc: ed, chunks: chunks, fallback: fallback}
	}))

	embed := fn.TracedStage("ingest.embed", fn.Stage[chunkedDoc, embeddedDoc](
		func(ctx context.Context, cd chunkedDoc) fn.Result[embeddedDoc] {
			embeddings, err := ix.embedder.EmbedBatch(ctx, cd.chunks)
			if err != nil {
				return fn.Errf[embeddedDoc]("embed %d chunks: %w", len(cd.chunks), err)
			}
			if len(embeddings) != len(cd.chunks) {
				return fn.Errf[embeddedDoc]("embedder returned %d vectors for %d chunks", len(embeddings), len(cd.chunks))
			}
			return fn.Ok(embeddedDoc{chunkedDoc: cd, embeddings: embeddings})
		}))

	stage := fn.TracedStage("ingest.stage", fn.TapStage(func(_ context.Context, ed embeddedDoc) {
		ix.log.Info("ingest: document chunked",
			"doc_id", ed.docID,
			"site", ed.doc.Site,
			"chunks", len(ed.chunks),
			"fallback", ed.fallback,
		)
	}))

	build := fn.MapStage(buildRecords)

	return fn.Then(fn.Then(fn.Then(enrich, chunk), fn.Then(embed, stage)), build)
}

// DocumentID resolves the stable per-document ID: the record's own id, or
// its corpus position when absent. Chunk IDs are scoped per document, so a
// re-run shifts IDs only if the document order itself changed.
func DocumentID(doc domain.SiteDocument, index int) string {
	if doc.ID != "" {
		return doc.ID
	}
	return strconv.Itoa(index)
}

// ChunkUID derives the stable chunk identifier persisted in the payload.
func ChunkUID(docID string, index int) string {
	return fmt.Sprintf("%s::chunk_%d", docID, index)
}

// pointID derives a deterministic UUID for Qdrant, which only accepts UUID
// or integer point IDs.
func pointID(chunkUID string) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(chunkUID)).String()
}

func buildRecords(ed embeddedDoc) []semantic.Record {
	records := make([]semantic.Record, len(ed.chunks))
	for i, text := range ed.chunks {
		uid := ChunkUID(ed.docID, i)
		records[i] = semantic.Record{
			ID:        pointID(uid),
			ChunkID:   uid,
			Content:   text,
			Embedding: ed.embeddings[i],
			Meta:      chunkMeta(ed.doc, ed.docID),
		}
	}
	return records
}

// chunkMeta flattens the site record into the string-valued payload carried
// by every chunk. Key names are part of the stored-data contract; the
// retriever reads them back verbatim.
func chunkMeta(doc domain.SiteDocument, docID string) map[string]string {
	return map[string]string{
		"source_id":   docID,
		"site":        doc.Site,
		"ville":       doc.Ville,
		"period":      doc.Periode,
		"statut":      doc.Statut,
		"source":      doc.Source,
		"coordonnees": doc.Coordonnees,
		"keywords":    strings.Join(doc.Keywords, ", "),
	}
}
