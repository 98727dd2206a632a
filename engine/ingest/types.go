package ingest

import "github.com/carthago-ai/carthago/engine/domain"

// sourceDoc pairs a corpus record with its resolved document ID (the
// record's own id, or its position in the corpus when the id is absent).
type sourceDoc struct {
	doc   domain.SiteDocument
	docID string
}

// enrichedDoc carries the dense French text built for embedding.
type enrichedDoc struct {
	sourceDoc
	text string
}

// chunkedDoc carries the chunk sequence. fallback marks the single
// whole-text chunk emitted when filtering left the document empty.
type chunkedDoc struct {
	enrichedDoc
	chunks   []string
	fallback bool
}

// embeddedDoc carries one vector per chunk, in chunk order.
type embeddedDoc struct {
	chunkedDoc
	embeddings [][]float32
}
