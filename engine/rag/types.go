package rag

// Source is one deduplicated citation backing an answer: at most one per
// distinct site per retrieval, the most similar chunk winning.
type Source struct {
	Site        string   `json:"site"`
	Ville       string   `json:"ville"`
	Periode     string   `json:"periode"`
	Source      string   `json:"source"`
	Coordonnees string   `json:"coordonnees"`
	// Relevance is 1 − distance, in [0,1]; nil when the store reported no
	// distance for the hit.
	Relevance *float64 `json:"relevance,omitempty"`
}

// Response is the structured result of one Answer call. Generation-service
// failures surface as a human-readable Answer plus a machine-readable Err
// tag; they are never returned as Go errors, so a conversational caller
// always has renderable content.
type Response struct {
	Answer         string   `json:"answer"`
	Sources        []Source `json:"sources"`
	TokensUsed     int      `json:"tokens_used"`
	ResponseTimeMs int64    `json:"response_time_ms"`
	Err            string   `json:"error,omitempty"`
}

// Err tags for the absorbed failure categories.
const (
	ErrTagInvalidQuery = "invalid_query"
	ErrTagNoContext    = "no_context"
)

// Stats describes the indexed collection.
type Stats struct {
	DocumentCount  uint64 `json:"document_count"`
	CollectionName string `json:"collection_name"`
	EmbeddingModel string `json:"embedding_model"`
}
