package semantic

// Record is a single embedded chunk staged for upsert.
type Record struct {
	ID        string // Qdrant point ID (UUID)
	ChunkID   string // stable "{docID}::chunk_{i}" identifier
	Content   string
	Embedding []float32
	Meta      map[string]string
}

// SearchResult is a single nearest-neighbor hit. Distance is the cosine
// distance (1 − similarity score); lower means more relevant. Results come
// back ordered most similar first.
type SearchResult struct {
	ID       string            `json:"id"`
	ChunkID  string            `json:"chunk_id"`
	Score    float32           `json:"score"`
	Distance float32           `json:"distance"`
	Content  string            `json:"content"`
	Meta     map[string]string `json:"meta"`
}
