package rag

import "context"

// CollectionStats reports the indexed chunk count alongside the collection
// and embedding-model names.
func (c *Chatbot) CollectionStats(ctx context.Context) (Stats, error) {
	stats := Stats{
		CollectionName: c.search.Collection(),
		EmbeddingModel: c.embedder.Model(),
	}
	count, err := c.search.Count(ctx)
	if err != nil {
		return stats, err
	}
	stats.DocumentCount = count
	return stats, nil
}

// GenerationServiceStatus probes the generation service: liveness, the
// configured model, and whether that model is available locally.
func (c *Chatbot) GenerationServiceStatus(ctx context.Context) ServiceStatus {
	st := c.gen.Status(ctx)
	return ServiceStatus{
		Status:         st.Status,
		Message:        st.Message,
		CurrentModel:   st.CurrentModel,
		ModelAvailable: st.ModelAvailable,
		Models:         st.Models,
	}
}

// ServiceStatus mirrors the generation-service health report at the core's
// boundary so API callers don't couple to the client package.
type ServiceStatus struct {
	Status         string   `json:"status"`
	Message        string   `json:"message,omitempty"`
	Models         []string `json:"models,omitempty"`
	CurrentModel   string   `json:"current_model"`
	ModelAvailable bool     `json:"model_available"`
}
