package rag

import "github.com/carthago-ai/carthago/pkg/ollama"

// Defaults for the answering pipeline.
const (
	DefaultTopK = 5
	// MaxHistoryMessages bounds the turns replayed into each prompt; the
	// in-memory window keeps twice that (user+assistant pairs).
	MaxHistoryMessages = 6
	// MaxInputLength is the sanitization cap in characters.
	MaxInputLength = 500
)

// Options configures a Chatbot.
type Options struct {
	TopK               int
	MaxHistoryMessages int
	MaxInputLength     int
	Gen                ollama.GenOptions
	// UseGraph enables best-effort heritage-graph enrichment when a graph
	// enricher is wired in.
	UseGraph bool
}

// DefaultOptions returns the pipeline defaults.
func DefaultOptions() Options {
	return Options{
		TopK:               DefaultTopK,
		MaxHistoryMessages: MaxHistoryMessages,
		MaxInputLength:     MaxInputLength,
		Gen:                ollama.DefaultGenOptions(),
		UseGraph:           true,
	}
}

func (o Options) withDefaults() Options {
	if o.TopK <= 0 {
		o.TopK = DefaultTopK
	}
	if o.MaxHistoryMessages <= 0 {
		o.MaxHistoryMessages = MaxHistoryMessages
	}
	if o.MaxInputLength <= 0 {
		o.MaxInputLength = MaxInputLength
	}
	if o.Gen == (ollama.GenOptions{}) {
		o.Gen = ollama.DefaultGenOptions()
	}
	return o
}
