// Package ollama provides HTTP clients for the Ollama embedding and chat
// APIs, plus a liveness probe against the model-tags endpoint.
package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"
)

// DefaultTimeout is the hard deadline on a generation call. Local models
// routinely take tens of seconds; on expiry the call is abandoned, never
// retried.
const DefaultTimeout = 120 * time.Second

// Message is one chat turn sent to the generation service.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// GenOptions are the decoding parameters for a generation call.
type GenOptions struct {
	Temperature float64
	TopP        float64
	MaxTokens   int
}

// DefaultGenOptions returns the decoding parameters tuned for grounded
// factual answers over the site corpus.
func DefaultGenOptions() GenOptions {
	return GenOptions{Temperature: 0.7, TopP: 0.9, MaxTokens: 500}
}

// ChatResult is a successful generation.
type ChatResult struct {
	Answer    string
	Tokens    int
	LatencyMs int64
}

// ChatClient calls Ollama's /api/chat endpoint synchronously (no streaming).
type ChatClient struct {
	baseURL string
	model   string
	client  *http.Client
}

// NewChatClient creates a chat client for the given model. A non-positive
// timeout falls back to DefaultTimeout.
func NewChatClient(baseURL, model string, timeout time.Duration) *ChatClient {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &ChatClient{
		baseURL: baseURL,
		model:   model,
		client:  &http.Client{Timeout: timeout},
	}
}

// Model returns the configured chat model name.
func (c *ChatClient) Model() string { return c.model }

type chatRequest struct {
	Model    string         `json:"model"`
	Messages []Message      `json:"messages"`
	Stream   bool           `json:"stream"`
	Options  map[string]any `json:"options"`
}

type chatResponse struct {
	Message struct {
		Content string `json:"content"`
	} `json:"message"`
	EvalCount int `json:"eval_count"`
}

// Chat sends the message sequence and returns the assistant reply with its
// token count and wall-clock latency. Failures come back as *ServiceError
// classified by kind; callers decide how to surface them.
func (c *ChatClient) Chat(ctx context.Context, messages []Message, opts GenOptions) (*ChatResult, error) {
	body, err := json.Marshal(chatRequest{
		Model:    c.model,
		Messages: messages,
		Stream:   false,
		Options: map[string]any{
			"temperature": opts.Temperature,
			"top_p":       opts.TopP,
			"num_predict": opts.MaxTokens,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("ollama: marshal chat request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/chat", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("ollama: build chat request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, &ServiceError{Kind: classifyTransport(err), Model: c.model, Err: err}
	}
	defer resp.Body.Close()

	latency := time.Since(start).Milliseconds()

	switch {
	case resp.StatusCode == http.StatusOK:
		// fall through to decode
	case resp.StatusCode == http.StatusNotFound:
		return nil, &ServiceError{Kind: KindModelMissing, Model: c.model, Status: resp.StatusCode, LatencyMs: latency}
	default:
		return nil, &ServiceError{Kind: KindBadStatus, Model: c.model, Status: resp.StatusCode, LatencyMs: latency}
	}

	var out chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("ollama: decode chat response: %w", err)
	}

	return &ChatResult{
		Answer:    out.Message.Content,
		Tokens:    out.EvalCount,
		LatencyMs: latency,
	}, nil
}

// classifyTransport separates deadline expiry from plain connection failure.
func classifyTransport(err error) ErrorKind {
	if errors.Is(err, context.DeadlineExceeded) {
		return KindTimeout
	}
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return KindTimeout
	}
	return KindUnreachable
}
