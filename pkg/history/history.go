// Package history stores conversation transcripts through a NATS
// request/reply collaborator, with OpenTelemetry trace propagation.
package history

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"go.opentelemetry.io/otel"

	"github.com/carthago-ai/carthago/engine/domain"
)

// Subjects of the transcript collaborator.
const (
	SubjectAppend = "transcripts.append"
	SubjectLoad   = "transcripts.load"
	SubjectClear  = "transcripts.clear"
)

const defaultTimeout = 5 * time.Second

type appendRequest struct {
	SessionID string                  `json:"session_id"`
	Turn      domain.ConversationTurn `json:"turn"`
}

type sessionRequest struct {
	SessionID string `json:"session_id"`
}

type loadResponse struct {
	Turns []domain.ConversationTurn `json:"turns"`
}

type ack struct {
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}

// Client talks to the transcript service. The zero value is not usable;
// construct with New or NewWithConn.
type Client struct {
	nc      *nats.Conn
	timeout time.Duration
	owned   bool
}

// New dials the NATS server at url and returns a transcript client that
// owns the connection.
func New(url string) (*Client, error) {
	nc, err := nats.Connect(url, nats.Name("carthago-transcripts"))
	if err != nil {
		return nil, fmt.Errorf("connect transcript service: %w", err)
	}
	return &Client{nc: nc, timeout: defaultTimeout, owned: true}, nil
}

// NewWithConn wraps an existing connection. Close becomes a no-op.
func NewWithConn(nc *nats.Conn) *Client {
	return &Client{nc: nc, timeout: defaultTimeout}
}

// Close releases the connection if the client owns it.
func (c *Client) Close() {
	if c.owned && c.nc != nil {
		c.nc.Close()
	}
}

// AppendTurn records one turn at the end of the session's transcript.
func (c *Client) AppendTurn(ctx context.Context, sessionID string, turn domain.ConversationTurn) error {
	var resp ack
	if err := c.request(ctx, SubjectAppend, appendRequest{SessionID: sessionID, Turn: turn}, &resp); err != nil {
		return fmt.Errorf("append turn: %w", err)
	}
	if !resp.OK {
		return fmt.Errorf("append turn: %s", resp.Error)
	}
	return nil
}

// LoadTurns returns the session's transcript, oldest turn first.
func (c *Client) LoadTurns(ctx context.Context, sessionID string) ([]domain.ConversationTurn, error) {
	var resp loadResponse
	if err := c.request(ctx, SubjectLoad, sessionRequest{SessionID: sessionID}, &resp); err != nil {
		return nil, fmt.Errorf("load turns: %w", err)
	}
	return resp.Turns, nil
}

// Clear drops the session's transcript.
func (c *Client) Clear(ctx context.Context, sessionID string) error {
	var resp ack
	if err := c.request(ctx, SubjectClear, sessionRequest{SessionID: sessionID}, &resp); err != nil {
		return fmt.Errorf("clear transcript: %w", err)
	}
	if !resp.OK {
		return fmt.Errorf("clear transcript: %s", resp.Error)
	}
	return nil
}

func (c *Client) request(ctx context.Context, subject string, req, resp any) error {
	data, err := json.Marshal(req)
	if err != nil {
		return err
	}
	msg := &nats.Msg{Subject: subject, Data: data}
	otel.GetTextMapPropagator().Inject(ctx, (*natsHeaderCarrier)(msg))

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	reply, err := c.nc.RequestMsgWithContext(ctx, msg)
	if err != nil {
		return err
	}
	return json.Unmarshal(reply.Data, resp)
}

// natsHeaderCarrier adapts nats.Msg headers for OTel TextMapCarrier.
type natsHeaderCarrier nats.Msg

func (c *natsHeaderCarrier) Get(key string) string {
	if c.Header == nil {
		return ""
	}
	return c.Header.Get(key)
}

func (c *natsHeaderCarrier) Set(key, val string) {
	if c.Header == nil {
		c.Header = make(nats.Header)
	}
	c.Header.Set(key, val)
}

func (c *natsHeaderCarrier) Keys() []string {
	if c.Header == nil {
		return nil
	}
	keys := make([]string, 0, len(c.Header))
	for k := range c.Header {
		keys = append(keys, k)
	}
	return keys
}
