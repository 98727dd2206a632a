package rag

import "github.com/carthago-ai/carthago/engine/domain"

// pushExchange appends the (query, answer) pair and slides the window: the
// buffer never exceeds MaxHistoryMessages user+assistant pairs, oldest
// dropped first.
func (c *Chatbot) pushExchange(query, answer string) {
	c.history = append(c.history,
		domain.ConversationTurn{Role: domain.RoleUser, Content: query},
		domain.ConversationTurn{Role: domain.RoleAssistant, Content: answer},
	)
	if max := c.opts.MaxHistoryMessages * 2; len(c.history) > max {
		c.history = append(c.history[:0:0], c.history[len(c.history)-max:]...)
	}
}

// LoadHistory replaces the in-memory window with turns restored by the
// persistence collaborator, keeping only the most recent ones. Turns with
// unknown roles are dropped.
func (c *Chatbot) LoadHistory(turns []domain.ConversationTurn) {
	c.history = c.history[:0]
	if len(turns) > c.opts.MaxHistoryMessages {
		turns = turns[len(turns)-c.opts.MaxHistoryMessages:]
	}
	for _, t := range turns {
		if domain.ValidateTurn(t) != nil {
			continue
		}
		c.history = append(c.history, t)
	}
}

// ClearHistory empties the conversation window.
func (c *Chatbot) ClearHistory() {
	c.history = nil
}

// History returns a copy of the current window.
func (c *Chatbot) History() []domain.ConversationTurn {
	out := make([]domain.ConversationTurn, len(c.history))
	copy(out, c.history)
	return out
}
