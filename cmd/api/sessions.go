package main

import (
	"context"
	"log/slog"
	"sync"

	"github.com/carthago-ai/carthago/engine/domain"
	"github.com/carthago-ai/carthago/engine/rag"
	"github.com/carthago-ai/carthago/pkg/history"
)

// session pairs a chatbot with the mutex that serializes its use: Chatbot
// history is caller-synchronized, and concurrent requests may share a
// session id.
type session struct {
	mu  sync.Mutex
	bot *rag.Chatbot
}

// sessionHub keeps one chatbot per session id. Transcripts are persisted
// through the history collaborator when one is configured; persistence
// failures are logged and never block an answer.
type sessionHub struct {
	mu          sync.Mutex
	sessions    map[string]*session
	newBot      func() *rag.Chatbot
	probe       *rag.Chatbot
	transcripts *history.Client
	log         *slog.Logger
}

func newSessionHub(newBot func() *rag.Chatbot, transcripts *history.Client, log *slog.Logger) *sessionHub {
	return &sessionHub{
		sessions: make(map[string]*session),
		newBot:   newBot,
		// The probe bot serves health checks only; it never answers, so
		// health stays responsive while sessions hold their locks.
		probe:       newBot(),
		transcripts: transcripts,
		log:         log,
	}
}

// get returns the session, creating and seeding it on first use.
func (h *sessionHub) get(ctx context.Context, sessionID string) *session {
	h.mu.Lock()
	defer h.mu.Unlock()

	if sess, ok := h.sessions[sessionID]; ok {
		return sess
	}
	sess := &session{bot: h.newBot()}
	if h.transcripts != nil {
		turns, err := h.transcripts.LoadTurns(ctx, sessionID)
		if err != nil {
			h.log.Warn("transcript load failed", "session", sessionID, "err", err)
		} else if len(turns) > 0 {
			sess.bot.LoadHistory(turns)
		}
	}
	h.sessions[sessionID] = sess
	return sess
}

// answer runs one exchange under the session's lock and persists it.
func (h *sessionHub) answer(ctx context.Context, sessionID, question string, topK int) (*rag.Response, error) {
	sess := h.get(ctx, sessionID)

	sess.mu.Lock()
	resp, err := sess.bot.AnswerTopK(ctx, question, topK)
	sess.mu.Unlock()
	if err != nil {
		return nil, err
	}

	h.recordExchange(ctx, sessionID, question, resp.Answer)
	return resp, nil
}

// recordExchange appends the question and answer to the persisted transcript.
func (h *sessionHub) recordExchange(ctx context.Context, sessionID, question, answer string) {
	if h.transcripts == nil {
		return
	}
	for _, turn := range []domain.ConversationTurn{
		{Role: domain.RoleUser, Content: question},
		{Role: domain.RoleAssistant, Content: answer},
	} {
		if err := h.transcripts.AppendTurn(ctx, sessionID, turn); err != nil {
			h.log.Warn("transcript append failed", "session", sessionID, "err", err)
			return
		}
	}
}

// clear resets the session's in-memory history and persisted transcript.
func (h *sessionHub) clear(ctx context.Context, sessionID string) {
	h.mu.Lock()
	sess, ok := h.sessions[sessionID]
	h.mu.Unlock()
	if ok {
		sess.mu.Lock()
		sess.bot.ClearHistory()
		sess.mu.Unlock()
	}
	if h.transcripts != nil {
		if err := h.transcripts.Clear(ctx, sessionID); err != nil {
			h.log.Warn("transcript clear failed", "session", sessionID, "err", err)
		}
	}
}
