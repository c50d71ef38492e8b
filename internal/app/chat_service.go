package app

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"newsrag/internal/model"
	"newsrag/internal/session"
)

var ErrMessageEmpty = errors.New("message content is empty")

// ChatService handles one conversational turn: persist the user message, run
// the query pipeline, persist the assistant reply. Session-store failures are
// logged but never block answering; the store itself guarantees a failed
// mutation leaves prior state intact.
type ChatService struct {
	query    *QueryService
	sessions session.Store
	logger   *zap.Logger
}

type ChatResult struct {
	SessionID       string         `json:"session_id"`
	Answer          string         `json:"answer"`
	Sources         []model.Source `json:"sources"`
	Confidence      float32        `json:"confidence"`
	RetrievedChunks int            `json:"retrieved_chunks"`
	Timestamp       time.Time      `json:"timestamp"`
}

func NewChatService(query *QueryService, sessions session.Store, logger *zap.Logger) *ChatService {
	return &ChatService{query: query, sessions: sessions, logger: logger}
}

// HandleMessage answers one message. An empty session id starts a new
// session.
func (s *ChatService) HandleMessage(ctx context.Context, sessionID, content string) (*ChatResult, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, ErrMessageEmpty
	}
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	if err := s.sessions.AppendMessage(ctx, sessionID, model.RoleUser, content); err != nil {
		s.logger.Warn("store user message failed",
			zap.String("session_id", sessionID),
			zap.Error(err),
		)
	}

	result := s.query.Answer(ctx, content)

	if err := s.sessions.AppendMessage(ctx, sessionID, model.RoleAssistant, result.Answer); err != nil {
		s.logger.Warn("store assistant message failed",
			zap.String("session_id", sessionID),
			zap.Error(err),
		)
	}

	return &ChatResult{
		SessionID:       sessionID,
		Answer:          result.Answer,
		Sources:         result.Sources,
		Confidence:      result.Confidence,
		RetrievedChunks: result.RetrievedChunks,
		Timestamp:       time.Now().UTC(),
	}, nil
}
