package app

import (
	"context"
	"errors"
	"strings"
	"time"

	"todohub/internal/ai"
	"todohub/internal/model"
	"todohub/internal/repository"
	"todohub/internal/sanitize"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrMessageEmpty    = errors.New("message content is empty")
	ErrMessageEnqueue  = errors.New("message enqueue failed")
)

// AsyncMessagePublisher hands chat messages to the persistence queue.
type AsyncMessagePublisher interface {
	Publish(ctx context.Context, msg model.ChatMessage) error
}

// HistoryCache is the Redis-backed history snapshot with dirty markers.
type HistoryCache interface {
	GetHistory(ctx context.Context, sessionID uint) ([]model.ChatMessage, bool, error)
	SetHistory(ctx context.Context, sessionID uint, messages []model.ChatMessage) error
	DeleteHistory(ctx context.Context, sessionID uint) error
	MarkDirty(ctx context.Context, sessionID uint) error
	IsDirty(ctx context.Context, sessionID uint) (bool, error)
}

// ConversationAgent turns a sanitized user message into an assistant reply,
// possibly dispatching a todo tool along the way.
type ConversationAgent interface {
	Respond(ctx context.Context, userID, sessionID uint, content string, history []ai.ChatMessage) (AgentReply, error)
}

type AgentReply struct {
	Content      string `json:"content"`
	Intent       string `json:"intent,omitempty"`
	InvocationID uint   `json:"invocation_id,omitempty"`
}

type ChatService struct {
	sessionRepo    *repository.SessionRepository
	messageRepo    *repository.MessageRepository
	invocationRepo *repository.ToolInvocationRepository
	publisher      AsyncMessagePublisher
	historyCache   HistoryCache
	agent          ConversationAgent
	maxContext     int
}

type CreateSessionInput struct {
	UserID uint
	Title  string
}

type PostMessageInput struct {
	UserID    uint
	SessionID uint
	Content   string
}

type PostMessageResult struct {
	Messages     []model.ChatMessage `json:"messages"`
	Intent       string              `json:"intent,omitempty"`
	InvocationID uint                `json:"invocation_id,omitempty"`
}

func NewChatService(
	sessionRepo *repository.SessionRepository,
	messageRepo *repository.MessageRepository,
	invocationRepo *repository.ToolInvocationRepository,
	publisher AsyncMessagePublisher,
	historyCache HistoryCache,
	agent ConversationAgent,
	maxContext int,
) *ChatService {
	if maxContext <= 0 {
		maxContext = 10
	}
	return &ChatService{
		sessionRepo:    sessionRepo,
		messageRepo:    messageRepo,
		invocationRepo: invocationRepo,
		publisher:      publisher,
		historyCache:   historyCache,
		agent:          agent,
		maxContext:     maxContext,
	}
}

func (s *ChatService) CreateSession(input CreateSessionInput) (*model.ChatSession, error) {
	if input.UserID == 0 {
		return nil, ErrInvalidInput
	}

	title := strings.TrimSpace(input.Title)
	if title == "" {
		title = "New Chat"
	}

	session := &model.ChatSession{
		UserID: input.UserID,
		Title:  title,
		Active: true,
	}
	if err := s.sessionRepo.Create(session); err != nil {
		return nil, err
	}
	return session, nil
}

func (s *ChatService) ListSessions(userID uint) ([]model.ChatSession, error) {
	if userID == 0 {
		return nil, ErrInvalidInput
	}
	return s.sessionRepo.ListByUserID(userID)
}

func (s *ChatService) DeleteSession(userID, sessionID uint) error {
	if userID == 0 || sessionID == 0 {
		return ErrInvalidInput
	}
	session, err := s.sessionRepo.GetByIDAndUserID(sessionID, userID)
	if err != nil {
		return err
	}
	if session == nil {
		return ErrSessionNotFound
	}
	if err := s.messageRepo.DeleteBySessionID(sessionID); err != nil {
		return err
	}
	if err := s.invocationRepo.DeleteBySessionID(sessionID); err != nil {
		return err
	}
	if err := s.sessionRepo.DeleteByIDAndUserID(sessionID, userID); err != nil {
		return err
	}
	if s.historyCache != nil {
		_ = s.historyCache.DeleteHistory(context.Background(), sessionID)
	}
	return nil
}

// PostMessage runs one conversation turn: the sanitized user message is
// enqueued for persistence, the agent produces a reply, and the reply is
// enqueued as well. Both messages come back to the caller immediately;
// the worker owns the database write.
func (s *ChatService) PostMessage(ctx context.Context, input PostMessageInput) (*PostMessageResult, error) {
	if input.UserID == 0 || input.SessionID == 0 {
		return nil, ErrInvalidInput
	}

	content := sanitize.Content(input.Content)
	if content == "" {
		return nil, ErrMessageEmpty
	}

	session, err := s.sessionRepo.GetByIDAndUserID(input.SessionID, input.UserID)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, ErrSessionNotFound
	}

	history, err := s.buildContextWindow(input.SessionID)
	if err != nil {
		return nil, err
	}

	userMessage := model.ChatMessage{
		SessionID: input.SessionID,
		UserID:    input.UserID,
		Role:      model.RoleUser,
		Content:   content,
		CreatedAt: time.Now(),
	}
	if s.publisher == nil {
		return nil, ErrMessageEnqueue
	}
	if s.historyCache != nil {
		_ = s.historyCache.MarkDirty(ctx, input.SessionID)
		_ = s.historyCache.DeleteHistory(ctx, input.SessionID)
	}
	if err := s.publisher.Publish(ctx, userMessage); err != nil {
		return nil, ErrMessageEnqueue
	}

	reply, err := s.agent.Respond(ctx, input.UserID, input.SessionID, content, history)
	if err != nil {
		return nil, err
	}
	replyContent := strings.TrimSpace(reply.Content)
	if replyContent == "" {
		replyContent = "I don't have a response for that."
	}

	assistantMessage := model.ChatMessage{
		SessionID: input.SessionID,
		UserID:    input.UserID,
		Role:      model.RoleAssistant,
		Content:   replyContent,
		CreatedAt: time.Now(),
	}
	if err := s.publisher.Publish(ctx, assistantMessage); err != nil {
		return nil, ErrMessageEnqueue
	}

	_ = s.sessionRepo.Touch(input.SessionID)

	return &PostMessageResult{
		Messages:     []model.ChatMessage{userMessage, assistantMessage},
		Intent:       reply.Intent,
		InvocationID: reply.InvocationID,
	}, nil
}

func (s *ChatService) GetHistory(userID, sessionID uint, limit int) ([]model.ChatMessage, error) {
	if userID == 0 || sessionID == 0 {
		return nil, ErrInvalidInput
	}

	session, err := s.sessionRepo.GetByIDAndUserID(sessionID, userID)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, ErrSessionNotFound
	}

	ctx := context.Background()
	if s.historyCache != nil {
		dirty, err := s.historyCache.IsDirty(ctx, sessionID)
		if err == nil && !dirty {
			if cached, hit, cacheErr := s.historyCache.GetHistory(ctx, sessionID); cacheErr == nil && hit {
				return trimMessages(cached, limit), nil
			}
		}
	}

	messages, err := s.messageRepo.ListBySessionID(sessionID, limit)
	if err != nil {
		return nil, err
	}
	if s.historyCache != nil {
		if dirty, dirtyErr := s.historyCache.IsDirty(ctx, sessionID); dirtyErr == nil && !dirty {
			_ = s.historyCache.SetHistory(ctx, sessionID, messages)
		}
	}
	return messages, nil
}

func (s *ChatService) ListInvocations(userID, sessionID uint, limit int) ([]model.ToolInvocation, error) {
	if userID == 0 || sessionID == 0 {
		return nil, ErrInvalidInput
	}

	session, err := s.sessionRepo.GetByIDAndUserID(sessionID, userID)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, ErrSessionNotFound
	}

	return s.invocationRepo.ListBySessionID(sessionID, limit)
}

func (s *ChatService) buildContextWindow(sessionID uint) ([]ai.ChatMessage, error) {
	recent, err := s.messageRepo.ListRecentBySessionID(sessionID, s.maxContext)
	if err != nil {
		return nil, err
	}

	window := make([]ai.ChatMessage, 0, len(recent))
	for _, item := range recent {
		role := item.Role
		if role == "" {
			role = model.RoleUser
		}
		window = append(window, ai.ChatMessage{
			Role:    role,
			Content: item.Content,
		})
	}
	return window, nil
}

func trimMessages(messages []model.ChatMessage, limit int) []model.ChatMessage {
	if limit <= 0 || limit >= len(messages) {
		return messages
	}
	return messages[len(messages)-limit:]
}
