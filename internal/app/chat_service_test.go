package app

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"todohub/internal/ai"
	"todohub/internal/model"
	"todohub/internal/repository"
)

type capturingPublisher struct {
	published []model.ChatMessage
	err       error
}

func (p *capturingPublisher) Publish(_ context.Context, msg model.ChatMessage) error {
	if p.err != nil {
		return p.err
	}
	p.published = append(p.published, msg)
	return nil
}

type fakeHistoryCache struct {
	history map[uint][]model.ChatMessage
	dirty   map[uint]bool
	sets    int
	deletes int
}

func newFakeHistoryCache() *fakeHistoryCache {
	return &fakeHistoryCache{
		history: make(map[uint][]model.ChatMessage),
		dirty:   make(map[uint]bool),
	}
}

func (c *fakeHistoryCache) GetHistory(_ context.Context, sessionID uint) ([]model.ChatMessage, bool, error) {
	msgs, ok := c.history[sessionID]
	return msgs, ok, nil
}

func (c *fakeHistoryCache) SetHistory(_ context.Context, sessionID uint, messages []model.ChatMessage) error {
	c.history[sessionID] = messages
	c.sets++
	return nil
}

func (c *fakeHistoryCache) DeleteHistory(_ context.Context, sessionID uint) error {
	delete(c.history, sessionID)
	c.deletes++
	return nil
}

func (c *fakeHistoryCache) MarkDirty(_ context.Context, sessionID uint) error {
	c.dirty[sessionID] = true
	return nil
}

func (c *fakeHistoryCache) IsDirty(_ context.Context, sessionID uint) (bool, error) {
	return c.dirty[sessionID], nil
}

type fixedAgent struct {
	reply       AgentReply
	err         error
	lastContent string
	lastHistory []ai.ChatMessage
}

func (a *fixedAgent) Respond(_ context.Context, _, _ uint, content string, history []ai.ChatMessage) (AgentReply, error) {
	a.lastContent = content
	a.lastHistory = history
	if a.err != nil {
		return AgentReply{}, a.err
	}
	return a.reply, nil
}

type chatFixture struct {
	svc       *ChatService
	db        *gorm.DB
	publisher *capturingPublisher
	cache     *fakeHistoryCache
	agent     *fixedAgent
}

func newChatFixture(t *testing.T) *chatFixture {
	t.Helper()
	db := newTestDB(t)
	publisher := &capturingPublisher{}
	cache := newFakeHistoryCache()
	agent := &fixedAgent{reply: AgentReply{Content: "done", Intent: "create_task"}}
	svc := NewChatService(
		repository.NewSessionRepository(db),
		repository.NewMessageRepository(db),
		repository.NewToolInvocationRepository(db),
		publisher,
		cache,
		agent,
		10,
	)
	return &chatFixture{svc: svc, db: db, publisher: publisher, cache: cache, agent: agent}
}

func (f *chatFixture) createSession(t *testing.T, userID uint) *model.ChatSession {
	t.Helper()
	session, err := f.svc.CreateSession(CreateSessionInput{UserID: userID})
	require.NoError(t, err)
	return session
}

func TestCreateSessionDefaultTitle(t *testing.T) {
	f := newChatFixture(t)

	session := f.createSession(t, 1)
	require.Equal(t, "New Chat", session.Title)
	require.True(t, session.Active)

	named, err := f.svc.CreateSession(CreateSessionInput{UserID: 1, Title: "  groceries  "})
	require.NoError(t, err)
	require.Equal(t, "groceries", named.Title)

	sessions, err := f.svc.ListSessions(1)
	require.NoError(t, err)
	require.Len(t, sessions, 2)
}

func TestPostMessageEnqueuesBothMessages(t *testing.T) {
	f := newChatFixture(t)
	session := f.createSession(t, 1)

	result, err := f.svc.PostMessage(context.Background(), PostMessageInput{
		UserID:    1,
		SessionID: session.ID,
		Content:   "add buy milk",
	})
	require.NoError(t, err)
	require.Len(t, result.Messages, 2)
	require.Equal(t, model.RoleUser, result.Messages[0].Role)
	require.Equal(t, "add buy milk", result.Messages[0].Content)
	require.Equal(t, model.RoleAssistant, result.Messages[1].Role)
	require.Equal(t, "done", result.Messages[1].Content)
	require.Equal(t, "create_task", result.Intent)

	require.Len(t, f.publisher.published, 2)
	require.True(t, f.cache.dirty[session.ID], "posting must mark the cached history dirty")
}

func TestPostMessageSanitizesContent(t *testing.T) {
	f := newChatFixture(t)
	session := f.createSession(t, 1)

	_, err := f.svc.PostMessage(context.Background(), PostMessageInput{
		UserID:    1,
		SessionID: session.ID,
		Content:   "add <script>alert(1)</script> buy milk",
	})
	require.NoError(t, err)
	require.NotContains(t, f.agent.lastContent, "<script>")
	require.Contains(t, f.agent.lastContent, "buy milk")
}

func TestPostMessageRejectsEmptyContent(t *testing.T) {
	f := newChatFixture(t)
	session := f.createSession(t, 1)

	_, err := f.svc.PostMessage(context.Background(), PostMessageInput{
		UserID:    1,
		SessionID: session.ID,
		Content:   "   ",
	})
	require.ErrorIs(t, err, ErrMessageEmpty)

	// Content that sanitizes down to nothing is empty too.
	_, err = f.svc.PostMessage(context.Background(), PostMessageInput{
		UserID:    1,
		SessionID: session.ID,
		Content:   "<script>alert(1)</script>",
	})
	require.ErrorIs(t, err, ErrMessageEmpty)
}

func TestPostMessageUnknownSession(t *testing.T) {
	f := newChatFixture(t)

	_, err := f.svc.PostMessage(context.Background(), PostMessageInput{
		UserID:    1,
		SessionID: 999,
		Content:   "hello",
	})
	require.ErrorIs(t, err, ErrSessionNotFound)
}

func TestPostMessageSessionOwnership(t *testing.T) {
	f := newChatFixture(t)
	session := f.createSession(t, 1)

	_, err := f.svc.PostMessage(context.Background(), PostMessageInput{
		UserID:    2,
		SessionID: session.ID,
		Content:   "hello",
	})
	require.ErrorIs(t, err, ErrSessionNotFound)
}

func TestPostMessagePassesHistoryToAgent(t *testing.T) {
	f := newChatFixture(t)
	session := f.createSession(t, 1)

	// Simulate the persistence worker having written earlier turns.
	base := time.Now().Add(-time.Minute)
	require.NoError(t, f.db.Create(&model.ChatMessage{
		SessionID: session.ID, UserID: 1, Role: model.RoleUser, Content: "first",
		CreatedAt: base,
	}).Error)
	require.NoError(t, f.db.Create(&model.ChatMessage{
		SessionID: session.ID, UserID: 1, Role: model.RoleAssistant, Content: "reply",
		CreatedAt: base.Add(time.Second),
	}).Error)

	_, err := f.svc.PostMessage(context.Background(), PostMessageInput{
		UserID:    1,
		SessionID: session.ID,
		Content:   "second",
	})
	require.NoError(t, err)
	require.Len(t, f.agent.lastHistory, 2)
	require.Equal(t, "first", f.agent.lastHistory[0].Content)
	require.Equal(t, model.RoleAssistant, f.agent.lastHistory[1].Role)
}

func TestPostMessageBlankReplyGetsFallback(t *testing.T) {
	f := newChatFixture(t)
	f.agent.reply = AgentReply{Content: "   "}
	session := f.createSession(t, 1)

	result, err := f.svc.PostMessage(context.Background(), PostMessageInput{
		UserID:    1,
		SessionID: session.ID,
		Content:   "hello",
	})
	require.NoError(t, err)
	require.Equal(t, "I don't have a response for that.", result.Messages[1].Content)
}

func TestGetHistoryUsesCacheWhenClean(t *testing.T) {
	f := newChatFixture(t)
	session := f.createSession(t, 1)

	cached := []model.ChatMessage{{SessionID: session.ID, Role: model.RoleUser, Content: "from cache"}}
	require.NoError(t, f.cache.SetHistory(context.Background(), session.ID, cached))

	history, err := f.svc.GetHistory(1, session.ID, 0)
	require.NoError(t, err)
	require.Len(t, history, 1)
	require.Equal(t, "from cache", history[0].Content)
}

func TestGetHistorySkipsCacheWhenDirty(t *testing.T) {
	f := newChatFixture(t)
	session := f.createSession(t, 1)

	stale := []model.ChatMessage{{SessionID: session.ID, Role: model.RoleUser, Content: "stale"}}
	require.NoError(t, f.cache.SetHistory(context.Background(), session.ID, stale))
	require.NoError(t, f.cache.MarkDirty(context.Background(), session.ID))

	require.NoError(t, f.db.Create(&model.ChatMessage{
		SessionID: session.ID, UserID: 1, Role: model.RoleUser, Content: "fresh",
	}).Error)

	history, err := f.svc.GetHistory(1, session.ID, 0)
	require.NoError(t, err)
	require.Len(t, history, 1)
	require.Equal(t, "fresh", history[0].Content)
}

func TestGetHistoryLimit(t *testing.T) {
	f := newChatFixture(t)
	session := f.createSession(t, 1)

	for _, content := range []string{"one", "two", "three"} {
		require.NoError(t, f.db.Create(&model.ChatMessage{
			SessionID: session.ID, UserID: 1, Role: model.RoleUser, Content: content,
		}).Error)
	}

	history, err := f.svc.GetHistory(1, session.ID, 2)
	require.NoError(t, err)
	require.Len(t, history, 2)
}

func TestDeleteSessionRemovesEverything(t *testing.T) {
	f := newChatFixture(t)
	session := f.createSession(t, 1)

	require.NoError(t, f.db.Create(&model.ChatMessage{
		SessionID: session.ID, UserID: 1, Role: model.RoleUser, Content: "hello",
	}).Error)
	invocation := &model.ToolInvocation{SessionID: session.ID, UserID: 1, ToolName: "create_task"}
	require.NoError(t, f.db.Create(invocation).Error)

	require.NoError(t, f.svc.DeleteSession(1, session.ID))

	sessions, err := f.svc.ListSessions(1)
	require.NoError(t, err)
	require.Empty(t, sessions)

	var msgCount, invCount int64
	require.NoError(t, f.db.Model(&model.ChatMessage{}).Where("session_id = ?", session.ID).Count(&msgCount).Error)
	require.NoError(t, f.db.Model(&model.ToolInvocation{}).Where("session_id = ?", session.ID).Count(&invCount).Error)
	require.Zero(t, msgCount)
	require.Zero(t, invCount)
	require.NotZero(t, f.cache.deletes, "session deletion must drop the cached history")
}

func TestDeleteSessionUnknown(t *testing.T) {
	f := newChatFixture(t)
	require.ErrorIs(t, f.svc.DeleteSession(1, 42), ErrSessionNotFound)
}

func TestListInvocations(t *testing.T) {
	f := newChatFixture(t)
	session := f.createSession(t, 1)

	invocation := &model.ToolInvocation{
		SessionID: session.ID,
		UserID:    1,
		ToolName:  "create_task",
		Status:    model.InvocationSuccess,
	}
	require.NoError(t, f.db.Create(invocation).Error)

	invocations, err := f.svc.ListInvocations(1, session.ID, 0)
	require.NoError(t, err)
	require.Len(t, invocations, 1)
	require.Equal(t, "create_task", invocations[0].ToolName)

	_, err = f.svc.ListInvocations(2, session.ID, 0)
	require.ErrorIs(t, err, ErrSessionNotFound)
}
