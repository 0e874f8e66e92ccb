package agent

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"todohub/internal/ai"
	"todohub/internal/app"
	"todohub/internal/model"
	"todohub/internal/repository"
)

func newTestAgent(t *testing.T) (*Agent, *repository.ToolInvocationRepository, *app.TaskService) {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&model.Task{}, &model.ToolInvocation{}))

	taskService := app.NewTaskService(repository.NewTaskRepository(db))
	invocationRepo := repository.NewToolInvocationRepository(db)
	// Empty LLM config keeps the fallback offline.
	a := New(NewRegistry(taskService, invocationRepo), ai.ChatConfig{})
	return a, invocationRepo, taskService
}

func TestRespondCreateTask(t *testing.T) {
	a, invocations, tasks := newTestAgent(t)

	reply, err := a.Respond(context.Background(), 1, 7, "create a task to buy groceries", nil)
	require.NoError(t, err)
	require.Equal(t, IntentCreate, reply.Intent)
	require.Contains(t, reply.Content, "buy groceries")
	require.NotZero(t, reply.InvocationID)

	created, err := tasks.ListTasks(1, app.TaskFilterAll)
	require.NoError(t, err)
	require.Len(t, created, 1)
	require.Equal(t, "buy groceries", created[0].Title)

	records, err := invocations.ListBySessionID(7, 0)
	require.NoError(t, err)
	require.Len(t, records, 1)
	require.Equal(t, IntentCreate, records[0].ToolName)
	require.Equal(t, model.InvocationSuccess, records[0].Status)
	require.Contains(t, records[0].Arguments, "buy groceries")
}

func TestRespondCreateWithoutTitleAsksForClarification(t *testing.T) {
	a, invocations, _ := newTestAgent(t)

	reply, err := a.Respond(context.Background(), 1, 7, "create a task", nil)
	require.NoError(t, err)
	require.Equal(t, IntentCreate, reply.Intent)
	require.Contains(t, reply.Content, "specify")
	require.Zero(t, reply.InvocationID)

	records, err := invocations.ListBySessionID(7, 0)
	require.NoError(t, err)
	require.Empty(t, records, "no tool should run without a title")
}

func TestRespondListTasks(t *testing.T) {
	a, _, tasks := newTestAgent(t)

	_, err := tasks.CreateTask(app.CreateTaskInput{UserID: 1, Title: "walk the dog"})
	require.NoError(t, err)
	done, err := tasks.CreateTask(app.CreateTaskInput{UserID: 1, Title: "pay rent"})
	require.NoError(t, err)
	_, err = tasks.SetTaskCompleted(1, done.ID, true)
	require.NoError(t, err)

	reply, err := a.Respond(context.Background(), 1, 7, "show my tasks", nil)
	require.NoError(t, err)
	require.Equal(t, IntentList, reply.Intent)
	require.Contains(t, reply.Content, "1. ○ walk the dog")
	require.Contains(t, reply.Content, "2. ✓ pay rent")

	reply, err = a.Respond(context.Background(), 1, 7, "show my completed tasks", nil)
	require.NoError(t, err)
	require.Contains(t, reply.Content, "pay rent")
	require.NotContains(t, reply.Content, "walk the dog")
}

func TestRespondListEmpty(t *testing.T) {
	a, _, _ := newTestAgent(t)

	reply, err := a.Respond(context.Background(), 1, 7, "list pending tasks", nil)
	require.NoError(t, err)
	require.Equal(t, "You don't have any pending tasks.", reply.Content)
}

func TestRespondCompleteByNumber(t *testing.T) {
	a, invocations, tasks := newTestAgent(t)

	_, err := tasks.CreateTask(app.CreateTaskInput{UserID: 1, Title: "first"})
	require.NoError(t, err)
	second, err := tasks.CreateTask(app.CreateTaskInput{UserID: 1, Title: "second"})
	require.NoError(t, err)

	reply, err := a.Respond(context.Background(), 1, 7, "mark task #2 as complete", nil)
	require.NoError(t, err)
	require.Equal(t, IntentComplete, reply.Intent)
	require.Contains(t, reply.Content, "'second'")

	updated, err := tasks.GetTask(1, second.ID)
	require.NoError(t, err)
	require.True(t, updated.Completed)

	records, err := invocations.ListBySessionID(7, 0)
	require.NoError(t, err)
	require.Len(t, records, 1)
	require.Equal(t, model.InvocationSuccess, records[0].Status)
}

func TestRespondCompleteByTitleFragment(t *testing.T) {
	a, _, tasks := newTestAgent(t)

	created, err := tasks.CreateTask(app.CreateTaskInput{UserID: 1, Title: "grocery run"})
	require.NoError(t, err)

	reply, err := a.Respond(context.Background(), 1, 7, "mark grocery as done", nil)
	require.NoError(t, err)
	require.Contains(t, reply.Content, "'grocery run'")

	updated, err := tasks.GetTask(1, created.ID)
	require.NoError(t, err)
	require.True(t, updated.Completed)
}

func TestRespondCompleteUnknownNumber(t *testing.T) {
	a, _, tasks := newTestAgent(t)

	_, err := tasks.CreateTask(app.CreateTaskInput{UserID: 1, Title: "only one"})
	require.NoError(t, err)

	reply, err := a.Respond(context.Background(), 1, 7, "mark task #5 as complete", nil)
	require.NoError(t, err)
	require.Contains(t, reply.Content, "doesn't exist")
	require.Contains(t, reply.Content, "1 tasks")
}

func TestRespondUpdateAndDeleteAskForDetails(t *testing.T) {
	a, _, _ := newTestAgent(t)

	reply, err := a.Respond(context.Background(), 1, 7, "update the report task", nil)
	require.NoError(t, err)
	require.Equal(t, IntentUpdate, reply.Intent)
	require.Contains(t, reply.Content, "Update task #1")

	reply, err = a.Respond(context.Background(), 1, 7, "delete a task", nil)
	require.NoError(t, err)
	require.Equal(t, IntentDelete, reply.Intent)
	require.Contains(t, reply.Content, "Delete task #1")
}

func TestRespondSmallTalkWithoutLLM(t *testing.T) {
	a, _, _ := newTestAgent(t)

	reply, err := a.Respond(context.Background(), 1, 7, "hello", nil)
	require.NoError(t, err)
	require.Equal(t, IntentNone, reply.Intent)
	require.Contains(t, reply.Content, "manage your tasks")
}

func TestDispatchRecordsErrorStatus(t *testing.T) {
	a, invocations, _ := newTestAgent(t)

	_, _, err := a.registry.Dispatch(1, 7, IntentCreate, map[string]any{"title": ""})
	require.Error(t, err)

	records, err := invocations.ListBySessionID(7, 0)
	require.NoError(t, err)
	require.Len(t, records, 1)
	require.Equal(t, model.InvocationError, records[0].Status)
	require.Contains(t, records[0].Result, "error")
}

func TestDispatchUnknownTool(t *testing.T) {
	a, _, _ := newTestAgent(t)

	_, _, err := a.registry.Dispatch(1, 7, "no_such_tool", nil)
	require.ErrorIs(t, err, ErrUnknownTool)
}

func TestRegistryToolSpecs(t *testing.T) {
	a, _, _ := newTestAgent(t)

	specs := a.registry.Tools()
	require.Len(t, specs, 6)

	names := make(map[string]bool, len(specs))
	for _, spec := range specs {
		names[spec.Name] = true
		require.NotEmpty(t, spec.Description)
		require.NotEmpty(t, spec.Parameters)
	}
	for _, want := range []string{IntentCreate, IntentList, "get_task", IntentUpdate, IntentDelete, IntentComplete} {
		require.True(t, names[want], "missing tool %s", want)
	}
}
