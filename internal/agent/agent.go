// Package agent implements the chatbot's intent routing and tool dispatch
// over the todo domain: an ordered regex intent table, a tool registry
// recording invocations, and an LLM fallback for plain conversation.
package agent

import (
	"context"
	"fmt"
	"strings"

	"todohub/internal/ai"
	"todohub/internal/app"
	"todohub/internal/model"
)

const systemPrompt = "You are a concise and helpful todo assistant."

type Agent struct {
	registry *Registry
	llm      *ai.OpenAICompatibleClient
	llmCfg   ai.ChatConfig
}

func New(registry *Registry, llmCfg ai.ChatConfig) *Agent {
	return &Agent{
		registry: registry,
		llm:      ai.NewOpenAICompatibleClient(),
		llmCfg:   llmCfg,
	}
}

// Respond routes the message to a tool-backed handler or the LLM fallback.
// Tool failures become apologetic replies rather than errors so a broken
// dispatch never kills the conversation turn.
func (a *Agent) Respond(ctx context.Context, userID, sessionID uint, content string, history []ai.ChatMessage) (app.AgentReply, error) {
	intent := Route(content)

	switch intent {
	case IntentCreate:
		return a.handleCreate(userID, sessionID, content), nil
	case IntentList:
		return a.handleList(userID, sessionID, content), nil
	case IntentUpdate:
		return app.AgentReply{
			Intent:  intent,
			Content: "To update a task, please specify which task you want to update and what changes to make. For example: 'Update task #1 to have title Buy Groceries'.",
		}, nil
	case IntentDelete:
		return app.AgentReply{
			Intent:  intent,
			Content: "To delete a task, please specify which task you want to delete. For example: 'Delete task #1' or 'Remove the grocery task'.",
		}, nil
	case IntentComplete:
		return a.handleComplete(userID, sessionID, content), nil
	default:
		return a.fallback(ctx, content, history), nil
	}
}

func (a *Agent) handleCreate(userID, sessionID uint, content string) app.AgentReply {
	title := ExtractTitle(content)
	if len(title) < 2 {
		return app.AgentReply{
			Intent:  IntentCreate,
			Content: "Could you please specify what task you'd like to create?",
		}
	}

	result, invocationID, err := a.registry.Dispatch(userID, sessionID, IntentCreate, map[string]any{"title": title})
	if err != nil {
		return app.AgentReply{
			Intent:       IntentCreate,
			InvocationID: invocationID,
			Content:      fmt.Sprintf("I'm sorry, I couldn't create the task: %v", err),
		}
	}

	task, _ := result.(*model.Task)
	return app.AgentReply{
		Intent:       IntentCreate,
		InvocationID: invocationID,
		Content:      fmt.Sprintf("I've created a task for you: '%s'.", task.Title),
	}
}

func (a *Agent) handleList(userID, sessionID uint, content string) app.AgentReply {
	filter := ExtractListFilter(content)
	result, invocationID, err := a.registry.Dispatch(userID, sessionID, IntentList, map[string]any{"status": filter})
	if err != nil {
		return app.AgentReply{
			Intent:       IntentList,
			InvocationID: invocationID,
			Content:      fmt.Sprintf("I'm sorry, I couldn't retrieve your tasks: %v", err),
		}
	}

	tasks, _ := result.([]model.Task)
	return app.AgentReply{
		Intent:       IntentList,
		InvocationID: invocationID,
		Content:      formatTaskList(tasks, filter),
	}
}

func (a *Agent) handleComplete(userID, sessionID uint, content string) app.AgentReply {
	completed := WantsCompleted(content)
	actionWord := "completed"
	if !completed {
		actionWord = "incomplete"
	}

	ref := ExtractTaskReference(content)
	if ref.Number == 0 && ref.Title == "" {
		return app.AgentReply{
			Intent: IntentComplete,
			Content: fmt.Sprintf(
				"To mark a task as %s, please specify which task. For example: 'Mark task #1 as %s' or 'Mark the grocery task as %s'.",
				actionWord, actionWord, actionWord),
		}
	}

	tasks, err := a.registry.tasks.ListTasks(userID, app.TaskFilterAll)
	if err != nil {
		return app.AgentReply{
			Intent:  IntentComplete,
			Content: fmt.Sprintf("I couldn't retrieve your tasks to update the status: %v", err),
		}
	}

	target, missingReply := resolveTaskReference(tasks, ref)
	if target == nil {
		return app.AgentReply{Intent: IntentComplete, Content: missingReply}
	}

	_, invocationID, err := a.registry.Dispatch(userID, sessionID, IntentComplete, map[string]any{
		"task_id":   int(target.ID),
		"completed": completed,
	})
	if err != nil {
		return app.AgentReply{
			Intent:       IntentComplete,
			InvocationID: invocationID,
			Content:      fmt.Sprintf("I'm sorry, I couldn't update the task: %v", err),
		}
	}

	return app.AgentReply{
		Intent:       IntentComplete,
		InvocationID: invocationID,
		Content:      fmt.Sprintf("I've marked the task '%s' as %s.", target.Title, actionWord),
	}
}

func (a *Agent) fallback(ctx context.Context, content string, history []ai.ChatMessage) app.AgentReply {
	if a.llm == nil || a.llmCfg.APIKey == "" || a.llmCfg.Model == "" {
		return app.AgentReply{Content: "I can help you manage your tasks. Try 'create a task to buy groceries' or 'show my tasks'."}
	}

	messages := make([]ai.ChatMessage, 0, len(history)+2)
	messages = append(messages, ai.ChatMessage{Role: "system", Content: systemPrompt})
	messages = append(messages, history...)
	messages = append(messages, ai.ChatMessage{Role: model.RoleUser, Content: content})

	reply, err := a.llm.Complete(ctx, a.llmCfg, messages)
	if err != nil {
		return app.AgentReply{Content: fmt.Sprintf("I'm sorry, I encountered an error: %v", err)}
	}
	return app.AgentReply{Content: strings.TrimSpace(reply)}
}

func resolveTaskReference(tasks []model.Task, ref TaskReference) (*model.Task, string) {
	if ref.Number > 0 {
		if ref.Number > len(tasks) {
			return nil, fmt.Sprintf("Task #%d doesn't exist. You have %d tasks.", ref.Number, len(tasks))
		}
		return &tasks[ref.Number-1], ""
	}

	for i := range tasks {
		if strings.Contains(strings.ToLower(tasks[i].Title), ref.Title) {
			return &tasks[i], ""
		}
	}
	return nil, fmt.Sprintf("I couldn't find a task containing '%s'. Please specify the task number or check the task name.", ref.Title)
}

func formatTaskList(tasks []model.Task, filter string) string {
	if len(tasks) == 0 {
		switch filter {
		case app.TaskFilterCompleted:
			return "You don't have any completed tasks."
		case app.TaskFilterPending:
			return "You don't have any pending tasks."
		default:
			return "You don't have any tasks."
		}
	}

	lines := make([]string, 0, len(tasks)+1)
	lines = append(lines, fmt.Sprintf("Here are your %s tasks:", filter))
	for i, task := range tasks {
		marker := "○"
		if task.Completed {
			marker = "✓"
		}
		lines = append(lines, fmt.Sprintf("%d. %s %s", i+1, marker, task.Title))
	}
	return strings.Join(lines, "\n")
}
