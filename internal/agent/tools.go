package agent

import (
	"errors"
	"fmt"
	"time"

	"todohub/internal/app"
	"todohub/internal/model"
	"todohub/internal/repository"
)

var ErrUnknownTool = errors.New("unknown tool")

// ToolSpec describes one todo tool in a JSON-schema-flavored shape, the
// same form an LLM function-calling API would consume.
type ToolSpec struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Parameters  map[string]any `json:"parameters"`
}

// Registry binds the tool set to the task service and records every
// dispatch as a ToolInvocation row.
type Registry struct {
	tasks       *app.TaskService
	invocations *repository.ToolInvocationRepository
}

func NewRegistry(tasks *app.TaskService, invocations *repository.ToolInvocationRepository) *Registry {
	return &Registry{tasks: tasks, invocations: invocations}
}

func (r *Registry) Tools() []ToolSpec {
	return []ToolSpec{
		{
			Name:        IntentCreate,
			Description: "Creates a new todo task for the user",
			Parameters: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"title":       map[string]any{"type": "string", "description": "Title of the task to create"},
					"description": map[string]any{"type": "string", "description": "Optional description of the task"},
				},
				"required": []string{"title"},
			},
		},
		{
			Name:        IntentList,
			Description: "Lists the user's todo tasks, optionally filtered by status",
			Parameters: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"status": map[string]any{"type": "string", "enum": []string{"all", "completed", "pending"}},
				},
			},
		},
		{
			Name:        "get_task",
			Description: "Retrieves a single todo task by its ID",
			Parameters: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"task_id": map[string]any{"type": "integer", "description": "ID of the task to retrieve"},
				},
				"required": []string{"task_id"},
			},
		},
		{
			Name:        IntentUpdate,
			Description: "Updates the title or description of an existing task",
			Parameters: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"task_id":     map[string]any{"type": "integer"},
					"title":       map[string]any{"type": "string"},
					"description": map[string]any{"type": "string"},
				},
				"required": []string{"task_id"},
			},
		},
		{
			Name:        IntentDelete,
			Description: "Deletes a todo task",
			Parameters: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"task_id": map[string]any{"type": "integer"},
				},
				"required": []string{"task_id"},
			},
		},
		{
			Name:        IntentComplete,
			Description: "Marks a task as completed or not completed",
			Parameters: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"task_id":   map[string]any{"type": "integer"},
					"completed": map[string]any{"type": "boolean"},
				},
				"required": []string{"task_id", "completed"},
			},
		},
	}
}

// Dispatch executes a tool and records the invocation lifecycle: the row
// is written as pending before execution and flipped to success or error
// with the JSON result afterwards.
func (r *Registry) Dispatch(userID, sessionID uint, name string, args map[string]any) (any, uint, error) {
	invocation := &model.ToolInvocation{
		SessionID: sessionID,
		UserID:    userID,
		ToolName:  name,
		Status:    model.InvocationPending,
	}
	invocation.SetArguments(args)
	if err := r.invocations.Create(invocation); err != nil {
		return nil, 0, err
	}

	result, err := r.invoke(userID, name, args)

	invocation.UpdatedAt = time.Now()
	if err != nil {
		invocation.Status = model.InvocationError
		invocation.SetResult(map[string]any{"error": err.Error()})
	} else {
		invocation.Status = model.InvocationSuccess
		invocation.SetResult(result)
	}
	if updateErr := r.invocations.Update(invocation); updateErr != nil {
		return nil, invocation.ID, updateErr
	}

	return result, invocation.ID, err
}

func (r *Registry) invoke(userID uint, name string, args map[string]any) (any, error) {
	switch name {
	case IntentCreate:
		return r.tasks.CreateTask(app.CreateTaskInput{
			UserID:      userID,
			Title:       stringArg(args, "title"),
			Description: stringArg(args, "description"),
		})
	case IntentList:
		filter := stringArg(args, "status")
		if filter == "" {
			filter = app.TaskFilterAll
		}
		return r.tasks.ListTasks(userID, filter)
	case "get_task":
		return r.tasks.GetTask(userID, uintArg(args, "task_id"))
	case IntentUpdate:
		input := app.UpdateTaskInput{}
		if title := stringArg(args, "title"); title != "" {
			input.Title = &title
		}
		if description := stringArg(args, "description"); description != "" {
			input.Description = &description
		}
		return r.tasks.UpdateTask(userID, uintArg(args, "task_id"), input)
	case IntentDelete:
		taskID := uintArg(args, "task_id")
		if err := r.tasks.DeleteTask(userID, taskID); err != nil {
			return nil, err
		}
		return map[string]any{"deleted_task_id": taskID}, nil
	case IntentComplete:
		completed, _ := args["completed"].(bool)
		return r.tasks.SetTaskCompleted(userID, uintArg(args, "task_id"), completed)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownTool, name)
	}
}

func stringArg(args map[string]any, key string) string {
	s, _ := args[key].(string)
	return s
}

func uintArg(args map[string]any, key string) uint {
	switch v := args[key].(type) {
	case uint:
		return v
	case int:
		if v < 0 {
			return 0
		}
		return uint(v)
	case float64:
		if v < 0 {
			return 0
		}
		return uint(v)
	default:
		return 0
	}
}
