package app

import (
	"errors"
	"strings"
	"time"

	"todohub/internal/model"
	"todohub/internal/repository"
)

var (
	ErrTaskNotFound   = errors.New("task not found")
	ErrTaskValidation = errors.New("task validation failed")
)

const (
	TaskFilterAll       = "all"
	TaskFilterCompleted = "completed"
	TaskFilterPending   = "pending"
)

type TaskService struct {
	taskRepo *repository.TaskRepository
}

type CreateTaskInput struct {
	UserID      uint
	Title       string
	Description string
}

type UpdateTaskInput struct {
	Title       *string
	Description *string
	Completed   *bool
}

func NewTaskService(taskRepo *repository.TaskRepository) *TaskService {
	return &TaskService{taskRepo: taskRepo}
}

func (s *TaskService) CreateTask(input CreateTaskInput) (*model.Task, error) {
	if input.UserID == 0 {
		return nil, ErrInvalidInput
	}

	title := strings.TrimSpace(input.Title)
	description := strings.TrimSpace(input.Description)
	if err := validateTaskFields(title, description); err != nil {
		return nil, err
	}

	task := &model.Task{
		UserID:      input.UserID,
		Title:       title,
		Description: description,
	}
	if err := s.taskRepo.Create(task); err != nil {
		return nil, err
	}
	return task, nil
}

// CreateTasks validates every entry up front, then inserts them in one
// transaction. A single bad entry fails the whole batch.
func (s *TaskService) CreateTasks(userID uint, inputs []CreateTaskInput) ([]model.Task, error) {
	if userID == 0 || len(inputs) == 0 {
		return nil, ErrInvalidInput
	}

	tasks := make([]*model.Task, 0, len(inputs))
	for _, input := range inputs {
		title := strings.TrimSpace(input.Title)
		description := strings.TrimSpace(input.Description)
		if err := validateTaskFields(title, description); err != nil {
			return nil, err
		}
		tasks = append(tasks, &model.Task{
			UserID:      userID,
			Title:       title,
			Description: description,
		})
	}

	if err := s.taskRepo.CreateBatch(tasks); err != nil {
		return nil, err
	}

	created := make([]model.Task, 0, len(tasks))
	for _, task := range tasks {
		created = append(created, *task)
	}
	return created, nil
}

func (s *TaskService) GetTask(userID, taskID uint) (*model.Task, error) {
	if userID == 0 || taskID == 0 {
		return nil, ErrInvalidInput
	}
	task, err := s.taskRepo.GetByIDAndUserID(taskID, userID)
	if err != nil {
		return nil, err
	}
	if task == nil {
		return nil, ErrTaskNotFound
	}
	return task, nil
}

func (s *TaskService) ListTasks(userID uint, filter string) ([]model.Task, error) {
	if userID == 0 {
		return nil, ErrInvalidInput
	}

	switch filter {
	case "", TaskFilterAll:
		return s.taskRepo.ListByUserID(userID)
	case TaskFilterCompleted:
		return s.taskRepo.ListByUserIDAndCompleted(userID, true)
	case TaskFilterPending:
		return s.taskRepo.ListByUserIDAndCompleted(userID, false)
	default:
		return nil, ErrInvalidInput
	}
}

func (s *TaskService) UpdateTask(userID, taskID uint, input UpdateTaskInput) (*model.Task, error) {
	task, err := s.GetTask(userID, taskID)
	if err != nil {
		return nil, err
	}

	if input.Title != nil {
		title := strings.TrimSpace(*input.Title)
		if err := validateTaskFields(title, task.Description); err != nil {
			return nil, err
		}
		task.Title = title
	}
	if input.Description != nil {
		description := strings.TrimSpace(*input.Description)
		if err := validateTaskFields(task.Title, description); err != nil {
			return nil, err
		}
		task.Description = description
	}
	if input.Completed != nil {
		task.Completed = *input.Completed
	}
	task.UpdatedAt = time.Now()

	if err := s.taskRepo.Update(task); err != nil {
		return nil, err
	}
	return task, nil
}

func (s *TaskService) SetTaskCompleted(userID, taskID uint, completed bool) (*model.Task, error) {
	task, err := s.GetTask(userID, taskID)
	if err != nil {
		return nil, err
	}

	task.Completed = completed
	task.UpdatedAt = time.Now()
	if err := s.taskRepo.Update(task); err != nil {
		return nil, err
	}
	return task, nil
}

func (s *TaskService) DeleteTask(userID, taskID uint) error {
	task, err := s.GetTask(userID, taskID)
	if err != nil {
		return err
	}
	return s.taskRepo.DeleteByIDAndUserID(task.ID, userID)
}

func validateTaskFields(title, description string) error {
	if len(title) < 1 || len(title) > model.TaskTitleMaxLen {
		return ErrTaskValidation
	}
	if len(description) > model.TaskDescriptionMaxLen {
		return ErrTaskValidation
	}
	return nil
}
