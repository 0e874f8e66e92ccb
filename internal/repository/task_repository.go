package repository

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"todohub/internal/model"
)

type TaskRepository struct {
	db *gorm.DB
}

func NewTaskRepository(db *gorm.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

func (r *TaskRepository) Create(task *model.Task) error {
	if err := r.db.Create(task).Error; err != nil {
		return fmt.Errorf("create task failed: %w", err)
	}
	return nil
}

// CreateBatch inserts all tasks inside one transaction; either every task
// lands or none do.
func (r *TaskRepository) CreateBatch(tasks []*model.Task) error {
	if len(tasks) == 0 {
		return nil
	}
	err := r.db.Transaction(func(tx *gorm.DB) error {
		for _, task := range tasks {
			if err := tx.Create(task).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("create tasks in batch failed: %w", err)
	}
	return nil
}

func (r *TaskRepository) GetByIDAndUserID(taskID, userID uint) (*model.Task, error) {
	var task model.Task
	if err := r.db.Where("id = ? AND user_id = ?", taskID, userID).First(&task).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("get task failed: %w", err)
	}
	return &task, nil
}

func (r *TaskRepository) ListByUserID(userID uint) ([]model.Task, error) {
	var tasks []model.Task
	if err := r.db.Where("user_id = ?", userID).Order("created_at ASC").Find(&tasks).Error; err != nil {
		return nil, fmt.Errorf("list tasks failed: %w", err)
	}
	return tasks, nil
}

func (r *TaskRepository) ListByUserIDAndCompleted(userID uint, completed bool) ([]model.Task, error) {
	var tasks []model.Task
	if err := r.db.Where("user_id = ? AND completed = ?", userID, completed).
		Order("created_at ASC").Find(&tasks).Error; err != nil {
		return nil, fmt.Errorf("list tasks by status failed: %w", err)
	}
	return tasks, nil
}

func (r *TaskRepository) Update(task *model.Task) error {
	if err := r.db.Save(task).Error; err != nil {
		return fmt.Errorf("update task failed: %w", err)
	}
	return nil
}

func (r *TaskRepository) DeleteByIDAndUserID(taskID, userID uint) error {
	if err := r.db.Where("id = ? AND user_id = ?", taskID, userID).Delete(&model.Task{}).Error; err != nil {
		return fmt.Errorf("delete task failed: %w", err)
	}
	return nil
}
