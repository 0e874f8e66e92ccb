package repository

import (
	"fmt"

	"gorm.io/gorm"

	"todohub/internal/model"
)

type ToolInvocationRepository struct {
	db *gorm.DB
}

func NewToolInvocationRepository(db *gorm.DB) *ToolInvocationRepository {
	return &ToolInvocationRepository{db: db}
}

func (r *ToolInvocationRepository) Create(invocation *model.ToolInvocation) error {
	if err := r.db.Create(invocation).Error; err != nil {
		return fmt.Errorf("create tool invocation failed: %w", err)
	}
	return nil
}

func (r *ToolInvocationRepository) Update(invocation *model.ToolInvocation) error {
	if err := r.db.Save(invocation).Error; err != nil {
		return fmt.Errorf("update tool invocation failed: %w", err)
	}
	return nil
}

func (r *ToolInvocationRepository) ListBySessionID(sessionID uint, limit int) ([]model.ToolInvocation, error) {
	if limit <= 0 || limit > 200 {
		limit = 100
	}

	var invocations []model.ToolInvocation
	if err := r.db.Where("session_id = ?", sessionID).
		Order("created_at ASC").Limit(limit).Find(&invocations).Error; err != nil {
		return nil, fmt.Errorf("list tool invocations failed: %w", err)
	}
	return invocations, nil
}

func (r *ToolInvocationRepository) DeleteBySessionID(sessionID uint) error {
	if err := r.db.Where("session_id = ?", sessionID).Delete(&model.ToolInvocation{}).Error; err != nil {
		return fmt.Errorf("delete tool invocations failed: %w", err)
	}
	return nil
}
