package repository

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"todohub/internal/model"
)

type PasswordResetRepository struct {
	db *gorm.DB
}

func NewPasswordResetRepository(db *gorm.DB) *PasswordResetRepository {
	return &PasswordResetRepository{db: db}
}

func (r *PasswordResetRepository) Create(token *model.PasswordResetToken) error {
	if err := r.db.Create(token).Error; err != nil {
		return fmt.Errorf("create password reset token failed: %w", err)
	}
	return nil
}

func (r *PasswordResetRepository) GetByToken(token string) (*model.PasswordResetToken, error) {
	var record model.PasswordResetToken
	if err := r.db.Where("token = ?", token).First(&record).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("query password reset token failed: %w", err)
	}
	return &record, nil
}

func (r *PasswordResetRepository) MarkUsed(id uint) error {
	if err := r.db.Model(&model.PasswordResetToken{}).Where("id = ?", id).
		Update("used", true).Error; err != nil {
		return fmt.Errorf("mark password reset token used failed: %w", err)
	}
	return nil
}
