package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"bill-tracker/internal/model"
)

// GroupRepository handles CRUD for groups.
type GroupRepository struct {
	db *gorm.DB
}

func NewGroupRepository(db *gorm.DB) *GroupRepository {
	return &GroupRepository{db: db}
}

func (r *GroupRepository) Create(ctx context.Context, group *model.Group) error {
	if err := r.db.WithContext(ctx).Create(group).Error; err != nil {
		return fmt.Errorf("create group: %w", err)
	}
	return nil
}

// UpsertFromTelegram finds or creates the group bound to a chat and refreshes its name.
func (r *GroupRepository) UpsertFromTelegram(ctx context.Context, chatID int64, name string) (*model.Group, error) {
	var group model.Group
	db := r.db.WithContext(ctx)
	err := db.Where("telegram_chat_id = ?", chatID).First(&group).Error
	switch {
	case err == nil:
		if name != "" && name != group.Name {
			if err := db.Model(&group).Update("name", name).Error; err != nil {
				return nil, fmt.Errorf("update group: %w", err)
			}
			group.Name = name
		}
		return &group, nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		group = model.Group{TelegramChatID: chatID, Name: name}
		if err := db.Create(&group).Error; err != nil {
			return nil, fmt.Errorf("create group: %w", err)
		}
		return &group, nil
	default:
		return nil, fmt.Errorf("find group: %w", err)
	}
}

func (r *GroupRepository) FindByID(ctx context.Context, id uint) (*model.Group, error) {
	var group model.Group
	if err := r.db.WithContext(ctx).First(&group, id).Error; err != nil {
		return nil, err
	}
	return &group, nil
}

func (r *GroupRepository) ListAll(ctx context.Context) ([]model.Group, error) {
	var groups []model.Group
	if err := r.db.WithContext(ctx).Order("id ASC").Find(&groups).Error; err != nil {
		return nil, err
	}
	return groups, nil
}
