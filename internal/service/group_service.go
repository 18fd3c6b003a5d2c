package service

import (
	"context"

	"bill-tracker/internal/model"
	"bill-tracker/internal/repository"
)

// GroupService provides helpers around groups.
type GroupService struct {
	repo *repository.GroupRepository
}

func NewGroupService(repo *repository.GroupRepository) *GroupService {
	return &GroupService{repo: repo}
}

// EnsureForChat returns the group owned by a Telegram chat, creating it on first use.
func (s *GroupService) EnsureForChat(ctx context.Context, chatID int64, name string) (*model.Group, error) {
	return s.repo.UpsertFromTelegram(ctx, chatID, name)
}

func (s *GroupService) Get(ctx context.Context, id uint) (*model.Group, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *GroupService) List(ctx context.Context) ([]model.Group, error) {
	return s.repo.ListAll(ctx)
}
