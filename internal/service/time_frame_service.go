package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"gorm.io/gorm"

	"bill-tracker/internal/model"
	"bill-tracker/internal/repository"
)

// TimeFrameService wraps time-frame-related business logic.
type TimeFrameService struct {
	frames *repository.TimeFrameRepository
	loc    *time.Location
}

func NewTimeFrameService(frames *repository.TimeFrameRepository, loc *time.Location) *TimeFrameService {
	if loc == nil {
		loc = time.Local
	}
	return &TimeFrameService{frames: frames, loc: loc}
}

// Create stores a new period [start, end] for the group.
func (s *TimeFrameService) Create(ctx context.Context, groupID uint, start, end time.Time) (*model.TimeFrame, error) {
	tf := model.TimeFrame{
		GroupID: &groupID,
		StartOn: model.DateOf(start),
		EndOn:   model.DateOf(end),
	}
	if err := s.frames.Create(ctx, &tf); err != nil {
		slog.Warn("time frame rejected", "group_id", groupID, "error", err)
		return nil, err
	}
	slog.Info("time frame created", "time_frame_id", tf.ID, "group_id", groupID)
	return &tf, nil
}

// Update saves an already loaded time frame.
func (s *TimeFrameService) Update(ctx context.Context, tf *model.TimeFrame) error {
	return s.frames.Save(ctx, tf)
}

func (s *TimeFrameService) Get(ctx context.Context, id uint) (*model.TimeFrame, error) {
	return s.frames.FindByID(ctx, id)
}

func (s *TimeFrameService) List(ctx context.Context, groupID uint) ([]model.TimeFrame, error) {
	return s.frames.ListByGroup(ctx, groupID)
}

// Current returns the group's time frame containing the calendar day of now,
// or gorm.ErrRecordNotFound.
func (s *TimeFrameService) Current(ctx context.Context, groupID uint, now time.Time) (*model.TimeFrame, error) {
	frames, err := s.frames.ListByGroup(ctx, groupID)
	if err != nil {
		return nil, fmt.Errorf("list time frames: %w", err)
	}
	today := now.In(s.loc)
	for i := range frames {
		if frames[i].Contains(today) {
			return &frames[i], nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

// Destroy deletes the time frame for good.
func (s *TimeFrameService) Destroy(ctx context.Context, tf *model.TimeFrame) error {
	if !tf.Destroyable() {
		return nil
	}
	if err := s.frames.Delete(ctx, tf); err != nil {
		return err
	}
	slog.Info("time frame deleted", "time_frame_id", tf.ID)
	return nil
}
