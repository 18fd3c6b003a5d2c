package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"bill-tracker/internal/model"
)

// TimeFrameRepository stores time frames and enforces their validation on every write.
//
// Siblings are read right before the write without a lock, so two concurrent
// writers to the same group can still both pass the overlap check.
type TimeFrameRepository struct {
	db *gorm.DB
}

func NewTimeFrameRepository(db *gorm.DB) *TimeFrameRepository {
	return &TimeFrameRepository{db: db}
}

func (r *TimeFrameRepository) Create(ctx context.Context, tf *model.TimeFrame) error {
	if err := r.validate(ctx, tf); err != nil {
		return err
	}
	if err := r.db.WithContext(ctx).Create(tf).Error; err != nil {
		return fmt.Errorf("create time frame: %w", err)
	}
	return nil
}

func (r *TimeFrameRepository) Save(ctx context.Context, tf *model.TimeFrame) error {
	if err := r.validate(ctx, tf); err != nil {
		return err
	}
	if err := r.db.WithContext(ctx).Omit("Entries").Save(tf).Error; err != nil {
		return fmt.Errorf("save time frame: %w", err)
	}
	return nil
}

// Delete removes the row for good. Entries pointing at it are left alone.
func (r *TimeFrameRepository) Delete(ctx context.Context, tf *model.TimeFrame) error {
	if err := r.db.WithContext(ctx).Delete(&model.TimeFrame{}, tf.ID).Error; err != nil {
		return fmt.Errorf("delete time frame: %w", err)
	}
	return nil
}

func (r *TimeFrameRepository) FindByID(ctx context.Context, id uint) (*model.TimeFrame, error) {
	var tf model.TimeFrame
	if err := r.db.WithContext(ctx).First(&tf, id).Error; err != nil {
		return nil, err
	}
	return &tf, nil
}

func (r *TimeFrameRepository) ListByGroup(ctx context.Context, groupID uint) ([]model.TimeFrame, error) {
	var frames []model.TimeFrame
	if err := r.db.WithContext(ctx).Where("group_id = ?", groupID).Order("start_on ASC").Find(&frames).Error; err != nil {
		return nil, err
	}
	return frames, nil
}

// siblings re-reads the other frames of tf's group from storage.
func (r *TimeFrameRepository) siblings(ctx context.Context, tf *model.TimeFrame) ([]model.TimeFrame, error) {
	if tf.GroupID == nil {
		return nil, nil
	}
	query := r.db.WithContext(ctx).Where("group_id = ?", *tf.GroupID)
	if tf.ID != 0 {
		query = query.Where("id <> ?", tf.ID)
	}
	var frames []model.TimeFrame
	if err := query.Find(&frames).Error; err != nil {
		return nil, fmt.Errorf("load sibling time frames: %w", err)
	}
	return frames, nil
}

func (r *TimeFrameRepository) validate(ctx context.Context, tf *model.TimeFrame) error {
	siblings, err := r.siblings(ctx, tf)
	if err != nil {
		return err
	}
	return tf.Validate(siblings)
}
