package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"bill-tracker/internal/model"
)

// ActiveEntries limits a query to entries that were not soft-deleted.
func ActiveEntries(db *gorm.DB) *gorm.DB {
	return db.Where("deleted_at IS NULL")
}

// EntryRepository handles CRUD for entries. Every write runs the entry's full
// validation against its time frame as currently stored.
type EntryRepository struct {
	db *gorm.DB
}

func NewEntryRepository(db *gorm.DB) *EntryRepository {
	return &EntryRepository{db: db}
}

func (r *EntryRepository) Create(ctx context.Context, entry *model.Entry) error {
	if err := r.validate(ctx, entry); err != nil {
		return err
	}
	if err := r.db.WithContext(ctx).Create(entry).Error; err != nil {
		return fmt.Errorf("create entry: %w", err)
	}
	return nil
}

func (r *EntryRepository) Save(ctx context.Context, entry *model.Entry) error {
	if err := r.validate(ctx, entry); err != nil {
		return err
	}
	if err := r.db.WithContext(ctx).Save(entry).Error; err != nil {
		return fmt.Errorf("save entry: %w", err)
	}
	return nil
}

// UpdateColumn validates entry as a whole and writes only the given column
// (plus updated_at). Nothing is written when validation fails; a row that no
// longer exists yields gorm.ErrRecordNotFound.
func (r *EntryRepository) UpdateColumn(ctx context.Context, entry *model.Entry, column model.EntryField) error {
	if err := r.validate(ctx, entry); err != nil {
		return err
	}
	result := r.db.WithContext(ctx).Model(entry).Select(string(column)).Updates(entry)
	if result.Error != nil {
		return fmt.Errorf("update entry %s: %w", column, result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("update entry %d %s: %w", entry.ID, column, gorm.ErrRecordNotFound)
	}
	return nil
}

// FindByID returns the entry whether or not it was soft-deleted.
func (r *EntryRepository) FindByID(ctx context.Context, id uint) (*model.Entry, error) {
	var entry model.Entry
	if err := r.db.WithContext(ctx).First(&entry, id).Error; err != nil {
		return nil, err
	}
	return &entry, nil
}

// FindActiveByID returns the entry unless it was soft-deleted.
func (r *EntryRepository) FindActiveByID(ctx context.Context, id uint) (*model.Entry, error) {
	var entry model.Entry
	if err := r.db.WithContext(ctx).Scopes(ActiveEntries).First(&entry, id).Error; err != nil {
		return nil, err
	}
	return &entry, nil
}

// ListActive returns every entry that was not soft-deleted.
func (r *EntryRepository) ListActive(ctx context.Context) ([]model.Entry, error) {
	var entries []model.Entry
	if err := r.db.WithContext(ctx).Scopes(ActiveEntries).Order("id ASC").Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *EntryRepository) ListActiveByTimeFrame(ctx context.Context, timeFrameID uint) ([]model.Entry, error) {
	var entries []model.Entry
	if err := r.db.WithContext(ctx).Scopes(ActiveEntries).
		Where("time_frame_id = ?", timeFrameID).
		Order("bill_on IS NULL, bill_on ASC, id ASC").
		Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *EntryRepository) validate(ctx context.Context, entry *model.Entry) error {
	var frame *model.TimeFrame
	if entry.TimeFrameID != 0 {
		var tf model.TimeFrame
		err := r.db.WithContext(ctx).First(&tf, entry.TimeFrameID).Error
		switch {
		case err == nil:
			frame = &tf
		case errors.Is(err, gorm.ErrRecordNotFound):
		default:
			return fmt.Errorf("load time frame: %w", err)
		}
	}
	return entry.Validate(frame)
}
