package model

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// EntryField names an Entry column that can be edited on its own.
type EntryField string

const (
	FieldTimeFrameID EntryField = "time_frame_id"
	FieldKind        EntryField = "kind"
	FieldTitle       EntryField = "title"
	FieldDescription EntryField = "description"
	FieldValue       EntryField = "value"
	FieldBillOn      EntryField = "bill_on"
	FieldAutoDebit   EntryField = "auto_debit"
	FieldDone        EntryField = "done"
	FieldRecordKind  EntryField = "record_kind"
	FieldDeletedAt   EntryField = "deleted_at"
)

// WarningDays is how far ahead of its due date an entry turns WARNING.
const WarningDays = 7

// ValueScale is the number of decimals kept for Entry.Value, matching its column.
const ValueScale = 2

// Entry is a single expense or income line of a time frame.
type Entry struct {
	ID           uint            `gorm:"primaryKey"`
	TimeFrameID  uint            `gorm:"index;not null"`
	Kind         EntryKind       `gorm:"size:255;not null"`
	Title        string          `gorm:"size:255;not null"`
	Description  string          `gorm:"type:text"`
	Value        decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	BillOn       *datatypes.Date
	AutoDebit    bool `gorm:"not null;default:false"`
	CreditCardID *uint
	Done         bool            `gorm:"not null;default:false"`
	DeletedAt    *time.Time      `gorm:"index"`
	RecordKind   EntryRecordKind `gorm:"size:255"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Validate runs the full validation contract. frame is the owning time frame
// freshly read from storage, or nil when it could not be found.
func (e *Entry) Validate(frame *TimeFrame) error {
	errs := &ValidationError{}

	if e.TimeFrameID == 0 {
		errs.Add(string(FieldTimeFrameID), MsgBlank)
	} else if frame == nil {
		errs.Add(string(FieldTimeFrameID), MsgMustExist)
	}

	switch {
	case e.Kind == "":
		errs.Add(string(FieldKind), MsgBlank)
	case !e.Kind.Valid():
		errs.Add(string(FieldKind), MsgNotIncluded)
	}

	if strings.TrimSpace(e.Title) == "" {
		errs.Add(string(FieldTitle), MsgBlank)
	}

	if e.RecordKind != "" && !e.RecordKind.Valid() {
		errs.Add(string(FieldRecordKind), MsgNotIncluded)
	}

	if e.BillOn != nil && frame != nil && !frame.Contains(time.Time(*e.BillOn)) {
		errs.Add(string(FieldBillOn), MsgInvalidForTimeFrame)
	}

	return errs.errOrNil()
}

// StatusOn derives the entry status as seen on the calendar day today.
func (e *Entry) StatusOn(today time.Time) EntryStatus {
	if e.Done {
		return EntryStatusDone
	}
	if e.BillOn == nil {
		return EntryStatusPending
	}

	day := Day(today)
	due := dayOf(e.BillOn)
	switch {
	case !due.After(day):
		return EntryStatusLate
	case !due.After(day.AddDate(0, 0, WarningDays)):
		return EntryStatusWarning
	default:
		return EntryStatusPending
	}
}

// Destroyable is false only for UNEXPECTED entries.
func (e *Entry) Destroyable() bool {
	return e.RecordKind != EntryRecordKindUnexpected
}

// Deleted reports whether the entry has been soft-deleted.
func (e *Entry) Deleted() bool {
	return e.DeletedAt != nil
}
