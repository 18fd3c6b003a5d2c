package model

import (
	"database/sql/driver"
	"fmt"
)

// EntryKind tells incomes apart from expenses.
type EntryKind string

const (
	EntryKindExpense EntryKind = "EXPENSE"
	EntryKindIncome  EntryKind = "INCOME"
)

// EntryKinds lists every accepted kind in display order.
var EntryKinds = []EntryKind{EntryKindExpense, EntryKindIncome}

func (k EntryKind) Valid() bool {
	for _, kind := range EntryKinds {
		if k == kind {
			return true
		}
	}
	return false
}

// LabelKey is the translation key of the kind's display label.
func (k EntryKind) LabelKey() string {
	return "entry_kind." + string(k)
}

// EntryRecordKind is the optional secondary classification of an entry.
// The empty value means "unset" and is stored as NULL.
type EntryRecordKind string

const (
	EntryRecordKindFixed      EntryRecordKind = "FIXED"
	EntryRecordKindVariable   EntryRecordKind = "VARIABLE"
	EntryRecordKindUnexpected EntryRecordKind = "UNEXPECTED"
)

var EntryRecordKinds = []EntryRecordKind{
	EntryRecordKindFixed,
	EntryRecordKindVariable,
	EntryRecordKindUnexpected,
}

func (k EntryRecordKind) Valid() bool {
	for _, kind := range EntryRecordKinds {
		if k == kind {
			return true
		}
	}
	return false
}

func (k EntryRecordKind) LabelKey() string {
	return "entry_record_kind." + string(k)
}

func (k EntryRecordKind) Value() (driver.Value, error) {
	if k == "" {
		return nil, nil
	}
	return string(k), nil
}

func (k *EntryRecordKind) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		*k = ""
	case string:
		*k = EntryRecordKind(v)
	case []byte:
		*k = EntryRecordKind(v)
	default:
		return fmt.Errorf("scan record kind: unsupported type %T", src)
	}
	return nil
}

// EntryStatus is derived from an entry's done flag and due date; it is never stored.
type EntryStatus string

const (
	EntryStatusDone    EntryStatus = "DONE"
	EntryStatusLate    EntryStatus = "LATE"
	EntryStatusWarning EntryStatus = "WARNING"
	EntryStatusPending EntryStatus = "PENDING"
)

// EntryStatuses is ordered by urgency for reports.
var EntryStatuses = []EntryStatus{
	EntryStatusLate,
	EntryStatusWarning,
	EntryStatusPending,
	EntryStatusDone,
}

func (s EntryStatus) LabelKey() string {
	return "entry_status." + string(s)
}
