package model

import (
	"time"

	"gorm.io/datatypes"
)

// Column names of TimeFrame used in validation errors.
const (
	FieldGroupID = "group_id"
	FieldStartOn = "start_on"
	FieldEndOn   = "end_on"
)

// TimeFrame is a closed calendar period (a budget cycle) owned by a group.
type TimeFrame struct {
	ID        uint  `gorm:"primaryKey"`
	GroupID   *uint `gorm:"index"`
	StartOn   *datatypes.Date
	EndOn     *datatypes.Date
	CreatedAt time.Time
	UpdatedAt time.Time
	Entries   []Entry `gorm:"foreignKey:TimeFrameID"`
}

// Validate checks the record against its own fields and against siblings, the
// other time frames of the same group as currently stored. The caller must
// leave the record itself out of siblings.
func (t *TimeFrame) Validate(siblings []TimeFrame) error {
	errs := &ValidationError{}

	if t.GroupID == nil {
		errs.Add(FieldGroupID, MsgBlank)
	}
	if t.StartOn == nil {
		errs.Add(FieldStartOn, MsgBlank)
	}
	if t.EndOn == nil {
		errs.Add(FieldEndOn, MsgBlank)
	}

	if t.StartOn != nil && t.EndOn != nil && !dayOf(t.EndOn).After(dayOf(t.StartOn)) {
		errs.Add(FieldEndOn, MsgEndNotAfterStart)
	}

	if t.GroupID != nil {
		for i := range siblings {
			if t.Overlaps(&siblings[i]) {
				errs.Add(FieldBase, MsgConflictingPeriod)
				break
			}
		}
	}

	return errs.errOrNil()
}

// Overlaps reports whether both periods share at least one calendar day.
// Both ends are inclusive; a period missing either date overlaps nothing.
func (t *TimeFrame) Overlaps(other *TimeFrame) bool {
	if !t.bounded() || !other.bounded() {
		return false
	}
	return !dayOf(t.StartOn).After(dayOf(other.EndOn)) && !dayOf(other.StartOn).After(dayOf(t.EndOn))
}

// Contains reports whether day lies within [StartOn, EndOn].
func (t *TimeFrame) Contains(day time.Time) bool {
	if !t.bounded() {
		return false
	}
	d := Day(day)
	return !d.Before(dayOf(t.StartOn)) && !d.After(dayOf(t.EndOn))
}

// Destroyable is always true: time frames have no deletion guard.
func (t *TimeFrame) Destroyable() bool {
	return true
}

func (t *TimeFrame) bounded() bool {
	return t.StartOn != nil && t.EndOn != nil
}
