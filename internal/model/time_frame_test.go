package model

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func frame(groupID uint, start, end time.Time) TimeFrame {
	return TimeFrame{GroupID: &groupID, StartOn: DateOf(start), EndOn: DateOf(end)}
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func validationError(t *testing.T, err error) *ValidationError {
	t.Helper()
	var verr *ValidationError
	require.True(t, errors.As(err, &verr), "expected *ValidationError, got %v", err)
	return verr
}

func TestTimeFrameValidateRequiresFields(t *testing.T) {
	tf := TimeFrame{}

	verr := validationError(t, tf.Validate(nil))

	assert.Equal(t, []string{MsgBlank}, verr.On(FieldGroupID))
	assert.Equal(t, []string{MsgBlank}, verr.On(FieldStartOn))
	assert.Equal(t, []string{MsgBlank}, verr.On(FieldEndOn))
	assert.Empty(t, verr.On(FieldBase))
}

func TestTimeFrameValidateSpanOrder(t *testing.T) {
	start := date(2024, time.January, 10)

	tests := []struct {
		name  string
		end   time.Time
		valid bool
	}{
		{"end before start", start.AddDate(0, 0, -1), false},
		{"end equals start", start, false},
		{"end one day after start", start.AddDate(0, 0, 1), true},
		{"end a month after start", start.AddDate(0, 1, 0), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tf := frame(1, start, tt.end)
			err := tf.Validate(nil)
			if tt.valid {
				assert.NoError(t, err)
				return
			}
			verr := validationError(t, err)
			assert.Equal(t, []string{MsgEndNotAfterStart}, verr.On(FieldEndOn))
		})
	}
}

func TestTimeFrameValidateRejectsOverlappingSiblings(t *testing.T) {
	january := frame(1, date(2024, time.January, 1), date(2024, time.January, 31))

	sharedDay := frame(1, date(2024, time.January, 31), date(2024, time.February, 28))
	verr := validationError(t, sharedDay.Validate([]TimeFrame{january}))
	assert.Equal(t, []string{MsgConflictingPeriod}, verr.On(FieldBase))
	assert.Empty(t, verr.On(FieldEndOn))

	february := frame(1, date(2024, time.February, 1), date(2024, time.February, 28))
	assert.NoError(t, february.Validate([]TimeFrame{january}))
}

func TestTimeFrameValidateSkipsOverlapWithoutGroup(t *testing.T) {
	january := frame(1, date(2024, time.January, 1), date(2024, time.January, 31))
	orphan := TimeFrame{StartOn: january.StartOn, EndOn: january.EndOn}

	verr := validationError(t, orphan.Validate([]TimeFrame{january}))

	assert.Equal(t, []string{MsgBlank}, verr.On(FieldGroupID))
	assert.Empty(t, verr.On(FieldBase))
}

func TestTimeFrameOverlaps(t *testing.T) {
	base := frame(1, date(2024, time.March, 10), date(2024, time.March, 20))

	tests := []struct {
		name  string
		other TimeFrame
		want  bool
	}{
		{"disjoint before", frame(1, date(2024, time.March, 1), date(2024, time.March, 9)), false},
		{"touching start", frame(1, date(2024, time.March, 1), date(2024, time.March, 10)), true},
		{"contained", frame(1, date(2024, time.March, 12), date(2024, time.March, 13)), true},
		{"containing", frame(1, date(2024, time.March, 1), date(2024, time.March, 31)), true},
		{"touching end", frame(1, date(2024, time.March, 20), date(2024, time.March, 25)), true},
		{"disjoint after", frame(1, date(2024, time.March, 21), date(2024, time.March, 25)), false},
		{"unbounded", TimeFrame{StartOn: DateOf(date(2024, time.March, 12))}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, base.Overlaps(&tt.other))
			assert.Equal(t, tt.want, tt.other.Overlaps(&base))
		})
	}
}

func TestTimeFrameContainsIsInclusive(t *testing.T) {
	tf := frame(1, date(2024, time.January, 1), date(2024, time.January, 31))

	assert.True(t, tf.Contains(date(2024, time.January, 1)))
	assert.True(t, tf.Contains(date(2024, time.January, 31).Add(23*time.Hour)))
	assert.False(t, tf.Contains(date(2023, time.December, 31)))
	assert.False(t, tf.Contains(date(2024, time.February, 1)))
}

func TestTimeFrameAlwaysDestroyable(t *testing.T) {
	tf := frame(1, date(2024, time.January, 1), date(2024, time.January, 31))
	assert.True(t, tf.Destroyable())
	assert.True(t, (&TimeFrame{}).Destroyable())
}
