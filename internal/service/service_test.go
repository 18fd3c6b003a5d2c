package service

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"bill-tracker/internal/format"
	"bill-tracker/internal/model"
	"bill-tracker/internal/repository"
)

// now is a fixed clock: 10 Jan 2024, mid-afternoon.
var now = time.Date(2024, time.January, 10, 15, 30, 0, 0, time.UTC)

type fixture struct {
	db       *gorm.DB
	group    *model.Group
	frame    *model.TimeFrame
	groups   *GroupService
	frames   *TimeFrameService
	entries  *EntryService
	reminder *ReminderService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db, err := repository.NewDB(filepath.Join(t.TempDir(), "bills.db"))
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})

	formatter, err := format.New(format.Config{Locale: "pt-BR", Currency: "BRL"})
	require.NoError(t, err)

	f := &fixture{
		db:      db,
		groups:  NewGroupService(repository.NewGroupRepository(db)),
		frames:  NewTimeFrameService(repository.NewTimeFrameRepository(db), time.UTC),
		entries: NewEntryService(repository.NewEntryRepository(db), formatter, time.UTC),
	}
	f.reminder = NewReminderService(f.frames, f.entries, formatter)

	ctx := context.Background()
	f.group, err = f.groups.EnsureForChat(ctx, 42, "Casa")
	require.NoError(t, err)
	f.frame, err = f.frames.Create(ctx, f.group.ID, day(2024, time.January, 1), day(2024, time.January, 31))
	require.NoError(t, err)
	return f
}

func (f *fixture) entry(t *testing.T, input EntryInput) *model.Entry {
	t.Helper()
	if input.TimeFrameID == 0 {
		input.TimeFrameID = f.frame.ID
	}
	if input.Kind == "" {
		input.Kind = model.EntryKindExpense
	}
	if input.Title == "" {
		input.Title = "Aluguel"
	}
	entry, err := f.entries.Create(context.Background(), input)
	require.NoError(t, err)
	return entry
}

func (f *fixture) reload(t *testing.T, id uint) *model.Entry {
	t.Helper()
	entry, err := repository.NewEntryRepository(f.db).FindByID(context.Background(), id)
	require.NoError(t, err)
	return entry
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func ptr[T any](v T) *T {
	return &v
}

func TestEntryServiceUpdateFieldValue(t *testing.T) {
	f := newFixture(t)
	entry := f.entry(t, EntryInput{})

	shown, err := f.entries.UpdateField(context.Background(), entry, model.FieldValue, "10,50", now)
	require.NoError(t, err)
	assert.Contains(t, shown, "10,50")
	assert.True(t, entry.Value.Equal(decimal.RequireFromString("10.50")))

	stored := f.reload(t, entry.ID)
	assert.True(t, stored.Value.Equal(decimal.RequireFromString("10.50")), "stored %s", stored.Value)
}

func TestEntryServiceUpdateFieldValueRoundsToCents(t *testing.T) {
	f := newFixture(t)
	entry := f.entry(t, EntryInput{})

	shown, err := f.entries.UpdateField(context.Background(), entry, model.FieldValue, "10,555", now)
	require.NoError(t, err)
	assert.Contains(t, shown, "10,56")

	stored := f.reload(t, entry.ID)
	assert.True(t, stored.Value.Equal(decimal.RequireFromString("10.56")), "stored %s", stored.Value)
	assert.True(t, entry.Value.Equal(stored.Value))
}

func TestEntryServiceCreateRoundsValue(t *testing.T) {
	f := newFixture(t)
	entry := f.entry(t, EntryInput{Value: decimal.RequireFromString("99.999")})

	assert.True(t, f.reload(t, entry.ID).Value.Equal(decimal.RequireFromString("100")))
}

func TestEntryServiceUpdateFieldMissingRow(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	entry := f.entry(t, EntryInput{Title: "Internet", RecordKind: model.EntryRecordKindFixed})

	gone := *entry
	gone.ID = entry.ID + 9999

	shown, err := f.entries.UpdateField(ctx, &gone, model.FieldTitle, "Fantasma", now)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
	assert.Empty(t, shown)
	assert.Equal(t, "Internet", gone.Title)

	err = f.entries.Destroy(ctx, &gone, now)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
	assert.Nil(t, gone.DeletedAt)
}

func TestEntryServiceUpdateFieldValueRejectsGarbage(t *testing.T) {
	f := newFixture(t)
	entry := f.entry(t, EntryInput{Value: decimal.NewFromInt(5)})

	for _, raw := range []string{"", "abc"} {
		_, err := f.entries.UpdateField(context.Background(), entry, model.FieldValue, raw, now)
		var verr *model.ValidationError
		require.True(t, errors.As(err, &verr), "raw %q: %v", raw, err)
		assert.NotEmpty(t, verr.On(string(model.FieldValue)))
	}
	assert.True(t, f.reload(t, entry.ID).Value.Equal(decimal.NewFromInt(5)))
}

func TestEntryServiceUpdateFieldBillOnFormatError(t *testing.T) {
	f := newFixture(t)
	entry := f.entry(t, EntryInput{BillOn: ptr(day(2024, time.January, 20))})

	_, err := f.entries.UpdateField(context.Background(), entry, model.FieldBillOn, "2024-13-40", now)
	var ferr *model.FormatError
	require.True(t, errors.As(err, &ferr), "got %v", err)
	assert.Equal(t, string(model.FieldBillOn), ferr.Field)

	assert.Equal(t, day(2024, time.January, 20), time.Time(*entry.BillOn).UTC())
	assert.Equal(t, day(2024, time.January, 20), time.Time(*f.reload(t, entry.ID).BillOn).UTC())
}

func TestEntryServiceUpdateFieldBillOnOutsideFrame(t *testing.T) {
	f := newFixture(t)
	entry := f.entry(t, EntryInput{BillOn: ptr(day(2024, time.January, 20))})

	_, err := f.entries.UpdateField(context.Background(), entry, model.FieldBillOn, "15/02/2024", now)
	var verr *model.ValidationError
	require.True(t, errors.As(err, &verr), "got %v", err)
	assert.Equal(t, []string{model.MsgInvalidForTimeFrame}, verr.On(string(model.FieldBillOn)))

	assert.Equal(t, day(2024, time.January, 20), time.Time(*entry.BillOn).UTC())
	assert.Equal(t, day(2024, time.January, 20), time.Time(*f.reload(t, entry.ID).BillOn).UTC())
}

func TestEntryServiceUpdateFieldBillOn(t *testing.T) {
	f := newFixture(t)
	entry := f.entry(t, EntryInput{})

	shown, err := f.entries.UpdateField(context.Background(), entry, model.FieldBillOn, "5/1/2024", now)
	require.NoError(t, err)
	assert.Equal(t, "5 de janeiro de 2024", shown)
	assert.Equal(t, day(2024, time.January, 5), time.Time(*f.reload(t, entry.ID).BillOn).UTC())
}

func TestEntryServiceUpdateFieldDoneEchoesStatus(t *testing.T) {
	f := newFixture(t)
	entry := f.entry(t, EntryInput{BillOn: ptr(day(2024, time.January, 5))})
	assert.Equal(t, model.EntryStatusLate, f.entries.Status(entry, now))

	shown, err := f.entries.UpdateField(context.Background(), entry, model.FieldDone, "true", now)
	require.NoError(t, err)
	assert.Equal(t, "Pago", shown)
	assert.True(t, f.reload(t, entry.ID).Done)

	shown, err = f.entries.UpdateField(context.Background(), entry, model.FieldDone, "false", now)
	require.NoError(t, err)
	assert.Equal(t, "Atrasado", shown)
	assert.False(t, f.reload(t, entry.ID).Done)
}

func TestEntryServiceUpdateFieldEchoes(t *testing.T) {
	f := newFixture(t)
	entry := f.entry(t, EntryInput{})
	ctx := context.Background()

	shown, err := f.entries.UpdateField(ctx, entry, model.FieldKind, string(model.EntryKindIncome), now)
	require.NoError(t, err)
	assert.Equal(t, "Receita", shown)

	shown, err = f.entries.UpdateField(ctx, entry, model.FieldAutoDebit, "true", now)
	require.NoError(t, err)
	assert.Equal(t, "Sim", shown)

	shown, err = f.entries.UpdateField(ctx, entry, model.FieldTitle, "Salário", now)
	require.NoError(t, err)
	assert.Equal(t, "Salário", shown)

	stored := f.reload(t, entry.ID)
	assert.Equal(t, model.EntryKindIncome, stored.Kind)
	assert.True(t, stored.AutoDebit)
	assert.Equal(t, "Salário", stored.Title)
}

func TestEntryServiceUpdateFieldRejectsInvalidKind(t *testing.T) {
	f := newFixture(t)
	entry := f.entry(t, EntryInput{})

	_, err := f.entries.UpdateField(context.Background(), entry, model.FieldKind, "GIFT", now)
	var verr *model.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, []string{model.MsgNotIncluded}, verr.On(string(model.FieldKind)))
	assert.Equal(t, model.EntryKindExpense, f.reload(t, entry.ID).Kind)
}

func TestEntryServiceUpdateFieldUnknown(t *testing.T) {
	f := newFixture(t)
	entry := f.entry(t, EntryInput{})

	_, err := f.entries.UpdateField(context.Background(), entry, model.EntryField("credit_card_id"), "1", now)
	assert.ErrorIs(t, err, ErrUnknownField)
}

func TestEntryServiceDestroy(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	unexpected := f.entry(t, EntryInput{Title: "Conserto", RecordKind: model.EntryRecordKindUnexpected})
	require.NoError(t, f.entries.Destroy(ctx, unexpected, now))
	assert.Nil(t, unexpected.DeletedAt)
	assert.Nil(t, f.reload(t, unexpected.ID).DeletedAt)

	fixed := f.entry(t, EntryInput{Title: "Internet", RecordKind: model.EntryRecordKindFixed})
	require.NoError(t, f.entries.Destroy(ctx, fixed, now))
	require.NotNil(t, fixed.DeletedAt)
	require.NotNil(t, f.reload(t, fixed.ID).DeletedAt)

	active, err := f.entries.ListActive(ctx, f.frame.ID)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, unexpected.ID, active[0].ID)

	_, err = f.entries.Get(ctx, fixed.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestEntryServiceBalance(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.entry(t, EntryInput{Kind: model.EntryKindIncome, Title: "Salário", Value: decimal.RequireFromString("3000")})
	f.entry(t, EntryInput{Title: "Aluguel", Value: decimal.RequireFromString("1200.50")})
	removed := f.entry(t, EntryInput{Title: "Academia", Value: decimal.RequireFromString("99.90")})
	require.NoError(t, f.entries.Destroy(ctx, removed, now))

	balance, err := f.entries.Balance(ctx, f.frame.ID)
	require.NoError(t, err)
	assert.True(t, balance.Income.Equal(decimal.RequireFromString("3000")))
	assert.True(t, balance.Expense.Equal(decimal.RequireFromString("1200.50")))
	assert.True(t, balance.Total().Equal(decimal.RequireFromString("1799.50")))
}

func TestEntryServiceCreateValidates(t *testing.T) {
	f := newFixture(t)

	_, err := f.entries.Create(context.Background(), EntryInput{TimeFrameID: f.frame.ID, Kind: model.EntryKindExpense, Title: "  "})
	var verr *model.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, []string{model.MsgBlank}, verr.On(string(model.FieldTitle)))

	_, err = f.entries.Create(context.Background(), EntryInput{TimeFrameID: f.frame.ID + 100, Kind: model.EntryKindExpense, Title: "Luz"})
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, []string{model.MsgMustExist}, verr.On(string(model.FieldTimeFrameID)))
}

func TestTimeFrameServiceCurrent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	feb, err := f.frames.Create(ctx, f.group.ID, day(2024, time.February, 1), day(2024, time.February, 29))
	require.NoError(t, err)

	current, err := f.frames.Current(ctx, f.group.ID, now)
	require.NoError(t, err)
	assert.Equal(t, f.frame.ID, current.ID)

	current, err = f.frames.Current(ctx, f.group.ID, time.Date(2024, time.February, 29, 23, 59, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, feb.ID, current.ID)

	_, err = f.frames.Current(ctx, f.group.ID, day(2024, time.March, 1))
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestTimeFrameServiceCreateRejectsOverlap(t *testing.T) {
	f := newFixture(t)

	_, err := f.frames.Create(context.Background(), f.group.ID, day(2024, time.January, 31), day(2024, time.February, 10))
	var verr *model.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, []string{model.MsgConflictingPeriod}, verr.On(model.FieldBase))

	frames, err := f.frames.List(context.Background(), f.group.ID)
	require.NoError(t, err)
	assert.Len(t, frames, 1)
}

func TestTimeFrameServiceDestroy(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.NoError(t, f.frames.Destroy(ctx, f.frame))
	_, err := f.frames.Get(ctx, f.frame.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestGroupServiceEnsureForChatIsIdempotent(t *testing.T) {
	f := newFixture(t)

	again, err := f.groups.EnsureForChat(context.Background(), 42, "Casa nova")
	require.NoError(t, err)
	assert.Equal(t, f.group.ID, again.ID)
	assert.Equal(t, "Casa nova", again.Name)

	groups, err := f.groups.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, groups, 1)
}

func TestReminderServiceSummary(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.entry(t, EntryInput{Title: "Aluguel", Value: decimal.RequireFromString("1200"), BillOn: ptr(day(2024, time.January, 5))})
	f.entry(t, EntryInput{Title: "Luz <casa>", Value: decimal.RequireFromString("150"), BillOn: ptr(day(2024, time.January, 15))})
	f.entry(t, EntryInput{Kind: model.EntryKindIncome, Title: "Salário", Value: decimal.RequireFromString("3000"), Done: true})

	summary, err := f.reminder.Summary(ctx, *f.group, now)
	require.NoError(t, err)

	assert.Contains(t, summary, "Resumo do período")
	assert.Contains(t, summary, "01/01/2024 – 31/01/2024")
	assert.Contains(t, summary, "Luz &lt;casa&gt;")
	assert.Contains(t, summary, "1.650,00")

	late := strings.Index(summary, "Atrasado")
	warning := strings.Index(summary, "Vence em breve")
	done := strings.Index(summary, "Pago")
	require.True(t, late >= 0 && warning >= 0 && done >= 0, summary)
	assert.Less(t, late, warning)
	assert.Less(t, warning, done)
	assert.NotContains(t, summary, "Pendente")
}

func TestReminderServiceSummaryWithoutCurrentFrame(t *testing.T) {
	f := newFixture(t)

	summary, err := f.reminder.Summary(context.Background(), *f.group, day(2025, time.June, 1))
	require.NoError(t, err)
	assert.Contains(t, summary, "/newframe")
}

func TestStatusIconCoversEveryStatus(t *testing.T) {
	seen := make(map[string]model.EntryStatus)
	for _, status := range model.EntryStatuses {
		icon := StatusIcon(status)
		require.NotEmpty(t, icon, status)
		_, dup := seen[icon]
		assert.False(t, dup, "icon %s reused by %s", icon, status)
		seen[icon] = status
	}
}
