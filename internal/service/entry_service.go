package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"bill-tracker/internal/format"
	"bill-tracker/internal/model"
	"bill-tracker/internal/repository"
)

// BillOnLayout is the d/m/Y layout accepted for due dates; day and month may
// omit the leading zero.
const BillOnLayout = "2/1/2006"

// ErrUnknownField is returned for fields the single-field update does not handle.
var ErrUnknownField = errors.New("unknown entry field")

// EntryInput represents data required to create an entry.
type EntryInput struct {
	TimeFrameID uint
	Kind        model.EntryKind
	Title       string
	Description string
	Value       decimal.Decimal
	BillOn      *time.Time
	AutoDebit   bool
	Done        bool
	RecordKind  model.EntryRecordKind
}

// Balance sums the active entries of a time frame.
type Balance struct {
	Income  decimal.Decimal
	Expense decimal.Decimal
}

func (b Balance) Total() decimal.Decimal {
	return b.Income.Sub(b.Expense)
}

// EntryService wraps entry-related business logic.
type EntryService struct {
	entries *repository.EntryRepository
	format  *format.Formatter
	loc     *time.Location
}

// NewEntryService builds the service. loc decides which calendar day "now" falls on.
func NewEntryService(entries *repository.EntryRepository, formatter *format.Formatter, loc *time.Location) *EntryService {
	if loc == nil {
		loc = time.Local
	}
	return &EntryService{entries: entries, format: formatter, loc: loc}
}

func (s *EntryService) Create(ctx context.Context, input EntryInput) (*model.Entry, error) {
	entry := model.Entry{
		TimeFrameID: input.TimeFrameID,
		Kind:        input.Kind,
		Title:       strings.TrimSpace(input.Title),
		Description: input.Description,
		Value:       input.Value.Round(model.ValueScale),
		AutoDebit:   input.AutoDebit,
		Done:        input.Done,
		RecordKind:  input.RecordKind,
	}
	if input.BillOn != nil {
		entry.BillOn = model.DateOf(*input.BillOn)
	}

	if err := s.entries.Create(ctx, &entry); err != nil {
		return nil, err
	}
	slog.Info("entry created", "entry_id", entry.ID, "time_frame_id", entry.TimeFrameID, "kind", entry.Kind)
	return &entry, nil
}

// Update saves every field of an already loaded entry.
func (s *EntryService) Update(ctx context.Context, entry *model.Entry) error {
	return s.entries.Save(ctx, entry)
}

// Get returns an active entry.
func (s *EntryService) Get(ctx context.Context, id uint) (*model.Entry, error) {
	return s.entries.FindActiveByID(ctx, id)
}

func (s *EntryService) ListActive(ctx context.Context, timeFrameID uint) ([]model.Entry, error) {
	return s.entries.ListActiveByTimeFrame(ctx, timeFrameID)
}

// Status derives the entry status for the calendar day now falls on.
func (s *EntryService) Status(entry *model.Entry, now time.Time) model.EntryStatus {
	return entry.StatusOn(now.In(s.loc))
}

// Destroy soft-deletes the entry. Entries that are not destroyable are left
// untouched and no error is reported.
func (s *EntryService) Destroy(ctx context.Context, entry *model.Entry, now time.Time) error {
	if !entry.Destroyable() {
		slog.Info("entry not destroyable, skipping", "entry_id", entry.ID, "record_kind", entry.RecordKind)
		return nil
	}
	deletedAt := now
	if err := s.persist(ctx, entry, model.FieldDeletedAt, func(e *model.Entry) { e.DeletedAt = &deletedAt }); err != nil {
		return err
	}
	slog.Info("entry deleted", "entry_id", entry.ID)
	return nil
}

// UpdateField normalizes raw for field, validates and stores that single
// column, and returns the new value rendered for display.
//
// A *model.FormatError means raw could not be parsed; a *model.ValidationError
// means the record would become invalid. In both cases neither the stored row
// nor entry change.
func (s *EntryService) UpdateField(ctx context.Context, entry *model.Entry, field model.EntryField, raw string, now time.Time) (string, error) {
	set, err := normalize(field, raw)
	if err != nil {
		return "", err
	}

	if err := s.persist(ctx, entry, field, set); err != nil {
		var verr *model.ValidationError
		if errors.As(err, &verr) {
			slog.Warn("entry update rejected", "entry_id", entry.ID, "field", field, "error", err)
		}
		return "", err
	}

	slog.Info("entry updated", "entry_id", entry.ID, "field", field)
	return s.render(entry, field, now), nil
}

// Balance sums incomes and expenses of the active entries of a time frame.
func (s *EntryService) Balance(ctx context.Context, timeFrameID uint) (Balance, error) {
	entries, err := s.entries.ListActiveByTimeFrame(ctx, timeFrameID)
	if err != nil {
		return Balance{}, fmt.Errorf("list entries: %w", err)
	}
	return sumEntries(entries), nil
}

func sumEntries(entries []model.Entry) Balance {
	balance := Balance{Income: decimal.Zero, Expense: decimal.Zero}
	for _, entry := range entries {
		switch entry.Kind {
		case model.EntryKindIncome:
			balance.Income = balance.Income.Add(entry.Value)
		case model.EntryKindExpense:
			balance.Expense = balance.Expense.Add(entry.Value)
		}
	}
	return balance
}

// persist applies set to a copy of entry and stores the single column. entry
// is replaced by the copy only once the write succeeded.
func (s *EntryService) persist(ctx context.Context, entry *model.Entry, field model.EntryField, set func(*model.Entry)) error {
	candidate := *entry
	set(&candidate)
	if err := s.entries.UpdateColumn(ctx, &candidate, field); err != nil {
		return err
	}
	*entry = candidate
	return nil
}

// ParseAmount reads a money amount typed by a user; both "10,50" and "10.50"
// are accepted. The result is rounded to model.ValueScale decimals.
func ParseAmount(raw string) (decimal.Decimal, error) {
	normalized := strings.ReplaceAll(strings.TrimSpace(raw), ",", ".")
	if normalized == "" {
		return decimal.Decimal{}, model.Invalid(string(model.FieldValue), model.MsgBlank)
	}
	value, err := decimal.NewFromString(normalized)
	if err != nil {
		return decimal.Decimal{}, model.Invalid(string(model.FieldValue), model.MsgNotANumber)
	}
	return value.Round(model.ValueScale), nil
}

func normalize(field model.EntryField, raw string) (func(*model.Entry), error) {
	switch field {
	case model.FieldValue:
		value, err := ParseAmount(raw)
		if err != nil {
			return nil, err
		}
		return func(e *model.Entry) { e.Value = value }, nil
	case model.FieldBillOn:
		parsed, err := time.Parse(BillOnLayout, strings.TrimSpace(raw))
		if err != nil {
			return nil, &model.FormatError{Field: string(field), Value: raw, Layout: "dd/mm/yyyy", Err: err}
		}
		return func(e *model.Entry) { e.BillOn = model.DateOf(parsed) }, nil
	case model.FieldAutoDebit, model.FieldDone:
		flag, err := strconv.ParseBool(strings.TrimSpace(raw))
		if err != nil {
			return nil, model.Invalid(string(field), model.MsgNotIncluded)
		}
		if field == model.FieldDone {
			return func(e *model.Entry) { e.Done = flag }, nil
		}
		return func(e *model.Entry) { e.AutoDebit = flag }, nil
	case model.FieldTimeFrameID:
		id, err := strconv.ParseUint(strings.TrimSpace(raw), 10, 64)
		if err != nil {
			return nil, model.Invalid(string(field), model.MsgNotANumber)
		}
		return func(e *model.Entry) { e.TimeFrameID = uint(id) }, nil
	case model.FieldKind:
		return func(e *model.Entry) { e.Kind = model.EntryKind(raw) }, nil
	case model.FieldRecordKind:
		return func(e *model.Entry) { e.RecordKind = model.EntryRecordKind(raw) }, nil
	case model.FieldTitle:
		return func(e *model.Entry) { e.Title = raw }, nil
	case model.FieldDescription:
		return func(e *model.Entry) { e.Description = raw }, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownField, field)
	}
}

func (s *EntryService) render(entry *model.Entry, field model.EntryField, now time.Time) string {
	switch field {
	case model.FieldKind:
		return s.format.Label(entry.Kind.LabelKey())
	case model.FieldValue:
		return s.format.Currency(entry.Value)
	case model.FieldBillOn:
		return s.format.LongDate(time.Time(*entry.BillOn))
	case model.FieldAutoDebit:
		return s.format.Bool(entry.AutoDebit)
	case model.FieldDone:
		return s.format.Label(s.Status(entry, now).LabelKey())
	case model.FieldTimeFrameID:
		return strconv.FormatUint(uint64(entry.TimeFrameID), 10)
	case model.FieldRecordKind:
		return string(entry.RecordKind)
	case model.FieldTitle:
		return entry.Title
	case model.FieldDescription:
		return entry.Description
	default:
		return ""
	}
}
