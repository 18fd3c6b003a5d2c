package service

import (
	"context"
	"errors"
	"fmt"
	"html"
	"strings"
	"time"

	"gorm.io/gorm"

	"bill-tracker/internal/format"
	"bill-tracker/internal/model"
)

var statusIcons = map[model.EntryStatus]string{
	model.EntryStatusLate:    "⚠️",
	model.EntryStatusWarning: "⏳",
	model.EntryStatusPending: "🟢",
	model.EntryStatusDone:    "✅",
}

// StatusIcon returns the emoji shown next to entries with the given status.
func StatusIcon(status model.EntryStatus) string {
	return statusIcons[status]
}

// ReminderService builds human-readable summaries for periodic notifications.
type ReminderService struct {
	frames  *TimeFrameService
	entries *EntryService
	format  *format.Formatter
}

func NewReminderService(frames *TimeFrameService, entries *EntryService, formatter *format.Formatter) *ReminderService {
	return &ReminderService{frames: frames, entries: entries, format: formatter}
}

// Summary renders the group's current time frame as Telegram HTML: entries
// grouped by status, most urgent first, followed by the balance.
func (s *ReminderService) Summary(ctx context.Context, group model.Group, now time.Time) (string, error) {
	tf, err := s.frames.Current(ctx, group.ID, now)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return s.format.Label("report.no_frame"), nil
	}
	if err != nil {
		return "", err
	}

	entries, err := s.entries.ListActive(ctx, tf.ID)
	if err != nil {
		return "", err
	}

	byStatus := make(map[model.EntryStatus][]model.Entry)
	for _, entry := range entries {
		status := s.entries.Status(&entry, now)
		byStatus[status] = append(byStatus[status], entry)
	}

	var builder strings.Builder
	builder.WriteString(fmt.Sprintf("📋 <b>%s</b>\n", html.EscapeString(s.format.Label("report.title"))))
	builder.WriteString(fmt.Sprintf("🗓 %s – %s\n\n",
		s.format.ShortDate(time.Time(*tf.StartOn)), s.format.ShortDate(time.Time(*tf.EndOn))))

	if len(entries) == 0 {
		builder.WriteString(fmt.Sprintf("— %s\n", html.EscapeString(s.format.Label("report.empty"))))
	}

	for _, status := range model.EntryStatuses {
		section := byStatus[status]
		if len(section) == 0 {
			continue
		}
		builder.WriteString(fmt.Sprintf("%s <b>%s</b>\n", StatusIcon(status), html.EscapeString(s.format.Label(status.LabelKey()))))
		for _, entry := range section {
			builder.WriteString(s.formatEntry(entry))
		}
		builder.WriteByte('\n')
	}

	balance := sumEntries(entries)
	builder.WriteString(fmt.Sprintf("💰 %s: %s\n", s.format.Label("report.income"), s.format.Currency(balance.Income)))
	builder.WriteString(fmt.Sprintf("💸 %s: %s\n", s.format.Label("report.expense"), s.format.Currency(balance.Expense)))
	builder.WriteString(fmt.Sprintf("📊 <b>%s: %s</b>", s.format.Label("report.balance"), s.format.Currency(balance.Total())))

	return strings.TrimSpace(builder.String()), nil
}

func (s *ReminderService) formatEntry(entry model.Entry) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("• <b>#%d</b> %s · %s", entry.ID, html.EscapeString(strings.TrimSpace(entry.Title)), s.format.Currency(entry.Value)))
	if entry.Kind == model.EntryKindIncome {
		sb.WriteString(fmt.Sprintf(" <i>(%s)</i>", html.EscapeString(s.format.Label(entry.Kind.LabelKey()))))
	}
	if entry.BillOn != nil {
		sb.WriteString(fmt.Sprintf("\n   ⏰ %s", s.format.ShortDate(time.Time(*entry.BillOn))))
	}
	if entry.AutoDebit {
		sb.WriteString(" 🔁")
	}
	sb.WriteByte('\n')
	return sb.String()
}
