package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"gorm.io/gorm"

	"bill-tracker/internal/model"
	"bill-tracker/internal/service"
)

func (b *Bot) sendEntryList(ctx context.Context, chatID int64, group *model.Group) error {
	now := time.Now()
	tf, err := b.frames.Current(ctx, group.ID, now)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return b.sendText(chatID, msgNoCurrentFrame)
	}
	if err != nil {
		return err
	}

	entries, err := b.entries.ListActive(ctx, tf.ID)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		return b.sendText(chatID, "Nenhum lançamento no período atual. Use /add para lançar uma conta.")
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("📋 <b>Lançamentos</b> (%s – %s)\n\n",
		b.format.ShortDate(time.Time(*tf.StartOn)), b.format.ShortDate(time.Time(*tf.EndOn))))

	var buttons [][]tgbotapi.InlineKeyboardButton
	for i := range entries {
		entry := &entries[i]
		status := b.entries.Status(entry, now)
		sb.WriteString(b.formatEntry(entry, status))

		var row []tgbotapi.InlineKeyboardButton
		if status != model.EntryStatusDone {
			row = append(row, tgbotapi.NewInlineKeyboardButtonData(
				fmt.Sprintf("✅ #%d %s", entry.ID, shortTitle(entry.Title, titleMaxLen)),
				fmt.Sprintf("%s%d", cbDonePrefix, entry.ID),
			))
		}
		if entry.Destroyable() {
			row = append(row, tgbotapi.NewInlineKeyboardButtonData(
				fmt.Sprintf("🗑 #%d", entry.ID),
				fmt.Sprintf("%s%d", cbDeletePrefix, entry.ID),
			))
		}
		if len(row) > 0 {
			buttons = append(buttons, row)
		}
	}

	msg := tgbotapi.NewMessage(chatID, sb.String())
	msg.ParseMode = tgbotapi.ModeHTML
	if len(buttons) > 0 {
		msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(buttons...)
	}
	_, err = b.api.Send(msg)
	return err
}

func (b *Bot) formatEntry(entry *model.Entry, status model.EntryStatus) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%s <b>#%d</b> %s · %s\n", service.StatusIcon(status), entry.ID,
		escape(normalizeTitle(entry.Title)), b.format.Currency(entry.Value)))
	sb.WriteString(fmt.Sprintf("   %s · %s", escape(b.format.Label(entry.Kind.LabelKey())), escape(b.format.Label(status.LabelKey()))))
	if entry.RecordKind != "" {
		sb.WriteString(fmt.Sprintf(" · %s", escape(b.format.Label(entry.RecordKind.LabelKey()))))
	}
	sb.WriteByte('\n')
	if entry.BillOn != nil {
		sb.WriteString(fmt.Sprintf("   ⏰ %s", b.format.LongDate(time.Time(*entry.BillOn))))
		if entry.AutoDebit {
			sb.WriteString(" 🔁")
		}
		sb.WriteByte('\n')
	}
	if entry.Description != "" {
		sb.WriteString(fmt.Sprintf("   📝 %s\n", escape(entry.Description)))
	}
	sb.WriteByte('\n')
	return sb.String()
}

func (b *Bot) handleCallback(ctx context.Context, cb *tgbotapi.CallbackQuery) error {
	if cb == nil || cb.From == nil || cb.Message == nil || cb.Message.Chat == nil {
		return nil
	}

	data := cb.Data
	var (
		prefix string
		notice string
	)
	switch {
	case strings.HasPrefix(data, cbDonePrefix):
		prefix = cbDonePrefix
	case strings.HasPrefix(data, cbDeletePrefix):
		prefix = cbDeletePrefix
	case strings.HasPrefix(data, cbConfirmPrefix):
		prefix = cbConfirmPrefix
	case strings.HasPrefix(data, cbCancelPrefix):
		b.clearConfirmation(cb.Message.Chat.ID)
		b.ackCallback(cb.ID, "Remoção cancelada")
		return nil
	default:
		b.ackCallback(cb.ID, "")
		return nil
	}

	slog.Info("callback received", "chat_id", cb.Message.Chat.ID, "user_id", cb.From.ID, "data", data)
	entryID, err := parseID(strings.TrimPrefix(data, prefix))
	if err != nil {
		b.ackCallback(cb.ID, "")
		return nil
	}

	switch prefix {
	case cbDonePrefix:
		notice, err = b.markDone(ctx, cb.Message.Chat, cb.From, entryID)
		b.ackCallback(cb.ID, notice)
		return err
	case cbDeletePrefix:
		b.ackCallback(cb.ID, "")
		return b.askDeleteConfirmation(ctx, cb.Message.Chat, cb.From, entryID)
	default:
		b.ackCallback(cb.ID, "")
		b.clearConfirmation(cb.Message.Chat.ID)
		return b.confirmDelete(ctx, cb.Message.Chat, cb.From, entryID)
	}
}

func (b *Bot) ackCallback(id, text string) {
	if _, err := b.api.Request(tgbotapi.NewCallback(id, text)); err != nil {
		slog.Warn("callback ack", "error", err)
	}
}

// markDone flags the entry as paid and refreshes the list.
func (b *Bot) markDone(ctx context.Context, chat *tgbotapi.Chat, from *tgbotapi.User, entryID uint) (string, error) {
	group, err := b.ensureGroup(ctx, chat, from)
	if err != nil {
		return "", err
	}
	entry, err := b.entryForGroup(ctx, group, entryID)
	if err != nil {
		return "Lançamento não encontrado", nil
	}

	shown, err := b.entries.UpdateField(ctx, entry, model.FieldDone, "true", time.Now())
	if err != nil {
		var verr *model.ValidationError
		if errors.As(err, &verr) {
			return "", b.sendText(chat.ID, "❌ "+escape(b.format.Errors(verr)))
		}
		return "", err
	}
	return fmt.Sprintf("#%d: %s", entry.ID, shown), b.sendEntryList(ctx, chat.ID, group)
}

func (b *Bot) askDeleteConfirmation(ctx context.Context, chat *tgbotapi.Chat, from *tgbotapi.User, entryID uint) error {
	group, err := b.ensureGroup(ctx, chat, from)
	if err != nil {
		return err
	}
	entry, err := b.entryForGroup(ctx, group, entryID)
	if err != nil {
		return b.sendText(chat.ID, "Lançamento não encontrado.")
	}

	b.setConfirmation(chat.ID, entry.ID)
	text := fmt.Sprintf("Remover <b>#%d</b> \"%s\"?", entry.ID, escape(shortTitle(entry.Title, titleMaxLen)))
	markup := tgbotapi.NewInlineKeyboardMarkup(tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData(btnConfirm, fmt.Sprintf("%s%d", cbConfirmPrefix, entry.ID)),
		tgbotapi.NewInlineKeyboardButtonData(btnCancel, fmt.Sprintf("%s%d", cbCancelPrefix, entry.ID)),
	))
	return b.sendWithReplyMarkup(chat.ID, text, markup)
}

func (b *Bot) confirmDelete(ctx context.Context, chat *tgbotapi.Chat, from *tgbotapi.User, entryID uint) error {
	group, err := b.ensureGroup(ctx, chat, from)
	if err != nil {
		return err
	}
	entry, err := b.entryForGroup(ctx, group, entryID)
	if err != nil {
		return b.sendText(chat.ID, "Lançamento não encontrado.")
	}
	return b.destroyEntry(ctx, chat.ID, entry)
}
