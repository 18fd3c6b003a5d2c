package bot

import (
	"context"
	"errors"
	"fmt"
	"html"
	"log/slog"
	"strings"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"gorm.io/gorm"

	"bill-tracker/internal/format"
	"bill-tracker/internal/model"
	"bill-tracker/internal/service"
)

const (
	cbDonePrefix    = "done:"
	cbDeletePrefix  = "delete:"
	cbConfirmPrefix = "confirm:"
	cbCancelPrefix  = "cancel:"
)

const (
	btnConfirm        = "✅ Confirmar"
	btnCancel         = "↩️ Cancelar"
	menuLabelEntries  = "📋 Lançamentos"
	menuLabelReport   = "📊 Resumo"
	menuLabelFrames   = "🗓 Períodos"
	menuLabelHelp     = "ℹ️ Ajuda"
	titleMaxLen       = 24
	msgNoCurrentFrame = "Nenhum período cobre a data de hoje. Crie um com /newframe 1/1/2024 31/1/2024."
)

// Bot aggregates Telegram API with services.
type Bot struct {
	api           *tgbotapi.BotAPI
	groups        *service.GroupService
	frames        *service.TimeFrameService
	entries       *service.EntryService
	reminder      *service.ReminderService
	format        *format.Formatter
	loc           *time.Location
	confirmations map[int64]uint
	mu            sync.Mutex
}

// Services bundles what the bot talks to.
type Services struct {
	Groups   *service.GroupService
	Frames   *service.TimeFrameService
	Entries  *service.EntryService
	Reminder *service.ReminderService
}

func New(token string, svc Services, formatter *format.Formatter, loc *time.Location) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("create bot api: %w", err)
	}

	slog.Info("bot authorized", "account", api.Self.UserName)

	if loc == nil {
		loc = time.Local
	}
	return &Bot{
		api:           api,
		groups:        svc.Groups,
		frames:        svc.Frames,
		entries:       svc.Entries,
		reminder:      svc.Reminder,
		format:        formatter,
		loc:           loc,
		confirmations: make(map[int64]uint),
	}, nil
}

// Start begins polling updates until ctx is cancelled.
func (b *Bot) Start(ctx context.Context) error {
	updateConfig := tgbotapi.NewUpdate(0)
	updateConfig.Timeout = 60
	updates := b.api.GetUpdatesChan(updateConfig)

	slog.Info("start polling updates")

	go func() {
		<-ctx.Done()
		b.api.StopReceivingUpdates()
	}()

	for update := range updates {
		switch {
		case update.CallbackQuery != nil:
			if err := b.handleCallback(ctx, update.CallbackQuery); err != nil {
				slog.Error("handle callback", "error", err)
			}
		case update.Message != nil:
			if update.Message.Chat == nil {
				continue
			}
			if err := b.handleMessage(ctx, update.Message); err != nil {
				slog.Error("handle message", "chat_id", update.Message.Chat.ID, "error", err)
			}
		}
	}

	return nil
}

func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) error {
	if msg.From == nil {
		return nil
	}

	if msg.IsCommand() {
		slog.Info("command received", "chat_id", msg.Chat.ID, "user_id", msg.From.ID, "command", msg.Command(), "args", msg.CommandArguments())
		return b.handleCommand(ctx, msg)
	}

	if handled, err := b.handleMenuAlias(ctx, msg); handled {
		return err
	}

	if pending, ok := b.getConfirmation(msg.Chat.ID); ok {
		return b.handleConfirmationResponse(ctx, msg, pending)
	}

	if !msg.Chat.IsPrivate() {
		return nil
	}
	return b.sendText(msg.Chat.ID, "Não entendi a mensagem. Use /add para lançar uma conta ou /help para ver os comandos.")
}

func (b *Bot) handleCommand(ctx context.Context, msg *tgbotapi.Message) error {
	switch msg.Command() {
	case "start":
		return b.handleStart(ctx, msg)
	case "help":
		return b.handleHelp(msg)
	case "frames":
		return b.handleFrames(ctx, msg)
	case "newframe":
		return b.handleNewFrame(ctx, msg)
	case "delframe":
		return b.handleDeleteFrame(ctx, msg)
	case "entries":
		return b.handleEntries(ctx, msg)
	case "add":
		return b.handleAdd(ctx, msg)
	case "set":
		return b.handleSet(ctx, msg)
	case "delete":
		return b.handleDelete(ctx, msg)
	case "report":
		return b.handleReport(ctx, msg)
	default:
		return b.sendText(msg.Chat.ID, "Comando não suportado. Veja /help.")
	}
}

func (b *Bot) handleStart(ctx context.Context, msg *tgbotapi.Message) error {
	if _, err := b.ensureGroup(ctx, msg.Chat, msg.From); err != nil {
		return err
	}

	name := strings.TrimSpace(msg.From.FirstName)
	if name == "" {
		name = "pessoa"
	}

	text := fmt.Sprintf(
		"👋 Olá, %s!\n<b>Eu acompanho as contas do mês: vencimentos, pagamentos e saldo.</b>\n\n"+
			"Comece criando um período com /newframe e depois lance as contas com /add.\n"+
			"Veja todos os comandos em /help.",
		escape(name),
	)
	return b.sendText(msg.Chat.ID, text)
}

func (b *Bot) handleHelp(msg *tgbotapi.Message) error {
	text := "ℹ️ <b>Comandos</b>\n" +
		"• /frames — listar os períodos\n" +
		"• /newframe &lt;início&gt; &lt;fim&gt; — criar período (ex.: /newframe 1/1/2024 31/1/2024)\n" +
		"• /delframe &lt;id&gt; — remover período\n" +
		"• /entries — lançamentos do período atual\n" +
		"• /add &lt;tipo&gt; &lt;valor&gt; &lt;título&gt; — lançar conta (ex.: /add despesa 1200,50 Aluguel)\n" +
		"• /set &lt;id&gt; &lt;campo&gt; &lt;valor&gt; — alterar um campo (ex.: /set 3 vencimento 10/1/2024)\n" +
		"• /delete &lt;id&gt; — remover lançamento\n" +
		"• /report — resumo do período atual\n\n" +
		"Campos: " + escape(strings.Join(fieldNames(), ", "))
	return b.sendText(msg.Chat.ID, text)
}

func (b *Bot) handleReport(ctx context.Context, msg *tgbotapi.Message) error {
	group, err := b.ensureGroup(ctx, msg.Chat, msg.From)
	if err != nil {
		return err
	}
	text, err := b.reminder.Summary(ctx, *group, time.Now())
	if err != nil {
		return b.sendText(msg.Chat.ID, fmt.Sprintf("Não foi possível gerar o resumo: %s", escape(err.Error())))
	}
	return b.sendText(msg.Chat.ID, text)
}

func (b *Bot) handleFrames(ctx context.Context, msg *tgbotapi.Message) error {
	group, err := b.ensureGroup(ctx, msg.Chat, msg.From)
	if err != nil {
		return err
	}
	frames, err := b.frames.List(ctx, group.ID)
	if err != nil {
		return err
	}
	if len(frames) == 0 {
		return b.sendText(msg.Chat.ID, "Nenhum período cadastrado. Crie um com /newframe 1/1/2024 31/1/2024.")
	}

	today := time.Now().In(b.loc)
	var sb strings.Builder
	sb.WriteString("🗓 <b>Períodos</b>\n")
	for _, tf := range frames {
		marker := "▫️"
		if tf.Contains(today) {
			marker = "▶️"
		}
		sb.WriteString(fmt.Sprintf("%s <b>#%d</b> %s – %s\n", marker, tf.ID,
			b.format.ShortDate(time.Time(*tf.StartOn)), b.format.ShortDate(time.Time(*tf.EndOn))))
	}
	return b.sendText(msg.Chat.ID, sb.String())
}

func (b *Bot) handleNewFrame(ctx context.Context, msg *tgbotapi.Message) error {
	start, end, err := parseFrameArgs(msg.CommandArguments())
	if err != nil {
		return b.sendText(msg.Chat.ID, "Informe as datas de início e fim: /newframe 1/1/2024 31/1/2024")
	}
	group, err := b.ensureGroup(ctx, msg.Chat, msg.From)
	if err != nil {
		return err
	}

	tf, err := b.frames.Create(ctx, group.ID, start, end)
	if err != nil {
		return b.replyError(msg.Chat.ID, err)
	}
	return b.sendText(msg.Chat.ID, fmt.Sprintf("🗓 Período <b>#%d</b> criado: %s – %s.", tf.ID,
		b.format.LongDate(start), b.format.LongDate(end)))
}

func (b *Bot) handleDeleteFrame(ctx context.Context, msg *tgbotapi.Message) error {
	id, err := parseID(msg.CommandArguments())
	if err != nil {
		return b.sendText(msg.Chat.ID, "Informe o ID do período: /delframe 2")
	}
	group, err := b.ensureGroup(ctx, msg.Chat, msg.From)
	if err != nil {
		return err
	}

	tf, err := b.frames.Get(ctx, id)
	if err != nil || tf.GroupID == nil || *tf.GroupID != group.ID {
		return b.sendText(msg.Chat.ID, "Período não encontrado.")
	}
	if err := b.frames.Destroy(ctx, tf); err != nil {
		return b.sendText(msg.Chat.ID, fmt.Sprintf("Não foi possível remover o período: %s", escape(err.Error())))
	}
	return b.sendText(msg.Chat.ID, fmt.Sprintf("🗑 Período #%d removido.", id))
}

func (b *Bot) handleEntries(ctx context.Context, msg *tgbotapi.Message) error {
	group, err := b.ensureGroup(ctx, msg.Chat, msg.From)
	if err != nil {
		return err
	}
	return b.sendEntryList(ctx, msg.Chat.ID, group)
}

func (b *Bot) handleAdd(ctx context.Context, msg *tgbotapi.Message) error {
	kind, rawValue, title, err := parseAddArgs(msg.CommandArguments())
	if err != nil {
		return b.sendText(msg.Chat.ID, "Use: /add &lt;despesa|receita&gt; &lt;valor&gt; &lt;título&gt;\nEx.: /add despesa 1200,50 Aluguel")
	}
	value, err := service.ParseAmount(rawValue)
	if err != nil {
		return b.replyError(msg.Chat.ID, err)
	}

	group, err := b.ensureGroup(ctx, msg.Chat, msg.From)
	if err != nil {
		return err
	}
	tf, err := b.frames.Current(ctx, group.ID, time.Now())
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return b.sendText(msg.Chat.ID, msgNoCurrentFrame)
	}
	if err != nil {
		return err
	}

	entry, err := b.entries.Create(ctx, service.EntryInput{
		TimeFrameID: tf.ID,
		Kind:        kind,
		Title:       title,
		Value:       value,
	})
	if err != nil {
		return b.replyError(msg.Chat.ID, err)
	}
	return b.sendText(msg.Chat.ID, fmt.Sprintf("➕ %s <b>#%d</b> %s · %s\nDefina o vencimento com /set %d vencimento dd/mm/aaaa",
		escape(b.format.Label(entry.Kind.LabelKey())), entry.ID, escape(entry.Title), b.format.Currency(entry.Value), entry.ID))
}

func (b *Bot) handleSet(ctx context.Context, msg *tgbotapi.Message) error {
	id, field, raw, err := parseSetArgs(msg.CommandArguments())
	if err != nil {
		return b.sendText(msg.Chat.ID, "Use: /set &lt;id&gt; &lt;campo&gt; &lt;valor&gt;\nCampos: "+escape(strings.Join(fieldNames(), ", ")))
	}
	group, err := b.ensureGroup(ctx, msg.Chat, msg.From)
	if err != nil {
		return err
	}
	entry, err := b.entryForGroup(ctx, group, id)
	if err != nil {
		return b.sendText(msg.Chat.ID, "Lançamento não encontrado.")
	}

	shown, err := b.entries.UpdateField(ctx, entry, field, raw, time.Now())
	if err != nil {
		return b.replyError(msg.Chat.ID, err)
	}
	return b.sendText(msg.Chat.ID, fmt.Sprintf("✏️ <b>#%d</b> %s: %s",
		entry.ID, escape(b.format.Label("field."+string(field))), escape(shown)))
}

func (b *Bot) handleDelete(ctx context.Context, msg *tgbotapi.Message) error {
	id, err := parseID(msg.CommandArguments())
	if err != nil {
		return b.sendText(msg.Chat.ID, "Informe o ID do lançamento: /delete 12")
	}
	group, err := b.ensureGroup(ctx, msg.Chat, msg.From)
	if err != nil {
		return err
	}
	entry, err := b.entryForGroup(ctx, group, id)
	if err != nil {
		return b.sendText(msg.Chat.ID, "Lançamento não encontrado.")
	}
	return b.destroyEntry(ctx, msg.Chat.ID, entry)
}

func (b *Bot) destroyEntry(ctx context.Context, chatID int64, entry *model.Entry) error {
	if !entry.Destroyable() {
		return b.sendText(chatID, fmt.Sprintf("Lançamentos %s não podem ser removidos.",
			escape(strings.ToLower(b.format.Label(entry.RecordKind.LabelKey())))))
	}
	if err := b.entries.Destroy(ctx, entry, time.Now()); err != nil {
		return b.sendText(chatID, fmt.Sprintf("Não foi possível remover: %s", escape(err.Error())))
	}
	return b.sendText(chatID, fmt.Sprintf("🗑 \"%s\" removido.", escape(shortTitle(entry.Title, titleMaxLen))))
}

func (b *Bot) handleConfirmationResponse(ctx context.Context, msg *tgbotapi.Message, entryID uint) error {
	text := strings.TrimSpace(strings.ToLower(msg.Text))
	switch {
	case isConfirmInput(text):
		b.clearConfirmation(msg.Chat.ID)
		return b.confirmDelete(ctx, msg.Chat, msg.From, entryID)
	case isCancelInput(text):
		b.clearConfirmation(msg.Chat.ID)
		return b.sendText(msg.Chat.ID, "Remoção cancelada.")
	default:
		return nil
	}
}

// SendReports sends the current summary to every known group.
func (b *Bot) SendReports(ctx context.Context) error {
	groups, err := b.groups.List(ctx)
	if err != nil {
		return err
	}
	now := time.Now()
	for _, group := range groups {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		text, err := b.reminder.Summary(ctx, group, now)
		if err != nil {
			slog.Error("build summary", "group_id", group.ID, "error", err)
			continue
		}
		if err := b.sendText(group.TelegramChatID, text); err != nil {
			slog.Error("send summary", "chat_id", group.TelegramChatID, "error", err)
		}
	}
	return nil
}

func (b *Bot) ensureGroup(ctx context.Context, chat *tgbotapi.Chat, from *tgbotapi.User) (*model.Group, error) {
	return b.groups.EnsureForChat(ctx, chat.ID, chatName(chat, from))
}

// entryForGroup loads an active entry only when it belongs to one of the
// group's time frames.
func (b *Bot) entryForGroup(ctx context.Context, group *model.Group, id uint) (*model.Entry, error) {
	entry, err := b.entries.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	tf, err := b.frames.Get(ctx, entry.TimeFrameID)
	if err != nil {
		return nil, err
	}
	if tf.GroupID == nil || *tf.GroupID != group.ID {
		return nil, gorm.ErrRecordNotFound
	}
	return entry, nil
}

// replyError turns service errors into a chat message.
func (b *Bot) replyError(chatID int64, err error) error {
	var (
		verr *model.ValidationError
		ferr *model.FormatError
	)
	switch {
	case errors.As(err, &verr):
		return b.sendText(chatID, "❌ "+escape(b.format.Errors(verr)))
	case errors.As(err, &ferr):
		return b.sendText(chatID, fmt.Sprintf("❌ Data inválida: \"%s\". Use dd/mm/aaaa.", escape(ferr.Value)))
	case errors.Is(err, service.ErrUnknownField):
		return b.sendText(chatID, "❌ Campo desconhecido. Campos: "+escape(strings.Join(fieldNames(), ", ")))
	default:
		slog.Error("request failed", "chat_id", chatID, "error", err)
		return b.sendText(chatID, fmt.Sprintf("Erro: %s", escape(err.Error())))
	}
}

func (b *Bot) sendText(chatID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	msg.ReplyMarkup = mainMenuKeyboard()
	_, err := b.api.Send(msg)
	return err
}

func (b *Bot) sendWithReplyMarkup(chatID int64, text string, markup interface{}) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	msg.ReplyMarkup = markup
	_, err := b.api.Send(msg)
	return err
}

func (b *Bot) getConfirmation(chatID int64) (uint, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	id, ok := b.confirmations[chatID]
	return id, ok
}

func (b *Bot) setConfirmation(chatID int64, entryID uint) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.confirmations[chatID] = entryID
}

func (b *Bot) clearConfirmation(chatID int64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.confirmations, chatID)
}

func (b *Bot) handleMenuAlias(ctx context.Context, msg *tgbotapi.Message) (bool, error) {
	text := strings.TrimSpace(strings.ToLower(msg.Text))
	switch text {
	case strings.ToLower(menuLabelEntries):
		return true, b.handleEntries(ctx, msg)
	case strings.ToLower(menuLabelReport):
		return true, b.handleReport(ctx, msg)
	case strings.ToLower(menuLabelFrames):
		return true, b.handleFrames(ctx, msg)
	case strings.ToLower(menuLabelHelp):
		return true, b.handleHelp(msg)
	default:
		return false, nil
	}
}

func escape(s string) string {
	return html.EscapeString(s)
}

func chatName(chat *tgbotapi.Chat, from *tgbotapi.User) string {
	if title := strings.TrimSpace(chat.Title); title != "" {
		return title
	}
	if from != nil {
		return strings.TrimSpace(strings.Join([]string{from.FirstName, from.LastName}, " "))
	}
	return ""
}
