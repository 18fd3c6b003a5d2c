package bot

import (
	"errors"
	"sort"
	"strconv"
	"strings"
	"time"
	"unicode"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"bill-tracker/internal/model"
	"bill-tracker/internal/service"
)

var errBadArgs = errors.New("bad command arguments")

// editableFields maps what users may type after /set to entry columns.
// time_frame_id is left out so entries cannot be moved across groups.
var editableFields = map[string]model.EntryField{
	"tipo":          model.FieldKind,
	"titulo":        model.FieldTitle,
	"título":        model.FieldTitle,
	"descricao":     model.FieldDescription,
	"descrição":     model.FieldDescription,
	"valor":         model.FieldValue,
	"vencimento":    model.FieldBillOn,
	"debito":        model.FieldAutoDebit,
	"débito":        model.FieldAutoDebit,
	"pago":          model.FieldDone,
	"classificacao": model.FieldRecordKind,
	"classificação": model.FieldRecordKind,

	string(model.FieldKind):        model.FieldKind,
	string(model.FieldTitle):       model.FieldTitle,
	string(model.FieldDescription): model.FieldDescription,
	string(model.FieldValue):       model.FieldValue,
	string(model.FieldBillOn):      model.FieldBillOn,
	string(model.FieldAutoDebit):   model.FieldAutoDebit,
	string(model.FieldDone):        model.FieldDone,
	string(model.FieldRecordKind):  model.FieldRecordKind,
}

var kindAliases = map[string]model.EntryKind{
	"despesa": model.EntryKindExpense,
	"receita": model.EntryKindIncome,
	"expense": model.EntryKindExpense,
	"income":  model.EntryKindIncome,
}

var recordKindAliases = map[string]model.EntryRecordKind{
	"fixa":       model.EntryRecordKindFixed,
	"variavel":   model.EntryRecordKindVariable,
	"variável":   model.EntryRecordKindVariable,
	"imprevista": model.EntryRecordKindUnexpected,
}

var boolAliases = map[string]string{
	"sim": "true",
	"s":   "true",
	"nao": "false",
	"não": "false",
	"n":   "false",
}

func parseID(raw string) (uint, error) {
	value, err := strconv.ParseUint(strings.TrimSpace(raw), 10, 64)
	if err != nil || value == 0 {
		return 0, errBadArgs
	}
	return uint(value), nil
}

// parseFrameArgs reads "<start> <end>" in d/m/Y.
func parseFrameArgs(args string) (time.Time, time.Time, error) {
	parts := strings.Fields(args)
	if len(parts) != 2 {
		return time.Time{}, time.Time{}, errBadArgs
	}
	start, err := time.Parse(service.BillOnLayout, parts[0])
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	end, err := time.Parse(service.BillOnLayout, parts[1])
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	return start, end, nil
}

// parseAddArgs reads "<kind> <value> <title...>".
func parseAddArgs(args string) (model.EntryKind, string, string, error) {
	parts := strings.Fields(args)
	if len(parts) < 3 {
		return "", "", "", errBadArgs
	}
	kind, ok := kindAliases[strings.ToLower(parts[0])]
	if !ok {
		kind = model.EntryKind(strings.ToUpper(parts[0]))
	}
	return kind, parts[1], strings.Join(parts[2:], " "), nil
}

// parseSetArgs reads "<id> <field> <value...>" and maps the value aliases of
// the field to what the entry service accepts.
func parseSetArgs(args string) (uint, model.EntryField, string, error) {
	parts := strings.Fields(args)
	if len(parts) < 2 {
		return 0, "", "", errBadArgs
	}
	id, err := parseID(parts[0])
	if err != nil {
		return 0, "", "", err
	}
	field, ok := editableFields[strings.ToLower(parts[1])]
	if !ok {
		return 0, "", "", errBadArgs
	}
	return id, field, normalizeArg(field, strings.Join(parts[2:], " ")), nil
}

func normalizeArg(field model.EntryField, raw string) string {
	key := strings.ToLower(strings.TrimSpace(raw))
	switch field {
	case model.FieldKind:
		if kind, ok := kindAliases[key]; ok {
			return string(kind)
		}
		return strings.ToUpper(strings.TrimSpace(raw))
	case model.FieldRecordKind:
		if kind, ok := recordKindAliases[key]; ok {
			return string(kind)
		}
		return strings.ToUpper(strings.TrimSpace(raw))
	case model.FieldAutoDebit, model.FieldDone:
		if value, ok := boolAliases[key]; ok {
			return value
		}
	}
	return raw
}

// fieldNames lists the Portuguese field names accepted by /set.
func fieldNames() []string {
	seen := make(map[model.EntryField]string)
	for name, field := range editableFields {
		if name == string(field) || !isASCII(name) {
			continue
		}
		seen[field] = name
	}
	names := make([]string, 0, len(seen))
	for _, name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func isASCII(s string) bool {
	for _, r := range s {
		if r > unicode.MaxASCII {
			return false
		}
	}
	return true
}

func isConfirmInput(text string) bool {
	value := strings.TrimSpace(strings.ToLower(text))
	return value == strings.ToLower(btnConfirm) || value == "confirmar" || value == "sim"
}

func isCancelInput(text string) bool {
	value := strings.TrimSpace(strings.ToLower(text))
	return value == strings.ToLower(btnCancel) || value == "cancelar" || value == "não" || value == "nao"
}

func shortTitle(title string, maxLen int) string {
	clean := strings.TrimSpace(strings.ReplaceAll(title, "\n", " "))
	clean = normalizeTitle(clean)
	runes := []rune(clean)
	if len(runes) <= maxLen {
		return clean
	}
	if maxLen <= 1 {
		return string(runes[:maxLen])
	}
	return string(runes[:maxLen-1]) + "…"
}

func normalizeTitle(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return value
	}
	runes := []rune(value)
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}

func mainMenuKeyboard() tgbotapi.ReplyKeyboardMarkup {
	kb := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(menuLabelEntries),
			tgbotapi.NewKeyboardButton(menuLabelReport),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(menuLabelFrames),
			tgbotapi.NewKeyboardButton(menuLabelHelp),
		),
	)
	kb.ResizeKeyboard = true
	kb.OneTimeKeyboard = false
	return kb
}
