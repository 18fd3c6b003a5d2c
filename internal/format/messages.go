package format

import (
	"fmt"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message/catalog"

	"bill-tracker/internal/model"
)

var ptMonths = []string{
	"janeiro", "fevereiro", "março", "abril", "maio", "junho",
	"julho", "agosto", "setembro", "outubro", "novembro", "dezembro",
}

var translations = map[language.Tag]map[string]string{
	language.BrazilianPortuguese: {
		"true":  "Sim",
		"false": "Não",

		model.EntryKindExpense.LabelKey(): "Despesa",
		model.EntryKindIncome.LabelKey():  "Receita",

		model.EntryRecordKindFixed.LabelKey():      "Fixa",
		model.EntryRecordKindVariable.LabelKey():   "Variável",
		model.EntryRecordKindUnexpected.LabelKey(): "Imprevista",

		model.EntryStatusDone.LabelKey():    "Pago",
		model.EntryStatusLate.LabelKey():    "Atrasado",
		model.EntryStatusWarning.LabelKey(): "Vence em breve",
		model.EntryStatusPending.LabelKey(): "Pendente",

		"field." + model.FieldGroupID:             "Grupo",
		"field." + model.FieldStartOn:             "Data inicial",
		"field." + model.FieldEndOn:               "Data final",
		"field." + string(model.FieldTimeFrameID): "Período",
		"field." + string(model.FieldKind):        "Tipo",
		"field." + string(model.FieldTitle):       "Título",
		"field." + string(model.FieldDescription): "Descrição",
		"field." + string(model.FieldValue):       "Valor",
		"field." + string(model.FieldBillOn):      "Vencimento",
		"field." + string(model.FieldAutoDebit):   "Débito automático",
		"field." + string(model.FieldDone):        "Pago",
		"field." + string(model.FieldRecordKind):  "Classificação",

		model.MsgBlank:               "não pode ficar em branco",
		model.MsgNotIncluded:         "não está incluído na lista",
		model.MsgNotANumber:          "não é um número",
		model.MsgMustExist:           "deve existir",
		model.MsgEndNotAfterStart:    "deve ser maior que data inicial",
		model.MsgConflictingPeriod:   "Está conflitando com outro período",
		model.MsgInvalidForTimeFrame: "é inválido para este período",

		"date.long": "%[1]s de %[2]s de %[3]s",

		"report.title":    "Resumo do período",
		"report.empty":    "nenhum lançamento neste período",
		"report.no_frame": "Nenhum período cobre a data de hoje. Crie um com /newframe.",
		"report.income":   "Receitas",
		"report.expense":  "Despesas",
		"report.balance":  "Saldo",
	},
	language.English: {
		"true":  "Yes",
		"false": "No",

		model.EntryKindExpense.LabelKey(): "Expense",
		model.EntryKindIncome.LabelKey():  "Income",

		model.EntryRecordKindFixed.LabelKey():      "Fixed",
		model.EntryRecordKindVariable.LabelKey():   "Variable",
		model.EntryRecordKindUnexpected.LabelKey(): "Unexpected",

		model.EntryStatusDone.LabelKey():    "Paid",
		model.EntryStatusLate.LabelKey():    "Late",
		model.EntryStatusWarning.LabelKey(): "Due soon",
		model.EntryStatusPending.LabelKey(): "Pending",

		"field." + model.FieldGroupID:             "Group",
		"field." + model.FieldStartOn:             "Start date",
		"field." + model.FieldEndOn:               "End date",
		"field." + string(model.FieldTimeFrameID): "Time frame",
		"field." + string(model.FieldKind):        "Kind",
		"field." + string(model.FieldTitle):       "Title",
		"field." + string(model.FieldDescription): "Description",
		"field." + string(model.FieldValue):       "Value",
		"field." + string(model.FieldBillOn):      "Due date",
		"field." + string(model.FieldAutoDebit):   "Auto debit",
		"field." + string(model.FieldDone):        "Paid",
		"field." + string(model.FieldRecordKind):  "Record kind",

		model.MsgConflictingPeriod: "Conflicts with another period",

		"date.long": "%[2]s %[1]s, %[3]s",

		"report.title":    "Period summary",
		"report.empty":    "no entries in this period",
		"report.no_frame": "No time frame covers today. Create one with /newframe.",
		"report.income":   "Income",
		"report.expense":  "Expenses",
		"report.balance":  "Balance",
	},
}

func newCatalog() (*catalog.Builder, error) {
	b := catalog.NewBuilder(catalog.Fallback(language.English))
	for tag, messages := range translations {
		for key, msg := range messages {
			if err := b.SetString(tag, key, msg); err != nil {
				return nil, fmt.Errorf("register message %q for %s: %w", key, tag, err)
			}
		}
	}
	for i, name := range ptMonths {
		key := fmt.Sprintf("month.%d", i+1)
		if err := b.SetString(language.BrazilianPortuguese, key, name); err != nil {
			return nil, fmt.Errorf("register message %q: %w", key, err)
		}
		if err := b.SetString(language.English, key, time.Month(i+1).String()); err != nil {
			return nil, fmt.Errorf("register message %q: %w", key, err)
		}
	}
	return b, nil
}
