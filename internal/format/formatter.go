// Package format renders domain values (labels, money, dates, validation
// errors) for one fixed locale and currency.
package format

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"

	"bill-tracker/internal/model"
)

// Supported lists the locales with translations, the first one being the fallback.
var Supported = []language.Tag{language.BrazilianPortuguese, language.English}

// Config selects the locale and currency used for every rendering.
type Config struct {
	Locale   string
	Currency string
}

// Formatter is safe for concurrent use once built.
type Formatter struct {
	tag     language.Tag
	printer *message.Printer
	unit    currency.Unit
	scale   int
}

// New builds a Formatter. An unknown locale falls back to the first supported
// one; an unknown currency code is an error.
func New(cfg Config) (*Formatter, error) {
	tag := Supported[0]
	if cfg.Locale != "" {
		requested, err := language.Parse(cfg.Locale)
		if err != nil {
			return nil, fmt.Errorf("parse locale %q: %w", cfg.Locale, err)
		}
		_, index, _ := language.NewMatcher(Supported).Match(requested)
		tag = Supported[index]
	}

	code := cfg.Currency
	if code == "" {
		code = "BRL"
	}
	unit, err := currency.ParseISO(code)
	if err != nil {
		return nil, fmt.Errorf("parse currency %q: %w", code, err)
	}
	scale, _ := currency.Standard.Rounding(unit)

	cat, err := newCatalog()
	if err != nil {
		return nil, err
	}

	return &Formatter{
		tag:     tag,
		printer: message.NewPrinter(tag, message.Catalog(cat)),
		unit:    unit,
		scale:   scale,
	}, nil
}

// Language returns the locale the formatter renders in.
func (f *Formatter) Language() language.Tag {
	return f.tag
}

// Label translates a key such as model.EntryKind.LabelKey(). Unknown keys come
// back unchanged.
func (f *Formatter) Label(key string) string {
	return f.printer.Sprintf(key)
}

func (f *Formatter) Bool(v bool) string {
	return f.Label(strconv.FormatBool(v))
}

// Number renders d with the currency's number of decimals and the locale's separators.
func (f *Formatter) Number(d decimal.Decimal) string {
	return f.printer.Sprint(number.Decimal(d.Round(int32(f.scale)).InexactFloat64(), number.Scale(f.scale)))
}

// Currency renders d as an amount of the configured currency, e.g. "R$ 10,50".
func (f *Formatter) Currency(d decimal.Decimal) string {
	symbol := f.printer.Sprint(currency.Symbol(f.unit))
	return symbol + " " + f.Number(d)
}

// LongDate renders the calendar day of t, e.g. "25 de dezembro de 2024".
func (f *Formatter) LongDate(t time.Time) string {
	y, m, d := t.Date()
	month := f.Label(fmt.Sprintf("month.%d", int(m)))
	return f.printer.Sprintf("date.long", strconv.Itoa(d), month, strconv.Itoa(y))
}

// ShortDate renders t in the same d/m/Y layout accepted as input.
func (f *Formatter) ShortDate(t time.Time) string {
	return t.Format("02/01/2006")
}

// Errors renders every violation as "field message", one per line.
func (f *Formatter) Errors(verr *model.ValidationError) string {
	lines := make([]string, 0, len(verr.Errors))
	for _, fe := range verr.Errors {
		msg := f.Label(fe.Message)
		if fe.Field == model.FieldBase {
			lines = append(lines, msg)
			continue
		}
		lines = append(lines, f.Label("field."+fe.Field)+" "+msg)
	}
	return strings.Join(lines, "\n")
}
