package dashboard

import (
	"strconv"

	"github.com/bizportal/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// MoneyFormatter renders amounts for tables and KPIs
type MoneyFormatter struct {
	printer  *message.Printer
	currency valueobject.Currency
}

// NewMoneyFormatter builds a formatter for a BCP 47 locale and a currency.
// Unparseable locales fall back to en-US.
func NewMoneyFormatter(locale string, c valueobject.Currency) *MoneyFormatter {
	tag, err := language.Parse(locale)
	if err != nil {
		tag = language.AmericanEnglish
	}
	if c == "" {
		c = valueobject.DefaultCurrency
	}
	return &MoneyFormatter{
		printer:  message.NewPrinter(tag),
		currency: c,
	}
}

// Currency returns the formatter's currency
func (f *MoneyFormatter) Currency() valueobject.Currency {
	return f.currency
}

// Format renders the amount with currency symbol and locale grouping
func (f *MoneyFormatter) Format(amount decimal.Decimal) string {
	v, _ := amount.Round(2).Float64()
	return f.FormatFloat(v)
}

// FormatFloat is Format for values that already left decimal space
func (f *MoneyFormatter) FormatFloat(v float64) string {
	sign := ""
	if v < 0 {
		sign = "-"
		v = -v
	}
	return f.printer.Sprintf("%s%v%v", sign, currency.Symbol(f.currency.Unit()), number.Decimal(v, number.MinFractionDigits(2), number.MaxFractionDigits(2)))
}

// FormatPercent renders a percentage with one decimal
func (f *MoneyFormatter) FormatPercent(v float64) string {
	return strconv.FormatFloat(v, 'f', 1, 64) + "%"
}

// FormatCount renders an integer with locale grouping
func (f *MoneyFormatter) FormatCount(v int64) string {
	return f.printer.Sprintf("%v", number.Decimal(v))
}
