package dashboard

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// MonthlyAmount is a sum attributed to one calendar month
type MonthlyAmount struct {
	Month  time.Time
	Amount decimal.Decimal
}

// CategoryAmount is a sum attributed to one category
type CategoryAmount struct {
	Name   string
	Amount decimal.Decimal
}

// FillMonths returns one entry per month in [from, to), zero where monthly has no data
func FillMonths(monthly []MonthlyAmount, from, to time.Time) []MonthlyAmount {
	byMonth := make(map[time.Time]decimal.Decimal, len(monthly))
	for _, m := range monthly {
		k := monthStart(m.Month)
		byMonth[k] = byMonth[k].Add(m.Amount)
	}

	ms := months(from, to)
	out := make([]MonthlyAmount, 0, len(ms))
	for _, m := range ms {
		amount, ok := byMonth[m]
		if !ok {
			amount = decimal.Zero
		}
		out = append(out, MonthlyAmount{Month: m, Amount: amount})
	}
	return out
}

// ExpenseTrend charts monthly spend over [from, to) with labels YYYY-MM
func ExpenseTrend(monthly []MonthlyAmount, from, to time.Time) Chart {
	filled := FillMonths(monthly, from, to)
	labels := make([]string, len(filled))
	data := make([]float64, len(filled))
	for i, m := range filled {
		labels[i] = m.Month.Format(monthLabelLayout)
		data[i] = toFloat(m.Amount)
	}
	return Chart{
		ID:     "expense-trend",
		Title:  "Monthly expenses",
		Kind:   ChartArea,
		Labels: labels,
		Series: []Series{{Name: "Expenses", Data: data}},
	}
}

// CategoryBreakdown charts spend per category, largest first, ties by name
func CategoryBreakdown(totals []CategoryAmount) Chart {
	sorted := make([]CategoryAmount, len(totals))
	copy(sorted, totals)
	sort.SliceStable(sorted, func(i, j int) bool {
		c := sorted[i].Amount.Cmp(sorted[j].Amount)
		if c != 0 {
			return c > 0
		}
		return sorted[i].Name < sorted[j].Name
	})

	labels := make([]string, len(sorted))
	data := make([]float64, len(sorted))
	for i, c := range sorted {
		labels[i] = c.Name
		data[i] = toFloat(c.Amount)
	}
	return Chart{
		ID:     "expense-categories",
		Title:  "Expenses by category",
		Kind:   ChartPie,
		Labels: labels,
		Series: []Series{{Name: "Expenses", Data: data}},
	}
}

// CategoryTable lists category totals with their share of overall spend
func CategoryTable(totals []CategoryAmount, f *MoneyFormatter) Table {
	chart := CategoryBreakdown(totals)
	var sum float64
	for _, v := range chart.Series[0].Data {
		sum += v
	}
	rows := make([][]string, len(chart.Labels))
	for i, label := range chart.Labels {
		v := chart.Series[0].Data[i]
		rows[i] = []string{label, f.FormatFloat(v), f.FormatPercent(percent(v, sum))}
	}
	return Table{
		ID:      "expense-categories",
		Title:   "Category totals",
		Columns: []string{"Category", "Amount", "Share"},
		Rows:    rows,
	}
}

// ExpenseKPIs returns total spend over the filled months and the last
// month's spend with its change against the month before
func ExpenseKPIs(filled []MonthlyAmount, f *MoneyFormatter) []KPI {
	total := decimal.Zero
	for _, m := range filled {
		total = total.Add(m.Amount)
	}
	kpis := []KPI{{
		Label:     "Total spend",
		Value:     toFloat(total),
		Formatted: f.Format(total),
	}}
	if len(filled) == 0 {
		return kpis
	}

	last := filled[len(filled)-1].Amount
	k := KPI{
		Label:     "Last month",
		Value:     toFloat(last),
		Formatted: f.Format(last),
	}
	if len(filled) > 1 {
		prev := filled[len(filled)-2].Amount
		if !prev.IsZero() {
			d := round2(toFloat(last.Sub(prev)) / toFloat(prev) * 100)
			k.Delta = &d
		}
	}
	return append(kpis, k)
}

func toFloat(d decimal.Decimal) float64 {
	v, _ := d.Round(2).Float64()
	return v
}
