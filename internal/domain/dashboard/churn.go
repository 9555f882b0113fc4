package dashboard

import (
	"strconv"
	"time"

	"github.com/bizportal/backend/internal/domain/profile"
)

// ChurnMonth is the churn figure of one month
type ChurnMonth struct {
	Month         time.Time
	ActiveAtStart int
	Churned       int
	RatePercent   float64
}

// ChurnStats computes, for each month in [from, to), the buyers active at the
// start of the month, how many of those churned during it and the churn rate.
// A buyer churned exactly at the month start counts as active at that start.
// Buyers that join and churn within the same month are in neither figure, so
// the rate never exceeds 100. The rate is zero when no buyer was active.
//
// Only the latest churn of a buyer is known: a buyer that was reactivated has
// its ChurnedAt cleared, so the months of its earlier churn undercount.
func ChurnStats(buyers []*profile.BuyerProfile, from, to time.Time) []ChurnMonth {
	ms := months(from, to)
	out := make([]ChurnMonth, 0, len(ms))
	for _, m := range ms {
		next := m.AddDate(0, 1, 0)
		cm := ChurnMonth{Month: m}
		for _, b := range buyers {
			if b.CreatedAt.After(m) || (b.ChurnedAt != nil && b.ChurnedAt.Before(m)) {
				continue
			}
			cm.ActiveAtStart++
			if b.ChurnedAt != nil && b.ChurnedAt.Before(next) {
				cm.Churned++
			}
		}
		cm.RatePercent = percent(float64(cm.Churned), float64(cm.ActiveAtStart))
		out = append(out, cm)
	}
	return out
}

// ChurnByMonth charts the monthly churn rate and tabulates the underlying counts
func ChurnByMonth(buyers []*profile.BuyerProfile, from, to time.Time) (Chart, Table) {
	stats := ChurnStats(buyers, from, to)

	labels := make([]string, len(stats))
	rates := make([]float64, len(stats))
	churned := make([]float64, len(stats))
	rows := make([][]string, len(stats))
	for i, s := range stats {
		label := s.Month.Format(monthLabelLayout)
		labels[i] = label
		rates[i] = s.RatePercent
		churned[i] = float64(s.Churned)
		rows[i] = []string{
			label,
			strconv.Itoa(s.ActiveAtStart),
			strconv.Itoa(s.Churned),
			strconv.FormatFloat(s.RatePercent, 'f', 2, 64),
		}
	}

	chart := Chart{
		ID:     "churn-rate",
		Title:  "Monthly churn",
		Kind:   ChartLine,
		Labels: labels,
		Series: []Series{
			{Name: "Churn rate %", Data: rates},
			{Name: "Churned buyers", Data: churned},
		},
	}
	table := Table{
		ID:      "churn-months",
		Title:   "Churn by month",
		Columns: []string{"Month", "Active at start", "Churned", "Churn rate %"},
		Rows:    rows,
	}
	return chart, table
}
