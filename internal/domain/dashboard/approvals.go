package dashboard

import (
	"strconv"

	"github.com/bizportal/backend/internal/domain/approval"
)

// ApprovalFunnel charts request counts per status and returns KPIs for the
// pending backlog, the approval rate among decided requests and the average
// hours from submission to decision over decided
func ApprovalFunnel(counts map[approval.Status]int64, decided []*approval.Request, f *MoneyFormatter) (Chart, []KPI) {
	labels := make([]string, len(approval.AllStatuses))
	data := make([]float64, len(approval.AllStatuses))
	for i, s := range approval.AllStatuses {
		labels[i] = string(s)
		data[i] = float64(counts[s])
	}

	approved := float64(counts[approval.StatusApproved])
	rejected := float64(counts[approval.StatusRejected])
	rate := percent(approved, approved+rejected)

	var hours float64
	var n int
	for _, r := range decided {
		if r.Status == approval.StatusCancelled {
			continue
		}
		if d, ok := r.DecisionDuration(); ok {
			hours += d.Hours()
			n++
		}
	}
	avgHours := 0.0
	if n > 0 {
		avgHours = round2(hours / float64(n))
	}

	chart := Chart{
		ID:     "approval-funnel",
		Title:  "Approval requests by status",
		Kind:   ChartBar,
		Labels: labels,
		Series: []Series{{Name: "Requests", Data: data}},
	}
	kpis := []KPI{
		{
			Label:     "Pending requests",
			Value:     float64(counts[approval.StatusPending]),
			Formatted: f.FormatCount(counts[approval.StatusPending]),
		},
		{
			Label:     "Approval rate",
			Value:     rate,
			Formatted: f.FormatPercent(rate),
		},
		{
			Label:     "Average decision time (h)",
			Value:     avgHours,
			Formatted: strconv.FormatFloat(avgHours, 'f', 1, 64),
		},
	}
	return chart, kpis
}
