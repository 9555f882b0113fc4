package dashboard

import (
	"sort"
	"strconv"

	"github.com/bizportal/backend/internal/domain/profile"
)

// DefaultTopCustomers is the row count of the top-customers table
const DefaultTopCustomers = 10

// CustomerSegments charts buyer counts per segment and lists the topN buyers
// by lifetime value, ties broken by display name
func CustomerSegments(buyers []*profile.BuyerProfile, topN int, f *MoneyFormatter) (Chart, Table) {
	if topN <= 0 {
		topN = DefaultTopCustomers
	}

	counts := make(map[profile.Segment]int, len(profile.AllSegments))
	for _, b := range buyers {
		counts[b.Segment]++
	}
	labels := make([]string, len(profile.AllSegments))
	data := make([]float64, len(profile.AllSegments))
	for i, s := range profile.AllSegments {
		labels[i] = string(s)
		data[i] = float64(counts[s])
	}

	ranked := make([]*profile.BuyerProfile, len(buyers))
	copy(ranked, buyers)
	sort.SliceStable(ranked, func(i, j int) bool {
		c := ranked[i].LifetimeValue.Cmp(ranked[j].LifetimeValue)
		if c != 0 {
			return c > 0
		}
		return ranked[i].DisplayName < ranked[j].DisplayName
	})
	if len(ranked) > topN {
		ranked = ranked[:topN]
	}

	rows := make([][]string, len(ranked))
	for i, b := range ranked {
		status := "active"
		if b.IsChurned() {
			status = "churned"
		}
		rows[i] = []string{
			b.DisplayName,
			string(b.Segment),
			b.Country,
			strconv.Itoa(b.OrdersCount),
			f.Format(b.LifetimeValue),
			status,
		}
	}

	chart := Chart{
		ID:     "customer-segments",
		Title:  "Customers by segment",
		Kind:   ChartPie,
		Labels: labels,
		Series: []Series{{Name: "Customers", Data: data}},
	}
	table := Table{
		ID:      "top-customers",
		Title:   "Top customers by lifetime value",
		Columns: []string{"Customer", "Segment", "Country", "Orders", "Lifetime value", "Status"},
		Rows:    rows,
	}
	return chart, table
}
