// Package dashboard turns stored portal data into chart configurations,
// table rows and KPI tiles. Nothing in this package performs I/O.
package dashboard

import (
	"math"
	"time"
)

// ChartKind is the visual type a client should render
type ChartKind string

const (
	ChartLine ChartKind = "line"
	ChartBar  ChartKind = "bar"
	ChartPie  ChartKind = "pie"
	ChartArea ChartKind = "area"
)

// Series is one named data row of a chart; len(Data) == len(Chart.Labels)
type Series struct {
	Name string    `json:"name"`
	Data []float64 `json:"data"`
}

// Chart is a render-agnostic chart configuration
type Chart struct {
	ID     string    `json:"id"`
	Title  string    `json:"title"`
	Kind   ChartKind `json:"kind"`
	Labels []string  `json:"labels"`
	Series []Series  `json:"series"`
}

// Table is a list of pre-formatted rows
type Table struct {
	ID      string     `json:"id"`
	Title   string     `json:"title"`
	Columns []string   `json:"columns"`
	Rows    [][]string `json:"rows"`
}

// KPI is a single headline figure
type KPI struct {
	Label     string   `json:"label"`
	Value     float64  `json:"value"`
	Formatted string   `json:"formatted"`
	Delta     *float64 `json:"delta,omitempty"` // percent change vs previous period
}

// Dashboard groups everything a dashboard page shows
type Dashboard struct {
	Name        string    `json:"name"`
	GeneratedAt time.Time `json:"generated_at"`
	Charts      []Chart   `json:"charts"`
	Tables      []Table   `json:"tables"`
	KPIs        []KPI     `json:"kpis"`
}

// Dashboard names
const (
	NameOverview  = "overview"
	NameExpenses  = "expenses"
	NameForecast  = "forecast"
	NameChurn     = "churn"
	NameCustomers = "customers"
	NameApprovals = "approvals"
)

// Names lists the dashboards that can be requested individually
var Names = []string{NameExpenses, NameForecast, NameChurn, NameCustomers, NameApprovals}

// IsValidName reports whether name is a known dashboard, overview included
func IsValidName(name string) bool {
	if name == NameOverview {
		return true
	}
	for _, n := range Names {
		if n == name {
			return true
		}
	}
	return false
}

const monthLabelLayout = "2006-01"

func monthStart(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// months returns the first instant of every month touching [from, to)
func months(from, to time.Time) []time.Time {
	var out []time.Time
	end := to.UTC()
	for m := monthStart(from); m.Before(end); m = m.AddDate(0, 1, 0) {
		out = append(out, m)
	}
	return out
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func percent(part, whole float64) float64 {
	if whole == 0 {
		return 0
	}
	return round2(part / whole * 100)
}
