package dashboard

import (
	"sort"
	"time"
)

// DefaultForecastHorizon is used when a non-positive horizon is requested
const DefaultForecastHorizon = 3

// movingAverageWindow is the number of months averaged in the smoothing series
const movingAverageWindow = 3

// Forecast projects monthly history horizon months ahead with a least-squares
// linear trend. The chart has three series over history+horizon labels:
// actual values, forecast values and a moving average. Positions a series does
// not cover hold zero. Forecast values never go below zero. With fewer than
// two history points the forecast is flat at the last value.
func Forecast(history []MonthlyAmount, horizon int) Chart {
	if horizon <= 0 {
		horizon = DefaultForecastHorizon
	}
	sorted := make([]MonthlyAmount, len(history))
	copy(sorted, history)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Month.Before(sorted[j].Month) })

	n := len(sorted)
	ys := make([]float64, n)
	for i, m := range sorted {
		ys[i] = toFloat(m.Amount)
	}

	var start time.Time
	if n > 0 {
		start = monthStart(sorted[0].Month)
	} else {
		start = monthStart(time.Now())
	}

	total := n + horizon
	labels := make([]string, total)
	for i := range labels {
		labels[i] = start.AddDate(0, i, 0).Format(monthLabelLayout)
	}

	actual := make([]float64, total)
	copy(actual, ys)

	slope, intercept := linearFit(ys)
	projected := make([]float64, total)
	for i := n; i < total; i++ {
		v := intercept + slope*float64(i)
		if v < 0 {
			v = 0
		}
		projected[i] = round2(v)
	}

	avg := make([]float64, total)
	for i := 0; i < n; i++ {
		lo := i - movingAverageWindow + 1
		if lo < 0 {
			lo = 0
		}
		var sum float64
		for _, y := range ys[lo : i+1] {
			sum += y
		}
		avg[i] = round2(sum / float64(i+1-lo))
	}

	return Chart{
		ID:     "expense-forecast",
		Title:  "Expense forecast",
		Kind:   ChartLine,
		Labels: labels,
		Series: []Series{
			{Name: "Actual", Data: actual},
			{Name: "Forecast", Data: projected},
			{Name: "3-month average", Data: avg},
		},
	}
}

// linearFit returns slope and intercept of y over x = 0..len(ys)-1.
// Fewer than two points give a flat line at the last value.
func linearFit(ys []float64) (slope, intercept float64) {
	n := float64(len(ys))
	switch len(ys) {
	case 0:
		return 0, 0
	case 1:
		return 0, ys[0]
	}
	var sumX, sumY, sumXY, sumXX float64
	for i, y := range ys {
		x := float64(i)
		sumX += x
		sumY += y
		sumXY += x * y
		sumXX += x * x
	}
	denom := n*sumXX - sumX*sumX
	if denom == 0 {
		return 0, ys[len(ys)-1]
	}
	slope = (n*sumXY - sumX*sumY) / denom
	intercept = (sumY - slope*sumX) / n
	return slope, intercept
}
