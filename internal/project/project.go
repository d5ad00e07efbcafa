// Package project turns raw service payloads into uniform view models for
// the chart and table renderers. Everything here is pure: no network, no
// shared state, no clock.
package project

import (
	"strings"

	"stockdeck/internal/api"
)

// Tab identifies which view a payload belongs to.
type Tab string

const (
	TabHistory       Tab = "history"
	TabForecast      Tab = "forecast"
	TabTransaction   Tab = "transaction"
	TabReplenishment Tab = "replenishment"
)

// Row is one normalized table row. History rows carry all four quantity
// columns; forecast rows carry only PredictedSales.
type Row struct {
	Date           string
	SalesQty       int
	PurchaseQty    int
	StockLevel     int
	PredictedSales float64
}

// Series is one named chart line over the shared label axis. Filled marks
// an area fill under the line, Dashed a dashed stroke; both mirror the
// rendering the dashboard has always used for these datasets.
type Series struct {
	Label  string
	Data   []float64
	Filled bool
	Dashed bool
}

// Chart is the projector's chart-ready output. Invariant: every series'
// Data has exactly len(Labels) entries, for every tab.
type Chart struct {
	Labels []string
	Series []Series
}

// HistoryRows maps a history payload into table rows. A missing array
// projects to an empty slice, never nil.
func HistoryRows(points []api.TimeSeriesPoint) []Row {
	rows := make([]Row, 0, len(points))
	for _, p := range points {
		rows = append(rows, Row{
			Date:        p.Date,
			SalesQty:    p.SalesQty,
			PurchaseQty: p.PurchaseQty,
			StockLevel:  p.StockLevel,
		})
	}
	return rows
}

// ForecastRows maps a forecast payload into table rows.
func ForecastRows(points []api.ForecastPoint) []Row {
	rows := make([]Row, 0, len(points))
	for _, p := range points {
		rows = append(rows, Row{Date: p.Date, PredictedSales: p.PredictedSales})
	}
	return rows
}

// ChartSeries builds the chart view model for a tab: one predicted-sales
// line for forecast, two lines for history (sales filled, stock level
// dashed and unfilled). Tabs without a chart yield empty labels and no
// series, which still satisfies the length invariant.
func ChartSeries(tab Tab, rows []Row) Chart {
	labels := make([]string, 0, len(rows))
	for _, r := range rows {
		labels = append(labels, r.Date)
	}
	switch tab {
	case TabForecast:
		data := make([]float64, 0, len(rows))
		for _, r := range rows {
			data = append(data, r.PredictedSales)
		}
		return Chart{
			Labels: labels,
			Series: []Series{{Label: "Predicted Sales", Data: data, Filled: true}},
		}
	case TabHistory:
		sales := make([]float64, 0, len(rows))
		stock := make([]float64, 0, len(rows))
		for _, r := range rows {
			sales = append(sales, float64(r.SalesQty))
			stock = append(stock, float64(r.StockLevel))
		}
		return Chart{
			Labels: labels,
			Series: []Series{
				{Label: "Sales Qty", Data: sales, Filled: true},
				{Label: "Stock Level", Data: stock, Dashed: true},
			},
		}
	}
	return Chart{Labels: []string{}}
}

// ClassifyStockStatus normalizes a free-text status ("REORDER NOW",
// "Stock OK") into a CSS-safe presentation token: lowercased, runs of
// whitespace collapsed to single hyphens. The underlying enum semantics
// are untouched.
func ClassifyStockStatus(status string) string {
	return strings.Join(strings.Fields(strings.ToLower(status)), "-")
}

// UrgencyRank buckets a server urgency for coloring: critical and high
// share the alert bucket, medium its own, everything else low.
func UrgencyRank(urgency string) int {
	switch strings.ToLower(urgency) {
	case "critical", "high":
		return 2
	case "medium":
		return 1
	}
	return 0
}

// UrgencyGlyph is the marker shown next to an urgency value.
func UrgencyGlyph(urgency string) string {
	switch UrgencyRank(urgency) {
	case 2:
		return "▲"
	case 1:
		return "◆"
	}
	return "●"
}

// Gauge scales the stock-overview bar: the axis tops out at 1.2x the
// largest of the four marks so the target never pins to the edge.
type Gauge struct {
	Max       float64
	Projected float64
	Safety    float64
	Reorder   float64
	Target    float64
}

// NewGauge builds the gauge for a settings/recommendation pair.
func NewGauge(s api.ReplenishmentSettings, rec api.ReplenishmentRecommendation) Gauge {
	maxMark := rec.ProjectedStockAtLeadTime
	for _, v := range []float64{float64(s.TargetStockLevel), float64(s.ReorderPoint), float64(s.SafetyStock)} {
		if v > maxMark {
			maxMark = v
		}
	}
	scale := maxMark * 1.2
	if scale <= 0 {
		scale = 1
	}
	return Gauge{
		Max:       scale,
		Projected: rec.ProjectedStockAtLeadTime,
		Safety:    float64(s.SafetyStock),
		Reorder:   float64(s.ReorderPoint),
		Target:    float64(s.TargetStockLevel),
	}
}

// Fraction clamps v onto the gauge axis as a 0..1 fraction.
func (g Gauge) Fraction(v float64) float64 {
	f := v / g.Max
	if f < 0 {
		return 0
	}
	if f > 1 {
		return 1
	}
	return f
}

// Zone reports which threshold band the projected stock sits in:
// 2 at/below safety stock, 1 at/below reorder point, 0 healthy.
func (g Gauge) Zone() int {
	if g.Projected <= g.Safety {
		return 2
	}
	if g.Projected <= g.Reorder {
		return 1
	}
	return 0
}
