package performance

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"tradedesk/internal/models"
	"tradedesk/pkg/utils"
)

// MonthLayout is the layout of a heatmap/calendar month window.
const MonthLayout = "2006-01"

// DefaultMonth is the month window used when none is configured.
const DefaultMonth = "2025-06"

// ParseMonth parses a YYYY-MM month window.
func ParseMonth(s string) (time.Time, error) {
	m, err := time.Parse(MonthLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid month %q (want YYYY-MM): %w", s, err)
	}
	return m, nil
}

// Cell is the P&L and trade count of one session slot.
type Cell struct {
	PnL   decimal.Decimal `json:"pnl"`
	Count int             `json:"count"`
}

func (c *Cell) add(t *models.Trade) {
	c.PnL = c.PnL.Add(decimal.NewFromFloat(t.PnLValue()))
	c.Count++
}

type dayGrid map[utils.Session]*Cell

// sessionGrid groups the month's trades by date and session slot. Trades
// outside the session hours (4-19) are left out.
func (a *Aggregator) sessionGrid(trades []models.Trade, month time.Time) map[string]dayGrid {
	grid := make(map[string]dayGrid)

	for i := range trades {
		t := &trades[i]

		day, hour, ok := a.admit(t)
		if !ok {
			continue
		}
		if day.Year() != month.Year() || day.Month() != month.Month() {
			continue
		}
		session, ok := utils.SessionForHour(hour)
		if !ok {
			continue
		}

		dg, ok := grid[t.Date]
		if !ok {
			dg = make(dayGrid, len(utils.Sessions()))
			for _, s := range utils.Sessions() {
				dg[s] = &Cell{PnL: decimal.Zero}
			}
			grid[t.Date] = dg
		}
		dg[session].add(t)
	}

	return grid
}

// HeatmapCell is one (session, weekday) cell of the weekly heatmap.
type HeatmapCell struct {
	Weekday   string          `json:"weekday"`
	PnL       decimal.Decimal `json:"pnl"`
	Count     int             `json:"count"`
	Intensity float64         `json:"intensity"`
	Color     string          `json:"color"`
}

// HeatmapRow holds the weekday cells of one session slot.
type HeatmapRow struct {
	Session utils.Session `json:"session"`
	Cells   []HeatmapCell `json:"cells"`
}

// Heatmap is P&L by session slot and weekday, summed over a month.
type Heatmap struct {
	Month     string       `json:"month"`
	Weekdays  []string     `json:"weekdays"`
	Rows      []HeatmapRow `json:"rows"`
	MaxAbsPnL float64      `json:"maxAbsPnL"`
}

// Cell returns the heatmap cell for a session and weekday.
func (h *Heatmap) Cell(session utils.Session, weekday time.Weekday) (HeatmapCell, bool) {
	for _, row := range h.Rows {
		if row.Session != session {
			continue
		}
		for _, c := range row.Cells {
			if c.Weekday == weekday.String() {
				return c, true
			}
		}
	}
	return HeatmapCell{}, false
}

// Heatmap builds the weekly session heatmap for the given month.
func (a *Aggregator) Heatmap(trades []models.Trade, month time.Time) *Heatmap {
	grid := a.sessionGrid(trades, month)

	totals := make(map[utils.Session]map[time.Weekday]*Cell)
	for _, s := range utils.Sessions() {
		totals[s] = make(map[time.Weekday]*Cell, len(utils.Weekdays))
		for _, wd := range utils.Weekdays {
			totals[s][wd] = &Cell{PnL: decimal.Zero}
		}
	}

	for date, dg := range grid {
		day, err := time.Parse(models.DateLayout, date)
		if err != nil {
			continue
		}
		for s, c := range dg {
			cell := totals[s][day.Weekday()]
			cell.PnL = cell.PnL.Add(c.PnL)
			cell.Count += c.Count
		}
	}

	var values []float64
	for _, s := range utils.Sessions() {
		for _, wd := range utils.Weekdays {
			values = append(values, totals[s][wd].PnL.InexactFloat64())
		}
	}
	maxAbs := MaxAbs(values)

	h := &Heatmap{
		Month:     month.Format(MonthLayout),
		MaxAbsPnL: maxAbs,
	}
	for _, wd := range utils.Weekdays {
		h.Weekdays = append(h.Weekdays, wd.String())
	}
	for _, s := range utils.Sessions() {
		row := HeatmapRow{Session: s}
		for _, wd := range utils.Weekdays {
			c := totals[s][wd]
			pnl := c.PnL.InexactFloat64()
			row.Cells = append(row.Cells, HeatmapCell{
				Weekday:   wd.String(),
				PnL:       c.PnL,
				Count:     c.Count,
				Intensity: Intensity(pnl, maxAbs),
				Color:     HeatColor(pnl, maxAbs),
			})
		}
		h.Rows = append(h.Rows, row)
	}

	return h
}
