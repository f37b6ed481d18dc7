// Package performance derives trade analytics for the journal: grouped
// breakdowns, a weekly session heatmap, and a monthly P&L calendar.
//
// Every function in this package is a pure transformation of its input.
// Weekend-dated or unparseable trades are logged and excluded, never
// returned as errors.
package performance

import (
	"strconv"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"tradedesk/internal/models"
	"tradedesk/pkg/utils"
)

func init() {
	// P&L figures are emitted as JSON numbers.
	decimal.MarshalJSONWithoutQuotes = true
}

// Metrics holds every breakdown produced from a set of trades.
type Metrics struct {
	ByHour          Breakdown `json:"byHour"`
	ByAssetType     Breakdown `json:"byAssetType"`
	ByWeekday       Breakdown `json:"byWeekday"`
	ByHoldingPeriod Breakdown `json:"byHoldingPeriod"`
	ByIV            Breakdown `json:"byIV"`
	ByDTE           Breakdown `json:"byDTE"`
	ByPrice         Breakdown `json:"byPrice"`
	ByStrategy      Breakdown `json:"byStrategy"`

	// Trades counted in the breakdowns, and trades excluded from all of them.
	Processed int             `json:"processed"`
	Skipped   int             `json:"skipped"`
	TotalPnL  decimal.Decimal `json:"totalPnL"`
}

// Aggregator computes analytics over trade lists.
type Aggregator struct {
	logger zerolog.Logger
}

// NewAggregator creates an aggregator that reports excluded trades to logger.
func NewAggregator(logger zerolog.Logger) *Aggregator {
	return &Aggregator{logger: logger.With().Str("component", "performance").Logger()}
}

// Aggregate groups trades by hour, asset type, weekday, holding period,
// implied volatility, days to expiration, price and strategy.
func (a *Aggregator) Aggregate(trades []models.Trade) *Metrics {
	var (
		byHour     = newAccumulator()
		byAsset    = newAccumulator(assetLabels()...)
		byWeekday  = newAccumulator()
		byHolding  = newAccumulator()
		byIV       = newAccumulator()
		byDTE      = newAccumulator()
		byPrice    = newAccumulator()
		byStrategy = newAccumulator()
	)

	m := &Metrics{TotalPnL: decimal.Zero}

	for i := range trades {
		t := &trades[i]

		day, hour, ok := a.admit(t)
		if !ok {
			m.Skipped++
			continue
		}
		m.Processed++
		m.TotalPnL = m.TotalPnL.Add(decimal.NewFromFloat(t.PnLValue()))

		byHour.add(strconv.Itoa(hour), hour, t)
		byAsset.add(string(t.AssetType), 0, t)
		weekday := day.Weekday()
		byWeekday.add(weekday.String(), int(weekday), t)

		if t.HoldingPeriod != nil {
			if idx, label, ok := HoldingPeriodRanges.Find(*t.HoldingPeriod); ok {
				byHolding.add(label, idx, t)
			}
		}

		if t.AssetType.IsOption() {
			if t.EntryIV != nil {
				if idx, label, ok := IVRanges.Find(*t.EntryIV * 100); ok {
					byIV.add(label, idx, t)
				}
			}
			if t.DaysToExpiration != nil {
				if idx, label, ok := DTERanges.Find(float64(*t.DaysToExpiration)); ok {
					byDTE.add(label, idx, t)
				}
			}
		}

		if idx, label, ok := PriceRanges.Find(t.Price); ok {
			byPrice.add(label, idx, t)
		}

		byStrategy.add(t.Strategy, 0, t)
	}

	m.ByHour = byHour.breakdown()
	m.ByAssetType = byAsset.breakdown()
	m.ByWeekday = byWeekday.breakdown()
	m.ByHoldingPeriod = byHolding.breakdown()
	m.ByIV = byIV.breakdown()
	m.ByDTE = byDTE.breakdown()
	m.ByPrice = byPrice.breakdown()
	m.ByStrategy = byStrategy.breakdown()

	return m
}

// admit returns the trade's parsed date and hour, or false if the trade must
// be excluded from analytics.
func (a *Aggregator) admit(t *models.Trade) (time.Time, int, bool) {
	day, err := t.Day()
	if err != nil {
		a.logger.Warn().Err(err).Str("trade_id", t.ID).Msg("Trade with unparseable date excluded from analytics")
		return time.Time{}, 0, false
	}
	if weekday := day.Weekday(); utils.IsWeekend(weekday) {
		a.logger.Warn().
			Str("trade_id", t.ID).
			Str("date", t.Date).
			Str("weekday", weekday.String()).
			Msg("Weekend trade excluded from analytics")
		return time.Time{}, 0, false
	}
	hour, err := t.Hour()
	if err != nil {
		a.logger.Warn().Err(err).Str("trade_id", t.ID).Msg("Trade with unparseable time excluded from analytics")
		return time.Time{}, 0, false
	}
	return day, hour, true
}

// asset buckets are always present, in display order
func assetLabels() []string {
	out := make([]string, len(models.AssetTypes))
	for i, at := range models.AssetTypes {
		out[i] = string(at)
	}
	return out
}
