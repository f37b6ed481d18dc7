package performance

import (
	"github.com/shopspring/decimal"

	"tradedesk/internal/models"
)

// Summary holds the headline journal statistics.
type Summary struct {
	TotalTrades   int             `json:"totalTrades"`
	WinningTrades int             `json:"winningTrades"`
	LosingTrades  int             `json:"losingTrades"`
	WinRate       float64         `json:"winRate"`
	TotalPnL      decimal.Decimal `json:"totalPnL"`
	AvgWin        decimal.Decimal `json:"avgWin"`
	AvgLoss       decimal.Decimal `json:"avgLoss"`
	// Gross profit over gross loss; 0 when there are no losing trades.
	ProfitFactor float64         `json:"profitFactor"`
	LargestWin   decimal.Decimal `json:"largestWin"`
	LargestLoss  decimal.Decimal `json:"largestLoss"`

	StockTrades int `json:"stockTrades"`
	CallTrades  int `json:"callTrades"`
	PutTrades   int `json:"putTrades"`
}

// Summarize computes journal statistics over every trade given. Unlike
// Aggregate it does not exclude weekend records.
func Summarize(trades []models.Trade) Summary {
	s := Summary{
		TotalPnL:    decimal.Zero,
		AvgWin:      decimal.Zero,
		AvgLoss:     decimal.Zero,
		LargestWin:  decimal.Zero,
		LargestLoss: decimal.Zero,
	}
	grossWin, grossLoss := decimal.Zero, decimal.Zero

	for i := range trades {
		t := &trades[i]
		pnl := decimal.NewFromFloat(t.PnLValue())

		s.TotalTrades++
		s.TotalPnL = s.TotalPnL.Add(pnl)

		switch {
		case t.IsWin():
			s.WinningTrades++
			grossWin = grossWin.Add(pnl)
			if pnl.GreaterThan(s.LargestWin) {
				s.LargestWin = pnl
			}
		case t.IsLoss():
			s.LosingTrades++
			grossLoss = grossLoss.Add(pnl)
			if pnl.LessThan(s.LargestLoss) {
				s.LargestLoss = pnl
			}
		}

		switch t.AssetType {
		case models.AssetStock:
			s.StockTrades++
		case models.AssetCall:
			s.CallTrades++
		case models.AssetPut:
			s.PutTrades++
		}
	}

	if s.TotalTrades > 0 {
		s.WinRate = float64(s.WinningTrades) / float64(s.TotalTrades)
	}
	if s.WinningTrades > 0 {
		s.AvgWin = grossWin.Div(decimal.NewFromInt(int64(s.WinningTrades)))
	}
	if s.LosingTrades > 0 {
		s.AvgLoss = grossLoss.Div(decimal.NewFromInt(int64(s.LosingTrades)))
		s.ProfitFactor = grossWin.Div(grossLoss.Abs()).InexactFloat64()
	}

	return s
}
