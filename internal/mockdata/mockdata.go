// Package mockdata generates the demo journal and watchlist loaded by
// `tradedesk seed`.
package mockdata

import (
	"fmt"
	"math"
	"math/rand"
	"strconv"
	"time"

	"tradedesk/internal/models"
	"tradedesk/pkg/utils"
)

// DefaultSeed is used when no seed is given, so demo data is reproducible.
const DefaultSeed int64 = 20250601

// Month is the month the generated trades fall in.
const Month = "2025-06"

var (
	symbols = []string{
		"HIMZ", "TSLL", "OKLO", "NVDA", "TSLA", "AAPL", "MSFT", "GOOGL",
		"META", "AMZN", "SPY", "QQQ", "IWM", "SMCI", "PLTR",
	}
	strategies = []string{"Breakout", "Scalping", "Momentum", "Mean Reversion", "Gap Fill"}
)

// firstID is the id given to the first generated trade.
const firstID = 1000

// Journal returns the two hand-written seed trades followed by the
// generated June trades.
func Journal(seed int64) []models.Trade {
	return append(SeedTrades(), Generate(seed)...)
}

// Generate produces trades for the weekdays of June 1-12, 2025. Each session
// slot of each day gets a base P&L and trade count: the first three days
// lose, Thursdays and pre-market win, and pre/after hours run half volume.
// The same seed always yields the same trades.
func Generate(seed int64) []models.Trade {
	rng := rand.New(rand.NewSource(seed))
	trades := make([]models.Trade, 0, 400)
	id := firstID

	for day := 1; day <= 12; day++ {
		date := time.Date(2025, time.June, day, 0, 0, 0, 0, time.UTC)
		if utils.IsWeekend(date.Weekday()) {
			continue
		}
		thursday := date.Weekday() == time.Thursday

		for _, slot := range utils.Sessions() {
			premarket := slot == utils.SessionPreMarket
			basePnL, count := slotShape(rng, day, slot, thursday)

			for i := 0; i < count; i++ {
				t := generateTrade(rng, date, slot, basePnL/float64(count))
				t.ID = strconv.Itoa(id)
				id++

				session := "Regular"
				switch {
				case premarket:
					session = "Premarket"
				case thursday:
					session = "Thursday"
				}
				t.Notes = fmt.Sprintf("%s trade on %s. %s session.", t.Strategy, t.Symbol, session)
				trades = append(trades, t)
			}
		}
	}
	return trades
}

// slotShape returns the slot's total P&L target and number of trades.
func slotShape(rng *rand.Rand, day int, slot utils.Session, thursday bool) (float64, int) {
	basePnL := rng.Float64()*600 - 300
	count := rng.Intn(6) + 5

	if day <= 3 {
		basePnL = rng.Float64()*400 - 600
	}

	if thursday {
		basePnL = math.Abs(basePnL) + 400
		switch slot {
		case utils.SessionMorning, utils.SessionMidday, utils.SessionAfternoon:
			basePnL += 500
		}
		count += 3
	}

	if slot == utils.SessionPreMarket {
		basePnL = math.Abs(basePnL) + 200
		if thursday {
			basePnL += 300
		}
	}

	if slot == utils.SessionPreMarket || slot == utils.SessionAfterHours {
		count = max(2, count/2)
	}
	return basePnL, count
}

func generateTrade(rng *rand.Rand, date time.Time, slot utils.Session, share float64) models.Trade {
	symbol := symbols[rng.Intn(len(symbols))]
	strategy := strategies[rng.Intn(len(strategies))]
	pnl := share + rng.Float64()*100 - 50
	hours := utils.SessionHours(slot)
	hour := hours[rng.Intn(len(hours))]
	minute := rng.Intn(60)

	asset := models.AssetStock
	if rng.Float64() > 0.3 {
		asset = models.AssetPut
		if rng.Float64() > 0.5 {
			asset = models.AssetCall
		}
	}
	option := asset.IsOption()

	basePrice := rng.Float64()*400 + 50
	var quantity int
	if option {
		quantity = rng.Intn(10) + 1
	} else {
		quantity = rng.Intn(200) + 50
	}
	price := basePrice
	if option {
		price = rng.Float64()*20 + 0.5
	}

	side := models.SideSell
	if rng.Float64() > 0.5 {
		side = models.SideBuy
	}

	commission := 0.5
	if option {
		commission = 1.0
	}

	t := models.Trade{
		Symbol:        symbol,
		Side:          side,
		AssetType:     asset,
		Quantity:      quantity,
		Price:         round(price, 2),
		Date:          date.Format(models.DateLayout),
		Time:          fmt.Sprintf("%02d:%02d", hour, minute),
		Strategy:      strategy,
		Tags:          []string{},
		PnL:           models.Float(round(pnl, 2)),
		EntryPrice:    models.Float(round(price, 2)),
		ExitPrice:     models.Float(round(price+pnl/float64(quantity), 2)),
		Commission:    models.Float(commission),
		HoldingPeriod: models.Float(float64(rng.Intn(240) + 5)),
		MAE:           models.Float(round(pnl-math.Abs(pnl)*0.3, 2)),
		MFE:           models.Float(round(pnl+math.Abs(pnl)*0.5, 2)),
	}

	if option {
		addContract(rng, &t, date, basePrice)
	}
	return t
}

// addContract fills strike, expiry and Greeks on an option trade.
func addContract(rng *rand.Rand, t *models.Trade, date time.Time, basePrice float64) {
	strike := math.Round((basePrice+rng.Float64()*40-20)/5) * 5
	dte := rng.Intn(45) + 1

	t.StrikePrice = models.Float(strike)
	t.DaysToExpiration = models.Int(dte)
	t.ExpirationDate = date.AddDate(0, 0, dte).Format(models.DateLayout)

	entryIV := round(rng.Float64()*0.8+0.1, 3)
	entryDelta := round(rng.Float64()*0.8+0.1, 3)
	entryGamma := round(rng.Float64()*0.05+0.005, 3)
	entryTheta := round(rng.Float64()*-2-0.1, 3)
	entryVega := round(rng.Float64()*0.3+0.05, 3)
	entryRho := round(rng.Float64()*0.2+0.01, 3)

	t.EntryIV = models.Float(entryIV)
	t.ExitIV = models.Float(math.Max(0, round(entryIV+rng.Float64()*0.2-0.1, 3)))
	t.EntryDelta = models.Float(entryDelta)
	t.ExitDelta = models.Float(round(entryDelta+rng.Float64()*0.2-0.1, 3))
	t.EntryGamma = models.Float(entryGamma)
	t.ExitGamma = models.Float(round(entryGamma+rng.Float64()*0.01-0.005, 3))
	t.EntryTheta = models.Float(entryTheta)
	t.ExitTheta = models.Float(round(entryTheta+rng.Float64()*0.5-0.25, 3))
	t.EntryVega = models.Float(entryVega)
	t.ExitVega = models.Float(round(entryVega+rng.Float64()*0.1-0.05, 3))
	t.EntryRho = models.Float(entryRho)
	t.ExitRho = models.Float(round(entryRho+rng.Float64()*0.05-0.025, 3))
}

func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}

// SeedTrades returns the two fixed January 2024 journal entries.
func SeedTrades() []models.Trade {
	return []models.Trade{
		{
			ID:            "1",
			Symbol:        "AAPL",
			Side:          models.SideBuy,
			AssetType:     models.AssetStock,
			Quantity:      100,
			Price:         189.95,
			Date:          "2024-01-15",
			Time:          "09:30",
			Strategy:      "Breakout",
			Notes:         "Broke above resistance at $188. Strong volume confirmation.",
			PnL:           models.Float(245.50),
			Tags:          []string{},
			EntryPrice:    models.Float(189.95),
			ExitPrice:     models.Float(192.41),
			StopLoss:      models.Float(185.00),
			TakeProfit:    models.Float(195.00),
			Commission:    models.Float(1.00),
			MAE:           models.Float(-125.00),
			MFE:           models.Float(350.00),
			HoldingPeriod: models.Float(45),
		},
		{
			ID:               "2",
			Symbol:           "TSLA",
			Side:             models.SideBuy,
			AssetType:        models.AssetCall,
			Quantity:         5,
			Price:            12.50,
			Date:             "2024-01-15",
			Time:             "10:15",
			Strategy:         "Momentum",
			Notes:            "High IV play on earnings momentum.",
			PnL:              models.Float(-625.00),
			Tags:             []string{},
			EntryPrice:       models.Float(12.50),
			ExitPrice:        models.Float(7.25),
			StopLoss:         models.Float(8.00),
			TakeProfit:       models.Float(18.00),
			Commission:       models.Float(2.50),
			StrikePrice:      models.Float(250),
			ExpirationDate:   "2024-01-19",
			DaysToExpiration: models.Int(4),
			EntryIV:          models.Float(0.65),
			ExitIV:           models.Float(0.45),
			EntryDelta:       models.Float(0.42),
			ExitDelta:        models.Float(0.18),
			EntryGamma:       models.Float(0.025),
			ExitGamma:        models.Float(0.012),
			EntryTheta:       models.Float(-0.85),
			ExitTheta:        models.Float(-0.45),
			EntryVega:        models.Float(0.18),
			ExitVega:         models.Float(0.08),
			MAE:              models.Float(-750.00),
			MFE:              models.Float(125.00),
			HoldingPeriod:    models.Float(180),
		},
	}
}

// Stocks returns the demo watchlist.
func Stocks() []models.Stock {
	return []models.Stock{
		{ID: "1", Symbol: "AAPL", Name: "Apple Inc.", Price: 175.43, Change: 2.15, ChangePercent: 1.24,
			Volume: 45678900, High: 176.20, Low: 173.80, Notes: "Strong Q4 earnings, watching for breakout above $180",
			Tags: []string{"Tech", "Large Cap"}, PreMarketPrice: models.Float(176.10),
			PreMarketChange: models.Float(0.67), PreMarketChangePercent: models.Float(0.38)},
		{ID: "2", Symbol: "TSLA", Name: "Tesla, Inc.", Price: 248.50, Change: -5.20, ChangePercent: -2.05,
			Volume: 98765400, High: 255.00, Low: 246.30, Notes: "Volatile around delivery numbers",
			Tags: []string{"EV", "Growth", "Momentum"}, PreMarketPrice: models.Float(246.90),
			PreMarketChange: models.Float(-1.60), PreMarketChangePercent: models.Float(-0.64)},
		{ID: "3", Symbol: "NVDA", Name: "NVIDIA Corporation", Price: 875.28, Change: 12.45, ChangePercent: 1.44,
			Volume: 52341000, High: 880.00, Low: 860.10, Notes: "AI leader, buy dips to the 20-day",
			Tags: []string{"Tech", "Growth", "Large Cap"}},
		{ID: "4", Symbol: "PLTR", Name: "Palantir Technologies Inc.", Price: 24.85, Change: 0.95, ChangePercent: 3.97,
			Volume: 61234500, High: 25.10, Low: 23.75, Notes: "",
			Tags: []string{"Tech", "Momentum"}},
		{ID: "5", Symbol: "SPY", Name: "SPDR S&P 500 ETF Trust", Price: 512.34, Change: -1.12, ChangePercent: -0.22,
			Volume: 73456700, High: 514.80, Low: 510.90, Notes: "Market direction reference",
			Tags: []string{"ETF"}},
	}
}

// Strategies returns the strategy labels offered in the journal.
func Strategies() []models.Strategy {
	return models.DefaultStrategies()
}

// Tags returns the tag labels offered on the watchlist.
func Tags() []models.Tag {
	return models.DefaultTags()
}
