package performance

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"tradedesk/internal/models"
)

func newTestAggregator() *Aggregator {
	return NewAggregator(zerolog.Nop())
}

// stockTrade builds a minimal equity trade; 2025-06-02 is a Monday.
func stockTrade(id, date, tm string, price float64, pnl *float64) models.Trade {
	return models.Trade{
		ID:        id,
		Symbol:    "AAPL",
		Side:      models.SideBuy,
		AssetType: models.AssetStock,
		Quantity:  10,
		Price:     price,
		Date:      date,
		Time:      tm,
		Strategy:  "Breakout",
		PnL:       pnl,
	}
}

func optionTrade(id string, asset models.AssetType, iv *float64, dte *int, pnl *float64) models.Trade {
	t := stockTrade(id, "2025-06-03", "10:15", 12.5, pnl)
	t.AssetType = asset
	t.EntryIV = iv
	t.DaysToExpiration = dte
	t.Strategy = "Momentum"
	return t
}

func dec(v float64) decimal.Decimal {
	return decimal.NewFromFloat(v)
}

func TestAggregate_MondayScenario(t *testing.T) {
	trades := []models.Trade{
		stockTrade("1", "2025-06-02", "09:30", 100, models.Float(100)),
		stockTrade("2", "2025-06-02", "10:00", 100, models.Float(-40)),
		stockTrade("3", "2025-06-02", "11:00", 100, models.Float(0)),
	}

	m := newTestAggregator().Aggregate(trades)

	monday, ok := m.ByWeekday.Get("Monday")
	if !ok {
		t.Fatal("Monday bucket missing")
	}
	if monday.Count != 3 {
		t.Errorf("Monday count = %d, want 3", monday.Count)
	}
	if !monday.PnL.Equal(dec(60)) {
		t.Errorf("Monday P&L = %s, want 60", monday.PnL)
	}
	if monday.Wins != 1 {
		t.Errorf("Monday wins = %d, want 1 (zero P&L is not a win)", monday.Wins)
	}
	if got := monday.WinRate(); got < 0.333 || got > 0.334 {
		t.Errorf("Monday win rate = %f, want 1/3", got)
	}
}

func TestAggregate_SaturdayExcluded(t *testing.T) {
	trades := []models.Trade{
		stockTrade("1", "2025-06-02", "09:30", 100, models.Float(50)),
		stockTrade("sat", "2025-06-07", "09:30", 100, models.Float(1000)),
		stockTrade("sun", "2025-06-08", "09:30", 100, models.Float(-1000)),
	}

	m := newTestAggregator().Aggregate(trades)

	if m.Processed != 1 || m.Skipped != 2 {
		t.Fatalf("processed/skipped = %d/%d, want 1/2", m.Processed, m.Skipped)
	}
	for _, name := range []string{"Saturday", "Sunday"} {
		if _, ok := m.ByWeekday.Get(name); ok {
			t.Errorf("%s bucket must never appear", name)
		}
	}
	for name, b := range breakdowns(m) {
		if b.Count() > 1 {
			t.Errorf("%s counts %d trades, want at most 1", name, b.Count())
		}
		if !b.PnL().Equal(decimal.Zero) && !b.PnL().Equal(dec(50)) {
			t.Errorf("%s P&L = %s, weekend trades leaked in", name, b.PnL())
		}
	}
	if !m.TotalPnL.Equal(dec(50)) {
		t.Errorf("total P&L = %s, want 50", m.TotalPnL)
	}
}

func TestAggregate_LogsWeekendTrades(t *testing.T) {
	var buf bytes.Buffer
	trades := []models.Trade{
		stockTrade("sat", "2025-06-07", "09:30", 100, models.Float(1000)),
		stockTrade("mon", "2025-06-09", "10:15", 100, models.Float(25)),
		stockTrade("sun", "2025-06-08", "14:00", 100, models.Float(-5)),
	}

	m := NewAggregator(zerolog.New(&buf)).Aggregate(trades)

	if m.Processed != 1 || m.Skipped != 2 {
		t.Fatalf("processed/skipped = %d/%d, want 1/2", m.Processed, m.Skipped)
	}
	if b, ok := m.ByWeekday.Get("Monday"); !ok || b.Count != 1 {
		t.Errorf("trade after a weekend one was not processed: %+v", m.ByWeekday)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("logged %d lines, want 2:\n%s", len(lines), buf.String())
	}
	want := []struct{ id, date, weekday string }{
		{"sat", "2025-06-07", "Saturday"},
		{"sun", "2025-06-08", "Sunday"},
	}
	for i, line := range lines {
		var entry map[string]any
		if err := json.Unmarshal([]byte(line), &entry); err != nil {
			t.Fatalf("line %d: %v", i, err)
		}
		if entry["message"] != "Weekend trade excluded from analytics" || entry["level"] != "warn" {
			t.Errorf("line %d = %s", i, line)
		}
		if entry["trade_id"] != want[i].id || entry["date"] != want[i].date || entry["weekday"] != want[i].weekday {
			t.Errorf("line %d = %s, want trade %s on %s", i, line, want[i].id, want[i].date)
		}
	}
}

func TestAggregate_OptionWithoutIV(t *testing.T) {
	trades := []models.Trade{
		optionTrade("c1", models.AssetCall, nil, models.Int(4), models.Float(-625)),
		optionTrade("p1", models.AssetPut, models.Float(0.35), nil, models.Float(200)),
		// equities never enter the options-only breakdowns
		func() models.Trade {
			tr := stockTrade("s1", "2025-06-03", "10:00", 150, models.Float(10))
			tr.EntryIV = models.Float(0.5)
			tr.DaysToExpiration = models.Int(3)
			return tr
		}(),
	}

	m := newTestAggregator().Aggregate(trades)

	if m.ByIV.Count() != 1 {
		t.Errorf("IV breakdown counts %d trades, want 1", m.ByIV.Count())
	}
	if b, ok := m.ByIV.Get("20-40%"); !ok || b.Count != 1 {
		t.Errorf("put with 35%% IV not in 20-40%% bucket: %+v", b)
	}
	if m.ByDTE.Count() != 1 {
		t.Errorf("DTE breakdown counts %d trades, want 1", m.ByDTE.Count())
	}
	if call, _ := m.ByAssetType.Get("call"); call.Count != 1 {
		t.Errorf("call bucket count = %d, want 1", call.Count)
	}
	if b, ok := m.ByPrice.Get("$0-50"); !ok || b.Count != 2 {
		t.Errorf("both options should land in $0-50, got %+v", b)
	}
}

func TestAggregate_AssetTypesAlwaysPresent(t *testing.T) {
	m := newTestAggregator().Aggregate(nil)

	if len(m.ByAssetType) != 3 {
		t.Fatalf("asset type buckets = %d, want 3", len(m.ByAssetType))
	}
	for i, want := range []string{"stock", "call", "put"} {
		if m.ByAssetType[i].Label != want || m.ByAssetType[i].Count != 0 {
			t.Errorf("bucket %d = %+v, want empty %q", i, m.ByAssetType[i], want)
		}
	}
	if len(m.ByHour) != 0 || len(m.ByStrategy) != 0 || len(m.ByWeekday) != 0 {
		t.Error("lazy breakdowns should be empty for no trades")
	}
}

func TestAggregate_MissingPnLCountsButAddsZero(t *testing.T) {
	trades := []models.Trade{
		stockTrade("1", "2025-06-04", "13:00", 75, nil),
		stockTrade("2", "2025-06-04", "13:30", 75, models.Float(20)),
	}

	m := newTestAggregator().Aggregate(trades)
	b, _ := m.ByHour.Get("13")
	if b.Count != 2 || !b.PnL.Equal(dec(20)) || b.Wins != 1 {
		t.Errorf("hour 13 bucket = %+v, want count 2, pnl 20, wins 1", b)
	}
}

func TestAggregate_HoldingPeriodBoundaries(t *testing.T) {
	tests := []struct {
		minutes float64
		want    string
	}{
		{0, "0-5 min"},
		{4.99, "0-5 min"},
		{5, "5-15 min"},
		{15, "15-60 min"},
		{60, "1-4 hours"},
		{240, "4-24 hours"},
		{1440, "1+ days"},
		{10000, "1+ days"},
	}

	for _, tt := range tests {
		tr := stockTrade("h", "2025-06-05", "09:45", 100, models.Float(1))
		tr.HoldingPeriod = models.Float(tt.minutes)

		m := newTestAggregator().Aggregate([]models.Trade{tr})
		if len(m.ByHoldingPeriod) != 1 || m.ByHoldingPeriod[0].Label != tt.want {
			t.Errorf("holding %v min -> %+v, want %q", tt.minutes, m.ByHoldingPeriod, tt.want)
		}
	}

	noHold := stockTrade("n", "2025-06-05", "09:45", 100, models.Float(1))
	m := newTestAggregator().Aggregate([]models.Trade{noHold})
	if len(m.ByHoldingPeriod) != 0 || m.ByHour.Count() != 1 {
		t.Error("trade without holding period must be excluded only from the holding breakdown")
	}
}

func TestAggregate_IVBoundaries(t *testing.T) {
	tests := []struct {
		iv   float64
		want string
	}{
		{0.10, "0-20%"},
		{0.20, "20-40%"},
		{0.40, "40-60%"},
		{0.60, "60-80%"},
		{0.80, "80%+"},
		{1.00, "80%+"},
	}

	for _, tt := range tests {
		tr := optionTrade("iv", models.AssetCall, models.Float(tt.iv), nil, models.Float(5))
		m := newTestAggregator().Aggregate([]models.Trade{tr})
		if len(m.ByIV) != 1 || m.ByIV[0].Label != tt.want {
			t.Errorf("IV %v -> %+v, want %q", tt.iv, m.ByIV, tt.want)
		}
	}
}

func TestAggregate_DTEAndPriceBuckets(t *testing.T) {
	dte := []struct {
		days int
		want string
	}{
		{0, "0DTE"}, {1, "1-7 days"}, {7, "1-7 days"}, {8, "8-30 days"},
		{30, "8-30 days"}, {31, "31-60 days"}, {60, "31-60 days"}, {61, "60+ days"},
	}
	for _, tt := range dte {
		tr := optionTrade("d", models.AssetPut, nil, models.Int(tt.days), nil)
		m := newTestAggregator().Aggregate([]models.Trade{tr})
		if len(m.ByDTE) != 1 || m.ByDTE[0].Label != tt.want {
			t.Errorf("DTE %d -> %+v, want %q", tt.days, m.ByDTE, tt.want)
		}
	}

	prices := []struct {
		price float64
		want  string
	}{
		{0.5, "$0-50"}, {50, "$50-100"}, {100, "$100-200"}, {200, "$200-500"}, {499.99, "$200-500"}, {500, "$500+"},
	}
	for _, tt := range prices {
		tr := stockTrade("p", "2025-06-02", "09:30", tt.price, nil)
		m := newTestAggregator().Aggregate([]models.Trade{tr})
		if len(m.ByPrice) != 1 || m.ByPrice[0].Label != tt.want {
			t.Errorf("price %v -> %+v, want %q", tt.price, m.ByPrice, tt.want)
		}
	}
}

func TestAggregate_OrderingIsDeterministic(t *testing.T) {
	trades := []models.Trade{
		stockTrade("1", "2025-06-06", "15:00", 100, nil), // Friday
		stockTrade("2", "2025-06-02", "09:00", 100, nil), // Monday
		stockTrade("3", "2025-06-04", "04:00", 100, nil), // Wednesday
	}
	trades[0].Strategy = "Scalping"
	trades[2].Strategy = "Gap Fill"

	m := newTestAggregator().Aggregate(trades)

	assertLabels(t, "hour", m.ByHour, "4", "9", "15")
	assertLabels(t, "weekday", m.ByWeekday, "Monday", "Wednesday", "Friday")
	assertLabels(t, "strategy", m.ByStrategy, "Breakout", "Gap Fill", "Scalping")
}

func TestAggregate_DoesNotMutateInput(t *testing.T) {
	trades := []models.Trade{stockTrade("1", "2025-06-02", "09:30", 100, models.Float(10))}
	before := trades[0].Clone()

	newTestAggregator().Aggregate(trades)

	if trades[0].Symbol != before.Symbol || *trades[0].PnL != *before.PnL || trades[0].Date != before.Date {
		t.Error("Aggregate mutated its input")
	}
}

func TestSummarize(t *testing.T) {
	trades := []models.Trade{
		stockTrade("1", "2025-06-02", "09:30", 100, models.Float(300)),
		stockTrade("2", "2025-06-02", "09:30", 100, models.Float(100)),
		stockTrade("3", "2025-06-02", "09:30", 100, models.Float(-200)),
		stockTrade("4", "2025-06-02", "09:30", 100, nil),
		optionTrade("5", models.AssetCall, nil, nil, nil),
		optionTrade("6", models.AssetPut, nil, nil, nil),
	}

	s := Summarize(trades)

	if s.TotalTrades != 6 || s.WinningTrades != 2 || s.LosingTrades != 1 {
		t.Errorf("counts = %d/%d/%d, want 6/2/1", s.TotalTrades, s.WinningTrades, s.LosingTrades)
	}
	if !s.TotalPnL.Equal(dec(200)) {
		t.Errorf("total P&L = %s, want 200", s.TotalPnL)
	}
	if !s.AvgWin.Equal(dec(200)) || !s.AvgLoss.Equal(dec(-200)) {
		t.Errorf("avg win/loss = %s/%s, want 200/-200", s.AvgWin, s.AvgLoss)
	}
	if s.ProfitFactor != 2 {
		t.Errorf("profit factor = %v, want 2", s.ProfitFactor)
	}
	if !s.LargestWin.Equal(dec(300)) || !s.LargestLoss.Equal(dec(-200)) {
		t.Errorf("largest win/loss = %s/%s", s.LargestWin, s.LargestLoss)
	}
	if s.StockTrades != 4 || s.CallTrades != 1 || s.PutTrades != 1 {
		t.Errorf("asset counts = %d/%d/%d", s.StockTrades, s.CallTrades, s.PutTrades)
	}

	empty := Summarize(nil)
	if empty.WinRate != 0 || empty.ProfitFactor != 0 {
		t.Error("empty summary should have zero ratios")
	}
}

func assertLabels(t *testing.T, name string, b Breakdown, want ...string) {
	t.Helper()
	if len(b) != len(want) {
		t.Fatalf("%s breakdown has %d buckets, want %d", name, len(b), len(want))
	}
	for i, w := range want {
		if b[i].Label != w {
			t.Errorf("%s bucket %d = %q, want %q", name, i, b[i].Label, w)
		}
	}
}

func breakdowns(m *Metrics) map[string]Breakdown {
	return map[string]Breakdown{
		"hour":     m.ByHour,
		"asset":    m.ByAssetType,
		"weekday":  m.ByWeekday,
		"holding":  m.ByHoldingPeriod,
		"iv":       m.ByIV,
		"dte":      m.ByDTE,
		"price":    m.ByPrice,
		"strategy": m.ByStrategy,
	}
}
