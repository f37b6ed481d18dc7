package listing

import (
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"tradedesk/internal/models"
)

func trades() []models.Trade {
	return []models.Trade{
		{ID: "1", Symbol: "AAPL", Side: models.SideBuy, AssetType: models.AssetStock, Quantity: 100, Price: 185.5,
			Date: "2024-01-15", Time: "09:30", Strategy: "Breakout", PnL: models.Float(250)},
		{ID: "2", Symbol: "TSLA", Side: models.SideBuy, AssetType: models.AssetCall, Quantity: 2, Price: 5.2,
			Date: "2024-01-16", Time: "10:15", Strategy: "Momentum", PnL: models.Float(380),
			EntryIV: models.Float(0.65), DaysToExpiration: models.Int(4)},
		{ID: "3", Symbol: "SPY", Side: models.SideSell, AssetType: models.AssetPut, Quantity: 5, Price: 3.1,
			Date: "2024-01-16", Time: "09:45", Strategy: "Breakout",
			EntryIV: models.Float(0.2), DaysToExpiration: models.Int(0)},
		{ID: "4", Symbol: "NVDA", Side: models.SideSell, AssetType: models.AssetStock, Quantity: 10, Price: 480,
			Date: "2024-01-12", Time: "14:00", Strategy: "Scalping", PnL: models.Float(-90)},
	}
}

func ids(ts []models.Trade) []string {
	out := make([]string, len(ts))
	for i, t := range ts {
		out[i] = t.ID
	}
	return out
}

func equal(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestSortState_Toggle(t *testing.T) {
	s := DefaultTradeSort()
	if s.Field != TradeDate || s.Direction != Desc {
		t.Fatalf("default journal sort = %+v", s)
	}
	s.Toggle(TradeDate)
	if s.Direction != Asc {
		t.Errorf("toggling the active field should flip to asc, got %s", s.Direction)
	}
	s.Toggle(TradePnL)
	if s.Field != TradePnL || s.Direction != Asc {
		t.Errorf("new field should start ascending, got %+v", s)
	}
	s.Toggle(TradePnL)
	if s.Direction != Desc {
		t.Errorf("second toggle should go desc, got %s", s.Direction)
	}
	if d := DefaultStockSort(); d.Field != StockSymbol || d.Direction != Asc {
		t.Errorf("default watchlist sort = %+v", d)
	}
}

func TestSortTrades(t *testing.T) {
	tests := []struct {
		name  string
		state SortState
		want  []string
	}{
		{"date desc uses time", SortState{TradeDate, Desc}, []string{"2", "3", "1", "4"}},
		{"date asc", SortState{TradeDate, Asc}, []string{"4", "1", "3", "2"}},
		{"symbol asc", SortState{TradeSymbol, Asc}, []string{"1", "4", "3", "2"}},
		{"price desc", SortState{TradePrice, Desc}, []string{"4", "1", "2", "3"}},
		{"pnl asc, missing last", SortState{TradePnL, Asc}, []string{"4", "1", "2", "3"}},
		{"pnl desc, missing last", SortState{TradePnL, Desc}, []string{"2", "1", "4", "3"}},
		{"iv asc, stocks last in input order", SortState{TradeEntryIV, Asc}, []string{"3", "2", "1", "4"}},
		{"dte desc", SortState{TradeDTE, Desc}, []string{"2", "3", "1", "4"}},
		{"strategy stable", SortState{TradeStrategy, Asc}, []string{"1", "3", "2", "4"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := SortTrades(trades(), tt.state)
			if err != nil {
				t.Fatalf("SortTrades: %v", err)
			}
			if !equal(ids(got), tt.want) {
				t.Errorf("order = %v, want %v", ids(got), tt.want)
			}
		})
	}

	if _, err := SortTrades(trades(), SortState{Field: "colour"}); err == nil {
		t.Error("expected error for unknown sort field")
	}
}

func TestSortTrades_DoesNotMutateInput(t *testing.T) {
	in := trades()
	if _, err := SortTrades(in, SortState{TradePrice, Asc}); err != nil {
		t.Fatal(err)
	}
	if !equal(ids(in), []string{"1", "2", "3", "4"}) {
		t.Errorf("input reordered: %v", ids(in))
	}
}

func TestFilterTrades(t *testing.T) {
	tests := []struct {
		name   string
		filter TradeFilter
		want   []string
	}{
		{"no filter", TradeFilter{}, []string{"1", "2", "3", "4"}},
		{"strategy", TradeFilter{Strategy: "Breakout"}, []string{"1", "3"}},
		{"asset type", TradeFilter{AssetType: models.AssetStock}, []string{"1", "4"}},
		{"both must match", TradeFilter{Strategy: "Breakout", AssetType: models.AssetStock}, []string{"1"}},
		{"no match", TradeFilter{Strategy: "Straddle"}, []string{}},
	}
	for _, tt := range tests {
		if got := ids(FilterTrades(trades(), tt.filter)); !equal(got, tt.want) {
			t.Errorf("%s: got %v, want %v", tt.name, got, tt.want)
		}
	}
}

func stocks() []models.Stock {
	return []models.Stock{
		{ID: "a", Symbol: "AAPL", Price: 175.43, Volume: 45678900, Tags: []string{"Tech", "Large Cap"}},
		{ID: "t", Symbol: "TSLA", Price: 248.5, Volume: 98765400, Tags: []string{"EV", "Growth"},
			PreMarketPrice: models.Float(250.1)},
		{ID: "j", Symbol: "JPM", Price: 160.2, Volume: 1200000, Tags: []string{"Finance"},
			PreMarketPrice: models.Float(159.8)},
	}
}

func stockIDs(ss []models.Stock) []string {
	out := make([]string, len(ss))
	for i, s := range ss {
		out[i] = s.ID
	}
	return out
}

func TestSortStocks(t *testing.T) {
	got, _ := SortStocks(stocks(), DefaultStockSort())
	if !equal(stockIDs(got), []string{"a", "j", "t"}) {
		t.Errorf("symbol asc = %v", stockIDs(got))
	}
	got, _ = SortStocks(stocks(), SortState{StockVolume, Desc})
	if !equal(stockIDs(got), []string{"t", "a", "j"}) {
		t.Errorf("volume desc = %v", stockIDs(got))
	}
	got, _ = SortStocks(stocks(), SortState{StockPreMarketPrice, Desc})
	if !equal(stockIDs(got), []string{"t", "j", "a"}) {
		t.Errorf("pre-market desc = %v, missing value should be last", stockIDs(got))
	}
}

func TestTagSelection(t *testing.T) {
	var sel TagSelection
	if got := FilterStocks(stocks(), sel.Filter()); len(got) != 3 {
		t.Errorf("empty selection should match every stock, got %d", len(got))
	}

	sel.Toggle("Tech")
	sel.Toggle("Finance")
	if got := stockIDs(FilterStocks(stocks(), sel.Filter())); !equal(got, []string{"a", "j"}) {
		t.Errorf("Tech OR Finance = %v", got)
	}

	sel.Toggle("Tech")
	if got := sel.Selected(); !equal(got, []string{"Finance"}) {
		t.Errorf("after deselect = %v", got)
	}

	sel.Clear()
	if len(sel.Selected()) != 0 {
		t.Error("Clear should empty the selection")
	}

	if got := AllTags(stocks()); !equal(got, []string{"EV", "Finance", "Growth", "Large Cap", "Tech"}) {
		t.Errorf("AllTags = %v", got)
	}
}

func TestParseDirection(t *testing.T) {
	for in, want := range map[string]Direction{"": Asc, "ASC": Asc, " desc ": Desc} {
		got, err := ParseDirection(in)
		if err != nil || got != want {
			t.Errorf("ParseDirection(%q) = %s, %v", in, got, err)
		}
	}
	if _, err := ParseDirection("up"); err == nil {
		t.Error("expected error for unknown direction")
	}
}

func TestProperty_SortTradesIsOrderedPermutation(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	parameters.Rng.Seed(time.Now().UnixNano())

	properties := gopter.NewProperties(parameters)

	properties.Property("sorting by pnl keeps every trade and orders present values", prop.ForAll(
		func(pnls []float64, missingEvery int, desc bool) bool {
			in := make([]models.Trade, len(pnls))
			for i, v := range pnls {
				in[i] = models.Trade{ID: string(rune('a' + i%26)), Quantity: 1, Price: 1}
				if i%missingEvery != 0 {
					in[i].PnL = models.Float(v)
				}
			}
			dir := Asc
			if desc {
				dir = Desc
			}

			out, err := SortTrades(in, SortState{Field: TradePnL, Direction: dir})
			if err != nil || len(out) != len(in) {
				return false
			}

			seenMissing := false
			for i := range out {
				if out[i].PnL == nil {
					seenMissing = true
					continue
				}
				if seenMissing {
					return false
				}
				if i > 0 && out[i-1].PnL != nil {
					prev, cur := *out[i-1].PnL, *out[i].PnL
					if dir == Asc && prev > cur || dir == Desc && prev < cur {
						return false
					}
				}
			}
			return true
		},
		gen.SliceOf(gen.Float64Range(-1000, 1000)),
		gen.IntRange(1, 5),
		gen.Bool(),
	))

	properties.TestingRun(t)
}
