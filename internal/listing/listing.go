// Package listing filters and sorts journal trades and watchlist stocks
// the way the dashboard tables present them.
package listing

import (
	"fmt"
	"sort"
	"strings"

	apperrors "tradedesk/internal/errors"
	"tradedesk/internal/models"
)

// Direction is a sort direction.
type Direction string

const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

// SortState is the active sort column and direction of a table.
type SortState struct {
	Field     string    `json:"field"`
	Direction Direction `json:"direction"`
}

// Toggle selects field. Re-selecting the active field flips the direction;
// a new field starts ascending.
func (s *SortState) Toggle(field string) {
	if s.Field == field {
		if s.Direction == Asc {
			s.Direction = Desc
		} else {
			s.Direction = Asc
		}
		return
	}
	s.Field = field
	s.Direction = Asc
}

// DefaultTradeSort is the journal's initial sort.
func DefaultTradeSort() SortState {
	return SortState{Field: TradeDate, Direction: Desc}
}

// DefaultStockSort is the watchlist's initial sort.
func DefaultStockSort() SortState {
	return SortState{Field: StockSymbol, Direction: Asc}
}

// ParseDirection accepts "asc" or "desc", case-insensitively. Empty means
// ascending.
func ParseDirection(s string) (Direction, error) {
	switch Direction(strings.ToLower(strings.TrimSpace(s))) {
	case Asc, "":
		return Asc, nil
	case Desc:
		return Desc, nil
	}
	return "", fmt.Errorf("%w: invalid sort direction %q (want asc or desc)", apperrors.ErrInputValidation, s)
}

// sortKey extracts a comparable value from an element. ok is false for a
// missing optional value.
type sortKey[T any] struct {
	text bool
	str  func(*T) string
	num  func(*T) (float64, bool)
}

func textKey[T any](f func(*T) string) sortKey[T] {
	return sortKey[T]{text: true, str: f}
}

func numKey[T any](f func(*T) float64) sortKey[T] {
	return sortKey[T]{num: func(v *T) (float64, bool) { return f(v), true }}
}

func optKey[T any](f func(*T) *float64) sortKey[T] {
	return sortKey[T]{num: func(v *T) (float64, bool) {
		p := f(v)
		if p == nil {
			return 0, false
		}
		return *p, true
	}}
}

// sortBy stable-sorts items on key. Missing values sort after present
// values in either direction.
func sortBy[T any](items []T, key sortKey[T], dir Direction) {
	sort.SliceStable(items, func(i, j int) bool {
		a, b := &items[i], &items[j]
		if key.text {
			x, y := key.str(a), key.str(b)
			if dir == Desc {
				return x > y
			}
			return x < y
		}

		x, okX := key.num(a)
		y, okY := key.num(b)
		switch {
		case !okX:
			return false
		case !okY:
			return true
		}
		if dir == Desc {
			return x > y
		}
		return x < y
	})
}

// Trade sort fields.
const (
	TradeDate      = "date"
	TradeSymbol    = "symbol"
	TradeSide      = "type"
	TradeAssetType = "assetType"
	TradeQuantity  = "quantity"
	TradePrice     = "price"
	TradePnL       = "pnl"
	TradeStrategy  = "strategy"
	TradeDTE       = "daysToExpiration"
	TradeEntryIV   = "entryIV"
)

var tradeKeys = map[string]sortKey[models.Trade]{
	// date and time sort together so same-day trades keep chronological order
	TradeDate:      textKey(func(t *models.Trade) string { return t.Date + " " + t.Time }),
	TradeSymbol:    textKey(func(t *models.Trade) string { return t.Symbol }),
	TradeSide:      textKey(func(t *models.Trade) string { return string(t.Side) }),
	TradeAssetType: textKey(func(t *models.Trade) string { return string(t.AssetType) }),
	TradeQuantity:  numKey(func(t *models.Trade) float64 { return float64(t.Quantity) }),
	TradePrice:     numKey(func(t *models.Trade) float64 { return t.Price }),
	TradePnL:       optKey(func(t *models.Trade) *float64 { return t.PnL }),
	TradeStrategy:  textKey(func(t *models.Trade) string { return strings.ToLower(t.Strategy) }),
	TradeDTE: optKey(func(t *models.Trade) *float64 {
		if t.DaysToExpiration == nil {
			return nil
		}
		return models.Float(float64(*t.DaysToExpiration))
	}),
	TradeEntryIV: optKey(func(t *models.Trade) *float64 { return t.EntryIV }),
}

// TradeSortFields lists the accepted trade sort fields.
func TradeSortFields() []string {
	return sortedKeys(tradeKeys)
}

// SortTrades returns a sorted copy of trades.
func SortTrades(trades []models.Trade, s SortState) ([]models.Trade, error) {
	key, ok := tradeKeys[s.Field]
	if !ok {
		return nil, fmt.Errorf("%w: unknown trade sort field %q", apperrors.ErrInputValidation, s.Field)
	}
	out := append([]models.Trade(nil), trades...)
	sortBy(out, key, s.Direction)
	return out, nil
}

// TradeFilter selects journal trades. Empty fields match anything; set
// fields must all match.
type TradeFilter struct {
	Strategy  string           `json:"strategy,omitempty"`
	AssetType models.AssetType `json:"assetType,omitempty"`
}

// Match reports whether t passes the filter.
func (f TradeFilter) Match(t *models.Trade) bool {
	if f.Strategy != "" && t.Strategy != f.Strategy {
		return false
	}
	if f.AssetType != "" && t.AssetType != f.AssetType {
		return false
	}
	return true
}

// FilterTrades returns the trades that pass f, in input order.
func FilterTrades(trades []models.Trade, f TradeFilter) []models.Trade {
	out := make([]models.Trade, 0, len(trades))
	for i := range trades {
		if f.Match(&trades[i]) {
			out = append(out, trades[i])
		}
	}
	return out
}

// Stock sort fields.
const (
	StockSymbol           = "symbol"
	StockPrice            = "price"
	StockChange           = "change"
	StockChangePercent    = "changePercent"
	StockVolume           = "volume"
	StockHigh             = "high"
	StockLow              = "low"
	StockPreMarketPrice   = "preMarketPrice"
	StockPreMarketPercent = "preMarketChangePercent"
)

var stockKeys = map[string]sortKey[models.Stock]{
	StockSymbol:           textKey(func(s *models.Stock) string { return s.Symbol }),
	StockPrice:            numKey(func(s *models.Stock) float64 { return s.Price }),
	StockChange:           numKey(func(s *models.Stock) float64 { return s.Change }),
	StockChangePercent:    numKey(func(s *models.Stock) float64 { return s.ChangePercent }),
	StockVolume:           numKey(func(s *models.Stock) float64 { return float64(s.Volume) }),
	StockHigh:             numKey(func(s *models.Stock) float64 { return s.High }),
	StockLow:              numKey(func(s *models.Stock) float64 { return s.Low }),
	StockPreMarketPrice:   optKey(func(s *models.Stock) *float64 { return s.PreMarketPrice }),
	StockPreMarketPercent: optKey(func(s *models.Stock) *float64 { return s.PreMarketChangePercent }),
}

// StockSortFields lists the accepted stock sort fields.
func StockSortFields() []string {
	return sortedKeys(stockKeys)
}

// SortStocks returns a sorted copy of stocks.
func SortStocks(stocks []models.Stock, s SortState) ([]models.Stock, error) {
	key, ok := stockKeys[s.Field]
	if !ok {
		return nil, fmt.Errorf("%w: unknown stock sort field %q", apperrors.ErrInputValidation, s.Field)
	}
	out := append([]models.Stock(nil), stocks...)
	sortBy(out, key, s.Direction)
	return out, nil
}

// StockFilter selects watchlist entries carrying any of Tags. No tags
// matches everything.
type StockFilter struct {
	Tags []string `json:"tags,omitempty"`
}

// Match reports whether s passes the filter.
func (f StockFilter) Match(s *models.Stock) bool {
	if len(f.Tags) == 0 {
		return true
	}
	for _, tag := range f.Tags {
		if s.HasTag(tag) {
			return true
		}
	}
	return false
}

// FilterStocks returns the stocks that pass f, in input order.
func FilterStocks(stocks []models.Stock, f StockFilter) []models.Stock {
	out := make([]models.Stock, 0, len(stocks))
	for i := range stocks {
		if f.Match(&stocks[i]) {
			out = append(out, stocks[i])
		}
	}
	return out
}

// TagSelection is the set of tag chips selected in the watchlist filter bar.
type TagSelection struct {
	tags []string
}

// Toggle selects an unselected tag or deselects a selected one.
func (ts *TagSelection) Toggle(tag string) {
	for i, t := range ts.tags {
		if t == tag {
			ts.tags = append(ts.tags[:i], ts.tags[i+1:]...)
			return
		}
	}
	ts.tags = append(ts.tags, tag)
}

// Clear deselects every tag.
func (ts *TagSelection) Clear() {
	ts.tags = nil
}

// Selected returns the selected tags in selection order.
func (ts *TagSelection) Selected() []string {
	return append([]string(nil), ts.tags...)
}

// Filter returns the StockFilter for the current selection.
func (ts *TagSelection) Filter() StockFilter {
	return StockFilter{Tags: ts.Selected()}
}

// AllTags returns the distinct tags used across stocks, sorted.
func AllTags(stocks []models.Stock) []string {
	seen := make(map[string]bool)
	for _, s := range stocks {
		for _, tag := range s.Tags {
			seen[tag] = true
		}
	}
	return sortedKeys(seen)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
