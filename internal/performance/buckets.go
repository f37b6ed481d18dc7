package performance

import (
	"math"
	"sort"

	"github.com/shopspring/decimal"

	"tradedesk/internal/models"
)

// Bucket accumulates the trades that fall into one group of a breakdown.
type Bucket struct {
	Label string          `json:"label"`
	Count int             `json:"count"`
	PnL   decimal.Decimal `json:"pnl"`
	Wins  int             `json:"wins"`
}

// WinRate returns wins/count, or 0 for an empty bucket.
func (b Bucket) WinRate() float64 {
	if b.Count == 0 {
		return 0
	}
	return float64(b.Wins) / float64(b.Count)
}

// AvgPnL returns the mean P&L per trade, or zero for an empty bucket.
func (b Bucket) AvgPnL() decimal.Decimal {
	if b.Count == 0 {
		return decimal.Zero
	}
	return b.PnL.Div(decimal.NewFromInt(int64(b.Count)))
}

func (b *Bucket) add(t *models.Trade) {
	b.Count++
	b.PnL = b.PnL.Add(decimal.NewFromFloat(t.PnLValue()))
	if t.IsWin() {
		b.Wins++
	}
}

// Breakdown is an ordered set of buckets partitioning trades by one field.
type Breakdown []Bucket

// Get returns the bucket with the given label.
func (b Breakdown) Get(label string) (Bucket, bool) {
	for _, bucket := range b {
		if bucket.Label == label {
			return bucket, true
		}
	}
	return Bucket{}, false
}

// Count returns the number of trades across all buckets.
func (b Breakdown) Count() int {
	n := 0
	for _, bucket := range b {
		n += bucket.Count
	}
	return n
}

// PnL returns the P&L summed across all buckets.
func (b Breakdown) PnL() decimal.Decimal {
	total := decimal.Zero
	for _, bucket := range b {
		total = total.Add(bucket.PnL)
	}
	return total
}

// Range is a half-open interval [Min, Max) with a display label.
type Range struct {
	Label string
	Min   float64
	Max   float64
}

// Ranges is an ordered, non-overlapping list of intervals.
type Ranges []Range

// Find returns the index and label of the range containing v.
func (r Ranges) Find(v float64) (int, string, bool) {
	for i, rg := range r {
		if v >= rg.Min && v < rg.Max {
			return i, rg.Label, true
		}
	}
	return -1, "", false
}

// Labels returns the range labels in order.
func (r Ranges) Labels() []string {
	out := make([]string, len(r))
	for i, rg := range r {
		out[i] = rg.Label
	}
	return out
}

var inf = math.Inf(1)

// HoldingPeriodRanges buckets holding periods, in minutes.
var HoldingPeriodRanges = Ranges{
	{"0-5 min", 0, 5},
	{"5-15 min", 5, 15},
	{"15-60 min", 15, 60},
	{"1-4 hours", 60, 240},
	{"4-24 hours", 240, 1440},
	{"1+ days", 1440, inf},
}

// IVRanges buckets entry implied volatility, in percent.
var IVRanges = Ranges{
	{"0-20%", 0, 20},
	{"20-40%", 20, 40},
	{"40-60%", 40, 60},
	{"60-80%", 60, 80},
	{"80%+", 80, inf},
}

// DTERanges buckets days to expiration. Values are whole days.
var DTERanges = Ranges{
	{"0DTE", 0, 1},
	{"1-7 days", 1, 8},
	{"8-30 days", 8, 31},
	{"31-60 days", 31, 61},
	{"60+ days", 61, inf},
}

// PriceRanges buckets execution price, in dollars.
var PriceRanges = Ranges{
	{"$0-50", 0, 50},
	{"$50-100", 50, 100},
	{"$100-200", 100, 200},
	{"$200-500", 200, 500},
	{"$500+", 500, inf},
}

// accumulator builds a Breakdown. Buckets are created lazily unless
// pre-seeded, and ordered by rank and then label.
type accumulator struct {
	buckets map[string]*Bucket
	ranks   map[string]int
}

func newAccumulator(fixed ...string) *accumulator {
	a := &accumulator{
		buckets: make(map[string]*Bucket),
		ranks:   make(map[string]int),
	}
	for i, label := range fixed {
		a.bucket(label, i)
	}
	return a
}

func (a *accumulator) bucket(label string, rank int) *Bucket {
	b, ok := a.buckets[label]
	if !ok {
		b = &Bucket{Label: label, PnL: decimal.Zero}
		a.buckets[label] = b
		a.ranks[label] = rank
	}
	return b
}

func (a *accumulator) add(label string, rank int, t *models.Trade) {
	a.bucket(label, rank).add(t)
}

func (a *accumulator) breakdown() Breakdown {
	out := make(Breakdown, 0, len(a.buckets))
	for _, b := range a.buckets {
		out = append(out, *b)
	}
	sort.Slice(out, func(i, j int) bool {
		ri, rj := a.ranks[out[i].Label], a.ranks[out[j].Label]
		if ri != rj {
			return ri < rj
		}
		return out[i].Label < out[j].Label
	})
	return out
}
