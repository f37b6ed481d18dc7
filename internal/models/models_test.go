package models

import (
	"testing"

	apperrors "tradedesk/internal/errors"
)

func validTrade() Trade {
	return Trade{
		Symbol:    "AAPL",
		Side:      SideBuy,
		AssetType: AssetStock,
		Quantity:  100,
		Price:     175.5,
		Date:      "2024-01-15",
		Time:      "09:30",
	}
}

func TestTradeValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Trade)
		field   string
		weekend bool
	}{
		{"valid", func(*Trade) {}, "", false},
		{"missing symbol", func(t *Trade) { t.Symbol = "" }, "symbol", false},
		{"bad side", func(t *Trade) { t.Side = "short" }, "type", false},
		{"zero quantity", func(t *Trade) { t.Quantity = 0 }, "quantity", false},
		{"negative iv", func(t *Trade) { t.EntryIV = Float(-0.1) }, "entryIV", false},
		{"bad date", func(t *Trade) { t.Date = "15-01-2024" }, "date", false},
		{"bad time", func(t *Trade) { t.Time = "9.30" }, "time", false},
		{"saturday", func(t *Trade) { t.Date = "2025-06-07" }, "date", true},
		{"sunday", func(t *Trade) { t.Date = "2025-06-08" }, "date", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := validTrade()
			tt.mutate(&tr)
			err := tr.Validate()
			if tt.field == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}

			var verr *apperrors.ValidationError
			if !apperrors.As(err, &verr) {
				t.Fatalf("error = %v, want ValidationError", err)
			}
			if verr.Field != tt.field {
				t.Errorf("field = %q, want %q", verr.Field, tt.field)
			}
			if got := apperrors.Is(err, apperrors.ErrWeekendTrade); got != tt.weekend {
				t.Errorf("weekend = %v, want %v", got, tt.weekend)
			}
		})
	}
}

func TestTradeAccessors(t *testing.T) {
	tr := validTrade()
	tr.Time = "14:05"

	if tr.PnLValue() != 0 || tr.IsWin() || tr.IsLoss() {
		t.Error("trade without P&L should be neither win nor loss")
	}
	tr.PnL = Float(-40)
	if !tr.IsLoss() {
		t.Error("negative P&L should be a loss")
	}

	h, err := tr.Hour()
	if err != nil || h != 14 {
		t.Errorf("Hour() = %d, %v; want 14", h, err)
	}
	if _, err := (&Trade{Time: "25:00"}).Hour(); err == nil {
		t.Error("hour 25 should be rejected")
	}
}

func TestTradeUpdateApply(t *testing.T) {
	orig := validTrade()
	orig.PnL = Float(10)
	orig.Tags = []string{"Tech"}

	notes := "trailed stop"
	out := TradeUpdate{PnL: Float(25), Notes: &notes, Tags: []string{}}.Apply(orig)

	if out.PnLValue() != 25 || out.Notes != notes || len(out.Tags) != 0 {
		t.Errorf("update not applied: %+v", out)
	}
	if orig.PnLValue() != 10 || len(orig.Tags) != 1 {
		t.Error("Apply must not modify the original")
	}
	if out.Symbol != orig.Symbol || out.Quantity != orig.Quantity {
		t.Error("unset fields must be unchanged")
	}
}

func TestStockClone(t *testing.T) {
	s := Stock{Symbol: "TSLA", Tags: []string{"EV"}, PreMarketPrice: Float(250)}
	c := s.Clone()
	c.Tags[0] = "Growth"
	*c.PreMarketPrice = 1

	if s.Tags[0] != "EV" || *s.PreMarketPrice != 250 {
		t.Error("Clone must deep-copy tags and pointers")
	}
	if !s.HasTag("EV") || s.HasTag("Growth") {
		t.Error("HasTag mismatch")
	}
}
