package models

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Trade represents one executed transaction in the journal.
type Trade struct {
	ID        string    `json:"id"`
	Symbol    string    `json:"symbol" validate:"required,max=20"`
	Side      Side      `json:"type" validate:"required,oneof=buy sell"`
	AssetType AssetType `json:"assetType" validate:"required,oneof=stock call put"`
	Quantity  int       `json:"quantity" validate:"gt=0"`
	Price     float64   `json:"price" validate:"gt=0"`
	Date      string    `json:"date" validate:"required,datetime=2006-01-02"`
	Time      string    `json:"time" validate:"required"`
	Strategy  string    `json:"strategy"`
	Notes     string    `json:"notes"`
	Tags      []string  `json:"tags"`

	// Realized P&L. Nil means the trade is not closed or was not recorded.
	PnL *float64 `json:"pnl,omitempty"`

	EntryPrice *float64 `json:"entryPrice,omitempty"`
	ExitPrice  *float64 `json:"exitPrice,omitempty"`
	StopLoss   *float64 `json:"stopLoss,omitempty"`
	TakeProfit *float64 `json:"takeProfit,omitempty"`
	Commission *float64 `json:"commission,omitempty" validate:"omitempty,gte=0"`

	// Options only
	StrikePrice      *float64 `json:"strikePrice,omitempty" validate:"omitempty,gt=0"`
	ExpirationDate   string   `json:"expirationDate,omitempty" validate:"omitempty,datetime=2006-01-02"`
	DaysToExpiration *int     `json:"daysToExpiration,omitempty" validate:"omitempty,gte=0"`

	// Greeks at entry and exit. IV is a fraction (0.65 = 65%).
	EntryIV    *float64 `json:"entryIV,omitempty" validate:"omitempty,gte=0"`
	ExitIV     *float64 `json:"exitIV,omitempty" validate:"omitempty,gte=0"`
	EntryDelta *float64 `json:"entryDelta,omitempty"`
	ExitDelta  *float64 `json:"exitDelta,omitempty"`
	EntryGamma *float64 `json:"entryGamma,omitempty"`
	ExitGamma  *float64 `json:"exitGamma,omitempty"`
	EntryTheta *float64 `json:"entryTheta,omitempty"`
	ExitTheta  *float64 `json:"exitTheta,omitempty"`
	EntryVega  *float64 `json:"entryVega,omitempty"`
	ExitVega   *float64 `json:"exitVega,omitempty"`
	EntryRho   *float64 `json:"entryRho,omitempty"`
	ExitRho    *float64 `json:"exitRho,omitempty"`

	MAE           *float64 `json:"mae,omitempty"`
	MFE           *float64 `json:"mfe,omitempty"`
	HoldingPeriod *float64 `json:"holdingPeriod,omitempty" validate:"omitempty,gte=0"` // minutes
}

// PnLValue returns the realized P&L, treating a missing value as zero.
func (t *Trade) PnLValue() float64 {
	if t.PnL == nil {
		return 0
	}
	return *t.PnL
}

// IsWin reports whether the trade closed with a strictly positive P&L.
func (t *Trade) IsWin() bool {
	return t.PnLValue() > 0
}

// IsLoss reports whether the trade closed with a strictly negative P&L.
func (t *Trade) IsLoss() bool {
	return t.PnLValue() < 0
}

// Day parses the trade's calendar date as a naive (UTC) date.
func (t *Trade) Day() (time.Time, error) {
	d, err := time.Parse(DateLayout, t.Date)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid trade date %q: %w", t.Date, err)
	}
	return d, nil
}

// Weekday returns the day of the week the trade was executed on.
func (t *Trade) Weekday() (time.Weekday, error) {
	d, err := t.Day()
	if err != nil {
		return time.Sunday, err
	}
	return d.Weekday(), nil
}

// Hour returns the integer hour of the trade's time of day.
func (t *Trade) Hour() (int, error) {
	h, _, _ := strings.Cut(strings.TrimSpace(t.Time), ":")
	hour, err := strconv.Atoi(h)
	if err != nil || hour < 0 || hour > 23 {
		return 0, fmt.Errorf("invalid trade time %q", t.Time)
	}
	return hour, nil
}

// Clone returns a deep copy of the trade.
func (t Trade) Clone() Trade {
	c := t
	if t.Tags != nil {
		c.Tags = append([]string(nil), t.Tags...)
	}
	for _, p := range c.floatFields() {
		if *p != nil {
			v := **p
			*p = &v
		}
	}
	if t.DaysToExpiration != nil {
		v := *t.DaysToExpiration
		c.DaysToExpiration = &v
	}
	return c
}

func (t *Trade) floatFields() []**float64 {
	return []**float64{
		&t.PnL, &t.EntryPrice, &t.ExitPrice, &t.StopLoss, &t.TakeProfit, &t.Commission,
		&t.StrikePrice, &t.EntryIV, &t.ExitIV, &t.EntryDelta, &t.ExitDelta,
		&t.EntryGamma, &t.ExitGamma, &t.EntryTheta, &t.ExitTheta, &t.EntryVega,
		&t.ExitVega, &t.EntryRho, &t.ExitRho, &t.MAE, &t.MFE, &t.HoldingPeriod,
	}
}

// TradeUpdate is a partial edit of a trade. Nil fields are left untouched.
type TradeUpdate struct {
	Symbol    *string    `json:"symbol,omitempty"`
	Side      *Side      `json:"type,omitempty"`
	AssetType *AssetType `json:"assetType,omitempty"`
	Quantity  *int       `json:"quantity,omitempty"`
	Price     *float64   `json:"price,omitempty"`
	Date      *string    `json:"date,omitempty"`
	Time      *string    `json:"time,omitempty"`
	Strategy  *string    `json:"strategy,omitempty"`
	Notes     *string    `json:"notes,omitempty"`
	Tags      []string   `json:"tags,omitempty"`
	PnL       *float64   `json:"pnl,omitempty"`

	HoldingPeriod *float64 `json:"holdingPeriod,omitempty"`
	ExitPrice     *float64 `json:"exitPrice,omitempty"`
	ExitIV        *float64 `json:"exitIV,omitempty"`
}

// Apply returns a copy of t with the update applied.
func (u TradeUpdate) Apply(t Trade) Trade {
	out := t.Clone()
	if u.Symbol != nil {
		out.Symbol = *u.Symbol
	}
	if u.Side != nil {
		out.Side = *u.Side
	}
	if u.AssetType != nil {
		out.AssetType = *u.AssetType
	}
	if u.Quantity != nil {
		out.Quantity = *u.Quantity
	}
	if u.Price != nil {
		out.Price = *u.Price
	}
	if u.Date != nil {
		out.Date = *u.Date
	}
	if u.Time != nil {
		out.Time = *u.Time
	}
	if u.Strategy != nil {
		out.Strategy = *u.Strategy
	}
	if u.Notes != nil {
		out.Notes = *u.Notes
	}
	if u.Tags != nil {
		out.Tags = append([]string(nil), u.Tags...)
	}
	if u.PnL != nil {
		out.PnL = Float(*u.PnL)
	}
	if u.HoldingPeriod != nil {
		out.HoldingPeriod = Float(*u.HoldingPeriod)
	}
	if u.ExitPrice != nil {
		out.ExitPrice = Float(*u.ExitPrice)
	}
	if u.ExitIV != nil {
		out.ExitIV = Float(*u.ExitIV)
	}
	return out
}
