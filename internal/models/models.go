// Package models provides domain models for the trading dashboard.
package models

// AssetType represents the kind of instrument a trade was executed on.
type AssetType string

const (
	AssetStock AssetType = "stock"
	AssetCall  AssetType = "call"
	AssetPut   AssetType = "put"
)

// AssetTypes lists every asset type in display order.
var AssetTypes = []AssetType{AssetStock, AssetCall, AssetPut}

// IsOption returns true for call and put contracts.
func (a AssetType) IsOption() bool {
	return a == AssetCall || a == AssetPut
}

// Valid reports whether a is one of the known asset types.
func (a AssetType) Valid() bool {
	switch a {
	case AssetStock, AssetCall, AssetPut:
		return true
	}
	return false
}

// Side represents the direction of a trade.
type Side string

const (
	SideBuy  Side = "buy"
	SideSell Side = "sell"
)

// Date and time layouts used for trade records.
const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04"
)

// Label is a named colour used to classify trades (strategies) and stocks (tags).
// Labels are referenced by name, so renaming one does not cascade.
type Label struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color"`
}

// Strategy is a trade classification label.
type Strategy = Label

// Tag is a watchlist classification label.
type Tag = Label

// DefaultStrategies returns the built-in strategy set.
func DefaultStrategies() []Strategy {
	return []Strategy{
		{ID: "1", Name: "Breakout", Color: "#39FF14"},
		{ID: "2", Name: "Scalping", Color: "#FF6B35"},
		{ID: "3", Name: "Swing Trade", Color: "#00BFFF"},
		{ID: "4", Name: "Mean Reversion", Color: "#BF00FF"},
		{ID: "5", Name: "Momentum", Color: "#FFD700"},
		{ID: "6", Name: "Gap Fill", Color: "#FF1493"},
		{ID: "7", Name: "Iron Condor", Color: "#32CD32"},
		{ID: "8", Name: "Straddle", Color: "#FF69B4"},
	}
}

// DefaultTags returns the built-in watchlist tag set.
func DefaultTags() []Tag {
	return []Tag{
		{ID: "1", Name: "Tech", Color: "#00BFFF"},
		{ID: "2", Name: "Growth", Color: "#39FF14"},
		{ID: "3", Name: "EV", Color: "#FFD700"},
		{ID: "4", Name: "Momentum", Color: "#FF6B35"},
		{ID: "5", Name: "Large Cap", Color: "#BF00FF"},
		{ID: "6", Name: "ETF", Color: "#32CD32"},
	}
}

// Float returns a pointer to v. Handy for optional fields.
func Float(v float64) *float64 {
	return &v
}

// Int returns a pointer to v.
func Int(v int) *int {
	return &v
}

// String returns a pointer to v.
func String(v string) *string {
	return &v
}
