// Package utils provides shared utility functions.
package utils

import (
	"fmt"
	"math"
	"strconv"
)

// FormatPrice formats a price in dollars with two decimals.
func FormatPrice(price float64) string {
	if price < 0 {
		return fmt.Sprintf("-$%.2f", -price)
	}
	return fmt.Sprintf("$%.2f", price)
}

// FormatChange formats a price change with an explicit sign.
func FormatChange(change float64) string {
	sign := ""
	if change >= 0 {
		sign = "+"
	}
	return fmt.Sprintf("%s%.2f", sign, change)
}

// FormatPercent formats a percentage with an explicit sign.
func FormatPercent(percent float64) string {
	sign := ""
	if percent >= 0 {
		sign = "+"
	}
	return fmt.Sprintf("%s%.2f%%", sign, percent)
}

// FormatPnL formats P&L in dollars with an explicit sign for gains.
func FormatPnL(pnl float64) string {
	if pnl > 0 {
		return "+" + FormatPrice(pnl)
	}
	return FormatPrice(pnl)
}

// FormatVolume formats share volume in compact form (1.2M, 345K).
func FormatVolume(volume int64) string {
	switch {
	case volume >= 1_000_000:
		return fmt.Sprintf("%.1fM", float64(volume)/1_000_000)
	case volume >= 1_000:
		return fmt.Sprintf("%.0fK", float64(volume)/1_000)
	}
	return strconv.FormatInt(volume, 10)
}

// FormatMarketCap formats a market capitalisation (T/B/M). Zero renders as N/A.
func FormatMarketCap(marketCap float64) string {
	switch {
	case marketCap == 0:
		return "N/A"
	case marketCap >= 1e12:
		return fmt.Sprintf("$%.2fT", marketCap/1e12)
	case marketCap >= 1e9:
		return fmt.Sprintf("$%.1fB", marketCap/1e9)
	case marketCap >= 1e6:
		return fmt.Sprintf("$%.0fM", marketCap/1e6)
	}
	return fmt.Sprintf("$%.0f", marketCap)
}

// FormatWinRate formats a 0..1 ratio as a whole percentage.
func FormatWinRate(rate float64) string {
	if math.IsNaN(rate) {
		rate = 0
	}
	return fmt.Sprintf("%.0f%%", rate*100)
}
