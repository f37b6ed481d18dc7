package performance

import (
	"fmt"
	"math"
)

// Heat colours match the dashboard palette.
const (
	ColorNeutral = "#383838"
	ColorWeekend = "#1A1A1A"
)

// MaxAbs returns the largest absolute value, never less than 1.
// The floor keeps Intensity defined for empty or all-zero views.
func MaxAbs(values []float64) float64 {
	max := 1.0
	for _, v := range values {
		if a := math.Abs(v); a > max {
			max = a
		}
	}
	return max
}

// Intensity scales |pnl| against maxAbs into [0, 1].
func Intensity(pnl, maxAbs float64) float64 {
	if maxAbs <= 0 || math.IsNaN(maxAbs) {
		maxAbs = 1
	}
	return math.Min(math.Abs(pnl)/maxAbs, 1)
}

// HeatColor returns the CSS colour for a cell: green for profit, purple for
// loss, neutral grey for zero.
func HeatColor(pnl, maxAbs float64) string {
	if pnl == 0 {
		return ColorNeutral
	}
	alpha := Intensity(pnl, maxAbs)*0.7 + 0.1
	if pnl > 0 {
		return fmt.Sprintf("rgba(57, 255, 20, %.3f)", alpha)
	}
	return fmt.Sprintf("rgba(191, 0, 255, %.3f)", alpha)
}
