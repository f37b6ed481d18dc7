package cli

import (
	"fmt"
	"strings"
	"time"

	"tradedesk/pkg/utils"
)

// FormatCurrency formats a dollar amount with thousands separators.
func FormatCurrency(amount float64) string {
	negative := amount < 0
	if negative {
		amount = -amount
	}

	str := fmt.Sprintf("%.2f", amount)
	intPart, decPart, _ := strings.Cut(str, ".")

	result := "$" + groupThousands(intPart) + "." + decPart
	if negative {
		result = "-" + result
	}
	return result
}

// groupThousands inserts a comma every three digits from the right.
func groupThousands(s string) string {
	n := len(s)
	if n <= 3 {
		return s
	}

	result := s[n-3:]
	s = s[:n-3]
	for len(s) > 3 {
		result = s[len(s)-3:] + "," + result
		s = s[:len(s)-3]
	}
	return s + "," + result
}

// FormatPnL formats P&L with sign.
func FormatPnL(pnl float64) string {
	formatted := FormatCurrency(pnl)
	if pnl > 0 {
		return "+" + formatted
	}
	return formatted
}

// FormatPercent formats a percentage with sign.
func FormatPercent(value float64) string {
	return utils.FormatPercent(value)
}

// FormatIV formats implied volatility given as a fraction.
func FormatIV(iv *float64) string {
	if iv == nil {
		return "-"
	}
	return fmt.Sprintf("%.1f%%", *iv*100)
}

// FormatOptionalPrice formats an optional price, "-" when unset.
func FormatOptionalPrice(p *float64) string {
	if p == nil {
		return "-"
	}
	return utils.FormatPrice(*p)
}

// FormatOptionalPnL formats an optional P&L, "-" when unset.
func FormatOptionalPnL(o *Output, p *float64) string {
	if p == nil {
		return "-"
	}
	return o.FormatPnL(*p)
}

// FormatHolding formats a holding period given in minutes.
func FormatHolding(minutes *float64) string {
	if minutes == nil {
		return "-"
	}
	m := int(*minutes)
	switch {
	case m < 60:
		return fmt.Sprintf("%dm", m)
	case m < 1440:
		return fmt.Sprintf("%dh %dm", m/60, m%60)
	}
	return fmt.Sprintf("%dd %dh", m/1440, (m%1440)/60)
}

// FormatDTE formats days to expiration.
func FormatDTE(dte *int) string {
	if dte == nil {
		return "-"
	}
	if *dte == 0 {
		return "0DTE"
	}
	return fmt.Sprintf("%dd", *dte)
}

// FormatTimestamp formats a point in time in local time.
func FormatTimestamp(t time.Time) string {
	if t.IsZero() {
		return "never"
	}
	return t.Local().Format("02-Jan-2006 15:04")
}

// TruncateString truncates a string to max length with ellipsis.
func TruncateString(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(r[:maxLen])
	}
	return string(r[:maxLen-3]) + "..."
}

// PadLeft pads a string to the left.
func PadLeft(s string, length int) string {
	n := visibleLen(s)
	if n >= length {
		return s
	}
	return strings.Repeat(" ", length-n) + s
}

// Center centers a string.
func Center(s string, length int) string {
	n := visibleLen(s)
	if n >= length {
		return s
	}
	padding := length - n
	left := padding / 2
	right := padding - left
	return strings.Repeat(" ", left) + s + strings.Repeat(" ", right)
}
