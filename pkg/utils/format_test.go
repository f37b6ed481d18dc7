package utils

import (
	"math"
	"strconv"
	"strings"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

// For any finite amount, FormatPrice should carry a $ sign, exactly two
// decimals, and parse back to the rounded amount.
func TestProperty_PriceFormatting(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	properties.Property("FormatPrice round-trips to two decimals", prop.ForAll(
		func(amount float64) bool {
			formatted := FormatPrice(amount)

			body := strings.TrimPrefix(formatted, "-")
			if !strings.HasPrefix(body, "$") {
				t.Logf("missing $ prefix: %s", formatted)
				return false
			}
			parts := strings.Split(body[1:], ".")
			if len(parts) != 2 || len(parts[1]) != 2 {
				t.Logf("expected two decimals: %s", formatted)
				return false
			}

			parsed, err := strconv.ParseFloat(body[1:], 64)
			if err != nil {
				return false
			}
			if strings.HasPrefix(formatted, "-") {
				parsed = -parsed
			}
			return math.Abs(parsed-amount) <= 0.005+1e-9
		},
		gen.Float64Range(-1e9, 1e9),
	))

	properties.Property("FormatPercent always carries a sign", prop.ForAll(
		func(pct float64) bool {
			s := FormatPercent(pct)
			return (strings.HasPrefix(s, "+") || strings.HasPrefix(s, "-")) && strings.HasSuffix(s, "%")
		},
		gen.Float64Range(-1000, 1000),
	))

	properties.TestingRun(t)
}

func TestFormatVolume(t *testing.T) {
	tests := []struct {
		volume int64
		want   string
	}{
		{0, "0"},
		{999, "999"},
		{1000, "1K"},
		{345_600, "346K"},
		{1_000_000, "1.0M"},
		{52_340_000, "52.3M"},
	}

	for _, tt := range tests {
		if got := FormatVolume(tt.volume); got != tt.want {
			t.Errorf("FormatVolume(%d) = %q, want %q", tt.volume, got, tt.want)
		}
	}
}

func TestFormatMarketCap(t *testing.T) {
	tests := []struct {
		cap  float64
		want string
	}{
		{0, "N/A"},
		{2.95e12, "$2.95T"},
		{850e9, "$850.0B"},
		{420e6, "$420M"},
		{5000, "$5000"},
	}

	for _, tt := range tests {
		if got := FormatMarketCap(tt.cap); got != tt.want {
			t.Errorf("FormatMarketCap(%v) = %q, want %q", tt.cap, got, tt.want)
		}
	}
}

func TestFormatChangeAndPnL(t *testing.T) {
	if got := FormatChange(0); got != "+0.00" {
		t.Errorf("FormatChange(0) = %q", got)
	}
	if got := FormatChange(-1.234); got != "-1.23" {
		t.Errorf("FormatChange(-1.234) = %q", got)
	}
	if got := FormatPnL(245.5); got != "+$245.50" {
		t.Errorf("FormatPnL(245.5) = %q", got)
	}
	if got := FormatPnL(-625); got != "-$625.00" {
		t.Errorf("FormatPnL(-625) = %q", got)
	}
	if got := FormatWinRate(0.5); got != "50%" {
		t.Errorf("FormatWinRate(0.5) = %q", got)
	}
}
