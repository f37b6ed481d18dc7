package mockdata

import (
	"reflect"
	"strconv"
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"tradedesk/internal/models"
	"tradedesk/pkg/utils"
)

func TestGenerate_Deterministic(t *testing.T) {
	a := Generate(DefaultSeed)
	b := Generate(DefaultSeed)
	if !reflect.DeepEqual(a, b) {
		t.Fatal("same seed produced different trades")
	}
	if reflect.DeepEqual(a, Generate(DefaultSeed+1)) {
		t.Error("different seeds produced identical trades")
	}
}

func TestGenerate_Shape(t *testing.T) {
	trades := Generate(DefaultSeed)
	if len(trades) == 0 {
		t.Fatal("no trades generated")
	}

	days := map[string]bool{}
	for i, tr := range trades {
		if tr.ID != strconv.Itoa(firstID+i) {
			t.Errorf("trade %d id = %s", i, tr.ID)
		}
		if err := tr.Validate(); err != nil {
			t.Errorf("trade %s invalid: %v", tr.ID, err)
		}
		d, err := tr.Day()
		if err != nil {
			t.Fatal(err)
		}
		if d.Year() != 2025 || d.Month() != time.June || d.Day() > 12 {
			t.Errorf("trade %s dated %s, want June 1-12 2025", tr.ID, tr.Date)
		}
		if utils.IsWeekend(d.Weekday()) {
			t.Errorf("trade %s dated on a %s", tr.ID, d.Weekday())
		}
		days[tr.Date] = true

		h, _ := tr.Hour()
		if _, ok := utils.SessionForHour(h); !ok {
			t.Errorf("trade %s at %s is outside every session", tr.ID, tr.Time)
		}

		if tr.AssetType.IsOption() {
			if tr.StrikePrice == nil || tr.DaysToExpiration == nil || tr.EntryIV == nil {
				t.Errorf("option %s missing contract fields", tr.ID)
			} else if *tr.DaysToExpiration < 1 || *tr.DaysToExpiration > 45 {
				t.Errorf("option %s dte = %d", tr.ID, *tr.DaysToExpiration)
			}
			if tr.Quantity < 1 || tr.Quantity > 10 || *tr.Commission != 1.0 {
				t.Errorf("option %s quantity/commission = %d/%v", tr.ID, tr.Quantity, *tr.Commission)
			}
		} else {
			if tr.StrikePrice != nil || tr.EntryIV != nil {
				t.Errorf("stock trade %s carries option fields", tr.ID)
			}
			if tr.Quantity < 50 || tr.Quantity > 249 || *tr.Commission != 0.5 {
				t.Errorf("stock %s quantity/commission = %d/%v", tr.ID, tr.Quantity, *tr.Commission)
			}
		}
	}

	// June 2025: 2-6 and 9-12 are weekdays.
	if len(days) != 9 {
		t.Errorf("trading days = %d, want 9", len(days))
	}
}

type slotKey struct {
	date    string
	session utils.Session
}

func bySlot(trades []models.Trade) (map[slotKey]int, map[slotKey]float64) {
	counts := map[slotKey]int{}
	pnl := map[slotKey]float64{}
	for _, tr := range trades {
		h, _ := tr.Hour()
		s, _ := utils.SessionForHour(h)
		k := slotKey{tr.Date, s}
		counts[k]++
		pnl[k] += tr.PnLValue()
	}
	return counts, pnl
}

func TestGenerate_SlotVolumes(t *testing.T) {
	counts, _ := bySlot(Generate(DefaultSeed))
	for k, n := range counts {
		d, _ := time.Parse(models.DateLayout, k.date)
		thursday := d.Weekday() == time.Thursday
		lo, hi := 5, 10
		if thursday {
			lo, hi = 8, 13
		}
		if k.session == utils.SessionPreMarket || k.session == utils.SessionAfterHours {
			lo, hi = max(2, lo/2), hi/2
		}
		if n < lo || n > hi {
			t.Errorf("%s %s has %d trades, want %d-%d", k.date, k.session, n, lo, hi)
		}
	}
}

func TestProperty_ThursdaySlotsProfitable(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	parameters.Rng.Seed(time.Now().UnixNano())

	properties := gopter.NewProperties(parameters)

	properties.Property("every Thursday session slot nets a profit", prop.ForAll(
		func(seed int64) bool {
			_, pnl := bySlot(Generate(seed))
			for _, date := range []string{"2025-06-05", "2025-06-12"} {
				for _, s := range utils.Sessions() {
					if pnl[slotKey{date, s}] <= 0 {
						return false
					}
				}
			}
			return true
		},
		gen.Int64(),
	))

	properties.TestingRun(t)
}

func TestSeedTrades(t *testing.T) {
	seed := SeedTrades()
	if len(seed) != 2 {
		t.Fatalf("seed trades = %d", len(seed))
	}
	for _, tr := range seed {
		if err := tr.Validate(); err != nil {
			t.Errorf("seed trade %s invalid: %v", tr.ID, err)
		}
	}
	tsla := seed[1]
	if tsla.AssetType != models.AssetCall || tsla.PnLValue() != -625 || *tsla.EntryIV != 0.65 || *tsla.DaysToExpiration != 4 {
		t.Errorf("TSLA call = %+v", tsla)
	}

	journal := Journal(DefaultSeed)
	if len(journal) != len(Generate(DefaultSeed))+2 || journal[0].ID != "1" || journal[2].ID != "1000" {
		t.Error("journal should be the seed trades followed by generated trades")
	}
}

func TestStocks(t *testing.T) {
	known := map[string]bool{}
	for _, tag := range Tags() {
		known[tag.Name] = true
	}
	seen := map[string]bool{}
	for _, s := range Stocks() {
		if err := s.Validate(); err != nil {
			t.Errorf("demo stock %s invalid: %v", s.Symbol, err)
		}
		if seen[s.Symbol] {
			t.Errorf("duplicate demo symbol %s", s.Symbol)
		}
		seen[s.Symbol] = true
		for _, tag := range s.Tags {
			if !known[tag] {
				t.Errorf("%s uses unknown tag %q", s.Symbol, tag)
			}
		}
	}
}
