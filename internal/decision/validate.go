package decision

import (
	"fmt"

	"github.com/talgya/topaz-sim/internal/params"
)

// Advisory bounds. Values outside them produce warnings, never errors.
const (
	MinPrice       = 50.0
	MaxPrice       = 500.0
	MaxAdvertising = 50_000.0
)

// Validate returns a warning for every field outside its documented range.
// The decisions are used as submitted regardless.
func Validate(d *Decisions) []string {
	var warnings []string
	warn := func(format string, args ...any) {
		warnings = append(warnings, fmt.Sprintf(format, args...))
	}

	for _, p := range params.Products {
		if price := d.PricesHome[p]; price < MinPrice || price > MaxPrice {
			warn("%s home price (%g) is outside valid range (%g-%g)", p, price, MinPrice, MaxPrice)
		}
		if price := d.PricesExport[p]; price < MinPrice || price > MaxPrice {
			warn("%s export price (%g) is outside valid range (%g-%g)", p, price, MinPrice, MaxPrice)
		}
	}

	for _, p := range params.Products {
		for _, a := range params.Areas {
			if v := d.AdvertisingTradePress[p][a]; v < 0 || v > MaxAdvertising {
				warn("Advertising trade press for %s in %s (%g) is outside valid range (0-%g)", p, a, v, MaxAdvertising)
			}
			if v := d.Deliveries[p][a]; v < 0 {
				warn("Deliveries for %s in %s (%d) cannot be negative", p, a, v)
			}
		}
	}

	if d.ShiftLevel < 1 || d.ShiftLevel > 3 {
		warn("Shift level (%d) must be between 1 and 3", d.ShiftLevel)
	}

	counts := []struct {
		name  string
		value int
	}{
		{"Recruit sales", d.RecruitSales},
		{"Dismiss sales", d.DismissSales},
		{"Recruit assembly", d.RecruitAssembly},
		{"Dismiss assembly", d.DismissAssembly},
	}
	for _, c := range counts {
		if c.value < 0 {
			warn("%s (%d) cannot be negative", c.name, c.value)
		}
	}

	if d.MaterialsSupplier < 0 || d.MaterialsSupplier >= len(params.Suppliers) {
		warn("Materials supplier (%d) must be between 0 and %d", d.MaterialsSupplier, len(params.Suppliers)-1)
	}

	return warnings
}
