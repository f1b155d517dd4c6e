package competitor

import (
	"errors"
	"testing"

	"github.com/talgya/topaz-sim/internal/company"
	"github.com/talgya/topaz-sim/internal/decision"
	"github.com/talgya/topaz-sim/internal/entropy"
	"github.com/talgya/topaz-sim/internal/params"
)

func TestParse(t *testing.T) {
	for _, s := range Strategies {
		got, err := Parse(string(s))
		if err != nil || got != s {
			t.Errorf("Parse(%q) = %q, %v", s, got, err)
		}
	}
	if _, err := Parse("reckless"); !errors.Is(err, ErrUnknownStrategy) {
		t.Errorf("Parse(reckless) error = %v, want ErrUnknownStrategy", err)
	}
}

func TestForCompanyRoundRobin(t *testing.T) {
	want := []Strategy{Aggressive, Conservative, Balanced, QualityFocused, CostLeader, Aggressive, Conservative}
	for i, s := range want {
		if got := ForCompany(i + 1); got != s {
			t.Errorf("ForCompany(%d) = %s, want %s", i+1, got, s)
		}
	}
}

func TestDecideIsDeterministic(t *testing.T) {
	c := company.New("AI")
	a := NewGenerator(7, entropy.New(7)).Decide(c, Aggressive, 1, 0)
	b := NewGenerator(7, entropy.New(7)).Decide(c, Aggressive, 1, 0)
	if a != b {
		t.Error("same seed produced different decisions")
	}
}

func TestStrategyPriceBands(t *testing.T) {
	tests := []struct {
		strategy Strategy
		lo, hi   float64
	}{
		{Aggressive, 80, 90},
		{Conservative, 110, 120},
		{QualityFocused, 117, 123},
		{CostLeader, 87, 93},
		{Balanced, 90, 110},
	}
	c := company.New("AI")
	for _, tt := range tests {
		g := NewGenerator(3, entropy.New(3))
		for q := range 20 {
			d := g.Decide(c, tt.strategy, 2, q)
			if p := d.PricesHome[params.Product1]; p < tt.lo || p > tt.hi {
				t.Errorf("%s quarter %d: Product 1 price %v outside [%v, %v]", tt.strategy, q, p, tt.lo, tt.hi)
			}
		}
	}
}

func TestDecisionsAreValidAndAllocateAllSalespeople(t *testing.T) {
	c := company.New("AI")
	c.Salespeople = 13
	g := NewGenerator(11, entropy.New(11))
	for _, s := range Strategies {
		d := g.Decide(c, s, 4, 5)
		if w := decision.Validate(&d); len(w) > 0 {
			t.Errorf("%s produced warnings %v", s, w)
		}
		total := 0
		for _, n := range d.SalespeopleAllocation {
			total += n
		}
		if total != c.Salespeople {
			t.Errorf("%s allocated %d salespeople, have %d", s, total, c.Salespeople)
		}
	}
}

func TestIntensityDoesNotDrawFromSharedSource(t *testing.T) {
	rng := entropy.New(99)
	g := NewGenerator(99, rng)
	before := rng.State()
	for q := range 40 {
		v := g.Intensity(3, q)
		if v < 0.8 || v > 1.2 {
			t.Fatalf("intensity %v outside [0.8, 1.2]", v)
		}
	}
	if rng.State() != before {
		t.Error("Intensity advanced the shared random source")
	}
}
