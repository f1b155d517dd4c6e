package engine

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"reflect"
	"testing"

	"github.com/talgya/topaz-sim/internal/company"
	"github.com/talgya/topaz-sim/internal/decision"
	"github.com/talgya/topaz-sim/internal/entropy"
	"github.com/talgya/topaz-sim/internal/params"
	"github.com/talgya/topaz-sim/internal/report"
)

func run(t *testing.T, s *Simulation, quarters int, decide func(i int) []*decision.Decisions) []*StepResult {
	t.Helper()
	var out []*StepResult
	for i := range quarters {
		var ds []*decision.Decisions
		if decide != nil {
			ds = decide(i)
		}
		res, err := s.Step(ds)
		if err != nil {
			t.Fatalf("quarter %d: %v", i+1, err)
		}
		out = append(out, res)
	}
	return out
}

func allReports(results []*StepResult) []report.ManagementReport {
	var out []report.ManagementReport
	for _, r := range results {
		out = append(out, r.Reports...)
	}
	return out
}

func TestNewSinglePlayer(t *testing.T) {
	s := New(Options{Players: 1, Seed: 1})
	if len(s.Companies) != DefaultCompanies {
		t.Fatalf("companies = %d, want %d", len(s.Companies), DefaultCompanies)
	}
	if s.Companies[0].Strategy != "" {
		t.Errorf("player company has strategy %q", s.Companies[0].Strategy)
	}
	for i := 1; i < len(s.Companies); i++ {
		if s.Companies[i].Strategy == "" {
			t.Errorf("AI company %d has no strategy", i)
		}
	}

	if m := New(Options{Players: 3}); len(m.Companies) != 3 {
		t.Errorf("multiplayer companies = %d, want 3", len(m.Companies))
	}
}

func TestDeterminism(t *testing.T) {
	a := run(t, New(Options{Players: 1, Seed: 42}), 6, nil)
	b := run(t, New(Options{Players: 1, Seed: 42}), 6, nil)
	if !reflect.DeepEqual(allReports(a), allReports(b)) {
		t.Fatal("same seed and decisions produced different reports")
	}

	c := run(t, New(Options{Players: 1, Seed: 43}), 6, nil)
	if reflect.DeepEqual(allReports(a), allReports(c)) {
		t.Error("different seeds produced identical reports")
	}
}

func TestConservation(t *testing.T) {
	for _, r := range allReports(run(t, New(Options{Players: 1, Seed: 5}), 6, nil)) {
		for _, p := range params.Products {
			for _, a := range params.Areas {
				if r.Stocks[p][a]+r.Sales[p][a] != r.OpeningStocks[p][a]+r.Production.Good[p][a] {
					t.Fatalf("%s Q%d %s %s: stock %d + sales %d != opening %d + good %d",
						r.Company, r.Quarter, p, a,
						r.Stocks[p][a], r.Sales[p][a], r.OpeningStocks[p][a], r.Production.Good[p][a])
				}
				want := int(math.Floor(float64(r.Scheduled[p][a]) * r.Production.EffectiveRatio))
				if got := r.Production.Good[p][a] + r.Production.Rejects[p][a]; got != want {
					t.Fatalf("%s Q%d %s %s: produced %d, want %d", r.Company, r.Quarter, p, a, got, want)
				}
			}
		}
	}
}

func TestFinancialInvariants(t *testing.T) {
	for _, r := range allReports(run(t, New(Options{Players: 1, Seed: 9}), 8, nil)) {
		if r.Cash < 0 {
			t.Errorf("%s Q%d Y%d: cash %v", r.Company, r.Quarter, r.Year, r.Cash)
		}
		if r.SharePrice < params.MinSharePrice {
			t.Errorf("%s Q%d Y%d: share price %v below floor", r.Company, r.Quarter, r.Year, r.SharePrice)
		}
		if r.Quarter != 4 {
			if r.Tax != 0 {
				t.Errorf("%s Q%d: tax %v outside Q4", r.Company, r.Quarter, r.Tax)
			}
			continue
		}
		want := math.Max(0, r.TaxableProfitAccumulated*params.TaxRate) - r.PriorTaxLiability
		if math.Abs(r.Tax-want) > 1e-6 {
			t.Errorf("%s Q4 Y%d: tax %v, want %v", r.Company, r.Year, r.Tax, want)
		}
	}
}

func TestMarketShareBounds(t *testing.T) {
	for _, r := range allReports(run(t, New(Options{Players: 1, Seed: 11}), 4, nil)) {
		for _, p := range params.Products {
			for _, a := range params.Areas {
				if s := r.MarketShare[p][a]; s < 0.05 || s > 0.95 {
					t.Errorf("%s %s %s share %v out of bounds", r.Company, p, a, s)
				}
			}
		}
	}
}

func pricingDecisions() []*decision.Decisions {
	dear, cheap := decision.Default(), decision.Default()
	for _, d := range []*decision.Decisions{&dear, &cheap} {
		d.ShiftLevel = 1
		d.Deliveries[params.Product1][params.South] = 2000
	}
	dear.PricesHome[params.Product1] = 110
	cheap.PricesHome[params.Product1] = 100
	return []*decision.Decisions{&dear, &cheap}
}

func TestHigherPriceSellsFewerUnits(t *testing.T) {
	s := New(Options{Players: 2, Seed: 1})
	res, err := s.Step(pricingDecisions())
	if err != nil {
		t.Fatal(err)
	}
	dear := res.Reports[0].Sales[params.Product1][params.South]
	cheap := res.Reports[1].Sales[params.Product1][params.South]
	if dear >= cheap {
		t.Errorf("company at 110 sold %d, company at 100 sold %d", dear, cheap)
	}
}

func TestSequentialAllocationSeesClosedPredecessors(t *testing.T) {
	simul, err := New(Options{Players: 2, Seed: 1}).Step(pricingDecisions())
	if err != nil {
		t.Fatal(err)
	}
	seq, err := New(Options{Players: 2, Seed: 1, Allocation: Sequential}).Step(pricingDecisions())
	if err != nil {
		t.Fatal(err)
	}
	// Company 0 is identical in both modes; company 1 competes against
	// company 0's closing stock in sequential mode.
	if simul.Reports[0].MarketShare != seq.Reports[0].MarketShare {
		t.Error("first company's shares depend on allocation mode")
	}
	s, q := simul.Reports[1].MarketShare[0][0], seq.Reports[1].MarketShare[0][0]
	if !(q < s) {
		t.Errorf("sequential share %v not below simultaneous share %v", q, s)
	}
}

func TestMachineInstallationLag(t *testing.T) {
	s := New(Options{Players: 1, Companies: 1, Seed: 3})
	results := run(t, s, 5, func(i int) []*decision.Decisions {
		d := decision.Default()
		if i == 0 {
			d.MachinesToOrder = 2
		}
		return []*decision.Decisions{&d}
	})

	if got := results[0].Reports[0].MachinesOrdered; got != 2 {
		t.Fatalf("Q1 machines ordered = %d, want 2", got)
	}
	for i, want := range []int{0, 0, 0, 2, 0} {
		if got := results[i].Reports[0].MachinesInstalled; got != want {
			t.Errorf("Q%d machines installed = %d, want %d", i+1, got, want)
		}
	}
	if got := results[3].Reports[0].Machines; got != params.StartMachines+2 {
		t.Errorf("machines after installation = %d, want %d", got, params.StartMachines+2)
	}
}

func TestDismissalTakesEffectNextQuarter(t *testing.T) {
	s := New(Options{Players: 1, Companies: 1, Seed: 3})
	results := run(t, s, 2, func(i int) []*decision.Decisions {
		d := decision.Default()
		if i == 0 {
			d.DismissSales = 3
		}
		return []*decision.Decisions{&d}
	})
	if got := results[0].Reports[0].Salespeople; got != 10 {
		t.Errorf("Q1 salespeople = %d, want 10", got)
	}
	if got := results[1].Reports[0].Salespeople; got != 7 {
		t.Errorf("Q2 salespeople = %d, want 7", got)
	}
}

func TestMissingDecisionLeavesStateUntouched(t *testing.T) {
	s := New(Options{Players: 2, Seed: 8})
	before := s.Snapshot()

	d := decision.Default()
	_, err := s.Step([]*decision.Decisions{&d})
	if !errors.Is(err, ErrMissingDecision) {
		t.Fatalf("err = %v, want ErrMissingDecision", err)
	}
	if !reflect.DeepEqual(before, s.Snapshot()) {
		t.Error("failed step mutated the simulation")
	}
	if len(s.History) != 0 {
		t.Errorf("history has %d quarters", len(s.History))
	}
}

func TestSnapshotRestoreReproducesFuture(t *testing.T) {
	orig := New(Options{Players: 1, Seed: 21})
	run(t, orig, 3, nil)

	data, err := json.Marshal(orig.Snapshot())
	if err != nil {
		t.Fatal(err)
	}
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		t.Fatal(err)
	}
	restored, err := Restore(snap)
	if err != nil {
		t.Fatal(err)
	}

	a := run(t, orig, 2, nil)
	b := run(t, restored, 2, nil)
	if !reflect.DeepEqual(allReports(a), allReports(b)) {
		t.Error("restored simulation diverged from the uninterrupted run")
	}
}

func TestRestoreRejectsEmptySnapshot(t *testing.T) {
	if _, err := Restore(Snapshot{}); !errors.Is(err, ErrEmptySnapshot) {
		t.Errorf("err = %v, want ErrEmptySnapshot", err)
	}
}

func TestRunnerCallbacks(t *testing.T) {
	r := NewRunner(New(Options{Players: 1, Companies: 3, Seed: 4}), 8)
	quarters, years := 0, 0
	r.OnQuarter = func(*StepResult) { quarters++ }
	r.OnYearEnd = func(year int, reports []report.ManagementReport) {
		years++
		if len(reports) != 3 {
			t.Errorf("year %d end has %d reports", year, len(reports))
		}
	}
	if err := r.Run(context.Background()); err != nil {
		t.Fatal(err)
	}
	if quarters != 8 || years != 2 {
		t.Errorf("callbacks fired %d quarters and %d years, want 8 and 2", quarters, years)
	}
}

func TestRunnerStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	r := NewRunner(New(Options{Players: 1, Companies: 2, Seed: 4}), 0)
	n := 0
	r.OnQuarter = func(*StepResult) {
		n++
		if n == 3 {
			cancel()
		}
	}
	if err := r.Run(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
	if n != 3 {
		t.Errorf("ran %d quarters after cancel at 3", n)
	}
}

func TestRunnerReportsStepError(t *testing.T) {
	r := NewRunner(New(Options{Players: 2, Seed: 4}), 1)
	if err := r.Run(context.Background()); !errors.Is(err, ErrMissingDecision) {
		t.Errorf("err = %v, want ErrMissingDecision", err)
	}
}

func TestImplementImprovementWritesOffStock(t *testing.T) {
	c := company.New("A")
	c.Improvements = append(c.Improvements, company.Improvement{Product: params.Product2, Kind: company.Major})
	c.Stocks[params.Product2][params.South] = 30
	c.Stocks[params.Product2][params.Export] = 12
	d := decision.Default()
	d.ImplementMajorImprovement[params.Product2] = true

	w := implementImprovements(c, &d)
	if w[params.Product2] != 42 {
		t.Errorf("written off %d, want 42", w[params.Product2])
	}
	if c.Stocks.ProductTotal(params.Product2) != 0 {
		t.Error("stock remains after write-off")
	}
	if c.StarRatings[params.Product2] != params.StartStarRating+0.5 {
		t.Errorf("stars = %v", c.StarRatings[params.Product2])
	}
	if c.PendingMajor(params.Product2) {
		t.Error("improvement still pending")
	}

	if again := implementImprovements(c, &d); again[params.Product2] != 0 {
		t.Error("implemented the same improvement twice")
	}
}

func TestDevelopmentReachesMajorImprovement(t *testing.T) {
	c := company.New("A")
	d := decision.Default()
	d.ProductDevelopment[params.Product1] = 50_000
	rng := entropy.New(17)

	for q := range 200 {
		out := developProducts(c, &d, 1, q+1, rng)
		if out[params.Product1] == company.Major {
			if c.DevAccumulated[params.Product1] != 0 {
				t.Errorf("accumulated %v after major, want reset", c.DevAccumulated[params.Product1])
			}
			if !c.PendingMajor(params.Product1) {
				t.Error("major improvement not recorded")
			}
			return
		}
		if s := c.StarRatings[params.Product1]; s > 5 || s < 1 {
			t.Fatalf("star rating %v out of range", s)
		}
	}
	t.Fatal("no major improvement in 200 quarters")
}
