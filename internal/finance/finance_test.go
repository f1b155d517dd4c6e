package finance

import (
	"math"
	"testing"

	"github.com/talgya/topaz-sim/internal/company"
	"github.com/talgya/topaz-sim/internal/decision"
	"github.com/talgya/topaz-sim/internal/params"
	"github.com/talgya/topaz-sim/internal/production"
)

func approx(a, b float64) bool { return math.Abs(a-b) < 1e-6 }

func inputs(quarter int, d *decision.Decisions) Inputs {
	return Inputs{
		Quarter:       quarter,
		CBRate:        params.BaseCBRate,
		MaterialPrice: params.BaseMaterialPrice,
		Decisions:     d,
	}
}

func TestTransport(t *testing.T) {
	var g params.Grid[int]
	g[params.Product1][params.South] = 40
	g[params.Product3][params.South] = 20 // two slots each
	g[params.Product1][params.Export] = 41

	tr := Transport(g, 5)
	if tr.Trips[params.South] != 2 || tr.Trips[params.Export] != 2 {
		t.Fatalf("trips = %v, want 2 South and 2 Export", tr.Trips)
	}
	if tr.VehicleDays != 2*1+2*6 {
		t.Errorf("vehicle days = %v, want 14", tr.VehicleDays)
	}
	want := 5*params.FleetFixedCostPerVehicle + 14*params.OwnVehicleRunningCostPerDay
	if tr.Total != want {
		t.Errorf("total = %v, want %v", tr.Total, want)
	}
}

func TestTransportWithoutVansHiresEverything(t *testing.T) {
	var g params.Grid[int]
	g[params.Product2][params.North] = 10
	tr := Transport(g, 0)
	if tr.OwnDays != 0 || tr.HiredDays != 4 {
		t.Fatalf("own %v hired %v, want 0/4", tr.OwnDays, tr.HiredDays)
	}
	if tr.Total != 4*params.HiredVehicleCostPerDay {
		t.Errorf("total = %v", tr.Total)
	}

	if empty := Transport(params.Grid[int]{}, 3); empty.VehicleDays != 0 || empty.Total != 3*params.FleetFixedCostPerVehicle {
		t.Errorf("no deliveries gave %+v", empty)
	}
}

func TestQuarterTax(t *testing.T) {
	acc, liability := 0.0, 5000.0
	for q := 1; q <= 3; q++ {
		var tax float64
		tax, acc, liability = QuarterTax(q, acc, liability, 25_000)
		if tax != 0 {
			t.Fatalf("Q%d tax = %v, want 0", q, tax)
		}
	}
	if acc != 75_000 || liability != 5000 {
		t.Fatalf("after Q3 acc %v liability %v", acc, liability)
	}
	tax, acc, liability := QuarterTax(4, acc, liability, 25_000)
	if tax != 30_000-5000 || acc != 0 || liability != 30_000 {
		t.Errorf("Q4 tax %v acc %v liability %v", tax, acc, liability)
	}

	tax, _, liability = QuarterTax(4, -50_000, 30_000, 0)
	if tax != -30_000 || liability != 0 {
		t.Errorf("loss year tax %v liability %v, want refund of prior liability", tax, liability)
	}
}

func TestSettle(t *testing.T) {
	f := Settle(Position{Cash: -100, Overdraft: 10}, 70)
	if f.Cash != 0 || f.Overdraft != 70 || f.Loan != 40 {
		t.Errorf("settled to %+v", f.Position)
	}
	if f.OverdraftDrawn != 60 || f.LoanDrawn != 40 {
		t.Errorf("drawn %v/%v, want 60/40", f.OverdraftDrawn, f.LoanDrawn)
	}

	if f := Settle(Position{Cash: 5}, 0); f.Cash != 5 || f.OverdraftDrawn != 0 {
		t.Errorf("positive cash changed: %+v", f)
	}
}

func TestInterest(t *testing.T) {
	r := RatesFor(1)
	if r.Deposit != 0 {
		t.Errorf("deposit rate = %v, want floor 0", r.Deposit)
	}
	r = RatesFor(4)
	received, paid := Interest(r,
		Position{Cash: 100_000, Overdraft: 0, Loan: 0},
		Position{Cash: 300_000, Overdraft: 40_000, Loan: 20_000})
	if !approx(received, 200_000*0.02/4) {
		t.Errorf("received = %v", received)
	}
	if !approx(paid, (20_000*0.08+10_000*0.14)/4) {
		t.Errorf("paid = %v", paid)
	}
}

func TestRevenue(t *testing.T) {
	d := decision.Default()
	var sales params.Grid[int]
	sales[params.Product1][params.South] = 100
	sales[params.Product1][params.Export] = 10
	if got := Revenue(&d, sales); got != 100*100+10*110 {
		t.Errorf("revenue = %v", got)
	}
}

func TestCloseKeepsCashNonNegative(t *testing.T) {
	c := company.New("A")
	d := decision.Default()
	d.SetAdvertising(params.Product1, params.South, 3_000_000)

	res := Close(c, inputs(1, &d))
	if c.Cash < 0 {
		t.Fatalf("cash = %v after close", c.Cash)
	}
	if c.Overdraft+c.UnsecuredLoan <= 0 {
		t.Errorf("shortfall not financed: overdraft %v loan %v", c.Overdraft, c.UnsecuredLoan)
	}
	cf := res.CashFlow
	if !approx(c.Cash-cf.OpeningCash, cf.NetCashFlow+cf.OverdraftDrawn+cf.LoanDrawn) {
		t.Errorf("cash flow does not reconcile: %+v", cf)
	}
	if !approx(cf.OperatingCashFlow+cf.InvestingCashFlow+cf.FinancingCashFlow, c.Cash-cf.OpeningCash) {
		t.Errorf("statement sections do not sum to cash movement: %+v", cf)
	}
}

func TestCloseTaxTiming(t *testing.T) {
	c := company.New("A")
	d := decision.Default()
	res := Close(c, inputs(1, &d))
	if res.ProfitAndLoss.Tax != 0 || c.TaxLiability != 0 {
		t.Fatalf("Q1 tax %v liability %v, want none", res.ProfitAndLoss.Tax, c.TaxLiability)
	}
	if !approx(c.TaxableProfitAccumulated, res.ProfitAndLoss.ProfitBeforeTax) {
		t.Fatalf("accumulated %v, want %v", c.TaxableProfitAccumulated, res.ProfitAndLoss.ProfitBeforeTax)
	}

	c.TaxableProfitAccumulated = 2_000_000
	c.TaxLiability = 10_000
	c.CaptureOpening()
	res = Close(c, inputs(4, &d))
	pl := res.ProfitAndLoss
	want := math.Max(0, (2_000_000+pl.ProfitBeforeTax)*params.TaxRate) - 10_000
	if !approx(pl.Tax, want) {
		t.Errorf("Q4 tax = %v, want %v", pl.Tax, want)
	}
	if c.TaxableProfitAccumulated != 0 {
		t.Errorf("accumulator not reset: %v", c.TaxableProfitAccumulated)
	}
	if pl.PriorTaxLiability != 10_000 || !approx(pl.TaxableProfitAccumulated, 2_000_000+pl.ProfitBeforeTax) {
		t.Errorf("reported accumulation %v prior %v", pl.TaxableProfitAccumulated, pl.PriorTaxLiability)
	}
}

func TestSharePriceFloor(t *testing.T) {
	c := company.New("A")
	c.UnsecuredLoan = 1e9
	sp := UpdateSharePrice(c, params.BaseMaterialPrice, -5e8, 0)
	if sp.Price != params.MinSharePrice || c.SharePrice != params.MinSharePrice {
		t.Errorf("price = %v, want floor %v", sp.Price, params.MinSharePrice)
	}
}

func TestCostOfSalesAppliesModifier(t *testing.T) {
	c := company.New("A")
	d := decision.Default()
	in := inputs(1, &d)
	in.MaterialCost = 1000
	in.Capacity = production.Capacity{MachineHours: 100, AssemblyHours: 200}

	base := CostOfSales(c, &in)
	c.CostModifier = 1.2
	raised := CostOfSales(c, &in)
	if !approx(raised.Total, base.Total*1.2) {
		t.Errorf("modified total %v, want %v", raised.Total, base.Total*1.2)
	}
	wantWages := 200 * params.AssemblyMinWageRate
	if base.AssemblyWages != wantWages {
		t.Errorf("assembly wages = %v, want %v", base.AssemblyWages, wantWages)
	}
}

func TestBalanceSheetBalances(t *testing.T) {
	c := company.New("A")
	c.Overdraft = 1000
	b := Balance(c, params.BaseMaterialPrice)
	if !approx(b.NetWorth, c.NetWorth(params.BaseMaterialPrice)) {
		t.Errorf("balance sheet net worth %v, company %v", b.NetWorth, c.NetWorth(params.BaseMaterialPrice))
	}
}
