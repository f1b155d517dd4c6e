// Package finance closes a company's books for the quarter: cost of sales,
// overheads, depreciation, interest, tax, dividends, cash settlement and
// the new share price.
package finance

import (
	"math"

	"github.com/talgya/topaz-sim/internal/assets"
	"github.com/talgya/topaz-sim/internal/company"
	"github.com/talgya/topaz-sim/internal/decision"
	"github.com/talgya/topaz-sim/internal/params"
	"github.com/talgya/topaz-sim/internal/personnel"
	"github.com/talgya/topaz-sim/internal/production"
	"github.com/talgya/topaz-sim/internal/report"
)

// Inputs are the quarter's operating results a close needs. Stocks and
// backlog on the company must already reflect the quarter's sales.
type Inputs struct {
	Quarter       int
	CBRate        float64
	MaterialPrice float64
	Decisions     *decision.Decisions
	Capacity      production.Capacity
	Output        production.Output
	Sales         params.Grid[int]
	Movements     personnel.Movements

	MaterialCost    float64 // invoiced deliveries
	OrdersPlaced    int
	WriteOffs       [params.NumProducts]int
	CapitalReceipts float64
	CapitalPayments float64
}

// Result is the set of statements produced by a close.
type Result struct {
	ProfitAndLoss report.ProfitAndLoss
	CostOfSales   report.CostOfSales
	Overheads     report.Overheads
	Transport     report.Transport
	BalanceSheet  report.BalanceSheet
	CashFlow      report.CashFlow
	SharePrice    report.SharePrice
}

// Revenue is units sold at the quarter's prices.
func Revenue(d *decision.Decisions, sales params.Grid[int]) float64 {
	total := 0.0
	for _, p := range params.Products {
		for _, a := range params.Areas {
			total += float64(sales[p][a]) * d.Price(p, a)
		}
	}
	return total
}

// CostOfSales prices the quarter's production.
func CostOfSales(c *company.State, in *Inputs) report.CostOfSales {
	d := in.Decisions
	shift := params.ShiftIndex(d.ShiftLevel)
	premium := params.WorkerHoursByShift[shift].MachinistPremium

	cs := report.CostOfSales{
		Materials:          in.MaterialCost,
		AssemblyWages:      in.Capacity.AssemblyHours * c.AssemblyWageRate,
		MachinistWages:     in.Capacity.MachineHours * c.AssemblyWageRate * (1 + premium),
		Supervision:        params.SupervisionCostPerShift * float64(shift),
		ProductionOverhead: params.ProductionOverheadPerMachine * float64(c.Machines),
		MachineRunning:     params.MachineRunningCostPerHour * in.Capacity.MachineHours,
		ProductionPlanning: params.ProductionPlanningCostPerUnit * float64(in.Output.PlannedUnits),
		CostModifier:       c.CostModifier,
	}
	if cs.CostModifier == 0 {
		cs.CostModifier = 1
	}
	cs.Total = (cs.Materials + cs.AssemblyWages + cs.MachinistWages + cs.Supervision +
		cs.ProductionOverhead + cs.MachineRunning + cs.ProductionPlanning) * cs.CostModifier
	return cs
}

// Overheads prices the quarter's operating expenses.
func Overheads(c *company.State, in *Inputs, revenue float64, transport report.Transport) report.Overheads {
	d := in.Decisions
	o := report.Overheads{
		Advertising:     d.AdvertisingTotal(),
		ProductResearch: d.DevelopmentTotal(),
		SalesSalaries:   float64(c.Salespeople) * c.SalesSalary,
		SalesCommission: revenue * d.SalesCommissionPercent / 100,
		SalesExpenses:   float64(c.Salespeople) * params.SalespersonExpenses,
		Personnel:       in.Movements.Cost(),
		Maintenance:     float64(c.Machines) * d.MaintenanceHours * params.ContractedMaintenanceRate,
		Warehousing:     params.FixedQuarterlyWarehouseCost + params.ProductStorageCost*float64(c.Stocks.Sum()),
		ExternalStorage: assets.ExternalStorage(c.MaterialStock) * params.VariableExternalStorageCost,
		Purchasing:      params.FixedQuarterlyAdminCost + params.CostPerOrder*float64(in.OrdersPlaced),
		Management:      math.Max(params.MinManagementBudget, d.ManagementBudget),
		Transport:       transport.Total,
		CreditControl:   float64(in.Sales.Sum()) * params.CreditControlCostPerUnit,
		Fixed:           params.FixedOverheadsPerQuarter,
	}
	for _, p := range params.Products {
		o.GuaranteeServicing += float64(in.Output.Rejects.ProductTotal(p)) * params.ServicingCharge[p]
		o.StockWriteOffs += float64(in.WriteOffs[p]) * params.ProductStockValuation[p]
	}
	if d.BuyCompetitorInfo {
		o.Information += params.CompetitorInfoCost
	}
	if d.BuyMarketShares {
		o.Information += params.MarketSharesInfoCost
	}
	return o
}

// Close runs the quarter's accounts and updates the company's financial
// state in place. Cash is never negative afterwards.
func Close(c *company.State, in Inputs) Result {
	d := in.Decisions
	var res Result
	pl := &res.ProfitAndLoss

	pl.Revenue = Revenue(d, in.Sales)
	res.CostOfSales = CostOfSales(c, &in)
	res.Transport = Transport(in.Output.Good, c.Vehicles)
	res.Overheads = Overheads(c, &in, pl.Revenue, res.Transport)

	pl.CostOfSales = res.CostOfSales.Total
	pl.GrossProfit = pl.Revenue - pl.CostOfSales
	pl.TotalOverheads = res.Overheads.Total()
	pl.EBITDA = pl.GrossProfit - pl.TotalOverheads

	machineDep, vehicleDep := assets.Depreciate(c)
	pl.Depreciation = machineDep + vehicleDep

	c.Debtors = pl.Revenue * d.CreditDays / 90
	c.Creditors = 0.2*pl.CostOfSales + 0.5*res.Transport.Total

	// Trading cash before interest and tax, used to estimate the closing
	// position that interest is charged on.
	receipts := pl.Revenue * params.CashCollectedFraction
	payments := 0.8*pl.CostOfSales +
		res.Overheads.ProductResearch +
		res.Overheads.SalesSalaries +
		res.Overheads.SalesCommission +
		res.CostOfSales.AssemblyWages +
		res.CostOfSales.MachinistWages +
		res.Overheads.Personnel +
		res.Overheads.Warehousing + res.Overheads.ExternalStorage +
		res.Overheads.Management +
		0.5*res.Transport.Total
	preInterest := receipts - payments + in.CapitalReceipts - in.CapitalPayments

	opening := Position{Cash: c.Opening.Cash, Overdraft: c.Opening.Overdraft, Loan: c.Opening.Loan}
	current := Position{Cash: c.Cash, Overdraft: c.Overdraft, Loan: c.UnsecuredLoan}
	provisional := Settle(Position{Cash: current.Cash + preInterest, Overdraft: current.Overdraft, Loan: current.Loan},
		c.OverdraftLimit(in.MaterialPrice))
	pl.InterestReceived, pl.InterestPaid = Interest(RatesFor(in.CBRate), opening, provisional.Position)

	pl.ProfitBeforeTax = pl.EBITDA + pl.InterestReceived - pl.InterestPaid - pl.Depreciation

	pl.PriorTaxLiability = c.TaxLiability
	pl.TaxableProfitAccumulated = c.TaxableProfitAccumulated + pl.ProfitBeforeTax
	pl.Tax, c.TaxableProfitAccumulated, c.TaxLiability = QuarterTax(in.Quarter,
		c.TaxableProfitAccumulated, c.TaxLiability, pl.ProfitBeforeTax)
	pl.NetProfit = pl.ProfitBeforeTax - pl.Tax

	pl.Dividends = math.Min(d.DividendPerShare*c.SharesOutstanding,
		math.Max(0, pl.NetProfit+c.Reserves+c.Cash))
	pl.Retained = pl.NetProfit - pl.Dividends

	net := preInterest - pl.InterestPaid - pl.Tax - pl.Dividends
	closing := c.Cash + net
	// The bank assesses headroom with the account already at zero.
	c.Cash = math.Max(0, closing)
	funded := Settle(Position{Cash: closing, Overdraft: c.Overdraft, Loan: c.UnsecuredLoan},
		c.OverdraftLimit(in.MaterialPrice))
	c.Cash, c.Overdraft, c.UnsecuredLoan = funded.Cash, funded.Overdraft, funded.Loan

	c.Reserves += pl.Retained

	res.CashFlow = report.CashFlow{
		OpeningCash:       current.Cash,
		TradingReceipts:   receipts,
		TradingPayments:   payments,
		InterestPaid:      pl.InterestPaid,
		TaxPaid:           pl.Tax,
		CapitalReceipts:   in.CapitalReceipts,
		CapitalPayments:   in.CapitalPayments,
		Dividends:         pl.Dividends,
		NetCashFlow:       net,
		OverdraftDrawn:    funded.OverdraftDrawn,
		LoanDrawn:         funded.LoanDrawn,
		ClosingCash:       c.Cash,
		OperatingCashFlow: receipts - payments - pl.InterestPaid - pl.Tax,
		InvestingCashFlow: in.CapitalReceipts - in.CapitalPayments,
		FinancingCashFlow: funded.OverdraftDrawn + funded.LoanDrawn - pl.Dividends,
		LiquidityRatio:    c.Cash / math.Max(1, c.Overdraft+c.UnsecuredLoan),
	}

	res.SharePrice = UpdateSharePrice(c, in.MaterialPrice, pl.NetProfit, pl.Dividends)
	res.BalanceSheet = Balance(c, in.MaterialPrice)

	c.MachineEfficiency = math.Min(1, c.MachineEfficiency*production.MaintenanceFactor(d.MaintenanceHours))
	c.LastShiftLevel = params.ShiftIndex(d.ShiftLevel)
	return res
}

// UpdateSharePrice moves the share price toward fundamentals, earnings and
// dividends, never below the floor.
func UpdateSharePrice(c *company.State, materialPrice, netProfit, dividends float64) report.SharePrice {
	shares := c.SharesOutstanding
	sp := report.SharePrice{
		Previous:         c.SharePrice,
		NetWorthPerShare: c.NetWorth(materialPrice) / shares,
		EPS:              netProfit / shares,
		DPS:              dividends / shares,
	}
	sp.Momentum = 0.5 * sp.Previous
	sp.Fundamentals = 0.3 * sp.NetWorthPerShare
	sp.Earnings = 5 * sp.EPS
	sp.Dividend = 3 * sp.DPS
	sp.Price = math.Max(params.MinSharePrice, sp.Momentum+sp.Fundamentals+sp.Earnings+sp.Dividend)
	c.SharePrice = sp.Price
	return sp
}

// Balance draws up the closing balance sheet.
func Balance(c *company.State, materialPrice float64) report.BalanceSheet {
	b := report.BalanceSheet{
		Property:        c.PropertyValue,
		Machines:        c.MachineValue(),
		Vehicles:        c.VehicleValue(),
		ProductStocks:   c.ProductStockValue(),
		MaterialStock:   c.MaterialStockValue(materialPrice),
		Debtors:         c.Debtors,
		Cash:            math.Max(0, c.Cash),
		TaxLiability:    c.TaxLiability,
		Creditors:       c.Creditors,
		Overdraft:       c.Overdraft,
		UnsecuredLoans:  c.UnsecuredLoan,
		OrdinaryCapital: c.SharesOutstanding * params.OrdinarySharePar,
		Reserves:        c.Reserves,
	}
	b.TotalAssets = b.Property + b.Machines + b.Vehicles + b.ProductStocks + b.MaterialStock + b.Debtors + b.Cash
	b.TotalLiabilities = b.TaxLiability + b.Creditors + b.Overdraft + b.UnsecuredLoans
	b.NetWorth = b.TotalAssets - b.TotalLiabilities
	return b
}
