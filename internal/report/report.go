// Package report defines the management report produced for every company
// each quarter. Every section is an explicit record so the whole report
// serializes to plain JSON.
package report

import (
	"github.com/talgya/topaz-sim/internal/company"
	"github.com/talgya/topaz-sim/internal/economy"
	"github.com/talgya/topaz-sim/internal/params"
	"github.com/talgya/topaz-sim/internal/personnel"
	"github.com/talgya/topaz-sim/internal/production"
)

// ProfitAndLoss is the quarter's income statement.
type ProfitAndLoss struct {
	Revenue          float64 `json:"revenue"`
	CostOfSales      float64 `json:"cost_of_sales"`
	GrossProfit      float64 `json:"gross_profit"`
	TotalOverheads   float64 `json:"total_overheads"`
	EBITDA           float64 `json:"ebitda"`
	InterestReceived float64 `json:"interest_received"`
	InterestPaid     float64 `json:"interest_paid"`
	Depreciation     float64 `json:"depreciation"`
	ProfitBeforeTax  float64 `json:"profit_before_tax"`
	Tax              float64 `json:"tax"`
	NetProfit        float64 `json:"net_profit"`
	Dividends        float64 `json:"dividends"`
	Retained         float64 `json:"retained"`

	// Year-to-date taxable profit including this quarter, before any Q4
	// settlement resets it, and the liability assessed last year.
	TaxableProfitAccumulated float64 `json:"taxable_profit_accumulated"`
	PriorTaxLiability        float64 `json:"prior_tax_liability"`
}

// CostOfSales breaks down production cost.
type CostOfSales struct {
	Materials          float64 `json:"materials_purchased"`
	AssemblyWages      float64 `json:"assembly_wages"`
	MachinistWages     float64 `json:"machinists_wages"`
	Supervision        float64 `json:"supervision"`
	ProductionOverhead float64 `json:"production_overhead"`
	MachineRunning     float64 `json:"machine_running_costs"`
	ProductionPlanning float64 `json:"production_planning"`
	CostModifier       float64 `json:"cost_modifier"`
	Total              float64 `json:"total"`
}

// Overheads breaks down operating expenses.
type Overheads struct {
	Advertising        float64 `json:"advertising"`
	ProductResearch    float64 `json:"product_research"`
	SalesSalaries      float64 `json:"salespeople_salary"`
	SalesCommission    float64 `json:"sales_commission"`
	SalesExpenses      float64 `json:"sales_expenses"`
	Personnel          float64 `json:"personnel_department"`
	Maintenance        float64 `json:"maintenance"`
	Warehousing        float64 `json:"warehousing"`
	ExternalStorage    float64 `json:"external_storage"`
	Purchasing         float64 `json:"purchasing"`
	Management         float64 `json:"management_budget"`
	Transport          float64 `json:"transport"`
	GuaranteeServicing float64 `json:"guarantee_servicing"`
	Information        float64 `json:"business_intelligence"`
	StockWriteOffs     float64 `json:"stock_write_offs"`
	CreditControl      float64 `json:"credit_control"`
	Fixed              float64 `json:"other_miscellaneous"`
}

// Total sums every overhead line.
func (o Overheads) Total() float64 {
	return o.Advertising + o.ProductResearch + o.SalesSalaries + o.SalesCommission +
		o.SalesExpenses + o.Personnel + o.Maintenance + o.Warehousing + o.ExternalStorage +
		o.Purchasing + o.Management + o.Transport + o.GuaranteeServicing + o.Information +
		o.StockWriteOffs + o.CreditControl + o.Fixed
}

// Transport is the quarter's delivery fleet usage.
type Transport struct {
	Trips        [params.NumAreas]int `json:"trips"`
	VehicleDays  float64              `json:"vehicle_days"`
	OwnDays      float64              `json:"own_days"`
	HiredDays    float64              `json:"hired_days"`
	FleetFixed   float64              `json:"fleet_fixed"`
	OwnRunning   float64              `json:"own_running"`
	HiredRunning float64              `json:"hired_running"`
	Total        float64              `json:"total"`
}

// BalanceSheet is the closing position.
type BalanceSheet struct {
	Property         float64 `json:"property_value"`
	Machines         float64 `json:"machine_values"`
	Vehicles         float64 `json:"vehicle_values"`
	ProductStocks    float64 `json:"product_stocks_value"`
	MaterialStock    float64 `json:"material_stock_value"`
	Debtors          float64 `json:"debtors"`
	Cash             float64 `json:"cash_invested"`
	TotalAssets      float64 `json:"total_assets"`
	TaxLiability     float64 `json:"tax_assessed_due"`
	Creditors        float64 `json:"creditors"`
	Overdraft        float64 `json:"overdraft"`
	UnsecuredLoans   float64 `json:"unsecured_loans"`
	TotalLiabilities float64 `json:"total_liabilities"`
	NetWorth         float64 `json:"net_worth"`
	OrdinaryCapital  float64 `json:"ordinary_capital"`
	Reserves         float64 `json:"reserves"`
}

// CashFlow reconciles opening to closing cash.
type CashFlow struct {
	OpeningCash       float64 `json:"opening_cash"`
	TradingReceipts   float64 `json:"trading_receipts"`
	TradingPayments   float64 `json:"trading_payments"`
	InterestPaid      float64 `json:"interest_paid"`
	TaxPaid           float64 `json:"tax_paid"`
	CapitalReceipts   float64 `json:"capital_receipts"`
	CapitalPayments   float64 `json:"capital_payments"`
	Dividends         float64 `json:"dividend_paid"`
	NetCashFlow       float64 `json:"net_cash_flow"`
	OverdraftDrawn    float64 `json:"overdraft_drawn"`
	LoanDrawn         float64 `json:"loan_drawn"`
	ClosingCash       float64 `json:"closing_cash"`
	OperatingCashFlow float64 `json:"operating_cash_flow"`
	InvestingCashFlow float64 `json:"investing_cash_flow"`
	FinancingCashFlow float64 `json:"financing_cash_flow"`
	LiquidityRatio    float64 `json:"liquidity_ratio"`
}

// SharePrice shows how the new price was built.
type SharePrice struct {
	Previous         float64 `json:"previous"`
	NetWorthPerShare float64 `json:"net_worth_per_share"`
	EPS              float64 `json:"eps"`
	DPS              float64 `json:"dps"`
	Momentum         float64 `json:"momentum_contribution"`
	Fundamentals     float64 `json:"fundamentals_contribution"`
	Earnings         float64 `json:"earnings_contribution"`
	Dividend         float64 `json:"dividend_contribution"`
	Price            float64 `json:"price"`
}

// Materials is the raw material movement for the quarter.
type Materials struct {
	Opening      float64 `json:"material_opening"`
	Delivered    float64 `json:"material_delivered"`
	DeliveryCost float64 `json:"material_cost"`
	Used         float64 `json:"materials_used"`
	Closing      float64 `json:"material_closing"`
	OnOrder      float64 `json:"material_on_order"`
	OrderPlaced  bool    `json:"order_placed"`
}

// ManagementReport is one company's results for one quarter.
type ManagementReport struct {
	Company      string `json:"company"`
	CompanyIndex int    `json:"company_index"`
	Strategy     string `json:"strategy,omitempty"`
	Quarter      int    `json:"quarter"`
	Year         int    `json:"year"`

	ProfitAndLoss

	Cash              float64 `json:"cash"`
	Overdraft         float64 `json:"overdraft"`
	Loan              float64 `json:"loan"`
	NetWorth          float64 `json:"net_worth"`
	SharePrice        float64 `json:"share_price"`
	ShiftLevel        int     `json:"shift_level"`
	MachineEfficiency float64 `json:"machine_efficiency"`

	Machines          int `json:"machines"`
	MachinesInstalled int `json:"machines_installed"`
	MachinesOrdered   int `json:"machines_ordered"`
	MachinesSold      int `json:"machines_sold"`
	Vehicles          int `json:"vehicles"`
	VansBought        int `json:"vans_bought"`
	VansSold          int `json:"vans_sold"`
	Salespeople       int `json:"salespeople"`
	AssemblyWorkers   int `json:"assembly_workers"`
	Machinists        int `json:"machinists"`

	Scheduled     params.Grid[int]     `json:"scheduled"`
	OpeningStocks params.Grid[int]     `json:"opening_stocks"`
	NewOrders     params.Grid[int]     `json:"new_orders"`
	Sales         params.Grid[int]     `json:"sales"`
	Backlog       params.Grid[int]     `json:"backlog"`
	Stocks        params.Grid[int]     `json:"stocks"`
	Demand        params.Grid[float64] `json:"demand"`
	MarketShare   params.Grid[float64] `json:"market_share"`

	ServicingUnits [params.NumProducts]int                     `json:"servicing_units"`
	DevOutcomes    [params.NumProducts]company.ImprovementKind `json:"product_dev_outcomes"`
	StockWriteOffs [params.NumProducts]int                     `json:"stock_write_offs"`
	StarRatings    [params.NumProducts]float64                 `json:"star_ratings"`

	Capacity   production.Capacity `json:"capacity"`
	Production production.Output   `json:"production"`
	Materials  Materials           `json:"materials"`
	Personnel  personnel.Movements `json:"personnel"`
	Workforce  personnel.Metrics   `json:"workforce"`

	Overheads            Overheads    `json:"overhead_breakdown"`
	CostOfSalesBreakdown CostOfSales  `json:"cost_of_sales_breakdown"`
	Transport            Transport    `json:"transport"`
	BalanceSheet         BalanceSheet `json:"balance_sheet"`
	CashFlow             CashFlow     `json:"cash_flow"`
	SharePriceBreakdown  SharePrice   `json:"share_price_breakdown"`

	Events   []economy.RandomEvent `json:"active_events,omitempty"`
	Warnings []string              `json:"warnings,omitempty"`
}
