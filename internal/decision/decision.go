// Package decision defines the per-company input for one quarter.
package decision

import (
	"github.com/talgya/topaz-sim/internal/params"
)

// Decisions is everything a company decides for one quarter. Values are
// plain arrays so a copy is a deep copy.
type Decisions struct {
	ImplementMajorImprovement [params.NumProducts]bool `json:"implement_major_improvement"`

	PricesHome   [params.NumProducts]float64 `json:"prices_home"`
	PricesExport [params.NumProducts]float64 `json:"prices_export"`

	AdvertisingTradePress    params.Grid[float64] `json:"advertising_trade_press"`
	AdvertisingSupport       params.Grid[float64] `json:"advertising_support"`
	AdvertisingMerchandising params.Grid[float64] `json:"advertising_merchandising"`

	AssemblyTime          [params.NumProducts]float64 `json:"assembly_time"` // minutes per unit
	SalespeopleAllocation [params.NumAreas]int        `json:"salespeople_allocation"`

	SalesSalary            float64 `json:"sales_salary_per_quarter"`
	SalesCommissionPercent float64 `json:"sales_commission_percent"`
	AssemblyWageRate       float64 `json:"assembly_wage_rate"`

	ShiftLevel       int     `json:"shift_level"`
	ManagementBudget float64 `json:"management_budget"`
	MaintenanceHours float64 `json:"maintenance_hours_per_machine"`
	DividendPerShare float64 `json:"dividend_per_share"`
	CreditDays       float64 `json:"credit_days"`

	VansToBuy  int `json:"vans_to_buy"`
	VansToSell int `json:"vans_to_sell"`

	BuyCompetitorInfo bool `json:"buy_competitor_info"`
	BuyMarketShares   bool `json:"buy_market_shares"`

	Deliveries         params.Grid[int]            `json:"deliveries"` // planned production
	ProductDevelopment [params.NumProducts]float64 `json:"product_development"`

	RecruitSales    int `json:"recruit_sales"`
	DismissSales    int `json:"dismiss_sales"`
	TrainSales      int `json:"train_sales"`
	RecruitAssembly int `json:"recruit_assembly"`
	DismissAssembly int `json:"dismiss_assembly"`
	TrainAssembly   int `json:"train_assembly"`

	MaterialsQuantity   float64 `json:"materials_quantity"`
	MaterialsSupplier   int     `json:"materials_supplier"`
	MaterialsDeliveries int     `json:"materials_num_deliveries"`

	MachinesToSell  int `json:"machines_to_sell"`
	MachinesToOrder int `json:"machines_to_order"`
}

// Default returns the decisions used when a caller supplies only part of
// a vector. Unmarshalling a partial JSON document onto it merges fields.
func Default() Decisions {
	return Decisions{
		PricesHome:            [params.NumProducts]float64{100, 120, 140},
		PricesExport:          [params.NumProducts]float64{110, 132, 154},
		AssemblyTime:          params.MinAssemblyTime,
		SalespeopleAllocation: [params.NumAreas]int{2, 2, 3, 3},
		SalesSalary:           params.MinSalesSalaryPerQuarter,
		AssemblyWageRate:      params.AssemblyMinWageRate,
		ShiftLevel:            1,
		ManagementBudget:      params.MinManagementBudget,
		MaintenanceHours:      40,
		CreditDays:            30,
		MaterialsQuantity:     5000,
		MaterialsSupplier:     0,
		MaterialsDeliveries:   1,
	}
}

// Price returns the selling price of a product in an area.
func (d *Decisions) Price(p params.Product, a params.Area) float64 {
	if a == params.Export {
		return d.PricesExport[p]
	}
	return d.PricesHome[p]
}

// Advertising returns the combined spend of all three channels for a cell.
func (d *Decisions) Advertising(p params.Product, a params.Area) float64 {
	return d.AdvertisingTradePress[p][a] + d.AdvertisingSupport[p][a] + d.AdvertisingMerchandising[p][a]
}

// AdvertisingTotal is the quarter's total advertising spend.
func (d *Decisions) AdvertisingTotal() float64 {
	return d.AdvertisingTradePress.Sum() + d.AdvertisingSupport.Sum() + d.AdvertisingMerchandising.Sum()
}

// DevelopmentTotal is the quarter's total product development spend.
func (d *Decisions) DevelopmentTotal() float64 {
	total := 0.0
	for _, v := range d.ProductDevelopment {
		total += v
	}
	return total
}

// PlannedUnits is the total scheduled production across all cells.
func (d *Decisions) PlannedUnits() int {
	return d.Deliveries.Sum()
}

// SetAdvertising splits a spend evenly across the three channels.
func (d *Decisions) SetAdvertising(p params.Product, a params.Area, total float64) {
	d.AdvertisingTradePress[p][a] = total / 3
	d.AdvertisingSupport[p][a] = total / 3
	d.AdvertisingMerchandising[p][a] = total / 3
}
