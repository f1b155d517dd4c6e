// Package company holds the mutable state of one competing firm and the
// valuation rules derived from it.
package company

import (
	"slices"

	"github.com/talgya/topaz-sim/internal/params"
)

// ImprovementKind grades a product development outcome.
type ImprovementKind string

const (
	NoImprovement ImprovementKind = "NONE"
	Minor         ImprovementKind = "MINOR"
	Major         ImprovementKind = "MAJOR"
)

// Improvement is a reported product development result.
type Improvement struct {
	Product         params.Product  `json:"product"`
	Kind            ImprovementKind `json:"type"`
	QuarterReported int             `json:"quarter_reported"`
	YearReported    int             `json:"year_reported"`
	Implemented     bool            `json:"implemented"`
}

// MaterialOrder is raw material bought in one quarter for delivery later.
type MaterialOrder struct {
	Quantity        float64 `json:"quantity"`
	Supplier        int     `json:"supplier"`
	Deliveries      int     `json:"num_deliveries"`
	OrderQuarter    int     `json:"order_quarter"`
	OrderYear       int     `json:"order_year"`
	DeliveryQuarter int     `json:"delivery_quarter"`
	DeliveryYear    int     `json:"delivery_year"`
	PricePer1000    float64 `json:"base_price_per_1000"`
}

// MachineOrder is a batch of machines awaiting installation. The deposit
// is paid when ordered and the balance on installation.
type MachineOrder struct {
	Quantity       int `json:"quantity"`
	OrderQuarter   int `json:"order_quarter"`
	OrderYear      int `json:"order_year"`
	InstallQuarter int `json:"install_quarter"`
	InstallYear    int `json:"install_year"`
}

// Balances are the financing positions captured at the start of a quarter.
type Balances struct {
	Cash      float64 `json:"cash"`
	Overdraft float64 `json:"overdraft"`
	Loan      float64 `json:"loan"`
	Debtors   float64 `json:"debtors"`
	Creditors float64 `json:"creditors"`
}

// State is one company. It is owned by the simulation and mutated in place
// by each quarter's processing.
type State struct {
	Name     string `json:"name"`
	Strategy string `json:"competitor_strategy,omitempty"` // empty for human players

	// Share capital.
	SharesOutstanding float64 `json:"shares_outstanding"`
	SharePrice        float64 `json:"share_price"`

	// Fixed assets. Machine and vehicle slices are kept oldest first.
	PropertyValue     float64        `json:"property_value"`
	Machines          int            `json:"machines"`
	MachineAges       []int          `json:"machine_ages_quarters"`
	MachineValues     []float64      `json:"machine_values"`
	MachineOrders     []MachineOrder `json:"machines_ordered"`
	MachineEfficiency float64        `json:"machine_efficiency"`
	Vehicles          int            `json:"vehicles"`
	VehicleAges       []int          `json:"vehicles_age_quarters"`

	// Inventory.
	MaterialStock  float64          `json:"material_stock"`
	MaterialOrders []MaterialOrder  `json:"material_orders"`
	Stocks         params.Grid[int] `json:"stocks"`
	Backlog        params.Grid[int] `json:"backlog"`

	// Personnel.
	Salespeople        int `json:"salespeople"`
	AssemblyWorkers    int `json:"assembly_workers"`
	Machinists         int `json:"machinists"`
	SalesInTraining    int `json:"salespeople_in_training"`
	AssemblyInTraining int `json:"assembly_workers_in_training"`
	SalesPending       int `json:"salespeople_pending_recruitment"`
	AssemblyPending    int `json:"assembly_workers_pending_recruitment"`
	SalesToDismiss     int `json:"salespeople_to_dismiss_next_quarter"`
	AssemblyToDismiss  int `json:"assembly_workers_to_dismiss_next_quarter"`

	// Pay rates in force.
	SalesSalary         float64 `json:"sales_salary"`
	SalesCommissionRate float64 `json:"sales_commission_rate"`
	AssemblyWageRate    float64 `json:"assembly_wage_rate"`

	// Finance.
	Cash                     float64 `json:"cash"`
	Overdraft                float64 `json:"overdraft"`
	UnsecuredLoan            float64 `json:"unsecured_loan"`
	Reserves                 float64 `json:"reserves"`
	TaxLiability             float64 `json:"tax_liability"`
	TaxableProfitAccumulated float64 `json:"taxable_profit_accumulated"`
	Debtors                  float64 `json:"debtors"`
	Creditors                float64 `json:"creditors"`

	// Product state.
	Improvements   []Improvement               `json:"product_improvements"`
	StarRatings    [params.NumProducts]float64 `json:"product_star_ratings"`
	DevAccumulated [params.NumProducts]float64 `json:"product_dev_accumulated"`
	DevActive      [params.NumProducts]bool    `json:"product_dev_projects_active"`

	LastShiftLevel int `json:"last_shift_level"`
	StrikeWeeks    int `json:"strike_weeks_next_quarter"`

	// Workforce feedback.
	Morale            float64 `json:"workforce_morale"`
	SalesRetention    float64 `json:"sales_retention_rate"`
	AssemblyRetention float64 `json:"assembly_retention_rate"`
	Productivity      float64 `json:"productivity_multiplier"`

	// CostModifier scales cost of sales; 1 means no active event.
	CostModifier float64 `json:"cost_modifier"`

	Opening Balances `json:"opening"`
}

// New returns a company in the standard opening position.
func New(name string) *State {
	c := &State{
		Name:              name,
		SharesOutstanding: params.StartShares,
		SharePrice:        params.StartSharePrice,
		PropertyValue:     params.StartProperty,
		Machines:          params.StartMachines,
		MachineAges:       make([]int, params.StartMachines),
		MachineValues:     make([]float64, params.StartMachines),
		MachineEfficiency: 1,
		Vehicles:          params.StartVehicles,
		VehicleAges:       make([]int, params.StartVehicles),
		MaterialStock:     params.StartMaterialStock,
		Salespeople:       params.StartSalespeople,
		AssemblyWorkers:   params.StartAssemblyWorkers,
		Machinists:        params.StartMachinists,
		SalesSalary:       params.MinSalesSalaryPerQuarter,
		AssemblyWageRate:  params.AssemblyMinWageRate,
		Cash:              params.StartCash,
		LastShiftLevel:    1,
		Morale:            50,
		SalesRetention:    0.825,
		AssemblyRetention: 0.825,
		Productivity:      1,
		CostModifier:      1,
	}
	for i := range c.MachineValues {
		c.MachineValues[i] = params.MachineCost
	}
	for p := range c.StarRatings {
		c.StarRatings[p] = params.StartStarRating
	}
	c.CaptureOpening()
	return c
}

// CaptureOpening records the financing positions at the start of a quarter.
func (c *State) CaptureOpening() {
	c.Opening = Balances{
		Cash:      c.Cash,
		Overdraft: c.Overdraft,
		Loan:      c.UnsecuredLoan,
		Debtors:   c.Debtors,
		Creditors: c.Creditors,
	}
}

// Clone returns a deep copy.
func (c *State) Clone() *State {
	cp := *c
	cp.MachineAges = slices.Clone(c.MachineAges)
	cp.MachineValues = slices.Clone(c.MachineValues)
	cp.MachineOrders = slices.Clone(c.MachineOrders)
	cp.VehicleAges = slices.Clone(c.VehicleAges)
	cp.MaterialOrders = slices.Clone(c.MaterialOrders)
	cp.Improvements = slices.Clone(c.Improvements)
	return &cp
}

// PendingMajor reports whether an unimplemented major improvement exists.
func (c *State) PendingMajor(p params.Product) bool {
	for _, imp := range c.Improvements {
		if imp.Product == p && imp.Kind == Major && !imp.Implemented {
			return true
		}
	}
	return false
}

// MachinesOnOrder counts ordered machines not yet installed.
func (c *State) MachinesOnOrder() int {
	n := 0
	for _, mo := range c.MachineOrders {
		n += mo.Quantity
	}
	return n
}

// MaterialOnOrder totals undelivered material.
func (c *State) MaterialOnOrder() float64 {
	total := 0.0
	for _, mo := range c.MaterialOrders {
		total += mo.Quantity
	}
	return total
}
