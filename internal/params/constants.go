// Package params holds the fixed rule tables of the Topaz business game.
// Every cost, rate and capacity the engine uses traces back to a table here.
package params

// Base economic values.
const (
	BaseGDP           = 100.0
	BaseUnemployment  = 6.0
	BaseCBRate        = 3.0
	BaseMaterialPrice = 100.0 // per 1000 units
)

// Table 1: market statistics per area.
type MarketStats struct {
	Managerial  float64
	Supervisory float64
	Other       float64
	Total       float64
	Outlets     int
}

var MarketStatistics = [NumAreas]MarketStats{
	South:  {Managerial: 1_000_000, Supervisory: 2_000_000, Other: 4_000_000, Total: 7_000_000, Outlets: 3000},
	West:   {Managerial: 1_000_000, Supervisory: 1_000_000, Other: 2_000_000, Total: 4_000_000, Outlets: 2000},
	North:  {Managerial: 1_000_000, Supervisory: 3_000_000, Other: 9_000_000, Total: 13_000_000, Outlets: 4000},
	Export: {Managerial: 10_000_000, Supervisory: 15_000_000, Other: 55_000_000, Total: 80_000_000, Outlets: 20_000},
}

// ReferencePopulation is the area size that yields a population factor of 1.
const ReferencePopulation = 7_000_000.0

// Table 2: marketing costs (per quarter).
const (
	SalespersonExpenses  = 3000.0
	CompetitorInfoCost   = 5000.0
	MarketSharesInfoCost = 5000.0
	SalesOfficeCostRate  = 0.01
)

// Table 3: manufacturing parameters, in minutes and material units per product.
var (
	MinMachiningTime = [NumProducts]float64{60, 75, 120}
	MinAssemblyTime  = [NumProducts]float64{100, 150, 300}
	MaterialPerUnit  = [NumProducts]float64{1, 2, 3}
)

// Table 4: maintenance (£ per hour).
const (
	ContractedMaintenanceRate   = 60.0
	UncontractedMaintenanceRate = 120.0
)

// Table 5: machine hours and machinist crew per machine, indexed by shift level 1..3.
var (
	MachineHoursPerShift = [4]float64{0, 576, 1068, 1602}
	MachinistsPerMachine = [4]int{0, 4, 8, 12}
)

// Tables 6 and 7: scrap value and guarantee servicing per rejected unit.
var (
	ScrapValue      = [NumProducts]float64{20, 40, 60}
	ServicingCharge = [NumProducts]float64{60, 120, 200}
)

// Table 8: production costs.
const (
	SupervisionCostPerShift       = 10_000.0
	ProductionOverheadPerMachine  = 2000.0
	MachineRunningCostPerHour     = 7.0
	ProductionPlanningCostPerUnit = 1.0
)

// Tables 9–11: transport.
var (
	VehicleCapacity = [NumProducts]float64{40, 40, 20}
	JourneyTimeDays = [NumAreas]float64{1, 2, 4, 6}
)

const (
	VehicleSlots                = 40.0
	FleetFixedCostPerVehicle    = 7000.0
	OwnVehicleRunningCostPerDay = 50.0
	HiredVehicleCostPerDay      = 200.0
	MaxVehicleDaysPerQuarter    = 60.0
)

// Table 12: warehousing and purchasing.
const (
	FactoryStorageCapacity      = 2000.0
	FixedQuarterlyWarehouseCost = 3750.0
	FixedQuarterlyAdminCost     = 3250.0
	CostPerOrder                = 750.0
	VariableExternalStorageCost = 1.50
	ProductStorageCost          = 2.0
)

// Table 14: material suppliers' terms of trade.
type SupplierTerms struct {
	Discount        float64
	DeliveryCharge  float64 // per delivery
	MinDelivery     float64
	MinOrder        float64
	JustInTime      bool
	FixedDeliveries int // 0 = buyer chooses
}

var Suppliers = [4]SupplierTerms{
	{Discount: 0.00, DeliveryCharge: 0, MinDelivery: 1, MinOrder: 1, JustInTime: true},
	{Discount: 0.10, DeliveryCharge: 200, MinDelivery: 1, MinOrder: 1},
	{Discount: 0.15, DeliveryCharge: 300, MinDelivery: 1000, MinOrder: 10_000},
	{Discount: 0.30, DeliveryCharge: 100, MinDelivery: 0, MinOrder: 50_000, FixedDeliveries: 12},
}

// MaterialLeadQuarters is the gap between ordering and delivery.
const MaterialLeadQuarters = 2

// Table 15: personnel department costs, indexed by Staff.
var (
	RecruitmentCost = [NumStaff]float64{1500, 1200, 750}
	DismissalCost   = [NumStaff]float64{5000, 3000, 1500}
	TrainingCost    = [NumStaff]float64{6000, 4500, 0}
)

// Table 16: maximum hours per production worker per quarter, indexed by shift level 1..3.
type WorkerHours struct {
	Basic            float64
	Saturday         float64
	Sunday           float64
	MachinistPremium float64
}

// Total returns the maximum hours a worker can be paid for in a quarter.
func (w WorkerHours) Total() float64 { return w.Basic + w.Saturday + w.Sunday }

var WorkerHoursByShift = [4]WorkerHours{
	{},
	{Basic: 420, Saturday: 84, Sunday: 72, MachinistPremium: 0},
	{Basic: 420, Saturday: 42, Sunday: 72, MachinistPremium: 1.0 / 3},
	{Basic: 420, Saturday: 42, Sunday: 72, MachinistPremium: 2.0 / 3},
}

// Table 17: minimum hours and pay.
const (
	MachinistMinHours          = 400.0
	AssemblyStrikeHoursPerWeek = 48.0
	AssemblyMinWageRate        = 8.50
	UnskilledSkilledRatio      = 0.65
	MinSalesSalaryPerQuarter   = 2000.0
	MinManagementBudget        = 40_000.0
	StrikeWeeksPerBasicQuarter = 12.0
)

// Table 18: fixed assets.
const (
	MachineCost               = 200_000.0
	MachineDeposit            = 100_000.0
	VehicleCost               = 15_000.0
	MachineDepreciationRate   = 0.025
	VehicleDepreciationRate   = 0.0625
	MachineInstallLagQuarters = 3
)

// Table 20: financial parameters.
const (
	TaxRate                  = 0.30
	FixedOverheadsPerQuarter = 10_000.0
	VariableOverheadRate     = 0.0025
	CreditControlCostPerUnit = 1.50
	InterestDepositSpread    = -2.0
	InterestOverdraftSpread  = 4.0
	InterestLoanSpread       = 10.0
	CashCollectedFraction    = 0.7
	BacklogCarryOver         = 0.5
	MinSharePrice            = 0.1
	OrdinarySharePar         = 2.0
)

// Table 21: stock valuation per finished unit.
var ProductStockValuation = [NumProducts]float64{80, 120, 200}

// Training limitation.
const MaxTraineesPerCategory = 9

// Opening position of every company.
const (
	StartShares          = 1_000_000.0
	StartSharePrice      = 1.0
	StartProperty        = 500_000.0
	StartMachines        = 10
	StartVehicles        = 5
	StartMaterialStock   = 5_000.0
	StartSalespeople     = 10
	StartAssemblyWorkers = 40
	StartMachinists      = 40
	StartCash            = 200_000.0
	StartStarRating      = 3.0
)

// ReferencePrice is the neutral price of a product in the demand model.
func ReferencePrice(p Product) float64 {
	return 100 + 20*float64(p)
}
