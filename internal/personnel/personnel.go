// Package personnel runs the quarterly staffing lifecycle: dismissals and
// arrivals at the start of a quarter, then recruitment, training and
// dismissal notices that take effect in the next one.
package personnel

import (
	"math"

	"github.com/talgya/topaz-sim/internal/company"
	"github.com/talgya/topaz-sim/internal/decision"
	"github.com/talgya/topaz-sim/internal/entropy"
	"github.com/talgya/topaz-sim/internal/params"
)

// Movements counts the staffing changes decided in a quarter.
type Movements struct {
	SalesRecruited      int `json:"sales_recruited"`
	AssemblyRecruited   int `json:"assembly_recruited"`
	SalesTrained        int `json:"sales_trained"`
	AssemblyTrained     int `json:"assembly_trained"`
	SalesDismissed      int `json:"sales_dismissed"`
	AssemblyDismissed   int `json:"assembly_dismissed"`
	MachinistsRecruited int `json:"machinists_recruited"`
	MachinistsDismissed int `json:"machinists_dismissed"`
}

// Cost is the personnel department charge for the movements.
func (m Movements) Cost() float64 {
	return float64(m.SalesRecruited)*params.RecruitmentCost[params.Salesperson] +
		float64(m.AssemblyRecruited)*params.RecruitmentCost[params.AssemblyWorker] +
		float64(m.MachinistsRecruited)*params.RecruitmentCost[params.Machinist] +
		float64(m.SalesDismissed)*params.DismissalCost[params.Salesperson] +
		float64(m.AssemblyDismissed)*params.DismissalCost[params.AssemblyWorker] +
		float64(m.MachinistsDismissed)*params.DismissalCost[params.Machinist] +
		float64(m.SalesTrained)*params.TrainingCost[params.Salesperson] +
		float64(m.AssemblyTrained)*params.TrainingCost[params.AssemblyWorker]
}

// ApplyDismissals removes staff given notice last quarter.
func ApplyDismissals(c *company.State) {
	c.Salespeople = max(0, c.Salespeople-c.SalesToDismiss)
	c.AssemblyWorkers = max(0, c.AssemblyWorkers-c.AssemblyToDismiss)
	c.SalesToDismiss = 0
	c.AssemblyToDismiss = 0
}

// Arrive adds last quarter's recruits and trainees to the workforce.
func Arrive(c *company.State) {
	c.Salespeople += c.SalesPending + c.SalesInTraining
	c.AssemblyWorkers += c.AssemblyPending + c.AssemblyInTraining
	c.SalesPending, c.SalesInTraining = 0, 0
	c.AssemblyPending, c.AssemblyInTraining = 0, 0
}

// UpdatePay puts the quarter's pay decisions into force.
func UpdatePay(c *company.State, d *decision.Decisions) {
	c.SalesSalary = d.SalesSalary
	c.SalesCommissionRate = d.SalesCommissionPercent / 100
	c.AssemblyWageRate = d.AssemblyWageRate
}

// SuccessRate is the fraction of requested recruits actually hired.
func SuccessRate(base, unemployment, payRatio float64) float64 {
	return math.Min(0.9, base+0.3*unemployment/params.BaseUnemployment+0.2*payRatio)
}

func recruit(requested int, rate float64, rng *entropy.Source) int {
	if requested <= 0 {
		return 0
	}
	return min(requested, int(math.Floor(float64(requested)*rate+rng.Float())))
}

// Recruit hires into the pending buckets. A random draw is consumed only
// for categories with a positive request.
func Recruit(c *company.State, d *decision.Decisions, unemployment float64, rng *entropy.Source) (sales, assembly int) {
	sales = recruit(d.RecruitSales,
		SuccessRate(0.3, unemployment, c.SalesSalary/params.MinSalesSalaryPerQuarter), rng)
	assembly = recruit(d.RecruitAssembly,
		SuccessRate(0.4, unemployment, c.AssemblyWageRate/params.AssemblyMinWageRate), rng)
	c.SalesPending += sales
	c.AssemblyPending += assembly
	return sales, assembly
}

// Train enrolls trainees, capped per category.
func Train(c *company.State, d *decision.Decisions) (sales, assembly int) {
	sales = params.Clamp(d.TrainSales, 0, params.MaxTraineesPerCategory)
	assembly = params.Clamp(d.TrainAssembly, 0, params.MaxTraineesPerCategory)
	c.SalesInTraining += sales
	c.AssemblyInTraining += assembly
	return sales, assembly
}

// GiveNotice schedules dismissals for the start of next quarter, capped at
// current headcount.
func GiveNotice(c *company.State, d *decision.Decisions) (sales, assembly int) {
	sales = params.Clamp(d.DismissSales, 0, c.Salespeople)
	assembly = params.Clamp(d.DismissAssembly, 0, c.AssemblyWorkers)
	c.SalesToDismiss = sales
	c.AssemblyToDismiss = assembly
	return sales, assembly
}

// StaffMachinists sets the machinist headcount to the crew the installed
// machines need at the chosen shift.
func StaffMachinists(c *company.State, shift int) (recruited, dismissed int) {
	need := c.Machines * params.MachinistsPerMachine[params.ShiftIndex(shift)]
	switch {
	case need > c.Machinists:
		recruited = need - c.Machinists
	case need < c.Machinists:
		dismissed = c.Machinists - need
	}
	c.Machinists = need
	return recruited, dismissed
}

// Process runs every personnel decision for the quarter, in order.
func Process(c *company.State, d *decision.Decisions, unemployment float64, rng *entropy.Source) Movements {
	var m Movements
	UpdatePay(c, d)
	m.SalesRecruited, m.AssemblyRecruited = Recruit(c, d, unemployment, rng)
	m.SalesTrained, m.AssemblyTrained = Train(c, d)
	m.SalesDismissed, m.AssemblyDismissed = GiveNotice(c, d)
	m.MachinistsRecruited, m.MachinistsDismissed = StaffMachinists(c, d.ShiftLevel)
	return m
}
