package personnel

import (
	"math"

	"github.com/talgya/topaz-sim/internal/company"
	"github.com/talgya/topaz-sim/internal/params"
)

// Metrics summarizes workforce sentiment for a quarter.
type Metrics struct {
	Morale                float64 `json:"morale"`
	RetentionRate         float64 `json:"retention_rate"`
	Productivity          float64 `json:"productivity"`
	TrainingEffectiveness float64 `json:"training_effectiveness"`
	TurnoverCost          float64 `json:"turnover_cost"`
}

// Measure derives morale from pay and management spend relative to the
// statutory minimums, and productivity from morale and training intensity.
func Measure(c *company.State, managementBudget float64, m Movements) Metrics {
	wageRatio := c.AssemblyWageRate / params.AssemblyMinWageRate
	salaryRatio := c.SalesSalary / params.MinSalesSalaryPerQuarter
	mgmtRatio := managementBudget / params.MinManagementBudget
	training := float64(m.SalesTrained+m.AssemblyTrained) /
		math.Max(1, float64(c.Salespeople+c.AssemblyWorkers))

	morale := params.Clamp(50+
		20*(wageRatio-1)+
		15*(salaryRatio-1)+
		10*(mgmtRatio-1)+
		5*training, 0, 100)

	turnover := float64(m.SalesRecruited)*params.RecruitmentCost[params.Salesperson] +
		float64(m.AssemblyRecruited)*params.RecruitmentCost[params.AssemblyWorker] +
		float64(m.SalesDismissed)*params.DismissalCost[params.Salesperson] +
		float64(m.AssemblyDismissed)*params.DismissalCost[params.AssemblyWorker]

	return Metrics{
		Morale:                morale,
		RetentionRate:         0.7 + 0.25*morale/100,
		Productivity:          params.Clamp(0.8+0.3*morale/100+0.1*training, 0.8, 1.2),
		TrainingEffectiveness: math.Min(1, 2*training),
		TurnoverCost:          turnover,
	}
}

// Apply stores the metrics on the company. Productivity feeds next into
// assembly capacity and wages.
func (m Metrics) Apply(c *company.State) {
	c.Morale = m.Morale
	c.SalesRetention = m.RetentionRate
	c.AssemblyRetention = m.RetentionRate
	c.Productivity = m.Productivity
}
