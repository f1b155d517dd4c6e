package competitor

import (
	opensimplex "github.com/ojrac/opensimplex-go"

	"github.com/talgya/topaz-sim/internal/company"
	"github.com/talgya/topaz-sim/internal/decision"
	"github.com/talgya/topaz-sim/internal/entropy"
	"github.com/talgya/topaz-sim/internal/params"
)

const basePrice = 100.0

// Relative weight of salespeople sent to each area.
var areaWeights = [params.NumAreas]float64{1.0, 0.7, 1.3, 1.2}

// Generator produces AI decisions. Advertising budgets drift over time
// along a smooth noise curve per company, sampled by position so it never
// touches the shared random stream.
type Generator struct {
	rng   *entropy.Source
	noise opensimplex.Noise
}

// NewGenerator creates a generator drawing from rng. The seed fixes the
// intensity curves.
func NewGenerator(seed int64, rng *entropy.Source) *Generator {
	return &Generator{
		rng:   rng,
		noise: opensimplex.NewNormalized(seed),
	}
}

// Intensity is the advertising multiplier for a company in a quarter,
// between 0.8 and 1.2.
func (g *Generator) Intensity(companyIndex, quarterIndex int) float64 {
	v := g.noise.Eval2(float64(companyIndex)*7.3, float64(quarterIndex)*0.35)
	return 0.8 + 0.4*params.Clamp(v, 0, 1)
}

// Decide builds a complete decision vector for an AI company. The balanced
// profile is drawn first and the strategy overrides the fields it cares
// about.
func (g *Generator) Decide(c *company.State, s Strategy, companyIndex, quarterIndex int) decision.Decisions {
	d := g.balanced(c)
	switch s {
	case Aggressive:
		g.aggressive(&d)
	case Conservative:
		g.conservative(&d)
	case QualityFocused:
		g.qualityFocused(&d)
	case CostLeader:
		g.costLeader(&d)
	}

	scale := g.Intensity(companyIndex, quarterIndex)
	for _, p := range params.Products {
		for _, a := range params.Areas {
			d.SetAdvertising(p, a, d.Advertising(p, a)*scale)
		}
	}
	return d
}

func (g *Generator) prices(d *decision.Decisions, step, offset float64, jitter int, exportMarkup float64) {
	for _, p := range params.Products {
		d.PricesHome[p] = basePrice + step*float64(p) + offset + float64(g.rng.IntRange(-jitter, jitter))
		d.PricesExport[p] = d.PricesHome[p] * exportMarkup
	}
}

func (g *Generator) advertising(d *decision.Decisions, options ...float64) {
	for _, p := range params.Products {
		for _, a := range params.Areas {
			d.SetAdvertising(p, a, entropy.Pick(g.rng, options...))
		}
	}
}

func (g *Generator) development(d *decision.Decisions, options ...float64) {
	for _, p := range params.Products {
		d.ProductDevelopment[p] = entropy.Pick(g.rng, options...)
	}
}

func (g *Generator) assemblyTime(d *decision.Decisions, lo, hi float64) {
	for _, p := range params.Products {
		d.AssemblyTime[p] = params.MinAssemblyTime[p] * g.rng.Uniform(lo, hi)
	}
}

// balanced is the default AI profile and fills every field.
func (g *Generator) balanced(c *company.State) decision.Decisions {
	d := decision.Default()
	g.prices(&d, 15, 0, 10, 1.1)
	g.assemblyTime(&d, 1.0, 1.4)
	g.advertising(&d, 0, 5000, 10_000, 20_000)
	g.development(&d, 0, 5000, 10_000)

	totalWeight := 0.0
	for _, w := range areaWeights {
		totalWeight += w
	}
	allocated := 0
	for _, a := range params.Areas {
		d.SalespeopleAllocation[a] = int(float64(c.Salespeople) * areaWeights[a] / totalWeight)
		allocated += d.SalespeopleAllocation[a]
	}
	for ; allocated < c.Salespeople; allocated++ {
		d.SalespeopleAllocation[entropy.Pick(g.rng, params.Areas[:]...)]++
	}

	for _, p := range params.Products {
		for _, a := range params.Areas {
			d.Deliveries[p][a] = g.rng.IntRange(200, 1500)
		}
	}

	d.SalesSalary = params.MinSalesSalaryPerQuarter
	d.SalesCommissionPercent = 0
	d.AssemblyWageRate = params.AssemblyMinWageRate
	d.ShiftLevel = entropy.Pick(g.rng, 1, 2, 3)
	d.ManagementBudget = entropy.Pick(g.rng, 40_000.0, 50_000, 60_000)
	d.MaintenanceHours = entropy.Pick(g.rng, 20.0, 40, 60)
	d.DividendPerShare = entropy.Pick(g.rng, 0, 0.02, 0.04)
	d.CreditDays = entropy.Pick(g.rng, 30.0, 45, 60)
	d.RecruitSales = entropy.Pick(g.rng, 0, 1, 2)
	d.RecruitAssembly = entropy.Pick(g.rng, 0, 2, 4)
	d.TrainAssembly = entropy.Pick(g.rng, 0, 2, 4)
	d.MaterialsQuantity = entropy.Pick(g.rng, 4000.0, 6000, 8000)
	d.MaterialsSupplier = 0
	d.MaterialsDeliveries = 1
	return d
}

// aggressive undercuts on price and outspends on promotion and growth.
func (g *Generator) aggressive(d *decision.Decisions) {
	g.prices(d, 10, -15, 5, 1.05)
	g.advertising(d, 15_000, 20_000, 25_000)
	g.development(d, 10_000, 15_000, 20_000)
	d.ShiftLevel = entropy.Pick(g.rng, 2, 3)
	d.RecruitSales = entropy.Pick(g.rng, 2, 3, 4)
	d.RecruitAssembly = entropy.Pick(g.rng, 4, 6, 8)
}

// conservative prices high and keeps spending low.
func (g *Generator) conservative(d *decision.Decisions) {
	g.prices(d, 20, 15, 5, 1.15)
	g.advertising(d, 0, 3000, 5000)
	g.development(d, 0, 3000, 5000)
	d.ShiftLevel = 1
	d.RecruitSales = entropy.Pick(g.rng, 0, 1)
	d.RecruitAssembly = entropy.Pick(g.rng, 0, 2)
}

// qualityFocused charges a premium for careful assembly and research.
func (g *Generator) qualityFocused(d *decision.Decisions) {
	g.prices(d, 25, 20, 3, 1.2)
	g.assemblyTime(d, 1.0, 1.1)
	g.development(d, 15_000, 20_000, 25_000)
	d.ShiftLevel = entropy.Pick(g.rng, 1, 2)
}

// costLeader runs lean on minimum pay and competes on price.
func (g *Generator) costLeader(d *decision.Decisions) {
	g.prices(d, 12, -10, 3, 1.08)
	g.assemblyTime(d, 1.2, 1.4)
	d.ShiftLevel = entropy.Pick(g.rng, 2, 3)
	d.AssemblyWageRate = params.AssemblyMinWageRate
	d.SalesSalary = params.MinSalesSalaryPerQuarter
}
