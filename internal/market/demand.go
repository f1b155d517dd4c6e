// Package market converts companies' public decisions into unit demand
// and competitive market share per product and area.
package market

import (
	"math"

	"github.com/talgya/topaz-sim/internal/company"
	"github.com/talgya/topaz-sim/internal/decision"
	"github.com/talgya/topaz-sim/internal/economy"
	"github.com/talgya/topaz-sim/internal/params"
)

// Share bounds in multi-company markets.
const (
	MinShare = 0.05
	MaxShare = 0.95
)

// Profile is the public face of one company for one quarter: what a
// competitor-information purchase would reveal. It is a value, so a set of
// profiles is an immutable snapshot of the market.
type Profile struct {
	Prices         params.Grid[float64]        `json:"prices"`
	Advertising    params.Grid[float64]        `json:"advertising"`
	AssemblyTime   [params.NumProducts]float64 `json:"assembly_time"`
	StarRatings    [params.NumProducts]float64 `json:"star_ratings"`
	DevAccumulated [params.NumProducts]float64 `json:"dev_accumulated"`
	Salespeople    [params.NumAreas]int        `json:"salespeople"`
	CreditDays     float64                     `json:"credit_days"`
	Backlog        params.Grid[int]            `json:"backlog"`
	Stocks         params.Grid[int]            `json:"stocks"`
}

// NewProfile captures a company's market-facing attributes.
func NewProfile(c *company.State, d *decision.Decisions) Profile {
	pr := Profile{
		AssemblyTime:   d.AssemblyTime,
		StarRatings:    c.StarRatings,
		DevAccumulated: c.DevAccumulated,
		Salespeople:    d.SalespeopleAllocation,
		CreditDays:     d.CreditDays,
		Backlog:        c.Backlog,
		Stocks:         c.Stocks,
	}
	for _, p := range params.Products {
		for _, a := range params.Areas {
			pr.Prices[p][a] = d.Price(p, a)
			pr.Advertising[p][a] = d.Advertising(p, a)
		}
	}
	return pr
}

// Factors is the breakdown of an attractiveness score.
type Factors struct {
	Price        float64 `json:"price"`
	Advertising  float64 `json:"advertising"`
	Quality      float64 `json:"quality"`
	Stars        float64 `json:"stars"`
	Development  float64 `json:"development"`
	Salespeople  float64 `json:"salespeople"`
	Credit       float64 `json:"credit"`
	Backlog      float64 `json:"backlog"`
	Availability float64 `json:"availability"`
}

// Product multiplies every factor.
func (f Factors) Product() float64 {
	return f.Price * f.Advertising * f.Quality * f.Stars * f.Development *
		f.Salespeople * f.Credit * f.Backlog * f.Availability
}

// Score computes each attractiveness factor for one cell.
func Score(pr *Profile, p params.Product, a params.Area) Factors {
	qFactor := pr.AssemblyTime[p] / params.MinAssemblyTime[p]
	return Factors{
		Price:        math.Exp(-0.015 * (pr.Prices[p][a] - params.ReferencePrice(p))),
		Advertising:  1 + 0.0003*math.Sqrt(math.Max(0, pr.Advertising[p][a])),
		Quality:      math.Min(1.4, 0.7+0.7*qFactor),
		Stars:        0.8 + pr.StarRatings[p]/5*0.4,
		Development:  1 + 0.0001*math.Log1p(math.Max(0, pr.DevAccumulated[p])),
		Salespeople:  1 + 0.02*float64(pr.Salespeople[a]),
		Credit:       1 + (pr.CreditDays-30)/200,
		Backlog:      math.Max(0.6, 1-float64(pr.Backlog[p][a])/4000),
		Availability: math.Min(1.1, 0.9+float64(pr.Stocks[p][a])/2000),
	}
}

// Attractiveness is the product of all factors for one cell.
func Attractiveness(pr *Profile, p params.Product, a params.Area) float64 {
	return Score(pr, p, a).Product()
}

// BaseDemand is the per-company demand for a product in an area before
// competition.
func BaseDemand(e *economy.Economy, a params.Area) float64 {
	population := params.MarketStatistics[a].Total / params.ReferencePopulation
	seasonal := 1.0
	if e.Quarter == 4 {
		seasonal = 1.1
	}
	return 1000 * population * seasonal * (e.GDP / params.BaseGDP) * e.DemandMultiplier()
}

// Result is one company's demand for the quarter.
type Result struct {
	Demand params.Grid[float64] `json:"demand"`
	Share  params.Grid[float64] `json:"share"`
}

// Allocate scores every profile under the same rules and splits each
// cell's market among them. A single profile faces no competition and
// receives base demand scaled by its own attractiveness.
func Allocate(e *economy.Economy, profiles []Profile) []Result {
	results := make([]Result, len(profiles))
	n := len(profiles)
	if n == 0 {
		return results
	}

	for _, a := range params.Areas {
		base := BaseDemand(e, a)
		for _, p := range params.Products {
			scores := make([]float64, n)
			total := 0.0
			for i := range profiles {
				scores[i] = Attractiveness(&profiles[i], p, a)
				total += scores[i]
			}

			if n == 1 {
				results[0].Demand[p][a] = math.Max(0, base*scores[0])
				results[0].Share[p][a] = 1
				continue
			}

			for i := range profiles {
				share := 1 / float64(n)
				if total > 0 {
					share = params.Clamp(scores[i]/total, MinShare, MaxShare)
				}
				results[i].Share[p][a] = share
				results[i].Demand[p][a] = math.Max(0, base*float64(n)*share)
			}
		}
	}
	return results
}
