package engine

import (
	"math"

	"github.com/talgya/topaz-sim/internal/company"
	"github.com/talgya/topaz-sim/internal/decision"
	"github.com/talgya/topaz-sim/internal/entropy"
	"github.com/talgya/topaz-sim/internal/params"
)

// Product development thresholds.
const (
	majorThreshold = 100_000.0
	majorChance    = 0.15
	minorThreshold = 30_000.0
	minorChance    = 0.3
	decayChance    = 0.1
	minorStep      = 0.1
	majorStep      = 0.5
	maxStars       = 5.0
	minStars       = 1.0
)

// developProducts adds the quarter's R&D spend to each product's project
// and rolls for an outcome. A major improvement is reported for later
// implementation and resets the project; a minor one lifts the rating at
// once. A project that has been reset with nothing spent may lose ground.
func developProducts(c *company.State, d *decision.Decisions, quarter, year int, rng *entropy.Source) [params.NumProducts]company.ImprovementKind {
	var outcomes [params.NumProducts]company.ImprovementKind
	for _, p := range params.Products {
		outcomes[p] = company.NoImprovement
		if spend := d.ProductDevelopment[p]; spend > 0 {
			c.DevAccumulated[p] += spend
			c.DevActive[p] = true
		}

		acc := c.DevAccumulated[p]
		switch {
		case acc > majorThreshold && rng.Chance(majorChance):
			if !c.PendingMajor(p) {
				c.Improvements = append(c.Improvements, company.Improvement{
					Product:         p,
					Kind:            company.Major,
					QuarterReported: quarter,
					YearReported:    year,
				})
				outcomes[p] = company.Major
				c.DevAccumulated[p] = 0
			}
		case acc > minorThreshold && rng.Chance(minorChance):
			outcomes[p] = company.Minor
			c.StarRatings[p] = math.Min(maxStars, c.StarRatings[p]+minorStep)
		}

		if acc == 0 && c.DevActive[p] && rng.Chance(decayChance) {
			c.StarRatings[p] = math.Max(minStars, c.StarRatings[p]-minorStep)
		}
	}
	return outcomes
}

// implementImprovements puts pending major improvements into production
// where requested. All finished stock of the product is obsolete and is
// written off; the returned counts are the units scrapped.
func implementImprovements(c *company.State, d *decision.Decisions) [params.NumProducts]int {
	var writeOffs [params.NumProducts]int
	for _, p := range params.Products {
		if !d.ImplementMajorImprovement[p] || !c.PendingMajor(p) {
			continue
		}
		for i := range c.Improvements {
			imp := &c.Improvements[i]
			if imp.Product == p && imp.Kind == company.Major && !imp.Implemented {
				imp.Implemented = true
			}
		}
		writeOffs[p] = c.Stocks.ProductTotal(p)
		for _, a := range params.Areas {
			c.Stocks[p][a] = 0
		}
		c.StarRatings[p] = math.Min(maxStars, c.StarRatings[p]+majorStep)
	}
	return writeOffs
}
