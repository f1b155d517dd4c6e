// Package economy provides the macro state shared by every company and the
// quarterly random walk that moves it.
package economy

import (
	"math"

	"github.com/talgya/topaz-sim/internal/entropy"
	"github.com/talgya/topaz-sim/internal/params"
)

// Strength classifies the overall state of the economy.
type Strength string

const (
	Strong   Strength = "Strong"
	Moderate Strength = "Moderate"
	Weak     Strength = "Weak"
)

// StrengthModifiers are applied on top of the trend values each quarter.
type StrengthModifiers struct {
	GDPMultiplier           float64
	UnemploymentOffset      float64
	MaterialPriceMultiplier float64
	DemandMultiplier        float64
}

// Modifiers returns the multipliers for a strength class.
func (s Strength) Modifiers() StrengthModifiers {
	switch s {
	case Strong:
		return StrengthModifiers{GDPMultiplier: 1.15, UnemploymentOffset: -2, MaterialPriceMultiplier: 0.95, DemandMultiplier: 1.2}
	case Weak:
		return StrengthModifiers{GDPMultiplier: 0.85, UnemploymentOffset: 2, MaterialPriceMultiplier: 1.1, DemandMultiplier: 0.8}
	default:
		return StrengthModifiers{GDPMultiplier: 1, UnemploymentOffset: 0, MaterialPriceMultiplier: 1, DemandMultiplier: 1}
	}
}

// Classify derives the strength class from GDP and unemployment.
func Classify(gdp, unemployment float64) Strength {
	gdpRatio := gdp / params.BaseGDP
	unempRatio := unemployment / params.BaseUnemployment
	switch {
	case gdpRatio > 1.1 && unempRatio < 0.9:
		return Strong
	case gdpRatio < 0.95 && unempRatio > 1.1:
		return Weak
	default:
		return Moderate
	}
}

// Economy is the process-wide macro state for the current quarter.
// GDP, Unemployment and MaterialPrice are the observed values; the Trend
// fields carry the underlying random walk so strength multipliers never
// compound from one quarter to the next.
type Economy struct {
	Quarter        int      `json:"quarter"`
	Year           int      `json:"year"`
	GDP            float64  `json:"gdp"`
	Unemployment   float64  `json:"unemployment"`
	CBRate         float64  `json:"cb_rate"`
	MaterialPrice  float64  `json:"material_price"` // per 1000 units
	Strength       Strength `json:"strength"`
	DemandModifier float64  `json:"demand_modifier"` // from this quarter's events

	TrendGDP           float64 `json:"trend_gdp"`
	TrendUnemployment  float64 `json:"trend_unemployment"`
	TrendMaterialPrice float64 `json:"trend_material_price"`
}

// New returns the opening economy for quarter 1 of year 1.
func New() *Economy {
	return &Economy{
		Quarter:            1,
		Year:               1,
		GDP:                params.BaseGDP,
		Unemployment:       params.BaseUnemployment,
		CBRate:             params.BaseCBRate,
		MaterialPrice:      params.BaseMaterialPrice,
		Strength:           Moderate,
		TrendGDP:           params.BaseGDP,
		TrendUnemployment:  params.BaseUnemployment,
		TrendMaterialPrice: params.BaseMaterialPrice,
	}
}

// Advance moves the economy to the next quarter and returns any random
// events that will take effect in it. Draw order is fixed: GDP shock,
// unemployment shock, material noise, then event generation.
func Advance(e *Economy, rng *entropy.Source, nCompanies int) []RandomEvent {
	e.Quarter, e.Year = params.NextQuarter(e.Quarter, e.Year, 1)

	shock := rng.Normal(0, 1.5)
	e.TrendGDP = math.Max(80, e.TrendGDP*(1+shock/100))

	uShock := rng.Normal(0, 0.3)
	e.TrendUnemployment = params.Clamp(e.TrendUnemployment+uShock-shock/40, 2, 15)

	target := 2.5 + (e.TrendGDP-params.BaseGDP)/40
	e.CBRate = math.Max(0.25, 0.75*e.CBRate+0.25*target)

	e.TrendMaterialPrice = math.Max(60,
		e.TrendMaterialPrice*(1+(e.CBRate-2.5)/200+rng.Normal(0, 0.01)))

	e.Strength = Classify(e.TrendGDP, e.TrendUnemployment)
	mods := e.Strength.Modifiers()
	e.GDP = e.TrendGDP * mods.GDPMultiplier
	e.Unemployment = params.Clamp(e.TrendUnemployment+mods.UnemploymentOffset, 2, 15)
	e.MaterialPrice = e.TrendMaterialPrice * mods.MaterialPriceMultiplier
	e.DemandModifier = 0

	return GenerateEvents(e.Quarter, e.Year, rng, nCompanies)
}

// ApplyEvents folds the economy-wide effects of events into the current
// quarter. Per-company cost effects are applied by the caller.
func ApplyEvents(e *Economy, events []RandomEvent) {
	for _, ev := range events {
		e.GDP *= 1 + ev.Effects.GDPModifier
		e.MaterialPrice *= 1 + ev.Effects.MaterialPriceModifier
		e.DemandModifier += ev.Effects.DemandModifier
	}
}

// DemandMultiplier is the combined strength and event factor on base demand.
func (e *Economy) DemandMultiplier() float64 {
	return e.Strength.Modifiers().DemandMultiplier * (1 + e.DemandModifier)
}
