package economy

import (
	"slices"

	"github.com/talgya/topaz-sim/internal/entropy"
)

// EventChance is the probability of a random event in any quarter.
const EventChance = 0.15

// EventType names a kind of random event.
type EventType string

const (
	MarketCrisis           EventType = "market_crisis"
	RegulatoryChange       EventType = "regulatory_change"
	SupplyShortage         EventType = "supply_shortage"
	EconomicBoom           EventType = "economic_boom"
	LaborStrike            EventType = "labor_strike"
	TechnologyBreakthrough EventType = "technology_breakthrough"
)

// EventTypes lists every event type in draw order.
var EventTypes = []EventType{
	MarketCrisis,
	RegulatoryChange,
	SupplyShortage,
	EconomicBoom,
	LaborStrike,
	TechnologyBreakthrough,
}

// Severity grades an event.
type Severity string

const (
	Low    Severity = "low"
	Medium Severity = "medium"
	High   Severity = "high"
)

var severities = []Severity{Low, Medium, High}

// pick selects the value matching a severity.
func (s Severity) pick(low, medium, high float64) float64 {
	switch s {
	case High:
		return high
	case Medium:
		return medium
	default:
		return low
	}
}

// Effects are the typed consequences of an event.
type Effects struct {
	GDPModifier           float64 `json:"gdp_modifier,omitempty"`
	DemandModifier        float64 `json:"demand_modifier,omitempty"`
	CostModifier          float64 `json:"cost_modifier,omitempty"`
	MaterialPriceModifier float64 `json:"material_price_modifier,omitempty"`
	StrikeWeeks           int     `json:"strike_weeks,omitempty"`
	AllCompanies          bool    `json:"affects_all_companies"`
	Companies             []int   `json:"affected_companies,omitempty"`
}

// RandomEvent is a shock that applies to the quarter it is dated for.
type RandomEvent struct {
	Type        EventType `json:"type"`
	Severity    Severity  `json:"severity"`
	Description string    `json:"description"`
	Quarter     int       `json:"quarter"`
	Year        int       `json:"year"`
	Effects     Effects   `json:"effects"`
}

// Affects reports whether the event applies to the company at index i.
func (ev RandomEvent) Affects(i int) bool {
	return ev.Effects.AllCompanies || slices.Contains(ev.Effects.Companies, i)
}

// GenerateEvents rolls for zero or one event dated (quarter, year).
func GenerateEvents(quarter, year int, rng *entropy.Source, nCompanies int) []RandomEvent {
	if !rng.Chance(EventChance) {
		return nil
	}

	typ := entropy.Pick(rng, EventTypes...)
	sev := entropy.Pick(rng, severities...)
	ev := RandomEvent{
		Type:     typ,
		Severity: sev,
		Quarter:  quarter,
		Year:     year,
		Effects:  Effects{AllCompanies: true},
	}

	switch typ {
	case MarketCrisis:
		ev.Description = "Market Crisis: Economic uncertainty affects consumer confidence"
		ev.Effects.GDPModifier = sev.pick(-0.05, -0.10, -0.15)
		ev.Effects.DemandModifier = sev.pick(-0.10, -0.15, -0.20)
	case RegulatoryChange:
		ev.Description = "Regulatory Change: New regulations impact industry operations"
		ev.Effects.CostModifier = sev.pick(0.05, 0.07, 0.10)
	case SupplyShortage:
		ev.Description = "Supply Shortage: Material prices spike due to supply chain issues"
		ev.Effects.MaterialPriceModifier = sev.pick(0.10, 0.15, 0.25)
	case EconomicBoom:
		ev.Description = "Economic Boom: Strong economic growth boosts demand"
		ev.Effects.GDPModifier = sev.pick(0.05, 0.10, 0.15)
		ev.Effects.DemandModifier = sev.pick(0.10, 0.15, 0.20)
	case LaborStrike:
		ev.Description = "Labor Strike: Workforce disruptions affect production"
		ev.Effects.CostModifier = sev.pick(0.05, 0.10, 0.15)
		ev.Effects.StrikeWeeks = int(sev.pick(1, 2, 3))
		if rng.Chance(0.5) && nCompanies > 0 {
			ev.Effects.AllCompanies = false
			ev.Effects.Companies = []int{rng.IntRange(0, nCompanies-1)}
		}
	case TechnologyBreakthrough:
		ev.Description = "Technology Breakthrough: New manufacturing techniques reduce costs"
		ev.Effects.CostModifier = sev.pick(-0.05, -0.07, -0.10)
	}

	return []RandomEvent{ev}
}
