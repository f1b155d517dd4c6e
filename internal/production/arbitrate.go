package production

import (
	"math"

	"github.com/talgya/topaz-sim/internal/decision"
	"github.com/talgya/topaz-sim/internal/params"
)

// Output is the realized production for a quarter.
type Output struct {
	PlannedUnits     int                         `json:"planned_units"`
	CapacityRatio    float64                     `json:"capacity_ratio"`
	MaterialRatio    float64                     `json:"material_ratio"`
	EffectiveRatio   float64                     `json:"effective_ratio"`
	MaterialRequired float64                     `json:"material_required"`
	MaterialUsed     float64                     `json:"material_used"`
	Good             params.Grid[int]            `json:"good"`
	Rejects          params.Grid[int]            `json:"rejects"`
	RejectRate       [params.NumProducts]float64 `json:"reject_rate"`
}

// RejectRate falls as assembly time rises above the minimum.
func RejectRate(assemblyTime float64, p params.Product) float64 {
	q := assemblyTime / params.MinAssemblyTime[p]
	return math.Max(0.01, 0.1/math.Max(0.8, q))
}

// Arbitrate scales every planned cell by the same ratio so output fits
// both capacity and the material on hand, then splits it into good units
// and rejects.
func Arbitrate(d *decision.Decisions, capacity Capacity, materialAvailable float64) Output {
	var out Output
	required := 0.0
	for _, p := range params.Products {
		for _, a := range params.Areas {
			qty := max(0, d.Deliveries[p][a])
			out.PlannedUnits += qty
			required += float64(qty) * params.MaterialPerUnit[p]
		}
	}
	out.MaterialRequired = required

	out.CapacityRatio = 1
	if out.PlannedUnits > 0 {
		out.CapacityRatio = math.Min(1, capacity.Units()/float64(out.PlannedUnits))
	}
	out.MaterialRatio = 1
	if needed := required * out.CapacityRatio; needed > 0 {
		out.MaterialRatio = math.Min(1, math.Max(0, materialAvailable)/needed)
	}
	out.EffectiveRatio = out.CapacityRatio * out.MaterialRatio

	for _, p := range params.Products {
		rate := RejectRate(d.AssemblyTime[p], p)
		out.RejectRate[p] = rate
		for _, a := range params.Areas {
			qty := int(math.Floor(float64(max(0, d.Deliveries[p][a])) * out.EffectiveRatio))
			rejected := int(math.Floor(float64(qty) * rate))
			out.Good[p][a] = qty - rejected
			out.Rejects[p][a] = rejected
			out.MaterialUsed += float64(qty) * params.MaterialPerUnit[p]
		}
	}
	return out
}

// Produced is good plus rejected units for a cell.
func (o *Output) Produced(p params.Product, a params.Area) int {
	return o.Good[p][a] + o.Rejects[p][a]
}
